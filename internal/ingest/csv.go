package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fichaflow/backend/internal/models"
	"github.com/fichaflow/backend/internal/service"
)

// Emails on the company's own domain are not customer emails.
const internalEmailDomain = "@expressglass.pt"

// Rows with these statuses are finished work and never enter the analysis.
var excludedStatuses = []string{"serviço pronto", "servico pronto", "revisar"}

// Diagnostics counts rows degraded (not dropped) during parsing. Unparseable
// dates leave the field nil; the ticket still counts toward the analysis.
type Diagnostics struct {
	RowsTotal           int `json:"rows_total"`
	RowsExcludedStatus  int `json:"rows_excluded_status"`
	UnparsedOpenedDates int `json:"unparsed_opened_dates"`
	UnparsedNoteDates   int `json:"unparsed_note_dates"`
	UnparsedSchedDates  int `json:"unparsed_sched_dates"`
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseTickets reads the monitoring export CSV into ticket rows. Header
// names follow the export's vocabulary with aliases; one malformed row never
// fails the whole file.
func ParseTickets(r io.Reader) ([]service.TicketRow, Diagnostics, []string) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, Diagnostics{}, []string{"failed to read header"}
	}
	index := headerIndex(headers)

	var (
		out   []service.TicketRow
		diags Diagnostics
		errs  []string
	)

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		diags.RowsTotal++

		status := getFieldAny(rec, index, "status")
		if isExcludedStatus(status) {
			diags.RowsExcludedStatus++
			continue
		}

		numberStr := getFieldAny(rec, index, "obrano", "ficha", "fs", "numero")
		number, err := strconv.Atoi(numberStr)
		if err != nil {
			number = 0
		}

		openedAt, ok := parseDate(getFieldAny(rec, index, "dataobra", "data abertura", "opened_at"))
		if !ok {
			diags.UnparsedOpenedDates++
		}
		noteAt, ok := parseDate(getFieldAny(rec, index, "dta nota", "datanota", "data nota", "last_note_at"))
		if !ok {
			diags.UnparsedNoteDates++
		}
		schedAt, ok := parseDate(getFieldAny(rec, index, "dataserviço", "dataservico", "data agendamento", "scheduled_at"))
		if !ok {
			diags.UnparsedSchedDates++
		}

		email := strings.ToLower(getFieldAny(rec, index, "email"))
		brand := getFieldAny(rec, index, "marca", "brand")
		model := getFieldAny(rec, index, "modelo", "model")

		row := service.TicketRow{
			Record: models.TicketRecord{
				Number:        number,
				Plate:         getFieldAny(rec, index, "matricula", "matrícula", "plate"),
				Status:        status,
				OpenedAt:      openedAt,
				LastNoteAt:    noteAt,
				ScheduledAt:   schedAt,
				CustomerEmail: email != "" && !strings.Contains(email, internalEmailDomain),
				BrandModel:    strings.TrimSpace(brand + " " + model),
			},
			StoreName: getFieldAny(rec, index, "lojas", "loja", "store"),
			DocName:   getFieldAny(rec, index, "nmdos", "documento"),
		}
		if row.Record.Number == 0 && numberStr != "" {
			errs = append(errs, fmt.Sprintf("row %d: invalid ticket number %q", diags.RowsTotal, numberStr))
		}
		out = append(out, row)
	}
	return out, diags, errs
}

func isExcludedStatus(status string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	for _, ex := range excludedStatuses {
		if s == ex {
			return true
		}
	}
	return false
}

// parseDate returns (nil, true) for an empty field and (nil, false) for a
// value that matched no known layout.
func parseDate(value string) (*time.Time, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, true
		}
	}
	return nil, false
}

func headerIndex(headers []string) map[string]int {
	idx := map[string]int{}
	for i, h := range headers {
		idx[normalizeHeader(h)] = i
	}
	return idx
}

func normalizeHeader(h string) string {
	h = strings.ReplaceAll(h, "\ufeff", "")
	return strings.ToLower(strings.TrimSpace(h))
}

func getField(rec []string, idx map[string]int, name string) string {
	pos, ok := idx[name]
	if !ok || pos >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[pos])
}

func getFieldAny(rec []string, idx map[string]int, names ...string) string {
	for _, name := range names {
		if v := getField(rec, idx, normalizeHeader(name)); v != "" {
			return v
		}
	}
	return ""
}
