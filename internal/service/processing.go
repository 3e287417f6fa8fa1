package service

import (
	"context"
	"errors"
	"regexp"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/fichaflow/backend/internal/analysis"
	"github.com/fichaflow/backend/internal/db"
	"github.com/fichaflow/backend/internal/models"
	"github.com/fichaflow/backend/internal/narrative"
	"github.com/fichaflow/backend/internal/report"
	"github.com/fichaflow/backend/internal/vocab"
)

// TicketRow is one ingested export row: the ticket record plus the store
// identity columns it arrived with.
type TicketRow struct {
	Record    models.TicketRecord
	StoreName string
	DocName   string
}

// StoreTickets is one store's slice of an upload, in encounter order.
type StoreTickets struct {
	StoreID     string
	StoreName   string
	StoreNumber *int
	Tickets     []models.TicketRecord
}

type ProcessingService struct {
	Store     *db.Store
	Narrative narrative.Adapter
	Vocab     vocab.Vocabulary
	Renderer  report.Renderer
	Logger    zerolog.Logger
	Workers   int
}

type RunSummary struct {
	Events  []map[string]any `json:"events"`
	Counts  map[string]any   `json:"counts"`
	Samples []map[string]any `json:"samples,omitempty"`
}

var docNumberRe = regexp.MustCompile(`(?i)ficha\s*servi[cç]o\s*(\d+)`)

// GroupStores splits export rows by store, keeping ticket encounter order
// within each store. Groups come back sorted by store name so runs are
// reproducible.
func GroupStores(rows []TicketRow) []StoreTickets {
	byID := map[string]*StoreTickets{}
	for _, row := range rows {
		name := strings.TrimSpace(row.StoreName)
		if name == "" {
			name = "Desconhecida"
		}
		id := storeSlug(name)

		group, ok := byID[id]
		if !ok {
			group = &StoreTickets{
				StoreID:     id,
				StoreName:   name,
				StoreNumber: extractStoreNumber(row.DocName),
			}
			byID[id] = group
		}
		if group.StoreNumber == nil {
			group.StoreNumber = extractStoreNumber(row.DocName)
		}
		group.Tickets = append(group.Tickets, row.Record)
	}

	out := make([]StoreTickets, 0, len(byID))
	for _, g := range byID {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StoreName < out[j].StoreName })
	return out
}

func storeSlug(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}

// extractStoreNumber reads the store number out of the export's document
// name ("Ficha Servico 23" -> 23).
func extractStoreNumber(docName string) *int {
	m := docNumberRe.FindStringSubmatch(docName)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

type storeResult struct {
	storeID    string
	analysisID int64
	verdict    *models.EvolutionVerdict
	pages      int
	diags      models.Diagnostics
	emptyStore bool
	narrErr    bool
	err        error
}

// debugSample condenses one store's outcome for the run summary. Failed
// stores carry the error text, processed ones the analysis row and page count.
func debugSample(res storeResult) map[string]any {
	if res.err != nil {
		return map[string]any{
			"store_id": res.storeID,
			"error":    res.err.Error(),
		}
	}
	return map[string]any{
		"store_id":    res.storeID,
		"analysis_id": res.analysisID,
		"pages":       res.pages,
	}
}

// ProcessUpload runs the full pipeline for one upload: aggregate each store,
// persist the snapshot, diff against history, synthesize and render the
// report. Stores are independent and fan out over a bounded worker pool; the
// "previous analysis" read happens after this run's snapshot is assigned its
// sequence id, so two stores can never see each other as history.
func (s *ProcessingService) ProcessUpload(ctx context.Context, groups []StoreTickets, ref time.Time, debug bool) (RunSummary, error) {
	summary := RunSummary{Counts: map[string]any{}}
	start := time.Now()

	totalTickets := 0
	for _, g := range groups {
		totalTickets += len(g.Tickets)
	}
	summary.Events = append(summary.Events, map[string]any{
		"type":    "import_summary",
		"message": "Stores ready for analysis",
		"stores":  len(groups),
		"tickets": totalTickets,
		"time":    time.Now().UTC(),
	})

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]storeResult, len(groups))
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, group := range groups {
		i, group := i, group
		eg.Go(func() error {
			res := s.processStore(egCtx, group, ref)
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return summary, err
	}

	var (
		processed    int
		emptyStores  int
		storeErrors  int
		narrErrors   int
		improved     int
		worsened     int
		stable       int
		noHistory    int
		pagesTotal   int
		diagnostics  models.Diagnostics
	)
	for _, res := range results {
		if res.emptyStore {
			emptyStores++
			continue
		}
		if res.err != nil {
			storeErrors++
			s.Logger.Error().Err(res.err).Str("store_id", res.storeID).Msg("store analysis failed")
			if debug && len(summary.Samples) < 5 {
				summary.Samples = append(summary.Samples, debugSample(res))
			}
			continue
		}

		processed++
		if debug && len(summary.Samples) < 5 {
			summary.Samples = append(summary.Samples, debugSample(res))
		}
		pagesTotal += res.pages
		if res.narrErr {
			narrErrors++
		}
		diagnostics.MissingTicketNumber += res.diags.MissingTicketNumber
		diagnostics.UnrecognizedStatus += res.diags.UnrecognizedStatus
		diagnostics.MissingOpenedDate += res.diags.MissingOpenedDate

		switch {
		case res.verdict == nil:
			noHistory++
		case res.verdict.Verdict == models.VerdictImproved:
			improved++
		case res.verdict.Verdict == models.VerdictWorsened:
			worsened++
		default:
			stable++
		}
	}

	summary.Events = append(summary.Events, map[string]any{
		"type":       "analysis",
		"processed":  processed,
		"improved":   improved,
		"worsened":   worsened,
		"stable":     stable,
		"no_history": noHistory,
		"time":       time.Now().UTC(),
	})
	summary.Events = append(summary.Events, map[string]any{
		"type":        "render",
		"pages_total": pagesTotal,
		"time":        time.Now().UTC(),
	})
	summary.Events = append(summary.Events, map[string]any{
		"type":       "db_save",
		"message":    "Analyses saved",
		"elapsed_ms": time.Since(start).Milliseconds(),
		"time":       time.Now().UTC(),
	})

	summary.Counts["stores_total"] = len(groups)
	summary.Counts["stores_processed"] = processed
	summary.Counts["stores_empty"] = emptyStores
	summary.Counts["store_errors"] = storeErrors
	summary.Counts["tickets_total"] = totalTickets
	summary.Counts["narrative_errors"] = narrErrors
	summary.Counts["improved"] = improved
	summary.Counts["worsened"] = worsened
	summary.Counts["stable"] = stable
	summary.Counts["no_history"] = noHistory
	summary.Counts["pages_total"] = pagesTotal
	summary.Counts["missing_ticket_numbers"] = diagnostics.MissingTicketNumber
	summary.Counts["unrecognized_statuses"] = diagnostics.UnrecognizedStatus
	summary.Counts["missing_opened_dates"] = diagnostics.MissingOpenedDate
	return summary, nil
}

func (s *ProcessingService) processStore(ctx context.Context, group StoreTickets, ref time.Time) storeResult {
	res := storeResult{storeID: group.StoreID}

	a, err := analysis.AggregateStore(group.StoreID, group.StoreName, group.StoreNumber, group.Tickets, ref, s.Vocab)
	if err != nil {
		if errors.Is(err, analysis.ErrNoTickets) {
			res.emptyStore = true
			return res
		}
		res.err = err
		return res
	}
	res.diags = a.Diagnostics

	id, err := s.Store.SaveAnalysis(ctx, a)
	if err != nil {
		res.err = err
		return res
	}
	a.ID = id
	res.analysisID = id

	previous, err := s.Store.GetPreviousAnalysis(ctx, group.StoreID, id)
	if err != nil {
		res.err = err
		return res
	}
	verdict := analysis.Diff(a, previous)
	res.verdict = verdict

	text, _, err := s.Narrative.Summarize(ctx, a)
	if err != nil {
		s.Logger.Warn().Err(err).Str("store_id", group.StoreID).Msg("narrative generation failed")
		res.narrErr = true
		text = ""
	}

	rep := report.Synthesize(a, verdict, text)
	doc, err := s.Renderer.Render(rep)
	if err != nil {
		res.err = err
		return res
	}
	res.pages = doc.Pages

	if err := s.Store.SaveReport(ctx, id, doc.PDF, doc.Pages); err != nil {
		res.err = err
		return res
	}
	return res
}
