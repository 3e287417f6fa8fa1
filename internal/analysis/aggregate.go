package analysis

import (
	"errors"
	"fmt"
	"time"

	"github.com/fichaflow/backend/internal/models"
	"github.com/fichaflow/backend/internal/vocab"
)

// ErrNoTickets is the only fatal aggregation error: a store id with no
// ticket data at all. Callers decide whether to skip the store or abort the
// upload.
var ErrNoTickets = errors.New("no tickets for store")

// AggregateStore folds one store's tickets into a StoreAnalysis. Encounter
// order is preserved: the same ticket slice always yields byte-identical
// line-item lists. The caller sets CreatedAt/ID on persistence.
func AggregateStore(storeID, storeName string, storeNumber *int, tickets []models.TicketRecord, ref time.Time, v vocab.Vocabulary) (models.StoreAnalysis, error) {
	if len(tickets) == 0 {
		return models.StoreAnalysis{}, fmt.Errorf("store %s: %w", storeID, ErrNoTickets)
	}

	a := models.StoreAnalysis{
		StoreID:         storeID,
		StoreName:       storeName,
		StoreNumber:     storeNumber,
		TotalTickets:    len(tickets),
		CategoryCounts:  map[models.Category]int{},
		CategoryItems:   map[models.Category][]string{},
		StatusHistogram: map[string]int{},
	}

	for _, rec := range tickets {
		cls := ClassifyTicket(rec, ref, v)

		if rec.Number == 0 {
			a.Diagnostics.MissingTicketNumber++
		}
		if rec.OpenedAt == nil {
			a.Diagnostics.MissingOpenedDate++
		}
		if !cls.StatusRecognized && cls.NormalizedStatus != "" {
			a.Diagnostics.UnrecognizedStatus++
		}

		// Every ticket counts in the histogram, flagged or not.
		if cls.NormalizedStatus != "" {
			a.StatusHistogram[cls.NormalizedStatus]++
		}

		for _, cat := range models.Categories() {
			if !cls.Has(cat) {
				continue
			}
			a.CategoryCounts[cat]++
			a.CategoryItems[cat] = append(a.CategoryItems[cat], FormatLineItem(rec, cls, cat))
		}
	}

	return a, nil
}

// FormatLineItem builds the pipe-delimited table row for one ticket within
// one category: "FS {no} | {plate} | {brand/model or '-'} | {status}{days}".
func FormatLineItem(rec models.TicketRecord, cls Classification, cat models.Category) string {
	brandModel := rec.BrandModel
	if brandModel == "" {
		brandModel = "-"
	}
	return fmt.Sprintf("FS %d | %s | %s | %s%s",
		rec.Number, rec.Plate, brandModel, cls.NormalizedStatus, daysSuffix(cls, cat))
}

func daysSuffix(cls Classification, cat models.Category) string {
	switch cat {
	case models.CategoryStaleOpen:
		if cls.DaysOpen != nil {
			return fmt.Sprintf(" (%d dias aberto)", *cls.DaysOpen)
		}
	case models.CategoryStaleNotes:
		if cls.DaysSinceNote != nil {
			return fmt.Sprintf(" (%d dias sem nota)", *cls.DaysSinceNote)
		}
	case models.CategoryPastSchedule:
		if cls.DaysPastSchedule != nil {
			return fmt.Sprintf(" (%d dias após agendamento)", *cls.DaysPastSchedule)
		}
	}
	return ""
}
