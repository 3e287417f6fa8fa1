package analysis

import (
	"time"

	"github.com/fichaflow/backend/internal/models"
	"github.com/fichaflow/backend/internal/vocab"
)

const (
	staleOpenDays    = 5
	staleNoteDays    = 5
	pastScheduleDays = 2
)

// Classification is the per-ticket output of the classifier: the tag set,
// the normalized status and the derived day counts. Day counts are nil when
// not computable (missing or unparseable source date).
type Classification struct {
	Tags             map[models.Category]bool
	NormalizedStatus string
	StatusRecognized bool
	Closed           bool
	DaysOpen         *int
	DaysSinceNote    *int
	DaysPastSchedule *int
}

// Has reports whether the ticket carries the given category.
func (c Classification) Has(cat models.Category) bool {
	return c.Tags[cat]
}

// ClassifyTicket evaluates every category predicate against one ticket.
//
// Closed tickets are exempt from the open-ticket urgency signals
// (STALE_OPEN, PAST_SCHEDULE, NO_NOTES, STALE_NOTES) but not from the
// data-quality signals (NO_CUSTOMER_EMAIL, RETURN_GLASS). That asymmetry is
// intentional and must hold for every input.
func ClassifyTicket(rec models.TicketRecord, ref time.Time, v vocab.Vocabulary) Classification {
	norm, recognized := v.Normalize(rec.Status)

	cls := Classification{
		Tags:             map[models.Category]bool{},
		NormalizedStatus: norm,
		StatusRecognized: recognized,
		Closed:           v.IsClosed(norm),
	}

	if rec.OpenedAt != nil {
		d := daysBetween(*rec.OpenedAt, ref)
		cls.DaysOpen = &d
	}
	if rec.LastNoteAt != nil {
		d := daysBetween(*rec.LastNoteAt, ref)
		cls.DaysSinceNote = &d
	}
	if rec.ScheduledAt != nil {
		if d := daysBetween(*rec.ScheduledAt, ref); d > 0 {
			cls.DaysPastSchedule = &d
		}
	}

	if !cls.Closed {
		if cls.DaysOpen != nil && *cls.DaysOpen >= staleOpenDays {
			cls.Tags[models.CategoryStaleOpen] = true
		}
		if cls.DaysPastSchedule != nil && *cls.DaysPastSchedule >= pastScheduleDays {
			cls.Tags[models.CategoryPastSchedule] = true
		}
		if rec.LastNoteAt == nil {
			cls.Tags[models.CategoryNoNotes] = true
		}
		if cls.DaysSinceNote != nil && *cls.DaysSinceNote >= staleNoteDays {
			cls.Tags[models.CategoryStaleNotes] = true
		}
	}

	if v.IsAlert(norm) {
		cls.Tags[models.CategoryAlertStatus] = true
	}
	if norm == vocab.StatusReturnGlassClose {
		cls.Tags[models.CategoryReturnGlass] = true
	}
	if !rec.CustomerEmail {
		cls.Tags[models.CategoryNoCustomerEmail] = true
	}

	return cls
}

// daysBetween counts whole calendar days from t to ref, both truncated to
// midnight UTC so the hour of the analysis run never shifts a predicate.
func daysBetween(t, ref time.Time) int {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	ref = time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	return int(ref.Sub(t).Hours() / 24)
}
