package models

import (
	"encoding/json"
	"time"
)

// Category is a fixed operational-risk tag. A ticket may carry several at
// once; the predicates are independent.
type Category string

const (
	CategoryStaleOpen       Category = "STALE_OPEN"
	CategoryPastSchedule    Category = "PAST_SCHEDULE"
	CategoryAlertStatus     Category = "ALERT_STATUS"
	CategoryNoNotes         Category = "NO_NOTES"
	CategoryStaleNotes      Category = "STALE_NOTES"
	CategoryReturnGlass     Category = "RETURN_GLASS"
	CategoryNoCustomerEmail Category = "NO_CUSTOMER_EMAIL"
)

// Categories returns every category in report order. The order is fixed and
// shared by the aggregator, the synthesizer and the renderer.
func Categories() []Category {
	return []Category{
		CategoryStaleOpen,
		CategoryPastSchedule,
		CategoryAlertStatus,
		CategoryNoNotes,
		CategoryStaleNotes,
		CategoryReturnGlass,
		CategoryNoCustomerEmail,
	}
}

// TicketRecord is one service-ticket row at analysis time, already parsed by
// the ingestion edge. Immutable once captured.
type TicketRecord struct {
	Number        int        `json:"number"`
	Plate         string     `json:"plate,omitempty"`
	Status        string     `json:"status"`
	OpenedAt      *time.Time `json:"opened_at,omitempty"`
	LastNoteAt    *time.Time `json:"last_note_at,omitempty"`
	ScheduledAt   *time.Time `json:"scheduled_at,omitempty"`
	CustomerEmail bool       `json:"customer_email"`
	BrandModel    string     `json:"brand_model,omitempty"`
}

// Diagnostics counts non-fatal anomalies seen while building one analysis.
type Diagnostics struct {
	MissingTicketNumber int `json:"missing_ticket_number"`
	UnrecognizedStatus  int `json:"unrecognized_status"`
	MissingOpenedDate   int `json:"missing_opened_date"`
}

// StoreAnalysis is one frozen per-store analysis snapshot. A re-analysis
// creates a new row; rows are never mutated, so the evolution diff always
// compares two distinct snapshots.
type StoreAnalysis struct {
	ID              int64                 `json:"id"`
	StoreID         string                `json:"store_id"`
	StoreName       string                `json:"store_name"`
	StoreNumber     *int                  `json:"store_number,omitempty"`
	TotalTickets    int                   `json:"total_tickets"`
	CategoryCounts  map[Category]int      `json:"category_counts"`
	CategoryItems   map[Category][]string `json:"category_items"`
	StatusHistogram map[string]int        `json:"status_histogram"`
	Diagnostics     Diagnostics           `json:"diagnostics"`
	CreatedAt       time.Time             `json:"created_at"`
}

const (
	VerdictImproved = "IMPROVED"
	VerdictWorsened = "WORSENED"
	VerdictStable   = "STABLE"
)

// EvolutionVerdict compares an analysis against the previous snapshot of the
// same store. Absent (nil) when no prior analysis exists; that is not the
// same thing as STABLE.
type EvolutionVerdict struct {
	Verdict   string `json:"verdict"`
	Rationale string `json:"rationale"`
}

// ReportSection is one populated category rendered as a titled colored block.
type ReportSection struct {
	Category      Category `json:"category"`
	Title         string   `json:"title"`
	IdentityColor string   `json:"identity_color"`
	LineItems     []string `json:"line_items"`
	Total         string   `json:"total"`
}

// KPIBand is the four-cell metric band at the top of the document.
type KPIBand struct {
	TotalTickets int `json:"total_tickets"`
	StaleOpen    int `json:"stale_open"`
	AlertStatus  int `json:"alert_status"`
	NoNotes      int `json:"no_notes"`
}

// Report is the semantic document handed to the renderer. The narrative is
// an opaque text blob; the renderer strips markup but never interprets it.
type Report struct {
	StoreName       string            `json:"store_name"`
	StoreNumber     *int              `json:"store_number,omitempty"`
	AnalysisDate    time.Time         `json:"analysis_date"`
	KPIs            KPIBand           `json:"kpis"`
	Verdict         *EvolutionVerdict `json:"verdict,omitempty"`
	Narrative       string            `json:"narrative,omitempty"`
	Sections        []ReportSection   `json:"sections"`
	StatusHistogram map[string]int    `json:"status_histogram"`
}

// RenderedDocument is the terminal artifact: PDF bytes plus a page count.
type RenderedDocument struct {
	PDF   []byte `json:"-"`
	Pages int    `json:"pages"`
}

// Run is one processing run's bookkeeping row. FinishedAt is nil while the
// run is still in flight; Summary carries the run's JSON counters verbatim.
type Run struct {
	ID         string          `json:"id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	Status     string          `json:"status"`
	Summary    json.RawMessage `json:"summary,omitempty"`
}
