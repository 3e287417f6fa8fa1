package analysis

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/fichaflow/backend/internal/models"
	"github.com/fichaflow/backend/internal/vocab"
)

func sampleTickets() []models.TicketRecord {
	return []models.TicketRecord{
		{Number: 10, Plate: "11-AA-11", Status: "Autorizado", OpenedAt: daysAgo(10), CustomerEmail: true},
		{Number: 11, Plate: "22-BB-22", Status: "Recusado", OpenedAt: daysAgo(3), LastNoteAt: daysAgo(1), CustomerEmail: true},
		{Number: 12, Plate: "33-CC-33", Status: "Anulado", OpenedAt: daysAgo(30), CustomerEmail: true},
		{Number: 13, Plate: "44-DD-44", Status: "Orçamento Enviado", OpenedAt: daysAgo(1), LastNoteAt: daysAgo(1)},
	}
}

func TestAggregateCountsMatchItems(t *testing.T) {
	a, err := AggregateStore("porto", "Porto", nil, sampleTickets(), ref, vocab.Default())
	if err != nil {
		t.Fatalf("AggregateStore: %v", err)
	}

	if a.TotalTickets != 4 {
		t.Fatalf("TotalTickets = %d, want 4", a.TotalTickets)
	}
	for cat, count := range a.CategoryCounts {
		if len(a.CategoryItems[cat]) != count {
			t.Fatalf("%s: count %d but %d line items", cat, count, len(a.CategoryItems[cat]))
		}
	}
	for cat, items := range a.CategoryItems {
		if a.CategoryCounts[cat] != len(items) {
			t.Fatalf("%s: %d items but count %d", cat, len(items), a.CategoryCounts[cat])
		}
	}

	// Every per-category count is bounded by the store total.
	for cat, count := range a.CategoryCounts {
		if count > a.TotalTickets {
			t.Fatalf("%s: count %d exceeds total %d", cat, count, a.TotalTickets)
		}
	}
}

func TestAggregateHistogramCoversAllTickets(t *testing.T) {
	a, err := AggregateStore("porto", "Porto", nil, sampleTickets(), ref, vocab.Default())
	if err != nil {
		t.Fatalf("AggregateStore: %v", err)
	}

	total := 0
	for _, c := range a.StatusHistogram {
		total += c
	}
	if total != 4 {
		t.Fatalf("histogram covers %d tickets, want 4", total)
	}
	// The cancelled ticket carries no category besides the ones it shares,
	// but it must still show in the histogram.
	if a.StatusHistogram[vocab.StatusCancelled] != 1 {
		t.Fatalf("CANCELLED histogram = %d, want 1", a.StatusHistogram[vocab.StatusCancelled])
	}
	if a.StatusHistogram[vocab.StatusQuoteSent] != 1 {
		t.Fatalf("QUOTE-SENT histogram = %d, want 1", a.StatusHistogram[vocab.StatusQuoteSent])
	}
}

func TestAggregateDeterministic(t *testing.T) {
	first, err := AggregateStore("porto", "Porto", nil, sampleTickets(), ref, vocab.Default())
	if err != nil {
		t.Fatalf("AggregateStore: %v", err)
	}
	second, err := AggregateStore("porto", "Porto", nil, sampleTickets(), ref, vocab.Default())
	if err != nil {
		t.Fatalf("AggregateStore: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same input produced different analyses")
	}
}

func TestAggregateEncounterOrder(t *testing.T) {
	tickets := []models.TicketRecord{
		{Number: 2, Status: "Autorizado", OpenedAt: daysAgo(9), CustomerEmail: true},
		{Number: 1, Status: "Autorizado", OpenedAt: daysAgo(8), CustomerEmail: true},
	}
	a, err := AggregateStore("x", "X", nil, tickets, ref, vocab.Default())
	if err != nil {
		t.Fatalf("AggregateStore: %v", err)
	}

	items := a.CategoryItems[models.CategoryStaleOpen]
	if len(items) != 2 {
		t.Fatalf("STALE_OPEN items = %d, want 2", len(items))
	}
	if !strings.HasPrefix(items[0], "FS 2 ") || !strings.HasPrefix(items[1], "FS 1 ") {
		t.Fatalf("encounter order not preserved: %v", items)
	}
}

func TestAggregateNoTickets(t *testing.T) {
	_, err := AggregateStore("vazio", "Vazio", nil, nil, ref, vocab.Default())
	if !errors.Is(err, ErrNoTickets) {
		t.Fatalf("err = %v, want ErrNoTickets", err)
	}
}

func TestAggregateDiagnostics(t *testing.T) {
	tickets := []models.TicketRecord{
		{Number: 0, Status: "Autorizado", OpenedAt: daysAgo(1), LastNoteAt: daysAgo(1), CustomerEmail: true},
		{Number: 5, Status: "Estado Misterioso", OpenedAt: daysAgo(1), LastNoteAt: daysAgo(1), CustomerEmail: true},
		{Number: 6, Status: "Autorizado", LastNoteAt: daysAgo(1), CustomerEmail: true},
	}
	a, err := AggregateStore("x", "X", nil, tickets, ref, vocab.Default())
	if err != nil {
		t.Fatalf("AggregateStore: %v", err)
	}

	if a.Diagnostics.MissingTicketNumber != 1 {
		t.Fatalf("MissingTicketNumber = %d, want 1", a.Diagnostics.MissingTicketNumber)
	}
	if a.Diagnostics.UnrecognizedStatus != 1 {
		t.Fatalf("UnrecognizedStatus = %d, want 1", a.Diagnostics.UnrecognizedStatus)
	}
	if a.Diagnostics.MissingOpenedDate != 1 {
		t.Fatalf("MissingOpenedDate = %d, want 1", a.Diagnostics.MissingOpenedDate)
	}
	if a.TotalTickets != 3 {
		t.Fatalf("diagnostics must not drop tickets: total = %d", a.TotalTickets)
	}
}
