package service

import (
	"errors"
	"testing"

	"github.com/fichaflow/backend/internal/models"
)

func row(number int, store, doc string) TicketRow {
	return TicketRow{
		Record:    models.TicketRecord{Number: number, Status: "Autorizado"},
		StoreName: store,
		DocName:   doc,
	}
}

func TestGroupStores(t *testing.T) {
	rows := []TicketRow{
		row(1, "Porto", "Ficha Servico 23"),
		row(2, "Braga", "Ficha Servico 45"),
		row(3, "Porto", "Ficha Servico 23"),
		row(4, "  porto ", "Ficha Servico 23"),
	}
	groups := GroupStores(rows)

	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	// Sorted by name: Braga first.
	if groups[0].StoreName != "Braga" || len(groups[0].Tickets) != 1 {
		t.Fatalf("first group = %+v", groups[0])
	}
	porto := groups[1]
	if len(porto.Tickets) != 3 {
		t.Fatalf("porto tickets = %d, want 3", len(porto.Tickets))
	}
	// Encounter order within the store.
	if porto.Tickets[0].Number != 1 || porto.Tickets[1].Number != 3 || porto.Tickets[2].Number != 4 {
		t.Fatalf("encounter order lost: %+v", porto.Tickets)
	}
	if porto.StoreNumber == nil || *porto.StoreNumber != 23 {
		t.Fatalf("store number = %v, want 23", porto.StoreNumber)
	}
}

func TestGroupStoresUnknownStore(t *testing.T) {
	groups := GroupStores([]TicketRow{row(1, "", ""), row(2, "   ", "")})
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	if groups[0].StoreName != "Desconhecida" {
		t.Fatalf("name = %q", groups[0].StoreName)
	}
	if groups[0].StoreNumber != nil {
		t.Fatalf("store number = %v, want nil", groups[0].StoreNumber)
	}
}

func TestGroupStoresCaseInsensitiveSlug(t *testing.T) {
	groups := GroupStores([]TicketRow{
		row(1, "Vila Nova de Gaia", ""),
		row(2, "VILA  NOVA  DE  GAIA", ""),
	})
	if len(groups) != 1 {
		t.Fatalf("case/spacing variants must collapse, got %d groups", len(groups))
	}
	if groups[0].StoreID != "vila-nova-de-gaia" {
		t.Fatalf("slug = %q", groups[0].StoreID)
	}
}

func TestExtractStoreNumber(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"Ficha Servico 23", 23},
		{"Ficha Serviço 7", 7},
		{"FICHA SERVICO 120", 120},
		{"Orçamento 5", 0},
		{"", 0},
		{"Ficha Servico 0", 0},
	}
	for _, c := range cases {
		got := extractStoreNumber(c.in)
		if c.want == 0 {
			if got != nil {
				t.Fatalf("extractStoreNumber(%q) = %d, want nil", c.in, *got)
			}
			continue
		}
		if got == nil || *got != c.want {
			t.Fatalf("extractStoreNumber(%q) = %v, want %d", c.in, got, c.want)
		}
	}
}

func TestDebugSample(t *testing.T) {
	fail := debugSample(storeResult{storeID: "faro", err: errors.New("boom")})
	if fail["store_id"] != "faro" || fail["error"] != "boom" {
		t.Fatalf("failed-store sample = %v", fail)
	}
	if _, ok := fail["analysis_id"]; ok {
		t.Fatalf("failed-store sample carries analysis_id: %v", fail)
	}

	ok := debugSample(storeResult{storeID: "braga", analysisID: 42, pages: 3})
	if ok["store_id"] != "braga" || ok["analysis_id"] != int64(42) || ok["pages"] != 3 {
		t.Fatalf("processed-store sample = %v", ok)
	}
	if _, present := ok["error"]; present {
		t.Fatalf("processed-store sample carries error: %v", ok)
	}
}
