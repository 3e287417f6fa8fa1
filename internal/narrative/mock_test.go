package narrative

import (
	"context"
	"strings"
	"testing"

	"github.com/fichaflow/backend/internal/models"
)

func analysisWithProblems(storeID string, problems int) models.StoreAnalysis {
	return models.StoreAnalysis{
		StoreID:      storeID,
		StoreName:    "Porto",
		TotalTickets: problems + 3,
		CategoryCounts: map[models.Category]int{
			models.CategoryStaleOpen: problems,
		},
	}
}

func TestMockSummarizeDeterministic(t *testing.T) {
	m := MockAdapter{ModelVersion: "mock-v1"}
	a := analysisWithProblems("porto", 4)

	first, _, err := m.Summarize(context.Background(), a)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	second, _, err := m.Summarize(context.Background(), a)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if first != second {
		t.Fatalf("same analysis produced different narratives")
	}
	if !strings.Contains(first, "PONTO DE SITUAÇÃO - PORTO") {
		t.Fatalf("narrative missing header: %q", first)
	}
}

func TestMockSummarizeUrgencyLevels(t *testing.T) {
	m := MockAdapter{}
	cases := []struct {
		problems int
		level    string
	}{
		{0, "BAIXO"},
		{5, "BAIXO"},
		{6, "MÉDIO"},
		{11, "ALTO"},
		{21, "CRÍTICO"},
	}
	for _, c := range cases {
		text, _, err := m.Summarize(context.Background(), analysisWithProblems("x", c.problems))
		if err != nil {
			t.Fatalf("Summarize: %v", err)
		}
		if !strings.Contains(text, "NÍVEL DE URGÊNCIA: "+c.level) {
			t.Fatalf("problems=%d: missing level %s in %q", c.problems, c.level, text)
		}
	}
}

func TestMockSummarizeCleanStore(t *testing.T) {
	m := MockAdapter{}
	text, _, err := m.Summarize(context.Background(), analysisWithProblems("limpa", 0))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if !strings.Contains(text, "não apresenta problemas") {
		t.Fatalf("clean store narrative = %q", text)
	}
}
