package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fichaflow/backend/internal/models"
)

// Weights scales the three actionable-negative categories that make up the
// risk score. NO_CUSTOMER_EMAIL and RETURN_GLASS are data-quality signals
// and stay out of the score.
type Weights struct {
	StaleOpen   int
	AlertStatus int
	NoNotes     int
}

func DefaultWeights() Weights {
	return Weights{StaleOpen: 1, AlertStatus: 1, NoNotes: 1}
}

// RiskScore collapses an analysis into the scalar the evolution verdict
// compares.
func RiskScore(a models.StoreAnalysis, w Weights) int {
	return w.StaleOpen*a.CategoryCounts[models.CategoryStaleOpen] +
		w.AlertStatus*a.CategoryCounts[models.CategoryAlertStatus] +
		w.NoNotes*a.CategoryCounts[models.CategoryNoNotes]
}

// Diff compares the current analysis against the most recent prior snapshot
// of the same store. A nil previous yields nil: no history is not the same
// as no change.
func Diff(current models.StoreAnalysis, previous *models.StoreAnalysis) *models.EvolutionVerdict {
	return DiffWeighted(current, previous, DefaultWeights())
}

func DiffWeighted(current models.StoreAnalysis, previous *models.StoreAnalysis, w Weights) *models.EvolutionVerdict {
	if previous == nil {
		return nil
	}

	cur := RiskScore(current, w)
	prev := RiskScore(*previous, w)

	verdict := models.VerdictStable
	switch {
	case cur < prev:
		verdict = models.VerdictImproved
	case cur > prev:
		verdict = models.VerdictWorsened
	}

	return &models.EvolutionVerdict{
		Verdict:   verdict,
		Rationale: buildRationale(current, *previous, cur, prev),
	}
}

var scoredCategories = []struct {
	cat   models.Category
	label string
}{
	{models.CategoryStaleOpen, "Abertas +5 dias"},
	{models.CategoryAlertStatus, "Status alerta"},
	{models.CategoryNoNotes, "Sem notas"},
}

func buildRationale(current, previous models.StoreAnalysis, cur, prev int) string {
	type delta struct {
		label string
		value int
		order int
	}

	var deltas []delta
	for i, sc := range scoredCategories {
		d := current.CategoryCounts[sc.cat] - previous.CategoryCounts[sc.cat]
		if d != 0 {
			deltas = append(deltas, delta{label: sc.label, value: d, order: i})
		}
	}
	// Largest movement first; ties keep the fixed category order.
	sort.SliceStable(deltas, func(i, j int) bool {
		ai, aj := abs(deltas[i].value), abs(deltas[j].value)
		if ai == aj {
			return deltas[i].order < deltas[j].order
		}
		return ai > aj
	})

	head := fmt.Sprintf("Risco %d (anterior %d).", cur, prev)
	if len(deltas) == 0 {
		return head + " Sem alterações nas categorias de risco."
	}

	parts := make([]string, 0, len(deltas))
	for _, d := range deltas {
		parts = append(parts, fmt.Sprintf("%s: %+d", d.label, d.value))
	}
	return head + " " + strings.Join(parts, "; ")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
