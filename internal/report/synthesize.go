package report

import (
	"fmt"
	"time"

	"github.com/fichaflow/backend/internal/models"
)

type sectionSpec struct {
	category models.Category
	title    string
	color    string
}

// Section order, titles and identity colors are fixed. A category with zero
// matching tickets produces no section at all.
var sectionTable = []sectionSpec{
	{models.CategoryStaleOpen, "FS ABERTAS A 5 OU MAIS DIAS QUE NÃO ESTÃO FINALIZADAS", "#c53030"},
	{models.CategoryPastSchedule, "FS QUE PASSARAM 2 OU MAIS DIAS DO AGENDAMENTO", "#dd6b20"},
	{models.CategoryAlertStatus, "FS EM STATUS DE ALERTA", "#dc2626"},
	{models.CategoryNoNotes, "FS SEM NOTAS", "#ca8a04"},
	{models.CategoryStaleNotes, "FS COM NOTAS SEM ATUALIZAÇÃO A 5 OU MAIS DIAS", "#16a34a"},
	{models.CategoryReturnGlass, "FS COM STATUS: DEVOLVE VIDRO E ENCERRA", "#7c3aed"},
	{models.CategoryNoCustomerEmail, "FS SEM EMAIL DE CLIENTE", "#db2777"},
}

// BuildSections turns the per-category line items of an analysis into the
// ordered section list. Each populated section's total restates its line-item
// count, which by construction equals the category counter.
func BuildSections(a models.StoreAnalysis) []models.ReportSection {
	var out []models.ReportSection
	for _, spec := range sectionTable {
		items := a.CategoryItems[spec.category]
		if len(items) == 0 {
			continue
		}
		out = append(out, models.ReportSection{
			Category:      spec.category,
			Title:         spec.title,
			IdentityColor: spec.color,
			LineItems:     items,
			Total:         fmt.Sprintf("Total: %d processos", len(items)),
		})
	}
	return out
}

// Synthesize assembles the semantic report the renderer consumes: KPI band,
// verdict, opaque narrative and the typed section list. The renderer never
// re-derives structure from rendered output.
func Synthesize(a models.StoreAnalysis, verdict *models.EvolutionVerdict, narrative string) models.Report {
	date := a.CreatedAt
	if date.IsZero() {
		date = time.Now().UTC()
	}
	return models.Report{
		StoreName:    a.StoreName,
		StoreNumber:  a.StoreNumber,
		AnalysisDate: date,
		KPIs: models.KPIBand{
			TotalTickets: a.TotalTickets,
			StaleOpen:    a.CategoryCounts[models.CategoryStaleOpen],
			AlertStatus:  a.CategoryCounts[models.CategoryAlertStatus],
			NoNotes:      a.CategoryCounts[models.CategoryNoNotes],
		},
		Verdict:         verdict,
		Narrative:       narrative,
		Sections:        BuildSections(a),
		StatusHistogram: a.StatusHistogram,
	}
}
