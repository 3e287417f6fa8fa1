package narrative

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fichaflow/backend/internal/models"
	"github.com/fichaflow/backend/internal/utils"
)

// MockAdapter builds a deterministic narrative from the analysis counters.
// Used when no narrative service is configured, and in tests.
type MockAdapter struct {
	ModelVersion string
}

func (m MockAdapter) Summarize(ctx context.Context, a models.StoreAnalysis) (string, int64, error) {
	start := time.Now()
	h := utils.HashStringToUint64(a.StoreID)

	problems := a.CategoryCounts[models.CategoryStaleOpen] +
		a.CategoryCounts[models.CategoryAlertStatus] +
		a.CategoryCounts[models.CategoryNoNotes]

	level := "BAIXO"
	switch {
	case problems > 20:
		level = "CRÍTICO"
	case problems > 10:
		level = "ALTO"
	case problems > 5:
		level = "MÉDIO"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<p><strong>PONTO DE SITUAÇÃO - %s</strong></p>", strings.ToUpper(a.StoreName))
	fmt.Fprintf(&b, "<p>A loja tem atualmente <strong>%d fichas de serviço em aberto</strong> que requerem acompanhamento.</p>", a.TotalTickets)
	fmt.Fprintf(&b, "<p>NÍVEL DE URGÊNCIA: %s</p>", level)
	if problems == 0 {
		b.WriteString("<p>A loja não apresenta problemas significativos. Manter os processos atualizados.</p>")
	} else {
		openers := []string{
			"Priorizar as fichas mais antigas e atualizar as notas de cada processo.",
			"Rever os processos sinalizados e registar o ponto de situação em cada ficha.",
			"Intervir nas fichas identificadas abaixo e confirmar os agendamentos pendentes.",
		}
		fmt.Fprintf(&b, "<p>%s</p>", openers[h%uint64(len(openers))])
	}

	return b.String(), time.Since(start).Milliseconds(), nil
}
