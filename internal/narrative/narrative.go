package narrative

import (
	"context"

	"github.com/fichaflow/backend/internal/models"
)

// Adapter produces the free-text narrative attached to a report. The text is
// opaque to the pipeline: it is embedded verbatim (markup stripped at render
// time) and never interpreted structurally.
type Adapter interface {
	Summarize(ctx context.Context, a models.StoreAnalysis) (string, int64, error)
}
