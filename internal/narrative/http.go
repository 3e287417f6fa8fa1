package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fichaflow/backend/internal/models"
)

// HTTPAdapter calls an external summarization service. The service owns the
// prose; this adapter only carries counters over the wire.
type HTTPAdapter struct {
	BaseURL string
	Client  *http.Client
}

type requestBody struct {
	StoreID         string         `json:"store_id"`
	StoreName       string         `json:"store_name"`
	TotalTickets    int            `json:"total_tickets"`
	CategoryCounts  map[string]int `json:"category_counts"`
	StatusHistogram map[string]int `json:"status_histogram"`
}

type responseBody struct {
	Summary string `json:"summary"`
}

func (h HTTPAdapter) Summarize(ctx context.Context, a models.StoreAnalysis) (string, int64, error) {
	if h.Client == nil {
		h.Client = &http.Client{Timeout: 15 * time.Second}
	}

	counts := make(map[string]int, len(a.CategoryCounts))
	for cat, n := range a.CategoryCounts {
		counts[string(cat)] = n
	}
	payload := requestBody{
		StoreID:         a.StoreID,
		StoreName:       a.StoreName,
		TotalTickets:    a.TotalTickets,
		CategoryCounts:  counts,
		StatusHistogram: a.StatusHistogram,
	}
	b, _ := json.Marshal(payload)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+"/summarize", bytes.NewBuffer(b))
	if err != nil {
		return "", 0, err
	}

	req.Header.Set("Content-Type", "application/json")
	resp, err := h.Client.Do(req)
	if err != nil {
		return "", time.Since(start).Milliseconds(), err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", time.Since(start).Milliseconds(), errors.New("narrative service error")
	}

	var r responseBody
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", time.Since(start).Milliseconds(), err
	}
	return r.Summary, time.Since(start).Milliseconds(), nil
}
