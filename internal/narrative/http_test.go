package narrative

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fichaflow/backend/internal/models"
)

func TestHTTPAdapterSummarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/summarize" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["store_id"] != "porto" {
			t.Fatalf("store_id = %v", req["store_id"])
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"summary": "<p>resumo</p>"})
	}))
	defer srv.Close()

	a := HTTPAdapter{BaseURL: srv.URL}
	text, _, err := a.Summarize(context.Background(), models.StoreAnalysis{StoreID: "porto", StoreName: "Porto"})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if text != "<p>resumo</p>" {
		t.Fatalf("text = %q", text)
	}
}

func TestHTTPAdapterServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	a := HTTPAdapter{BaseURL: srv.URL}
	if _, _, err := a.Summarize(context.Background(), models.StoreAnalysis{StoreID: "x"}); err == nil {
		t.Fatalf("expected an error on non-2xx response")
	}
}
