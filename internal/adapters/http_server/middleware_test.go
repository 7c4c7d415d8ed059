package httpserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	httpserver "stayhook/internal/adapters/http_server"
)

func TestLogger_TagsWebhookAccountAndSource(t *testing.T) {
	var buf bytes.Buffer
	r := chi.NewRouter()
	r.Use(httpserver.Logger(zerolog.New(&buf)))
	r.Post("/v1/accounts/{account}/webhooks/{source}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/accounts/acc-1/webhooks/Airbnb", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("access log is not one JSON line: %v (%q)", err, buf.String())
	}
	if line["account_id"] != "acc-1" || line["source"] != "airbnb" {
		t.Fatalf("missing webhook tags: %v", line)
	}
	if line["route"] != "/v1/accounts/{account}/webhooks/{source}" || line["status"] != float64(http.StatusAccepted) {
		t.Fatalf("unexpected access line: %v", line)
	}
}

func TestLogger_OmitsTagsOutsideAccountRoutes(t *testing.T) {
	var buf bytes.Buffer
	r := chi.NewRouter()
	r.Use(httpserver.Logger(zerolog.New(&buf)))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode access log: %v", err)
	}
	if _, ok := line["source"]; ok {
		t.Fatalf("healthz should not carry a source: %v", line)
	}
	if _, ok := line["account_id"]; ok {
		t.Fatalf("healthz should not carry an account: %v", line)
	}
}
