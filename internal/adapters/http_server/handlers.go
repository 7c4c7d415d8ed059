// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"stayhook/internal/app"
	"stayhook/internal/domain"
)

const maxWebhookBody = 1 << 20

type Handlers struct {
	Q      *app.QueryService
	Intake *app.IntakeService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type accepted struct {
	EventID string             `json:"event_id"`
	Status  domain.EventStatus `json:"status"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/accounts/{account}/webhooks/{source}", h.receiveWebhook)
	s.mux.Get("/v1/accounts/{account}/match", h.suggest)
	s.mux.Get("/v1/events/{id}", h.getEvent)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// receiveWebhook records the notification and acks immediately; matching and
// delivery happen in the processor.
func (h *Handlers) receiveWebhook(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	source := strings.ToLower(chi.URLParam(r, "source"))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeProblem(w, http.StatusRequestEntityTooLarge, "Payload Too Large", "webhook body exceeds 1MiB")
			return
		}
		writeProblem(w, http.StatusBadRequest, "Bad Request", "could not read body")
		return
	}

	ev, err := h.Intake.Record(r.Context(), account, source, body)
	switch {
	case errors.Is(err, app.ErrBadBody):
		writeProblem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	case err != nil:
		log.Error().Err(err).Str("account_id", account).Msg("record webhook failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "event could not be recorded")
		return
	}
	writeJSON(w, http.StatusAccepted, accepted{EventID: ev.ID, Status: ev.Status})
}

func (h *Handlers) getEvent(w http.ResponseWriter, r *http.Request) {
	view, err := h.Q.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "event not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("get event failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}

	etag, body := calcETagAndBody(view)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getEvent body")
	}
}

func (h *Handlers) suggest(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeProblem(w, http.StatusBadRequest, "Missing name", "name query parameter is required")
		return
	}
	platform := domain.ParsePlatform(r.URL.Query().Get("platform"))

	out, err := h.Q.SuggestProperties(r.Context(), chi.URLParam(r, "account"), name, platform)
	if err != nil {
		log.Error().Err(err).Msg("suggest properties failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	writeJSON(w, http.StatusOK, out)
}
