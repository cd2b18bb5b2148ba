// Package httpapi exposes editing sessions over HTTP: the SSE stream
// endpoint, the websocket variant carrying the same frames, and the
// mutation-log read endpoint.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"draftwire/internal/config"
	"draftwire/internal/session"
	"draftwire/internal/store"
	"draftwire/internal/stream"
	"draftwire/internal/tools"
)

// Handler handles editing-session HTTP requests.
type Handler struct {
	repo    store.Repository
	runner  session.Runner
	backend *tools.BackendClient
	cfg     *config.Config
}

// NewHandler creates the session handler. backend may be nil, which
// leaves the search tools out of each session's toolset.
func NewHandler(repo store.Repository, runner session.Runner, backend *tools.BackendClient, cfg *config.Config) *Handler {
	return &Handler{repo: repo, runner: runner, backend: backend, cfg: cfg}
}

// RegisterRoutes registers session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/session", func(r chi.Router) {
		r.Post("/stream", h.HandleStream)
		r.Get("/{id}/mutations", h.HandleMutations)
	})
	r.Get("/ws/session", h.HandleWebSocket)
}

// streamRequest is the body of POST /api/session/stream.
type streamRequest struct {
	Message      string `json:"message"`
	DocumentHTML string `json:"documentHtml"`
}

// HandleStream starts one editing session and streams its events until
// the agent finishes, the session times out, or the client disconnects.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxRequestBodySize)

	var req streamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, `{"error": "message is required"}`, http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, `{"error": "streaming not supported"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sessionID := SessionIDFromContext(r.Context())
	slog.Info("session stream started",
		"session_id", sessionID,
		"message_length", len(req.Message),
		"document_length", len(req.DocumentHTML),
	)

	sink := stream.NewSink(w, flusher)
	sess := session.New(session.Config{
		Request: session.Request{
			SessionID:    sessionID,
			Message:      req.Message,
			DocumentHTML: req.DocumentHTML,
		},
		Sink:    sink,
		Repo:    h.repo,
		Backend: h.backend,
		Timeout: h.cfg.SessionTimeout,
	})

	stopKeepalive := h.startKeepalive(sink)
	defer stopKeepalive()

	sess.Run(r.Context(), h.runner)
	slog.Info("session stream finished", "session_id", sess.ID())
}

// startKeepalive pings the sink until the returned stop function is
// called. Pings are comment frames: dispatchers skip them.
func (h *Handler) startKeepalive(sink *stream.Sink) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(h.cfg.KeepaliveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				sink.Ping()
			}
		}
	}()
	return func() { close(done) }
}

// HandleMutations returns the persisted mutation log of one session.
func (h *Handler) HandleMutations(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	log, err := h.repo.ListMutations(r.Context(), sessionID)
	if err != nil {
		slog.Error("failed to list mutations", "session_id", sessionID, "error", err)
		http.Error(w, `{"error": "failed to read mutation log"}`, http.StatusInternalServerError)
		return
	}
	if log == nil {
		log = []store.MutationRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"sessionId": sessionID,
		"mutations": log,
	}); err != nil {
		slog.Warn("failed to write mutation log response", "session_id", sessionID, "error", err)
	}
}
