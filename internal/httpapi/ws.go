package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	"draftwire/internal/session"
	"draftwire/internal/stream"
)

// wsWriter adapts websocket.Conn to io.Writer so the same Sink and frame
// encoding serve both transports. Each write carries one or more whole
// frames; clients may still run them through a Dispatcher as a byte
// stream.
type wsWriter struct {
	conn *websocket.Conn
	ctx  context.Context
}

func (w *wsWriter) Write(p []byte) (int, error) {
	if w.ctx.Err() != nil {
		return 0, w.ctx.Err()
	}
	if err := w.conn.Write(w.ctx, websocket.MessageText, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// HandleWebSocket runs one editing session over a websocket. The first
// client message carries the stream request; after that the connection
// only transports frames outward.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	opts := &websocket.AcceptOptions{}
	if h.cfg.IsDevelopment() {
		opts.InsecureSkipVerify = true
	} else if h.cfg.FrontendURL != "" {
		opts.OriginPatterns = []string{h.cfg.FrontendURL}
	}

	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "session ended unexpectedly")

	ctx := r.Context()

	var req streamRequest
	_, payload, err := conn.Read(ctx)
	if err != nil {
		slog.Info("websocket closed before request", "error", err)
		return
	}
	if err := json.Unmarshal(payload, &req); err != nil || req.Message == "" {
		_ = conn.Close(websocket.StatusUnsupportedData, "invalid stream request")
		return
	}

	sessionID := SessionIDFromContext(ctx)
	slog.Info("websocket session started", "session_id", sessionID)

	sink := stream.NewSink(&wsWriter{conn: conn, ctx: ctx}, nil)
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

	sess.Run(ctx, h.runner)

	_ = conn.Close(websocket.StatusNormalClosure, "session complete")
	slog.Info("websocket session finished", "session_id", sess.ID())
}
