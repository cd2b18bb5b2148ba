package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const sessionIDKey contextKey = "sessionID"

// sessionIDHeader lets a client pin its own session identifier, e.g. to
// correlate the stream with a later mutation-log read.
const sessionIDHeader = "X-Session-ID"

// Identity assigns every request a session ID: the client's own if the
// header carries one, a fresh UUID otherwise.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(sessionIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(sessionIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionIDKey, id)))
	})
}

// SessionIDFromContext returns the request's session ID, or "".
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}
