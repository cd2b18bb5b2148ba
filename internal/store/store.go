// Package store provides persistence for session records and the
// per-session mutation log.
package store

import (
	"context"
	"time"

	"draftwire/internal/document"
)

// Session statuses.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusError    = "error"
)

// SessionRecord is one editing session as persisted.
type SessionRecord struct {
	SessionID string
	Message   string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MutationRecord is one entry of a session's ordered mutation log.
type MutationRecord struct {
	SessionID string            `json:"sessionId"`
	Seq       int               `json:"seq"`
	Mutation  document.Mutation `json:"mutation"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Repository defines the interface for persisting sessions and their
// mutation logs. Document state itself is never persisted here: the
// remote editor owns the document, this side only records the deltas it
// emitted.
type Repository interface {
	// CreateSession records a new session in the running state.
	CreateSession(ctx context.Context, rec *SessionRecord) error

	// FinishSession marks a session complete or failed.
	FinishSession(ctx context.Context, sessionID, status string) error

	// AppendMutation appends one mutation to a session's log.
	AppendMutation(ctx context.Context, sessionID string, seq int, m document.Mutation) error

	// ListMutations returns a session's mutation log in sequence order.
	ListMutations(ctx context.Context, sessionID string) ([]MutationRecord, error)

	// Ping verifies connectivity to the backing database.
	Ping(ctx context.Context) error

	// Close closes the underlying database.
	Close() error
}
