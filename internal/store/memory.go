package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"draftwire/internal/document"
)

// MemoryStore is an in-memory Repository for DB-less runs and tests.
type MemoryStore struct {
	mu        sync.Mutex
	sessions  map[string]*SessionRecord
	mutations map[string][]MutationRecord
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		sessions:  make(map[string]*SessionRecord),
		mutations: make(map[string][]MutationRecord),
	}
}

// CreateSession records a new session in the running state.
func (s *MemoryStore) CreateSession(_ context.Context, rec *SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[rec.SessionID]; exists {
		return fmt.Errorf("session %q already exists", rec.SessionID)
	}
	now := time.Now()
	s.sessions[rec.SessionID] = &SessionRecord{
		SessionID: rec.SessionID,
		Message:   rec.Message,
		Status:    StatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

// FinishSession marks a session complete or failed.
func (s *MemoryStore) FinishSession(_ context.Context, sessionID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session %q not found", sessionID)
	}
	rec.Status = status
	rec.UpdatedAt = time.Now()
	return nil
}

// AppendMutation appends one mutation to a session's log.
func (s *MemoryStore) AppendMutation(_ context.Context, sessionID string, seq int, m document.Mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutations[sessionID] = append(s.mutations[sessionID], MutationRecord{
		SessionID: sessionID,
		Seq:       seq,
		Mutation:  m,
		CreatedAt: time.Now(),
	})
	return nil
}

// ListMutations returns a session's mutation log in sequence order.
func (s *MemoryStore) ListMutations(_ context.Context, sessionID string) ([]MutationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]MutationRecord, len(s.mutations[sessionID]))
	copy(out, s.mutations[sessionID])
	return out, nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close releases nothing.
func (s *MemoryStore) Close() error { return nil }
