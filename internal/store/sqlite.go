package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"draftwire/internal/document"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// WAL mode for better concurrency between session writers and readers.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		message TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);

	CREATE TABLE IF NOT EXISTS mutations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		operation TEXT NOT NULL,
		section_index INTEGER,
		title TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		image_description TEXT NOT NULL DEFAULT '',
		position TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		UNIQUE(session_id, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_mutations_session ON mutations(session_id, seq);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// CreateSession records a new session in the running state.
func (s *SQLiteStore) CreateSession(ctx context.Context, rec *SessionRecord) error {
	now := time.Now().Unix()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, message, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Message, StatusRunning, now, now)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// FinishSession marks a session complete or failed.
func (s *SQLiteStore) FinishSession(ctx context.Context, sessionID, status string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET status = ?, updated_at = ? WHERE session_id = ?`,
		status, time.Now().Unix(), sessionID)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	return nil
}

// AppendMutation appends one mutation to a session's log.
func (s *SQLiteStore) AppendMutation(ctx context.Context, sessionID string, seq int, m document.Mutation) error {
	var sectionIndex sql.NullInt64
	if m.SectionIndex != nil {
		sectionIndex = sql.NullInt64{Int64: int64(*m.SectionIndex), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mutations (session_id, seq, operation, section_index, title, content,
			image_url, image_description, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, seq, string(m.Operation), sectionIndex, m.Title, m.Content,
		m.ImageURL, m.ImageDescription, m.Position, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("append mutation: %w", err)
	}
	return nil
}

// ListMutations returns a session's mutation log in sequence order.
func (s *SQLiteStore) ListMutations(ctx context.Context, sessionID string) ([]MutationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, operation, section_index, title, content,
		       image_url, image_description, position, created_at
		FROM mutations WHERE session_id = ? ORDER BY seq`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("list mutations: %w", err)
	}
	defer rows.Close()

	var out []MutationRecord
	for rows.Next() {
		var rec MutationRecord
		var op string
		var sectionIndex sql.NullInt64
		var createdAt int64
		err := rows.Scan(&rec.Seq, &op, &sectionIndex, &rec.Mutation.Title, &rec.Mutation.Content,
			&rec.Mutation.ImageURL, &rec.Mutation.ImageDescription, &rec.Mutation.Position, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scan mutation: %w", err)
		}
		rec.SessionID = sessionID
		rec.Mutation.Operation = document.Op(op)
		if sectionIndex.Valid {
			idx := int(sectionIndex.Int64)
			rec.Mutation.SectionIndex = &idx
		}
		rec.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mutations: %w", err)
	}
	return out, nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
