// Package history keeps a queryable audit trail of detected presence
// transitions in SQLite, separate from the shared state file: the state
// file holds only the latest record per favorite, the history holds every
// transition the watcher ever saw.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/favwatch/internal/state"
	"git.home.luguber.info/inful/favwatch/internal/watch"
)

// Entry is one recorded transition.
type Entry struct {
	ID         int64
	CycleID    string
	Character  string
	Event      string
	Presence   state.Presence
	ObservedAt time.Time
}

// SQLiteStore implements watch.TransitionSink using SQLite.
// Use ":memory:" for an in-memory database, or a file path for persistence.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (and initializes) the transition history database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS transitions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cycle_id TEXT NOT NULL,
		character TEXT NOT NULL,
		event TEXT NOT NULL,
		presence TEXT NOT NULL,
		observed_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_character ON transitions(character);
	CREATE INDEX IF NOT EXISTS idx_observed_at ON transitions(observed_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends a transition.
func (s *SQLiteStore) Record(ctx context.Context, t watch.Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO transitions (cycle_id, character, event, presence, observed_at) VALUES (?, ?, ?, ?, ?)",
		t.CycleID, t.Character, t.Event.String(), string(t.Presence), t.ObservedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert transition: %w", err)
	}
	return nil
}

// Recent returns the newest transitions, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, cycle_id, character, event, presence, observed_at FROM transitions ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ByCharacter returns the newest transitions for one character, newest first.
func (s *SQLiteStore) ByCharacter(ctx context.Context, name string, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, cycle_id, character, event, presence, observed_at FROM transitions WHERE character = ? COLLATE NOCASE ORDER BY id DESC LIMIT ?",
		name, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var presence string
		var observedUnix int64

		if err := rows.Scan(&e.ID, &e.CycleID, &e.Character, &e.Event, &presence, &observedUnix); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		e.Presence = state.Presence(presence)
		e.ObservedAt = time.Unix(observedUnix, 0)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
