// Package journal records session operations in a local SQLite database so
// past loads, searches and writes can be reviewed with "kgadmin history".
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotOpen is returned by operations on a closed Store.
var ErrNotOpen = errors.New("journal not opened")

// Entry is one finished session operation.
type Entry struct {
	ID          string        `json:"id"`
	Op          string        `json:"op"`
	Outcome     string        `json:"outcome"`
	Duration    time.Duration `json:"duration"`
	Environment string        `json:"environment,omitempty"`
	Nodes       int           `json:"nodes"`
	Edges       int           `json:"edges"`
	StartedAt   time.Time     `json:"startedAt"`
}

// Query selects journal entries. Zero values select everything.
type Query struct {
	Op      string
	Outcome string
	Limit   int
}

// Store is a journal backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the journal at path and migrates it.
// Use ":memory:" for a throwaway journal.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
		dsn = "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping journal: %w", err)
	}
	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

// NewStore wraps an already migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Path returns the file the journal was opened from.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Record appends e. An empty ID is replaced by a new UUID and a zero
// StartedAt by the current time.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if s.db == nil {
		return ErrNotOpen
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO operations (id, op, outcome, duration_ms, environment, nodes, edges, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Op, e.Outcome, e.Duration.Milliseconds(), e.Environment, e.Nodes, e.Edges, e.StartedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to record operation: %w", err)
	}
	return nil
}

// List returns the entries matching q, newest first.
func (s *Store) List(ctx context.Context, q Query) ([]Entry, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	var (
		where []string
		args  []any
	)
	if q.Op != "" {
		where = append(where, "op = ?")
		args = append(args, q.Op)
	}
	if q.Outcome != "" {
		where = append(where, "outcome = ?")
		args = append(args, q.Outcome)
	}

	query := `SELECT id, op, outcome, duration_ms, environment, nodes, edges, started_at FROM operations`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY started_at DESC, rowid DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			e          Entry
			durationMS int64
			startedAt  int64
		)
		if err := rows.Scan(&e.ID, &e.Op, &e.Outcome, &durationMS, &e.Environment, &e.Nodes, &e.Edges, &startedAt); err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.StartedAt = time.UnixMilli(startedAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	return entries, nil
}

// Prune deletes entries that started before cutoff and returns how many
// were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	if s.db == nil {
		return 0, ErrNotOpen
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM operations WHERE started_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune operations: %w", err)
	}
	return res.RowsAffected()
}
