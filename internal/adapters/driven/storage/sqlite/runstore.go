// Package sqlite provides the SQLite-backed ingest-run history store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/membox-labs/membox-cli/internal/core/domain"
	"github.com/membox-labs/membox-cli/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.IngestRunStore = (*RunStore)(nil)

// schema creates the history table on first open.
const schema = `
CREATE TABLE IF NOT EXISTS ingest_runs (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	collection  TEXT NOT NULL,
	items       INTEGER NOT NULL,
	error       TEXT,
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL
)`

// RunStore records ingest runs in a local SQLite database.
type RunStore struct {
	db   *sql.DB
	path string
}

// NewRunStore opens (or creates) the history database at the given data
// directory. If dataDir is empty, defaults to ~/.membox/data.
func NewRunStore(dataDir string) (*RunStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".membox", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "history.db")

	// WAL mode for better concurrency.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &RunStore{db: db, path: dbPath}, nil
}

// Record persists one ingest run.
func (s *RunStore) Record(ctx context.Context, run driven.IngestRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ingest_runs (id, source, collection, items, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			items = excluded.items,
			error = excluded.error,
			finished_at = excluded.finished_at
	`, run.ID, string(run.Source), run.Collection, run.Items,
		nullString(run.Error),
		run.StartedAt.Format(time.RFC3339),
		run.FinishedAt.Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("recording ingest run: %w", err)
	}
	return nil
}

// Recent returns the most recent runs, newest first.
func (s *RunStore) Recent(ctx context.Context, limit int) ([]driven.IngestRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, collection, items, error, started_at, finished_at
		FROM ingest_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying ingest runs: %w", err)
	}
	defer rows.Close()

	var runs []driven.IngestRun //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ingest runs: %w", err)
	}

	return runs, nil
}

// Close closes the database connection.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *RunStore) Path() string {
	return s.path
}

// scanRun scans one ingest run row.
func scanRun(rows *sql.Rows) (*driven.IngestRun, error) {
	var run driven.IngestRun
	var source string
	var errMsg sql.NullString
	var startedAt, finishedAt string

	if err := rows.Scan(&run.ID, &source, &run.Collection, &run.Items,
		&errMsg, &startedAt, &finishedAt); err != nil {
		return nil, fmt.Errorf("scanning ingest run: %w", err)
	}

	run.Source = domain.SourceTag(source)
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	run.StartedAt = parseTime(startedAt)
	run.FinishedAt = parseTime(finishedAt)

	return &run, nil
}

// parseTime parses an RFC3339 string, returning zero time on failure.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
