// Package history records completed search runs in a SQLite database.
//
// History is an observer: recording failures never fail the search
// itself, and the store keeps run metadata only (what was searched, how
// long it took, how many matches), never result sets.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Run is one recorded search invocation.
type Run struct {
	ID             string
	StartedAt      time.Time
	Duration       time.Duration
	StartDir       string
	Mode           string
	MatchCount     int
	EntriesVisited int
	Completed      bool
	Error          string
}

// Stats aggregates the recorded runs.
type Stats struct {
	TotalRuns    int
	TotalMatches int
	Aborted      int
	RunsPerMode  map[string]int
}

// Store manages the SQLite database holding run history.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if necessary) the history database at dbPath
// and initializes the schema. ":memory:" is accepted for tests.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// busy_timeout first so the remaining pragmas wait on locks held by a
	// concurrently initializing process.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// execWithRetry executes a SQL statement with exponential backoff retry on
// "database is locked" errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one run.
func (s *Store) Record(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, duration_ms, start_dir, mode,
			match_count, entries_visited, completed, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC(),
		run.Duration.Milliseconds(),
		run.StartDir,
		run.Mode,
		run.MatchCount,
		run.EntriesVisited,
		run.Completed,
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, started_at, duration_ms, start_dir, mode,
			match_count, entries_visited, completed, error
		FROM runs
		ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var durationMS int64
		if err := rows.Scan(&run.ID, &run.StartedAt, &durationMS, &run.StartDir,
			&run.Mode, &run.MatchCount, &run.EntriesVisited, &run.Completed, &run.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Stats aggregates all recorded runs.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{RunsPerMode: make(map[string]int)}

	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(match_count), 0),
			COALESCE(SUM(CASE WHEN completed = 0 THEN 1 ELSE 0 END), 0)
		FROM runs`)
	if err := row.Scan(&stats.TotalRuns, &stats.TotalMatches, &stats.Aborted); err != nil {
		return Stats{}, fmt.Errorf("aggregate runs: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT mode, COUNT(*) FROM runs GROUP BY mode`)
	if err != nil {
		return Stats{}, fmt.Errorf("aggregate modes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var mode string
		var count int
		if err := rows.Scan(&mode, &count); err != nil {
			return Stats{}, fmt.Errorf("scan mode count: %w", err)
		}
		stats.RunsPerMode[mode] = count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("iterate mode counts: %w", err)
	}

	return stats, nil
}

// Clear deletes run records. A nil cutoff deletes everything; otherwise
// only runs started before the cutoff are removed. Returns the number of
// deleted rows.
func (s *Store) Clear(ctx context.Context, olderThan *time.Time) (int64, error) {
	var res sql.Result
	var err error
	if olderThan == nil {
		res, err = s.db.ExecContext(ctx, `DELETE FROM runs`)
	} else {
		res, err = s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, olderThan.UTC())
	}
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted runs: %w", err)
	}
	return deleted, nil
}
