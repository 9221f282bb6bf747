package listing

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store keeps run history and the latest listings snapshot in SQLite so
// consecutive runs can be compared and reported on.
type Store struct {
	db   *sql.DB
	path string
}

// RunSummary is one recorded pipeline run.
type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Sources    int
	Listings   int
	Enriched   int
	Skipped    int
	Unmatched  int
}

// OpenStore initializes or connects to the run-history database.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) applyMigrations(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
            run_id TEXT PRIMARY KEY,
            started_at TEXT NOT NULL,
            finished_at TEXT NOT NULL,
            sources INTEGER NOT NULL DEFAULT 0,
            listings INTEGER NOT NULL DEFAULT 0,
            enriched INTEGER NOT NULL DEFAULT 0,
            skipped INTEGER NOT NULL DEFAULT 0,
            unmatched INTEGER NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS listings (
            run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
            venue TEXT NOT NULL,
            title TEXT NOT NULL,
            date TEXT NOT NULL,
            time TEXT NOT NULL,
            tmdb_id INTEGER NOT NULL DEFAULT 0,
            payload TEXT NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_listings_run ON listings(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}

// RecordRun persists a run summary and its listings in one transaction.
func (s *Store) RecordRun(ctx context.Context, summary RunSummary, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO runs (run_id, started_at, finished_at, sources, listings, enriched, skipped, unmatched)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.RunID,
		summary.StartedAt.UTC().Format(time.RFC3339Nano),
		summary.FinishedAt.UTC().Format(time.RFC3339Nano),
		summary.Sources,
		summary.Listings,
		summary.Enriched,
		summary.Skipped,
		summary.Unmatched,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(
		ctx,
		`INSERT INTO listings (run_id, venue, title, date, time, tmdb_id, payload)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare listing insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		payload, marshalErr := json.Marshal(record)
		if marshalErr != nil {
			return fmt.Errorf("marshal listing payload: %w", marshalErr)
		}
		if _, execErr := stmt.ExecContext(ctx, summary.RunID, record.Venue, record.Title, record.Date, record.Time, record.TMDBID, string(payload)); execErr != nil {
			return fmt.Errorf("insert listing: %w", execErr)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent run summaries, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT run_id, started_at, finished_at, sources, listings, enriched, skipped, unmatched
         FROM runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var summary RunSummary
		var started, finished string
		if err := rows.Scan(&summary.RunID, &started, &finished, &summary.Sources, &summary.Listings, &summary.Enriched, &summary.Skipped, &summary.Unmatched); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		summary.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		summary.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return summaries, nil
}

// RunListings returns the listings recorded for one run.
func (s *Store) RunListings(ctx context.Context, runID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM listings WHERE run_id = ? ORDER BY venue, date, time`, strings.TrimSpace(runID))
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		var record Record
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			return nil, fmt.Errorf("decode listing payload: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return records, nil
}
