// Package audit records every field conversion in a SQLite database so the
// provenance of each normalized value can be inspected after the fact.
package audit

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/couchcryptid/mine-data-normalizer/internal/domain"
)

//go:embed schema.sql
var schema string

// Store appends conversion rows for one run. A run is one process lifetime,
// identified by a random UUID.
type Store struct {
	db    *sql.DB
	runID string
}

// Entry is one recorded field conversion.
type Entry struct {
	RunID       string
	RecordID    string
	MineName    string
	Field       string
	Category    domain.Category
	Role        domain.FieldRole
	Outcome     domain.Outcome
	Value       float64
	Unit        string
	Formatted   string
	Confidence  float64
	Provenance  string
	RawText     string
	ProcessedAt time.Time
}

// Open opens or creates the database at path and starts a new run.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	// One writer keeps SQLite lock contention out of the pipeline.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply audit schema: %w", err)
	}

	s := &Store{db: db, runID: uuid.NewString()}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at) VALUES (?, ?)`,
		s.runID, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		db.Close()
		return nil, fmt.Errorf("start audit run: %w", err)
	}
	return s, nil
}

// RunID identifies the rows written by this Store.
func (s *Store) RunID() string { return s.runID }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Record writes the conversions of each record in one transaction.
func (s *Store) Record(ctx context.Context, records []domain.MineRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO conversions (
			run_id, record_id, mine_name, field, category, role, outcome,
			value, unit, formatted, confidence, provenance, raw_text, processed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare audit insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		processedAt := rec.ProcessedAt.UTC().Format(time.RFC3339Nano)
		for _, c := range rec.Conversions {
			r := c.Result
			if _, err := stmt.ExecContext(ctx,
				s.runID, rec.ID, rec.MineName, c.Field, string(r.Category), string(r.Role), string(r.Outcome),
				r.Value, r.Unit, r.Formatted, r.Confidence, r.Provenance, c.Raw, processedAt,
			); err != nil {
				return fmt.Errorf("insert conversion %s/%s: %w", rec.ID, c.Field, err)
			}
		}
	}
	return tx.Commit()
}

// Conversions returns the rows recorded for a record ID across all runs,
// oldest first.
func (s *Store) Conversions(ctx context.Context, recordID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, record_id, mine_name, field, category, role, outcome,
		       value, unit, formatted, confidence, provenance, raw_text, processed_at
		FROM conversions WHERE record_id = ? ORDER BY id`, recordID)
	if err != nil {
		return nil, fmt.Errorf("query conversions: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e           Entry
			processedAt string
		)
		if err := rows.Scan(&e.RunID, &e.RecordID, &e.MineName, &e.Field, &e.Category, &e.Role, &e.Outcome,
			&e.Value, &e.Unit, &e.Formatted, &e.Confidence, &e.Provenance, &e.RawText, &processedAt); err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		if e.ProcessedAt, err = time.Parse(time.RFC3339Nano, processedAt); err != nil {
			return nil, fmt.Errorf("parse processed_at: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// OutcomeCounts tallies this run's conversions by outcome.
func (s *Store) OutcomeCounts(ctx context.Context) (map[domain.Outcome]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT outcome, COUNT(*) FROM conversions WHERE run_id = ? GROUP BY outcome`, s.runID)
	if err != nil {
		return nil, fmt.Errorf("count outcomes: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Outcome]int)
	for rows.Next() {
		var (
			outcome domain.Outcome
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scan outcome count: %w", err)
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}
