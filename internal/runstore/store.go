// Package runstore is a local SQLite-backed history of generation runs.
// Every run is recorded with its outcome so past generations can be
// inspected without keeping the artifacts around.
package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Store persists run records.
type Store struct {
	db *sql.DB
}

// Record is one generation run.
type Record struct {
	RunID           string `json:"run_id"`
	Description     string `json:"description"`
	SiteTitle       string `json:"site_title"`
	Provider        string `json:"provider"`
	Status          string `json:"status"`
	WarningCount    int    `json:"warning_count"`
	DefectCount     int    `json:"defect_count"`
	TemplatePath    string `json:"template_path"`
	ReportPath      string `json:"report_path"`
	CreatedAtUnixMs int64  `json:"created_at_unix_ms"`
}

// Run outcome statuses.
const (
	StatusClean   = "clean"
	StatusDefects = "defects"
	StatusFailed  = "failed"
)

// Open opens or creates the store at path and applies the schema.
func Open(path string) (*Store, error) {
	p := filepath.Clean(strings.TrimSpace(path))
	if p == "" {
		return nil, errors.New("missing db path")
	}
	if dir := filepath.Dir(p); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save inserts a run record. Run IDs are unique; saving the same run twice
// is an error.
func (s *Store) Save(ctx context.Context, r Record) error {
	if strings.TrimSpace(r.RunID) == "" {
		return errors.New("missing run id")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs (
  run_id, description, site_title, provider, status,
  warning_count, defect_count, template_path, report_path, created_at_unix_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Description, r.SiteTitle, r.Provider, r.Status,
		r.WarningCount, r.DefectCount, r.TemplatePath, r.ReportPath, r.CreatedAtUnixMs,
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", r.RunID, err)
	}
	return nil
}

// Get returns the record for one run, or nil when it does not exist.
func (s *Store) Get(ctx context.Context, runID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT run_id, description, site_title, provider, status,
       warning_count, defect_count, template_path, report_path, created_at_unix_ms
FROM runs WHERE run_id = ?`, runID)

	var r Record
	err := row.Scan(&r.RunID, &r.Description, &r.SiteTitle, &r.Provider, &r.Status,
		&r.WarningCount, &r.DefectCount, &r.TemplatePath, &r.ReportPath, &r.CreatedAtUnixMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	return &r, nil
}

// ListRecent returns up to limit records, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT run_id, description, site_title, provider, status,
       warning_count, defect_count, template_path, report_path, created_at_unix_ms
FROM runs ORDER BY created_at_unix_ms DESC, run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.RunID, &r.Description, &r.SiteTitle, &r.Provider, &r.Status,
			&r.WarningCount, &r.DefectCount, &r.TemplatePath, &r.ReportPath, &r.CreatedAtUnixMs); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func initSchema(db *sql.DB) error {
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		return err
	}
	if _, err := db.Exec(`PRAGMA busy_timeout=3000;`); err != nil {
		return err
	}

	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS runs (
  run_id             TEXT PRIMARY KEY,
  description        TEXT NOT NULL,
  site_title         TEXT NOT NULL,
  provider           TEXT NOT NULL,
  status             TEXT NOT NULL,
  warning_count      INTEGER NOT NULL DEFAULT 0,
  defect_count       INTEGER NOT NULL DEFAULT 0,
  template_path      TEXT NOT NULL DEFAULT '',
  report_path        TEXT NOT NULL DEFAULT '',
  created_at_unix_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at_unix_ms DESC);
`)
	return err
}
