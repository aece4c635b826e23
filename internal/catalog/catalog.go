// Package catalog persists run metadata in a SQLite database next to
// the output streams: which runs happened, how each file fared, and the
// cross-file reference edges a run discovered. The streams themselves
// stay on disk as flat files; the catalog only describes them.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mvp-joe/territory/internal/scanner"
)

// Run is one recorded scan run.
type Run struct {
	ID         string
	Root       string
	NodesPath  string
	SearchPath string
	StartedAt  time.Time
	Duration   time.Duration
	FileCount  int
	Failed     int
}

// Catalog wraps the run metadata database.
type Catalog struct {
	db *sql.DB
}

// Open opens (creating if needed) the catalog database at path.
func Open(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Catalog{db: db}, nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func createSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"runs", createRunsTable},
		{"run_files", createRunFilesTable},
		{"file_refs", createFileRefsTable},
	}
	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}
	for _, idx := range []string{
		"CREATE INDEX IF NOT EXISTS idx_run_files_run ON run_files(run_id)",
		"CREATE INDEX IF NOT EXISTS idx_file_refs_run ON file_refs(run_id)",
	} {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	root TEXT NOT NULL,
	nodes_path TEXT NOT NULL,
	search_path TEXT NOT NULL,
	started_at TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	file_count INTEGER NOT NULL,
	failed_count INTEGER NOT NULL
)`

const createRunFilesTable = `
CREATE TABLE IF NOT EXISTS run_files (
	run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	path TEXT NOT NULL,
	status TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT ''
)`

const createFileRefsTable = `
CREATE TABLE IF NOT EXISTS file_refs (
	run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	from_path TEXT NOT NULL,
	to_path TEXT NOT NULL
)`

// RecordRun stores one finished crawl result with its per-file statuses
// and reference edges, atomically.
func (c *Catalog) RecordRun(res *scanner.Result, startedAt time.Time) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin run transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = sq.Insert("runs").
		Columns("run_id", "root", "nodes_path", "search_path", "started_at", "duration_ms", "file_count", "failed_count").
		Values(res.RunID, res.Root, res.NodesPath, res.SearchPath,
			startedAt.UTC().Format(time.RFC3339Nano),
			res.Duration.Milliseconds(), len(res.Files), res.Failed()).
		RunWith(tx).
		Exec()
	if err != nil {
		return fmt.Errorf("insert run %s: %w", res.RunID, err)
	}

	for _, f := range res.Files {
		_, err := sq.Insert("run_files").
			Columns("run_id", "path", "status", "detail").
			Values(res.RunID, f.Path, string(f.Status), f.Detail).
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("insert run file %s: %w", f.Path, err)
		}
	}

	for _, ref := range res.Refs {
		_, err := sq.Insert("file_refs").
			Columns("run_id", "from_path", "to_path").
			Values(res.RunID, ref.From, ref.To).
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("insert file ref %s -> %s: %w", ref.From, ref.To, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run transaction: %w", err)
	}
	return nil
}

// LatestRun returns the most recently started run, or nil when the
// catalog holds none.
func (c *Catalog) LatestRun() (*Run, error) {
	row := sq.Select("run_id", "root", "nodes_path", "search_path", "started_at", "duration_ms", "file_count", "failed_count").
		From("runs").
		OrderBy("started_at DESC").
		Limit(1).
		RunWith(c.db).
		QueryRow()

	var r Run
	var startedAt string
	var durationMS int64
	err := row.Scan(&r.ID, &r.Root, &r.NodesPath, &r.SearchPath, &startedAt, &durationMS, &r.FileCount, &r.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}
	if r.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return nil, fmt.Errorf("corrupt started_at for run %s: %w", r.ID, err)
	}
	r.Duration = time.Duration(durationMS) * time.Millisecond
	return &r, nil
}

// RunFiles returns the per-file outcomes of the given run.
func (c *Catalog) RunFiles(runID string) ([]scanner.FileResult, error) {
	rows, err := sq.Select("path", "status", "detail").
		From("run_files").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("path").
		RunWith(c.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query run files: %w", err)
	}
	defer rows.Close()

	var out []scanner.FileResult
	for rows.Next() {
		var f scanner.FileResult
		var status string
		if err := rows.Scan(&f.Path, &status, &f.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan run file row: %w", err)
		}
		f.Status = scanner.FileStatus(status)
		out = append(out, f)
	}
	return out, rows.Err()
}

// RunRefs returns the reference edges discovered by the given run.
func (c *Catalog) RunRefs(runID string) ([]scanner.RefEdge, error) {
	rows, err := sq.Select("from_path", "to_path").
		From("file_refs").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("from_path", "to_path").
		RunWith(c.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query file refs: %w", err)
	}
	defer rows.Close()

	var out []scanner.RefEdge
	for rows.Next() {
		var e scanner.RefEdge
		if err := rows.Scan(&e.From, &e.To); err != nil {
			return nil, fmt.Errorf("failed to scan file ref row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
