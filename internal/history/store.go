// Package history records wsfix runs in a SQLite database so past results can
// be listed and inspected with `wsfix history`.
package history

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
	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/wsfix/internal/models"
)

// ErrRunNotFound is returned when no run matches an ID or ID prefix
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded batch
type Run struct {
	ID             string
	StartedAt      time.Time
	Duration       time.Duration
	CheckOnly      bool
	FilesScanned   int
	FilesChanged   int
	FilesUnchanged int
	FilesBinary    int
	FilesErrored   int
	Status         string
}

// FileRecord is one file of a run. Unchanged and binary files are not stored.
type FileRecord struct {
	RunID  string
	Path   string
	Status string
	Lines  int
	Error  string
}

// Store manages the SQLite run history database
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore creates a new Store instance and initializes the database
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		// Ensure parent directory exists for file-based databases
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every pooled connection to :memory: would be a separate database
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// busy_timeout goes first so the rest wait on locks held by a concurrent run
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

	store := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

// execWithRetry executes a SQL statement with exponential backoff retry on lock errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}

		// Only retry on "database is locked" errors
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}

		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Path returns the database path
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores a finished batch and its non-clean files under a new run ID.
func (s *Store) Record(ctx context.Context, batch *models.BatchResult) (*Run, error) {
	run := &Run{
		ID:             uuid.New().String(),
		StartedAt:      time.Now().Add(-batch.Duration),
		Duration:       batch.Duration,
		CheckOnly:      batch.CheckOnly,
		FilesScanned:   batch.FilesScanned,
		FilesChanged:   batch.FilesChanged,
		FilesUnchanged: batch.FilesUnchanged,
		FilesBinary:    batch.FilesBinary,
		FilesErrored:   batch.FilesErrored,
		Status:         batch.Status(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op if committed

	_, err = tx.ExecContext(ctx, `INSERT INTO runs
		(id, started_at, duration_ms, check_only, files_scanned, files_changed, files_unchanged, files_binary, files_errored, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UnixMilli(),
		run.Duration.Milliseconds(),
		run.CheckOnly,
		run.FilesScanned,
		run.FilesChanged,
		run.FilesUnchanged,
		run.FilesBinary,
		run.FilesErrored,
		run.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_files
		(run_id, position, path, status, lines, error)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare file insert: %w", err)
	}
	defer stmt.Close()

	for i, fr := range batch.Files {
		if fr.Status == models.FileUnchanged || fr.Status == models.FileBinary {
			continue
		}

		var errMsg sql.NullString
		if fr.Err != nil {
			errMsg = sql.NullString{String: fr.Err.Error(), Valid: true}
		}

		if _, err := stmt.ExecContext(ctx, run.ID, i, fr.Path, fr.Status, fr.Summary.Lines(), errMsg); err != nil {
			return nil, fmt.Errorf("insert file %s: %w", fr.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit run: %w", err)
	}

	return run, nil
}

const runColumns = `id, started_at, duration_ms, check_only, files_scanned, files_changed, files_unchanged, files_binary, files_errored, status`

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	run := &Run{}
	var startedAt, durationMs int64
	err := row.Scan(
		&run.ID,
		&startedAt,
		&durationMs,
		&run.CheckOnly,
		&run.FilesScanned,
		&run.FilesChanged,
		&run.FilesUnchanged,
		&run.FilesBinary,
		&run.FilesErrored,
		&run.Status,
	)
	if err != nil {
		return nil, err
	}
	run.StartedAt = time.UnixMilli(startedAt)
	run.Duration = time.Duration(durationMs) * time.Millisecond
	return run, nil
}

// Recent returns up to limit runs, most recent first. A limit <= 0 returns all runs.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}

	return runs, nil
}

// FindRun returns the run whose ID equals or starts with idPrefix.
// An ambiguous prefix is an error.
func (s *Store) FindRun(ctx context.Context, idPrefix string) (*Run, error) {
	if idPrefix == "" {
		return nil, ErrRunNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE substr(id, 1, ?) = ? LIMIT 2`,
		len(idPrefix), idPrefix,
	)
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()

	var found []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, idPrefix)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("run ID prefix %q is ambiguous", idPrefix)
	}
}

// Files returns the recorded files of a run in input order.
func (s *Store) Files(ctx context.Context, runID string) ([]*FileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, path, status, lines, error FROM run_files WHERE run_id = ? ORDER BY position ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query run files: %w", err)
	}
	defer rows.Close()

	var files []*FileRecord
	for rows.Next() {
		rec := &FileRecord{}
		var errMsg sql.NullString
		if err := rows.Scan(&rec.RunID, &rec.Path, &rec.Status, &rec.Lines, &errMsg); err != nil {
			return nil, fmt.Errorf("scan run file row: %w", err)
		}
		if errMsg.Valid {
			rec.Error = errMsg.String
		}
		files = append(files, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run file rows: %w", err)
	}

	return files, nil
}
