package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/appaudit/appaudit/internal/model"
)

// DB provides SQLite-based storage for run history.
// It manages connection pooling and provides methods for saving and
// querying past runs.
//
// Design decision: We use a single database file for all source workbooks
// rather than one file per source. This simplifies cross-source queries
// (list all sources) and backup/restore operations.
type DB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures DB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a history database in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*DB, error) {
	dbPath := filepath.Join(dbDir, "appaudit.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only supports one writer; a single connection avoids lock churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &DB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *DB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *DB) createTables() error {
	schema := `
	-- Run records store one row per pipeline run over a source workbook
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		row_count INTEGER NOT NULL,
		risk_summary TEXT NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// StoredRun is one persisted run with its metadata.
type StoredRun struct {
	// ID is the database row ID, shown by `compare --list`.
	ID int64

	// Source is the source workbook path of the run.
	Source string

	// Timestamp is when the run was recorded.
	Timestamp time.Time

	// RowCount is the number of normalized rows of the run.
	RowCount int

	// RiskSummary counts apps per risk class, keyed by lowercase label.
	RiskSummary map[string]int

	// Report is the full run report as saved.
	Report *model.RunReport
}

// SaveRun persists a run report and returns its database ID.
func (hdb *DB) SaveRun(ctx context.Context, run *model.RunReport) (int64, error) {
	summaryJSON, err := json.Marshal(run.RiskSummary)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize risk summary: %w", err)
	}
	reportJSON, err := json.Marshal(run)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize run report: %w", err)
	}

	query := `
	INSERT INTO runs (source, row_count, risk_summary, report_json)
	VALUES (?, ?, ?, ?)
	`

	result, err := hdb.db.ExecContext(ctx, query,
		run.Source,
		run.RowCount,
		string(summaryJSON),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run record: %w", err)
	}

	return result.LastInsertId()
}

// GetRunHistory retrieves all runs for a source, newest first.
func (hdb *DB) GetRunHistory(ctx context.Context, source string) ([]*StoredRun, error) {
	query := `
	SELECT id, source, timestamp, row_count, risk_summary, report_json
	FROM runs
	WHERE source = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query, source)
	if err != nil {
		return nil, fmt.Errorf("failed to query run history: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var runs []*StoredRun
	for rows.Next() {
		run, err := scanStoredRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate run history: %w", err)
	}

	return runs, nil
}

// GetRunByID retrieves a single run by database ID.
// Returns nil without error when the ID does not exist.
func (hdb *DB) GetRunByID(ctx context.Context, id int64) (*StoredRun, error) {
	query := `
	SELECT id, source, timestamp, row_count, risk_summary, report_json
	FROM runs
	WHERE id = ?
	`

	row := hdb.db.QueryRowContext(ctx, query, id)
	run, err := scanStoredRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListSources lists all source workbooks with recorded runs.
func (hdb *DB) ListSources(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT source FROM runs ORDER BY source`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var sources []string
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, source)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sources: %w", err)
	}

	return sources, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanStoredRun.
type scanner interface {
	Scan(dest ...any) error
}

// scanStoredRun reads one run row including its serialized report.
func scanStoredRun(s scanner) (*StoredRun, error) {
	var run StoredRun
	var timestamp string
	var summaryJSON string
	var reportJSON string

	err := s.Scan(
		&run.ID,
		&run.Source,
		&timestamp,
		&run.RowCount,
		&summaryJSON,
		&reportJSON,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run record: %w", err)
	}

	run.Timestamp = parseTimestamp(timestamp)

	if err := json.Unmarshal([]byte(summaryJSON), &run.RiskSummary); err != nil {
		return nil, fmt.Errorf("failed to deserialize risk summary: %w", err)
	}
	var report model.RunReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to deserialize run report: %w", err)
	}
	run.Report = &report

	return &run, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
