package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jonathan/quick-apply/internal/types"
)

const sqliteSchemaVersion = 1

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS application_attempts (
	id             TEXT PRIMARY KEY,
	job_title      TEXT NOT NULL,
	company        TEXT NOT NULL,
	location       TEXT NOT NULL DEFAULT '',
	job_link       TEXT NOT NULL,
	hiring_contact TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL,
	failed_page    INTEGER NOT NULL DEFAULT 0,
	failed_label   TEXT NOT NULL DEFAULT '',
	reason         TEXT NOT NULL DEFAULT '',
	resume_path    TEXT NOT NULL DEFAULT '',
	started_at     TEXT NOT NULL,
	finished_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_application_attempts_link ON application_attempts (job_link, status);
`

// SQLite stores attempts in a local database file.
type SQLite struct {
	pool *sql.DB
	path string
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (creating if needed) the database file at path and migrates it.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	// one writer
	pool.SetMaxOpenConns(1)
	pool.SetConnMaxLifetime(5 * time.Minute)

	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("failed to ping sqlite database %s: %w", path, err)
	}

	s := &SQLite{pool: pool, path: path}
	if err := s.migrate(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return s, nil
}

// Path is the database file location.
func (s *SQLite) Path() string { return s.path }

func (s *SQLite) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	return s.pool.Close()
}

func (s *SQLite) migrate(ctx context.Context) error {
	tx, err := s.pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if v >= sqliteSchemaVersion {
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d;`, sqliteSchemaVersion)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	return tx.Commit()
}

func (s *SQLite) RecordSuccess(ctx context.Context, a *types.ApplicationAttempt) error {
	return s.SaveAttempt(ctx, a.Record())
}

func (s *SQLite) RecordFailure(ctx context.Context, a *types.ApplicationAttempt) error {
	return s.SaveAttempt(ctx, a.Record())
}

// SaveAttempt inserts or replaces an attempt record.
func (s *SQLite) SaveAttempt(ctx context.Context, r types.AttemptRecord) error {
	_, err := s.pool.ExecContext(ctx, `
INSERT INTO application_attempts
	(id, job_title, company, location, job_link, hiring_contact, status,
	 failed_page, failed_label, reason, resume_path, started_at, finished_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET status = excluded.status, failed_page = excluded.failed_page,
	failed_label = excluded.failed_label, reason = excluded.reason, finished_at = excluded.finished_at;`,
		r.ID.String(), r.JobTitle, r.Company, r.Location, r.JobLink, r.HiringContact, string(r.Status),
		r.FailedPage, r.FailedLabel, r.Reason, r.ResumePath, formatTime(r.StartedAt), formatTime(r.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save attempt for %s: %w", r.JobLink, err)
	}
	return nil
}

func (s *SQLite) HasApplied(ctx context.Context, link string) (bool, error) {
	var exists int
	err := s.pool.QueryRowContext(ctx,
		`SELECT 1 FROM application_attempts WHERE job_link = ? AND status = ? LIMIT 1;`,
		link, string(types.OutcomeSubmitted),
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check applied status: %w", err)
	}
	return true, nil
}

// GetAttempt retrieves an attempt by ID, or nil if there is none.
func (s *SQLite) GetAttempt(ctx context.Context, id uuid.UUID) (*types.AttemptRecord, error) {
	row := s.pool.QueryRowContext(ctx, selectAttempts+` WHERE id = ?`, id.String())
	r, err := scanSQLiteRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return &r, nil
}

// ListAttempts returns recorded attempts, newest first.
func (s *SQLite) ListAttempts(ctx context.Context, opts ListOptions) ([]types.AttemptRecord, error) {
	query := selectAttempts
	var args []any
	if opts.Status != types.OutcomePending {
		query += " WHERE status = ?"
		args = append(args, string(opts.Status))
	}
	query += " ORDER BY started_at DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.pool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer rows.Close()

	var records []types.AttemptRecord
	for rows.Next() {
		r, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRecord(row scanner) (types.AttemptRecord, error) {
	var (
		r                 types.AttemptRecord
		id, status        string
		started, finished string
	)
	if err := row.Scan(&id, &r.JobTitle, &r.Company, &r.Location, &r.JobLink, &r.HiringContact, &status,
		&r.FailedPage, &r.FailedLabel, &r.Reason, &r.ResumePath, &started, &finished); err != nil {
		return r, err
	}

	var err error
	if r.ID, err = uuid.Parse(id); err != nil {
		return r, fmt.Errorf("invalid attempt id %q: %w", id, err)
	}
	r.Status = types.OutcomeStatus(status)
	if r.StartedAt, err = parseTime(started); err != nil {
		return r, err
	}
	if r.FinishedAt, err = parseTime(finished); err != nil {
		return r, err
	}
	return r, nil
}

// Timestamps are stored as fixed-width UTC text so they sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
