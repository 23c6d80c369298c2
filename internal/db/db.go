// Package db persists application attempts, in PostgreSQL or in a local SQLite file.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/quick-apply/internal/types"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS application_attempts (
	id             UUID PRIMARY KEY,
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
	started_at     TIMESTAMPTZ NOT NULL,
	finished_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_application_attempts_link ON application_attempts (job_link, status);
`

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

var _ Store = (*DB)(nil)

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

// Migrate creates the attempts table if it does not exist.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// RecordSuccess stores a submitted attempt.
func (db *DB) RecordSuccess(ctx context.Context, a *types.ApplicationAttempt) error {
	return db.SaveAttempt(ctx, a.Record())
}

// RecordFailure stores an aborted attempt.
func (db *DB) RecordFailure(ctx context.Context, a *types.ApplicationAttempt) error {
	return db.SaveAttempt(ctx, a.Record())
}

// SaveAttempt inserts or replaces an attempt record.
func (db *DB) SaveAttempt(ctx context.Context, r types.AttemptRecord) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO application_attempts
			(id, job_title, company, location, job_link, hiring_contact, status,
			 failed_page, failed_label, reason, resume_path, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (id) DO UPDATE SET status = $7, failed_page = $8, failed_label = $9,
			reason = $10, finished_at = $13`,
		r.ID, r.JobTitle, r.Company, r.Location, r.JobLink, r.HiringContact, string(r.Status),
		r.FailedPage, r.FailedLabel, r.Reason, r.ResumePath, r.StartedAt, r.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save attempt for %s: %w", r.JobLink, err)
	}
	return nil
}

// HasApplied reports whether a submitted attempt exists for the job link.
func (db *DB) HasApplied(ctx context.Context, link string) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM application_attempts WHERE job_link = $1 AND status = $2)`,
		link, string(types.OutcomeSubmitted),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check applied status: %w", err)
	}
	return exists, nil
}

// GetAttempt retrieves an attempt by ID, or nil if there is none.
func (db *DB) GetAttempt(ctx context.Context, id uuid.UUID) (*types.AttemptRecord, error) {
	rows, err := db.pool.Query(ctx, selectAttempts+` WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	r, err := pgx.CollectOneRow(rows, scanPostgresRecord)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return &r, nil
}

// ListAttempts returns recorded attempts, newest first.
func (db *DB) ListAttempts(ctx context.Context, opts ListOptions) ([]types.AttemptRecord, error) {
	query := selectAttempts
	var args []any
	if opts.Status != types.OutcomePending {
		args = append(args, string(opts.Status))
		query += fmt.Sprintf(" WHERE status = $%d", len(args))
	}
	query += " ORDER BY started_at DESC"
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	records, err := pgx.CollectRows(rows, scanPostgresRecord)
	if err != nil {
		return nil, fmt.Errorf("failed to scan attempts: %w", err)
	}
	return records, nil
}

const selectAttempts = `SELECT id, job_title, company, location, job_link, hiring_contact, status,
	failed_page, failed_label, reason, resume_path, started_at, finished_at
	FROM application_attempts`

func scanPostgresRecord(row pgx.CollectableRow) (types.AttemptRecord, error) {
	var r types.AttemptRecord
	var status string
	err := row.Scan(&r.ID, &r.JobTitle, &r.Company, &r.Location, &r.JobLink, &r.HiringContact, &status,
		&r.FailedPage, &r.FailedLabel, &r.Reason, &r.ResumePath, &r.StartedAt, &r.FinishedAt)
	r.Status = types.OutcomeStatus(status)
	return r, err
}
