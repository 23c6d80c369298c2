package db

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/quick-apply/internal/outcome"
	"github.com/jonathan/quick-apply/internal/types"
)

// DefaultSQLiteFile is the attempt database created in the data directory when no URL is configured.
const DefaultSQLiteFile = "attempts.db"

// ListOptions filters ListAttempts.
type ListOptions struct {
	// Status restricts results to one outcome; empty means all.
	Status types.OutcomeStatus
	// Limit caps the number of rows; zero means no cap.
	Limit int
}

// Store is a persistent outcome recorder that can also list what it recorded.
type Store interface {
	outcome.Recorder
	ListAttempts(ctx context.Context, opts ListOptions) ([]types.AttemptRecord, error)
	GetAttempt(ctx context.Context, id uuid.UUID) (*types.AttemptRecord, error)
	Close() error
}

// Open picks the backend from databaseURL: postgres:// and postgresql:// URLs use PostgreSQL,
// anything else is a SQLite file path (default <dataDir>/attempts.db). The schema is created
// if missing.
func Open(ctx context.Context, databaseURL, dataDir string) (Store, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		db, err := Connect(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	}

	path := strings.TrimPrefix(databaseURL, "sqlite://")
	if path == "" {
		path = filepath.Join(dataDir, DefaultSQLiteFile)
	}
	store, err := OpenSQLite(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open attempt store: %w", err)
	}
	return store, nil
}
