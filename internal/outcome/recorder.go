// Package outcome records the terminal result of every application attempt.
package outcome

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/quick-apply/internal/types"
)

// Recorder is the append-only outcome log. Each terminated attempt is recorded exactly once.
type Recorder interface {
	RecordSuccess(ctx context.Context, attempt *types.ApplicationAttempt) error
	RecordFailure(ctx context.Context, attempt *types.ApplicationAttempt) error
	// HasApplied reports whether a submitted attempt for the job link is already on record.
	HasApplied(ctx context.Context, link string) (bool, error)
}

// Multi fans every record out to all recorders.
type Multi []Recorder

var _ Recorder = Multi(nil)

func (m Multi) RecordSuccess(ctx context.Context, attempt *types.ApplicationAttempt) error {
	var errs []error
	for _, r := range m {
		if err := r.RecordSuccess(ctx, attempt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) RecordFailure(ctx context.Context, attempt *types.ApplicationAttempt) error {
	var errs []error
	for _, r := range m {
		if err := r.RecordFailure(ctx, attempt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// HasApplied is true if any recorder knows the link.
func (m Multi) HasApplied(ctx context.Context, link string) (bool, error) {
	for _, r := range m {
		ok, err := r.HasApplied(ctx, link)
		if err != nil {
			return false, fmt.Errorf("failed to check applied status: %w", err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
