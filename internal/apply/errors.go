package apply

import (
	"errors"
	"fmt"

	"github.com/jonathan/quick-apply/internal/browser"
	"github.com/jonathan/quick-apply/internal/types"
)

// LoginError means the session could not be opened. It ends the run.
type LoginError struct {
	URL    string
	Reason string
	Cause  error
}

func (e *LoginError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("login failed at %s: %s: %v", e.URL, e.Reason, e.Cause)
	}
	return fmt.Sprintf("login failed at %s: %s", e.URL, e.Reason)
}

func (e *LoginError) Unwrap() error {
	return e.Cause
}

// BailOutFailedError means an aborted form could not be closed and discarded.
// The page is left in an unknown state, so the run stops.
type BailOutFailedError struct {
	Step    string
	Context types.AttemptContext
	Cause   error
}

func (e *BailOutFailedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("bail-out failed at %s for %s: %v", e.Step, e.Context, e.Cause)
	}
	return fmt.Sprintf("bail-out failed at %s for %s", e.Step, e.Context)
}

func (e *BailOutFailedError) Unwrap() error {
	return e.Cause
}

// AttemptError is an attempt-level failure that happened outside the form walker,
// such as the apply button refusing a click.
type AttemptError struct {
	Context types.AttemptContext
	Cause   error
}

func (e *AttemptError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("attempt failed: %s: %v", e.Context, e.Cause)
	}
	return fmt.Sprintf("attempt failed: %s", e.Context)
}

func (e *AttemptError) Unwrap() error {
	return e.Cause
}

// AttemptContext returns the structured failure context.
func (e *AttemptError) AttemptContext() types.AttemptContext {
	return e.Context
}

// contextual is implemented by every error that knows which job, page and field it belongs to.
type contextual interface {
	AttemptContext() types.AttemptContext
}

// IsAttemptLevel reports whether err only dooms the current application. Such errors are
// recorded and followed by a bail-out; anything else stops the run.
// Callers must check their own context first: a cancelled run surfaces as driver timeouts.
func IsAttemptLevel(err error) bool {
	if err == nil {
		return false
	}
	var (
		le *LoginError
		bf *BailOutFailedError
	)
	if errors.As(err, &le) || errors.As(err, &bf) {
		return false
	}
	var c contextual
	if errors.As(err, &c) {
		return true
	}
	var de *browser.DriverError
	return browser.IsMissing(err) || errors.As(err, &de)
}

// contextOf extracts the failure context of err, completing it with the attempt's job and page.
func contextOf(err error, attempt *types.ApplicationAttempt) types.AttemptContext {
	var c contextual
	if !errors.As(err, &c) {
		return attempt.Context("", err.Error())
	}
	ctx := c.AttemptContext()
	if ctx.JobLink == "" {
		ctx.JobTitle = attempt.Job.Title
		ctx.JobLink = attempt.Job.Link
		ctx.Company = attempt.Job.Company
	}
	if ctx.Page == 0 {
		ctx.Page = attempt.Page
	}
	if ctx.Reason == "" {
		ctx.Reason = err.Error()
	}
	return ctx
}
