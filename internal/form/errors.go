package form

import (
	"errors"
	"fmt"

	"github.com/jonathan/quick-apply/internal/answer"
	"github.com/jonathan/quick-apply/internal/types"
)

// UnclassifiableFieldError means a field element had no label or matched no known field shape.
type UnclassifiableFieldError struct {
	Context types.AttemptContext
	Cause   error
}

func (e *UnclassifiableFieldError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("unclassifiable field: %s: %v", e.Context, e.Cause)
	}
	return fmt.Sprintf("unclassifiable field: %s", e.Context)
}

func (e *UnclassifiableFieldError) Unwrap() error { return e.Cause }

// AttemptContext returns the structured failure context.
func (e *UnclassifiableFieldError) AttemptContext() types.AttemptContext { return e.Context }

// FillFailedError means an input action could not be performed.
type FillFailedError struct {
	Kind    types.FieldKind
	Context types.AttemptContext
	Cause   error
}

func (e *FillFailedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fill %s failed: %s: %v", e.Kind, e.Context, e.Cause)
	}
	return fmt.Sprintf("fill %s failed: %s", e.Kind, e.Context)
}

func (e *FillFailedError) Unwrap() error { return e.Cause }

// AttemptContext returns the structured failure context.
func (e *FillFailedError) AttemptContext() types.AttemptContext { return e.Context }

// MissingControlError means a wizard control (next, review, submit, confirmation) was not found.
type MissingControlError struct {
	Control string
	Context types.AttemptContext
	Cause   error
}

func (e *MissingControlError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("missing %s control: %s: %v", e.Control, e.Context, e.Cause)
	}
	return fmt.Sprintf("missing %s control: %s", e.Control, e.Context)
}

func (e *MissingControlError) Unwrap() error { return e.Cause }

// AttemptContext returns the structured failure context.
func (e *MissingControlError) AttemptContext() types.AttemptContext { return e.Context }

// withAttempt stamps the job and page of attempt onto err's context. Errors of unknown type are
// wrapped with fallback so that everything leaving the walker carries context.
func withAttempt(err error, a *types.ApplicationAttempt, label string, fallback func(types.AttemptContext, error) error) error {
	var (
		uf *UnclassifiableFieldError
		ff *FillFailedError
		mc *MissingControlError
		na *answer.NoAnswerProducedError
	)
	var c *types.AttemptContext
	switch {
	case errors.As(err, &uf):
		c = &uf.Context
	case errors.As(err, &ff):
		c = &ff.Context
	case errors.As(err, &mc):
		c = &mc.Context
	case errors.As(err, &na):
		c = &na.Context
		if c.Label == "" {
			c.Label = na.Question
		}
		if c.Reason == "" {
			c.Reason = na.Reason
		}
	default:
		return fallback(a.Context(label, err.Error()), err)
	}

	if c.Label == "" {
		c.Label = label
	}
	*c = a.Context(c.Label, c.Reason)
	return err
}

func asFillFailed(kind types.FieldKind) func(types.AttemptContext, error) error {
	return func(c types.AttemptContext, err error) error {
		return &FillFailedError{Kind: kind, Context: c, Cause: err}
	}
}

func asUnclassifiable(c types.AttemptContext, err error) error {
	return &UnclassifiableFieldError{Context: c, Cause: err}
}

func asMissingControl(control string) func(types.AttemptContext, error) error {
	return func(c types.AttemptContext, err error) error {
		return &MissingControlError{Control: control, Context: c, Cause: err}
	}
}
