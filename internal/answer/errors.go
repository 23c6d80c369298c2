package answer

import (
	"fmt"

	"github.com/jonathan/quick-apply/internal/types"
)

// NoAnswerProducedError means no source could produce a usable answer for a question.
// It is fatal to the current application attempt.
type NoAnswerProducedError struct {
	Question string
	Choices  []string
	// Response is the raw generator output, kept for the failure log.
	Response string
	Reason   string
	// Context is filled in by the form walker once the job and page are known.
	Context types.AttemptContext
	Cause   error
}

func (e *NoAnswerProducedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("no answer produced for %q: %s: %v", e.Question, e.Reason, e.Cause)
	}
	return fmt.Sprintf("no answer produced for %q: %s", e.Question, e.Reason)
}

func (e *NoAnswerProducedError) Unwrap() error {
	return e.Cause
}

// AttemptContext returns the structured failure context.
func (e *NoAnswerProducedError) AttemptContext() types.AttemptContext {
	c := e.Context
	if c.Label == "" {
		c.Label = e.Question
	}
	if c.Reason == "" {
		c.Reason = e.Reason
	}
	return c
}
