package browser

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ElementNotFoundError means a selector matched nothing.
type ElementNotFoundError struct {
	Selector string
	Cause    error
}

func (e *ElementNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("element not found: %s: %v", e.Selector, e.Cause)
	}
	return fmt.Sprintf("element not found: %s", e.Selector)
}

func (e *ElementNotFoundError) Unwrap() error {
	return e.Cause
}

// TimedOutError means an element did not appear (or an action did not finish) within its timeout.
type TimedOutError struct {
	Selector string
	Timeout  time.Duration
	Cause    error
}

func (e *TimedOutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("timed out after %s waiting for %s: %v", e.Timeout, e.Selector, e.Cause)
	}
	return fmt.Sprintf("timed out after %s waiting for %s", e.Timeout, e.Selector)
}

func (e *TimedOutError) Unwrap() error {
	return e.Cause
}

// DriverError wraps any other failure reported by the underlying browser.
type DriverError struct {
	Op    string
	Cause error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("browser %s failed: %v", e.Op, e.Cause)
}

func (e *DriverError) Unwrap() error {
	return e.Cause
}

// IsMissing reports whether err is an ElementNotFoundError or a TimedOutError.
func IsMissing(err error) bool {
	var nf *ElementNotFoundError
	var to *TimedOutError
	return errors.As(err, &nf) || errors.As(err, &to)
}

func joinSelectors(selectors []string) string {
	var nonEmpty []string
	for _, s := range selectors {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return strings.Join(nonEmpty, " | ")
}
