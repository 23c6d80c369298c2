package browser

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMissing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"not found", &ElementNotFoundError{Selector: "#x"}, true},
		{"timed out", &TimedOutError{Selector: "#x", Timeout: time.Second}, true},
		{"wrapped", fmt.Errorf("clicking next: %w", &ElementNotFoundError{Selector: "#x"}), true},
		{"driver", &DriverError{Op: "click", Cause: errors.New("detached")}, false},
		{"plain", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMissing(tt.err))
		})
	}
}

func TestTimedOutError_UnwrapsDeadline(t *testing.T) {
	err := &TimedOutError{Selector: ".dialog", Timeout: 2 * time.Second, Cause: context.DeadlineExceeded}
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "2s")
	assert.Contains(t, err.Error(), ".dialog")
}

// stubDriver answers Find from a fixed set of selectors.
type stubDriver struct {
	Driver
	present map[string]bool
	FindFunc func(selector string) (Handle, error)
}

func (s *stubDriver) Find(_ context.Context, _ Handle, selector string) (Handle, error) {
	if s.FindFunc != nil {
		return s.FindFunc(selector)
	}
	if s.present[selector] {
		return selector, nil
	}
	return nil, &ElementNotFoundError{Selector: selector}
}

func TestFindOptional(t *testing.T) {
	d := &stubDriver{present: map[string]bool{"#here": true}}

	h, err := FindOptional(context.Background(), d, nil, "#here")
	require.NoError(t, err)
	assert.Equal(t, "#here", h)

	h, err = FindOptional(context.Background(), d, nil, "#gone")
	require.NoError(t, err)
	assert.Nil(t, h)
}

func TestFindOptional_PropagatesDriverErrors(t *testing.T) {
	d := &stubDriver{FindFunc: func(string) (Handle, error) {
		return nil, &DriverError{Op: "query", Cause: errors.New("target closed")}
	}}

	_, err := FindOptional(context.Background(), d, nil, "#x")
	var de *DriverError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "query", de.Op)
}

func TestFirstOf(t *testing.T) {
	d := &stubDriver{present: map[string]bool{"legend": true, "label": true}}

	h, sel, err := FirstOf(context.Background(), d, nil, []string{"", ".title", "label", "legend"})
	require.NoError(t, err)
	assert.Equal(t, "label", sel)
	assert.Equal(t, "label", h)

	_, _, err = FirstOf(context.Background(), d, nil, []string{".a", "", ".b"})
	var nf *ElementNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, ".a | .b", nf.Selector)
}
