// Package browser provides the page driver used to automate the quick-apply wizard.
// Selectors are opaque configuration strings; the chromedp implementation treats them as CSS.
package browser

import (
	"context"
	"time"
)

// Handle is an opaque reference to a live element, owned by the driver.
// A handle becomes invalid when the page re-renders the element.
type Handle any

// Driver is the capability set the form engine needs from a browser session.
// A nil scope means the whole document.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)

	// Find returns the first match or an *ElementNotFoundError. It does not wait.
	Find(ctx context.Context, scope Handle, selector string) (Handle, error)
	// FindAll returns every match in document order, possibly none. It does not wait.
	FindAll(ctx context.Context, scope Handle, selector string) ([]Handle, error)
	// WaitVisible blocks until the selector is visible or returns a *TimedOutError.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) (Handle, error)

	Click(ctx context.Context, h Handle) error
	TypeText(ctx context.Context, h Handle, text string) error
	SelectOption(ctx context.Context, h Handle, visibleText string) error
	UploadFile(ctx context.Context, h Handle, absolutePath string) error
	ScrollIntoView(ctx context.Context, h Handle) error

	Text(ctx context.Context, h Handle) (string, error)
	Attribute(ctx context.Context, h Handle, name string) (string, bool, error)
	OuterHTML(ctx context.Context, h Handle) (string, error)
	Checked(ctx context.Context, h Handle) (bool, error)
}

// FindOptional is Find with "not found" mapped to a nil handle and no error.
// Use it only where absence is a valid negative signal.
func FindOptional(ctx context.Context, d Driver, scope Handle, selector string) (Handle, error) {
	h, err := d.Find(ctx, scope, selector)
	if err != nil {
		if IsMissing(err) {
			return nil, nil
		}
		return nil, err
	}
	return h, nil
}

// FirstOf probes selectors in order and returns the first match along with the selector that matched.
func FirstOf(ctx context.Context, d Driver, scope Handle, selectors []string) (Handle, string, error) {
	for _, sel := range selectors {
		if sel == "" {
			continue
		}
		h, err := FindOptional(ctx, d, scope, sel)
		if err != nil {
			return nil, "", err
		}
		if h != nil {
			return h, sel, nil
		}
	}
	return nil, "", &ElementNotFoundError{Selector: joinSelectors(selectors)}
}
