package apply

import (
	"context"
	"log"
	"net/url"
	"strings"

	"github.com/jonathan/quick-apply/internal/browser"
)

// Credentials sign the agent into the site.
type Credentials struct {
	Email    string
	Password string
}

// Login opens the feed. A persistent browser profile usually keeps the session alive; when the
// site redirects elsewhere instead, the redirect target is treated as the login page.
func (o *Orchestrator) Login(ctx context.Context) error {
	feed := o.sel.Session.FeedURL
	log.Printf("[APPLY] Opening %s", feed)
	if err := o.driver.Navigate(ctx, feed); err != nil {
		return &LoginError{URL: feed, Reason: "could not open feed", Cause: err}
	}
	if err := o.opts.Settle.Wait(ctx); err != nil {
		return err
	}

	current, err := o.driver.CurrentURL(ctx)
	if err != nil {
		return &LoginError{URL: feed, Reason: "could not read current URL", Cause: err}
	}
	if samePage(current, feed) {
		log.Printf("[APPLY] Already logged in")
		return nil
	}

	log.Printf("[APPLY] Redirected to %s, assuming login page", current)
	if err := o.signIn(ctx, current); err != nil {
		return err
	}
	log.Printf("[APPLY] Logged in")
	return nil
}

func (o *Orchestrator) signIn(ctx context.Context, page string) error {
	sel := o.sel.Session

	signIn, err := o.driver.Find(ctx, nil, sel.SignInButton)
	if err != nil {
		return &LoginError{URL: page, Reason: "redirected to a page that is not the login page", Cause: err}
	}
	if o.creds.Password == "" {
		return &LoginError{URL: page, Reason: "no site password configured"}
	}

	// Remembered accounts only ask for the password.
	if sel.EmailField != "" {
		email, err := browser.FindOptional(ctx, o.driver, nil, sel.EmailField)
		if err != nil {
			return &LoginError{URL: page, Reason: "could not probe email field", Cause: err}
		}
		if email != nil {
			if o.creds.Email == "" {
				return &LoginError{URL: page, Reason: "login page asks for an email but none is configured"}
			}
			if err := o.driver.TypeText(ctx, email, o.creds.Email); err != nil {
				return &LoginError{URL: page, Reason: "could not type email", Cause: err}
			}
			if err := o.opts.Settle.Wait(ctx); err != nil {
				return err
			}
		} else {
			log.Printf("[APPLY] No email field, assuming only the password is needed")
		}
	}

	password, err := o.driver.Find(ctx, nil, sel.PasswordField)
	if err != nil {
		return &LoginError{URL: page, Reason: "password field not found", Cause: err}
	}
	if err := o.driver.TypeText(ctx, password, o.creds.Password); err != nil {
		return &LoginError{URL: page, Reason: "could not type password", Cause: err}
	}
	if err := o.opts.Settle.Wait(ctx); err != nil {
		return err
	}

	if err := o.driver.Click(ctx, signIn); err != nil {
		return &LoginError{URL: page, Reason: "could not click sign in", Cause: err}
	}
	if err := o.pacer.Wait(ctx); err != nil {
		return err
	}

	still, err := browser.FindOptional(ctx, o.driver, nil, sel.PasswordField)
	if err != nil {
		return &LoginError{URL: page, Reason: "could not confirm login", Cause: err}
	}
	if still != nil {
		return &LoginError{URL: page, Reason: "still on the login page after signing in"}
	}
	return nil
}

// samePage compares host and path, ignoring query, fragment and a trailing slash.
func samePage(a, b string) bool {
	ua, errA := url.Parse(a)
	ub, errB := url.Parse(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return strings.EqualFold(ua.Host, ub.Host) &&
		strings.TrimSuffix(ua.Path, "/") == strings.TrimSuffix(ub.Path, "/")
}
