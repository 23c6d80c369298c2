package apply

import (
	"context"
	"errors"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/quick-apply/internal/browser/browsertest"
)

const loginURL = "https://www.linkedin.com/login?session_redirect=feed"

const loginPage = `<html><body><form>
	<input type="text" id="username">
	<input type="password" id="password">
	<button type="submit" aria-label="Sign in" id="sign-in">Sign in</button>
</form></body></html>`

// loggedOutSite redirects the feed to the login page until the sign-in button is clicked.
func loggedOutSite(t *testing.T, page string) *browsertest.Fake {
	t.Helper()
	f := newSite(t, nil)
	loggedIn := false
	f.SetPage(loginURL, page)
	f.RedirectFunc = func(url string) string {
		if url == feedURL && !loggedIn {
			return loginURL
		}
		return url
	}
	f.OnClick("#sign-in", func(f *browsertest.Fake, _ *goquery.Selection) error {
		loggedIn = true
		return f.Navigate(context.Background(), feedURL)
	})
	return f
}

func TestLogin_AlreadyLoggedIn(t *testing.T) {
	f := newSite(t, nil)
	require.NoError(t, newOrchestrator(t, f, &fakeRecorder{}, nil, Options{}).Login(context.Background()))
	assert.Equal(t, 0, f.CallCount("type", ""))
}

func TestLogin_SignsInAfterRedirect(t *testing.T) {
	f := loggedOutSite(t, loginPage)

	require.NoError(t, newOrchestrator(t, f, &fakeRecorder{}, nil, Options{}).Login(context.Background()))

	var typed []browsertest.Call
	for _, c := range f.Calls() {
		if c.Op == "type" {
			typed = append(typed, c)
		}
	}
	require.Len(t, typed, 2)
	assert.Equal(t, browsertest.Call{Op: "type", Target: "#username", Arg: "ada@example.com"}, typed[0])
	assert.Equal(t, browsertest.Call{Op: "type", Target: "#password", Arg: "hunter2"}, typed[1])
	assert.Equal(t, 1, f.CallCount("click", "#sign-in"))
}

func TestLogin_PasswordOnly(t *testing.T) {
	f := loggedOutSite(t, `<html><body><input type="password" id="password">
		<button type="submit" aria-label="Sign in" id="sign-in">Sign in</button></body></html>`)

	require.NoError(t, newOrchestrator(t, f, &fakeRecorder{}, nil, Options{}).Login(context.Background()))
	assert.Equal(t, 1, f.CallCount("type", "#password"))
	assert.Equal(t, 0, f.CallCount("type", "#username"))
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name   string
		page   string
		creds  Credentials
		stuck  bool
		reason string
	}{
		{
			name:   "redirected somewhere else",
			page:   `<html><body><h1>Security check</h1></body></html>`,
			creds:  Credentials{Email: "ada@example.com", Password: "hunter2"},
			reason: "redirected to a page that is not the login page",
		},
		{
			name:   "no password",
			page:   loginPage,
			creds:  Credentials{Email: "ada@example.com"},
			reason: "no site password configured",
		},
		{
			name:   "no email",
			page:   loginPage,
			creds:  Credentials{Password: "hunter2"},
			reason: "login page asks for an email but none is configured",
		},
		{
			name:   "credentials rejected",
			page:   loginPage,
			creds:  Credentials{Email: "ada@example.com", Password: "wrong"},
			stuck:  true,
			reason: "still on the login page after signing in",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := loggedOutSite(t, tt.page)
			if tt.stuck {
				f = newSite(t, nil)
				f.SetPage(loginURL, tt.page)
				f.RedirectFunc = func(string) string { return loginURL }
			}
			o := newOrchestrator(t, f, &fakeRecorder{}, nil, Options{})
			o.creds = tt.creds

			err := o.Login(context.Background())
			var le *LoginError
			require.True(t, errors.As(err, &le), "got %v", err)
			assert.Equal(t, tt.reason, le.Reason)
			assert.False(t, IsAttemptLevel(err))
		})
	}
}

func TestSamePage(t *testing.T) {
	assert.True(t, samePage("https://www.linkedin.com/feed/", "https://www.linkedin.com/feed"))
	assert.True(t, samePage("https://www.linkedin.com/feed/?trk=nav", "https://www.linkedin.com/feed/"))
	assert.False(t, samePage("https://www.linkedin.com/login", "https://www.linkedin.com/feed/"))
}
