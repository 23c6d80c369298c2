package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/quick-apply/internal/answer"
	"github.com/jonathan/quick-apply/internal/browser"
	"github.com/jonathan/quick-apply/internal/browser/browsertest"
	"github.com/jonathan/quick-apply/internal/llm/llmtest"
	"github.com/jonathan/quick-apply/internal/types"
)

const (
	nextButton   = `<button aria-label="Continue to next step">Next</button>`
	reviewButton = `<button aria-label="Review your application">Review</button>`
	submitButton = `<button aria-label="Submit application">Submit</button>`
	successPopup = `<div class="artdeco-modal" role="dialog"><h2 class="jpac-modal-header">Your application was sent</h2><button aria-label="Dismiss">Done</button></div>`
	followToggle = `<input type="checkbox" id="follow-company-checkbox" checked><label for="follow-company-checkbox">Follow Initech</label>`
)

// newWizard serves the given pages in order. Each page but the last gets a next button, the last
// a review button. Review shows the follow toggle and submit; submit shows the success popup.
func newWizard(pages ...string) *browsertest.Fake {
	current := 0
	render := func(i int) string {
		if i == len(pages)-1 {
			return pages[i] + reviewButton
		}
		return pages[i] + nextButton
	}

	f := browsertest.New(dialogPage(render(0)))
	f.OnClick(`button[aria-label="Continue to next step"]`, func(f *browsertest.Fake, _ *goquery.Selection) error {
		current++
		f.ReplaceInner(".jobs-easy-apply-modal", render(current))
		return nil
	})
	f.OnClick(`button[aria-label="Review your application"]`, func(f *browsertest.Fake, _ *goquery.Selection) error {
		f.ReplaceInner(".jobs-easy-apply-modal", followToggle+submitButton)
		return nil
	})
	f.OnClick(`button[aria-label="Submit application"]`, func(f *browsertest.Fake, _ *goquery.Selection) error {
		f.Append("body", successPopup)
		return nil
	})
	f.OnClick(`button[aria-label="Dismiss"]`, func(f *browsertest.Fake, _ *goquery.Selection) error {
		f.Remove(".artdeco-modal")
		f.Remove(".jobs-easy-apply-modal")
		return nil
	})
	return f
}

func textField(id, label string) string {
	return fmt.Sprintf(`<div class="jobs-easy-apply-form-section__grouping"><label for=%q>%s</label><input type="text" id=%q></div>`, id, label, id)
}

func testJob() types.JobListing {
	return types.JobListing{
		Title:   "Backend Engineer",
		Company: "Initech",
		Link:    "https://www.linkedin.com/jobs/view/1",
	}
}

func echoSource() *fakeSource {
	return &fakeSource{AnswerFreelyFunc: func(_ context.Context, question string) (string, error) {
		return "answer to " + question, nil
	}}
}

func TestWalker_EndToEndTwoPages(t *testing.T) {
	ctx := context.Background()
	f := newWizard(
		textField("fn", "First name")+`
		<div class="jobs-easy-apply-form-section__grouping"><label for="yoe">Years of experience</label>
			<select id="yoe"><option>Select an option</option><option>0-1</option><option>2-5</option><option>5+</option></select></div>`,
		`<div class="jobs-easy-apply-form-section__grouping">
			<input type="checkbox" id="tc"><label for="tc">I agree to the Terms and Conditions</label></div>`,
	)

	mock := llmtest.Respond("The profile shows four years.\nCANDIDATE_ANSWER: 2-5")
	profile := &types.Profile{Personal: types.Personal{Name: "Ada", Surname: "Lovelace", Email: "ada@example.com"}}
	gen, err := answer.NewGenerative(mock, profile)
	require.NoError(t, err)
	chain := answer.NewChain(answer.NewDirectLookup(profile, nil), gen)

	// Each button swaps the dialog contents, so record the page state as it is left.
	var termsTicked, stillFollowing bool
	f.BeforeAction = func(op string, el *goquery.Selection) error {
		if op != "click" {
			return nil
		}
		switch el.AttrOr("aria-label", "") {
		case "Review your application":
			termsTicked = f.IsChecked("#tc")
		case "Submit application":
			stillFollowing = f.IsChecked("#follow-company-checkbox")
		}
		return nil
	}

	w := NewWalker(f, formSelectors(t), chain, WalkerOptions{})
	attempt := types.NewApplicationAttempt(testJob())

	res, err := w.Run(ctx, attempt)
	require.NoError(t, err)

	assert.Contains(t, f.Calls(), browsertest.Call{Op: "type", Target: "#fn", Arg: "Ada"})
	assert.Contains(t, f.Calls(), browsertest.Call{Op: "select", Target: "#yoe", Arg: "2-5"})
	assert.True(t, termsTicked)
	assert.False(t, stillFollowing)

	assert.Equal(t, 1, mock.Calls(), "only the select reaches the model")
	require.Len(t, mock.Requests(), 1)
	assert.Contains(t, mock.Requests()[0].User, "Years of experience")

	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, 3, res.Fields)
	assert.Equal(t, StateTerminated, res.State)
	assert.Equal(t, types.OutcomeSubmitted, attempt.Status)
	assert.Equal(t, 2, attempt.Page)
	assert.Equal(t, 1, f.CallCount("click", "button[aria-label=Continue to next step]"))
	assert.Equal(t, 1, f.CallCount("click", "button[aria-label=Submit application]"))
}

func TestWalker_ScansEachPageOnce(t *testing.T) {
	for _, n := range []int{1, 2, 4} {
		t.Run(fmt.Sprintf("%d pages", n), func(t *testing.T) {
			pages := make([]string, n)
			for i := range pages {
				pages[i] = textField(fmt.Sprintf("q%d", i), fmt.Sprintf("Question %d", i))
			}
			f := newWizard(pages...)
			src := echoSource()

			res, err := NewWalker(f, formSelectors(t), src, WalkerOptions{}).Run(context.Background(), types.NewApplicationAttempt(testJob()))
			require.NoError(t, err)

			assert.Equal(t, n, res.Scans())
			assert.Len(t, src.questions, n, "no page is revisited")

			var want []State
			for range n {
				want = append(want, StateScanningPage, StateAdvancingPage)
			}
			want = append(want, StateSubmittable, StateTerminated)
			assert.Equal(t, want, res.Trace)
		})
	}
}

func TestWalker_FillFailureStopsAtFailingField(t *testing.T) {
	var fields strings.Builder
	for i := 1; i <= 5; i++ {
		fields.WriteString(textField(fmt.Sprintf("f%d", i), fmt.Sprintf("Question %d", i)))
	}
	f := newWizard(fields.String())
	f.BeforeAction = func(op string, el *goquery.Selection) error {
		if op == "type" && el.AttrOr("id", "") == "f3" {
			return errors.New("element not interactable")
		}
		return nil
	}
	src := echoSource()
	attempt := types.NewApplicationAttempt(testJob())

	res, err := NewWalker(f, formSelectors(t), src, WalkerOptions{}).Run(context.Background(), attempt)

	var ff *FillFailedError
	require.True(t, errors.As(err, &ff), "got %v", err)
	assert.Equal(t, types.FieldFreeText, ff.Kind)
	assert.Equal(t, "Question 3", ff.Context.Label)
	assert.Equal(t, "Backend Engineer", ff.Context.JobTitle)
	assert.Equal(t, "Initech", ff.Context.Company)
	assert.Equal(t, 1, ff.Context.Page)

	assert.Equal(t, 1, f.CallCount("type", "#f1"))
	assert.Equal(t, 1, f.CallCount("type", "#f2"))
	assert.Equal(t, 0, f.CallCount("type", "#f4"))
	assert.Equal(t, 0, f.CallCount("type", "#f5"))
	assert.Equal(t, []string{"Question 1", "Question 2", "Question 3"}, src.questions)
	assert.Equal(t, 0, f.CallCount("click", ""))

	assert.Equal(t, StateTerminated, res.State)
	assert.False(t, attempt.Terminated(), "the caller decides the aborted outcome")
}

func TestWalker_NoAnswerCarriesAttemptContext(t *testing.T) {
	f := newWizard(textField("a", "First name"), textField("b", "Describe your ideal team"))
	src := &fakeSource{AnswerFreelyFunc: func(_ context.Context, question string) (string, error) {
		if question == "First name" {
			return "Ada", nil
		}
		return "", &answer.NoAnswerProducedError{Question: question, Reason: "model reported no data"}
	}}
	attempt := types.NewApplicationAttempt(testJob())

	_, err := NewWalker(f, formSelectors(t), src, WalkerOptions{}).Run(context.Background(), attempt)

	var na *answer.NoAnswerProducedError
	require.True(t, errors.As(err, &na), "got %v", err)
	got := na.AttemptContext()
	assert.Equal(t, "Describe your ideal team", got.Label)
	assert.Equal(t, "model reported no data", got.Reason)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/1", got.JobLink)
}

func TestWalker_Policies(t *testing.T) {
	coverLetter := `<div class="jobs-easy-apply-form-section__grouping"><label for="cl">Cover letter</label><input type="file" id="cl"></div>`
	cardGroup := `<div class="jobs-easy-apply-repeatable-groupings__groupings"><h3 class="fb-dash-form-element__label">Work experience</h3></div>`

	tests := []struct {
		name     string
		page     string
		policies Policies
		wantErr  func(t *testing.T, err error)
		skipped  int
		upload   string
	}{
		{
			name: "cover letter fails by default",
			page: coverLetter,
			wantErr: func(t *testing.T, err error) {
				var ff *FillFailedError
				require.True(t, errors.As(err, &ff), "got %v", err)
				assert.Equal(t, types.FieldUploadCoverLetter, ff.Kind)
				assert.Equal(t, "cover letter upload is not enabled", ff.Context.Reason)
			},
		},
		{
			name:     "cover letter skipped",
			page:     coverLetter,
			policies: Policies{CoverLetter: CoverLetterSkip},
			skipped:  1,
		},
		{
			name:     "cover letter uploaded",
			page:     coverLetter,
			policies: Policies{CoverLetter: CoverLetterUpload, CoverLetterPath: "/tmp/letter.pdf"},
			upload:   "/tmp/letter.pdf",
		},
		{
			name:    "card group skipped by default",
			page:    cardGroup,
			skipped: 1,
		},
		{
			name:     "card group fails when configured",
			page:     cardGroup,
			policies: Policies{CardGroup: CardGroupFail},
			wantErr: func(t *testing.T, err error) {
				var uf *UnclassifiableFieldError
				require.True(t, errors.As(err, &uf), "got %v", err)
				assert.Equal(t, "repeatable card group page", uf.Context.Reason)
				assert.Equal(t, "Initech", uf.Context.Company)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWizard(tt.page)
			attempt := types.NewApplicationAttempt(testJob())
			res, err := NewWalker(f, formSelectors(t), echoSource(), WalkerOptions{Policies: tt.policies}).Run(context.Background(), attempt)

			if tt.wantErr != nil {
				tt.wantErr(t, err)
				assert.Equal(t, 0, f.CallCount("click", "button[aria-label=Submit application]"))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.skipped, res.Skipped)
			assert.Equal(t, types.OutcomeSubmitted, attempt.Status)
			if tt.upload != "" {
				assert.Contains(t, f.Calls(), browsertest.Call{Op: "upload", Target: "#cl", Arg: tt.upload})
			}
		})
	}
}

func TestWalker_ResumeUpload(t *testing.T) {
	f := newWizard(`<div class="jobs-easy-apply-form-section__grouping"><label for="cv">Upload resume</label><input type="file" id="cv"></div>`)
	w := NewWalker(f, formSelectors(t), echoSource(), WalkerOptions{Policies: Policies{ResumePath: "/data/resume.pdf"}})

	_, err := w.Run(context.Background(), types.NewApplicationAttempt(testJob()))
	require.NoError(t, err)
	assert.Contains(t, f.Calls(), browsertest.Call{Op: "upload", Target: "#cv", Arg: "/data/resume.pdf"})
}

func TestWalker_MissingControls(t *testing.T) {
	field := textField("a", "First name")

	tests := []struct {
		name    string
		fake    func() *browsertest.Fake
		opts    WalkerOptions
		control string
	}{
		{
			name:    "no dialog",
			fake:    func() *browsertest.Fake { return browsertest.New(`<html><body></body></html>`) },
			control: "dialog",
		},
		{
			name:    "no next or review",
			fake:    func() *browsertest.Fake { return browsertest.New(dialogPage(field)) },
			control: "next",
		},
		{
			name: "no submit after review",
			fake: func() *browsertest.Fake {
				f := browsertest.New(dialogPage(field + reviewButton))
				f.OnClick(`button[aria-label="Review your application"]`, func(f *browsertest.Fake, _ *goquery.Selection) error {
					f.ReplaceInner(".jobs-easy-apply-modal", "<p>Almost there</p>")
					return nil
				})
				return f
			},
			control: "submit",
		},
		{
			name:    "no confirmation after submit",
			fake:    func() *browsertest.Fake { return browsertest.New(dialogPage(field + submitButton)) },
			control: "success confirmation",
		},
		{
			name: "wizard never ends",
			fake: func() *browsertest.Fake {
				f := browsertest.New(dialogPage(field + nextButton))
				f.OnClick(`button[aria-label="Continue to next step"]`, func(f *browsertest.Fake, _ *goquery.Selection) error {
					f.ReplaceInner(".jobs-easy-apply-modal", field+nextButton)
					return nil
				})
				return f
			},
			opts:    WalkerOptions{MaxPages: 3},
			control: "review",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempt := types.NewApplicationAttempt(testJob())
			_, err := NewWalker(tt.fake(), formSelectors(t), echoSource(), tt.opts).Run(context.Background(), attempt)

			var mc *MissingControlError
			require.True(t, errors.As(err, &mc), "got %v", err)
			assert.Equal(t, tt.control, mc.Control)
			assert.Equal(t, "Backend Engineer", mc.Context.JobTitle)
			assert.NotEqual(t, types.OutcomeSubmitted, attempt.Status)
		})
	}
}

func TestWalker_PageRejected(t *testing.T) {
	f := browsertest.New(dialogPage(textField("ph", "Phone") + nextButton))
	f.OnClick(`button[aria-label="Continue to next step"]`, func(f *browsertest.Fake, _ *goquery.Selection) error {
		f.Append(".jobs-easy-apply-modal", `<div class="artdeco-inline-feedback--error">Enter a valid phone number</div>`)
		return nil
	})

	_, err := NewWalker(f, formSelectors(t), echoSource(), WalkerOptions{}).Run(context.Background(), types.NewApplicationAttempt(testJob()))

	var ff *FillFailedError
	require.True(t, errors.As(err, &ff), "got %v", err)
	assert.Equal(t, "page rejected answers", ff.Context.Reason)
	assert.Equal(t, "Enter a valid phone number", ff.Context.Label)
}

// textFailDriver fails Text on elements matching failOn.
type textFailDriver struct {
	*browsertest.Fake
	failOn string
}

func (d textFailDriver) Text(ctx context.Context, h browser.Handle) (string, error) {
	if el, ok := h.(*goquery.Selection); ok && el.Is(d.failOn) {
		return "", errors.New("node detached")
	}
	return d.Fake.Text(ctx, h)
}

func TestWalker_PageRejectedUnreadableMessage(t *testing.T) {
	f := browsertest.New(dialogPage(textField("ph", "Phone") + nextButton))
	f.OnClick(`button[aria-label="Continue to next step"]`, func(f *browsertest.Fake, _ *goquery.Selection) error {
		f.Append(".jobs-easy-apply-modal", `<div class="artdeco-inline-feedback--error">Enter a valid phone number</div>`)
		return nil
	})
	d := textFailDriver{Fake: f, failOn: ".artdeco-inline-feedback--error"}

	_, err := NewWalker(d, formSelectors(t), echoSource(), WalkerOptions{}).Run(context.Background(), types.NewApplicationAttempt(testJob()))

	var ff *FillFailedError
	require.True(t, errors.As(err, &ff), "got %v", err)
	assert.Equal(t, "page rejected answers", ff.Context.Reason)
	assert.Equal(t, ".artdeco-inline-feedback--error", ff.Context.Label)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "scanning_page", StateScanningPage.String())
	assert.Equal(t, "terminated", StateTerminated.String())
	assert.Equal(t, "state(9)", State(9).String())
}
