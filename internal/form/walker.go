package form

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/quick-apply/internal/answer"
	"github.com/jonathan/quick-apply/internal/browser"
	"github.com/jonathan/quick-apply/internal/config"
	"github.com/jonathan/quick-apply/internal/pacing"
	"github.com/jonathan/quick-apply/internal/types"
)

// State is a form walker state.
type State int

const (
	StateScanningPage State = iota
	StateAdvancingPage
	StateSubmittable
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateScanningPage:
		return "scanning_page"
	case StateAdvancingPage:
		return "advancing_page"
	case StateSubmittable:
		return "submittable"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const (
	DefaultWaitTimeout = 10 * time.Second
	DefaultMaxPages    = 15
)

// WalkResult summarises one walk through the wizard.
type WalkResult struct {
	State State
	// Pages is the number of pages scanned.
	Pages int
	// Fields counts the fields filled; Skipped counts those left alone by policy.
	Fields  int
	Skipped int
	// Trace lists every state entered, in order.
	Trace []State
}

func (r *WalkResult) enter(s State) {
	r.State = s
	r.Trace = append(r.Trace, s)
}

// Scans counts how often the walker entered StateScanningPage.
func (r WalkResult) Scans() int {
	n := 0
	for _, s := range r.Trace {
		if s == StateScanningPage {
			n++
		}
	}
	return n
}

// WalkerOptions configures timeouts, page limits and policies.
type WalkerOptions struct {
	Policies          Policies
	WaitTimeout       time.Duration
	MaxPages          int
	Settle            pacing.Settle
	SuggestionTimeout time.Duration
	Verbose           bool
}

// Walker drives one open quick-apply dialog from its first page to submission.
// Any error aborts the walk; the caller is responsible for bailing out of the dialog.
type Walker struct {
	driver     browser.Driver
	sel        config.FormSelectors
	source     answer.Source
	classifier *Classifier
	filler     *Filler
	opts       WalkerOptions
}

// NewWalker creates a walker over the given driver, answering through source.
func NewWalker(d browser.Driver, sel config.FormSelectors, source answer.Source, opts WalkerOptions) *Walker {
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = DefaultWaitTimeout
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.Policies.CardGroup == "" {
		opts.Policies.CardGroup = CardGroupSkip
	}
	if opts.Policies.CoverLetter == "" {
		opts.Policies.CoverLetter = CoverLetterFail
	}
	return &Walker{
		driver:     d,
		sel:        sel,
		source:     source,
		classifier: NewClassifier(d, sel),
		filler: NewFiller(d, sel, source, FillerOptions{
			Settle:            opts.Settle,
			SuggestionTimeout: opts.SuggestionTimeout,
			Verbose:           opts.Verbose,
		}),
		opts: opts,
	}
}

// Run walks the open dialog. On success the attempt is marked submitted. Every returned error
// carries the attempt context of the job and page it happened on.
func (w *Walker) Run(ctx context.Context, attempt *types.ApplicationAttempt) (WalkResult, error) {
	var res WalkResult
	attempt.Page = 1

	for {
		res.enter(StateScanningPage)
		res.Pages++
		if err := w.fillPage(ctx, attempt, &res); err != nil {
			res.enter(StateTerminated)
			return res, err
		}

		res.enter(StateAdvancingPage)
		advanced, err := w.advance(ctx, attempt)
		if err != nil {
			res.enter(StateTerminated)
			return res, err
		}
		if !advanced {
			break
		}
		attempt.Page++
		if attempt.Page > w.opts.MaxPages {
			res.enter(StateTerminated)
			return res, &MissingControlError{
				Control: "review",
				Context: attempt.Context("", fmt.Sprintf("no review step after %d pages", w.opts.MaxPages)),
			}
		}
	}

	res.enter(StateSubmittable)
	if err := w.submit(ctx, attempt); err != nil {
		res.enter(StateTerminated)
		return res, err
	}
	attempt.MarkSubmitted()
	res.enter(StateTerminated)

	if w.opts.Verbose {
		log.Printf("[FORM] Submitted %s after %d page(s), %d field(s) filled, %d skipped",
			attempt.Job, res.Pages, res.Fields, res.Skipped)
	}
	return res, nil
}

// fillPage classifies, answers and fills each field of the current page in document order.
func (w *Walker) fillPage(ctx context.Context, attempt *types.ApplicationAttempt, res *WalkResult) error {
	dialog, err := w.driver.WaitVisible(ctx, w.sel.Dialog, w.opts.WaitTimeout)
	if err != nil {
		return &MissingControlError{Control: "dialog", Context: attempt.Context("", "apply dialog not visible"), Cause: err}
	}

	elements, card, err := w.classifier.Elements(ctx, dialog)
	if err != nil {
		return withAttempt(err, attempt, "", asUnclassifiable)
	}
	if card != nil {
		return w.handleCardGroup(attempt, *card, res)
	}

	for _, el := range elements {
		field, err := w.classifier.Classify(ctx, el)
		if err != nil {
			return withAttempt(err, attempt, "", asUnclassifiable)
		}
		skipped, err := w.fill(ctx, field)
		if err != nil {
			return withAttempt(err, attempt, field.Label, asFillFailed(field.Kind))
		}
		if skipped {
			res.Skipped++
		} else {
			res.Fields++
		}
	}
	return nil
}

func (w *Walker) handleCardGroup(attempt *types.ApplicationAttempt, field types.FormField, res *WalkResult) error {
	if w.opts.Policies.CardGroup == CardGroupFail {
		return &UnclassifiableFieldError{Context: attempt.Context(field.Label, "repeatable card group page")}
	}
	log.Printf("[FORM] Skipping repeatable card group %q on page %d of %s", field.Label, attempt.Page, attempt.Job)
	res.Skipped++
	return nil
}

// fill answers and fills one field. It reports whether the field was skipped by policy.
func (w *Walker) fill(ctx context.Context, field types.FormField) (bool, error) {
	if w.opts.Verbose {
		log.Printf("[FORM] %s field %q", field.Kind, field.Label)
	}

	switch field.Kind {
	case types.FieldFreeText:
		text, err := w.source.AnswerFreely(ctx, field.Label)
		if err != nil {
			return false, err
		}
		return false, w.filler.FillText(ctx, field, text)

	case types.FieldSingleSelectList:
		choice, err := w.source.AnswerFromOptions(ctx, field.Label, field.Choices)
		if err != nil {
			return false, err
		}
		return false, w.filler.SelectFromList(ctx, field, choice)

	case types.FieldRadioGroup:
		choice, err := w.source.AnswerFromOptions(ctx, field.Label, field.Choices)
		if err != nil {
			return false, err
		}
		return false, w.filler.ClickRadioByLabel(ctx, field, choice)

	case types.FieldCheckbox:
		choice, err := w.source.AnswerFromOptions(ctx, field.Label, field.Choices)
		if err != nil {
			return false, err
		}
		return false, w.filler.ClickCheckbox(ctx, field, choice)

	case types.FieldUploadResume:
		if w.opts.Policies.ResumePath == "" {
			return false, &FillFailedError{Kind: field.Kind, Context: types.AttemptContext{Label: field.Label, Reason: "no resume configured"}}
		}
		return false, w.filler.UploadFile(ctx, field, w.opts.Policies.ResumePath)

	case types.FieldUploadCoverLetter:
		switch w.opts.Policies.CoverLetter {
		case CoverLetterSkip:
			log.Printf("[FORM] Skipping cover letter upload %q", field.Label)
			return true, nil
		case CoverLetterUpload:
			if w.opts.Policies.CoverLetterPath == "" {
				return false, &FillFailedError{Kind: field.Kind, Context: types.AttemptContext{Label: field.Label, Reason: "no cover letter configured"}}
			}
			return false, w.filler.UploadFile(ctx, field, w.opts.Policies.CoverLetterPath)
		default:
			return false, &FillFailedError{Kind: field.Kind, Context: types.AttemptContext{Label: field.Label, Reason: "cover letter upload is not enabled"}}
		}

	default:
		return false, &UnclassifiableFieldError{Context: types.AttemptContext{Label: field.Label, Reason: fmt.Sprintf("no filler for %s", field.Kind)}}
	}
}

// advance clicks the next-step control. It reports false when the wizard shows a review or
// submit control instead, which means the form is ready to submit.
func (w *Walker) advance(ctx context.Context, attempt *types.ApplicationAttempt) (bool, error) {
	next, err := browser.FindOptional(ctx, w.driver, nil, w.sel.Next)
	if err != nil {
		return false, &MissingControlError{Control: "next", Context: attempt.Context("", "could not probe for next step"), Cause: err}
	}
	if next == nil {
		if _, _, err := browser.FirstOf(ctx, w.driver, nil, []string{w.sel.Review, w.sel.Submit}); err != nil {
			return false, &MissingControlError{Control: "next", Context: attempt.Context("", "no next, review or submit control"), Cause: err}
		}
		return false, nil
	}

	if err := w.driver.Click(ctx, next); err != nil {
		return false, &MissingControlError{Control: "next", Context: attempt.Context("", "could not click next step"), Cause: err}
	}
	if err := w.opts.Settle.Wait(ctx); err != nil {
		return false, err
	}
	return true, w.checkPageErrors(ctx, attempt)
}

// checkPageErrors fails the attempt when the site rejected the answers of the page just left.
func (w *Walker) checkPageErrors(ctx context.Context, attempt *types.ApplicationAttempt) error {
	if w.sel.PageError == "" {
		return nil
	}
	h, err := browser.FindOptional(ctx, w.driver, nil, w.sel.PageError)
	if err != nil || h == nil {
		return err
	}
	msg, err := w.driver.Text(ctx, h)
	if err != nil {
		log.Printf("[FORM] Warning: could not read page error for %s: %v", attempt.Job, err)
		msg = w.sel.PageError
	}
	return &FillFailedError{
		Kind:    types.FieldUnknown,
		Context: attempt.Context(normalizeText(msg), "page rejected answers"),
	}
}

// submit runs review, the best-effort unfollow, submit and the success confirmation.
func (w *Walker) submit(ctx context.Context, attempt *types.ApplicationAttempt) error {
	review, err := browser.FindOptional(ctx, w.driver, nil, w.sel.Review)
	if err != nil {
		return &MissingControlError{Control: "review", Context: attempt.Context("", "could not probe for review"), Cause: err}
	}
	if review != nil {
		if err := w.driver.Click(ctx, review); err != nil {
			return &MissingControlError{Control: "review", Context: attempt.Context("", "could not click review"), Cause: err}
		}
		if err := w.opts.Settle.Wait(ctx); err != nil {
			return err
		}
	}

	w.unfollow(ctx, attempt)

	submit, err := w.driver.Find(ctx, nil, w.sel.Submit)
	if err != nil {
		return &MissingControlError{Control: "submit", Context: attempt.Context("", "submit control not found"), Cause: err}
	}
	if err := w.driver.Click(ctx, submit); err != nil {
		return &MissingControlError{Control: "submit", Context: attempt.Context("", "could not click submit"), Cause: err}
	}

	if _, err := w.driver.WaitVisible(ctx, w.sel.SuccessPopup, w.opts.WaitTimeout); err != nil {
		return &MissingControlError{Control: "success confirmation", Context: attempt.Context("", "no confirmation after submit"), Cause: err}
	}
	dismiss, err := w.driver.Find(ctx, nil, w.sel.SuccessDismiss)
	if err != nil {
		return &MissingControlError{Control: "success dismiss", Context: attempt.Context("", "confirmation cannot be dismissed"), Cause: err}
	}
	if err := w.driver.Click(ctx, dismiss); err != nil {
		return &MissingControlError{Control: "success dismiss", Context: attempt.Context("", "could not dismiss confirmation"), Cause: err}
	}
	return nil
}

// unfollow unticks the "follow company" box. Failures are only logged.
func (w *Walker) unfollow(ctx context.Context, attempt *types.ApplicationAttempt) {
	if w.sel.Unfollow == "" {
		return
	}
	toggle, err := browser.FindOptional(ctx, w.driver, nil, w.sel.Unfollow)
	if err != nil {
		log.Printf("[FORM] Warning: could not probe unfollow toggle for %s: %v", attempt.Job, err)
		return
	}
	if toggle == nil {
		return
	}

	// The toggle is a label; its input says whether the company is still followed.
	if id, ok, err := w.driver.Attribute(ctx, toggle, "for"); err == nil && ok && id != "" {
		input, err := browser.FindOptional(ctx, w.driver, nil, fmt.Sprintf("input[id=%q]", id))
		if err == nil && input != nil {
			if checked, err := w.driver.Checked(ctx, input); err == nil && !checked {
				return
			}
		}
	}

	if err := w.driver.Click(ctx, toggle); err != nil {
		log.Printf("[FORM] Warning: could not unfollow company for %s: %v", attempt.Job, err)
	}
}
