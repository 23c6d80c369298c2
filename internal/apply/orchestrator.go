// Package apply runs the outer job loop: open the session, walk every search query and result
// page, skip listings that are applied or blacklisted, and hand each remaining quick-apply form
// to the form walker. Failed attempts are recorded and their form is discarded before moving on.
package apply

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/quick-apply/internal/browser"
	"github.com/jonathan/quick-apply/internal/config"
	"github.com/jonathan/quick-apply/internal/form"
	"github.com/jonathan/quick-apply/internal/observability"
	"github.com/jonathan/quick-apply/internal/outcome"
	"github.com/jonathan/quick-apply/internal/pacing"
	"github.com/jonathan/quick-apply/internal/types"
)

// DefaultListRetries bounds the result list stabilisation loop.
const DefaultListRetries = 3

// FormWalker fills and submits one open quick-apply form.
type FormWalker interface {
	Run(ctx context.Context, attempt *types.ApplicationAttempt) (form.WalkResult, error)
}

// BlacklistSource yields the current exclusion rule, re-reading it on every call.
type BlacklistSource interface {
	Refresh() (types.BlacklistRule, error)
}

// Deps are the collaborators of an Orchestrator. Pacer and Printer may be nil.
type Deps struct {
	Driver      browser.Driver
	Selectors   *config.Selectors
	Walker      FormWalker
	Blacklist   BlacklistSource
	Recorder    outcome.Recorder
	Pacer       *pacing.Pacer
	Printer     *observability.Printer
	Credentials Credentials
}

// Options tunes the job loop.
type Options struct {
	SearchURLs     []string
	MaxResultPages int
	ListRetries    int
	// ListRetryDelay spaces out the reads of a still-growing result list.
	ListRetryDelay pacing.Settle
	// Settle is the short pause after scrolling, typing credentials and selecting a listing.
	Settle      pacing.Settle
	WaitTimeout time.Duration
	ResumePath  string
	Verbose     bool
}

// Orchestrator owns the browser session for one run.
type Orchestrator struct {
	driver    browser.Driver
	sel       *config.Selectors
	walker    FormWalker
	blacklist BlacklistSource
	recorder  outcome.Recorder
	pacer     *pacing.Pacer
	printer   *observability.Printer
	creds     Credentials
	opts      Options
}

// New creates an orchestrator.
func New(deps Deps, opts Options) *Orchestrator {
	if opts.MaxResultPages <= 0 {
		opts.MaxResultPages = 1
	}
	if opts.ListRetries <= 0 {
		opts.ListRetries = DefaultListRetries
	}
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = form.DefaultWaitTimeout
	}
	return &Orchestrator{
		driver:    deps.Driver,
		sel:       deps.Selectors,
		walker:    deps.Walker,
		blacklist: deps.Blacklist,
		recorder:  deps.Recorder,
		pacer:     deps.Pacer,
		printer:   deps.Printer,
		creds:     deps.Credentials,
		opts:      opts,
	}
}

// Run logs in and works through every search query. Attempt-level failures are recorded and
// the run continues; a login failure, a failed bail-out or cancellation ends it.
func (o *Orchestrator) Run(ctx context.Context) (types.RunStats, error) {
	start := time.Now()
	var stats types.RunStats

	finish := func(err error) (types.RunStats, error) {
		stats.Duration = time.Since(start)
		if o.printer != nil && o.opts.Verbose {
			o.printer.PrintRunStats(stats)
		}
		return stats, err
	}

	if err := o.Login(ctx); err != nil {
		return finish(err)
	}

	for i, searchURL := range o.opts.SearchURLs {
		log.Printf("[APPLY] Query %d/%d: %s", i+1, len(o.opts.SearchURLs), searchURL)
		stats.Queries++
		rule := o.refreshBlacklist()
		if err := o.runQuery(ctx, searchURL, rule, &stats); err != nil {
			return finish(err)
		}
	}

	log.Printf("[APPLY] Done: %d submitted, %d failed, %d listings seen",
		stats.Submitted, stats.Failed, stats.Listings)
	return finish(nil)
}

// refreshBlacklist re-reads the blacklist. A broken file keeps the previous rule in force.
func (o *Orchestrator) refreshBlacklist() types.BlacklistRule {
	if o.blacklist == nil {
		return types.BlacklistRule{}
	}
	rule, err := o.blacklist.Refresh()
	if err != nil {
		log.Printf("[APPLY] Warning: keeping previous blacklist: %v", err)
	}
	return rule
}

// runQuery scans up to MaxResultPages pages of one search.
func (o *Orchestrator) runQuery(ctx context.Context, searchURL string, rule types.BlacklistRule, stats *types.RunStats) error {
	if err := o.driver.Navigate(ctx, searchURL); err != nil {
		return fmt.Errorf("failed to open search %s: %w", searchURL, err)
	}
	if err := o.pacer.Wait(ctx); err != nil {
		return err
	}

	for page := 1; ; page++ {
		stats.ResultPages++
		if err := o.scanPage(ctx, rule, stats); err != nil {
			return err
		}
		if page >= o.opts.MaxResultPages {
			return nil
		}

		more, err := o.nextPage(ctx)
		if err != nil || !more {
			return err
		}
		log.Printf("[SEARCH] Result page %d", page+1)
	}
}

// nextPage clicks the next-page control. It reports false on the last page.
func (o *Orchestrator) nextPage(ctx context.Context) (bool, error) {
	if o.sel.Search.NextPage == "" {
		return false, nil
	}
	next, err := browser.FindOptional(ctx, o.driver, nil, o.sel.Search.NextPage)
	if err != nil {
		return false, fmt.Errorf("failed to probe next page: %w", err)
	}
	if next == nil {
		return false, nil
	}
	if err := o.driver.ScrollIntoView(ctx, next); err != nil {
		return false, fmt.Errorf("failed to scroll to next page: %w", err)
	}
	if err := o.driver.Click(ctx, next); err != nil {
		return false, fmt.Errorf("failed to open next page: %w", err)
	}
	return true, o.pacer.Wait(ctx)
}

// scanPage handles every listing on the current result page.
func (o *Orchestrator) scanPage(ctx context.Context, rule types.BlacklistRule, stats *types.RunStats) error {
	empty, err := o.noResults(ctx)
	if err != nil {
		return fmt.Errorf("failed to probe for results: %w", err)
	}
	if empty {
		log.Printf("[SEARCH] No jobs found")
		return nil
	}

	items, err := o.stableItems(ctx)
	if err != nil {
		return err
	}
	log.Printf("[SEARCH] Jobs on page: %d", len(items))

	for i := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		item, err := o.itemAt(ctx, i)
		if err != nil {
			return err
		}
		if item == nil {
			log.Printf("[SEARCH] Warning: result list shrank to %d items", i)
			return nil
		}
		if err := o.driver.ScrollIntoView(ctx, item); err != nil {
			log.Printf("[SEARCH] Warning: could not scroll to listing %d: %v", i+1, err)
			continue
		}
		if err := o.opts.Settle.Wait(ctx); err != nil {
			return err
		}

		job, err := o.readCard(ctx, item)
		if err != nil {
			log.Printf("[SEARCH] Warning: skipping unreadable listing %d: %v", i+1, err)
			continue
		}
		stats.Listings++
		log.Printf("[SEARCH] Found job item: %s", job)

		if err := o.handleListing(ctx, item, job, rule, stats); err != nil {
			return err
		}
	}
	return nil
}

// handleListing skips or applies to one listing. Only run-fatal errors are returned.
func (o *Orchestrator) handleListing(ctx context.Context, item browser.Handle, job types.JobListing, rule types.BlacklistRule, stats *types.RunStats) error {
	if o.alreadyApplied(ctx, job) {
		log.Printf("[APPLY] Skipping %s: already applied", job)
		stats.SkippedApplied++
		return nil
	}
	if rule.Excludes(job) {
		log.Printf("[APPLY] Skipping %s: blacklisted", job)
		stats.SkippedBlacklisted++
		return nil
	}

	if err := o.driver.Click(ctx, item); err != nil {
		log.Printf("[APPLY] Warning: could not open %s: %v", job, err)
		return nil
	}
	if err := o.opts.Settle.Wait(ctx); err != nil {
		return err
	}
	o.enrich(ctx, &job)

	button, err := browser.FindOptional(ctx, o.driver, nil, o.sel.Search.QuickApplyButton)
	if err != nil {
		return fmt.Errorf("failed to probe quick apply for %s: %w", job, err)
	}
	if button == nil {
		log.Printf("[APPLY] Skipping %s: no quick apply", job)
		stats.SkippedNoQuickApply++
		return nil
	}

	if err := o.attempt(ctx, button, job, stats); err != nil {
		return err
	}
	return o.pacer.Wait(ctx)
}

// alreadyApplied checks the card marker first, then the outcome store.
func (o *Orchestrator) alreadyApplied(ctx context.Context, job types.JobListing) bool {
	if job.AlreadyApplied {
		return true
	}
	if o.recorder == nil {
		return false
	}
	applied, err := o.recorder.HasApplied(ctx, job.Link)
	if err != nil {
		log.Printf("[APPLY] Warning: could not check history for %s: %v", job, err)
		return false
	}
	return applied
}

// attempt opens the form and walks it. Every attempt ends with exactly one outcome record.
func (o *Orchestrator) attempt(ctx context.Context, button browser.Handle, job types.JobListing, stats *types.RunStats) error {
	attempt := types.NewApplicationAttempt(job)
	attempt.ResumePath = o.opts.ResumePath
	if o.printer != nil && o.opts.Verbose {
		o.printer.PrintListing(&attempt.Job)
	}
	log.Printf("[APPLY] Applying to %s", job)

	err := o.driver.Click(ctx, button)
	if err != nil {
		err = &AttemptError{Context: attempt.Context("", "could not open quick apply form"), Cause: err}
	} else {
		_, err = o.walker.Run(ctx, attempt)
	}

	if err == nil {
		stats.Submitted++
		log.Printf("[APPLY] Submitted %s", job)
		if rerr := o.recorder.RecordSuccess(ctx, attempt); rerr != nil {
			log.Printf("[APPLY] Warning: failed to record success for %s: %v", job, rerr)
		}
		o.printAttempt(attempt)
		return nil
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if !IsAttemptLevel(err) {
		return fmt.Errorf("failed to apply to %s: %w", job, err)
	}
	return o.abort(ctx, attempt, err, stats)
}

// abort records the failed attempt, then discards its form.
func (o *Orchestrator) abort(ctx context.Context, attempt *types.ApplicationAttempt, cause error, stats *types.RunStats) error {
	failure := contextOf(cause, attempt)
	attempt.MarkAborted(failure)
	stats.Failed++
	log.Printf("[APPLY] Aborted %s: %v", attempt.Job, cause)

	if err := o.recorder.RecordFailure(ctx, attempt); err != nil {
		log.Printf("[APPLY] Warning: failed to record failure for %s: %v", attempt.Job, err)
	}
	o.printAttempt(attempt)

	if err := o.BailOut(ctx); err != nil {
		var bf *BailOutFailedError
		if errors.As(err, &bf) {
			bf.Context = failure
		}
		return err
	}
	return nil
}

func (o *Orchestrator) printAttempt(attempt *types.ApplicationAttempt) {
	if o.printer != nil && o.opts.Verbose {
		o.printer.PrintAttempt(attempt)
	}
}

// BailOut closes the open form and discards the draft. A form that is already gone needs
// nothing; a form that cannot be closed is a *BailOutFailedError.
func (o *Orchestrator) BailOut(ctx context.Context) error {
	sel := o.sel.Form

	dialog, err := browser.FindOptional(ctx, o.driver, nil, sel.Dialog)
	if err != nil {
		return &BailOutFailedError{Step: "probe dialog", Cause: err}
	}
	if dialog == nil {
		log.Printf("[APPLY] No open form to discard")
		return nil
	}

	closeButton, err := o.driver.Find(ctx, dialog, sel.Close)
	if err != nil {
		return &BailOutFailedError{Step: "find close", Cause: err}
	}
	if err := o.driver.Click(ctx, closeButton); err != nil {
		return &BailOutFailedError{Step: "close", Cause: err}
	}

	alert, err := o.driver.WaitVisible(ctx, sel.SaveAlert, o.opts.WaitTimeout)
	if err != nil {
		if !browser.IsMissing(err) {
			return &BailOutFailedError{Step: "wait for save prompt", Cause: err}
		}
		// Closing a form with no answers yet skips the save prompt.
		return o.confirmClosed(ctx, "close")
	}

	discard, err := o.driver.Find(ctx, alert, sel.Discard)
	if err != nil {
		return &BailOutFailedError{Step: "find discard", Cause: err}
	}
	if err := o.driver.Click(ctx, discard); err != nil {
		return &BailOutFailedError{Step: "discard", Cause: err}
	}
	if err := o.opts.Settle.Wait(ctx); err != nil {
		return err
	}
	return o.confirmClosed(ctx, "discard")
}

func (o *Orchestrator) confirmClosed(ctx context.Context, step string) error {
	still, err := browser.FindOptional(ctx, o.driver, nil, o.sel.Form.Dialog)
	if err != nil {
		return &BailOutFailedError{Step: step, Cause: err}
	}
	if still != nil {
		return &BailOutFailedError{Step: step, Cause: errors.New("form still open")}
	}
	log.Printf("[APPLY] Discarded the form")
	return nil
}
