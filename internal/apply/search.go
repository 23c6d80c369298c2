package apply

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/quick-apply/internal/browser"
	"github.com/jonathan/quick-apply/internal/types"
)

// stableItems returns the result list once two consecutive reads agree on its length.
// The list renders in batches, so a single read can miss cards still loading. If the length
// keeps changing for every retry the page is given up and no items are returned.
func (o *Orchestrator) stableItems(ctx context.Context) ([]browser.Handle, error) {
	listItem := o.sel.Search.ListItem
	if _, err := o.driver.WaitVisible(ctx, listItem, o.opts.WaitTimeout); err != nil {
		if browser.IsMissing(err) {
			log.Printf("[SEARCH] No listings rendered")
			return nil, nil
		}
		return nil, err
	}

	items, err := o.driver.FindAll(ctx, nil, listItem)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	prev := len(items)

	for retry := 0; retry < o.opts.ListRetries; retry++ {
		if err := o.opts.ListRetryDelay.Wait(ctx); err != nil {
			return nil, err
		}
		items, err = o.driver.FindAll(ctx, nil, listItem)
		if err != nil {
			return nil, fmt.Errorf("failed to list results: %w", err)
		}
		if len(items) == prev {
			return items, nil
		}
		log.Printf("[SEARCH] Result list went from %d to %d items, retrying", prev, len(items))
		prev = len(items)
	}

	log.Printf("[SEARCH] Warning: result list did not settle after %d retries, skipping page", o.opts.ListRetries)
	return nil, nil
}

// itemAt re-reads the result list and returns the i-th card, or nil when the list shrank.
// Cards re-render as they scroll into view, so handles from an earlier read go stale.
func (o *Orchestrator) itemAt(ctx context.Context, i int) (browser.Handle, error) {
	items, err := o.driver.FindAll(ctx, nil, o.sel.Search.ListItem)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	if i >= len(items) {
		return nil, nil
	}
	return items[i], nil
}

// noResults reports whether the page shows the empty-search banner.
func (o *Orchestrator) noResults(ctx context.Context) (bool, error) {
	if o.sel.Search.NoResults == "" {
		return false, nil
	}
	banner, err := browser.FindOptional(ctx, o.driver, nil, o.sel.Search.NoResults)
	if err != nil {
		return false, err
	}
	return banner != nil, nil
}

// readCard reads what the result list shows about one listing.
func (o *Orchestrator) readCard(ctx context.Context, item browser.Handle) (types.JobListing, error) {
	sel := o.sel.Search
	var job types.JobListing

	title, err := o.textOf(ctx, item, sel.Title, true)
	if err != nil {
		return job, fmt.Errorf("failed to read title: %w", err)
	}
	job.Title = title

	if job.Company, err = o.textOf(ctx, item, sel.Company, true); err != nil {
		return job, fmt.Errorf("failed to read company of %q: %w", title, err)
	}
	if job.Location, err = o.textOf(ctx, item, sel.Location, false); err != nil {
		return job, fmt.Errorf("failed to read location of %q: %w", title, err)
	}

	link, err := o.driver.Find(ctx, item, sel.Link)
	if err != nil {
		return job, fmt.Errorf("failed to find link of %q: %w", title, err)
	}
	href, ok, err := o.driver.Attribute(ctx, link, "href")
	if err != nil {
		return job, fmt.Errorf("failed to read link of %q: %w", title, err)
	}
	if !ok || href == "" {
		return job, fmt.Errorf("listing %q has no link", title)
	}
	page, _ := o.driver.CurrentURL(ctx)
	if job.Link, err = canonicalLink(page, href); err != nil {
		return job, err
	}

	footer, err := o.textOf(ctx, item, sel.Footer, false)
	if err != nil {
		return job, fmt.Errorf("failed to read footer of %q: %w", title, err)
	}
	job.AlreadyApplied = sel.AppliedText != "" && strings.Contains(footer, sel.AppliedText)

	return job, nil
}

// enrich reads the description and hiring contact from the detail pane of the selected listing.
// Both are informational, so failures are logged and leave the fields empty.
func (o *Orchestrator) enrich(ctx context.Context, job *types.JobListing) {
	sel := o.sel.Search

	panel, err := o.driver.WaitVisible(ctx, sel.Description, o.opts.WaitTimeout)
	if err != nil {
		log.Printf("[SEARCH] Warning: no description for %s: %v", job, err)
	} else if html, err := o.driver.OuterHTML(ctx, panel); err != nil {
		log.Printf("[SEARCH] Warning: could not read description for %s: %v", job, err)
	} else if job.Description, err = ExtractDescription(html); err != nil {
		log.Printf("[SEARCH] Warning: %v", err)
	}

	if sel.HiringTeam == "" {
		return
	}
	contact, err := browser.FindOptional(ctx, o.driver, nil, sel.HiringTeam)
	if err != nil || contact == nil {
		return
	}
	href, ok, err := o.driver.Attribute(ctx, contact, "href")
	if err != nil || !ok {
		return
	}
	page, _ := o.driver.CurrentURL(ctx)
	if link, err := canonicalLink(page, href); err == nil {
		job.HiringContact = link
	}
}

// textOf returns the normalized text of selector inside scope. Optional selectors that are
// unset or match nothing yield "".
func (o *Orchestrator) textOf(ctx context.Context, scope browser.Handle, selector string, required bool) (string, error) {
	if selector == "" {
		return "", nil
	}
	var (
		h   browser.Handle
		err error
	)
	if required {
		h, err = o.driver.Find(ctx, scope, selector)
	} else {
		h, err = browser.FindOptional(ctx, o.driver, scope, selector)
	}
	if err != nil || h == nil {
		return "", err
	}
	text, err := o.driver.Text(ctx, h)
	if err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(text), " "), nil
}
