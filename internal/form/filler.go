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

// DefaultSuggestionTimeout is how long FillText waits for an autocomplete panel to render.
const DefaultSuggestionTimeout = 2 * time.Second

// Filler performs the input action for each field kind, then waits a short settle delay.
type Filler struct {
	driver         browser.Driver
	sel            config.FormSelectors
	source         answer.Source
	settle         pacing.Settle
	suggestTimeout time.Duration
	verbose        bool
}

// FillerOptions tunes the filler's waits.
type FillerOptions struct {
	Settle            pacing.Settle
	SuggestionTimeout time.Duration
	Verbose           bool
}

// NewFiller creates a filler. source resolves autocomplete suggestions after typing.
func NewFiller(d browser.Driver, sel config.FormSelectors, source answer.Source, opts FillerOptions) *Filler {
	if opts.SuggestionTimeout <= 0 {
		opts.SuggestionTimeout = DefaultSuggestionTimeout
	}
	return &Filler{
		driver:         d,
		sel:            sel,
		source:         source,
		settle:         opts.Settle,
		suggestTimeout: opts.SuggestionTimeout,
		verbose:        opts.Verbose,
	}
}

// FillText types text, then reconciles against a suggestion panel if one appears.
// When suggestions render, the chosen suggestion is clicked instead of trusting the typed text.
func (f *Filler) FillText(ctx context.Context, field types.FormField, text string) error {
	if err := f.driver.TypeText(ctx, field.Handle, text); err != nil {
		return f.failed(field, "could not type answer", err)
	}
	if err := f.settle.Wait(ctx); err != nil {
		return err
	}

	options, err := f.suggestions(ctx)
	if err != nil {
		return f.failed(field, "could not read suggestions", err)
	}
	if len(options) == 0 {
		return nil
	}

	texts := make([]string, 0, len(options))
	for _, opt := range options {
		t, err := f.driver.Text(ctx, opt)
		if err != nil {
			return f.failed(field, "could not read suggestion", err)
		}
		texts = append(texts, normalizeText(t))
	}

	choice, err := f.source.AnswerFromOptions(ctx, field.Label, texts)
	if err != nil {
		return err
	}
	for i, t := range texts {
		if t != choice {
			continue
		}
		if f.verbose {
			log.Printf("[FORM] %q: picked suggestion %q", field.Label, choice)
		}
		if err := f.driver.Click(ctx, options[i]); err != nil {
			return f.failed(field, fmt.Sprintf("could not click suggestion %q", choice), err)
		}
		return f.settle.Wait(ctx)
	}
	return f.failed(field, fmt.Sprintf("suggestion %q not listed", choice), nil)
}

// suggestions returns the live suggestion options, or none when no panel appears in time.
func (f *Filler) suggestions(ctx context.Context) ([]browser.Handle, error) {
	if f.sel.Suggestions == "" || f.sel.SuggestionOption == "" {
		return nil, nil
	}
	panel, err := f.driver.WaitVisible(ctx, f.sel.Suggestions, f.suggestTimeout)
	if err != nil {
		if browser.IsMissing(err) {
			return nil, nil
		}
		return nil, err
	}
	return f.driver.FindAll(ctx, panel, f.sel.SuggestionOption)
}

// SelectFromList picks the option with the given visible text.
func (f *Filler) SelectFromList(ctx context.Context, field types.FormField, choice string) error {
	if err := f.driver.SelectOption(ctx, field.Handle, choice); err != nil {
		return f.failed(field, fmt.Sprintf("could not select %q", choice), err)
	}
	return f.settle.Wait(ctx)
}

// ClickRadioByLabel clicks the radio input whose label is choice.
func (f *Filler) ClickRadioByLabel(ctx context.Context, field types.FormField, choice string) error {
	target, _, err := f.findChoice(ctx, field, f.sel.Radio, choice)
	if err != nil {
		return err
	}
	if err := f.driver.Click(ctx, target); err != nil {
		return f.failed(field, fmt.Sprintf("could not click %q", choice), err)
	}
	return f.settle.Wait(ctx)
}

// ClickCheckbox ticks the checkbox labelled choice. An already ticked box is left alone.
func (f *Filler) ClickCheckbox(ctx context.Context, field types.FormField, choice string) error {
	target, input, err := f.findChoice(ctx, field, f.sel.Checkbox, choice)
	if err != nil {
		return err
	}
	checked, err := f.driver.Checked(ctx, input)
	if err != nil {
		return f.failed(field, "could not read checkbox state", err)
	}
	if checked {
		return nil
	}
	if err := f.driver.Click(ctx, target); err != nil {
		return f.failed(field, fmt.Sprintf("could not tick %q", choice), err)
	}
	return f.settle.Wait(ctx)
}

// UploadFile attaches the file at absolutePath to the file input.
func (f *Filler) UploadFile(ctx context.Context, field types.FormField, absolutePath string) error {
	if err := f.driver.UploadFile(ctx, field.Handle, absolutePath); err != nil {
		return f.failed(field, "could not upload "+absolutePath, err)
	}
	return f.settle.Wait(ctx)
}

// findChoice locates the input labelled choice inside the field. It returns the element to click
// and the input itself.
func (f *Filler) findChoice(ctx context.Context, field types.FormField, selector, choice string) (browser.Handle, browser.Handle, error) {
	inputs, err := f.driver.FindAll(ctx, field.Handle, selector)
	if err != nil {
		return nil, nil, f.failed(field, "could not list choices", err)
	}
	for _, in := range inputs {
		text, target, err := choiceLabel(ctx, f.driver, field.Handle, in)
		if err != nil {
			return nil, nil, f.failed(field, "could not read choice label", err)
		}
		if text == choice {
			return target, in, nil
		}
	}
	return nil, nil, f.failed(field, fmt.Sprintf("choice %q not found", choice), &browser.ElementNotFoundError{Selector: selector})
}

func (f *Filler) failed(field types.FormField, reason string, cause error) error {
	return &FillFailedError{
		Kind:    field.Kind,
		Context: types.AttemptContext{Label: field.Label, Reason: reason},
		Cause:   cause,
	}
}
