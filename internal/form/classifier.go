// Package form drives the quick-apply wizard: it classifies field elements, fills them with
// answers, and walks the wizard's pages until the application is submitted.
package form

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/quick-apply/internal/browser"
	"github.com/jonathan/quick-apply/internal/config"
	"github.com/jonathan/quick-apply/internal/types"
)

const cardGroupLabel = "repeatable card group"

// probe pairs a DOM signature with the field kind it identifies.
type probe struct {
	kind     types.FieldKind
	selector string
	// control reports whether the matched element itself is the field handle;
	// otherwise the whole element scope is.
	control bool
	choices func(ctx context.Context, c *Classifier, scope, matched browser.Handle) ([]string, error)
}

// Classifier determines the kind, label and choices of form field elements.
// It only reads the page.
type Classifier struct {
	driver browser.Driver
	sel    config.FormSelectors
	probes []probe
}

// NewClassifier builds the ordered probe table from the selectors. The order is the tie-break
// for elements that match several shapes: select, text, checkbox, radio, file, card group.
func NewClassifier(d browser.Driver, sel config.FormSelectors) *Classifier {
	return &Classifier{
		driver: d,
		sel:    sel,
		probes: []probe{
			{kind: types.FieldSingleSelectList, selector: sel.Select, control: true, choices: selectChoices},
			{kind: types.FieldFreeText, selector: sel.TextInput, control: true},
			{kind: types.FieldCheckbox, selector: sel.Checkbox, choices: inputChoices(sel.Checkbox)},
			{kind: types.FieldRadioGroup, selector: sel.Radio, choices: inputChoices(sel.Radio)},
			{kind: types.FieldUploadResume, selector: sel.FileInput, control: true},
			{kind: types.FieldUnstructuredCardGroup, selector: sel.CardGroup},
		},
	}
}

// Elements returns the field elements of the current page in document order. When the page is
// a repeatable card group, it instead returns a single UnstructuredCardGroup field and no elements.
func (c *Classifier) Elements(ctx context.Context, dialog browser.Handle) ([]browser.Handle, *types.FormField, error) {
	if c.sel.CardGroup != "" {
		group, err := browser.FindOptional(ctx, c.driver, dialog, c.sel.CardGroup)
		if err != nil {
			return nil, nil, err
		}
		if group != nil {
			label, err := c.label(ctx, group)
			if err != nil {
				label = cardGroupLabel
			}
			return nil, &types.FormField{Kind: types.FieldUnstructuredCardGroup, Label: label, Handle: group}, nil
		}
	}

	elements, err := c.driver.FindAll(ctx, dialog, c.sel.Element)
	if err != nil {
		return nil, nil, err
	}
	return elements, nil, nil
}

// ScanPage classifies every field on the current page.
func (c *Classifier) ScanPage(ctx context.Context, dialog browser.Handle) ([]types.FormField, error) {
	elements, card, err := c.Elements(ctx, dialog)
	if err != nil {
		return nil, &UnclassifiableFieldError{Context: types.AttemptContext{Reason: "could not enumerate fields"}, Cause: err}
	}
	if card != nil {
		return []types.FormField{*card}, nil
	}

	fields := make([]types.FormField, 0, len(elements))
	for _, el := range elements {
		f, err := c.Classify(ctx, el)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// Classify probes one field element. The label must be found before any kind probe runs.
func (c *Classifier) Classify(ctx context.Context, scope browser.Handle) (types.FormField, error) {
	label, err := c.label(ctx, scope)
	if err != nil {
		return types.FormField{}, &UnclassifiableFieldError{
			Context: types.AttemptContext{Reason: "no label found"},
			Cause:   err,
		}
	}

	for _, p := range c.probes {
		if p.selector == "" {
			continue
		}
		matched, err := browser.FindOptional(ctx, c.driver, scope, p.selector)
		if err != nil {
			return types.FormField{}, &UnclassifiableFieldError{
				Context: types.AttemptContext{Label: label, Reason: fmt.Sprintf("probing %s", p.kind)},
				Cause:   err,
			}
		}
		if matched == nil {
			continue
		}

		field := types.FormField{Kind: p.kind, Label: label, Handle: scope}
		if p.control {
			field.Handle = matched
		}
		if p.kind == types.FieldUploadResume && c.isCoverLetter(label) {
			field.Kind = types.FieldUploadCoverLetter
		}
		if p.choices != nil {
			choices, err := p.choices(ctx, c, scope, matched)
			if err != nil {
				return types.FormField{}, &UnclassifiableFieldError{
					Context: types.AttemptContext{Label: label, Reason: fmt.Sprintf("reading %s choices", p.kind)},
					Cause:   err,
				}
			}
			if len(choices) == 0 {
				return types.FormField{}, &UnclassifiableFieldError{
					Context: types.AttemptContext{Label: label, Reason: fmt.Sprintf("%s has no choices", p.kind)},
				}
			}
			field.Choices = choices
		}
		return field, nil
	}

	return types.FormField{}, &UnclassifiableFieldError{
		Context: types.AttemptContext{Label: label, Reason: "no known field shape"},
	}
}

// label runs the label probes in order and returns the first non-empty text.
func (c *Classifier) label(ctx context.Context, scope browser.Handle) (string, error) {
	for _, sel := range c.sel.Labels {
		h, err := browser.FindOptional(ctx, c.driver, scope, sel)
		if err != nil {
			return "", err
		}
		if h == nil {
			continue
		}
		text, err := c.driver.Text(ctx, h)
		if err != nil {
			return "", err
		}
		if text = normalizeText(text); text != "" {
			return text, nil
		}
	}
	return "", &browser.ElementNotFoundError{Selector: strings.Join(c.sel.Labels, " | ")}
}

func (c *Classifier) isCoverLetter(label string) bool {
	hint := strings.ToLower(strings.TrimSpace(c.sel.CoverLetterHint))
	return hint != "" && strings.Contains(strings.ToLower(label), hint)
}

// selectChoices lists a native select's option texts, without the placeholder.
func selectChoices(ctx context.Context, c *Classifier, _, matched browser.Handle) ([]string, error) {
	options, err := c.driver.FindAll(ctx, matched, "option")
	if err != nil {
		return nil, err
	}
	var choices []string
	for _, opt := range options {
		text, err := c.driver.Text(ctx, opt)
		if err != nil {
			return nil, err
		}
		text = normalizeText(text)
		if text == "" || text == c.sel.SelectPlaceholder {
			continue
		}
		choices = append(choices, text)
	}
	return choices, nil
}

// inputChoices lists the labels of every checkbox or radio input in the element.
func inputChoices(selector string) func(context.Context, *Classifier, browser.Handle, browser.Handle) ([]string, error) {
	return func(ctx context.Context, c *Classifier, scope, _ browser.Handle) ([]string, error) {
		inputs, err := c.driver.FindAll(ctx, scope, selector)
		if err != nil {
			return nil, err
		}
		var choices []string
		for _, in := range inputs {
			text, _, err := choiceLabel(ctx, c.driver, scope, in)
			if err != nil {
				return nil, err
			}
			if text != "" {
				choices = append(choices, text)
			}
		}
		return choices, nil
	}
}

// choiceLabel returns the visible label of a checkbox or radio input and the element to click
// to toggle it: the <label for=id> when there is one, else the input itself.
func choiceLabel(ctx context.Context, d browser.Driver, scope, input browser.Handle) (string, browser.Handle, error) {
	if id, ok, err := d.Attribute(ctx, input, "id"); err != nil {
		return "", nil, err
	} else if ok && id != "" {
		lbl, err := browser.FindOptional(ctx, d, scope, fmt.Sprintf("label[for=%q]", id))
		if err != nil {
			return "", nil, err
		}
		if lbl != nil {
			text, err := d.Text(ctx, lbl)
			if err != nil {
				return "", nil, err
			}
			if text = normalizeText(text); text != "" {
				return text, lbl, nil
			}
		}
	}
	for _, attr := range []string{"aria-label", "value"} {
		v, ok, err := d.Attribute(ctx, input, attr)
		if err != nil {
			return "", nil, err
		}
		if v = normalizeText(v); ok && v != "" {
			return v, input, nil
		}
	}
	return "", input, nil
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
