// Package browsertest provides an in-memory browser.Driver for tests.
//
// The fake keeps a goquery document as its page. Selectors are CSS, evaluated by goquery.
// Handles are single-node *goquery.Selection values. Tests script page behaviour by
// registering click and type hooks that rewrite the document.
package browsertest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jonathan/quick-apply/internal/browser"
)

// Call is one recorded driver action.
type Call struct {
	Op     string
	Target string
	Arg    string
}

// HookFunc reacts to an action on an element. It may mutate the page through f.
type HookFunc func(f *Fake, el *goquery.Selection) error

type hook struct {
	selector string
	fn       HookFunc
}

// Fake is a scripted, single-document browser.Driver.
type Fake struct {
	mu sync.Mutex

	doc   *goquery.Document
	url   string
	pages map[string]string

	values   map[*html.Node]string
	checked  map[*html.Node]bool
	uploads  map[*html.Node]string
	selected map[*html.Node]string

	clickHooks []hook
	typeHooks  []hook

	calls []Call

	// BeforeAction, when set, runs before every input action and can inject failures.
	BeforeAction func(op string, el *goquery.Selection) error
	// RedirectFunc, when set, maps a navigated URL to the URL the site ends up on.
	RedirectFunc func(url string) string
}

var _ browser.Driver = (*Fake)(nil)

// New returns a fake showing the given HTML.
func New(page string) *Fake {
	f := &Fake{pages: map[string]string{}}
	f.Load(page)
	return f
}

// Load replaces the current document. Existing handles become stale.
func (f *Fake) Load(page string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		panic(fmt.Sprintf("browsertest: invalid html: %v", err))
	}
	f.doc = doc
	f.values = map[*html.Node]string{}
	f.checked = map[*html.Node]bool{}
	f.uploads = map[*html.Node]string{}
	f.selected = map[*html.Node]string{}
}

// SetPage registers the document served when url is navigated to.
func (f *Fake) SetPage(url, page string) {
	f.pages[url] = page
}

// ReplaceInner swaps the inner HTML of every element matching selector.
func (f *Fake) ReplaceInner(selector, inner string) {
	f.doc.Find(selector).SetHtml(inner)
}

// Append adds HTML to the end of every element matching selector.
func (f *Fake) Append(selector, fragment string) {
	f.doc.Find(selector).AppendHtml(fragment)
}

// Remove deletes every element matching selector.
func (f *Fake) Remove(selector string) {
	f.doc.Find(selector).Remove()
}

// OnClick registers fn to run when an element matching selector is clicked.
// Hooks are tried in registration order; the first match runs.
func (f *Fake) OnClick(selector string, fn HookFunc) {
	f.clickHooks = append(f.clickHooks, hook{selector: selector, fn: fn})
}

// OnType registers fn to run after text is typed into an element matching selector.
func (f *Fake) OnType(selector string, fn HookFunc) {
	f.typeHooks = append(f.typeHooks, hook{selector: selector, fn: fn})
}

// Doc exposes the current document for assertions.
func (f *Fake) Doc() *goquery.Document {
	return f.doc
}

// Calls returns a copy of the recorded actions.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount counts recorded actions with the given op, optionally restricted to a target.
func (f *Fake) CallCount(op, target string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Op == op && (target == "" || c.Target == target) {
			n++
		}
	}
	return n
}

// Value returns what was typed into or selected on the element matching selector.
func (f *Fake) Value(selector string) string {
	el := f.doc.Find(selector).First()
	if el.Length() == 0 {
		return ""
	}
	n := el.Get(0)
	if v, ok := f.selected[n]; ok {
		return v
	}
	return f.values[n]
}

// IsChecked reports the checked state of the element matching selector.
func (f *Fake) IsChecked(selector string) bool {
	el := f.doc.Find(selector).First()
	if el.Length() == 0 {
		return false
	}
	return f.checkedState(el)
}

// UploadedFile returns the path attached to the file input matching selector.
func (f *Fake) UploadedFile(selector string) string {
	el := f.doc.Find(selector).First()
	if el.Length() == 0 {
		return ""
	}
	return f.uploads[el.Get(0)]
}

func (f *Fake) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.record("navigate", url, "")
	if f.RedirectFunc != nil {
		url = f.RedirectFunc(url)
	}
	f.url = url
	if page, ok := f.pages[url]; ok {
		f.Load(page)
	}
	return nil
}

func (f *Fake) CurrentURL(ctx context.Context) (string, error) {
	return f.url, nil
}

func (f *Fake) Find(ctx context.Context, scope browser.Handle, selector string) (browser.Handle, error) {
	all, err := f.FindAll(ctx, scope, selector)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, &browser.ElementNotFoundError{Selector: selector}
	}
	return all[0], nil
}

func (f *Fake) FindAll(ctx context.Context, scope browser.Handle, selector string) ([]browser.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, err := f.scope(scope)
	if err != nil {
		return nil, err
	}
	var out []browser.Handle
	root.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, s)
	})
	return out, nil
}

// WaitVisible never sleeps: a missing element times out immediately.
func (f *Fake) WaitVisible(ctx context.Context, selector string, timeout time.Duration) (browser.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sel := f.doc.Find(selector)
	if sel.Length() == 0 {
		return nil, &browser.TimedOutError{Selector: selector, Timeout: timeout}
	}
	return sel.First(), nil
}

func (f *Fake) Click(ctx context.Context, h browser.Handle) error {
	el, err := f.element(h)
	if err != nil {
		return err
	}
	if err := f.before("click", el); err != nil {
		return err
	}
	f.record("click", describe(el), "")

	for _, hk := range f.clickHooks {
		if el.Is(hk.selector) {
			return hk.fn(f, el)
		}
	}

	target := el
	if goquery.NodeName(el) == "label" {
		if id, ok := el.Attr("for"); ok {
			if input := f.doc.Find("#" + id); input.Length() > 0 {
				target = input.First()
			}
		}
	}
	switch strings.ToLower(target.AttrOr("type", "")) {
	case "checkbox":
		f.checked[target.Get(0)] = !f.checkedState(target)
	case "radio":
		if name, ok := target.Attr("name"); ok {
			f.doc.Find(fmt.Sprintf("input[type=radio][name=%q]", name)).Each(func(_ int, s *goquery.Selection) {
				f.checked[s.Get(0)] = false
			})
		}
		f.checked[target.Get(0)] = true
	}
	return nil
}

func (f *Fake) TypeText(ctx context.Context, h browser.Handle, text string) error {
	el, err := f.element(h)
	if err != nil {
		return err
	}
	if err := f.before("type", el); err != nil {
		return err
	}
	f.record("type", describe(el), text)
	f.values[el.Get(0)] = text

	for _, hk := range f.typeHooks {
		if el.Is(hk.selector) {
			return hk.fn(f, el)
		}
	}
	return nil
}

func (f *Fake) SelectOption(ctx context.Context, h browser.Handle, visibleText string) error {
	el, err := f.element(h)
	if err != nil {
		return err
	}
	if err := f.before("select", el); err != nil {
		return err
	}
	f.record("select", describe(el), visibleText)

	found := false
	el.Find("option").EachWithBreak(func(_ int, opt *goquery.Selection) bool {
		if strings.TrimSpace(opt.Text()) == visibleText {
			found = true
			return false
		}
		return true
	})
	if !found {
		return &browser.ElementNotFoundError{Selector: fmt.Sprintf("option %q", visibleText)}
	}
	f.selected[el.Get(0)] = visibleText
	return nil
}

func (f *Fake) UploadFile(ctx context.Context, h browser.Handle, absolutePath string) error {
	el, err := f.element(h)
	if err != nil {
		return err
	}
	if err := f.before("upload", el); err != nil {
		return err
	}
	f.record("upload", describe(el), absolutePath)
	f.uploads[el.Get(0)] = absolutePath
	return nil
}

func (f *Fake) ScrollIntoView(ctx context.Context, h browser.Handle) error {
	el, err := f.element(h)
	if err != nil {
		return err
	}
	f.record("scroll", describe(el), "")
	return nil
}

// Text returns the element text with whitespace collapsed, like innerText.
func (f *Fake) Text(ctx context.Context, h browser.Handle) (string, error) {
	el, err := f.element(h)
	if err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(el.Text()), " "), nil
}

func (f *Fake) Attribute(ctx context.Context, h browser.Handle, name string) (string, bool, error) {
	el, err := f.element(h)
	if err != nil {
		return "", false, err
	}
	if name == "value" {
		if v, ok := f.values[el.Get(0)]; ok {
			return v, true, nil
		}
	}
	v, ok := el.Attr(name)
	return v, ok, nil
}

func (f *Fake) OuterHTML(ctx context.Context, h browser.Handle) (string, error) {
	el, err := f.element(h)
	if err != nil {
		return "", err
	}
	return goquery.OuterHtml(el)
}

func (f *Fake) Checked(ctx context.Context, h browser.Handle) (bool, error) {
	el, err := f.element(h)
	if err != nil {
		return false, err
	}
	return f.checkedState(el), nil
}

func (f *Fake) checkedState(el *goquery.Selection) bool {
	if v, ok := f.checked[el.Get(0)]; ok {
		return v
	}
	_, ok := el.Attr("checked")
	return ok
}

func (f *Fake) scope(h browser.Handle) (*goquery.Selection, error) {
	if h == nil {
		return f.doc.Selection, nil
	}
	return f.element(h)
}

func (f *Fake) element(h browser.Handle) (*goquery.Selection, error) {
	el, ok := h.(*goquery.Selection)
	if !ok || el == nil || el.Length() != 1 {
		return nil, fmt.Errorf("invalid element handle %T", h)
	}
	return el, nil
}

func (f *Fake) before(op string, el *goquery.Selection) error {
	if f.BeforeAction == nil {
		return nil
	}
	return f.BeforeAction(op, el)
}

func (f *Fake) record(op, target, arg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: op, Target: target, Arg: arg})
}

// describe names an element by id, then name, then tag.
func describe(el *goquery.Selection) string {
	if id, ok := el.Attr("id"); ok && id != "" {
		return "#" + id
	}
	if name, ok := el.Attr("name"); ok && name != "" {
		return goquery.NodeName(el) + "[name=" + name + "]"
	}
	if label, ok := el.Attr("aria-label"); ok && label != "" {
		return goquery.NodeName(el) + "[aria-label=" + label + "]"
	}
	return goquery.NodeName(el)
}
