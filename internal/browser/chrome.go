package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// DefaultActionTimeout bounds every single driver call that has no explicit timeout.
const DefaultActionTimeout = 15 * time.Second

// ChromeOptions configures the Chrome session.
type ChromeOptions struct {
	ProfileDir    string
	Headless      bool
	UserAgent     string
	ActionTimeout time.Duration
	Verbose       bool
}

// Chrome implements Driver on top of a chromedp browser context.
// Handles are *cdp.Node values.
type Chrome struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	verbose bool
}

var _ Driver = (*Chrome)(nil)

// NewChrome launches Chrome with a persistent profile directory, so the site session survives restarts.
// Requires Chrome/Chromium to be installed on the system.
func NewChrome(ctx context.Context, opts ChromeOptions) (*Chrome, error) {
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = DefaultActionTimeout
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("start-maximized", true),
	)
	if opts.ProfileDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.ProfileDir))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// First Run starts the browser process.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, &DriverError{Op: "start", Cause: err}
	}

	if opts.Verbose {
		log.Printf("[BROWSER] Started Chrome (profile: %s, headless: %v)", opts.ProfileDir, opts.Headless)
	}

	return &Chrome{
		ctx: browserCtx,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
		timeout: opts.ActionTimeout,
		verbose: opts.Verbose,
	}, nil
}

// Close shuts the browser down.
func (c *Chrome) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

// run executes actions on the browser context, bounded by timeout and by the caller's ctx.
func (c *Chrome) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(c.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

func (c *Chrome) wrap(op, selector string, timeout time.Duration, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimedOutError{Selector: selector, Timeout: timeout, Cause: err}
	}
	return &DriverError{Op: op, Cause: err}
}

func (c *Chrome) Navigate(ctx context.Context, url string) error {
	if c.verbose {
		log.Printf("[BROWSER] Navigating to %s", url)
	}
	return c.wrap("navigate", url, c.timeout, c.run(ctx, c.timeout, chromedp.Navigate(url)))
}

func (c *Chrome) CurrentURL(ctx context.Context) (string, error) {
	var loc string
	if err := c.run(ctx, c.timeout, chromedp.Location(&loc)); err != nil {
		return "", c.wrap("location", "", c.timeout, err)
	}
	return loc, nil
}

func (c *Chrome) FindAll(ctx context.Context, scope Handle, selector string) ([]Handle, error) {
	opts := []chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}
	if scope != nil {
		parent, err := asNode(scope)
		if err != nil {
			return nil, err
		}
		opts = append(opts, chromedp.FromNode(parent))
	}

	var nodes []*cdp.Node
	if err := c.run(ctx, c.timeout, chromedp.Nodes(selector, &nodes, opts...)); err != nil {
		return nil, c.wrap("query", selector, c.timeout, err)
	}

	handles := make([]Handle, 0, len(nodes))
	for _, n := range nodes {
		handles = append(handles, n)
	}
	return handles, nil
}

func (c *Chrome) Find(ctx context.Context, scope Handle, selector string) (Handle, error) {
	handles, err := c.FindAll(ctx, scope, selector)
	if err != nil {
		return nil, err
	}
	if len(handles) == 0 {
		return nil, &ElementNotFoundError{Selector: selector}
	}
	return handles[0], nil
}

func (c *Chrome) WaitVisible(ctx context.Context, selector string, timeout time.Duration) (Handle, error) {
	var nodes []*cdp.Node
	err := c.run(ctx, timeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Nodes(selector, &nodes, chromedp.ByQuery),
	)
	if err != nil {
		return nil, c.wrap("wait", selector, timeout, err)
	}
	if len(nodes) == 0 {
		return nil, &ElementNotFoundError{Selector: selector}
	}
	return nodes[0], nil
}

func (c *Chrome) Click(ctx context.Context, h Handle) error {
	n, err := asNode(h)
	if err != nil {
		return err
	}
	return c.wrap("click", nodeName(n), c.timeout, c.run(ctx, c.timeout,
		chromedp.ScrollIntoView(ids(n), chromedp.ByNodeID),
		chromedp.MouseClickNode(n),
	))
}

func (c *Chrome) TypeText(ctx context.Context, h Handle, text string) error {
	n, err := asNode(h)
	if err != nil {
		return err
	}
	return c.wrap("type", nodeName(n), c.timeout, c.run(ctx, c.timeout,
		chromedp.Clear(ids(n), chromedp.ByNodeID),
		chromedp.SendKeys(ids(n), text, chromedp.ByNodeID),
	))
}

// SelectOption picks the <option> whose trimmed text equals visibleText and fires a change event,
// which the site's form state listens to.
func (c *Chrome) SelectOption(ctx context.Context, h Handle, visibleText string) error {
	n, err := asNode(h)
	if err != nil {
		return err
	}

	fn := fmt.Sprintf(`function() {
	const want = %s;
	for (const opt of this.options) {
		if (opt.text.trim() === want) {
			this.value = opt.value;
			this.dispatchEvent(new Event("change", { bubbles: true }));
			return true;
		}
	}
	return false;
}`, strconv.Quote(visibleText))

	var selected bool
	err = c.run(ctx, c.timeout, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(n.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		res, exc, err := runtime.CallFunctionOn(fn).
			WithObjectID(obj.ObjectID).
			WithReturnByValue(true).
			Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return exc
		}
		selected = string(res.Value) == "true"
		return nil
	}))
	if err != nil {
		return c.wrap("select", nodeName(n), c.timeout, err)
	}
	if !selected {
		return &ElementNotFoundError{Selector: fmt.Sprintf("option %q", visibleText)}
	}
	return nil
}

func (c *Chrome) UploadFile(ctx context.Context, h Handle, absolutePath string) error {
	n, err := asNode(h)
	if err != nil {
		return err
	}
	return c.wrap("upload", nodeName(n), c.timeout, c.run(ctx, c.timeout,
		chromedp.SetUploadFiles(ids(n), []string{absolutePath}, chromedp.ByNodeID),
	))
}

func (c *Chrome) ScrollIntoView(ctx context.Context, h Handle) error {
	n, err := asNode(h)
	if err != nil {
		return err
	}
	return c.wrap("scroll", nodeName(n), c.timeout, c.run(ctx, c.timeout,
		chromedp.ScrollIntoView(ids(n), chromedp.ByNodeID),
	))
}

func (c *Chrome) Text(ctx context.Context, h Handle) (string, error) {
	n, err := asNode(h)
	if err != nil {
		return "", err
	}
	var text string
	if err := c.run(ctx, c.timeout, chromedp.Text(ids(n), &text, chromedp.ByNodeID)); err != nil {
		return "", c.wrap("text", nodeName(n), c.timeout, err)
	}
	return text, nil
}

func (c *Chrome) Attribute(ctx context.Context, h Handle, name string) (string, bool, error) {
	n, err := asNode(h)
	if err != nil {
		return "", false, err
	}
	var value string
	var ok bool
	if err := c.run(ctx, c.timeout, chromedp.AttributeValue(ids(n), name, &value, &ok, chromedp.ByNodeID)); err != nil {
		return "", false, c.wrap("attribute", nodeName(n), c.timeout, err)
	}
	return value, ok, nil
}

func (c *Chrome) OuterHTML(ctx context.Context, h Handle) (string, error) {
	n, err := asNode(h)
	if err != nil {
		return "", err
	}
	var html string
	if err := c.run(ctx, c.timeout, chromedp.OuterHTML(ids(n), &html, chromedp.ByNodeID)); err != nil {
		return "", c.wrap("outer html", nodeName(n), c.timeout, err)
	}
	return html, nil
}

func (c *Chrome) Checked(ctx context.Context, h Handle) (bool, error) {
	n, err := asNode(h)
	if err != nil {
		return false, err
	}
	var checked bool
	if err := c.run(ctx, c.timeout, chromedp.JavascriptAttribute(ids(n), "checked", &checked, chromedp.ByNodeID)); err != nil {
		return false, c.wrap("checked", nodeName(n), c.timeout, err)
	}
	return checked, nil
}

func asNode(h Handle) (*cdp.Node, error) {
	n, ok := h.(*cdp.Node)
	if !ok || n == nil {
		return nil, fmt.Errorf("invalid element handle %T", h)
	}
	return n, nil
}

func ids(n *cdp.Node) []cdp.NodeID {
	return []cdp.NodeID{n.NodeID}
}

func nodeName(n *cdp.Node) string {
	return n.FullXPath()
}
