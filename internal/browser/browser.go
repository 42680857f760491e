// Package browser binds the widget driver to a Chromium instance through Rod.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/v0xg/uinav/internal/widget"
)

// Options configures the browser launch
type Options struct {
	Width          int
	Height         int
	Headless       bool
	Bin            string        // Browser binary, looked up when empty
	ProfileDir     string        // Chrome/Chromium profile directory for authenticated sessions
	ElementTimeout time.Duration // How long a lookup waits before the element counts as absent
	Logger         logr.Logger
}

// Browser wraps the Rod browser and page and implements widget.Driver
type Browser struct {
	browser *rod.Browser
	page    *rod.Page
	timeout time.Duration
	log     logr.Logger
}

// Launch starts a browser with one blank page.
func Launch(opts Options) (*Browser, error) {
	if opts.ElementTimeout == 0 {
		opts.ElementTimeout = 5 * time.Second
	}

	bin := opts.Bin
	if bin == "" {
		bin, _ = launcher.LookPath()
	}
	l := launcher.New().Bin(bin).Headless(opts.Headless)
	if opts.ProfileDir != "" {
		l = l.UserDataDir(opts.ProfileDir)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}
	if opts.Width > 0 && opts.Height > 0 {
		err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             opts.Width,
			Height:            opts.Height,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			browser.Close()
			return nil, fmt.Errorf("set viewport: %w", err)
		}
	}

	return &Browser{
		browser: browser,
		page:    page,
		timeout: opts.ElementTimeout,
		log:     opts.Logger.WithName("browser"),
	}, nil
}

// Close cleans up browser resources
func (b *Browser) Close() {
	if b.page != nil {
		b.page.Close()
	}
	if b.browser != nil {
		b.browser.Close()
	}
}

// Page returns the underlying Rod page
func (b *Browser) Page() *rod.Page {
	return b.page
}

func (b *Browser) Find(selector string) (widget.Element, error) {
	el, err := b.page.Timeout(b.timeout).Element(selector)
	if err != nil {
		return nil, lookupError(err, selector)
	}
	return &element{el: el.CancelTimeout(), timeout: b.timeout}, nil
}

func (b *Browser) FindByText(selector, pattern string) (widget.Element, error) {
	el, err := b.page.Timeout(b.timeout).ElementR(selector, pattern)
	if err != nil {
		return nil, lookupError(err, selector, pattern)
	}
	return &element{el: el.CancelTimeout(), timeout: b.timeout}, nil
}

func (b *Browser) FindAll(selector string) ([]widget.Element, error) {
	els, err := b.page.Elements(selector)
	if err != nil {
		return nil, err
	}
	out := make([]widget.Element, len(els))
	for i, el := range els {
		out[i] = &element{el: el, timeout: b.timeout}
	}
	return out, nil
}

func (b *Browser) Navigate(url string) error {
	b.log.V(1).Info("navigate", "url", url)
	if err := b.page.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return b.page.WaitLoad()
}

func (b *Browser) Reload() error {
	if err := b.page.Reload(); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	return b.page.WaitLoad()
}

// AcceptNextDialog arms a handler that confirms the next JavaScript dialog
// opened within the element timeout. The handler runs concurrently because
// the click raising the dialog blocks until it is answered.
func (b *Browser) AcceptNextDialog() (func() error, error) {
	page := b.page.Timeout(b.timeout)
	wait, handle := page.HandleDialog()
	done := make(chan error, 1)
	go func() {
		defer page.CancelTimeout()
		dialog := wait()
		err := acceptDialog(page.GetContext(), dialog, handle)
		switch {
		case errors.Is(err, widget.ErrNoDialog):
			b.log.V(1).Info("no dialog appeared", "timeout", b.timeout)
		case err != nil:
			b.log.Error(err, "accept dialog")
		default:
			b.log.V(1).Info("accepted dialog", "message", dialog.Message)
		}
		done <- err
	}()
	return func() error { return <-done }, nil
}

// acceptDialog answers dialog unless ctx ended before one opened.
func acceptDialog(ctx context.Context, dialog *proto.PageJavascriptDialogOpening, handle func(*proto.PageHandleJavaScriptDialog) error) error {
	if ctx.Err() != nil || dialog == nil {
		return widget.ErrNoDialog
	}
	return handle(&proto.PageHandleJavaScriptDialog{Accept: true})
}

func (b *Browser) Screenshot() ([]byte, error) {
	return b.page.Screenshot(false, nil)
}

// Hover moves the mouse over the element matching selector.
func (b *Browser) Hover(selector string) error {
	el, err := b.page.Timeout(b.timeout).Element(selector)
	if err != nil {
		return lookupError(err, selector)
	}
	return el.CancelTimeout().Hover()
}

// Scroll scrolls the page by (x, y) pixels in a few mouse wheel steps.
func (b *Browser) Scroll(x, y int) error {
	return b.page.Mouse.Scroll(float64(x), float64(y), 5)
}

func (b *Browser) URL() string {
	info, err := b.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// element adapts a Rod element to widget.Element
type element struct {
	el      *rod.Element
	timeout time.Duration
}

func (e *element) Click() error {
	return e.el.Click(proto.InputMouseButtonLeft, 1)
}

func (e *element) Text() (string, error) {
	return e.el.Text()
}

func (e *element) Value() (string, error) {
	obj, err := e.el.Eval(`() => this.value === undefined ? "" : String(this.value)`)
	if err != nil {
		return "", err
	}
	return obj.Value.String(), nil
}

// Input replaces the element's current content with text.
func (e *element) Input(text string) error {
	if err := e.el.SelectAllText(); err != nil {
		return err
	}
	return e.el.Input(text)
}

func (e *element) Visible() bool {
	ok, err := e.el.Visible()
	return err == nil && ok
}

func (e *element) Attribute(name string) (string, bool) {
	v, err := e.el.Attribute(name)
	if err != nil || v == nil {
		return "", false
	}
	return *v, true
}

func (e *element) Find(selector string) (widget.Element, error) {
	el, err := e.el.Timeout(e.timeout).Element(selector)
	if err != nil {
		return nil, lookupError(err, selector)
	}
	return &element{el: el.CancelTimeout(), timeout: e.timeout}, nil
}

func (e *element) FindAll(selector string) ([]widget.Element, error) {
	els, err := e.el.Elements(selector)
	if err != nil {
		return nil, err
	}
	out := make([]widget.Element, len(els))
	for i, el := range els {
		out[i] = &element{el: el, timeout: e.timeout}
	}
	return out, nil
}

func (e *element) FindByText(selector, pattern string) (widget.Element, error) {
	el, err := e.el.Timeout(e.timeout).ElementR(selector, pattern)
	if err != nil {
		return nil, lookupError(err, selector, pattern)
	}
	return &element{el: el.CancelTimeout(), timeout: e.timeout}, nil
}

// lookupError maps Rod's lookup timeout to a missing candidate.
func lookupError(err error, parts ...string) error {
	var notFound *rod.ElementNotFoundError
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &notFound) {
		return widget.NotFound(parts...)
	}
	return fmt.Errorf("lookup %v: %w", parts, err)
}
