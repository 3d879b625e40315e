package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"
)

// Target is anything element queries can be resolved against: a whole page
// or a previously resolved element.
type Target interface {
	// QuerySelector returns the first match for selector, or nil if the
	// selector matches nothing.
	QuerySelector(selector string) (Element, error)

	// QuerySelectorAll returns every match for selector.
	QuerySelectorAll(selector string) ([]Element, error)
}

// Element is a handle to a single DOM element.
type Element interface {
	Target

	// TextContent returns the element's text content.
	TextContent() (string, error)

	// GetAttribute returns the named attribute, or "" if absent.
	GetAttribute(name string) (string, error)

	// InnerHTML returns the element's inner HTML.
	InnerHTML() (string, error)

	// Evaluate runs a script with this element bound to its parameter.
	Evaluate(expression string) (interface{}, error)
}

// GotoOptions configures page navigation behavior.
type GotoOptions struct {
	// WaitUntil specifies when to consider navigation successful.
	// Valid values: "load", "domcontentloaded", "networkidle".
	WaitUntil string

	// Timeout bounds the navigation (0 means driver default).
	Timeout time.Duration
}

// Page is a handle to a single browser page.
type Page interface {
	Target

	// Goto navigates the page to url.
	Goto(url string, opts GotoOptions) error

	// Reload reloads the current page.
	Reload(opts GotoOptions) error

	// WaitForLoadState blocks until the page reaches the given load state.
	WaitForLoadState(state string, timeout time.Duration) error

	// WaitForSelector blocks until selector matches, up to timeout.
	WaitForSelector(selector string, timeout time.Duration) (Element, error)

	// Fill sets the value of the input matching selector.
	Fill(selector, value string) error

	// Click clicks the element matching selector.
	Click(selector string) error

	// PressKey sends a keyboard key press to the focused element.
	PressKey(key string) error

	// Evaluate runs a script in the page and returns its result.
	Evaluate(expression string) (interface{}, error)

	// URL returns the page's current address.
	URL() string

	// Title returns the page title.
	Title() (string, error)

	// Content returns the full page HTML.
	Content() (string, error)

	// Close closes the page.
	Close() error
}

// pwPage adapts a Playwright page to the Page interface.
type pwPage struct {
	p playwright.Page
}

// WrapPage wraps a raw Playwright page.
func WrapPage(p playwright.Page) Page {
	return &pwPage{p: p}
}

func (w *pwPage) Goto(url string, opts GotoOptions) error {
	_, err := w.p.Goto(url, playwright.PageGotoOptions{
		WaitUntil: waitUntilState(opts.WaitUntil),
		Timeout:   timeoutMillis(opts.Timeout),
	})
	return err
}

func (w *pwPage) Reload(opts GotoOptions) error {
	_, err := w.p.Reload(playwright.PageReloadOptions{
		WaitUntil: waitUntilState(opts.WaitUntil),
		Timeout:   timeoutMillis(opts.Timeout),
	})
	return err
}

func (w *pwPage) WaitForLoadState(state string, timeout time.Duration) error {
	return w.p.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   loadState(state),
		Timeout: timeoutMillis(timeout),
	})
}

func (w *pwPage) WaitForSelector(selector string, timeout time.Duration) (Element, error) {
	handle, err := w.p.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		Timeout: timeoutMillis(timeout),
	})
	if err != nil {
		return nil, err
	}
	if handle == nil {
		return nil, nil
	}
	return &pwElement{h: handle}, nil
}

func (w *pwPage) QuerySelector(selector string) (Element, error) {
	handle, err := w.p.QuerySelector(selector)
	if err != nil || handle == nil {
		return nil, err
	}
	return &pwElement{h: handle}, nil
}

func (w *pwPage) QuerySelectorAll(selector string) ([]Element, error) {
	handles, err := w.p.QuerySelectorAll(selector)
	if err != nil {
		return nil, err
	}
	elements := make([]Element, 0, len(handles))
	for _, h := range handles {
		elements = append(elements, &pwElement{h: h})
	}
	return elements, nil
}

func (w *pwPage) Fill(selector, value string) error {
	return w.p.Fill(selector, value)
}

func (w *pwPage) Click(selector string) error {
	return w.p.Click(selector)
}

func (w *pwPage) PressKey(key string) error {
	return w.p.Keyboard().Press(key)
}

func (w *pwPage) Evaluate(expression string) (interface{}, error) {
	return w.p.Evaluate(expression)
}

func (w *pwPage) URL() string {
	return w.p.URL()
}

func (w *pwPage) Title() (string, error) {
	return w.p.Title()
}

func (w *pwPage) Content() (string, error) {
	return w.p.Content()
}

func (w *pwPage) Close() error {
	return w.p.Close()
}

// pwElement adapts a Playwright element handle to the Element interface.
type pwElement struct {
	h playwright.ElementHandle
}

func (e *pwElement) QuerySelector(selector string) (Element, error) {
	handle, err := e.h.QuerySelector(selector)
	if err != nil || handle == nil {
		return nil, err
	}
	return &pwElement{h: handle}, nil
}

func (e *pwElement) QuerySelectorAll(selector string) ([]Element, error) {
	handles, err := e.h.QuerySelectorAll(selector)
	if err != nil {
		return nil, err
	}
	elements := make([]Element, 0, len(handles))
	for _, h := range handles {
		elements = append(elements, &pwElement{h: h})
	}
	return elements, nil
}

func (e *pwElement) TextContent() (string, error) {
	return e.h.TextContent()
}

func (e *pwElement) GetAttribute(name string) (string, error) {
	return e.h.GetAttribute(name)
}

func (e *pwElement) InnerHTML() (string, error) {
	return e.h.InnerHTML()
}

func (e *pwElement) Evaluate(expression string) (interface{}, error) {
	return e.h.Evaluate(expression)
}

func waitUntilState(state string) *playwright.WaitUntilState {
	switch state {
	case "load":
		return playwright.WaitUntilStateLoad
	case "networkidle":
		return playwright.WaitUntilStateNetworkidle
	case "domcontentloaded":
		return playwright.WaitUntilStateDomcontentloaded
	default:
		return nil
	}
}

func loadState(state string) *playwright.LoadState {
	switch state {
	case "load":
		return playwright.LoadStateLoad
	case "networkidle":
		return playwright.LoadStateNetworkidle
	case "domcontentloaded":
		return playwright.LoadStateDomcontentloaded
	default:
		return nil
	}
}

func timeoutMillis(d time.Duration) *float64 {
	if d <= 0 {
		return nil
	}
	return playwright.Float(float64(d.Milliseconds()))
}
