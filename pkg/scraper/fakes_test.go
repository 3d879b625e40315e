package scraper

import (
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/scribe/pkg/browser"
)

// fakeElement is an in-memory browser.Element. Evaluate pops scripted
// results from evalQueue; the last value sticks once the queue drains.
type fakeElement struct {
	text      string
	attrs     map[string]string
	innerHTML string
	children  map[string][]*fakeElement
	evalQueue []interface{}
}

func (e *fakeElement) QuerySelector(selector string) (browser.Element, error) {
	matches := e.children[selector]
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (e *fakeElement) QuerySelectorAll(selector string) ([]browser.Element, error) {
	matches := e.children[selector]
	elements := make([]browser.Element, 0, len(matches))
	for _, m := range matches {
		elements = append(elements, m)
	}
	return elements, nil
}

func (e *fakeElement) TextContent() (string, error) {
	return e.text, nil
}

func (e *fakeElement) GetAttribute(name string) (string, error) {
	return e.attrs[name], nil
}

func (e *fakeElement) InnerHTML() (string, error) {
	return e.innerHTML, nil
}

func (e *fakeElement) Evaluate(string) (interface{}, error) {
	if len(e.evalQueue) == 0 {
		return nil, nil
	}
	result := e.evalQueue[0]
	if len(e.evalQueue) > 1 {
		e.evalQueue = e.evalQueue[1:]
	}
	return result, nil
}

// fakePage is an in-memory browser.Page recording interactions.
type fakePage struct {
	elements map[string][]*fakeElement
	content  string

	gotoErrs  map[string]error
	reloadErr error

	gotoURLs  []string
	reloads   int
	evaluated []string
}

func newFakePage() *fakePage {
	return &fakePage{
		elements: map[string][]*fakeElement{},
		gotoErrs: map[string]error{},
	}
}

func (p *fakePage) QuerySelector(selector string) (browser.Element, error) {
	matches := p.elements[selector]
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (p *fakePage) QuerySelectorAll(selector string) ([]browser.Element, error) {
	matches := p.elements[selector]
	elements := make([]browser.Element, 0, len(matches))
	for _, m := range matches {
		elements = append(elements, m)
	}
	return elements, nil
}

func (p *fakePage) Goto(url string, _ browser.GotoOptions) error {
	p.gotoURLs = append(p.gotoURLs, url)
	return p.gotoErrs[url]
}

func (p *fakePage) Reload(_ browser.GotoOptions) error {
	p.reloads++
	return p.reloadErr
}

func (p *fakePage) WaitForLoadState(string, time.Duration) error {
	return nil
}

func (p *fakePage) WaitForSelector(selector string, _ time.Duration) (browser.Element, error) {
	matches := p.elements[selector]
	if len(matches) == 0 {
		return nil, errors.New("timeout waiting for selector")
	}
	return matches[0], nil
}

func (p *fakePage) Fill(string, string) error { return nil }

func (p *fakePage) Click(string) error { return errors.New("not clickable") }

func (p *fakePage) PressKey(string) error { return nil }

func (p *fakePage) Evaluate(expression string) (interface{}, error) {
	p.evaluated = append(p.evaluated, expression)
	return nil, nil
}

func (p *fakePage) URL() string {
	if len(p.gotoURLs) == 0 {
		return ""
	}
	return p.gotoURLs[len(p.gotoURLs)-1]
}

func (p *fakePage) Title() (string, error) { return "", nil }

func (p *fakePage) Content() (string, error) { return p.content, nil }

func (p *fakePage) Close() error { return nil }

// fakeSessions is a scripted SessionProvider.
type fakeSessions struct {
	page      browser.Page
	authOK    bool
	authErr   error
	createErr error

	created int
	closed  []string
}

func (f *fakeSessions) CreateSession() (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created++
	return fmt.Sprintf("sess-%d", f.created), nil
}

func (f *fakeSessions) Authenticate(string, browser.Credentials) (bool, browser.Page, error) {
	if f.authErr != nil {
		return false, nil, f.authErr
	}
	if !f.authOK {
		return false, f.page, nil
	}
	return true, f.page, nil
}

func (f *fakeSessions) CloseSession(id string) {
	f.closed = append(f.closed, id)
}

// newTestService wires a service over fakes with sleeps disabled.
func newTestService(sessions SessionProvider) *Service {
	s := NewService(sessions, testScraperConfig())
	s.sleep = func(time.Duration) {}
	return s
}
