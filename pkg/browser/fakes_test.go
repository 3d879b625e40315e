package browser

import (
	"errors"
	"time"
)

// fakeElement is an in-memory Element for selector resolution tests.
type fakeElement struct {
	text       string
	attrs      map[string]string
	innerHTML  string
	evalResult interface{}
	children   map[string][]*fakeElement
}

func (e *fakeElement) QuerySelector(selector string) (Element, error) {
	matches := e.children[selector]
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (e *fakeElement) QuerySelectorAll(selector string) ([]Element, error) {
	matches := e.children[selector]
	elements := make([]Element, 0, len(matches))
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
	return e.evalResult, nil
}

// fakePage is an in-memory Page that records interactions. Selectors map to
// element lists; everything else is scripted through the error fields.
type fakePage struct {
	elements map[string][]*fakeElement
	title    string
	content  string

	gotoErr     error
	reloadErr   error
	loadErr     error
	fillErr     error
	clickable   map[string]bool
	pressErr    error
	evalErr     error
	evalResults map[string]interface{}

	gotoURLs    []string
	reloads     int
	filled      map[string]string
	clicked     []string
	pressed     []string
	evaluated   []string
	waitedFor   []string
	queried     []string
	closed      bool
}

func newFakePage() *fakePage {
	return &fakePage{
		elements:  map[string][]*fakeElement{},
		clickable: map[string]bool{},
		filled:    map[string]string{},
	}
}

func (p *fakePage) QuerySelector(selector string) (Element, error) {
	p.queried = append(p.queried, selector)
	matches := p.elements[selector]
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (p *fakePage) QuerySelectorAll(selector string) ([]Element, error) {
	matches := p.elements[selector]
	elements := make([]Element, 0, len(matches))
	for _, m := range matches {
		elements = append(elements, m)
	}
	return elements, nil
}

func (p *fakePage) Goto(url string, _ GotoOptions) error {
	p.gotoURLs = append(p.gotoURLs, url)
	return p.gotoErr
}

func (p *fakePage) Reload(_ GotoOptions) error {
	p.reloads++
	return p.reloadErr
}

func (p *fakePage) WaitForLoadState(state string, _ time.Duration) error {
	return p.loadErr
}

func (p *fakePage) WaitForSelector(selector string, _ time.Duration) (Element, error) {
	p.waitedFor = append(p.waitedFor, selector)
	matches := p.elements[selector]
	if len(matches) == 0 {
		return nil, errors.New("timeout waiting for selector")
	}
	return matches[0], nil
}

func (p *fakePage) Fill(selector, value string) error {
	if p.fillErr != nil {
		return p.fillErr
	}
	p.filled[selector] = value
	return nil
}

func (p *fakePage) Click(selector string) error {
	if !p.clickable[selector] {
		return errors.New("element not clickable: " + selector)
	}
	p.clicked = append(p.clicked, selector)
	return nil
}

func (p *fakePage) PressKey(key string) error {
	if p.pressErr != nil {
		return p.pressErr
	}
	p.pressed = append(p.pressed, key)
	return nil
}

func (p *fakePage) Evaluate(expression string) (interface{}, error) {
	p.evaluated = append(p.evaluated, expression)
	if p.evalErr != nil {
		return nil, p.evalErr
	}
	if p.evalResults != nil {
		if result, ok := p.evalResults[expression]; ok {
			return result, nil
		}
	}
	return nil, nil
}

func (p *fakePage) URL() string {
	if len(p.gotoURLs) == 0 {
		return ""
	}
	return p.gotoURLs[len(p.gotoURLs)-1]
}

func (p *fakePage) Title() (string, error) {
	return p.title, nil
}

func (p *fakePage) Content() (string, error) {
	return p.content, nil
}

func (p *fakePage) Close() error {
	p.closed = true
	return nil
}
