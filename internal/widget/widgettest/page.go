// Package widgettest provides an in-memory widget.Driver for tests.
//
// Elements are registered under the literal selector the widgets query;
// no CSS matching is performed.
package widgettest

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"sync"

	"github.com/v0xg/uinav/internal/widget"
)

// Element is a fake DOM element.
type Element struct {
	text     string
	value    string
	attrs    map[string]string
	hidden   bool
	children map[string][]*Element

	// OnClick runs on every click, after Clicks is incremented.
	OnClick func() error
	Clicks  int
	Inputs  []string
}

// NewElement returns a visible element with the given text.
func NewElement(text string) *Element {
	return &Element{text: text, attrs: map[string]string{}, children: map[string][]*Element{}}
}

// WithAttr sets an attribute.
func (e *Element) WithAttr(name, value string) *Element {
	e.attrs[name] = value
	return e
}

// WithValue sets the input value.
func (e *Element) WithValue(value string) *Element {
	e.value = value
	return e
}

// WithClick sets the click handler.
func (e *Element) WithClick(fn func() error) *Element {
	e.OnClick = fn
	return e
}

// Hide makes the element invisible.
func (e *Element) Hide() *Element {
	e.hidden = true
	return e
}

// SetText replaces the element text.
func (e *Element) SetText(text string) {
	e.text = text
}

// Add registers child under selector and returns it.
func (e *Element) Add(selector string, child *Element) *Element {
	e.children[selector] = append(e.children[selector], child)
	return child
}

func (e *Element) Click() error {
	e.Clicks++
	if e.OnClick != nil {
		return e.OnClick()
	}
	return nil
}

func (e *Element) Text() (string, error) { return e.text, nil }

func (e *Element) Value() (string, error) { return e.value, nil }

func (e *Element) Input(text string) error {
	e.value = text
	e.Inputs = append(e.Inputs, text)
	return nil
}

func (e *Element) Visible() bool { return !e.hidden }

func (e *Element) Attribute(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

func (e *Element) Find(selector string) (widget.Element, error) {
	return first(e.children[selector], selector)
}

func (e *Element) FindByText(selector, pattern string) (widget.Element, error) {
	return byText(e.children[selector], selector, pattern)
}

func (e *Element) FindAll(selector string) ([]widget.Element, error) {
	return all(e.children[selector]), nil
}

// Page is a fake widget.Driver.
type Page struct {
	mu       sync.Mutex
	elements map[string][]*Element
	url      string

	// OnReload runs on Reload and on Navigate.
	OnReload func()
	// NoDialogs makes every armed dialog acceptance report widget.ErrNoDialog.
	NoDialogs       bool
	Reloads         int
	DialogsAccepted int
	Visited         []string
}

// NewPage returns an empty page.
func NewPage() *Page {
	return &Page{elements: map[string][]*Element{}}
}

// Add registers el under selector and returns it.
func (p *Page) Add(selector string, el *Element) *Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.elements[selector] = append(p.elements[selector], el)
	return el
}

// Clear removes everything registered under selector.
func (p *Page) Clear(selector string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.elements, selector)
}

func (p *Page) lookup(selector string) []*Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Element(nil), p.elements[selector]...)
}

func (p *Page) Find(selector string) (widget.Element, error) {
	return first(p.lookup(selector), selector)
}

func (p *Page) FindByText(selector, pattern string) (widget.Element, error) {
	return byText(p.lookup(selector), selector, pattern)
}

func (p *Page) FindAll(selector string) ([]widget.Element, error) {
	return all(p.lookup(selector)), nil
}

func (p *Page) Navigate(url string) error {
	p.url = url
	p.Visited = append(p.Visited, url)
	if p.OnReload != nil {
		p.OnReload()
	}
	return nil
}

func (p *Page) Reload() error {
	p.Reloads++
	if p.OnReload != nil {
		p.OnReload()
	}
	return nil
}

func (p *Page) AcceptNextDialog() (func() error, error) {
	return func() error {
		if p.NoDialogs {
			return widget.ErrNoDialog
		}
		p.DialogsAccepted++
		return nil
	}, nil
}

func (p *Page) Screenshot() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *Page) URL() string { return p.url }

// Indent nests el one level deeper in a tree.
func (e *Element) Indent(levels int) *Element {
	for range levels {
		e.Add(widget.TreeIndentSelector, NewElement(""))
	}
	return e
}

func all(els []*Element) []widget.Element {
	out := make([]widget.Element, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out
}

func first(els []*Element, selector string) (widget.Element, error) {
	if len(els) == 0 {
		return nil, widget.NotFound(selector)
	}
	return els[0], nil
}

func byText(els []*Element, selector, pattern string) (widget.Element, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	for _, el := range els {
		if re.MatchString(el.text) {
			return el, nil
		}
	}
	return nil, widget.NotFound(selector, pattern)
}
