package dashboard

import (
	"sort"
	"sync"
)

// Element is a text container addressed by id.
type Element interface {
	Text() string
	SetText(text string)
	AddClass(name string)
	RemoveClass(name string)
	HasClass(name string) bool
}

// Canvas is a drawing surface a chart widget binds to.
type Canvas interface {
	ID() string
	Draw(html string)
	HTML() string
}

// Surface resolves elements and canvases by id. Lookups for unknown ids
// report false rather than failing.
type Surface interface {
	Element(id string) (Element, bool)
	Canvas(id string) (Canvas, bool)
}

// PageLayout lists the ids a Page exposes.
type PageLayout struct {
	Elements []string
	Canvases []string
}

// DefaultPageLayout mirrors the admin dashboard page.
func DefaultPageLayout() PageLayout {
	return PageLayout{
		Elements: []string{ElementTotalUsers, ElementActiveSubs, ElementTotalRevenue, ElementUnpaidInvoices},
		Canvases: []string{CanvasRevenue, CanvasPlan},
	}
}

// Page is an in-memory Surface, safe for concurrent use.
type Page struct {
	elements map[string]*pageElement
	canvases map[string]*pageCanvas
}

// NewPage builds a page holding exactly the ids in layout.
func NewPage(layout PageLayout) *Page {
	p := &Page{
		elements: make(map[string]*pageElement, len(layout.Elements)),
		canvases: make(map[string]*pageCanvas, len(layout.Canvases)),
	}
	for _, id := range layout.Elements {
		p.elements[id] = &pageElement{classes: map[string]struct{}{}}
	}
	for _, id := range layout.Canvases {
		p.canvases[id] = &pageCanvas{id: id}
	}
	return p
}

func (p *Page) Element(id string) (Element, bool) {
	el, ok := p.elements[id]
	if !ok {
		return nil, false
	}
	return el, true
}

func (p *Page) Canvas(id string) (Canvas, bool) {
	c, ok := p.canvases[id]
	if !ok {
		return nil, false
	}
	return c, true
}

// Draws reports how many times the canvas was drawn.
func (p *Page) Draws(id string) int {
	c, ok := p.canvases[id]
	if !ok {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.draws
}

// ElementIDs returns the element ids in sorted order.
func (p *Page) ElementIDs() []string {
	ids := make([]string, 0, len(p.elements))
	for id := range p.elements {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type pageElement struct {
	mu      sync.RWMutex
	text    string
	classes map[string]struct{}
}

func (e *pageElement) Text() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.text
}

func (e *pageElement) SetText(text string) {
	e.mu.Lock()
	e.text = text
	e.mu.Unlock()
}

func (e *pageElement) AddClass(name string) {
	e.mu.Lock()
	e.classes[name] = struct{}{}
	e.mu.Unlock()
}

func (e *pageElement) RemoveClass(name string) {
	e.mu.Lock()
	delete(e.classes, name)
	e.mu.Unlock()
}

func (e *pageElement) HasClass(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.classes[name]
	return ok
}

type pageCanvas struct {
	mu    sync.RWMutex
	id    string
	html  string
	draws int
}

func (c *pageCanvas) ID() string { return c.id }

func (c *pageCanvas) Draw(html string) {
	c.mu.Lock()
	c.html = html
	c.draws++
	c.mu.Unlock()
}

func (c *pageCanvas) HTML() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.html
}
