// Package testutil provides fakes, fixtures, and generators for spotlight
// tests.
package testutil

import (
	"github.com/vanderheijden86/spotlight/pkg/tour"
)

type placed struct {
	loc  tour.Locator
	rect tour.Rect
}

// FakeProvider is an in-memory tour.TargetLocatorProvider. Elements are placed
// in page coordinates; Resolve translates them by the scroll offset.
type FakeProvider struct {
	elements []placed
	viewport tour.Size
	scrollY  float64
	maxY     float64

	nextID    int
	listeners map[int]func(tour.LayoutEvent)

	// ScrollRequests records every ScrollBy call.
	ScrollRequests []float64
	// ApplyScroll makes ScrollBy move the page immediately and emit a scroll
	// event, like a browser finishing a smooth scroll in one frame.
	ApplyScroll bool
	// Resolves counts Resolve calls.
	Resolves int
}

// NewFakeProvider returns a provider with the given viewport.
func NewFakeProvider(viewport tour.Size) *FakeProvider {
	return &FakeProvider{
		viewport:  viewport,
		maxY:      1 << 20,
		listeners: make(map[int]func(tour.LayoutEvent)),
	}
}

// Place adds an element. Several elements may share a locator; the first one
// placed wins.
func (p *FakeProvider) Place(loc tour.Locator, r tour.Rect) {
	p.elements = append(p.elements, placed{loc: loc, rect: r})
}

// Move replaces the rect of every element with loc.
func (p *FakeProvider) Move(loc tour.Locator, r tour.Rect) {
	for i := range p.elements {
		if p.elements[i].loc == loc {
			p.elements[i].rect = r
		}
	}
}

// Remove deletes every element with loc.
func (p *FakeProvider) Remove(loc tour.Locator) {
	kept := p.elements[:0]
	for _, e := range p.elements {
		if e.loc != loc {
			kept = append(kept, e)
		}
	}
	p.elements = kept
}

// Resolve implements tour.TargetLocatorProvider.
func (p *FakeProvider) Resolve(loc tour.Locator) (tour.Rect, bool) {
	p.Resolves++
	for _, e := range p.elements {
		if e.loc == loc {
			return e.rect.Translate(-p.scrollY, 0), true
		}
	}
	return tour.Rect{}, false
}

// Viewport implements tour.TargetLocatorProvider.
func (p *FakeProvider) Viewport() tour.Size { return p.viewport }

// Subscribe implements tour.TargetLocatorProvider.
func (p *FakeProvider) Subscribe(fn func(tour.LayoutEvent)) func() {
	p.nextID++
	id := p.nextID
	p.listeners[id] = fn
	return func() { delete(p.listeners, id) }
}

// ScrollBy implements tour.TargetLocatorProvider.
func (p *FakeProvider) ScrollBy(dy float64) {
	p.ScrollRequests = append(p.ScrollRequests, dy)
	if p.ApplyScroll {
		p.Scroll(dy)
	}
}

// Resize changes the viewport and notifies listeners.
func (p *FakeProvider) Resize(s tour.Size) {
	p.viewport = s
	p.emit(tour.LayoutResize)
}

// Scroll moves the page by dy (clamped at the top) and notifies listeners.
func (p *FakeProvider) Scroll(dy float64) {
	p.scrollY += dy
	if p.scrollY < 0 {
		p.scrollY = 0
	}
	if p.scrollY > p.maxY {
		p.scrollY = p.maxY
	}
	p.emit(tour.LayoutScroll)
}

// ScrollY returns the current page offset.
func (p *FakeProvider) ScrollY() float64 { return p.scrollY }

// Listeners returns the number of attached layout listeners.
func (p *FakeProvider) Listeners() int { return len(p.listeners) }

func (p *FakeProvider) emit(ev tour.LayoutEvent) {
	// Copy so listeners may unsubscribe while being notified.
	fns := make([]func(tour.LayoutEvent), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	for _, fn := range fns {
		fn(ev)
	}
}
