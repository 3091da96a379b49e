package ui

import (
	"math"

	"github.com/vanderheijden86/spotlight/pkg/tour"
)

type registered struct {
	loc   tour.Locator
	rect  tour.Rect
	fixed bool
}

// LayoutRegistry is the terminal's tour.TargetLocatorProvider. Screens
// register the cell rects of tour-addressable elements as they lay out;
// the registry answers locator queries in screen coordinates and owns the
// page scroll offset, including the smooth scroll the engine asks for.
//
// Coordinates are cells: Top is a row, Left a column. Scrollable elements are
// placed in content coordinates (row 0 is the first content row below the
// chrome); fixed elements are placed in screen coordinates.
type LayoutRegistry struct {
	elements []registered

	width, height int
	origin        int // rows of fixed chrome above the scrollable content
	contentHeight int

	scrollY      int
	scrollTarget int
	scrolling    bool

	nextID    int
	listeners map[int]func(tour.LayoutEvent)
}

// NewLayoutRegistry returns an empty registry.
func NewLayoutRegistry() *LayoutRegistry {
	return &LayoutRegistry{listeners: make(map[int]func(tour.LayoutEvent))}
}

// Begin starts a layout pass, forgetting previously registered elements.
func (r *LayoutRegistry) Begin() {
	r.elements = r.elements[:0]
}

// Place registers a scrollable element in content coordinates. When several
// elements share a locator the first one placed wins.
func (r *LayoutRegistry) Place(loc tour.Locator, rect tour.Rect) {
	r.elements = append(r.elements, registered{loc: loc, rect: rect})
}

// PlaceFixed registers an element that does not scroll (headers, sidebars),
// in screen coordinates.
func (r *LayoutRegistry) PlaceFixed(loc tour.Locator, rect tour.Rect) {
	r.elements = append(r.elements, registered{loc: loc, rect: rect, fixed: true})
}

// SetSize records the terminal size and notifies listeners when it changed.
func (r *LayoutRegistry) SetSize(width, height int) {
	if width == r.width && height == r.height {
		return
	}
	r.width, r.height = width, height
	r.clampScroll()
	r.emit(tour.LayoutResize)
}

// SetOrigin sets how many rows of fixed chrome sit above the content.
func (r *LayoutRegistry) SetOrigin(rows int) {
	r.origin = rows
}

// SetContentHeight records the full height of the scrollable content.
func (r *LayoutRegistry) SetContentHeight(rows int) {
	r.contentHeight = rows
	r.clampScroll()
}

// ContentViewport returns how many content rows are visible.
func (r *LayoutRegistry) ContentViewport() int {
	if v := r.height - r.origin; v > 0 {
		return v
	}
	return 0
}

func (r *LayoutRegistry) maxScroll() int {
	if m := r.contentHeight - r.ContentViewport(); m > 0 {
		return m
	}
	return 0
}

func (r *LayoutRegistry) clampScroll() {
	r.scrollY = clampInt(r.scrollY, 0, r.maxScroll())
	r.scrollTarget = clampInt(r.scrollTarget, 0, r.maxScroll())
}

// Resolve implements tour.TargetLocatorProvider.
func (r *LayoutRegistry) Resolve(loc tour.Locator) (tour.Rect, bool) {
	for _, e := range r.elements {
		if e.loc != loc {
			continue
		}
		if e.fixed {
			return e.rect, true
		}
		return e.rect.Translate(float64(r.origin-r.scrollY), 0), true
	}
	return tour.Rect{}, false
}

// Element is a registered element in screen coordinates.
type Element struct {
	Locator tour.Locator
	Rect    tour.Rect
}

// Elements returns every registered element in screen coordinates, in
// placement order. Shadowed duplicates are left out.
func (r *LayoutRegistry) Elements() []Element {
	seen := make(map[tour.Locator]bool, len(r.elements))
	out := make([]Element, 0, len(r.elements))
	for _, e := range r.elements {
		if seen[e.loc] {
			continue
		}
		seen[e.loc] = true
		rect, _ := r.Resolve(e.loc)
		out = append(out, Element{Locator: e.loc, Rect: rect})
	}
	return out
}

// Viewport implements tour.TargetLocatorProvider.
func (r *LayoutRegistry) Viewport() tour.Size {
	return tour.Size{Width: float64(r.width), Height: float64(r.height)}
}

// Subscribe implements tour.TargetLocatorProvider.
func (r *LayoutRegistry) Subscribe(fn func(tour.LayoutEvent)) func() {
	r.nextID++
	id := r.nextID
	r.listeners[id] = fn
	return func() { delete(r.listeners, id) }
}

// Listeners returns the number of attached layout listeners.
func (r *LayoutRegistry) Listeners() int { return len(r.listeners) }

// ScrollBy implements tour.TargetLocatorProvider. The scroll is animated by
// StepScroll; dy is rounded to whole rows.
func (r *LayoutRegistry) ScrollBy(dy float64) {
	target := clampInt(r.scrollY+int(math.Round(dy)), 0, r.maxScroll())
	if target == r.scrollY {
		return
	}
	r.scrollTarget = target
	r.scrolling = true
}

// Scrolling reports whether a smooth scroll is in progress.
func (r *LayoutRegistry) Scrolling() bool { return r.scrolling }

// StepScroll advances a smooth scroll by one frame, covering a third of the
// remaining distance (at least one row). It reports whether more frames are
// needed.
func (r *LayoutRegistry) StepScroll() bool {
	if !r.scrolling {
		return false
	}
	remaining := r.scrollTarget - r.scrollY
	step := remaining / 3
	if step == 0 {
		step = remaining
		if step > 1 {
			step = 1
		} else if step < -1 {
			step = -1
		}
	}
	r.scrollY += step
	if r.scrollY == r.scrollTarget {
		r.scrolling = false
	}
	r.emit(tour.LayoutScroll)
	return r.scrolling
}

// ScrollY returns the content scroll offset in rows.
func (r *LayoutRegistry) ScrollY() int { return r.scrollY }

// SetScrollY moves the content directly (the user scrolled). Any smooth
// scroll in progress is abandoned.
func (r *LayoutRegistry) SetScrollY(y int) {
	y = clampInt(y, 0, r.maxScroll())
	r.scrolling = false
	r.scrollTarget = y
	if y == r.scrollY {
		return
	}
	r.scrollY = y
	r.emit(tour.LayoutScroll)
}

func (r *LayoutRegistry) emit(ev tour.LayoutEvent) {
	fns := make([]func(tour.LayoutEvent), 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	for _, fn := range fns {
		fn(ev)
	}
}
