package tour

// LayoutEvent is a layout-affecting change reported by a provider.
type LayoutEvent int

const (
	LayoutResize LayoutEvent = iota
	LayoutScroll
)

func (e LayoutEvent) String() string {
	switch e {
	case LayoutResize:
		return "resize"
	case LayoutScroll:
		return "scroll"
	default:
		return "unknown"
	}
}

// TargetLocatorProvider is the capability a concrete UI toolkit implements so
// the engine can find and follow tour targets. Implementations must deliver
// layout events on the same goroutine that drives the engine.
type TargetLocatorProvider interface {
	// Resolve returns the viewport-space bounds of the first element matching
	// the locator.
	Resolve(loc Locator) (Rect, bool)
	// Viewport returns the current visible area size.
	Viewport() Size
	// Subscribe registers fn for layout events and returns a function that
	// detaches it. Calling the returned function more than once is safe.
	Subscribe(fn func(LayoutEvent)) (unsubscribe func())
	// ScrollBy requests a smooth scroll of the page by dy.
	ScrollBy(dy float64)
}
