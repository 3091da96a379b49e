package tour

import "math"

// Scroller brings a newly tracked target into view, leaving ScrollMargin of
// space above it for fixed chrome.
type Scroller struct {
	provider TargetLocatorProvider
	margin   float64
}

// NewScroller returns a scroller that reserves margin above targets.
func NewScroller(provider TargetLocatorProvider, margin float64) Scroller {
	return Scroller{provider: provider, margin: margin}
}

// Delta returns how far the page must scroll to put target at the margin.
func (s Scroller) Delta(target Rect) float64 {
	return target.Top - s.margin
}

// ScrollTo asks the provider for a smooth scroll and reports whether one was
// requested. Sub-unit deltas are ignored.
func (s Scroller) ScrollTo(target Rect) bool {
	dy := s.Delta(target)
	if math.Abs(dy) < 1 {
		return false
	}
	s.provider.ScrollBy(dy)
	return true
}
