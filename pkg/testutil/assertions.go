package testutil

import (
	"github.com/vanderheijden86/spotlight/pkg/tour"
)

// T is the subset of testing.TB the assertions need. *testing.T and
// *rapid.T both satisfy it.
type T interface {
	Helper()
	Errorf(format string, args ...any)
}

// AssertWithin verifies that r lies inside [margin, viewport-margin] on both
// axes.
func AssertWithin(t T, r tour.Rect, viewport tour.Size, margin float64) {
	t.Helper()
	const eps = 1e-9
	if r.Left < margin-eps || r.Right() > viewport.Width-margin+eps {
		t.Errorf("box %v overflows horizontally (viewport %v, margin %v)", r, viewport, margin)
	}
	if r.Top < margin-eps || r.Bottom() > viewport.Height-margin+eps {
		t.Errorf("box %v overflows vertically (viewport %v, margin %v)", r, viewport, margin)
	}
}

// AssertNoOverlap verifies that no two rects share area.
func AssertNoOverlap(t T, rects []tour.Rect) {
	t.Helper()
	for i := range rects {
		for j := i + 1; j < len(rects); j++ {
			a, b := rects[i], rects[j]
			if a.Empty() || b.Empty() {
				continue
			}
			if a.Left < b.Right() && b.Left < a.Right() && a.Top < b.Bottom() && b.Top < a.Bottom() {
				t.Errorf("rects %d %v and %d %v overlap", i, a, j, b)
			}
		}
	}
}

// AssertListeners verifies the number of attached layout listeners.
func AssertListeners(t T, p *FakeProvider, expected int) {
	t.Helper()
	if got := p.Listeners(); got != expected {
		t.Errorf("expected %d layout listeners, got %d", expected, got)
	}
}
