package tour

import "math"

// Overlay is the dimmed mask drawn over the viewport. When Full is set the
// whole viewport is dimmed and there is no cut-out; otherwise the four strips
// tile the viewport minus Cutout.
type Overlay struct {
	Viewport Size `json:"viewport"`
	Full     bool `json:"full"`
	Cutout   Rect `json:"cutout"`

	Top    Rect `json:"top"`
	Bottom Rect `json:"bottom"`
	Left   Rect `json:"left"`
	Right  Rect `json:"right"`
}

// Strips returns the dimmed rectangles in drawing order.
func (o Overlay) Strips() []Rect {
	if o.Full {
		return []Rect{{Width: o.Viewport.Width, Height: o.Viewport.Height}}
	}
	return []Rect{o.Top, o.Bottom, o.Left, o.Right}
}

// Dimmed reports whether a viewport point is covered by the mask.
func (o Overlay) Dimmed(y, x float64) bool {
	for _, s := range o.Strips() {
		if s.Contains(y, x) {
			return true
		}
	}
	return false
}

// FullOverlay dims the entire viewport.
func FullOverlay(viewport Size) Overlay {
	return Overlay{Viewport: viewport, Full: true}
}

// Spotlight splits the viewport into four dimmed strips around target
// expanded by padding. The top and bottom strips span the full width; the
// left and right strips span only the cut-out's row band, so the strips never
// overlap and leave no seams. Sizes never go negative when the target runs
// past the viewport edge.
func Spotlight(target Rect, viewport Size, padding float64) Overlay {
	cut := target.Expand(padding)
	vw, vh := viewport.Width, viewport.Height

	return Overlay{
		Viewport: viewport,
		Cutout:   cut,
		Top: Rect{
			Top:    0,
			Left:   0,
			Width:  vw,
			Height: nonNeg(cut.Top),
		},
		Bottom: Rect{
			Top:    cut.Bottom(),
			Left:   0,
			Width:  vw,
			Height: nonNeg(vh - cut.Bottom()),
		},
		Left: Rect{
			Top:    cut.Top,
			Left:   0,
			Width:  nonNeg(cut.Left),
			Height: cut.Height,
		},
		Right: Rect{
			Top:    cut.Top,
			Left:   cut.Right(),
			Width:  nonNeg(vw - cut.Right()),
			Height: cut.Height,
		},
	}
}

func nonNeg(v float64) float64 {
	return math.Max(0, v)
}
