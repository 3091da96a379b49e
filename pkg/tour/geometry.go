package tour

import "fmt"

// Rect is an axis-aligned box in viewport space (pixels in a browser, cells in
// a terminal). Top/Left is the upper-left corner.
type Rect struct {
	Top    float64 `json:"top" yaml:"top"`
	Left   float64 `json:"left" yaml:"left"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Bottom returns the y coordinate of the lower edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Empty reports whether the rect covers no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Expand grows the rect by pad on every side.
func (r Rect) Expand(pad float64) Rect {
	return Rect{
		Top:    r.Top - pad,
		Left:   r.Left - pad,
		Width:  r.Width + 2*pad,
		Height: r.Height + 2*pad,
	}
}

// Translate moves the rect by (dy, dx).
func (r Rect) Translate(dy, dx float64) Rect {
	r.Top += dy
	r.Left += dx
	return r
}

// Contains reports whether the point lies inside the rect (edges inclusive on
// the top/left side, exclusive on the bottom/right side).
func (r Rect) Contains(y, x float64) bool {
	return y >= r.Top && y < r.Bottom() && x >= r.Left && x < r.Right()
}

func (r Rect) String() string {
	return fmt.Sprintf("{top:%g left:%g w:%g h:%g}", r.Top, r.Left, r.Width, r.Height)
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Measured reports whether both dimensions are positive.
func (s Size) Measured() bool { return s.Width > 0 && s.Height > 0 }
