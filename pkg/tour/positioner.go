package tour

import "math"

// Align says whether a TooltipPosition coordinate names the box's leading
// edge or its centre on that axis.
type Align int

const (
	AlignStart Align = iota
	AlignCenter
)

// TooltipPosition is where the tooltip goes. Top and Left are anchor
// coordinates interpreted through AlignY and AlignX.
type TooltipPosition struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	AlignX Align   `json:"align_x"`
	AlignY Align   `json:"align_y"`
}

// Box returns the tooltip's bounding box for the given size.
func (p TooltipPosition) Box(tip Size) Rect {
	top, left := p.Top, p.Left
	if p.AlignY == AlignCenter {
		top -= tip.Height / 2
	}
	if p.AlignX == AlignCenter {
		left -= tip.Width / 2
	}
	return Rect{Top: top, Left: left, Width: tip.Width, Height: tip.Height}
}

// PlaceTooltip computes the unclamped tooltip anchor for a placement.
// Top/bottom placements centre the box horizontally on the target and
// left/right placements centre it vertically. Center placement has no
// coordinates; the renderer centres it on screen, and ok is false.
func PlaceTooltip(target Rect, placement Placement, tip Size, padding float64) (pos TooltipPosition, ok bool) {
	switch placement {
	case PlacementTop:
		return TooltipPosition{
			Top:    target.Top - tip.Height - padding,
			Left:   target.Left + target.Width/2,
			AlignX: AlignCenter,
		}, true
	case PlacementBottom:
		return TooltipPosition{
			Top:    target.Bottom() + padding,
			Left:   target.Left + target.Width/2,
			AlignX: AlignCenter,
		}, true
	case PlacementLeft:
		return TooltipPosition{
			Top:    target.Top + target.Height/2,
			Left:   target.Left - tip.Width - padding,
			AlignY: AlignCenter,
		}, true
	case PlacementRight:
		return TooltipPosition{
			Top:    target.Top + target.Height/2,
			Left:   target.Right() + padding,
			AlignY: AlignCenter,
		}, true
	default:
		return TooltipPosition{}, false
	}
}

// ClampTooltip pins the tooltip box inside [margin, viewport-size-margin] on
// both axes. Visibility beats proximity: the clamp wins over the placement.
// When the box is larger than the viewport allows, the lower bound wins and
// the box starts at margin.
func ClampTooltip(pos TooltipPosition, tip Size, viewport Size, margin float64) TooltipPosition {
	box := pos.Box(tip)
	return TooltipPosition{
		Top:  clampAxis(box.Top, viewport.Height-tip.Height-margin, margin),
		Left: clampAxis(box.Left, viewport.Width-tip.Width-margin, margin),
	}
}

func clampAxis(v, hi, lo float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// PositionTooltip places and clamps in one call. ok is false for center
// placement and when the tooltip has not been measured yet.
func PositionTooltip(target Rect, placement Placement, tip Size, viewport Size, padding, margin float64) (TooltipPosition, bool) {
	if !tip.Measured() {
		return TooltipPosition{}, false
	}
	pos, ok := PlaceTooltip(target, placement, tip, padding)
	if !ok {
		return TooltipPosition{}, false
	}
	return ClampTooltip(pos, tip, viewport, margin), true
}
