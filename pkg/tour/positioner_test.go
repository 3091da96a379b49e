package tour

import (
	"testing"

	"pgregory.net/rapid"
)

func TestPlaceTooltipBottomExample(t *testing.T) {
	target := Rect{Top: 100, Left: 200, Width: 150, Height: 50}
	tip := Size{Width: 300, Height: 120}

	pos, ok := PlaceTooltip(target, PlacementBottom, tip, 20)
	if !ok {
		t.Fatal("Expected a position for bottom placement")
	}
	if pos.Top != 170 || pos.Left != 275 {
		t.Errorf("Expected top=170 left=275, got top=%v left=%v", pos.Top, pos.Left)
	}
	box := pos.Box(tip)
	if box.Left != 125 || box.Top != 170 {
		t.Errorf("Expected box at (170,125), got %v", box)
	}
}

func TestPlaceTooltipPlacements(t *testing.T) {
	target := Rect{Top: 300, Left: 400, Width: 100, Height: 40}
	tip := Size{Width: 200, Height: 80}
	const pad = 10

	tests := []struct {
		placement Placement
		wantBox   Rect
	}{
		{PlacementTop, Rect{Top: 300 - 80 - pad, Left: 450 - 100, Width: 200, Height: 80}},
		{PlacementBottom, Rect{Top: 340 + pad, Left: 450 - 100, Width: 200, Height: 80}},
		{PlacementLeft, Rect{Top: 320 - 40, Left: 400 - 200 - pad, Width: 200, Height: 80}},
		{PlacementRight, Rect{Top: 320 - 40, Left: 500 + pad, Width: 200, Height: 80}},
	}
	for _, tt := range tests {
		t.Run(string(tt.placement), func(t *testing.T) {
			pos, ok := PlaceTooltip(target, tt.placement, tip, pad)
			if !ok {
				t.Fatal("Expected a position")
			}
			if got := pos.Box(tip); got != tt.wantBox {
				t.Errorf("Expected box %v, got %v", tt.wantBox, got)
			}
		})
	}
}

func TestPlaceTooltipCenterHasNoCoordinates(t *testing.T) {
	if _, ok := PlaceTooltip(Rect{}, PlacementCenter, Size{Width: 1, Height: 1}, 20); ok {
		t.Error("Expected center placement to have no coordinates")
	}
}

func TestPositionTooltipSkipsUnmeasured(t *testing.T) {
	target := Rect{Top: 10, Left: 10, Width: 10, Height: 10}
	if _, ok := PositionTooltip(target, PlacementBottom, Size{}, Size{Width: 800, Height: 600}, 20, 20); ok {
		t.Error("Expected no position before the tooltip is measured")
	}
}

func TestClampTooltipPinsOverflow(t *testing.T) {
	vp := Size{Width: 800, Height: 600}
	tip := Size{Width: 300, Height: 120}

	// Target hugging the bottom-right corner: bottom placement overflows both axes.
	target := Rect{Top: 560, Left: 760, Width: 30, Height: 30}
	pos, ok := PositionTooltip(target, PlacementBottom, tip, vp, 20, 20)
	if !ok {
		t.Fatal("Expected a position")
	}
	box := pos.Box(tip)
	if box.Left != 800-300-20 {
		t.Errorf("Expected left clamped to 480, got %v", box.Left)
	}
	if box.Top != 600-120-20 {
		t.Errorf("Expected top clamped to 460, got %v", box.Top)
	}

	// Target at the top-left: top placement goes negative and is pinned at 20.
	target = Rect{Top: 5, Left: 5, Width: 10, Height: 10}
	pos, _ = PositionTooltip(target, PlacementTop, tip, vp, 20, 20)
	box = pos.Box(tip)
	if box.Left != 20 || box.Top != 20 {
		t.Errorf("Expected box pinned at (20,20), got %v", box)
	}
}

func TestClampTooltipOversizedLowerBoundWins(t *testing.T) {
	vp := Size{Width: 200, Height: 100}
	tip := Size{Width: 400, Height: 300}
	pos := ClampTooltip(TooltipPosition{Top: 50, Left: 50}, tip, vp, 20)
	if pos.Top != 20 || pos.Left != 20 {
		t.Errorf("Expected oversized box pinned at margin, got %+v", pos)
	}
}

func TestClampKeepsTooltipInViewportProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		vp := Size{
			Width:  float64(rapid.IntRange(320, 2560).Draw(t, "vw")),
			Height: float64(rapid.IntRange(480, 1600).Draw(t, "vh")),
		}
		tip := Size{
			Width:  float64(rapid.IntRange(1, int(vp.Width)-40).Draw(t, "tw")),
			Height: float64(rapid.IntRange(1, int(vp.Height)-40).Draw(t, "th")),
		}
		target := Rect{
			Top:    float64(rapid.IntRange(-500, 3000).Draw(t, "top")),
			Left:   float64(rapid.IntRange(-500, 3000).Draw(t, "left")),
			Width:  float64(rapid.IntRange(1, 800).Draw(t, "w")),
			Height: float64(rapid.IntRange(1, 800).Draw(t, "h")),
		}
		placement := rapid.SampledFrom([]Placement{PlacementTop, PlacementBottom, PlacementLeft, PlacementRight}).Draw(t, "placement")

		pos, ok := PositionTooltip(target, placement, tip, vp, 20, 20)
		if !ok {
			t.Fatal("expected a position")
		}
		box := pos.Box(tip)
		if box.Left < 20 || box.Right() > vp.Width-20 {
			t.Fatalf("box %v overflows width %v", box, vp.Width)
		}
		if box.Top < 20 || box.Bottom() > vp.Height-20 {
			t.Fatalf("box %v overflows height %v", box, vp.Height)
		}
	})
}

func TestClampIsNoopWhenPlacementFits(t *testing.T) {
	vp := Size{Width: 1024, Height: 768}
	tip := Size{Width: 300, Height: 120}
	target := Rect{Top: 100, Left: 200, Width: 150, Height: 50}

	placed, _ := PlaceTooltip(target, PlacementBottom, tip, 20)
	clamped := ClampTooltip(placed, tip, vp, 20)
	if placed.Box(tip) != clamped.Box(tip) {
		t.Errorf("Expected clamp to keep a fitting box, got %v vs %v", placed.Box(tip), clamped.Box(tip))
	}
}
