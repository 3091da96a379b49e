package testutil

import (
	"fmt"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/spotlight/pkg/tour"
)

// RectGen draws rects with integral coordinates inside a generous page.
func RectGen() *rapid.Generator[tour.Rect] {
	return rapid.Custom(func(t *rapid.T) tour.Rect {
		return tour.Rect{
			Top:    float64(rapid.IntRange(-200, 2000).Draw(t, "top")),
			Left:   float64(rapid.IntRange(-200, 2000).Draw(t, "left")),
			Width:  float64(rapid.IntRange(1, 600).Draw(t, "width")),
			Height: float64(rapid.IntRange(1, 400).Draw(t, "height")),
		}
	})
}

// ViewportGen draws viewport sizes from phone to desktop.
func ViewportGen() *rapid.Generator[tour.Size] {
	return rapid.Custom(func(t *rapid.T) tour.Size {
		return tour.Size{
			Width:  float64(rapid.IntRange(320, 2560).Draw(t, "vw")),
			Height: float64(rapid.IntRange(480, 1600).Draw(t, "vh")),
		}
	})
}

// PlacementGen draws one of the anchored placements.
func PlacementGen() *rapid.Generator[tour.Placement] {
	return rapid.SampledFrom([]tour.Placement{
		tour.PlacementTop,
		tour.PlacementBottom,
		tour.PlacementLeft,
		tour.PlacementRight,
	})
}

// TourGen draws tours of 1..12 steps mixing anchored and centred steps.
func TourGen() *rapid.Generator[tour.Tour] {
	return rapid.Custom(func(t *rapid.T) tour.Tour {
		n := rapid.IntRange(1, 12).Draw(t, "steps")
		steps := make([]tour.Step, n)
		for i := range steps {
			if rapid.Bool().Draw(t, fmt.Sprintf("centred%d", i)) {
				steps[i] = tour.Step{Content: fmt.Sprintf("step %d", i), Placement: tour.PlacementCenter}
				continue
			}
			steps[i] = tour.Step{
				Locator:   tour.Locator(fmt.Sprintf("#el-%d", i)),
				Content:   fmt.Sprintf("step %d", i),
				Placement: PlacementGen().Draw(t, fmt.Sprintf("placement%d", i)),
			}
		}
		return tour.Tour{ID: "generated", Steps: steps}
	})
}

// SampleTour returns a fixed three-step tour: anchored, centred, anchored.
func SampleTour() tour.Tour {
	return tour.Tour{
		ID: "sample",
		Steps: []tour.Step{
			{Locator: "#search", Title: "Search", Content: "Find a coach.", Placement: tour.PlacementBottom},
			{Title: "Welcome", Content: "A quick look around.", Placement: tour.PlacementCenter},
			{Locator: "#book", Title: "Book", Content: "Book a session.", Placement: tour.PlacementRight, LockOverlayDismiss: true},
		},
	}
}
