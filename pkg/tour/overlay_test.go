package tour_test

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/spotlight/pkg/testutil"
	"github.com/vanderheijden86/spotlight/pkg/tour"
)

func TestSpotlightFourStrips(t *testing.T) {
	vp := tour.Size{Width: 1000, Height: 800}
	target := tour.Rect{Top: 100, Left: 200, Width: 150, Height: 50}

	o := tour.Spotlight(target, vp, 10)

	if o.Full {
		t.Fatal("Expected a cut-out overlay")
	}
	wantCut := tour.Rect{Top: 90, Left: 190, Width: 170, Height: 70}
	if o.Cutout != wantCut {
		t.Errorf("Expected cutout %v, got %v", wantCut, o.Cutout)
	}
	checks := []struct {
		name string
		got  tour.Rect
		want tour.Rect
	}{
		{"top", o.Top, tour.Rect{Top: 0, Left: 0, Width: 1000, Height: 90}},
		{"bottom", o.Bottom, tour.Rect{Top: 160, Left: 0, Width: 1000, Height: 640}},
		{"left", o.Left, tour.Rect{Top: 90, Left: 0, Width: 190, Height: 70}},
		{"right", o.Right, tour.Rect{Top: 90, Left: 360, Width: 640, Height: 70}},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s strip: expected %v, got %v", c.name, c.want, c.got)
		}
	}

	if o.Dimmed(120, 250) {
		t.Error("Expected target centre to be undimmed")
	}
	if !o.Dimmed(10, 10) || !o.Dimmed(120, 100) || !o.Dimmed(120, 900) || !o.Dimmed(700, 500) {
		t.Error("Expected points outside the cut-out to be dimmed")
	}
}

func TestSpotlightClipsOffscreenTarget(t *testing.T) {
	vp := tour.Size{Width: 400, Height: 300}
	o := tour.Spotlight(tour.Rect{Top: -50, Left: -30, Width: 100, Height: 40}, vp, 5)

	if o.Top.Height != 0 {
		t.Errorf("Expected empty top strip, got %v", o.Top)
	}
	if o.Left.Width != 0 {
		t.Errorf("Expected empty left strip, got %v", o.Left)
	}
	for _, s := range o.Strips() {
		if s.Width < 0 || s.Height < 0 {
			t.Errorf("Expected non-negative strip, got %v", s)
		}
	}
}

func TestFullOverlay(t *testing.T) {
	o := tour.FullOverlay(tour.Size{Width: 80, Height: 24})
	strips := o.Strips()
	if len(strips) != 1 || strips[0] != (tour.Rect{Width: 80, Height: 24}) {
		t.Errorf("Expected single full strip, got %v", strips)
	}
	if !o.Dimmed(12, 40) {
		t.Error("Expected everything dimmed")
	}
}

func TestSpotlightTilesViewportProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		vp := testutil.ViewportGen().Draw(t, "viewport")
		pad := float64(rapid.IntRange(0, 16).Draw(t, "pad"))
		w := float64(rapid.IntRange(1, int(vp.Width)/2).Draw(t, "w"))
		h := float64(rapid.IntRange(1, int(vp.Height)/2).Draw(t, "h"))
		target := tour.Rect{
			Top:    float64(rapid.IntRange(int(pad), int(vp.Height-h-pad)).Draw(t, "top")),
			Left:   float64(rapid.IntRange(int(pad), int(vp.Width-w-pad)).Draw(t, "left")),
			Width:  w,
			Height: h,
		}

		o := tour.Spotlight(target, vp, pad)
		strips := o.Strips()

		testutil.AssertNoOverlap(t, append(strips, o.Cutout))

		area := o.Cutout.Width * o.Cutout.Height
		for _, s := range strips {
			area += s.Width * s.Height
		}
		if area != vp.Width*vp.Height {
			t.Fatalf("strips + cutout cover %v, viewport is %v", area, vp.Width*vp.Height)
		}
	})
}
