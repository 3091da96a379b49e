package ui

import (
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/vanderheijden86/spotlight/pkg/tour"
)

func plainScreen(width, height int) string {
	lines := make([]string, height)
	for y := range lines {
		lines[y] = strings.Repeat(string(rune('a'+y%26)), width)
	}
	return strings.Join(lines, "\n")
}

func TestScreenLinesNormalizes(t *testing.T) {
	lines := screenLines("short\n"+strings.Repeat("x", 30), 10, 4)
	if len(lines) != 4 {
		t.Fatalf("Expected 4 lines, got %d", len(lines))
	}
	for i, l := range lines {
		if w := ansi.StringWidth(l); w != 10 {
			t.Errorf("line %d: expected width 10, got %d", i, w)
		}
	}
}

func TestComposeOverlayKeepsText(t *testing.T) {
	theme := TestTheme()
	screen := plainScreen(20, 6)
	vp := tour.Size{Width: 20, Height: 6}

	overlays := map[string]tour.Overlay{
		"full":      tour.FullOverlay(vp),
		"spotlight": tour.Spotlight(tour.Rect{Top: 2, Left: 5, Width: 6, Height: 2}, vp, 1),
		"clipped":   tour.Spotlight(tour.Rect{Top: -3, Left: 15, Width: 10, Height: 4}, vp, 1),
	}
	want := strings.Split(screen, "\n")
	for name, o := range overlays {
		t.Run(name, func(t *testing.T) {
			lines := ComposeOverlay(screen, o, 20, 6, theme)
			if len(lines) != 6 {
				t.Fatalf("Expected 6 lines, got %d", len(lines))
			}
			for y, l := range lines {
				if got := ansi.Strip(l); got != want[y] {
					t.Errorf("line %d: expected %q, got %q", y, want[y], got)
				}
			}
		})
	}
}

func TestComposeOverlayLeavesCutoutUntouched(t *testing.T) {
	theme := TestTheme()
	styled := theme.Ring.Render("TARGET")
	screen := "..........\n..." + styled + ".\n.........."
	o := tour.Spotlight(tour.Rect{Top: 1, Left: 3, Width: 6, Height: 1}, tour.Size{Width: 10, Height: 3}, 0)

	lines := ComposeOverlay(screen, o, 10, 3, theme)
	if !strings.Contains(lines[1], styled) {
		t.Errorf("Expected cut-out cells to keep their styling, got %q", lines[1])
	}
}

func TestMaskSpansFollowStrips(t *testing.T) {
	vp := tour.Size{Width: 20, Height: 6}
	full := [][2]int{{0, 20}}
	sides := [][2]int{{0, 4}, {12, 20}}

	tests := []struct {
		name string
		o    tour.Overlay
		want [][][2]int
	}{
		{"full", tour.FullOverlay(vp), [][][2]int{full, full, full, full, full, full}},
		{
			// Cut-out rows 1-4, columns 4-11.
			"spotlight", tour.Spotlight(tour.Rect{Top: 2, Left: 5, Width: 6, Height: 2}, vp, 1),
			[][][2]int{full, sides, sides, sides, sides, full},
		},
		{
			// Runs off the top and right edges: only the left strip remains on rows 0-1.
			"clipped", tour.Spotlight(tour.Rect{Top: -3, Left: 15, Width: 10, Height: 4}, vp, 1),
			[][][2]int{{{0, 14}}, {{0, 14}}, full, full, full, full},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strips := tt.o.Strips()
			for y, want := range tt.want {
				if got := maskSpans(strips, y, 20); !reflect.DeepEqual(got, want) {
					t.Errorf("row %d: expected %v, got %v", y, want, got)
				}
			}
		})
	}
}

func TestMaskSpansEmptyStrips(t *testing.T) {
	if got := maskSpans(nil, 0, 10); got != nil {
		t.Errorf("Expected no spans, got %v", got)
	}
}

func TestDrawRing(t *testing.T) {
	theme := TestTheme()
	lines := screenLines(plainScreen(10, 5), 10, 5)
	DrawRing(lines, tour.Rect{Top: 1, Left: 2, Width: 4, Height: 3}, 10, theme)

	expect := map[int]string{
		1: "bb╭──╮bbbb",
		2: "cc│cc│cccc",
		3: "dd╰──╯dddd",
	}
	for y, want := range expect {
		if got := ansi.Strip(lines[y]); got != want {
			t.Errorf("line %d: expected %q, got %q", y, want, got)
		}
	}
	if got := ansi.Strip(lines[0]); got != strings.Repeat("a", 10) {
		t.Errorf("Expected row above ring untouched, got %q", got)
	}
}

func TestPlaceBlockClips(t *testing.T) {
	lines := screenLines(plainScreen(8, 3), 8, 3)
	PlaceBlock(lines, "XXXX\nYYYY\nZZZZ\nWWWW", 1, 6, 8)

	if got := ansi.Strip(lines[1]); got != "bbbbbbXX" {
		t.Errorf("Expected clipped block, got %q", got)
	}
	if got := ansi.Strip(lines[2]); got != "ccccccYY" {
		t.Errorf("Expected clipped block, got %q", got)
	}
	if len(lines) != 3 {
		t.Errorf("Expected no extra lines, got %d", len(lines))
	}
}
