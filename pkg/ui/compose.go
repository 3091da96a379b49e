package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/vanderheijden86/spotlight/pkg/tour"
)

// cellRect is a tour.Rect snapped outwards to whole cells.
type cellRect struct {
	top, left, bottom, right int
}

func toCells(r tour.Rect) cellRect {
	return cellRect{
		top:    int(math.Floor(r.Top)),
		left:   int(math.Floor(r.Left)),
		bottom: int(math.Ceil(r.Bottom())),
		right:  int(math.Ceil(r.Right())),
	}
}

func (c cellRect) width() int  { return c.right - c.left }
func (c cellRect) height() int { return c.bottom - c.top }

func stripANSI(s string) string { return ansi.Strip(s) }

// screenLines splits s into exactly height lines of exactly width cells.
func screenLines(s string, width, height int) []string {
	lines := strings.Split(s, "\n")
	out := make([]string, height)
	for y := range out {
		var line string
		if y < len(lines) {
			line = lines[y]
		}
		if w := ansi.StringWidth(line); w > width {
			line = ansi.Truncate(line, width, "")
		} else if w < width {
			line += strings.Repeat(" ", width-w)
		}
		out[y] = line
	}
	return out
}

// overlayAt replaces the cells of line starting at column x with s. line must
// already be padded to width.
func overlayAt(line string, x int, s string, width int) string {
	if x >= width {
		return line
	}
	if x < 0 {
		s = ansi.Cut(s, -x, ansi.StringWidth(s))
		x = 0
	}
	sw := ansi.StringWidth(s)
	if x+sw > width {
		s = ansi.Truncate(s, width-x, "")
		sw = width - x
	}
	return ansi.Cut(line, 0, x) + s + ansi.Cut(line, x+sw, width)
}

// ComposeOverlay dims every cell of screen that one of the overlay's strips
// covers. Cells inside the cut-out keep their original styling.
func ComposeOverlay(screen string, o tour.Overlay, width, height int, theme Theme) []string {
	lines := screenLines(screen, width, height)
	strips := o.Strips()
	for y, line := range lines {
		var b strings.Builder
		col := 0
		for _, span := range maskSpans(strips, y, width) {
			b.WriteString(ansi.Cut(line, col, span[0]))
			if seg := ansi.Cut(line, span[0], span[1]); seg != "" {
				b.WriteString(theme.Mask.Render(ansi.Strip(seg)))
			}
			col = span[1]
		}
		b.WriteString(ansi.Cut(line, col, width))
		lines[y] = b.String()
	}
	return lines
}

// maskSpans returns the [start, end) column runs of row y whose cell centres
// fall inside a strip, left to right.
func maskSpans(strips []tour.Rect, y, width int) [][2]int {
	var spans [][2]int
	start := -1
	cy := float64(y) + 0.5
	for x := 0; x <= width; x++ {
		dimmed := false
		if x < width {
			for _, s := range strips {
				if s.Contains(cy, float64(x)+0.5) {
					dimmed = true
					break
				}
			}
		}
		switch {
		case dimmed && start < 0:
			start = x
		case !dimmed && start >= 0:
			spans = append(spans, [2]int{start, x})
			start = -1
		}
	}
	return spans
}

// DrawRing outlines the cut-out with a rounded border on its outermost
// cells, which is the padding around the target.
func DrawRing(lines []string, cutout tour.Rect, width int, theme Theme) {
	c := toCells(cutout)
	if c.width() < 2 || c.height() < 2 {
		return
	}
	horizontal := func(l, r string) string {
		return l + strings.Repeat("─", c.width()-2) + r
	}
	put := func(y, x int, s string) {
		if y < 0 || y >= len(lines) {
			return
		}
		lines[y] = overlayAt(lines[y], x, theme.Ring.Render(s), width)
	}

	put(c.top, c.left, horizontal("╭", "╮"))
	put(c.bottom-1, c.left, horizontal("╰", "╯"))
	for y := c.top + 1; y < c.bottom-1; y++ {
		put(y, c.left, "│")
		put(y, c.right-1, "│")
	}
}

// PlaceBlock draws a multi-line block onto lines with its top-left corner at
// (top, left), clipping at the screen edges.
func PlaceBlock(lines []string, block string, top, left, width int) {
	for i, bl := range strings.Split(block, "\n") {
		y := top + i
		if y < 0 || y >= len(lines) {
			continue
		}
		lines[y] = overlayAt(lines[y], left, bl, width)
	}
}
