// Package export renders tour frames to static SVG or PNG images, for
// reviewing a tour's geometry without running it.
package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/spotlight/pkg/tour"
)

// Element is a labelled box drawn under the overlay, standing in for the
// page content.
type Element struct {
	Locator tour.Locator
	Rect    tour.Rect
}

// SnapshotOptions controls snapshot export.
type SnapshotOptions struct {
	Path   string // Output path; format inferred from extension when Format empty
	Format string // "svg" or "png" (case-insensitive)
	Frame  tour.Frame
	// Elements are drawn beneath the overlay, usually every registered
	// locator on the page.
	Elements []Element
	// TooltipSize is the measured tooltip, in frame units.
	TooltipSize tour.Size
	// ScaleX and ScaleY convert frame units to pixels: 1 for browser
	// frames, about 8x16 for terminal cells.
	ScaleX, ScaleY float64
}

var (
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorElement  = color.RGBA{0xe5, 0xe7, 0xeb, 0xff}
	colorStroke   = color.RGBA{0x9c, 0xa3, 0xaf, 0xff}
	colorMask     = color.RGBA{0x11, 0x11, 0x11, 0x8c}
	colorRing     = color.RGBA{0x6b, 0x47, 0xd9, 0xff}
	colorTooltip  = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
)

// scene is a frame converted to pixels.
type scene struct {
	width, height int
	elements      []sceneBox
	strips        []tour.Rect
	ring          *tour.Rect
	tooltip       *tour.Rect
	title         string
	body          []string
	counter       string
}

type sceneBox struct {
	label string
	rect  tour.Rect
}

// SaveSnapshot renders opts.Frame to an image file.
func SaveSnapshot(opts SnapshotOptions) error {
	if !opts.Frame.Open {
		return fmt.Errorf("frame has no open tour")
	}
	if !opts.Frame.Viewport.Measured() {
		return fmt.Errorf("frame has no viewport")
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".png":
			format = "png"
		default:
			format = "svg"
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	sc := buildScene(opts)
	if format == "png" {
		return renderPNG(opts.Path, sc)
	}
	f, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return renderSVG(f, sc)
}

func buildScene(opts SnapshotOptions) scene {
	sx, sy := opts.ScaleX, opts.ScaleY
	if sx <= 0 {
		sx = 1
	}
	if sy <= 0 {
		sy = 1
	}
	scale := func(r tour.Rect) tour.Rect {
		return tour.Rect{Top: r.Top * sy, Left: r.Left * sx, Width: r.Width * sx, Height: r.Height * sy}
	}

	f := opts.Frame
	sc := scene{
		width:   int(f.Viewport.Width * sx),
		height:  int(f.Viewport.Height * sy),
		title:   f.Step.Title,
		counter: fmt.Sprintf("%d of %d", f.Index+1, f.Total),
	}
	for _, e := range opts.Elements {
		sc.elements = append(sc.elements, sceneBox{label: string(e.Locator), rect: scale(e.Rect)})
	}
	if f.Overlay.Full {
		sc.strips = []tour.Rect{scale(tour.Rect{Width: f.Viewport.Width, Height: f.Viewport.Height})}
	} else {
		for _, s := range f.Overlay.Strips() {
			if !s.Empty() {
				sc.strips = append(sc.strips, scale(s))
			}
		}
		cut := scale(f.Overlay.Cutout)
		sc.ring = &cut
	}

	if f.Settling {
		return sc
	}
	tip := tour.Size{Width: opts.TooltipSize.Width * sx, Height: opts.TooltipSize.Height * sy}
	if !tip.Measured() {
		tip = tour.Size{Width: 280, Height: 120}
	}
	var box tour.Rect
	switch {
	case f.Centered:
		box = tour.Rect{
			Top:    (float64(sc.height) - tip.Height) / 2,
			Left:   (float64(sc.width) - tip.Width) / 2,
			Width:  tip.Width,
			Height: tip.Height,
		}
	case f.Tooltip != nil:
		box = f.Tooltip.Box(opts.TooltipSize)
		box = scale(box)
	default:
		return sc
	}
	sc.tooltip = &box
	sc.body = wrapText(f.Step.Content, int(box.Width/7)-2, int(box.Height/16)-3)
	return sc
}

// wrapText greedily wraps s at width runes, keeping at most maxLines lines.
func wrapText(s string, width, maxLines int) []string {
	if width < 8 {
		width = 8
	}
	if maxLines < 1 {
		maxLines = 1
	}
	var lines []string
	var cur strings.Builder
	for _, word := range strings.Fields(s) {
		if cur.Len() > 0 && cur.Len()+1+len([]rune(word)) > width {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		lines[maxLines-1] = truncate(lines[maxLines-1], width-1) + "…"
	}
	return lines
}

func renderPNG(path string, sc scene) error {
	dc := gg.NewContext(sc.width, sc.height)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	for _, e := range sc.elements {
		r := e.rect
		dc.SetColor(colorElement)
		dc.DrawRoundedRectangle(r.Left, r.Top, r.Width, r.Height, 4)
		dc.Fill()
		dc.SetColor(colorStroke)
		dc.SetLineWidth(1)
		dc.DrawRoundedRectangle(r.Left, r.Top, r.Width, r.Height, 4)
		dc.Stroke()
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(e.label, r.Left+6, r.Top+r.Height/2, 0, 0.5)
	}

	dc.SetColor(colorMask)
	for _, s := range sc.strips {
		dc.DrawRectangle(s.Left, s.Top, s.Width, s.Height)
		dc.Fill()
	}
	if sc.ring != nil {
		r := *sc.ring
		dc.SetColor(colorRing)
		dc.SetLineWidth(2)
		dc.DrawRoundedRectangle(r.Left, r.Top, r.Width, r.Height, 6)
		dc.Stroke()
	}

	if sc.tooltip != nil {
		b := *sc.tooltip
		dc.SetColor(colorTooltip)
		dc.DrawRoundedRectangle(b.Left, b.Top, b.Width, b.Height, 8)
		dc.Fill()
		dc.SetColor(colorRing)
		dc.SetLineWidth(1.5)
		dc.DrawRoundedRectangle(b.Left, b.Top, b.Width, b.Height, 8)
		dc.Stroke()

		dc.SetColor(colorText)
		dc.DrawStringAnchored(sc.title, b.Left+12, b.Top+18, 0, 0.5)
		dc.SetColor(colorSubtle)
		for i, line := range sc.body {
			dc.DrawStringAnchored(line, b.Left+12, b.Top+38+float64(i)*16, 0, 0.5)
		}
		dc.DrawStringAnchored(sc.counter, b.Left+12, b.Top+b.Height-14, 0, 0.5)
	}

	return dc.SavePNG(path)
}

func renderSVG(w io.Writer, sc scene) error {
	canvas := svg.New(w)
	canvas.Start(sc.width, sc.height)
	canvas.Rect(0, 0, sc.width, sc.height, fmt.Sprintf("fill:%s", css(colorBackdrop)))

	for _, e := range sc.elements {
		x, y, w, h := ints(e.rect)
		canvas.Roundrect(x, y, w, h, 4, 4,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(colorElement), css(colorStroke)))
		canvas.Text(x+6, y+h/2+4, e.label,
			fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
	}

	for _, s := range sc.strips {
		x, y, w, h := ints(s)
		canvas.Rect(x, y, w, h, fmt.Sprintf("fill:%s;fill-opacity:%.2f", css(colorMask), float64(colorMask.A)/255))
	}
	if sc.ring != nil {
		x, y, w, h := ints(*sc.ring)
		canvas.Roundrect(x, y, w, h, 6, 6, fmt.Sprintf("fill:none;stroke:%s;stroke-width:2", css(colorRing)))
	}

	if sc.tooltip != nil {
		x, y, w, h := ints(*sc.tooltip)
		canvas.Roundrect(x, y, w, h, 8, 8,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1.5", css(colorTooltip), css(colorRing)))
		canvas.Text(x+12, y+22, sc.title,
			fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:bold", css(colorText)))
		for i, line := range sc.body {
			canvas.Text(x+12, y+42+i*16, line,
				fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
		}
		canvas.Text(x+12, y+h-10, sc.counter,
			fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace", css(colorSubtle)))
	}

	canvas.End()
	return nil
}

func ints(r tour.Rect) (x, y, w, h int) {
	return int(r.Left), int(r.Top), int(r.Width), int(r.Height)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
