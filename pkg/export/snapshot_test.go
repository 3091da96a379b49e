package export

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/spotlight/pkg/tour"
)

func anchoredFrame() tour.Frame {
	vp := tour.Size{Width: 400, Height: 300}
	target := tour.Rect{Top: 40, Left: 60, Width: 120, Height: 30}
	tip := tour.Size{Width: 200, Height: 100}
	pos, _ := tour.PositionTooltip(target, tour.PlacementBottom, tip, vp, 20, 20)
	return tour.Frame{
		Open:     true,
		TourID:   "intro",
		Index:    0,
		Total:    2,
		Step:     tour.Step{Locator: "#search", Title: "Search", Content: "Find a coach by name or topic."},
		Viewport: vp,
		Target:   &target,
		Overlay:  tour.Spotlight(target, vp, 8),
		Tooltip:  &pos,
	}
}

func TestSaveSnapshotSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "step1.svg")
	err := SaveSnapshot(SnapshotOptions{
		Path:        path,
		Frame:       anchoredFrame(),
		Elements:    []Element{{Locator: "#search", Rect: tour.Rect{Top: 40, Left: 60, Width: 120, Height: 30}}},
		TooltipSize: tour.Size{Width: 200, Height: 100},
	})
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{"<svg", "#search", "Search", "1 of 2", "fill:none;stroke:#6b47d9"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in SVG output", want)
		}
	}
}

func TestSaveSnapshotPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "step1.png")
	if err := SaveSnapshot(SnapshotOptions{Path: path, Frame: anchoredFrame(), TooltipSize: tour.Size{Width: 200, Height: 100}}); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Expected a valid PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
		t.Errorf("Expected 400x300 image, got %v", b)
	}
}

func TestSaveSnapshotScalesCells(t *testing.T) {
	vp := tour.Size{Width: 80, Height: 24}
	f := tour.Frame{Open: true, Total: 1, Viewport: vp, Centered: true, Overlay: tour.FullOverlay(vp)}
	path := filepath.Join(t.TempDir(), "cells.png")
	if err := SaveSnapshot(SnapshotOptions{Path: path, Frame: f, ScaleX: 8, ScaleY: 16}); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 384 {
		t.Errorf("Expected 640x384 image, got %v", b)
	}
}

func TestSaveSnapshotErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		opts SnapshotOptions
	}{
		{"closed frame", SnapshotOptions{Path: filepath.Join(dir, "a.svg")}},
		{"no path", SnapshotOptions{Frame: anchoredFrame()}},
		{"bad format", SnapshotOptions{Path: filepath.Join(dir, "a.gif"), Format: "gif", Frame: anchoredFrame()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := SaveSnapshot(tt.opts); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six seven", 10, 2)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %v", lines)
	}
	if !strings.HasSuffix(lines[1], "…") {
		t.Errorf("Expected ellipsis on the last kept line, got %q", lines[1])
	}
}
