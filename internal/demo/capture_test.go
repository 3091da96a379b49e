package demo

import (
	"testing"

	"github.com/vanderheijden86/spotlight/pkg/config"
	"github.com/vanderheijden86/spotlight/pkg/progress"
	"github.com/vanderheijden86/spotlight/pkg/tour"
	"github.com/vanderheijden86/spotlight/pkg/ui"
)

func captureOptions(t *testing.T, catalog *tour.Catalog) Options {
	t.Helper()
	if catalog == nil {
		var err error
		catalog, err = LoadCatalog(nil)
		if err != nil {
			t.Fatalf("LoadCatalog failed: %v", err)
		}
	}
	return Options{
		Catalog:  catalog,
		Store:    progress.New(progress.NewMemoryBackend(), "capture"),
		Theme:    ui.TestTheme(),
		Markdown: ui.NewMarkdownRenderer("notty"),
		Tour:     config.TerminalTourOptions(),
	}
}

func TestCaptureStepScrollsTargetIntoView(t *testing.T) {
	c, err := CaptureStep(captureOptions(t, nil), "client-welcome", 2, 100, 24)
	if err != nil {
		t.Fatalf("CaptureStep failed: %v", err)
	}
	f := c.Frame
	if !f.Open || f.Index != 2 || f.Settling {
		t.Fatalf("Expected settled open frame at step 2, got open=%v index=%d settling=%v", f.Open, f.Index, f.Settling)
	}
	if f.Target == nil {
		t.Fatal("Expected #goals to be found")
	}
	if f.Target.Top < 0 || f.Target.Bottom() > f.Viewport.Height {
		t.Errorf("Expected #goals inside the viewport, got %+v in %+v", *f.Target, f.Viewport)
	}
	if f.Tooltip == nil {
		t.Error("Expected a tooltip position once the tooltip was measured")
	}
	if c.TooltipSize.Width <= 0 || c.TooltipSize.Height <= 0 {
		t.Errorf("Expected a measured tooltip, got %+v", c.TooltipSize)
	}

	found := false
	for _, e := range c.Elements {
		if e.Locator == "#goals" {
			found = true
			if e.Rect != *f.Target {
				t.Errorf("Expected element rect %+v to match target %+v", e.Rect, *f.Target)
			}
		}
	}
	if !found {
		t.Error("Expected #goals among the page elements")
	}
}

func TestCaptureStepCentred(t *testing.T) {
	c, err := CaptureStep(captureOptions(t, nil), "client-welcome", 0, 100, 24)
	if err != nil {
		t.Fatalf("CaptureStep failed: %v", err)
	}
	if !c.Frame.Centered || c.Frame.Target != nil {
		t.Errorf("Expected a centred first step, got centered=%v target=%v", c.Frame.Centered, c.Frame.Target)
	}
}

func TestCaptureStepUsesTourRole(t *testing.T) {
	opts := captureOptions(t, nil)
	opts.Role = RoleClient
	c, err := CaptureStep(opts, "availability", 0, 100, 24)
	if err != nil {
		t.Fatalf("CaptureStep failed: %v", err)
	}
	if c.Frame.Target == nil {
		t.Error("Expected #calendar to be found on the coach page")
	}
}

func TestCaptureStepErrors(t *testing.T) {
	opts := captureOptions(t, nil)
	if _, err := CaptureStep(opts, "nope", 0, 100, 24); err == nil {
		t.Error("Expected error for unknown tour")
	}
	if _, err := CaptureStep(opts, "client-welcome", 99, 100, 24); err == nil {
		t.Error("Expected error for step out of range")
	}

	catalog := tour.NewCatalog()
	if err := catalog.Add(tour.Tour{
		ID:    "mismatch",
		Role:  RoleClient,
		Route: "/coach/availability",
		Steps: []tour.Step{{Locator: "#calendar", Content: "Calendar"}},
	}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := CaptureStep(captureOptions(t, catalog), "mismatch", 0, 100, 24); err == nil {
		t.Error("Expected error when the role cannot open the tour's route")
	}
}
