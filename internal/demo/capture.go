package demo

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/spotlight/pkg/tour"
	"github.com/vanderheijden86/spotlight/pkg/ui"
)

// maxDrainRounds bounds how long a headless capture waits for a step to
// settle and its scroll to finish.
const maxDrainRounds = 500

// Capture is one settled tour step laid over its page.
type Capture struct {
	Frame       tour.Frame
	Elements    []ui.Element
	TooltipSize tour.Size
}

// CaptureStep opens the page tourID starts on at width x height cells and
// walks a headless engine to step index, waiting out every settle delay and
// scroll. opts.StartRoute is ignored; the tour's own route and role are used.
func CaptureStep(opts Options, tourID string, index, width, height int) (Capture, error) {
	t, err := opts.Catalog.Tour(tourID)
	if err != nil {
		return Capture{}, err
	}
	if index < 0 || index >= len(t.Steps) {
		return Capture{}, fmt.Errorf("tour %q has %d steps, no step %d", tourID, len(t.Steps), index+1)
	}
	if t.Role != "" {
		opts.Role = t.Role
	}
	opts.StartRoute = t.Route
	opts.Watcher = nil

	model, _ := New(opts).Update(tea.WindowSizeMsg{Width: width, Height: height})
	app := model.(App)
	if t.Route != "" && app.Route() != tour.RoutePath(t.Route) {
		return Capture{}, fmt.Errorf("tour %q starts on %s, which role %s cannot open", tourID, t.Route, app.Role())
	}

	layout := app.Layout()
	sched := tour.NewManualScheduler()
	engine := tour.NewEngine(layout, sched, opts.Tour)
	if err := engine.Start(t); err != nil {
		return Capture{}, err
	}
	defer engine.Close()

	drain := func() {
		for i := 0; i < maxDrainRounds; i++ {
			if layout.Scrolling() {
				layout.StepScroll()
				sched.Advance(opts.Tour.FrameInterval)
				continue
			}
			if sched.Pending() == 0 {
				return
			}
			sched.Advance(opts.Tour.SettleDelay)
		}
	}
	drain()
	for engine.Index() < index && engine.Open() {
		engine.Next()
		drain()
	}

	size := app.Spotlight().MeasureTooltip(engine.Frame())
	engine.SetTooltipSize(size)
	return Capture{
		Frame:       engine.Frame(),
		Elements:    layout.Elements(),
		TooltipSize: size,
	}, nil
}
