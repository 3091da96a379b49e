package browser

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/spotlight/pkg/debug"
	"github.com/vanderheijden86/spotlight/pkg/export"
	"github.com/vanderheijden86/spotlight/pkg/tour"
)

// AuditOptions controls how a tour is walked.
type AuditOptions struct {
	Tour tour.Options
	// TooltipSize stands in for the measured tooltip.
	TooltipSize tour.Size
	// Dwell is how long each step stays open after its settle delay before
	// the frame is captured, so scrolling can finish.
	Dwell time.Duration
	// PollInterval is the layout sampling period for browser pages.
	PollInterval time.Duration
	// SnapshotDir, when set, receives one image per step.
	SnapshotDir    string
	SnapshotFormat string
}

// DefaultAuditOptions returns browser-scale options.
func DefaultAuditOptions() AuditOptions {
	return AuditOptions{
		Tour:           tour.DefaultOptions(),
		TooltipSize:    tour.Size{Width: 320, Height: 160},
		Dwell:          400 * time.Millisecond,
		PollInterval:   50 * time.Millisecond,
		SnapshotFormat: "png",
	}
}

// StepReport is the captured geometry of one step.
type StepReport struct {
	Index     int            `json:"index"`
	Target    tour.Locator   `json:"target,omitempty"`
	Placement tour.Placement `json:"placement"`
	Found     bool           `json:"found"`
	Rect      *tour.Rect     `json:"rect,omitempty"`
	Cutout    *tour.Rect     `json:"cutout,omitempty"`
	Tooltip   *tour.Rect     `json:"tooltip,omitempty"`
	Centered  bool           `json:"centered"`
	// InViewport is true when the whole target is visible.
	InViewport bool   `json:"in_viewport"`
	Snapshot   string `json:"snapshot,omitempty"`
}

// Report is the outcome of one audited tour.
type Report struct {
	URL       string         `json:"url,omitempty"`
	TourID    string         `json:"tour_id"`
	Viewport  tour.Size      `json:"viewport"`
	Steps     []StepReport   `json:"steps"`
	Missing   []tour.Locator `json:"missing,omitempty"`
	Completed bool           `json:"completed"`
	ElapsedMS int64          `json:"elapsed_ms"`
}

// OK reports whether the tour completed with every target found.
func (r *Report) OK() bool {
	return r.Completed && len(r.Missing) == 0
}

// WriteReport writes r as indented JSON.
func WriteReport(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Audit opens url in a fresh browser and walks t on it.
func Audit(ctx context.Context, cfg Config, url string, t tour.Tour, opts AuditOptions) (*Report, error) {
	allocCtx, cancelAlloc := NewAllocator(ctx, cfg)
	defer cancelAlloc()
	tabCtx, cancelTab := NewTab(allocCtx)
	defer cancelTab()

	page, err := NewPage(tabCtx, cfg)
	if err != nil {
		return nil, err
	}
	page.SetSmoothScroll(false)
	if err := page.Navigate(url); err != nil {
		return nil, err
	}

	loop := tour.NewEventLoop()
	loopCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() { _ = loop.Run(loopCtx) }()
	go page.Watch(loopCtx, loop, opts.PollInterval)

	report, err := RunTour(loopCtx, loop, page, t, opts)
	if err != nil {
		return nil, err
	}
	report.URL = url
	return report, nil
}

// RunTour walks t on provider, capturing every step once it has settled, and
// returns when the tour ends. loop must already be running; the provider is
// only touched from it.
func RunTour(ctx context.Context, loop *tour.EventLoop, provider tour.TargetLocatorProvider, t tour.Tour, opts AuditOptions) (*Report, error) {
	if len(t.Steps) == 0 {
		return nil, tour.ErrNoSteps
	}
	began := time.Now()
	report := &Report{TourID: t.ID}
	done := make(chan struct{})
	started := make(chan error, 1)

	loop.Post(func() {
		engine := tour.NewEngine(provider, loop, opts.Tour)
		missing := make(map[tour.Locator]bool)
		lastIndex := -1
		cancelCapture := func() {}
		finished := false
		finish := func() {
			if finished {
				return
			}
			finished = true
			cancelCapture()
			close(done)
		}

		capture := func() {
			f := engine.Frame()
			sr := stepReport(f, engine.TooltipSize())
			if opts.SnapshotDir != "" {
				sr.Snapshot = saveStepSnapshot(t.ID, f, engine.TooltipSize(), opts)
			}
			report.Viewport = f.Viewport
			report.Steps = append(report.Steps, sr)
			engine.Next()
		}

		engine.SetHooks(tour.EngineHooks{
			OnRender: func(f tour.Frame) {
				if !f.Open || f.Index == lastIndex {
					return
				}
				lastIndex = f.Index
				cancelCapture()
				cancelCapture = loop.AfterFunc(opts.Tour.SettleDelay+opts.Dwell, capture)
			},
			OnComplete: func(string) {
				report.Completed = true
				finish()
			},
			OnClose: func(_ string, reason tour.EndReason) {
				debug.Log("audit: tour %q closed early (%s)", t.ID, reason)
				finish()
			},
			OnTargetMissing: func(_ string, loc tour.Locator) {
				if !missing[loc] {
					missing[loc] = true
					report.Missing = append(report.Missing, loc)
				}
			},
		})
		engine.SetTooltipSize(opts.TooltipSize)
		started <- engine.Start(t)
	})

	select {
	case err := <-started:
		if err != nil {
			return nil, err
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case <-done:
		report.ElapsedMS = time.Since(began).Milliseconds()
		return report, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("auditing tour %q: %w", t.ID, ctx.Err())
	}
}

func stepReport(f tour.Frame, tip tour.Size) StepReport {
	sr := StepReport{
		Index:     f.Index,
		Target:    f.Step.Locator,
		Placement: f.Step.EffectivePlacement(),
		Centered:  f.Centered,
	}
	if f.Target != nil {
		target := *f.Target
		cut := f.Overlay.Cutout
		sr.Found = true
		sr.Rect = &target
		sr.Cutout = &cut
		sr.InViewport = target.Top >= 0 && target.Left >= 0 &&
			target.Bottom() <= f.Viewport.Height && target.Right() <= f.Viewport.Width
	}
	if f.Tooltip != nil {
		box := f.Tooltip.Box(tip)
		sr.Tooltip = &box
	}
	return sr
}

func saveStepSnapshot(tourID string, f tour.Frame, tip tour.Size, opts AuditOptions) string {
	format := opts.SnapshotFormat
	if format == "" {
		format = "png"
	}
	path := filepath.Join(opts.SnapshotDir, fmt.Sprintf("%s-%02d.%s", tourID, f.Index+1, format))
	var elements []export.Element
	if f.Target != nil {
		elements = append(elements, export.Element{Locator: f.Step.Locator, Rect: *f.Target})
	}
	err := export.SaveSnapshot(export.SnapshotOptions{
		Path:        path,
		Format:      format,
		Frame:       f,
		Elements:    elements,
		TooltipSize: tip,
		ScaleX:      1,
		ScaleY:      1,
	})
	if err != nil {
		debug.Warn("audit: snapshot %s: %v", path, err)
		return ""
	}
	return path
}
