package tour

import (
	"time"

	"github.com/vanderheijden86/spotlight/pkg/debug"
	"github.com/vanderheijden86/spotlight/pkg/metrics"
)

// Options tunes the engine geometry and timing. Units follow the provider:
// pixels for a browser, cells for a terminal.
type Options struct {
	SettleDelay    time.Duration `yaml:"settle_delay"`
	FrameInterval  time.Duration `yaml:"frame_interval"`
	Padding        float64       `yaml:"padding"`         // cut-out padding around the target
	TooltipGap     float64       `yaml:"tooltip_gap"`     // distance between target and tooltip
	ScrollMargin   float64       `yaml:"scroll_margin"`   // space kept above a scrolled-to target
	ViewportMargin float64       `yaml:"viewport_margin"` // tooltip clamp margin
}

// DefaultOptions returns browser-scale defaults.
func DefaultOptions() Options {
	return Options{
		SettleDelay:    500 * time.Millisecond,
		FrameInterval:  16 * time.Millisecond,
		Padding:        8,
		TooltipGap:     20,
		ScrollMargin:   100,
		ViewportMargin: 20,
	}
}

// Tour is a named, ordered list of steps.
type Tour struct {
	ID    string `yaml:"id" json:"id"`
	Role  string `yaml:"role,omitempty" json:"role,omitempty"`
	Route string `yaml:"route,omitempty" json:"route,omitempty"`
	Title string `yaml:"title,omitempty" json:"title,omitempty"`
	Steps []Step `yaml:"steps" json:"steps"`
}

// EngineHooks are the notifications an Engine sends to its host.
type EngineHooks struct {
	// OnRender fires whenever the frame changes.
	OnRender func(Frame)
	// OnComplete fires when a tour finishes by walking past its last step.
	OnComplete func(tourID string)
	// OnClose fires when a tour ends without completing.
	OnClose func(tourID string, reason EndReason)
	// OnTargetMissing fires when a step's locator cannot be resolved.
	OnTargetMissing func(tourID string, loc Locator)
}

// Frame is everything a renderer needs for one paint.
type Frame struct {
	Open     bool   `json:"open"`
	TourID   string `json:"tour_id,omitempty"`
	Index    int    `json:"index"`
	Total    int    `json:"total"`
	Step     Step   `json:"step"`
	Viewport Size   `json:"viewport"`

	// Settling is true between a step change and its first resolution.
	Settling bool `json:"settling"`
	// Target is nil for unanchored steps and targets that were not found.
	Target  *Rect   `json:"target,omitempty"`
	Overlay Overlay `json:"overlay"`
	// Centered means the renderer centres the tooltip on screen.
	Centered bool `json:"centered"`
	// Tooltip is nil when Centered or when the tooltip has not been measured.
	Tooltip *TooltipPosition `json:"tooltip,omitempty"`
}

// Engine drives a tour: it owns the sequencer, tracks the active step's
// target, scrolls it into view, and computes overlay and tooltip geometry.
// Engine is single-threaded; call it only from the scheduler's goroutine.
type Engine struct {
	provider TargetLocatorProvider
	sched    Scheduler
	opts     Options
	hooks    EngineHooks

	tracker  *Tracker
	scroller Scroller
	seq      *Sequencer
	tour     Tour

	rect    *Rect
	tipSize Size
}

// NewEngine wires an engine to a provider and scheduler.
func NewEngine(provider TargetLocatorProvider, sched Scheduler, opts Options) *Engine {
	e := &Engine{
		provider: provider,
		sched:    sched,
		opts:     opts,
		scroller: NewScroller(provider, opts.ScrollMargin),
		seq:      NewSequencer(nil, Hooks{}),
	}
	e.tracker = NewTracker(provider, sched, TrackerOptions{
		SettleDelay:   opts.SettleDelay,
		FrameInterval: opts.FrameInterval,
	}, e.handleRect)
	e.tracker.OnMiss(func(loc Locator) {
		if e.hooks.OnTargetMissing != nil {
			e.hooks.OnTargetMissing(e.tour.ID, loc)
		}
	})
	return e
}

// SetHooks replaces the host notifications.
func (e *Engine) SetHooks(h EngineHooks) {
	e.hooks = h
}

// Start opens t at its first step, closing any running tour first.
func (e *Engine) Start(t Tour) error {
	if len(t.Steps) == 0 {
		return ErrNoSteps
	}
	if e.seq.Open() {
		e.seq.Close()
	}
	debug.Log("tour %q starting with %d steps", t.ID, len(t.Steps))
	e.tour = t
	e.seq = NewSequencer(t.Steps, Hooks{
		OnStep:     e.enterStep,
		OnComplete: e.complete,
		OnClose:    e.closed,
		OnEnd:      e.teardown,
	})
	return e.seq.Start()
}

// Next advances or completes the tour.
func (e *Engine) Next() { e.seq.Next() }

// Back retreats one step; no-op on the first step.
func (e *Engine) Back() { e.seq.Back() }

// Skip ends the tour without completing it.
func (e *Engine) Skip() { e.seq.Skip() }

// Close ends the tour without completing it.
func (e *Engine) Close() { e.seq.Close() }

// DismissOverlay handles a click on the dimmed mask. It reports whether the
// tour closed; locked steps ignore the click.
func (e *Engine) DismissOverlay() bool { return e.seq.Dismiss() }

// Open reports whether a tour is running.
func (e *Engine) Open() bool { return e.seq.Open() }

// TourID returns the id of the running (or last run) tour.
func (e *Engine) TourID() string { return e.tour.ID }

// Index returns the active step index.
func (e *Engine) Index() int { return e.seq.Index() }

// Rect returns the tracked rect of the active step, or nil.
func (e *Engine) Rect() *Rect {
	if e.rect == nil {
		return nil
	}
	r := *e.rect
	return &r
}

// Tracker exposes the tracker for diagnostics.
func (e *Engine) Tracker() *Tracker { return e.tracker }

// SetTooltipSize records the tooltip's measured size. Position computation is
// skipped until a positive size is known.
func (e *Engine) SetTooltipSize(s Size) {
	if s == e.tipSize {
		return
	}
	e.tipSize = s
	if e.seq.Open() {
		e.render()
	}
}

// TooltipSize returns the last measured tooltip size.
func (e *Engine) TooltipSize() Size { return e.tipSize }

// Relayout re-renders with the current rect, for hosts that changed
// something the provider does not report (a theme switch, for one).
func (e *Engine) Relayout() {
	if e.seq.Open() {
		e.render()
	}
}

// Frame computes the current frame from engine state and live viewport size.
func (e *Engine) Frame() Frame {
	defer metrics.Timer(metrics.OverlayCompose)()

	vp := e.provider.Viewport()
	f := Frame{
		Open:     e.seq.Open(),
		TourID:   e.tour.ID,
		Total:    e.seq.Len(),
		Viewport: vp,
	}
	step, ok := e.seq.Current()
	if !ok {
		return f
	}
	f.Index = e.seq.Index()
	f.Step = step

	if step.Anchored() && e.tracker.Active() && !e.tracker.Settled() {
		f.Settling = true
		f.Overlay = FullOverlay(vp)
		return f
	}

	if !step.Anchored() || e.rect == nil {
		f.Centered = true
		f.Overlay = FullOverlay(vp)
		return f
	}

	target := *e.rect
	f.Target = &target
	f.Overlay = Spotlight(target, vp, e.opts.Padding)
	if pos, ok := PositionTooltip(target, step.EffectivePlacement(), e.tipSize, vp, e.opts.TooltipGap, e.opts.ViewportMargin); ok {
		f.Tooltip = &pos
	}
	return f
}

func (e *Engine) enterStep(index int) {
	// Old listeners and timers go first so nothing from the previous step can
	// land after this point.
	e.tracker.Stop()
	e.rect = nil

	step := e.tour.Steps[index]
	debug.Log("tour %q step %d/%d target=%q", e.tour.ID, index+1, len(e.tour.Steps), step.Locator)
	if step.Anchored() {
		e.tracker.Track(step.Locator)
	}
	e.render()
}

func (e *Engine) handleRect(rect *Rect, first bool) {
	e.rect = rect
	if first && rect != nil {
		e.scroller.ScrollTo(*rect)
	}
	e.render()
}

func (e *Engine) complete() {
	debug.Log("tour %q completed", e.tour.ID)
	if e.hooks.OnComplete != nil {
		e.hooks.OnComplete(e.tour.ID)
	}
}

func (e *Engine) closed(reason EndReason) {
	debug.Log("tour %q closed (%s) at step %d", e.tour.ID, reason, e.seq.Index()+1)
	if e.hooks.OnClose != nil {
		e.hooks.OnClose(e.tour.ID, reason)
	}
}

func (e *Engine) teardown(EndReason) {
	e.tracker.Stop()
	e.rect = nil
	e.render()
}

func (e *Engine) render() {
	if e.hooks.OnRender != nil {
		e.hooks.OnRender(e.Frame())
	}
}
