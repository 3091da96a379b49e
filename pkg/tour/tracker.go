package tour

import (
	"time"

	"github.com/vanderheijden86/spotlight/pkg/debug"
	"github.com/vanderheijden86/spotlight/pkg/metrics"
)

// TrackerOptions controls when the tracker resolves its target.
type TrackerOptions struct {
	// SettleDelay is the pause before the first resolution, so a freshly
	// mounted page can finish its first layout.
	SettleDelay time.Duration
	// FrameInterval coalesces bursts of layout events into one recompute.
	FrameInterval time.Duration
}

// RectFunc receives every recomputed rect. rect is nil when the target is not
// found. first is true for the resolution that ends the settle delay.
type RectFunc func(rect *Rect, first bool)

// Tracker follows one locator across layout changes. It is not safe for
// concurrent use; everything runs on the scheduler's goroutine.
type Tracker struct {
	provider TargetLocatorProvider
	sched    Scheduler
	opts     TrackerOptions
	onRect   RectFunc
	onMiss   func(Locator)

	locator Locator
	active  bool
	settled bool
	missing bool

	unsubscribe  func()
	cancelSettle func()
	cancelFrame  func()

	recomputes int
}

// NewTracker creates an idle tracker.
func NewTracker(provider TargetLocatorProvider, sched Scheduler, opts TrackerOptions, onRect RectFunc) *Tracker {
	return &Tracker{
		provider: provider,
		sched:    sched,
		opts:     opts,
		onRect:   onRect,
	}
}

// OnMiss registers a callback for targets that cannot be resolved. It fires
// once each time a target goes from found (or unknown) to missing.
func (t *Tracker) OnMiss(fn func(Locator)) {
	t.onMiss = fn
}

// Track tears down any previous target and starts following loc. The first
// resolution happens after the settle delay.
func (t *Tracker) Track(loc Locator) {
	t.Stop()

	t.locator = loc
	t.active = true
	t.unsubscribe = t.provider.Subscribe(t.handleLayout)
	t.cancelSettle = t.sched.AfterFunc(t.opts.SettleDelay, t.settle)
}

// Stop detaches layout listeners and cancels pending timers. It is safe to
// call on an idle tracker.
func (t *Tracker) Stop() {
	if t.unsubscribe != nil {
		t.unsubscribe()
		t.unsubscribe = nil
	}
	if t.cancelSettle != nil {
		t.cancelSettle()
		t.cancelSettle = nil
	}
	if t.cancelFrame != nil {
		t.cancelFrame()
		t.cancelFrame = nil
	}
	t.active = false
	t.settled = false
	t.missing = false
}

// Active reports whether the tracker is following a target.
func (t *Tracker) Active() bool { return t.active }

// Settled reports whether the settle delay has elapsed for the current target.
func (t *Tracker) Settled() bool { return t.settled }

// Listening reports whether layout listeners are attached.
func (t *Tracker) Listening() bool { return t.unsubscribe != nil }

// Recomputes returns how many resolutions the tracker has performed.
func (t *Tracker) Recomputes() int { return t.recomputes }

func (t *Tracker) settle() {
	t.cancelSettle = nil
	if !t.active {
		return
	}
	t.settled = true
	t.recompute(true)
}

// handleLayout runs for every provider event. Events that arrive before the
// target has settled are dropped; the settle resolution reads fresh layout.
func (t *Tracker) handleLayout(ev LayoutEvent) {
	if !t.active || !t.settled || t.cancelFrame != nil {
		return
	}
	t.cancelFrame = t.sched.AfterFunc(t.opts.FrameInterval, func() {
		t.cancelFrame = nil
		if t.active {
			t.recompute(false)
		}
	})
}

func (t *Tracker) recompute(first bool) {
	defer metrics.Timer(metrics.RectRecompute)()
	t.recomputes++

	rect, ok := t.provider.Resolve(t.locator)
	if !ok {
		if !t.missing {
			t.missing = true
			debug.Log("tour target %q not found; rendering unanchored", t.locator)
			if t.onMiss != nil {
				t.onMiss(t.locator)
			}
		}
		t.onRect(nil, first)
		return
	}
	t.missing = false
	t.onRect(&rect, first)
}
