package tour_test

import (
	"testing"
	"time"

	"github.com/vanderheijden86/spotlight/pkg/testutil"
	"github.com/vanderheijden86/spotlight/pkg/tour"
)

type rectCall struct {
	rect  *tour.Rect
	first bool
}

func newTrackerFixture() (*testutil.FakeProvider, *tour.ManualScheduler, *tour.Tracker, *[]rectCall) {
	p := testutil.NewFakeProvider(tour.Size{Width: 800, Height: 600})
	p.Place("#target", tour.Rect{Top: 40, Left: 40, Width: 100, Height: 30})
	s := tour.NewManualScheduler()
	var calls []rectCall
	tr := tour.NewTracker(p, s, tour.TrackerOptions{
		SettleDelay:   50 * time.Millisecond,
		FrameInterval: 10 * time.Millisecond,
	}, func(r *tour.Rect, first bool) {
		calls = append(calls, rectCall{rect: r, first: first})
	})
	return p, s, tr, &calls
}

func TestTrackerFirstResolutionAfterSettle(t *testing.T) {
	p, s, tr, calls := newTrackerFixture()
	tr.Track("#target")

	if !tr.Active() || tr.Settled() || !tr.Listening() {
		t.Fatalf("Expected active, unsettled, listening tracker")
	}
	s.Advance(50 * time.Millisecond)
	if len(*calls) != 1 || !(*calls)[0].first || (*calls)[0].rect == nil {
		t.Fatalf("Expected one first resolution, got %+v", *calls)
	}
	if !tr.Settled() {
		t.Error("Expected tracker to be settled")
	}
	if p.Resolves != 1 {
		t.Errorf("Expected one resolve, got %d", p.Resolves)
	}
}

func TestTrackerIgnoresEventsWhileSettling(t *testing.T) {
	p, s, tr, calls := newTrackerFixture()
	tr.Track("#target")

	p.Scroll(10)
	p.Resize(tour.Size{Width: 700, Height: 500})
	s.Advance(20 * time.Millisecond)
	if len(*calls) != 0 {
		t.Errorf("Expected no resolution during settle, got %d", len(*calls))
	}

	s.Advance(30 * time.Millisecond)
	if len(*calls) != 1 {
		t.Fatalf("Expected the settle resolution only, got %d", len(*calls))
	}
	// Settle reads fresh layout, including the scroll that happened meanwhile.
	if got := (*calls)[0].rect.Top; got != 30 {
		t.Errorf("Expected top 30 after the 10 unit scroll, got %v", got)
	}
}

func TestTrackerCoalescesPerFrame(t *testing.T) {
	p, s, tr, calls := newTrackerFixture()
	tr.Track("#target")
	s.Advance(50 * time.Millisecond)

	for i := 0; i < 5; i++ {
		p.Scroll(1)
	}
	s.Advance(10 * time.Millisecond)
	p.Scroll(1)
	s.Advance(10 * time.Millisecond)

	if tr.Recomputes() != 3 {
		t.Errorf("Expected 3 recomputes (settle + 2 frames), got %d", tr.Recomputes())
	}
	for _, c := range (*calls)[1:] {
		if c.first {
			t.Error("Expected only the settle resolution to be marked first")
		}
	}
}

func TestTrackerStopDetaches(t *testing.T) {
	p, s, tr, calls := newTrackerFixture()
	tr.Track("#target")
	s.Advance(50 * time.Millisecond)
	p.Resize(tour.Size{Width: 400, Height: 400})

	tr.Stop()
	testutil.AssertListeners(t, p, 0)
	if s.Pending() != 0 {
		t.Errorf("Expected no pending timers, got %d", s.Pending())
	}

	before := len(*calls)
	p.Resize(tour.Size{Width: 300, Height: 300})
	s.Advance(time.Second)
	if len(*calls) != before {
		t.Errorf("Expected no recompute after stop, got %d more", len(*calls)-before)
	}

	// Stop is idempotent.
	tr.Stop()
	if tr.Active() || tr.Listening() {
		t.Error("Expected idle tracker")
	}
}

func TestTrackerRetrackReplacesSubscription(t *testing.T) {
	p, s, tr, _ := newTrackerFixture()
	tr.Track("#target")
	tr.Track("#target")
	tr.Track("#other")

	testutil.AssertListeners(t, p, 1)
	if s.Pending() != 1 {
		t.Errorf("Expected a single settle timer, got %d", s.Pending())
	}
}

func TestTrackerMissReportedOncePerTransition(t *testing.T) {
	p, s, tr, calls := newTrackerFixture()
	var misses int
	tr.OnMiss(func(tour.Locator) { misses++ })
	tr.Track("#missing")
	s.Advance(50 * time.Millisecond)

	p.Scroll(1)
	s.Advance(10 * time.Millisecond)
	p.Scroll(1)
	s.Advance(10 * time.Millisecond)
	if misses != 1 {
		t.Errorf("Expected one miss, got %d", misses)
	}
	for _, c := range *calls {
		if c.rect != nil {
			t.Error("Expected nil rect for missing target")
		}
	}

	p.Place("#missing", tour.Rect{Top: 10, Left: 10, Width: 10, Height: 10})
	p.Scroll(1)
	s.Advance(10 * time.Millisecond)
	p.Remove("#missing")
	p.Scroll(1)
	s.Advance(10 * time.Millisecond)
	if misses != 2 {
		t.Errorf("Expected a second miss after the target vanished again, got %d", misses)
	}
}

func TestTrackerFirstMatchWins(t *testing.T) {
	p, s, tr, calls := newTrackerFixture()
	p.Place("#target", tour.Rect{Top: 500, Left: 500, Width: 10, Height: 10})
	tr.Track("#target")
	s.Advance(50 * time.Millisecond)

	if got := (*calls)[0].rect; got == nil || got.Top != 40 {
		t.Errorf("Expected the first placed element, got %v", got)
	}
}
