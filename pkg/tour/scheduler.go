package tour

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Scheduler realizes the engine's waits as deferred callbacks. Callbacks must
// run on the goroutine that owns the engine. The returned cancel functions are
// idempotent and guarantee the callback will not run afterwards.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

// ManualScheduler is a deterministic Scheduler driven by Advance. It is meant
// for tests and for hosts that already own a clock.
type ManualScheduler struct {
	now     time.Duration
	nextID  int
	pending map[int]*manualTimer
}

type manualTimer struct {
	id  int
	due time.Duration
	fn  func()
}

// NewManualScheduler returns a scheduler at time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{pending: make(map[int]*manualTimer)}
}

// AfterFunc schedules fn to run once the clock has advanced by d.
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) func() {
	s.nextID++
	id := s.nextID
	s.pending[id] = &manualTimer{id: id, due: s.now + d, fn: fn}
	return func() { delete(s.pending, id) }
}

// Advance moves the clock forward, firing due timers in deadline order.
// Timers scheduled by a firing callback run in the same call if they fall due.
func (s *ManualScheduler) Advance(d time.Duration) {
	target := s.now + d
	for {
		next := s.earliest(target)
		if next == nil {
			break
		}
		delete(s.pending, next.id)
		s.now = next.due
		next.fn()
	}
	s.now = target
}

func (s *ManualScheduler) earliest(limit time.Duration) *manualTimer {
	var due []*manualTimer
	for _, t := range s.pending {
		if t.due <= limit {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due == due[j].due {
			return due[i].id < due[j].id
		}
		return due[i].due < due[j].due
	})
	return due[0]
}

// Pending returns the number of timers that have not fired or been cancelled.
func (s *ManualScheduler) Pending() int {
	return len(s.pending)
}

// Now returns the scheduler's virtual clock.
func (s *ManualScheduler) Now() time.Duration {
	return s.now
}

// EventLoop is a real-time Scheduler that serializes every callback onto one
// goroutine. Hosts without their own UI loop (the browser audit, for one) run
// the engine inside it.
type EventLoop struct {
	tasks chan func()
	done  chan struct{}

	mu     sync.Mutex
	nextID int
	live   map[int]*time.Timer
	once   sync.Once
}

// NewEventLoop creates a loop with a small task buffer.
func NewEventLoop() *EventLoop {
	return &EventLoop{
		tasks: make(chan func(), 64),
		done:  make(chan struct{}),
		live:  make(map[int]*time.Timer),
	}
}

// Run processes tasks until ctx is cancelled.
func (l *EventLoop) Run(ctx context.Context) error {
	defer l.stopAll()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Post enqueues fn to run on the loop goroutine. It blocks while the buffer is
// full and drops the task once the loop has stopped.
func (l *EventLoop) Post(fn func()) {
	select {
	case l.tasks <- fn:
	case <-l.done:
	}
}

// AfterFunc schedules fn on the loop after d. The returned cancel function
// must be called from the loop goroutine.
func (l *EventLoop) AfterFunc(d time.Duration, fn func()) func() {
	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.mu.Unlock()

	cancelled := false
	timer := time.AfterFunc(d, func() {
		l.Post(func() {
			// Checked on the loop goroutine, so a cancel that ran earlier on
			// the loop always wins.
			if cancelled {
				return
			}
			l.forget(id)
			fn()
		})
	})

	l.mu.Lock()
	l.live[id] = timer
	l.mu.Unlock()

	return func() {
		cancelled = true
		timer.Stop()
		l.forget(id)
	}
}

// Pending returns the number of timers that have not fired or been cancelled.
func (l *EventLoop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.live)
}

func (l *EventLoop) forget(id int) {
	l.mu.Lock()
	delete(l.live, id)
	l.mu.Unlock()
}

func (l *EventLoop) stopAll() {
	l.once.Do(func() { close(l.done) })
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, t := range l.live {
		t.Stop()
		delete(l.live, id)
	}
}
