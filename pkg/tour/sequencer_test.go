package tour

import (
	"errors"
	"testing"
)

func threeSteps() []Step {
	return []Step{
		{Locator: "#a", Content: "a"},
		{Locator: "#b", Content: "b"},
		{Locator: "#c", Content: "c", LockOverlayDismiss: true},
	}
}

type hookLog struct {
	steps     []int
	completes int
	closes    []EndReason
	ends      []EndReason
}

func (h *hookLog) hooks() Hooks {
	return Hooks{
		OnStep:     func(i int) { h.steps = append(h.steps, i) },
		OnComplete: func() { h.completes++ },
		OnClose:    func(r EndReason) { h.closes = append(h.closes, r) },
		OnEnd:      func(r EndReason) { h.ends = append(h.ends, r) },
	}
}

func TestSequencerStartsClosed(t *testing.T) {
	s := NewSequencer(threeSteps(), Hooks{})
	if s.Open() {
		t.Error("Expected new sequencer to be closed")
	}
	if _, ok := s.Current(); ok {
		t.Error("Expected no current step while closed")
	}
}

func TestSequencerStartWithoutSteps(t *testing.T) {
	s := NewSequencer(nil, Hooks{})
	if err := s.Start(); !errors.Is(err, ErrNoSteps) {
		t.Errorf("Expected ErrNoSteps, got %v", err)
	}
	if s.Open() {
		t.Error("Expected sequencer to stay closed")
	}
}

func TestSequencerNextCompletesOnce(t *testing.T) {
	var log hookLog
	s := NewSequencer(threeSteps(), log.hooks())
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		s.Next()
	}
	if s.Open() {
		t.Error("Expected sequencer closed after N nexts")
	}
	if log.completes != 1 {
		t.Errorf("Expected 1 completion, got %d", log.completes)
	}
	if len(log.closes) != 0 {
		t.Errorf("Expected no close notifications, got %v", log.closes)
	}

	// Further calls on a closed run do nothing.
	s.Next()
	s.Skip()
	if log.completes != 1 || len(log.closes) != 0 {
		t.Errorf("Expected no notifications after close, got completes=%d closes=%v", log.completes, log.closes)
	}
	if want := []int{0, 1, 2}; !equalInts(log.steps, want) {
		t.Errorf("Expected steps %v, got %v", want, log.steps)
	}
}

func TestSequencerBackAtFirstIsNoop(t *testing.T) {
	var log hookLog
	s := NewSequencer(threeSteps(), log.hooks())
	_ = s.Start()

	s.Back()
	if s.Index() != 0 {
		t.Errorf("Expected index 0, got %d", s.Index())
	}
	if len(log.steps) != 1 {
		t.Errorf("Expected back at 0 to fire no step hook, got %v", log.steps)
	}

	s.Next()
	s.Back()
	if s.Index() != 0 {
		t.Errorf("Expected index 0 after next+back, got %d", s.Index())
	}
}

func TestSequencerSkipAndClose(t *testing.T) {
	tests := []struct {
		name   string
		act    func(*Sequencer)
		reason EndReason
	}{
		{"skip", (*Sequencer).Skip, EndSkipped},
		{"close", (*Sequencer).Close, EndClosed},
		{"dismiss", func(s *Sequencer) { s.Dismiss() }, EndDismissed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var log hookLog
			s := NewSequencer(threeSteps(), log.hooks())
			_ = s.Start()
			tt.act(s)

			if s.Open() {
				t.Error("Expected closed")
			}
			if log.completes != 0 {
				t.Errorf("Expected no completion, got %d", log.completes)
			}
			if len(log.closes) != 1 || log.closes[0] != tt.reason {
				t.Errorf("Expected close reason %v, got %v", tt.reason, log.closes)
			}
			if len(log.ends) != 1 {
				t.Errorf("Expected one end notification, got %v", log.ends)
			}
		})
	}
}

func TestSequencerDismissLocked(t *testing.T) {
	var log hookLog
	s := NewSequencer(threeSteps(), log.hooks())
	_ = s.Start()
	s.Next()
	s.Next() // step c is locked

	if s.Dismiss() {
		t.Error("Expected locked step to ignore dismiss")
	}
	if !s.Open() {
		t.Error("Expected tour to stay open")
	}
	if len(log.closes) != 0 {
		t.Errorf("Expected no close, got %v", log.closes)
	}
}

func TestSequencerRestart(t *testing.T) {
	var log hookLog
	s := NewSequencer(threeSteps(), log.hooks())
	_ = s.Start()
	s.Skip()
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if !s.Open() || s.Index() != 0 {
		t.Errorf("Expected Active(0) after restart, got open=%v index=%d", s.Open(), s.Index())
	}
	if !s.IsFirst() || s.IsLast() {
		t.Error("Expected first, not last")
	}
}

func TestEndReasonString(t *testing.T) {
	if EndDismissed.String() != "dismissed" {
		t.Errorf("Expected dismissed, got %s", EndDismissed)
	}
	if EndReason(99).String() != "unknown" {
		t.Errorf("Expected unknown, got %s", EndReason(99))
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
