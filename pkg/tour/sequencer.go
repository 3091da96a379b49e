package tour

import "errors"

// ErrNoSteps is returned when starting a tour without steps.
var ErrNoSteps = errors.New("tour has no steps")

// EndReason says why a run ended.
type EndReason int

const (
	EndCompleted EndReason = iota // next() past the last step
	EndSkipped                    // user pressed skip
	EndDismissed                  // click on the dimmed mask
	EndClosed                     // explicit close or host teardown
)

func (r EndReason) String() string {
	switch r {
	case EndCompleted:
		return "completed"
	case EndSkipped:
		return "skipped"
	case EndDismissed:
		return "dismissed"
	case EndClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Hooks are the notifications a Sequencer fires. Any of them may be nil.
type Hooks struct {
	// OnStep fires after every transition into Active(index).
	OnStep func(index int)
	// OnComplete fires once when the run finishes by walking past the last step.
	OnComplete func()
	// OnClose fires when the run ends any other way.
	OnClose func(reason EndReason)
	// OnEnd fires before OnComplete or OnClose, for teardown shared by both.
	// A host that starts a new run from OnComplete therefore never has it
	// torn down by the old one.
	OnEnd func(reason EndReason)
}

// Sequencer is the tour state machine: Closed, or Active(i) for i in [0, N).
// Only its transition methods change the current index.
type Sequencer struct {
	steps []Step
	index int
	open  bool
	hooks Hooks
}

// NewSequencer returns a closed sequencer over steps.
func NewSequencer(steps []Step, hooks Hooks) *Sequencer {
	return &Sequencer{steps: steps, hooks: hooks}
}

// Start moves Closed -> Active(0). Starting an open run restarts it.
func (s *Sequencer) Start() error {
	if len(s.steps) == 0 {
		return ErrNoSteps
	}
	s.open = true
	s.index = 0
	s.fireStep()
	return nil
}

// Next advances, or completes the run when already on the last step.
func (s *Sequencer) Next() {
	if !s.open {
		return
	}
	if s.index+1 < len(s.steps) {
		s.index++
		s.fireStep()
		return
	}
	s.end(EndCompleted)
}

// Back retreats one step. It is a no-op on the first step.
func (s *Sequencer) Back() {
	if !s.open || s.index == 0 {
		return
	}
	s.index--
	s.fireStep()
}

// Skip closes the run without completing it.
func (s *Sequencer) Skip() { s.end(EndSkipped) }

// Dismiss closes the run after a click on the mask, unless the current step
// locks the overlay. It reports whether the run closed.
func (s *Sequencer) Dismiss() bool {
	if !s.open || s.steps[s.index].LockOverlayDismiss {
		return false
	}
	s.end(EndDismissed)
	return true
}

// Close ends the run without completing it.
func (s *Sequencer) Close() { s.end(EndClosed) }

func (s *Sequencer) end(reason EndReason) {
	if !s.open {
		return
	}
	s.open = false
	if s.hooks.OnEnd != nil {
		s.hooks.OnEnd(reason)
	}
	if reason == EndCompleted {
		if s.hooks.OnComplete != nil {
			s.hooks.OnComplete()
		}
	} else if s.hooks.OnClose != nil {
		s.hooks.OnClose(reason)
	}
}

func (s *Sequencer) fireStep() {
	if s.hooks.OnStep != nil {
		s.hooks.OnStep(s.index)
	}
}

// Open reports whether the run is active.
func (s *Sequencer) Open() bool { return s.open }

// Index returns the current step index. It is meaningless while closed.
func (s *Sequencer) Index() int { return s.index }

// Len returns the number of steps.
func (s *Sequencer) Len() int { return len(s.steps) }

// Current returns the active step.
func (s *Sequencer) Current() (Step, bool) {
	if !s.open {
		return Step{}, false
	}
	return s.steps[s.index], true
}

// IsFirst reports whether the active step is the first one.
func (s *Sequencer) IsFirst() bool { return s.open && s.index == 0 }

// IsLast reports whether the active step is the last one.
func (s *Sequencer) IsLast() bool { return s.open && s.index == len(s.steps)-1 }
