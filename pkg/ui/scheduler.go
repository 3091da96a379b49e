package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// timerFiredMsg is delivered when a TeaScheduler timer elapses.
type timerFiredMsg struct {
	owner *TeaScheduler
	id    int
}

// TeaScheduler implements tour.Scheduler on top of Bubble Tea's event loop.
// AfterFunc queues a tea.Tick; the host drains queued commands with Cmd
// after each update and routes timer messages back through Update. A
// cancelled timer's message still arrives but finds nothing to run.
type TeaScheduler struct {
	nextID  int
	pending map[int]func()
	queued  []tea.Cmd
}

// NewTeaScheduler returns an empty scheduler.
func NewTeaScheduler() *TeaScheduler {
	return &TeaScheduler{pending: make(map[int]func())}
}

// AfterFunc implements tour.Scheduler.
func (s *TeaScheduler) AfterFunc(d time.Duration, fn func()) func() {
	s.nextID++
	id := s.nextID
	s.pending[id] = fn
	s.queued = append(s.queued, tea.Tick(d, func(time.Time) tea.Msg {
		return timerFiredMsg{owner: s, id: id}
	}))
	return func() { delete(s.pending, id) }
}

// Cmd returns the ticks queued since the last call, or nil.
func (s *TeaScheduler) Cmd() tea.Cmd {
	if len(s.queued) == 0 {
		return nil
	}
	cmds := s.queued
	s.queued = nil
	return tea.Batch(cmds...)
}

// Update runs the callback for a timer message owned by this scheduler. It
// reports whether msg was one of its timers.
func (s *TeaScheduler) Update(msg tea.Msg) bool {
	fired, ok := msg.(timerFiredMsg)
	if !ok || fired.owner != s {
		return false
	}
	if fn, live := s.pending[fired.id]; live {
		delete(s.pending, fired.id)
		fn()
	}
	return true
}

// Pending returns the number of timers that have neither fired nor been
// cancelled.
func (s *TeaScheduler) Pending() int { return len(s.pending) }
