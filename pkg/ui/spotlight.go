package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/spotlight/pkg/metrics"
	"github.com/vanderheijden86/spotlight/pkg/tour"
)

const (
	maxTooltipWidth = 52
	minTooltipWidth = 24
	scrollFrame     = 16 * time.Millisecond
)

// TourStartedMsg is sent when a tour opens.
type TourStartedMsg struct{ TourID string }

// TourCompletedMsg is sent when a tour finishes by walking past its last step.
type TourCompletedMsg struct{ TourID string }

// TourClosedMsg is sent when a tour ends any other way.
type TourClosedMsg struct {
	TourID string
	Reason tour.EndReason
}

// TargetMissingMsg is sent when a step's locator matched nothing on screen.
type TargetMissingMsg struct {
	TourID  string
	Locator tour.Locator
}

type scrollTickMsg struct{ owner *SpotlightModel }

// SpotlightModel renders a running tour over the host's screen: the dimmed
// mask with its cut-out, the highlight ring, and the step tooltip. It owns the
// tour engine and drives it from Bubble Tea messages.
//
// Unlike most models in this package it is used through a pointer, because
// the engine calls back into it.
type SpotlightModel struct {
	engine *tour.Engine
	sched  *TeaScheduler
	layout *LayoutRegistry
	theme  Theme
	md     *MarkdownRenderer

	frame   tour.Frame
	box     string
	boxKey  string
	boxRect tour.Rect

	outbox        []tea.Msg
	scrollTicking bool
}

// NewSpotlightModel wires an engine to layout. opts are in cells.
func NewSpotlightModel(layout *LayoutRegistry, theme Theme, md *MarkdownRenderer, opts tour.Options) *SpotlightModel {
	m := &SpotlightModel{
		sched:  NewTeaScheduler(),
		layout: layout,
		theme:  theme,
		md:     md,
	}
	m.engine = tour.NewEngine(layout, m.sched, opts)
	m.engine.SetHooks(tour.EngineHooks{
		OnRender: m.onRender,
		OnComplete: func(id string) {
			m.outbox = append(m.outbox, TourCompletedMsg{TourID: id})
		},
		OnClose: func(id string, reason tour.EndReason) {
			m.outbox = append(m.outbox, TourClosedMsg{TourID: id, Reason: reason})
		},
		OnTargetMissing: func(id string, loc tour.Locator) {
			m.outbox = append(m.outbox, TargetMissingMsg{TourID: id, Locator: loc})
		},
	})
	return m
}

// Start opens t, replacing any running tour.
func (m *SpotlightModel) Start(t tour.Tour) (tea.Cmd, error) {
	if err := m.engine.Start(t); err != nil {
		return nil, err
	}
	m.outbox = append(m.outbox, TourStartedMsg{TourID: t.ID})
	return m.Flush(), nil
}

// Close ends the running tour, if any.
func (m *SpotlightModel) Close() tea.Cmd {
	m.engine.Close()
	return m.Flush()
}

// Open reports whether a tour is showing.
func (m *SpotlightModel) Open() bool { return m.engine.Open() }

// Frame returns the last rendered frame.
func (m *SpotlightModel) Frame() tour.Frame { return m.frame }

// Engine exposes the underlying engine.
func (m *SpotlightModel) Engine() *tour.Engine { return m.engine }

// Scheduler exposes the timer scheduler, mainly for tests.
func (m *SpotlightModel) Scheduler() *TeaScheduler { return m.sched }

// Flush returns pending timers, scroll frames and notifications as one
// command. Hosts call it after changing the layout registry themselves
// (for example after the user scrolled the page).
func (m *SpotlightModel) Flush() tea.Cmd {
	var cmds []tea.Cmd
	if c := m.sched.Cmd(); c != nil {
		cmds = append(cmds, c)
	}
	if m.layout.Scrolling() && !m.scrollTicking {
		m.scrollTicking = true
		cmds = append(cmds, tea.Tick(scrollFrame, func(time.Time) tea.Msg {
			return scrollTickMsg{owner: m}
		}))
	}
	for _, msg := range m.outbox {
		cmds = append(cmds, func() tea.Msg { return msg })
	}
	m.outbox = nil
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Update handles tour input. handled is false for messages the host should
// also process; while a tour is open every key except ctrl+c is consumed.
func (m *SpotlightModel) Update(msg tea.Msg) (handled bool, cmd tea.Cmd) {
	switch msg := msg.(type) {
	case timerFiredMsg:
		if !m.sched.Update(msg) {
			return false, nil
		}
		return true, m.Flush()

	case scrollTickMsg:
		if msg.owner != m {
			return false, nil
		}
		m.scrollTicking = false
		m.layout.StepScroll()
		return true, m.Flush()

	case tea.WindowSizeMsg:
		m.layout.SetSize(msg.Width, msg.Height)
		if m.engine.Open() {
			m.boxKey = ""
			m.engine.Relayout()
		}
		return false, m.Flush()

	case tea.KeyMsg:
		if !m.engine.Open() {
			return false, nil
		}
		switch msg.String() {
		case "ctrl+c":
			return false, nil
		case "right", "n", "l", "enter", " ":
			m.engine.Next()
		case "left", "p", "h":
			m.engine.Back()
		case "esc", "s":
			m.engine.Skip()
		case "q":
			m.engine.Close()
		}
		return true, m.Flush()

	case tea.MouseMsg:
		if !m.engine.Open() {
			return false, nil
		}
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m.frame.Overlay.Dimmed(float64(msg.Y), float64(msg.X)), nil
		}
		y, x := float64(msg.Y), float64(msg.X)
		switch {
		case m.boxRect.Contains(y, x):
			return true, nil
		case m.frame.Overlay.Dimmed(y, x):
			m.engine.DismissOverlay()
			return true, m.Flush()
		default:
			// Inside the cut-out: the highlighted element stays interactive.
			return false, nil
		}
	}
	return false, nil
}

func (m *SpotlightModel) onRender(f tour.Frame) {
	m.frame = f
	if !f.Open {
		m.box, m.boxKey, m.boxRect = "", "", tour.Rect{}
		return
	}
	key := fmt.Sprintf("%s/%d/%d", f.TourID, f.Index, int(f.Viewport.Width))
	if key == m.boxKey {
		return
	}
	m.boxKey = key
	m.box = m.renderTooltip(f)
	// Nested render: the engine re-renders with the measured size and
	// replaces m.frame.
	m.engine.SetTooltipSize(tour.Size{
		Width:  float64(lipgloss.Width(m.box)),
		Height: float64(lipgloss.Height(m.box)),
	})
}

// MeasureTooltip renders the tooltip for f and returns its size in cells,
// for hosts driving an engine of their own.
func (m *SpotlightModel) MeasureTooltip(f tour.Frame) tour.Size {
	box := m.renderTooltip(f)
	return tour.Size{Width: float64(lipgloss.Width(box)), Height: float64(lipgloss.Height(box))}
}

func (m *SpotlightModel) tooltipWidth(viewport float64) int {
	w := int(viewport) - 4
	return clampInt(w, minTooltipWidth, maxTooltipWidth)
}

func (m *SpotlightModel) renderTooltip(f tour.Frame) string {
	defer metrics.Timer(metrics.TooltipLayout)()

	t := m.theme
	outer := m.tooltipWidth(f.Viewport.Width)
	inner := outer - 4 // border and horizontal padding

	var b strings.Builder
	if f.Step.Title != "" {
		b.WriteString(t.TooltipTitle.Render(truncate(f.Step.Title, inner)))
		b.WriteString("\n")
	}
	if f.Step.Content != "" {
		b.WriteString(m.md.Render(f.Step.Content, inner))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(t.StepCounter.Render(fmt.Sprintf("%d of %d", f.Index+1, f.Total)))
	b.WriteString("  ")
	b.WriteString(m.keyHints(f))

	return t.Tooltip.Width(inner + 2).Render(b.String())
}

func (m *SpotlightModel) keyHints(f tour.Frame) string {
	t := m.theme
	hint := func(key, label string) string {
		return t.KeyHintKey.Render(key) + " " + t.KeyHint.Render(label)
	}
	var parts []string
	if f.Index > 0 {
		parts = append(parts, hint("←", "back"))
	}
	if f.Index == f.Total-1 {
		parts = append(parts, hint("⏎", "finish"))
	} else {
		parts = append(parts, hint("→", "next"))
	}
	parts = append(parts, hint("esc", "skip"))
	return strings.Join(parts, t.KeyHint.Render(" · "))
}

// View paints the tour over screen, which must be the host's full-screen
// render. It returns screen unchanged when no tour is open.
func (m *SpotlightModel) View(screen string) string {
	f := m.frame
	if !f.Open {
		return screen
	}
	width, height := int(f.Viewport.Width), int(f.Viewport.Height)
	if width <= 0 || height <= 0 {
		return screen
	}

	lines := ComposeOverlay(screen, f.Overlay, width, height, m.theme)
	if f.Target != nil && !f.Overlay.Full {
		DrawRing(lines, f.Overlay.Cutout, width, m.theme)
	}

	m.boxRect = tour.Rect{}
	if !f.Settling && m.box != "" {
		bw, bh := lipgloss.Width(m.box), lipgloss.Height(m.box)
		var top, left int
		switch {
		case f.Centered:
			top, left = (height-bh)/2, (width-bw)/2
		case f.Tooltip != nil:
			r := f.Tooltip.Box(tour.Size{Width: float64(bw), Height: float64(bh)})
			top, left = int(math.Round(r.Top)), int(math.Round(r.Left))
		default:
			return strings.Join(lines, "\n")
		}
		PlaceBlock(lines, m.box, top, left, width)
		m.boxRect = tour.Rect{Top: float64(top), Left: float64(left), Width: float64(bw), Height: float64(bh)}
	}
	return strings.Join(lines, "\n")
}
