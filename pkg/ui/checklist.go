package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/spotlight/pkg/tour"
)

// ChecklistSelectedMsg is sent when the user opens a checklist item. The host
// navigates to Item.Route and starts Item.TourID there.
type ChecklistSelectedMsg struct {
	Item tour.ChecklistItem
}

// ChecklistDismissedMsg is sent when the user hides onboarding.
type ChecklistDismissedMsg struct{}

// ChecklistItem adapts tour.ChecklistItem to the bubbles list.
type ChecklistItem struct {
	Item tour.ChecklistItem
}

func (i ChecklistItem) FilterValue() string { return i.Item.Title }

// ChecklistDelegate renders one checklist row.
type ChecklistDelegate struct {
	Theme Theme
}

func (d ChecklistDelegate) Height() int  { return 1 }
func (d ChecklistDelegate) Spacing() int { return 0 }

func (d ChecklistDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d ChecklistDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(ChecklistItem)
	if !ok {
		return
	}
	width := m.Width()
	if width <= 0 {
		width = 40
	}

	pointer := " "
	if index == m.Index() {
		pointer = d.Theme.KeyHintKey.Render(IconPointer)
	}
	icon, style := IconTodo, d.Theme.ChecklistTodo
	if i.Item.Completed {
		icon, style = IconDone, d.Theme.ChecklistDone
	}
	title := truncate(i.Item.Title, width-5)
	fmt.Fprintf(w, "%s %s %s", pointer, style.Render(icon), style.Render(title))
}

// ChecklistModel is the persistent onboarding checklist for one role.
type ChecklistModel struct {
	role   string
	items  []tour.ChecklistItem
	list   list.Model
	theme  Theme
	width  int
	status string
}

// NewChecklistModel builds a checklist. items carry their completion flags.
func NewChecklistModel(role string, items []tour.ChecklistItem, theme Theme) ChecklistModel {
	l := list.New(toListItems(items), ChecklistDelegate{Theme: theme}, 32, len(items))
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.NoItems = lipgloss.NewStyle()

	return ChecklistModel{role: role, items: items, list: l, theme: theme, width: 32}
}

func toListItems(items []tour.ChecklistItem) []list.Item {
	out := make([]list.Item, len(items))
	for i, item := range items {
		out[i] = ChecklistItem{Item: item}
	}
	return out
}

// SetItems refreshes completion flags, keeping the cursor.
func (m *ChecklistModel) SetItems(items []tour.ChecklistItem) {
	m.items = items
	m.list.SetItems(toListItems(items))
	m.list.SetHeight(len(items))
}

// SetWidth sets the panel width in cells.
func (m *ChecklistModel) SetWidth(w int) {
	m.width = w
	m.list.SetWidth(w)
}

// Role returns the role the checklist belongs to.
func (m ChecklistModel) Role() string { return m.role }

// Items returns the items with their completion flags.
func (m ChecklistModel) Items() []tour.ChecklistItem { return m.items }

// Remaining counts incomplete items.
func (m ChecklistModel) Remaining() int {
	n := 0
	for _, item := range m.items {
		if !item.Completed {
			n++
		}
	}
	return n
}

// Done reports whether every item is complete.
func (m ChecklistModel) Done() bool { return m.Remaining() == 0 }

// Selected returns the item under the cursor.
func (m ChecklistModel) Selected() (tour.ChecklistItem, bool) {
	i, ok := m.list.SelectedItem().(ChecklistItem)
	return i.Item, ok
}

// Link returns the shareable route for item: its destination with the tour
// parameter that starts the item's tour there.
func Link(item tour.ChecklistItem) string {
	return tour.WithTourParam(item.Route, item.TourID)
}

// Update handles checklist keys.
func (m ChecklistModel) Update(msg tea.Msg) (ChecklistModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "enter":
		item, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg { return ChecklistSelectedMsg{Item: item} }
	case "y":
		item, ok := m.Selected()
		if !ok {
			return m, nil
		}
		if err := clipboard.WriteAll(Link(item)); err != nil {
			m.status = "Clipboard unavailable"
		} else {
			m.status = "Copied " + Link(item)
		}
		return m, nil
	case "x":
		return m, func() tea.Msg { return ChecklistDismissedMsg{} }
	}
	m.status = ""
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// Status returns the last transient status line.
func (m ChecklistModel) Status() string { return m.status }

// View renders the panel: a header with progress, then the items.
func (m ChecklistModel) View() string {
	t := m.theme
	total := len(m.items)
	done := total - m.Remaining()

	var b strings.Builder
	b.WriteString(t.TooltipTitle.Render("Getting started"))
	b.WriteString(" ")
	b.WriteString(t.StepCounter.Render(fmt.Sprintf("%d/%d", done, total)))
	b.WriteString("\n")
	b.WriteString(progressBar(done, total, m.width-2, t))
	b.WriteString("\n")
	b.WriteString(m.list.View())
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(t.KeyHint.Render(truncate(m.status, m.width)))
	}
	return b.String()
}

func progressBar(done, total, width int, t Theme) string {
	if width < 4 || total == 0 {
		return ""
	}
	filled := done * width / total
	return t.Ring.Render(strings.Repeat("━", filled)) + t.StepCounter.Render(strings.Repeat("─", width-filled))
}
