package demo

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// bookingSubmittedMsg and bookingCancelledMsg report how the form ended.
type bookingSubmittedMsg struct{}
type bookingCancelledMsg struct{}

var clientSlots = []string{
	"Mon 09:00", "Mon 14:00", "Tue 11:00", "Wed 09:00",
	"Wed 16:00", "Thu 14:00", "Fri 09:00", "Fri 11:00",
}

// bookingForm is the session booking form on /book. Values are bound to
// its fields, so the form must stay behind a pointer.
type bookingForm struct {
	form    *huh.Form
	coach   string
	slot    string
	confirm bool
}

func newBookingForm(width int) *bookingForm {
	b := &bookingForm{confirm: true}

	coachOpts := make([]huh.Option[string], len(coaches))
	for i, c := range coaches {
		coachOpts[i] = huh.NewOption(c.Name+"  ·  "+c.Focus, c.Name)
	}
	slotOpts := make([]huh.Option[string], len(clientSlots))
	for i, s := range clientSlots {
		slotOpts[i] = huh.NewOption(s, s)
	}

	b.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Coach").
				Options(coachOpts...).
				Value(&b.coach),
			huh.NewSelect[string]().
				Title("Time").
				Options(slotOpts...).
				Value(&b.slot),
			huh.NewConfirm().
				Title("Book this session?").
				Affirmative("Book").
				Negative("Cancel").
				Value(&b.confirm),
		),
	).WithTheme(huh.ThemeDracula()).WithWidth(width).WithShowHelp(false)

	b.form.SubmitCmd = func() tea.Msg { return bookingSubmittedMsg{} }
	b.form.CancelCmd = func() tea.Msg { return bookingCancelledMsg{} }
	return b
}

func (b *bookingForm) Init() tea.Cmd {
	return b.form.Init()
}

func (b *bookingForm) Update(msg tea.Msg) tea.Cmd {
	model, cmd := b.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		b.form = f
	}
	return cmd
}

func (b *bookingForm) View() string {
	return b.form.View()
}

// Booking returns the chosen session, or ok=false when the user declined.
func (b *bookingForm) Booking() (Booking, bool) {
	if !b.confirm || b.coach == "" || b.slot == "" {
		return Booking{}, false
	}
	return Booking{Coach: b.coach, Slot: b.slot}, true
}
