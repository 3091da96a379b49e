package demo

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/spotlight/pkg/tour"
	"github.com/vanderheijden86/spotlight/pkg/ui"
)

const (
	RoleClient = "client"
	RoleCoach  = "coach"

	pageIndent = 1
	maxCard    = 64
)

// Anchor is a tour-addressable element on a page, in content coordinates.
type Anchor struct {
	Locator tour.Locator
	Rect    tour.Rect
}

// content accumulates a page's lines and the anchors placed on them.
type content struct {
	lines   []string
	anchors []Anchor
}

func (c *content) text(s string) {
	pad := strings.Repeat(" ", pageIndent)
	for _, line := range strings.Split(s, "\n") {
		c.lines = append(c.lines, pad+line)
	}
}

func (c *content) blank() {
	c.lines = append(c.lines, "")
}

// element adds block and registers loc over its bounds.
func (c *content) element(loc tour.Locator, block string) {
	c.anchors = append(c.anchors, Anchor{
		Locator: loc,
		Rect: tour.Rect{
			Top:    float64(len(c.lines)),
			Left:   pageIndent,
			Width:  float64(lipgloss.Width(block)),
			Height: float64(lipgloss.Height(block)),
		},
	})
	c.text(block)
}

// Coach is a bookable coach in the directory.
type Coach struct {
	Name   string
	Focus  string
	Rate   int
	Rating float64
}

var coaches = []Coach{
	{"Amara Okafor", "Career transitions", 90, 4.9},
	{"Ben Lindqvist", "Engineering leadership", 120, 4.8},
	{"Chloé Martin", "Public speaking", 75, 4.7},
	{"Dev Raman", "Founder coaching", 150, 4.9},
	{"Elena Sousa", "Burnout recovery", 80, 4.6},
	{"Farid Haddad", "Negotiation", 110, 4.8},
	{"Grace Kim", "New managers", 95, 4.7},
	{"Hiro Tanaka", "Product strategy", 130, 4.5},
}

// Booking is a session a client has booked.
type Booking struct {
	Coach string
	Slot  string
}

// Slot is one hour of a coach's week.
type Slot struct {
	Day    string
	Hour   int
	Booked bool
}

func (s Slot) String() string {
	return fmt.Sprintf("%s %02d:00", s.Day, s.Hour)
}

var weekDays = []string{"Mon", "Tue", "Wed", "Thu", "Fri"}

// pageState is everything a page needs to render.
type pageState struct {
	theme    ui.Theme
	role     string
	width    int
	bookings []Booking
	slots    []Slot
	form     string
}

func (s pageState) cardWidth() int {
	w := s.width - 2*pageIndent
	if w > maxCard {
		w = maxCard
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (s pageState) card(body string) string {
	return s.theme.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.theme.Border).
		Padding(0, 1).
		Width(s.cardWidth() - 2).
		Render(body)
}

func (s pageState) heading(h string) string {
	return s.theme.TooltipTitle.Render(h)
}

func (s pageState) muted(m string) string {
	return s.theme.StepCounter.Render(m)
}

func (s pageState) button(label string) string {
	return s.theme.KeyHintKey.Render("[ " + label + " ]")
}

// Page is one screen of the demo app.
type Page struct {
	Route string
	Title string
	// Role limits the page to one role; empty means every role.
	Role string
	// Tab is the nav bar label; pages without one are reached by links.
	Tab    string
	render func(c *content, s pageState)
}

var pages = []Page{
	{Route: "/dashboard", Title: "Dashboard", Role: RoleClient, Tab: "Dashboard", render: renderClientDashboard},
	{Route: "/coaches", Title: "Find a coach", Role: RoleClient, Tab: "Coaches", render: renderCoaches},
	{Route: "/book", Title: "Book a session", Role: RoleClient, render: renderBook},
	{Route: "/coach/dashboard", Title: "Dashboard", Role: RoleCoach, Tab: "Dashboard", render: renderCoachDashboard},
	{Route: "/coach/availability", Title: "Availability", Role: RoleCoach, Tab: "Availability", render: renderAvailability},
	{Route: "/messages", Title: "Messages", Role: RoleCoach, Tab: "Messages", render: renderMessages},
	{Route: "/sessions", Title: "Sessions", Tab: "Sessions", render: renderSessions},
}

// lookupPage finds the page at route for role.
func lookupPage(route, role string) (Page, bool) {
	path := tour.RoutePath(route)
	for _, p := range pages {
		if p.Route == path && (p.Role == "" || p.Role == role) {
			return p, true
		}
	}
	return Page{}, false
}

// navPages lists the pages in role's nav bar, in order.
func navPages(role string) []Page {
	var out []Page
	for _, p := range pages {
		if p.Tab != "" && (p.Role == "" || p.Role == role) {
			out = append(out, p)
		}
	}
	return out
}

// HomeRoute is the landing page for role.
func HomeRoute(role string) string {
	if role == RoleCoach {
		return "/coach/dashboard"
	}
	return "/dashboard"
}

// navLocator is the locator of a page's nav tab, e.g. #nav-coaches.
func navLocator(p Page) tour.Locator {
	return tour.Locator("#nav-" + strings.ToLower(p.Tab))
}

func (p Page) build(s pageState) content {
	var c content
	c.blank()
	c.text(s.theme.Header.Render(p.Title))
	c.blank()
	p.render(&c, s)
	c.blank()
	return c
}

func renderClientDashboard(c *content, s pageState) {
	c.element("#welcome", s.card(s.heading("Good to see you")+"\n"+
		"Coachly pairs you with coaches for focused, one-hour sessions."))
	c.blank()

	var upcoming strings.Builder
	upcoming.WriteString(s.heading("Upcoming sessions"))
	if len(s.bookings) == 0 {
		upcoming.WriteString("\n" + s.muted("No sessions booked yet."))
	}
	for _, b := range s.bookings {
		upcoming.WriteString(fmt.Sprintf("\n%s  %s", b.Slot, b.Coach))
	}
	c.element("#upcoming", s.card(upcoming.String()))
	c.blank()
	c.element("#find-coach", s.button("Find a coach  2"))
	c.blank()

	c.text(s.heading("Recent activity"))
	for _, line := range []string{
		"Profile created",
		"Email address confirmed",
		"Time zone set to Europe/Amsterdam",
		"Notification preferences saved",
		"Payment method added",
		"Invited by a friend",
	} {
		c.text(s.muted("• ") + line)
	}
	c.blank()

	c.element("#goals", s.card(s.heading("Goals")+"\n"+
		"○ Prepare for the team lead interview\n"+
		"○ Speak up in planning meetings\n"+
		"○ Leave work by six twice a week"))
}

func renderCoaches(c *content, s pageState) {
	search := s.theme.Renderer.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(s.theme.Border).
		Width(s.cardWidth() - 2).
		Render(s.muted("⌕ Search coaches or topics…"))
	c.element("#search", search)
	c.element("#filters", s.muted("Filters: ")+"[Any price] [This week] [Rating 4.5+]")
	c.blank()

	for i, coach := range coaches {
		body := fmt.Sprintf("%s  %s\n%s  ·  €%d / session  ·  ★ %.1f",
			s.heading(coach.Name), s.muted(coach.Focus), coach.Focus, coach.Rate, coach.Rating)
		if i == 0 {
			c.element("#coach-card", s.card(body))
		} else {
			c.element(tour.Locator(fmt.Sprintf("#coach-%d", i+1)), s.card(body))
		}
	}
	c.blank()
	c.element("#book-button", s.button("Book a session  b"))
}

func renderBook(c *content, s pageState) {
	form := s.form
	if form == "" {
		form = s.muted("Loading form…")
	}
	c.element("#book-form", form)
	c.blank()
	c.element("#book-help", s.muted("Sessions can be moved or cancelled up to 24 hours before they start."))
}

func renderSessions(c *content, s pageState) {
	var list strings.Builder
	if s.role == RoleCoach {
		list.WriteString(s.heading("This week"))
		n := 0
		for _, slot := range s.slots {
			if slot.Booked {
				list.WriteString("\n● " + slot.String())
				n++
			}
		}
		if n == 0 {
			list.WriteString("\n" + s.muted("Nothing booked yet."))
		}
	} else {
		list.WriteString(s.heading("Your sessions"))
		if len(s.bookings) == 0 {
			list.WriteString("\n" + s.muted("Book a session to see it here."))
		}
		for _, b := range s.bookings {
			list.WriteString(fmt.Sprintf("\n● %s with %s", b.Slot, b.Coach))
		}
	}
	c.element("#session-list", s.card(list.String()))
	c.blank()
	c.element("#join-button", s.button("Join next session"))
	c.blank()
	c.element("#notes", s.card(s.heading("Notes")+"\n"+s.muted("Shared notes appear after your first session.")))
}

func renderCoachDashboard(c *content, s pageState) {
	c.element("#profile", s.card(s.heading("Your profile")+"\n"+
		"Visible to clients  ·  ★ 4.8 from 31 reviews"))
	c.blank()
	c.element("#requests", s.card(s.heading("Requests")+"\n"+
		"Mia J.  wants Tue 11:00\n"+
		"Tom R.  wants Thu 16:00\n"+
		"Sara P. wants Fri 09:00"))
	c.blank()
	c.text(s.heading("Reviews"))
	for _, r := range []string{
		"“Clear and practical, exactly what I needed.”",
		"“Helped me frame the conversation with my manager.”",
		"“Great questions, gentle push.”",
		"“I left with a plan for the quarter.”",
		"“Worth every minute.”",
	} {
		c.text(s.muted("  ") + r)
	}
	c.blank()
	c.element("#earnings", s.card(s.heading("Earnings")+"\n"+
		"This month   €2,340\n"+
		"Pending        €480\n"+
		"Next payout   1st of the month"))
}

func renderAvailability(c *content, s pageState) {
	var grid strings.Builder
	grid.WriteString(s.heading("Week"))
	for _, day := range weekDays {
		grid.WriteString("\n" + day + "  ")
		for _, slot := range s.slots {
			if slot.Day != day {
				continue
			}
			mark := "○"
			if slot.Booked {
				mark = "●"
			}
			grid.WriteString(fmt.Sprintf(" %s %02d", mark, slot.Hour))
		}
	}
	c.element("#calendar", s.card(grid.String()))
	c.blank()
	c.element("#add-slot", s.button("Add a slot  a"))
}

func renderMessages(c *content, s pageState) {
	var inbox strings.Builder
	inbox.WriteString(s.heading("Inbox"))
	for _, m := range []string{
		"Mia J.   Can we move Tuesday?",
		"Tom R.   Thanks for today!",
		"Sara P.  Question about the homework",
		"Liam W.  Invoice for March",
		"Noor A.  First session prep",
		"Owen B.  Running five minutes late",
	} {
		inbox.WriteString("\n" + m)
	}
	c.element("#inbox", s.card(inbox.String()))
	c.blank()
	c.element("#compose", s.card(s.muted("Write a reply…")))
}

// defaultSlots is a coach's starting week.
func defaultSlots() []Slot {
	var slots []Slot
	for i, day := range weekDays {
		for _, h := range []int{9, 14} {
			slots = append(slots, Slot{Day: day, Hour: h, Booked: (i+h)%3 == 0})
		}
	}
	return slots
}

// nextSlot returns the earliest hour not yet open, scanning 9:00-17:00.
func nextSlot(slots []Slot) (Slot, bool) {
	open := make(map[string]bool, len(slots))
	for _, s := range slots {
		open[s.String()] = true
	}
	for h := 9; h <= 17; h++ {
		for _, day := range weekDays {
			s := Slot{Day: day, Hour: h}
			if !open[s.String()] {
				return s, true
			}
		}
	}
	return Slot{}, false
}
