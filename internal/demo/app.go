// Package demo is a small coaching marketplace used to show spotlight tours
// in a terminal: client and coach dashboards, a coach directory, a booking
// form and a persistent onboarding checklist that starts tours on the pages
// it links to.
package demo

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/spotlight/pkg/debug"
	"github.com/vanderheijden86/spotlight/pkg/metrics"
	"github.com/vanderheijden86/spotlight/pkg/progress"
	"github.com/vanderheijden86/spotlight/pkg/tour"
	"github.com/vanderheijden86/spotlight/pkg/ui"
	"github.com/vanderheijden86/spotlight/pkg/watcher"
)

const (
	headerRows     = 2
	sidebarWidth   = 34
	minSidebarTerm = 72
	maxFormWidth   = 56
)

// Checklist items completed by doing something rather than by finishing
// their tour.
var actionItems = map[string]bool{
	"book-session":     true,
	"set-availability": true,
}

// FileChangedMsg is sent when tour definition files change on disk.
type FileChangedMsg struct{}

// WatchFileCmd waits for the next definition change.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// Options configures the demo app.
type Options struct {
	Role       string
	StartRoute string // may carry ?tour=<id>
	Catalog    *tour.Catalog
	Store      *progress.Store
	Theme      ui.Theme
	Markdown   *ui.MarkdownRenderer
	Tour       tour.Options

	// Collector, Watcher and Reload are optional.
	Collector *metrics.TourCollector
	Watcher   *watcher.Watcher
	Reload    func() (*tour.Catalog, error)
}

type focus int

const (
	focusContent focus = iota
	focusChecklist
)

type tabHit struct {
	left, right int
	route       string
}

// App is the demo's root Bubble Tea model.
type App struct {
	opts    Options
	role    string
	catalog *tour.Catalog
	pending *tour.Catalog // applied once the running tour ends
	store   *progress.Store
	theme   ui.Theme

	layout        *ui.LayoutRegistry
	spotlight     *ui.SpotlightModel
	checklist     ui.ChecklistModel
	showChecklist bool
	focus         focus
	vp            viewport.Model
	booking       *bookingForm

	page     Page
	tabs     []tabHit
	bookings []Booking
	slots    []Slot

	width, height int
	ready         bool
	status        string
}

// New builds the app on its start route. Auto-start requests in the route
// are recorded now and consumed once the first layout is known.
func New(opts Options) App {
	role := opts.Role
	if role != RoleCoach {
		role = RoleClient
	}
	layout := ui.NewLayoutRegistry()
	a := &App{
		opts:      opts,
		role:      role,
		catalog:   opts.Catalog,
		store:     opts.Store,
		theme:     opts.Theme,
		layout:    layout,
		spotlight: ui.NewSpotlightModel(layout, opts.Theme, opts.Markdown, opts.Tour),
		vp:        viewport.New(80, 20),
		slots:     defaultSlots(),
	}
	items := a.checklistItems()
	a.checklist = ui.NewChecklistModel(role, items, opts.Theme)
	a.checklist.SetWidth(sidebarWidth - 2)
	a.showChecklist = len(items) > 0 && !a.store.Dismissed()

	start := opts.StartRoute
	if start == "" {
		start = HomeRoute(role)
	}
	a.navigate(start)
	return *a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	if a.opts.Watcher != nil {
		return WatchFileCmd(a.opts.Watcher)
	}
	return nil
}

// Update implements tea.Model. Host paths that change the layout registry
// leave tracker timers queued on the spotlight's scheduler; they are flushed
// here so none is left behind.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := a.update(msg)
	if flush := a.spotlight.Flush(); flush != nil {
		cmd = tea.Batch(cmd, flush)
	}
	return m, cmd
}

func (a App) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		_, cmd := a.spotlight.Update(ws)
		a.width, a.height = ws.Width, ws.Height
		first := !a.ready
		a.ready = true
		a.layoutPage()
		if first {
			return a, tea.Batch(cmd, a.mount())
		}
		return a, cmd
	}

	if handled, cmd := a.spotlight.Update(msg); handled {
		return a, cmd
	}

	switch msg := msg.(type) {
	case ui.TourStartedMsg:
		a.focus = focusContent
		if c := a.opts.Collector; c != nil {
			c.Started(msg.TourID)
		}
		return a, nil

	case ui.TourCompletedMsg:
		if c := a.opts.Collector; c != nil {
			c.Completed(msg.TourID)
		}
		a.completeTourItems(msg.TourID)
		a.applyPendingCatalog()
		return a, nil

	case ui.TourClosedMsg:
		if c := a.opts.Collector; c != nil {
			c.Closed(msg.TourID, msg.Reason.String())
		}
		a.applyPendingCatalog()
		return a, nil

	case ui.TargetMissingMsg:
		debug.Log("demo: tour %q target %q not on %s", msg.TourID, msg.Locator, a.page.Route)
		if c := a.opts.Collector; c != nil {
			c.TargetMissing(msg.TourID, string(msg.Locator))
		}
		return a, nil

	case ui.ChecklistSelectedMsg:
		item := msg.Item
		if item.Route == "" {
			item.Route = a.page.Route
		}
		a.focus = focusContent
		return a, a.navigate(ui.Link(item))

	case ui.ChecklistDismissedMsg:
		a.store.Dismiss()
		a.showChecklist = false
		a.focus = focusContent
		a.status = "Checklist hidden"
		a.layoutPage()
		return a, nil

	case FileChangedMsg:
		return a, a.reloadDefinitions()

	case bookingSubmittedMsg:
		return a, a.finishBooking(true)

	case bookingCancelledMsg:
		return a, a.finishBooking(false)

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		return a.handleMouse(msg)
	}

	// Cursor blinks and other form internals.
	if a.booking != nil {
		cmd := a.booking.Update(msg)
		a.layoutPage()
		return a, cmd
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if a.focus == focusChecklist {
		switch key {
		case "tab", "esc":
			a.focus = focusContent
			return a, nil
		case "q":
			return a, tea.Quit
		}
		var cmd tea.Cmd
		a.checklist, cmd = a.checklist.Update(msg)
		return a, cmd
	}

	switch key {
	case "tab":
		if a.sidebarVisible() {
			a.focus = focusChecklist
		}
		return a, nil
	case "?":
		return a, a.startPageTour()
	}
	if n, err := strconv.Atoi(key); err == nil {
		tabs := navPages(a.role)
		if n >= 1 && n <= len(tabs) {
			return a, a.navigate(tabs[n-1].Route)
		}
	}

	if a.booking != nil {
		cmd := a.booking.Update(msg)
		a.layoutPage()
		return a, cmd
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "up", "k":
		a.scroll(-1)
	case "down", "j":
		a.scroll(1)
	case "pgup":
		a.scroll(-a.layout.ContentViewport())
	case "pgdown", " ":
		a.scroll(a.layout.ContentViewport())
	case "home", "g":
		a.layout.SetScrollY(0)
	case "end", "G":
		a.layout.SetScrollY(a.vp.TotalLineCount())
	case "R":
		a.restartOnboarding()
	case "b":
		if a.page.Route == "/coaches" {
			return a, a.navigate("/book")
		}
	case "a":
		if a.page.Route == "/coach/availability" {
			a.addSlot()
		}
	}
	return a, nil
}

func (a App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		a.scroll(-3)
	case msg.Button == tea.MouseButtonWheelDown:
		a.scroll(3)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if msg.Y == headerRows-1 {
			for _, t := range a.tabs {
				if msg.X >= t.left && msg.X < t.right {
					return a, a.navigate(t.route)
				}
			}
		}
		for _, loc := range []tour.Locator{"#find-coach", "#book-button", "#add-slot", "#checklist"} {
			r, ok := a.layout.Resolve(loc)
			if ok && r.Contains(float64(msg.Y), float64(msg.X)) {
				return a.activate(loc)
			}
		}
	}
	return a, nil
}

// activate runs the action behind a clickable element.
func (a App) activate(loc tour.Locator) (tea.Model, tea.Cmd) {
	switch loc {
	case "#find-coach":
		return a, a.navigate("/coaches")
	case "#book-button":
		return a, a.navigate("/book")
	case "#add-slot":
		a.addSlot()
	case "#checklist":
		a.focus = focusChecklist
	}
	return a, nil
}

// navigate switches pages. A ?tour= parameter becomes an auto-start request
// that the destination consumes once when it mounts. A running tour is
// closed first.
func (a *App) navigate(route string) tea.Cmd {
	tourID, cleaned := tour.SplitTourParam(route)
	if tourID != "" {
		a.store.RequestAutoStart(tourID)
	}
	page, ok := lookupPage(cleaned, a.role)
	if !ok {
		a.status = "No page at " + tour.RoutePath(cleaned)
		page, _ = lookupPage(HomeRoute(a.role), a.role)
	}

	var cmds []tea.Cmd
	if a.spotlight.Open() {
		cmds = append(cmds, a.spotlight.Close())
	}
	debug.Log("demo: navigate %s -> %s", a.page.Route, page.Route)
	a.page = page
	a.booking = nil
	if page.Route == "/book" {
		a.booking = newBookingForm(a.formWidth())
		cmds = append(cmds, a.booking.Init())
	}
	a.focus = focusContent
	a.layout.SetScrollY(0)
	if a.ready {
		a.layoutPage()
		cmds = append(cmds, a.mount())
	}
	return tea.Batch(cmds...)
}

// mount runs once per page visit after its first layout.
func (a *App) mount() tea.Cmd {
	if id, ok := a.store.ConsumeAutoStart(); ok {
		return a.startTour(id)
	}
	return nil
}

func (a *App) startTour(id string) tea.Cmd {
	t, err := a.catalog.Tour(id)
	if err != nil {
		debug.Warn("demo: auto-start: %v", err)
		a.status = fmt.Sprintf("Tour %q not found", id)
		return nil
	}
	cmd, err := a.spotlight.Start(t)
	if err != nil {
		a.status = fmt.Sprintf("Tour %q: %v", id, err)
		return nil
	}
	return cmd
}

// startPageTour starts the first tour defined for the current page and role.
func (a *App) startPageTour() tea.Cmd {
	for _, t := range a.catalog.ToursForRoute(a.page.Route) {
		if t.Role == "" || t.Role == a.role {
			return a.startTour(t.ID)
		}
	}
	a.status = "No tour for this page"
	return nil
}

func (a *App) checklistItems() []tour.ChecklistItem {
	return a.store.Checklist(a.role, a.catalog.Checklist(a.role))
}

func (a *App) refreshChecklist() {
	items := a.checklistItems()
	a.checklist.SetItems(items)
	if len(items) > 0 && a.checklist.Done() {
		a.status = "Onboarding complete"
	}
}

// restartOnboarding clears the role's checklist progress and shows the
// checklist again.
func (a *App) restartOnboarding() {
	items := a.catalog.Checklist(a.role)
	a.store.Clear(a.role, items)
	a.showChecklist = len(items) > 0
	a.refreshChecklist()
	a.status = "Onboarding restarted"
	a.layoutPage()
}

// completeTourItems marks the checklist items finished by completing tourID.
func (a *App) completeTourItems(tourID string) {
	for _, item := range a.catalog.Checklist(a.role) {
		if item.TourID == tourID && !actionItems[item.ID] {
			a.store.MarkComplete(a.role, item.ID)
		}
	}
	a.refreshChecklist()
}

func (a *App) finishBooking(submitted bool) tea.Cmd {
	if a.booking == nil {
		return nil
	}
	if b, ok := a.booking.Booking(); submitted && ok {
		a.bookings = append(append([]Booking(nil), a.bookings...), b)
		a.store.MarkComplete(a.role, "book-session")
		a.refreshChecklist()
		a.status = fmt.Sprintf("Booked %s with %s", b.Slot, b.Coach)
		return a.navigate("/sessions")
	}
	a.status = "Booking cancelled"
	return a.navigate("/coaches")
}

func (a *App) addSlot() {
	s, ok := nextSlot(a.slots)
	if !ok {
		a.status = "Your week is full"
		return
	}
	slots := append(append([]Slot(nil), a.slots...), s)
	day := make(map[string]int, len(weekDays))
	for i, d := range weekDays {
		day[d] = i
	}
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Day != slots[j].Day {
			return day[slots[i].Day] < day[slots[j].Day]
		}
		return slots[i].Hour < slots[j].Hour
	})
	a.slots = slots
	a.store.MarkComplete(a.role, "set-availability")
	a.refreshChecklist()
	a.status = "Opened " + s.String()
	a.layoutPage()
}

func (a *App) reloadDefinitions() tea.Cmd {
	var next tea.Cmd
	if a.opts.Watcher != nil {
		next = WatchFileCmd(a.opts.Watcher)
	}
	if a.opts.Reload == nil {
		return next
	}
	c, err := a.opts.Reload()
	if err != nil {
		debug.Warn("demo: reload tours: %v", err)
		a.status = "Tour definitions not reloaded: " + err.Error()
		return next
	}
	if a.spotlight.Open() {
		a.pending = c
		a.status = "Tour definitions changed; applying after this tour"
		return next
	}
	a.setCatalog(c)
	a.status = "Tour definitions reloaded"
	return next
}

func (a *App) applyPendingCatalog() {
	if a.pending == nil {
		return
	}
	a.setCatalog(a.pending)
	a.pending = nil
	a.status = "Tour definitions reloaded"
}

func (a *App) setCatalog(c *tour.Catalog) {
	a.catalog = c
	a.refreshChecklist()
	a.layoutPage()
}

func (a *App) scroll(rows int) {
	a.layout.SetScrollY(a.layout.ScrollY() + rows)
}

func (a *App) sidebarVisible() bool {
	return a.showChecklist && a.width >= minSidebarTerm
}

func (a *App) contentWidth() int {
	w := a.width
	if a.sidebarVisible() {
		w -= sidebarWidth + 1
	}
	return w
}

func (a *App) formWidth() int {
	w := a.contentWidth() - 4
	if w <= 0 || w > maxFormWidth {
		return maxFormWidth
	}
	return w
}

// layoutPage renders the page into the viewport and registers every
// tour-addressable element with the layout registry.
func (a *App) layoutPage() {
	if !a.ready {
		return
	}
	width := a.contentWidth()
	bodyHeight := a.height - headerRows
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	state := pageState{
		theme:    a.theme,
		role:     a.role,
		width:    width,
		bookings: a.bookings,
		slots:    a.slots,
	}
	if a.booking != nil {
		state.form = a.booking.View()
	}
	c := a.page.build(state)

	a.layout.Begin()
	a.layout.SetOrigin(headerRows)
	_, a.tabs = a.renderNav()
	for _, t := range a.tabs {
		p, _ := lookupPage(t.route, a.role)
		a.layout.PlaceFixed(navLocator(p), tour.Rect{
			Top: headerRows - 1, Left: float64(t.left), Width: float64(t.right - t.left), Height: 1,
		})
	}
	for _, an := range c.anchors {
		a.layout.Place(an.Locator, an.Rect)
	}
	if a.sidebarVisible() {
		a.layout.PlaceFixed("#checklist", tour.Rect{
			Top:    headerRows,
			Left:   float64(width + 1),
			Width:  sidebarWidth,
			Height: float64(lipgloss.Height(a.renderSidebar())),
		})
	}
	a.layout.SetContentHeight(len(c.lines))

	a.vp.Width, a.vp.Height = width, bodyHeight
	a.vp.SetContent(strings.Join(c.lines, "\n"))
	a.vp.SetYOffset(a.layout.ScrollY())
}

// renderNav draws the tab bar and returns each tab's column span.
func (a App) renderNav() (string, []tabHit) {
	active := a.theme.Renderer.NewStyle().Foreground(a.theme.Primary).Bold(true).Underline(true)
	var b strings.Builder
	var hits []tabHit
	col := 0
	for i, p := range navPages(a.role) {
		if i > 0 {
			b.WriteString("  ")
			col += 2
		}
		label := fmt.Sprintf("%d %s", i+1, p.Tab)
		style := a.theme.KeyHint
		if p.Route == a.page.Route {
			style = active
		}
		rendered := style.Render(label)
		w := lipgloss.Width(rendered)
		hits = append(hits, tabHit{left: col, right: col + w, route: p.Route})
		b.WriteString(rendered)
		col += w
	}
	return b.String(), hits
}

func (a App) renderTitleBar() string {
	left := a.theme.Header.Render("Coachly") + " " + a.theme.StepCounter.Render(a.role)
	text := a.status
	if text == "" {
		text = "? tour  ·  tab checklist  ·  R restart onboarding  ·  q quit"
	}
	room := a.width - lipgloss.Width(left) - 2
	if room <= 0 {
		return left
	}
	return left + "  " + a.theme.KeyHint.Render(runewidth.Truncate(text, room, "…"))
}

func (a App) renderSidebar() string {
	border := a.theme.Border
	if a.focus == focusChecklist {
		border = a.theme.Primary
	}
	return a.theme.Renderer.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(border).
		PaddingLeft(1).
		Width(sidebarWidth - 1).
		Render(a.checklist.View())
}

// View implements tea.Model.
func (a App) View() string {
	if !a.ready {
		return "Loading…"
	}
	nav, _ := a.renderNav()
	vp := a.vp
	vp.SetYOffset(a.layout.ScrollY())
	body := vp.View()
	if a.sidebarVisible() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", a.renderSidebar())
	}
	screen := a.renderTitleBar() + "\n" + nav + "\n" + body
	return a.spotlight.View(screen)
}

// Role returns the signed-in role.
func (a App) Role() string { return a.role }

// Route returns the current page route.
func (a App) Route() string { return a.page.Route }

// Status returns the title bar status line.
func (a App) Status() string { return a.status }

// Spotlight exposes the tour overlay.
func (a App) Spotlight() *ui.SpotlightModel { return a.spotlight }

// Layout exposes the layout registry.
func (a App) Layout() *ui.LayoutRegistry { return a.layout }

// Checklist returns the checklist items with completion flags.
func (a App) Checklist() []tour.ChecklistItem { return a.checklist.Items() }

// Bookings returns the sessions booked in this run.
func (a App) Bookings() []Booking { return a.bookings }

// Slots returns the coach's open and booked hours.
func (a App) Slots() []Slot { return a.slots }
