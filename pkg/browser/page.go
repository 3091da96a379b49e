package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/goccy/go-json"

	"github.com/vanderheijden86/spotlight/pkg/debug"
	"github.com/vanderheijden86/spotlight/pkg/tour"
)

// Poster runs a function on the goroutine that owns the engine.
// tour.EventLoop satisfies it.
type Poster interface {
	Post(fn func())
}

// pageMetrics is what one layout sample reads from the page.
type pageMetrics struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	ScrollY float64 `json:"scrollY"`
}

const metricsJS = `({width: window.innerWidth, height: window.innerHeight, scrollY: window.scrollY})`

// resolveResult mirrors resolveJS's return value.
type resolveResult struct {
	Found  bool    `json:"found"`
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Page is a tour.TargetLocatorProvider over a browser tab. Locators are CSS
// selectors; the first element in document order wins. Every method except
// Watch must be called from the engine's goroutine.
type Page struct {
	ctx     context.Context
	timeout time.Duration
	smooth  bool

	viewport  tour.Size
	scrollY   float64
	nextID    int
	listeners map[int]func(tour.LayoutEvent)
}

// NewPage wraps a tab context and reads the initial viewport.
func NewPage(tabCtx context.Context, cfg Config) (*Page, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	p := &Page{
		ctx:       tabCtx,
		timeout:   timeout,
		smooth:    true,
		listeners: make(map[int]func(tour.LayoutEvent)),
	}
	m, err := p.sample()
	if err != nil {
		return nil, fmt.Errorf("reading viewport: %w", err)
	}
	p.viewport = tour.Size{Width: m.Width, Height: m.Height}
	p.scrollY = m.ScrollY
	return p, nil
}

// SetSmoothScroll selects smooth or instant scrolling for ScrollBy.
func (p *Page) SetSmoothScroll(smooth bool) {
	p.smooth = smooth
}

// Navigate loads url and waits for the body to be ready. Call it before the
// engine starts tracking, or between tours.
func (p *Page) Navigate(url string) error {
	if err := chromedp.Run(p.ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	m, err := p.sample()
	if err != nil {
		return fmt.Errorf("reading viewport: %w", err)
	}
	p.apply(m)
	return nil
}

func (p *Page) eval(expr string, out any) error {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()
	return chromedp.Run(ctx, chromedp.Evaluate(expr, out))
}

func (p *Page) sample() (pageMetrics, error) {
	var m pageMetrics
	err := p.eval(metricsJS, &m)
	return m, err
}

// Resolve implements tour.TargetLocatorProvider. Elements with no box
// (display: none, detached) count as missing.
func (p *Page) Resolve(loc tour.Locator) (tour.Rect, bool) {
	script, err := resolveJS(loc)
	if err != nil {
		debug.Warn("browser: bad locator %q: %v", loc, err)
		return tour.Rect{}, false
	}
	var res resolveResult
	if err := p.eval(script, &res); err != nil {
		debug.Warn("browser: resolving %q: %v", loc, err)
		return tour.Rect{}, false
	}
	if !res.Found || (res.Width == 0 && res.Height == 0) {
		return tour.Rect{}, false
	}
	return tour.Rect{Top: res.Top, Left: res.Left, Width: res.Width, Height: res.Height}, true
}

// Viewport implements tour.TargetLocatorProvider with the last sampled size.
func (p *Page) Viewport() tour.Size { return p.viewport }

// Subscribe implements tour.TargetLocatorProvider. Events come from Watch.
func (p *Page) Subscribe(fn func(tour.LayoutEvent)) func() {
	p.nextID++
	id := p.nextID
	p.listeners[id] = fn
	return func() { delete(p.listeners, id) }
}

// ScrollBy implements tour.TargetLocatorProvider.
func (p *Page) ScrollBy(dy float64) {
	var ok bool
	if err := p.eval(scrollJS(dy, p.smooth), &ok); err != nil {
		debug.Warn("browser: scrolling by %.0f: %v", dy, err)
	}
}

// Listeners returns the number of attached layout listeners.
func (p *Page) Listeners() int { return len(p.listeners) }

// Watch samples the page layout every interval until ctx is done and posts
// the result onto the engine's goroutine, where changes become resize and
// scroll events. The page has no push channel for layout, so a short
// interval stands in for the browser's resize and scroll listeners.
func (p *Page) Watch(ctx context.Context, post Poster, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m, err := p.sample()
			if err != nil {
				if ctx.Err() == nil {
					debug.Warn("browser: layout sample: %v", err)
				}
				continue
			}
			post.Post(func() { p.apply(m) })
		}
	}
}

// apply records a sample and notifies listeners of what changed.
func (p *Page) apply(m pageMetrics) {
	size := tour.Size{Width: m.Width, Height: m.Height}
	resized := size != p.viewport
	scrolled := m.ScrollY != p.scrollY
	p.viewport = size
	p.scrollY = m.ScrollY
	if resized {
		p.emit(tour.LayoutResize)
	}
	if scrolled {
		p.emit(tour.LayoutScroll)
	}
}

func (p *Page) emit(ev tour.LayoutEvent) {
	fns := make([]func(tour.LayoutEvent), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	for _, fn := range fns {
		fn(ev)
	}
}

// resolveJS builds the lookup script for loc. The selector is embedded as a
// JSON string literal; invalid selectors resolve to not found.
func resolveJS(loc tour.Locator) (string, error) {
	sel, err := json.Marshal(string(loc))
	if err != nil {
		return "", err
	}
	return `(() => {
	let el = null;
	try { el = document.querySelector(` + string(sel) + `); } catch (e) { return {found: false}; }
	if (!el) return {found: false};
	const r = el.getBoundingClientRect();
	return {found: true, top: r.top, left: r.left, width: r.width, height: r.height};
})()`, nil
}

func scrollJS(dy float64, smooth bool) string {
	behavior := "instant"
	if smooth {
		behavior = "smooth"
	}
	return fmt.Sprintf(`(() => { window.scrollBy({top: %g, behavior: %q}); return true; })()`, dy, behavior)
}
