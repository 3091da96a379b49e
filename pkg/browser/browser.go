// Package browser binds the tour engine to a real web page through the Chrome
// DevTools protocol. Page implements tour.TargetLocatorProvider with locators
// read as CSS selectors, and Audit walks a tour headlessly, reporting where
// every step's spotlight and tooltip would land.
package browser

import (
	"context"
	"os"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/vanderheijden86/spotlight/pkg/debug"
)

// Config controls the Chrome instance used for audits.
type Config struct {
	Headless  bool
	UserAgent string
	Width     int
	Height    int
	// ExecPath overrides Chrome discovery; SPOTLIGHT_CHROME is used when empty.
	ExecPath string
	// Timeout bounds a single DevTools round trip.
	Timeout time.Duration
}

// DefaultConfig returns a headless desktop-sized browser.
func DefaultConfig() Config {
	return Config{
		Headless:  true,
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36 spotlight-audit",
		Width:     1440,
		Height:    900,
		Timeout:   5 * time.Second,
	}
}

// NewAllocator creates a Chrome exec allocator context from cfg.
func NewAllocator(parent context.Context, cfg Config) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(cfg.Width, cfg.Height),
	)
	exec := cfg.ExecPath
	if exec == "" {
		exec = os.Getenv("SPOTLIGHT_CHROME")
	}
	if exec != "" {
		opts = append(opts, chromedp.ExecPath(exec))
	}
	return chromedp.NewExecAllocator(parent, opts...)
}

// NewTab opens a browser tab under an allocator context. DevTools chatter
// goes to the debug log.
func NewTab(allocCtx context.Context) (context.Context, context.CancelFunc) {
	return chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			debug.Log("[chrome] "+format, args...)
		}),
	)
}
