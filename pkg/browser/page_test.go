package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/spotlight/pkg/tour"
)

func TestResolveJSQuotesSelector(t *testing.T) {
	script, err := resolveJS(`[data-tour="book"]`)
	if err != nil {
		t.Fatalf("resolveJS failed: %v", err)
	}
	if !strings.Contains(script, `document.querySelector("[data-tour=\"book\"]")`) {
		t.Errorf("Expected selector as a JSON string literal, got:\n%s", script)
	}
	if !strings.Contains(script, "getBoundingClientRect") {
		t.Error("Expected script to read the bounding rect")
	}
}

func TestScrollJS(t *testing.T) {
	if got := scrollJS(-120, true); !strings.Contains(got, `top: -120, behavior: "smooth"`) {
		t.Errorf("Unexpected smooth scroll script: %s", got)
	}
	if got := scrollJS(40.5, false); !strings.Contains(got, `top: 40.5, behavior: "instant"`) {
		t.Errorf("Unexpected instant scroll script: %s", got)
	}
}

func TestPageApplyEmitsChanges(t *testing.T) {
	p := &Page{listeners: make(map[int]func(tour.LayoutEvent))}
	var events []tour.LayoutEvent
	unsub := p.Subscribe(func(ev tour.LayoutEvent) { events = append(events, ev) })

	p.apply(pageMetrics{Width: 800, Height: 600})
	p.apply(pageMetrics{Width: 800, Height: 600})
	p.apply(pageMetrics{Width: 800, Height: 600, ScrollY: 50})

	if len(events) != 2 || events[0] != tour.LayoutResize || events[1] != tour.LayoutScroll {
		t.Errorf("Expected resize then scroll, got %v", events)
	}
	if p.Viewport() != (tour.Size{Width: 800, Height: 600}) {
		t.Errorf("Unexpected viewport %+v", p.Viewport())
	}

	unsub()
	unsub()
	if p.Listeners() != 0 {
		t.Errorf("Expected 0 listeners, got %d", p.Listeners())
	}
}

func chromeAvailable() bool {
	if os.Getenv("SPOTLIGHT_CHROME") != "" {
		return true
	}
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "headless-shell"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

const auditPage = `<!doctype html>
<html><body style="margin:0">
<input id="search" style="position:absolute; top:100px; left:200px; width:150px; height:50px">
<div style="height:3000px"></div>
<button id="book" style="position:absolute; top:1400px; left:40px; width:120px; height:40px">Book</button>
</body></html>`

func TestAuditAgainstChrome(t *testing.T) {
	if testing.Short() || !chromeAvailable() {
		t.Skip("Chrome not available")
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, auditPage)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	tr := tour.Tour{ID: "page", Steps: []tour.Step{
		{Locator: "#search", Content: "Search"},
		{Locator: "#book", Content: "Book", Placement: tour.PlacementTop},
	}}
	report, err := Audit(ctx, DefaultConfig(), srv.URL, tr, DefaultAuditOptions())
	if err != nil {
		t.Fatalf("Audit failed: %v", err)
	}
	if !report.OK() {
		t.Fatalf("Expected clean audit, got %+v", report)
	}
	if !report.Steps[1].InViewport {
		t.Errorf("Expected #book scrolled into view, got %+v", report.Steps[1])
	}
}
