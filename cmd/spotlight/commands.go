package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/spotlight/internal/demo"
	"github.com/vanderheijden86/spotlight/pkg/browser"
	"github.com/vanderheijden86/spotlight/pkg/config"
	"github.com/vanderheijden86/spotlight/pkg/export"
	"github.com/vanderheijden86/spotlight/pkg/progress"
	"github.com/vanderheijden86/spotlight/pkg/tour"
	"github.com/vanderheijden86/spotlight/pkg/ui"
)

// Terminal cells are drawn at this many pixels in snapshots.
const (
	cellWidthPx  = 8
	cellHeightPx = 16
)

type command func(args []string, stdout, stderr io.Writer) int

var subcommands = map[string]command{
	"check":    runCheck,
	"snapshot": runSnapshot,
	"audit":    runAudit,
	"init":     runInit,
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("spotlight "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// runCheck validates definitions and lists what they contain.
func runCheck(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("check", stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: spotlight check [file-or-dir ...]")
		fmt.Fprintln(stderr, "\nValidates tour definitions; the built-in tours when no path is given.")
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	catalog, err := demo.LoadCatalog(fs.Args())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	for _, t := range catalog.Tours() {
		role := t.Role
		if role == "" {
			role = "any"
		}
		route := t.Route
		if route == "" {
			route = "-"
		}
		fmt.Fprintf(stdout, "tour %-18s role=%-6s route=%-22s steps=%d\n", t.ID, role, route, len(t.Steps))
	}
	for _, role := range catalog.Roles() {
		items := catalog.Checklist(role)
		ids := make([]string, len(items))
		for i, item := range items {
			ids[i] = item.ID
		}
		fmt.Fprintf(stdout, "checklist %-6s %s\n", role, strings.Join(ids, ", "))
	}
	fmt.Fprintf(stdout, "OK: %d tours\n", len(catalog.Tours()))
	return 0
}

// runSnapshot renders one step of a tour over its demo page.
func runSnapshot(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("snapshot", stderr)
	tourID := fs.String("tour", "", "Tour id (required)")
	step := fs.Int("step", 1, "Step number, starting at 1")
	out := fs.String("o", "", "Output file, .svg or .png (default <tour>-<step>.svg)")
	format := fs.String("format", "", "Force svg or png")
	tours := fs.String("tours", "", "Comma-separated tour definition files or directories")
	width := fs.Int("width", 100, "Terminal width in cells")
	height := fs.Int("height", 30, "Terminal height in cells")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *tourID == "" {
		fmt.Fprintln(stderr, "Error: -tour is required")
		fs.Usage()
		return 2
	}

	catalog, err := demo.LoadCatalog(splitPaths(*tours))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	capture, err := demo.CaptureStep(demo.Options{
		Catalog:  catalog,
		Store:    progress.New(progress.NewMemoryBackend(), progress.NewSessionID()),
		Theme:    ui.DefaultTheme(lipgloss.NewRenderer(stdout)),
		Markdown: ui.NewMarkdownRenderer("notty"),
		Tour:     config.TerminalTourOptions(),
	}, *tourID, *step-1, *width, *height)
	if errors.Is(err, tour.ErrUnknownTour) {
		fmt.Fprintf(stderr, "Error: %v (known: %s)\n", err, tourIDs(catalog))
		return 1
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	path := *out
	if path == "" {
		path = fmt.Sprintf("%s-%d.svg", *tourID, *step)
	}
	elements := make([]export.Element, len(capture.Elements))
	for i, e := range capture.Elements {
		elements[i] = export.Element{Locator: e.Locator, Rect: e.Rect}
	}
	if err := export.SaveSnapshot(export.SnapshotOptions{
		Path:        path,
		Format:      *format,
		Frame:       capture.Frame,
		Elements:    elements,
		TooltipSize: capture.TooltipSize,
		ScaleX:      cellWidthPx,
		ScaleY:      cellHeightPx,
	}); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if capture.Frame.Step.Anchored() && capture.Frame.Target == nil {
		fmt.Fprintf(stderr, "Warning: %s not found; the step is centred\n", capture.Frame.Step.Locator)
	}
	fmt.Fprintf(stdout, "Wrote %s\n", path)
	return 0
}

// runAudit walks a tour against a live page and prints a JSON report.
func runAudit(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("audit", stderr)
	url := fs.String("url", "", "Page to audit (required)")
	tourID := fs.String("tour", "", "Tour id (required)")
	tours := fs.String("tours", "", "Comma-separated tour definition files or directories")
	out := fs.String("o", "", "Write the report here instead of stdout")
	snapshots := fs.String("snapshots", "", "Directory for one image per step")
	format := fs.String("format", "png", "Snapshot format: svg or png")
	width := fs.Int("width", 1440, "Browser window width")
	height := fs.Int("height", 900, "Browser window height")
	dwell := fs.Duration("dwell", 400*time.Millisecond, "Time each step stays open after settling")
	timeout := fs.Duration("timeout", 2*time.Minute, "Give up after this long")
	headful := fs.Bool("headful", false, "Show the browser window")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *url == "" || *tourID == "" {
		fmt.Fprintln(stderr, "Error: -url and -tour are required")
		fs.Usage()
		return 2
	}

	catalog, err := demo.LoadCatalog(splitPaths(*tours))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	t, err := catalog.Tour(*tourID)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v (known: %s)\n", err, tourIDs(catalog))
		return 1
	}

	cfg := browser.DefaultConfig()
	cfg.Headless = !*headful
	cfg.Width, cfg.Height = *width, *height
	opts := browser.DefaultAuditOptions()
	opts.Dwell = *dwell
	opts.SnapshotDir = *snapshots
	opts.SnapshotFormat = *format

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	report, err := browser.Audit(ctx, cfg, *url, t, opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	w := stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		defer f.Close()
		w = f
	}
	if err := browser.WriteReport(w, report); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if !report.OK() {
		for _, loc := range report.Missing {
			fmt.Fprintf(stderr, "Missing target: %s\n", loc)
		}
		return 1
	}
	return 0
}

// runInit writes the built-in tours as a starting point for custom ones.
func runInit(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("init", stderr)
	force := fs.Bool("force", false, "Overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	path := fs.Arg(0)
	if path == "" {
		dir := config.ConfigDir()
		if dir == "" {
			fmt.Fprintln(stderr, "Error: cannot determine config directory; pass a path")
			return 1
		}
		path = filepath.Join(dir, "tours.yaml")
	}
	if _, err := os.Stat(path); err == nil && !*force {
		fmt.Fprintf(stderr, "Error: %s exists (use -force to overwrite)\n", path)
		return 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if err := os.WriteFile(path, demo.BuiltinTours(), 0o644); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Wrote %s\n", path)
	fmt.Fprintf(stdout, "Run 'spotlight -tours %s' to use it.\n", path)
	return 0
}

// tourIDs lists catalog tour ids, for error messages.
func tourIDs(c *tour.Catalog) string {
	var ids []string
	for _, t := range c.Tours() {
		ids = append(ids, t.ID)
	}
	return strings.Join(ids, ", ")
}
