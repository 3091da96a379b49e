package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/vanderheijden86/spotlight/internal/demo"
	"github.com/vanderheijden86/spotlight/pkg/config"
	"github.com/vanderheijden86/spotlight/pkg/debug"
	"github.com/vanderheijden86/spotlight/pkg/metrics"
	"github.com/vanderheijden86/spotlight/pkg/progress"
	"github.com/vanderheijden86/spotlight/pkg/tour"
	"github.com/vanderheijden86/spotlight/pkg/ui"
	"github.com/vanderheijden86/spotlight/pkg/version"
	"github.com/vanderheijden86/spotlight/pkg/watcher"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	if len(os.Args) > 1 {
		if cmd, ok := subcommands[os.Args[1]]; ok {
			os.Exit(cmd(os.Args[2:], os.Stdout, os.Stderr))
		}
	}
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run starts the TUI and returns the process exit code. Deferred cleanup
// (profile, progress store, watcher) runs before main exits.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("spotlight", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cpuProfile := fs.String("cpu-profile", "", "Write CPU profile to file")
	help := fs.Bool("help", false, "Show help")
	versionFlag := fs.Bool("version", false, "Show version")
	role := fs.String("role", "", "Sign in as 'client' or 'coach'")
	route := fs.String("route", "", "Start page; add ?tour=<id> to start a tour on arrival")
	tours := fs.String("tours", "", "Comma-separated tour definition files or directories")
	watch := fs.Bool("watch", false, "Reload tour definitions when the files change")
	session := fs.String("session", "", "Resume a browsing session by id")
	backend := fs.String("progress", "", "Progress backend: memory, file, sqlite or redis")
	metricsFile := fs.String("metrics-file", "", "Write tour analytics in Prometheus text format on exit")
	noMouse := fs.Bool("no-mouse", false, "Disable mouse reporting")
	debugFlag := fs.Bool("debug", false, "Log to SPOTLIGHT_DEBUG_FILE or stderr")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	// CPU profiling support
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(stderr, "Could not create CPU profile: %v\n", err)
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(stderr, "Could not start CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Fprintln(stdout, "Usage: spotlight [options]")
		fmt.Fprintln(stdout, "       spotlight <check|snapshot|audit|init> [options]")
		fmt.Fprintln(stdout, "\nGuided product tours over a demo coaching app.")
		fmt.Fprintln(stdout, "\nCommands:")
		fmt.Fprintln(stdout, "  check     Validate tour definitions")
		fmt.Fprintln(stdout, "  snapshot  Render one tour step to SVG or PNG")
		fmt.Fprintln(stdout, "  audit     Walk a tour against a live web page in Chrome")
		fmt.Fprintln(stdout, "  init      Write the built-in tours to a file you can edit")
		fmt.Fprintln(stdout, "\nOptions:")
		fs.SetOutput(stdout)
		fs.PrintDefaults()
		return 0
	}

	if *versionFlag {
		fmt.Fprintf(stdout, "spotlight %s\n", version.Version)
		return 0
	}

	if *debugFlag {
		debug.SetEnabled(true)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Warning: %v; using defaults\n", err)
		cfg = config.DefaultConfig()
	}
	if *role != "" {
		cfg.UI.Role = *role
	}
	if *route != "" {
		cfg.UI.StartRoute = *route
	}
	if *tours != "" {
		cfg.Tours.Paths = splitPaths(*tours)
	}
	if *watch {
		cfg.Tours.Watch = true
	}
	if *session != "" {
		cfg.Session = *session
	}
	if *backend != "" {
		cfg.Progress.Backend = *backend
	}
	if *metricsFile != "" {
		cfg.Metrics.TextfilePath = *metricsFile
	}
	if *noMouse {
		cfg.UI.Mouse = false
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if cfg.Session == "" {
		cfg.Session = progress.NewSessionID()
	}

	catalog, err := demo.LoadCatalog(cfg.Tours.Paths)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading tours: %v\n", err)
		return 1
	}

	if f, ok := stdout.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		fmt.Fprintln(stderr, "Error: spotlight needs a terminal. Use 'spotlight check' or 'spotlight snapshot' in scripts.")
		return 1
	}

	collector := metrics.NewTourCollector("spotlight")
	defer collector.TrackRecomputes()()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	b, err := progress.Open(ctx, cfg.Progress, cfg.Session)
	cancel()
	if err != nil {
		fmt.Fprintf(stderr, "Warning: %v; progress will not outlive this run\n", err)
		b = progress.NewMemoryBackend()
	}
	store := progress.New(b, cfg.Session, progress.WithOnFirstComplete(collector.ChecklistCompleted))
	defer store.Close()
	debug.Log("session %s, progress backend %q", cfg.Session, cfg.Progress.Backend)

	var w *watcher.Watcher
	if cfg.Tours.Watch && len(cfg.Tours.Paths) > 0 {
		w, err = watcher.NewWatcher(cfg.Tours.Paths, watcher.WithOnError(func(err error) {
			debug.Warn("tour watcher: %v", err)
		}))
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			fmt.Fprintf(stderr, "Warning: cannot watch tour definitions: %v\n", err)
			w = nil
		} else {
			defer w.Stop()
		}
	}

	paths := cfg.Tours.Paths
	app := demo.New(demo.Options{
		Role:       cfg.UI.Role,
		StartRoute: cfg.UI.StartRoute,
		Catalog:    catalog,
		Store:      store,
		Theme:      ui.DefaultTheme(lipgloss.DefaultRenderer()),
		Markdown:   ui.NewMarkdownRenderer(""),
		Tour:       cfg.Tour,
		Collector:  collector,
		Watcher:    w,
		Reload: func() (*tour.Catalog, error) {
			return demo.LoadCatalog(paths)
		},
	})

	runErr := runTUIProgram(app, cfg.UI.Mouse)

	if cfg.Metrics.TextfilePath != "" {
		if err := collector.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			fmt.Fprintf(stderr, "Warning: writing metrics: %v\n", err)
		}
	}
	if runErr != nil {
		fmt.Fprintf(stderr, "Error running spotlight: %v\n", runErr)
		return 1
	}
	return 0
}

// splitPaths splits a comma-separated flag value, dropping empty entries.
func splitPaths(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func runTUIProgram(m tea.Model, mouse bool) error {
	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	}
	if mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, opts...)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set SPOTLIGHT_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("SPOTLIGHT_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
