// Package debug provides conditional debug logging for spotlight.
//
// Debug logging is enabled by setting the SPOTLIGHT_DEBUG environment variable:
//
//	SPOTLIGHT_DEBUG=1 spotlight
//
// Messages go to stderr, or to the file named by SPOTLIGHT_DEBUG_FILE, which is
// what you want while the TUI owns the terminal. When disabled (default), all
// debug functions are no-ops.
//
// Usage:
//
//	import "github.com/vanderheijden86/spotlight/pkg/debug"
//
//	func myFunc() {
//	    debug.Log("resolved %d targets", count)
//	    debug.LogTiming("myFunc", elapsed)
//	}
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	mu      sync.RWMutex
	enabled bool
	logger  *logrus.Logger
)

func init() {
	if os.Getenv("SPOTLIGHT_DEBUG") != "" {
		enabled = true
		logger = newLogger(openOutput())
	}
}

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000000",
	})
	return l
}

func openOutput() io.Writer {
	path := os.Getenv("SPOTLIGHT_DEBUG_FILE")
	if path == "" {
		return os.Stderr
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return os.Stderr
	}
	return f
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = e
	if e && logger == nil {
		logger = newLogger(openOutput())
	}
}

// SetOutput redirects debug output. Tests use it to capture log lines.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = newLogger(w)
		return
	}
	logger.SetOutput(w)
}

func entry() *logrus.Entry {
	mu.RLock()
	defer mu.RUnlock()
	if !enabled || logger == nil {
		return nil
	}
	return logrus.NewEntry(logger).WithField("component", "spotlight")
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if e := entry(); e != nil {
		e.Debugf(format, args...)
	}
}

// LogFields writes a structured debug message.
func LogFields(msg string, fields map[string]any) {
	if e := entry(); e != nil {
		e.WithFields(logrus.Fields(fields)).Debug(msg)
	}
}

// Warn logs a degraded-but-recoverable condition, such as an unavailable
// progress backend.
func Warn(format string, args ...any) {
	if e := entry(); e != nil {
		e.Warnf(format, args...)
	}
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if e := entry(); e != nil {
		e.WithField("elapsed", d).Debugf("%s took %v", name, d)
	}
}

// LogIf writes a debug message only if the condition is true.
func LogIf(cond bool, format string, args ...any) {
	if !cond {
		return
	}
	Log(format, args...)
}

// LogEnterExit logs function entry and exit with timing.
//
//	func myFunc() {
//	    defer debug.LogEnterExit("myFunc")()
//	}
func LogEnterExit(name string) func() {
	e := entry()
	if e == nil {
		return func() {}
	}
	e.Debugf("-> %s", name)
	start := time.Now()
	return func() {
		e.Debugf("<- %s (%v)", name, time.Since(start))
	}
}

// Dump logs a value with its type for debugging complex structures.
func Dump(name string, v any) {
	if e := entry(); e != nil {
		e.Debug(fmt.Sprintf("%s: %T = %+v", name, v, v))
	}
}
