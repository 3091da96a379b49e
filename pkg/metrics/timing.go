// Package metrics provides performance instrumentation and tour analytics for
// spotlight.
//
// Timing metrics cover the engine's hot paths (rect recompute, overlay
// composition, tooltip layout) and are collected in-memory with atomic
// operations. Collection is enabled by default and can be disabled with
// SPOTLIGHT_METRICS=0.
//
//	func recompute() {
//	    defer metrics.Timer(metrics.RectRecompute)()
//	}
package metrics

import (
	"os"
	"sync"
	"sync/atomic"
	"time"
)

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("SPOTLIGHT_METRICS") != "0")
}

// Enabled returns whether metrics collection is enabled.
func Enabled() bool {
	return enabled.Load()
}

// SetEnabled allows programmatic control of metrics collection.
func SetEnabled(e bool) {
	enabled.Store(e)
}

// TimingMetric accumulates durations for one named operation.
type TimingMetric struct {
	name    string
	count   atomic.Int64
	totalNs atomic.Int64
	maxNs   atomic.Int64

	mu        sync.Mutex
	nextObs   int
	observers atomic.Pointer[map[int]func(time.Duration)]
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Record adds one measurement.
func (m *TimingMetric) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	ns := d.Nanoseconds()
	m.count.Add(1)
	m.totalNs.Add(ns)
	for {
		old := m.maxNs.Load()
		if ns <= old || m.maxNs.CompareAndSwap(old, ns) {
			break
		}
	}
	if obs := m.observers.Load(); obs != nil {
		for _, fn := range *obs {
			fn(d)
		}
	}
}

// Observe calls fn with every measurement recorded from now on, until the
// returned function is called. fn runs on the recording goroutine.
func (m *TimingMetric) Observe(fn func(time.Duration)) (stop func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextObs++
	id := m.nextObs
	m.swapObservers(func(obs map[int]func(time.Duration)) { obs[id] = fn })
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.swapObservers(func(obs map[int]func(time.Duration)) { delete(obs, id) })
	}
}

// swapObservers publishes an edited copy of the observer set. Callers hold mu.
func (m *TimingMetric) swapObservers(edit func(map[int]func(time.Duration))) {
	next := make(map[int]func(time.Duration))
	if cur := m.observers.Load(); cur != nil {
		for id, fn := range *cur {
			next[id] = fn
		}
	}
	edit(next)
	m.observers.Store(&next)
}

// Name returns the metric name.
func (m *TimingMetric) Name() string { return m.name }

// Count returns the number of recorded measurements.
func (m *TimingMetric) Count() int64 { return m.count.Load() }

// Stats returns a snapshot.
func (m *TimingMetric) Stats() TimingStats {
	count := m.count.Load()
	total := m.totalNs.Load()
	var avg int64
	if count > 0 {
		avg = total / count
	}
	return TimingStats{
		Name:    m.name,
		Count:   count,
		TotalMs: float64(total) / 1e6,
		AvgMs:   float64(avg) / 1e6,
		MaxMs:   float64(m.maxNs.Load()) / 1e6,
	}
}

// Reset clears all recorded measurements.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.totalNs.Store(0)
	m.maxNs.Store(0)
}

// TimingStats holds a snapshot of timing statistics.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
}

// Timer returns a function that records elapsed time when called:
//
//	defer metrics.Timer(metrics.TooltipLayout)()
func Timer(m *TimingMetric) func() {
	if !Enabled() || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.Record(time.Since(start))
	}
}

var (
	RectRecompute  = newTimingMetric("rect_recompute")
	OverlayCompose = newTimingMetric("overlay_compose")
	TooltipLayout  = newTimingMetric("tooltip_layout")
	DefinitionLoad = newTimingMetric("definition_load")
	ProgressIO     = newTimingMetric("progress_io")
)

// AllTimingMetrics returns all registered timing metrics.
func AllTimingMetrics() []*TimingMetric {
	return []*TimingMetric{
		RectRecompute,
		OverlayCompose,
		TooltipLayout,
		DefinitionLoad,
		ProgressIO,
	}
}

// ResetAll resets all timing metrics.
func ResetAll() {
	for _, m := range AllTimingMetrics() {
		m.Reset()
	}
}

// AllTimingStats returns stats for metrics that have data.
func AllTimingStats() []TimingStats {
	all := AllTimingMetrics()
	stats := make([]TimingStats, 0, len(all))
	for _, m := range all {
		if m.Count() > 0 {
			stats = append(stats, m.Stats())
		}
	}
	return stats
}
