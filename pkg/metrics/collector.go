package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TourCollector counts tour lifecycle events on a private registry, so a host
// can export them without touching the global default registry.
type TourCollector struct {
	registry *prometheus.Registry

	started        *prometheus.CounterVec
	completed      *prometheus.CounterVec
	closed         *prometheus.CounterVec
	targetsMissing *prometheus.CounterVec
	checklistDone  *prometheus.CounterVec
	stepLatency    prometheus.Histogram
}

// NewTourCollector creates a collector under namespace (default "spotlight").
func NewTourCollector(namespace string) *TourCollector {
	if namespace == "" {
		namespace = "spotlight"
	}

	c := &TourCollector{registry: prometheus.NewRegistry()}

	c.started = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tour",
		Name:      "started_total",
		Help:      "Tours started, by tour id.",
	}, []string{"tour"})
	c.completed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tour",
		Name:      "completed_total",
		Help:      "Tours finished by walking past the last step.",
	}, []string{"tour"})
	c.closed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tour",
		Name:      "closed_total",
		Help:      "Tours ended without completing, by reason (skipped, dismissed, closed).",
	}, []string{"tour", "reason"})
	c.targetsMissing = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tour",
		Name:      "target_missing_total",
		Help:      "Steps rendered unanchored because their locator matched nothing.",
	}, []string{"tour", "locator"})
	c.checklistDone = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "checklist",
		Name:      "completed_total",
		Help:      "Checklist items marked complete for the first time, by role.",
	}, []string{"role", "item"})
	c.stepLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "tour",
		Name:      "rect_recompute_seconds",
		Help:      "Time spent resolving each tour target rect.",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	})

	c.registry.MustRegister(c.started, c.completed, c.closed, c.targetsMissing, c.checklistDone, c.stepLatency)
	return c
}

// Registry returns the collector's registry.
func (c *TourCollector) Registry() *prometheus.Registry { return c.registry }

// Started records a tour start.
func (c *TourCollector) Started(tourID string) {
	c.started.WithLabelValues(tourID).Inc()
}

// Completed records a completion.
func (c *TourCollector) Completed(tourID string) {
	c.completed.WithLabelValues(tourID).Inc()
}

// Closed records an early exit. reason is the EndReason string.
func (c *TourCollector) Closed(tourID, reason string) {
	c.closed.WithLabelValues(tourID, reason).Inc()
}

// TargetMissing records an unresolvable locator.
func (c *TourCollector) TargetMissing(tourID, locator string) {
	c.targetsMissing.WithLabelValues(tourID, locator).Inc()
}

// ChecklistCompleted records a checklist item's first completion.
func (c *TourCollector) ChecklistCompleted(role, item string) {
	c.checklistDone.WithLabelValues(role, item).Inc()
}

// TrackRecomputes observes every RectRecompute measurement into the
// recompute histogram until the returned function is called.
func (c *TourCollector) TrackRecomputes() (stop func()) {
	return RectRecompute.Observe(func(d time.Duration) {
		c.stepLatency.Observe(d.Seconds())
	})
}

// WriteTextfile writes the registry in the Prometheus text format, for the
// node_exporter textfile collector.
func (c *TourCollector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
