// Package metrics collects prometheus metrics about manifest resolution and diffs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pkgreg"

// Outcomes of a manifest resolution
const (
	OutcomeFound   = "found"
	OutcomeMissing = "missing"
	OutcomeError   = "error"
)

// Metrics holds the collectors for registry operations.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	resolves     *prometheus.CounterVec
	resolveTime  prometheus.Histogram
	diffTime     prometheus.Histogram
	diffChanges  *prometheus.CounterVec
	publications prometheus.Counter
}

// New builds the collectors and registers them.
//
// A nil registerer falls back to the prometheus default registerer.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manifest_resolves_total",
			Help:      "Number of manifest resolutions, by outcome.",
		}, []string{"outcome"}),
		resolveTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "manifest_resolve_duration_seconds",
			Help:      "Time spent resolving a manifest.",
			Buckets:   prometheus.DefBuckets,
		}),
		diffTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "diff_duration_seconds",
			Help:      "Time spent diffing two manifests.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 10, 8),
		}),
		diffChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diff_files_total",
			Help:      "Number of files reported by diffs, by kind of change.",
		}, []string{"change"}),
		publications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manifest_publications_total",
			Help:      "Number of published package versions.",
		}),
	}

	for _, c := range []prometheus.Collector{m.resolves, m.resolveTime, m.diffTime, m.diffChanges, m.publications} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Resolved records the outcome of a manifest resolution started at some time
func (m *Metrics) Resolved(start time.Time, outcome string) {
	if m == nil {
		return
	}
	m.resolves.WithLabelValues(outcome).Inc()
	m.resolveTime.Observe(time.Since(start).Seconds())
}

// Diffed records a diff started at some time, with the number of files in each change set
func (m *Metrics) Diffed(start time.Time, added, deleted, modified int) {
	if m == nil {
		return
	}
	m.diffTime.Observe(time.Since(start).Seconds())
	m.diffChanges.WithLabelValues("added").Add(float64(added))
	m.diffChanges.WithLabelValues("deleted").Add(float64(deleted))
	m.diffChanges.WithLabelValues("modified").Add(float64(modified))
}

// Published records a new package version
func (m *Metrics) Published() {
	if m == nil {
		return
	}
	m.publications.Inc()
}
