// Package iometrics collects run metrics of the pipeline and writes them
// in the Prometheus text format.
package iometrics

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
)

// Branch outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeQuarantined = "quarantined"
	OutcomeFailed      = "failed"
)

// Metrics holds the counters and histograms of one run.
type Metrics struct {
	Branches       *prometheus.CounterVec // labels: outcome={ok,quarantined,failed}
	HUCs           *prometheus.CounterVec // labels: outcome={ok,failed}
	BranchDuration prometheus.Histogram
	HUCDuration    prometheus.Histogram
	Reaches        prometheus.Counter
	UnitErrors     prometheus.Gauge

	registry *prometheus.Registry
	clock    clockwork.Clock
}

// New creates metrics registered with their own registry, so several runs
// in one process do not collide.
func New(clock clockwork.Clock) *Metrics {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	m := &Metrics{
		Branches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fim",
			Name:      "branches_total",
			Help:      "Branches processed by outcome.",
		}, []string{"outcome"}),
		HUCs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fim",
			Name:      "hucs_total",
			Help:      "HUCs processed by outcome.",
		}, []string{"outcome"}),
		BranchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fim",
			Name:      "branch_duration_seconds",
			Help:      "Wall time of one branch from conditioning to rating curves.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
		}),
		HUCDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fim",
			Name:      "huc_duration_seconds",
			Help:      "Wall time of one HUC including all branches.",
			Buckets:   []float64{1, 10, 60, 300, 900, 1800, 3600, 7200},
		}),
		Reaches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fim",
			Name:      "reaches_total",
			Help:      "Cross-walked derived reaches written to hydro-tables.",
		}),
		UnitErrors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fim",
			Name:      "unit_errors",
			Help:      "Unit error logs found after the run.",
		}),
		registry: prometheus.NewRegistry(),
		clock:    clock,
	}
	m.registry.MustRegister(
		m.Branches,
		m.HUCs,
		m.BranchDuration,
		m.HUCDuration,
		m.Reaches,
		m.UnitErrors,
	)
	return m
}

// Now returns the time of the metrics clock.
func (m *Metrics) Now() time.Time {
	return m.clock.Now()
}

// Since returns the duration from start on the metrics clock.
func (m *Metrics) Since(start time.Time) time.Duration {
	return m.clock.Since(start)
}

// BranchDone records a finished branch that started at start.
func (m *Metrics) BranchDone(start time.Time, outcome string) time.Duration {
	d := m.Since(start)
	m.Branches.WithLabelValues(outcome).Inc()
	m.BranchDuration.Observe(d.Seconds())
	return d
}

// HUCDone records a finished HUC that started at start.
func (m *Metrics) HUCDone(start time.Time, ok bool) time.Duration {
	d := m.Since(start)
	outcome := OutcomeOK
	if !ok {
		outcome = OutcomeFailed
	}
	m.HUCs.WithLabelValues(outcome).Inc()
	m.HUCDuration.Observe(d.Seconds())
	return d
}

// Registry returns the registry of the run metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteFile writes all metrics to path in the Prometheus text format.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
