package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects per-run counters and timings. The CLI is one-shot,
// so metrics are written to a textfile-collector file at the end of a
// run rather than served over HTTP.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal       *prometheus.CounterVec
	actionsTotal    *prometheus.CounterVec
	probeDuration   prometheus.Histogram
	confirmDuration prometheus.Histogram
}

// NewMetrics creates and registers the run metric set.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arkhamctl_runs_total",
			Help: "Reconciliation runs by outcome",
		}, []string{"status"}),
		actionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arkhamctl_actions_total",
			Help: "Executed ledger actions by type and status",
		}, []string{"action", "status"}),
		probeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "arkhamctl_probe_duration_seconds",
			Help:    "Account probe round-trip time",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		confirmDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "arkhamctl_confirmation_duration_seconds",
			Help:    "Submission-to-confirmation latency",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
	m.registry.MustRegister(m.runsTotal, m.actionsTotal, m.probeDuration, m.confirmDuration)
	return m
}

// RecordRun records a completed run with the given outcome status.
func (m *Metrics) RecordRun(status string) {
	m.runsTotal.WithLabelValues(status).Inc()
}

// RecordAction records an executed action.
func (m *Metrics) RecordAction(action, status string) {
	m.actionsTotal.WithLabelValues(action, status).Inc()
}

// ObserveProbe records a probe round-trip duration.
func (m *Metrics) ObserveProbe(d time.Duration) {
	m.probeDuration.Observe(d.Seconds())
}

// ObserveConfirmation records a submission-to-confirmation latency.
func (m *Metrics) ObserveConfirmation(d time.Duration) {
	m.confirmDuration.Observe(d.Seconds())
}

// WriteFile writes the collected metrics in textfile-collector format.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
