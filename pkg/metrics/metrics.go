// Package metrics collects resampler evaluation statistics for a run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "getnative"

// Metrics holds the collectors of one run in a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry    *prometheus.Registry
	evaluations *prometheus.CounterVec
	failures    *prometheus.CounterVec
	duration    prometheus.Histogram
	inflight    prometheus.Gauge
	passes      prometheus.Counter
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_evaluations_total",
			Help:      "Completed resampler evaluations by scan phase.",
		}, []string{"phase"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_failures_total",
			Help:      "Failed resampler evaluations by scan phase.",
		}, []string{"phase"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_evaluation_seconds",
			Help:      "Wall time of single resampler evaluations.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scheduler_inflight",
			Help:      "Evaluations currently issued to the resampler.",
		}),
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_passes_total",
			Help:      "Completed height scan + width refinement passes.",
		}),
	}
	m.registry.MustRegister(m.evaluations, m.failures, m.duration, m.inflight, m.passes)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveEvaluation records one finished evaluation.
func (m *Metrics) ObserveEvaluation(phase string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.failures.WithLabelValues(phase).Inc()
		return
	}
	m.evaluations.WithLabelValues(phase).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// InflightInc marks an evaluation as issued.
func (m *Metrics) InflightInc() {
	if m != nil {
		m.inflight.Inc()
	}
}

// InflightDec marks an evaluation as completed.
func (m *Metrics) InflightDec() {
	if m != nil {
		m.inflight.Dec()
	}
}

// PassDone counts a completed search pass.
func (m *Metrics) PassDone() {
	if m != nil {
		m.passes.Inc()
	}
}

// WriteTextfile dumps the registry in Prometheus text format, suitable for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
