// Package telemetry exposes sweep metrics to Prometheus and configures the
// OpenTelemetry tracer used to record one span per configuration.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ErrRegistrationFailed is returned when a metric cannot be registered.
var ErrRegistrationFailed = errors.New("metric registration failed")

// Outcome labels for the configurations counter.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Metrics records per-configuration outcomes and durations. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	configurations *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	sweeps         *prometheus.CounterVec
}

// NewMetrics registers the sweep metrics on reg under the "gridbench"
// namespace.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		configurations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gridbench",
			Name:      "configurations_total",
			Help:      "Configurations executed, by benchmark and outcome.",
		}, []string{"benchmark", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gridbench",
			Name:      "configuration_duration_seconds",
			Help:      "Wall time of a single configuration, including setup of changed resources.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 12),
		}, []string{"benchmark"}),
		sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gridbench",
			Name:      "sweeps_total",
			Help:      "Sweeps started, by benchmark.",
		}, []string{"benchmark"}),
	}
	for _, c := range []prometheus.Collector{m.configurations, m.duration, m.sweeps} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
		}
	}
	return m, nil
}

// SweepStarted counts a new sweep of benchmark.
func (m *Metrics) SweepStarted(benchmark string) {
	if m == nil {
		return
	}
	m.sweeps.WithLabelValues(benchmark).Inc()
}

// ObserveConfiguration records one executed configuration.
func (m *Metrics) ObserveConfiguration(benchmark, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.configurations.WithLabelValues(benchmark, outcome).Inc()
	m.duration.WithLabelValues(benchmark).Observe(d.Seconds())
}

type metricsKey struct{}

// WithMetrics returns a context carrying m.
func WithMetrics(ctx context.Context, m *Metrics) context.Context {
	return context.WithValue(ctx, metricsKey{}, m)
}

// FromContext returns the Metrics stored in ctx, or nil.
func FromContext(ctx context.Context) *Metrics {
	m, _ := ctx.Value(metricsKey{}).(*Metrics)
	return m
}
