package telemetry

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	m.SweepStarted("stream")
	m.ObserveConfiguration("stream", OutcomeOK, 10*time.Millisecond)
	m.ObserveConfiguration("stream", OutcomeOK, 20*time.Millisecond)
	m.ObserveConfiguration("stream", OutcomeFailed, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.configurations.WithLabelValues("stream", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.configurations.WithLabelValues("stream", OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sweeps.WithLabelValues("stream")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))

	_, err = NewMetrics(reg)
	assert.ErrorIs(t, err, ErrRegistrationFailed, "registering twice fails")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SweepStarted("x")
		m.ObserveConfiguration("x", OutcomeOK, time.Second)
	})
	assert.Nil(t, FromContext(context.Background()))
}

func TestMetricsContext(t *testing.T) {
	m, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	assert.Same(t, m, FromContext(WithMetrics(context.Background(), m)))
}

func TestTracerProviderWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	tp, err := NewTracerProvider(&buf)
	require.NoError(t, err)

	_, span := tp.Tracer(TracerName).Start(context.Background(), "configuration")
	span.End()
	require.NoError(t, tp.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), `"Name":"configuration"`)
}
