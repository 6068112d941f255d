package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	require.NoError(t, m.Track("auth:event").End(nil))
	err := errors.New("boom")
	require.ErrorIs(t, m.Track("auth:event").End(err), err)

	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("auth:event", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("auth:event", "failure")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("auth:event")))
}

func TestAddEvent(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.AddEvent("signup")
	m.AddEvent("signup")
	m.AddEvent("")
	require.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues("signup")))

	var nilMetrics *Metrics
	require.NotPanics(t, func() { nilMetrics.AddEvent("signup") })
	require.NoError(t, nilMetrics.Track("x").End(nil))
}
