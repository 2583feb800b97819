package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/tickets", "POST", 201, 10*time.Millisecond)
	m.RecordRequest("/tickets", "POST", 201, 20*time.Millisecond)
	m.RecordError("/tickets/:id/start", "PATCH", "NOT_FOUND")
	m.RecordTransition("start", "ok")
	m.RecordTransition("start", "not_found")
	m.RecordTransition("start", "ok")

	require.Equal(t, 2.0, testutil.ToFloat64(m.requestCount.WithLabelValues("/tickets", "POST", "201")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.errorCount.WithLabelValues("/tickets/:id/start", "PATCH", "NOT_FOUND")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("start", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("start", "not_found")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "INTERNAL_ERROR")
		m.RecordTransition("cancel", "error")
	})
}
