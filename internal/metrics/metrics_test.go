package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordUpstreamFetch(t *testing.T) {
	m := NewMetrics("test", prometheus.NewRegistry())

	m.RecordUpstreamFetch("mock", nil, 10*time.Millisecond, 7)
	m.RecordUpstreamFetch("mock", errors.New("boom"), time.Millisecond, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamFetches.WithLabelValues("mock", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamFetches.WithLabelValues("mock", "error")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.RowsFetched.WithLabelValues("mock")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordKPIRequest("7j", "ok", time.Second)
		m.RecordDegradedPeriod("24h", "7d")
		m.RecordCacheLookup("hit")
		m.RecordUpstreamFetch("mock", nil, time.Second, 1)
		m.RecordRateLimitHit("report")
	})
}

func TestHandlerServesOwnRegistry(t *testing.T) {
	m := NewMetrics("test", prometheus.NewRegistry())
	m.RecordDegradedPeriod("24h", "7d")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `test_degraded_periods_total{bucket="7d",period="24h"} 1`)
}
