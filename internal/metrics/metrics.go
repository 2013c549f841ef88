package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the insights service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// KPI query metrics
	KPIRequests     *prometheus.CounterVec
	KPILatency      *prometheus.HistogramVec
	DegradedPeriods *prometheus.CounterVec
	KPICacheLookups *prometheus.CounterVec

	// Upstream metrics
	UpstreamFetches *prometheus.CounterVec
	UpstreamLatency *prometheus.HistogramVec
	RowsFetched     *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates and registers all metrics on reg. Passing nil uses the
// default Prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	gatherer := prometheus.DefaultGatherer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}
	factory := promauto.With(reg)

	return &Metrics{
		KPIRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "kpi_requests_total",
				Help:      "KPI queries served, by period and result",
			},
			[]string{"period", "result"},
		),
		KPILatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "kpi_latency_seconds",
				Help:      "End-to-end KPI computation latency",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"period"},
		),
		DegradedPeriods: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "degraded_periods_total",
				Help:      "Periods answered with a coarser upstream bucket",
			},
			[]string{"period", "bucket"},
		),
		KPICacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "kpi_cache_lookups_total",
				Help:      "KPI cache lookups by outcome",
			},
			[]string{"outcome"}, // hit, miss, error
		),
		UpstreamFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_fetches_total",
				Help:      "Raw metric fetches by source and result",
			},
			[]string{"source", "result"},
		),
		UpstreamLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_latency_seconds",
				Help:      "Raw metric fetch latency",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"source"},
		),
		RowsFetched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_fetched_total",
				Help:      "Metric rows received from upstream",
			},
			[]string{"source"},
		),
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Rate limit rejections",
			},
			[]string{"class"},
		),
		gatherer: gatherer,
	}
}

// Handler returns the Prometheus HTTP handler for the registry m was built on.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RecordKPIRequest records a served KPI query.
func (m *Metrics) RecordKPIRequest(period, result string, latency time.Duration) {
	if m == nil {
		return
	}
	m.KPIRequests.WithLabelValues(period, result).Inc()
	m.KPILatency.WithLabelValues(period).Observe(latency.Seconds())
}

// RecordDegradedPeriod records a period collapsed onto a coarser bucket.
func (m *Metrics) RecordDegradedPeriod(period, bucket string) {
	if m == nil {
		return
	}
	m.DegradedPeriods.WithLabelValues(period, bucket).Inc()
}

// RecordCacheLookup records a KPI cache hit, miss or error.
func (m *Metrics) RecordCacheLookup(outcome string) {
	if m == nil {
		return
	}
	m.KPICacheLookups.WithLabelValues(outcome).Inc()
}

// RecordUpstreamFetch records one raw metrics fetch.
func (m *Metrics) RecordUpstreamFetch(source string, err error, latency time.Duration, rows int) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.UpstreamFetches.WithLabelValues(source, result).Inc()
	m.UpstreamLatency.WithLabelValues(source).Observe(latency.Seconds())
	if rows > 0 {
		m.RowsFetched.WithLabelValues(source).Add(float64(rows))
	}
}

// RecordRateLimitHit records a rate limit hit.
func (m *Metrics) RecordRateLimitHit(class string) {
	if m == nil {
		return
	}
	m.RateLimitHits.WithLabelValues(class).Inc()
}
