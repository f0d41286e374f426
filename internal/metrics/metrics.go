package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains the Prometheus collectors for the estimator. Collectors
// live on an instance-scoped registry so tests can build as many Metrics as
// they like without duplicate-registration panics.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP surface
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	// Estimates
	estimates *prometheus.CounterVec

	// Price cache
	cacheLookups *prometheus.CounterVec

	// Upstream price-list fetches
	retailFetches       *prometheus.CounterVec
	retailFetchDuration prometheus.Histogram
	retailPages         prometheus.Counter
}

// NewMetrics creates a new Metrics instance with Prometheus collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_http_requests_total",
				Help: "Total number of HTTP requests handled",
			},
			[]string{"path", "status"},
		),

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tally_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		),

		estimates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_estimates_total",
				Help: "Total number of cost estimates by outcome",
			},
			[]string{"outcome"},
		),

		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_price_cache_lookups_total",
				Help: "Price cache lookups by result",
			},
			[]string{"region", "result"},
		),

		retailFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_retail_fetches_total",
				Help: "Total number of retail price-list fetches",
			},
			[]string{"region", "result"},
		),

		retailFetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tally_retail_fetch_duration_seconds",
				Help:    "Retail price-list fetch latency, all pages included",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30},
			},
		),

		retailPages: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tally_retail_pages_total",
				Help: "Total number of price-list pages retrieved",
			},
		),
	}
}

// ObserveRequest records one handled HTTP request.
func (m *Metrics) ObserveRequest(path string, status int, duration time.Duration) {
	m.requests.WithLabelValues(path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// ObserveEstimate records the outcome of one cost estimate.
func (m *Metrics) ObserveEstimate(outcome string) {
	m.estimates.WithLabelValues(outcome).Inc()
}

// ObserveCacheLookup records one price-cache lookup.
func (m *Metrics) ObserveCacheLookup(region string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(region, result).Inc()
}

// ObserveRetailFetch records one upstream fetch attempt.
func (m *Metrics) ObserveRetailFetch(region string, pages int, duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}

	m.retailFetches.WithLabelValues(region, result).Inc()
	m.retailFetchDuration.Observe(duration.Seconds())
	m.retailPages.Add(float64(pages))
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
