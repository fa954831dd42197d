// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Search metrics
	SearchRequestsTotal prometheus.Counter
	SearchResultsCount  prometheus.Histogram
	SearchDuration      prometheus.Histogram
	RetailerDuration    *prometheus.HistogramVec
	RetailerResults     *prometheus.CounterVec
	RetailerErrors      *prometheus.CounterVec
	RetailerTimeouts    *prometheus.CounterVec

	// Metered-adapter cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Pricing metrics
	PricingWaveDuration *prometheus.HistogramVec
	PricingFallbacks    prometheus.Counter
	ItemsPriced         prometheus.Counter

	// HTTP metrics
	HTTPRequestsTotal *prometheus.CounterVec
	WSClientsActive   prometheus.Gauge

	// Analytics sink metrics
	SearchEventsRecorded prometheus.Counter
	SearchEventErrors    prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "needlist"
	}

	return &Metrics{
		SearchRequestsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total number of aggregated search requests",
		}),
		SearchResultsCount: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "results_count",
			Help:      "Number of results returned per search request",
			Buckets:   []float64{0, 5, 10, 20, 40, 60},
		}),
		SearchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Aggregated search wall-clock duration",
			Buckets:   []float64{0.1, 0.5, 1, 2, 4, 8, 10},
		}),
		RetailerDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "retailer",
			Name:      "request_duration_seconds",
			Help:      "Per-retailer search request duration",
			Buckets:   []float64{0.1, 0.5, 1, 2, 4, 8},
		}, []string{"retailer"}),
		RetailerResults: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retailer",
			Name:      "results_total",
			Help:      "Total results contributed per retailer",
		}, []string{"retailer"}),
		RetailerErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retailer",
			Name:      "errors_total",
			Help:      "Per-retailer transport and decode failures",
		}, []string{"retailer"}),
		RetailerTimeouts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retailer",
			Name:      "timeouts_total",
			Help:      "Per-retailer timed-out search calls",
		}, []string{"retailer"}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Metered-adapter cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Metered-adapter cache misses",
		}),
		PricingWaveDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "wave_duration_seconds",
			Help:      "Duration of progressive pricing waves",
			Buckets:   []float64{0.5, 1, 2, 4, 8, 16},
		}, []string{"wave"}),
		PricingFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "fallbacks_total",
			Help:      "Batched pricing failures that fell back to per-item fetches",
		}),
		ItemsPriced: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "items_priced_total",
			Help:      "Items that received at least one retailer price",
		}),
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by endpoint and status class",
		}, []string{"endpoint", "status"}),
		WSClientsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "ws_clients_active",
			Help:      "Currently connected pricing-stream WebSocket clients",
		}),
		SearchEventsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "search_events_recorded_total",
			Help:      "Search events written to the analytics store",
		}),
		SearchEventErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "search_event_errors_total",
			Help:      "Failed search-event writes (best-effort, never surfaced)",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StatusClass buckets an HTTP status code for the requests counter.
func StatusClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	}
	return "other"
}
