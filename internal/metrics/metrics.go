// Package metrics provides Prometheus instrumentation for the rate engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RecommendationsTotal counts pricing recommendations, partitioned by strategy.
	RecommendationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amplifi_recommendations_total",
		Help: "Total number of pricing recommendations produced",
	}, []string{"strategy"})

	// RecommendationLatency tracks end-to-end recommendation latency.
	RecommendationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "amplifi_recommendation_latency_seconds",
		Help:    "Pricing recommendation latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// OverridesTotal counts rank-based price overrides.
	OverridesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "amplifi_overrides_total",
		Help: "Total number of rank-based price overrides computed",
	})

	// ProviderFailures counts data-provider fetch failures by provider name.
	ProviderFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amplifi_provider_failures_total",
		Help: "Market data provider fetch failures",
	}, []string{"provider"})

	// SnapshotCacheHits and SnapshotCacheMisses track the market snapshot cache.
	SnapshotCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "amplifi_snapshot_cache_hits_total",
		Help: "Market snapshot cache hits",
	})
	SnapshotCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "amplifi_snapshot_cache_misses_total",
		Help: "Market snapshot cache misses",
	})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "amplifi_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amplifi_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "amplifi_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
	}, []string{"method", "path"})

	// PersistenceFailures counts background store writes that failed.
	PersistenceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amplifi_persistence_failures_total",
		Help: "Background persistence write failures",
	}, []string{"kind"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Use the route pattern for path label to avoid high cardinality.
		path := r.URL.Path
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
