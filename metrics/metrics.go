// Package metrics provides Prometheus metrics for the builder server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "builder_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "builder_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Generation metrics
	generationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "builder_generations_total",
			Help: "Total generation requests by generator and outcome",
		},
		[]string{"generator", "status"},
	)

	generationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "builder_generation_duration_seconds",
			Help:    "Generation call duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 3, 5, 10, 20, 30, 60},
		},
		[]string{"generator"},
	)

	generatedFilesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "builder_generated_files_total",
			Help: "Total file changes returned by successful generations",
		},
	)

	// Preview metrics
	previewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "builder_previews_total",
			Help: "Total preview documents served by template",
		},
		[]string{"template"},
	)

	// OAuth metrics
	oauthCallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "builder_oauth_callbacks_total",
			Help: "Total GitHub OAuth callbacks by result",
		},
		[]string{"result"},
	)

	// SSE metrics
	sseConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "builder_sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)

	// Session metrics
	sessionValuesPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "builder_session_values_pruned_total",
			Help: "Total expired session values removed",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordGeneration records a finished generation call.
func RecordGeneration(generator string, duration time.Duration, files int, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	generationsTotal.WithLabelValues(generator, status).Inc()
	generationDuration.WithLabelValues(generator).Observe(duration.Seconds())
	if success {
		generatedFilesTotal.Add(float64(files))
	}
}

// RecordPreview records a served preview document.
func RecordPreview(template string) {
	previewsTotal.WithLabelValues(template).Inc()
}

// RecordOAuthCallback records the result of a GitHub OAuth callback.
func RecordOAuthCallback(result string) {
	oauthCallbacksTotal.WithLabelValues(result).Inc()
}

// SSEConnected tracks an SSE stream for its lifetime; call the returned
// function when the stream ends.
func SSEConnected() func() {
	sseConnectionsActive.Inc()
	return sseConnectionsActive.Dec
}

// RecordSessionsPruned records expired session values removed.
func RecordSessionsPruned(n int64) {
	sessionValuesPruned.Add(float64(n))
}

// Middleware returns gin middleware that records request metrics. Paths are
// labelled by route pattern to keep cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
