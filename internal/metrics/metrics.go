package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navaid_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "navaid_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	detectFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navaid_detect_failures_total",
			Help: "Detect requests that failed, by error kind",
		},
		[]string{"kind"},
	)

	detectionsPerFrame = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "navaid_detections_per_frame",
			Help:    "Number of detections returned per frame",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21, 50},
		},
	)

	pipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "navaid_pipeline_duration_seconds",
			Help:    "Decode, inference and assembly time per frame",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	activeStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "navaid_active_streams",
			Help: "Number of open detection WebSocket sessions",
		},
	)
)

// RecordHTTPRequest records an HTTP request
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := "unknown"
	if statusCode >= 200 && statusCode < 300 {
		status = "2xx"
	} else if statusCode >= 300 && statusCode < 400 {
		status = "3xx"
	} else if statusCode >= 400 && statusCode < 500 {
		status = "4xx"
	} else if statusCode >= 500 {
		status = "5xx"
	}

	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordFrame records a successful pipeline run.
func RecordFrame(detections int, duration time.Duration) {
	detectionsPerFrame.Observe(float64(detections))
	pipelineDuration.Observe(duration.Seconds())
}

// RecordFailure counts a failed pipeline run by error kind.
func RecordFailure(kind string) {
	detectFailuresTotal.WithLabelValues(kind).Inc()
}

// StreamOpened and StreamClosed track live WebSocket sessions.
func StreamOpened() { activeStreams.Inc() }
func StreamClosed() { activeStreams.Dec() }

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
