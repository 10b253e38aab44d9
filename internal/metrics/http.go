package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rgbnode",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "API requests, by operation and status code",
	}, []string{"operation", "code"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rgbnode",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "API request latency, by operation",
		Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
	}, []string{"operation"})
)

// ObserveRequest records one finished API request. Streaming operations
// are observed when the client disconnects.
func ObserveRequest(operation string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
