package metrics

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	bookingOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_outcomes_total",
		Help: "Bookings by terminal outcome.",
	}, []string{"outcome"})

	remoteCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_remote_calls_total",
		Help: "Inventory gateway calls by operation and result.",
	}, []string{"operation", "result"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

// RecordBookingOutcome counts a booking reaching a terminal state.
func RecordBookingOutcome(outcome string) {
	bookingOutcomes.WithLabelValues(outcome).Inc()
}

// RecordRemoteCall counts one inventory gateway call.
func RecordRemoteCall(operation, result string) {
	remoteCalls.WithLabelValues(operation, result).Inc()
}

// GinMiddleware records request latency per route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpDuration.WithLabelValues(
			c.Request.Method,
			path,
			http.StatusText(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}

// StartServer serves /metrics on its own listener.
func StartServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Str("addr", addr).Msg("Metrics server failed")
		}
	}()
}
