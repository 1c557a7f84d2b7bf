package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks total HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "route", "status"},
	)

	// RequestDuration tracks HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "route"},
	)

	OrdersPlaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Total number of orders placed",
		},
	)

	LineItemTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "line_item_transitions_total",
			Help: "Line item status transitions by target status",
		},
		[]string{"to"},
	)

	// PublishFailures counts events dropped by the producer (write error or open breaker).
	PublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_publish_failures_total",
			Help: "Events that could not be written to the broker",
		},
		[]string{"topic"},
	)

	// BreakerState tracks the producer circuit breaker (0=closed, 1=half-open, 2=open)
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "event_publish_breaker_state",
			Help: "Producer circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"topic"},
	)
)

// Middleware records count and latency per chi route pattern.
func Middleware(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			RequestsTotal.WithLabelValues(service, r.Method, route, strconv.Itoa(status)).Inc()
			RequestDuration.WithLabelValues(service, r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}
