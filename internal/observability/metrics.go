package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login outcomes.
const (
	LoginSuccess     = "success"
	LoginInvalid     = "invalid"
	LoginRateLimited = "rate_limited"
	LoginError       = "error"
)

// Metrics holds the application collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	rateLimitChecks  *prometheus.CounterVec
	rateLimitErrors  *prometheus.CounterVec
	loginAttempts    *prometheus.CounterVec
	sweptCounterRows prometheus.Counter
}

// NewMetrics registers collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invitation",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests processed.",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "invitation",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Request processing latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		rateLimitChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invitation",
			Subsystem: "ratelimit",
			Name:      "checks_total",
			Help:      "Rate limit decisions by action and outcome.",
		}, []string{"action", "outcome"}),
		rateLimitErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invitation",
			Subsystem: "ratelimit",
			Name:      "store_errors_total",
			Help:      "Counter store failures that denied the action.",
		}, []string{"action"}),
		loginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invitation",
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		sweptCounterRows: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "invitation",
			Subsystem: "ratelimit",
			Name:      "swept_rows_total",
			Help:      "Expired counter rows removed by the sweep.",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// GinMiddleware records request count and latency per matched route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.requestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
	}
}

// ObserveRateLimit counts one limiter decision.
func (m *Metrics) ObserveRateLimit(action string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "allowed"
	if !allowed {
		outcome = "denied"
	}
	m.rateLimitChecks.WithLabelValues(action, outcome).Inc()
}

// ObserveRateLimitError counts one limiter store failure.
func (m *Metrics) ObserveRateLimitError(action string) {
	if m == nil {
		return
	}
	m.rateLimitErrors.WithLabelValues(action).Inc()
}

// ObserveLogin counts one login attempt.
func (m *Metrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.loginAttempts.WithLabelValues(outcome).Inc()
}

// ObserveSweep adds swept rows.
func (m *Metrics) ObserveSweep(deleted int64) {
	if m == nil || deleted <= 0 {
		return
	}
	m.sweptCounterRows.Add(float64(deleted))
}
