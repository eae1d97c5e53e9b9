package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_GinMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := NewMetrics()

	engine := gin.New()
	engine.Use(metrics.GinMiddleware())
	engine.GET("/api/site", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/site", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	metrics.ObserveRateLimit("rsvp", false)
	metrics.ObserveLogin(LoginRateLimited)
	metrics.ObserveSweep(3)

	if got := testutil.ToFloat64(metrics.rateLimitChecks.WithLabelValues("rsvp", "denied")); got != 1 {
		t.Fatalf("expected 1 denied rsvp check, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.sweptCounterRows); got != 3 {
		t.Fatalf("expected 3 swept rows, got %v", got)
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	if !strings.Contains(body, `invitation_http_requests_total{method="GET",route="/api/site",status="200"} 1`) {
		t.Fatalf("expected request counter in exposition, got:\n%s", body)
	}
	if !strings.Contains(body, `invitation_auth_login_attempts_total{outcome="rate_limited"} 1`) {
		t.Fatalf("expected login counter in exposition")
	}
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveRateLimit("gift", true)
	metrics.ObserveRateLimitError("gift")
	metrics.ObserveLogin(LoginSuccess)
	metrics.ObserveSweep(1)
}
