package handlers

import (
	"net/http"

	"github.com/blissevent/invitation/internal/http/middleware"
	"github.com/blissevent/invitation/internal/observability"
	"github.com/blissevent/invitation/internal/ratelimit"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// MaintenanceHandler runs scheduled housekeeping triggered by an external cron.
type MaintenanceHandler struct {
	limiter *ratelimit.Limiter
	metrics *observability.Metrics
}

// NewMaintenanceHandler constructs a MaintenanceHandler.
func NewMaintenanceHandler(limiter *ratelimit.Limiter, metrics *observability.Metrics) *MaintenanceHandler {
	return &MaintenanceHandler{limiter: limiter, metrics: metrics}
}

// CleanupRateLimits deletes expired rate limit counters.
func (h *MaintenanceHandler) CleanupRateLimits(c *gin.Context) {
	deleted, errCleanup := h.limiter.Cleanup(c.Request.Context())
	if errCleanup != nil {
		middleware.AbortWithError(c, errCleanup)
		return
	}
	h.metrics.ObserveSweep(deleted)
	log.WithField("deleted", deleted).Info("rate limit cleanup completed")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Rate limit cleanup completed",
		"deleted": deleted,
	})
}
