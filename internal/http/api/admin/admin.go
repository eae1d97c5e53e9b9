package admin

import (
	"github.com/blissevent/invitation/internal/gifts"
	handlers "github.com/blissevent/invitation/internal/http/api/admin/handlers"
	"github.com/blissevent/invitation/internal/http/middleware"
	"github.com/blissevent/invitation/internal/observability"
	"github.com/blissevent/invitation/internal/ratelimit"
	"github.com/blissevent/invitation/internal/rsvp"
	"github.com/blissevent/invitation/internal/settings"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Services bundles what the admin and maintenance routes need.
type Services struct {
	DB         *gorm.DB
	Authn      *middleware.Authenticator
	Guard      *middleware.Guard
	Limiter    *ratelimit.Limiter
	Metrics    *observability.Metrics
	RSVPs      *rsvp.Service
	Gifts      *gifts.Service
	Settings   *settings.Store
	CronSecret string
}

// RegisterAdminRoutes registers health, admin and cron routes.
func RegisterAdminRoutes(r *gin.Engine, svc Services) {
	if r == nil || svc.DB == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(svc.DB)
	r.GET("/healthz", healthHandler.Healthz)

	maintenanceHandler := handlers.NewMaintenanceHandler(svc.Limiter, svc.Metrics)
	cron := r.Group("/api/cron")
	cron.Use(middleware.RequireBearerSecret(svc.CronSecret))
	cron.GET("/cleanup-rate-limits", maintenanceHandler.CleanupRateLimits)
	cron.POST("/cleanup-rate-limits", maintenanceHandler.CleanupRateLimits)

	authed := r.Group("/api")
	authed.Use(svc.Authn.RequireSession())
	authed.Use(svc.Guard.RateLimit(ratelimit.ActionAdmin))
	authed.Use(middleware.RequireAdmin())

	giftHandler := handlers.NewGiftAdminHandler(svc.Gifts)
	authed.POST("/gifts", giftHandler.Create)
	authed.DELETE("/gifts/:id", giftHandler.Delete)

	rsvpHandler := handlers.NewRSVPAdminHandler(svc.RSVPs)
	authed.GET("/admin/rsvps", rsvpHandler.List)

	settingHandler := handlers.NewSettingHandler(svc.Settings)
	authed.GET("/admin/settings", settingHandler.List)
	authed.GET("/admin/settings/:key", settingHandler.Get)
	authed.PUT("/admin/settings/:key", settingHandler.Update)
}
