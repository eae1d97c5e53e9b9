package front

import (
	"github.com/blissevent/invitation/internal/auth"
	"github.com/blissevent/invitation/internal/gifts"
	handlers "github.com/blissevent/invitation/internal/http/api/front/handlers"
	"github.com/blissevent/invitation/internal/http/middleware"
	"github.com/blissevent/invitation/internal/ratelimit"
	"github.com/blissevent/invitation/internal/rsvp"
	"github.com/blissevent/invitation/internal/settings"
	"github.com/gin-gonic/gin"
)

// Services bundles what the guest-facing routes need.
type Services struct {
	Gate     *auth.Gate
	Sessions *auth.Sessions
	Authn    *middleware.Authenticator
	Guard    *middleware.Guard
	RSVPs    *rsvp.Service
	Gifts    *gifts.Service
	Settings *settings.Store
}

// RegisterFrontRoutes registers guest routes under /api.
func RegisterFrontRoutes(r *gin.Engine, svc Services) {
	if r == nil {
		return
	}

	api := r.Group("/api")

	siteHandler := handlers.NewSiteHandler(svc.Settings)
	api.GET("/site", siteHandler.Get)

	authHandler := handlers.NewAuthHandler(svc.Gate, svc.Sessions, svc.Authn)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)

	authed := api.Group("")
	authed.Use(svc.Authn.RequireSession())
	authed.GET("/auth/session", authHandler.Session)

	rsvpHandler := handlers.NewRSVPHandler(svc.RSVPs)
	authed.GET("/rsvp", rsvpHandler.Get)
	authed.POST("/rsvp", svc.Guard.RateLimit(ratelimit.ActionRSVP), rsvpHandler.Submit)

	giftHandler := handlers.NewGiftHandler(svc.Gifts)
	authed.GET("/gifts", giftHandler.List)
	authed.PUT("/gifts/:id", svc.Guard.RateLimit(ratelimit.ActionGift), giftHandler.Purchase)
}
