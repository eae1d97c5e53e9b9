package handlers

import (
	"net/http"

	"github.com/blissevent/invitation/internal/settings"
	"github.com/gin-gonic/gin"
)

// SiteHandler serves public site metadata.
type SiteHandler struct {
	settings *settings.Store
}

// NewSiteHandler constructs a SiteHandler.
func NewSiteHandler(store *settings.Store) *SiteHandler {
	return &SiteHandler{settings: store}
}

// Get returns the site name.
func (h *SiteHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"site_name": h.settings.SiteName(c.Request.Context())},
	})
}
