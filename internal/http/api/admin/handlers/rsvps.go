package handlers

import (
	"net/http"

	fronthandlers "github.com/blissevent/invitation/internal/http/api/front/handlers"
	"github.com/blissevent/invitation/internal/http/middleware"
	"github.com/blissevent/invitation/internal/rsvp"
	"github.com/gin-gonic/gin"
)

// RSVPAdminHandler reports guest replies.
type RSVPAdminHandler struct {
	svc *rsvp.Service
}

// NewRSVPAdminHandler constructs an RSVPAdminHandler.
func NewRSVPAdminHandler(svc *rsvp.Service) *RSVPAdminHandler {
	return &RSVPAdminHandler{svc: svc}
}

// List returns every reply, newest first, with summary counts.
func (h *RSVPAdminHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	entries, errList := h.svc.List(ctx)
	if errList != nil {
		middleware.AbortWithError(c, errList)
		return
	}
	stats, errStats := h.svc.Stats(ctx)
	if errStats != nil {
		middleware.AbortWithError(c, errStats)
		return
	}

	out := make([]gin.H, 0, len(entries))
	for i := range entries {
		row := fronthandlers.FormatRSVP(&entries[i].RSVP)
		row["user_id"] = entries[i].UserID
		row["name"] = entries[i].Name
		row["email"] = entries[i].Email
		out = append(out, row)
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"rsvps": out,
			"stats": stats,
		},
	})
}
