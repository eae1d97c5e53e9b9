package handlers

import (
	"net/http"

	"github.com/blissevent/invitation/internal/apperr"
	"github.com/blissevent/invitation/internal/http/middleware"
	"github.com/blissevent/invitation/internal/models"
	"github.com/blissevent/invitation/internal/rsvp"
	"github.com/blissevent/invitation/internal/validation"
	"github.com/gin-gonic/gin"
)

// RSVPHandler serves the guest's own RSVP.
type RSVPHandler struct {
	svc *rsvp.Service
}

// NewRSVPHandler constructs an RSVPHandler.
func NewRSVPHandler(svc *rsvp.Service) *RSVPHandler {
	return &RSVPHandler{svc: svc}
}

// Get returns the guest's RSVP, if any, and their guest allowance.
func (h *RSVPHandler) Get(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		middleware.AbortWithError(c, apperr.ErrUnauthorized)
		return
	}
	own, errGet := h.svc.Get(c.Request.Context(), principal)
	if errGet != nil {
		middleware.AbortWithError(c, errGet)
		return
	}
	var reply gin.H
	if own.RSVP != nil {
		reply = FormatRSVP(own.RSVP)
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"rsvp":       reply,
			"max_guests": own.MaxGuests,
		},
	})
}

// Submit stores or replaces the guest's RSVP.
func (h *RSVPHandler) Submit(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		middleware.AbortWithError(c, apperr.ErrUnauthorized)
		return
	}
	var body validation.RSVPRequest
	if errBind := validation.BindJSON(c, &body); errBind != nil {
		middleware.AbortWithError(c, errBind)
		return
	}

	row, errSubmit := h.svc.Submit(c.Request.Context(), principal, rsvp.Input{
		Attending:           *body.Attending,
		Guests:              *body.Guests,
		DietaryRestrictions: body.DietaryRestrictions,
		Message:             body.Message,
	})
	if errSubmit != nil {
		middleware.AbortWithError(c, errSubmit)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "RSVP received successfully",
		"data":    FormatRSVP(&row),
	})
}

// FormatRSVP formats an RSVP row into response JSON.
func FormatRSVP(r *models.RSVP) gin.H {
	return gin.H{
		"id":                   r.ID,
		"attending":            r.Attending,
		"guests":               r.Guests,
		"dietary_restrictions": r.DietaryRestrictions,
		"message":              r.Message,
		"created_at":           r.CreatedAt,
		"updated_at":           r.UpdatedAt,
	}
}
