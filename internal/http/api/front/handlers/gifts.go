package handlers

import (
	"net/http"

	"github.com/blissevent/invitation/internal/apperr"
	"github.com/blissevent/invitation/internal/gifts"
	"github.com/blissevent/invitation/internal/http/middleware"
	"github.com/blissevent/invitation/internal/models"
	"github.com/blissevent/invitation/internal/validation"
	"github.com/gin-gonic/gin"
)

// GiftHandler serves the registry to guests.
type GiftHandler struct {
	svc *gifts.Service
}

// NewGiftHandler constructs a GiftHandler.
func NewGiftHandler(svc *gifts.Service) *GiftHandler {
	return &GiftHandler{svc: svc}
}

// List returns every gift ordered by name.
func (h *GiftHandler) List(c *gin.Context) {
	rows, errList := h.svc.List(c.Request.Context())
	if errList != nil {
		middleware.AbortWithError(c, errList)
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, FormatGift(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
}

// Purchase marks a gift as bought by the signed-in guest. Any purchaser
// fields in the body are ignored.
func (h *GiftHandler) Purchase(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		middleware.AbortWithError(c, apperr.ErrUnauthorized)
		return
	}
	var body validation.GiftPurchaseRequest
	if errBind := validation.BindJSON(c, &body); errBind != nil {
		middleware.AbortWithError(c, errBind)
		return
	}
	if !*body.Purchased {
		middleware.AbortWithError(c, apperr.NewValidationError("purchased", "must be true"))
		return
	}

	gift, errPurchase := h.svc.Purchase(c.Request.Context(), principal, c.Param("id"))
	if errPurchase != nil {
		middleware.AbortWithError(c, errPurchase)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Gift marked as purchased",
		"data":    FormatGift(&gift),
	})
}

// FormatGift formats a gift row into response JSON.
func FormatGift(g *models.Gift) gin.H {
	return gin.H{
		"id":           g.ID,
		"name":         g.Name,
		"price":        g.Price,
		"url":          g.URL,
		"image":        g.Image,
		"description":  g.Description,
		"purchased":    g.Purchased,
		"purchased_by": g.PurchasedBy,
		"purchased_at": g.PurchasedAt,
		"created_at":   g.CreatedAt,
		"updated_at":   g.UpdatedAt,
	}
}
