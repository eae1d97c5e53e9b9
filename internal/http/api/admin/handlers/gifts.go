package handlers

import (
	"net/http"

	"github.com/blissevent/invitation/internal/gifts"
	fronthandlers "github.com/blissevent/invitation/internal/http/api/front/handlers"
	"github.com/blissevent/invitation/internal/http/middleware"
	"github.com/blissevent/invitation/internal/validation"
	"github.com/gin-gonic/gin"
)

// GiftAdminHandler manages registry items.
type GiftAdminHandler struct {
	svc *gifts.Service
}

// NewGiftAdminHandler constructs a GiftAdminHandler.
func NewGiftAdminHandler(svc *gifts.Service) *GiftAdminHandler {
	return &GiftAdminHandler{svc: svc}
}

// Create adds a registry item.
func (h *GiftAdminHandler) Create(c *gin.Context) {
	var body validation.GiftCreateRequest
	if errBind := validation.BindJSON(c, &body); errBind != nil {
		middleware.AbortWithError(c, errBind)
		return
	}
	gift, errCreate := h.svc.Create(c.Request.Context(), gifts.CreateInput{
		Name:        body.Name,
		Price:       body.Price,
		URL:         body.URL,
		Image:       body.Image,
		Description: body.Description,
	})
	if errCreate != nil {
		middleware.AbortWithError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Gift added successfully",
		"data":    fronthandlers.FormatGift(&gift),
	})
}

// Delete removes a registry item.
func (h *GiftAdminHandler) Delete(c *gin.Context) {
	if errDelete := h.svc.Delete(c.Request.Context(), c.Param("id")); errDelete != nil {
		middleware.AbortWithError(c, errDelete)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Gift deleted successfully"})
}
