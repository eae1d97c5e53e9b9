package handlers

import (
	"net/http"
	"strings"

	"github.com/blissevent/invitation/internal/apperr"
	"github.com/blissevent/invitation/internal/http/middleware"
	"github.com/blissevent/invitation/internal/models"
	internalsettings "github.com/blissevent/invitation/internal/settings"
	"github.com/blissevent/invitation/internal/validation"
	"github.com/gin-gonic/gin"
)

// SettingHandler manages admin reads and writes of settings values.
type SettingHandler struct {
	store *internalsettings.Store // Settings persistence.
}

// NewSettingHandler constructs a settings handler.
func NewSettingHandler(store *internalsettings.Store) *SettingHandler {
	return &SettingHandler{store: store}
}

// List returns all settings sorted by key.
func (h *SettingHandler) List(c *gin.Context) {
	rows, errList := h.store.List(c.Request.Context())
	if errList != nil {
		middleware.AbortWithError(c, errList)
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, h.formatSetting(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
}

// Get returns a setting by key.
func (h *SettingHandler) Get(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		middleware.AbortWithError(c, apperr.NewValidationError("key", "is required"))
		return
	}
	value, found, errValue := h.store.Value(c.Request.Context(), key)
	if errValue != nil {
		middleware.AbortWithError(c, errValue)
		return
	}
	if !found {
		middleware.AbortWithError(c, apperr.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"key": key, "value": value}})
}

// Update validates and stores a setting value, creating it when absent.
func (h *SettingHandler) Update(c *gin.Context) {
	var body validation.SettingUpdateRequest
	if errBind := validation.BindJSON(c, &body); errBind != nil {
		middleware.AbortWithError(c, errBind)
		return
	}
	row, errUpsert := h.store.Upsert(c.Request.Context(), c.Param("key"), body.Value)
	if errUpsert != nil {
		middleware.AbortWithError(c, errUpsert)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.formatSetting(&row)})
}

// formatSetting formats a setting row into response JSON.
func (h *SettingHandler) formatSetting(s *models.Setting) gin.H {
	return gin.H{
		"key":        s.Key,
		"value":      s.Value,
		"updated_at": s.UpdatedAt,
	}
}
