package handlers

import (
	"fmt"
	"net/http"

	"github.com/blissevent/invitation/internal/apperr"
	"github.com/blissevent/invitation/internal/auth"
	"github.com/blissevent/invitation/internal/http/middleware"
	"github.com/blissevent/invitation/internal/validation"
	"github.com/gin-gonic/gin"
)

// AuthHandler serves login, logout and session endpoints.
type AuthHandler struct {
	gate     *auth.Gate
	sessions *auth.Sessions
	authn    *middleware.Authenticator
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(gate *auth.Gate, sessions *auth.Sessions, authn *middleware.Authenticator) *AuthHandler {
	return &AuthHandler{gate: gate, sessions: sessions, authn: authn}
}

// Login verifies credentials and sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var body validation.LoginRequest
	if errBind := validation.BindJSON(c, &body); errBind != nil {
		middleware.AbortWithError(c, errBind)
		return
	}

	principal, errAuth := h.gate.Authenticate(c.Request.Context(), body.Email, body.Password)
	if errAuth != nil {
		middleware.AbortWithError(c, errAuth)
		return
	}

	token, expiresAt, errIssue := h.sessions.Issue(principal)
	if errIssue != nil {
		middleware.AbortWithError(c, fmt.Errorf("login: %w", errIssue))
		return
	}
	h.authn.SetSessionCookie(c, token, expiresAt)
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"user":       formatPrincipal(principal),
		"expires_at": expiresAt,
	})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.authn.ClearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Session returns the signed-in principal.
func (h *AuthHandler) Session(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		middleware.AbortWithError(c, apperr.ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": formatPrincipal(principal)})
}

func formatPrincipal(p auth.Principal) gin.H {
	return gin.H{
		"id":   p.ID,
		"name": p.Name,
		"role": p.Role,
	}
}
