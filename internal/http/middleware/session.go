package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/blissevent/invitation/internal/apperr"
	"github.com/blissevent/invitation/internal/auth"
	"github.com/blissevent/invitation/internal/config"
	"github.com/gin-gonic/gin"
)

const principalContextKey = "principal"

// Authenticator resolves the session principal from a request.
type Authenticator struct {
	sessions *auth.Sessions
	session  config.SessionConfig
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(sessions *auth.Sessions, session config.SessionConfig) *Authenticator {
	return &Authenticator{sessions: sessions, session: session}
}

// token reads the session token from the cookie, then from a Bearer header.
func (a *Authenticator) token(c *gin.Context) string {
	if cookie, errCookie := c.Cookie(a.session.CookieName); errCookie == nil {
		if trimmed := strings.TrimSpace(cookie); trimmed != "" {
			return trimmed
		}
	}
	authHeader := c.GetHeader("Authorization")
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return ""
	}
	return strings.TrimSpace(token)
}

func (a *Authenticator) principal(c *gin.Context) (auth.Principal, bool) {
	if a == nil || a.sessions == nil {
		return auth.Principal{}, false
	}
	token := a.token(c)
	if token == "" {
		return auth.Principal{}, false
	}
	principal, errVerify := a.sessions.Verify(token)
	if errVerify != nil {
		return auth.Principal{}, false
	}
	return principal, true
}

// RequireSession rejects requests without a verifiable session.
func (a *Authenticator) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := a.principal(c)
		if !ok {
			AbortWithError(c, apperr.ErrUnauthorized)
			return
		}
		c.Set(principalContextKey, principal)
		c.Next()
	}
}

// SetSessionCookie writes the session cookie.
func (a *Authenticator) SetSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(a.session.CookieName, token, maxAge, "/", "", a.session.SecureCookie, true)
}

// ClearSessionCookie expires the session cookie.
func (a *Authenticator) ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(a.session.CookieName, "", -1, "/", "", a.session.SecureCookie, true)
}

// PrincipalFrom returns the principal stored by RequireSession.
func PrincipalFrom(c *gin.Context) (auth.Principal, bool) {
	value, exists := c.Get(principalContextKey)
	if !exists {
		return auth.Principal{}, false
	}
	principal, ok := value.(auth.Principal)
	return principal, ok
}
