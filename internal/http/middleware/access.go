package middleware

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

// Decision is the page gate outcome for one request.
type Decision int

const (
	// Allow serves the requested page.
	Allow Decision = iota
	// RedirectToLogin sends an anonymous visitor to the login page.
	RedirectToLogin
	// RedirectToLanding sends a signed-in visitor away from the login page.
	RedirectToLanding
)

func (d Decision) String() string {
	switch d {
	case RedirectToLogin:
		return "redirect-login"
	case RedirectToLanding:
		return "redirect-landing"
	default:
		return "allow"
	}
}

// Decide applies the page access table.
func Decide(hasSession, isLoginRoute bool) Decision {
	switch {
	case !hasSession && isLoginRoute:
		return Allow
	case !hasSession:
		return RedirectToLogin
	case isLoginRoute:
		return RedirectToLanding
	default:
		return Allow
	}
}

var skippedPrefixes = []string{"/api/", "/assets/", "/healthz", "/metrics"}

var staticExtensions = map[string]struct{}{
	".svg": {}, ".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".webp": {},
	".ico": {}, ".css": {}, ".js": {},
}

// isGatedPath reports whether the page gate applies to p.
func isGatedPath(p string) bool {
	if p == "/api" {
		return false
	}
	for _, prefix := range skippedPrefixes {
		if strings.HasPrefix(p, prefix) {
			return false
		}
	}
	_, static := staticExtensions[strings.ToLower(path.Ext(p))]
	return !static
}

// PageGate redirects page requests according to Decide. API routes and
// static files pass through untouched.
func PageGate(auth *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqPath := c.Request.URL.Path
		if !isGatedPath(reqPath) {
			c.Next()
			return
		}
		_, hasSession := auth.principal(c)
		isLoginRoute := reqPath == auth.session.LoginPath

		switch Decide(hasSession, isLoginRoute) {
		case RedirectToLogin:
			c.Redirect(http.StatusFound, auth.session.LoginPath)
			c.Abort()
		case RedirectToLanding:
			c.Redirect(http.StatusFound, auth.session.LandingPath)
			c.Abort()
		default:
			c.Next()
		}
	}
}
