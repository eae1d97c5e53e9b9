package middleware

import (
	"crypto/subtle"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/blissevent/invitation/internal/apperr"
	"github.com/blissevent/invitation/internal/observability"
	"github.com/blissevent/invitation/internal/ratelimit"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Guard applies per-principal rate limits and role checks to API actions.
type Guard struct {
	limiter *ratelimit.Limiter
	quotas  *ratelimit.Quotas
	metrics *observability.Metrics
}

// NewGuard constructs a Guard.
func NewGuard(limiter *ratelimit.Limiter, quotas *ratelimit.Quotas, metrics *observability.Metrics) *Guard {
	return &Guard{limiter: limiter, quotas: quotas, metrics: metrics}
}

// RateLimit counts one attempt under <action>:<principal id>. It must run
// after RequireSession. A counter store failure denies the request.
func (g *Guard) RateLimit(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			AbortWithError(c, apperr.ErrUnauthorized)
			return
		}
		ctx := c.Request.Context()
		quota, errQuota := g.quotas.For(ctx, action)
		if errQuota != nil {
			g.metrics.ObserveRateLimitError(action)
			AbortWithError(c, fmt.Errorf("guard: %s quota: %w: %w", action, apperr.ErrStoreUnavailable, errQuota))
			return
		}
		result, errCheck := g.limiter.CheckQuota(ctx, ratelimit.ActionKey(action, principal.ID), quota)
		if errCheck != nil {
			g.metrics.ObserveRateLimitError(action)
			AbortWithError(c, fmt.Errorf("guard: %s: %w", action, errCheck))
			return
		}
		g.metrics.ObserveRateLimit(action, result.Allowed)
		c.Header("X-RateLimit-Limit", strconv.Itoa(quota.Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		if !result.Allowed {
			retryAfter := int(time.Until(result.ResetAt).Seconds()) + 1
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			log.WithFields(log.Fields{"action": action, "principal": principal.ID}).Info("rate limit exceeded")
			AbortWithError(c, apperr.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects principals without the admin role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			AbortWithError(c, apperr.ErrUnauthorized)
			return
		}
		if !principal.IsAdmin() {
			AbortWithError(c, apperr.ErrForbidden)
			return
		}
		c.Next()
	}
}

// RequireBearerSecret guards machine endpoints with a shared secret.
// An empty secret rejects every request.
func RequireBearerSecret(secret string) gin.HandlerFunc {
	secret = strings.TrimSpace(secret)
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if secret == "" || token == authHeader || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(secret)) != 1 {
			AbortWithError(c, apperr.ErrUnauthorized)
			return
		}
		c.Next()
	}
}
