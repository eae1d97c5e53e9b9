package auth

import (
	"context"
	"strings"

	"github.com/blissevent/invitation/internal/apperr"
	"github.com/blissevent/invitation/internal/observability"
	"github.com/blissevent/invitation/internal/ratelimit"
	"github.com/blissevent/invitation/internal/security"
	log "github.com/sirupsen/logrus"
)

// Gate verifies email and password credentials behind the login limiter.
type Gate struct {
	users   UserStore
	limiter *ratelimit.Limiter
	quotas  *ratelimit.Quotas
	metrics *observability.Metrics
}

// NewGate constructs a Gate. metrics may be nil.
func NewGate(users UserStore, limiter *ratelimit.Limiter, quotas *ratelimit.Quotas, metrics *observability.Metrics) *Gate {
	return &Gate{users: users, limiter: limiter, quotas: quotas, metrics: metrics}
}

// Authenticate returns the principal for valid credentials. Every failure,
// including a rate-limited or broken attempt, is ErrInvalidCredentials.
func (g *Gate) Authenticate(ctx context.Context, email, password string) (Principal, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		g.metrics.ObserveLogin(observability.LoginInvalid)
		return Principal{}, apperr.ErrInvalidCredentials
	}
	entry := log.WithField("email", email)

	quota, errQuota := g.quotas.For(ctx, ratelimit.ActionLogin)
	if errQuota != nil {
		entry.WithError(errQuota).Error("auth: resolve login quota")
		g.metrics.ObserveLogin(observability.LoginError)
		return Principal{}, apperr.ErrInvalidCredentials
	}
	result, errLimit := g.limiter.CheckQuota(ctx, ratelimit.LoginKey(email), quota)
	if errLimit != nil {
		entry.WithError(errLimit).Error("auth: login rate limit check failed")
		g.metrics.ObserveRateLimitError(ratelimit.ActionLogin)
		g.metrics.ObserveLogin(observability.LoginError)
		return Principal{}, apperr.ErrInvalidCredentials
	}
	g.metrics.ObserveRateLimit(ratelimit.ActionLogin, result.Allowed)
	if !result.Allowed {
		entry.WithField("reset_at", result.ResetAt).Info("auth: login rate limited")
		g.metrics.ObserveLogin(observability.LoginRateLimited)
		return Principal{}, apperr.ErrInvalidCredentials
	}

	user, found, errFind := g.users.FindByEmail(ctx, email)
	if errFind != nil {
		entry.WithError(errFind).Error("auth: load user")
		security.CompareDummy(password)
		g.metrics.ObserveLogin(observability.LoginError)
		return Principal{}, apperr.ErrInvalidCredentials
	}
	if !found {
		security.CompareDummy(password)
		g.metrics.ObserveLogin(observability.LoginInvalid)
		return Principal{}, apperr.ErrInvalidCredentials
	}
	if !security.CheckPassword(strings.TrimSpace(user.Password), password) {
		g.metrics.ObserveLogin(observability.LoginInvalid)
		return Principal{}, apperr.ErrInvalidCredentials
	}
	if !user.Role.Valid() {
		entry.WithField("role", user.Role).Error("auth: user has unknown role")
		g.metrics.ObserveLogin(observability.LoginError)
		return Principal{}, apperr.ErrInvalidCredentials
	}

	g.metrics.ObserveLogin(observability.LoginSuccess)
	return PrincipalFromUser(user), nil
}
