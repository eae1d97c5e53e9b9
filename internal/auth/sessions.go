package auth

import (
	"fmt"
	"time"

	"github.com/blissevent/invitation/internal/apperr"
	"github.com/blissevent/invitation/internal/config"
	"github.com/blissevent/invitation/internal/models"
	"github.com/blissevent/invitation/internal/security"
)

// Sessions issues and verifies stateless session tokens. The token is the
// only source of identity and role, so a role change applies on next login.
type Sessions struct {
	secret []byte
	issuer string
	ttl    time.Duration
	nowFn  func() time.Time
}

// NewSessions constructs a Sessions codec. A nil nowFn uses the wall clock.
func NewSessions(cfg config.JWTConfig, nowFn func() time.Time) *Sessions {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Sessions{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.Expiry,
		nowFn:  nowFn,
	}
}

// TTL returns the token lifetime.
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for p and returns it with its expiry.
func (s *Sessions) Issue(p Principal) (string, time.Time, error) {
	if p.ID == "" || !p.Role.Valid() {
		return "", time.Time{}, fmt.Errorf("auth: issue session: invalid principal")
	}
	now := s.nowFn().UTC()
	token, errIssue := security.IssueSessionToken(s.secret, s.issuer, security.SessionClaims{
		UserID: p.ID,
		Name:   p.Name,
		Role:   string(p.Role),
	}, now, s.ttl)
	if errIssue != nil {
		return "", time.Time{}, fmt.Errorf("auth: issue session: %w", errIssue)
	}
	return token, now.Add(s.ttl), nil
}

// Verify checks the token and returns the embedded principal.
func (s *Sessions) Verify(token string) (Principal, error) {
	claims, errParse := security.ParseSessionToken(s.secret, s.issuer, token, s.nowFn().UTC())
	if errParse != nil {
		return Principal{}, apperr.ErrUnauthorized
	}
	role := models.UserRole(claims.Role)
	if !role.Valid() {
		return Principal{}, apperr.ErrUnauthorized
	}
	return Principal{ID: claims.UserID, Name: claims.Name, Role: role}, nil
}
