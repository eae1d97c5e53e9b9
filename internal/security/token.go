package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken indicates a token that failed signature, expiry or claim checks.
var ErrInvalidToken = errors.New("security: invalid token")

// SessionClaims are the signed claims carried by a session token.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// IssueSessionToken signs claims with HS256 and the given lifetime.
func IssueSessionToken(secret []byte, issuer string, claims SessionClaims, now time.Time, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("security: empty signing secret")
	}
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, errSign := token.SignedString(secret)
	if errSign != nil {
		return "", fmt.Errorf("security: sign token: %w", errSign)
	}
	return signed, nil
}

// ParseSessionToken verifies the HS256 signature, issuer and expiry and returns the claims.
func ParseSessionToken(secret []byte, issuer string, raw string, now time.Time) (*SessionClaims, error) {
	if raw == "" || len(secret) == 0 {
		return nil, ErrInvalidToken
	}
	claims := &SessionClaims{}
	token, errParse := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if errParse != nil || token == nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
