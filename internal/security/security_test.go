package security

import (
	"strings"
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse" {
		t.Fatalf("expected hash to differ from plain text")
	}
	if !CheckPassword(hash, "correct horse") {
		t.Fatalf("expected password to match")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("expected wrong password to fail")
	}
	if CheckPassword("not-a-hash", "correct horse") {
		t.Fatalf("expected malformed hash to fail")
	}
	if CompareDummy("anything") {
		t.Fatalf("expected dummy compare to fail")
	}
}

func TestSessionToken_RoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	token, err := IssueSessionToken(secret, "invitation", SessionClaims{UserID: "u-1", Name: "Ann", Role: "guest"}, now, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := ParseSessionToken(secret, "invitation", token, now.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "u-1" || claims.Name != "Ann" || claims.Role != "guest" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestSessionToken_Rejects(t *testing.T) {
	secret := []byte("test-secret")
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	token, err := IssueSessionToken(secret, "invitation", SessionClaims{UserID: "u-1", Role: "guest"}, now, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, errParse := ParseSessionToken(secret, "invitation", token, now.Add(2*time.Hour)); errParse != ErrInvalidToken {
		t.Fatalf("expected expired token to fail, got %v", errParse)
	}
	if _, errParse := ParseSessionToken([]byte("other"), "invitation", token, now); errParse != ErrInvalidToken {
		t.Fatalf("expected wrong secret to fail, got %v", errParse)
	}
	if _, errParse := ParseSessionToken(secret, "someone-else", token, now); errParse != ErrInvalidToken {
		t.Fatalf("expected wrong issuer to fail, got %v", errParse)
	}

	parts := strings.Split(token, ".")
	payload := []byte(parts[1])
	mid := len(payload) / 2
	if payload[mid] == 'A' {
		payload[mid] = 'B'
	} else {
		payload[mid] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]
	if _, errParse := ParseSessionToken(secret, "invitation", tampered, now); errParse != ErrInvalidToken {
		t.Fatalf("expected tampered token to fail, got %v", errParse)
	}

	if _, errParse := ParseSessionToken(secret, "invitation", "", now); errParse != ErrInvalidToken {
		t.Fatalf("expected empty token to fail, got %v", errParse)
	}
}

func TestGenerateRandomString(t *testing.T) {
	a, err := GenerateRandomString(16)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, _ := GenerateRandomString(16)
	if len(a) != 32 || a == b {
		t.Fatalf("unexpected random strings %q %q", a, b)
	}
	if _, errGen := GenerateRandomString(0); errGen == nil {
		t.Fatalf("expected error for zero length")
	}
}
