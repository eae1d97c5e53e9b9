package ratelimit

import "strings"

// Action names used as bucket key prefixes.
const (
	ActionLogin = "login"
	ActionRSVP  = "rsvp"
	ActionGift  = "gift"
	ActionAdmin = "admin"
)

// LoginKey builds the per-credential bucket key for login attempts.
func LoginKey(email string) string {
	return ActionLogin + ":" + strings.ToLower(strings.TrimSpace(email))
}

// ActionKey builds the per-principal bucket key for an action.
func ActionKey(action, principalID string) string {
	action = strings.TrimSpace(action)
	principalID = strings.TrimSpace(principalID)
	if action == "" || principalID == "" {
		return ""
	}
	return action + ":" + principalID
}
