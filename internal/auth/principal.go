package auth

import "github.com/blissevent/invitation/internal/models"

// Principal is the authenticated actor carried by a session.
type Principal struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Role models.UserRole `json:"role"`
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// PrincipalFromUser builds a Principal from a credential record.
func PrincipalFromUser(user models.User) Principal {
	return Principal{ID: user.ID, Name: user.Name, Role: user.Role}
}
