package models

import "time"

// UserRole enumerates principal roles.
type UserRole string

// UserRole constants define the supported roles.
const (
	// RoleGuest is an invited guest.
	RoleGuest UserRole = "guest"
	// RoleAdmin manages the registry and reads RSVPs.
	RoleAdmin UserRole = "admin"
)

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	return r == RoleGuest || r == RoleAdmin
}

// User represents a credential record stored in the database.
type User struct {
	ID string `gorm:"type:varchar(36);primaryKey"` // Primary key (UUID).

	Email    string `gorm:"type:varchar(320);not null;uniqueIndex"` // Unique login email, lower-cased.
	Name     string `gorm:"type:varchar(255);not null"`             // Display name.
	Password string `gorm:"type:text;not null"`                     // Salted bcrypt hash.

	Role      UserRole `gorm:"type:varchar(16);not null;default:'guest'"` // Principal role.
	MaxGuests int      `gorm:"not null;default:1"`                        // Guest allowance for the RSVP.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
