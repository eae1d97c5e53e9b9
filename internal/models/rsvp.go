package models

import "time"

// RSVP records one guest's reply. Each user owns at most one row.
type RSVP struct {
	ID string `gorm:"type:varchar(36);primaryKey"` // Primary key (UUID).

	UserID string `gorm:"type:varchar(36);not null;uniqueIndex"` // Owning user ID.
	User   *User  `gorm:"foreignKey:UserID"`                     // Owning user.

	Attending           bool    `gorm:"not null;default:false"` // Whether the guest attends.
	Guests              int     `gorm:"not null;default:1"`     // Party size including the guest.
	DietaryRestrictions *string `gorm:"type:text"`              // Sanitized dietary notes.
	Message             *string `gorm:"type:text"`              // Sanitized message to the couple.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// TableName keeps the plural form stable.
func (RSVP) TableName() string { return "rsvps" }
