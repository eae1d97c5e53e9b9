package models

import "time"

// Gift is a registry item that a guest can mark as purchased.
type Gift struct {
	ID string `gorm:"type:varchar(36);primaryKey"` // Primary key (UUID).

	Name        string  `gorm:"type:varchar(200);not null;index"` // Item name.
	Price       string  `gorm:"type:varchar(50);not null"`        // Display price.
	URL         *string `gorm:"type:text"`                        // Shop link.
	Image       string  `gorm:"type:text;not null"`               // Image path or URL.
	Description *string `gorm:"type:text"`                        // Sanitized description.

	Purchased     bool       `gorm:"not null;default:false;index"` // Whether someone bought it.
	PurchasedBy   *string    `gorm:"type:varchar(255)"`            // Purchaser display name from the session.
	PurchasedByID *string    `gorm:"type:varchar(36);index"`       // Purchaser user ID from the session.
	PurchasedAt   *time.Time // Purchase timestamp.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
