package models

import "time"

// RateLimit is a fixed-window attempt counter for one bucket key.
type RateLimit struct {
	BucketKey string    `gorm:"column:bucket_key;type:varchar(320);primaryKey"` // Bucket key, e.g. login:<email>.
	Attempts  int       `gorm:"not null;default:0"`                             // Attempts in the current window.
	ResetAt   time.Time `gorm:"not null;index"`                                 // Window end.
	UpdatedAt time.Time `gorm:"not null"`                                       // Last write timestamp.
}

// TableName pins the table name used by raw upsert expressions.
func (RateLimit) TableName() string { return "rate_limits" }
