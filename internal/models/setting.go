package models

import (
	"database/sql/driver"
	"strconv"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Setting stores one admin-tunable configuration value as JSON.
type Setting struct {
	Key       string       `gorm:"type:varchar(128);primaryKey"` // Setting key, e.g. SITE_NAME.
	Value     SettingValue `gorm:"not null"`                     // JSON-encoded value.
	UpdatedAt time.Time    `gorm:"not null;autoUpdateTime"`      // Last update timestamp.
}

// SettingValue is a JSON document stored as JSONB on PostgreSQL and TEXT on SQLite.
// A JSON column on SQLite gets numeric affinity and turns "3" into an integer.
type SettingValue datatypes.JSON

// GormDBDataType picks the column type per dialect.
func (SettingValue) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db != nil && db.Dialector != nil && db.Dialector.Name() == "postgres" {
		return "JSONB"
	}
	return "TEXT"
}

// Value implements driver.Valuer.
func (v SettingValue) Value() (driver.Value, error) {
	return datatypes.JSON(v).Value()
}

// Scan implements sql.Scanner. Numeric values from columns created with numeric affinity are accepted.
func (v *SettingValue) Scan(src any) error {
	switch n := src.(type) {
	case int64:
		*v = SettingValue(strconv.FormatInt(n, 10))
		return nil
	case float64:
		*v = SettingValue(strconv.FormatFloat(n, 'g', -1, 64))
		return nil
	}
	return (*datatypes.JSON)(v).Scan(src)
}

// MarshalJSON emits the stored document as-is.
func (v SettingValue) MarshalJSON() ([]byte, error) {
	return datatypes.JSON(v).MarshalJSON()
}

// UnmarshalJSON stores the raw document.
func (v *SettingValue) UnmarshalJSON(data []byte) error {
	return (*datatypes.JSON)(v).UnmarshalJSON(data)
}
