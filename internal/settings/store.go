package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blissevent/invitation/internal/apperr"
	"github.com/blissevent/invitation/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store reads and writes settings rows.
type Store struct {
	db *gorm.DB
}

// NewStore constructs a Store backed by GORM.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Value returns the raw JSON value for key, or false when unset.
func (s *Store) Value(ctx context.Context, key string) (json.RawMessage, bool, error) {
	if s == nil || s.db == nil {
		return nil, false, nil
	}
	var row models.Setting
	if errFind := s.db.WithContext(ctx).Where("key = ?", strings.TrimSpace(key)).Take(&row).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("settings: find %s: %w: %w", key, apperr.ErrStoreUnavailable, errFind)
	}
	return json.RawMessage(row.Value), true, nil
}

// List returns all settings ordered by key.
func (s *Store) List(ctx context.Context) ([]models.Setting, error) {
	var rows []models.Setting
	if errFind := s.db.WithContext(ctx).Order("key ASC").Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("settings: list: %w: %w", apperr.ErrStoreUnavailable, errFind)
	}
	return rows, nil
}

// Upsert validates and stores a value for key.
func (s *Store) Upsert(ctx context.Context, key string, value json.RawMessage) (models.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return models.Setting{}, apperr.NewValidationError("key", "key is required")
	}
	if !json.Valid(value) {
		return models.Setting{}, apperr.NewValidationError("value", "value must be valid json")
	}
	if errValidate := ValidateValue(key, value); errValidate != nil {
		return models.Setting{}, errValidate
	}
	row := models.Setting{
		Key:       key,
		Value:     models.SettingValue(value),
		UpdatedAt: time.Now().UTC(),
	}
	if errUpsert := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error; errUpsert != nil {
		return models.Setting{}, fmt.Errorf("settings: upsert %s: %w: %w", key, apperr.ErrStoreUnavailable, errUpsert)
	}
	return row, nil
}

// SiteName returns the configured site name or the default.
func (s *Store) SiteName(ctx context.Context) string {
	raw, ok, errValue := s.Value(ctx, SiteNameKey)
	if errValue != nil || !ok {
		return DefaultSiteName
	}
	if name, okParse := ParseString(raw); okParse && name != "" {
		return name
	}
	return DefaultSiteName
}

// ValidateValue rejects malformed values for keys with a known shape.
func ValidateValue(key string, value json.RawMessage) error {
	switch {
	case key == SiteNameKey:
		if name, ok := ParseString(value); !ok || name == "" {
			return apperr.NewValidationError("value", "value must be a non-empty string")
		}
	case strings.HasPrefix(key, "RATE_LIMIT_") && (strings.HasSuffix(key, "_MAX") || strings.HasSuffix(key, "_WINDOW_SECONDS")):
		if _, ok := ParsePositiveInt(value); !ok {
			return apperr.NewValidationError("value", "value must be a positive integer")
		}
	}
	return nil
}
