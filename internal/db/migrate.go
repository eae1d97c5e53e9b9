package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blissevent/invitation/internal/models"
	internalsettings "github.com/blissevent/invitation/internal/settings"
	"gorm.io/gorm"
)

// Migrate runs database migrations for the current dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	switch DialectName(conn) {
	case DialectSQLite:
		return migrateSQLite(conn)
	case DialectPostgres, "":
		return migratePostgres(conn)
	default:
		return fmt.Errorf("db: unsupported dialect: %s", DialectName(conn))
	}
}

func autoMigrateModels(conn *gorm.DB) error {
	if errAutoMigrate := conn.AutoMigrate(
		&models.User{},
		&models.RSVP{},
		&models.Gift{},
		&models.RateLimit{},
		&models.Setting{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}
	return nil
}

// migratePostgres applies PostgreSQL-specific schema updates and constraints.
func migratePostgres(conn *gorm.DB) error {
	if errAutoMigrate := autoMigrateModels(conn); errAutoMigrate != nil {
		return errAutoMigrate
	}

	if errCheck := conn.Exec(`
		DO $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_rsvps_guests') THEN
				ALTER TABLE rsvps ADD CONSTRAINT chk_rsvps_guests CHECK (guests >= 0);
			END IF;
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_rate_limits_attempts') THEN
				ALTER TABLE rate_limits ADD CONSTRAINT chk_rate_limits_attempts CHECK (attempts >= 0);
			END IF;
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_users_role') THEN
				ALTER TABLE users ADD CONSTRAINT chk_users_role CHECK (role IN ('guest', 'admin'));
			END IF;
		END $$;
	`).Error; errCheck != nil {
		return fmt.Errorf("db: add check constraints: %w", errCheck)
	}
	if errEmailIdx := conn.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email))
	`).Error; errEmailIdx != nil {
		return fmt.Errorf("db: create users email index: %w", errEmailIdx)
	}

	return ensureSiteNameSetting(conn)
}

// migrateSQLite applies SQLite-specific schema updates.
func migrateSQLite(conn *gorm.DB) error {
	if errAutoMigrate := autoMigrateModels(conn); errAutoMigrate != nil {
		return errAutoMigrate
	}
	if errEmailIdx := conn.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email))
	`).Error; errEmailIdx != nil {
		return fmt.Errorf("db: create users email index: %w", errEmailIdx)
	}
	return ensureSiteNameSetting(conn)
}

func ensureSiteNameSetting(conn *gorm.DB) error {
	return ensureStringSetting(conn, internalsettings.SiteNameKey, internalsettings.DefaultSiteName)
}

// ensureStringSetting ensures a string setting exists and defaults when empty.
func ensureStringSetting(conn *gorm.DB, key string, value string) error {
	payload, errMarshal := json.Marshal(value)
	if errMarshal != nil {
		return fmt.Errorf("db: marshal %s setting: %w", key, errMarshal)
	}
	rawValue := json.RawMessage(payload)

	var existing models.Setting
	if errFind := conn.Where("key = ?", key).First(&existing).Error; errFind == nil {
		trimmed := strings.TrimSpace(string(existing.Value))
		if len(existing.Value) == 0 || trimmed == "" || trimmed == "null" {
			if errUpdate := conn.Model(&existing).Updates(map[string]any{
				"value":      models.SettingValue(rawValue),
				"updated_at": time.Now().UTC(),
			}).Error; errUpdate != nil {
				return fmt.Errorf("db: update %s setting: %w", key, errUpdate)
			}
		}
		return nil
	} else if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return fmt.Errorf("db: query %s setting: %w", key, errFind)
	}

	setting := models.Setting{
		Key:       key,
		Value:     models.SettingValue(rawValue),
		UpdatedAt: time.Now().UTC(),
	}
	if errCreate := conn.Create(&setting).Error; errCreate != nil {
		return fmt.Errorf("db: create %s setting: %w", key, errCreate)
	}
	return nil
}
