package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blissevent/invitation/internal/auth"
	"github.com/blissevent/invitation/internal/config"
	"github.com/blissevent/invitation/internal/db"
	"github.com/blissevent/invitation/internal/models"
	"github.com/blissevent/invitation/internal/security"
	internalsettings "github.com/blissevent/invitation/internal/settings"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// InitRequest contains parameters for initial system setup.
type InitRequest struct {
	DatabaseType     string
	DatabaseHost     string
	DatabasePort     int
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string
	DatabasePath     string
	DatabaseSSLMode  string
	SiteName         string
	AdminEmail       string
	AdminName        string
	AdminPassword    string
}

// CreateUserParams holds inputs for account creation.
type CreateUserParams struct {
	Email     string
	Name      string
	Password  string
	Role      models.UserRole
	MaxGuests int
}

// ErrConfigExists rejects init when a config file is already present.
var ErrConfigExists = errors.New("config file already exists")

// minPasswordLength applies to accounts created from the CLI.
const minPasswordLength = 8

// ConfigExists reports whether the config file exists at the path.
func ConfigExists(configPath string) bool {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return false
	}
	return true
}

// TestDatabaseConnection validates that the DSN can connect and ping.
func TestDatabaseConnection(dsn string) error {
	conn, err := db.Open(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql db: %w", err)
	}
	defer func() {
		if errClose := sqlDB.Close(); errClose != nil {
			log.Errorf("sql db close error: %v", errClose)
		}
	}()
	return sqlDB.Ping()
}

// validateInitRequest normalizes and validates init input data.
func validateInitRequest(req *InitRequest) error {
	dbType := strings.ToLower(strings.TrimSpace(req.DatabaseType))
	if dbType == "" {
		dbType = "sqlite"
	}
	req.DatabaseType = dbType

	switch dbType {
	case "postgres":
		if strings.TrimSpace(req.DatabaseHost) == "" {
			return fmt.Errorf("database host is required")
		}
		if req.DatabasePort <= 0 {
			return fmt.Errorf("invalid database port")
		}
		if strings.TrimSpace(req.DatabaseUser) == "" {
			return fmt.Errorf("database username is required")
		}
		if strings.TrimSpace(req.DatabaseName) == "" {
			return fmt.Errorf("database name is required")
		}
	case "sqlite":
		if strings.TrimSpace(req.DatabasePath) == "" {
			req.DatabasePath = defaultSQLitePath
		}
	default:
		return fmt.Errorf("unsupported database type")
	}
	req.SiteName = strings.TrimSpace(req.SiteName)
	if req.SiteName == "" {
		req.SiteName = internalsettings.DefaultSiteName
	}
	req.AdminEmail = auth.NormalizeEmail(req.AdminEmail)
	if req.AdminEmail == "" {
		return fmt.Errorf("admin email is required")
	}
	req.AdminName = strings.TrimSpace(req.AdminName)
	if req.AdminName == "" {
		req.AdminName = "Admin"
	}
	if len(req.AdminPassword) < minPasswordLength {
		return fmt.Errorf("admin password must be at least %d characters", minPasswordLength)
	}
	return nil
}

// configFile maps YAML fields for the generated config file.
type configFile struct {
	Host        string       `yaml:"host"`
	Port        int          `yaml:"port"`
	DatabaseDSN string       `yaml:"database-dsn"`
	CronSecret  string       `yaml:"cron-secret"`
	JWT         jwtCfg       `yaml:"jwt"`
	RateLimit   rateLimitCfg `yaml:"rate-limit"`
	Logging     loggingCfg   `yaml:"logging"`
}

// jwtCfg holds session token settings for the generated config file.
type jwtCfg struct {
	Secret string `yaml:"secret"`
	Expiry string `yaml:"expiry"`
}

// rateLimitCfg holds the counter backend for the generated config file.
type rateLimitCfg struct {
	Backend string `yaml:"backend"`
}

// loggingCfg holds logging settings for the generated config file.
type loggingCfg struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// generateSecret creates a random hex secret.
func generateSecret() string {
	secret, err := security.GenerateRandomString(32)
	if err != nil {
		return "change-me-to-a-secure-random-string"
	}
	return secret
}

// WriteConfigFile writes the initial config file to disk.
func WriteConfigFile(configPath string, dsn string, port int) error {
	cfg := configFile{
		Port:        port,
		DatabaseDSN: dsn,
		CronSecret:  generateSecret(),
		JWT: jwtCfg{
			Secret: generateSecret(),
			Expiry: "168h",
		},
		RateLimit: rateLimitCfg{Backend: config.BackendDatabase},
		Logging:   loggingCfg{Level: "info", Format: "text"},
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	dir := filepath.Dir(configPath)
	if errMkdir := os.MkdirAll(dir, 0755); errMkdir != nil {
		return fmt.Errorf("create config dir: %w", errMkdir)
	}

	if errWrite := os.WriteFile(configPath, data, 0600); errWrite != nil {
		return fmt.Errorf("write config file: %w", errWrite)
	}

	return nil
}

// RunInit writes a starter config and creates the first admin account.
func RunInit(ctx context.Context, cfg config.AppConfig, req InitRequest, port int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	if ConfigExists(configPath) {
		return fmt.Errorf("%w: %s", ErrConfigExists, configPath)
	}
	if errValidate := validateInitRequest(&req); errValidate != nil {
		return errValidate
	}
	dsn, errBuild := BuildDSN(req)
	if errBuild != nil {
		return errBuild
	}
	if errTest := TestDatabaseConnection(dsn); errTest != nil {
		return fmt.Errorf("database connection failed: %w", errTest)
	}
	if errWrite := WriteConfigFile(configPath, dsn, port); errWrite != nil {
		return errWrite
	}

	errAdmin := CreateUser(ctx, dsn, CreateUserParams{
		Email:     req.AdminEmail,
		Name:      req.AdminName,
		Password:  req.AdminPassword,
		Role:      models.RoleAdmin,
		MaxGuests: 1,
	})
	if errAdmin == nil {
		errAdmin = upsertSiteName(dsn, req.SiteName)
	}
	if errAdmin != nil {
		if errRemove := os.Remove(configPath); errRemove != nil {
			log.Errorf("remove config file error: %v", errRemove)
		}
		return fmt.Errorf("create admin: %w", errAdmin)
	}
	log.WithField("config", configPath).Info("initialization completed")
	return nil
}

// CreateUser opens the database, migrates it and creates one account.
func CreateUser(ctx context.Context, dsn string, params CreateUserParams) error {
	conn, err := db.Open(dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close(conn) }()

	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return fmt.Errorf("migrate database: %w", errMigrate)
	}
	_, errCreate := CreateUserWithConn(ctx, conn, params)
	return errCreate
}

// CreateUserWithConn hashes the password and stores a new account.
func CreateUserWithConn(ctx context.Context, conn *gorm.DB, params CreateUserParams) (models.User, error) {
	if conn == nil {
		return models.User{}, fmt.Errorf("open database: nil connection")
	}
	if len(params.Password) < minPasswordLength {
		return models.User{}, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	role := params.Role
	if role == "" {
		role = models.RoleGuest
	}
	if !role.Valid() {
		return models.User{}, fmt.Errorf("unknown role: %s", role)
	}
	maxGuests := params.MaxGuests
	if maxGuests < 1 {
		maxGuests = 1
	}

	hashedPassword, errHash := security.HashPassword(params.Password)
	if errHash != nil {
		return models.User{}, fmt.Errorf("hash password: %w", errHash)
	}
	user := models.User{
		Email:     params.Email,
		Name:      params.Name,
		Password:  hashedPassword,
		Role:      role,
		MaxGuests: maxGuests,
	}
	if errCreate := auth.NewGormUserStore(conn).Create(ctx, &user); errCreate != nil {
		return models.User{}, fmt.Errorf("create user: %w", errCreate)
	}
	return user, nil
}

// upsertSiteName stores the SITE_NAME setting.
func upsertSiteName(dsn string, siteName string) error {
	conn, err := db.Open(dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close(conn) }()
	return upsertSiteNameSetting(conn, siteName)
}

// upsertSiteNameSetting stores the SITE_NAME setting in the database.
func upsertSiteNameSetting(conn *gorm.DB, siteName string) error {
	normalized := strings.TrimSpace(siteName)
	if normalized == "" {
		normalized = internalsettings.DefaultSiteName
	}
	payload, errMarshal := json.Marshal(normalized)
	if errMarshal != nil {
		return fmt.Errorf("db: marshal SITE_NAME setting: %w", errMarshal)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, errUpsert := internalsettings.NewStore(conn).Upsert(ctx, internalsettings.SiteNameKey, payload); errUpsert != nil {
		return fmt.Errorf("db: upsert SITE_NAME setting: %w", errUpsert)
	}
	return nil
}
