package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath       = "CONFIG_PATH"
	EnvDBConnection     = "DB_CONNECTION"
	EnvJWTSecret        = "JWT_SECRET"
	EnvJWTExpiry        = "JWT_EXPIRY"
	EnvCronSecret       = "CRON_SECRET"
	EnvRateLimitBackend = "RATE_LIMIT_BACKEND"
	EnvRedisAddr        = "REDIS_ADDR"
	EnvLogLevel         = "LOG_LEVEL"
	EnvPort             = "PORT"
)

// AppConfig holds resolved application configuration values.
type AppConfig struct {
	ConfigPath string
}

// LoadFromEnv loads app config from environment variables.
func LoadFromEnv() (AppConfig, error) {
	return AppConfig{ConfigPath: ResolveConfigPath(os.Getenv(EnvConfigPath))}, nil
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// ErrMissingDatabaseDSN indicates no database DSN is present in the config file.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database-dsn` or `database.dsn` in config file)")

// ErrMissingJWTSecret indicates no session signing secret is configured.
var ErrMissingJWTSecret = errors.New("missing jwt secret (set `jwt.secret` in config file or JWT_SECRET)")

// JWTConfig holds session token signing settings.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
	Issuer string        `yaml:"issuer"`
}

// SessionConfig holds session cookie and redirect settings.
type SessionConfig struct {
	CookieName   string `yaml:"cookie-name"`
	SecureCookie bool   `yaml:"secure-cookie"`
	LoginPath    string `yaml:"login-path"`
	LandingPath  string `yaml:"landing-path"`
}

// QuotaConfig is an attempt cap over a fixed window.
type QuotaConfig struct {
	Max    int           `yaml:"max"`
	Window time.Duration `yaml:"window"`
}

// RateLimitConfig selects the counter store and default quotas.
type RateLimitConfig struct {
	Backend       string      `yaml:"backend"`
	RedisAddr     string      `yaml:"redis-addr"`
	RedisPassword string      `yaml:"redis-password"`
	RedisDB       int         `yaml:"redis-db"`
	RedisPrefix   string      `yaml:"redis-prefix"`
	Login         QuotaConfig `yaml:"login"`
	RSVP          QuotaConfig `yaml:"rsvp"`
	Gift          QuotaConfig `yaml:"gift"`
	Admin         QuotaConfig `yaml:"admin"`
}

// ServerConfig holds listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoggingConfig holds log level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Rate limit backends.
const (
	BackendDatabase = "database"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// fileConfig maps the full YAML document.
type fileConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	DatabaseDSN string `yaml:"database-dsn"`
	Database    struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	JWT        JWTConfig       `yaml:"jwt"`
	Session    SessionConfig   `yaml:"session"`
	RateLimit  RateLimitConfig `yaml:"rate-limit"`
	Logging    LoggingConfig   `yaml:"logging"`
	CronSecret string          `yaml:"cron-secret"`
}

// readFileConfig parses the config file. A missing file yields an empty config.
func readFileConfig(configPath string) (fileConfig, error) {
	var cfg fileConfig
	data, errRead := os.ReadFile(configPath)
	if errRead != nil {
		if errors.Is(errRead, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", errRead)
	}
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return cfg, fmt.Errorf("parse config file: %w", errUnmarshal)
	}
	return cfg, nil
}

// LoadDatabaseDSN reads the database DSN from the YAML config file.
func LoadDatabaseDSN(configPath string) (string, error) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		return dsn, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("read config file: %w", err)
	}

	var cfg fileConfig
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return "", fmt.Errorf("parse config file: %w", errUnmarshal)
	}

	if dsn := strings.TrimSpace(cfg.DatabaseDSN); dsn != "" {
		return dsn, nil
	}
	if dsn := strings.TrimSpace(cfg.Database.DSN); dsn != "" {
		return dsn, nil
	}
	return "", ErrMissingDatabaseDSN
}

// defaultJWTExpiry is used when the config omits or invalidates JWT expiry.
const defaultJWTExpiry = 7 * 24 * time.Hour

const defaultJWTIssuer = "invitation"

// LoadJWTConfig loads session token settings from the YAML config file.
func LoadJWTConfig(configPath string) (JWTConfig, error) {
	result := JWTConfig{Expiry: defaultJWTExpiry}

	cfg, errRead := readFileConfig(configPath)
	if errRead == nil {
		result = cfg.JWT
	}

	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		result.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			result.Expiry = expiry
		}
	}

	if result.Expiry <= 0 {
		result.Expiry = defaultJWTExpiry
	}
	if strings.TrimSpace(result.Issuer) == "" {
		result.Issuer = defaultJWTIssuer
	}
	result.Secret = strings.TrimSpace(result.Secret)
	if result.Secret == "" {
		return result, ErrMissingJWTSecret
	}
	return result, nil
}

// LoadSessionConfig loads cookie and redirect settings.
func LoadSessionConfig(configPath string) (SessionConfig, error) {
	cfg, errRead := readFileConfig(configPath)
	if errRead != nil {
		return SessionConfig{}, errRead
	}
	result := cfg.Session
	if strings.TrimSpace(result.CookieName) == "" {
		result.CookieName = "session_token"
	}
	if strings.TrimSpace(result.LoginPath) == "" {
		result.LoginPath = "/login"
	}
	if strings.TrimSpace(result.LandingPath) == "" {
		result.LandingPath = "/"
	}
	return result, nil
}

// Default quotas applied when the config omits them.
var (
	DefaultLoginQuota = QuotaConfig{Max: 5, Window: 15 * time.Minute}
	DefaultRSVPQuota  = QuotaConfig{Max: 10, Window: time.Hour}
	DefaultGiftQuota  = QuotaConfig{Max: 10, Window: time.Hour}
	DefaultAdminQuota = QuotaConfig{Max: 60, Window: time.Minute}
)

const defaultRedisPrefix = "invitation:rl"

// LoadRateLimitConfig loads counter store selection and default quotas.
func LoadRateLimitConfig(configPath string) (RateLimitConfig, error) {
	cfg, errRead := readFileConfig(configPath)
	if errRead != nil {
		return RateLimitConfig{}, errRead
	}
	result := cfg.RateLimit

	if backend := strings.TrimSpace(os.Getenv(EnvRateLimitBackend)); backend != "" {
		result.Backend = backend
	}
	if addr := strings.TrimSpace(os.Getenv(EnvRedisAddr)); addr != "" {
		result.RedisAddr = addr
	}

	result.Backend = strings.ToLower(strings.TrimSpace(result.Backend))
	switch result.Backend {
	case "":
		result.Backend = BackendDatabase
	case BackendDatabase, BackendMemory:
	case BackendRedis:
		if strings.TrimSpace(result.RedisAddr) == "" {
			return result, errors.New("rate-limit: redis backend requires redis-addr")
		}
	default:
		return result, fmt.Errorf("rate-limit: unsupported backend: %s", result.Backend)
	}
	if strings.TrimSpace(result.RedisPrefix) == "" {
		result.RedisPrefix = defaultRedisPrefix
	}
	if result.RedisDB < 0 {
		result.RedisDB = 0
	}

	result.Login = withQuotaDefault(result.Login, DefaultLoginQuota)
	result.RSVP = withQuotaDefault(result.RSVP, DefaultRSVPQuota)
	result.Gift = withQuotaDefault(result.Gift, DefaultGiftQuota)
	result.Admin = withQuotaDefault(result.Admin, DefaultAdminQuota)
	return result, nil
}

func withQuotaDefault(q, def QuotaConfig) QuotaConfig {
	if q.Max <= 0 {
		q.Max = def.Max
	}
	if q.Window <= 0 {
		q.Window = def.Window
	}
	return q
}

// LoadServerConfig loads the listener host and port; defaultPort applies when unset.
func LoadServerConfig(configPath string, defaultPort int) (ServerConfig, error) {
	cfg, errRead := readFileConfig(configPath)
	if errRead != nil {
		return ServerConfig{}, errRead
	}
	result := ServerConfig{Host: strings.TrimSpace(cfg.Host), Port: cfg.Port}
	if raw := strings.TrimSpace(os.Getenv(EnvPort)); raw != "" {
		if port, errParse := strconv.Atoi(raw); errParse == nil {
			result.Port = port
		}
	}
	if result.Port <= 0 {
		result.Port = defaultPort
	}
	if result.Port <= 0 || result.Port > 65535 {
		return result, fmt.Errorf("invalid port: %d", result.Port)
	}
	return result, nil
}

// LoadLoggingConfig loads log level and format.
func LoadLoggingConfig(configPath string) LoggingConfig {
	cfg, _ := readFileConfig(configPath)
	result := cfg.Logging
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		result.Level = level
	}
	if strings.TrimSpace(result.Level) == "" {
		result.Level = "info"
	}
	if strings.TrimSpace(result.Format) == "" {
		result.Format = "text"
	}
	return result
}

// LoadCronSecret returns the bearer secret guarding the cleanup endpoint.
// An empty secret disables the endpoint.
func LoadCronSecret(configPath string) string {
	if secret := strings.TrimSpace(os.Getenv(EnvCronSecret)); secret != "" {
		return secret
	}
	cfg, _ := readFileConfig(configPath)
	return strings.TrimSpace(cfg.CronSecret)
}
