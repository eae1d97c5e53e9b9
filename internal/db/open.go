package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to PostgreSQL for postgres:// or key=value DSNs and to SQLite otherwise.
func Open(dsn string) (*gorm.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("db: empty dsn")
	}

	cfg := &gorm.Config{
		Logger:  newGormLogger(log.WithField("component", "gorm"), logger.Warn, 200*time.Millisecond),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	dialector := sqlite.Open(dsn)
	if isPostgresDSN(dsn) {
		dialector = postgres.Open(dsn)
	}
	conn, errOpen := gorm.Open(dialector, cfg)
	if errOpen != nil {
		return nil, fmt.Errorf("db: open %s: %w", dialector.Name(), errOpen)
	}
	if !IsSQLite(conn) {
		return conn, nil
	}

	sqlDB, errDB := conn.DB()
	if errDB != nil {
		return nil, fmt.Errorf("db: sqlite handle: %w", errDB)
	}
	// SQLite allows one writer; a single connection serializes the limiter upserts.
	sqlDB.SetMaxOpenConns(1)
	if errPragma := conn.Exec("PRAGMA busy_timeout = 5000").Error; errPragma != nil {
		return nil, fmt.Errorf("db: sqlite busy timeout: %w", errPragma)
	}
	return conn, nil
}

// Close releases the underlying connection pool.
func Close(conn *gorm.DB) error {
	if conn == nil {
		return nil
	}
	sqlDB, errDB := conn.DB()
	if errDB != nil {
		return errDB
	}
	return sqlDB.Close()
}

func isPostgresDSN(dsn string) bool {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return true
	}
	return strings.Contains(lower, "host=") && strings.Contains(lower, "dbname=")
}
