package app

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// defaultSQLitePath is the default SQLite database file name.
const defaultSQLitePath = "invitation.db"

// BuildDSN builds a database DSN from the init request.
func BuildDSN(req InitRequest) (string, error) {
	switch strings.ToLower(strings.TrimSpace(req.DatabaseType)) {
	case "postgres":
		sslMode := req.DatabaseSSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(req.DatabaseUser, req.DatabasePassword),
			Host:     fmt.Sprintf("%s:%d", req.DatabaseHost, req.DatabasePort),
			Path:     "/" + req.DatabaseName,
			RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
		}
		return u.String(), nil
	case "", "sqlite":
		return buildSQLiteDSN(req.DatabasePath), nil
	default:
		return "", fmt.Errorf("unsupported database type")
	}
}

// buildSQLiteDSN constructs a SQLite DSN with WAL and foreign keys enabled.
func buildSQLiteDSN(path string) string {
	dsn := strings.TrimSpace(path)
	if dsn == "" {
		dsn = defaultSQLitePath
	}
	if !strings.HasPrefix(strings.ToLower(dsn), "file:") {
		dsn = "file:" + dsn
	}
	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}
	return dsn + separator + strings.Join([]string{
		"_pragma=busy_timeout(5000)",
		"_pragma=journal_mode(WAL)",
		"_pragma=foreign_keys(1)",
		"_pragma=synchronous(NORMAL)",
	}, "&")
}

// dsnSummary describes a DSN without its credentials.
type dsnSummary struct {
	DatabaseType    string
	DatabaseHost    string
	DatabasePort    int
	DatabaseUser    string
	DatabaseName    string
	DatabaseSSLMode string
	DatabasePath    string
}

func (s dsnSummary) fields() log.Fields {
	if s.DatabaseType == "sqlite" {
		return log.Fields{"database": s.DatabaseType, "path": s.DatabasePath}
	}
	return log.Fields{
		"database": s.DatabaseType,
		"host":     s.DatabaseHost,
		"port":     s.DatabasePort,
		"user":     s.DatabaseUser,
		"name":     s.DatabaseName,
		"sslmode":  s.DatabaseSSLMode,
	}
}

// summarizeDSN parses a DSN into loggable parts. Passwords are never returned.
func summarizeDSN(dsn string) (dsnSummary, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return dsnSummary{}, fmt.Errorf("empty dsn")
	}

	lowered := strings.ToLower(trimmed)
	if !strings.HasPrefix(lowered, "postgres://") && !strings.HasPrefix(lowered, "postgresql://") {
		pathPart := trimmed
		if strings.HasPrefix(lowered, "file:") {
			pathPart = trimmed[len("file:"):]
		}
		pathPart, _, _ = strings.Cut(pathPart, "?")
		return dsnSummary{DatabaseType: "sqlite", DatabasePath: strings.TrimSpace(pathPart)}, nil
	}

	u, errParse := url.Parse(trimmed)
	if errParse != nil {
		return dsnSummary{}, fmt.Errorf("parse dsn: %w", errParse)
	}
	port := 5432
	if rawPort := strings.TrimSpace(u.Port()); rawPort != "" {
		parsedPort, errPort := strconv.Atoi(rawPort)
		if errPort != nil {
			return dsnSummary{}, fmt.Errorf("parse port: %w", errPort)
		}
		port = parsedPort
	}
	username := ""
	if u.User != nil {
		username = strings.TrimSpace(u.User.Username())
	}
	sslMode := strings.TrimSpace(u.Query().Get("sslmode"))
	if sslMode == "" {
		sslMode = "disable"
	}
	return dsnSummary{
		DatabaseType:    "postgres",
		DatabaseHost:    strings.TrimSpace(u.Hostname()),
		DatabasePort:    port,
		DatabaseUser:    username,
		DatabaseName:    strings.TrimSpace(strings.TrimPrefix(u.Path, "/")),
		DatabaseSSLMode: sslMode,
	}, nil
}
