package db

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormLogger writes gorm messages through logrus at the matching level.
type gormLogger struct {
	entry         *log.Entry
	level         logger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger(entry *log.Entry, level logger.LogLevel, slowThreshold time.Duration) *gormLogger {
	return &gormLogger{entry: entry, level: level, slowThreshold: slowThreshold}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...any) {
	if l.level >= logger.Info {
		l.entry.Infof(msg, args...)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...any) {
	if l.level >= logger.Warn {
		l.entry.Warnf(msg, args...)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...any) {
	if l.level >= logger.Error {
		l.entry.Errorf(msg, args...)
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.entry.WithError(err).WithFields(log.Fields{"elapsed": elapsed, "rows": rows, "sql": sql}).Error("db: query failed")
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= logger.Warn:
		sql, rows := fc()
		l.entry.WithFields(log.Fields{"elapsed": elapsed, "rows": rows, "sql": sql}).Warn("db: slow query")
	case l.level >= logger.Info:
		sql, rows := fc()
		l.entry.WithFields(log.Fields{"elapsed": elapsed, "rows": rows, "sql": sql}).Debug("db: query")
	}
}
