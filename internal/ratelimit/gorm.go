package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blissevent/invitation/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists counters in the rate_limits table.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore constructs a GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Find returns the counter row for key.
func (s *GormStore) Find(ctx context.Context, key string) (Counter, bool, error) {
	var row models.RateLimit
	if errFind := s.db.WithContext(ctx).Where("bucket_key = ?", key).Take(&row).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return Counter{}, false, nil
		}
		return Counter{}, false, fmt.Errorf("rate limit gorm: find: %w", errFind)
	}
	return counterFromRow(row), true, nil
}

// Hit upserts the counter in one statement: an expired or missing row restarts
// at 1 with a new reset time, an active row is incremented in place. The row is
// read back inside the same transaction.
func (s *GormStore) Hit(ctx context.Context, key string, window time.Duration, now time.Time) (Counter, error) {
	now = now.UTC()
	var row models.RateLimit
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fresh := models.RateLimit{
			BucketKey: key,
			Attempts:  1,
			ResetAt:   now.Add(window),
			UpdatedAt: now,
		}
		if errUpsert := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "bucket_key"}},
			DoUpdates: clause.Assignments(map[string]any{
				"attempts":   gorm.Expr("CASE WHEN rate_limits.reset_at <= ? THEN 1 ELSE rate_limits.attempts + 1 END", now),
				"reset_at":   gorm.Expr("CASE WHEN rate_limits.reset_at <= ? THEN excluded.reset_at ELSE rate_limits.reset_at END", now),
				"updated_at": now,
			}),
		}).Create(&fresh).Error; errUpsert != nil {
			return fmt.Errorf("upsert: %w", errUpsert)
		}
		if errRead := tx.Where("bucket_key = ?", key).Take(&row).Error; errRead != nil {
			return fmt.Errorf("read back: %w", errRead)
		}
		return nil
	})
	if errTx != nil {
		return Counter{}, fmt.Errorf("rate limit gorm: hit: %w", errTx)
	}
	return counterFromRow(row), nil
}

// DeleteExpired removes rows whose reset time is strictly before now.
func (s *GormStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("reset_at < ?", now.UTC()).Delete(&models.RateLimit{})
	if res.Error != nil {
		return 0, fmt.Errorf("rate limit gorm: delete expired: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func counterFromRow(row models.RateLimit) Counter {
	return Counter{Key: row.BucketKey, Attempts: row.Attempts, ResetAt: row.ResetAt.UTC()}
}
