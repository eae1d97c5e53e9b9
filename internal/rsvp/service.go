package rsvp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blissevent/invitation/internal/apperr"
	"github.com/blissevent/invitation/internal/auth"
	"github.com/blissevent/invitation/internal/models"
	"github.com/blissevent/invitation/internal/sanitize"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Input is a validated RSVP submission before sanitization.
type Input struct {
	Attending           bool
	Guests              int
	DietaryRestrictions *string
	Message             *string
}

// Own is a guest's view of their RSVP.
type Own struct {
	RSVP      *models.RSVP
	MaxGuests int
}

// Stats summarizes all replies.
type Stats struct {
	TotalResponses    int64 `json:"total_responses"`
	AttendingCount    int64 `json:"attending_count"`
	NotAttendingCount int64 `json:"not_attending_count"`
	TotalGuests       int64 `json:"total_guests"`
}

// Entry is an RSVP with the replying guest's name and email.
type Entry struct {
	models.RSVP
	Name  string
	Email string
}

// Service records and reports RSVPs.
type Service struct {
	db    *gorm.DB
	users auth.UserStore
	nowFn func() time.Time
}

// NewService constructs a Service. A nil nowFn uses the wall clock.
func NewService(db *gorm.DB, users auth.UserStore, nowFn func() time.Time) *Service {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{db: db, users: users, nowFn: nowFn}
}

// Submit stores the principal's reply, replacing any earlier one.
func (s *Service) Submit(ctx context.Context, principal auth.Principal, in Input) (models.RSVP, error) {
	user, found, errFind := s.users.FindByID(ctx, principal.ID)
	if errFind != nil {
		return models.RSVP{}, fmt.Errorf("rsvp: submit: %w", errFind)
	}
	if !found {
		return models.RSVP{}, fmt.Errorf("rsvp: submit: principal %s: %w", principal.ID, apperr.ErrUnauthorized)
	}
	maxGuests := user.MaxGuests
	if maxGuests < 1 {
		maxGuests = 1
	}
	if in.Guests < 1 {
		return models.RSVP{}, apperr.NewValidationError("guests", "must be at least 1")
	}
	if in.Guests > maxGuests {
		return models.RSVP{}, apperr.NewValidationError("guests", fmt.Sprintf("must be at most %d", maxGuests))
	}

	now := s.nowFn().UTC()
	row := models.RSVP{
		ID:                  uuid.NewString(),
		UserID:              principal.ID,
		Attending:           in.Attending,
		Guests:              in.Guests,
		DietaryRestrictions: sanitize.OptionalText(in.DietaryRestrictions),
		Message:             sanitize.OptionalText(in.Message),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	var stored models.RSVP
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errUpsert := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"attending":            row.Attending,
				"guests":               row.Guests,
				"dietary_restrictions": row.DietaryRestrictions,
				"message":              row.Message,
				"updated_at":           now,
			}),
		}).Create(&row).Error; errUpsert != nil {
			return errUpsert
		}
		// The generated ID is discarded when the row already exists.
		return tx.Where("user_id = ?", principal.ID).Take(&stored).Error
	})
	if errTx != nil {
		return models.RSVP{}, fmt.Errorf("rsvp: submit: %w: %w", apperr.ErrStoreUnavailable, errTx)
	}
	return stored, nil
}

// Get returns the principal's reply, if any, with their guest allowance.
func (s *Service) Get(ctx context.Context, principal auth.Principal) (Own, error) {
	user, found, errFind := s.users.FindByID(ctx, principal.ID)
	if errFind != nil {
		return Own{}, fmt.Errorf("rsvp: get: %w", errFind)
	}
	if !found {
		return Own{}, fmt.Errorf("rsvp: get: principal %s: %w", principal.ID, apperr.ErrUnauthorized)
	}
	out := Own{MaxGuests: user.MaxGuests}
	var row models.RSVP
	if errRow := s.db.WithContext(ctx).Where("user_id = ?", principal.ID).Take(&row).Error; errRow != nil {
		if errors.Is(errRow, gorm.ErrRecordNotFound) {
			return out, nil
		}
		return Own{}, fmt.Errorf("rsvp: get: %w: %w", apperr.ErrStoreUnavailable, errRow)
	}
	out.RSVP = &row
	return out, nil
}

// List returns every reply, newest first.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	var rows []models.RSVP
	if errFind := s.db.WithContext(ctx).Preload("User").Order("created_at DESC").Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("rsvp: list: %w: %w", apperr.ErrStoreUnavailable, errFind)
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entry := Entry{RSVP: row}
		if row.User != nil {
			entry.Name = row.User.Name
			entry.Email = row.User.Email
		}
		entry.RSVP.User = nil
		entries = append(entries, entry)
	}
	return entries, nil
}

// Stats counts replies and sums guests of those attending.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var out struct {
		Total        int64
		Attending    int64
		NotAttending int64
		Guests       int64
	}
	if errScan := s.db.WithContext(ctx).Model(&models.RSVP{}).Select(
		"COUNT(*) AS total, " +
			"COALESCE(SUM(CASE WHEN attending THEN 1 ELSE 0 END), 0) AS attending, " +
			"COALESCE(SUM(CASE WHEN attending THEN 0 ELSE 1 END), 0) AS not_attending, " +
			"COALESCE(SUM(CASE WHEN attending THEN guests ELSE 0 END), 0) AS guests",
	).Scan(&out).Error; errScan != nil {
		return Stats{}, fmt.Errorf("rsvp: stats: %w: %w", apperr.ErrStoreUnavailable, errScan)
	}
	return Stats{
		TotalResponses:    out.Total,
		AttendingCount:    out.Attending,
		NotAttendingCount: out.NotAttending,
		TotalGuests:       out.Guests,
	}, nil
}
