package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blissevent/invitation/internal/apperr"
	"github.com/blissevent/invitation/internal/db"
	"github.com/blissevent/invitation/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStore reads credential records.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (models.User, bool, error)
	FindByID(ctx context.Context, id string) (models.User, bool, error)
}

// GormUserStore implements UserStore on the users table.
type GormUserStore struct {
	db *gorm.DB
}

// NewGormUserStore constructs a GormUserStore.
func NewGormUserStore(conn *gorm.DB) *GormUserStore {
	return &GormUserStore{db: conn}
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindByEmail looks up a user by normalized email.
func (s *GormUserStore) FindByEmail(ctx context.Context, email string) (models.User, bool, error) {
	return s.findOne(ctx, db.CaseInsensitiveEqualExpr("email"), NormalizeEmail(email))
}

// FindByID looks up a user by ID.
func (s *GormUserStore) FindByID(ctx context.Context, id string) (models.User, bool, error) {
	return s.findOne(ctx, "id = ?", strings.TrimSpace(id))
}

func (s *GormUserStore) findOne(ctx context.Context, query string, arg string) (models.User, bool, error) {
	var user models.User
	if errFind := s.db.WithContext(ctx).Where(query, arg).Take(&user).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return models.User{}, false, nil
		}
		return models.User{}, false, fmt.Errorf("auth: find user: %w: %w", apperr.ErrStoreUnavailable, errFind)
	}
	return user, true, nil
}

// Create inserts a credential record. The password must already be hashed.
func (s *GormUserStore) Create(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("auth: create user: nil user")
	}
	user.Email = NormalizeEmail(user.Email)
	user.Name = strings.TrimSpace(user.Name)
	if user.Email == "" {
		return apperr.NewValidationError("email", "email is required")
	}
	if user.Name == "" {
		return apperr.NewValidationError("name", "name is required")
	}
	if user.Role == "" {
		user.Role = models.RoleGuest
	}
	if !user.Role.Valid() {
		return apperr.NewValidationError("role", "role must be guest or admin")
	}
	if user.MaxGuests < 1 {
		return apperr.NewValidationError("maxGuests", "max guests must be at least 1")
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if errCreate := s.db.WithContext(ctx).Create(user).Error; errCreate != nil {
		if db.IsUniqueViolation(errCreate) {
			return fmt.Errorf("auth: create user %s: %w", user.Email, apperr.ErrConflict)
		}
		return fmt.Errorf("auth: create user: %w: %w", apperr.ErrStoreUnavailable, errCreate)
	}
	return nil
}
