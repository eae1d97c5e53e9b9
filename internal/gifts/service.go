package gifts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blissevent/invitation/internal/apperr"
	"github.com/blissevent/invitation/internal/auth"
	"github.com/blissevent/invitation/internal/models"
	"github.com/blissevent/invitation/internal/sanitize"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// anonymousPurchaser is stored when the principal has no display name.
const anonymousPurchaser = "Anonymous"

// CreateInput is a validated registry item before sanitization.
type CreateInput struct {
	Name        string
	Price       string
	URL         *string
	Image       string
	Description *string
}

// Service manages the gift registry.
type Service struct {
	db    *gorm.DB
	nowFn func() time.Time
}

// NewService constructs a Service. A nil nowFn uses the wall clock.
func NewService(db *gorm.DB, nowFn func() time.Time) *Service {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{db: db, nowFn: nowFn}
}

// List returns all gifts ordered by name.
func (s *Service) List(ctx context.Context) ([]models.Gift, error) {
	var rows []models.Gift
	if errFind := s.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("gifts: list: %w: %w", apperr.ErrStoreUnavailable, errFind)
	}
	return rows, nil
}

// Create adds a registry item.
func (s *Service) Create(ctx context.Context, in CreateInput) (models.Gift, error) {
	name := sanitize.Text(in.Name)
	price := sanitize.Text(in.Price)
	image := strings.TrimSpace(in.Image)
	var fields []apperr.FieldError
	if name == "" {
		fields = append(fields, apperr.FieldError{Field: "name", Message: "is required"})
	}
	if price == "" {
		fields = append(fields, apperr.FieldError{Field: "price", Message: "is required"})
	}
	if image == "" {
		fields = append(fields, apperr.FieldError{Field: "image", Message: "is required"})
	}
	if len(fields) > 0 {
		return models.Gift{}, &apperr.ValidationError{Fields: fields}
	}

	var url *string
	if in.URL != nil {
		if trimmed := strings.TrimSpace(*in.URL); trimmed != "" {
			url = &trimmed
		}
	}
	now := s.nowFn().UTC()
	gift := models.Gift{
		ID:          uuid.NewString(),
		Name:        name,
		Price:       price,
		URL:         url,
		Image:       image,
		Description: sanitize.OptionalFormatted(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if errCreate := s.db.WithContext(ctx).Create(&gift).Error; errCreate != nil {
		return models.Gift{}, fmt.Errorf("gifts: create: %w: %w", apperr.ErrStoreUnavailable, errCreate)
	}
	return gift, nil
}

// Delete removes a registry item.
func (s *Service) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", strings.TrimSpace(id)).Delete(&models.Gift{})
	if res.Error != nil {
		return fmt.Errorf("gifts: delete: %w: %w", apperr.ErrStoreUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("gifts: delete %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// Purchase marks a gift as bought by the principal. The update only applies
// to an unpurchased gift, so two buyers cannot both succeed.
func (s *Service) Purchase(ctx context.Context, principal auth.Principal, id string) (models.Gift, error) {
	id = strings.TrimSpace(id)
	if principal.ID == "" {
		return models.Gift{}, apperr.ErrUnauthorized
	}
	purchaser := strings.TrimSpace(principal.Name)
	if purchaser == "" {
		purchaser = anonymousPurchaser
	}
	now := s.nowFn().UTC()

	conn := s.db.WithContext(ctx)
	res := conn.Model(&models.Gift{}).
		Where("id = ? AND purchased = ?", id, false).
		Updates(map[string]any{
			"purchased":       true,
			"purchased_by":    purchaser,
			"purchased_by_id": principal.ID,
			"purchased_at":    now,
			"updated_at":      now,
		})
	if res.Error != nil {
		return models.Gift{}, fmt.Errorf("gifts: purchase: %w: %w", apperr.ErrStoreUnavailable, res.Error)
	}

	var gift models.Gift
	if errFind := conn.Where("id = ?", id).Take(&gift).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return models.Gift{}, fmt.Errorf("gifts: purchase %s: %w", id, apperr.ErrNotFound)
		}
		return models.Gift{}, fmt.Errorf("gifts: purchase: %w: %w", apperr.ErrStoreUnavailable, errFind)
	}
	if res.RowsAffected == 0 {
		return models.Gift{}, fmt.Errorf("gifts: purchase %s: already purchased: %w", id, apperr.ErrConflict)
	}
	return gift, nil
}
