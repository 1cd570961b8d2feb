package users

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborline/sms-backend/pkg/db/models"
	"github.com/harborline/sms-backend/pkg/enums"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListActiveDecisionMakers returns the active users in the company holding a
// decision-maker role. An empty result is not an error.
func (r *Repository) ListActiveDecisionMakers(ctx context.Context, companyID uuid.UUID) ([]models.User, error) {
	var rows []models.User
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND is_active = ?", companyID, true).
		Where("role IN ?", enums.DecisionMakerRoles()).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
