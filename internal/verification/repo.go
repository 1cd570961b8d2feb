package verification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborline/sms-backend/internal/equipment"
	"github.com/harborline/sms-backend/pkg/db/models"
)

// Repository persists verification events and the append-only quality score
// audit trail.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a verification repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateVerificationWithTx inserts a completed verification event inside an
// existing transaction.
func (r *Repository) CreateVerificationWithTx(tx *gorm.DB, verification *models.EquipmentVerification) error {
	return tx.Create(verification).Error
}

// CreateQualityScoreRecord appends one audit entry. Records are never
// updated or deleted.
func (r *Repository) CreateQualityScoreRecord(ctx context.Context, record *models.QualityScoreRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// CreateQualityScoreRecordWithTx appends one audit entry inside an existing
// transaction.
func (r *Repository) CreateQualityScoreRecordWithTx(tx *gorm.DB, record *models.QualityScoreRecord) error {
	return tx.Create(record).Error
}

// ListHistory returns a tenant's verification events, newest first, with the
// total count for pagination.
func (r *Repository) ListHistory(ctx context.Context, filter equipment.ListFilter, equipmentID *uuid.UUID, limit, offset int) ([]models.EquipmentVerification, int64, error) {
	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).
			Model(&models.EquipmentVerification{}).
			Joins("JOIN equipment ON equipment.id = equipment_verifications.equipment_id").
			Joins("JOIN vessels ON vessels.id = equipment.vessel_id").
			Where("vessels.company_id = ?", filter.CompanyID)
		if filter.VesselID != nil {
			query = query.Where("equipment.vessel_id = ?", *filter.VesselID)
		}
		if equipmentID != nil {
			query = query.Where("equipment_verifications.equipment_id = ?", *equipmentID)
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.EquipmentVerification
	err := scoped().
		Order("equipment_verifications.verification_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CountVerificationsSince counts a tenant's completed verifications on or
// after the cutoff.
func (r *Repository) CountVerificationsSince(ctx context.Context, filter equipment.ListFilter, since time.Time) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.EquipmentVerification{}).
		Joins("JOIN equipment ON equipment.id = equipment_verifications.equipment_id").
		Joins("JOIN vessels ON vessels.id = equipment.vessel_id").
		Where("vessels.company_id = ?", filter.CompanyID).
		Where("equipment_verifications.verification_date >= ?", since)
	if filter.VesselID != nil {
		query = query.Where("equipment.vessel_id = ?", *filter.VesselID)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}
