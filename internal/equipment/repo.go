package equipment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborline/sms-backend/pkg/db/models"
)

// Repository exposes equipment persistence for the verification scheduler
// and services. Equipment rows themselves are created by the onboarding
// workflow; this repo only reads schedule fields and writes quality scores.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an equipment repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListFilter narrows equipment queries to a tenant and optionally one vessel.
type ListFilter struct {
	CompanyID uuid.UUID
	VesselID  *uuid.UUID
}

func (r *Repository) scoped(ctx context.Context, filter ListFilter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Joins("JOIN vessels ON vessels.id = equipment.vessel_id").
		Where("vessels.company_id = ?", filter.CompanyID)
	if filter.VesselID != nil {
		query = query.Where("equipment.vessel_id = ?", *filter.VesselID)
	}
	return query
}

// ListDueForVerification returns equipment whose next verification date is
// set and falls on or before the bound, with the owning vessel preloaded.
func (r *Repository) ListDueForVerification(ctx context.Context, before time.Time) ([]models.Equipment, error) {
	var rows []models.Equipment
	err := r.db.WithContext(ctx).
		Preload("Vessel").
		Where("next_verification_date IS NOT NULL AND next_verification_date <= ?", before).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListOverdue returns equipment past its verification date that still has a
// positive quality score.
func (r *Repository) ListOverdue(ctx context.Context, now time.Time) ([]models.Equipment, error) {
	var rows []models.Equipment
	err := r.db.WithContext(ctx).
		Where("next_verification_date IS NOT NULL AND next_verification_date < ?", now).
		Where("quality_score > 0").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListDueForCompany returns a tenant's equipment due on or before the bound,
// oldest due date first.
func (r *Repository) ListDueForCompany(ctx context.Context, filter ListFilter, before time.Time, overdueOnly bool, now time.Time) ([]models.Equipment, error) {
	query := r.scoped(ctx, filter).
		Preload("Vessel").
		Where("next_verification_date IS NOT NULL")
	if overdueOnly {
		query = query.Where("next_verification_date < ?", now)
	} else {
		query = query.Where("next_verification_date <= ?", before)
	}
	var rows []models.Equipment
	if err := query.Order("next_verification_date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads one equipment row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Equipment, error) {
	var row models.Equipment
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindForCompany loads one equipment row, enforcing tenant ownership through
// the vessel join.
func (r *Repository) FindForCompany(ctx context.Context, id, companyID uuid.UUID) (*models.Equipment, error) {
	var row models.Equipment
	err := r.db.WithContext(ctx).
		Joins("JOIN vessels ON vessels.id = equipment.vessel_id").
		Where("equipment.id = ? AND vessels.company_id = ?", id, companyID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdateQualityScore writes the new score for one equipment row.
func (r *Repository) UpdateQualityScore(ctx context.Context, id uuid.UUID, score int) error {
	return r.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Where("id = ?", id).
		UpdateColumn("quality_score", score).Error
}

// UpdateQualityScoreWithTx writes the new score inside an existing transaction.
func (r *Repository) UpdateQualityScoreWithTx(tx *gorm.DB, id uuid.UUID, score int) error {
	return tx.
		Model(&models.Equipment{}).
		Where("id = ?", id).
		UpdateColumn("quality_score", score).Error
}

// ScheduleUpdate carries the verification-schedule fields set by a manager.
type ScheduleUpdate struct {
	IntervalDays         int
	DegradationRate      *int
	NextVerificationDate time.Time
}

// UpdateSchedule applies a verification schedule to one equipment row.
func (r *Repository) UpdateSchedule(ctx context.Context, id uuid.UUID, update ScheduleUpdate) error {
	columns := map[string]any{
		"verification_interval_days": update.IntervalDays,
		"next_verification_date":     update.NextVerificationDate,
	}
	if update.DegradationRate != nil {
		columns["data_quality_degradation_rate"] = *update.DegradationRate
	}
	return r.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Where("id = ?", id).
		Updates(columns).Error
}

// VerificationUpdate carries the equipment fields reset by a completed
// verification.
type VerificationUpdate struct {
	VerifiedAt           time.Time
	VerifiedBy           uuid.UUID
	QualityScore         int
	NextVerificationDate *time.Time
	Notes                *string
}

// ApplyVerification resets the equipment row after a verification event.
func (r *Repository) ApplyVerification(ctx context.Context, tx *gorm.DB, id uuid.UUID, update VerificationUpdate) error {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	return conn.WithContext(ctx).
		Model(&models.Equipment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_verified_at":       update.VerifiedAt,
			"verified_by":            update.VerifiedBy,
			"quality_score":          update.QualityScore,
			"next_verification_date": update.NextVerificationDate,
			"verification_notes":     update.Notes,
		}).Error
}

// CountScheduled counts equipment carrying a verification schedule.
func (r *Repository) CountScheduled(ctx context.Context, filter ListFilter) (int64, error) {
	var count int64
	err := r.scoped(ctx, filter).
		Where("verification_interval_days IS NOT NULL").
		Count(&count).Error
	return count, err
}

// CountOverdue counts equipment past its verification date.
func (r *Repository) CountOverdue(ctx context.Context, filter ListFilter, now time.Time) (int64, error) {
	var count int64
	err := r.scoped(ctx, filter).
		Where("next_verification_date IS NOT NULL AND next_verification_date < ?", now).
		Count(&count).Error
	return count, err
}

// CountDueBetween counts equipment due inside the window.
func (r *Repository) CountDueBetween(ctx context.Context, filter ListFilter, from, to time.Time) (int64, error) {
	var count int64
	err := r.scoped(ctx, filter).
		Where("next_verification_date >= ? AND next_verification_date <= ?", from, to).
		Count(&count).Error
	return count, err
}

// AverageQualityScore returns the mean quality score across the filter, zero
// when no equipment matches.
func (r *Repository) AverageQualityScore(ctx context.Context, filter ListFilter) (float64, error) {
	var avg *float64
	err := r.scoped(ctx, filter).
		Select("AVG(equipment.quality_score)").
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}
