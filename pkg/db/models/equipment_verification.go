package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/harborline/sms-backend/pkg/enums"
)

// EquipmentVerification records one completed verification event.
type EquipmentVerification struct {
	ID                   uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	EquipmentID          uuid.UUID              `gorm:"column:equipment_id;type:uuid;not null;index"`
	VerifiedBy           uuid.UUID              `gorm:"column:verified_by;type:uuid;not null"`
	VerificationType     enums.VerificationType `gorm:"column:verification_type;type:text;not null"`
	QualityScoreBefore   int                    `gorm:"column:quality_score_before;not null"`
	QualityScoreAfter    int                    `gorm:"column:quality_score_after;not null"`
	Findings             *string                `gorm:"type:text"`
	CorrectiveActions    *string                `gorm:"column:corrective_actions;type:text"`
	NextVerificationDate *time.Time             `gorm:"column:next_verification_date"`
	VerificationDate     time.Time              `gorm:"column:verification_date;autoCreateTime"`
}
