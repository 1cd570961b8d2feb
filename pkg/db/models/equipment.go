package models

import (
	"time"

	"github.com/google/uuid"
)

// Equipment is a trackable asset aboard a vessel. The verification scheduler
// reads the schedule fields and writes QualityScore; everything else belongs
// to the onboarding workflow.
type Equipment struct {
	ID                         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	VesselID                   uuid.UUID  `gorm:"column:vessel_id;type:uuid;not null;index"`
	Name                       string     `gorm:"type:text;not null"`
	Code                       string     `gorm:"type:text;not null"`
	Manufacturer               *string    `gorm:"type:text"`
	Model                      *string    `gorm:"type:text"`
	SerialNumber               *string    `gorm:"column:serial_number;type:text"`
	QualityScore               int        `gorm:"column:quality_score;not null;default:0"`
	NextVerificationDate       *time.Time `gorm:"column:next_verification_date;index"`
	LastVerifiedAt             *time.Time `gorm:"column:last_verified_at"`
	VerifiedBy                 *uuid.UUID `gorm:"column:verified_by;type:uuid"`
	VerificationIntervalDays   *int       `gorm:"column:verification_interval_days"`
	DataQualityDegradationRate *int       `gorm:"column:data_quality_degradation_rate"`
	VerificationNotes          *string    `gorm:"column:verification_notes;type:text"`
	CreatedAt                  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                  time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	Vessel *Vessel `gorm:"foreignKey:VesselID"`
}
