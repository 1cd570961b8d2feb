package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/harborline/sms-backend/pkg/enums"
)

// QualityScoreRecord is an append-only audit entry written whenever an
// equipment quality score changes. Rows are never updated or deleted.
type QualityScoreRecord struct {
	ID          uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	EquipmentID uuid.UUID           `gorm:"column:equipment_id;type:uuid;not null;index"`
	Metric      enums.QualityMetric `gorm:"type:text;not null"`
	Score       int                 `gorm:"not null"`
	EvaluatedBy *uuid.UUID          `gorm:"column:evaluated_by;type:uuid"`
	Details     json.RawMessage     `gorm:"type:jsonb"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
}
