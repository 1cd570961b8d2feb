package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/harborline/sms-backend/pkg/enums"
)

// VerificationNotification is one verification reminder emitted to one user.
// The scheduler never creates more than one per (equipment, recipient) per
// calendar day; acknowledgement happens through a separate user action.
type VerificationNotification struct {
	ID               uuid.UUID                          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	EquipmentID      uuid.UUID                          `gorm:"column:equipment_id;type:uuid;not null;index"`
	SentTo           uuid.UUID                          `gorm:"column:sent_to;type:uuid;not null;index"`
	NotificationType enums.VerificationNotificationType `gorm:"column:notification_type;type:text;not null"`
	DaysUntilDue     int                                `gorm:"column:days_until_due;not null"`
	AcknowledgedAt   *time.Time                         `gorm:"column:acknowledged_at"`
	CreatedAt        time.Time                          `gorm:"column:created_at;autoCreateTime"`
}
