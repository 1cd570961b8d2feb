package verification

import (
	"github.com/google/uuid"

	"github.com/harborline/sms-backend/pkg/db/models"
	"github.com/harborline/sms-backend/pkg/enums"
)

// SetScheduleInput configures recurring verification for one equipment item.
// A zero IntervalDays falls back to the policy default.
type SetScheduleInput struct {
	ActorID         uuid.UUID `validate:"required"`
	EquipmentID     uuid.UUID `validate:"required"`
	IntervalDays    int       `validate:"omitempty,gte=1,lte=3650"`
	DegradationRate *int      `validate:"omitempty,gte=0,lte=100"`
}

// PerformInput records a completed verification.
type PerformInput struct {
	ActorID           uuid.UUID              `validate:"required"`
	EquipmentID       uuid.UUID              `validate:"required"`
	Type              enums.VerificationType `validate:"required"`
	QualityScore      int                    `validate:"gte=0,lte=100"`
	Findings          *string                `validate:"omitempty,max=4000"`
	CorrectiveActions *string                `validate:"omitempty,max=4000"`
}

// ListDueInput scopes a due-equipment listing to the actor's company.
type ListDueInput struct {
	ActorID     uuid.UUID `validate:"required"`
	VesselID    *uuid.UUID
	DaysAhead   int `validate:"omitempty,gte=1,lte=365"`
	OverdueOnly bool
}

// DueEquipment pairs an equipment row with its derived urgency fields. The
// effective score reflects decay accrued since the last nightly sweep.
type DueEquipment struct {
	Equipment             models.Equipment
	DaysUntilDue          int
	EffectiveQualityScore int
}

// ListNotificationsInput scopes a reminder listing to one recipient.
type ListNotificationsInput struct {
	ActorID            uuid.UUID `validate:"required"`
	UnacknowledgedOnly bool
}

// AcknowledgeInput marks one reminder as seen by its recipient.
type AcknowledgeInput struct {
	ActorID        uuid.UUID `validate:"required"`
	NotificationID uuid.UUID `validate:"required"`
}

// ListHistoryInput pages through a tenant's verification events.
type ListHistoryInput struct {
	ActorID     uuid.UUID `validate:"required"`
	EquipmentID *uuid.UUID
	VesselID    *uuid.UUID
	Limit       int `validate:"omitempty,gte=1,lte=200"`
	Offset      int `validate:"gte=0"`
}

// HistoryPage is one page of verification events.
type HistoryPage struct {
	Items []models.EquipmentVerification
	Total int64
}

// StatsInput scopes dashboard statistics to the actor's company.
type StatsInput struct {
	ActorID  uuid.UUID `validate:"required"`
	VesselID *uuid.UUID
}

// DashboardStats summarizes a tenant's verification posture.
type DashboardStats struct {
	ScheduledEquipment      int64
	OverdueEquipment        int64
	DueWithinLookahead      int64
	AverageQualityScore     float64
	VerificationsLast30Days int64
}
