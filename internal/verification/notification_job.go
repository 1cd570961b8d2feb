package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harborline/sms-backend/internal/cron"
	"github.com/harborline/sms-backend/pkg/db/models"
	"github.com/harborline/sms-backend/pkg/enums"
	"github.com/harborline/sms-backend/pkg/logger"
)

// Job names accepted by the manual run entrypoint.
const (
	JobNameNotifications = "notifications"
	JobNameDegradation   = "degradation"
)

// NotificationJobParams configures the daily verification reminder job.
type NotificationJobParams struct {
	Logger              *logger.Logger
	EquipmentRepo       dueEquipmentLister
	UserRepo            recipientDirectory
	NotificationRepo    notificationStore
	Schedule            cron.Schedule
	LookaheadDays       int
	CriticalOverdueDays int
}

type dueEquipmentLister interface {
	ListDueForVerification(ctx context.Context, before time.Time) ([]models.Equipment, error)
}

type recipientDirectory interface {
	ListActiveDecisionMakers(ctx context.Context, companyID uuid.UUID) ([]models.User, error)
}

type notificationStore interface {
	VerificationNotificationExistsOn(ctx context.Context, equipmentID, sentTo uuid.UUID, dayStart, dayEnd time.Time) (bool, error)
	CreateVerificationNotification(ctx context.Context, notification *models.VerificationNotification) error
	CreateNotification(ctx context.Context, notification *models.Notification) error
}

// NewNotificationJob constructs the reminder job.
func NewNotificationJob(params NotificationJobParams) (cron.Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.EquipmentRepo == nil {
		return nil, fmt.Errorf("equipment repository required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if params.NotificationRepo == nil {
		return nil, fmt.Errorf("notification repository required")
	}
	if err := params.Schedule.Validate(); err != nil {
		return nil, err
	}
	if params.LookaheadDays <= 0 {
		params.LookaheadDays = DefaultLookaheadDays
	}
	if params.CriticalOverdueDays <= 0 {
		params.CriticalOverdueDays = DefaultCriticalOverdueDays
	}
	return &notificationJob{
		logg:                params.Logger,
		equipmentRepo:       params.EquipmentRepo,
		userRepo:            params.UserRepo,
		notificationRepo:    params.NotificationRepo,
		schedule:            params.Schedule,
		lookaheadDays:       params.LookaheadDays,
		criticalOverdueDays: params.CriticalOverdueDays,
		now:                 time.Now,
	}, nil
}

type notificationJob struct {
	logg                *logger.Logger
	equipmentRepo       dueEquipmentLister
	userRepo            recipientDirectory
	notificationRepo    notificationStore
	schedule            cron.Schedule
	lookaheadDays       int
	criticalOverdueDays int
	now                 func() time.Time
}

func (j *notificationJob) Name() string { return JobNameNotifications }

func (j *notificationJob) Spec() cron.Schedule { return j.schedule }

func (j *notificationJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	bound := now.Add(time.Duration(j.lookaheadDays) * day)

	due, err := j.equipmentRepo.ListDueForVerification(ctx, bound)
	if err != nil {
		return fmt.Errorf("query due equipment: %w", err)
	}

	notified, failed := 0, 0
	for _, eq := range due {
		eqCtx := j.logg.WithEquipmentID(ctx, eq.ID.String())
		created, err := j.notifyForEquipment(eqCtx, eq, now)
		if err != nil {
			// One bad row must not starve the rest of the scan.
			j.logg.Error(eqCtx, "verification reminder failed", err)
			failed++
			continue
		}
		notified += created
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"equipment_scanned":     len(due),
		"notifications_created": notified,
		"equipment_failed":      failed,
	}), "verification reminder scan complete")
	return nil
}

// verificationDuePayload is the structured data attached to in-app
// notifications.
type verificationDuePayload struct {
	EquipmentID      uuid.UUID                          `json:"equipmentId"`
	NotificationType enums.VerificationNotificationType `json:"notificationType"`
	DaysUntilDue     int                                `json:"daysUntilDue"`
}

func (j *notificationJob) notifyForEquipment(ctx context.Context, eq models.Equipment, now time.Time) (int, error) {
	if eq.NextVerificationDate == nil {
		return 0, nil
	}
	if eq.Vessel == nil {
		return 0, fmt.Errorf("equipment %s has no vessel loaded", eq.ID)
	}

	daysUntilDue := WholeDaysBetween(now, eq.NextVerificationDate.UTC())
	tier := Classify(daysUntilDue, j.criticalOverdueDays)

	recipients, err := j.userRepo.ListActiveDecisionMakers(ctx, eq.Vessel.CompanyID)
	if err != nil {
		return 0, fmt.Errorf("list recipients: %w", err)
	}
	if len(recipients) == 0 {
		return 0, nil
	}

	payload, err := json.Marshal(verificationDuePayload{
		EquipmentID:      eq.ID,
		NotificationType: tier,
		DaysUntilDue:     daysUntilDue,
	})
	if err != nil {
		return 0, fmt.Errorf("marshal notification payload: %w", err)
	}

	dayStart, dayEnd := DayBounds(now)
	created := 0
	for _, recipient := range recipients {
		exists, err := j.notificationRepo.VerificationNotificationExistsOn(ctx, eq.ID, recipient.ID, dayStart, dayEnd)
		if err != nil {
			return created, fmt.Errorf("check existing reminder: %w", err)
		}
		if exists {
			continue
		}

		reminder := &models.VerificationNotification{
			EquipmentID:      eq.ID,
			SentTo:           recipient.ID,
			NotificationType: tier,
			DaysUntilDue:     daysUntilDue,
		}
		if err := j.notificationRepo.CreateVerificationNotification(ctx, reminder); err != nil {
			return created, fmt.Errorf("create verification reminder: %w", err)
		}

		inApp := &models.Notification{
			UserID:  recipient.ID,
			Type:    enums.NotificationTypeVerificationDue,
			Title:   reminderTitle(tier),
			Message: reminderMessage(eq.Name, daysUntilDue),
			Data:    payload,
		}
		if err := j.notificationRepo.CreateNotification(ctx, inApp); err != nil {
			return created, fmt.Errorf("create in-app notification: %w", err)
		}
		created++
	}
	return created, nil
}

func reminderTitle(tier enums.VerificationNotificationType) string {
	if tier == enums.VerificationNotificationDueSoon {
		return "Equipment Verification Due Soon"
	}
	return "Equipment Verification Overdue"
}

func reminderMessage(equipmentName string, daysUntilDue int) string {
	if daysUntilDue < 0 {
		return fmt.Sprintf("Equipment %q is %d days overdue for verification", equipmentName, -daysUntilDue)
	}
	return fmt.Sprintf("Equipment %q is due for verification in %d days", equipmentName, daysUntilDue)
}
