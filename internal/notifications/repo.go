package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborline/sms-backend/pkg/db/models"
)

// Repository exposes persistence for verification reminders and generic
// in-app notifications.
type Repository struct {
	db *gorm.DB
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// VerificationNotificationExistsOn reports whether a reminder for the
// (equipment, recipient) pair was already created on the given calendar day.
func (r *Repository) VerificationNotificationExistsOn(ctx context.Context, equipmentID, sentTo uuid.UUID, dayStart, dayEnd time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.VerificationNotification{}).
		Where("equipment_id = ? AND sent_to = ?", equipmentID, sentTo).
		Where("created_at >= ? AND created_at < ?", dayStart, dayEnd).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateVerificationNotification inserts one verification reminder.
func (r *Repository) CreateVerificationNotification(ctx context.Context, notification *models.VerificationNotification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// CreateNotification inserts one generic in-app notification.
func (r *Repository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// ListVerificationNotifications returns a user's reminders, newest first.
func (r *Repository) ListVerificationNotifications(ctx context.Context, userID uuid.UUID, unacknowledgedOnly bool) ([]models.VerificationNotification, error) {
	query := r.db.WithContext(ctx).
		Model(&models.VerificationNotification{}).
		Where("sent_to = ?", userID)
	if unacknowledgedOnly {
		query = query.Where("acknowledged_at IS NULL")
	}
	var rows []models.VerificationNotification
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// AcknowledgeResult reports whether the row existed and whether it changed.
type AcknowledgeResult struct {
	Found   bool
	Updated bool
}

// Acknowledge stamps acknowledged_at on an unacknowledged reminder owned by
// the user.
func (r *Repository) Acknowledge(ctx context.Context, notificationID, userID uuid.UUID, now time.Time) (AcknowledgeResult, error) {
	result := r.db.WithContext(ctx).
		Model(&models.VerificationNotification{}).
		Where("id = ? AND sent_to = ? AND acknowledged_at IS NULL", notificationID, userID).
		UpdateColumn("acknowledged_at", now)
	if result.Error != nil {
		return AcknowledgeResult{}, result.Error
	}

	ack := AcknowledgeResult{Updated: result.RowsAffected > 0}
	if ack.Updated {
		ack.Found = true
		return ack, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.VerificationNotification{}).
		Where("id = ? AND sent_to = ?", notificationID, userID).
		Count(&count).Error; err != nil {
		return AcknowledgeResult{}, err
	}
	ack.Found = count > 0
	return ack, nil
}
