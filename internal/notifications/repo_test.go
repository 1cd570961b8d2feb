package notifications

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/harborline/sms-backend/pkg/db/models"
	"github.com/harborline/sms-backend/pkg/enums"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	verificationNotifications := `
CREATE TABLE IF NOT EXISTS verification_notifications (
  id TEXT PRIMARY KEY,
  equipment_id TEXT NOT NULL,
  sent_to TEXT NOT NULL,
  notification_type TEXT NOT NULL,
  days_until_due INTEGER NOT NULL,
  acknowledged_at DATETIME,
  created_at DATETIME
);`
	notifications := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  data TEXT,
  read_at DATETIME,
  created_at DATETIME
);`
	for _, stmt := range []string{verificationNotifications, notifications} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedReminder(t *testing.T, db *gorm.DB, equipmentID, sentTo uuid.UUID, createdAt time.Time) models.VerificationNotification {
	t.Helper()
	reminder := models.VerificationNotification{
		ID:               uuid.New(),
		EquipmentID:      equipmentID,
		SentTo:           sentTo,
		NotificationType: enums.VerificationNotificationDueSoon,
		DaysUntilDue:     5,
		CreatedAt:        createdAt,
	}
	require.NoError(t, db.Create(&reminder).Error)
	return reminder
}

func TestVerificationNotificationExistsOn(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	equipmentID := uuid.New()
	recipient := uuid.New()
	today := time.Date(2026, 6, 10, 8, 30, 0, 0, time.UTC)
	dayStart := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	exists, err := repo.VerificationNotificationExistsOn(ctx, equipmentID, recipient, dayStart, dayEnd)
	require.NoError(t, err)
	assert.False(t, exists)

	seedReminder(t, db, equipmentID, recipient, today)

	exists, err = repo.VerificationNotificationExistsOn(ctx, equipmentID, recipient, dayStart, dayEnd)
	require.NoError(t, err)
	assert.True(t, exists)

	// yesterday's reminder does not suppress today's
	exists, err = repo.VerificationNotificationExistsOn(ctx, equipmentID, recipient, dayStart.Add(24*time.Hour), dayEnd.Add(24*time.Hour))
	require.NoError(t, err)
	assert.False(t, exists)

	// other recipient is independent
	exists, err = repo.VerificationNotificationExistsOn(ctx, equipmentID, uuid.New(), dayStart, dayEnd)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestListVerificationNotifications(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	recipient := uuid.New()
	base := time.Date(2026, 6, 10, 8, 0, 0, 0, time.UTC)

	older := seedReminder(t, db, uuid.New(), recipient, base.Add(-48*time.Hour))
	newer := seedReminder(t, db, uuid.New(), recipient, base)
	seedReminder(t, db, uuid.New(), uuid.New(), base) // other user

	ackAt := base.Add(time.Hour)
	require.NoError(t, db.Model(&models.VerificationNotification{}).
		Where("id = ?", older.ID).
		UpdateColumn("acknowledged_at", ackAt).Error)

	rows, err := repo.ListVerificationNotifications(ctx, recipient, false)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newer.ID, rows[0].ID)

	rows, err = repo.ListVerificationNotifications(ctx, recipient, true)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, newer.ID, rows[0].ID)
}

func TestAcknowledge(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	recipient := uuid.New()
	now := time.Date(2026, 6, 11, 9, 0, 0, 0, time.UTC)
	reminder := seedReminder(t, db, uuid.New(), recipient, now.Add(-time.Hour))

	result, err := repo.Acknowledge(ctx, reminder.ID, recipient, now)
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.True(t, result.Updated)

	// second acknowledge is found but unchanged
	result, err = repo.Acknowledge(ctx, reminder.ID, recipient, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.False(t, result.Updated)

	// wrong owner sees nothing
	result, err = repo.Acknowledge(ctx, reminder.ID, uuid.New(), now)
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.False(t, result.Updated)

	// unknown id
	result, err = repo.Acknowledge(ctx, uuid.New(), recipient, now)
	require.NoError(t, err)
	assert.False(t, result.Found)
}

func TestCreateNotification(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	notification := &models.Notification{
		ID:      uuid.New(),
		UserID:  uuid.New(),
		Type:    enums.NotificationTypeVerificationDue,
		Title:   "Equipment Verification Due Soon",
		Message: `Equipment "Fuel Pump" is due for verification in 5 days`,
		Data:    []byte(`{"daysUntilDue":5}`),
	}
	require.NoError(t, repo.CreateNotification(ctx, notification))

	var reloaded models.Notification
	require.NoError(t, db.First(&reloaded, "id = ?", notification.ID).Error)
	assert.Equal(t, notification.Title, reloaded.Title)
	assert.JSONEq(t, `{"daysUntilDue":5}`, string(reloaded.Data))
}
