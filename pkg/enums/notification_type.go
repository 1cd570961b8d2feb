package enums

import "fmt"

// NotificationType categorizes generic in-app notifications.
type NotificationType string

const (
	NotificationTypeVerificationDue    NotificationType = "VERIFICATION_DUE"
	NotificationTypeSystemAnnouncement NotificationType = "SYSTEM_ANNOUNCEMENT"
	NotificationTypeOnboardingUpdate   NotificationType = "ONBOARDING_UPDATE"
	NotificationTypeMaintenanceAlert   NotificationType = "MAINTENANCE_ALERT"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeVerificationDue,
	NotificationTypeSystemAnnouncement,
	NotificationTypeOnboardingUpdate,
	NotificationTypeMaintenanceAlert,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
