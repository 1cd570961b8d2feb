package enums

import "fmt"

// VerificationNotificationType is the urgency tier of a verification reminder.
type VerificationNotificationType string

const (
	VerificationNotificationDueSoon         VerificationNotificationType = "DUE_SOON"
	VerificationNotificationOverdue         VerificationNotificationType = "OVERDUE"
	VerificationNotificationCriticalOverdue VerificationNotificationType = "CRITICAL_OVERDUE"
)

var validVerificationNotificationTypes = []VerificationNotificationType{
	VerificationNotificationDueSoon,
	VerificationNotificationOverdue,
	VerificationNotificationCriticalOverdue,
}

// String implements fmt.Stringer.
func (v VerificationNotificationType) String() string {
	return string(v)
}

// IsValid reports whether the value is a known tier.
func (v VerificationNotificationType) IsValid() bool {
	for _, candidate := range validVerificationNotificationTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVerificationNotificationType converts raw input into a tier.
func ParseVerificationNotificationType(value string) (VerificationNotificationType, error) {
	for _, candidate := range validVerificationNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid verification notification type %q", value)
}
