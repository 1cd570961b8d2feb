package enums

import "fmt"

// VerificationType describes how an equipment verification was initiated.
type VerificationType string

const (
	VerificationTypeScheduled  VerificationType = "SCHEDULED"
	VerificationTypeManual     VerificationType = "MANUAL"
	VerificationTypeCorrective VerificationType = "CORRECTIVE"
)

var validVerificationTypes = []VerificationType{
	VerificationTypeScheduled,
	VerificationTypeManual,
	VerificationTypeCorrective,
}

// IsValid reports whether the value is a known VerificationType.
func (v VerificationType) IsValid() bool {
	for _, candidate := range validVerificationTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVerificationType converts raw input into a VerificationType.
func ParseVerificationType(value string) (VerificationType, error) {
	for _, candidate := range validVerificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid verification type %q", value)
}
