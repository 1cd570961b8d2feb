package verification

import (
	"time"

	"github.com/harborline/sms-backend/pkg/enums"
)

const (
	day = 24 * time.Hour

	// DefaultLookaheadDays is the reminder scan window.
	DefaultLookaheadDays = 30
	// DefaultCriticalOverdueDays is how far past due a verification escalates
	// to critical.
	DefaultCriticalOverdueDays = 30
	// DefaultDegradationRate is the percent-per-30-days decay applied when an
	// equipment row does not configure its own rate.
	DefaultDegradationRate = 5
)

// WholeDaysBetween returns the number of whole days from one instant to
// another, rounding toward negative infinity so that a target 36 hours in
// the past yields -2, not -1.
func WholeDaysBetween(from, to time.Time) int {
	diff := to.Sub(from)
	days := int(diff / day)
	if diff < 0 && diff%day != 0 {
		days--
	}
	return days
}

// Classify maps signed days-until-due onto an urgency tier. The boundary at
// -criticalAfterDays is inclusive on the OVERDUE side: exactly 30 days late
// is OVERDUE, 31 is CRITICAL_OVERDUE.
func Classify(daysUntilDue, criticalAfterDays int) enums.VerificationNotificationType {
	switch {
	case daysUntilDue < -criticalAfterDays:
		return enums.VerificationNotificationCriticalOverdue
	case daysUntilDue < 0:
		return enums.VerificationNotificationOverdue
	default:
		return enums.VerificationNotificationDueSoon
	}
}

// Degradation computes the quality-score decay for an equipment row that has
// been overdue for daysOverdue days: score x rate percent per 30-day period,
// floored. Non-positive inputs yield zero.
func Degradation(score, rate, daysOverdue int) int {
	if score <= 0 || rate <= 0 || daysOverdue <= 0 {
		return 0
	}
	return score * rate * daysOverdue / 30 / 100
}

// DecayedScore applies Degradation and clamps at zero.
func DecayedScore(score, rate, daysOverdue int) int {
	decayed := score - Degradation(score, rate, daysOverdue)
	if decayed < 0 {
		return 0
	}
	return decayed
}

// DayBounds returns the half-open calendar-day interval containing now, in
// now's location.
func DayBounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.Add(day)
}
