package verification

import (
	"testing"
	"time"

	"github.com/harborline/sms-backend/pkg/enums"
)

func TestWholeDaysBetween(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name   string
		target time.Time
		want   int
	}{
		{"same instant", base, 0},
		{"later same day", base.Add(6 * time.Hour), 0},
		{"exactly one day ahead", base.Add(24 * time.Hour), 1},
		{"36 hours ahead rounds down", base.Add(36 * time.Hour), 1},
		{"12 hours behind rounds toward past", base.Add(-12 * time.Hour), -1},
		{"exactly one day behind", base.Add(-24 * time.Hour), -1},
		{"36 hours behind rounds toward past", base.Add(-36 * time.Hour), -2},
		{"thirty days behind", base.Add(-30 * 24 * time.Hour), -30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := WholeDaysBetween(base, tc.target); got != tc.want {
				t.Fatalf("WholeDaysBetween = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		days int
		want enums.VerificationNotificationType
	}{
		{30, enums.VerificationNotificationDueSoon},
		{1, enums.VerificationNotificationDueSoon},
		{0, enums.VerificationNotificationDueSoon},
		{-1, enums.VerificationNotificationOverdue},
		{-30, enums.VerificationNotificationOverdue},
		{-31, enums.VerificationNotificationCriticalOverdue},
		{-365, enums.VerificationNotificationCriticalOverdue},
	}
	for _, tc := range cases {
		if got := Classify(tc.days, DefaultCriticalOverdueDays); got != tc.want {
			t.Fatalf("Classify(%d) = %s, want %s", tc.days, got, tc.want)
		}
	}
}

func TestDegradation(t *testing.T) {
	cases := []struct {
		name                   string
		score, rate, days, want int
	}{
		{"full month at default rate", 100, 5, 30, 5},
		{"result floors fractions", 50, 10, 15, 2},
		{"zero days overdue", 80, 5, 0, 0},
		{"zero score", 0, 5, 30, 0},
		{"negative days", 80, 5, -3, 0},
		{"large overdue", 100, 10, 300, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Degradation(tc.score, tc.rate, tc.days); got != tc.want {
				t.Fatalf("Degradation(%d, %d, %d) = %d, want %d", tc.score, tc.rate, tc.days, got, tc.want)
			}
		})
	}
}

func TestDecayedScoreNeverNegative(t *testing.T) {
	if got := DecayedScore(10, 100, 3000); got != 0 {
		t.Fatalf("expected clamp at zero, got %d", got)
	}
	if got := DecayedScore(100, 5, 30); got != 95 {
		t.Fatalf("expected 95, got %d", got)
	}
}

func TestDayBounds(t *testing.T) {
	now := time.Date(2026, 7, 4, 15, 42, 13, 0, time.UTC)
	start, end := DayBounds(now)
	if !start.Equal(time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start: %s", start)
	}
	if !end.Equal(time.Date(2026, 7, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end: %s", end)
	}
}
