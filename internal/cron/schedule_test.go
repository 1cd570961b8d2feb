package cron

import (
	"testing"
	"time"
)

func TestScheduleCronSpec(t *testing.T) {
	spec := Schedule{Hour: 8, Minute: 0, Location: time.UTC}
	if got := spec.CronSpec(); got != "CRON_TZ=UTC 0 8 * * *" {
		t.Fatalf("unexpected cron spec %q", got)
	}

	night := Schedule{Hour: 2, Minute: 30}
	if got := night.CronSpec(); got != "CRON_TZ=UTC 30 2 * * *" {
		t.Fatalf("nil location should default to UTC, got %q", got)
	}
}

func TestScheduleValidate(t *testing.T) {
	good := Schedule{Hour: 23, Minute: 59}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid schedule rejected: %v", err)
	}
	for _, bad := range []Schedule{{Hour: 24}, {Hour: -1}, {Minute: 60}, {Minute: -1}} {
		if err := bad.Validate(); err == nil {
			t.Fatalf("expected validation error for %+v", bad)
		}
	}
}
