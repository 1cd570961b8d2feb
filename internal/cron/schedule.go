package cron

import (
	"fmt"
	"time"
)

// Schedule is a fixed daily wall-clock firing time. Explicit fields instead
// of a cron string keep the timer implementation swappable.
type Schedule struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// Validate checks the hour/minute ranges.
func (s Schedule) Validate() error {
	if s.Hour < 0 || s.Hour > 23 {
		return fmt.Errorf("schedule hour %d out of range", s.Hour)
	}
	if s.Minute < 0 || s.Minute > 59 {
		return fmt.Errorf("schedule minute %d out of range", s.Minute)
	}
	return nil
}

// CronSpec renders the schedule in standard five-field cron syntax with an
// explicit timezone override.
func (s Schedule) CronSpec() string {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	return fmt.Sprintf("CRON_TZ=%s %d %d * * *", loc.String(), s.Minute, s.Hour)
}

// String implements fmt.Stringer.
func (s Schedule) String() string {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	return fmt.Sprintf("%02d:%02d %s daily", s.Hour, s.Minute, loc.String())
}
