package cron

import (
	"fmt"

	robfig "github.com/robfig/cron/v3"
)

// CancelFunc unregisters a scheduled callback.
type CancelFunc func()

// Timer schedules callbacks at fixed daily times. The production
// implementation wraps robfig/cron; tests substitute fakes.
type Timer interface {
	Schedule(spec Schedule, fn func()) (CancelFunc, error)
	Start()
	Stop()
}

// CronTimer is the robfig/cron backed Timer.
type CronTimer struct {
	c *robfig.Cron
}

// NewCronTimer builds a timer. Per-schedule timezones are honored via the
// CRON_TZ override in each spec.
func NewCronTimer() *CronTimer {
	return &CronTimer{c: robfig.New()}
}

// Schedule registers fn at the schedule's daily firing time.
func (t *CronTimer) Schedule(spec Schedule, fn func()) (CancelFunc, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	id, err := t.c.AddFunc(spec.CronSpec(), fn)
	if err != nil {
		return nil, fmt.Errorf("registering schedule %s: %w", spec, err)
	}
	return func() { t.c.Remove(id) }, nil
}

// Start begins firing scheduled callbacks in a background goroutine.
func (t *CronTimer) Start() {
	t.c.Start()
}

// Stop halts the timer; callbacks already in flight run to completion.
func (t *CronTimer) Stop() {
	t.c.Stop()
}
