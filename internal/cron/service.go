package cron

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/harborline/sms-backend/pkg/errors"
	"github.com/harborline/sms-backend/pkg/logger"
	"github.com/harborline/sms-backend/pkg/metrics"
)

const defaultJobTimeout = 10 * time.Minute

// ServiceParams configure the scheduler service.
type ServiceParams struct {
	Logger     *logger.Logger
	Registry   *Registry
	Timer      Timer
	Lock       Lock
	Metrics    *metrics.CronJobMetrics
	JobTimeout time.Duration
}

// Service holds the scheduler state: the registered jobs, their timer
// registrations, and the lock guarding scheduled firings. It is constructed
// by the host process and passed around explicitly.
type Service struct {
	logg       *logger.Logger
	registry   *Registry
	timer      Timer
	lock       Lock
	metrics    *metrics.CronJobMetrics
	jobTimeout time.Duration
	cancels    []CancelFunc
}

// NewService builds a scheduler service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Timer == nil {
		return nil, fmt.Errorf("timer required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	timeout := params.JobTimeout
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	return &Service{
		logg:       params.Logger,
		registry:   registry,
		timer:      params.Timer,
		lock:       params.Lock,
		metrics:    params.Metrics,
		jobTimeout: timeout,
	}, nil
}

// Start registers every job with the timer and begins firing. The provided
// context becomes the parent of each scheduled run.
func (s *Service) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	for _, job := range s.registry.Jobs() {
		job := job
		cancel, err := s.timer.Schedule(job.Spec(), func() {
			s.runScheduled(ctx, job)
		})
		if err != nil {
			s.Stop()
			return fmt.Errorf("scheduling job %s: %w", job.Name(), err)
		}
		s.cancels = append(s.cancels, cancel)
		scheduleCtx := s.logg.WithFields(ctx, map[string]any{
			"job":      job.Name(),
			"schedule": job.Spec().String(),
		})
		s.logg.Info(scheduleCtx, "job scheduled")
	}
	s.timer.Start()
	return nil
}

// Stop cancels all timer registrations. Runs already in flight complete.
func (s *Service) Stop() {
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
	s.timer.Stop()
}

// RunJob executes the named job synchronously. Unknown names fail before any
// other work. Manual runs bypass the cross-instance lock.
func (s *Service) RunJob(ctx context.Context, name string) error {
	job, ok := s.registry.Find(name)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown job %q", name))
	}
	return s.runJob(ctx, job)
}

// runScheduled is the timer callback path: a failed run is logged and counted
// but never unregisters the job.
func (s *Service) runScheduled(ctx context.Context, job Job) {
	locked, err := s.lock.Acquire(ctx, job.Name())
	if err != nil {
		s.logg.Error(s.logg.WithJob(ctx, job.Name()), "failed to acquire job lock", err)
		return
	}
	if !locked {
		s.logg.Info(s.logg.WithJob(ctx, job.Name()), "another worker owns this run; skipping")
		return
	}
	defer func() {
		if relErr := s.lock.Release(ctx, job.Name()); relErr != nil {
			s.logg.Error(s.logg.WithJob(ctx, job.Name()), "failed to release job lock", relErr)
		}
	}()

	_ = s.runJob(ctx, job)
}

func (s *Service) runJob(ctx context.Context, job Job) error {
	jobCtx := s.logg.WithJob(ctx, job.Name())
	jobCtx = s.logg.WithField(jobCtx, "event", "cron.job")
	s.logg.Info(jobCtx, "job start")

	runCtx, cancel := context.WithTimeout(jobCtx, s.jobTimeout)
	defer cancel()

	start := time.Now()
	err := job.Run(runCtx)
	duration := time.Since(start)
	s.observeDuration(job.Name(), duration)

	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		jobCtx = s.logg.WithField(jobCtx, "error_dump", pkgerrors.Dump(err))
		s.logg.Error(jobCtx, "job failed", err)
		s.recordFailure(job.Name())
		return err
	}
	s.logg.Info(jobCtx, "job completed")
	s.recordSuccess(job.Name())
	return nil
}

func (s *Service) observeDuration(job string, duration time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveDuration(job, duration)
}

func (s *Service) recordSuccess(job string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncSuccess(job)
}

func (s *Service) recordFailure(job string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncFailure(job)
}
