package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/harborline/sms-backend/internal/cron"
	"github.com/harborline/sms-backend/internal/equipment"
	"github.com/harborline/sms-backend/internal/notifications"
	"github.com/harborline/sms-backend/internal/users"
	"github.com/harborline/sms-backend/internal/verification"
	"github.com/harborline/sms-backend/pkg/config"
	"github.com/harborline/sms-backend/pkg/db"
	"github.com/harborline/sms-backend/pkg/logger"
	"github.com/harborline/sms-backend/pkg/metrics"
	"github.com/harborline/sms-backend/pkg/redis"
)

// run-job triggers one scheduled job immediately, skipping the distributed
// lock. Usage: run-job <notifications|degradation>
func main() {
	logg := logger.New(logger.Options{ServiceName: "run-job"})

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: run-job <notifications|degradation>")
		os.Exit(2)
	}
	jobName := os.Args[1]
	switch jobName {
	case verification.JobNameNotifications, verification.JobNameDegradation:
	default:
		fmt.Fprintf(os.Stderr, "unknown job %q, expected %q or %q\n",
			jobName, verification.JobNameNotifications, verification.JobNameDegradation)
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "run-job"

	logg = logger.New(logger.Options{
		ServiceName: "run-job",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	loc, err := cfg.Scheduler.Location()
	if err != nil {
		logg.Error(context.Background(), "invalid scheduler timezone", err)
		os.Exit(1)
	}

	equipmentRepo := equipment.NewRepository(dbClient.DB())
	userRepo := users.NewRepository(dbClient.DB())
	notificationRepo := notifications.NewRepository(dbClient.DB())
	verificationRepo := verification.NewRepository(dbClient.DB())

	notificationJob, err := verification.NewNotificationJob(verification.NotificationJobParams{
		Logger:           logg,
		EquipmentRepo:    equipmentRepo,
		UserRepo:         userRepo,
		NotificationRepo: notificationRepo,
		Schedule: cron.Schedule{
			Hour:     cfg.Scheduler.NotificationHour,
			Minute:   cfg.Scheduler.NotificationMinute,
			Location: loc,
		},
		LookaheadDays:       cfg.Verification.LookaheadDays,
		CriticalOverdueDays: cfg.Verification.CriticalOverdueDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification job", err)
		os.Exit(1)
	}

	decayJob, err := verification.NewDecayJob(verification.DecayJobParams{
		Logger:           logg,
		DB:               dbClient,
		EquipmentRepo:    equipmentRepo,
		VerificationRepo: verificationRepo,
		Schedule: cron.Schedule{
			Hour:     cfg.Scheduler.DegradationHour,
			Minute:   cfg.Scheduler.DegradationMinute,
			Location: loc,
		},
		DefaultDegradationRate: cfg.Verification.DefaultDegradationRate,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create degradation job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, cfg.App.CronLockKey(), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:     logg,
		Registry:   cron.NewRegistry(notificationJob, decayJob),
		Timer:      cron.NewCronTimer(),
		Lock:       lock,
		Metrics:    metrics.NewCronJobMetrics(prometheus.NewRegistry()),
		JobTimeout: cfg.Scheduler.JobTimeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"job": jobName,
	})
	logg.Info(ctx, "running job manually")

	if err := service.RunJob(ctx, jobName); err != nil {
		logg.Error(ctx, "job failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "job completed")
}
