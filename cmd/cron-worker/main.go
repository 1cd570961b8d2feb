package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harborline/sms-backend/internal/cron"
	"github.com/harborline/sms-backend/internal/equipment"
	"github.com/harborline/sms-backend/internal/notifications"
	"github.com/harborline/sms-backend/internal/users"
	"github.com/harborline/sms-backend/internal/verification"
	"github.com/harborline/sms-backend/pkg/config"
	"github.com/harborline/sms-backend/pkg/db"
	"github.com/harborline/sms-backend/pkg/instance"
	"github.com/harborline/sms-backend/pkg/logger"
	"github.com/harborline/sms-backend/pkg/metrics"
	"github.com/harborline/sms-backend/pkg/migrate"
	"github.com/harborline/sms-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

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
		Metrics:    metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		JobTimeout: cfg.Scheduler.JobTimeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.ID(),
	})

	if err := service.Start(ctx); err != nil {
		logg.Error(ctx, "failed to start cron service", err)
		os.Exit(1)
	}
	defer service.Stop()

	opsServer := newOpsServer(cfg.Ops.Port, dbClient, redisClient)
	go func() {
		logg.Info(ctx, "ops listener starting on :"+cfg.Ops.Port)
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "ops listener stopped unexpectedly", err)
		}
	}()

	logg.Info(ctx, "cron worker started")
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "ops listener shutdown failed", err)
	}

	logg.Info(context.Background(), "cron worker shutting down gracefully")
}

func newOpsServer(port string, dbClient *db.Client, redisClient *redis.Client) *http.Server {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := dbClient.Ping(ctx); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		if err := redisClient.Ping(ctx); err != nil {
			http.Error(w, "redis unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
