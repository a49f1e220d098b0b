package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aviders/basket-backend/internal/basket"
	"github.com/aviders/basket-backend/internal/cron"
	"github.com/aviders/basket-backend/internal/reminders"
	"github.com/aviders/basket-backend/pkg/config"
	"github.com/aviders/basket-backend/pkg/db"
	"github.com/aviders/basket-backend/pkg/logger"
	"github.com/aviders/basket-backend/pkg/metrics"
	"github.com/aviders/basket-backend/pkg/migrate"
	"github.com/aviders/basket-backend/pkg/push"
	"github.com/aviders/basket-backend/pkg/redis"
)

const lockKeyFormat = "av:reminder-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "reminder-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "reminder-worker"

	logg = logger.New(logger.Options{
		ServiceName: "reminder-worker",
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

	pushClient, err := push.New(context.Background(), cfg.Firebase)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap push sender", err)
		os.Exit(1)
	}

	remindersService, err := reminders.NewService(reminders.ServiceParams{
		Items:     basket.NewRepository(dbClient.DB()),
		Sender:    pushClient,
		Lookahead: cfg.Basket.ReminderLookahead,
		Logg:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reminders service", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	reminderJob, err := cron.NewBasketReminderJob(cron.BasketReminderJobParams{
		Logger:    logg,
		Reminders: remindersService,
		Metrics:   metricsCollector,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reminder job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create worker lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(reminderJob),
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Worker.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create worker service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting reminder worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "reminder worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "reminder worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
