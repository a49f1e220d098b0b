package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/aviders/basket-backend/api/routes"
	"github.com/aviders/basket-backend/internal/basket"
	checkoutsvc "github.com/aviders/basket-backend/internal/checkout"
	"github.com/aviders/basket-backend/internal/reminders"
	"github.com/aviders/basket-backend/pkg/config"
	"github.com/aviders/basket-backend/pkg/db"
	"github.com/aviders/basket-backend/pkg/logger"
	"github.com/aviders/basket-backend/pkg/migrate"
	"github.com/aviders/basket-backend/pkg/push"
	"github.com/aviders/basket-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	// Reminders stay reachable without FCM credentials; the dispatcher reports
	// the sender as unavailable instead of the process failing to boot.
	var sender push.Sender
	if pushClient, err := push.New(context.Background(), cfg.Firebase); err != nil {
		logg.Warn(context.Background(), "push sender unavailable, reminders disabled")
	} else {
		sender = pushClient
	}

	basketRepo := basket.NewRepository(dbClient.DB())
	basketService, err := basket.NewService(basket.ServiceParams{Repo: basketRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create basket service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Items:       basketRepo,
		Rotation:    checkoutsvc.NewRotationRepository(dbClient.DB()),
		WishlistIDs: cfg.Basket.WishlistIDs,
		Logg:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	remindersService, err := reminders.NewService(reminders.ServiceParams{
		Items:     basketRepo,
		Sender:    sender,
		Lookahead: cfg.Basket.ReminderLookahead,
		Logg:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reminders service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, basketService, checkoutService, remindersService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
