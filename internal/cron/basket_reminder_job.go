package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/aviders/basket-backend/internal/reminders"
	"github.com/aviders/basket-backend/pkg/logger"
	"github.com/aviders/basket-backend/pkg/metrics"
)

// BasketReminderJobParams configure the recurring reminder job.
type BasketReminderJobParams struct {
	Logger    *logger.Logger
	Reminders reminders.Service
	Metrics   *metrics.CronJobMetrics
}

// NewBasketReminderJob wraps the reminder dispatcher as a cron job.
func NewBasketReminderJob(params BasketReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reminders == nil {
		return nil, fmt.Errorf("reminders service required")
	}
	return &basketReminderJob{
		logg:      params.Logger,
		reminders: params.Reminders,
		metrics:   params.Metrics,
		now:       time.Now,
	}, nil
}

type basketReminderJob struct {
	logg      *logger.Logger
	reminders reminders.Service
	metrics   *metrics.CronJobMetrics
	now       func() time.Time
}

func (j *basketReminderJob) Name() string { return "basket-reminders" }

func (j *basketReminderJob) Run(ctx context.Context) error {
	result, err := j.reminders.Run(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("basket reminders: %w", err)
	}
	j.metrics.AddSent(j.Name(), result.Sent)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"sent":   result.Sent,
		"errors": result.Errors,
	})
	j.logg.Info(logCtx, "basket reminders dispatched")
	return nil
}
