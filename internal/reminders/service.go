package reminders

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/aviders/basket-backend/pkg/db/models"
	pkgerrors "github.com/aviders/basket-backend/pkg/errors"
	"github.com/aviders/basket-backend/pkg/logger"
	"github.com/aviders/basket-backend/pkg/push"
)

const defaultLookahead = 24 * time.Hour

// ItemSource is the slice of basket persistence the dispatcher needs.
type ItemSource interface {
	FindDue(ctx context.Context, asOf time.Time, excludeBuyOnce bool) ([]models.BasketItem, error)
}

// Result summarizes a reminder run.
type Result struct {
	Sent   int `json:"sent"`
	Errors int `json:"errors"`
}

// ServiceParams groups dependencies for the reminder dispatcher.
type ServiceParams struct {
	Items     ItemSource
	Sender    push.Sender
	Lookahead time.Duration
	Logg      *logger.Logger
	Now       func() time.Time
}

// Service sends one push reminder per user with due recurring items.
type Service interface {
	Run(ctx context.Context, asOf time.Time) (Result, error)
}

type service struct {
	items     ItemSource
	sender    push.Sender
	lookahead time.Duration
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds a reminder dispatcher with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Items == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item source is required")
	}
	lookahead := params.Lookahead
	if lookahead <= 0 {
		lookahead = defaultLookahead
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		items:     params.Items,
		sender:    params.Sender,
		lookahead: lookahead,
		logg:      params.Logg,
		now:       now,
	}, nil
}

// Run selects recurring items due inside the look-ahead window, groups them by
// user, and sends one notification per user. A user's send failure is counted
// and the run moves on; an unavailable sender aborts before any store access.
func (s *service) Run(ctx context.Context, asOf time.Time) (Result, error) {
	if s.sender == nil {
		return Result{}, pkgerrors.New(pkgerrors.CodeDependency, "push sender unavailable")
	}
	if asOf.IsZero() {
		asOf = s.now()
	}

	items, err := s.items.FindDue(ctx, asOf.Add(s.lookahead), true)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query due basket items")
	}

	grouped, order := groupByUser(items)

	var result Result
	var sendErrs error
	for _, userID := range order {
		userItems := grouped[userID]
		msg := buildMessage(userItems)
		if err := s.sender.Send(ctx, push.UserTopic(userID), msg); err != nil {
			result.Errors++
			sendErrs = multierr.Append(sendErrs, fmt.Errorf("user %s: %w", userID, err))
			continue
		}
		result.Sent++
	}

	if sendErrs != nil && s.logg != nil {
		s.logg.Error(ctx, "some basket reminders failed", sendErrs)
	}
	if s.logg != nil {
		fields := map[string]any{"sent": result.Sent, "errors": result.Errors, "due_items": len(items)}
		s.logg.Info(s.logg.WithFields(ctx, fields), "basket reminder run completed")
	}
	return result, nil
}

// groupByUser buckets items per user, preserving first-seen order so reminder
// delivery order tracks due order.
func groupByUser(items []models.BasketItem) (map[string][]models.BasketItem, []string) {
	grouped := make(map[string][]models.BasketItem)
	var order []string
	for _, item := range items {
		if _, seen := grouped[item.UserID]; !seen {
			order = append(order, item.UserID)
		}
		grouped[item.UserID] = append(grouped[item.UserID], item)
	}
	return grouped, order
}

func buildMessage(items []models.BasketItem) push.Message {
	if len(items) == 1 {
		name := items[0].ProductID
		if items[0].Title != nil && *items[0].Title != "" {
			name = *items[0].Title
		}
		return push.Message{
			Type:      "basket_reminder",
			Title:     "Time to restock",
			Body:      fmt.Sprintf("%s is due for reorder", name),
			ProductID: items[0].ProductID,
			Count:     1,
		}
	}
	return push.Message{
		Type:  "basket_reminder",
		Title: "Time to restock",
		Body:  fmt.Sprintf("%d items in your basket are due for reorder", len(items)),
		Count: len(items),
	}
}
