package reminders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aviders/basket-backend/pkg/db/models"
	"github.com/aviders/basket-backend/pkg/enums"
	pkgerrors "github.com/aviders/basket-backend/pkg/errors"
	"github.com/aviders/basket-backend/pkg/push"
)

type fakeItemSource struct {
	items    []models.BasketItem
	err      error
	gotAsOf  time.Time
	gotCalls int
}

func (f *fakeItemSource) FindDue(_ context.Context, asOf time.Time, excludeBuyOnce bool) ([]models.BasketItem, error) {
	f.gotAsOf = asOf
	f.gotCalls++
	if !excludeBuyOnce {
		panic("reminders must exclude buy_once items")
	}
	return f.items, f.err
}

type sentMessage struct {
	topic string
	msg   push.Message
}

type fakeSender struct {
	sent     []sentMessage
	failFor  map[string]error
}

func (f *fakeSender) Send(_ context.Context, topic string, msg push.Message) error {
	if err, ok := f.failFor[topic]; ok {
		return err
	}
	f.sent = append(f.sent, sentMessage{topic: topic, msg: msg})
	return nil
}

func dueItem(userID, productID string, title string) models.BasketItem {
	item := models.BasketItem{
		UserID:        userID,
		ProductID:     productID,
		FrequencyType: enums.FrequencyWeekly,
		Status:        enums.ItemStatusActive,
	}
	if title != "" {
		item.Title = &title
	}
	return item
}

func newReminderService(t *testing.T, items ItemSource, sender push.Sender) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Items:  items,
		Sender: sender,
		Now:    func() time.Time { return time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestRunSendsOneNotificationPerUser(t *testing.T) {
	source := &fakeItemSource{items: []models.BasketItem{
		dueItem("user-1", "coffee", "Filter Coffee"),
		dueItem("user-2", "soap", "Bath Soap"),
		dueItem("user-1", "razor", ""),
	}}
	sender := &fakeSender{}
	svc := newReminderService(t, source, sender)

	result, err := svc.Run(context.Background(), time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Sent != 2 || result.Errors != 0 {
		t.Fatalf("result = %+v, want 2 sent, 0 errors", result)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(sender.sent))
	}
	if sender.sent[0].topic != "user_user-1" {
		t.Fatalf("first topic = %s, want user_user-1 (first-seen order)", sender.sent[0].topic)
	}
	if sender.sent[0].msg.Count != 2 {
		t.Fatalf("user-1 count = %d, want 2", sender.sent[0].msg.Count)
	}
	if sender.sent[1].msg.Body != "Bath Soap is due for reorder" {
		t.Fatalf("single-item body = %q", sender.sent[1].msg.Body)
	}
	if sender.sent[1].msg.ProductID != "soap" {
		t.Fatalf("single-item productId = %q, want soap", sender.sent[1].msg.ProductID)
	}
}

func TestRunAppliesLookaheadWindow(t *testing.T) {
	source := &fakeItemSource{}
	svc := newReminderService(t, source, &fakeSender{})

	asOf := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	if _, err := svc.Run(context.Background(), asOf); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := asOf.Add(24 * time.Hour)
	if !source.gotAsOf.Equal(want) {
		t.Fatalf("queried asOf = %v, want %v (24h look-ahead)", source.gotAsOf, want)
	}
}

func TestRunCountsPerUserFailuresAndContinues(t *testing.T) {
	source := &fakeItemSource{items: []models.BasketItem{
		dueItem("user-1", "coffee", ""),
		dueItem("user-2", "soap", ""),
		dueItem("user-3", "razor", ""),
	}}
	sender := &fakeSender{failFor: map[string]error{
		"user_user-2": errors.New("token expired"),
	}}
	svc := newReminderService(t, source, sender)

	result, err := svc.Run(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("Run must not fail on per-user errors: %v", err)
	}
	if result.Sent != 2 || result.Errors != 1 {
		t.Fatalf("result = %+v, want 2 sent, 1 error", result)
	}
}

func TestRunShortCircuitsWithoutSender(t *testing.T) {
	source := &fakeItemSource{}
	svc, err := NewService(ServiceParams{Items: source})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Run(context.Background(), time.Time{})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if source.gotCalls != 0 {
		t.Fatalf("store was queried %d times despite unavailable sender", source.gotCalls)
	}
}

func TestRunPropagatesStoreFailure(t *testing.T) {
	source := &fakeItemSource{err: errors.New("connection reset")}
	svc := newReminderService(t, source, &fakeSender{})

	_, err := svc.Run(context.Background(), time.Time{})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
