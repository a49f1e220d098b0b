package basket

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/aviders/basket-backend/pkg/db/models"
	"github.com/aviders/basket-backend/pkg/enums"
	pkgerrors "github.com/aviders/basket-backend/pkg/errors"
)

type fakeStore struct {
	items map[uuid.UUID]*models.BasketItem

	upsertErr error
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: map[uuid.UUID]*models.BasketItem{}}
}

func (f *fakeStore) Upsert(_ context.Context, item *models.BasketItem) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for _, existing := range f.items {
		if existing.UserID == item.UserID && existing.ProductID == item.ProductID {
			item.ID = existing.ID
			f.items[existing.ID] = item
			return nil
		}
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	f.items[item.ID] = item
	return nil
}

func (f *fakeStore) FindByID(_ context.Context, id uuid.UUID) (*models.BasketItem, error) {
	if item, ok := f.items[id]; ok {
		copied := *item
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) FindByUserAndProduct(_ context.Context, userID, productID string) (*models.BasketItem, error) {
	for _, item := range f.items {
		if item.UserID == userID && item.ProductID == productID {
			copied := *item
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) FindAllForUser(_ context.Context, userID string) ([]models.BasketItem, error) {
	var out []models.BasketItem
	for _, item := range f.items {
		if item.UserID == userID && item.Status == enums.ItemStatusActive {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeStore) FindDue(_ context.Context, asOf time.Time, excludeBuyOnce bool) ([]models.BasketItem, error) {
	var out []models.BasketItem
	for _, item := range f.items {
		if item.Status != enums.ItemStatusActive || item.NextRunAt.After(asOf) {
			continue
		}
		if excludeBuyOnce && item.FrequencyType == enums.FrequencyBuyOnce {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (f *fakeStore) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]any) (int64, error) {
	if f.updateErr != nil {
		return 0, f.updateErr
	}
	item, ok := f.items[id]
	if !ok {
		return 0, nil
	}
	applyFields(item, fields)
	return 1, nil
}

func (f *fakeStore) UpdateFieldsByUserAndProduct(_ context.Context, userID, productID string, fields map[string]any) (int64, error) {
	if f.updateErr != nil {
		return 0, f.updateErr
	}
	for _, item := range f.items {
		if item.UserID == userID && item.ProductID == productID {
			applyFields(item, fields)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeStore) DeleteByUserAndProduct(_ context.Context, userID, productID string) (int64, error) {
	for id, item := range f.items {
		if item.UserID == userID && item.ProductID == productID {
			delete(f.items, id)
			return 1, nil
		}
	}
	return 0, nil
}

func applyFields(item *models.BasketItem, fields map[string]any) {
	if v, ok := fields["status"]; ok {
		item.Status = v.(enums.ItemStatus)
	}
	if v, ok := fields["quantity"]; ok {
		item.Quantity = v.(int)
	}
	if v, ok := fields["frequency"]; ok {
		item.Frequency = v.(models.Frequency)
	}
	if v, ok := fields["frequency_type"]; ok {
		item.FrequencyType = v.(enums.FrequencyType)
	}
	if v, ok := fields["next_run_at"]; ok {
		item.NextRunAt = v.(time.Time)
	}
}

func fixedClock(value string) func() time.Time {
	ts, _ := time.Parse(time.RFC3339, value)
	return func() time.Time { return ts }
}

func newTestService(t *testing.T, store Store, now func() time.Time) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: store, Now: now})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func validAddParams() AddParams {
	dow := 5
	return AddParams{
		UserID:       "user-1",
		Email:        "user-1@example.com",
		ProductID:    "prod-1",
		Quantity:     2,
		Source:       enums.SourceAmazonIN,
		AffiliateURL: "https://amazon.in/dp/prod-1",
		PriceAtAdd:   decimal.NewFromFloat(499.00),
		Frequency:    models.Frequency{Type: enums.FrequencyWeekly, DayOfWeek: &dow},
	}
}

func assertCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
	if appErr.Code() != want {
		t.Fatalf("error code = %s, want %s", appErr.Code(), want)
	}
}

func TestServiceAddComputesScheduleAndDefaults(t *testing.T) {
	store := newFakeStore()
	// 2024-01-15 is a Monday; weekly dayOfWeek=5 lands on Friday the 19th.
	svc := newTestService(t, store, fixedClock("2024-01-15T10:00:00Z"))

	item, err := svc.Add(context.Background(), validAddParams())
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if item.Status != enums.ItemStatusActive {
		t.Fatalf("status = %s, want active", item.Status)
	}
	if item.Currency != "INR" {
		t.Fatalf("currency = %s, want INR default", item.Currency)
	}
	want, _ := time.Parse(time.RFC3339, "2024-01-19T10:00:00Z")
	if !item.NextRunAt.Equal(want) {
		t.Fatalf("nextRunAt = %v, want %v", item.NextRunAt, want)
	}
}

func TestServiceAddAcceptsMonthlyDay31AndCapsNextRun(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, fixedClock("2024-01-15T10:00:00Z"))

	dom := 31
	params := validAddParams()
	params.Frequency = models.Frequency{Type: enums.FrequencyMonthly, DayOfMonth: &dom}

	item, err := svc.Add(context.Background(), params)
	if err != nil {
		t.Fatalf("Add rejected monthly dayOfMonth=31: %v", err)
	}
	// February has no day 31; the computed due date caps at the 28th.
	want, _ := time.Parse(time.RFC3339, "2024-02-28T10:00:00Z")
	if !item.NextRunAt.Equal(want) {
		t.Fatalf("nextRunAt = %v, want %v", item.NextRunAt, want)
	}
}

func TestServiceAddValidation(t *testing.T) {
	svc := newTestService(t, newFakeStore(), nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*AddParams)
	}{
		{name: "missing user", mutate: func(p *AddParams) { p.UserID = "" }},
		{name: "missing email", mutate: func(p *AddParams) { p.Email = "" }},
		{name: "missing product", mutate: func(p *AddParams) { p.ProductID = "" }},
		{name: "bad frequency", mutate: func(p *AddParams) { p.Frequency = models.Frequency{Type: "hourly"} }},
		{name: "negative quantity", mutate: func(p *AddParams) { p.Quantity = -2 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			params := validAddParams()
			tc.mutate(&params)
			_, err := svc.Add(ctx, params)
			assertCode(t, err, pkgerrors.CodeValidation)
		})
	}
}

func TestServiceAddOverwritesExistingEntry(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, fixedClock("2024-01-15T10:00:00Z"))
	ctx := context.Background()

	first, err := svc.Add(ctx, validAddParams())
	if err != nil {
		t.Fatalf("first Add: %v", err)
	}

	params := validAddParams()
	params.Quantity = 9
	second, err := svc.Add(ctx, params)
	if err != nil {
		t.Fatalf("second Add: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("re-add created a new row: %s != %s", second.ID, first.ID)
	}
	if len(store.items) != 1 {
		t.Fatalf("store holds %d rows, want 1", len(store.items))
	}
}

func TestServiceRemove(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, nil)
	ctx := context.Background()

	if _, err := svc.Add(ctx, validAddParams()); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := svc.Remove(ctx, "user-1", "prod-1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	err := svc.Remove(ctx, "user-1", "prod-1")
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestServiceSetStatusDoesNotTouchSchedule(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, fixedClock("2024-01-15T10:00:00Z"))
	ctx := context.Background()

	added, err := svc.Add(ctx, validAddParams())
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	updated, err := svc.SetStatus(ctx, "user-1", "prod-1", enums.ItemStatusCancelled)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if updated.Status != enums.ItemStatusCancelled {
		t.Fatalf("status = %s, want cancelled", updated.Status)
	}
	if !updated.NextRunAt.Equal(added.NextRunAt) {
		t.Fatalf("SetStatus recomputed schedule: %v != %v", updated.NextRunAt, added.NextRunAt)
	}

	_, err = svc.SetStatus(ctx, "user-1", "prod-1", enums.ItemStatus("archived"))
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.SetStatus(ctx, "user-1", "missing", enums.ItemStatusPaused)
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestServiceUpdateScheduleRecomputes(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, fixedClock("2024-01-15T10:00:00Z"))
	ctx := context.Background()

	added, err := svc.Add(ctx, validAddParams())
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	interval := 10
	updated, err := svc.UpdateSchedule(ctx, added.ID, models.Frequency{Type: enums.FrequencyCustom, IntervalDays: &interval})
	if err != nil {
		t.Fatalf("UpdateSchedule: %v", err)
	}
	want, _ := time.Parse(time.RFC3339, "2024-01-25T10:00:00Z")
	if !updated.NextRunAt.Equal(want) {
		t.Fatalf("nextRunAt = %v, want %v", updated.NextRunAt, want)
	}
	if updated.FrequencyType != enums.FrequencyCustom {
		t.Fatalf("frequencyType = %s, want custom", updated.FrequencyType)
	}

	_, err = svc.UpdateSchedule(ctx, uuid.New(), models.Frequency{Type: enums.FrequencyBuyOnce})
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestServicePauseResume(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, fixedClock("2024-01-15T10:00:00Z"))
	ctx := context.Background()

	added, err := svc.Add(ctx, validAddParams())
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	paused, err := svc.Pause(ctx, added.ID)
	if err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if paused.Status != enums.ItemStatusPaused {
		t.Fatalf("status = %s, want paused", paused.Status)
	}
	if !paused.NextRunAt.Equal(added.NextRunAt) {
		t.Fatalf("Pause must not touch nextRunAt")
	}

	// Resume against a later clock re-anchors the schedule to "now".
	later := newTestService(t, store, fixedClock("2024-03-04T10:00:00Z"))
	resumed, err := later.Resume(ctx, added.ID)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if resumed.Status != enums.ItemStatusActive {
		t.Fatalf("status = %s, want active", resumed.Status)
	}
	// 2024-03-04 is a Monday; weekly dayOfWeek=5 lands on Friday the 8th.
	want, _ := time.Parse(time.RFC3339, "2024-03-08T10:00:00Z")
	if !resumed.NextRunAt.Equal(want) {
		t.Fatalf("nextRunAt = %v, want %v (re-anchored)", resumed.NextRunAt, want)
	}
}

func TestServiceUpdateQuantity(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, nil)
	ctx := context.Background()

	added, err := svc.Add(ctx, validAddParams())
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	updated, err := svc.UpdateQuantity(ctx, added.ID, 7)
	if err != nil {
		t.Fatalf("UpdateQuantity: %v", err)
	}
	if updated.Quantity != 7 {
		t.Fatalf("quantity = %d, want 7", updated.Quantity)
	}

	_, err = svc.UpdateQuantity(ctx, added.ID, 0)
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestServiceListReturnsOnlyActiveItems(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, nil)
	ctx := context.Background()

	if _, err := svc.Add(ctx, validAddParams()); err != nil {
		t.Fatalf("Add: %v", err)
	}
	cancelled := validAddParams()
	cancelled.ProductID = "prod-cancelled"
	if _, err := svc.Add(ctx, cancelled); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := svc.SetStatus(ctx, "user-1", "prod-cancelled", enums.ItemStatusCancelled); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	items, err := svc.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].ProductID != "prod-1" {
		t.Fatalf("List = %+v, want only the active prod-1", items)
	}
}

func TestServiceDueItemsDefaultsAsOfToNow(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, fixedClock("2024-06-01T00:00:00Z"))
	ctx := context.Background()

	due := &models.BasketItem{
		ID:            uuid.New(),
		UserID:        "user-1",
		ProductID:     "prod-due",
		FrequencyType: enums.FrequencyWeekly,
		NextRunAt:     mustTime("2024-05-30T00:00:00Z"),
		Status:        enums.ItemStatusActive,
	}
	notDue := &models.BasketItem{
		ID:            uuid.New(),
		UserID:        "user-1",
		ProductID:     "prod-later",
		FrequencyType: enums.FrequencyWeekly,
		NextRunAt:     mustTime("2024-06-05T00:00:00Z"),
		Status:        enums.ItemStatusActive,
	}
	store.items[due.ID] = due
	store.items[notDue.ID] = notDue

	items, err := svc.DueItems(ctx, time.Time{}, false)
	if err != nil {
		t.Fatalf("DueItems: %v", err)
	}
	if len(items) != 1 || items[0].ProductID != "prod-due" {
		t.Fatalf("DueItems = %+v, want only prod-due", items)
	}
}

func mustTime(value string) time.Time {
	ts, _ := time.Parse(time.RFC3339, value)
	return ts
}
