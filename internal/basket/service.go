package basket

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/aviders/basket-backend/internal/schedule"
	"github.com/aviders/basket-backend/pkg/db/models"
	"github.com/aviders/basket-backend/pkg/enums"
	pkgerrors "github.com/aviders/basket-backend/pkg/errors"
)

// Store is the persistence surface the basket service depends on.
type Store interface {
	Upsert(ctx context.Context, item *models.BasketItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.BasketItem, error)
	FindByUserAndProduct(ctx context.Context, userID, productID string) (*models.BasketItem, error)
	FindAllForUser(ctx context.Context, userID string) ([]models.BasketItem, error)
	FindDue(ctx context.Context, asOf time.Time, excludeBuyOnce bool) ([]models.BasketItem, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (int64, error)
	UpdateFieldsByUserAndProduct(ctx context.Context, userID, productID string, fields map[string]any) (int64, error)
	DeleteByUserAndProduct(ctx context.Context, userID, productID string) (int64, error)
}

// AddParams carries everything needed to add or overwrite a basket item.
type AddParams struct {
	UserID       string
	Email        string
	ProductID    string
	Title        *string
	Image        *string
	Quantity     int
	Source       enums.Source
	AffiliateURL string
	PriceAtAdd   decimal.Decimal
	Currency     string
	Frequency    models.Frequency
}

// ServiceParams groups dependencies for the basket service.
type ServiceParams struct {
	Repo Store
	Now  func() time.Time
}

// Service exposes business rules for basket item lifecycle management.
type Service interface {
	Add(ctx context.Context, params AddParams) (*models.BasketItem, error)
	Remove(ctx context.Context, userID, productID string) error
	SetStatus(ctx context.Context, userID, productID string, status enums.ItemStatus) (*models.BasketItem, error)
	UpdateSchedule(ctx context.Context, itemID uuid.UUID, freq models.Frequency) (*models.BasketItem, error)
	Pause(ctx context.Context, itemID uuid.UUID) (*models.BasketItem, error)
	Resume(ctx context.Context, itemID uuid.UUID) (*models.BasketItem, error)
	UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) (*models.BasketItem, error)
	List(ctx context.Context, userID string) ([]models.BasketItem, error)
	DueItems(ctx context.Context, asOf time.Time, excludeBuyOnce bool) ([]models.BasketItem, error)
}

type service struct {
	repo Store
	now  func() time.Time
}

// NewService builds a basket service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "basket repo is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, now: now}, nil
}

// Add validates the request and upserts the item keyed by (user, product). An
// existing row for that pair is overwritten in place, never duplicated.
func (s *service) Add(ctx context.Context, params AddParams) (*models.BasketItem, error) {
	if params.UserID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if params.Email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if params.ProductID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if err := schedule.Validate(params.Frequency); err != nil {
		return nil, err
	}
	quantity := params.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	currency := params.Currency
	if currency == "" {
		currency = "INR"
	}

	item := &models.BasketItem{
		UserID:        params.UserID,
		Email:         params.Email,
		ProductID:     params.ProductID,
		Title:         params.Title,
		Image:         params.Image,
		Quantity:      quantity,
		Source:        params.Source,
		AffiliateURL:  params.AffiliateURL,
		PriceAtAdd:    params.PriceAtAdd,
		Currency:      currency,
		FrequencyType: params.Frequency.Type,
		Frequency:     params.Frequency,
		NextRunAt:     schedule.NextRun(params.Frequency, s.now()),
		Status:        enums.ItemStatusActive,
	}
	if err := s.repo.Upsert(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert basket item")
	}
	return item, nil
}

// Remove deletes the (user, product) entry.
func (s *service) Remove(ctx context.Context, userID, productID string) error {
	if userID == "" || productID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and product id are required")
	}
	affected, err := s.repo.DeleteByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete basket item")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "basket item not found")
	}
	return nil
}

// SetStatus writes the item status without touching its schedule.
func (s *service) SetStatus(ctx context.Context, userID, productID string, status enums.ItemStatus) (*models.BasketItem, error) {
	if userID == "" || productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and product id are required")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}
	affected, err := s.repo.UpdateFieldsByUserAndProduct(ctx, userID, productID, map[string]any{"status": status})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update basket item status")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "basket item not found")
	}
	return s.reloadByUserAndProduct(ctx, userID, productID)
}

// UpdateSchedule replaces the item's frequency and recomputes its due date.
func (s *service) UpdateSchedule(ctx context.Context, itemID uuid.UUID, freq models.Frequency) (*models.BasketItem, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if err := schedule.Validate(freq); err != nil {
		return nil, err
	}
	fields := map[string]any{
		"frequency":      freq,
		"frequency_type": freq.Type,
		"next_run_at":    schedule.NextRun(freq, s.now()),
	}
	affected, err := s.repo.UpdateFields(ctx, itemID, fields)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update basket item schedule")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "basket item not found")
	}
	return s.reloadByID(ctx, itemID)
}

// Pause freezes the item. The stored due date is left as-is; Resume re-anchors it.
func (s *service) Pause(ctx context.Context, itemID uuid.UUID) (*models.BasketItem, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	affected, err := s.repo.UpdateFields(ctx, itemID, map[string]any{"status": enums.ItemStatusPaused})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "pause basket item")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "basket item not found")
	}
	return s.reloadByID(ctx, itemID)
}

// Resume reactivates the item and recomputes its due date from now, discarding
// any cycles missed while paused.
func (s *service) Resume(ctx context.Context, itemID uuid.UUID) (*models.BasketItem, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "basket item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket item")
	}
	fields := map[string]any{
		"status":      enums.ItemStatusActive,
		"next_run_at": schedule.NextRun(item.Frequency, s.now()),
	}
	if _, err := s.repo.UpdateFields(ctx, itemID, fields); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resume basket item")
	}
	return s.reloadByID(ctx, itemID)
}

// UpdateQuantity changes how many units are bought per cycle.
func (s *service) UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) (*models.BasketItem, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	affected, err := s.repo.UpdateFields(ctx, itemID, map[string]any{"quantity": quantity})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update basket item quantity")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "basket item not found")
	}
	return s.reloadByID(ctx, itemID)
}

// List returns the user's active items, newest first.
func (s *service) List(ctx context.Context, userID string) ([]models.BasketItem, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	items, err := s.repo.FindAllForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list basket items")
	}
	return items, nil
}

// DueItems returns active items due at or before asOf, earliest first.
func (s *service) DueItems(ctx context.Context, asOf time.Time, excludeBuyOnce bool) ([]models.BasketItem, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	items, err := s.repo.FindDue(ctx, asOf, excludeBuyOnce)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query due basket items")
	}
	return items, nil
}

func (s *service) reloadByID(ctx context.Context, itemID uuid.UUID) (*models.BasketItem, error) {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload basket item")
	}
	return item, nil
}

func (s *service) reloadByUserAndProduct(ctx context.Context, userID, productID string) (*models.BasketItem, error) {
	item, err := s.repo.FindByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload basket item")
	}
	return item, nil
}
