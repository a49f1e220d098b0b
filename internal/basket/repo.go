package basket

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aviders/basket-backend/pkg/db/models"
	"github.com/aviders/basket-backend/pkg/enums"
)

// Repository encapsulates basket item persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a basket repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// upsertColumns is every column overwritten when a user re-adds a product.
// Identity and creation metadata stay untouched.
var upsertColumns = []string{
	"email", "title", "image", "quantity", "source", "affiliate_url",
	"price_at_add", "currency", "frequency_type", "frequency",
	"next_run_at", "status", "updated_at",
}

// Upsert inserts the item, overwriting an existing (user, product) row in place.
func (r *Repository) Upsert(ctx context.Context, item *models.BasketItem) error {
	if item == nil {
		return gorm.ErrInvalidValue
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).
		Create(item).
		Error
}

// FindByID loads a single item by its primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.BasketItem, error) {
	var item models.BasketItem
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&item).
		Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByUserAndProduct loads the unique item for a (user, product) pair.
func (r *Repository) FindByUserAndProduct(ctx context.Context, userID, productID string) (*models.BasketItem, error) {
	var item models.BasketItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).
		Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindAllForUser returns the user's active items, newest first. Paused and
// cancelled rows stay in the table but never show in the listing.
func (r *Repository) FindAllForUser(ctx context.Context, userID string) ([]models.BasketItem, error) {
	var items []models.BasketItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, enums.ItemStatusActive).
		Order("created_at DESC").
		Find(&items).
		Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindActiveForUser returns the user's active items, optionally restricted to
// a product id set.
func (r *Repository) FindActiveForUser(ctx context.Context, userID string, productIDs []string) ([]models.BasketItem, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, enums.ItemStatusActive)
	if len(productIDs) > 0 {
		query = query.Where("product_id IN ?", productIDs)
	}
	var items []models.BasketItem
	if err := query.Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindDue returns active items due at or before asOf, earliest first. Ties on
// next_run_at break on id so ordering is stable across calls.
func (r *Repository) FindDue(ctx context.Context, asOf time.Time, excludeBuyOnce bool) ([]models.BasketItem, error) {
	query := r.db.WithContext(ctx).
		Where("status = ? AND next_run_at <= ?", enums.ItemStatusActive, asOf)
	if excludeBuyOnce {
		query = query.Where("frequency_type <> ?", enums.FrequencyBuyOnce)
	}
	var items []models.BasketItem
	if err := query.
		Order("next_run_at ASC").
		Order("id ASC").
		Find(&items).
		Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateFields applies a partial update by item id and reports how many rows
// were touched.
func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.BasketItem{}).
		Where("id = ?", id).
		Updates(fields)
	return result.RowsAffected, result.Error
}

// UpdateFieldsByUserAndProduct applies a partial update keyed by the unique
// (user, product) pair.
func (r *Repository) UpdateFieldsByUserAndProduct(ctx context.Context, userID, productID string, fields map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.BasketItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Updates(fields)
	return result.RowsAffected, result.Error
}

// DeleteByUserAndProduct removes the matching item and reports whether a row
// existed.
func (r *Repository) DeleteByUserAndProduct(ctx context.Context, userID, productID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.BasketItem{})
	return result.RowsAffected, result.Error
}
