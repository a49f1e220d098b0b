package checkout

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/aviders/basket-backend/pkg/db/models"
)

// RotationRepository persists the singleton counter that spreads quick-buy
// checkouts across the fixed wishlist handles.
type RotationRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRotationRepository constructs a rotation repository bound to the provided gorm DB.
func NewRotationRepository(db *gorm.DB) *RotationRepository {
	return &RotationRepository{db: db, now: time.Now}
}

// Advance returns the index to use for this checkout and atomically steps the
// counter to (index+1) mod targetCount. The row is created lazily at index 0,
// so the first caller ever is handed index 0.
func (r *RotationRepository) Advance(ctx context.Context, targetCount int) (int, error) {
	if targetCount < 1 {
		return 0, gorm.ErrInvalidValue
	}
	now := r.now()

	if err := r.db.WithContext(ctx).
		Exec(`INSERT INTO wishlist_rotations (id, current_index, last_used_at, created_at, updated_at)
VALUES (?, 0, ?, ?, ?) ON CONFLICT (id) DO NOTHING`,
			models.RotationRowID, now, now, now).
		Error; err != nil {
		return 0, err
	}

	// Single round trip keeps concurrent checkouts from handing out the same
	// index: the row-level write lock serializes them.
	var advanced models.WishlistRotation
	if err := r.db.WithContext(ctx).
		Raw(`UPDATE wishlist_rotations
SET current_index = (current_index + 1) % ?, last_used_at = ?, updated_at = ?
WHERE id = ? RETURNING current_index`,
			targetCount, now, now, models.RotationRowID).
		Scan(&advanced).
		Error; err != nil {
		return 0, err
	}

	used := (advanced.CurrentIndex - 1 + targetCount) % targetCount
	return used, nil
}
