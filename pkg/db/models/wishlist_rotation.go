package models

import "time"

// RotationRowID is the primary key of the singleton rotation row.
const RotationRowID = 1

// WishlistRotation is the process-wide counter selecting which share-wishlist
// handle the next quick-buy checkout is pointed at. A single row, created
// lazily at index 0.
type WishlistRotation struct {
	ID           int       `gorm:"column:id;primaryKey"`
	CurrentIndex int       `gorm:"column:current_index;not null;default:0"`
	LastUsedAt   time.Time `gorm:"column:last_used_at;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
