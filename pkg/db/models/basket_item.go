package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aviders/basket-backend/pkg/enums"
)

// Frequency is the tagged recurrence rule attached to a basket item. Only the
// field matching Type is meaningful; the rest stay nil.
type Frequency struct {
	Type         enums.FrequencyType `json:"type"`
	DayOfWeek    *int                `json:"dayOfWeek,omitempty"`
	DayOfMonth   *int                `json:"dayOfMonth,omitempty"`
	IntervalDays *int                `json:"intervalDays,omitempty"`
}

// BasketItem is one recurring-or-one-time purchase intent. The pair
// (user_id, product_id) is unique; re-adding the same product overwrites the
// row in place.
type BasketItem struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID        string              `gorm:"column:user_id;not null;index:basket_items_user_id_idx;uniqueIndex:basket_items_user_product_key" json:"userId"`
	Email         string              `gorm:"column:email;not null" json:"email"`
	ProductID     string              `gorm:"column:product_id;not null;uniqueIndex:basket_items_user_product_key" json:"productId"`
	Title         *string             `gorm:"column:title" json:"title,omitempty"`
	Image         *string             `gorm:"column:image" json:"image,omitempty"`
	Quantity      int                 `gorm:"column:quantity;not null;default:1" json:"quantity"`
	Source        enums.Source        `gorm:"column:source;not null" json:"source"`
	AffiliateURL  string              `gorm:"column:affiliate_url;not null" json:"affiliateUrl"`
	PriceAtAdd    decimal.Decimal     `gorm:"column:price_at_add;type:numeric(12,2);not null" json:"priceAtAdd"`
	Currency      string              `gorm:"column:currency;not null;default:INR" json:"currency"`
	FrequencyType enums.FrequencyType `gorm:"column:frequency_type;not null;index:basket_items_frequency_type_idx" json:"-"`
	Frequency     Frequency           `gorm:"column:frequency;type:jsonb;serializer:json" json:"frequency"`
	NextRunAt     time.Time           `gorm:"column:next_run_at;not null;index:basket_items_next_run_at_idx" json:"nextRunAt"`
	Status        enums.ItemStatus    `gorm:"column:status;not null;default:active;index:basket_items_status_idx" json:"status"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
