package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/aviders/basket-backend/pkg/db/models"
	"github.com/aviders/basket-backend/pkg/enums"
)

// QuickBuySection covers the buy_once portion of a checkout: the items, their
// combined total, and the rotated wishlist destination to send the buyer to.
type QuickBuySection struct {
	Items        []models.BasketItem `json:"items"`
	Total        decimal.Decimal     `json:"total"`
	WishlistID   string              `json:"wishlistId"`
	WishlistURL  string              `json:"wishlistUrl"`
	AffiliateTag string              `json:"affiliateTag"`
}

// ScheduledSection covers the recurring portion of a checkout.
type ScheduledSection struct {
	Items []models.BasketItem `json:"items"`
	Total decimal.Decimal     `json:"total"`
}

// Result is the partitioned outcome of a checkout call. WishlistURL mirrors
// the quick-buy destination at the top level so clients can redirect without
// digging into the section.
type Result struct {
	CheckoutType enums.CheckoutType `json:"checkoutType"`
	WishlistURL  string             `json:"wishlistUrl,omitempty"`
	QuickBuy     *QuickBuySection   `json:"quickBuy,omitempty"`
	Scheduled    *ScheduledSection  `json:"scheduled,omitempty"`
}
