package checkout

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/aviders/basket-backend/pkg/db/models"
	"github.com/aviders/basket-backend/pkg/enums"
	pkgerrors "github.com/aviders/basket-backend/pkg/errors"
	"github.com/aviders/basket-backend/pkg/logger"
)

const (
	affiliateTagUS      = "aviders-20"
	affiliateTagDefault = "aviders-21"
	marketplaceUS       = "amazon.com"
	marketplaceDefault  = "amazon.in"
)

// ItemSource is the slice of basket persistence the partitioner needs.
type ItemSource interface {
	FindActiveForUser(ctx context.Context, userID string, productIDs []string) ([]models.BasketItem, error)
}

// RotationStore advances the shared wishlist counter.
type RotationStore interface {
	Advance(ctx context.Context, targetCount int) (int, error)
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Items       ItemSource
	Rotation    RotationStore
	WishlistIDs []string
	Logg        *logger.Logger
}

// Service partitions a user's basket into quick-buy and scheduled subsets.
type Service interface {
	Checkout(ctx context.Context, userID string, productIDs []string) (Result, error)
}

type service struct {
	items       ItemSource
	rotation    RotationStore
	wishlistIDs []string
	logg        *logger.Logger
}

// NewService builds a checkout service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Items == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item source is required")
	}
	if params.Rotation == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rotation store is required")
	}
	if len(params.WishlistIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one wishlist id is required")
	}
	return &service{
		items:       params.Items,
		rotation:    params.Rotation,
		wishlistIDs: params.WishlistIDs,
		logg:        params.Logg,
	}, nil
}

// Checkout selects the user's active items (optionally restricted to a product
// id set), splits them into quick-buy vs scheduled, totals each subset, and
// assigns a rotated wishlist destination when anything is bought now.
func (s *service) Checkout(ctx context.Context, userID string, productIDs []string) (Result, error) {
	if userID == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	items, err := s.items.FindActiveForUser(ctx, userID, productIDs)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active basket items")
	}
	if len(items) == 0 {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "no items to checkout")
	}

	var quickBuy, scheduled []models.BasketItem
	for _, item := range items {
		if item.FrequencyType == enums.FrequencyBuyOnce {
			quickBuy = append(quickBuy, item)
		} else {
			scheduled = append(scheduled, item)
		}
	}

	result := Result{CheckoutType: checkoutType(len(quickBuy), len(scheduled))}
	if len(quickBuy) > 0 {
		// One rotation step per checkout call, never one per item.
		wishlistID := s.nextWishlistID(ctx)
		tag, domain := affiliateFor(quickBuy[0].Source)
		result.QuickBuy = &QuickBuySection{
			Items:        quickBuy,
			Total:        subtotal(quickBuy),
			WishlistID:   wishlistID,
			WishlistURL:  wishlistURL(domain, wishlistID, tag),
			AffiliateTag: tag,
		}
		result.WishlistURL = result.QuickBuy.WishlistURL
	}
	if len(scheduled) > 0 {
		result.Scheduled = &ScheduledSection{
			Items: scheduled,
			Total: subtotal(scheduled),
		}
	}
	return result, nil
}

// nextWishlistID rotates through the configured handles. Rotation fairness is
// best-effort: any storage failure falls back to the first handle instead of
// failing the checkout.
func (s *service) nextWishlistID(ctx context.Context) string {
	index, err := s.rotation.Advance(ctx, len(s.wishlistIDs))
	if err != nil || index < 0 || index >= len(s.wishlistIDs) {
		if err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "fallback_wishlist", s.wishlistIDs[0]), "wishlist rotation unavailable, using first handle")
		}
		return s.wishlistIDs[0]
	}
	return s.wishlistIDs[index]
}

func checkoutType(quickBuyCount, scheduledCount int) enums.CheckoutType {
	switch {
	case quickBuyCount > 0 && scheduledCount > 0:
		return enums.CheckoutTypeMixed
	case quickBuyCount > 0:
		return enums.CheckoutTypeQuickBuy
	default:
		return enums.CheckoutTypeScheduled
	}
}

func subtotal(items []models.BasketItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.PriceAtAdd.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func affiliateFor(source enums.Source) (tag, domain string) {
	if source == enums.SourceAmazonUS {
		return affiliateTagUS, marketplaceUS
	}
	return affiliateTagDefault, marketplaceDefault
}

func wishlistURL(domain, wishlistID, tag string) string {
	return fmt.Sprintf("https://www.%s/hz/wishlist/ls/%s?ref_=wl_share&tag=%s", domain, wishlistID, tag)
}
