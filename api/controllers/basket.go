package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aviders/basket-backend/api/responses"
	"github.com/aviders/basket-backend/api/validators"
	"github.com/aviders/basket-backend/internal/basket"
	"github.com/aviders/basket-backend/pkg/db/models"
	"github.com/aviders/basket-backend/pkg/enums"
	pkgerrors "github.com/aviders/basket-backend/pkg/errors"
	"github.com/aviders/basket-backend/pkg/logger"
)

type addBasketItemPayload struct {
	UserID       string           `json:"userId" validate:"required"`
	Email        string           `json:"email" validate:"required,email"`
	ProductID    string           `json:"productId" validate:"required"`
	Title        *string          `json:"title"`
	Image        *string          `json:"image"`
	Quantity     int              `json:"quantity" validate:"omitempty,min=1"`
	Source       string           `json:"source" validate:"required,oneof=amazon_in amazon_us woocommerce"`
	AffiliateURL string           `json:"affiliateUrl" validate:"required,url"`
	PriceAtAdd   decimal.Decimal  `json:"priceAtAdd" validate:"required"`
	Currency     string           `json:"currency"`
	Frequency    models.Frequency `json:"frequency"`
}

type removeBasketItemPayload struct {
	UserID    string `json:"userId" validate:"required"`
	ProductID string `json:"productId" validate:"required"`
}

type setStatusPayload struct {
	UserID    string `json:"userId" validate:"required"`
	ProductID string `json:"productId" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=active paused cancelled"`
}

type updateSchedulePayload struct {
	Frequency models.Frequency `json:"frequency"`
}

type updateQuantityPayload struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// BasketAdd upserts an item into the caller's basket.
func BasketAdd(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}

		var payload addBasketItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.Add(ctx, basket.AddParams{
			UserID:       payload.UserID,
			Email:        payload.Email,
			ProductID:    payload.ProductID,
			Title:        payload.Title,
			Image:        payload.Image,
			Quantity:     payload.Quantity,
			Source:       enums.Source(payload.Source),
			AffiliateURL: payload.AffiliateURL,
			PriceAtAdd:   payload.PriceAtAdd,
			Currency:     payload.Currency,
			Frequency:    payload.Frequency,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// BasketList returns every item in a user's basket.
func BasketList(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}

		userID := strings.TrimSpace(r.URL.Query().Get("userId"))
		if userID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "userId query parameter is required"))
			return
		}

		items, err := svc.List(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items, "total": len(items)})
	}
}

// BasketRemove deletes a (user, product) entry.
func BasketRemove(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}

		var payload removeBasketItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Remove(ctx, payload.UserID, payload.ProductID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"removed": true})
	}
}

// BasketSetStatus writes the item status for a (user, product) pair.
func BasketSetStatus(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}

		var payload setStatusPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.SetStatus(ctx, payload.UserID, payload.ProductID, enums.ItemStatus(payload.Status))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// BasketDue returns every active item due as of the optional asOf parameter.
func BasketDue(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return dueHandler(svc, logg, false, "total")
}

// BasketScheduledDue returns due recurring items, excluding buy_once.
func BasketScheduledDue(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return dueHandler(svc, logg, true, "count")
}

// countKey names the size field in the response; the plain due listing
// reports "total" while the scheduled variant reports "count".
func dueHandler(svc basket.Service, logg *logger.Logger, excludeBuyOnce bool, countKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}

		var asOf time.Time
		if raw := strings.TrimSpace(r.URL.Query().Get("asOf")); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "asOf must be an RFC3339 timestamp"))
				return
			}
			asOf = parsed
		}

		items, err := svc.DueItems(ctx, asOf, excludeBuyOnce)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items, countKey: len(items)})
	}
}

// BasketUpdateSchedule replaces an item's frequency and recomputes its due date.
func BasketUpdateSchedule(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}

		itemID, err := parseItemID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateSchedulePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.UpdateSchedule(ctx, itemID, payload.Frequency)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// BasketPause freezes an item's schedule.
func BasketPause(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}

		itemID, err := parseItemID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.Pause(ctx, itemID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// BasketResume reactivates an item and re-anchors its schedule to now.
func BasketResume(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}

		itemID, err := parseItemID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.Resume(ctx, itemID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// BasketUpdateQuantity changes how many units are bought per cycle.
func BasketUpdateQuantity(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}

		itemID, err := parseItemID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateQuantityPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.UpdateQuantity(ctx, itemID, payload.Quantity)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func parseItemID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "itemId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	itemID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id")
	}
	return itemID, nil
}
