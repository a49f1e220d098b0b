package controllers

import (
	"net/http"

	"github.com/aviders/basket-backend/api/responses"
	"github.com/aviders/basket-backend/api/validators"
	"github.com/aviders/basket-backend/internal/checkout"
	pkgerrors "github.com/aviders/basket-backend/pkg/errors"
	"github.com/aviders/basket-backend/pkg/logger"
)

type checkoutPayload struct {
	UserID             string   `json:"userId" validate:"required"`
	SelectedProductIDs []string `json:"selectedProductIds"`
}

// Checkout partitions the caller's basket into quick-buy and scheduled subsets.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Checkout(ctx, payload.UserID, payload.SelectedProductIDs)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
