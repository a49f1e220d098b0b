package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/aviders/basket-backend/api/responses"
	"github.com/aviders/basket-backend/internal/reminders"
	pkgerrors "github.com/aviders/basket-backend/pkg/errors"
	"github.com/aviders/basket-backend/pkg/logger"
)

// RemindersRun triggers a reminder dispatch outside the worker cadence.
func RemindersRun(svc reminders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reminders service unavailable"))
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

		result, err := svc.Run(ctx, asOf)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
