package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aviders/basket-backend/api/controllers"
	"github.com/aviders/basket-backend/api/middleware"
	"github.com/aviders/basket-backend/internal/basket"
	checkoutsvc "github.com/aviders/basket-backend/internal/checkout"
	"github.com/aviders/basket-backend/internal/reminders"
	"github.com/aviders/basket-backend/pkg/config"
	"github.com/aviders/basket-backend/pkg/db"
	"github.com/aviders/basket-backend/pkg/logger"
	"github.com/aviders/basket-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	basketService basket.Service,
	checkoutService checkoutsvc.Service,
	remindersService reminders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/basket", func(r chi.Router) {
		r.Post("/", controllers.BasketAdd(basketService, logg))
		r.Get("/", controllers.BasketList(basketService, logg))
		r.Delete("/", controllers.BasketRemove(basketService, logg))
		r.Put("/status", controllers.BasketSetStatus(basketService, logg))
		r.Get("/due", controllers.BasketDue(basketService, logg))
		r.Get("/scheduled/due", controllers.BasketScheduledDue(basketService, logg))
		r.Post("/checkout", controllers.Checkout(checkoutService, logg))

		r.Route("/item/{itemId}", func(r chi.Router) {
			r.Patch("/", controllers.BasketUpdateSchedule(basketService, logg))
			r.Patch("/pause", controllers.BasketPause(basketService, logg))
			r.Patch("/resume", controllers.BasketResume(basketService, logg))
			r.Patch("/quantity", controllers.BasketUpdateQuantity(basketService, logg))
		})

		r.Post("/notifications/remind", controllers.RemindersRun(remindersService, logg))
	})

	return r
}
