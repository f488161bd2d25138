package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gardenaqua/gardenaqua-backend/api/controllers"
	"github.com/gardenaqua/gardenaqua-backend/api/middleware"
	cartsvc "github.com/gardenaqua/gardenaqua-backend/internal/cart"
	catalogsvc "github.com/gardenaqua/gardenaqua-backend/internal/catalog"
	checkoutsvc "github.com/gardenaqua/gardenaqua-backend/internal/checkout"
	orderssvc "github.com/gardenaqua/gardenaqua-backend/internal/orders"
	"github.com/gardenaqua/gardenaqua-backend/pkg/config"
	"github.com/gardenaqua/gardenaqua-backend/pkg/logger"
	"github.com/gardenaqua/gardenaqua-backend/pkg/metrics"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	database pinger,
	sessions pinger,
	collector *metrics.HTTPMetrics,
	catalogService catalogsvc.Service,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	ordersService orderssvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
		middleware.Metrics(collector),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, database, sessions))
	})

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(cfg.Session, logg))

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/categories", controllers.Categories(catalogService, logg))
			r.Get("/brands", controllers.Brands(catalogService, logg))
			r.Get("/products", controllers.Products(catalogService, logg))
			r.Get("/products/{slug}", controllers.ProductBySlug(catalogService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Put("/items/{variantID}", controllers.CartUpdateItem(cartService, logg))
			r.Delete("/items/{variantID}", controllers.CartRemoveItem(cartService, logg))
		})

		r.Post("/checkout", controllers.Checkout(checkoutService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/{orderNumber}", controllers.OrderByNumber(ordersService, logg))
			r.Post("/lookup", controllers.OrderLookup(ordersService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.OperatorToken(cfg.Operator, logg))
		r.Patch("/orders/{orderNumber}/status", controllers.AdminOrderStatus(ordersService, logg))
	})

	return r
}
