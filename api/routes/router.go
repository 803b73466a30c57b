package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/forkline/storefront/api/controllers"
	"github.com/forkline/storefront/api/controllers/admin"
	cartcontrollers "github.com/forkline/storefront/api/controllers/cart"
	deliverycontrollers "github.com/forkline/storefront/api/controllers/delivery"
	"github.com/forkline/storefront/api/middleware"
	"github.com/forkline/storefront/internal/cart"
	"github.com/forkline/storefront/internal/delivery"
	"github.com/forkline/storefront/internal/media"
	"github.com/forkline/storefront/internal/menu"
	"github.com/forkline/storefront/internal/restaurants"
	"github.com/forkline/storefront/pkg/config"
	"github.com/forkline/storefront/pkg/enums"
	"github.com/forkline/storefront/pkg/logger"
	"github.com/forkline/storefront/pkg/metrics"
)

// Params wires the HTTP surface. Media may be nil when image hosting is not
// configured.
type Params struct {
	Config      *config.Config
	Logger      *logger.Logger
	Readiness   map[string]controllers.Pinger
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
	Restaurants restaurants.Service
	Menu        menu.Service
	Carts       cart.SessionService
	Delivery    delivery.Service
	Media       media.Service
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
		middleware.CORS(cfg.App.CORSAllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Readiness))
	})
	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/restaurants", func(r chi.Router) {
			r.Get("/", controllers.RestaurantList(p.Restaurants, logg))
			r.Get("/{restaurantId}", controllers.RestaurantDetail(p.Restaurants, logg))
			r.Get("/{restaurantId}/menu", controllers.RestaurantMenu(p.Menu, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.CartSession(logg))
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartcontrollers.CartFetch(p.Carts, logg))
				r.Delete("/", cartcontrollers.CartClear(p.Carts, logg))
				r.Post("/items", cartcontrollers.CartAddItem(p.Carts, logg))
				r.Patch("/items/{lineId}", cartcontrollers.CartUpdateItem(p.Carts, logg))
				r.Delete("/items/{lineId}", cartcontrollers.CartRemoveItem(p.Carts, logg))
				r.Get("/location", cartcontrollers.CartLocationFetch(p.Carts, logg))
				r.Put("/location", cartcontrollers.CartLocationSave(p.Carts, logg))
			})
			r.Route("/delivery", func(r chi.Router) {
				r.Post("/quotes", deliverycontrollers.DeliveryQuotes(p.Delivery, p.Carts, logg))
				r.Post("/dispatch", deliverycontrollers.DeliveryDispatch(p.Delivery, p.Carts, logg))
				r.Get("/{provider}/{externalId}", deliverycontrollers.DeliveryStatus(p.Delivery, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(enums.StaffRoleAdmin, logg))

		r.Route("/restaurants", func(r chi.Router) {
			r.Post("/", admin.RestaurantCreate(p.Restaurants, logg))
			r.Route("/{restaurantId}", func(r chi.Router) {
				r.Patch("/", admin.RestaurantUpdate(p.Restaurants, logg))
				r.Delete("/", admin.RestaurantDelete(p.Restaurants, logg))
				r.Put("/flags", admin.RestaurantSetFlags(p.Restaurants, logg))
				r.Put("/schedule", admin.RestaurantSetSchedule(p.Restaurants, logg))
				r.Get("/menu", admin.MenuList(p.Menu, logg))
				r.Post("/menu", admin.MenuItemCreate(p.Menu, logg))
			})
		})
		r.Route("/menu-items/{menuItemId}", func(r chi.Router) {
			r.Patch("/", admin.MenuItemUpdate(p.Menu, logg))
			r.Delete("/", admin.MenuItemDelete(p.Menu, logg))
		})
		r.Post("/uploads/images", admin.ImageUpload(p.Media, logg))
		r.Delete("/uploads/images", admin.ImageDelete(p.Media, logg))
		r.Get("/deliveries", admin.DeliveryRequests(p.Delivery, logg))
	})

	return r
}
