package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	cartcontrollers "github.com/angelmondragon/storefront-backend/api/controllers/cart"
	ordercontrollers "github.com/angelmondragon/storefront-backend/api/controllers/orders"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/address"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	checkoutsvc "github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/discounts"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/internal/shipping"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// RedisStore is the slice of the redis client the HTTP layer uses for
// idempotency replay, coupon throttling and readiness.
type RedisStore interface {
	Get(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	Ping(ctx context.Context) error
}

type cartPricer interface {
	Price(ctx context.Context, cart *models.Cart) (*pricing.Result, error)
	ResolveCartPricing(ctx context.Context, cartID uuid.UUID) (*pricing.Result, error)
}

// Deps carries every service the router mounts.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    RedisStore
	Gatherer prometheus.Gatherer

	Carts          cart.Service
	Coupons        coupons.Service
	Pricing        cartPricer
	Shipping       shipping.Service
	Addresses      address.Service
	Checkout       checkoutsvc.Service
	Orders         orders.Service
	DiscountsAdmin discounts.AdminService
	CouponsAdmin   coupons.AdminService
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.HTTP.CORSOrigins),
	)

	pingers := map[string]controllers.Pinger{"db": deps.DB, "redis": deps.Redis}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers))
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	couponPolicy := middleware.CouponRateLimitPolicy{
		Window:       cfg.RateLimit.CouponWindow,
		IPLimit:      cfg.RateLimit.CouponIPLimit,
		SessionLimit: cfg.RateLimit.CouponSessionLimit,
	}
	cartDeps := cartcontrollers.Deps{
		Carts:   deps.Carts,
		Coupons: deps.Coupons,
		Pricing: deps.Pricing,
		Cookie:  cfg.Cart,
		Logger:  logg,
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, logg))
			r.Use(middleware.CartSession(cfg.Cart.SessionCookieName))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartcontrollers.Get(cartDeps))
				r.Get("/pricing", cartcontrollers.Pricing(cartDeps))
				r.Post("/items", cartcontrollers.AddItem(cartDeps))
				r.Patch("/items/{lineId}", cartcontrollers.UpdateItem(cartDeps))
				r.Delete("/items/{lineId}", cartcontrollers.RemoveItem(cartDeps))
				r.With(middleware.CouponRateLimit(couponPolicy, deps.Redis, logg)).
					Post("/coupon", cartcontrollers.ApplyCoupon(cartDeps))
				r.Delete("/coupon", cartcontrollers.RemoveCoupon(cartDeps))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(deps.Redis, logg))

			r.Get("/shipping/quotes", controllers.ShippingQuotes(deps.Shipping, logg))
			r.Post("/checkout", controllers.Checkout(deps.Checkout, logg))
			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", controllers.AddressList(deps.Addresses, logg))
				r.Put("/{addressId}/default", controllers.AddressSetDefault(deps.Addresses, logg))
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordercontrollers.List(deps.Orders, logg))
				r.Get("/{orderId}", ordercontrollers.Detail(deps.Orders, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Post("/discounts", controllers.AdminCreateDiscount(deps.DiscountsAdmin, logg))
		r.Put("/discounts/{discountId}", controllers.AdminUpdateDiscount(deps.DiscountsAdmin, logg))
		r.Post("/coupons", controllers.AdminCreateCoupon(deps.CouponsAdmin, logg))
	})

	return r
}
