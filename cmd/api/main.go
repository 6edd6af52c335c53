package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/api/routes"
	"github.com/angelmondragon/storefront-backend/internal/address"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/discounts"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/internal/shipping"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps, err := buildServices(logg, dbClient, metrics.NewPricingMetrics(registry))
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}
	deps.Config = cfg
	deps.Logger = logg
	deps.DB = dbClient
	deps.Redis = redisClient
	deps.Gatherer = registry

	addr := ":" + cfg.App.Port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      routes.NewRouter(deps),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutdown signal received")
	}
	stop()

	if err := shutdown(server, dbClient, redisClient, cfg.HTTP.ShutdownTimeout); err != nil {
		logg.Error(ctx, "unclean shutdown", err)
		exitCode = 1
	}
	logg.Info(ctx, "api server stopped")
	os.Exit(exitCode)
}

func shutdown(server *http.Server, dbClient *db.Client, redisClient *redis.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var err error
	if shutdownErr := server.Shutdown(ctx); shutdownErr != nil && !errors.Is(shutdownErr, http.ErrServerClosed) {
		err = multierr.Append(err, shutdownErr)
	}
	err = multierr.Append(err, redisClient.Close())
	err = multierr.Append(err, dbClient.Close())
	return err
}

func buildServices(logg *logger.Logger, dbClient *db.Client, pricingMetrics *metrics.PricingMetrics) (routes.Deps, error) {
	conn := dbClient.DB()

	catalogRepo := catalog.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)
	couponRepo := coupons.NewRepository(conn)
	discountRepo := discounts.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)

	cartService, err := cart.NewService(cartRepo, dbClient, catalogRepo, logg)
	if err != nil {
		return routes.Deps{}, err
	}
	validator, err := coupons.NewValidator(couponRepo, catalogRepo, pricingMetrics, time.Now)
	if err != nil {
		return routes.Deps{}, err
	}
	couponService, err := coupons.NewService(cartRepo, validator)
	if err != nil {
		return routes.Deps{}, err
	}
	resolver, err := pricing.NewResolver(pricing.Deps{
		Carts:     cartRepo,
		Variants:  catalogRepo,
		Discounts: discounts.NewMatcher(discountRepo, logg, time.Now),
		Coupons:   validator,
		Metrics:   pricingMetrics,
		Logger:    logg,
	})
	if err != nil {
		return routes.Deps{}, err
	}
	addressService, err := address.NewService(address.NewRepository(conn), dbClient)
	if err != nil {
		return routes.Deps{}, err
	}
	shippingService, err := shipping.NewService(shipping.NewRepository(conn), addressService, resolver)
	if err != nil {
		return routes.Deps{}, err
	}
	checkoutService, err := checkout.NewService(checkout.Deps{
		Tx:       dbClient,
		Carts:    cartRepo,
		Orders:   ordersRepo,
		Coupons:  couponRepo,
		Variants: catalogRepo,
		Pricing:  resolver,
		Shipping: shippingService,
		Outbox:   outbox.NewService(outbox.NewRepository(conn), logg),
		Logger:   logg,
		Now:      time.Now,
	})
	if err != nil {
		return routes.Deps{}, err
	}
	ordersService, err := orders.NewService(ordersRepo)
	if err != nil {
		return routes.Deps{}, err
	}
	discountAdmin, err := discounts.NewAdminService(discountRepo)
	if err != nil {
		return routes.Deps{}, err
	}
	couponAdmin, err := coupons.NewAdminService(couponRepo)
	if err != nil {
		return routes.Deps{}, err
	}

	return routes.Deps{
		Carts:          cartService,
		Coupons:        couponService,
		Pricing:        resolver,
		Shipping:       shippingService,
		Addresses:      addressService,
		Checkout:       checkoutService,
		Orders:         ordersService,
		DiscountsAdmin: discountAdmin,
		CouponsAdmin:   couponAdmin,
	}, nil
}
