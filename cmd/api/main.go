package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/forkline/storefront/api/controllers"
	"github.com/forkline/storefront/api/routes"
	"github.com/forkline/storefront/internal/cart"
	"github.com/forkline/storefront/internal/delivery"
	"github.com/forkline/storefront/internal/media"
	"github.com/forkline/storefront/internal/menu"
	"github.com/forkline/storefront/internal/restaurants"
	"github.com/forkline/storefront/internal/status"
	"github.com/forkline/storefront/pkg/cloudinary"
	"github.com/forkline/storefront/pkg/config"
	"github.com/forkline/storefront/pkg/db"
	"github.com/forkline/storefront/pkg/doordash"
	"github.com/forkline/storefront/pkg/logger"
	"github.com/forkline/storefront/pkg/metrics"
	"github.com/forkline/storefront/pkg/migrate"
	"github.com/forkline/storefront/pkg/redis"
	"github.com/forkline/storefront/pkg/uber"
)

const shutdownTimeout = 15 * time.Second

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
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := multierr.Combine(redisClient.Close(), dbClient.Close()); err != nil {
			logg.Error(context.Background(), "error closing resources", err)
		}
	}()

	snapshots, err := status.NewSnapshotStore(redisClient, cfg.Status.SnapshotTTL)
	if err != nil {
		logg.Error(ctx, "failed to create status snapshot store", err)
		os.Exit(1)
	}

	restaurantService, err := restaurants.NewService(restaurants.ServiceParams{
		Repo:     restaurants.NewRepository(dbClient.DB()),
		Statuses: snapshots,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create restaurant service", err)
		os.Exit(1)
	}

	menuService, err := menu.NewService(menu.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(ctx, "failed to create menu service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewSessionService(cart.SessionParams{
		Storage: func(sessionID string) (cart.Storage, error) {
			return cart.NewRedisStorage(redisClient, sessionID, cfg.Cart.SessionTTL)
		},
		Catalog: menuService,
		Images:  menu.NewImageResolver(nil),
		Gate:    restaurantService,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cart service", err)
		os.Exit(1)
	}

	providers, err := deliveryProviders(ctx, cfg)
	if err != nil {
		logg.Error(ctx, "failed to configure delivery providers", err)
		os.Exit(1)
	}
	deliveryService, err := delivery.NewService(delivery.ServiceParams{
		Providers:   providers,
		Restaurants: restaurantService,
		Audit:       delivery.NewRepository(dbClient.DB()),
		Logger:      logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create delivery service", err)
		os.Exit(1)
	}

	var mediaService media.Service
	if cfg.Cloudinary.Enabled() {
		host, err := cloudinary.New(cfg.Cloudinary)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap cloudinary", err)
			os.Exit(1)
		}
		mediaService, err = media.NewService(host, logg, cfg.Cloudinary.MaxUpload)
		if err != nil {
			logg.Error(ctx, "failed to create media service", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(ctx, "cloudinary not configured, image uploads disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx = logg.WithFields(ctx, map[string]any{
		"env":       cfg.App.Env,
		"addr":      addr,
		"instance":  id,
		"providers": len(providers),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:      cfg,
			Logger:      logg,
			Readiness:   map[string]controllers.Pinger{"db": dbClient, "redis": redisClient},
			Gatherer:    registry,
			HTTPMetrics: metrics.NewHTTPMetrics(registry),
			Restaurants: restaurantService,
			Menu:        menuService,
			Carts:       cartService,
			Delivery:    deliveryService,
			Media:       mediaService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "api server shutdown failed", err)
		}
		logg.Info(shutdownCtx, "api server shutting down gracefully")
	}
}

func deliveryProviders(ctx context.Context, cfg *config.Config) ([]delivery.Provider, error) {
	var providers []delivery.Provider
	if cfg.DoorDash.Enabled() {
		client, err := doordash.NewClient(doordash.Credentials{
			DeveloperID:   cfg.DoorDash.DeveloperID,
			KeyID:         cfg.DoorDash.KeyID,
			SigningSecret: cfg.DoorDash.SigningSecret,
		}, doordash.WithBaseURL(cfg.DoorDash.BaseURL))
		if err != nil {
			return nil, err
		}
		providers = append(providers, delivery.NewDoorDashProvider(client))
	}
	if cfg.Uber.Enabled() {
		client, err := uber.NewClient(ctx, uber.Credentials{
			CustomerID:   cfg.Uber.CustomerID,
			ClientID:     cfg.Uber.ClientID,
			ClientSecret: cfg.Uber.ClientSecret,
		}, uber.WithBaseURL(cfg.Uber.BaseURL), uber.WithTokenURL(cfg.Uber.TokenURL))
		if err != nil {
			return nil, err
		}
		providers = append(providers, delivery.NewUberProvider(client))
	}
	return providers, nil
}
