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

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/forkline/storefront/internal/restaurants"
	"github.com/forkline/storefront/internal/status"
	"github.com/forkline/storefront/pkg/config"
	"github.com/forkline/storefront/pkg/db"
	"github.com/forkline/storefront/pkg/logger"
	"github.com/forkline/storefront/pkg/metrics"
	"github.com/forkline/storefront/pkg/migrate"
	"github.com/forkline/storefront/pkg/redis"
)

const (
	serviceKind = "status-worker"
	lockName    = "status-refresh"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceKind})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = serviceKind

	logg = logger.New(logger.Options{
		ServiceName: serviceKind,
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

	restaurantService, err := restaurants.NewService(restaurants.ServiceParams{
		Repo:   restaurants.NewRepository(dbClient.DB()),
		Logger: logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create restaurant service", err)
		os.Exit(1)
	}

	snapshots, err := status.NewSnapshotStore(redisClient, cfg.Status.SnapshotTTL)
	if err != nil {
		logg.Error(ctx, "failed to create snapshot store", err)
		os.Exit(1)
	}
	lock, err := status.NewRedisLock(redisClient, redisClient.LockKey(lockName), cfg.Status.LockTTL)
	if err != nil {
		logg.Error(ctx, "failed to create status lock", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	publisher, err := status.NewPublisher(status.PublisherParams{
		Logger:    logg,
		Snapshots: snapshots,
		Lock:      lock,
		Worker:    metrics.NewWorkerMetrics(registry),
		Gauge:     metrics.NewStatusMetrics(registry),
	})
	if err != nil {
		logg.Error(ctx, "failed to create status publisher", err)
		os.Exit(1)
	}

	watcher, err := status.NewWatcher(status.WatcherParams{
		Logger:   logg,
		Source:   restaurantService.Targets,
		Consumer: publisher.Publish,
		Interval: cfg.Status.RefreshInterval,
	})
	if err != nil {
		logg.Error(ctx, "failed to create status watcher", err)
		os.Exit(1)
	}

	metricsRouter := chi.NewRouter()
	metricsRouter.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           metricsRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics server stopped unexpectedly", err)
		}
	}()

	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": serviceKind,
		"interval":    cfg.Status.RefreshInterval.String(),
	})
	logg.Info(ctx, "starting status worker")

	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "status worker stopped unexpectedly", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "metrics server shutdown failed", err)
	}
	logg.Info(ctx, "status worker shutting down gracefully")
}
