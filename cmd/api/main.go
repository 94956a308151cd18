package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/outagetrack/outage-service/internal/api/http"
	"github.com/outagetrack/outage-service/internal/api/http/handlers"
	"github.com/outagetrack/outage-service/internal/auth"
	"github.com/outagetrack/outage-service/internal/config"
	"github.com/outagetrack/outage-service/internal/events"
	"github.com/outagetrack/outage-service/internal/observability"
	"github.com/outagetrack/outage-service/internal/persistence"
	"github.com/outagetrack/outage-service/internal/repository"
	"github.com/outagetrack/outage-service/internal/repository/memory"
	"github.com/outagetrack/outage-service/internal/service"
	"github.com/outagetrack/outage-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	dependencies := map[string]handlers.Pinger{}
	var store repository.Store
	if pg.Enabled() {
		store = repository.NewPostgresStore(pg.PoolHandle())
		dependencies["postgres"] = pg
	} else {
		store = memory.NewStore()
	}

	var sessions auth.SessionStore
	if redis != nil {
		sessions = auth.NewRedisSessionStore(redis.Client)
		dependencies["redis"] = redis
	} else {
		sessions = auth.NewMemorySessionStore()
	}

	var (
		metrics  *observability.Metrics
		gatherer prometheus.Gatherer
	)
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = observability.NewMetrics(registry)
		gatherer = registry
	}

	dispatcher := events.NewInMemoryDispatcher()
	notifier := worker.NewNotificationWorker(service.NewNotificationService(logger, cfg.Notification), logger, cfg.Notification.Workers)
	worker.StartNotificationWorker(ctx, dispatcher, notifier)
	defer notifier.Stop()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
	repos := store.Repos()

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   repos.Users,
		Tokens:     tokens,
		Sessions:   sessions,
		BcryptCost: cfg.Auth.BcryptCost,
		Logger:     logger,
	})
	userService := service.NewUserService(store, cfg.Auth.BcryptCost, logger)
	locationService := service.NewLocationService(service.LocationDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})

	if created, err := userService.EnsureAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword); err != nil {
		logger.Fatal("failed to seed admin", zap.Error(err))
	} else if created {
		logger.Info("bootstrap admin seeded", zap.String("email", cfg.Bootstrap.AdminEmail))
	}

	app := httptransport.NewApp(cfg.App.Name, logger, metrics, cfg.App.RequestTimeout(), httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Locations:      handlers.NewLocationsHandler(locationService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, sessions, repos.Users),
		Gatherer:       gatherer,
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
