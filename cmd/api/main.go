package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/fleetflow/console/internal/api/http"
	"github.com/fleetflow/console/internal/api/http/handlers"
	"github.com/fleetflow/console/internal/auth"
	"github.com/fleetflow/console/internal/clock"
	"github.com/fleetflow/console/internal/config"
	"github.com/fleetflow/console/internal/events"
	"github.com/fleetflow/console/internal/observability"
	"github.com/fleetflow/console/internal/persistence"
	"github.com/fleetflow/console/internal/rbac"
	"github.com/fleetflow/console/internal/repository"
	"github.com/fleetflow/console/internal/service"
	"github.com/fleetflow/console/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	matrix, err := rbac.LoadMatrix(cfg.RBAC.MatrixFile)
	if err != nil {
		logger.Fatal("failed to load rbac matrix", zap.Error(err))
	}
	engine := rbac.NewEngine(matrix)

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	clk := clock.Real()
	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)

	authService := service.NewAuthService(*cfg, userRepo)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, engine)

	fleetService := service.NewFleetService(service.FleetDependencies{
		Vehicles:  repository.NewVehicleRepository(pool),
		Drivers:   repository.NewDriverRepository(pool),
		Trips:     repository.NewTripRepository(pool),
		Dashboard: repository.NewDashboardRepository(pool),
		Clock:     clk,
	})

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, redis.Client, metrics, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	watchService := service.NewWatchService(cfg.Realtime, service.WatchDependencies{
		Fleet:      fleetService,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Clock:      clk,
		Logger:     logger,
	})
	reaperDone := worker.StartSubscriptionReaper(ctx, watchService, clk, cfg.Realtime.ReapInterval, logger)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}, watchService),
		Users:          handlers.NewUsersHandler(authService),
		Fleet:          handlers.NewFleetHandler(fleetService),
		Realtime:       handlers.NewRealtimeHandler(watchService, notificationService, clk),
		Metrics:        metrics,
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	<-reaperDone
	watchService.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
