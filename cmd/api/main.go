package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/rtcstack/rtc-token-service/internal/api/http"
	"github.com/rtcstack/rtc-token-service/internal/api/http/handlers"
	"github.com/rtcstack/rtc-token-service/internal/codec"
	"github.com/rtcstack/rtc-token-service/internal/codec/linker"
	"github.com/rtcstack/rtc-token-service/internal/config"
	"github.com/rtcstack/rtc-token-service/internal/events"
	"github.com/rtcstack/rtc-token-service/internal/observability"
	"github.com/rtcstack/rtc-token-service/internal/persistence"
	"github.com/rtcstack/rtc-token-service/internal/repository"
	"github.com/rtcstack/rtc-token-service/internal/service"
	"github.com/rtcstack/rtc-token-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !cfg.Credentials.Complete() {
		logger.Warn("RTC credentials incomplete; token requests will fail",
			zap.Bool("has_app_id", cfg.Credentials.HasAppID()),
			zap.Bool("has_app_cert", cfg.Credentials.HasAppCertificate()))
	}

	lib, err := linker.Open(cfg.Codec)
	if err != nil {
		logger.Fatal("failed to link token codec", zap.Error(err))
	}
	dispatcher := codec.NewDispatcher(lib)
	if entry, err := dispatcher.Resolve(); err != nil {
		logger.Error("token codec has no compatible entry point", zap.String("mode", cfg.Codec.Mode), zap.Error(err))
	} else {
		logger.Info("token codec linked", zap.String("mode", cfg.Codec.Mode), zap.String("entry_point", entry.Name))
	}

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

	metrics := observability.NewMetrics()
	bus := events.NewInMemoryDispatcher()

	if pg.Enabled() {
		auditService := service.NewAuditService(bus, repository.NewIssuanceRepository(pg.PoolHandle()), logger)
		worker.StartAuditWorker(auditService)
	}

	tokenService := service.NewTokenService(cfg.Credentials, service.TokenDependencies{
		Dispatcher: dispatcher,
		Events:     bus,
		Metrics:    metrics,
		Logger:     logger,
	})

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	routes := httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Credentials, dispatcher, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Tokens:  handlers.NewTokenHandler(tokenService),
		Metrics: handlers.NewMetricsHandler(metrics),
	}
	if cfg.Redis.RateLimitEnabled() {
		routes.RateLimit = httptransport.RateLimit(redis, cfg.Redis.RateLimitPerMinute, logger)
	}
	httptransport.RegisterRoutes(app, routes)

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
