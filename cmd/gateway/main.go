package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/skylink-gateway/internal/api/http"
	"github.com/spec-kit/skylink-gateway/internal/api/http/handlers"
	"github.com/spec-kit/skylink-gateway/internal/config"
	"github.com/spec-kit/skylink-gateway/internal/credstore"
	"github.com/spec-kit/skylink-gateway/internal/events"
	"github.com/spec-kit/skylink-gateway/internal/guard"
	"github.com/spec-kit/skylink-gateway/internal/observability"
	"github.com/spec-kit/skylink-gateway/internal/persistence"
	"github.com/spec-kit/skylink-gateway/internal/service"
	"github.com/spec-kit/skylink-gateway/internal/session"
	"github.com/spec-kit/skylink-gateway/internal/token"
	"github.com/spec-kit/skylink-gateway/internal/upstream"
	"github.com/spec-kit/skylink-gateway/internal/worker"
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

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	creds := credstore.NewRedisKeyed(redis.Client, cfg.Session.CredentialTTL())
	validator := token.NewValidator(nil)
	dispatcher := events.NewInMemoryDispatcher(logger)
	sessions := session.NewManager(creds, validator, dispatcher, logger)
	accessGuard := guard.New(creds, validator, dispatcher, metrics, logger)

	worker.StartSessionObserver(dispatcher, logger, metrics)

	upstreamClient := upstream.NewClient(cfg.Upstream, logger, metrics)
	authService := service.NewAuthService(upstreamClient, sessions, logger)
	flightService := service.NewFlightService(upstreamClient, creds, redis.Client, cfg.Session.FlightCacheTTL(), logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App, cfg.Session)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, redis, upstreamClient),
		Auth:    handlers.NewAuthHandler(authService),
		Flights: handlers.NewFlightsHandler(flightService),
		Profile: handlers.NewProfileHandler(),
		Guard:   accessGuard,
		Metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	go func() {
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
