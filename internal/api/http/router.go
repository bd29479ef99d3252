package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rtcstack/rtc-token-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Tokens  *handlers.TokenHandler
	Metrics *handlers.MetricsHandler
	// RateLimit guards token issuance when set.
	RateLimit fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Root)
	app.Get("/health", cfg.Health.Health)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Metrics.Show)

	rtc := app.Group("/rtc")
	if cfg.RateLimit != nil {
		rtc.Get("/token", cfg.RateLimit, cfg.Tokens.Issue)
	} else {
		rtc.Get("/token", cfg.Tokens.Issue)
	}
}
