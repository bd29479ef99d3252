package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/rtcstack/rtc-token-service/internal/api/dto"
	"github.com/rtcstack/rtc-token-service/internal/codec"
	"github.com/rtcstack/rtc-token-service/internal/domain"
)

// EntryPointResolver reports which codec entry point requests will use.
type EntryPointResolver interface {
	Resolve() (*codec.EntryPoint, error)
}

// Pinger is an optional dependency checked by the readiness probe.
type Pinger interface {
	Enabled() bool
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName  string
	version      string
	creds        domain.Credentials
	codec        EntryPointResolver
	dependencies map[string]Pinger
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, creds domain.Credentials, resolver EntryPointResolver, dependencies map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		serviceName:  serviceName,
		version:      version,
		creds:        creds,
		codec:        resolver,
		dependencies: dependencies,
	}
}

// Root handles GET /.
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Health reports whether credentials are configured without revealing them.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{
		OK:         true,
		HasAppID:   h.creds.HasAppID(),
		HasAppCert: h.creds.HasAppCertificate(),
	})
}

// Ready reports service readiness by checking the codec and configured dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	if entry, err := h.codec.Resolve(); err != nil {
		depStatus["codec"] = err.Error()
		ready = false
	} else {
		depStatus["codec"] = entry.Name
	}

	for name, dep := range h.dependencies {
		if dep == nil || !dep.Enabled() {
			depStatus[name] = "disabled"
			continue
		}
		if err := dep.Ping(ctx); err != nil {
			depStatus[name] = err.Error()
			ready = false
		} else {
			depStatus[name] = "ok"
		}
	}

	body := fiber.Map{
		"service":      h.serviceName,
		"version":      h.version,
		"dependencies": depStatus,
	}
	if ready {
		body["status"] = "ready"
		return c.JSON(body)
	}
	body["status"] = "unavailable"
	return c.Status(fiber.StatusServiceUnavailable).JSON(body)
}
