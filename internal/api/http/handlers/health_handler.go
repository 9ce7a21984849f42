package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-tools/ticket-triage/internal/observability"
)

// Pinger is a dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ModelStatus reports on the loaded triage model.
type ModelStatus interface {
	ModelReady() bool
	ModelVersion() string
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	database    Pinger
	redis       Pinger
	model       ModelStatus
	metrics     *observability.Metrics
}

// HealthDependencies bundles what the probes inspect. Redis is optional.
type HealthDependencies struct {
	ServiceName string
	Version     string
	Database    Pinger
	Redis       Pinger
	Model       ModelStatus
	Metrics     *observability.Metrics
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(deps HealthDependencies) *HealthHandler {
	return &HealthHandler{
		serviceName: deps.ServiceName,
		version:     deps.Version,
		database:    deps.Database,
		redis:       deps.Redis,
		model:       deps.Model,
		metrics:     deps.Metrics,
	}
}

// Root GET /.
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Welcome to the ticket triage API",
		"version": h.version,
		"endpoints": fiber.Map{
			"tickets":   "/tickets",
			"triage":    "/tickets/triage",
			"analytics": "/tickets/analytics",
			"dashboard": "/dashboard",
			"health":    "/health/ready",
			"metrics":   "/metrics",
		},
	})
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports readiness by checking the ticket store. Redis and the model
// are reported but never make the service unready: both degrade gracefully.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	if err := h.database.Ping(ctx); err != nil {
		depStatus["database"] = err.Error()
		ready = false
	} else {
		depStatus["database"] = "ok"
	}

	if h.redis == nil {
		depStatus["redis"] = "disabled"
	} else if err := h.redis.Ping(ctx); err != nil {
		depStatus["redis"] = err.Error()
	} else {
		depStatus["redis"] = "ok"
	}

	if h.model != nil && h.model.ModelReady() {
		depStatus["model"] = h.model.ModelVersion()
	} else {
		depStatus["model"] = "not loaded"
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}

// Metrics GET /metrics.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(h.metrics.Snapshot())
}
