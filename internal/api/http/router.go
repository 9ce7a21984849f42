package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-tools/ticket-triage/internal/api/http/handlers"
	"github.com/helpdesk-tools/ticket-triage/internal/auth"
)

// RouteConfig bundles dependencies for route registration. A nil
// AuthMiddleware leaves every route open.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Triage         *handlers.TriageHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Root)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	guarded := func(h fiber.Handler) []fiber.Handler {
		if cfg.AuthMiddleware == nil {
			return []fiber.Handler{h}
		}
		return []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireRole(auth.RoleAgent, auth.RoleAdmin), h}
	}

	tickets := app.Group("/tickets")
	tickets.Post("/triage", cfg.Triage.Triage)
	tickets.Get("/analytics", cfg.Tickets.Analytics)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", guarded(cfg.Tickets.CreateTicket)...)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id", guarded(cfg.Tickets.UpdateTicket)...)

	dashboard := app.Group("/dashboard")
	dashboard.Get("/", cfg.Dashboard.Tickets)
	dashboard.Get("/new", cfg.Dashboard.NewTicketForm)
	dashboard.Post("/new", cfg.Dashboard.CreateTicket)
	dashboard.Get("/triage", cfg.Dashboard.TriageForm)
	dashboard.Post("/triage", cfg.Dashboard.Triage)
	dashboard.Get("/analytics", cfg.Dashboard.Analytics)
}
