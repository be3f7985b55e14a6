package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/stay-service/internal/api/http/handlers"
	"github.com/spec-kit/stay-service/internal/auth"
	"github.com/spec-kit/stay-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Bookings       *handlers.BookingsHandler
	Tickets        *handlers.TicketsHandler
	RoleRequests   *handlers.RoleRequestsHandler
	AuthMiddleware *auth.AuthMiddleware
	Idempotency    fiber.Handler
	Metrics        fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}

	requireAuth := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAuthenticated()}

	bookings := app.Group("/bookings", requireAuth...)
	createBooking := []fiber.Handler{cfg.Bookings.CreateBooking}
	if cfg.Idempotency != nil {
		createBooking = append([]fiber.Handler{cfg.Idempotency}, createBooking...)
	}
	bookings.Post("/", createBooking...)
	bookings.Delete("/:id", cfg.Bookings.CancelBooking)

	tickets := app.Group("/tickets", requireAuth...)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Post("/:id/transitions/:action", cfg.Tickets.TransitionTicket)

	roleRequests := app.Group("/role-requests", requireAuth...)
	roleRequests.Post("/", cfg.RoleRequests.SubmitRoleRequest)
	roleRequests.Post("/:id/accept", auth.RequireRole(domain.RoleAdmin), cfg.RoleRequests.AcceptRoleRequest)
	roleRequests.Post("/:id/reject", auth.RequireRole(domain.RoleAdmin), cfg.RoleRequests.RejectRoleRequest)
}
