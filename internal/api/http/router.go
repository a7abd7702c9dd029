package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workaid/internal/api/http/handlers"
	"github.com/spec-kit/workaid/internal/auth"
	"github.com/spec-kit/workaid/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Staff          *handlers.StaffHandler
	Tickets        *handlers.TicketsHandler
	StaffTickets   *handlers.StaffTicketsHandler
	FAQs           *handlers.FAQsHandler
	Chat           *handlers.ChatHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Users.Register)
	authGroup.Post("/users/login", cfg.Users.Login)
	authGroup.Post("/staff/login", cfg.Staff.Login)

	protectedAuth := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	protectedAuth.Post("/password/change", cfg.Users.ChangePassword)

	userGroup := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireUser())
	userGroup.Post("", cfg.Tickets.CreateTicket)
	userGroup.Get("", cfg.Tickets.ListTickets)
	userGroup.Get("/:id", cfg.Tickets.GetTicket)

	app.Get("/faqs", cfg.FAQs.ListFAQs)

	chatGroup := app.Group("/chat", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	chatGroup.Post("", cfg.Chat.Ask)

	staffGroup := app.Group("/staff", cfg.AuthMiddleware.Handle, auth.RequireStaffRole(domain.StaffRoleAgent, domain.StaffRoleAdmin))
	staffGroup.Get("/tickets", cfg.StaffTickets.ListStaffTickets)
	staffGroup.Get("/tickets/:id", cfg.StaffTickets.GetStaffTicket)
	staffGroup.Patch("/tickets/:id/status", cfg.StaffTickets.UpdateStatus)
	staffGroup.Patch("/tickets/:id/assignee", cfg.StaffTickets.AssignTicket)

	staffGroup.Get("/faqs", cfg.FAQs.ListStaffFAQs)
	staffGroup.Post("/faqs", cfg.FAQs.CreateFAQ)
	staffGroup.Post("/faqs/:id/accept", cfg.FAQs.AcceptFAQ)
	staffGroup.Patch("/faqs/:id", cfg.FAQs.UpdateFAQ)
	staffGroup.Delete("/faqs/:id", cfg.FAQs.DeleteFAQ)
}
