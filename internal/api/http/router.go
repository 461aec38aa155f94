package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mp2tech/service-center/internal/api/http/handlers"
	"github.com/mp2tech/service-center/internal/auth"
	"github.com/mp2tech/service-center/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Customers      *handlers.CustomersHandler
	Notifications  *handlers.NotificationsHandler
	Templates      *handlers.TemplatesHandler
	Licenses       *handlers.LicensesHandler
	Attendance     *handlers.AttendanceHandler
	Chat           *handlers.ChatHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	api := app.Group("", cfg.AuthMiddleware.Handle)

	api.Get("/auth/me", cfg.Auth.Me)
	api.Post("/auth/password/change", cfg.Auth.ChangePassword)
	api.Post("/auth/register", auth.RequireAdmin(), cfg.Auth.Register)
	api.Get("/technicians", auth.RequireAdmin(), cfg.Auth.ListTechnicians)
	api.Patch("/profiles/:id", auth.RequireAdmin(), cfg.Auth.UpdateProfile)
	api.Delete("/profiles/:id", auth.RequireAdmin(), cfg.Auth.DeactivateProfile)

	api.Get("/statuses", cfg.Tickets.ListStatuses)

	tickets := api.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/stats", auth.RequireAdmin(), cfg.Tickets.StatusCounts)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.EditTicket)
	tickets.Delete("/:id", auth.RequireAdmin(), cfg.Tickets.DeleteTicket)
	tickets.Post("/:id/status", cfg.Tickets.Transition)
	tickets.Post("/:id/assign", auth.RequireAdmin(), cfg.Tickets.Assign)
	tickets.Post("/:id/approve", auth.RequireAdmin(), cfg.Tickets.Approve)
	tickets.Post("/:id/reject", auth.RequireAdmin(), cfg.Tickets.Reject)
	tickets.Post("/:id/archive", auth.RequireAdmin(), cfg.Tickets.SetArchived)
	tickets.Post("/:id/remarks", cfg.Tickets.AddRemark)

	customers := api.Group("/customers")
	customers.Post("", cfg.Customers.Create)
	customers.Get("", cfg.Customers.Search)
	customers.Get("/:id", cfg.Customers.Get)
	customers.Put("/:id", cfg.Customers.Update)
	customers.Delete("/:id", auth.RequireAdmin(), cfg.Customers.Delete)

	api.Get("/notifications", cfg.Notifications.List)
	api.Post("/notifications/:id/read", cfg.Notifications.MarkRead)

	templates := api.Group("/templates", auth.RequireAdmin())
	templates.Post("", cfg.Templates.Create)
	templates.Get("", cfg.Templates.List)
	templates.Get("/:id", cfg.Templates.Get)
	templates.Put("/:id", cfg.Templates.Update)
	templates.Delete("/:id", cfg.Templates.Delete)

	licenses := api.Group("/licenses", auth.RequireAdmin())
	licenses.Post("", cfg.Licenses.Create)
	licenses.Get("", cfg.Licenses.List)
	licenses.Get("/:id", cfg.Licenses.Get)
	licenses.Put("/:id", cfg.Licenses.Update)
	licenses.Delete("/:id", cfg.Licenses.Delete)

	attendance := api.Group("/attendance")
	attendance.Post("/check-in", auth.RequireRole(domain.RoleTechnician), cfg.Attendance.CheckIn)
	attendance.Post("/check-out", auth.RequireRole(domain.RoleTechnician), cfg.Attendance.CheckOut)
	attendance.Get("/history", cfg.Attendance.History)
	attendance.Get("", auth.RequireAdmin(), cfg.Attendance.ListForDate)
	attendance.Post("/:id/approve", auth.RequireAdmin(), cfg.Attendance.Approve)

	api.Post("/chat", cfg.Chat.Send)
	api.Get("/chat/history", cfg.Chat.History)
	api.Delete("/chat/history", cfg.Chat.Reset)
}
