package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/elvificent/supportdesk/internal/api/http/handlers"
	"github.com/elvificent/supportdesk/internal/auth"
	"github.com/elvificent/supportdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Engineers      *handlers.EngineersHandler
	Accounts       *handlers.AccountsHandler
	Sessions       *handlers.SessionsHandler
	Catalog        *handlers.CatalogHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)

	authed := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole())
	authed.Post("/password/change", cfg.Auth.ChangePassword)
	authed.Get("/me", cfg.Auth.Me)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("", auth.RequireRole(domain.RoleCustomer), cfg.Tickets.Create)
	tickets.Get("", auth.RequireRole(), cfg.Tickets.List)
	tickets.Get("/:id", auth.RequireRole(), cfg.Tickets.Get)
	tickets.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Tickets.Delete)
	tickets.Post("/:id/assign", auth.RequireRole(domain.RoleAdmin, domain.RoleManager), cfg.Tickets.Assign)
	tickets.Patch("/:id/status", auth.RequireStaff(), cfg.Tickets.UpdateStatus)
	tickets.Post("/:id/escalate", auth.RequireStaff(), cfg.Tickets.Escalate)
	tickets.Post("/:id/messages", auth.RequireRole(), cfg.Tickets.AppendMessage)
	tickets.Get("/:id/messages", auth.RequireRole(), cfg.Tickets.ListMessages)
	tickets.Post("/:id/attachments", auth.RequireRole(), cfg.Tickets.UploadAttachment)
	tickets.Get("/:id/attachments", auth.RequireRole(), cfg.Tickets.ListAttachments)

	app.Get("/attachments/:id", cfg.AuthMiddleware.Handle, auth.RequireRole(), cfg.Tickets.DownloadAttachment)

	engineers := app.Group("/engineers", cfg.AuthMiddleware.Handle, auth.RequireStaff())
	engineers.Get("", cfg.Engineers.List)
	engineers.Get("/escalation-candidates", cfg.Engineers.EscalationCandidates)
	engineers.Get("/next-available", cfg.Engineers.NextAvailable)
	engineers.Post("", auth.RequireRole(domain.RoleAdmin, domain.RoleManager), cfg.Engineers.Create)
	engineers.Get("/:id", cfg.Engineers.Get)
	engineers.Patch("/:id", auth.RequireRole(domain.RoleAdmin, domain.RoleManager), cfg.Engineers.Update)
	engineers.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Engineers.Delete)

	customers := app.Group("/customers", cfg.AuthMiddleware.Handle, auth.RequireStaff())
	customers.Get("", cfg.Accounts.ListCustomers)
	customers.Get("/:id", cfg.Accounts.GetCustomer)
	customers.Patch("/:id/tier", auth.RequireRole(domain.RoleAdmin, domain.RoleManager), cfg.Accounts.UpdateCustomerTier)

	managers := app.Group("/managers", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	managers.Get("", cfg.Accounts.ListManagers)
	managers.Post("", cfg.Accounts.CreateManager)
	managers.Get("/:id", cfg.Accounts.GetManager)
	managers.Patch("/:id", cfg.Accounts.UpdateManager)
	managers.Delete("/:id", cfg.Accounts.DeleteManager)

	app.Get("/users", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin), cfg.Accounts.ListUsers)

	sessions := app.Group("/sessions", cfg.AuthMiddleware.Handle, auth.RequireRole())
	sessions.Post("", cfg.Sessions.Start)
	sessions.Get("", cfg.Sessions.List)
	sessions.Get("/:id", cfg.Sessions.Get)
	sessions.Post("/:id/touch", cfg.Sessions.Touch)
	sessions.Post("/:id/end", cfg.Sessions.End)

	products := app.Group("/products", cfg.AuthMiddleware.Handle, auth.RequireRole())
	products.Get("", cfg.Catalog.ListProducts)
	products.Get("/:id", cfg.Catalog.GetProduct)
	products.Post("", auth.RequireRole(domain.RoleAdmin), cfg.Catalog.CreateProduct)
	products.Put("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Catalog.UpdateProduct)
	products.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Catalog.DeleteProduct)

	ticketTypes := app.Group("/ticket-types", cfg.AuthMiddleware.Handle, auth.RequireRole())
	ticketTypes.Get("", cfg.Catalog.ListTicketTypes)
	ticketTypes.Get("/:id", cfg.Catalog.GetTicketType)
	ticketTypes.Post("", auth.RequireRole(domain.RoleAdmin), cfg.Catalog.CreateTicketType)
	ticketTypes.Put("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Catalog.UpdateTicketType)
	ticketTypes.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Catalog.DeleteTicketType)
}
