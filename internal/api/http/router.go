package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Products       *handlers.ProductsHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Passwords      *handlers.PasswordsHandler
	Auth           *handlers.AuthHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	api.Get("/products", cfg.Products.List)
	api.Post("/products", cfg.Products.Create)
	api.Put("/products/:id", cfg.Products.Update)
	api.Delete("/products/:id", cfg.Products.Delete)

	api.Get("/users", cfg.Users.List)
	api.Post("/users", cfg.Users.Create)
	api.Put("/users/:id", cfg.Users.Update)
	api.Delete("/users/:id", cfg.Users.Delete)
	api.Get("/users/:id/profile", cfg.Users.GetProfile)
	api.Put("/users/:id/profile", cfg.Users.UpdateProfile)

	// Static ticket routes register before the :id routes so "sync" and
	// "seed" are never captured as keys.
	api.Get("/tickets", cfg.Tickets.List)
	api.Post("/tickets", cfg.Tickets.Create)
	api.Post("/tickets/sync", cfg.Tickets.Sync)
	api.Get("/tickets/seed", cfg.Tickets.Seed)
	api.Put("/tickets/:id", cfg.Tickets.Update)
	api.Delete("/tickets/:id", cfg.Tickets.Delete)

	api.Post("/passwords/update", cfg.Passwords.Update)
	api.Get("/passwords/logs", cfg.Passwords.Logs)

	api.Post("/auth/login", cfg.Auth.Login)
	api.Get("/auth/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)
}
