package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/creativa-studio/lead-service/internal/api/http/handlers"
	"github.com/creativa-studio/lead-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Contact        *handlers.ContactHandler
	Auth           *handlers.AuthHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Submission and reads are public; every
// mutating admin operation sits behind the auth middleware.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	api.Post("/auth/login", cfg.Auth.Login)

	contact := api.Group("/contact")
	contact.Post("/", cfg.Contact.Submit)
	contact.Get("/", cfg.Contact.List)
	contact.Get("/stats", cfg.Contact.Stats)
	contact.Get("/export", cfg.Contact.Export)

	// /bulk must register before /:id so it is not captured as an id
	contact.Delete("/bulk", cfg.AuthMiddleware.Handle, cfg.Contact.BulkDelete)
	contact.Put("/:id", cfg.AuthMiddleware.Handle, cfg.Contact.UpdateStatus)
	contact.Delete("/:id", cfg.AuthMiddleware.Handle, cfg.Contact.Delete)
}
