package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/outagetrack/outage-service/internal/api/http/handlers"
	"github.com/outagetrack/outage-service/internal/auth"
	"github.com/outagetrack/outage-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Locations      *handlers.LocationsHandler
	AuthMiddleware *auth.AuthMiddleware
	// Gatherer exposes /metrics when set.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)

	accounts := api.Group("/accounts", cfg.AuthMiddleware.Handle)
	accounts.Get("/profile", cfg.Users.Profile)
	accounts.Patch("/profile", cfg.Users.UpdateProfile)
	accounts.Get("/users", cfg.Users.List)
	accounts.Get("/users/:id", cfg.Users.Get)
	adminOnly := auth.RequireRole(domain.RoleAdmin)
	accounts.Post("/users", adminOnly, cfg.Users.Create)
	accounts.Patch("/users/:id", adminOnly, cfg.Users.Update)
	accounts.Delete("/users/:id", adminOnly, cfg.Users.Delete)

	locations := api.Group("/locations", cfg.AuthMiddleware.Handle)
	locations.Get("", cfg.Locations.List)
	locations.Post("", cfg.Locations.Create)
	locations.Post("/assign/:id", cfg.Locations.Assign)
	locations.Get("/:id", cfg.Locations.Get)
	locations.Patch("/:id", cfg.Locations.Edit)
	locations.Delete("/:id", cfg.Locations.Delete)
	locations.Post("/:id/assign", cfg.Locations.Assign)
	locations.Post("/:id/update_status", cfg.Locations.UpdateStatus)
	locations.Post("/:id/priority", cfg.Locations.UpdatePriority)
	locations.Get("/:id/updates", cfg.Locations.ListUpdates)
	locations.Post("/:id/updates", cfg.Locations.AddNote)
}
