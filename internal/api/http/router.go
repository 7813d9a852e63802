package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/fleetflow/console/internal/api/http/handlers"
	"github.com/fleetflow/console/internal/auth"
	"github.com/fleetflow/console/internal/observability"
	"github.com/fleetflow/console/internal/rbac"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Fleet          *handlers.FleetHandler
	Realtime       *handlers.RealtimeHandler
	Metrics        *observability.Metrics
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))

	app.Post("/auth/login", cfg.Users.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	protected.Get("/me", cfg.Users.Me)
	protected.Get("/me/permissions", cfg.Users.Permissions)
	protected.Post("/me/permissions/check", cfg.Users.CheckPermissions)
	protected.Get("/users", auth.RequirePermission(rbac.PermManageUsers), cfg.Users.List)

	protected.Get("/analytics/dashboard", auth.RequireView(rbac.ResourceDashboard), cfg.Fleet.Dashboard)

	vehicles := protected.Group("/vehicles", auth.RequireView(rbac.ResourceVehicles))
	vehicles.Get("/", cfg.Fleet.ListVehicles)
	vehicles.Get("/:id", cfg.Fleet.GetVehicle)

	drivers := protected.Group("/drivers", auth.RequireView(rbac.ResourceDrivers))
	drivers.Get("/", cfg.Fleet.ListDrivers)
	drivers.Get("/:id", cfg.Fleet.GetDriver)

	trips := protected.Group("/trips", auth.RequireView(rbac.ResourceTrips))
	trips.Get("/", cfg.Fleet.ListTrips)
	trips.Get("/:id", cfg.Fleet.GetTrip)

	// Per-resource permissions are checked when a subscription is created.
	rt := protected.Group("/realtime")
	rt.Get("/status-changes",
		auth.RequireAnyPermission(rbac.PermViewVehicles, rbac.PermViewDrivers, rbac.PermViewTrips),
		cfg.Realtime.StatusChanges)
	rt.Post("/subscriptions", cfg.Realtime.Create)
	rt.Get("/subscriptions", cfg.Realtime.List)
	rt.Get("/subscriptions/:id", cfg.Realtime.Get)
	rt.Post("/subscriptions/:id/refresh", cfg.Realtime.Refresh)
	rt.Patch("/subscriptions/:id", cfg.Realtime.Update)
	rt.Delete("/subscriptions/:id", cfg.Realtime.Delete)
}
