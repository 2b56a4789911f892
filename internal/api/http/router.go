package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/commerce-service/internal/api/http/handlers"
	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Products       *handlers.ProductsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Protected routes always compose the
// authentication gate before any role gate.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	products := api.Group("/products")
	products.Get("/", cfg.Products.List)
	products.Get("/category/:category", cfg.Products.ListByCategory)
	products.Get("/:id", cfg.Products.Get)

	adminProducts := products.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	adminProducts.Post("/", cfg.Products.Create)
	adminProducts.Put("/:id", cfg.Products.Update)
	adminProducts.Delete("/:id", cfg.Products.Delete)

	users := api.Group("/users", cfg.AuthMiddleware.Handle)
	users.Put("/change-password", auth.RequireAuthenticated(), cfg.Users.ChangePassword)

	adminUsers := users.Group("", auth.RequireRole(domain.RoleAdmin))
	adminUsers.Get("/", cfg.Users.List)
	adminUsers.Get("/search", cfg.Users.Search)
	adminUsers.Post("/", cfg.Users.Create)
	adminUsers.Get("/:id", cfg.Users.Get)
	adminUsers.Put("/:id", cfg.Users.Update)
	adminUsers.Delete("/:id", cfg.Users.Delete)
}
