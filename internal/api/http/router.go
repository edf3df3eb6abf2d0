package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-service/internal/api/http/handlers"
	"github.com/spec-kit/bookstore-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Books          *handlers.BooksHandler
	Uploads        *handlers.UploadsHandler
	Purchases      *handlers.PurchasesHandler
	AuthMiddleware *auth.Middleware
	RateLimit      fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	api.Get("/health", cfg.Health.Health)

	authGroup := api.Group("/auth")
	if cfg.RateLimit != nil {
		authGroup.Use(cfg.RateLimit)
	}
	authGroup.Post("/signup", cfg.Auth.SignUp)
	authGroup.Post("/signin", cfg.Auth.SignIn)
	authGroup.Post("/verify", cfg.Auth.Verify)

	api.Get("/books", cfg.Books.List)
	api.Post("/books", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Books.Create)
	api.Put("/books/:id", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Books.Update)
	api.Delete("/books/:id", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Books.Delete)

	uploads := api.Group("/upload", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	uploads.Post("/cover", cfg.Uploads.Cover)
	uploads.Post("/pdf", cfg.Uploads.PDF)

	api.Post("/payments/webhook", cfg.Purchases.Webhook)

	purchases := api.Group("/purchases", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	purchases.Post("/checkout", cfg.Purchases.Checkout)
	purchases.Get("", cfg.Purchases.List)
}
