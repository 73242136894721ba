package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/storefront-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/storefront-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/storefront-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	webhookHandler *handlers.WebhookHandler,
	eventHandler *handlers.EventHandler,
	storeHandler *handlers.StoreHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP. This is in-process DoS
	// padding only; the ingestion endpoint's real ceilings live in the
	// durable counter store.
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health
	api.Get("/health", healthHandler.Check)

	// Public store lookup
	api.Get("/stores/:id", storeHandler.GetStore)

	// Public event ingestion (validated + durably rate limited inside)
	api.Post("/events", eventHandler.Track)

	// Auth — public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	// Protected routes (JWT required)
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)

	// Admin store management (protected + admin required). SetFeatured is the
	// operator action behind is_featured; billing never touches that flag.
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/stores", storeHandler.ListStores)
	admin.Post("/stores", storeHandler.CreateStore)
	admin.Put("/stores/:id/featured", storeHandler.SetFeatured)

	// Webhooks — authenticated by Stripe signature, not JWT
	webhooks := api.Group("/webhooks")
	webhooks.Post("/billing", webhookHandler.HandleStripe)
}
