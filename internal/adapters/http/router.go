package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/nmoreno/fiestero/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // Balance speed vs compression ratio
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1 — 15s per-request timeout
	v1 := app.Group("/v1")

	// Catalog
	v1.Get("/products", timeout.NewWithContext(ListProductsHandler(deps), 15*time.Second))
	v1.Get("/products/:id", timeout.NewWithContext(GetProductHandler(deps), 15*time.Second))

	// Zones
	v1.Get("/zones", timeout.NewWithContext(ListZonesHandler(deps), 15*time.Second))
	v1.Get("/zones/match", timeout.NewWithContext(MatchZoneHandler(deps), 15*time.Second))

	// Quote (geocoding makes this the slowest endpoint; same 15s cap)
	v1.Post("/quote", timeout.NewWithContext(QuoteHandler(deps), 15*time.Second))

	// Cart
	v1.Get("/cart", timeout.NewWithContext(GetCartHandler(deps), 15*time.Second))
	v1.Post("/cart/items", timeout.NewWithContext(AddCartItemHandler(deps), 15*time.Second))
	v1.Put("/cart/items/:id", timeout.NewWithContext(UpdateCartItemHandler(deps), 15*time.Second))
	v1.Delete("/cart/items/:id", timeout.NewWithContext(RemoveCartItemHandler(deps), 15*time.Second))
	v1.Delete("/cart", timeout.NewWithContext(ClearCartHandler(deps), 15*time.Second))

	// Checkout & reservations
	v1.Post("/checkout", timeout.NewWithContext(CheckoutHandler(deps), 15*time.Second))
	v1.Get("/reservations/:id", timeout.NewWithContext(GetReservationHandler(deps), 15*time.Second))

	// Admin (authentication enforced by the gateway in front of this service)
	admin := v1.Group("/admin")
	admin.Get("/stats", timeout.NewWithContext(AdminStatsHandler(deps), 15*time.Second))
	admin.Get("/reservations", timeout.NewWithContext(AdminListReservationsHandler(deps), 15*time.Second))
	admin.Patch("/reservations/:id/status", timeout.NewWithContext(AdminUpdateReservationStatusHandler(deps), 15*time.Second))
	admin.Get("/calendar", timeout.NewWithContext(AdminCalendarHandler(deps), 15*time.Second))
	admin.Get("/audit", timeout.NewWithContext(AdminAuditLogHandler(deps), 15*time.Second))
	admin.Post("/zones", timeout.NewWithContext(AdminCreateZoneHandler(deps), 15*time.Second))
	admin.Put("/zones/:id", timeout.NewWithContext(AdminUpdateZoneHandler(deps), 15*time.Second))
	admin.Delete("/zones/:id", timeout.NewWithContext(AdminDeleteZoneHandler(deps), 15*time.Second))
	admin.Post("/products", timeout.NewWithContext(AdminSaveProductHandler(deps), 15*time.Second))
	admin.Put("/products/:id", timeout.NewWithContext(AdminSaveProductHandler(deps), 15*time.Second))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if deps.NATS == nil {
			// NATS is optional at startup; without it the relay has nothing
			// to serve and the raw conn would panic on subscribe.
			return fiber.ErrServiceUnavailable
		}
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
