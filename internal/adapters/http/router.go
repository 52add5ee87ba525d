package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/agrobot/internal/pkg/metrics"
)

const (
	requestTimeout   = 15 * time.Second
	detectionTimeout = 60 * time.Second
	defaultRateLimit = 120
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID, then request-scoped logger, trace span and caller identity
	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(TracingMiddleware())
	app.Use(UserIDMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting per user, falling back to the client IP
	maxPerMinute := deps.RateLimit
	if maxPerMinute <= 0 {
		maxPerMinute = defaultRateLimit
	}
	app.Use(limiter.New(limiter.Config{
		Max:        maxPerMinute,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return websocket.IsWebSocketUpgrade(c)
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			if uid, ok := c.Locals(string(userIDKey)).(string); ok {
				return "user:" + uid
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1
	v1 := app.Group("/v1")
	v1.Get("/markers", timeout.NewWithContext(GetMarkersHandler(deps), requestTimeout))
	v1.Put("/markers", timeout.NewWithContext(PutMarkersHandler(deps), requestTimeout))
	v1.Delete("/markers", timeout.NewWithContext(DeleteMarkersHandler(deps), requestTimeout))
	v1.Post("/detections", timeout.NewWithContext(DetectHandler(deps), detectionTimeout))
	v1.Post("/messages", timeout.NewWithContext(ContactHandler(deps), requestTimeout))

	// GraphQL
	app.Post("/graphql", timeout.NewWithContext(GraphQLHandler(deps), requestTimeout))

	// API documentation (Swagger UI)
	SetupDocs(app, deps.DocsPath)

	// WebSocket map bridge
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/map", websocket.New(MapBridgeHandler(deps)))
}
