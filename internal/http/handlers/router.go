package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"glowcandles/internal/config"
	applog "glowcandles/internal/log"
	"glowcandles/internal/metrics"
)

// Limits applies to the /api rate limiters. Zero values take the defaults.
type Limits struct {
	APIMax      int
	APIWindow   time.Duration
	LoginMax    int
	LoginWindow time.Duration
}

func (l Limits) withDefaults() Limits {
	if l.APIMax <= 0 {
		l.APIMax = 100
	}
	if l.APIWindow <= 0 {
		l.APIWindow = 15 * time.Minute
	}
	if l.LoginMax <= 0 {
		l.LoginMax = 5
	}
	if l.LoginWindow <= 0 {
		l.LoginWindow = 10 * time.Minute
	}
	return l
}

// NewApp builds the HTTP application with middleware and all routes.
func NewApp(d *Deps, cfg config.Config, limits Limits) *fiber.App {
	limits = limits.withDefaults()

	app := fiber.New(fiber.Config{
		AppName:   "glowcandles",
		BodyLimit: 1 << 20, // 1 MiB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "Something went wrong. Please try again."
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
				if code < fiber.StatusInternalServerError {
					msg = fe.Message
				}
			}
			if code >= fiber.StatusInternalServerError {
				applog.Error(c, "server.error", err, nil)
			}
			return fail(c, code, msg)
		},
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(metrics.Middleware())
	app.Use(accessLog())
	app.Use(Authenticate(d.Auth))

	app.Get("/metrics", metrics.Handler())
	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "OK", "message": "Glow Candles API is running"})
	})

	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        limits.APIMax,
		Expiration: limits.APIWindow,
		Next: func(c *fiber.Ctx) bool {
			// the SSE stream is one long request
			return strings.HasSuffix(c.Path(), "/admin/events")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.api.hit", nil)
			return fail(c, fiber.StatusTooManyRequests, "Too many requests from this IP, please try again later.")
		},
	}))
	loginLimiter := limiter.New(limiter.Config{
		Max:        limits.LoginMax,
		Expiration: limits.LoginWindow,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|login"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return fail(c, fiber.StatusTooManyRequests, "Too many attempts. Please try again later.")
		},
	})

	// Auth
	api.Post("/auth/register", d.AuthHandler.Register)
	api.Post("/auth/login", loginLimiter, d.AuthHandler.Login)
	api.Get("/auth/me", RequireUser(), d.AuthHandler.Me)

	// Catalog
	api.Get("/products", d.ProductHandler.List)
	api.Get("/products/category/:category", d.ProductHandler.ByCategory)
	api.Get("/products/:id/availability", d.ProductHandler.Availability)
	api.Get("/products/:id", d.ProductHandler.Detail)

	// Cart
	cart := api.Group("/cart", RequireUser())
	cart.Get("/", d.CartHandler.View)
	cart.Post("/items", d.CartHandler.Add)
	cart.Put("/items/:productId", d.CartHandler.Update)
	cart.Delete("/items/:productId", d.CartHandler.Remove)
	cart.Delete("/", d.CartHandler.Clear)

	// Orders & payments
	api.Post("/orders/guest", d.OrderHandler.CreateGuest)
	orders := api.Group("/orders", RequireUser())
	orders.Post("/", d.OrderHandler.Create)
	orders.Get("/", d.OrderHandler.History)
	orders.Get("/:id", d.OrderHandler.View)

	pay := api.Group("/payments", RequireUser())
	pay.Post("/razorpay/verify", d.PaymentHandler.Verify)
	pay.Post("/cod/confirm", d.PaymentHandler.ConfirmCOD)

	// Admin
	api.Post("/admin/login", loginLimiter, d.AuthHandler.AdminLogin)
	admin := api.Group("/admin", RequireAdmin())
	admin.Get("/dashboard", d.AdminHandler.Dashboard)
	admin.Get("/orders", d.AdminHandler.Orders)
	admin.Get("/orders/:id", d.AdminHandler.Order)
	admin.Put("/orders/:id/status", d.AdminHandler.UpdateOrderStatus)
	admin.Put("/orders/:id/payment-status", d.AdminHandler.UpdatePaymentStatus)
	admin.Get("/products", d.AdminHandler.Products)
	admin.Put("/products/:id/stock", d.AdminHandler.UpdateStock)
	admin.Get("/notifications", d.AdminHandler.Notifications)
	admin.Put("/notifications/:id/read", d.AdminHandler.MarkNotificationRead)
	admin.Get("/events", d.EventsHandler.Stream)

	app.Use(func(c *fiber.Ctx) error {
		return fail(c, fiber.StatusNotFound, "Route not found")
	})
	return app
}

// accessLog writes one entry per request after the handler ran.
func accessLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		applog.Info(c, "http.access", map[string]any{"latency_ms": time.Since(start).Milliseconds()})
		return err
	}
}
