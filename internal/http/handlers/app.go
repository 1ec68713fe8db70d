package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"coopsite/internal/config"
	applog "coopsite/internal/log"
	"coopsite/web"
)

// Limits holds the per-IP request budgets; tests shrink them.
type Limits struct {
	Global      int
	Login       int
	Submissions int
}

var DefaultLimits = Limits{Global: 120, Login: 5, Submissions: 10}

func isAPI(c *fiber.Ctx) bool {
	p := c.Path()
	return strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/admin/api/")
}

// ErrorHandler logs the failure and shows a friendly message without internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Something went wrong. Please try again."
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < 500 {
		code = fe.Code
		msg = fe.Message
	} else {
		applog.Error(c, "server.error", err, nil)
	}
	if isAPI(c) {
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}

// NewApp builds the fiber app with middleware and every route.
func NewApp(cfg config.Config, d *Deps, lim Limits) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:        web.Engine(),
		ErrorHandler: ErrorHandler,
		BodyLimit:    1 << 20, // 1 MiB
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        lim.Global,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))
	app.Use(csrf.New(csrf.Config{
		// JSON clients send the header, the login form posts a field
		Extractor: func(c *fiber.Ctx) (string, error) {
			if tok, err := csrf.CsrfFromHeader(csrf.HeaderName)(c); err == nil {
				return tok, nil
			}
			return csrf.CsrfFromForm("csrf")(c)
		},
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.CookieSecure,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"reason": err.Error()})
			if isAPI(c) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "security check failed, refresh and retry"})
			}
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	submitLimiter := limiter.New(limiter.Config{
		Max:        lim.Submissions,
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|submit"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.submit.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many submissions, retry later"})
		},
	})

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	// ---------- Public API ----------
	api := app.Group("/api/v1")
	api.Get("/slots", d.BookingHandler.Slots)
	api.Get("/slots/booked", d.BookingHandler.Booked)
	api.Post("/bookings", submitLimiter, d.BookingHandler.Submit)
	api.Post("/messages", submitLimiter, d.MessageHandler.Send)

	api.Get("/products", d.ProductHandler.List)
	api.Get("/products/:id", d.ProductHandler.Detail)
	api.Get("/categories", d.ProductHandler.Categories)
	api.Get("/projects", d.ProjectHandler.List)
	api.Get("/projects/:id", d.ProjectHandler.Detail)

	api.Get("/cart", d.CartHandler.View)
	api.Post("/cart", d.CartHandler.Add)
	api.Put("/cart/:productID", d.CartHandler.Update)
	api.Delete("/cart/:productID", d.CartHandler.Remove)
	api.Post("/orders", submitLimiter, d.OrderHandler.Submit)

	// ---------- Staff ----------
	app.Get("/admin/login", d.AuthHandler.LoginForm)
	app.Post("/admin/login", limiter.New(limiter.Config{
		Max:        lim.Login,
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|login"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			if c.Is("json") {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, try again later"})
			}
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), d.AuthHandler.Login)
	app.Post("/admin/logout", d.AuthHandler.Logout)

	admin := app.Group("/admin/api", RequireAdmin(d.AuthSvc))
	admin.Get("/overview", d.AdminHandler.Overview)
	admin.Get("/bookings", d.AdminHandler.Bookings)
	admin.Post("/bookings/:id/status", d.AdminHandler.BookingStatus)
	admin.Get("/orders", d.AdminHandler.Orders)
	admin.Post("/orders/:id/status", d.AdminHandler.OrderStatus)

	admin.Get("/messages", d.MessageHandler.List)
	admin.Post("/messages/bulk", d.MessageHandler.Bulk)
	admin.Post("/messages/:id/read", d.MessageHandler.SetRead)
	admin.Post("/messages/:id/archive", d.MessageHandler.SetArchived)

	admin.Get("/products", d.ProductHandler.List)
	admin.Post("/products", d.ProductHandler.Create)
	admin.Patch("/products/:id", d.ProductHandler.Update)
	admin.Delete("/products/:id", d.ProductHandler.Delete)

	admin.Get("/projects", d.ProjectHandler.List)
	admin.Post("/projects", d.ProjectHandler.Create)
	admin.Patch("/projects/:id", d.ProjectHandler.Update)
	admin.Delete("/projects/:id", d.ProjectHandler.Delete)
	admin.Put("/projects/:id/gallery", d.ProjectHandler.Gallery)

	// 404
	app.Use(func(c *fiber.Ctx) error {
		if isAPI(c) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
	})
	return app
}
