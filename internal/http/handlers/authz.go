package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"coopsite/internal/domain"
	applog "coopsite/internal/log"
	"coopsite/internal/services"
)

const AdminCookie = "sid_admin"

// RequireAdmin lets the request through only with a live admin session.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := c.Cookies(AdminCookie)
		if tok == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
		}
		u, err := auth.CurrentAdmin(c.UserContext(), tok)
		if err != nil || u == nil {
			applog.Security(c, "access.denied.admin", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
		}
		c.Locals(applog.LocalAdminID, u.ID)
		c.Locals("admin", u)
		return c.Next()
	}
}

func currentAdmin(c *fiber.Ctx) *domain.AdminUser {
	u, _ := c.Locals("admin").(*domain.AdminUser)
	return u
}

func setAdminCookie(c *fiber.Ctx, value string, expires time.Time, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     AdminCookie,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   secure,
		Expires:  expires,
	})
}
