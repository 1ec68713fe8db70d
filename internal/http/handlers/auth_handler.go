package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"coopsite/internal/log"
	"coopsite/internal/repos"
	"coopsite/internal/services"
)

type AuthHandler struct {
	Auth         *services.AuthService
	CookieSecure bool
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

// Login answers JSON clients with the admin record and browsers with a
// redirect to the dashboard data.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	u, err := h.Auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, services.ErrBadCreds) {
			return fail(c, "auth.login", err)
		}
		log.Security(c, "auth.login.fail", map[string]any{"username": req.Username})
		if c.Is("json") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": services.ErrBadCreds.Error()})
		}
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{
			"Err": "Invalid username or password", "CSRFToken": c.Cookies("csrf_"),
		})
	}

	sess, err := h.Auth.StartSession(c.UserContext(), u.ID)
	if err != nil {
		return fail(c, "auth.session", err)
	}
	expires, _ := time.Parse(repos.TimeLayout, sess.ExpiresAt)
	setAdminCookie(c, sess.Token, expires, h.CookieSecure)

	c.Locals(log.LocalAdminID, u.ID)
	log.Audit(c, "auth.login.success", map[string]any{"username": u.Username})
	if c.Is("json") {
		return c.JSON(fiber.Map{"admin": u})
	}
	return c.Redirect("/admin/api/overview")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	tok := c.Cookies(AdminCookie)
	if err := h.Auth.Logout(c.UserContext(), tok); err != nil {
		log.Error(c, "auth.logout.fail", err, nil)
	}
	setAdminCookie(c, "", time.Now().Add(-1*time.Hour), h.CookieSecure)
	log.Audit(c, "auth.logout", nil)
	return c.SendStatus(fiber.StatusNoContent)
}
