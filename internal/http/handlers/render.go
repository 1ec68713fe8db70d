package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"coopsite/internal/apperr"
	applog "coopsite/internal/log"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	// Pick up the token the CSRF middleware put into Locals
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	data["CSRFToken"] = tok
	return c.Render(tmpl, data)
}

func statusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// fail writes err as a JSON error. Store and broker failures are logged and
// answered with a generic message.
func fail(c *fiber.Ctx, action string, err error) error {
	status := statusOf(err)
	body := fiber.Map{}
	var ae *apperr.Error
	errors.As(err, &ae)
	switch status {
	case fiber.StatusBadRequest:
		body["error"] = ae.Msg
		if ae.Field != "" {
			body["field"] = ae.Field
		}
		applog.Security(c, "validation.fail", map[string]any{"action": action, "field": ae.Field})
	case fiber.StatusNotFound:
		body["error"] = "not found"
	case fiber.StatusConflict:
		body["error"] = ae.Msg
		applog.Info(c, action+".conflict", map[string]any{"reason": ae.Msg})
	default:
		body["error"] = "Something went wrong. Please try again."
		applog.Error(c, action+".fail", err, nil)
	}
	return c.Status(status).JSON(body)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
}
