package handlers

import (
	"github.com/gofiber/fiber/v2"

	"coopsite/internal/domain"
	applog "coopsite/internal/log"
	"coopsite/internal/services"
)

type OrderHandler struct {
	Order        *services.OrderService
	CookieSecure bool
}

// POST /api/v1/orders
func (h *OrderHandler) Submit(c *fiber.Ctx) error {
	var cust domain.Customer
	if err := c.BodyParser(&cust); err != nil {
		return badBody(c)
	}
	o, err := h.Order.Submit(c.UserContext(), ensureSID(c, h.CookieSecure), cust)
	if err != nil {
		return fail(c, "orders.submit", err)
	}
	applog.Audit(c, "orders.submit", map[string]any{"order_id": o.ID, "total": o.Total.StringFixed(2), "items": len(o.Items)})
	return c.Status(fiber.StatusCreated).JSON(o)
}
