package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "coopsite/internal/log"
	"coopsite/internal/services"
)

type AdminHandler struct {
	Admin *services.AdminService
}

// GET /admin/api/overview
func (h *AdminHandler) Overview(c *fiber.Ctx) error {
	ov, err := h.Admin.Overview(c.UserContext())
	if err != nil {
		return fail(c, "admin.overview", err)
	}
	return c.JSON(fiber.Map{"admin": currentAdmin(c), "overview": ov})
}

// GET /admin/api/bookings?status=
func (h *AdminHandler) Bookings(c *fiber.Ctx) error {
	bs, err := h.Admin.ListBookings(c.UserContext(), c.Query("status"))
	if err != nil {
		return fail(c, "admin.bookings.list", err)
	}
	return c.JSON(bs)
}

// GET /admin/api/orders?status=
func (h *AdminHandler) Orders(c *fiber.Ctx) error {
	ords, err := h.Admin.ListOrders(c.UserContext(), c.Query("status"))
	if err != nil {
		return fail(c, "admin.orders.list", err)
	}
	return c.JSON(ords)
}

type statusRequest struct {
	Status string `json:"status" form:"status"`
}

// POST /admin/api/bookings/:id/status
func (h *AdminHandler) BookingStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	id := c.Params("id")
	b, err := h.Admin.SetBookingStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return fail(c, "admin.bookings.status", err)
	}
	applog.Audit(c, "admin.bookings.status", map[string]any{"booking_id": id, "status": b.Status})
	return c.JSON(b)
}

// POST /admin/api/orders/:id/status
func (h *AdminHandler) OrderStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	id := c.Params("id")
	o, err := h.Admin.SetOrderStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return fail(c, "admin.orders.status", err)
	}
	applog.Audit(c, "admin.orders.status", map[string]any{"order_id": id, "status": o.Status})
	return c.JSON(o)
}
