package handlers

import (
	"github.com/gofiber/fiber/v2"

	"coopsite/internal/log"
	"coopsite/internal/services"
)

type BookingHandler struct {
	Bookings *services.BookingService
}

// GET /api/v1/slots?date=YYYY-MM-DD
func (h *BookingHandler) Slots(c *fiber.Ctx) error {
	date := c.Query("date")
	slots, err := h.Bookings.Availability(c.UserContext(), date)
	if err != nil {
		return fail(c, "slots.availability", err)
	}
	return c.JSON(fiber.Map{"date": date, "slots": slots})
}

// GET /api/v1/slots/booked?date=YYYY-MM-DD
func (h *BookingHandler) Booked(c *fiber.Ctx) error {
	date := c.Query("date")
	booked, err := h.Bookings.BookedSlots(c.UserContext(), date)
	if err != nil {
		return fail(c, "slots.booked", err)
	}
	return c.JSON(fiber.Map{"date": date, "booked": booked})
}

// POST /api/v1/bookings
func (h *BookingHandler) Submit(c *fiber.Ctx) error {
	var req services.BookingRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	b, err := h.Bookings.Submit(c.UserContext(), req)
	if err != nil {
		return fail(c, "bookings.submit", err)
	}
	log.Audit(c, "bookings.submit", map[string]any{"booking_id": b.ID, "date": b.Date, "slot": b.TimeSlot})
	return c.Status(fiber.StatusCreated).JSON(b)
}
