package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"coopsite/internal/services"
	"coopsite/internal/validate"
)

const CartCookie = "sid"

type CartHandler struct {
	Cart         *services.CartService
	CookieSecure bool
}

// ensureSID returns the visitor's cart session id, issuing one if needed.
func ensureSID(c *fiber.Ctx, secure bool) string {
	sid := c.Cookies(CartCookie)
	if _, ok := validate.ID(sid); ok {
		return sid
	}
	sid = uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     CartCookie,
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   secure,
	})
	return sid
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	cv, err := h.Cart.View(c.UserContext(), ensureSID(c, h.CookieSecure))
	if err != nil {
		return fail(c, "cart.view", err)
	}
	return c.JSON(cv)
}

type addRequest struct {
	ProductID string `json:"product_id" form:"product_id"`
}

// POST /api/v1/cart
func (h *CartHandler) Add(c *fiber.Ctx) error {
	var req addRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	id, ok := validate.ID(req.ProductID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing product_id", "field": "product_id"})
	}
	cv, err := h.Cart.Add(c.UserContext(), ensureSID(c, h.CookieSecure), id)
	if err != nil {
		return fail(c, "cart.add", err)
	}
	return c.JSON(cv)
}

type quantityRequest struct {
	Quantity int `json:"quantity" form:"quantity"`
}

// PUT /api/v1/cart/:productID
func (h *CartHandler) Update(c *fiber.Ctx) error {
	var req quantityRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	cv, err := h.Cart.UpdateQuantity(c.UserContext(), ensureSID(c, h.CookieSecure), c.Params("productID"), validate.Quantity(req.Quantity))
	if err != nil {
		return fail(c, "cart.update", err)
	}
	return c.JSON(cv)
}

// DELETE /api/v1/cart/:productID
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	cv, err := h.Cart.Remove(c.UserContext(), ensureSID(c, h.CookieSecure), c.Params("productID"))
	if err != nil {
		return fail(c, "cart.remove", err)
	}
	return c.JSON(cv)
}
