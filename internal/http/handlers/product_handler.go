package handlers

import (
	"github.com/gofiber/fiber/v2"

	"coopsite/internal/domain"
	"coopsite/internal/log"
	"coopsite/internal/repos"
	"coopsite/internal/services"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// GET /api/v1/products?category=&q=&in_stock=true&featured=true
func (h *ProductHandler) List(c *fiber.Ctx) error {
	f := repos.ProductFilter{
		Category:     c.Query("category"),
		Search:       c.Query("q"),
		InStockOnly:  c.QueryBool("in_stock"),
		FeaturedOnly: c.QueryBool("featured"),
	}
	ps, err := h.Catalog.ListProducts(c.UserContext(), f)
	if err != nil {
		return fail(c, "products.list", err)
	}
	return c.JSON(ps)
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	p, err := h.Catalog.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, "products.detail", err)
	}
	return c.JSON(p)
}

func (h *ProductHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.Catalog.Categories(c.UserContext())
	if err != nil {
		return fail(c, "products.categories", err)
	}
	return c.JSON(cats)
}

// POST /admin/api/products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	p, err := h.Catalog.CreateProduct(c.UserContext(), in)
	if err != nil {
		return fail(c, "admin.products.create", err)
	}
	log.Audit(c, "admin.products.create", map[string]any{"product_id": p.ID})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// PATCH /admin/api/products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var patch domain.ProductPatch
	if err := c.BodyParser(&patch); err != nil {
		return badBody(c)
	}
	id := c.Params("id")
	p, err := h.Catalog.UpdateProduct(c.UserContext(), id, patch)
	if err != nil {
		return fail(c, "admin.products.update", err)
	}
	log.Audit(c, "admin.products.update", map[string]any{"product_id": id})
	return c.JSON(p)
}

// DELETE /admin/api/products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Catalog.DeleteProduct(c.UserContext(), id); err != nil {
		return fail(c, "admin.products.delete", err)
	}
	log.Audit(c, "admin.products.delete", map[string]any{"product_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
