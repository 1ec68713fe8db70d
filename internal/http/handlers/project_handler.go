package handlers

import (
	"github.com/gofiber/fiber/v2"

	"coopsite/internal/domain"
	"coopsite/internal/log"
	"coopsite/internal/services"
)

type ProjectHandler struct {
	Portfolio *services.PortfolioService
}

// GET /api/v1/projects?featured=true
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	ps, err := h.Portfolio.ListProjects(c.UserContext(), c.QueryBool("featured"))
	if err != nil {
		return fail(c, "projects.list", err)
	}
	return c.JSON(ps)
}

func (h *ProjectHandler) Detail(c *fiber.Ctx) error {
	p, err := h.Portfolio.GetProject(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, "projects.detail", err)
	}
	return c.JSON(p)
}

func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	var in services.ProjectInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	p, err := h.Portfolio.CreateProject(c.UserContext(), in)
	if err != nil {
		return fail(c, "admin.projects.create", err)
	}
	log.Audit(c, "admin.projects.create", map[string]any{"project_id": p.ID})
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	var patch domain.ProjectPatch
	if err := c.BodyParser(&patch); err != nil {
		return badBody(c)
	}
	id := c.Params("id")
	p, err := h.Portfolio.UpdateProject(c.UserContext(), id, patch)
	if err != nil {
		return fail(c, "admin.projects.update", err)
	}
	log.Audit(c, "admin.projects.update", map[string]any{"project_id": id})
	return c.JSON(p)
}

func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Portfolio.DeleteProject(c.UserContext(), id); err != nil {
		return fail(c, "admin.projects.delete", err)
	}
	log.Audit(c, "admin.projects.delete", map[string]any{"project_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

type galleryRequest struct {
	Images []string `json:"images"`
}

// PUT /admin/api/projects/:id/gallery
func (h *ProjectHandler) Gallery(c *fiber.Ctx) error {
	var req galleryRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	id := c.Params("id")
	p, err := h.Portfolio.SetGallery(c.UserContext(), id, req.Images)
	if err != nil {
		return fail(c, "admin.projects.gallery", err)
	}
	log.Audit(c, "admin.projects.gallery", map[string]any{"project_id": id, "images": len(p.GalleryImages)})
	return c.JSON(p)
}
