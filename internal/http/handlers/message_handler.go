package handlers

import (
	"github.com/gofiber/fiber/v2"

	"coopsite/internal/log"
	"coopsite/internal/services"
)

type MessageHandler struct {
	Messages *services.MessageService
}

// POST /api/v1/messages
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	var req services.MessageRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	m, err := h.Messages.Send(c.UserContext(), req)
	if err != nil {
		return fail(c, "messages.send", err)
	}
	log.Info(c, "messages.send", map[string]any{"message_id": m.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": m.ID})
}

// GET /admin/api/messages?archived=true&q=
func (h *MessageHandler) List(c *fiber.Ctx) error {
	msgs, err := h.Messages.List(c.UserContext(), c.QueryBool("archived"), c.Query("q"))
	if err != nil {
		return fail(c, "admin.messages.list", err)
	}
	return c.JSON(msgs)
}

type flagRequest struct {
	Value *bool `json:"value"`
}

// flag reads {"value": bool}; a missing body or value means true.
func flag(c *fiber.Ctx) (bool, error) {
	if len(c.Body()) == 0 {
		return true, nil
	}
	var req flagRequest
	if err := c.BodyParser(&req); err != nil {
		return false, err
	}
	return req.Value == nil || *req.Value, nil
}

// POST /admin/api/messages/:id/read
func (h *MessageHandler) SetRead(c *fiber.Ctx) error {
	v, err := flag(c)
	if err != nil {
		return badBody(c)
	}
	id := c.Params("id")
	if err := h.Messages.SetRead(c.UserContext(), id, v); err != nil {
		return fail(c, "admin.messages.read", err)
	}
	log.Audit(c, "admin.messages.read", map[string]any{"message_id": id, "read": v})
	return c.SendStatus(fiber.StatusNoContent)
}

// POST /admin/api/messages/:id/archive
func (h *MessageHandler) SetArchived(c *fiber.Ctx) error {
	v, err := flag(c)
	if err != nil {
		return badBody(c)
	}
	id := c.Params("id")
	if err := h.Messages.SetArchived(c.UserContext(), id, v); err != nil {
		return fail(c, "admin.messages.archive", err)
	}
	log.Audit(c, "admin.messages.archive", map[string]any{"message_id": id, "archived": v})
	return c.SendStatus(fiber.StatusNoContent)
}

type bulkRequest struct {
	Action string   `json:"action"` // read | archive
	IDs    []string `json:"ids"`
}

// POST /admin/api/messages/bulk
func (h *MessageHandler) Bulk(c *fiber.Ctx) error {
	var req bulkRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	var (
		n   int64
		err error
	)
	switch req.Action {
	case "read":
		n, err = h.Messages.MarkAllRead(c.UserContext(), req.IDs)
	case "archive":
		n, err = h.Messages.ArchiveAll(c.UserContext(), req.IDs)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "action must be read or archive", "field": "action"})
	}
	if err != nil {
		return fail(c, "admin.messages.bulk", err)
	}
	log.Audit(c, "admin.messages.bulk", map[string]any{"action": req.Action, "count": n})
	return c.JSON(fiber.Map{"updated": n})
}
