package handlers

import (
	"github.com/ddproperty/ddproperty-api/internal/middleware"
	"github.com/ddproperty/ddproperty-api/internal/services"
	"github.com/ddproperty/ddproperty-api/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// MessageHandler handles inquiry routes
type MessageHandler struct {
	Messages *services.MessageService
}

// Create handles POST /api/messages
// @Summary Send an inquiry
// @Description Public. Phone must be 9 or 10 digits
// @Tags Messages
// @Accept json
// @Produce json
// @Param body body services.MessageInput true "Inquiry"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /messages [post]
func (h *MessageHandler) Create(c *fiber.Ctx) error {
	var in services.MessageInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	m, err := h.Messages.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, m, fiber.StatusCreated)
}

// List handles GET /api/messages
// @Summary List all inquiries
// @Tags Messages
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} utils.PagedResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /messages [get]
func (h *MessageHandler) List(c *fiber.Ctx) error {
	page, err := h.Messages.List(c.UserContext(), middleware.ActorFrom(c), c.QueryInt("page", 1), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return utils.PagedResponse(c, page.Data, page.Meta)
}

// ListForUser handles GET /api/messages/user
// @Summary List inquiries about my properties
// @Tags Messages
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} utils.PagedResponseStruct
// @Security BearerAuth
// @Router /messages/user [get]
func (h *MessageHandler) ListForUser(c *fiber.Ctx) error {
	page, err := h.Messages.ListForUser(c.UserContext(), middleware.ActorFrom(c), c.QueryInt("page", 1), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return utils.PagedResponse(c, page.Data, page.Meta)
}

// ByProperty handles GET /api/messages/property/:id
// @Summary List inquiries about a property
// @Tags Messages
// @Produce json
// @Param id path int true "Property ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /messages/property/{id} [get]
func (h *MessageHandler) ByProperty(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	rows, err := h.Messages.ByProperty(c.UserContext(), middleware.ActorFrom(c), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, rows, fiber.StatusOK)
}

// UpdateStatus handles PATCH /api/messages/:id/status
// @Summary Move an inquiry along the pipeline
// @Description NEW, CONTACTED, VISIT, PROPOSAL, WON or LOST
// @Tags Messages
// @Accept json
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /messages/{id}/status [patch]
func (h *MessageHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := parseBody(c, &body); err != nil {
		return err
	}
	m, err := h.Messages.UpdateStatus(c.UserContext(), middleware.ActorFrom(c), id, body.Status)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, m, fiber.StatusOK)
}
