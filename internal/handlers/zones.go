package handlers

import (
	"github.com/ddproperty/ddproperty-api/internal/services"
	"github.com/ddproperty/ddproperty-api/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// ZoneHandler handles zone and icon reference data routes
type ZoneHandler struct {
	Zones       *services.ZoneService
	PropertySvc *services.PropertyService
}

// List handles GET /api/zones
// @Summary List zones
// @Tags Zones
// @Produce json
// @Param city query string false "City"
// @Param province query string false "Province"
// @Param search query string false "Search text"
// @Param sort query string false "name, nameEn, nameTh, city, province or createdAt"
// @Param order query string false "asc or desc"
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /zones [get]
func (h *ZoneHandler) List(c *fiber.Ctx) error {
	rows, err := h.Zones.List(c.UserContext(), queryMap(c))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, rows, fiber.StatusOK)
}

// Cities handles GET /api/zones/cities
// @Summary Zones grouped by city
// @Tags Zones
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /zones/cities [get]
func (h *ZoneHandler) Cities(c *fiber.Ctx) error {
	rows, err := h.Zones.Cities(c.UserContext())
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, rows, fiber.StatusOK)
}

// Get handles GET /api/zones/:id
// @Summary Get a zone
// @Tags Zones
// @Produce json
// @Param id path int true "Zone ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /zones/{id} [get]
func (h *ZoneHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	z, err := h.Zones.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, z, fiber.StatusOK)
}

// Properties handles GET /api/zones/:id/properties
// @Summary Properties in a zone
// @Description Accepts the property list filters
// @Tags Zones
// @Produce json
// @Param id path int true "Zone ID"
// @Success 200 {object} utils.PagedResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /zones/{id}/properties [get]
func (h *ZoneHandler) Properties(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.Zones.Get(c.UserContext(), id); err != nil {
		return err
	}
	page, err := h.PropertySvc.ByZone(c.UserContext(), id, queryMap(c))
	if err != nil {
		return err
	}
	return utils.PagedResponse(c, page.Data, page.Meta)
}

// Icons handles GET /api/icons
// @Summary List icons
// @Tags Icons
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /icons [get]
func (h *ZoneHandler) Icons(c *fiber.Ctx) error {
	rows, err := h.Zones.Icons(c.UserContext())
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, rows, fiber.StatusOK)
}

// IconsByPrefix handles GET /api/icons/prefix/:prefix
// @Summary Icons of a prefix grouped by sub name
// @Tags Icons
// @Produce json
// @Param prefix path string true "Icon prefix"
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /icons/prefix/{prefix} [get]
func (h *ZoneHandler) IconsByPrefix(c *fiber.Ctx) error {
	groups, err := h.Zones.IconsByPrefix(c.UserContext(), c.Params("prefix"))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, groups, fiber.StatusOK)
}

// Icon handles GET /api/icons/:id
// @Summary Get an icon
// @Tags Icons
// @Produce json
// @Param id path int true "Icon ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /icons/{id} [get]
func (h *ZoneHandler) Icon(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	icon, err := h.Zones.Icon(c.UserContext(), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, icon, fiber.StatusOK)
}
