// properties.go
//
// DD Property listing API
// Copyright (c) 2026 DD Property Co., Ltd.
//
// This file is part of ddproperty-api.
// ddproperty-api is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// ddproperty-api is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with ddproperty-api.
// If not, see <https://www.gnu.org/licenses/>.

package handlers

import (
	"fmt"
	"mime/multipart"
	"time"

	"github.com/ddproperty/ddproperty-api/internal/export"
	"github.com/ddproperty/ddproperty-api/internal/middleware"
	"github.com/ddproperty/ddproperty-api/internal/services"
	"github.com/ddproperty/ddproperty-api/internal/taxonomy"
	"github.com/ddproperty/ddproperty-api/internal/types"
	"github.com/ddproperty/ddproperty-api/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// Multipart file fields accepted on property submission.
var mediaFields = []string{"images", "floorPlans", "unitPlans"}

// PropertyHandler handles property routes
type PropertyHandler struct {
	Properties *services.PropertyService
}

// List handles GET /api/properties
// @Summary List properties
// @Description Page through active properties with filters
// @Tags Properties
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (max 100)" default(10)
// @Param search query string false "Case-insensitive search over title, description and location"
// @Param propertyType query string false "Property type, e.g. CONDO"
// @Param listingType query string false "SALE or RENT"
// @Param minPrice query number false "Minimum listing price"
// @Param maxPrice query number false "Maximum listing price"
// @Param bedrooms query int false "Exact bedroom count"
// @Param bathrooms query int false "Exact bathroom count"
// @Param city query string false "City"
// @Param province query string false "Province"
// @Param zoneId query int false "Zone ID"
// @Param sortBy query string false "Sort field" default(createdAt)
// @Param sortOrder query string false "asc or desc" default(desc)
// @Success 200 {object} utils.PagedResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /properties [get]
func (h *PropertyHandler) List(c *fiber.Ctx) error {
	page, err := h.Properties.List(c.UserContext(), queryMap(c))
	if err != nil {
		return err
	}
	return utils.PagedResponse(c, page.Data, page.Meta)
}

// Search handles GET /api/search
// @Summary Search properties
// @Description Same filters as the property list; images are featured first with absolute URLs
// @Tags Properties
// @Produce json
// @Param search query string false "Search text"
// @Success 200 {object} utils.PagedResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /search [get]
func (h *PropertyHandler) Search(c *fiber.Ctx) error {
	page, err := h.Properties.Search(c.UserContext(), queryMap(c))
	if err != nil {
		return err
	}
	return utils.PagedResponse(c, page.Data, page.Meta)
}

// Random handles GET /api/properties/random
// @Summary Random properties
// @Description Random active properties with a featured image, for public feeds
// @Tags Properties
// @Produce json
// @Param count query int false "Number of properties" default(4)
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security ApiKeyAuth
// @Router /properties/random [get]
func (h *PropertyHandler) Random(c *fiber.Ctx) error {
	rows, err := h.Properties.Random(c.UserContext(), c.QueryInt("count", services.DefaultRandomCount))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, rows, fiber.StatusOK)
}

// Get handles GET /api/properties/:id
// @Summary Get a property
// @Description The complete property with listings, media and attributes
// @Tags Properties
// @Produce json
// @Param id path int true "Property ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /properties/{id} [get]
func (h *PropertyHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Properties.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, p, fiber.StatusOK)
}

// Create handles POST /api/properties
// @Summary Create a property
// @Description Multipart form or JSON. Numbers, booleans and nested objects may be sent as strings
// @Tags Properties
// @Accept multipart/form-data,json
// @Produce json
// @Param body body services.PropertyPayload true "Property"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /properties [post]
func (h *PropertyHandler) Create(c *fiber.Ctx) error {
	var payload services.PropertyPayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return types.BadRequest("Invalid multipart form")
		}
		for _, field := range mediaFields {
			urls, err := h.Properties.StageUploads(form.File[field])
			if err != nil {
				return err
			}
			for _, url := range urls {
				m := services.MediaPayload{URL: url}
				switch field {
				case "images":
					payload.Images = append(payload.Images, m)
				case "floorPlans":
					payload.FloorPlans = append(payload.FloorPlans, m)
				case "unitPlans":
					payload.UnitPlans = append(payload.UnitPlans, m)
				}
			}
		}
	}

	p, err := h.Properties.Create(c.UserContext(), middleware.ActorFrom(c), payload)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, p, fiber.StatusCreated)
}

// Update handles PUT /api/properties/:id
// @Summary Update a property
// @Description Changes scalar fields. Owner or admin only
// @Tags Properties
// @Accept json
// @Produce json
// @Param id path int true "Property ID"
// @Param body body services.PropertyUpdate true "Fields to change"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /properties/{id} [put]
func (h *PropertyHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var update services.PropertyUpdate
	if err := parseBody(c, &update); err != nil {
		return err
	}
	p, err := h.Properties.Update(c.UserContext(), middleware.ActorFrom(c), id, update)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, p, fiber.StatusOK)
}

// ReplaceTaxonomy handles PUT /api/properties/:id/taxonomy
// @Summary Replace property attributes
// @Description Replaces each attribute collection present in the body. Owner or admin only
// @Tags Properties
// @Accept json
// @Produce json
// @Param id path int true "Property ID"
// @Param body body taxonomy.Raw true "Attribute collections"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /properties/{id}/taxonomy [put]
func (h *PropertyHandler) ReplaceTaxonomy(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var raw taxonomy.Raw
	if err := parseBody(c, &raw); err != nil {
		return err
	}
	p, err := h.Properties.ReplaceTaxonomy(c.UserContext(), middleware.ActorFrom(c), id, raw)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, p, fiber.StatusOK)
}

// Delete handles DELETE /api/properties/:id
// @Summary Delete a property
// @Description Removes the property with its listings, media, attributes and inquiries. Owner or admin only
// @Tags Properties
// @Produce json
// @Param id path int true "Property ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /properties/{id} [delete]
func (h *PropertyHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Properties.Delete(c.UserContext(), middleware.ActorFrom(c), id); err != nil {
		return err
	}
	return utils.MessageResponse(c, "Property deleted successfully")
}

// AddImage handles POST /api/properties/:id/images
// @Summary Add an image
// @Description Multipart field "image", or JSON with a staged or external url
// @Tags Properties
// @Accept multipart/form-data,json
// @Produce json
// @Param id path int true "Property ID"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /properties/{id}/images [post]
func (h *PropertyHandler) AddImage(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var payload services.MediaPayload
	if isMultipart(c) {
		if err := parseBody(c, &payload); err != nil {
			return err
		}
		if fh, err := c.FormFile("image"); err == nil {
			urls, err := h.Properties.StageUploads([]*multipart.FileHeader{fh})
			if err != nil {
				return err
			}
			payload.URL = urls[0]
		}
	} else if err := parseBody(c, &payload); err != nil {
		return err
	}

	img, err := h.Properties.AddImage(c.UserContext(), middleware.ActorFrom(c), id, payload)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, img, fiber.StatusCreated)
}

// DeleteImage handles DELETE /api/properties/images/:id
// @Summary Delete an image
// @Description A remaining image is promoted when the featured one is removed
// @Tags Properties
// @Produce json
// @Param id path int true "Image ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /properties/images/{id} [delete]
func (h *PropertyHandler) DeleteImage(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Properties.DeleteImage(c.UserContext(), middleware.ActorFrom(c), id); err != nil {
		return err
	}
	return utils.MessageResponse(c, "Image deleted successfully")
}

// AddFeature handles POST /api/properties/:id/features
// @Summary Add a feature
// @Tags Properties
// @Accept json
// @Produce json
// @Param id path int true "Property ID"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /properties/{id}/features [post]
func (h *PropertyHandler) AddFeature(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		FeatureType string `json:"featureType"`
		Type        string `json:"type"`
	}
	if err := parseBody(c, &body); err != nil {
		return err
	}
	name := body.FeatureType
	if name == "" {
		name = body.Type
	}
	f, err := h.Properties.AddFeature(c.UserContext(), middleware.ActorFrom(c), id, name)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, f, fiber.StatusCreated)
}

// DeleteFeature handles DELETE /api/properties/features/:id
// @Summary Delete a feature
// @Tags Properties
// @Produce json
// @Param id path int true "Feature ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Security BearerAuth
// @Router /properties/features/{id} [delete]
func (h *PropertyHandler) DeleteFeature(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Properties.DeleteFeature(c.UserContext(), middleware.ActorFrom(c), id); err != nil {
		return err
	}
	return utils.MessageResponse(c, "Feature deleted successfully")
}

// MyProperties handles GET /api/properties/backoffice/my-properties
// @Summary List my properties
// @Description The caller's properties of every status with view and inquiry counts
// @Tags Backoffice
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param status query string false "Status filter"
// @Success 200 {object} utils.PagedResponseStruct
// @Security BearerAuth
// @Router /properties/backoffice/my-properties [get]
func (h *PropertyHandler) MyProperties(c *fiber.Ctx) error {
	page, err := h.Properties.MyProperties(c.UserContext(), middleware.ActorFrom(c), queryMap(c))
	if err != nil {
		return err
	}
	return utils.PagedResponse(c, page.Data, page.Meta)
}

// Export handles GET /api/properties/backoffice/export
// @Summary Export my properties
// @Description Spreadsheet of the caller's properties matching the filters
// @Tags Backoffice
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Security BearerAuth
// @Router /properties/backoffice/export [get]
func (h *PropertyHandler) Export(c *fiber.Ctx) error {
	data, err := h.Properties.Export(c.UserContext(), middleware.ActorFrom(c), queryMap(c))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="properties-%s.xlsx"`, time.Now().Format("20060102")))
	return c.Send(data)
}

// Types handles GET /api/properties/types
// @Summary Property types
// @Description Every property type with localized names, descriptions and active counts
// @Tags Properties
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /properties/types [get]
func (h *PropertyHandler) Types(c *fiber.Ctx) error {
	rows, err := h.Properties.Types(c.UserContext())
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, rows, fiber.StatusOK)
}

// PriceTypes handles GET /api/properties/price-types
// @Summary Property type prices
// @Description Every property type with count and min, max and average active listing price
// @Tags Properties
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /properties/price-types [get]
func (h *PropertyHandler) PriceTypes(c *fiber.Ctx) error {
	rows, err := h.Properties.PriceTypes(c.UserContext())
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, rows, fiber.StatusOK)
}

// Upload handles POST /api/uploads
// @Summary Stage files
// @Description Stores files in the staging area. The returned URLs can be submitted with a property
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Files"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /uploads [post]
func (h *PropertyHandler) Upload(c *fiber.Ctx) error {
	if !isMultipart(c) {
		return types.BadRequest("Multipart form required")
	}
	form, err := c.MultipartForm()
	if err != nil {
		return types.BadRequest("Invalid multipart form")
	}
	files := form.File["files"]
	files = append(files, form.File["file"]...)
	if len(files) == 0 {
		return types.BadRequest("No files uploaded")
	}
	urls, err := h.Properties.StageUploads(files)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.Map{"urls": urls}, fiber.StatusCreated)
}
