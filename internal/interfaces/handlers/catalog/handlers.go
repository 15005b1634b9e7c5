package catalog

import (
	"encoding/json"

	catsvc "exohub-backend/internal/application/catalog"
	"exohub-backend/internal/domain"
	"exohub-backend/internal/pkg/apperr"
	"exohub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *catsvc.Service
}

func fail(c *fiber.Ctx, err error) error {
	return response.Fail(c, err, apperr.StatusCode(err))
}

// GET /api/v1/catalog/commodities/:ticker
func (h *Handlers) GetCommodity(c *fiber.Ctx) error {
	commodity, err := h.Service.Commodity(c.Context(), c.Params("ticker"))
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Commodity fetched successfully", commodity, nil)
}

// GET /api/v1/catalog/locations/:location_id
func (h *Handlers) GetLocation(c *fiber.Ctx) error {
	location, err := h.Service.Location(c.Context(), c.Params("location_id"))
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Location fetched successfully", location, nil)
}

// PUT /api/v1/catalog/commodities — create or replace a commodity row.
func (h *Handlers) UpsertCommodity(c *fiber.Ctx) error {
	var commodity domain.Commodity
	if err := json.Unmarshal(c.Body(), &commodity); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	if commodity.Ticker == "" {
		return response.Error(c, "Commodity ticker is required", 400, nil)
	}
	if err := h.Service.UpsertCommodity(c.Context(), &commodity); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Commodity saved successfully", commodity, nil)
}

// PUT /api/v1/catalog/locations — create or replace a location row.
func (h *Handlers) UpsertLocation(c *fiber.Ctx) error {
	var location domain.Location
	if err := json.Unmarshal(c.Body(), &location); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	if location.LocationID == "" {
		return response.Error(c, "Location id is required", 400, nil)
	}
	if err := h.Service.UpsertLocation(c.Context(), &location); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Location saved successfully", location, nil)
}
