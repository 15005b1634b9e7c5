package pricelists

import (
	"encoding/json"

	pricesvc "exohub-backend/internal/application/pricing"
	"exohub-backend/internal/domain"
	"exohub-backend/internal/pkg/apperr"
	"exohub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *pricesvc.Service
}

func fail(c *fiber.Ctx, err error) error {
	return response.Fail(c, err, apperr.StatusCode(err))
}

// PUT /api/v1/price-lists — create or replace a price list.
func (h *Handlers) UpsertPriceList(c *fiber.Ctx) error {
	var list domain.PriceList
	if err := json.Unmarshal(c.Body(), &list); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	if err := h.Service.UpsertPriceList(c.Context(), &list); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Price list saved successfully", list, nil)
}

// POST /api/v1/price-lists/adjustments — add an adjustment row.
func (h *Handlers) CreateAdjustment(c *fiber.Ctx) error {
	var adj domain.PriceAdjustment
	if err := json.Unmarshal(c.Body(), &adj); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	if err := h.Service.CreateAdjustment(c.Context(), &adj); err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Price adjustment created successfully", adj, nil)
}

// PATCH /api/v1/price-lists/adjustments/:id/deactivate
func (h *Handlers) DeactivateAdjustment(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.Error(c, "Invalid adjustment id", 400, nil)
	}
	if err := h.Service.DeactivateAdjustment(c.Context(), uint(id)); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Price adjustment deactivated successfully", nil, nil)
}

// GET /api/v1/price-lists/:list_code/adjustments
func (h *Handlers) ListAdjustments(c *fiber.Ctx) error {
	rows, err := h.Service.ListAdjustments(c.Context(), c.Params("list_code"))
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Price adjustments fetched successfully", rows, nil)
}
