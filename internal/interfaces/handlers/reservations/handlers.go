package reservations

import (
	"encoding/json"
	"strings"

	resvsvc "exohub-backend/internal/application/reservations"
	"exohub-backend/internal/domain"
	"exohub-backend/internal/middleware"
	"exohub-backend/internal/pkg/apperr"
	"exohub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *resvsvc.Service
}

func fail(c *fiber.Ctx, err error) error {
	return response.Fail(c, err, apperr.StatusCode(err))
}

// POST /api/v1/reservations — 201 with the created reservation.
// Body: { "sell_listing_id" | "buy_request_id", "quantity", "notes" }.
func (h *Handlers) CreateReservation(c *fiber.Ctx) error {
	var body struct {
		SellListingID *uuid.UUID `json:"sell_listing_id"`
		BuyRequestID  *uuid.UUID `json:"buy_request_id"`
		Quantity      int64      `json:"quantity"`
		Notes         string     `json:"notes"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	target, err := domain.NewTargetRef(body.SellListingID, body.BuyRequestID)
	if err != nil {
		return response.Error(c, err.Error(), 400, nil)
	}

	reservation, err := h.Service.Create(c.Context(), resvsvc.CreateReservationInput{
		Target:             target,
		CounterpartyUserID: middleware.GetActor(c).UserID,
		Quantity:           body.Quantity,
		Notes:              body.Notes,
	})
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Reservation created successfully", reservation, nil)
}

// PATCH /api/v1/reservations/:reservation_id/status — structured result,
// 200 on success, 409 with the failure message otherwise.
func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("reservation_id"))
	if err != nil {
		return response.Error(c, "Invalid reservation_id", 400, nil)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	result, err := h.Service.UpdateStatus(c.Context(), id, middleware.GetActor(c).UserID, domain.ReservationStatus(body.Status))
	if err != nil {
		return fail(c, err)
	}
	if !result.Success {
		return response.Error(c, result.Error, 409, nil)
	}
	return response.Success(c, "Reservation status updated successfully", result.Reservation, nil)
}

// GET /api/v1/reservations?status=pending,confirmed — both sides of the
// caller's trades.
func (h *Handlers) ListMyReservations(c *fiber.Ctx) error {
	var statuses []domain.ReservationStatus
	if raw := c.Query("status"); raw != "" {
		for _, s := range splitCommas(raw) {
			status := domain.ReservationStatus(s)
			if !domain.ValidReservationStatus(status) {
				return response.Error(c, "Unknown reservation status: "+s, 400, nil)
			}
			statuses = append(statuses, status)
		}
	}

	out, err := h.Service.ListForUser(c.Context(), middleware.GetActor(c).UserID, statuses)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Reservations fetched successfully", out, nil)
}

// GET /api/v1/reservations/:reservation_id/events — audit trail, parties only.
func (h *Handlers) ListEvents(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("reservation_id"))
	if err != nil {
		return response.Error(c, "Invalid reservation_id", 400, nil)
	}
	events, err := h.Service.ListEvents(c.Context(), id, middleware.GetActor(c).UserID)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Reservation events fetched successfully", events, nil)
}

// GET /api/v1/reservations/eligible?kind=sell&commodity_ticker=RAT&location_id=MOR
func (h *Handlers) ListEligible(c *fiber.Ctx) error {
	in := resvsvc.ListEligibleInput{
		CommodityTicker:    c.Query("commodity_ticker"),
		LocationID:         c.Query("location_id"),
		ExcludeOwnerUserID: middleware.GetActor(c).UserID,
	}

	switch c.Query("kind", "sell") {
	case "sell":
		out, err := h.Service.ListEligibleSell(c.Context(), in)
		if err != nil {
			return fail(c, err)
		}
		return response.Success(c, "Eligible sell listings fetched successfully", out, nil)
	case "buy":
		out, err := h.Service.ListEligibleBuy(c.Context(), in)
		if err != nil {
			return fail(c, err)
		}
		return response.Success(c, "Eligible buy requests fetched successfully", out, nil)
	default:
		return response.Error(c, "kind must be sell or buy", 400, nil)
	}
}

func splitCommas(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
