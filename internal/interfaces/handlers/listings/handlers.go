package listings

import (
	"encoding/json"
	"fmt"

	listsvc "exohub-backend/internal/application/listings"
	"exohub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *listsvc.Service
}

// POST /api/v1/sell-listings — 201 with the created listing
func (h *Handlers) CreateSellListing(c *fiber.Ctx) error {
	var body map[string]interface{}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	for _, f := range []string{"commodity_ticker", "location_id", "currency"} {
		if body[f] == nil || body[f] == "" {
			return response.Error(c, fmt.Sprintf("Missing required field: %s", f), 400, nil)
		}
	}

	a := actor(c)
	listing, err := h.Service.CreateSellListing(c.Context(), listsvc.CreateSellListingInput{
		OwnerUserID:     a.UserID,
		ActorRole:       a.Role,
		CommodityTicker: asString(body["commodity_ticker"]),
		LocationID:      asString(body["location_id"]),
		OrderType:       asStringDef(body["order_type"], "internal"),
		Currency:        asString(body["currency"]),
		Price:           asFloat(body["price"]),
		PriceListCode:   optString(body["price_list_code"]),
		LimitKind:       asStringDef(body["limit_kind"], "none"),
		LimitQuantity:   optInt64(body["limit_quantity"]),
	})
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Sell listing created successfully", listing, nil)
}

// GET /api/v1/sell-listings/:listing_id — enriched view
func (h *Handlers) GetSellListing(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("listing_id"))
	if err != nil {
		return response.Error(c, "Invalid listing_id", 400, nil)
	}
	view, err := h.Service.GetSellListing(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Sell listing fetched successfully", view, nil)
}

// GET /api/v1/sell-listings — the caller's own listings, enriched
func (h *Handlers) GetMySellListings(c *fiber.Ctx) error {
	views, err := h.Service.ListSellListingsForOwner(c.Context(), actor(c).UserID)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Sell listings fetched successfully", views, nil)
}

// PUT /api/v1/sell-listings/:listing_id
func (h *Handlers) UpdateSellListing(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("listing_id"))
	if err != nil {
		return response.Error(c, "Invalid listing_id", 400, nil)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	var limitKind *string
	if s := asString(body["limit_kind"]); s != "" {
		limitKind = &s
	}
	_, clearList := body["clear_price_list"]

	listing, err := h.Service.UpdateSellListing(c.Context(), listsvc.UpdateSellListingInput{
		ListingID:      id,
		OwnerUserID:    actor(c).UserID,
		Price:          optFloat(body["price"]),
		PriceListCode:  optString(body["price_list_code"]),
		ClearPriceList: clearList,
		LimitKind:      limitKind,
		LimitQuantity:  optInt64(body["limit_quantity"]),
	})
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Sell listing updated successfully", listing, nil)
}

// DELETE /api/v1/sell-listings/:listing_id
func (h *Handlers) DeleteSellListing(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("listing_id"))
	if err != nil {
		return response.Error(c, "Invalid listing_id", 400, nil)
	}
	if err := h.Service.DeleteSellListing(c.Context(), id, actor(c).UserID); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Sell listing deleted successfully", nil, nil)
}

// POST /api/v1/buy-requests — 201 with the created request
func (h *Handlers) CreateBuyRequest(c *fiber.Ctx) error {
	var body map[string]interface{}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	for _, f := range []string{"commodity_ticker", "location_id", "currency", "quantity"} {
		if body[f] == nil || body[f] == "" {
			return response.Error(c, fmt.Sprintf("Missing required field: %s", f), 400, nil)
		}
	}

	a := actor(c)
	request, err := h.Service.CreateBuyRequest(c.Context(), listsvc.CreateBuyRequestInput{
		OwnerUserID:     a.UserID,
		ActorRole:       a.Role,
		CommodityTicker: asString(body["commodity_ticker"]),
		LocationID:      asString(body["location_id"]),
		OrderType:       asStringDef(body["order_type"], "internal"),
		Currency:        asString(body["currency"]),
		Price:           asFloat(body["price"]),
		PriceListCode:   optString(body["price_list_code"]),
		Quantity:        asInt64(body["quantity"]),
	})
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Buy request created successfully", request, nil)
}

// GET /api/v1/buy-requests/:request_id — enriched view
func (h *Handlers) GetBuyRequest(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("request_id"))
	if err != nil {
		return response.Error(c, "Invalid request_id", 400, nil)
	}
	view, err := h.Service.GetBuyRequest(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Buy request fetched successfully", view, nil)
}

// GET /api/v1/buy-requests — the caller's own requests, enriched
func (h *Handlers) GetMyBuyRequests(c *fiber.Ctx) error {
	views, err := h.Service.ListBuyRequestsForOwner(c.Context(), actor(c).UserID)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Buy requests fetched successfully", views, nil)
}

// PUT /api/v1/buy-requests/:request_id
func (h *Handlers) UpdateBuyRequest(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("request_id"))
	if err != nil {
		return response.Error(c, "Invalid request_id", 400, nil)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	_, clearList := body["clear_price_list"]

	request, err := h.Service.UpdateBuyRequest(c.Context(), listsvc.UpdateBuyRequestInput{
		RequestID:      id,
		OwnerUserID:    actor(c).UserID,
		Price:          optFloat(body["price"]),
		PriceListCode:  optString(body["price_list_code"]),
		ClearPriceList: clearList,
		Quantity:       optInt64(body["quantity"]),
	})
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Buy request updated successfully", request, nil)
}

// DELETE /api/v1/buy-requests/:request_id
func (h *Handlers) DeleteBuyRequest(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("request_id"))
	if err != nil {
		return response.Error(c, "Invalid request_id", 400, nil)
	}
	if err := h.Service.DeleteBuyRequest(c.Context(), id, actor(c).UserID); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Buy request deleted successfully", nil, nil)
}

// GET /api/v1/sell-listings/:listing_id/price — standalone price resolution
// for collaborators that only need the display price.
func (h *Handlers) ResolveSellListingPrice(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("listing_id"))
	if err != nil {
		return response.Error(c, "Invalid listing_id", 400, nil)
	}
	view, err := h.Service.GetSellListing(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if view.EffectivePrice == nil {
		return response.Success(c, "Price unavailable", nil, nil)
	}
	return response.Success(c, "Price resolved successfully", view.EffectivePrice, nil)
}
