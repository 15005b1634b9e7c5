package reservations

import (
	"context"

	"exohub-backend/internal/application/availability"
	"exohub-backend/internal/application/pricing"
	"exohub-backend/internal/domain"
	"exohub-backend/internal/pkg/apperr"

	"github.com/google/uuid"
)

// ListEligibleInput narrows the eligibility search. LocationID empty means
// any location.
type ListEligibleInput struct {
	Kind              domain.TargetKind
	CommodityTicker   string
	LocationID        string
	ExcludeOwnerUserID uuid.UUID
}

// EligibleSellListing is a sell listing a counterparty can reserve against,
// annotated with the quantity still reservable and the resolved price.
type EligibleSellListing struct {
	Listing            domain.SellListing `json:"listing"`
	ReservableQuantity int64              `json:"reservable_quantity"`
	EffectivePrice     *pricing.Resolved  `json:"effective_price"`
}

// EligibleBuyRequest is a buy request a counterparty can reserve against.
type EligibleBuyRequest struct {
	Request            domain.BuyRequest `json:"request"`
	ReservableQuantity int64             `json:"reservable_quantity"`
	EffectivePrice     *pricing.Resolved `json:"effective_price"`
}

// ListEligibleSell returns sell listings of other users for the commodity,
// each annotated with its remaining quantity. Entries with nothing left to
// reserve are excluded.
func (s *Service) ListEligibleSell(ctx context.Context, in ListEligibleInput) ([]EligibleSellListing, error) {
	if in.CommodityTicker == "" {
		return nil, apperr.Validation("Commodity ticker is required")
	}
	avail := &availability.Service{DB: s.DB}

	q := s.DB.WithContext(ctx).
		Where("commodity_ticker = ? AND owner_user_id <> ?", in.CommodityTicker, in.ExcludeOwnerUserID)
	if in.LocationID != "" {
		q = q.Where("location_id = ?", in.LocationID)
	}

	var listings []domain.SellListing
	if err := q.Order("created_at DESC").Find(&listings).Error; err != nil {
		return nil, err
	}

	out := make([]EligibleSellListing, 0, len(listings))
	for i := range listings {
		stats, err := avail.SellListingStats(ctx, &listings[i])
		if err != nil {
			return nil, err
		}
		if stats.RemainingQuantity <= 0 {
			continue
		}
		price, err := s.Pricing.ResolveSellListing(ctx, &listings[i])
		if err != nil {
			return nil, err
		}
		out = append(out, EligibleSellListing{
			Listing:            listings[i],
			ReservableQuantity: stats.RemainingQuantity,
			EffectivePrice:     price,
		})
	}
	return out, nil
}

// ListEligibleBuy returns buy requests of other users for the commodity,
// annotated with requested - active - fulfilled (floored at zero, zero
// entries excluded).
func (s *Service) ListEligibleBuy(ctx context.Context, in ListEligibleInput) ([]EligibleBuyRequest, error) {
	if in.CommodityTicker == "" {
		return nil, apperr.Validation("Commodity ticker is required")
	}
	avail := &availability.Service{DB: s.DB}

	q := s.DB.WithContext(ctx).
		Where("commodity_ticker = ? AND owner_user_id <> ?", in.CommodityTicker, in.ExcludeOwnerUserID)
	if in.LocationID != "" {
		q = q.Where("location_id = ?", in.LocationID)
	}

	var requests []domain.BuyRequest
	if err := q.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}

	out := make([]EligibleBuyRequest, 0, len(requests))
	for i := range requests {
		stats, err := avail.BuyRequestStats(ctx, &requests[i])
		if err != nil {
			return nil, err
		}
		if stats.RemainingQuantity <= 0 {
			continue
		}
		price, err := s.Pricing.ResolveBuyRequest(ctx, &requests[i])
		if err != nil {
			return nil, err
		}
		out = append(out, EligibleBuyRequest{
			Request:            requests[i],
			ReservableQuantity: stats.RemainingQuantity,
			EffectivePrice:     price,
		})
	}
	return out, nil
}
