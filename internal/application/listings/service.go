package listings

import (
	"context"

	"exohub-backend/internal/application/availability"
	"exohub-backend/internal/application/catalog"
	"exohub-backend/internal/application/pricing"
	"exohub-backend/internal/constants"
	"exohub-backend/internal/domain"
	"exohub-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service owns sell listing and buy request CRUD plus the enriched read
// views the transport collaborators render.
type Service struct {
	DB      *gorm.DB
	Catalog *catalog.Service
	Pricing *pricing.Service
}

// SellListingView is a sell listing enriched with availability stats and the
// resolved display price.
type SellListingView struct {
	domain.SellListing
	availability.ListingStats
	EffectivePrice *pricing.Resolved `json:"effective_price"`
}

// BuyRequestView is a buy request enriched the same way.
type BuyRequestView struct {
	domain.BuyRequest
	availability.ListingStats
	EffectivePrice *pricing.Resolved `json:"effective_price"`
}

// CreateSellListingInput carries a new sell listing. ActorRole gates the
// partner order type.
type CreateSellListingInput struct {
	OwnerUserID     uuid.UUID
	ActorRole       string
	CommodityTicker string
	LocationID      string
	OrderType       string
	Currency        string
	Price           float64
	PriceListCode   *string
	LimitKind       string
	LimitQuantity   *int64
}

func (s *Service) validateRefs(ctx context.Context, ticker, locationID, currency string) error {
	if currency == "" {
		return apperr.Validation("Currency is required")
	}
	if _, err := s.Catalog.Commodity(ctx, ticker); err != nil {
		return err
	}
	if _, err := s.Catalog.Location(ctx, locationID); err != nil {
		return err
	}
	return nil
}

func (s *Service) validateOrderType(orderType, role string) error {
	switch orderType {
	case domain.OrderTypeInternal:
		return nil
	case domain.OrderTypePartner:
		if !constants.HasPermission(role, constants.CreatePartnerOrder) {
			return apperr.Forbidden("User is Forbidden from creating partner orders")
		}
		return nil
	default:
		return apperr.Validation("Unknown order type: " + orderType)
	}
}

// validatePricing checks the fixed/dynamic XOR and, for dynamic pricing,
// that the referenced price list exists.
func (s *Service) validatePricing(ctx context.Context, price float64, priceListCode *string) (domain.Pricing, error) {
	p, err := domain.NewPricing(price, priceListCode)
	if err != nil {
		return domain.Pricing{}, apperr.Validation(err.Error())
	}
	if p.Mode == domain.PricingDynamic {
		var list domain.PriceList
		if err := s.DB.WithContext(ctx).Where("list_code = ?", p.PriceListCode).First(&list).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.Pricing{}, apperr.Validation("Unknown price list: " + p.PriceListCode)
			}
			return domain.Pricing{}, err
		}
	}
	return p, nil
}

// CreateSellListing validates and inserts a sell listing. Uniqueness on
// (owner, commodity, location, order type, currency) is checked in the same
// transaction as the insert.
func (s *Service) CreateSellListing(ctx context.Context, in CreateSellListingInput) (*domain.SellListing, error) {
	if err := s.validateOrderType(in.OrderType, in.ActorRole); err != nil {
		return nil, err
	}
	if err := s.validateRefs(ctx, in.CommodityTicker, in.LocationID, in.Currency); err != nil {
		return nil, err
	}
	if _, err := s.validatePricing(ctx, in.Price, in.PriceListCode); err != nil {
		return nil, err
	}
	if _, err := domain.NewLimitPolicy(in.LimitKind, in.LimitQuantity); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	listing := &domain.SellListing{
		OwnerUserID:     in.OwnerUserID,
		CommodityTicker: in.CommodityTicker,
		LocationID:      in.LocationID,
		OrderType:       in.OrderType,
		Currency:        in.Currency,
		Price:           in.Price,
		PriceListCode:   in.PriceListCode,
		LimitKind:       in.LimitKind,
		LimitQuantity:   in.LimitQuantity,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.SellListing{}).
			Where("owner_user_id = ? AND commodity_ticker = ? AND location_id = ? AND order_type = ? AND currency = ?",
				in.OwnerUserID, in.CommodityTicker, in.LocationID, in.OrderType, in.Currency).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict("A sell listing for this commodity, location, order type and currency already exists")
		}
		return tx.Create(listing).Error
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// UpdateSellListingInput carries owner edits. Nil fields are left unchanged,
// except the pricing pair which is validated as a whole when either is set.
type UpdateSellListingInput struct {
	ListingID     uuid.UUID
	OwnerUserID   uuid.UUID
	Price         *float64
	PriceListCode *string
	ClearPriceList bool
	LimitKind     *string
	LimitQuantity *int64
}

// UpdateSellListing applies owner edits, revalidating the pricing XOR and the
// limit policy against the final field values.
func (s *Service) UpdateSellListing(ctx context.Context, in UpdateSellListingInput) (*domain.SellListing, error) {
	var listing domain.SellListing
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", in.ListingID).First(&listing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("Sell listing not found")
			}
			return err
		}
		if listing.OwnerUserID != in.OwnerUserID {
			return apperr.Forbidden("Only the listing owner can edit it")
		}

		if in.Price != nil {
			listing.Price = *in.Price
		}
		if in.ClearPriceList {
			listing.PriceListCode = nil
		} else if in.PriceListCode != nil {
			listing.PriceListCode = in.PriceListCode
		}
		if in.LimitKind != nil {
			listing.LimitKind = *in.LimitKind
		}
		if in.LimitQuantity != nil {
			listing.LimitQuantity = in.LimitQuantity
		}

		if _, err := s.validatePricing(ctx, listing.Price, listing.PriceListCode); err != nil {
			return err
		}
		if _, err := domain.NewLimitPolicy(listing.LimitKind, listing.LimitQuantity); err != nil {
			return apperr.Validation(err.Error())
		}
		return tx.Save(&listing).Error
	})
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// DeleteSellListing soft-deletes an owner's listing.
func (s *Service) DeleteSellListing(ctx context.Context, listingID, ownerUserID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var listing domain.SellListing
		if err := tx.Where("listing_id = ?", listingID).First(&listing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("Sell listing not found")
			}
			return err
		}
		if listing.OwnerUserID != ownerUserID {
			return apperr.Forbidden("Only the listing owner can delete it")
		}
		return tx.Delete(&listing).Error
	})
}

// GetSellListing returns the enriched view for one listing.
func (s *Service) GetSellListing(ctx context.Context, listingID uuid.UUID) (*SellListingView, error) {
	var listing domain.SellListing
	if err := s.DB.WithContext(ctx).Where("listing_id = ?", listingID).First(&listing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Sell listing not found")
		}
		return nil, err
	}
	return s.sellView(ctx, &listing)
}

// ListSellListingsForOwner returns enriched views of the owner's listings.
func (s *Service) ListSellListingsForOwner(ctx context.Context, ownerUserID uuid.UUID) ([]SellListingView, error) {
	var rows []domain.SellListing
	if err := s.DB.WithContext(ctx).Where("owner_user_id = ?", ownerUserID).
		Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]SellListingView, 0, len(rows))
	for i := range rows {
		v, err := s.sellView(ctx, &rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func (s *Service) sellView(ctx context.Context, listing *domain.SellListing) (*SellListingView, error) {
	avail := &availability.Service{DB: s.DB}
	stats, err := avail.SellListingStats(ctx, listing)
	if err != nil {
		return nil, err
	}
	price, err := s.Pricing.ResolveSellListing(ctx, listing)
	if err != nil {
		return nil, err
	}
	return &SellListingView{SellListing: *listing, ListingStats: stats, EffectivePrice: price}, nil
}
