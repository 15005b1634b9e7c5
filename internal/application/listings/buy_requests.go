package listings

import (
	"context"

	"exohub-backend/internal/application/availability"
	"exohub-backend/internal/domain"
	"exohub-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateBuyRequestInput carries a new buy request.
type CreateBuyRequestInput struct {
	OwnerUserID     uuid.UUID
	ActorRole       string
	CommodityTicker string
	LocationID      string
	OrderType       string
	Currency        string
	Price           float64
	PriceListCode   *string
	Quantity        int64
}

// CreateBuyRequest validates and inserts a buy request.
func (s *Service) CreateBuyRequest(ctx context.Context, in CreateBuyRequestInput) (*domain.BuyRequest, error) {
	if err := s.validateOrderType(in.OrderType, in.ActorRole); err != nil {
		return nil, err
	}
	if err := s.validateRefs(ctx, in.CommodityTicker, in.LocationID, in.Currency); err != nil {
		return nil, err
	}
	if _, err := s.validatePricing(ctx, in.Price, in.PriceListCode); err != nil {
		return nil, err
	}
	if in.Quantity <= 0 {
		return nil, apperr.Validation("Requested quantity must be greater than zero")
	}

	request := &domain.BuyRequest{
		OwnerUserID:     in.OwnerUserID,
		CommodityTicker: in.CommodityTicker,
		LocationID:      in.LocationID,
		OrderType:       in.OrderType,
		Currency:        in.Currency,
		Price:           in.Price,
		PriceListCode:   in.PriceListCode,
		Quantity:        in.Quantity,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.BuyRequest{}).
			Where("owner_user_id = ? AND commodity_ticker = ? AND location_id = ? AND order_type = ? AND currency = ?",
				in.OwnerUserID, in.CommodityTicker, in.LocationID, in.OrderType, in.Currency).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict("A buy request for this commodity, location, order type and currency already exists")
		}
		return tx.Create(request).Error
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// UpdateBuyRequestInput carries owner edits to a buy request.
type UpdateBuyRequestInput struct {
	RequestID      uuid.UUID
	OwnerUserID    uuid.UUID
	Price          *float64
	PriceListCode  *string
	ClearPriceList bool
	Quantity       *int64
}

// UpdateBuyRequest applies owner edits, revalidating pricing and quantity.
func (s *Service) UpdateBuyRequest(ctx context.Context, in UpdateBuyRequestInput) (*domain.BuyRequest, error) {
	var request domain.BuyRequest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("request_id = ?", in.RequestID).First(&request).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("Buy request not found")
			}
			return err
		}
		if request.OwnerUserID != in.OwnerUserID {
			return apperr.Forbidden("Only the request owner can edit it")
		}

		if in.Price != nil {
			request.Price = *in.Price
		}
		if in.ClearPriceList {
			request.PriceListCode = nil
		} else if in.PriceListCode != nil {
			request.PriceListCode = in.PriceListCode
		}
		if in.Quantity != nil {
			request.Quantity = *in.Quantity
		}

		if _, err := s.validatePricing(ctx, request.Price, request.PriceListCode); err != nil {
			return err
		}
		if request.Quantity <= 0 {
			return apperr.Validation("Requested quantity must be greater than zero")
		}
		return tx.Save(&request).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// DeleteBuyRequest soft-deletes an owner's buy request.
func (s *Service) DeleteBuyRequest(ctx context.Context, requestID, ownerUserID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request domain.BuyRequest
		if err := tx.Where("request_id = ?", requestID).First(&request).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("Buy request not found")
			}
			return err
		}
		if request.OwnerUserID != ownerUserID {
			return apperr.Forbidden("Only the request owner can delete it")
		}
		return tx.Delete(&request).Error
	})
}

// GetBuyRequest returns the enriched view for one request.
func (s *Service) GetBuyRequest(ctx context.Context, requestID uuid.UUID) (*BuyRequestView, error) {
	var request domain.BuyRequest
	if err := s.DB.WithContext(ctx).Where("request_id = ?", requestID).First(&request).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Buy request not found")
		}
		return nil, err
	}
	return s.buyView(ctx, &request)
}

// ListBuyRequestsForOwner returns enriched views of the owner's requests.
func (s *Service) ListBuyRequestsForOwner(ctx context.Context, ownerUserID uuid.UUID) ([]BuyRequestView, error) {
	var rows []domain.BuyRequest
	if err := s.DB.WithContext(ctx).Where("owner_user_id = ?", ownerUserID).
		Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]BuyRequestView, 0, len(rows))
	for i := range rows {
		v, err := s.buyView(ctx, &rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func (s *Service) buyView(ctx context.Context, request *domain.BuyRequest) (*BuyRequestView, error) {
	avail := &availability.Service{DB: s.DB}
	stats, err := avail.BuyRequestStats(ctx, request)
	if err != nil {
		return nil, err
	}
	price, err := s.Pricing.ResolveBuyRequest(ctx, request)
	if err != nil {
		return nil, err
	}
	return &BuyRequestView{BuyRequest: *request, ListingStats: stats, EffectivePrice: price}, nil
}
