package pricing

import (
	"context"
	"sort"
	"time"

	"exohub-backend/internal/domain"

	"gorm.io/gorm"
)

// Service resolves a listing's displayable price from its pricing config.
type Service struct {
	DB *gorm.DB
	// Now is injectable for effective-window tests; defaults to time.Now.
	Now func() time.Time
}

// Resolved is the outcome of a successful price resolution. A nil *Resolved
// means "price unavailable".
type Resolved struct {
	Price           float64 `json:"price"`
	Currency        string  `json:"currency"`
	IsFallback      bool    `json:"is_fallback"`
	PriceLocationID string  `json:"price_location_id"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ResolveSellListing resolves the display price for a sell listing.
func (s *Service) ResolveSellListing(ctx context.Context, listing *domain.SellListing) (*Resolved, error) {
	return s.Resolve(ctx, listing.Pricing(), listing.CommodityTicker, listing.LocationID, listing.Currency)
}

// ResolveBuyRequest resolves the display price for a buy request.
func (s *Service) ResolveBuyRequest(ctx context.Context, request *domain.BuyRequest) (*Resolved, error) {
	return s.Resolve(ctx, request.Pricing(), request.CommodityTicker, request.LocationID, request.Currency)
}

// Resolve turns a pricing config into a single displayable price. Fixed
// pricing passes through unchanged. Dynamic pricing selects the single
// highest-precedence active adjustment for the exact location, falling back
// to the price list's configured fallback location (IsFallback=true) and
// finally to nil ("price unavailable").
func (s *Service) Resolve(ctx context.Context, p domain.Pricing, ticker, locationID, currency string) (*Resolved, error) {
	if p.Mode == domain.PricingFixed {
		return &Resolved{
			Price:           p.Price,
			Currency:        currency,
			IsFallback:      false,
			PriceLocationID: locationID,
		}, nil
	}

	var list domain.PriceList
	if err := s.DB.WithContext(ctx).Where("list_code = ?", p.PriceListCode).First(&list).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	candidates, err := s.candidates(ctx, p.PriceListCode, ticker, currency)
	if err != nil {
		return nil, err
	}

	if adj := bestMatch(candidates, locationID); adj != nil {
		price, ok := s.applyAdjustment(adj, candidates)
		if !ok {
			return nil, nil
		}
		return &Resolved{Price: price, Currency: list.Currency, PriceLocationID: locationID}, nil
	}

	if list.FallbackLocationID != nil && *list.FallbackLocationID != locationID {
		if adj := bestMatch(candidates, *list.FallbackLocationID); adj != nil {
			price, ok := s.applyAdjustment(adj, candidates)
			if !ok {
				return nil, nil
			}
			return &Resolved{
				Price:           price,
				Currency:        list.Currency,
				IsFallback:      true,
				PriceLocationID: *list.FallbackLocationID,
			}, nil
		}
	}

	return nil, nil
}

// candidates loads active, in-window adjustments whose list, commodity and
// currency scopes match (nil scope fields are wildcards). Location matching
// happens per lookup in bestMatch.
func (s *Service) candidates(ctx context.Context, listCode, ticker, currency string) ([]domain.PriceAdjustment, error) {
	var rows []domain.PriceAdjustment
	err := s.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Where("(price_list_code IS NULL OR price_list_code = ?)", listCode).
		Where("(commodity_ticker IS NULL OR commodity_ticker = ?)", ticker).
		Where("(currency IS NULL OR currency = ?)", currency).
		Order("priority ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	now := s.now()
	inWindow := rows[:0]
	for i := range rows {
		if rows[i].InWindow(now) {
			inWindow = append(inWindow, rows[i])
		}
	}
	return inWindow, nil
}

// bestMatch picks the single highest-precedence adjustment applicable to
// locationID: ordered by priority, then exact-location rows before
// wildcard-location rows, then id. Returns nil when none applies.
func bestMatch(candidates []domain.PriceAdjustment, locationID string) *domain.PriceAdjustment {
	var matches []domain.PriceAdjustment
	for _, a := range candidates {
		if a.LocationID == nil || *a.LocationID == locationID {
			matches = append(matches, a)
		}
	}
	if len(matches) == 0 {
		return nil
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Priority != matches[j].Priority {
			return matches[i].Priority < matches[j].Priority
		}
		iExact := matches[i].LocationID != nil
		jExact := matches[j].LocationID != nil
		if iExact != jExact {
			return iExact
		}
		return matches[i].ID < matches[j].ID
	})
	return &matches[0]
}

// applyAdjustment computes the price from the selected adjustment. A fixed
// adjustment is itself the price. A percent adjustment scales the best
// wildcard-location fixed adjustment of the same candidate set (the list's
// base price for the commodity); without such a base the price is
// unresolvable.
func (s *Service) applyAdjustment(adj *domain.PriceAdjustment, candidates []domain.PriceAdjustment) (float64, bool) {
	switch adj.AdjustmentType {
	case domain.AdjustmentFixed:
		return adj.AdjustmentValue, true
	case domain.AdjustmentPercent:
		for _, a := range candidates {
			if a.ID == adj.ID {
				continue
			}
			if a.LocationID == nil && a.AdjustmentType == domain.AdjustmentFixed {
				return a.AdjustmentValue * adj.AdjustmentValue / 100, true
			}
		}
		return 0, false
	default:
		return 0, false
	}
}
