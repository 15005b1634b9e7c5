package catalog

import (
	"context"

	"exohub-backend/internal/domain"
	"exohub-backend/internal/pkg/apperr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service resolves commodities and locations by their natural ids, with a
// read-through Redis cache in front of the store.
type Service struct {
	DB    *gorm.DB
	Cache *Cache
}

// Commodity returns the commodity for ticker, cache first.
func (s *Service) Commodity(ctx context.Context, ticker string) (*domain.Commodity, error) {
	var cached domain.Commodity
	if s.Cache.get(ctx, commodityKeyPrefix+ticker, &cached) {
		return &cached, nil
	}

	var c domain.Commodity
	if err := s.DB.WithContext(ctx).Where("ticker = ?", ticker).First(&c).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.Validation("Unknown commodity ticker: " + ticker)
		}
		return nil, err
	}
	s.Cache.set(ctx, commodityKeyPrefix+ticker, &c)
	return &c, nil
}

// Location returns the location for locationID, cache first.
func (s *Service) Location(ctx context.Context, locationID string) (*domain.Location, error) {
	var cached domain.Location
	if s.Cache.get(ctx, locationKeyPrefix+locationID, &cached) {
		return &cached, nil
	}

	var l domain.Location
	if err := s.DB.WithContext(ctx).Where("location_id = ?", locationID).First(&l).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.Validation("Unknown location: " + locationID)
		}
		return nil, err
	}
	s.Cache.set(ctx, locationKeyPrefix+locationID, &l)
	return &l, nil
}

// UpsertCommodity writes a commodity row and invalidates its cache entry.
func (s *Service) UpsertCommodity(ctx context.Context, c *domain.Commodity) error {
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ticker"}},
		UpdateAll: true,
	}).Create(c).Error
	if err != nil {
		return err
	}
	s.Cache.InvalidateCommodity(ctx, c.Ticker)
	return nil
}

// UpsertLocation writes a location row and invalidates its cache entry.
func (s *Service) UpsertLocation(ctx context.Context, l *domain.Location) error {
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "location_id"}},
		UpdateAll: true,
	}).Create(l).Error
	if err != nil {
		return err
	}
	s.Cache.InvalidateLocation(ctx, l.LocationID)
	return nil
}
