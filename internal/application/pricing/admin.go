package pricing

import (
	"context"

	"exohub-backend/internal/domain"
	"exohub-backend/internal/pkg/apperr"

	"gorm.io/gorm/clause"
)

// UpsertPriceList creates or replaces a price list definition.
func (s *Service) UpsertPriceList(ctx context.Context, list *domain.PriceList) error {
	if list.ListCode == "" {
		return apperr.Validation("Price list code is required")
	}
	if list.Currency == "" {
		return apperr.Validation("Price list currency is required")
	}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "list_code"}},
		UpdateAll: true,
	}).Create(list).Error
}

// CreateAdjustment inserts a price adjustment row.
func (s *Service) CreateAdjustment(ctx context.Context, adj *domain.PriceAdjustment) error {
	switch adj.AdjustmentType {
	case domain.AdjustmentFixed, domain.AdjustmentPercent:
	default:
		return apperr.Validation("Unknown adjustment type: " + adj.AdjustmentType)
	}
	if adj.AdjustmentType == domain.AdjustmentFixed && adj.AdjustmentValue <= 0 {
		return apperr.Validation("Fixed adjustment value must be greater than zero")
	}
	return s.DB.WithContext(ctx).Create(adj).Error
}

// DeactivateAdjustment flips is_active off; adjustments are never deleted so
// historical resolutions stay explainable.
func (s *Service) DeactivateAdjustment(ctx context.Context, id uint) error {
	update := s.DB.WithContext(ctx).Model(&domain.PriceAdjustment{}).
		Where("id = ?", id).Update("is_active", false)
	if update.Error != nil {
		return update.Error
	}
	if update.RowsAffected == 0 {
		return apperr.NotFound("Price adjustment not found")
	}
	return nil
}

// ListAdjustments returns adjustments for a price list in precedence order.
func (s *Service) ListAdjustments(ctx context.Context, listCode string) ([]domain.PriceAdjustment, error) {
	var rows []domain.PriceAdjustment
	err := s.DB.WithContext(ctx).
		Where("price_list_code = ?", listCode).
		Order("priority ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
