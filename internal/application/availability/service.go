package availability

import (
	"context"
	"time"

	"exohub-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service answers quantity questions for listings from synced inventory and
// reservation state. All queries run against the caller's transaction when a
// tx handle is passed as DB.
type Service struct {
	DB *gorm.DB
}

// activeStatuses are reservation states that still hold quantity.
var activeStatuses = []domain.ReservationStatus{domain.ReservationPending, domain.ReservationConfirmed}

// ListingStats is the quantity breakdown exposed on enriched listing views.
type ListingStats struct {
	SyncedQuantity         int64 `json:"synced_quantity"`
	AvailableQuantity      int64 `json:"available_quantity"`
	ActiveReservationCount int64 `json:"active_reservation_count"`
	ReservedQuantity       int64 `json:"reserved_quantity"`
	FulfilledQuantity      int64 `json:"fulfilled_quantity"`
	RemainingQuantity      int64 `json:"remaining_quantity"`
}

// SyncedQuantity sums the owner's snapshot rows for the listing's commodity
// at its location (one row per storage container).
func (s *Service) SyncedQuantity(ctx context.Context, userID uuid.UUID, ticker, locationID string) (int64, error) {
	var total int64
	err := s.DB.WithContext(ctx).Model(&domain.InventorySnapshot{}).
		Where("user_id = ? AND commodity_ticker = ? AND location_id = ?", userID, ticker, locationID).
		Select("COALESCE(SUM(quantity), 0)").Scan(&total).Error
	return total, err
}

// LastSyncedAt returns the location's effective sync time for a user: the max
// last_synced_at across the location's snapshot rows. ok is false when the
// location has never been synced.
func (s *Service) LastSyncedAt(ctx context.Context, userID uuid.UUID, locationID string) (time.Time, bool, error) {
	var row domain.InventorySnapshot
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND location_id = ?", userID, locationID).
		Order("last_synced_at DESC").
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return row.LastSyncedAt, true, nil
}

// ActiveReservedQuantity sums pending+confirmed reservation quantities
// against the target.
func (s *Service) ActiveReservedQuantity(ctx context.Context, target domain.TargetRef) (int64, error) {
	var total int64
	err := s.targetScope(ctx, target).
		Where("status IN ?", activeStatuses).
		Select("COALESCE(SUM(quantity), 0)").Scan(&total).Error
	return total, err
}

// ActiveReservationCount counts pending+confirmed reservations against the target.
func (s *Service) ActiveReservationCount(ctx context.Context, target domain.TargetRef) (int64, error) {
	var count int64
	err := s.targetScope(ctx, target).
		Where("status IN ?", activeStatuses).
		Count(&count).Error
	return count, err
}

// CountedFulfilledQuantity applies the sync reconciliation rule: how much of
// the listing's fulfilled volume must still be subtracted from the synced
// quantity.
//
// MaxSell listings are not FIO-backed, so every fulfilled reservation counts.
// For none/reserve listings a fulfilled trade whose updated_at predates the
// location's last sync is assumed already reflected in the synced quantity;
// only later ones count. No sync timestamp means nothing has been subtracted
// yet, so all count.
func (s *Service) CountedFulfilledQuantity(ctx context.Context, listing *domain.SellListing) (int64, error) {
	scope := s.targetScope(ctx, domain.TargetRef{Kind: domain.TargetSell, ID: listing.ListingID}).
		Where("status = ?", domain.ReservationFulfilled)

	if listing.LimitPolicy().Kind != domain.LimitMaxSell {
		lastSync, ok, err := s.LastSyncedAt(ctx, listing.OwnerUserID, listing.LocationID)
		if err != nil {
			return 0, err
		}
		if ok {
			scope = scope.Where("updated_at > ?", lastSync)
		}
	}

	var total int64
	err := scope.Select("COALESCE(SUM(quantity), 0)").Scan(&total).Error
	return total, err
}

// FulfilledQuantity sums all fulfilled reservations against a target with no
// sync reconciliation (buy requests are not FIO-backed).
func (s *Service) FulfilledQuantity(ctx context.Context, target domain.TargetRef) (int64, error) {
	var total int64
	err := s.targetScope(ctx, target).
		Where("status = ?", domain.ReservationFulfilled).
		Select("COALESCE(SUM(quantity), 0)").Scan(&total).Error
	return total, err
}

// SellListingStats computes the full quantity breakdown for a sell listing.
func (s *Service) SellListingStats(ctx context.Context, listing *domain.SellListing) (ListingStats, error) {
	target := domain.TargetRef{Kind: domain.TargetSell, ID: listing.ListingID}

	synced, err := s.SyncedQuantity(ctx, listing.OwnerUserID, listing.CommodityTicker, listing.LocationID)
	if err != nil {
		return ListingStats{}, err
	}
	reserved, err := s.ActiveReservedQuantity(ctx, target)
	if err != nil {
		return ListingStats{}, err
	}
	count, err := s.ActiveReservationCount(ctx, target)
	if err != nil {
		return ListingStats{}, err
	}
	fulfilled, err := s.CountedFulfilledQuantity(ctx, listing)
	if err != nil {
		return ListingStats{}, err
	}

	available := AvailableQuantity(synced, listing.LimitPolicy())
	return ListingStats{
		SyncedQuantity:         synced,
		AvailableQuantity:      available,
		ActiveReservationCount: count,
		ReservedQuantity:       reserved,
		FulfilledQuantity:      fulfilled,
		RemainingQuantity:      RemainingQuantity(available, reserved, fulfilled),
	}, nil
}

// BuyRequestStats computes the quantity breakdown for a buy request: the
// reservable amount is requested - active - fulfilled, floored at zero.
func (s *Service) BuyRequestStats(ctx context.Context, request *domain.BuyRequest) (ListingStats, error) {
	target := domain.TargetRef{Kind: domain.TargetBuy, ID: request.RequestID}

	reserved, err := s.ActiveReservedQuantity(ctx, target)
	if err != nil {
		return ListingStats{}, err
	}
	count, err := s.ActiveReservationCount(ctx, target)
	if err != nil {
		return ListingStats{}, err
	}
	fulfilled, err := s.FulfilledQuantity(ctx, target)
	if err != nil {
		return ListingStats{}, err
	}

	return ListingStats{
		AvailableQuantity:      request.Quantity,
		ActiveReservationCount: count,
		ReservedQuantity:       reserved,
		FulfilledQuantity:      fulfilled,
		RemainingQuantity:      RemainingQuantity(request.Quantity, reserved, fulfilled),
	}, nil
}

func (s *Service) targetScope(ctx context.Context, target domain.TargetRef) *gorm.DB {
	q := s.DB.WithContext(ctx).Model(&domain.Reservation{})
	if target.Kind == domain.TargetSell {
		return q.Where("sell_listing_id = ?", target.ID)
	}
	return q.Where("buy_request_id = ?", target.ID)
}
