package reservations

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"exohub-backend/internal/application/availability"
	"exohub-backend/internal/application/pricing"
	"exohub-backend/internal/domain"
	"exohub-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service owns the reservation lifecycle: creation, eligibility listing and
// authorized status transitions.
type Service struct {
	DB      *gorm.DB
	Pricing *pricing.Service
	// Now is injectable for expiry tests; defaults to time.Now.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// CreateReservationInput carries a counterparty's offer against a listing.
type CreateReservationInput struct {
	Target             domain.TargetRef
	CounterpartyUserID uuid.UUID
	Quantity           int64
	Notes              string
}

// Create inserts a pending reservation expiring in 72h. The whole check
// (target exists, counterparty is not the owner, quantity fits the remaining
// quantity) runs inside one transaction so two concurrent offers cannot both
// pass the remaining-quantity check against stale reads.
func (s *Service) Create(ctx context.Context, in CreateReservationInput) (*domain.Reservation, error) {
	if in.Quantity <= 0 {
		return nil, apperr.Validation("Reservation quantity must be greater than zero")
	}

	var reservation *domain.Reservation
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		avail := &availability.Service{DB: tx}

		var ownerID uuid.UUID
		var remaining int64
		switch in.Target.Kind {
		case domain.TargetSell:
			var listing domain.SellListing
			if err := tx.Where("listing_id = ?", in.Target.ID).First(&listing).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return apperr.NotFound("Sell listing not found")
				}
				return err
			}
			stats, err := avail.SellListingStats(ctx, &listing)
			if err != nil {
				return err
			}
			ownerID = listing.OwnerUserID
			remaining = stats.RemainingQuantity
		case domain.TargetBuy:
			var request domain.BuyRequest
			if err := tx.Where("request_id = ?", in.Target.ID).First(&request).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return apperr.NotFound("Buy request not found")
				}
				return err
			}
			stats, err := avail.BuyRequestStats(ctx, &request)
			if err != nil {
				return err
			}
			ownerID = request.OwnerUserID
			remaining = stats.RemainingQuantity
		default:
			return domain.ErrTargetRefAmbiguous
		}

		if ownerID == in.CounterpartyUserID {
			return apperr.Forbidden("Cannot reserve against your own listing")
		}
		if in.Quantity > remaining {
			return apperr.Conflict(fmt.Sprintf("Requested quantity %d exceeds remaining quantity %d", in.Quantity, remaining))
		}

		r := &domain.Reservation{
			CounterpartyUserID: in.CounterpartyUserID,
			Quantity:           in.Quantity,
			Status:             domain.ReservationPending,
			Notes:              in.Notes,
			ExpiresAt:          s.now().Add(domain.ReservationTTL),
		}
		if in.Target.Kind == domain.TargetSell {
			id := in.Target.ID
			r.SellListingID = &id
		} else {
			id := in.Target.ID
			r.BuyRequestID = &id
		}
		if err := tx.Create(r).Error; err != nil {
			return err
		}

		eventDataBytes, _ := json.Marshal(map[string]interface{}{
			"quantity":   r.Quantity,
			"expires_at": r.ExpiresAt,
		})
		if err := tx.Create(&domain.ReservationEvent{
			ReservationID: r.ReservationID,
			EventType:     domain.ReservationEventCreated,
			ActorUserID:   &in.CounterpartyUserID,
			EventData:     datatypes.JSON(eventDataBytes),
		}).Error; err != nil {
			return err
		}
		reservation = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

// TransitionResult is the structured outcome of UpdateStatus. This call is
// shared across presentation layers that render failures differently, so it
// reports them as data instead of an error.
type TransitionResult struct {
	Success     bool                `json:"success"`
	Error       string              `json:"error,omitempty"`
	Reservation *domain.Reservation `json:"reservation,omitempty"`
}

func failure(format string, args ...interface{}) TransitionResult {
	return TransitionResult{Success: false, Error: fmt.Sprintf(format, args...)}
}

// UpdateStatus moves a reservation to newStatus when the transition table
// allows it for the acting user's role. The current status doubles as an
// optimistic version: the UPDATE is guarded on it, so two concurrent
// transitions cannot both commit from the same state.
func (s *Service) UpdateStatus(ctx context.Context, reservationID, actingUserID uuid.UUID, newStatus domain.ReservationStatus) (TransitionResult, error) {
	if !domain.ValidReservationStatus(newStatus) {
		return failure("Unknown reservation status %q", newStatus), nil
	}

	var result TransitionResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r domain.Reservation
		if err := tx.Where("reservation_id = ?", reservationID).First(&r).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				result = failure("Reservation not found")
				return nil
			}
			return err
		}

		ownerID, err := s.resolveOwner(tx, &r)
		if err != nil {
			return err
		}

		var role ActorRole
		switch actingUserID {
		case ownerID:
			role = RoleOwner
		case r.CounterpartyUserID:
			role = RoleCounterparty
		default:
			result = failure("User is not a party to this reservation")
			return nil
		}

		if !CanTransition(r.Status, newStatus, role) {
			result = failure("Cannot transition reservation from %q to %q", r.Status, newStatus)
			return nil
		}

		update := tx.Model(&domain.Reservation{}).
			Where("reservation_id = ? AND status = ?", r.ReservationID, r.Status).
			Updates(map[string]interface{}{"status": newStatus, "updated_at": s.now()})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			result = failure("Reservation status changed concurrently; retry")
			return nil
		}

		eventDataBytes, _ := json.Marshal(map[string]interface{}{
			"from": r.Status,
			"to":   newStatus,
			"role": role,
		})
		if err := tx.Create(&domain.ReservationEvent{
			ReservationID: r.ReservationID,
			EventType:     domain.ReservationEventStatusChanged,
			ActorUserID:   &actingUserID,
			EventData:     datatypes.JSON(eventDataBytes),
		}).Error; err != nil {
			return err
		}

		if err := tx.Where("reservation_id = ?", r.ReservationID).First(&r).Error; err != nil {
			return err
		}
		result = TransitionResult{Success: true, Reservation: &r}
		return nil
	})
	if err != nil {
		return TransitionResult{}, err
	}
	return result, nil
}

// resolveOwner loads the referenced listing to determine its owner. A missing
// listing is a caller bug, surfaced as an error rather than a result.
func (s *Service) resolveOwner(tx *gorm.DB, r *domain.Reservation) (uuid.UUID, error) {
	target, err := r.Target()
	if err != nil {
		return uuid.Nil, err
	}
	if target.Kind == domain.TargetSell {
		var listing domain.SellListing
		if err := tx.Where("listing_id = ?", target.ID).First(&listing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return uuid.Nil, apperr.NotFound("Sell listing for reservation not found")
			}
			return uuid.Nil, err
		}
		return listing.OwnerUserID, nil
	}
	var request domain.BuyRequest
	if err := tx.Where("request_id = ?", target.ID).First(&request).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return uuid.Nil, apperr.NotFound("Buy request for reservation not found")
		}
		return uuid.Nil, err
	}
	return request.OwnerUserID, nil
}

// ListEvents returns the audit trail of a reservation, oldest first. Only
// the two parties to the reservation may read it.
func (s *Service) ListEvents(ctx context.Context, reservationID, userID uuid.UUID) ([]domain.ReservationEvent, error) {
	var r domain.Reservation
	if err := s.DB.WithContext(ctx).Where("reservation_id = ?", reservationID).First(&r).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Reservation not found")
		}
		return nil, err
	}
	ownerID, err := s.resolveOwner(s.DB.WithContext(ctx), &r)
	if err != nil {
		return nil, err
	}
	if userID != ownerID && userID != r.CounterpartyUserID {
		return nil, apperr.Forbidden("User is not a party to this reservation")
	}

	var events []domain.ReservationEvent
	if err := s.DB.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("created_at ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// ListForUser returns reservations where the user is either counterparty or
// owner of the referenced listing, newest first, optionally filtered by status.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, statuses []domain.ReservationStatus) ([]domain.Reservation, error) {
	sellOwned := s.DB.Model(&domain.SellListing{}).Select("listing_id").Where("owner_user_id = ?", userID)
	buyOwned := s.DB.Model(&domain.BuyRequest{}).Select("request_id").Where("owner_user_id = ?", userID)

	q := s.DB.WithContext(ctx).
		Where("counterparty_user_id = ? OR sell_listing_id IN (?) OR buy_request_id IN (?)", userID, sellOwned, buyOwned)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}

	var out []domain.Reservation
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
