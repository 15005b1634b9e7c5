package reservations

import (
	"context"
	"testing"
	"time"

	"exohub-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedReservation(t *testing.T, db *gorm.DB, listingID uuid.UUID, status domain.ReservationStatus, expiresAt time.Time) *domain.Reservation {
	id := listingID
	r := &domain.Reservation{
		SellListingID:      &id,
		CounterpartyUserID: uuid.New(),
		Quantity:           10,
		Status:             status,
		ExpiresAt:          expiresAt,
	}
	require.NoError(t, db.Create(r).Error)
	return r
}

func TestExpireStale(t *testing.T) {
	svc, db := setupReservationsTest(t)
	listing := seedSellListing(t, db, uuid.New(), 500)

	stale := seedReservation(t, db, listing.ListingID, domain.ReservationPending, testNow.Add(-time.Hour))
	fresh := seedReservation(t, db, listing.ListingID, domain.ReservationPending, testNow.Add(time.Hour))
	confirmed := seedReservation(t, db, listing.ListingID, domain.ReservationConfirmed, testNow.Add(-time.Hour))

	n, err := svc.ExpireStale(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var r domain.Reservation
	require.NoError(t, db.Where("reservation_id = ?", stale.ReservationID).First(&r).Error)
	assert.Equal(t, domain.ReservationExpired, r.Status)

	r = domain.Reservation{}
	require.NoError(t, db.Where("reservation_id = ?", fresh.ReservationID).First(&r).Error)
	assert.Equal(t, domain.ReservationPending, r.Status)

	// Confirmed reservations never expire, however old.
	r = domain.Reservation{}
	require.NoError(t, db.Where("reservation_id = ?", confirmed.ReservationID).First(&r).Error)
	assert.Equal(t, domain.ReservationConfirmed, r.Status)

	var events []domain.ReservationEvent
	require.NoError(t, db.Where("reservation_id = ?", stale.ReservationID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, domain.ReservationEventExpired, events[0].EventType)
	assert.Nil(t, events[0].ActorUserID)

	// Idempotent: a second sweep finds nothing.
	n, err = svc.ExpireStale(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
