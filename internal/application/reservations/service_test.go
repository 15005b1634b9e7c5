package reservations

import (
	"context"
	"testing"
	"time"

	"exohub-backend/internal/application/pricing"
	"exohub-backend/internal/domain"
	"exohub-backend/internal/pkg/apperr"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func setupReservationsTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.SellListing{}, &domain.BuyRequest{}, &domain.Reservation{},
		&domain.ReservationEvent{}, &domain.InventorySnapshot{},
		&domain.PriceList{}, &domain.PriceAdjustment{},
	))
	svc := &Service{
		DB:      db,
		Pricing: &pricing.Service{DB: db, Now: func() time.Time { return testNow }},
		Now:     func() time.Time { return testNow },
	}
	return svc, db
}

func seedSellListing(t *testing.T, db *gorm.DB, owner uuid.UUID, synced int64) *domain.SellListing {
	listing := &domain.SellListing{
		OwnerUserID:     owner,
		CommodityTicker: "RAT",
		LocationID:      "UV-351a",
		OrderType:       domain.OrderTypeInternal,
		Currency:        "AIC",
		Price:           42,
		LimitKind:       string(domain.LimitNone),
	}
	require.NoError(t, db.Create(listing).Error)
	if synced > 0 {
		require.NoError(t, db.Create(&domain.InventorySnapshot{
			UserID:          owner,
			CommodityTicker: "RAT",
			LocationID:      "UV-351a",
			StoreID:         "store-1",
			Quantity:        synced,
			LastSyncedAt:    testNow,
		}).Error)
	}
	return listing
}

func sellTarget(listing *domain.SellListing) domain.TargetRef {
	return domain.TargetRef{Kind: domain.TargetSell, ID: listing.ListingID}
}

func TestCreate_RejectsNonPositiveQuantity(t *testing.T) {
	svc, _ := setupReservationsTest(t)
	_, err := svc.Create(context.Background(), CreateReservationInput{
		Target:             domain.TargetRef{Kind: domain.TargetSell, ID: uuid.New()},
		CounterpartyUserID: uuid.New(),
		Quantity:           0,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCreate_MissingTarget(t *testing.T) {
	svc, _ := setupReservationsTest(t)
	_, err := svc.Create(context.Background(), CreateReservationInput{
		Target:             domain.TargetRef{Kind: domain.TargetSell, ID: uuid.New()},
		CounterpartyUserID: uuid.New(),
		Quantity:           10,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCreate_OwnerCannotReserveOwnListing(t *testing.T) {
	svc, db := setupReservationsTest(t)
	owner := uuid.New()
	listing := seedSellListing(t, db, owner, 500)

	_, err := svc.Create(context.Background(), CreateReservationInput{
		Target:             sellTarget(listing),
		CounterpartyUserID: owner,
		Quantity:           10,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestCreate_QuantityExceedsRemaining(t *testing.T) {
	svc, db := setupReservationsTest(t)
	listing := seedSellListing(t, db, uuid.New(), 100)

	_, err := svc.Create(context.Background(), CreateReservationInput{
		Target:             sellTarget(listing),
		CounterpartyUserID: uuid.New(),
		Quantity:           101,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "exceeds remaining quantity 100")
}

func TestCreate_PendingWithTTLAndEvent(t *testing.T) {
	svc, db := setupReservationsTest(t)
	listing := seedSellListing(t, db, uuid.New(), 500)
	counterparty := uuid.New()

	r, err := svc.Create(context.Background(), CreateReservationInput{
		Target:             sellTarget(listing),
		CounterpartyUserID: counterparty,
		Quantity:           200,
		Notes:              "pickup friday",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationPending, r.Status)
	assert.True(t, r.ExpiresAt.Equal(testNow.Add(domain.ReservationTTL)))
	require.NotNil(t, r.SellListingID)
	assert.Equal(t, listing.ListingID, *r.SellListingID)

	var events []domain.ReservationEvent
	require.NoError(t, db.Where("reservation_id = ?", r.ReservationID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, domain.ReservationEventCreated, events[0].EventType)
}

// Active reservations shrink the remaining quantity, so a second offer that
// would oversubscribe the listing is rejected.
func TestCreate_SecondOfferConflicts(t *testing.T) {
	svc, db := setupReservationsTest(t)
	listing := seedSellListing(t, db, uuid.New(), 500)

	_, err := svc.Create(context.Background(), CreateReservationInput{
		Target:             sellTarget(listing),
		CounterpartyUserID: uuid.New(),
		Quantity:           400,
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateReservationInput{
		Target:             sellTarget(listing),
		CounterpartyUserID: uuid.New(),
		Quantity:           200,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// A fitting offer still goes through.
	_, err = svc.Create(context.Background(), CreateReservationInput{
		Target:             sellTarget(listing),
		CounterpartyUserID: uuid.New(),
		Quantity:           100,
	})
	require.NoError(t, err)
}

func TestCreate_BuyRequestTarget(t *testing.T) {
	svc, db := setupReservationsTest(t)
	owner := uuid.New()
	request := &domain.BuyRequest{
		OwnerUserID:     owner,
		CommodityTicker: "COF",
		LocationID:      "MOR",
		OrderType:       domain.OrderTypeInternal,
		Currency:        "AIC",
		Price:           120,
		Quantity:        300,
	}
	require.NoError(t, db.Create(request).Error)

	r, err := svc.Create(context.Background(), CreateReservationInput{
		Target:             domain.TargetRef{Kind: domain.TargetBuy, ID: request.RequestID},
		CounterpartyUserID: uuid.New(),
		Quantity:           300,
	})
	require.NoError(t, err)
	require.NotNil(t, r.BuyRequestID)
	assert.Equal(t, request.RequestID, *r.BuyRequestID)

	// The request is fully reserved now.
	_, err = svc.Create(context.Background(), CreateReservationInput{
		Target:             domain.TargetRef{Kind: domain.TargetBuy, ID: request.RequestID},
		CounterpartyUserID: uuid.New(),
		Quantity:           1,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func createPending(t *testing.T, svc *Service, listing *domain.SellListing, counterparty uuid.UUID, qty int64) *domain.Reservation {
	r, err := svc.Create(context.Background(), CreateReservationInput{
		Target:             sellTarget(listing),
		CounterpartyUserID: counterparty,
		Quantity:           qty,
	})
	require.NoError(t, err)
	return r
}

// Only the owner may confirm; the counterparty's attempt fails as data, not
// as a transport error.
func TestUpdateStatus_ConfirmIsOwnerOnly(t *testing.T) {
	svc, db := setupReservationsTest(t)
	owner := uuid.New()
	counterparty := uuid.New()
	listing := seedSellListing(t, db, owner, 500)
	r := createPending(t, svc, listing, counterparty, 100)

	result, err := svc.UpdateStatus(context.Background(), r.ReservationID, counterparty, domain.ReservationConfirmed)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "Cannot transition reservation")

	result, err = svc.UpdateStatus(context.Background(), r.ReservationID, owner, domain.ReservationConfirmed)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, domain.ReservationConfirmed, result.Reservation.Status)
}

func TestUpdateStatus_LifecycleToFulfilled(t *testing.T) {
	svc, db := setupReservationsTest(t)
	owner := uuid.New()
	counterparty := uuid.New()
	listing := seedSellListing(t, db, owner, 500)
	r := createPending(t, svc, listing, counterparty, 100)

	result, err := svc.UpdateStatus(context.Background(), r.ReservationID, owner, domain.ReservationConfirmed)
	require.NoError(t, err)
	require.True(t, result.Success)

	result, err = svc.UpdateStatus(context.Background(), r.ReservationID, counterparty, domain.ReservationFulfilled)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, domain.ReservationFulfilled, result.Reservation.Status)

	// Terminal: no further transitions for anyone.
	result, err = svc.UpdateStatus(context.Background(), r.ReservationID, owner, domain.ReservationCancelled)
	require.NoError(t, err)
	assert.False(t, result.Success)

	var events []domain.ReservationEvent
	require.NoError(t, db.Where("reservation_id = ?", r.ReservationID).Find(&events).Error)
	// CREATED plus two STATUS_CHANGED.
	assert.Len(t, events, 3)
}

func TestUpdateStatus_CounterpartyReopensCancelled(t *testing.T) {
	svc, db := setupReservationsTest(t)
	owner := uuid.New()
	counterparty := uuid.New()
	listing := seedSellListing(t, db, owner, 500)
	r := createPending(t, svc, listing, counterparty, 100)

	result, err := svc.UpdateStatus(context.Background(), r.ReservationID, counterparty, domain.ReservationCancelled)
	require.NoError(t, err)
	require.True(t, result.Success)

	result, err = svc.UpdateStatus(context.Background(), r.ReservationID, owner, domain.ReservationPending)
	require.NoError(t, err)
	assert.False(t, result.Success)

	result, err = svc.UpdateStatus(context.Background(), r.ReservationID, counterparty, domain.ReservationPending)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, domain.ReservationPending, result.Reservation.Status)
}

func TestUpdateStatus_StructuredFailures(t *testing.T) {
	svc, db := setupReservationsTest(t)
	owner := uuid.New()
	counterparty := uuid.New()
	listing := seedSellListing(t, db, owner, 500)
	r := createPending(t, svc, listing, counterparty, 100)

	result, err := svc.UpdateStatus(context.Background(), r.ReservationID, owner, domain.ReservationStatus("bogus"))
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "Unknown reservation status")

	result, err = svc.UpdateStatus(context.Background(), uuid.New(), owner, domain.ReservationConfirmed)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Reservation not found", result.Error)

	result, err = svc.UpdateStatus(context.Background(), r.ReservationID, uuid.New(), domain.ReservationConfirmed)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "User is not a party to this reservation", result.Error)
}

func TestListForUser(t *testing.T) {
	svc, db := setupReservationsTest(t)
	owner := uuid.New()
	counterparty := uuid.New()
	listing := seedSellListing(t, db, owner, 500)
	r := createPending(t, svc, listing, counterparty, 100)

	// Counterparty sees it.
	out, err := svc.ListForUser(context.Background(), counterparty, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, r.ReservationID, out[0].ReservationID)

	// Owner of the listing sees it too.
	out, err = svc.ListForUser(context.Background(), owner, nil)
	require.NoError(t, err)
	assert.Len(t, out, 1)

	// Unrelated user does not.
	out, err = svc.ListForUser(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	// Status filter.
	out, err = svc.ListForUser(context.Background(), counterparty, []domain.ReservationStatus{domain.ReservationConfirmed})
	require.NoError(t, err)
	assert.Empty(t, out)
	out, err = svc.ListForUser(context.Background(), counterparty, []domain.ReservationStatus{domain.ReservationPending, domain.ReservationConfirmed})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestListEvents_PartiesOnly(t *testing.T) {
	svc, db := setupReservationsTest(t)
	owner := uuid.New()
	counterparty := uuid.New()
	listing := seedSellListing(t, db, owner, 500)
	r := createPending(t, svc, listing, counterparty, 100)

	result, err := svc.UpdateStatus(context.Background(), r.ReservationID, owner, domain.ReservationConfirmed)
	require.NoError(t, err)
	require.True(t, result.Success)

	events, err := svc.ListEvents(context.Background(), r.ReservationID, owner)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.ReservationEventCreated, events[0].EventType)
	assert.Equal(t, domain.ReservationEventStatusChanged, events[1].EventType)

	_, err = svc.ListEvents(context.Background(), r.ReservationID, counterparty)
	require.NoError(t, err)

	_, err = svc.ListEvents(context.Background(), r.ReservationID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = svc.ListEvents(context.Background(), uuid.New(), owner)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestListEligibleSell(t *testing.T) {
	svc, db := setupReservationsTest(t)
	owner := uuid.New()
	browser := uuid.New()
	listing := seedSellListing(t, db, owner, 500)

	// A listing with nothing synced at its location drops out of the results.
	drained := &domain.SellListing{
		OwnerUserID:     owner,
		CommodityTicker: "RAT",
		LocationID:      "MOR",
		OrderType:       domain.OrderTypeInternal,
		Currency:        "AIC",
		Price:           40,
		LimitKind:       string(domain.LimitNone),
	}
	require.NoError(t, db.Create(drained).Error)

	out, err := svc.ListEligibleSell(context.Background(), ListEligibleInput{
		Kind:               domain.TargetSell,
		CommodityTicker:    "RAT",
		ExcludeOwnerUserID: browser,
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, listing.ListingID, out[0].Listing.ListingID)
	assert.Equal(t, int64(500), out[0].ReservableQuantity)
	require.NotNil(t, out[0].EffectivePrice)
	assert.Equal(t, float64(42), out[0].EffectivePrice.Price)

	// The owner browsing does not see their own listings.
	out, err = svc.ListEligibleSell(context.Background(), ListEligibleInput{
		Kind:               domain.TargetSell,
		CommodityTicker:    "RAT",
		ExcludeOwnerUserID: owner,
	})
	require.NoError(t, err)
	assert.Empty(t, out)

	// Missing ticker is a validation error.
	_, err = svc.ListEligibleSell(context.Background(), ListEligibleInput{ExcludeOwnerUserID: browser})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
