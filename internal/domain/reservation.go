package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReservationStatus is the reservation lifecycle state.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationRejected  ReservationStatus = "rejected"
	ReservationFulfilled ReservationStatus = "fulfilled"
	ReservationExpired   ReservationStatus = "expired"
	ReservationCancelled ReservationStatus = "cancelled"
)

// ValidReservationStatus reports whether s is one of the lifecycle states.
func ValidReservationStatus(s ReservationStatus) bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationRejected,
		ReservationFulfilled, ReservationExpired, ReservationCancelled:
		return true
	}
	return false
}

// Terminal reports whether s admits no outgoing transition.
func (s ReservationStatus) Terminal() bool {
	return s == ReservationRejected || s == ReservationFulfilled || s == ReservationExpired
}

// TargetKind selects which listing side a reservation points at.
type TargetKind string

const (
	TargetSell TargetKind = "sell"
	TargetBuy  TargetKind = "buy"
)

// TargetRef identifies exactly one sell listing or buy request.
type TargetRef struct {
	Kind TargetKind
	ID   uuid.UUID
}

var ErrTargetRefAmbiguous = errors.New("Reservation must reference exactly one listing")

// NewTargetRef validates the nullable column pair into a TargetRef.
func NewTargetRef(sellListingID, buyRequestID *uuid.UUID) (TargetRef, error) {
	switch {
	case sellListingID != nil && buyRequestID == nil:
		return TargetRef{Kind: TargetSell, ID: *sellListingID}, nil
	case buyRequestID != nil && sellListingID == nil:
		return TargetRef{Kind: TargetBuy, ID: *buyRequestID}, nil
	default:
		return TargetRef{}, ErrTargetRefAmbiguous
	}
}

// ReservationTTL is how long a fresh reservation stays open before the
// sweeper may expire it.
const ReservationTTL = 72 * time.Hour

// Reservation is a counterparty's offer to fulfill part or all of a listing.
// Never deleted; only transitioned to a terminal state.
type Reservation struct {
	ReservationID      uuid.UUID         `gorm:"column:reservation_id;type:uuid;primaryKey" json:"reservation_id"`
	SellListingID      *uuid.UUID        `gorm:"column:sell_listing_id;type:uuid;index" json:"sell_listing_id"`
	BuyRequestID       *uuid.UUID        `gorm:"column:buy_request_id;type:uuid;index" json:"buy_request_id"`
	CounterpartyUserID uuid.UUID         `gorm:"column:counterparty_user_id;type:uuid;not null;index" json:"counterparty_user_id"`
	Quantity           int64             `gorm:"column:quantity;not null" json:"quantity"`
	Status             ReservationStatus `gorm:"column:status;type:varchar(16);not null;default:'pending';index" json:"status"`
	Notes              string            `gorm:"column:notes" json:"notes"`
	ExpiresAt          time.Time         `gorm:"column:expires_at;not null" json:"expires_at"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

func (Reservation) TableName() string {
	return "Reservations"
}

func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ReservationID == uuid.Nil {
		r.ReservationID = uuid.New()
	}
	return nil
}

// Target returns the validated target reference.
func (r *Reservation) Target() (TargetRef, error) {
	return NewTargetRef(r.SellListingID, r.BuyRequestID)
}
