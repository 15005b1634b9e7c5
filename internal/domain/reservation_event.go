package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Reservation event types.
const (
	ReservationEventCreated       = "CREATED"
	ReservationEventStatusChanged = "STATUS_CHANGED"
	ReservationEventExpired       = "EXPIRED"
)

// ReservationEvent is an audit row written alongside reservation mutations.
type ReservationEvent struct {
	EventID       uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	ReservationID uuid.UUID      `gorm:"column:reservation_id;type:uuid;not null;index" json:"reservation_id"`
	EventType     string         `gorm:"column:event_type;type:varchar(32);not null" json:"event_type"`
	ActorUserID   *uuid.UUID     `gorm:"column:actor_user_id;type:uuid" json:"actor_user_id"`
	EventData     datatypes.JSON `gorm:"column:event_data;type:json" json:"event_data"`
	CreatedAt     time.Time      `json:"createdAt"`
}

func (ReservationEvent) TableName() string {
	return "ReservationEvents"
}

func (e *ReservationEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
