package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventorySnapshot is one FIO-synced storage row for a player. A location
// can have several rows (one per storage container); the location's effective
// sync time is the max LastSyncedAt across its rows.
type InventorySnapshot struct {
	SnapshotID      uuid.UUID  `gorm:"column:snapshot_id;type:uuid;primaryKey" json:"snapshot_id"`
	UserID          uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_inventory_key" json:"user_id"`
	CommodityTicker string     `gorm:"column:commodity_ticker;not null;uniqueIndex:idx_inventory_key" json:"commodity_ticker"`
	LocationID      string     `gorm:"column:location_id;not null;uniqueIndex:idx_inventory_key" json:"location_id"`
	StoreID         string     `gorm:"column:store_id;not null;default:'';uniqueIndex:idx_inventory_key" json:"store_id"`
	Quantity        int64      `gorm:"column:quantity;not null;default:0" json:"quantity"`
	LastSyncedAt    time.Time  `gorm:"column:last_synced_at;not null" json:"last_synced_at"`
	FIOUploadedAt   *time.Time `gorm:"column:fio_uploaded_at" json:"fio_uploaded_at"`
}

func (InventorySnapshot) TableName() string {
	return "InventorySnapshots"
}

func (s *InventorySnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.SnapshotID == uuid.Nil {
		s.SnapshotID = uuid.New()
	}
	return nil
}
