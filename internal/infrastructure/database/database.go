package database

import (
	"exohub-backend/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN. PreferSimpleProtocol disables prepared
// statement caching to avoid 42P05 ("prepared statement already exists")
// when using connection poolers (e.g. PgBouncer).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate runs migrations for all engine models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Commodity{},
		&domain.Location{},
		&domain.SellListing{},
		&domain.BuyRequest{},
		&domain.Reservation{},
		&domain.ReservationEvent{},
		&domain.InventorySnapshot{},
		&domain.PriceList{},
		&domain.PriceAdjustment{},
	)
}
