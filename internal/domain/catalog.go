package domain

import "time"

// Commodity is a tradeable good, keyed by its in-game ticker.
type Commodity struct {
	Ticker    string    `gorm:"column:ticker;primaryKey" json:"ticker"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Category  string    `gorm:"column:category" json:"category"`
	Weight    float64   `gorm:"column:weight;type:decimal(10,4)" json:"weight"`
	Volume    float64   `gorm:"column:volume;type:decimal(10,4)" json:"volume"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Commodity) TableName() string {
	return "Commodities"
}

// Location is a tradeable place (planet or station), keyed by its natural
// in-game id (e.g. "UV-351a", "MOR").
type Location struct {
	LocationID string    `gorm:"column:location_id;primaryKey" json:"location_id"`
	Name       string    `gorm:"column:name;not null" json:"name"`
	Kind       string    `gorm:"column:kind;type:varchar(16)" json:"kind"`
	SystemID   string    `gorm:"column:system_id" json:"system_id"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Location) TableName() string {
	return "Locations"
}
