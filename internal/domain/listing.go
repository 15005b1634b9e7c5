package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderType distinguishes corp-internal listings from partner-visible ones.
const (
	OrderTypeInternal = "internal"
	OrderTypePartner  = "partner"
)

// SellListing is a player's standing offer to sell a commodity at a location.
// Unique per (owner, commodity, location, order type, currency).
type SellListing struct {
	ListingID       uuid.UUID      `gorm:"column:listing_id;type:uuid;primaryKey" json:"listing_id"`
	OwnerUserID     uuid.UUID      `gorm:"column:owner_user_id;type:uuid;not null;index:idx_sell_listing_key" json:"owner_user_id"`
	CommodityTicker string         `gorm:"column:commodity_ticker;not null;index:idx_sell_listing_key" json:"commodity_ticker"`
	LocationID      string         `gorm:"column:location_id;not null;index:idx_sell_listing_key" json:"location_id"`
	OrderType       string         `gorm:"column:order_type;type:varchar(16);not null;default:'internal';index:idx_sell_listing_key" json:"order_type"`
	Currency        string         `gorm:"column:currency;type:varchar(8);not null;index:idx_sell_listing_key" json:"currency"`
	Price           float64        `gorm:"column:price;type:decimal(18,2);not null;default:0" json:"price"`
	PriceListCode   *string        `gorm:"column:price_list_code" json:"price_list_code"`
	LimitKind       string         `gorm:"column:limit_kind;type:varchar(16);not null;default:'none'" json:"limit_kind"`
	LimitQuantity   *int64         `gorm:"column:limit_quantity" json:"limit_quantity"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (SellListing) TableName() string {
	return "SellListings"
}

// BeforeCreate: never insert zero UUID for primary key; generate random when not set.
func (l *SellListing) BeforeCreate(tx *gorm.DB) error {
	if l.ListingID == uuid.Nil {
		l.ListingID = uuid.New()
	}
	return nil
}

// Pricing returns the listing's pricing config as a sum type.
func (l *SellListing) Pricing() Pricing {
	if l.PriceListCode != nil && *l.PriceListCode != "" {
		return Pricing{Mode: PricingDynamic, PriceListCode: *l.PriceListCode}
	}
	return Pricing{Mode: PricingFixed, Price: l.Price}
}

// LimitPolicy returns the listing's limit policy as a sum type.
func (l *SellListing) LimitPolicy() LimitPolicy {
	var limit int64
	if l.LimitQuantity != nil {
		limit = *l.LimitQuantity
	}
	return LimitPolicy{Kind: LimitKind(l.LimitKind), Limit: limit}
}

// BuyRequest is a player's standing request to buy a commodity at a location.
// Same key shape as SellListing but carries an explicit quantity instead of a
// limit policy (buy side is not FIO-backed).
type BuyRequest struct {
	RequestID       uuid.UUID      `gorm:"column:request_id;type:uuid;primaryKey" json:"request_id"`
	OwnerUserID     uuid.UUID      `gorm:"column:owner_user_id;type:uuid;not null;index:idx_buy_request_key" json:"owner_user_id"`
	CommodityTicker string         `gorm:"column:commodity_ticker;not null;index:idx_buy_request_key" json:"commodity_ticker"`
	LocationID      string         `gorm:"column:location_id;not null;index:idx_buy_request_key" json:"location_id"`
	OrderType       string         `gorm:"column:order_type;type:varchar(16);not null;default:'internal';index:idx_buy_request_key" json:"order_type"`
	Currency        string         `gorm:"column:currency;type:varchar(8);not null;index:idx_buy_request_key" json:"currency"`
	Price           float64        `gorm:"column:price;type:decimal(18,2);not null;default:0" json:"price"`
	PriceListCode   *string        `gorm:"column:price_list_code" json:"price_list_code"`
	Quantity        int64          `gorm:"column:quantity;not null" json:"quantity"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (BuyRequest) TableName() string {
	return "BuyRequests"
}

func (r *BuyRequest) BeforeCreate(tx *gorm.DB) error {
	if r.RequestID == uuid.Nil {
		r.RequestID = uuid.New()
	}
	return nil
}

// Pricing returns the request's pricing config as a sum type.
func (r *BuyRequest) Pricing() Pricing {
	if r.PriceListCode != nil && *r.PriceListCode != "" {
		return Pricing{Mode: PricingDynamic, PriceListCode: *r.PriceListCode}
	}
	return Pricing{Mode: PricingFixed, Price: r.Price}
}
