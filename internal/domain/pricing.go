package domain

import (
	"errors"
	"time"
)

// PricingMode selects between a fixed listing price and price-list lookup.
type PricingMode string

const (
	PricingFixed   PricingMode = "fixed"
	PricingDynamic PricingMode = "dynamic"
)

// Pricing is the validated pricing config of a listing. Exactly one of Price
// (fixed) and PriceListCode (dynamic) is meaningful.
type Pricing struct {
	Mode          PricingMode
	Price         float64
	PriceListCode string
}

var (
	ErrFixedPriceRequired   = errors.New("Fixed price must be greater than zero")
	ErrDynamicPriceNonZero  = errors.New("Price must be zero when a price list is set")
	ErrPriceListCodeMissing = errors.New("Price list code is required for dynamic pricing")
)

// NewPricing validates the raw (price, priceListCode) column pair into a
// Pricing value. A non-empty list code means dynamic; then the stored price
// must be zero. Fixed pricing requires price > 0.
func NewPricing(price float64, priceListCode *string) (Pricing, error) {
	if priceListCode != nil && *priceListCode != "" {
		if price != 0 {
			return Pricing{}, ErrDynamicPriceNonZero
		}
		return Pricing{Mode: PricingDynamic, PriceListCode: *priceListCode}, nil
	}
	if price <= 0 {
		return Pricing{}, ErrFixedPriceRequired
	}
	return Pricing{Mode: PricingFixed, Price: price}, nil
}

// PriceList is a named dynamic pricing scheme. FallbackLocationID is used
// when no adjustment matches a listing's exact location.
type PriceList struct {
	ListCode           string    `gorm:"column:list_code;primaryKey" json:"list_code"`
	Name               string    `gorm:"column:name;not null" json:"name"`
	Currency           string    `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	FallbackLocationID *string   `gorm:"column:fallback_location_id" json:"fallback_location_id"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (PriceList) TableName() string {
	return "PriceLists"
}

// Adjustment application kinds. A "fixed" adjustment is itself the price; a
// "percent" adjustment scales the best wildcard-location fixed match of the
// same list+commodity.
const (
	AdjustmentFixed   = "fixed"
	AdjustmentPercent = "percent"
)

// PriceAdjustment refines a price list by scope. Nil scope fields are
// wildcards. Ordered by (priority, id) ascending; lowest priority value wins.
// The primary key is a serial int so the id tiebreak is insertion order.
type PriceAdjustment struct {
	ID              uint       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PriceListCode   *string    `gorm:"column:price_list_code;index" json:"price_list_code"`
	CommodityTicker *string    `gorm:"column:commodity_ticker" json:"commodity_ticker"`
	LocationID      *string    `gorm:"column:location_id" json:"location_id"`
	Currency        *string    `gorm:"column:currency;type:varchar(8)" json:"currency"`
	AdjustmentType  string     `gorm:"column:adjustment_type;type:varchar(16);not null" json:"adjustment_type"`
	AdjustmentValue float64    `gorm:"column:adjustment_value;type:decimal(18,4);not null" json:"adjustment_value"`
	Priority        int        `gorm:"column:priority;not null;default:0" json:"priority"`
	IsActive        bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`
	EffectiveFrom   *time.Time `gorm:"column:effective_from" json:"effective_from"`
	EffectiveUntil  *time.Time `gorm:"column:effective_until" json:"effective_until"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (PriceAdjustment) TableName() string {
	return "PriceAdjustments"
}

// InWindow reports whether the adjustment is effective at t. Open-ended when
// either bound is nil.
func (a *PriceAdjustment) InWindow(t time.Time) bool {
	if a.EffectiveFrom != nil && t.Before(*a.EffectiveFrom) {
		return false
	}
	if a.EffectiveUntil != nil && t.After(*a.EffectiveUntil) {
		return false
	}
	return true
}
