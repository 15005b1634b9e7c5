package domain

import "errors"

// LimitKind is the owner-chosen rule converting raw synced inventory into an
// available-for-trade quantity.
type LimitKind string

const (
	// LimitNone sells everything the sync reports.
	LimitNone LimitKind = "none"
	// LimitMaxSell caps the sellable amount; not FIO-backed for reconciliation.
	LimitMaxSell LimitKind = "max_sell"
	// LimitReserve holds back a personal buffer from the synced quantity.
	LimitReserve LimitKind = "reserve"
)

// LimitPolicy pairs a kind with its quantity. Limit is ignored for LimitNone.
type LimitPolicy struct {
	Kind  LimitKind
	Limit int64
}

var ErrUnknownLimitKind = errors.New("Unknown limit policy")

// NewLimitPolicy validates the raw (kind, quantity) column pair. A nil
// quantity is treated as zero, matching the ?? 0 semantics of the limits.
func NewLimitPolicy(kind string, quantity *int64) (LimitPolicy, error) {
	var limit int64
	if quantity != nil {
		limit = *quantity
	}
	switch LimitKind(kind) {
	case LimitNone:
		return LimitPolicy{Kind: LimitNone}, nil
	case LimitMaxSell, LimitReserve:
		if limit < 0 {
			return LimitPolicy{}, errors.New("Limit quantity cannot be negative")
		}
		return LimitPolicy{Kind: LimitKind(kind), Limit: limit}, nil
	default:
		return LimitPolicy{}, ErrUnknownLimitKind
	}
}
