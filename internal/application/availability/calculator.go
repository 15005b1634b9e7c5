package availability

import "exohub-backend/internal/domain"

// AvailableQuantity converts a raw synced inventory quantity into the
// available-for-trade quantity under the listing's limit policy.
//
//	none:     everything the sync reports
//	max_sell: min(synced, limit)
//	reserve:  max(0, synced - limit)
func AvailableQuantity(synced int64, policy domain.LimitPolicy) int64 {
	switch policy.Kind {
	case domain.LimitMaxSell:
		if synced < policy.Limit {
			return synced
		}
		return policy.Limit
	case domain.LimitReserve:
		if synced <= policy.Limit {
			return 0
		}
		return synced - policy.Limit
	default:
		return synced
	}
}

// RemainingQuantity is what a counterparty can still reserve: available minus
// active reservations minus fulfilled trades not yet reflected in the sync.
// Never negative.
func RemainingQuantity(available, activeReserved, countedFulfilled int64) int64 {
	remaining := available - activeReserved - countedFulfilled
	if remaining < 0 {
		return 0
	}
	return remaining
}
