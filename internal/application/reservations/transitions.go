package reservations

import "exohub-backend/internal/domain"

// ActorRole is the caller's relationship to a reservation.
type ActorRole string

const (
	RoleOwner        ActorRole = "owner"
	RoleCounterparty ActorRole = "counterparty"
)

// transitionTable is the full lifecycle rule set, split by actor role.
// Rejected, fulfilled and expired are terminal and deliberately absent.
// Either party may move pending/confirmed straight to fulfilled so a trade
// can complete without both sides confirming first.
var transitionTable = map[domain.ReservationStatus]map[ActorRole][]domain.ReservationStatus{
	domain.ReservationPending: {
		RoleOwner:        {domain.ReservationConfirmed, domain.ReservationRejected, domain.ReservationFulfilled},
		RoleCounterparty: {domain.ReservationCancelled, domain.ReservationFulfilled},
	},
	domain.ReservationConfirmed: {
		RoleOwner:        {domain.ReservationFulfilled, domain.ReservationCancelled},
		RoleCounterparty: {domain.ReservationFulfilled, domain.ReservationCancelled},
	},
	domain.ReservationCancelled: {
		// Only the counterparty may reopen a cancelled reservation.
		RoleCounterparty: {domain.ReservationPending},
	},
}

// AllowedTransitions returns the target states role may move a reservation in
// current to. Empty for terminal states and unknown roles.
func AllowedTransitions(current domain.ReservationStatus, role ActorRole) []domain.ReservationStatus {
	byRole, ok := transitionTable[current]
	if !ok {
		return nil
	}
	return byRole[role]
}

// CanTransition reports whether role may move current to next.
func CanTransition(current, next domain.ReservationStatus, role ActorRole) bool {
	for _, s := range AllowedTransitions(current, role) {
		if s == next {
			return true
		}
	}
	return false
}
