package reservations

import (
	"testing"

	"exohub-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_PendingByRole(t *testing.T) {
	// Scenario from the lifecycle rules: only the owner confirms.
	assert.True(t, CanTransition(domain.ReservationPending, domain.ReservationConfirmed, RoleOwner))
	assert.False(t, CanTransition(domain.ReservationPending, domain.ReservationConfirmed, RoleCounterparty))

	assert.True(t, CanTransition(domain.ReservationPending, domain.ReservationRejected, RoleOwner))
	assert.False(t, CanTransition(domain.ReservationPending, domain.ReservationRejected, RoleCounterparty))

	assert.True(t, CanTransition(domain.ReservationPending, domain.ReservationCancelled, RoleCounterparty))
	assert.False(t, CanTransition(domain.ReservationPending, domain.ReservationCancelled, RoleOwner))

	// Either party may close the trade directly.
	assert.True(t, CanTransition(domain.ReservationPending, domain.ReservationFulfilled, RoleOwner))
	assert.True(t, CanTransition(domain.ReservationPending, domain.ReservationFulfilled, RoleCounterparty))
}

func TestCanTransition_Confirmed(t *testing.T) {
	for _, role := range []ActorRole{RoleOwner, RoleCounterparty} {
		assert.True(t, CanTransition(domain.ReservationConfirmed, domain.ReservationFulfilled, role))
		assert.True(t, CanTransition(domain.ReservationConfirmed, domain.ReservationCancelled, role))
		assert.False(t, CanTransition(domain.ReservationConfirmed, domain.ReservationPending, role))
		assert.False(t, CanTransition(domain.ReservationConfirmed, domain.ReservationRejected, role))
	}
}

func TestCanTransition_CancelledReopen(t *testing.T) {
	assert.True(t, CanTransition(domain.ReservationCancelled, domain.ReservationPending, RoleCounterparty))
	assert.False(t, CanTransition(domain.ReservationCancelled, domain.ReservationPending, RoleOwner))
	assert.False(t, CanTransition(domain.ReservationCancelled, domain.ReservationConfirmed, RoleCounterparty))
}

func TestCanTransition_TerminalStatesAreClosed(t *testing.T) {
	terminal := []domain.ReservationStatus{
		domain.ReservationRejected, domain.ReservationFulfilled, domain.ReservationExpired,
	}
	all := []domain.ReservationStatus{
		domain.ReservationPending, domain.ReservationConfirmed, domain.ReservationRejected,
		domain.ReservationFulfilled, domain.ReservationExpired, domain.ReservationCancelled,
	}
	for _, from := range terminal {
		assert.True(t, from.Terminal())
		for _, to := range all {
			for _, role := range []ActorRole{RoleOwner, RoleCounterparty} {
				assert.False(t, CanTransition(from, to, role), "%s -> %s as %s", from, to, role)
			}
		}
	}
}

func TestAllowedTransitions_UnknownRole(t *testing.T) {
	assert.Empty(t, AllowedTransitions(domain.ReservationPending, ActorRole("stranger")))
	assert.Empty(t, AllowedTransitions(domain.ReservationExpired, RoleOwner))
}
