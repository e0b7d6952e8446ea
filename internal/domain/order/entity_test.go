package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusIsValid(t *testing.T) {
	valid := []Status{
		StatusPending, StatusConfirmed, StatusPreparing,
		StatusOutForDelivery, StatusDelivered, StatusCancelled,
	}
	for _, s := range valid {
		assert.True(t, s.IsValid(), "expected %q to be valid", s)
	}

	assert.False(t, Status("shipped").IsValid())
	assert.False(t, Status("").IsValid())
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusPreparing, true},
		{StatusPreparing, StatusOutForDelivery, true},
		{StatusOutForDelivery, StatusDelivered, true},

		// No skipping ahead.
		{StatusPending, StatusPreparing, false},
		{StatusPending, StatusDelivered, false},
		{StatusConfirmed, StatusOutForDelivery, false},

		// No going backwards.
		{StatusConfirmed, StatusPending, false},
		{StatusDelivered, StatusOutForDelivery, false},

		// Cancellation only from pending.
		{StatusConfirmed, StatusCancelled, false},
		{StatusPreparing, StatusCancelled, false},

		// Terminal states go nowhere.
		{StatusDelivered, StatusConfirmed, false},
		{StatusCancelled, StatusConfirmed, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusOutForDelivery.IsTerminal())
}

func TestPredecessorsOf(t *testing.T) {
	assert.ElementsMatch(t, []Status{StatusPending}, predecessorsOf(StatusConfirmed))
	assert.ElementsMatch(t, []Status{StatusPending}, predecessorsOf(StatusCancelled))
	assert.ElementsMatch(t, []Status{StatusConfirmed}, predecessorsOf(StatusPreparing))
	assert.ElementsMatch(t, []Status{StatusOutForDelivery}, predecessorsOf(StatusDelivered))
	assert.Empty(t, predecessorsOf(StatusPending))
}
