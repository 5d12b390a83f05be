package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuotationState(t *testing.T) {
	state, err := ParseQuotationState("aprobada")
	require.NoError(t, err)
	assert.Equal(t, QuotationStateApproved, state)
	assert.True(t, state.Shippable())
	assert.True(t, QuotationStateSent.Shippable())
	assert.False(t, QuotationStatePending.Shippable())
	assert.False(t, QuotationStateRejected.Shippable())

	_, err = ParseQuotationState("cerrada")
	require.Error(t, err)
	assert.False(t, QuotationState("cerrada").IsValid())
}

func TestShipmentStateMachine(t *testing.T) {
	cases := []struct {
		from, to ShipmentState
		allowed  bool
	}{
		{ShipmentStatePreparing, ShipmentStateShipped, true},
		{ShipmentStateShipped, ShipmentStateInTransit, true},
		{ShipmentStateInTransit, ShipmentStateDelivered, true},
		{ShipmentStatePreparing, ShipmentStateDelivered, false},
		{ShipmentStatePreparing, ShipmentStateInTransit, false},
		{ShipmentStateInTransit, ShipmentStateShipped, false},
		{ShipmentStatePreparing, ShipmentStateCancelled, true},
		{ShipmentStateInTransit, ShipmentStateCancelled, true},
		{ShipmentStateDelivered, ShipmentStateCancelled, false},
		{ShipmentStateCancelled, ShipmentStatePreparing, false},
		{ShipmentStateShipped, ShipmentStateShipped, true},
		{ShipmentStateDelivered, ShipmentStateDelivered, true},
		{ShipmentStatePreparing, ShipmentState("perdido"), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestShipmentStatePending(t *testing.T) {
	assert.True(t, ShipmentStatePreparing.Pending())
	assert.True(t, ShipmentStateInTransit.Pending())
	assert.False(t, ShipmentStateDelivered.Pending())
	assert.False(t, ShipmentStateCancelled.Pending())
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)
	_, err = ParseRole("root")
	assert.Error(t, err)
}
