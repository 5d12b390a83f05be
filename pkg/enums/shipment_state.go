package enums

import "fmt"

// ShipmentState tracks the physical fulfillment of a quotation.
type ShipmentState string

const (
	ShipmentStatePreparing ShipmentState = "preparando"
	ShipmentStateShipped   ShipmentState = "enviado"
	ShipmentStateInTransit ShipmentState = "en_transito"
	ShipmentStateDelivered ShipmentState = "entregado"
	ShipmentStateCancelled ShipmentState = "cancelado"
)

var validShipmentStates = []ShipmentState{
	ShipmentStatePreparing,
	ShipmentStateShipped,
	ShipmentStateInTransit,
	ShipmentStateDelivered,
	ShipmentStateCancelled,
}

// forward edges of the shipment state machine; cancelled is handled separately.
var shipmentNext = map[ShipmentState]ShipmentState{
	ShipmentStatePreparing: ShipmentStateShipped,
	ShipmentStateShipped:   ShipmentStateInTransit,
	ShipmentStateInTransit: ShipmentStateDelivered,
}

// ShipmentStates returns every known state in lifecycle order.
func ShipmentStates() []ShipmentState {
	out := make([]ShipmentState, len(validShipmentStates))
	copy(out, validShipmentStates)
	return out
}

// String implements fmt.Stringer.
func (s ShipmentState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShipmentState.
func (s ShipmentState) IsValid() bool {
	for _, candidate := range validShipmentStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s ShipmentState) IsTerminal() bool {
	return s == ShipmentStateDelivered || s == ShipmentStateCancelled
}

// Pending reports whether the shipment still awaits delivery.
func (s ShipmentState) Pending() bool {
	return s.IsValid() && !s.IsTerminal()
}

// CanTransitionTo reports whether moving from s to next is allowed. Staying in
// the same state is always allowed so unrelated fields can be edited.
func (s ShipmentState) CanTransitionTo(next ShipmentState) bool {
	if !s.IsValid() || !next.IsValid() {
		return false
	}
	if s == next {
		return true
	}
	if s.IsTerminal() {
		return false
	}
	if next == ShipmentStateCancelled {
		return true
	}
	return shipmentNext[s] == next
}

// ParseShipmentState converts raw input into a ShipmentState.
func ParseShipmentState(value string) (ShipmentState, error) {
	for _, candidate := range validShipmentStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipment state %q", value)
}
