package enums

import "fmt"

// QuotationState tracks the lifecycle of a quotation.
type QuotationState string

const (
	QuotationStatePending  QuotationState = "pendiente"
	QuotationStateApproved QuotationState = "aprobada"
	QuotationStateRejected QuotationState = "rechazada"
	QuotationStateSent     QuotationState = "enviada"
)

var validQuotationStates = []QuotationState{
	QuotationStatePending,
	QuotationStateApproved,
	QuotationStateRejected,
	QuotationStateSent,
}

// QuotationStates returns every known state in display order.
func QuotationStates() []QuotationState {
	out := make([]QuotationState, len(validQuotationStates))
	copy(out, validQuotationStates)
	return out
}

// String implements fmt.Stringer.
func (s QuotationState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known QuotationState.
func (s QuotationState) IsValid() bool {
	for _, candidate := range validQuotationStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// Shippable reports whether a shipment may be created for a quotation in this state.
func (s QuotationState) Shippable() bool {
	return s == QuotationStateApproved || s == QuotationStateSent
}

// ParseQuotationState converts raw input into a QuotationState.
func ParseQuotationState(value string) (QuotationState, error) {
	for _, candidate := range validQuotationStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quotation state %q", value)
}
