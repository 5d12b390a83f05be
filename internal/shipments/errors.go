package shipments

import (
	"errors"

	"github.com/medsupply/cotizaciones-api/pkg/enums"
	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
)

var (
	ErrMissingFields         = errors.New("quotation, send date and address are required")
	ErrInvalidDateFormat     = errors.New("invalid date format")
	ErrQuotationNotFound     = errors.New("quotation not found")
	ErrQuotationNotApproved  = errors.New("quotation not approved")
	ErrShipmentAlreadyExists = errors.New("shipment already exists for quotation")
	ErrShipmentNotFound      = errors.New("shipment not found")
	ErrInvalidState          = errors.New("invalid shipment state")
	ErrInvalidTransition     = errors.New("shipment state transition not allowed")
	ErrNoFieldsToUpdate      = errors.New("no fields to update")
	ErrInvalidAddress        = errors.New("delivery address cannot be empty")
)

func missingFields() error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrMissingFields, "id_cotizacion, fecha_envio y direccion_envio son obligatorios")
}

func invalidDateFormat(field string) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrInvalidDateFormat, "Formato de fecha inválido, use YYYY-MM-DD").
		WithDetails(map[string]any{"campo": field})
}

func quotationNotFound(id int64) error {
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrQuotationNotFound, "Cotización no encontrada").
		WithDetails(map[string]any{"id_cotizacion": id})
}

func quotationNotApproved(current enums.QuotationState) error {
	return pkgerrors.Wrap(pkgerrors.CodeStateConflict, ErrQuotationNotApproved, "Solo se pueden despachar cotizaciones aprobadas").
		WithDetails(map[string]any{"estado_actual": current.String()})
}

func shipmentAlreadyExists(existingID int64) error {
	details := map[string]any{}
	if existingID > 0 {
		details["id_despacho"] = existingID
	}
	return pkgerrors.Wrap(pkgerrors.CodeConflict, ErrShipmentAlreadyExists, "Ya existe un despacho para esta cotización").
		WithDetails(details)
}

func shipmentNotFound() error {
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrShipmentNotFound, "Despacho no encontrado")
}

func invalidState(value string) error {
	names := make([]string, 0, len(enums.ShipmentStates()))
	for _, s := range enums.ShipmentStates() {
		names = append(names, s.String())
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrInvalidState, "Estado inválido").
		WithDetails(map[string]any{"estado": value, "estados_validos": names})
}

func invalidTransition(from, to enums.ShipmentState) error {
	return pkgerrors.Wrap(pkgerrors.CodeStateConflict, ErrInvalidTransition, "Transición de estado de despacho no permitida").
		WithDetails(map[string]any{"estado_actual": from.String(), "estado_solicitado": to.String()})
}

func noFieldsToUpdate() error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrNoFieldsToUpdate, "No hay campos para actualizar")
}

func invalidAddress() error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrInvalidAddress, "direccion_envio no puede estar vacía")
}
