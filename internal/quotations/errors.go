package quotations

import (
	"errors"
	"fmt"

	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
)

// Failure kinds reported by the quotation engine. Callers match them with
// errors.Is; the HTTP layer reads the wrapping pkgerrors code.
var (
	ErrMissingFields     = errors.New("client and issue date are required")
	ErrEmptyLineItems    = errors.New("quotation has no line items")
	ErrMissingLineFields = errors.New("line item requires product and quantity")
	ErrInvalidDateFormat = errors.New("invalid date format")
	ErrClientNotFound    = errors.New("client not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrProductInactive   = errors.New("product inactive")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidDiscount   = errors.New("invalid discount")
	ErrQuotationNotFound = errors.New("quotation not found")
	ErrInvalidState      = errors.New("invalid quotation state")
	ErrNoFieldsToUpdate  = errors.New("no fields to update")
	ErrHasShipment       = errors.New("quotation has a shipment")
)

func missingFields() error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrMissingFields, "id_cliente y fecha_emision son obligatorios")
}

func emptyLineItems() error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrEmptyLineItems, "Debe incluir al menos un producto")
}

func missingLineFields(index int) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrMissingLineFields, "Cada producto debe tener id_producto y cantidad").
		WithDetails(map[string]any{"indice": index})
}

func invalidDateFormat(field string) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrInvalidDateFormat, "Formato de fecha inválido, use YYYY-MM-DD").
		WithDetails(map[string]any{"campo": field})
}

func clientNotFound(clientID int64) error {
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrClientNotFound, "Cliente no encontrado").
		WithDetails(map[string]any{"id_cliente": clientID})
}

func productNotFound(productID int64) error {
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrProductNotFound, fmt.Sprintf("Producto con ID %d no encontrado", productID)).
		WithDetails(map[string]any{"id_producto": productID})
}

func productInactive(productID int64) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrProductInactive, fmt.Sprintf("El producto con ID %d no está activo", productID)).
		WithDetails(map[string]any{"id_producto": productID})
}

func invalidQuantity(productID int64) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrInvalidQuantity, fmt.Sprintf("La cantidad debe ser mayor a 0 y no superar %d", MaxLineQuantity)).
		WithDetails(map[string]any{"id_producto": productID})
}

func invalidDiscount(productID int64) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrInvalidDiscount, "El descuento debe ser mayor o igual a 0 y no superar el monto de la línea").
		WithDetails(map[string]any{"id_producto": productID})
}

func quotationNotFound(id int64) error {
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrQuotationNotFound, "Cotización no encontrada").
		WithDetails(map[string]any{"id_cotizacion": id})
}

func invalidState(value string) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrInvalidState, "Estado inválido").
		WithDetails(map[string]any{"estado": value, "estados_validos": validStateNames()})
}

func noFieldsToUpdate() error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrNoFieldsToUpdate, "No hay campos para actualizar")
}

func hasShipment(shipmentID int64) error {
	details := map[string]any{
		"sugerencia": "Elimine primero el despacho asociado",
	}
	if shipmentID > 0 {
		details["id_despacho"] = shipmentID
	}
	return pkgerrors.Wrap(pkgerrors.CodeConflict, ErrHasShipment, "No se puede eliminar la cotización porque tiene un despacho asociado").
		WithDetails(details)
}
