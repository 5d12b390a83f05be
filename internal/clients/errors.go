package clients

import (
	"errors"

	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
)

var (
	ErrMissingFields    = errors.New("rut and name are required")
	ErrInvalidRUT       = errors.New("invalid rut")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrDuplicateRUT     = errors.New("rut already registered")
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrClientNotFound   = errors.New("client not found")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
	ErrHasQuotations    = errors.New("client has quotations")
)

func missingFields() error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrMissingFields, "RUT y nombre son obligatorios")
}

func invalidRUT(value string, cause error) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, errors.Join(ErrInvalidRUT, cause), "RUT inválido. Formato esperado: 12345678-9").
		WithDetails(map[string]any{"rut": value})
}

func invalidEmail() error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrInvalidEmail, "Formato de correo inválido")
}

func duplicateRUT() error {
	return pkgerrors.Wrap(pkgerrors.CodeConflict, ErrDuplicateRUT, "Ya existe un cliente con ese RUT")
}

func duplicateEmail() error {
	return pkgerrors.Wrap(pkgerrors.CodeConflict, ErrDuplicateEmail, "Ya existe un cliente con ese correo")
}

func clientNotFound() error {
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrClientNotFound, "Cliente no encontrado")
}

func noFieldsToUpdate() error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrNoFieldsToUpdate, "No hay campos para actualizar")
}

func hasQuotations(count int64) error {
	return pkgerrors.Wrap(pkgerrors.CodeConflict, ErrHasQuotations, "No se puede eliminar el cliente porque tiene cotizaciones asociadas").
		WithDetails(map[string]any{"cotizaciones_asociadas": count})
}
