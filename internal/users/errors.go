package users

import (
	"errors"

	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
)

var (
	ErrMissingFields     = errors.New("username, password and role are required")
	ErrPasswordTooShort  = errors.New("password too short")
	ErrUnknownRole       = errors.New("role does not exist")
	ErrUsernameTaken     = errors.New("username already registered")
	ErrUserNotFound      = errors.New("user not found")
	ErrNoFieldsToUpdate  = errors.New("no fields to update")
	ErrCannotDeleteSelf  = errors.New("cannot delete own account")
	ErrUserHasQuotations = errors.New("user has issued quotations")
)

// MinPasswordLength is the shortest password accepted for new credentials.
const MinPasswordLength = 6

func missingFields() error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrMissingFields, "Usuario, contraseña y rol son obligatorios")
}

func passwordTooShort() error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrPasswordTooShort, "La contraseña debe tener al menos 6 caracteres")
}

func unknownRole(id int64) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrUnknownRole, "El rol especificado no existe").
		WithDetails(map[string]any{"id_rol": id})
}

func usernameTaken(updating bool) error {
	msg := "El usuario ya existe"
	if updating {
		msg = "El nombre de usuario ya está en uso"
	}
	return pkgerrors.Wrap(pkgerrors.CodeConflict, ErrUsernameTaken, msg)
}

func userNotFound() error {
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrUserNotFound, "Usuario no encontrado")
}

func noFieldsToUpdate() error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrNoFieldsToUpdate, "No hay campos para actualizar")
}

func cannotDeleteSelf() error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrCannotDeleteSelf, "No puedes eliminar tu propio usuario")
}

func userHasQuotations() error {
	return pkgerrors.Wrap(pkgerrors.CodeConflict, ErrUserHasQuotations, "No se puede eliminar el usuario porque tiene cotizaciones asociadas")
}
