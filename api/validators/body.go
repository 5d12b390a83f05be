package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
	"github.com/medsupply/cotizaciones-api/pkg/rut"
)

const maxBodyBytes = 1 << 20

const invalidInput = "Datos de entrada inválidos"

var validate = newValidator()

// Field errors are keyed by the json name, so the client sees "id_cliente"
// rather than "ClientID".
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "", "-":
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("rut", func(fl validator.FieldLevel) bool {
		return rut.IsValid(fl.Field().String())
	})
	return v
}

// tagMessages holds the Spanish text per tag; "%s" receives the tag param.
var tagMessages = map[string]string{
	"required": "es obligatorio",
	"min":      "debe tener al menos %s",
	"max":      "debe tener como máximo %s",
	"gt":       "debe ser mayor que %s",
	"gte":      "debe ser mayor o igual a %s",
	"email":    "debe ser un correo válido",
	"oneof":    "debe ser uno de: %s",
	"rut":      "RUT inválido. Formato esperado: 12345678-9",
}

// DecodeJSONBody reads exactly one JSON object into dest and validates it.
// Unknown fields and trailing data are rejected.
func DecodeJSONBody(r *http.Request, dest any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	defer func() { _, _ = io.Copy(io.Discard, body) }()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	err := dec.Decode(dest)
	if err == nil && dec.More() {
		err = errors.New("unexpected data after the JSON object")
	}
	switch {
	case errors.Is(err, io.EOF):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "El cuerpo de la solicitud está vacío")
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Cuerpo de la solicitud inválido").
			WithDetails(map[string]any{"error": err.Error()})
	}
	return ValidateStruct(dest)
}

// ValidateStruct runs the validate tags of dest and maps failures to a
// field -> message detail map.
func ValidateStruct(dest any) error {
	err := validate.Struct(dest)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, invalidInput)
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = fieldMessage(fe)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, invalidInput).WithDetails(details)
}

func fieldMessage(fe validator.FieldError) string {
	tmpl, ok := tagMessages[fe.Tag()]
	if !ok {
		return "es inválido"
	}
	if strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, fe.Param())
	}
	return tmpl
}
