package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code is the machine-readable failure class returned in the "error" field.
type Code string

const (
	CodeValidation     Code = "VALIDATION_ERROR"
	CodeUnauthorized   Code = "UNAUTHORIZED"
	CodeForbidden      Code = "FORBIDDEN"
	CodeNotFound       Code = "NOT_FOUND"
	CodeConflict       Code = "CONFLICT"
	CodeStateConflict  Code = "STATE_CONFLICT"
	CodeIdempotency    Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit      Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal       Code = "INTERNAL_ERROR"
	CodeDependency     Code = "DEPENDENCY_ERROR"
	CodeNotImplemented Code = "NOT_IMPLEMENTED"
)

// Kind describes how a code is rendered to the client.
type Kind struct {
	Status int
	// Fallback is sent when the error carries no message of its own, and
	// always when Opaque is set.
	Fallback string
	// Opaque codes never leak their message or details.
	Opaque      bool
	ShowDetails bool
}

// Uniqueness and precondition failures are client errors (400), not 409.
var kinds = map[Code]Kind{
	CodeValidation:     {Status: http.StatusBadRequest, Fallback: "Datos de entrada inválidos", ShowDetails: true},
	CodeUnauthorized:   {Status: http.StatusUnauthorized, Fallback: "Token inválido o expirado"},
	CodeForbidden:      {Status: http.StatusForbidden, Fallback: "Acceso denegado"},
	CodeNotFound:       {Status: http.StatusNotFound, Fallback: "Recurso no encontrado", ShowDetails: true},
	CodeConflict:       {Status: http.StatusBadRequest, Fallback: "Conflicto con un registro existente", ShowDetails: true},
	CodeStateConflict:  {Status: http.StatusBadRequest, Fallback: "Transición de estado no permitida", ShowDetails: true},
	CodeIdempotency:    {Status: http.StatusConflict, Fallback: "Idempotency-Key reutilizada con otro contenido", ShowDetails: true},
	CodeRateLimit:      {Status: http.StatusTooManyRequests, Fallback: "Demasiados intentos, intente más tarde"},
	CodeInternal:       {Status: http.StatusInternalServerError, Fallback: "Error interno del servidor", Opaque: true},
	CodeDependency:     {Status: http.StatusInternalServerError, Fallback: "Error interno del servidor", Opaque: true},
	CodeNotImplemented: {Status: http.StatusNotImplemented, Fallback: "Funcionalidad no implementada"},
}

// KindOf returns the rendering rules for code. Unknown codes render as
// internal errors.
func KindOf(code Code) Kind {
	if k, ok := kinds[code]; ok {
		return k
	}
	return kinds[CodeInternal]
}

// Error is a classified failure with an optional client-facing payload.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap classifies err. A nil err behaves like New.
func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails attaches the "detalles" payload and returns e.
func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

// Public returns the message and details safe to send to the client.
func (e *Error) Public() (string, any) {
	k := KindOf(e.Code())
	msg := e.Message()
	if k.Opaque || msg == "" {
		msg = k.Fallback
	}
	if k.Opaque || !k.ShowDetails {
		return msg, nil
	}
	return msg, e.Details()
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause == nil:
		return fmt.Sprintf("%s: %s", e.code, e.message)
	default:
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// CodeOf returns the code of the outermost typed error in err's chain, or
// CodeInternal when there is none.
func CodeOf(err error) Code {
	if typed := As(err); typed != nil {
		return typed.Code()
	}
	return CodeInternal
}

// Is reports whether err is classified as code.
func Is(err error, code Code) bool {
	return As(err) != nil && CodeOf(err) == code
}
