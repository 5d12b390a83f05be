// Package rut validates and formats Chilean national identification numbers
// (Rol Único Tributario) using the modulus-11 check digit.
package rut

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrEmpty      = errors.New("rut vacío")
	ErrMalformed  = errors.New("rut con formato inválido")
	ErrCheckDigit = errors.New("dígito verificador incorrecto")
)

// Bodies run up to 99.999.999; any shorter numeric body is accepted.
const maxBodyDigits = 8

// Clean strips dots, hyphens and whitespace and upper-cases the check digit.
func Clean(value string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(value) {
		switch r {
		case '.', '-', ' ':
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// CheckDigit computes the modulus-11 check digit for a numeric body.
func CheckDigit(body string) (string, error) {
	if body == "" {
		return "", ErrMalformed
	}
	sum := 0
	multiplier := 2
	for i := len(body) - 1; i >= 0; i-- {
		c := body[i]
		if c < '0' || c > '9' {
			return "", ErrMalformed
		}
		sum += int(c-'0') * multiplier
		multiplier++
		if multiplier > 7 {
			multiplier = 2
		}
	}
	switch dv := 11 - (sum % 11); dv {
	case 11:
		return "0", nil
	case 10:
		return "K", nil
	default:
		return strconv.Itoa(dv), nil
	}
}

// Split returns the numeric body and check digit of a cleaned value.
func Split(value string) (body, dv string, err error) {
	cleaned := Clean(value)
	if cleaned == "" {
		return "", "", ErrEmpty
	}
	if len(cleaned) < 2 || len(cleaned) > maxBodyDigits+1 {
		return "", "", ErrMalformed
	}
	body, dv = cleaned[:len(cleaned)-1], cleaned[len(cleaned)-1:]
	for _, c := range body {
		if c < '0' || c > '9' {
			return "", "", ErrMalformed
		}
	}
	if dv != "K" && (dv[0] < '0' || dv[0] > '9') {
		return "", "", ErrMalformed
	}
	return body, dv, nil
}

// Validate reports why value is not a valid RUT, or nil when it is.
func Validate(value string) error {
	body, dv, err := Split(value)
	if err != nil {
		return err
	}
	expected, err := CheckDigit(body)
	if err != nil {
		return err
	}
	if expected != dv {
		return ErrCheckDigit
	}
	return nil
}

// IsValid reports whether value carries a correct check digit.
func IsValid(value string) bool {
	return Validate(value) == nil
}

// Format returns the canonical "body-dv" representation. Leading zeros in the
// body are dropped so "08.765.432-1" and "8765432-1" share one key.
func Format(value string) (string, error) {
	if err := Validate(value); err != nil {
		return "", err
	}
	body, dv, _ := Split(value)
	trimmed := strings.TrimLeft(body, "0")
	if trimmed == "" {
		trimmed = "0"
	}
	return trimmed + "-" + dv, nil
}
