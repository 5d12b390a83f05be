package validators

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
	"github.com/medsupply/cotizaciones-api/pkg/pagination"
	"github.com/medsupply/cotizaciones-api/pkg/types"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "El parámetro debe ser numérico").WithDetails(map[string]any{"campo": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "Parámetro fuera de rango").WithDetails(map[string]any{"campo": key, "min": min, "max": max})
	}
	return value, nil
}

// ParsePagination reads page and limit. Out-of-range values are clamped by
// pagination.Params.Normalize rather than rejected.
func ParsePagination(r *http.Request) (pagination.Params, error) {
	page, err := ParseQueryInt(r, "page", pagination.DefaultPage, math.MinInt32, math.MaxInt32)
	if err != nil {
		return pagination.Params{}, err
	}
	limit, err := ParseQueryInt(r, "limit", pagination.DefaultLimit, math.MinInt32, math.MaxInt32)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Page: page, Limit: limit}.Normalize(), nil
}

// ParseOptionalInt64 returns nil when key is absent.
func ParseOptionalInt64(r *http.Request, key string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "El parámetro debe ser numérico").WithDetails(map[string]any{"campo": key})
	}
	return &value, nil
}

// ParseOptionalBool accepts true/false/1/0 and returns nil when key is absent.
func ParseOptionalBool(r *http.Request, key string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "El parámetro debe ser true o false").WithDetails(map[string]any{"campo": key})
	}
	return &value, nil
}

// ParseOptionalDate reads a YYYY-MM-DD query value.
func ParseOptionalDate(r *http.Request, key string) (*types.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := types.ParseDate(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Formato de fecha inválido. Use YYYY-MM-DD").WithDetails(map[string]any{"campo": key})
	}
	return &value, nil
}

// PathID parses a positive integer URL parameter.
func PathID(r *http.Request, key string) (int64, error) {
	raw := chi.URLParam(r, key)
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "ID inválido").WithDetails(map[string]any{"campo": key, "valor": raw})
	}
	return value, nil
}
