package controllers

import (
	"net/http"
	"strings"

	"github.com/medsupply/cotizaciones-api/api/responses"
	"github.com/medsupply/cotizaciones-api/api/validators"
	"github.com/medsupply/cotizaciones-api/internal/clients"
	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
	"github.com/medsupply/cotizaciones-api/pkg/logger"
)

type clientRequest struct {
	RUT     *string `json:"rut" validate:"omitempty,max=15"`
	Name    *string `json:"nombre" validate:"omitempty,max=150"`
	Email   *string `json:"correo" validate:"omitempty,max=150"`
	Phone   *string `json:"telefono" validate:"omitempty,max=30"`
	Address *string `json:"direccion"`
}

func (r clientRequest) toCreateInput() clients.CreateInput {
	return clients.CreateInput{
		RUT:     deref(r.RUT),
		Name:    deref(r.Name),
		Email:   r.Email,
		Phone:   r.Phone,
		Address: r.Address,
	}
}

func (r clientRequest) toPatch() clients.Patch {
	return clients.Patch{
		RUT:     r.RUT,
		Name:    r.Name,
		Email:   r.Email,
		Phone:   r.Phone,
		Address: r.Address,
	}
}

func ClientList(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		q := r.URL.Query()
		filters := clients.ListFilters{
			Name:  strings.TrimSpace(q.Get("nombre")),
			RUT:   strings.TrimSpace(q.Get("rut")),
			Email: strings.TrimSpace(q.Get("correo")),
		}
		page, err := svc.List(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func ClientGet(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		client, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, client)
	}
}

func ClientCreate(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload clientRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		client, err := svc.Create(r.Context(), payload.toCreateInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeOutcome(w, http.StatusCreated, "Cliente creado exitosamente", "cliente", client)
	}
}

func ClientUpdate(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload clientRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		client, err := svc.Update(r.Context(), id, payload.toPatch())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeOutcome(w, http.StatusOK, "Cliente actualizado exitosamente", "cliente", client)
	}
}

func ClientDelete(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeOutcome(w, http.StatusOK, "Cliente eliminado exitosamente", "id_cliente", id)
	}
}

type rutRequest struct {
	RUT string `json:"rut"`
}

// ClientCheckRUT validates a RUT without touching storage. It is public.
func ClientCheckRUT(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload rutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if strings.TrimSpace(payload.RUT) == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "RUT es obligatorio"))
			return
		}
		responses.WriteSuccess(w, svc.CheckRUT(payload.RUT))
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
