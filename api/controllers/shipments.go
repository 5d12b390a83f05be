package controllers

import (
	"net/http"
	"strings"

	"github.com/medsupply/cotizaciones-api/api/responses"
	"github.com/medsupply/cotizaciones-api/api/validators"
	"github.com/medsupply/cotizaciones-api/internal/shipments"
	"github.com/medsupply/cotizaciones-api/pkg/enums"
	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
	"github.com/medsupply/cotizaciones-api/pkg/logger"
	"github.com/medsupply/cotizaciones-api/pkg/types"
)

type createShipmentRequest struct {
	QuotationID       int64   `json:"id_cotizacion"`
	SendDate          string  `json:"fecha_envio"`
	EstimatedDelivery *string `json:"fecha_entrega_estimada"`
	Address           string  `json:"direccion_envio"`
	TrackingNumber    *string `json:"tracking_number" validate:"omitempty,max=100"`
	Observations      *string `json:"observaciones"`
}

type updateShipmentRequest struct {
	SendDate          *types.Date        `json:"fecha_envio"`
	EstimatedDelivery types.NullableDate `json:"fecha_entrega_estimada"`
	ActualDelivery    types.NullableDate `json:"fecha_entrega_real"`
	Address           *string            `json:"direccion_envio"`
	State             *string            `json:"estado"`
	TrackingNumber    *string            `json:"tracking_number" validate:"omitempty,max=100"`
	Observations      *string            `json:"observaciones"`
}

func (r updateShipmentRequest) toPatch() shipments.Patch {
	return shipments.Patch{
		SendDate:          r.SendDate,
		EstimatedDelivery: r.EstimatedDelivery,
		ActualDelivery:    r.ActualDelivery,
		Address:           r.Address,
		State:             r.State,
		TrackingNumber:    r.TrackingNumber,
		Observations:      r.Observations,
	}
}

func ShipmentList(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var filters shipments.ListFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("estado")); raw != "" {
			state, parseErr := enums.ParseShipmentState(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "Estado inválido").
					WithDetails(map[string]any{"estados_validos": enums.ShipmentStates()}))
				return
			}
			filters.State = &state
		}
		if filters.DateFrom, err = validators.ParseOptionalDate(r, "fecha_desde"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filters.DateTo, err = validators.ParseOptionalDate(r, "fecha_hasta"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func ShipmentGet(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func ShipmentGetByQuotation(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quotationID, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.GetByQuotation(r.Context(), quotationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func ShipmentCreate(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createShipmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Create(r.Context(), shipments.CreateInput{
			QuotationID:       payload.QuotationID,
			SendDate:          strings.TrimSpace(payload.SendDate),
			EstimatedDelivery: payload.EstimatedDelivery,
			Address:           payload.Address,
			TrackingNumber:    payload.TrackingNumber,
			Observations:      payload.Observations,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeOutcome(w, http.StatusCreated, "Despacho creado exitosamente", "despacho", view)
	}
}

func ShipmentUpdate(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateShipmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Update(r.Context(), id, payload.toPatch())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeOutcome(w, http.StatusOK, "Despacho actualizado exitosamente", "despacho", view)
	}
}

// ShipmentDelete removes the shipment and returns its quotation to approved.
func ShipmentDelete(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
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
		writeOutcome(w, http.StatusOK, "Despacho eliminado exitosamente", "id_despacho", id)
	}
}

func ShipmentStats(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
