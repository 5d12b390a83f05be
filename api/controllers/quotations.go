package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/medsupply/cotizaciones-api/api/middleware"
	"github.com/medsupply/cotizaciones-api/api/responses"
	"github.com/medsupply/cotizaciones-api/api/validators"
	"github.com/medsupply/cotizaciones-api/internal/quotations"
	"github.com/medsupply/cotizaciones-api/pkg/enums"
	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
	"github.com/medsupply/cotizaciones-api/pkg/logger"
	"github.com/medsupply/cotizaciones-api/pkg/pagination"
)

// QuotationRenderer turns a quotation detail into a printable document.
type QuotationRenderer interface {
	Render(detail *quotations.Detail) ([]byte, error)
}

type quotationLineRequest struct {
	ProductID int64            `json:"id_producto"`
	Quantity  *int             `json:"cantidad"`
	Discount  *decimal.Decimal `json:"descuento"`
}

type createQuotationRequest struct {
	ClientID     int64                  `json:"id_cliente"`
	IssueDate    string                 `json:"fecha_emision"`
	Observations *string                `json:"observaciones"`
	Lines        []quotationLineRequest `json:"productos"`
}

func (r createQuotationRequest) toInput(userID int64) quotations.CreateInput {
	lines := make([]quotations.LineInput, 0, len(r.Lines))
	for _, l := range r.Lines {
		line := quotations.LineInput{ProductID: l.ProductID, Quantity: l.Quantity}
		if l.Discount != nil {
			line.Discount = *l.Discount
		}
		lines = append(lines, line)
	}
	return quotations.CreateInput{
		ClientID:     r.ClientID,
		IssueDate:    strings.TrimSpace(r.IssueDate),
		Observations: r.Observations,
		Lines:        lines,
		UserID:       userID,
	}
}

type updateQuotationRequest struct {
	State        *string `json:"estado"`
	Observations *string `json:"observaciones"`
}

func QuotationList(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, params, err := parseQuotationFilters(r)
		if err != nil {
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

func parseQuotationFilters(r *http.Request) (quotations.ListFilters, pagination.Params, error) {
	var filters quotations.ListFilters
	params, err := validators.ParsePagination(r)
	if err != nil {
		return filters, params, err
	}
	if filters.ClientID, err = validators.ParseOptionalInt64(r, "id_cliente"); err != nil {
		return filters, params, err
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("estado")); raw != "" {
		state, parseErr := enums.ParseQuotationState(raw)
		if parseErr != nil {
			return filters, params, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "Estado inválido").
				WithDetails(map[string]any{"estados_validos": enums.QuotationStates()})
		}
		filters.State = &state
	}
	if filters.DateFrom, err = validators.ParseOptionalDate(r, "fecha_desde"); err != nil {
		return filters, params, err
	}
	if filters.DateTo, err = validators.ParseOptionalDate(r, "fecha_hasta"); err != nil {
		return filters, params, err
	}
	return filters, params, nil
}

func QuotationGet(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// QuotationCreate records a quotation issued by the authenticated caller.
func QuotationCreate(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := middleware.PrincipalFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Token inválido"))
			return
		}
		var payload createQuotationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		header, err := svc.Create(r.Context(), payload.toInput(principal.UserID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeOutcome(w, http.StatusCreated, "Cotización creada exitosamente", "cotizacion", header)
	}
}

func QuotationUpdate(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateQuotationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		header, err := svc.Update(r.Context(), id, quotations.Patch{State: payload.State, Observations: payload.Observations})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeOutcome(w, http.StatusOK, "Cotización actualizada exitosamente", "cotizacion", header)
	}
}

func QuotationDelete(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
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
		writeOutcome(w, http.StatusOK, "Cotización eliminada exitosamente", "id_cotizacion", id)
	}
}

func QuotationStats(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// QuotationDocument renders the quotation as a PDF attachment.
func QuotationDocument(svc quotations.Service, renderer QuotationRenderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if renderer == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotImplemented, "Generación de PDF no disponible"))
			return
		}
		detail, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body, err := renderer.Render(detail)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generar pdf"))
			return
		}
		responses.WriteFile(w, "application/pdf", quotations.Filename(id), body)
	}
}
