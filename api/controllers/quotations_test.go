package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medsupply/cotizaciones-api/internal/quotations"
	"github.com/medsupply/cotizaciones-api/pkg/config"
	"github.com/medsupply/cotizaciones-api/pkg/enums"
	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
	"github.com/medsupply/cotizaciones-api/pkg/logger"
	"github.com/medsupply/cotizaciones-api/pkg/pagination"
)

type fakeQuotations struct {
	quotations.Service
	created quotations.CreateInput
	patch   quotations.Patch
	filters quotations.ListFilters
	err     error
}

func (f *fakeQuotations) Create(ctx context.Context, input quotations.CreateInput) (*quotations.Header, error) {
	f.created = input
	if f.err != nil {
		return nil, f.err
	}
	return &quotations.Header{ID: 10, ClientID: input.ClientID, UserID: input.UserID, State: enums.QuotationStatePending, Total: decimal.RequireFromString("19040")}, nil
}

func (f *fakeQuotations) Update(ctx context.Context, id int64, patch quotations.Patch) (*quotations.Header, error) {
	f.patch = patch
	if f.err != nil {
		return nil, f.err
	}
	return &quotations.Header{ID: id, State: enums.QuotationStateApproved}, nil
}

func (f *fakeQuotations) Get(ctx context.Context, id int64) (*quotations.Detail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &quotations.Detail{Header: quotations.Header{ID: id, ClientName: "Clínica Sur"}}, nil
}

func (f *fakeQuotations) List(ctx context.Context, filters quotations.ListFilters, params pagination.Params) (pagination.Page[quotations.ListItem], error) {
	f.filters = filters
	return pagination.NewPage[quotations.ListItem](params, 0, nil), nil
}

type fakeRenderer struct {
	rendered int64
	err      error
}

func (f *fakeRenderer) Render(detail *quotations.Detail) ([]byte, error) {
	f.rendered = detail.ID
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.3 test"), nil
}

func TestQuotationCreateUsesCallerAsIssuer(t *testing.T) {
	svc := &fakeQuotations{}
	req := jsonRequest(http.MethodPost, "/cotizaciones", `{
		"id_cliente": 3,
		"fecha_emision": "2026-03-01",
		"productos": [{"id_producto": 1, "cantidad": 2, "descuento": 10}, {"id_producto": 2}]
	}`)
	req = asUser(req, 42, "vendedor")
	rec := serve(t, http.MethodPost, "/cotizaciones", QuotationCreate(svc, logger.Nop()), req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.EqualValues(t, 42, svc.created.UserID)
	assert.EqualValues(t, 3, svc.created.ClientID)
	assert.Equal(t, "2026-03-01", svc.created.IssueDate)
	require.Len(t, svc.created.Lines, 2)
	require.NotNil(t, svc.created.Lines[0].Quantity)
	assert.Equal(t, 2, *svc.created.Lines[0].Quantity)
	assert.True(t, svc.created.Lines[0].Discount.Equal(decimal.NewFromInt(10)))
	assert.Nil(t, svc.created.Lines[1].Quantity)
	assert.True(t, svc.created.Lines[1].Discount.IsZero())

	body := decodeMap(t, rec)
	assert.Equal(t, "Cotización creada exitosamente", body["mensaje"])
	assert.Contains(t, body, "cotizacion")
}

func TestQuotationCreateRequiresPrincipal(t *testing.T) {
	req := jsonRequest(http.MethodPost, "/cotizaciones", `{"id_cliente": 3}`)
	rec := serve(t, http.MethodPost, "/cotizaciones", QuotationCreate(&fakeQuotations{}, logger.Nop()), req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestQuotationCreateSurfacesStockError(t *testing.T) {
	svc := &fakeQuotations{err: pkgerrors.New(pkgerrors.CodeValidation, "Stock insuficiente").
		WithDetails(map[string]any{"id_producto": 1, "stock_disponible": 1, "cantidad_solicitada": 5})}
	req := asUser(jsonRequest(http.MethodPost, "/cotizaciones", `{"id_cliente":3,"fecha_emision":"2026-03-01","productos":[{"id_producto":1,"cantidad":5}]}`), 1, "admin")
	rec := serve(t, http.MethodPost, "/cotizaciones", QuotationCreate(svc, logger.Nop()), req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErr(t, rec)
	assert.Equal(t, "Stock insuficiente", body.Message)
	assert.NotNil(t, body.Details)
}

func TestQuotationListParsesFilters(t *testing.T) {
	svc := &fakeQuotations{}
	req := httptest.NewRequest(http.MethodGet, "/cotizaciones?estado=aprobada&id_cliente=7&fecha_desde=2026-01-01", nil)
	rec := serve(t, http.MethodGet, "/cotizaciones", QuotationList(svc, logger.Nop()), req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, svc.filters.State)
	assert.Equal(t, enums.QuotationStateApproved, *svc.filters.State)
	require.NotNil(t, svc.filters.ClientID)
	assert.EqualValues(t, 7, *svc.filters.ClientID)
	require.NotNil(t, svc.filters.DateFrom)
	assert.Equal(t, "2026-01-01", svc.filters.DateFrom.String())
	assert.Nil(t, svc.filters.DateTo)
}

func TestQuotationListRejectsUnknownState(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/cotizaciones?estado=archivada", nil)
	rec := serve(t, http.MethodGet, "/cotizaciones", QuotationList(&fakeQuotations{}, logger.Nop()), req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErr(t, rec)
	assert.Equal(t, "Estado inválido", body.Message)
	details, ok := body.Details.(map[string]any)
	require.True(t, ok)
	assert.Len(t, details["estados_validos"], len(enums.QuotationStates()))
}

func TestQuotationListRejectsBadDate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/cotizaciones?fecha_hasta=01-02-2026", nil)
	rec := serve(t, http.MethodGet, "/cotizaciones", QuotationList(&fakeQuotations{}, logger.Nop()), req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Formato de fecha inválido. Use YYYY-MM-DD", decodeErr(t, rec).Message)
}

func TestQuotationUpdateForwardsPatch(t *testing.T) {
	svc := &fakeQuotations{}
	req := jsonRequest(http.MethodPut, "/cotizaciones/5", `{"estado":"aprobada"}`)
	rec := serve(t, http.MethodPut, "/cotizaciones/{id}", QuotationUpdate(svc, logger.Nop()), req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, svc.patch.State)
	assert.Equal(t, "aprobada", *svc.patch.State)
	assert.Nil(t, svc.patch.Observations)
}

func TestQuotationUpdateMapsStateConflict(t *testing.T) {
	svc := &fakeQuotations{err: pkgerrors.New(pkgerrors.CodeStateConflict, "No se puede cambiar el estado de una cotización enviada")}
	req := jsonRequest(http.MethodPut, "/cotizaciones/5", `{"estado":"pendiente"}`)
	rec := serve(t, http.MethodPut, "/cotizaciones/{id}", QuotationUpdate(svc, logger.Nop()), req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeStateConflict), decodeErr(t, rec).Code)
}

func TestQuotationDocumentStreamsPDF(t *testing.T) {
	renderer := &fakeRenderer{}
	req := httptest.NewRequest(http.MethodGet, "/cotizaciones/8/pdf", nil)
	rec := serve(t, http.MethodGet, "/cotizaciones/{id}/pdf", QuotationDocument(&fakeQuotations{}, renderer, logger.Nop()), req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 8, renderer.rendered)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="cotizacion_8.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3 test", rec.Body.String())
}

func TestQuotationDocumentWithoutRenderer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/cotizaciones/8/pdf", nil)
	rec := serve(t, http.MethodGet, "/cotizaciones/{id}/pdf", QuotationDocument(&fakeQuotations{}, nil, logger.Nop()), req)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestQuotationDocumentRenderFailureIsInternal(t *testing.T) {
	renderer := &fakeRenderer{err: errors.New("font missing")}
	req := httptest.NewRequest(http.MethodGet, "/cotizaciones/8/pdf", nil)
	rec := serve(t, http.MethodGet, "/cotizaciones/{id}/pdf", QuotationDocument(&fakeQuotations{}, renderer, logger.Nop()), req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Error interno del servidor", decodeErr(t, rec).Message)
}

func TestQuotationDocumentRendersRealPDF(t *testing.T) {
	renderer := quotations.NewDocumentRenderer(testCompany())
	req := httptest.NewRequest(http.MethodGet, "/cotizaciones/8/pdf", nil)
	rec := serve(t, http.MethodGet, "/cotizaciones/{id}/pdf", QuotationDocument(&fakeQuotations{}, renderer, logger.Nop()), req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, len(rec.Body.Bytes()) > 4)
	assert.Equal(t, "%PDF", rec.Body.String()[:4])
}

func testCompany() config.CompanyConfig {
	return config.CompanyConfig{Name: "Insumos Médicos SpA", RUT: "76.123.456-0", Email: "ventas@insumos.cl"}
}
