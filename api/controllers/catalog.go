package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/medsupply/cotizaciones-api/api/responses"
	"github.com/medsupply/cotizaciones-api/api/validators"
	"github.com/medsupply/cotizaciones-api/internal/catalog"
	"github.com/medsupply/cotizaciones-api/pkg/logger"
)

// nullableID remembers whether the key was present so a patch can clear a
// reference with an explicit null.
type nullableID struct {
	Set   bool
	Value *int64
}

func (n *nullableID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

type productRequest struct {
	Code        *string          `json:"codigo" validate:"omitempty,max=50"`
	Name        *string          `json:"nombre" validate:"omitempty,max=150"`
	Description *string          `json:"descripcion"`
	Price       *decimal.Decimal `json:"precio"`
	CategoryID  nullableID       `json:"id_categoria"`
	Stock       *int             `json:"stock"`
	Active      *bool            `json:"activo"`
}

func (r productRequest) toInput() catalog.ProductInput {
	return catalog.ProductInput{
		Code:        deref(r.Code),
		Name:        deref(r.Name),
		Description: r.Description,
		Price:       r.Price,
		CategoryID:  r.CategoryID.Value,
		Stock:       r.Stock,
		Active:      r.Active,
	}
}

func (r productRequest) toPatch() catalog.ProductPatch {
	return catalog.ProductPatch{
		Code:        r.Code,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    catalog.CategoryRef{Set: r.CategoryID.Set, Value: r.CategoryID.Value},
		Stock:       r.Stock,
		Active:      r.Active,
	}
}

func ProductList(svc catalog.ProductService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		categoryID, err := validators.ParseOptionalInt64(r, "id_categoria")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		active, err := validators.ParseOptionalBool(r, "activo")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		q := r.URL.Query()
		filters := catalog.ProductFilters{
			Name:       strings.TrimSpace(q.Get("nombre")),
			Code:       strings.TrimSpace(q.Get("codigo")),
			CategoryID: categoryID,
			Active:     active,
		}
		page, err := svc.List(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func ProductGet(svc catalog.ProductService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ProductGetByCode(svc catalog.ProductService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := svc.GetByCode(r.Context(), chi.URLParam(r, "codigo"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ProductCreate(svc catalog.ProductService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeOutcome(w, http.StatusCreated, "Producto creado exitosamente", "producto", product)
	}
}

func ProductUpdate(svc catalog.ProductService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Update(r.Context(), id, payload.toPatch())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeOutcome(w, http.StatusOK, "Producto actualizado exitosamente", "producto", product)
	}
}

func ProductDelete(svc catalog.ProductService, logg *logger.Logger) http.HandlerFunc {
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
		writeOutcome(w, http.StatusOK, "Producto eliminado exitosamente", "id_producto", id)
	}
}

type stockRequest struct {
	Stock *int `json:"stock"`
}

func ProductSetStock(svc catalog.ProductService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload stockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.SetStock(r.Context(), id, payload.Stock)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeOutcome(w, http.StatusOK, "Stock actualizado exitosamente", "producto", product)
	}
}

type activeRequest struct {
	Active *bool `json:"activo"`
}

func ProductSetActive(svc catalog.ProductService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		// An empty body toggles the flag.
		var payload activeRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		product, err := svc.SetActive(r.Context(), id, payload.Active)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		message := "Producto desactivado exitosamente"
		if product.Active {
			message = "Producto activado exitosamente"
		}
		writeOutcome(w, http.StatusOK, message, "producto", product)
	}
}

type categoryRequest struct {
	Name        string  `json:"nombre_categoria" validate:"max=100"`
	Description *string `json:"descripcion"`
}

func (r categoryRequest) toInput() catalog.CategoryInput {
	return catalog.CategoryInput{Name: r.Name, Description: r.Description}
}

func CategoryList(svc catalog.CategoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

func CategoryGet(svc catalog.CategoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, category)
	}
}

func CategoryCreate(svc catalog.CategoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload categoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeOutcome(w, http.StatusCreated, "Categoría creada exitosamente", "categoria", category)
	}
}

func CategoryUpdate(svc catalog.CategoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload categoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := svc.Update(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeOutcome(w, http.StatusOK, "Categoría actualizada exitosamente", "categoria", category)
	}
}

func CategoryDelete(svc catalog.CategoryService, logg *logger.Logger) http.HandlerFunc {
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
		writeOutcome(w, http.StatusOK, "Categoría eliminada exitosamente", "id_categoria", id)
	}
}
