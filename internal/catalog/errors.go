package catalog

import (
	"errors"

	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
)

var (
	ErrMissingProductFields = errors.New("code, name and price are required")
	ErrInvalidPrice         = errors.New("price must be positive")
	ErrInvalidStock         = errors.New("stock must not be negative")
	ErrMissingStock         = errors.New("stock is required")
	ErrDuplicateCode        = errors.New("product code already registered")
	ErrProductNotFound      = errors.New("product not found")
	ErrProductReferenced    = errors.New("product referenced by quotations")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrUnknownCategory      = errors.New("referenced category does not exist")
	ErrMissingCategoryName  = errors.New("category name is required")
	ErrDuplicateCategory    = errors.New("category name already registered")
	ErrCategoryInUse        = errors.New("category has products")
	ErrNoFieldsToUpdate     = errors.New("no fields to update")
)

func missingProductFields() error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrMissingProductFields, "Código, nombre y precio son obligatorios")
}

func invalidPrice() error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrInvalidPrice, "El precio debe ser un número mayor a 0")
}

func invalidStock() error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrInvalidStock, "El stock debe ser un número mayor o igual a 0")
}

func missingStock() error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrMissingStock, "El campo stock es obligatorio")
}

func duplicateCode(updating bool) error {
	msg := "Ya existe un producto con ese código"
	if updating {
		msg = "El código ya está en uso por otro producto"
	}
	return pkgerrors.Wrap(pkgerrors.CodeConflict, ErrDuplicateCode, msg)
}

func productNotFound() error {
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrProductNotFound, "Producto no encontrado")
}

func productReferenced(count int64) error {
	return pkgerrors.Wrap(pkgerrors.CodeConflict, ErrProductReferenced, "No se puede eliminar el producto porque está asociado a cotizaciones").
		WithDetails(map[string]any{
			"cotizaciones_asociadas": count,
			"sugerencia":             "Considere desactivar el producto en lugar de eliminarlo",
		})
}

func categoryNotFound() error {
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrCategoryNotFound, "Categoría no encontrada")
}

func unknownCategory(id int64) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrUnknownCategory, "La categoría especificada no existe").
		WithDetails(map[string]any{"id_categoria": id})
}

func missingCategoryName() error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrMissingCategoryName, "El nombre de la categoría es obligatorio")
}

func duplicateCategory(updating bool) error {
	msg := "Ya existe una categoría con ese nombre"
	if updating {
		msg = "El nombre ya está en uso por otra categoría"
	}
	return pkgerrors.Wrap(pkgerrors.CodeConflict, ErrDuplicateCategory, msg)
}

func categoryInUse(count int64) error {
	return pkgerrors.Wrap(pkgerrors.CodeConflict, ErrCategoryInUse, "No se puede eliminar la categoría porque tiene productos asociados").
		WithDetails(map[string]any{
			"productos_asociados": count,
			"sugerencia":          "Reasigne los productos a otra categoría antes de eliminar",
		})
}

func noFieldsToUpdate() error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrNoFieldsToUpdate, "No hay campos para actualizar")
}
