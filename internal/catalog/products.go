package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/medsupply/cotizaciones-api/pkg/db"
	"github.com/medsupply/cotizaciones-api/pkg/db/models"
	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
	"github.com/medsupply/cotizaciones-api/pkg/pagination"
)

type ProductService interface {
	Create(ctx context.Context, input ProductInput) (*Product, error)
	Get(ctx context.Context, id int64) (*Product, error)
	GetByCode(ctx context.Context, code string) (*Product, error)
	List(ctx context.Context, filters ProductFilters, params pagination.Params) (pagination.Page[Product], error)
	Update(ctx context.Context, id int64, patch ProductPatch) (*Product, error)
	Delete(ctx context.Context, id int64) error
	SetStock(ctx context.Context, id int64, stock *int) (*Product, error)
	SetActive(ctx context.Context, id int64, active *bool) (*Product, error)
}

type productService struct {
	repo Repository
}

func NewProductService(repo Repository) (ProductService, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &productService{repo: repo}, nil
}

func (s *productService) Create(ctx context.Context, input ProductInput) (*Product, error) {
	code := strings.TrimSpace(input.Code)
	name := strings.TrimSpace(input.Name)
	if code == "" || name == "" || input.Price == nil {
		return nil, missingProductFields()
	}
	if !input.Price.IsPositive() {
		return nil, invalidPrice()
	}
	stock := 0
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, invalidStock()
		}
		stock = *input.Stock
	}
	active := true
	if input.Active != nil {
		active = *input.Active
	}

	if taken, err := s.repo.CodeTaken(ctx, code, 0); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verificar código")
	} else if taken {
		return nil, duplicateCode(false)
	}
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	product := &models.Product{
		Code:        code,
		Name:        name,
		Description: input.Description,
		Price:       *input.Price,
		CategoryID:  input.CategoryID,
		Stock:       stock,
		Active:      active,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "productos_codigo_key", "productos.codigo") {
			return nil, duplicateCode(false)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "crear producto")
	}
	return s.Get(ctx, product.ID)
}

func (s *productService) checkCategory(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	ok, err := s.repo.CategoryExists(ctx, *id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verificar categoría")
	}
	if !ok {
		return unknownCategory(*id)
	}
	return nil
}

func (s *productService) Get(ctx context.Context, id int64) (*Product, error) {
	return s.lookup(s.repo.FindProduct(ctx, id))
}

func (s *productService) GetByCode(ctx context.Context, code string) (*Product, error) {
	return s.lookup(s.repo.FindProductByCode(ctx, strings.TrimSpace(code)))
}

func (s *productService) lookup(product *Product, err error) (*Product, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, productNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consultar producto")
	}
	return product, nil
}

func (s *productService) List(ctx context.Context, filters ProductFilters, params pagination.Params) (pagination.Page[Product], error) {
	params = params.Normalize()
	rows, total, err := s.repo.ListProducts(ctx, filters, params)
	if err != nil {
		return pagination.Page[Product]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listar productos")
	}
	if rows == nil {
		rows = []Product{}
	}
	return pagination.NewPage(params, total, rows), nil
}

func (s *productService) Update(ctx context.Context, id int64, patch ProductPatch) (*Product, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, noFieldsToUpdate()
	}

	updates := map[string]any{}
	if patch.Code != nil {
		code := strings.TrimSpace(*patch.Code)
		if code == "" {
			return nil, missingProductFields()
		}
		if taken, err := s.repo.CodeTaken(ctx, code, id); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verificar código")
		} else if taken {
			return nil, duplicateCode(true)
		}
		updates["codigo"] = code
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, missingProductFields()
		}
		updates["nombre"] = name
	}
	if patch.Description != nil {
		updates["descripcion"] = *patch.Description
	}
	if patch.Price != nil {
		if !patch.Price.IsPositive() {
			return nil, invalidPrice()
		}
		updates["precio"] = *patch.Price
	}
	if patch.Category.Set {
		if err := s.checkCategory(ctx, patch.Category.Value); err != nil {
			return nil, err
		}
		if patch.Category.Value == nil {
			updates["id_categoria"] = nil
		} else {
			updates["id_categoria"] = *patch.Category.Value
		}
	}
	if patch.Stock != nil {
		if *patch.Stock < 0 {
			return nil, invalidStock()
		}
		updates["stock"] = *patch.Stock
	}
	if patch.Active != nil {
		updates["activo"] = *patch.Active
	}

	if _, err := s.repo.UpdateProduct(ctx, id, updates); err != nil {
		if db.IsUniqueViolation(err, "productos_codigo_key", "productos.codigo") {
			return nil, duplicateCode(true)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "actualizar producto")
	}
	return s.Get(ctx, id)
}

// Delete refuses products already quoted; deactivation is the alternative.
func (s *productService) Delete(ctx context.Context, id int64) error {
	count, err := s.repo.CountProductLines(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "contar cotizaciones")
	}
	if count > 0 {
		return productReferenced(count)
	}
	affected, err := s.repo.DeleteProduct(ctx, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return productReferenced(0)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "eliminar producto")
	}
	if affected == 0 {
		return productNotFound()
	}
	return nil
}

func (s *productService) SetStock(ctx context.Context, id int64, stock *int) (*Product, error) {
	if stock == nil {
		return nil, missingStock()
	}
	if *stock < 0 {
		return nil, invalidStock()
	}
	return s.setColumn(ctx, id, "stock", *stock)
}

// SetActive sets the flag, or flips it when active is nil.
func (s *productService) SetActive(ctx context.Context, id int64, active *bool) (*Product, error) {
	if active == nil {
		current, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		flipped := !current.Active
		active = &flipped
	}
	return s.setColumn(ctx, id, "activo", *active)
}

func (s *productService) setColumn(ctx context.Context, id int64, column string, value any) (*Product, error) {
	affected, err := s.repo.UpdateProduct(ctx, id, map[string]any{column: value})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "actualizar producto")
	}
	if affected == 0 {
		return nil, productNotFound()
	}
	return s.Get(ctx, id)
}
