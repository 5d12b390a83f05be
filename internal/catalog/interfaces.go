package catalog

import (
	"context"

	"github.com/medsupply/cotizaciones-api/pkg/db/models"
	"github.com/medsupply/cotizaciones-api/pkg/pagination"
)

// Repository is the persistence surface shared by products and categories.
type Repository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	FindProduct(ctx context.Context, id int64) (*Product, error)
	FindProductByCode(ctx context.Context, code string) (*Product, error)
	CodeTaken(ctx context.Context, code string, excludeID int64) (bool, error)
	ListProducts(ctx context.Context, filters ProductFilters, params pagination.Params) ([]Product, int64, error)
	UpdateProduct(ctx context.Context, id int64, updates map[string]any) (int64, error)
	DeleteProduct(ctx context.Context, id int64) (int64, error)
	CountProductLines(ctx context.Context, productID int64) (int64, error)

	CategoryExists(ctx context.Context, id int64) (bool, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	FindCategory(ctx context.Context, id int64) (*Category, error)
	CategoryNameTaken(ctx context.Context, name string, excludeID int64) (bool, error)
	ListCategories(ctx context.Context) ([]Category, error)
	ProductsInCategory(ctx context.Context, categoryID int64) ([]Product, error)
	UpdateCategory(ctx context.Context, id int64, updates map[string]any) error
	DeleteCategory(ctx context.Context, id int64) (int64, error)
	CountCategoryProducts(ctx context.Context, categoryID int64) (int64, error)
}
