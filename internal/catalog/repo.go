package catalog

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/medsupply/cotizaciones-api/pkg/db/models"
	"github.com/medsupply/cotizaciones-api/pkg/pagination"
)

const productColumns = `p.id_producto, p.codigo, p.nombre, p.descripcion, p.precio,
	p.id_categoria, c.nombre_categoria, p.stock, p.activo, p.created_at, p.updated_at`

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) products(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("productos p").
		Joins("LEFT JOIN categorias_producto c ON c.id_categoria = p.id_categoria")
}

func (r *repository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) findProductWhere(ctx context.Context, cond string, arg any) (*Product, error) {
	var rows []Product
	if err := r.products(ctx).Select(productColumns).Where(cond, arg).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *repository) FindProduct(ctx context.Context, id int64) (*Product, error) {
	return r.findProductWhere(ctx, "p.id_producto = ?", id)
}

func (r *repository) FindProductByCode(ctx context.Context, code string) (*Product, error) {
	return r.findProductWhere(ctx, "p.codigo = ?", code)
}

func (r *repository) CodeTaken(ctx context.Context, code string, excludeID int64) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{}).Where("codigo = ?", code)
	if excludeID > 0 {
		q = q.Where("id_producto <> ?", excludeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *repository) productFilters(ctx context.Context, filters ProductFilters) *gorm.DB {
	q := r.products(ctx)
	if s := strings.TrimSpace(filters.Name); s != "" {
		q = q.Where("LOWER(p.nombre) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if s := strings.TrimSpace(filters.Code); s != "" {
		q = q.Where("LOWER(p.codigo) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if filters.CategoryID != nil {
		q = q.Where("p.id_categoria = ?", *filters.CategoryID)
	}
	if filters.Active != nil {
		q = q.Where("p.activo = ?", *filters.Active)
	}
	return q
}

func (r *repository) ListProducts(ctx context.Context, filters ProductFilters, params pagination.Params) ([]Product, int64, error) {
	var total int64
	if err := r.productFilters(ctx, filters).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	params = params.Normalize()
	var rows []Product
	err := r.productFilters(ctx, filters).
		Select(productColumns).
		Order("p.nombre").
		Order("p.id_producto").
		Limit(params.Limit).
		Offset(params.Offset()).
		Scan(&rows).Error
	return rows, total, err
}

func (r *repository) UpdateProduct(ctx context.Context, id int64, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id_producto = ?", id).Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteProduct(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("id_producto = ?", id).Delete(&models.Product{})
	return res.RowsAffected, res.Error
}

func (r *repository) CountProductLines(ctx context.Context, productID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("detalle_cotizacion").Where("id_producto = ?", productID).Count(&count).Error
	return count, err
}

func (r *repository) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Category{}).Where("id_categoria = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *repository) categories(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("categorias_producto c").
		Select(`c.id_categoria, c.nombre_categoria, c.descripcion, c.created_at,
			COUNT(p.id_producto) AS total_productos`).
		Joins("LEFT JOIN productos p ON p.id_categoria = c.id_categoria").
		Group("c.id_categoria, c.nombre_categoria, c.descripcion, c.created_at")
}

func (r *repository) FindCategory(ctx context.Context, id int64) (*Category, error) {
	var rows []Category
	if err := r.categories(ctx).Where("c.id_categoria = ?", id).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *repository) CategoryNameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Category{}).Where("nombre_categoria = ?", name)
	if excludeID > 0 {
		q = q.Where("id_categoria <> ?", excludeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *repository) ListCategories(ctx context.Context) ([]Category, error) {
	var rows []Category
	err := r.categories(ctx).Order("c.nombre_categoria").Scan(&rows).Error
	return rows, err
}

func (r *repository) ProductsInCategory(ctx context.Context, categoryID int64) ([]Product, error) {
	var rows []Product
	err := r.products(ctx).
		Select(productColumns).
		Where("p.id_categoria = ?", categoryID).
		Order("p.nombre").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) UpdateCategory(ctx context.Context, id int64, updates map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Category{}).Where("id_categoria = ?", id).Updates(updates).Error
}

func (r *repository) DeleteCategory(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("id_categoria = ?", id).Delete(&models.Category{})
	return res.RowsAffected, res.Error
}

func (r *repository) CountCategoryProducts(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id_categoria = ?", categoryID).Count(&count).Error
	return count, err
}
