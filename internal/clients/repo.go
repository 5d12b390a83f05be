package clients

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/medsupply/cotizaciones-api/pkg/db/models"
	"github.com/medsupply/cotizaciones-api/pkg/pagination"
)

type Repository interface {
	Create(ctx context.Context, client *models.Client) error
	FindByID(ctx context.Context, id int64) (*models.Client, error)
	ExistsByRUT(ctx context.Context, rut string, excludeID int64) (bool, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Client, int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	Delete(ctx context.Context, id int64) (int64, error)
	CountQuotations(ctx context.Context, clientID int64) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Client, error) {
	var c models.Client
	if err := r.db.WithContext(ctx).Where("id_cliente = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) exists(ctx context.Context, column, value string, excludeID int64) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Client{}).Where(column+" = ?", value)
	if excludeID > 0 {
		q = q.Where("id_cliente <> ?", excludeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *repository) ExistsByRUT(ctx context.Context, rut string, excludeID int64) (bool, error) {
	return r.exists(ctx, "rut", rut, excludeID)
}

func (r *repository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	return r.exists(ctx, "correo", email, excludeID)
}

func like(value string) string {
	return "%" + strings.ToLower(strings.TrimSpace(value)) + "%"
}

func (r *repository) listQuery(ctx context.Context, filters ListFilters) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Client{})
	if strings.TrimSpace(filters.Name) != "" {
		q = q.Where("LOWER(nombre) LIKE ?", like(filters.Name))
	}
	if strings.TrimSpace(filters.RUT) != "" {
		q = q.Where("LOWER(rut) LIKE ?", like(filters.RUT))
	}
	if strings.TrimSpace(filters.Email) != "" {
		q = q.Where("LOWER(correo) LIKE ?", like(filters.Email))
	}
	return q
}

func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Client, int64, error) {
	var total int64
	if err := r.listQuery(ctx, filters).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	params = params.Normalize()
	var rows []models.Client
	err := r.listQuery(ctx, filters).
		Order("nombre").
		Order("id_cliente").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&rows).Error
	return rows, total, err
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Client{}).Where("id_cliente = ?", id).Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("id_cliente = ?", id).Delete(&models.Client{})
	return res.RowsAffected, res.Error
}

func (r *repository) CountQuotations(ctx context.Context, clientID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("cotizaciones").Where("id_cliente = ?", clientID).Count(&count).Error
	return count, err
}
