package users

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/medsupply/cotizaciones-api/pkg/db/models"
	"github.com/medsupply/cotizaciones-api/pkg/pagination"
)

const userColumns = `u.id_usuario, u.usuario, u.activo, u.id_rol, r.nombre_rol AS rol,
	r.descripcion AS rol_descripcion, u.created_at, u.updated_at`

// Repository exposes account persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("usuarios u").
		Joins("JOIN roles r ON r.id_rol = u.id_rol")
}

// FindCredentials loads the hash, status and role name for username.
func (r *Repository) FindCredentials(ctx context.Context, username string) (*Credentials, error) {
	var rows []Credentials
	err := r.joined(ctx).
		Select("u.id_usuario, u.usuario, u.password_hash, u.activo, r.nombre_rol AS rol").
		Where("u.usuario = ?", username).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*UserDTO, error) {
	var rows []UserDTO
	if err := r.joined(ctx).Select(userColumns).Where("u.id_usuario = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *Repository) filtered(ctx context.Context, filters ListFilters) *gorm.DB {
	q := r.joined(ctx)
	if filters.Active != nil {
		q = q.Where("u.activo = ?", *filters.Active)
	}
	if role := strings.TrimSpace(filters.Role); role != "" {
		q = q.Where("r.nombre_rol = ?", role)
	}
	return q
}

func (r *Repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]UserDTO, int64, error) {
	var total int64
	if err := r.filtered(ctx, filters).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	params = params.Normalize()
	var rows []UserDTO
	err := r.filtered(ctx, filters).
		Select(userColumns).
		Order("u.created_at DESC").
		Order("u.id_usuario DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Scan(&rows).Error
	return rows, total, err
}

func (r *Repository) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.User{}).Where("usuario = ?", username)
	if excludeID > 0 {
		q = q.Where("id_usuario <> ?", excludeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *Repository) RoleExists(ctx context.Context, roleID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Role{}).Where("id_rol = ?", roleID).Count(&count).Error
	return count > 0, err
}

func (r *Repository) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := r.db.WithContext(ctx).Order("nombre_rol").Find(&roles).Error
	return roles, err
}

func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *Repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id_usuario = ?", id).Updates(updates).Error
}

func (r *Repository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("id_usuario = ?", id).Delete(&models.User{})
	return res.RowsAffected, res.Error
}
