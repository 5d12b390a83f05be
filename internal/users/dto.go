package users

import (
	"time"

	"github.com/medsupply/cotizaciones-api/pkg/enums"
)

// UserDTO is the transport shape of an account; it never carries the hash.
type UserDTO struct {
	ID              int64      `gorm:"column:id_usuario" json:"id_usuario"`
	Username        string     `gorm:"column:usuario" json:"usuario"`
	Active          bool       `gorm:"column:activo" json:"activo"`
	RoleID          int64      `gorm:"column:id_rol" json:"id_rol"`
	Role            enums.Role `gorm:"column:rol" json:"rol"`
	RoleDescription *string    `gorm:"column:rol_descripcion" json:"rol_descripcion,omitempty"`
	CreatedAt       time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

// Credentials is what login needs to authenticate a username.
type Credentials struct {
	ID           int64      `gorm:"column:id_usuario"`
	Username     string     `gorm:"column:usuario"`
	PasswordHash string     `gorm:"column:password_hash"`
	Active       bool       `gorm:"column:activo"`
	Role         enums.Role `gorm:"column:rol"`
}

type CreateInput struct {
	Username string
	Password string
	RoleID   int64
	Active   *bool
}

// Patch lists editable account fields. A non-nil Password is re-hashed.
type Patch struct {
	Username *string
	Password *string
	RoleID   *int64
	Active   *bool
}

func (p Patch) Empty() bool {
	return p.Username == nil && p.Password == nil && p.RoleID == nil && p.Active == nil
}

type ListFilters struct {
	Active *bool
	Role   string
}

type RoleDTO struct {
	ID          int64   `json:"id_rol"`
	Name        string  `json:"nombre_rol"`
	Description *string `json:"descripcion"`
}
