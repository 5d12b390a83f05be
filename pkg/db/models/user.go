package models

import "time"

// Role is a named permission set (roles table).
type Role struct {
	ID          int64   `gorm:"column:id_rol;primaryKey;autoIncrement"`
	Name        string  `gorm:"column:nombre_rol;not null"`
	Description *string `gorm:"column:descripcion"`
}

func (Role) TableName() string { return "roles" }

// User is an operator account able to issue quotations.
type User struct {
	ID           int64     `gorm:"column:id_usuario;primaryKey;autoIncrement"`
	Username     string    `gorm:"column:usuario;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	RoleID       int64     `gorm:"column:id_rol;not null"`
	Active       bool      `gorm:"column:activo;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "usuarios" }
