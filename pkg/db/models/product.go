package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products (categorias_producto table).
type Category struct {
	ID          int64     `gorm:"column:id_categoria;primaryKey;autoIncrement"`
	Name        string    `gorm:"column:nombre_categoria;not null"`
	Description *string   `gorm:"column:descripcion"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Category) TableName() string { return "categorias_producto" }

// Product is a sellable catalog item. Price is copied onto quotation lines at
// creation time, so later edits never alter issued quotations.
type Product struct {
	ID          int64           `gorm:"column:id_producto;primaryKey;autoIncrement"`
	Code        string          `gorm:"column:codigo;not null"`
	Name        string          `gorm:"column:nombre;not null"`
	Description *string         `gorm:"column:descripcion"`
	Price       decimal.Decimal `gorm:"column:precio;type:numeric(12,2);not null"`
	CategoryID  *int64          `gorm:"column:id_categoria"`
	Stock       int             `gorm:"column:stock;not null"`
	Active      bool            `gorm:"column:activo;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "productos" }
