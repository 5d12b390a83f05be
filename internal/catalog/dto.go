package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductInput struct {
	Code        string
	Name        string
	Description *string
	Price       *decimal.Decimal
	CategoryID  *int64
	Stock       *int
	Active      *bool
}

// CategoryRef distinguishes "leave untouched" from "set to null" on a patch.
type CategoryRef struct {
	Set   bool
	Value *int64
}

// ProductPatch lists editable product fields. Nil means untouched.
type ProductPatch struct {
	Code        *string
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Category    CategoryRef
	Stock       *int
	Active      *bool
}

func (p ProductPatch) Empty() bool {
	return p.Code == nil && p.Name == nil && p.Description == nil && p.Price == nil &&
		!p.Category.Set && p.Stock == nil && p.Active == nil
}

type ProductFilters struct {
	Name       string
	Code       string
	CategoryID *int64
	Active     *bool
}

// Product is a catalog row joined with its category name.
type Product struct {
	ID           int64           `gorm:"column:id_producto" json:"id_producto"`
	Code         string          `gorm:"column:codigo" json:"codigo"`
	Name         string          `gorm:"column:nombre" json:"nombre"`
	Description  *string         `gorm:"column:descripcion" json:"descripcion"`
	Price        decimal.Decimal `gorm:"column:precio" json:"precio"`
	CategoryID   *int64          `gorm:"column:id_categoria" json:"id_categoria"`
	CategoryName *string         `gorm:"column:nombre_categoria" json:"nombre_categoria"`
	Stock        int             `gorm:"column:stock" json:"stock"`
	Active       bool            `gorm:"column:activo" json:"activo"`
	CreatedAt    time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

type CategoryInput struct {
	Name        string
	Description *string
}

// Category carries the number of products filed under it.
type Category struct {
	ID            int64     `gorm:"column:id_categoria" json:"id_categoria"`
	Name          string    `gorm:"column:nombre_categoria" json:"nombre_categoria"`
	Description   *string   `gorm:"column:descripcion" json:"descripcion"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
	ProductsCount int64     `gorm:"column:total_productos" json:"total_productos"`
}

// CategoryDetail is a category with its products ordered by name.
type CategoryDetail struct {
	Category
	Products []Product `json:"productos"`
}
