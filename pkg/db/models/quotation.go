package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/medsupply/cotizaciones-api/pkg/enums"
	"github.com/medsupply/cotizaciones-api/pkg/types"
)

// Quotation is the header of a priced offer. Total is derived from its lines
// and is only ever written by the quotation repository's recompute step.
type Quotation struct {
	ID           int64                `gorm:"column:id_cotizacion;primaryKey;autoIncrement"`
	ClientID     int64                `gorm:"column:id_cliente;not null"`
	UserID       int64                `gorm:"column:id_usuario;not null"`
	IssueDate    types.Date           `gorm:"column:fecha_emision;type:date;not null"`
	State        enums.QuotationState `gorm:"column:estado;not null"`
	Total        decimal.Decimal      `gorm:"column:total;type:numeric(14,2);not null"`
	Observations *string              `gorm:"column:observaciones"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (Quotation) TableName() string { return "cotizaciones" }

// QuotationLine is one product line of a quotation. Subtotal is a generated
// column (cantidad * precio_unitario - descuento) and is read-only here.
type QuotationLine struct {
	ID          int64           `gorm:"column:id_detalle;primaryKey;autoIncrement"`
	QuotationID int64           `gorm:"column:id_cotizacion;not null"`
	ProductID   int64           `gorm:"column:id_producto;not null"`
	Quantity    int             `gorm:"column:cantidad;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:precio_unitario;type:numeric(12,2);not null"`
	Discount    decimal.Decimal `gorm:"column:descuento;type:numeric(12,2);not null"`
	Subtotal    decimal.Decimal `gorm:"column:subtotal;->"`
}

func (QuotationLine) TableName() string { return "detalle_cotizacion" }
