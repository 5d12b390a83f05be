package shipments

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/medsupply/cotizaciones-api/pkg/enums"
	"github.com/medsupply/cotizaciones-api/pkg/types"
)

// CreateInput carries the fields accepted by Create. Dates are raw
// YYYY-MM-DD strings and are validated by the service.
type CreateInput struct {
	QuotationID       int64
	SendDate          string
	EstimatedDelivery *string
	Address           string
	TrackingNumber    *string
	Observations      *string
}

// Patch lists the editable shipment fields. Nil pointers and invalid
// NullableDates are left untouched; a valid NullableDate with a nil Value
// clears the column.
type Patch struct {
	SendDate          *types.Date
	EstimatedDelivery types.NullableDate
	ActualDelivery    types.NullableDate
	Address           *string
	State             *string
	TrackingNumber    *string
	Observations      *string
}

func (p Patch) Empty() bool {
	return p.SendDate == nil &&
		!p.EstimatedDelivery.Valid &&
		!p.ActualDelivery.Valid &&
		p.Address == nil &&
		p.State == nil &&
		p.TrackingNumber == nil &&
		p.Observations == nil
}

type ListFilters struct {
	State    *enums.ShipmentState
	DateFrom *types.Date
	DateTo   *types.Date
}

// View is a shipment joined with its quotation and client.
type View struct {
	ID                int64                `gorm:"column:id_despacho" json:"id_despacho"`
	QuotationID       int64                `gorm:"column:id_cotizacion" json:"id_cotizacion"`
	SendDate          types.Date           `gorm:"column:fecha_envio" json:"fecha_envio"`
	EstimatedDelivery *types.Date          `gorm:"column:fecha_entrega_estimada" json:"fecha_entrega_estimada"`
	ActualDelivery    *types.Date          `gorm:"column:fecha_entrega_real" json:"fecha_entrega_real"`
	Address           string               `gorm:"column:direccion_envio" json:"direccion_envio"`
	State             enums.ShipmentState  `gorm:"column:estado" json:"estado"`
	TrackingNumber    *string              `gorm:"column:tracking_number" json:"tracking_number"`
	Observations      *string              `gorm:"column:observaciones" json:"observaciones"`
	CreatedAt         time.Time            `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time            `gorm:"column:updated_at" json:"updated_at"`
	IssueDate         types.Date           `gorm:"column:fecha_emision" json:"fecha_emision"`
	QuotationTotal    decimal.Decimal      `gorm:"column:total_cotizacion" json:"total_cotizacion"`
	QuotationState    enums.QuotationState `gorm:"column:estado_cotizacion" json:"estado_cotizacion"`
	ClientID          int64                `gorm:"column:id_cliente" json:"id_cliente"`
	ClientName        string               `gorm:"column:cliente_nombre" json:"cliente_nombre"`
	ClientRUT         string               `gorm:"column:cliente_rut" json:"cliente_rut"`
	ClientPhone       *string              `gorm:"column:cliente_telefono" json:"cliente_telefono"`
}

// Stats counts shipments per state.
type Stats struct {
	Total     int64 `gorm:"column:total_despachos" json:"total_despachos"`
	Preparing int64 `gorm:"column:preparando" json:"preparando"`
	Shipped   int64 `gorm:"column:enviados" json:"enviados"`
	InTransit int64 `gorm:"column:en_transito" json:"en_transito"`
	Delivered int64 `gorm:"column:entregados" json:"entregados"`
	Cancelled int64 `gorm:"column:cancelados" json:"cancelados"`
}
