package models

import (
	"time"

	"github.com/medsupply/cotizaciones-api/pkg/enums"
	"github.com/medsupply/cotizaciones-api/pkg/types"
)

// Shipment is the fulfillment record of a quotation; at most one per quotation.
type Shipment struct {
	ID                int64               `gorm:"column:id_despacho;primaryKey;autoIncrement"`
	QuotationID       int64               `gorm:"column:id_cotizacion;not null"`
	SendDate          types.Date          `gorm:"column:fecha_envio;type:date;not null"`
	EstimatedDelivery *types.Date         `gorm:"column:fecha_entrega_estimada;type:date"`
	ActualDelivery    *types.Date         `gorm:"column:fecha_entrega_real;type:date"`
	Address           string              `gorm:"column:direccion_envio;not null"`
	State             enums.ShipmentState `gorm:"column:estado;not null"`
	TrackingNumber    *string             `gorm:"column:tracking_number"`
	Observations      *string             `gorm:"column:observaciones"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Shipment) TableName() string { return "despachos" }
