package reports

import (
	"github.com/shopspring/decimal"

	"github.com/medsupply/cotizaciones-api/pkg/enums"
	"github.com/medsupply/cotizaciones-api/pkg/types"
)

// DateRange bounds a report by issue date. Nil ends are open.
type DateRange struct {
	From *types.Date `json:"desde"`
	To   *types.Date `json:"hasta"`
}

// SalesPeriod aggregates the quotations issued in one calendar month.
type SalesPeriod struct {
	Period     string          `json:"periodo"`
	Quotations int64           `json:"total_cotizaciones"`
	Total      decimal.Decimal `json:"monto_total"`
	Average    decimal.Decimal `json:"monto_promedio"`
	Approved   int64           `json:"aprobadas"`
	Rejected   int64           `json:"rechazadas"`
}

type SalesReport struct {
	Range DateRange     `json:"periodo"`
	Data  []SalesPeriod `json:"data"`
}

type TopProduct struct {
	ProductID    int64           `gorm:"column:id_producto" json:"id_producto"`
	Code         string          `gorm:"column:codigo" json:"codigo"`
	Name         string          `gorm:"column:nombre" json:"nombre"`
	CategoryName *string         `gorm:"column:nombre_categoria" json:"nombre_categoria"`
	QuantitySold int64           `gorm:"column:cantidad_vendida" json:"cantidad_vendida"`
	TimesQuoted  int64           `gorm:"column:veces_cotizado" json:"veces_cotizado"`
	Total        decimal.Decimal `gorm:"column:monto_total" json:"monto_total"`
}

type TopClient struct {
	ClientID       int64           `gorm:"column:id_cliente" json:"id_cliente"`
	RUT            string          `gorm:"column:rut" json:"rut"`
	Name           string          `gorm:"column:nombre" json:"nombre"`
	Email          *string         `gorm:"column:correo" json:"correo"`
	Quotations     int64           `gorm:"column:total_cotizaciones" json:"total_cotizaciones"`
	Total          decimal.Decimal `gorm:"column:monto_total" json:"monto_total"`
	Average        decimal.Decimal `gorm:"column:monto_promedio" json:"monto_promedio"`
	LastQuotedDate types.Date      `gorm:"column:ultima_cotizacion" json:"ultima_cotizacion"`
}

// TopReport wraps a ranked list with the limit that produced it.
type TopReport[T any] struct {
	Top  int `json:"top"`
	Data []T `json:"data"`
}

type StateSummary struct {
	State   enums.QuotationState `gorm:"column:estado" json:"estado"`
	Count   int64                `gorm:"column:cantidad" json:"cantidad"`
	Total   decimal.Decimal      `gorm:"column:monto_total" json:"monto_total"`
	Average decimal.Decimal      `gorm:"column:monto_promedio" json:"monto_promedio"`
}

// PendingShipment is an undelivered, uncancelled shipment with its age.
type PendingShipment struct {
	ID                int64               `gorm:"column:id_despacho" json:"id_despacho"`
	QuotationID       int64               `gorm:"column:id_cotizacion" json:"id_cotizacion"`
	SendDate          types.Date          `gorm:"column:fecha_envio" json:"fecha_envio"`
	EstimatedDelivery *types.Date         `gorm:"column:fecha_entrega_estimada" json:"fecha_entrega_estimada"`
	Address           string              `gorm:"column:direccion_envio" json:"direccion_envio"`
	State             enums.ShipmentState `gorm:"column:estado" json:"estado"`
	TrackingNumber    *string             `gorm:"column:tracking_number" json:"tracking_number"`
	QuotationTotal    decimal.Decimal     `gorm:"column:total" json:"total"`
	ClientName        string              `gorm:"column:cliente_nombre" json:"cliente_nombre"`
	ClientRUT         string              `gorm:"column:cliente_rut" json:"cliente_rut"`
	DaysSinceSend     int                 `gorm:"-" json:"dias_desde_envio"`
}

type PendingShipmentsReport struct {
	Total int               `json:"total_pendientes"`
	Data  []PendingShipment `json:"data"`
}

type GeneralStats struct {
	Clients           int64           `gorm:"column:total_clientes" json:"total_clientes"`
	ActiveProducts    int64           `gorm:"column:productos_activos" json:"productos_activos"`
	Quotations        int64           `gorm:"column:total_cotizaciones" json:"total_cotizaciones"`
	PendingQuotations int64           `gorm:"column:cotizaciones_pendientes" json:"cotizaciones_pendientes"`
	PendingShipments  int64           `gorm:"column:despachos_pendientes" json:"despachos_pendientes"`
	Sales             decimal.Decimal `gorm:"column:ventas_totales" json:"ventas_totales"`
	ActiveUsers       int64           `gorm:"column:usuarios_activos" json:"usuarios_activos"`
}

type MonthSummary struct {
	Quotations int64           `gorm:"column:cotizaciones_mes" json:"cotizaciones_mes"`
	Total      decimal.Decimal `gorm:"column:monto_mes" json:"monto_mes"`
}

type RecentQuotation struct {
	QuotationID int64                `gorm:"column:id_cotizacion" json:"id_cotizacion"`
	IssueDate   types.Date           `gorm:"column:fecha_emision" json:"fecha_emision"`
	State       enums.QuotationState `gorm:"column:estado" json:"estado"`
	Total       decimal.Decimal      `gorm:"column:total" json:"total"`
	ClientName  string               `gorm:"column:cliente_nombre" json:"cliente_nombre"`
}

type Dashboard struct {
	General      GeneralStats      `json:"estadisticas_generales"`
	CurrentMonth MonthSummary      `json:"mes_actual"`
	Latest       []RecentQuotation `json:"ultimas_cotizaciones"`
}

// Available is one entry of the reports index.
type Available struct {
	Endpoint    string `json:"endpoint"`
	Description string `json:"descripcion"`
}
