package quotations

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/medsupply/cotizaciones-api/pkg/enums"
	"github.com/medsupply/cotizaciones-api/pkg/types"
)

// LineInput is one requested product line. Quantity is a pointer so a missing
// value can be told apart from zero.
type LineInput struct {
	ProductID int64
	Quantity  *int
	Discount  decimal.Decimal
}

// CreateInput carries everything CreateQuotation needs; UserID is the caller's
// principal id.
type CreateInput struct {
	ClientID     int64
	IssueDate    string
	Observations *string
	Lines        []LineInput
	UserID       int64
}

// Patch lists the fields an admin may change on a quotation. Nil means
// untouched.
type Patch struct {
	State        *string
	Observations *string
}

func (p Patch) Empty() bool {
	return p.State == nil && p.Observations == nil
}

// ListFilters narrows ListQuotations.
type ListFilters struct {
	ClientID *int64
	State    *enums.QuotationState
	DateFrom *types.Date
	DateTo   *types.Date
}

// Header is a quotation joined with its client's name.
type Header struct {
	ID           int64                `gorm:"column:id_cotizacion" json:"id_cotizacion"`
	ClientID     int64                `gorm:"column:id_cliente" json:"id_cliente"`
	UserID       int64                `gorm:"column:id_usuario" json:"id_usuario"`
	IssueDate    types.Date           `gorm:"column:fecha_emision" json:"fecha_emision"`
	State        enums.QuotationState `gorm:"column:estado" json:"estado"`
	Total        decimal.Decimal      `gorm:"column:total" json:"total"`
	Observations *string              `gorm:"column:observaciones" json:"observaciones"`
	CreatedAt    time.Time            `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time            `gorm:"column:updated_at" json:"updated_at"`
	ClientName   string               `gorm:"column:cliente_nombre" json:"cliente_nombre"`
}

// ListItem is one row of ListQuotations.
type ListItem struct {
	ID           int64                `gorm:"column:id_cotizacion" json:"id_cotizacion"`
	IssueDate    types.Date           `gorm:"column:fecha_emision" json:"fecha_emision"`
	State        enums.QuotationState `gorm:"column:estado" json:"estado"`
	Total        decimal.Decimal      `gorm:"column:total" json:"total"`
	Observations *string              `gorm:"column:observaciones" json:"observaciones"`
	ClientID     int64                `gorm:"column:id_cliente" json:"id_cliente"`
	ClientRUT    string               `gorm:"column:cliente_rut" json:"cliente_rut"`
	ClientName   string               `gorm:"column:cliente_nombre" json:"cliente_nombre"`
	UserID       int64                `gorm:"column:id_usuario" json:"id_usuario"`
	Seller       string               `gorm:"column:vendedor" json:"vendedor"`
	ProductCount int64                `gorm:"column:cantidad_productos" json:"cantidad_productos"`
}

// Line is a stored line item with its product and category denormalized.
type Line struct {
	ID                 int64           `gorm:"column:id_detalle" json:"id_detalle"`
	QuotationID        int64           `gorm:"column:id_cotizacion" json:"id_cotizacion"`
	ProductID          int64           `gorm:"column:id_producto" json:"id_producto"`
	Quantity           int             `gorm:"column:cantidad" json:"cantidad"`
	UnitPrice          decimal.Decimal `gorm:"column:precio_unitario" json:"precio_unitario"`
	Discount           decimal.Decimal `gorm:"column:descuento" json:"descuento"`
	Subtotal           decimal.Decimal `gorm:"column:subtotal" json:"subtotal"`
	ProductCode        string          `gorm:"column:producto_codigo" json:"producto_codigo"`
	ProductName        string          `gorm:"column:producto_nombre" json:"producto_nombre"`
	ProductDescription *string         `gorm:"column:producto_descripcion" json:"producto_descripcion"`
	CategoryName       *string         `gorm:"column:nombre_categoria" json:"nombre_categoria"`
}

// ShipmentInfo is the shipment attached to a quotation, if any.
type ShipmentInfo struct {
	ID                int64               `gorm:"column:id_despacho" json:"id_despacho"`
	QuotationID       int64               `gorm:"column:id_cotizacion" json:"id_cotizacion"`
	SendDate          types.Date          `gorm:"column:fecha_envio" json:"fecha_envio"`
	EstimatedDelivery *types.Date         `gorm:"column:fecha_entrega_estimada" json:"fecha_entrega_estimada"`
	ActualDelivery    *types.Date         `gorm:"column:fecha_entrega_real" json:"fecha_entrega_real"`
	Address           string              `gorm:"column:direccion_envio" json:"direccion_envio"`
	State             enums.ShipmentState `gorm:"column:estado" json:"estado"`
	TrackingNumber    *string             `gorm:"column:tracking_number" json:"tracking_number"`
	Observations      *string             `gorm:"column:observaciones" json:"observaciones"`
}

// Detail is the full view returned by GetQuotation.
type Detail struct {
	Header
	ClientRUT     string        `gorm:"column:cliente_rut" json:"cliente_rut"`
	ClientEmail   *string       `gorm:"column:cliente_correo" json:"cliente_correo"`
	ClientPhone   *string       `gorm:"column:cliente_telefono" json:"cliente_telefono"`
	ClientAddress *string       `gorm:"column:cliente_direccion" json:"cliente_direccion"`
	Seller        string        `gorm:"column:vendedor" json:"vendedor"`
	Lines         []Line        `gorm:"-" json:"productos"`
	Shipment      *ShipmentInfo `gorm:"-" json:"despacho"`
}

// Stats summarizes quotations per state and amount.
type Stats struct {
	Total         int64           `gorm:"column:total_cotizaciones" json:"total_cotizaciones"`
	Pending       int64           `gorm:"column:pendientes" json:"pendientes"`
	Approved      int64           `gorm:"column:aprobadas" json:"aprobadas"`
	Rejected      int64           `gorm:"column:rechazadas" json:"rechazadas"`
	Sent          int64           `gorm:"column:enviadas" json:"enviadas"`
	AmountTotal   decimal.Decimal `gorm:"column:monto_total" json:"monto_total"`
	AmountAverage decimal.Decimal `gorm:"column:monto_promedio" json:"monto_promedio"`
}

func validStateNames() []string {
	states := enums.QuotationStates()
	out := make([]string, 0, len(states))
	for _, s := range states {
		out = append(out, s.String())
	}
	return out
}
