package reports

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/medsupply/cotizaciones-api/pkg/enums"
	"github.com/medsupply/cotizaciones-api/pkg/types"
)

// soldStates are the quotation states counted as sales.
var soldStates = []enums.QuotationState{enums.QuotationStateApproved, enums.QuotationStateSent}

// openShipmentStates are the shipment states still awaiting delivery.
var openShipmentStates = []enums.ShipmentState{
	enums.ShipmentStatePreparing,
	enums.ShipmentStateShipped,
	enums.ShipmentStateInTransit,
}

// quotationFact is one quotation as seen by the monthly sales rollup.
type quotationFact struct {
	IssueDate types.Date           `gorm:"column:fecha_emision"`
	Total     decimal.Decimal      `gorm:"column:total"`
	State     enums.QuotationState `gorm:"column:estado"`
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) QuotationFacts(ctx context.Context, rng DateRange) ([]quotationFact, error) {
	q := r.db.WithContext(ctx).Table("cotizaciones").Select("fecha_emision, total, estado")
	if rng.From != nil {
		q = q.Where("fecha_emision >= ?", *rng.From)
	}
	if rng.To != nil {
		q = q.Where("fecha_emision <= ?", *rng.To)
	}
	var rows []quotationFact
	err := q.Scan(&rows).Error
	return rows, err
}

func (r *repository) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	var rows []TopProduct
	err := r.db.WithContext(ctx).Raw(
		`SELECT p.id_producto, p.codigo, p.nombre, cat.nombre_categoria,
		        COALESCE(SUM(dc.cantidad), 0) AS cantidad_vendida,
		        COUNT(DISTINCT dc.id_cotizacion) AS veces_cotizado,
		        COALESCE(SUM(dc.subtotal), 0) AS monto_total
		 FROM detalle_cotizacion dc
		 JOIN productos p ON p.id_producto = dc.id_producto
		 LEFT JOIN categorias_producto cat ON cat.id_categoria = p.id_categoria
		 JOIN cotizaciones c ON c.id_cotizacion = dc.id_cotizacion
		 WHERE c.estado IN ?
		 GROUP BY p.id_producto, p.codigo, p.nombre, cat.nombre_categoria
		 ORDER BY cantidad_vendida DESC, p.id_producto
		 LIMIT ?`,
		soldStates, limit,
	).Scan(&rows).Error
	return rows, err
}

func (r *repository) TopClients(ctx context.Context, limit int) ([]TopClient, error) {
	var rows []TopClient
	err := r.db.WithContext(ctx).Raw(
		`SELECT cl.id_cliente, cl.rut, cl.nombre, cl.correo,
		        COUNT(c.id_cotizacion) AS total_cotizaciones,
		        COALESCE(SUM(c.total), 0) AS monto_total,
		        COALESCE(AVG(c.total), 0) AS monto_promedio,
		        MAX(c.fecha_emision) AS ultima_cotizacion
		 FROM clientes cl
		 JOIN cotizaciones c ON c.id_cliente = cl.id_cliente
		 WHERE c.estado IN ?
		 GROUP BY cl.id_cliente, cl.rut, cl.nombre, cl.correo
		 ORDER BY monto_total DESC, cl.id_cliente
		 LIMIT ?`,
		soldStates, limit,
	).Scan(&rows).Error
	return rows, err
}

func (r *repository) QuotationsByState(ctx context.Context) ([]StateSummary, error) {
	var rows []StateSummary
	err := r.db.WithContext(ctx).Raw(
		`SELECT estado, COUNT(*) AS cantidad,
		        COALESCE(SUM(total), 0) AS monto_total,
		        COALESCE(AVG(total), 0) AS monto_promedio
		 FROM cotizaciones
		 GROUP BY estado
		 ORDER BY cantidad DESC, estado`,
	).Scan(&rows).Error
	return rows, err
}

func (r *repository) PendingShipments(ctx context.Context) ([]PendingShipment, error) {
	var rows []PendingShipment
	err := r.db.WithContext(ctx).Raw(
		`SELECT d.id_despacho, d.id_cotizacion, d.fecha_envio, d.fecha_entrega_estimada,
		        d.direccion_envio, d.estado, d.tracking_number, c.total,
		        cl.nombre AS cliente_nombre, cl.rut AS cliente_rut
		 FROM despachos d
		 JOIN cotizaciones c ON c.id_cotizacion = d.id_cotizacion
		 JOIN clientes cl ON cl.id_cliente = c.id_cliente
		 WHERE d.estado IN ?
		 ORDER BY d.fecha_envio ASC, d.id_despacho ASC`,
		openShipmentStates,
	).Scan(&rows).Error
	return rows, err
}

func (r *repository) GeneralStats(ctx context.Context) (*GeneralStats, error) {
	var stats GeneralStats
	err := r.db.WithContext(ctx).Raw(
		`SELECT
		    (SELECT COUNT(*) FROM clientes) AS total_clientes,
		    (SELECT COUNT(*) FROM productos WHERE activo = ?) AS productos_activos,
		    (SELECT COUNT(*) FROM cotizaciones) AS total_cotizaciones,
		    (SELECT COUNT(*) FROM cotizaciones WHERE estado = ?) AS cotizaciones_pendientes,
		    (SELECT COUNT(*) FROM despachos WHERE estado IN ?) AS despachos_pendientes,
		    (SELECT COALESCE(SUM(total), 0) FROM cotizaciones WHERE estado IN ?) AS ventas_totales,
		    (SELECT COUNT(*) FROM usuarios WHERE activo = ?) AS usuarios_activos`,
		true, enums.QuotationStatePending, openShipmentStates, soldStates, true,
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// MonthSummary aggregates quotations issued in [from, to).
func (r *repository) MonthSummary(ctx context.Context, from, to types.Date) (*MonthSummary, error) {
	var summary MonthSummary
	err := r.db.WithContext(ctx).Raw(
		`SELECT COUNT(*) AS cotizaciones_mes, COALESCE(SUM(total), 0) AS monto_mes
		 FROM cotizaciones
		 WHERE fecha_emision >= ? AND fecha_emision < ?`,
		from, to,
	).Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *repository) RecentQuotations(ctx context.Context, limit int) ([]RecentQuotation, error) {
	var rows []RecentQuotation
	err := r.db.WithContext(ctx).Raw(
		`SELECT c.id_cotizacion, c.fecha_emision, c.estado, c.total, cl.nombre AS cliente_nombre
		 FROM cotizaciones c
		 JOIN clientes cl ON cl.id_cliente = c.id_cliente
		 ORDER BY c.fecha_emision DESC, c.id_cotizacion DESC
		 LIMIT ?`,
		limit,
	).Scan(&rows).Error
	return rows, err
}
