package quotations

import (
	"context"

	"github.com/medsupply/cotizaciones-api/pkg/db/models"
	"github.com/medsupply/cotizaciones-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a quotations repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ClientExists(ctx context.Context, clientID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("id_cliente = ?", clientID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) FindProduct(ctx context.Context, productID int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id_producto = ?", productID).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) CreateQuotation(ctx context.Context, quotation *models.Quotation) error {
	return r.db.WithContext(ctx).Create(quotation).Error
}

// CreateLine inserts the line and reloads the store-computed subtotal.
func (r *repository) CreateLine(ctx context.Context, line *models.QuotationLine) error {
	if err := r.db.WithContext(ctx).Create(line).Error; err != nil {
		return err
	}
	var subtotal decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.QuotationLine{}).
		Where("id_detalle = ?", line.ID).
		Select("subtotal").
		Row().
		Scan(&subtotal)
	if err != nil {
		return err
	}
	line.Subtotal = subtotal
	return nil
}

// RecomputeTotal sets cotizaciones.total to the sum of its line subtotals and
// returns the stored value.
func (r *repository) RecomputeTotal(ctx context.Context, quotationID int64) (decimal.Decimal, error) {
	err := r.db.WithContext(ctx).Exec(
		`UPDATE cotizaciones
		 SET total = (SELECT COALESCE(SUM(subtotal), 0) FROM detalle_cotizacion WHERE id_cotizacion = ?)
		 WHERE id_cotizacion = ?`,
		quotationID, quotationID,
	).Error
	if err != nil {
		return decimal.Zero, err
	}
	var total decimal.Decimal
	err = r.db.WithContext(ctx).
		Model(&models.Quotation{}).
		Where("id_cotizacion = ?", quotationID).
		Select("total").
		Row().
		Scan(&total)
	return total, err
}

func (r *repository) FindQuotation(ctx context.Context, id int64) (*models.Quotation, error) {
	var quotation models.Quotation
	if err := r.db.WithContext(ctx).Where("id_cotizacion = ?", id).First(&quotation).Error; err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *repository) FindHeader(ctx context.Context, id int64) (*Header, error) {
	var header Header
	res := r.db.WithContext(ctx).Raw(
		`SELECT c.*, cl.nombre AS cliente_nombre
		 FROM cotizaciones c
		 JOIN clientes cl ON cl.id_cliente = c.id_cliente
		 WHERE c.id_cotizacion = ?`, id,
	).Scan(&header)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &header, nil
}

func (r *repository) FindDetail(ctx context.Context, id int64) (*Detail, error) {
	var detail Detail
	res := r.db.WithContext(ctx).Raw(
		`SELECT c.*,
		        cl.nombre AS cliente_nombre,
		        cl.rut AS cliente_rut,
		        cl.correo AS cliente_correo,
		        cl.telefono AS cliente_telefono,
		        cl.direccion AS cliente_direccion,
		        u.usuario AS vendedor
		 FROM cotizaciones c
		 JOIN clientes cl ON cl.id_cliente = c.id_cliente
		 JOIN usuarios u ON u.id_usuario = c.id_usuario
		 WHERE c.id_cotizacion = ?`, id,
	).Scan(&detail)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &detail, nil
}

func (r *repository) FindLines(ctx context.Context, quotationID int64) ([]Line, error) {
	var lines []Line
	err := r.db.WithContext(ctx).Raw(
		`SELECT dc.id_detalle, dc.id_cotizacion, dc.id_producto, dc.cantidad,
		        dc.precio_unitario, dc.descuento, dc.subtotal,
		        p.codigo AS producto_codigo,
		        p.nombre AS producto_nombre,
		        p.descripcion AS producto_descripcion,
		        cat.nombre_categoria
		 FROM detalle_cotizacion dc
		 JOIN productos p ON p.id_producto = dc.id_producto
		 LEFT JOIN categorias_producto cat ON cat.id_categoria = p.id_categoria
		 WHERE dc.id_cotizacion = ?
		 ORDER BY dc.id_detalle`, quotationID,
	).Scan(&lines).Error
	return lines, err
}

func (r *repository) FindShipment(ctx context.Context, quotationID int64) (*ShipmentInfo, error) {
	var info ShipmentInfo
	res := r.db.WithContext(ctx).
		Table("despachos").
		Where("id_cotizacion = ?", quotationID).
		Limit(1).
		Scan(&info)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &info, nil
}

func (r *repository) listQuery(ctx context.Context, filters ListFilters) *gorm.DB {
	q := r.db.WithContext(ctx).
		Table("cotizaciones c").
		Joins("JOIN clientes cl ON cl.id_cliente = c.id_cliente").
		Joins("JOIN usuarios u ON u.id_usuario = c.id_usuario")
	if filters.ClientID != nil {
		q = q.Where("c.id_cliente = ?", *filters.ClientID)
	}
	if filters.State != nil {
		q = q.Where("c.estado = ?", filters.State.String())
	}
	if filters.DateFrom != nil {
		q = q.Where("c.fecha_emision >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		q = q.Where("c.fecha_emision <= ?", *filters.DateTo)
	}
	return q
}

func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]ListItem, int64, error) {
	var total int64
	if err := r.listQuery(ctx, filters).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params = params.Normalize()
	var items []ListItem
	err := r.listQuery(ctx, filters).
		Select(`c.id_cotizacion, c.fecha_emision, c.estado, c.total, c.observaciones,
		        cl.id_cliente, cl.rut AS cliente_rut, cl.nombre AS cliente_nombre,
		        u.id_usuario, u.usuario AS vendedor,
		        (SELECT COUNT(*) FROM detalle_cotizacion dc WHERE dc.id_cotizacion = c.id_cotizacion) AS cantidad_productos`).
		Order("c.fecha_emision DESC").
		Order("c.id_cotizacion DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Scan(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Quotation{}).
		Where("id_cotizacion = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("id_cotizacion = ?", id).Delete(&models.Quotation{})
	return res.RowsAffected, res.Error
}

func (r *repository) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	err := r.db.WithContext(ctx).Raw(
		`SELECT COUNT(*) AS total_cotizaciones,
		        COALESCE(SUM(CASE WHEN estado = 'pendiente' THEN 1 ELSE 0 END), 0) AS pendientes,
		        COALESCE(SUM(CASE WHEN estado = 'aprobada' THEN 1 ELSE 0 END), 0) AS aprobadas,
		        COALESCE(SUM(CASE WHEN estado = 'rechazada' THEN 1 ELSE 0 END), 0) AS rechazadas,
		        COALESCE(SUM(CASE WHEN estado = 'enviada' THEN 1 ELSE 0 END), 0) AS enviadas,
		        COALESCE(SUM(total), 0) AS monto_total,
		        COALESCE(AVG(total), 0) AS monto_promedio
		 FROM cotizaciones`,
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
