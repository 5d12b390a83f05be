package shipments

import (
	"context"

	"gorm.io/gorm"

	"github.com/medsupply/cotizaciones-api/pkg/db/models"
	"github.com/medsupply/cotizaciones-api/pkg/enums"
	"github.com/medsupply/cotizaciones-api/pkg/pagination"
)

const viewColumns = `d.*,
	c.fecha_emision,
	c.total AS total_cotizacion,
	c.estado AS estado_cotizacion,
	cl.id_cliente,
	cl.nombre AS cliente_nombre,
	cl.rut AS cliente_rut,
	cl.telefono AS cliente_telefono`

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindQuotation(ctx context.Context, quotationID int64) (*models.Quotation, error) {
	var q models.Quotation
	if err := r.db.WithContext(ctx).Where("id_cotizacion = ?", quotationID).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *repository) SetQuotationState(ctx context.Context, quotationID int64, state enums.QuotationState) error {
	res := r.db.WithContext(ctx).
		Model(&models.Quotation{}).
		Where("id_cotizacion = ?", quotationID).
		Update("estado", state.String())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Shipment, error) {
	var s models.Shipment
	if err := r.db.WithContext(ctx).Where("id_despacho = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// FindIDByQuotation returns 0 when the quotation has no shipment.
func (r *repository) FindIDByQuotation(ctx context.Context, quotationID int64) (int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("id_cotizacion = ?", quotationID).
		Limit(1).
		Pluck("id_despacho", &ids).Error
	if err != nil || len(ids) == 0 {
		return 0, err
	}
	return ids[0], nil
}

func (r *repository) Create(ctx context.Context, shipment *models.Shipment) error {
	return r.db.WithContext(ctx).Create(shipment).Error
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("id_despacho = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id_despacho = ?", id).Delete(&models.Shipment{}).Error
}

func (r *repository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("despachos d").
		Joins("JOIN cotizaciones c ON c.id_cotizacion = d.id_cotizacion").
		Joins("JOIN clientes cl ON cl.id_cliente = c.id_cliente")
}

func (r *repository) findView(ctx context.Context, column string, value int64) (*View, error) {
	var view View
	res := r.joined(ctx).Select(viewColumns).Where(column+" = ?", value).Limit(1).Scan(&view)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &view, nil
}

func (r *repository) FindView(ctx context.Context, id int64) (*View, error) {
	return r.findView(ctx, "d.id_despacho", id)
}

func (r *repository) FindViewByQuotation(ctx context.Context, quotationID int64) (*View, error) {
	return r.findView(ctx, "d.id_cotizacion", quotationID)
}

func (r *repository) listQuery(ctx context.Context, filters ListFilters) *gorm.DB {
	q := r.joined(ctx)
	if filters.State != nil {
		q = q.Where("d.estado = ?", filters.State.String())
	}
	if filters.DateFrom != nil {
		q = q.Where("d.fecha_envio >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		q = q.Where("d.fecha_envio <= ?", *filters.DateTo)
	}
	return q
}

func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]View, int64, error) {
	var total int64
	if err := r.listQuery(ctx, filters).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params = params.Normalize()
	var views []View
	err := r.listQuery(ctx, filters).
		Select(viewColumns).
		Order("d.fecha_envio DESC").
		Order("d.id_despacho DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Scan(&views).Error
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (r *repository) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	err := r.db.WithContext(ctx).Raw(
		`SELECT COUNT(*) AS total_despachos,
		        COALESCE(SUM(CASE WHEN estado = 'preparando' THEN 1 ELSE 0 END), 0) AS preparando,
		        COALESCE(SUM(CASE WHEN estado = 'enviado' THEN 1 ELSE 0 END), 0) AS enviados,
		        COALESCE(SUM(CASE WHEN estado = 'en_transito' THEN 1 ELSE 0 END), 0) AS en_transito,
		        COALESCE(SUM(CASE WHEN estado = 'entregado' THEN 1 ELSE 0 END), 0) AS entregados,
		        COALESCE(SUM(CASE WHEN estado = 'cancelado' THEN 1 ELSE 0 END), 0) AS cancelados
		 FROM despachos`,
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
