package shipments

import (
	"context"

	"gorm.io/gorm"

	"github.com/medsupply/cotizaciones-api/pkg/db/models"
	"github.com/medsupply/cotizaciones-api/pkg/enums"
	"github.com/medsupply/cotizaciones-api/pkg/pagination"
)

// Repository defines persistence operations for shipments and the quotation
// state they are coupled to.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindQuotation(ctx context.Context, quotationID int64) (*models.Quotation, error)
	SetQuotationState(ctx context.Context, quotationID int64, state enums.QuotationState) error
	FindByID(ctx context.Context, id int64) (*models.Shipment, error)
	FindIDByQuotation(ctx context.Context, quotationID int64) (int64, error)
	Create(ctx context.Context, shipment *models.Shipment) error
	Update(ctx context.Context, id int64, updates map[string]any) error
	Delete(ctx context.Context, id int64) error
	FindView(ctx context.Context, id int64) (*View, error)
	FindViewByQuotation(ctx context.Context, quotationID int64) (*View, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]View, int64, error)
	Stats(ctx context.Context) (*Stats, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// MetricsRecorder receives shipment lifecycle counters; nil is allowed.
type MetricsRecorder interface {
	ShipmentCreated()
	ShipmentDeleted()
	ShipmentStateChanged(from, to string)
}
