package quotations

import (
	"context"

	"github.com/medsupply/cotizaciones-api/pkg/db/models"
	"github.com/medsupply/cotizaciones-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository defines persistence operations for quotations and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ClientExists(ctx context.Context, clientID int64) (bool, error)
	FindProduct(ctx context.Context, productID int64) (*models.Product, error)
	CreateQuotation(ctx context.Context, quotation *models.Quotation) error
	CreateLine(ctx context.Context, line *models.QuotationLine) error
	RecomputeTotal(ctx context.Context, quotationID int64) (decimal.Decimal, error)
	FindQuotation(ctx context.Context, id int64) (*models.Quotation, error)
	FindHeader(ctx context.Context, id int64) (*Header, error)
	FindDetail(ctx context.Context, id int64) (*Detail, error)
	FindLines(ctx context.Context, quotationID int64) ([]Line, error)
	FindShipment(ctx context.Context, quotationID int64) (*ShipmentInfo, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]ListItem, int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	Delete(ctx context.Context, id int64) (int64, error)
	Stats(ctx context.Context) (*Stats, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// MetricsRecorder receives domain counters; a nil recorder is allowed.
type MetricsRecorder interface {
	QuotationCreated(lines int, total decimal.Decimal)
	QuotationStateChanged(from, to string)
}
