package quotations

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/medsupply/cotizaciones-api/pkg/db/models"
	"github.com/medsupply/cotizaciones-api/pkg/pagination"
)

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// stubRepo fails loudly when a validation test reaches storage.
type stubRepo struct{}

var errUnexpectedCall = gorm.ErrNotImplemented

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) ClientExists(context.Context, int64) (bool, error) {
	return false, errUnexpectedCall
}

func (s *stubRepo) FindProduct(context.Context, int64) (*models.Product, error) {
	return nil, errUnexpectedCall
}

func (s *stubRepo) CreateQuotation(context.Context, *models.Quotation) error {
	return errUnexpectedCall
}

func (s *stubRepo) CreateLine(context.Context, *models.QuotationLine) error {
	return errUnexpectedCall
}

func (s *stubRepo) RecomputeTotal(context.Context, int64) (decimal.Decimal, error) {
	return decimal.Zero, errUnexpectedCall
}

func (s *stubRepo) FindQuotation(context.Context, int64) (*models.Quotation, error) {
	return nil, errUnexpectedCall
}

func (s *stubRepo) FindHeader(context.Context, int64) (*Header, error) {
	return nil, errUnexpectedCall
}

func (s *stubRepo) FindDetail(context.Context, int64) (*Detail, error) {
	return nil, errUnexpectedCall
}

func (s *stubRepo) FindLines(context.Context, int64) ([]Line, error) {
	return nil, errUnexpectedCall
}

func (s *stubRepo) FindShipment(context.Context, int64) (*ShipmentInfo, error) {
	return nil, errUnexpectedCall
}

func (s *stubRepo) List(context.Context, ListFilters, pagination.Params) ([]ListItem, int64, error) {
	return nil, 0, errUnexpectedCall
}

func (s *stubRepo) Update(context.Context, int64, map[string]any) error {
	return errUnexpectedCall
}

func (s *stubRepo) Delete(context.Context, int64) (int64, error) {
	return 0, errUnexpectedCall
}

func (s *stubRepo) Stats(context.Context) (*Stats, error) {
	return nil, errUnexpectedCall
}
