package quotations

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/medsupply/cotizaciones-api/pkg/db"
	"github.com/medsupply/cotizaciones-api/pkg/db/models"
	"github.com/medsupply/cotizaciones-api/pkg/enums"
	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
	"github.com/medsupply/cotizaciones-api/pkg/logger"
	"github.com/medsupply/cotizaciones-api/pkg/pagination"
	"github.com/medsupply/cotizaciones-api/pkg/types"
)

// MaxLineQuantity is the largest cantidad the detalle_cotizacion column holds.
const MaxLineQuantity = math.MaxInt32

// Service is the quotation engine.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*Header, error)
	Update(ctx context.Context, id int64, patch Patch) (*Header, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*Detail, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[ListItem], error)
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	metrics MetricsRecorder
	logg    *logger.Logger
}

// NewService builds the quotation engine. metrics may be nil.
func NewService(repo Repository, tx txRunner, metrics MetricsRecorder, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quotations repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:    repo,
		tx:      tx,
		metrics: metrics,
		logg:    logg,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Header, error) {
	if input.ClientID <= 0 || strings.TrimSpace(input.IssueDate) == "" {
		return nil, missingFields()
	}
	if len(input.Lines) == 0 {
		return nil, emptyLineItems()
	}
	issueDate, err := types.ParseDate(input.IssueDate)
	if err != nil {
		return nil, invalidDateFormat("fecha_emision")
	}
	for i, line := range input.Lines {
		if line.ProductID <= 0 || line.Quantity == nil {
			return nil, missingLineFields(i)
		}
	}
	if input.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Usuario no identificado")
	}

	var (
		quotationID int64
		total       decimal.Decimal
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		exists, err := repo.ClientExists(ctx, input.ClientID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verificar cliente")
		}
		if !exists {
			return clientNotFound(input.ClientID)
		}

		quotation := &models.Quotation{
			ClientID:     input.ClientID,
			UserID:       input.UserID,
			IssueDate:    issueDate,
			State:        enums.QuotationStatePending,
			Total:        decimal.Zero,
			Observations: input.Observations,
		}
		if err := repo.CreateQuotation(ctx, quotation); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "crear cotización")
		}

		for _, in := range input.Lines {
			line, err := s.buildLine(ctx, repo, quotation.ID, in)
			if err != nil {
				return err
			}
			if err := repo.CreateLine(ctx, line); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "crear detalle de cotización")
			}
		}

		total, err = repo.RecomputeTotal(ctx, quotation.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "calcular total")
		}
		quotationID = quotation.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.QuotationCreated(len(input.Lines), total)
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"id_cotizacion": quotationID,
		"id_cliente":    input.ClientID,
		"lines":         len(input.Lines),
		"total":         total.String(),
	})
	s.logg.Info(ctx, "quotation.created")

	return s.header(ctx, quotationID)
}

// buildLine validates one requested line against the catalog and snapshots the
// product's current price.
func (s *service) buildLine(ctx context.Context, repo Repository, quotationID int64, in LineInput) (*models.QuotationLine, error) {
	product, err := repo.FindProduct(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, productNotFound(in.ProductID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consultar producto")
	}
	if !product.Active {
		return nil, productInactive(in.ProductID)
	}
	quantity := *in.Quantity
	if quantity <= 0 || int64(quantity) > MaxLineQuantity {
		return nil, invalidQuantity(in.ProductID)
	}
	gross := product.Price.Mul(decimal.NewFromInt(int64(quantity)))
	if in.Discount.IsNegative() || in.Discount.GreaterThan(gross) {
		return nil, invalidDiscount(in.ProductID)
	}
	return &models.QuotationLine{
		QuotationID: quotationID,
		ProductID:   in.ProductID,
		Quantity:    quantity,
		UnitPrice:   product.Price,
		Discount:    in.Discount,
	}, nil
}

func (s *service) Update(ctx context.Context, id int64, patch Patch) (*Header, error) {
	if patch.Empty() {
		return nil, noFieldsToUpdate()
	}

	updates := map[string]any{}
	var next enums.QuotationState
	if patch.State != nil {
		state, err := enums.ParseQuotationState(*patch.State)
		if err != nil {
			return nil, invalidState(*patch.State)
		}
		next = state
		updates["estado"] = state.String()
	}
	if patch.Observations != nil {
		updates["observaciones"] = *patch.Observations
	}

	current, err := s.repo.FindQuotation(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, quotationNotFound(id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consultar cotización")
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "actualizar cotización")
	}

	if patch.State != nil && current.State != next {
		if s.metrics != nil {
			s.metrics.QuotationStateChanged(current.State.String(), next.String())
		}
		ctx = s.logg.WithFields(ctx, map[string]any{
			"id_cotizacion": id,
			"from":          current.State.String(),
			"to":            next.String(),
		})
		s.logg.Info(ctx, "quotation.state_changed")
	}

	return s.header(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindQuotation(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return quotationNotFound(id)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consultar cotización")
		}

		shipment, err := repo.FindShipment(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consultar despacho")
		}
		if shipment != nil {
			return hasShipment(shipment.ID)
		}

		if _, err := repo.Delete(ctx, id); err != nil {
			if db.IsForeignKeyViolation(err) {
				return hasShipment(0)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "eliminar cotización")
		}
		return nil
	})
}

func (s *service) Get(ctx context.Context, id int64) (*Detail, error) {
	detail, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, quotationNotFound(id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consultar cotización")
	}

	lines, err := s.repo.FindLines(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consultar detalle de cotización")
	}
	if lines == nil {
		lines = []Line{}
	}
	detail.Lines = lines

	shipment, err := s.repo.FindShipment(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consultar despacho")
	}
	detail.Shipment = shipment
	return detail, nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[ListItem], error) {
	params = params.Normalize()
	if filters.DateFrom != nil && filters.DateTo != nil && filters.DateFrom.After(filters.DateTo.Time) {
		return pagination.Page[ListItem]{}, pkgerrors.New(pkgerrors.CodeValidation, "fecha_desde no puede ser posterior a fecha_hasta")
	}
	items, total, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return pagination.Page[ListItem]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listar cotizaciones")
	}
	return pagination.NewPage(params, total, items), nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "obtener estadísticas de cotizaciones")
	}
	return stats, nil
}

func (s *service) header(ctx context.Context, id int64) (*Header, error) {
	header, err := s.repo.FindHeader(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, quotationNotFound(id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consultar cotización")
	}
	return header, nil
}
