package shipments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/medsupply/cotizaciones-api/pkg/db"
	"github.com/medsupply/cotizaciones-api/pkg/db/models"
	"github.com/medsupply/cotizaciones-api/pkg/enums"
	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
	"github.com/medsupply/cotizaciones-api/pkg/logger"
	"github.com/medsupply/cotizaciones-api/pkg/pagination"
	"github.com/medsupply/cotizaciones-api/pkg/types"
)

// Service coordinates shipments with the state of their quotation. Create and
// Delete run the shipment write and the quotation state change in one
// transaction.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*View, error)
	Update(ctx context.Context, id int64, patch Patch) (*View, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*View, error)
	GetByQuotation(ctx context.Context, quotationID int64) (*View, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[View], error)
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	metrics MetricsRecorder
	logg    *logger.Logger
	today   func() types.Date
}

func NewService(repo Repository, tx txRunner, metrics MetricsRecorder, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shipments repository required")
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
		today:   types.Today,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*View, error) {
	address := strings.TrimSpace(input.Address)
	if input.QuotationID <= 0 || strings.TrimSpace(input.SendDate) == "" || address == "" {
		return nil, missingFields()
	}
	sendDate, err := types.ParseDate(input.SendDate)
	if err != nil {
		return nil, invalidDateFormat("fecha_envio")
	}
	var estimated *types.Date
	if input.EstimatedDelivery != nil && strings.TrimSpace(*input.EstimatedDelivery) != "" {
		d, err := types.ParseDate(*input.EstimatedDelivery)
		if err != nil {
			return nil, invalidDateFormat("fecha_entrega_estimada")
		}
		estimated = &d
	}

	var shipmentID int64
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		quotation, err := repo.FindQuotation(ctx, input.QuotationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return quotationNotFound(input.QuotationID)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consultar cotización")
		}
		if !quotation.State.Shippable() {
			return quotationNotApproved(quotation.State)
		}

		existing, err := repo.FindIDByQuotation(ctx, input.QuotationID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consultar despacho existente")
		}
		if existing > 0 {
			return shipmentAlreadyExists(existing)
		}

		shipment := &models.Shipment{
			QuotationID:       input.QuotationID,
			SendDate:          sendDate,
			EstimatedDelivery: estimated,
			Address:           address,
			State:             enums.ShipmentStatePreparing,
			TrackingNumber:    input.TrackingNumber,
			Observations:      input.Observations,
		}
		if err := repo.Create(ctx, shipment); err != nil {
			if db.IsUniqueViolation(err, "despachos_id_cotizacion_key", "despachos.id_cotizacion") {
				return shipmentAlreadyExists(0)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "crear despacho")
		}

		if err := repo.SetQuotationState(ctx, input.QuotationID, enums.QuotationStateSent); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marcar cotización como enviada")
		}
		shipmentID = shipment.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ShipmentCreated()
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"id_despacho":   shipmentID,
		"id_cotizacion": input.QuotationID,
	})
	s.logg.Info(ctx, "shipment.created")

	return s.Get(ctx, shipmentID)
}

func (s *service) Update(ctx context.Context, id int64, patch Patch) (*View, error) {
	if patch.Empty() {
		return nil, noFieldsToUpdate()
	}

	var next *enums.ShipmentState
	if patch.State != nil {
		state, err := enums.ParseShipmentState(*patch.State)
		if err != nil {
			return nil, invalidState(*patch.State)
		}
		next = &state
	}

	updates := map[string]any{}
	if patch.SendDate != nil {
		if patch.SendDate.IsZero() {
			return nil, invalidDateFormat("fecha_envio")
		}
		updates["fecha_envio"] = *patch.SendDate
	}
	if patch.EstimatedDelivery.Valid {
		updates["fecha_entrega_estimada"] = nullableDateValue(patch.EstimatedDelivery)
	}
	if patch.ActualDelivery.Valid {
		updates["fecha_entrega_real"] = nullableDateValue(patch.ActualDelivery)
	}
	if patch.Address != nil {
		address := strings.TrimSpace(*patch.Address)
		if address == "" {
			return nil, invalidAddress()
		}
		updates["direccion_envio"] = address
	}
	if patch.TrackingNumber != nil {
		updates["tracking_number"] = *patch.TrackingNumber
	}
	if patch.Observations != nil {
		updates["observaciones"] = *patch.Observations
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shipmentNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consultar despacho")
	}

	if next != nil {
		if !current.State.CanTransitionTo(*next) {
			return nil, invalidTransition(current.State, *next)
		}
		updates["estado"] = next.String()
		deliveredNow := *next == enums.ShipmentStateDelivered && current.State != enums.ShipmentStateDelivered
		if deliveredNow && !patch.ActualDelivery.Valid && current.ActualDelivery == nil {
			updates["fecha_entrega_real"] = s.today()
		}
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "actualizar despacho")
	}

	if next != nil && *next != current.State {
		if s.metrics != nil {
			s.metrics.ShipmentStateChanged(current.State.String(), next.String())
		}
		ctx = s.logg.WithFields(ctx, map[string]any{
			"id_despacho": id,
			"from":        current.State.String(),
			"to":          next.String(),
		})
		s.logg.Info(ctx, "shipment.state_changed")
	}

	return s.Get(ctx, id)
}

func nullableDateValue(n types.NullableDate) any {
	if n.Value == nil || n.Value.IsZero() {
		return nil
	}
	return *n.Value
}

// Delete removes the shipment and returns its quotation to aprobada.
func (s *service) Delete(ctx context.Context, id int64) error {
	var quotationID int64
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		shipment, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shipmentNotFound()
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consultar despacho")
		}
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "eliminar despacho")
		}
		if err := repo.SetQuotationState(ctx, shipment.QuotationID, enums.QuotationStateApproved); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revertir estado de cotización")
		}
		quotationID = shipment.QuotationID
		return nil
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.ShipmentDeleted()
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"id_despacho":   id,
		"id_cotizacion": quotationID,
	})
	s.logg.Info(ctx, "shipment.deleted")
	return nil
}

func (s *service) Get(ctx context.Context, id int64) (*View, error) {
	view, err := s.repo.FindView(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shipmentNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consultar despacho")
	}
	return view, nil
}

func (s *service) GetByQuotation(ctx context.Context, quotationID int64) (*View, error) {
	view, err := s.repo.FindViewByQuotation(ctx, quotationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrShipmentNotFound, "No hay despacho para esta cotización").
				WithDetails(map[string]any{"id_cotizacion": quotationID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consultar despacho")
	}
	return view, nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[View], error) {
	params = params.Normalize()
	views, total, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return pagination.Page[View]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listar despachos")
	}
	return pagination.NewPage(params, total, views), nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "obtener estadísticas de despachos")
	}
	return stats, nil
}
