package shipments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medsupply/cotizaciones-api/pkg/db"
	"github.com/medsupply/cotizaciones-api/pkg/db/dbtest"
	"github.com/medsupply/cotizaciones-api/pkg/db/models"
	"github.com/medsupply/cotizaciones-api/pkg/enums"
	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
	"github.com/medsupply/cotizaciones-api/pkg/logger"
	"github.com/medsupply/cotizaciones-api/pkg/pagination"
	"github.com/medsupply/cotizaciones-api/pkg/types"
)

type countingMetrics struct {
	created int
	deleted int
	changes []string
}

func (m *countingMetrics) ShipmentCreated() { m.created++ }
func (m *countingMetrics) ShipmentDeleted() { m.deleted++ }
func (m *countingMetrics) ShipmentStateChanged(from, to string) {
	m.changes = append(m.changes, from+"->"+to)
}

type fixture struct {
	client   *db.Client
	svc      *service
	metrics  *countingMetrics
	clientID int64
	userID   int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := dbtest.Open(t)
	metrics := &countingMetrics{}
	svc, err := NewService(NewRepository(client.DB()), client, metrics, logger.Nop())
	require.NoError(t, err)
	return &fixture{
		client:   client,
		svc:      svc.(*service),
		metrics:  metrics,
		clientID: dbtest.SeedClient(t, client, "12345678-5", "Clínica Central").ID,
		userID:   dbtest.SeedUser(t, client, "admin1", dbtest.RoleAdminID).ID,
	}
}

func (f *fixture) quotation(t *testing.T, state enums.QuotationState) *models.Quotation {
	return dbtest.SeedQuotation(t, f.client, f.clientID, f.userID, state)
}

func (f *fixture) quotationState(t *testing.T, id int64) enums.QuotationState {
	t.Helper()
	var q models.Quotation
	require.NoError(t, f.client.DB().Where("id_cotizacion = ?", id).First(&q).Error)
	return q.State
}

func createInput(quotationID int64) CreateInput {
	return CreateInput{QuotationID: quotationID, SendDate: "2024-01-20", Address: "Av. Providencia 1234"}
}

func TestCreateRequiresApprovedQuotation(t *testing.T) {
	f := newFixture(t)
	pending := f.quotation(t, enums.QuotationStatePending)

	_, err := f.svc.Create(context.Background(), createInput(pending.ID))
	require.ErrorIs(t, err, ErrQuotationNotApproved)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))
	assert.Equal(t, enums.QuotationStatePending, f.quotationState(t, pending.ID))
	assert.Zero(t, dbtest.Count(t, f.client, "despachos"))

	approved := f.quotation(t, enums.QuotationStateApproved)
	view, err := f.svc.Create(context.Background(), createInput(approved.ID))
	require.NoError(t, err)
	assert.Equal(t, enums.ShipmentStatePreparing, view.State)
	assert.Equal(t, enums.QuotationStateSent, view.QuotationState)
	assert.Equal(t, "Clínica Central", view.ClientName)
	assert.Equal(t, "2024-01-20", view.SendDate.String())
	assert.Equal(t, enums.QuotationStateSent, f.quotationState(t, approved.ID))
	assert.Equal(t, 1, f.metrics.created)
}

func TestCreateAllowsSentQuotationWithoutShipment(t *testing.T) {
	f := newFixture(t)
	sent := f.quotation(t, enums.QuotationStateSent)

	_, err := f.svc.Create(context.Background(), createInput(sent.ID))
	require.NoError(t, err)
}

func TestCreateRejectsSecondShipment(t *testing.T) {
	f := newFixture(t)
	q := f.quotation(t, enums.QuotationStateApproved)

	first, err := f.svc.Create(context.Background(), createInput(q.ID))
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), createInput(q.ID))
	require.ErrorIs(t, err, ErrShipmentAlreadyExists)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
	details, ok := pkgerrors.As(err).Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, first.ID, details["id_despacho"])
	assert.EqualValues(t, 1, dbtest.Count(t, f.client, "despachos"))
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	q := f.quotation(t, enums.QuotationStateApproved)

	_, err := f.svc.Create(context.Background(), CreateInput{QuotationID: q.ID, SendDate: "2024-01-20"})
	require.ErrorIs(t, err, ErrMissingFields)

	_, err = f.svc.Create(context.Background(), CreateInput{QuotationID: q.ID, SendDate: "20-01-2024", Address: "x"})
	require.ErrorIs(t, err, ErrInvalidDateFormat)

	bad := "mañana"
	in := createInput(q.ID)
	in.EstimatedDelivery = &bad
	_, err = f.svc.Create(context.Background(), in)
	require.ErrorIs(t, err, ErrInvalidDateFormat)

	_, err = f.svc.Create(context.Background(), createInput(9999))
	require.ErrorIs(t, err, ErrQuotationNotFound)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestDeleteRevertsQuotation(t *testing.T) {
	f := newFixture(t)
	q := f.quotation(t, enums.QuotationStateApproved)
	view, err := f.svc.Create(context.Background(), createInput(q.ID))
	require.NoError(t, err)
	require.Equal(t, enums.QuotationStateSent, f.quotationState(t, q.ID))

	require.NoError(t, f.svc.Delete(context.Background(), view.ID))
	assert.Equal(t, enums.QuotationStateApproved, f.quotationState(t, q.ID))
	assert.Zero(t, dbtest.Count(t, f.client, "despachos"))
	assert.Equal(t, 1, f.metrics.deleted)

	err = f.svc.Delete(context.Background(), view.ID)
	require.ErrorIs(t, err, ErrShipmentNotFound)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestUpdateFollowsStateMachine(t *testing.T) {
	f := newFixture(t)
	q := f.quotation(t, enums.QuotationStateApproved)
	view, err := f.svc.Create(context.Background(), createInput(q.ID))
	require.NoError(t, err)

	f.svc.today = func() types.Date {
		d, _ := types.ParseDate("2024-01-25")
		return d
	}

	delivered := "entregado"
	_, err = f.svc.Update(context.Background(), view.ID, Patch{State: &delivered})
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))

	for _, next := range []string{"enviado", "en_transito", "entregado"} {
		state := next
		view, err = f.svc.Update(context.Background(), view.ID, Patch{State: &state})
		require.NoError(t, err, next)
		assert.Equal(t, enums.ShipmentState(next), view.State)
	}
	require.NotNil(t, view.ActualDelivery)
	assert.Equal(t, "2024-01-25", view.ActualDelivery.String())
	assert.Equal(t, []string{"preparando->enviado", "enviado->en_transito", "en_transito->entregado"}, f.metrics.changes)

	cancelled := "cancelado"
	_, err = f.svc.Update(context.Background(), view.ID, Patch{State: &cancelled})
	require.ErrorIs(t, err, ErrInvalidTransition)

	note := "Recibido conforme"
	view, err = f.svc.Update(context.Background(), view.ID, Patch{Observations: &note})
	require.NoError(t, err)
	require.NotNil(t, view.Observations)
	assert.Equal(t, note, *view.Observations)
}

func TestUpdateFields(t *testing.T) {
	f := newFixture(t)
	q := f.quotation(t, enums.QuotationStateApproved)
	view, err := f.svc.Create(context.Background(), createInput(q.ID))
	require.NoError(t, err)

	estimated, _ := types.ParseDate("2024-02-01")
	tracking := "CHX-001"
	address := "  Calle Nueva 55  "
	view, err = f.svc.Update(context.Background(), view.ID, Patch{
		EstimatedDelivery: types.NullableDate{Valid: true, Value: &estimated},
		TrackingNumber:    &tracking,
		Address:           &address,
	})
	require.NoError(t, err)
	require.NotNil(t, view.EstimatedDelivery)
	assert.Equal(t, "2024-02-01", view.EstimatedDelivery.String())
	assert.Equal(t, "Calle Nueva 55", view.Address)
	require.NotNil(t, view.TrackingNumber)
	assert.Equal(t, tracking, *view.TrackingNumber)

	view, err = f.svc.Update(context.Background(), view.ID, Patch{EstimatedDelivery: types.NullableDate{Valid: true}})
	require.NoError(t, err)
	assert.Nil(t, view.EstimatedDelivery)

	cancelled := "cancelado"
	view, err = f.svc.Update(context.Background(), view.ID, Patch{State: &cancelled})
	require.NoError(t, err)
	assert.Equal(t, enums.ShipmentStateCancelled, view.State)
	assert.Nil(t, view.ActualDelivery)
}

func TestUpdateValidation(t *testing.T) {
	f := newFixture(t)
	q := f.quotation(t, enums.QuotationStateApproved)
	view, err := f.svc.Create(context.Background(), createInput(q.ID))
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), view.ID, Patch{})
	require.ErrorIs(t, err, ErrNoFieldsToUpdate)

	bogus := "perdido"
	_, err = f.svc.Update(context.Background(), view.ID, Patch{State: &bogus})
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	blank := "   "
	_, err = f.svc.Update(context.Background(), view.ID, Patch{Address: &blank})
	require.ErrorIs(t, err, ErrInvalidAddress)

	note := "x"
	_, err = f.svc.Update(context.Background(), 9999, Patch{Observations: &note})
	require.ErrorIs(t, err, ErrShipmentNotFound)
}

func TestGetByQuotationAndList(t *testing.T) {
	f := newFixture(t)
	q1 := f.quotation(t, enums.QuotationStateApproved)
	q2 := f.quotation(t, enums.QuotationStateApproved)
	f.quotation(t, enums.QuotationStatePending)

	s1, err := f.svc.Create(context.Background(), createInput(q1.ID))
	require.NoError(t, err)
	in := createInput(q2.ID)
	in.SendDate = "2024-03-01"
	s2, err := f.svc.Create(context.Background(), in)
	require.NoError(t, err)

	got, err := f.svc.GetByQuotation(context.Background(), q1.ID)
	require.NoError(t, err)
	assert.Equal(t, s1.ID, got.ID)
	assert.Equal(t, "12345678-5", got.ClientRUT)

	_, err = f.svc.GetByQuotation(context.Background(), 9999)
	require.ErrorIs(t, err, ErrShipmentNotFound)

	page, err := f.svc.List(context.Background(), ListFilters{}, pagination.Params{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Data, 2)
	assert.Equal(t, s2.ID, page.Data[0].ID)

	from, _ := types.ParseDate("2024-02-01")
	page, err = f.svc.List(context.Background(), ListFilters{DateFrom: &from}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, s2.ID, page.Data[0].ID)

	shipped := enums.ShipmentStateShipped
	page, err = f.svc.List(context.Background(), ListFilters{State: &shipped}, pagination.Params{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 2, stats.Preparing)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, nil, nil, nil)
	require.Error(t, err)
}
