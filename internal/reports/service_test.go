package reports

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medsupply/cotizaciones-api/pkg/db"
	"github.com/medsupply/cotizaciones-api/pkg/db/dbtest"
	"github.com/medsupply/cotizaciones-api/pkg/db/models"
	"github.com/medsupply/cotizaciones-api/pkg/enums"
	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
	"github.com/medsupply/cotizaciones-api/pkg/types"
)

func mustDate(t *testing.T, value string) types.Date {
	t.Helper()
	d, err := types.ParseDate(value)
	require.NoError(t, err)
	return d
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type scenario struct {
	conn *db.Client
	svc  *service
}

// newScenario seeds two clients with four quotations:
// q1 A 2024-01-10 aprobada 2000 (P1 x2), q2 A 2024-01-20 rechazada 500 (P2 x1),
// q3 B 2024-02-05 enviada 1500 (P1 x1, P2 x1), q4 B 2024-03-01 pendiente 0.
func newScenario(t *testing.T) *scenario {
	t.Helper()
	conn := dbtest.Open(t)
	built, err := NewService(NewRepository(conn.DB()))
	require.NoError(t, err)
	svc := built.(*service)

	user := dbtest.SeedUser(t, conn, "vendedor", dbtest.RoleSellerID)
	a := dbtest.SeedClient(t, conn, "12345678-5", "Hospital A")
	b := dbtest.SeedClient(t, conn, "11111111-1", "Clínica B")
	p1 := dbtest.SeedProduct(t, conn, "P1", 1000, true)
	p2 := dbtest.SeedProduct(t, conn, "P2", 500, true)

	quote := func(clientID int64, date string, state enums.QuotationState, total int64) *models.Quotation {
		q := &models.Quotation{ClientID: clientID, UserID: user.ID, IssueDate: mustDate(t, date), State: state, Total: dec(total)}
		require.NoError(t, conn.DB().Create(q).Error)
		return q
	}
	line := func(q *models.Quotation, p *models.Product, qty int) {
		require.NoError(t, conn.DB().Create(&models.QuotationLine{
			QuotationID: q.ID, ProductID: p.ID, Quantity: qty, UnitPrice: p.Price, Discount: decimal.Zero,
		}).Error)
	}

	q1 := quote(a.ID, "2024-01-10", enums.QuotationStateApproved, 2000)
	line(q1, p1, 2)
	q2 := quote(a.ID, "2024-01-20", enums.QuotationStateRejected, 500)
	line(q2, p2, 1)
	q3 := quote(b.ID, "2024-02-05", enums.QuotationStateSent, 1500)
	line(q3, p1, 1)
	line(q3, p2, 1)
	quote(b.ID, "2024-03-01", enums.QuotationStatePending, 0)

	require.NoError(t, conn.DB().Create(&models.Shipment{
		QuotationID: q3.ID, SendDate: mustDate(t, "2024-02-06"), Address: "Av. Norte 100", State: enums.ShipmentStateShipped,
	}).Error)
	require.NoError(t, conn.DB().Create(&models.Shipment{
		QuotationID: q1.ID, SendDate: mustDate(t, "2024-01-11"), Address: "Av. Sur 200", State: enums.ShipmentStateDelivered,
	}).Error)

	return &scenario{conn: conn, svc: svc}
}

func TestSalesGroupsByMonth(t *testing.T) {
	sc := newScenario(t)
	from, to := mustDate(t, "2024-01-01"), mustDate(t, "2024-02-29")

	report, err := sc.svc.Sales(context.Background(), DateRange{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, report.Data, 2)

	feb, jan := report.Data[0], report.Data[1]
	assert.Equal(t, "2024-02", feb.Period)
	assert.EqualValues(t, 1, feb.Quotations)
	assert.True(t, feb.Total.Equal(dec(1500)), feb.Total.String())

	assert.Equal(t, "2024-01", jan.Period)
	assert.EqualValues(t, 2, jan.Quotations)
	assert.True(t, jan.Total.Equal(dec(2500)), jan.Total.String())
	assert.True(t, jan.Average.Equal(dec(1250)), jan.Average.String())
	assert.EqualValues(t, 1, jan.Approved)
	assert.EqualValues(t, 1, jan.Rejected)

	all, err := sc.svc.Sales(context.Background(), DateRange{})
	require.NoError(t, err)
	assert.Len(t, all.Data, 3)

	_, err = sc.svc.Sales(context.Background(), DateRange{From: &to, To: &from})
	require.ErrorIs(t, err, ErrInvalidRange)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestTopProductsAndClientsCountSoldQuotations(t *testing.T) {
	sc := newScenario(t)

	products, err := sc.svc.TopProducts(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTopLimit, products.Top)
	require.Len(t, products.Data, 2)
	assert.Equal(t, "P1", products.Data[0].Code)
	assert.EqualValues(t, 3, products.Data[0].QuantitySold)
	assert.EqualValues(t, 2, products.Data[0].TimesQuoted)
	assert.True(t, products.Data[0].Total.Equal(dec(3000)), products.Data[0].Total.String())
	assert.EqualValues(t, 1, products.Data[1].QuantitySold)

	clients, err := sc.svc.TopClients(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, clients.Data, 1)
	assert.Equal(t, "Hospital A", clients.Data[0].Name)
	assert.EqualValues(t, 1, clients.Data[0].Quotations)
	assert.True(t, clients.Data[0].Total.Equal(dec(2000)))
	assert.Equal(t, "2024-01-10", clients.Data[0].LastQuotedDate.String())
}

func TestQuotationsByState(t *testing.T) {
	sc := newScenario(t)

	rows, err := sc.svc.QuotationsByState(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, enums.QuotationStateApproved, rows[0].State)
	for _, row := range rows {
		assert.EqualValues(t, 1, row.Count)
	}
}

func TestPendingShipmentsReportsAge(t *testing.T) {
	sc := newScenario(t)
	sc.svc.today = func() types.Date { return mustDate(t, "2024-02-16") }

	report, err := sc.svc.PendingShipments(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Total)
	assert.Equal(t, enums.ShipmentStateShipped, report.Data[0].State)
	assert.Equal(t, 10, report.Data[0].DaysSinceSend)
	assert.Equal(t, "Clínica B", report.Data[0].ClientName)
}

func TestDashboard(t *testing.T) {
	sc := newScenario(t)
	sc.svc.today = func() types.Date { return mustDate(t, "2024-01-25") }

	dash, err := sc.svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 2, dash.General.Clients)
	assert.EqualValues(t, 2, dash.General.ActiveProducts)
	assert.EqualValues(t, 4, dash.General.Quotations)
	assert.EqualValues(t, 1, dash.General.PendingQuotations)
	assert.EqualValues(t, 1, dash.General.PendingShipments)
	assert.True(t, dash.General.Sales.Equal(dec(3500)), dash.General.Sales.String())
	assert.EqualValues(t, 1, dash.General.ActiveUsers)

	assert.EqualValues(t, 2, dash.CurrentMonth.Quotations)
	assert.True(t, dash.CurrentMonth.Total.Equal(dec(2500)))

	require.Len(t, dash.Latest, 4)
	assert.Equal(t, "2024-03-01", dash.Latest[0].IssueDate.String())
	assert.Equal(t, "2024-01-10", dash.Latest[3].IssueDate.String())
}
