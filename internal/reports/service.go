package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/medsupply/cotizaciones-api/pkg/enums"
	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
	"github.com/medsupply/cotizaciones-api/pkg/types"
)

const (
	DefaultTopLimit = 10
	MaxTopLimit     = 100
	recentLimit     = 5
)

var ErrInvalidRange = fmt.Errorf("date range start after end")

// Index lists the reports exposed under /reportes.
var Index = []Available{
	{Endpoint: "/reportes/ventas", Description: "Reporte de ventas por período"},
	{Endpoint: "/reportes/productos-mas-vendidos", Description: "Productos más vendidos"},
	{Endpoint: "/reportes/clientes-top", Description: "Clientes con más cotizaciones"},
	{Endpoint: "/reportes/cotizaciones-por-estado", Description: "Cotizaciones agrupadas por estado"},
	{Endpoint: "/reportes/despachos-pendientes", Description: "Despachos pendientes de entrega"},
	{Endpoint: "/reportes/dashboard", Description: "Dashboard general del sistema"},
}

type Repository interface {
	QuotationFacts(ctx context.Context, rng DateRange) ([]quotationFact, error)
	TopProducts(ctx context.Context, limit int) ([]TopProduct, error)
	TopClients(ctx context.Context, limit int) ([]TopClient, error)
	QuotationsByState(ctx context.Context) ([]StateSummary, error)
	PendingShipments(ctx context.Context) ([]PendingShipment, error)
	GeneralStats(ctx context.Context) (*GeneralStats, error)
	MonthSummary(ctx context.Context, from, to types.Date) (*MonthSummary, error)
	RecentQuotations(ctx context.Context, limit int) ([]RecentQuotation, error)
}

type Service interface {
	Sales(ctx context.Context, rng DateRange) (*SalesReport, error)
	TopProducts(ctx context.Context, limit int) (*TopReport[TopProduct], error)
	TopClients(ctx context.Context, limit int) (*TopReport[TopClient], error)
	QuotationsByState(ctx context.Context) ([]StateSummary, error)
	PendingShipments(ctx context.Context) (*PendingShipmentsReport, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type service struct {
	repo  Repository
	today func() types.Date
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	return &service{repo: repo, today: types.Today}, nil
}

func dependency(err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Error al generar reporte")
}

// Sales groups quotations by issue month, newest month first.
func (s *service) Sales(ctx context.Context, rng DateRange) (*SalesReport, error) {
	if rng.From != nil && rng.To != nil && rng.From.After(rng.To.Time) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, ErrInvalidRange, "fecha_desde no puede ser posterior a fecha_hasta")
	}
	facts, err := s.repo.QuotationFacts(ctx, rng)
	if err != nil {
		return nil, dependency(err)
	}

	byPeriod := map[string]*SalesPeriod{}
	for _, f := range facts {
		key := f.IssueDate.Format("2006-01")
		p, ok := byPeriod[key]
		if !ok {
			p = &SalesPeriod{Period: key, Total: decimal.Zero}
			byPeriod[key] = p
		}
		p.Quotations++
		p.Total = p.Total.Add(f.Total)
		switch f.State {
		case enums.QuotationStateApproved:
			p.Approved++
		case enums.QuotationStateRejected:
			p.Rejected++
		}
	}

	periods := make([]SalesPeriod, 0, len(byPeriod))
	for _, p := range byPeriod {
		p.Average = p.Total.Div(decimal.NewFromInt(p.Quotations)).Round(2)
		periods = append(periods, *p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Period > periods[j].Period })
	return &SalesReport{Range: rng, Data: periods}, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultTopLimit
	}
	if limit > MaxTopLimit {
		return MaxTopLimit
	}
	return limit
}

func (s *service) TopProducts(ctx context.Context, limit int) (*TopReport[TopProduct], error) {
	limit = normalizeLimit(limit)
	rows, err := s.repo.TopProducts(ctx, limit)
	if err != nil {
		return nil, dependency(err)
	}
	if rows == nil {
		rows = []TopProduct{}
	}
	return &TopReport[TopProduct]{Top: limit, Data: rows}, nil
}

func (s *service) TopClients(ctx context.Context, limit int) (*TopReport[TopClient], error) {
	limit = normalizeLimit(limit)
	rows, err := s.repo.TopClients(ctx, limit)
	if err != nil {
		return nil, dependency(err)
	}
	for i := range rows {
		rows[i].Average = rows[i].Average.Round(2)
	}
	if rows == nil {
		rows = []TopClient{}
	}
	return &TopReport[TopClient]{Top: limit, Data: rows}, nil
}

func (s *service) QuotationsByState(ctx context.Context) ([]StateSummary, error) {
	rows, err := s.repo.QuotationsByState(ctx)
	if err != nil {
		return nil, dependency(err)
	}
	for i := range rows {
		rows[i].Average = rows[i].Average.Round(2)
	}
	if rows == nil {
		rows = []StateSummary{}
	}
	return rows, nil
}

func (s *service) PendingShipments(ctx context.Context) (*PendingShipmentsReport, error) {
	rows, err := s.repo.PendingShipments(ctx)
	if err != nil {
		return nil, dependency(err)
	}
	today := s.today()
	for i := range rows {
		rows[i].DaysSinceSend = rows[i].SendDate.DaysUntil(today)
	}
	if rows == nil {
		rows = []PendingShipment{}
	}
	return &PendingShipmentsReport{Total: len(rows), Data: rows}, nil
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	general, err := s.repo.GeneralStats(ctx)
	if err != nil {
		return nil, dependency(err)
	}

	today := s.today()
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	month, err := s.repo.MonthSummary(ctx, types.NewDate(first), types.NewDate(first.AddDate(0, 1, 0)))
	if err != nil {
		return nil, dependency(err)
	}

	latest, err := s.repo.RecentQuotations(ctx, recentLimit)
	if err != nil {
		return nil, dependency(err)
	}
	if latest == nil {
		latest = []RecentQuotation{}
	}
	return &Dashboard{General: *general, CurrentMonth: *month, Latest: latest}, nil
}
