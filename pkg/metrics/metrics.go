package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const namespace = "medsupply"

// Metrics holds the HTTP and domain collectors. A nil *Metrics, or one built
// without a registerer, records nothing.
type Metrics struct {
	httpDuration *prometheus.HistogramVec
	httpRequests *prometheus.CounterVec

	quotationsCreated    prometheus.Counter
	quotationLines       prometheus.Histogram
	quotationAmount      prometheus.Counter
	quotationTransitions *prometheus.CounterVec

	shipmentsCreated    prometheus.Counter
	shipmentsDeleted    prometheus.Counter
	shipmentTransitions *prometheus.CounterVec
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served.",
		}, []string{"method", "route", "status"}),
		quotationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotations_created_total",
			Help:      "Quotations committed.",
		}),
		quotationLines: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quotation_line_items",
			Help:      "Line items per created quotation.",
			Buckets:   []float64{1, 2, 3, 5, 10, 20, 50},
		}),
		quotationAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotation_amount_total",
			Help:      "Sum of totals of created quotations.",
		}),
		quotationTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotation_state_transitions_total",
			Help:      "Quotation state changes.",
		}, []string{"from", "to"}),
		shipmentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shipments_created_total",
			Help:      "Shipments created.",
		}),
		shipmentsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shipments_deleted_total",
			Help:      "Shipments deleted (quotation reverted to approved).",
		}),
		shipmentTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shipment_state_transitions_total",
			Help:      "Shipment state changes.",
		}, []string{"from", "to"}),
	}
	reg.MustRegister(
		m.httpDuration,
		m.httpRequests,
		m.quotationsCreated,
		m.quotationLines,
		m.quotationAmount,
		m.quotationTransitions,
		m.shipmentsCreated,
		m.shipmentsDeleted,
		m.shipmentTransitions,
	)
	return m
}

// ObserveHTTP records one served request. route is the matched pattern, not
// the raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	if m == nil || m.httpDuration == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	code := strconv.Itoa(status)
	m.httpDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
	m.httpRequests.WithLabelValues(method, route, code).Inc()
}

func (m *Metrics) QuotationCreated(lines int, total decimal.Decimal) {
	if m == nil || m.quotationsCreated == nil {
		return
	}
	m.quotationsCreated.Inc()
	m.quotationLines.Observe(float64(lines))
	if amount, _ := total.Float64(); amount > 0 {
		m.quotationAmount.Add(amount)
	}
}

func (m *Metrics) QuotationStateChanged(from, to string) {
	if m == nil || m.quotationTransitions == nil {
		return
	}
	m.quotationTransitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

func (m *Metrics) ShipmentCreated() {
	if m == nil || m.shipmentsCreated == nil {
		return
	}
	m.shipmentsCreated.Inc()
}

func (m *Metrics) ShipmentDeleted() {
	if m == nil || m.shipmentsDeleted == nil {
		return
	}
	m.shipmentsDeleted.Inc()
}

func (m *Metrics) ShipmentStateChanged(from, to string) {
	if m == nil || m.shipmentTransitions == nil {
		return
	}
	m.shipmentTransitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
