// Package metrics exposes Prometheus counters for deliveries, household alerts and imports.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Import row outcomes
const (
	OutcomeSucceeded        = "succeeded"
	OutcomeMissingRecipient = "missing_recipient"
	OutcomeFailed           = "failed"
)

// Metrics holds every collector of the service. A nil *Metrics is valid and records nothing.
type Metrics struct {
	DeliveriesRecorded    *prometheus.CounterVec
	BeneficiariesUpserted *prometheus.CounterVec
	HouseholdAlerts       prometheus.Counter
	CrossCheckFailures    prometheus.Counter
	ImportRows            *prometheus.CounterVec
	ImportDuration        *prometheus.HistogramVec
	HTTPRequestDuration   *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers all collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		DeliveriesRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ayuda_deliveries_recorded_total",
			Help: "Deliveries appended to the ledger, by source (manual or import)",
		}, []string{"source"}),
		BeneficiariesUpserted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ayuda_beneficiaries_upserted_total",
			Help: "Beneficiary records written, by source (manual or import)",
		}, []string{"source"}),
		HouseholdAlerts: factory.NewCounter(prometheus.CounterOpts{
			Name: "ayuda_household_alerts_total",
			Help: "Lookups that raised a same-day household delivery alert",
		}),
		CrossCheckFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "ayuda_household_crosscheck_failures_total",
			Help: "Household checks that degraded to no alert because a query failed",
		}),
		ImportRows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ayuda_import_rows_total",
			Help: "Bulk import rows processed, by mode and outcome",
		}, []string{"mode", "outcome"}),
		ImportDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ayuda_import_duration_seconds",
			Help:    "Duration of bulk imports",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"mode"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ayuda_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	} else {
		m.gatherer = prometheus.DefaultGatherer
	}
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// IncDeliveryRecorded counts one appended delivery.
func (m *Metrics) IncDeliveryRecorded(source string) {
	if m == nil {
		return
	}
	m.DeliveriesRecorded.WithLabelValues(source).Inc()
}

// IncBeneficiaryUpserted counts one written beneficiary.
func (m *Metrics) IncBeneficiaryUpserted(source string) {
	if m == nil {
		return
	}
	m.BeneficiariesUpserted.WithLabelValues(source).Inc()
}

// IncHouseholdAlert counts a raised alert.
func (m *Metrics) IncHouseholdAlert() {
	if m == nil {
		return
	}
	m.HouseholdAlerts.Inc()
}

// IncCrossCheckFailure counts a degraded household check.
func (m *Metrics) IncCrossCheckFailure() {
	if m == nil {
		return
	}
	m.CrossCheckFailures.Inc()
}

// AddImportRows adds n rows with outcome for the given import mode.
func (m *Metrics) AddImportRows(mode, outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ImportRows.WithLabelValues(mode, outcome).Add(float64(n))
}

// ObserveImport records the duration of an import started at start.
func (m *Metrics) ObserveImport(mode string, start time.Time) {
	if m == nil {
		return
	}
	m.ImportDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}

// ObserveHTTPRequest records the latency of one HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(method, route, statusClass(status)).Observe(elapsed.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
