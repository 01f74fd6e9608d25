package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics contains all Prometheus metrics for the ticketing daemon
type PrometheusMetrics struct {
	// Contract operation metrics
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// Ticketing state metrics
	EventsCreatedTotal      prometheus.Counter
	TicketsSoldTotal        prometheus.Counter
	TicketsValidatedTotal   prometheus.Counter
	TicketsRefundedTotal    prometheus.Counter
	LedgerHeight            prometheus.Gauge
	PaymentFailuresTotal    prometheus.Counter
	WriteThroughErrorsTotal prometheus.Counter

	// Storage metrics
	DatabaseOperationsTotal   *prometheus.CounterVec
	DatabaseOperationDuration *prometheus.HistogramVec

	// API metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Application health metrics
	ApplicationUptime prometheus.Gauge
	ComponentHealth   *prometheus.GaugeVec
	MemoryUsage       prometheus.Gauge
	GoroutineCount    prometheus.Gauge
}

// NewPrometheusMetrics creates and registers all Prometheus metrics
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		OperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticketing_operations_total",
				Help: "Total number of contract operations attempted",
			},
			[]string{"operation", "status"},
		),

		OperationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ticketing_operation_duration_seconds",
				Help:    "Time spent applying individual contract operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		EventsCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ticketing_events_created_total",
				Help: "Total number of events created",
			},
		),

		TicketsSoldTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ticketing_tickets_sold_total",
				Help: "Total number of tickets sold",
			},
		),

		TicketsValidatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ticketing_tickets_validated_total",
				Help: "Total number of tickets validated at the gate",
			},
		),

		TicketsRefundedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ticketing_tickets_refunded_total",
				Help: "Total number of tickets refunded",
			},
		),

		LedgerHeight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "ticketing_ledger_height",
				Help: "Latest ledger height observed by the engine",
			},
		),

		PaymentFailuresTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ticketing_payment_failures_total",
				Help: "Total number of operations aborted by a failed currency transfer",
			},
		),

		WriteThroughErrorsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ticketing_write_through_errors_total",
				Help: "Total number of storage write-through failures after committed operations",
			},
		),

		DatabaseOperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticketing_database_operations_total",
				Help: "Total number of database operations",
			},
			[]string{"operation", "table", "status"},
		),

		DatabaseOperationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ticketing_database_operation_duration_seconds",
				Help:    "Duration of database operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),

		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticketing_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ticketing_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		ApplicationUptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "ticketing_application_uptime_seconds",
				Help: "Application uptime in seconds",
			},
		),

		ComponentHealth: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ticketing_component_health",
				Help: "Health of application components (1 healthy, 0 unhealthy)",
			},
			[]string{"component"},
		),

		MemoryUsage: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "ticketing_memory_usage_bytes",
				Help: "Current memory usage in bytes",
			},
		),

		GoroutineCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "ticketing_goroutines",
				Help: "Current number of goroutines",
			},
		),
	}
}

// RecordOperation records a contract operation attempt
func (m *PrometheusMetrics) RecordOperation(operation, status string, duration time.Duration) {
	m.OperationsTotal.WithLabelValues(operation, status).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordDatabaseOperation records a database operation
func (m *PrometheusMetrics) RecordDatabaseOperation(operation, table, status string, duration time.Duration) {
	m.DatabaseOperationsTotal.WithLabelValues(operation, table, status).Inc()
	m.DatabaseOperationDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordHTTPRequest records an HTTP request
func (m *PrometheusMetrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// UpdateLedgerHeight updates the observed ledger height gauge
func (m *PrometheusMetrics) UpdateLedgerHeight(height uint64) {
	m.LedgerHeight.Set(float64(height))
}

// UpdateComponentHealth updates a component health gauge
func (m *PrometheusMetrics) UpdateComponentHealth(component string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	m.ComponentHealth.WithLabelValues(component).Set(value)
}

// UpdateApplicationUptime updates the uptime gauge
func (m *PrometheusMetrics) UpdateApplicationUptime(startTime time.Time) {
	m.ApplicationUptime.Set(time.Since(startTime).Seconds())
}

// UpdateMemoryUsage updates the memory usage gauge
func (m *PrometheusMetrics) UpdateMemoryUsage(bytes uint64) {
	m.MemoryUsage.Set(float64(bytes))
}

// UpdateGoroutineCount updates the goroutine count gauge
func (m *PrometheusMetrics) UpdateGoroutineCount(count int) {
	m.GoroutineCount.Set(float64(count))
}
