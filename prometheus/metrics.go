package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"rental-service/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login attempts by principal kind and outcome
	LoginCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_login_total",
			Help: "Total number of login attempts",
		},
		[]string{"kind", "result"}, // kind is "admin" or "tenant"; result is "success" or "failure"
	)

	// Payment lifecycle counter
	PaymentCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_payment_operations_total",
			Help: "Total number of payment submissions and approvals",
		},
		[]string{"operation"},
	)

	// Complaint lifecycle counter
	ComplaintCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_complaint_operations_total",
			Help: "Total number of complaints raised and resolved",
		},
		[]string{"operation"},
	)

	// Tenant operation counter
	TenantOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_tenant_operations_total",
			Help: "Total number of tenant operations",
		},
		[]string{"operation"},
	)

	// Stored uploads by category and outcome
	UploadCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_uploads_total",
			Help: "Total number of file uploads",
		},
		[]string{"category", "result"},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Request errors surfaced to users, by type
	ErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_errors_total",
			Help: "Total number of request errors by type",
		},
		[]string{"type"},
	)
)

// Histogram metrics
var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rental_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rental_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rental_info",
			Help: "Information about the rental service",
		},
		[]string{"version", "environment"},
	)
)

func init() {
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(PaymentCounter)
	prometheus.MustRegister(ComplaintCounter)
	prometheus.MustRegister(TenantOperationCounter)
	prometheus.MustRegister(UploadCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(ErrorCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	prometheus.MustRegister(InfoGauge)
}

// InitMetrics publishes the service info gauge
func InitMetrics(cfg *config.Config) {
	InfoGauge.With(prometheus.Labels{
		"version":     "1.0.0",
		"environment": cfg.Server.Env,
	}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
//
//	defer prometheus.TrackDBOperation("query")(time.Now())
func TrackDBOperation(operation string) func(time.Time) {
	return func(start time.Time) {
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(time.Since(start).Seconds())
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			labels := prometheus.Labels{
				"endpoint": c.Path(),
				"method":   c.Request().Method,
				"status":   strconv.Itoa(c.Response().Status),
			}
			RequestDuration.With(labels).Observe(time.Since(start).Seconds())
			HTTPRequestCounter.With(labels).Inc()

			return err
		}
	}
}

// RecordLogin records a login attempt
func RecordLogin(kind string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	LoginCounter.With(prometheus.Labels{"kind": kind, "result": result}).Inc()
}

// RecordPaymentOperation records a payment submission or approval
func RecordPaymentOperation(operation string) {
	PaymentCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordComplaintOperation records a complaint being raised or resolved
func RecordComplaintOperation(operation string) {
	ComplaintCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordTenantOperation records a tenant operation
func RecordTenantOperation(operation string) {
	TenantOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordUpload records the outcome of storing an attachment
func RecordUpload(category, result string) {
	UploadCounter.With(prometheus.Labels{"category": category, "result": result}).Inc()
}

// RecordError records a request error by type
func RecordError(errorType string) {
	ErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}
