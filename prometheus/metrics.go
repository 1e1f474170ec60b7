package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counters
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Signup counters
	SignupCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_signup_total",
			Help: "Total number of organizer signups",
		},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // type can be "login_failure", "invalid_token", "db_error" etc.
	)

	// Lead operation counter
	LeadOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_lead_operations_total",
			Help: "Total number of lead operations",
		},
		[]string{"operation"}, // "create", "list", "get", "update", "delete", "assign", "transition"
	)

	// Category operation counter
	CategoryOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_category_operations_total",
			Help: "Total number of category operations",
		},
		[]string{"operation"},
	)

	// Follow-up operation counter
	FollowUpOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_followup_operations_total",
			Help: "Total number of follow-up operations",
		},
		[]string{"operation"},
	)

	// Agent operation counter
	AgentOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_agent_operations_total",
			Help: "Total number of agent operations",
		},
		[]string{"operation"},
	)

	// Conversions counter
	ConversionCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_lead_conversions_total",
			Help: "Total number of leads moved into a converted stage",
		},
	)

	// Notification publish counter
	NotificationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_notifications_published_total",
			Help: "Total number of notifications published to the outbound queue",
		},
		[]string{"kind"},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crm_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crm_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation can be "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// Active tokens
	ActiveTokensGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "crm_active_tokens",
			Help: "Number of currently active authentication tokens",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "crm_info",
			Help: "Information about the CRM service",
		},
		[]string{"version"},
	)

	// Leads per tenant
	LeadsPerTenantGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "crm_leads_per_tenant",
			Help: "Number of leads per tenant",
		},
		[]string{"tenant_id"},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(SignupCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(LeadOperationCounter)
	prometheus.MustRegister(CategoryOperationCounter)
	prometheus.MustRegister(FollowUpOperationCounter)
	prometheus.MustRegister(AgentOperationCounter)
	prometheus.MustRegister(ConversionCounter)
	prometheus.MustRegister(NotificationCounter)
	prometheus.MustRegister(HTTPRequestCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	// Register gauges
	prometheus.MustRegister(ActiveTokensGauge)
	prometheus.MustRegister(InfoGauge)
	prometheus.MustRegister(LeadsPerTenantGauge)

	// Set initial service info
	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// RecordAuthError increments the auth error counter for the given type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordLeadOperation increments the lead operation counter
func RecordLeadOperation(operation string) {
	LeadOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordCategoryOperation increments the category operation counter
func RecordCategoryOperation(operation string) {
	CategoryOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordFollowUpOperation increments the follow-up operation counter
func RecordFollowUpOperation(operation string) {
	FollowUpOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordAgentOperation increments the agent operation counter
func RecordAgentOperation(operation string) {
	AgentOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordNotification increments the published notification counter
func RecordNotification(kind string) {
	NotificationCounter.With(prometheus.Labels{"kind": kind}).Inc()
}

// IncreaseActiveTokens increments the active tokens gauge
func IncreaseActiveTokens() {
	ActiveTokensGauge.Inc()
}

// DecreaseActiveTokens decrements the active tokens gauge
func DecreaseActiveTokens() {
	ActiveTokensGauge.Dec()
}
