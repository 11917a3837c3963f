package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Quoting
	MetricQuoteLatency     = "pricing.quote_latency"
	MetricGeocoderFailures = "geocoding.failure_rate"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricReservations       = "business.reservations_created"
	MetricConfirmationEmails = "business.confirmation_emails_sent"
)
