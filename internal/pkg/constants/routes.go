package constants

// Static route constants
const (
	APIRoute     = "/api"
	APIV1Route   = "/v1"
	MetricsRoute = "/metrics"
	// Webhook path without the version prefix for callback URL construction
	PaymentWebhookPath = "/webhooks/payments"
)
