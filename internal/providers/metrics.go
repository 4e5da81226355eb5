package providers

import "net/http"

// RequestMetrics records the outcome of upstream provider requests.
// *observability.Metrics satisfies it; a nil value disables recording.
type RequestMetrics interface {
	RecordProviderRequest(provider, endpoint string, durationSeconds float64)
	RecordProviderRequestFailed(provider, endpoint, errorType string)
	RecordProviderRateLimited(provider string)
}

// ErrorTypeLabel returns the failure metric label for an upstream response
// status code.
func ErrorTypeLabel(statusCode int) string {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return "rate_limited"
	case statusCode >= 500:
		return "server_error"
	default:
		return "client_error"
	}
}
