package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the literature search service.
// Metrics are organized by subsystem: searches, upstream providers, LLM
// operations, and recommendations. All counters and histograms are registered
// via promauto for automatic registration with the default Prometheus registry.
type Metrics struct {
	// SearchesStarted counts searches initiated, labeled by flow (internal, external).
	SearchesStarted *prometheus.CounterVec

	// SearchesCompleted counts successful searches, labeled by flow.
	SearchesCompleted *prometheus.CounterVec

	// SearchesFailed counts failed searches, labeled by flow.
	SearchesFailed *prometheus.CounterVec

	// SearchDuration observes end-to-end search duration in seconds, labeled by flow.
	SearchDuration *prometheus.HistogramVec

	// ReferencesPerSearch observes the distribution of references returned per search, labeled by flow.
	ReferencesPerSearch *prometheus.HistogramVec

	// GraphEdgesPerSearch observes the number of similarity edges built per search, labeled by flow.
	GraphEdgesPerSearch *prometheus.HistogramVec

	// ProviderRequestsTotal counts HTTP requests to upstream providers, labeled by provider and endpoint.
	ProviderRequestsTotal *prometheus.CounterVec

	// ProviderRequestsFailed counts failed upstream requests, labeled by provider, endpoint, and error type.
	ProviderRequestsFailed *prometheus.CounterVec

	// ProviderRequestDuration observes upstream request duration in seconds.
	ProviderRequestDuration *prometheus.HistogramVec

	// ProviderRateLimited counts rate-limited responses from upstream providers, labeled by provider.
	ProviderRateLimited *prometheus.CounterVec

	// LLMRequestsTotal counts LLM API requests, labeled by operation and model.
	LLMRequestsTotal *prometheus.CounterVec

	// LLMRequestsFailed counts failed LLM API requests, labeled by operation, model, and error type.
	LLMRequestsFailed *prometheus.CounterVec

	// LLMRequestDuration observes LLM API request duration in seconds, labeled by operation and model.
	LLMRequestDuration *prometheus.HistogramVec

	// RecommendationsServed counts recommendation requests served, labeled by algorithm.
	RecommendationsServed *prometheus.CounterVec

	// RecommendationsFailed counts recommendation requests that failed, labeled by algorithm.
	RecommendationsFailed *prometheus.CounterVec

	// RecommendationDuration observes recommendation computation duration in seconds, labeled by algorithm.
	RecommendationDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		// Searches
		SearchesStarted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_started_total",
			Help:      "Total number of searches started by flow",
		}, []string{"flow"}),
		SearchesCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_completed_total",
			Help:      "Total number of searches completed by flow",
		}, []string{"flow"}),
		SearchesFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_failed_total",
			Help:      "Total number of searches that failed by flow",
		}, []string{"flow"}),
		SearchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of searches in seconds by flow",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"flow"}),
		ReferencesPerSearch: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "references_per_search",
			Help:      "Number of references returned per search by flow",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}, []string{"flow"}),
		GraphEdgesPerSearch: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graph_edges_per_search",
			Help:      "Number of similarity graph edges built per search by flow",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}, []string{"flow"}),

		// Providers
		ProviderRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Total number of requests to upstream providers",
		}, []string{"provider", "endpoint"}),
		ProviderRequestsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_failed_total",
			Help:      "Total number of failed requests to upstream providers",
		}, []string{"provider", "endpoint", "error_type"}),
		ProviderRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Duration of requests to upstream providers in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider", "endpoint"}),
		ProviderRateLimited: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_rate_limited_total",
			Help:      "Total number of rate limit responses from upstream providers",
		}, []string{"provider"}),

		// LLM
		LLMRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM requests by operation",
		}, []string{"operation", "model"}),
		LLMRequestsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_failed_total",
			Help:      "Total number of failed LLM requests by operation",
		}, []string{"operation", "model", "error_type"}),
		LLMRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Duration of LLM requests in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"operation", "model"}),

		// Recommendations
		RecommendationsServed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_served_total",
			Help:      "Total number of recommendation requests served by algorithm",
		}, []string{"algorithm"}),
		RecommendationsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_failed_total",
			Help:      "Total number of recommendation requests that failed by algorithm",
		}, []string{"algorithm"}),
		RecommendationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommendation_duration_seconds",
			Help:      "Duration of recommendation computations in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"algorithm"}),
	}
}

// RecordSearchStarted records that a search has started.
func (m *Metrics) RecordSearchStarted(flow string) {
	m.SearchesStarted.WithLabelValues(flow).Inc()
}

// RecordSearchCompleted records that a search has completed.
func (m *Metrics) RecordSearchCompleted(flow string, referenceCount, edgeCount int, durationSeconds float64) {
	m.SearchesCompleted.WithLabelValues(flow).Inc()
	m.SearchDuration.WithLabelValues(flow).Observe(durationSeconds)
	m.ReferencesPerSearch.WithLabelValues(flow).Observe(float64(referenceCount))
	m.GraphEdgesPerSearch.WithLabelValues(flow).Observe(float64(edgeCount))
}

// RecordSearchFailed records that a search has failed.
func (m *Metrics) RecordSearchFailed(flow string, durationSeconds float64) {
	m.SearchesFailed.WithLabelValues(flow).Inc()
	m.SearchDuration.WithLabelValues(flow).Observe(durationSeconds)
}

// RecordProviderRequest records a request to an upstream provider.
func (m *Metrics) RecordProviderRequest(provider, endpoint string, durationSeconds float64) {
	m.ProviderRequestsTotal.WithLabelValues(provider, endpoint).Inc()
	m.ProviderRequestDuration.WithLabelValues(provider, endpoint).Observe(durationSeconds)
}

// RecordProviderRequestFailed records a failed request to an upstream provider.
func (m *Metrics) RecordProviderRequestFailed(provider, endpoint, errorType string) {
	m.ProviderRequestsFailed.WithLabelValues(provider, endpoint, errorType).Inc()
}

// RecordProviderRateLimited records a rate limit response from a provider.
func (m *Metrics) RecordProviderRateLimited(provider string) {
	m.ProviderRateLimited.WithLabelValues(provider).Inc()
}

// RecordLLMRequest records an LLM request.
func (m *Metrics) RecordLLMRequest(operation, model string, durationSeconds float64) {
	m.LLMRequestsTotal.WithLabelValues(operation, model).Inc()
	m.LLMRequestDuration.WithLabelValues(operation, model).Observe(durationSeconds)
}

// RecordLLMRequestFailed records a failed LLM request.
func (m *Metrics) RecordLLMRequestFailed(operation, model, errorType string) {
	m.LLMRequestsFailed.WithLabelValues(operation, model, errorType).Inc()
}

// RecordRecommendationServed records a recommendation request served.
func (m *Metrics) RecordRecommendationServed(algorithm string, durationSeconds float64) {
	m.RecommendationsServed.WithLabelValues(algorithm).Inc()
	m.RecommendationDuration.WithLabelValues(algorithm).Observe(durationSeconds)
}

// RecordRecommendationFailed records a recommendation request that failed.
func (m *Metrics) RecordRecommendationFailed(algorithm string) {
	m.RecommendationsFailed.WithLabelValues(algorithm).Inc()
}
