// Package ragserver provides the client for the internal RAG vector-store
// backend. The backend performs chunk-level vector similarity search over the
// uploaded document corpus; this client is a thin HTTP wrapper around its
// /search endpoint.
package ragserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/scholia/literature-search-service/internal/domain"
	"github.com/scholia/literature-search-service/internal/providers"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// sourceName is the human-readable name for this provider.
	sourceName = "RAG backend"

	// Metric label values for this provider.
	providerLabel  = "rag_backend"
	searchEndpoint = "search"
)

// Config contains configuration options for the RAG backend client.
type Config struct {
	// BaseURL is the base URL of the RAG backend server (required).
	BaseURL string

	// Timeout is the HTTP request timeout. Defaults to DefaultTimeout if zero.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int
}

// searchRequest is the JSON request body for the backend /search endpoint.
type searchRequest struct {
	QueryText           string  `json:"query_text"`
	Limit               int     `json:"limit"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
}

// ChunkResult is a single chunk hit as returned by the RAG backend.
// Authors is a comma-separated string; Vector is the chunk embedding and may
// be absent.
type ChunkResult struct {
	DOI             string    `json:"doi"`
	Title           string    `json:"title"`
	Authors         string    `json:"authors"`
	Published       string    `json:"published"`
	Content         string    `json:"content"`
	ChunkIndex      int       `json:"chunk_index"`
	SimilarityScore float64   `json:"similarity_score"`
	Vector          []float64 `json:"vector,omitempty"`
}

// Client is the HTTP client for the internal RAG backend.
type Client struct {
	httpClient *providers.HTTPClient
	metrics    providers.RequestMetrics
	config     Config
}

// NewClient creates a new RAG backend client with the given configuration.
// If httpClient is nil, a new one is created from the configuration settings.
// A nil metrics recorder disables instrumentation.
func NewClient(cfg Config, httpClient *providers.HTTPClient, metrics providers.RequestMetrics) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	if httpClient == nil {
		httpClient = providers.NewHTTPClient(providers.HTTPClientConfig{
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			BurstSize: cfg.BurstSize,
		})
	}

	return &Client{
		httpClient: httpClient,
		metrics:    metrics,
		config:     cfg,
	}
}

// Search performs a chunk-level similarity search for the query text and
// returns the raw chunk hits in backend order (most similar first).
func (c *Client) Search(ctx context.Context, query string, limit int, threshold float64) ([]ChunkResult, error) {
	endpoint, err := url.JoinPath(c.config.BaseURL, "search")
	if err != nil {
		return nil, fmt.Errorf("building search URL: %w", err)
	}

	body, err := json.Marshal(searchRequest{
		QueryText:           query,
		Limit:               limit,
		SimilarityThreshold: threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		if c.metrics != nil {
			c.metrics.RecordProviderRequestFailed(providerLabel, searchEndpoint, "network")
		}
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrServiceUnavailable, sourceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if c.metrics != nil {
			c.metrics.RecordProviderRequestFailed(providerLabel, searchEndpoint, providers.ErrorTypeLabel(resp.StatusCode))
			if resp.StatusCode == http.StatusTooManyRequests {
				c.metrics.RecordProviderRateLimited(providerLabel)
			}
		}
		// Limit the error body to 1MB to prevent resource exhaustion.
		errBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if readErr != nil {
			return nil, domain.NewExternalAPIError(sourceName, resp.StatusCode, "failed to read error response", readErr)
		}
		return nil, domain.NewExternalAPIError(sourceName, resp.StatusCode, string(errBody), nil)
	}

	if c.metrics != nil {
		c.metrics.RecordProviderRequest(providerLabel, searchEndpoint, time.Since(start).Seconds())
	}

	// Limit the response body to 10MB to prevent resource exhaustion.
	var results []ChunkResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&results); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return results, nil
}

// Name returns the human-readable name for this provider.
func (c *Client) Name() string {
	return sourceName
}
