// Package semanticscholar provides the client for the Semantic Scholar Graph
// API, the external bibliographic provider for the search service.
package semanticscholar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/scholia/literature-search-service/internal/domain"
	"github.com/scholia/literature-search-service/internal/providers"
)

const (
	// DefaultBaseURL is the default base URL for the Semantic Scholar Graph API.
	DefaultBaseURL = "https://api.semanticscholar.org/graph/v1"

	// DefaultRateLimit is the default rate limit for unauthenticated requests.
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 10

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is the maximum number of results per search request.
	DefaultMaxResults = 100

	// apiKeyHeader is the header name for the Semantic Scholar API key.
	apiKeyHeader = "x-api-key"

	// paperFields is the list of fields to request from the API. The specter
	// embedding and tldr fields feed the similarity graph and the one-line
	// summaries in the search response.
	paperFields = "paperId,title,abstract,url,venue,publicationDate,citationCount,fieldsOfStudy,authors,tldr,openAccessPdf,embedding.specter_v2"

	// sourceName is the human-readable name for this provider.
	sourceName = "Semantic Scholar"

	// Metric label values for this provider.
	providerLabel  = "semantic_scholar"
	searchEndpoint = "paper_search"
)

// Config contains configuration options for the Semantic Scholar client.
type Config struct {
	// BaseURL is the base URL for the API. Defaults to DefaultBaseURL if empty.
	BaseURL string

	// APIKey is the optional API key for authenticated requests.
	APIKey string

	// Timeout is the HTTP request timeout. Defaults to DefaultTimeout if zero.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// MaxResults caps the number of results per search.
	MaxResults int
}

// Client is the HTTP client for the Semantic Scholar Graph API.
type Client struct {
	httpClient *providers.HTTPClient
	metrics    providers.RequestMetrics
	config     Config
}

// NewClient creates a new Semantic Scholar client with the given
// configuration. If httpClient is nil, a new one is created from the
// configuration settings. A nil metrics recorder disables instrumentation.
func NewClient(cfg Config, httpClient *providers.HTTPClient, metrics providers.RequestMetrics) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.BurstSize == 0 {
		cfg.BurstSize = DefaultBurstSize
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = DefaultMaxResults
	}

	if httpClient == nil {
		httpClient = providers.NewHTTPClient(providers.HTTPClientConfig{
			Timeout:      cfg.Timeout,
			RateLimit:    cfg.RateLimit,
			BurstSize:    cfg.BurstSize,
			APIKey:       cfg.APIKey,
			APIKeyHeader: apiKeyHeader,
		})
	}

	return &Client{
		httpClient: httpClient,
		metrics:    metrics,
		config:     cfg,
	}
}

// Search queries the paper search endpoint and returns the raw paper results
// in relevance order.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]PaperResult, error) {
	searchURL, err := c.buildSearchURL(query, limit)
	if err != nil {
		return nil, fmt.Errorf("building search URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

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

	if err := c.handleErrorResponse(resp); err != nil {
		if c.metrics != nil {
			c.metrics.RecordProviderRequestFailed(providerLabel, searchEndpoint, providers.ErrorTypeLabel(resp.StatusCode))
			if resp.StatusCode == http.StatusTooManyRequests {
				c.metrics.RecordProviderRateLimited(providerLabel)
			}
		}
		return nil, err
	}

	if c.metrics != nil {
		c.metrics.RecordProviderRequest(providerLabel, searchEndpoint, time.Since(start).Seconds())
	}

	// Limit the response body to 10MB to prevent resource exhaustion.
	var searchResp searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return searchResp.Data, nil
}

// Name returns the human-readable name for this provider.
func (c *Client) Name() string {
	return sourceName
}

// buildSearchURL constructs the search API URL with query parameters.
func (c *Client) buildSearchURL(query string, limit int) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	searchURL := baseURL.JoinPath("paper", "search")

	q := searchURL.Query()
	q.Set("query", query)
	q.Set("fields", paperFields)

	if limit <= 0 || limit > c.config.MaxResults {
		limit = c.config.MaxResults
	}
	q.Set("limit", strconv.Itoa(limit))

	searchURL.RawQuery = q.Encode()
	return searchURL.String(), nil
}

// handleErrorResponse checks for API errors and returns appropriate error types.
func (c *Client) handleErrorResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Read the error body (limit to 1MB to prevent resource exhaustion).
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.NewExternalAPIError(sourceName, resp.StatusCode, "failed to read error response", err)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		message := errResp.Error
		if message == "" {
			message = errResp.Message
		}
		if message == "" {
			message = string(body)
		}
		return domain.NewExternalAPIError(sourceName, resp.StatusCode, message, nil)
	}

	return domain.NewExternalAPIError(sourceName, resp.StatusCode, string(body), nil)
}
