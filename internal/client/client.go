package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kjstillabower/weather-archive-service/internal/observability"
)

const (
	// DefaultArchiveURL is the Open-Meteo historical weather endpoint.
	DefaultArchiveURL = "https://archive-api.open-meteo.com/v1/archive"
	// DefaultTimeout bounds a single archive request.
	DefaultTimeout = 10 * time.Second

	userAgent = "weather-archive-service/dev"
)

// ArchiveClient fetches raw archive responses for a set of query parameters.
type ArchiveClient interface {
	FetchArchive(ctx context.Context, params url.Values) (Body, error)
}

// Body is an upstream JSON object with its top-level values left undecoded.
type Body map[string]json.RawMessage

// OpenMeteoClient talks to the Open-Meteo archive API. One request per call, no retries.
type OpenMeteoClient struct {
	apiURL  string
	timeout time.Duration
	client  *http.Client
}

// NewOpenMeteoClient returns a client for apiURL. Empty apiURL and non-positive
// timeout fall back to DefaultArchiveURL and DefaultTimeout.
func NewOpenMeteoClient(apiURL string, timeout time.Duration) (*OpenMeteoClient, error) {
	if apiURL == "" {
		apiURL = DefaultArchiveURL
	}
	if _, err := url.Parse(apiURL); err != nil {
		return nil, fmt.Errorf("invalid archive API URL: %w", err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OpenMeteoClient{
		apiURL:  apiURL,
		timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// FetchArchive issues one GET with params. Non-2xx responses become *UpstreamError,
// a 2xx body that is not a JSON object becomes *MalformedResponseError.
func (c *OpenMeteoClient) FetchArchive(ctx context.Context, params url.Values) (Body, error) {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.buildRequest(reqCtx, params)
	if err != nil {
		observability.ArchiveAPICallsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("build request: %w", err)
	}

	if corrID := extractCorrelationID(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		observability.ArchiveAPICallsTotal.WithLabelValues("error").Inc()
		observability.ArchiveAPIDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("request timeout: %w", err)
		}
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	status := statusLabel(resp.StatusCode)
	observability.ArchiveAPICallsTotal.WithLabelValues(status).Inc()
	observability.ArchiveAPIDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var body Body
	if err := json.Unmarshal(raw, &body); err != nil || body == nil {
		return nil, &MalformedResponseError{Body: string(raw), Err: err}
	}
	return body, nil
}

func (c *OpenMeteoClient) buildRequest(ctx context.Context, params url.Values) (*http.Request, error) {
	baseURL, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}
	baseURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

func extractCorrelationID(ctx context.Context) string {
	if corrIDVal := ctx.Value("correlation_id"); corrIDVal != nil {
		if corrID, ok := corrIDVal.(string); ok {
			return corrID
		}
	}
	return ""
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
