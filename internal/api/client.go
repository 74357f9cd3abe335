// Package api is a typed client for the practice backend REST API. Credentials
// are passed in explicitly through a CredentialSource; there is no shared
// client singleton and no global auth header.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/oakfield-health/practice-console/internal/observability/metrics"
	"github.com/oakfield-health/practice-console/pkg/logging"
)

var tracer = otel.Tracer("console.internal.api")

const defaultTimeout = 15 * time.Second

// CredentialSource supplies the bearer token attached to each request.
// An empty token means the request goes out unauthenticated.
type CredentialSource interface {
	Token() string
}

// StaticToken is a fixed-token CredentialSource, mainly for tests.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Client talks to the practice backend.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	creds          CredentialSource
	logger         *logging.Logger
	metrics        *metrics.ClientMetrics
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCredentials sets the bearer-token source for all requests.
func WithCredentials(creds CredentialSource) Option {
	return func(c *Client) { c.creds = creds }
}

// WithMetrics wires request counters and latency histograms.
func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithUnauthorizedHook registers a callback invoked on any 401 response,
// letting the session layer evict a stale token.
func WithUnauthorizedHook(hook func()) Option {
	return func(c *Client) { c.onUnauthorized = hook }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a backend API client.
func NewClient(baseURL string, logger *logging.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do executes one request. endpoint is the stable metric/trace label, path the
// URL path relative to the base URL. body (when non-nil) is JSON-encoded; out
// (when non-nil) receives the decoded response body.
func (c *Client) do(ctx context.Context, method, endpoint, path string, query url.Values, body, out any) error {
	ctx, span := tracer.Start(ctx, "api."+endpoint)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	)

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("api: %s: marshal request: %w", endpoint, err)
		}
		reqBody = bytes.NewReader(raw)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("api: %s: create request: %w", endpoint, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	span.SetAttributes(attribute.String("request.id", requestID))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil {
		if token := c.creds.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		c.metrics.ObserveRequest(endpoint, "network_error", time.Since(start).Seconds())
		return fmt.Errorf("api: %s: http request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	c.metrics.ObserveRequest(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		se := &StatusError{StatusCode: resp.StatusCode, Endpoint: endpoint, Body: strings.TrimSpace(string(raw))}
		span.RecordError(se)
		return se
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.RecordError(err)
		return fmt.Errorf("api: %s: decode response: %w", endpoint, err)
	}
	return nil
}
