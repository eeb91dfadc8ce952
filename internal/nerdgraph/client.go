// Package nerdgraph is a thin client for New Relic's NerdGraph API: a
// single opaque query endpoint plus a generic cursor-driven collector.
// Failures are converted to soft results at this layer; callers treat a
// failed call identically to "no data returned".
package nerdgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/alertlens/alertlens/internal/logger"
	"github.com/alertlens/alertlens/internal/observability"
)

// DefaultTimeout bounds each individual query. An in-flight call past the
// budget is aborted and treated as a failure.
const DefaultTimeout = 12 * time.Second

// Client issues queries against a NerdGraph endpoint. No retries are
// performed; retry policy, if any, belongs to callers.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	timeout    time.Duration
	log        logger.Logger
	metrics    *observability.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (used by tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout overrides the per-call deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMetrics wires query counters and latency observation.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a NerdGraph client for the given endpoint and API key.
func NewClient(endpoint, apiKey string, log logger.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		endpoint:   endpoint,
		apiKey:     apiKey,
		timeout:    DefaultTimeout,
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute posts a single query document and returns the parsed envelope.
// Transport, timeout, and parse errors are returned as errors; every
// caller must treat them identically to an empty result. Response-level
// GraphQL errors are logged and left in the envelope; the data payload,
// when present, is still usable.
func (c *Client) Execute(ctx context.Context, query string) (*Envelope, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("API-Key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe("transport_error", start)
		c.log.Warn("nerdgraph request failed", logger.Error(err))
		return nil, fmt.Errorf("nerdgraph request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		c.observe("http_error", start)
		c.log.Warn("nerdgraph returned non-OK status", logger.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("nerdgraph status %d", resp.StatusCode)
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		c.observe("decode_error", start)
		c.log.Warn("nerdgraph response decode failed", logger.Error(err))
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(env.Errors) > 0 {
		c.observe("graphql_error", start)
		c.log.Warn("nerdgraph query returned errors",
			logger.Int("count", len(env.Errors)),
			logger.String("first", env.Errors[0].Message))
	} else {
		c.observe("ok", start)
	}
	return &env, nil
}

func (c *Client) observe(outcome string, start time.Time) {
	if c.metrics != nil {
		c.metrics.ObserveQuery(outcome, time.Since(start))
	}
}

// DataAt navigates the data payload by dotted path, mirroring the optional
// chaining the dashboard API relies on. A nil envelope, absent payload, or
// missing path all yield a non-existent result rather than an error.
func (e *Envelope) DataAt(path string) gjson.Result {
	if e == nil || len(e.Data) == 0 {
		return gjson.Result{}
	}
	return gjson.GetBytes(e.Data, path)
}
