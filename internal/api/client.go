// Package api provides a client for the GPU monitoring backend's REST API.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rileyhilliard/gpumon/internal/logger"
)

// Endpoint paths relative to the API base URL.
const (
	PathHealth         = "/health"
	PathGPUMetrics     = "/v1/gpu/metrics"
	PathGPUNodes       = "/v1/gpu/nodes"
	PathGPUUtilization = "/v1/gpu/utilization"
)

// Defaults for the client.
const (
	DefaultBaseURL = "/api"
	DefaultOrigin  = "http://localhost:8080"
	DefaultTimeout = 30 * time.Second
)

// maxErrorBody bounds how much of a failed response is read for diagnostics.
const maxErrorBody = 64 * 1024

// Client is an API client for the GPU monitoring backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	log        logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Timeout is kept as-is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger used to report failed requests.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a new API client. baseURL must be absolute; see ResolveBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		userAgent: "gpumon",
		log:       logger.NewEnvLogger("[api]"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the absolute base URL requests are made against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResolveBaseURL turns a possibly relative base path (like the default "/api")
// into an absolute URL using origin.
func ResolveBaseURL(base, origin string) (string, error) {
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if u.IsAbs() {
		return strings.TrimSuffix(u.String(), "/"), nil
	}

	if origin == "" {
		origin = DefaultOrigin
	}
	o, err := url.Parse(origin)
	if err != nil {
		return "", err
	}
	if !o.IsAbs() {
		return "", &url.Error{Op: "parse", URL: origin, Err: errNotAbsolute}
	}
	return strings.TrimSuffix(o.ResolveReference(u).String(), "/"), nil
}

// Health checks backend health.
func (c *Client) Health(ctx context.Context) (*Envelope[Health], error) {
	return get[Health](ctx, c, PathHealth)
}

// GPUMetrics fetches metrics for every GPU in the cluster.
func (c *Client) GPUMetrics(ctx context.Context) (*Envelope[[]GPUMetrics], error) {
	return get[[]GPUMetrics](ctx, c, PathGPUMetrics)
}

// GPUNodes fetches the GPU node inventory.
func (c *Client) GPUNodes(ctx context.Context) (*Envelope[[]GPUNode], error) {
	return get[[]GPUNode](ctx, c, PathGPUNodes)
}

// GPUUtilization fetches utilization only, a cheaper call than GPUMetrics.
func (c *Client) GPUUtilization(ctx context.Context) (*Envelope[[]GPUUtilization], error) {
	return get[[]GPUUtilization](ctx, c, PathGPUUtilization)
}

// get performs a GET request and decodes the envelope. Every failure is
// returned as an *Error.
func get[T any](ctx context.Context, c *Client, path string) (*Envelope[T], error) {
	env, err := doGet[T](ctx, c, path)
	if err != nil {
		c.log.Warn("GET %s failed: %v", path, err)
		return nil, err
	}
	c.log.Debug("GET %s ok (success=%t)", path, env.Success)
	return env, nil
}

func doGet[T any](ctx context.Context, c *Client, path string) (*Envelope[T], error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "Network error", Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, errorBody(resp.Body))
	}

	var env Envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		// A body cut off by the client timeout surfaces here, not from Do.
		if tErr := transportError(err); tErr.Kind == KindTimeout {
			return nil, tErr
		}
		return nil, &Error{Kind: KindDecode, StatusCode: resp.StatusCode, Message: "Invalid response body", Cause: err}
	}
	return &env, nil
}

// errorBody extracts the envelope error text from a failed response, falling
// back to the raw body.
func errorBody(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var env struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &env) == nil {
		if env.Error != "" {
			return env.Error
		}
		if env.Message != "" {
			return env.Message
		}
	}
	return strings.TrimSpace(string(raw))
}
