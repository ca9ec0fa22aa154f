package backlog

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bluefunda/backlogr/types"
	"go.uber.org/zap"
)

// DefaultBaseURL is the local gateway every request goes through unless the
// configuration names another one.
const DefaultBaseURL = "http://localhost:3001/api"

const defaultRequestTimeout = 30 * time.Second

var (
	// ErrNotConfigured is returned by every request made before Configure.
	ErrNotConfigured = errors.New("backlog API client is not configured")

	// ErrInvalidConfig is returned by Configure when the credential is missing.
	ErrInvalidConfig = errors.New("invalid backlog configuration")

	// ErrEmptyResponse is returned when an entity was expected but the body was empty.
	ErrEmptyResponse = errors.New("empty response from Backlog API")
)

// UpstreamError describes a request that failed at the transport level or
// was answered with a non-2xx status.
type UpstreamError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s: HTTP %d - %s", e.Method, e.Path, e.StatusCode, e.detail())
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// detail prefers the message of a Backlog error envelope over the raw body
func (e *UpstreamError) detail() string {
	var envelope struct {
		Errors []struct {
			Message string `json:"message"`
			Code    int    `json:"code"`
		} `json:"errors"`
	}
	if err := json.Unmarshal([]byte(e.Body), &envelope); err == nil && len(envelope.Errors) > 0 && envelope.Errors[0].Message != "" {
		return envelope.Errors[0].Message
	}
	if e.Body == "" {
		return http.StatusText(e.StatusCode)
	}
	return e.Body
}

// handle binds one configuration to its resolved base URL. It is replaced as a
// whole on every Configure call.
type handle struct {
	config  types.Config
	baseURL string
}

// Client issues authenticated requests against the Backlog REST API through
// the gateway. The configuration is owned by the client instance.
type Client struct {
	mu         sync.RWMutex
	current    *handle
	httpClient *http.Client
	logger     *zap.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for requests
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the overall timeout of a single request
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithAllowSelfSigned accepts self-signed certificates from the gateway
func WithAllowSelfSigned(allow bool) Option {
	return func(c *Client) {
		t, ok := c.httpClient.Transport.(*http.Transport)
		if !ok {
			return
		}
		if t.TLSClientConfig == nil {
			t.TLSClientConfig = &tls.Config{}
		}
		t.TLSClientConfig.InsecureSkipVerify = allow
	}
}

// New creates an unconfigured client
func New(logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	transport := &http.Transport{
		Proxy:              http.ProxyFromEnvironment,
		TLSClientConfig:    &tls.Config{},
		MaxIdleConns:       10,
		IdleConnTimeout:    90 * time.Second,
		DisableCompression: false,
		DisableKeepAlives:  false,
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout:   defaultRequestTimeout,
			Transport: transport,
		},
		logger: logger.With(zap.String("component", "backlog_client")),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewWithConfig creates a client and configures it
func NewWithConfig(config types.Config, logger *zap.Logger, opts ...Option) (*Client, error) {
	c := New(logger, opts...)
	if err := c.Configure(config); err != nil {
		return nil, err
	}
	return c, nil
}

// Configure stores the configuration and replaces the request handle. Calling
// it again with the same configuration leaves the client in the same state.
func (c *Client) Configure(config types.Config) error {
	config.APIKey = strings.TrimSpace(config.APIKey)
	config.SpaceID = strings.TrimSpace(config.SpaceID)
	config.BaseURL = strings.TrimSpace(config.BaseURL)

	if config.APIKey == "" {
		return fmt.Errorf("%w: API key is required", ErrInvalidConfig)
	}

	baseURL, err := normalizeBaseURL(config.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	c.mu.Lock()
	c.current = &handle{config: config, baseURL: baseURL}
	c.mu.Unlock()

	c.logger.Info("Backlog client configured",
		zap.String("space_id", config.SpaceID),
		zap.String("base_url", baseURL))

	return nil
}

// IsConfigured reports whether Configure has succeeded
func (c *Client) IsConfigured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current != nil
}

// Config returns the active configuration, if any
func (c *Client) Config() (types.Config, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return types.Config{}, false
	}
	return c.current.config, true
}

// ClearConfig drops the configuration; later requests fail with ErrNotConfigured
func (c *Client) ClearConfig() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()

	c.logger.Info("Backlog client configuration cleared")
}

func (c *Client) snapshot() *handle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// normalizeBaseURL ensures proper URL format
func normalizeBaseURL(raw string) (string, error) {
	if raw == "" {
		raw = DefaultBaseURL
	}

	raw = strings.TrimSuffix(raw, "/")

	// Add protocol if missing
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q: missing host", raw)
	}

	return raw, nil
}

// Request sends one API request. The credential is always sent as the apiKey
// query parameter. GET params are encoded into the query string; for any other
// method they are sent as a JSON body. When out is non-nil the response body
// is decoded into it.
func (c *Client) Request(ctx context.Context, method, path string, params map[string]interface{}, out interface{}) error {
	h := c.snapshot()
	if h == nil {
		return ErrNotConfigured
	}

	path = "/" + strings.TrimPrefix(path, "/")

	query := url.Values{}
	var body io.Reader

	if method == http.MethodGet {
		encodeQuery(query, params)
	} else if params != nil {
		payload, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("failed to encode request body for %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}
	query.Set("apiKey", h.config.APIKey)

	endpoint := h.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("Sending Backlog request",
		zap.String("method", method),
		zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		upstreamErr := &UpstreamError{Method: method, Path: path, Err: err}
		c.logger.Warn("Backlog request failed", zap.Error(upstreamErr))
		return upstreamErr
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upstreamErr := &UpstreamError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
		c.logger.Warn("Backlog request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return upstreamErr
	}

	if out != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response for %s %s: %w", method, path, err)
		}
	}

	c.logger.Debug("Backlog request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int("body_length", len(respBody)))

	return nil
}

// encodeQuery writes params into query. Slices use the key[] form the
// Backlog API expects for repeated values.
func encodeQuery(query url.Values, params map[string]interface{}) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := params[k].(type) {
		case nil:
		case []interface{}:
			for _, item := range v {
				query.Add(arrayKey(k), formatValue(item))
			}
		case []string:
			for _, item := range v {
				query.Add(arrayKey(k), item)
			}
		case []int:
			for _, item := range v {
				query.Add(arrayKey(k), strconv.Itoa(item))
			}
		default:
			query.Set(k, formatValue(v))
		}
	}
}

func arrayKey(k string) string {
	if strings.HasSuffix(k, "[]") {
		return k
	}
	return k + "[]"
}

func formatValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// call decodes the response of one request into a fresh T
func call[T any](ctx context.Context, c *Client, method, path string, params map[string]interface{}) (T, error) {
	var out T
	if err := c.Request(ctx, method, path, params, &out); err != nil {
		return out, err
	}
	return out, nil
}

// callOne is call for endpoints answering with a single entity
func callOne[T any](ctx context.Context, c *Client, method, path string, params map[string]interface{}) (*T, error) {
	out, err := call[*T](ctx, c, method, path, params)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrEmptyResponse)
	}
	return out, nil
}
