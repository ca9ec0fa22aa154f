// Package gateway relays same-origin requests to an ordered list of regional
// Backlog API mirrors, stopping at the first one that answers.
package gateway

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
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	DefaultPrefix  = "/api"
	DefaultPort    = "3001"
	DefaultTimeout = 30 * time.Second

	maxBodyBytes    = 10 << 20
	shutdownTimeout = 5 * time.Second
	requestIDHeader = "X-Request-ID"
)

var (
	// ErrAllUpstreamsFailed is returned when no upstream produced a usable response.
	ErrAllUpstreamsFailed = errors.New("all upstreams failed")

	// ErrNoUpstreams is returned by New when the upstream list is empty.
	ErrNoUpstreams = errors.New("no upstreams configured")

	errEmptyPayload = errors.New("empty response payload")
)

// Headers that apply to one connection and must not be forwarded
var hopByHopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Config holds the gateway settings
type Config struct {
	Prefix          string
	Upstreams       []string
	PreserveStatus  bool
	AllowSelfSigned bool
	Timeout         time.Duration
}

// DefaultUpstreams returns the .com and .jp mirrors of a space, in that order
func DefaultUpstreams(spaceID string) []string {
	return []string{
		fmt.Sprintf("https://%s.backlog.com/api/v2", spaceID),
		fmt.Sprintf("https://%s.backlog.jp/api/v2", spaceID),
	}
}

// StatusError is an upstream answer outside the 2xx range
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d - %s", e.StatusCode, strings.TrimSpace(string(e.Body)))
}

type upstreamResponse struct {
	status int
	header http.Header
	body   []byte
}

// Gateway forwards requests under its prefix. It keeps no per-request state
// and is safe for concurrent use.
type Gateway struct {
	config     Config
	upstreams  []*url.URL
	httpClient *http.Client
	logger     *zap.Logger
}

// New validates config and builds a gateway
func New(config Config, logger *zap.Logger) (*Gateway, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Prefix == "" {
		config.Prefix = DefaultPrefix
	}
	config.Prefix = "/" + strings.Trim(config.Prefix, "/")
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if len(config.Upstreams) == 0 {
		return nil, ErrNoUpstreams
	}

	upstreams := make([]*url.URL, 0, len(config.Upstreams))
	for _, raw := range config.Upstreams {
		u, err := url.Parse(strings.TrimSuffix(strings.TrimSpace(raw), "/"))
		if err != nil {
			return nil, fmt.Errorf("invalid upstream %q: %w", raw, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid upstream %q: scheme and host are required", raw)
		}
		upstreams = append(upstreams, u)
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.AllowSelfSigned,
		},
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,
	}

	return &Gateway{
		config:    config,
		upstreams: upstreams,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		},
		logger: logger.With(zap.String("component", "gateway")),
	}, nil
}

// Handler returns the gateway routes: the relay under the prefix and /health
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(g.config.Prefix+"/", g)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
			"upstreams": len(g.upstreams),
		})
	})
	return mux
}

// ListenAndServe runs the gateway until ctx is cancelled
func (g *Gateway) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           g.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("Starting gateway",
			zap.String("addr", addr),
			zap.String("prefix", g.config.Prefix),
			zap.Strings("upstreams", g.config.Upstreams))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("gateway server failed: %w", err)
	case <-ctx.Done():
		g.logger.Info("Shutting down gateway")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("gateway shutdown failed: %w", err)
		}
		return nil
	}
}

// ServeHTTP forwards one request, trying each upstream in order
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.URL.Path != g.config.Prefix && !strings.HasPrefix(r.URL.Path, g.config.Prefix+"/") {
		writeJSONError(w, http.StatusNotFound, "Not found")
		return
	}

	requestID := r.Header.Get(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set(requestIDHeader, requestID)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	suffix := strings.TrimPrefix(r.URL.Path, g.config.Prefix)
	logger := g.logger.With(
		zap.String("request_id", requestID),
		zap.String("method", r.Method),
		zap.String("path", suffix))

	var (
		errs error
		last *upstreamResponse
	)

	for i, upstream := range g.upstreams {
		resp, err := g.forward(r, upstream, suffix, body, requestID)
		isLast := i == len(g.upstreams)-1

		if err == nil && len(bytes.TrimSpace(resp.body)) > 0 && !bytes.Equal(bytes.TrimSpace(resp.body), []byte("null")) {
			logger.Debug("Upstream answered", zap.String("upstream", upstream.Host), zap.Int("status", resp.status))
			g.writeUpstream(w, resp)
			return
		}
		if err == nil {
			if isLast {
				// nothing left to try, pass the empty answer through
				g.writeUpstream(w, resp)
				return
			}
			err = errEmptyPayload
		}

		logger.Warn("Upstream failed", zap.String("upstream", upstream.Host), zap.Error(err))
		errs = multierr.Append(errs, fmt.Errorf("%s: %w", upstream.Host, err))
		last = resp
	}

	logger.Error("Forwarding failed", zap.Error(fmt.Errorf("%w: %w", ErrAllUpstreamsFailed, errs)))

	if last != nil && last.status != 0 && len(last.body) > 0 {
		copyHeaders(w.Header(), last.header)
		setCORSHeaders(w)
		w.WriteHeader(last.status)
		w.Write(last.body)
		return
	}

	status := http.StatusInternalServerError
	if last != nil && last.status != 0 {
		status = last.status
	}
	writeJSONError(w, status, "Server error")
}

// forward sends the request to one upstream. A non-nil response is returned
// whenever the upstream answered, even when the answer counts as a failure.
func (g *Gateway) forward(r *http.Request, upstream *url.URL, suffix string, body []byte, requestID string) (*upstreamResponse, error) {
	target := *upstream
	target.Path = upstream.Path + suffix
	target.RawPath = ""
	target.RawQuery = r.URL.RawQuery

	var reqBody io.Reader = http.NoBody
	if len(body) > 0 {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	copyHeaders(req.Header, r.Header)
	req.Header.Del("Host")
	req.Header.Del("Accept-Encoding")
	req.Header.Set(requestIDHeader, requestID)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	out := &upstreamResponse{status: resp.StatusCode, header: resp.Header, body: respBody}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &StatusError{StatusCode: resp.StatusCode, Body: respBody}
	}
	return out, nil
}

func (g *Gateway) writeUpstream(w http.ResponseWriter, resp *upstreamResponse) {
	copyHeaders(w.Header(), resp.header)
	setCORSHeaders(w)
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}

	status := http.StatusOK
	if g.config.PreserveStatus {
		status = resp.status
	}
	w.WriteHeader(status)
	w.Write(resp.body)
}

// copyHeaders copies src into dst minus hop-by-hop and length headers.
// Keys present in src replace those in dst.
func copyHeaders(dst, src http.Header) {
	for k, values := range src {
		dst.Del(k)
		for _, v := range values {
			dst.Add(k, v)
		}
	}
	for _, h := range hopByHopHeaders {
		dst.Del(h)
	}
	dst.Del("Content-Length")
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
