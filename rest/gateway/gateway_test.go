package gateway

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seenRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
	Header http.Header
	Host   string
}

type upstream struct {
	*httptest.Server
	mu   sync.Mutex
	seen []seenRequest
}

func (u *upstream) requests() []seenRequest {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]seenRequest(nil), u.seen...)
}

func newUpstream(t *testing.T, status int, body string) *upstream {
	t.Helper()

	u := &upstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		u.mu.Lock()
		u.seen = append(u.seen, seenRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   string(raw),
			Header: r.Header.Clone(),
			Host:   r.Host,
		})
		u.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(u.Close)

	return u
}

func newGateway(t *testing.T, config Config, upstreams ...*upstream) http.Handler {
	t.Helper()
	for _, u := range upstreams {
		config.Upstreams = append(config.Upstreams, u.URL+"/api/v2")
	}
	g, err := New(config, nil)
	require.NoError(t, err)
	return g.Handler()
}

func TestFirstUpstreamSuccessSkipsSecond(t *testing.T) {
	t.Parallel()

	com := newUpstream(t, http.StatusOK, `[{"id":1}]`)
	jp := newUpstream(t, http.StatusOK, `[{"id":2}]`)
	h := newGateway(t, Config{}, com, jp)

	req := httptest.NewRequest(http.MethodGet, "/api/projects?apiKey=secret", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1}]`, rec.Body.String())
	assert.Len(t, com.requests(), 1)
	assert.Empty(t, jp.requests())
}

func TestFailoverToSecondUpstream(t *testing.T) {
	t.Parallel()

	com := newUpstream(t, http.StatusServiceUnavailable, `{"errors":[{"message":"down"}]}`)
	jp := newUpstream(t, http.StatusOK, `{"spaceKey":"acme"}`)
	h := newGateway(t, Config{}, com, jp)

	req := httptest.NewRequest(http.MethodPatch, "/api/projects/DEF?apiKey=secret", strings.NewReader(`{"name":"Renamed"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"spaceKey":"acme"}`, rec.Body.String())

	require.Len(t, com.requests(), 1)
	require.Len(t, jp.requests(), 1)
	for _, seen := range []seenRequest{com.requests()[0], jp.requests()[0]} {
		assert.Equal(t, http.MethodPatch, seen.Method)
		assert.Equal(t, "/api/v2/projects/DEF", seen.Path)
		assert.Equal(t, "apiKey=secret", seen.Query)
		assert.Equal(t, `{"name":"Renamed"}`, seen.Body)
		assert.Equal(t, "application/json", seen.Header.Get("Content-Type"))
	}
}

func TestFailoverOnTransportError(t *testing.T) {
	t.Parallel()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	jp := newUpstream(t, http.StatusOK, `[]`)
	g, err := New(Config{Upstreams: []string{deadURL + "/api/v2", jp.URL + "/api/v2"}}, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `[]`, rec.Body.String())
	assert.Len(t, jp.requests(), 1)
}

func TestAllUpstreamsFailReturnsLastFailure(t *testing.T) {
	t.Parallel()

	com := newUpstream(t, http.StatusInternalServerError, `{"errors":[{"message":"com"}]}`)
	jp := newUpstream(t, http.StatusNotFound, `{"errors":[{"message":"No project."}]}`)
	h := newGateway(t, Config{}, com, jp)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects/NOPE", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"errors":[{"message":"No project."}]}`, rec.Body.String())
	assert.Len(t, com.requests(), 1)
	assert.Len(t, jp.requests(), 1)
}

func TestAllUpstreamsUnreachable(t *testing.T) {
	t.Parallel()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	g, err := New(Config{Upstreams: []string{deadURL, deadURL}}, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/space", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Server error"}`, rec.Body.String())
}

func TestEmptyPayloadFailsOver(t *testing.T) {
	t.Parallel()

	com := newUpstream(t, http.StatusOK, ``)
	jp := newUpstream(t, http.StatusOK, `{"content":"hello"}`)
	h := newGateway(t, Config{}, com, jp)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/space/notification", nil))

	assert.JSONEq(t, `{"content":"hello"}`, rec.Body.String())
	assert.Len(t, jp.requests(), 1)
}

func TestEmptyListDoesNotFailOver(t *testing.T) {
	t.Parallel()

	com := newUpstream(t, http.StatusOK, `[]`)
	jp := newUpstream(t, http.StatusOK, `[{"id":2}]`)
	h := newGateway(t, Config{}, com, jp)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects", nil))

	assert.Equal(t, `[]`, rec.Body.String())
	assert.Empty(t, jp.requests())
}

func TestSuccessStatusIsNormalized(t *testing.T) {
	t.Parallel()

	com := newUpstream(t, http.StatusCreated, `{"id":3}`)

	rec := httptest.NewRecorder()
	newGateway(t, Config{}, com).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	newGateway(t, Config{PreserveStatus: true}, com).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHostHeaderIsReplaced(t *testing.T) {
	t.Parallel()

	com := newUpstream(t, http.StatusOK, `{}`)
	h := newGateway(t, Config{}, com)

	req := httptest.NewRequest(http.MethodGet, "http://localhost:3001/api/space", nil)
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("X-Custom", "kept")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Len(t, com.requests(), 1)
	seen := com.requests()[0]
	assert.Equal(t, strings.TrimPrefix(com.URL, "http://"), seen.Host)
	assert.Equal(t, "kept", seen.Header.Get("X-Custom"))
	assert.NotEmpty(t, seen.Header.Get(requestIDHeader))
	assert.Equal(t, seen.Header.Get(requestIDHeader), rec.Header().Get(requestIDHeader))
}

func TestPreflightIsAnsweredLocally(t *testing.T) {
	t.Parallel()

	com := newUpstream(t, http.StatusOK, `{}`)
	h := newGateway(t, Config{}, com)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/projects", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, com.requests())
}

func TestCustomPrefix(t *testing.T) {
	t.Parallel()

	com := newUpstream(t, http.StatusOK, `{}`)
	h := newGateway(t, Config{Prefix: "relay/"}, com)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/relay/space", nil))

	require.Len(t, com.requests(), 1)
	assert.Equal(t, "/api/v2/space", com.requests()[0].Path)
}

func TestNewValidatesUpstreams(t *testing.T) {
	t.Parallel()

	_, err := New(Config{}, nil)
	assert.ErrorIs(t, err, ErrNoUpstreams)

	_, err = New(Config{Upstreams: []string{"not a url"}}, nil)
	assert.Error(t, err)
}

func TestDefaultUpstreams(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{
		"https://acme.backlog.com/api/v2",
		"https://acme.backlog.jp/api/v2",
	}, DefaultUpstreams("acme"))
}
