package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simman/go-gatekeeper/internal/config"
)

// startBackend runs a backend that echoes a marker plus the path it saw.
func startBackend(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Backend", "1")
		_, _ = io.WriteString(w, "backend:"+r.URL.Path)
	}))
	t.Cleanup(backend.Close)

	u, err := url.Parse(backend.URL)
	require.NoError(t, err)
	return backend, u.Host
}

func gatewayFor(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	s, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.forwarder.Close() })
	return s
}

func TestServeHTTP_ForwardsWhenFiltersPass(t *testing.T) {
	_, backendAddr := startBackend(t)

	s := gatewayFor(t, &config.Config{
		Services: []config.Service{
			{
				Name:     "api",
				Mount:    "/api",
				Upstream: config.Upstream{Addr: backendAddr},
				Filters: []config.Filter{
					{
						Name: "tag",
						When: "True{}",
						Then: []config.ActionSpec{
							{SetHeader: &config.HeaderSpec{Key: "X-Filtered", Value: "1"}},
						},
					},
				},
			},
		},
	})

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example.com/api/users", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "backend:/api/users", w.Body.String())
	assert.Equal(t, "1", w.Header().Get("X-Backend"))
	assert.Equal(t, "1", w.Header().Get("X-Filtered"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestServeHTTP_FilterRejects(t *testing.T) {
	backend, backendAddr := startBackend(t)
	hits := 0
	backend.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	})

	s := gatewayFor(t, &config.Config{
		Services: []config.Service{
			{
				Name:     "api",
				Mount:    "/api",
				Upstream: config.Upstream{Addr: backendAddr},
				Filters: []config.Filter{
					{
						Name: "require-token",
						When: "!Auth{Bearer}",
						Then: []config.ActionSpec{
							{Respond: &config.RespondSpec{Status: http.StatusUnauthorized, Message: "token required"}},
						},
					},
				},
			},
		},
	})

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example.com/api/users", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, hits, "rejected request must not reach the backend")

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "token required", body["error"])

	// The same request with a token passes the filter.
	w = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "http://example.com/api/users", nil)
	r.Header.Set("Authorization", "Bearer abc123")
	s.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, hits)
}

func TestServeHTTP_NoRoute(t *testing.T) {
	_, backendAddr := startBackend(t)

	s := gatewayFor(t, &config.Config{
		Services: []config.Service{
			{Name: "api", Mount: "/api", Upstream: config.Upstream{Addr: backendAddr}},
		},
	})

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example.com/elsewhere", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "no route for request", body["error"])
	assert.Equal(t, "/elsewhere", body["path"])
}

func TestServeHTTP_StepLimitAborts(t *testing.T) {
	backend, backendAddr := startBackend(t)
	hits := 0
	backend.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	})

	s := gatewayFor(t, &config.Config{
		Server: config.ServerConfig{MaxSteps: 1},
		Services: []config.Service{
			{
				Name:     "api",
				Mount:    "/api",
				Upstream: config.Upstream{Addr: backendAddr},
				Filters: []config.Filter{
					{
						Name: "tag",
						When: "True{} && True{} && True{}",
						Then: []config.ActionSpec{
							{SetHeader: &config.HeaderSpec{Key: "X-Filtered", Value: "1"}},
						},
					},
				},
			},
		},
	})

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example.com/api/users", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Zero(t, hits, "aborted evaluation must not forward")
}

func TestServeHTTP_BadGatewayOnUnreachableUpstream(t *testing.T) {
	s := gatewayFor(t, &config.Config{
		Services: []config.Service{
			// Reserved port with nothing listening.
			{Name: "api", Mount: "/api", Upstream: config.Upstream{Addr: "127.0.0.1:1"}},
		},
	})

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example.com/api/users", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestIsWebSocketUpgrade(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example.com/ws", nil)
	assert.False(t, isWebSocketUpgrade(r))

	r.Header.Set("Upgrade", "websocket")
	r.Header.Set("Connection", "Upgrade")
	assert.True(t, isWebSocketUpgrade(r))
}
