package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simman/go-gatekeeper/internal/config"
	"github.com/simman/go-gatekeeper/internal/routing"
)

func testServices() []config.Service {
	return []config.Service{
		{
			Name:     "catchall",
			Mount:    "/",
			Upstream: config.Upstream{Addr: "http://legacy:8080"},
		},
		{
			Name:     "api",
			Mount:    "/api",
			Upstream: config.Upstream{Addr: "http://api:8080"},
		},
		{
			Name:     "api-admin",
			Mount:    "/api/admin",
			Upstream: config.Upstream{Addr: "http://admin:8080"},
		},
	}
}

func TestRouter_LongestMountWins(t *testing.T) {
	rt := NewRouter()
	require.NoError(t, rt.Update(testServices()))

	tests := []struct {
		path    string
		service string
	}{
		{"/api/admin/users", "api-admin"},
		{"/api/admin", "api-admin"},
		{"/api/users", "api"},
		{"/api", "api"},
		{"/static/app.js", "catchall"},
		{"/", "catchall"},
		// /apiv2 shares the /api prefix but not at a segment boundary.
		{"/apiv2/users", "catchall"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "http://example.com"+tt.path, nil)
			route, _, ok := rt.Resolve(r)
			require.True(t, ok)
			assert.Equal(t, tt.service, route.Service)
		})
	}
}

func TestRouter_AttachesRoutingMatch(t *testing.T) {
	rt := NewRouter()
	require.NoError(t, rt.Update(testServices()))

	r := httptest.NewRequest(http.MethodGet, "http://example.com/api/users/42", nil)
	_, r, ok := rt.Resolve(r)
	require.True(t, ok)

	m, present := routing.FromRequest(r)
	require.True(t, present)
	assert.Equal(t, "/api", m.Prefix)
	assert.Equal(t, "/users/42", m.RelativePath)
	assert.Equal(t, "/api/users/42", m.Path)
}

func TestRouter_RelativePathAtMountRoot(t *testing.T) {
	rt := NewRouter()
	require.NoError(t, rt.Update(testServices()))

	r := httptest.NewRequest(http.MethodGet, "http://example.com/api", nil)
	_, r, ok := rt.Resolve(r)
	require.True(t, ok)

	m, present := routing.FromRequest(r)
	require.True(t, present)
	assert.Equal(t, "/", m.RelativePath)
}

func TestRouter_NoRoute(t *testing.T) {
	rt := NewRouter()
	require.NoError(t, rt.Update([]config.Service{
		{Name: "api", Mount: "/api", Upstream: config.Upstream{Addr: "http://api:8080"}},
	}))

	r := httptest.NewRequest(http.MethodGet, "http://example.com/other", nil)
	route, _, ok := rt.Resolve(r)
	assert.False(t, ok)
	assert.Nil(t, route)
}

func TestRouter_UpdateRejectsBadFilter(t *testing.T) {
	rt := NewRouter()
	err := rt.Update([]config.Service{
		{
			Name:     "broken",
			Mount:    "/",
			Upstream: config.Upstream{Addr: "http://legacy:8080"},
			Filters: []config.Filter{
				{Name: "bad", When: "Bogus{x}", Then: []config.ActionSpec{{Forward: true}}},
			},
		},
	})
	assert.Error(t, err)
}
