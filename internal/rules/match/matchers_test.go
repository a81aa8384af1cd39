package match

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simman/go-gatekeeper/internal/rules"
)

func TestMethod(t *testing.T) {
	tests := []struct {
		name    string
		methods []string
		request string
		want    rules.Result
	}{
		{"single method matches", []string{"GET"}, http.MethodGet, rules.Match},
		{"single method differs", []string{"GET"}, http.MethodPost, rules.NoMatch},
		{"any of several", []string{"POST", "PUT", "DELETE"}, http.MethodPut, rules.Match},
		{"case insensitive", []string{"get"}, http.MethodGet, rules.Match},
		{"whitespace trimmed", []string{" POST "}, http.MethodPost, rules.Match},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.request, "http://example.com/", nil)
			res, err := evalMatcher(t, Method(tt.methods...), r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res)
		})
	}
}

func TestHost(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		host    string
		want    rules.Result
	}{
		{"exact match", "example.com", "example.com", rules.Match},
		{"exact mismatch", "example.com", "other.com", rules.NoMatch},
		{"port stripped", "example.com", "example.com:8080", rules.Match},
		{"wildcard subdomain", "*.example.com", "api.example.com", rules.Match},
		{"wildcard bare domain", "*.example.com", "example.com", rules.Match},
		{"wildcard mismatch", "*.example.com", "example.org", rules.NoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
			r.Host = tt.host
			res, err := evalMatcher(t, Host(tt.pattern), r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res)
		})
	}
}

func TestHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	r.Header.Set("X-Env", "staging")

	res, err := evalMatcher(t, Header("X-Env", "staging"), r)
	require.NoError(t, err)
	assert.Equal(t, rules.Match, res)

	res, err = evalMatcher(t, Header("X-Env", "production"), r)
	require.NoError(t, err)
	assert.Equal(t, rules.NoMatch, res)
}

func TestHeaderRegex(t *testing.T) {
	pattern := regexp.MustCompile(`^image/`)

	r := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	r.Header.Set("Accept", "image/png")

	res, err := evalMatcher(t, HeaderRegex("Accept", pattern), r)
	require.NoError(t, err)
	assert.Equal(t, rules.Match, res)

	// Absent header never matches, even against permissive patterns.
	empty := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	res, err = evalMatcher(t, HeaderRegex("Accept", regexp.MustCompile(`.*`)), empty)
	require.NoError(t, err)
	assert.Equal(t, rules.NoMatch, res)
}

func TestQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example.com/search?mode=fast&debug=1", nil)

	res, err := evalMatcher(t, Query("mode", "fast"), r)
	require.NoError(t, err)
	assert.Equal(t, rules.Match, res)

	res, err = evalMatcher(t, Query("mode", "slow"), r)
	require.NoError(t, err)
	assert.Equal(t, rules.NoMatch, res)
}

func TestAuthScheme(t *testing.T) {
	tests := []struct {
		name   string
		scheme string
		header string
		want   rules.Result
	}{
		{"bearer matches", "Bearer", "Bearer abc123", rules.Match},
		{"case insensitive", "bearer", "Bearer abc123", rules.Match},
		{"basic differs", "Bearer", "Basic dXNlcjpwYXNz", rules.NoMatch},
		{"missing header", "Bearer", "", rules.NoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			res, err := evalMatcher(t, AuthScheme(tt.scheme), r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res)
		})
	}
}
