package routing

import (
	"context"
	"net/http"
)

// Match describes how a request was routed into the pipeline: the mount
// prefix that claimed it, the path relative to that prefix, and the full
// request path. It is written once by the router before any rule runs and
// is read-only afterwards.
type Match struct {
	Prefix       string
	RelativePath string
	Path         string
}

type matchKey struct{}

// WithMatch returns a shallow copy of r carrying m in its context.
func WithMatch(r *http.Request, m Match) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), matchKey{}, m))
}

// FromRequest returns the routing match attached to r, if any.
func FromRequest(r *http.Request) (Match, bool) {
	m, ok := r.Context().Value(matchKey{}).(Match)
	return m, ok
}
