package match

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/simman/go-gatekeeper/internal/routing"
	"github.com/simman/go-gatekeeper/internal/rules"
)

// ErrNoRoutingMatch indicates a path-scoped matcher ran before the router
// attached a routing match to the request. This is a pipeline
// misconfiguration, not a request condition; there is no recovery.
var ErrNoRoutingMatch = errors.New("no routing match available")

// RoutedFunc is a predicate over the routed triple: the mount prefix, the
// path relative to it, and the full request path.
type RoutedFunc func(prefix, relative, path string) bool

// Routed builds a matcher from a predicate over the routing match. It
// fetches the match from request-scoped state, failing fast when absent, so
// individual path matchers do not repeat that check.
func Routed(fn RoutedFunc) rules.Rule {
	return rules.MatcherFunc(func(_ rules.Evaluator, _ http.ResponseWriter, r *http.Request, _ rules.Chain) (rules.Result, error) {
		m, ok := routing.FromRequest(r)
		if !ok {
			return rules.NoMatch, fmt.Errorf("%w: %s %s", ErrNoRoutingMatch, r.Method, r.URL.Path)
		}
		if fn(m.Prefix, m.RelativePath, m.Path) {
			return rules.Match, nil
		}
		return rules.NoMatch, nil
	})
}

// Path matches the full request path exactly.
func Path(path string) rules.Rule {
	return Routed(func(_, _, full string) bool {
		return full == path
	})
}

// PathPrefix matches when the full request path starts with prefix.
func PathPrefix(prefix string) rules.Rule {
	return Routed(func(_, _, full string) bool {
		return strings.HasPrefix(full, prefix)
	})
}

// RelativePath matches the prefix-relative path exactly.
func RelativePath(path string) rules.Rule {
	return Routed(func(_, relative, _ string) bool {
		return relative == path
	})
}

// PathPattern matches the full request path against a compiled regular
// expression.
func PathPattern(pattern *regexp.Regexp) rules.Rule {
	return Routed(func(_, _, full string) bool {
		return pattern.MatchString(full)
	})
}
