package router

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/simman/go-gatekeeper/internal/config"
	"github.com/simman/go-gatekeeper/internal/routing"
	"github.com/simman/go-gatekeeper/internal/rules"
)

// Route is a compiled service: its mount prefix, the root rule its filters
// were compiled into, and the upstream requests are forwarded to.
type Route struct {
	Service  string
	Mount    string
	Rule     rules.Rule
	Upstream config.Upstream
}

// Router resolves requests to routes by longest mount prefix and attaches
// the routing match to the request before any rule runs.
type Router struct {
	routes []Route
	mu     sync.RWMutex
}

// NewRouter creates a new router
func NewRouter() *Router {
	return &Router{
		routes: make([]Route, 0),
	}
}

// Update rebuilds the routing table from configuration
func (rt *Router) Update(services []config.Service) error {
	routes := make([]Route, 0, len(services))

	for i := range services {
		svc := &services[i]
		rule, err := BuildService(svc)
		if err != nil {
			return fmt.Errorf("failed to build service %s: %w", svc.Name, err)
		}
		routes = append(routes, Route{
			Service:  svc.Name,
			Mount:    svc.Mount,
			Rule:     rule,
			Upstream: svc.Upstream,
		})
	}

	// Longest mount wins
	sort.SliceStable(routes, func(i, j int) bool {
		return len(routes[i].Mount) > len(routes[j].Mount)
	})

	rt.mu.Lock()
	rt.routes = routes
	rt.mu.Unlock()

	log.Info().Int("count", len(routes)).Msg("routes updated")
	return nil
}

// Resolve finds the route for the request and returns the request with the
// routing match attached. The match is written here, exactly once, before
// the rule tree evaluates; rules only ever read it.
func (rt *Router) Resolve(r *http.Request) (*Route, *http.Request, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	path := r.URL.Path

	for i := range rt.routes {
		route := &rt.routes[i]
		if !mountMatches(route.Mount, path) {
			continue
		}

		log.Debug().
			Str("service", route.Service).
			Str("mount", route.Mount).
			Str("path", path).
			Msg("route resolved")

		m := routing.Match{
			Prefix:       route.Mount,
			RelativePath: relativeTo(route.Mount, path),
			Path:         path,
		}
		return route, routing.WithMatch(r, m), true
	}

	log.Debug().
		Str("host", r.Host).
		Str("path", path).
		Msg("no route for request")

	return nil, r, false
}

// mountMatches reports whether path falls under mount at a segment boundary.
func mountMatches(mount, path string) bool {
	if mount == "/" {
		return true
	}
	if !strings.HasPrefix(path, mount) {
		return false
	}
	return len(path) == len(mount) || path[len(mount)] == '/'
}

// relativeTo strips the mount prefix from path.
func relativeTo(mount, path string) string {
	if mount == "/" {
		return path
	}
	rel := path[len(mount):]
	if rel == "" {
		return "/"
	}
	return rel
}
