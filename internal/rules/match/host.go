package match

import (
	"net/http"
	"strings"

	"github.com/simman/go-gatekeeper/internal/rules"
)

// Host matches requests by Host header. Patterns of the form *.example.com
// match the domain and all its subdomains.
func Host(pattern string) rules.Rule {
	return rules.Predicate(func(r *http.Request) bool {
		host := r.Host
		if host == "" {
			host = r.URL.Host
		}

		// Strip port if present
		if idx := strings.Index(host, ":"); idx != -1 {
			host = host[:idx]
		}

		if pattern == host {
			return true
		}

		if strings.HasPrefix(pattern, "*.") {
			domain := pattern[2:]
			return strings.HasSuffix(host, "."+domain) || host == domain
		}

		return false
	})
}
