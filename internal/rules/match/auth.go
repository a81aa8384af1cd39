package match

import (
	"net/http"
	"strings"

	"github.com/simman/go-gatekeeper/internal/rules"
)

// AuthScheme matches requests whose Authorization header uses the given
// scheme (Basic, Bearer, ...), case-insensitively. Requests without an
// Authorization header never match.
func AuthScheme(scheme string) rules.Rule {
	return rules.Predicate(func(r *http.Request) bool {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			return false
		}
		got, _, _ := strings.Cut(auth, " ")
		return strings.EqualFold(got, scheme)
	})
}
