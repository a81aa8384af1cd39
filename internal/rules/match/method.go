package match

import (
	"net/http"
	"strings"

	"github.com/simman/go-gatekeeper/internal/rules"
)

// Method matches requests whose HTTP method equals any of the given
// methods, case-insensitively.
func Method(methods ...string) rules.Rule {
	normalized := make([]string, len(methods))
	for i, m := range methods {
		normalized[i] = strings.ToUpper(strings.TrimSpace(m))
	}

	return rules.Predicate(func(r *http.Request) bool {
		method := strings.ToUpper(r.Method)
		for _, allowed := range normalized {
			if allowed == method {
				return true
			}
		}
		return false
	})
}
