package match

import (
	"net/http"

	"github.com/simman/go-gatekeeper/internal/rules"
)

// Query matches requests carrying the query parameter with the exact value.
func Query(key, value string) rules.Rule {
	return rules.Predicate(func(r *http.Request) bool {
		return r.URL.Query().Get(key) == value
	})
}
