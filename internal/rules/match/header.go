package match

import (
	"net/http"
	"regexp"

	"github.com/simman/go-gatekeeper/internal/rules"
)

// Header matches requests carrying the header key with the exact value.
func Header(key, value string) rules.Rule {
	return rules.Predicate(func(r *http.Request) bool {
		return r.Header.Get(key) == value
	})
}

// HeaderRegex matches requests whose header value matches the pattern. An
// absent header never matches.
func HeaderRegex(key string, pattern *regexp.Regexp) rules.Rule {
	return rules.Predicate(func(r *http.Request) bool {
		value := r.Header.Get(key)
		if value == "" {
			return false
		}
		return pattern.MatchString(value)
	})
}
