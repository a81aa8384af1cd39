package act

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/simman/go-gatekeeper/internal/rules"
)

// Log emits a structured log event with the request's method, host and
// path, then continues to the next rule.
func Log(level zerolog.Level, message string) rules.Rule {
	return rules.ActionFunc(func(_ rules.Evaluator, _ http.ResponseWriter, r *http.Request, _ rules.Chain) (rules.Result, error) {
		log.WithLevel(level).
			Str("method", r.Method).
			Str("host", r.Host).
			Str("path", r.URL.Path).
			Msg(message)
		return rules.Continue, nil
	})
}
