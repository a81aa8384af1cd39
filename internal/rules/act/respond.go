package act

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/simman/go-gatekeeper/internal/rules"
)

// Respond writes a JSON error response with the given status and message,
// then terminates rule processing: the request is fully handled.
func Respond(status int, message string) rules.Rule {
	return rules.ActionFunc(func(_ rules.Evaluator, w http.ResponseWriter, r *http.Request, _ rules.Chain) (rules.Result, error) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)

		response := map[string]string{
			"error": message,
			"host":  r.Host,
			"path":  r.URL.Path,
		}

		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Error().Err(err).Msg("failed to encode filter response")
		}

		return rules.Terminate, nil
	})
}
