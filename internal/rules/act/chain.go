package act

import (
	"net/http"

	"github.com/simman/go-gatekeeper/internal/rules"
)

// Forward hands the request to the downstream chain and terminates rule
// processing: once the chain runs, the request is fully handled. Transport
// errors from the chain propagate untranslated through every combinator to
// the pipeline's error boundary.
var Forward rules.Rule = rules.ActionFunc(func(_ rules.Evaluator, w http.ResponseWriter, r *http.Request, next rules.Chain) (rules.Result, error) {
	if err := next.Proceed(w, r); err != nil {
		return rules.Terminate, err
	}
	return rules.Terminate, nil
})
