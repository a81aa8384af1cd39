package rules

import "net/http"

// Apply walks rules in order through ev. A Terminate from any rule stops
// the walk immediately and is returned; every other result moves on to the
// next rule. A matcher yielding NoMatch is not a failure here; callers
// that need all-must-match semantics implement that themselves. On
// exhausting the list, done is returned.
func Apply(ev Evaluator, rs []Rule, w http.ResponseWriter, r *http.Request, next Chain, done Result) (Result, error) {
	for _, rule := range rs {
		res, err := ev.Evaluate(rule, w, r, next)
		if err != nil {
			return res, err
		}
		if res == Terminate {
			return Terminate, nil
		}
	}
	return done, nil
}
