package rules

import "net/http"

// Kind discriminates the two roles a rule can play.
type Kind int

const (
	// KindMatcher marks a side-effect-free condition over the request.
	KindMatcher Kind = iota

	// KindAction marks a side-effecting step that may write the response
	// or hand the request to the downstream chain.
	KindAction
)

// String returns the kind name for logging and diagnostics.
func (k Kind) String() string {
	switch k {
	case KindMatcher:
		return "matcher"
	case KindAction:
		return "action"
	default:
		return "unknown"
	}
}

// Chain is the opaque handle for continuing request processing in the host
// pipeline. Only actions may invoke it, and doing so is expected to coincide
// with returning Terminate: the request has then been fully handled.
type Chain interface {
	Proceed(w http.ResponseWriter, r *http.Request) error
}

// ChainFunc adapts a function to the Chain interface.
type ChainFunc func(w http.ResponseWriter, r *http.Request) error

// Proceed calls f.
func (f ChainFunc) Proceed(w http.ResponseWriter, r *http.Request) error {
	return f(w, r)
}

// Rule is the unit of composition: either a matcher or an action. Nested
// rules must be evaluated through ev, never by calling Eval directly, so
// that instrumentation installed on the evaluator observes every step.
//
// Rules are shared across concurrent requests and must not mutate instance
// state while evaluating.
type Rule interface {
	Kind() Kind
	Eval(ev Evaluator, w http.ResponseWriter, r *http.Request, next Chain) (Result, error)
}

// MatcherFunc adapts a function to a matcher rule.
type MatcherFunc func(ev Evaluator, w http.ResponseWriter, r *http.Request, next Chain) (Result, error)

// Kind reports KindMatcher.
func (f MatcherFunc) Kind() Kind { return KindMatcher }

// Eval calls f.
func (f MatcherFunc) Eval(ev Evaluator, w http.ResponseWriter, r *http.Request, next Chain) (Result, error) {
	return f(ev, w, r, next)
}

// ActionFunc adapts a function to an action rule.
type ActionFunc func(ev Evaluator, w http.ResponseWriter, r *http.Request, next Chain) (Result, error)

// Kind reports KindAction.
func (f ActionFunc) Kind() Kind { return KindAction }

// Eval calls f.
func (f ActionFunc) Eval(ev Evaluator, w http.ResponseWriter, r *http.Request, next Chain) (Result, error) {
	return f(ev, w, r, next)
}

// Predicate builds a matcher from a plain boolean test over the request.
func Predicate(fn func(r *http.Request) bool) Rule {
	return MatcherFunc(func(_ Evaluator, _ http.ResponseWriter, r *http.Request, _ Chain) (Result, error) {
		if fn(r) {
			return Match, nil
		}
		return NoMatch, nil
	})
}

// Shared constant rules. All are stateless and safe for concurrent use;
// they must never be given per-call state.
var (
	// Always is the matcher that matches every request.
	Always Rule = MatcherFunc(func(Evaluator, http.ResponseWriter, *http.Request, Chain) (Result, error) {
		return Match, nil
	})

	// Never is the matcher that matches no request.
	Never Rule = MatcherFunc(func(Evaluator, http.ResponseWriter, *http.Request, Chain) (Result, error) {
		return NoMatch, nil
	})

	// NoOp is the action that does nothing and continues.
	NoOp Rule = ActionFunc(func(Evaluator, http.ResponseWriter, *http.Request, Chain) (Result, error) {
		return Continue, nil
	})

	// Stop is the action that terminates rule processing without touching
	// the response.
	Stop Rule = ActionFunc(func(Evaluator, http.ResponseWriter, *http.Request, Chain) (Result, error) {
		return Terminate, nil
	})
)
