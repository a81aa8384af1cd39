package rules

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// recorder builds stub rules that append their name to a trace when
// evaluated, so tests can assert exactly which rules ran and in what order.
type recorder struct {
	trace []string
}

func (rec *recorder) matcher(name string, res Result) Rule {
	return MatcherFunc(func(_ Evaluator, _ http.ResponseWriter, _ *http.Request, _ Chain) (Result, error) {
		rec.trace = append(rec.trace, name)
		return res, nil
	})
}

func (rec *recorder) action(name string, res Result) Rule {
	return ActionFunc(func(_ Evaluator, _ http.ResponseWriter, _ *http.Request, _ Chain) (Result, error) {
		rec.trace = append(rec.trace, name)
		return res, nil
	})
}

func (rec *recorder) failingMatcher(name string, err error) Rule {
	return MatcherFunc(func(_ Evaluator, _ http.ResponseWriter, _ *http.Request, _ Chain) (Result, error) {
		rec.trace = append(rec.trace, name)
		return NoMatch, err
	})
}

func noopChain() Chain {
	return ChainFunc(func(http.ResponseWriter, *http.Request) error { return nil })
}

// eval runs rule through a fresh base evaluator against a throwaway
// request.
func eval(t *testing.T, rule Rule) (Result, error) {
	t.Helper()
	return evalWith(t, NewInvocation(), rule)
}

// evalWith runs rule through the given evaluator against a throwaway
// request.
func evalWith(t *testing.T, ev Evaluator, rule Rule) (Result, error) {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	return ev.Evaluate(rule, w, r, noopChain())
}
