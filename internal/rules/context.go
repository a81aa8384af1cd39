package rules

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// Evaluator dispatches every rule evaluation for one request. Combinators
// route nested rules through the evaluator they were given, so a decorated
// evaluator installed at the root observes the whole tree.
//
// One evaluator serves exactly one request; decorators may therefore hold
// request-scoped mutable state without synchronization.
type Evaluator interface {
	Evaluate(rule Rule, w http.ResponseWriter, r *http.Request, next Chain) (Result, error)
}

// ErrStepLimit indicates a LimitEvaluator exhausted its evaluation budget.
var ErrStepLimit = errors.New("rule evaluation step limit exceeded")

// Invoke runs rule with ev as the evaluator for nested rules and enforces
// the result legality rules for the rule's kind. Errors from the rule
// propagate untranslated. Evaluator implementations call this instead of
// Rule.Eval so the checks apply at every level of the tree.
func Invoke(ev Evaluator, rule Rule, w http.ResponseWriter, r *http.Request, next Chain) (Result, error) {
	res, err := rule.Eval(ev, w, r, next)
	if err != nil {
		return res, err
	}

	switch rule.Kind() {
	case KindMatcher:
		if res == Continue {
			return res, fmt.Errorf("%w: matcher returned %s", ErrIllegalResult, res)
		}
	case KindAction:
		if res == NoMatch || res == Match {
			return res, fmt.Errorf("%w: action returned %s", ErrIllegalResult, res)
		}
	default:
		return res, fmt.Errorf("%w: unknown rule kind %d", ErrIllegalResult, rule.Kind())
	}

	return res, nil
}

// Invocation is the base evaluator. It holds no state and performs no
// instrumentation.
type Invocation struct{}

// NewInvocation creates a base evaluator for one request.
func NewInvocation() *Invocation {
	return &Invocation{}
}

// Evaluate dispatches rule and returns its result unmodified.
func (inv *Invocation) Evaluate(rule Rule, w http.ResponseWriter, r *http.Request, next Chain) (Result, error) {
	return Invoke(inv, rule, w, r, next)
}

// TraceEvaluator logs every rule evaluation at debug level. It recurses
// through itself, so nested evaluations are traced with their depth.
type TraceEvaluator struct {
	log   zerolog.Logger
	depth int
	steps int
}

// NewTraceEvaluator creates a tracing evaluator for one request.
func NewTraceEvaluator(log zerolog.Logger) *TraceEvaluator {
	return &TraceEvaluator{log: log}
}

// Steps reports how many rule evaluations ran so far.
func (t *TraceEvaluator) Steps() int {
	return t.steps
}

// Evaluate dispatches rule, logging the outcome without changing it.
func (t *TraceEvaluator) Evaluate(rule Rule, w http.ResponseWriter, r *http.Request, next Chain) (Result, error) {
	t.steps++
	step := t.steps
	t.depth++
	res, err := Invoke(t, rule, w, r, next)
	t.depth--

	evt := t.log.Debug().
		Int("step", step).
		Int("depth", t.depth).
		Str("kind", rule.Kind().String()).
		Str("result", res.String())
	if err != nil {
		evt = evt.Err(err)
	}
	evt.Msg("rule evaluated")

	return res, err
}

// LimitEvaluator caps the number of rule evaluations for one request.
// Exceeding the budget aborts evaluation with ErrStepLimit.
type LimitEvaluator struct {
	limit int
	steps int
}

// NewLimitEvaluator creates an evaluator that fails after limit steps.
func NewLimitEvaluator(limit int) *LimitEvaluator {
	return &LimitEvaluator{limit: limit}
}

// Evaluate dispatches rule unless the step budget is exhausted.
func (l *LimitEvaluator) Evaluate(rule Rule, w http.ResponseWriter, r *http.Request, next Chain) (Result, error) {
	l.steps++
	if l.steps > l.limit {
		return NoMatch, fmt.Errorf("%w: limit %d", ErrStepLimit, l.limit)
	}
	return Invoke(l, rule, w, r, next)
}
