package rules

import (
	"fmt"
	"net/http"
)

// And builds the conjunction of rules: every matcher must match, in order,
// and actions run at the point they occur provided every preceding matcher
// matched. The first NoMatch stops the list and yields NoMatch; Terminate
// short-circuits everything. And() is vacuously Match.
func And(rs ...Rule) Rule {
	return &andRule{rules: rs}
}

// AndElse is And with a fallback: when a matcher in rules yields NoMatch,
// the otherwise list is dispatched instead (completing as NoMatch). A
// Terminate inside rules skips otherwise entirely.
func AndElse(rs []Rule, otherwise []Rule) Rule {
	return &andRule{rules: rs, otherwise: otherwise}
}

type andRule struct {
	rules     []Rule
	otherwise []Rule
}

// Kind reports KindMatcher.
func (a *andRule) Kind() Kind { return KindMatcher }

func (a *andRule) Eval(ev Evaluator, w http.ResponseWriter, r *http.Request, next Chain) (Result, error) {
	for _, rule := range a.rules {
		res, err := ev.Evaluate(rule, w, r, next)
		if err != nil {
			return NoMatch, err
		}
		switch res {
		case Match, Continue:
			// keep going
		case NoMatch:
			return Apply(ev, a.otherwise, w, r, next, NoMatch)
		case Terminate:
			return Terminate, nil
		default:
			return NoMatch, fmt.Errorf("%w: unhandled result %d in and", ErrIllegalResult, res)
		}
	}
	return Match, nil
}

// Or builds the disjunction of rules: the list is scanned for the first
// matcher that matches, skipping actions without evaluating them. From the
// match point on, only the remaining actions run, in order; later matchers
// are skipped entirely. If nothing matches, Or yields NoMatch. Terminate
// short-circuits at any point. Or() is NoMatch.
func Or(rs ...Rule) Rule {
	return &orRule{rules: rs}
}

// OrElse is Or with a fallback: when no matcher in rules matches, the
// otherwise list is dispatched instead (completing as NoMatch).
func OrElse(rs []Rule, otherwise []Rule) Rule {
	return &orRule{rules: rs, otherwise: otherwise}
}

type orRule struct {
	rules     []Rule
	otherwise []Rule
}

// Kind reports KindMatcher.
func (o *orRule) Kind() Kind { return KindMatcher }

func (o *orRule) Eval(ev Evaluator, w http.ResponseWriter, r *http.Request, next Chain) (Result, error) {
	matched := false

	for _, rule := range o.rules {
		switch rule.Kind() {
		case KindMatcher:
			if matched {
				continue
			}
			res, err := ev.Evaluate(rule, w, r, next)
			if err != nil {
				return NoMatch, err
			}
			switch res {
			case Match:
				matched = true
			case NoMatch:
				// keep scanning
			case Terminate:
				return Terminate, nil
			default:
				return NoMatch, fmt.Errorf("%w: unhandled result %d in or", ErrIllegalResult, res)
			}
		case KindAction:
			if !matched {
				continue
			}
			res, err := ev.Evaluate(rule, w, r, next)
			if err != nil {
				return NoMatch, err
			}
			if res == Terminate {
				return Terminate, nil
			}
		default:
			return NoMatch, fmt.Errorf("%w: unknown rule kind %d in or", ErrIllegalResult, rule.Kind())
		}
	}

	if matched {
		return Match, nil
	}
	return Apply(ev, o.otherwise, w, r, next, NoMatch)
}

// Not inverts a single matcher: Match becomes NoMatch and vice versa.
// Terminate propagates unchanged: termination is not invertible. Not is
// deliberately limited to one matcher; inverting a list of actions and
// matchers has no defined meaning, and applying Not to an action is an
// invariant error.
func Not(m Rule) Rule {
	return &notRule{inner: m}
}

type notRule struct {
	inner Rule
}

// Kind reports KindMatcher.
func (n *notRule) Kind() Kind { return KindMatcher }

func (n *notRule) Eval(ev Evaluator, w http.ResponseWriter, r *http.Request, next Chain) (Result, error) {
	if n.inner.Kind() != KindMatcher {
		return NoMatch, fmt.Errorf("%w: not applied to %s", ErrIllegalResult, n.inner.Kind())
	}

	res, err := ev.Evaluate(n.inner, w, r, next)
	if err != nil {
		return NoMatch, err
	}
	switch res {
	case Match:
		return NoMatch, nil
	case NoMatch:
		return Match, nil
	case Terminate:
		return Terminate, nil
	default:
		return NoMatch, fmt.Errorf("%w: unhandled result %d in not", ErrIllegalResult, res)
	}
}

// All runs every rule in order, stopping only on Terminate, and yields
// Match on exhaustion. Unlike And, a matcher yielding NoMatch does not stop
// the list: All is the run-everything primitive used when the caller only
// cares about side effects. All() is the shared Always rule.
func All(rs ...Rule) Rule {
	if len(rs) == 0 {
		return Always
	}
	return &allRule{rules: rs}
}

type allRule struct {
	rules []Rule
}

// Kind reports KindMatcher.
func (a *allRule) Kind() Kind { return KindMatcher }

func (a *allRule) Eval(ev Evaluator, w http.ResponseWriter, r *http.Request, next Chain) (Result, error) {
	return Apply(ev, a.rules, w, r, next, Match)
}

// Any is Or with Or's identity made explicit: Any() is the shared Never
// rule, Any(r1..rn) behaves exactly like Or(r1..rn).
func Any(rs ...Rule) Rule {
	if len(rs) == 0 {
		return Never
	}
	return Or(rs...)
}
