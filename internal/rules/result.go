package rules

import "errors"

// Result is the outcome of evaluating a single rule.
//
// Matchers answer with NoMatch or Match. Actions answer with Continue or
// Terminate. Terminate may also surface from a matcher, but only when a
// nested action produced it; a matcher never originates one itself.
type Result int

const (
	// NoMatch means the condition is false; nested rules were not entered.
	NoMatch Result = iota

	// Match means the condition is true and any nested rules ran to
	// completion without terminating.
	Match

	// Continue means an action performed its side effect and the next rule
	// must run.
	Continue

	// Terminate means rule processing must stop immediately; no further
	// rules or pipeline stages execute for this request.
	Terminate
)

// ErrIllegalResult indicates a rule produced a result its kind may not
// produce (a matcher returning Continue, an action returning NoMatch or
// Match). This is a programmer error in the rule, not a request condition;
// evaluation of the request is aborted.
var ErrIllegalResult = errors.New("illegal result for rule kind")

// String returns the result name for logging and diagnostics.
func (res Result) String() string {
	switch res {
	case NoMatch:
		return "no_match"
	case Match:
		return "match"
	case Continue:
		return "continue"
	case Terminate:
		return "terminate"
	default:
		return "unknown"
	}
}
