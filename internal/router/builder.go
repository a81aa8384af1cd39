package router

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/simman/go-gatekeeper/internal/config"
	"github.com/simman/go-gatekeeper/internal/rules"
	"github.com/simman/go-gatekeeper/internal/rules/act"
)

// BuildService compiles a service's filters into one root rule. Filters run
// in configuration order; a Terminate from any filter's actions stops the
// whole list. A service without filters gets the always-match rule, so
// every request falls through to the default forward.
func BuildService(svc *config.Service) (rules.Rule, error) {
	filters := make([]rules.Rule, 0, len(svc.Filters))

	for i := range svc.Filters {
		f := &svc.Filters[i]
		rule, err := buildFilter(f)
		if err != nil {
			return nil, fmt.Errorf("failed to build filter %s: %w", f.Name, err)
		}
		filters = append(filters, rule)
	}

	return rules.All(filters...), nil
}

// buildFilter compiles one filter into when + then with an otherwise
// fallback: the actions run only when the expression matched, the
// otherwise actions only when it did not.
func buildFilter(f *config.Filter) (rules.Rule, error) {
	when, err := ParseExpr(f.When)
	if err != nil {
		return nil, fmt.Errorf("failed to parse when expression: %w", err)
	}

	then, err := buildActions(f.Then)
	if err != nil {
		return nil, fmt.Errorf("invalid then action: %w", err)
	}

	otherwise, err := buildActions(f.Otherwise)
	if err != nil {
		return nil, fmt.Errorf("invalid otherwise action: %w", err)
	}

	branch := append([]rules.Rule{when}, then...)
	if len(otherwise) == 0 {
		return rules.And(branch...), nil
	}
	return rules.AndElse(branch, otherwise), nil
}

func buildActions(specs []config.ActionSpec) ([]rules.Rule, error) {
	actions := make([]rules.Rule, 0, len(specs))
	for i := range specs {
		action, err := buildAction(&specs[i])
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, nil
}

func buildAction(spec *config.ActionSpec) (rules.Rule, error) {
	switch {
	case spec.Respond != nil:
		message := spec.Respond.Message
		if message == "" {
			message = "request rejected by filter"
		}
		return act.Respond(spec.Respond.Status, message), nil

	case spec.Forward:
		return act.Forward, nil

	case spec.Log != nil:
		level, err := zerolog.ParseLevel(spec.Log.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %s: %w", spec.Log.Level, err)
		}
		return act.Log(level, spec.Log.Message), nil

	case spec.SetHeader != nil:
		return act.SetHeader(spec.SetHeader.Key, spec.SetHeader.Value), nil

	case spec.DropCookie != "":
		return act.DropCookie(spec.DropCookie), nil

	default:
		return nil, fmt.Errorf("action spec selects no action")
	}
}
