package router

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/simman/go-gatekeeper/internal/rules"
	"github.com/simman/go-gatekeeper/internal/rules/match"
)

// ParseExpr parses a filter match expression into a matcher tree.
//
// The grammar composes leaf matchers like Method{GET,POST} or
// PathPrefix{/admin} with !, && and || (in order of precedence) and
// parentheses.
func ParseExpr(expr string) (rules.Rule, error) {
	p := &parser{
		input: strings.TrimSpace(expr),
		pos:   0,
	}
	rule, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("unexpected input at position %d", p.pos)
	}
	return rule, nil
}

type parser struct {
	input string
	pos   int
}

// parseOr handles || operations (lowest precedence)
func (p *parser) parseOr() (rules.Rule, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for {
		p.skipWhitespace()
		if !p.matchString("||") {
			break
		}
		p.pos += 2
		p.skipWhitespace()

		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = rules.Or(left, right)
	}

	return left, nil
}

// parseAnd handles && operations
func (p *parser) parseAnd() (rules.Rule, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		p.skipWhitespace()
		if !p.matchString("&&") {
			break
		}
		p.pos += 2
		p.skipWhitespace()

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = rules.And(left, right)
	}

	return left, nil
}

// parseUnary handles ! and parentheses
func (p *parser) parseUnary() (rules.Rule, error) {
	p.skipWhitespace()

	if p.matchChar('!') {
		p.pos++
		p.skipWhitespace()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return rules.Not(inner), nil
	}

	if p.matchChar('(') {
		p.pos++
		p.skipWhitespace()
		rule, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		p.skipWhitespace()
		if !p.matchChar(')') {
			return nil, fmt.Errorf("expected ')' at position %d", p.pos)
		}
		p.pos++
		return rule, nil
	}

	return p.parseMatcher()
}

// parseMatcher parses individual matchers like Method{GET,POST}
func (p *parser) parseMatcher() (rules.Rule, error) {
	p.skipWhitespace()

	nameStart := p.pos
	for p.pos < len(p.input) && p.input[p.pos] != '{' && p.input[p.pos] != ' ' {
		p.pos++
	}

	if nameStart == p.pos {
		return nil, fmt.Errorf("expected matcher name at position %d", p.pos)
	}

	name := p.input[nameStart:p.pos]
	p.skipWhitespace()

	if !p.matchChar('{') {
		return nil, fmt.Errorf("expected '{' after matcher name at position %d", p.pos)
	}
	p.pos++

	valueStart := p.pos
	depth := 1
	for p.pos < len(p.input) && depth > 0 {
		if p.input[p.pos] == '{' {
			depth++
		} else if p.input[p.pos] == '}' {
			depth--
		}
		if depth > 0 {
			p.pos++
		}
	}

	if depth != 0 {
		return nil, fmt.Errorf("unmatched braces at position %d", p.pos)
	}

	value := p.input[valueStart:p.pos]
	p.pos++ // Skip closing brace

	return createMatcher(name, value)
}

// createMatcher creates a leaf matcher based on the name and value
func createMatcher(name, value string) (rules.Rule, error) {
	switch name {
	case "Host":
		return match.Host(value), nil

	case "Path":
		return match.Path(value), nil

	case "PathPrefix":
		return match.PathPrefix(value), nil

	case "RelativePath":
		return match.RelativePath(value), nil

	case "PathPattern":
		pattern, err := regexp.Compile(value)
		if err != nil {
			return nil, fmt.Errorf("invalid path pattern: %w", err)
		}
		return match.PathPattern(pattern), nil

	case "Method":
		methods := strings.Split(value, ",")
		return match.Method(methods...), nil

	case "Header":
		key, val, ok := strings.Cut(value, "=")
		if !ok {
			return nil, fmt.Errorf("invalid Header matcher format, expected Key=Value")
		}
		return match.Header(strings.TrimSpace(key), strings.TrimSpace(val)), nil

	case "HeaderRegex":
		key, val, ok := strings.Cut(value, "=")
		if !ok {
			return nil, fmt.Errorf("invalid HeaderRegex matcher format, expected Key=Pattern")
		}
		pattern, err := regexp.Compile(strings.TrimSpace(val))
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern: %w", err)
		}
		return match.HeaderRegex(strings.TrimSpace(key), pattern), nil

	case "Query":
		key, val, ok := strings.Cut(value, "=")
		if !ok {
			return nil, fmt.Errorf("invalid Query matcher format, expected Key=Value")
		}
		return match.Query(strings.TrimSpace(key), strings.TrimSpace(val)), nil

	case "Auth":
		return match.AuthScheme(strings.TrimSpace(value)), nil

	case "True":
		return rules.Always, nil

	case "False":
		return rules.Never, nil

	default:
		return nil, fmt.Errorf("unknown matcher: %s", name)
	}
}

// skipWhitespace skips whitespace characters
func (p *parser) skipWhitespace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t' || p.input[p.pos] == '\n' || p.input[p.pos] == '\r') {
		p.pos++
	}
}

// matchChar checks if the current character matches
func (p *parser) matchChar(ch byte) bool {
	return p.pos < len(p.input) && p.input[p.pos] == ch
}

// matchString checks if the current position matches the string
func (p *parser) matchString(s string) bool {
	return p.pos+len(s) <= len(p.input) && p.input[p.pos:p.pos+len(s)] == s
}
