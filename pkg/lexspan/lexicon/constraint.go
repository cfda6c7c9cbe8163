package lexicon

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/cognicore/lexspan/pkg/lexspan/internalerr"
	"github.com/cognicore/lexspan/pkg/lexspan/text"
)

// Constraint is a predicate a matched span must satisfy for an entry to
// apply. String returns the pattern the constraint was built from; it is what
// a disk lexicon persists.
type Constraint interface {
	Test(span text.Span) bool
	String() string
}

// regexpPrefix introduces a regular expression constraint over the span
// surface text, e.g. "re:^[A-Z]".
const regexpPrefix = "re:"

type predicate struct {
	pattern string
	fn      func(text.Span) bool
}

func (p predicate) Test(span text.Span) bool { return p.fn(span) }
func (p predicate) String() string           { return p.pattern }

var (
	registryMu sync.RWMutex
	registry   = map[string]func(text.Span) bool{
		"upper": func(s text.Span) bool { return s.IsUpper() },
		"lower": isLower,
		"title": isTitle,
	}
)

// RegisterConstraint makes a named predicate available to ParseConstraint.
// Registering an existing name replaces it.
func RegisterConstraint(name string, fn func(text.Span) bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = fn
}

// ParseConstraint resolves a pattern to a Constraint. An empty pattern
// yields a nil Constraint.
func ParseConstraint(pattern string) (Constraint, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, nil
	}

	if expr, ok := strings.CutPrefix(pattern, regexpPrefix); ok {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("constraint %q: %v: %w", pattern, err, internalerr.ErrInvalidInput)
		}
		return predicate{pattern: pattern, fn: func(s text.Span) bool {
			return re.MatchString(s.String())
		}}, nil
	}

	registryMu.RLock()
	fn, ok := registry[pattern]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("constraint %q: unknown: %w", pattern, internalerr.ErrInvalidInput)
	}
	return predicate{pattern: pattern, fn: fn}, nil
}

// MustConstraint is like ParseConstraint but panics on error.
func MustConstraint(pattern string) Constraint {
	c, err := ParseConstraint(pattern)
	if err != nil {
		panic(err)
	}
	return c
}

func isLower(s text.Span) bool {
	hasLetter := false
	for _, r := range s.String() {
		if unicode.IsUpper(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// isTitle requires every word token to start with an uppercase letter.
func isTitle(s text.Span) bool {
	words := 0
	for _, tok := range s.Tokens() {
		if tok.Punct {
			continue
		}
		words++
		for _, r := range tok.Text {
			if !unicode.IsUpper(r) {
				return false
			}
			break
		}
	}
	return words > 0
}
