// Package signature parses documented function call patterns such as
// "array::add(array, value) -> array" into schema signatures.
package signature

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/dali-distiller/internal/schema"
	"github.com/mvp-joe/dali-distiller/internal/types"
)

var (
	headPattern  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(::[A-Za-z_][A-Za-z0-9_]*)*$`)
	namedPattern = regexp.MustCompile(`^[$@]?[A-Za-z_][A-Za-z0-9_]*\s*:\s*([^:].*)$`)
)

// Parsed is the result of parsing one call pattern.
type Parsed struct {
	Namespace string
	Name      string
	Signature schema.Signature
	Malformed bool
	Problem   string
}

// QualifiedName returns "namespace::name".
func (p Parsed) QualifiedName() string {
	if p.Namespace == "" {
		return p.Name
	}
	return p.Namespace + "::" + p.Name
}

// Parse parses a single call pattern. Bare names such as "rand()" take
// namespaceHint as their namespace. Patterns that do not fit
// ns::name(params) -> ret still produce a signature, with no params and
// an "unknown" return, so overload counts are kept.
func Parse(pattern, namespaceHint string) Parsed {
	raw := strings.TrimSpace(pattern)
	text := strings.TrimSpace(strings.TrimSuffix(raw, ";"))

	open := strings.IndexByte(text, '(')
	if open < 0 {
		return malformed(raw, text, namespaceHint, "missing parameter list")
	}

	head := strings.TrimSpace(text[:open])
	if !headPattern.MatchString(head) {
		return malformed(raw, head, namespaceHint, "invalid function name")
	}

	closeAt := matchingParen(text, open)
	if closeAt < 0 {
		return malformed(raw, head, namespaceHint, "unclosed parameter list")
	}

	returns := types.None
	if rest := strings.TrimSpace(text[closeAt+1:]); rest != "" {
		ret, found := strings.CutPrefix(rest, "->")
		if !found {
			return malformed(raw, head, namespaceHint, "unexpected text after parameters")
		}
		if returns = strings.TrimSpace(ret); returns == "" {
			return malformed(raw, head, namespaceHint, "empty return type")
		}
	}

	ns, name := splitHead(head, namespaceHint)
	return Parsed{
		Namespace: ns,
		Name:      name,
		Signature: schema.Signature{
			Pattern: raw,
			Params:  parseParams(text[open+1 : closeAt]),
			Returns: returns,
		},
	}
}

func malformed(raw, head, namespaceHint, problem string) Parsed {
	ns, name := splitHead(head, namespaceHint)
	return Parsed{
		Namespace: ns,
		Name:      name,
		Signature: schema.Signature{
			Pattern: raw,
			Params:  []string{},
			Returns: types.Unknown,
		},
		Malformed: true,
		Problem:   problem,
	}
}

// splitHead keeps the first segment as namespace and the rest as the name,
// so "string::is::alpha" is function "is::alpha" in namespace "string".
func splitHead(head, namespaceHint string) (string, string) {
	ns, name, found := strings.Cut(head, "::")
	if !found || ns == "" {
		return namespaceHint, head
	}
	return ns, name
}

func parseParams(list string) []string {
	params := []string{}
	for _, p := range splitTopLevel(list) {
		if p == "" {
			continue
		}
		if m := namedPattern.FindStringSubmatch(p); m != nil {
			p = strings.TrimSpace(m[1])
		}
		params = append(params, p)
	}
	return params
}

// matchingParen returns the index of the parenthesis closing the one at open.
func matchingParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits on commas outside <>, (), [] and {} nesting.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[', '{':
			depth++
		case '>':
			// "->" inside a closure type is not a closer
			if i > 0 && s[i-1] == '-' {
				continue
			}
			if depth > 0 {
				depth--
			}
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}
