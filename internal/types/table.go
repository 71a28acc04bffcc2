// Package types maps SurrealQL type descriptors to the compact codes used in
// compressed function signatures.
package types

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Reserved codes and descriptors.
const (
	// AnyCode is emitted for "any" and for every descriptor the table cannot map.
	AnyCode = "*"
	// NullCode is emitted for "null" and for functions that return nothing.
	NullCode = "0"
	// OptionPrefix wraps the code of an option<T> argument.
	OptionPrefix = "?"
	// VariadicPrefix marks a variadic parameter.
	VariadicPrefix = "+"

	// None is the descriptor for a signature without a return clause.
	None = "none"
	// Unknown is the descriptor recorded for signatures that failed to parse.
	Unknown = "unknown"
)

var (
	// ErrInvalidCode indicates an override code that is not a single usable character
	ErrInvalidCode = errors.New("invalid type code")

	// ErrDuplicateCode indicates two type names sharing one code
	ErrDuplicateCode = errors.New("duplicate type code")
)

// reservedCodes cannot be assigned to a primitive because they carry structure.
var reservedCodes = map[string]bool{
	OptionPrefix:   true,
	VariadicPrefix: true,
	"(":            true,
	")":            true,
	">":            true,
	"|":            true,
}

// Entry is one primitive type and its code.
type Entry struct {
	Name string
	Code string
}

// defaultEntries is the versioned abbreviation table. Order is the legend order.
func defaultEntries() []Entry {
	return []Entry{
		{"array", "a"},
		{"string", "s"},
		{"number", "n"},
		{"bool", "b"},
		{"object", "o"},
		{"record", "r"},
		{"int", "i"},
		{"float", "f"},
		{"decimal", "c"},
		{"duration", "d"},
		{"datetime", "t"},
		{"geometry", "g"},
		{"uuid", "u"},
		{"value", "v"},
		{"bytes", "y"},
		{"set", "e"},
		{"regex", "x"},
		{"any", AnyCode},
		{"null", NullCode},
	}
}

// containers take their first type argument as part of the code (array<number> -> "an").
var containers = map[string]bool{
	"array": true,
	"set":   true,
}

// TableVersion identifies the default abbreviation table.
const TableVersion = "1"

// Table is an immutable bidirectional mapping between type names and codes.
type Table struct {
	codes map[string]string
	names map[string]string
	order []string
}

// Default returns a new Table holding the default abbreviations.
func Default() *Table {
	t, err := newTable(defaultEntries())
	if err != nil {
		// The default table is static; a failure here is a programming error.
		panic(err)
	}
	return t
}

func newTable(entries []Entry) (*Table, error) {
	t := &Table{
		codes: make(map[string]string, len(entries)),
		names: make(map[string]string, len(entries)),
		order: make([]string, 0, len(entries)),
	}
	for _, e := range entries {
		name := strings.ToLower(strings.TrimSpace(e.Name))
		if utf8.RuneCountInString(e.Code) != 1 || reservedCodes[e.Code] {
			return nil, fmt.Errorf("%w: %q for type %q", ErrInvalidCode, e.Code, name)
		}
		if other, ok := t.names[e.Code]; ok && other != name {
			return nil, fmt.Errorf("%w: %q used by %q and %q", ErrDuplicateCode, e.Code, other, name)
		}
		if old, ok := t.codes[name]; ok {
			delete(t.names, old)
		} else {
			t.order = append(t.order, name)
		}
		t.codes[name] = e.Code
		t.names[e.Code] = name
	}
	return t, nil
}

// WithOverrides returns a new Table with extra or replaced entries.
// Overrides are applied in sorted name order so errors are reproducible.
func (t *Table) WithOverrides(extra map[string]string) (*Table, error) {
	if len(extra) == 0 {
		return t, nil
	}

	entries := t.Entries()
	names := make([]string, 0, len(extra))
	for name := range extra {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		entries = append(entries, Entry{Name: name, Code: extra[name]})
	}
	return newTable(entries)
}

// Entries returns the primitive entries in legend order.
func (t *Table) Entries() []Entry {
	entries := make([]Entry, 0, len(t.order))
	for _, name := range t.order {
		entries = append(entries, Entry{Name: name, Code: t.codes[name]})
	}
	return entries
}

// Lookup returns the code of a primitive type name.
func (t *Table) Lookup(name string) (string, bool) {
	code, ok := t.codes[strings.ToLower(strings.TrimSpace(name))]
	return code, ok
}

// Decode returns the primitive type name for a single code.
func (t *Table) Decode(code string) (string, bool) {
	name, ok := t.names[code]
	return name, ok
}

// Encode maps a type descriptor to its compact code.
//
// Primitives map through the table; option<T> becomes "?"+code(T);
// array<T> and set<T> append code(T) to the container code; other
// parameterized primitives such as record<user> keep only the base code;
// unions concatenate member codes inside parentheses; variadics get a "+"
// prefix. ok is false when any part of the descriptor had no mapping, in
// which case that part is encoded as AnyCode.
func (t *Table) Encode(descriptor string) (code string, ok bool) {
	d := strings.ToLower(strings.TrimSpace(descriptor))

	switch d {
	case None:
		return NullCode, true
	case Unknown:
		return AnyCode, true
	case "":
		return AnyCode, false
	}

	if members := splitTopLevel(d, '|'); len(members) > 1 {
		var sb strings.Builder
		ok = true
		sb.WriteString("(")
		for _, m := range members {
			c, mok := t.Encode(m)
			ok = ok && mok
			sb.WriteString(c)
		}
		sb.WriteString(")")
		return sb.String(), ok
	}

	if inner, found := strings.CutPrefix(d, "..."); found {
		c, iok := t.Encode(inner)
		return VariadicPrefix + c, iok
	}
	if inner, found := strings.CutSuffix(d, "..."); found {
		c, iok := t.Encode(inner)
		return VariadicPrefix + c, iok
	}

	if base, args, found := splitParameterized(d); found {
		return t.encodeParameterized(base, args)
	}

	if c, found := t.codes[d]; found {
		return c, true
	}
	return AnyCode, false
}

func (t *Table) encodeParameterized(base string, args []string) (string, bool) {
	if base == "option" {
		if len(args) == 0 {
			return OptionPrefix + AnyCode, false
		}
		c, ok := t.Encode(args[0])
		return OptionPrefix + c, ok
	}

	baseCode, found := t.codes[base]
	if !found {
		return AnyCode, false
	}
	if !containers[base] || len(args) == 0 {
		return baseCode, true
	}
	c, ok := t.Encode(args[0])
	return baseCode + c, ok
}

// Legend renders the table as "code=name" pairs followed by the structural markers.
func (t *Table) Legend() string {
	parts := make([]string, 0, len(t.order)+3)
	for _, name := range t.order {
		parts = append(parts, t.codes[name]+"="+name)
	}
	parts = append(parts,
		OptionPrefix+"=option<>",
		VariadicPrefix+"=variadic",
		"(..)=union",
	)

	var lines []string
	const perLine = 8
	for i := 0; i < len(parts); i += perLine {
		end := min(i+perLine, len(parts))
		lines = append(lines, strings.Join(parts[i:end], " "))
	}
	return strings.Join(lines, "\n")
}

// splitParameterized splits "array<number>" into "array" and ["number"].
func splitParameterized(d string) (string, []string, bool) {
	open := strings.IndexByte(d, '<')
	if open <= 0 || !strings.HasSuffix(d, ">") {
		return "", nil, false
	}
	base := strings.TrimSpace(d[:open])
	inner := d[open+1 : len(d)-1]
	var args []string
	for _, a := range splitTopLevel(inner, ',') {
		if a = strings.TrimSpace(a); a != "" {
			args = append(args, a)
		}
	}
	return base, args, true
}

// splitTopLevel splits s on sep outside of any <>, (), [] or {} nesting.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[', '{':
			depth++
		case '>', ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}
