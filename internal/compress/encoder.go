// Package compress derives the token-bounded compressed schema from a full
// schema: keyword subsets, single-character type codes and bare operator
// tokens.
package compress

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mvp-joe/dali-distiller/internal/issues"
	"github.com/mvp-joe/dali-distiller/internal/schema"
	"github.com/mvp-joe/dali-distiller/internal/types"
)

// DefaultKeywordSubsetSize is the number of keywords kept per statement.
const DefaultKeywordSubsetSize = 3

// SignatureSeparator sits between parameter codes and the return code.
const SignatureSeparator = ">"

// Options configures an Encoder.
type Options struct {
	KeywordSubsetSize int
}

// Encoder turns a full schema into its compressed form. It reads the schema
// only and holds no per-run state, so encoding the same schema twice gives
// the same result.
type Encoder struct {
	table      *types.Table
	subsetSize int
	upper      cases.Caser
}

// NewEncoder creates an encoder using table for type codes.
func NewEncoder(table *types.Table, opts Options) *Encoder {
	if table == nil {
		table = types.Default()
	}
	size := opts.KeywordSubsetSize
	if size <= 0 {
		size = DefaultKeywordSubsetSize
	}
	return &Encoder{
		table:      table,
		subsetSize: size,
		upper:      cases.Upper(language.Und),
	}
}

// Result is one compressed encoding plus the key assignments used to get
// from full names to compressed keys.
type Result struct {
	Schema        *Schema
	StatementKeys map[string]string
	NamespaceKeys map[string]string
	// Issues holds the unknown type descriptors met during this encoding.
	Issues *issues.Summary
}

// Encode compresses s.
func (e *Encoder) Encode(s *schema.Schema) *Result {
	res := &Result{
		Schema: &Schema{
			V:     s.Version,
			Stmts: make(map[string]Statement, len(s.Statements)),
			Funcs: make(map[string]map[string]SigSet, len(s.Functions)),
			Ops:   make(OpGroups),
		},
		StatementKeys: StatementKeys(s.StatementNames()),
		NamespaceKeys: NamespaceKeys(s.Namespaces()),
		Issues:        &issues.Summary{},
	}

	freq := keywordFrequency(s)
	for _, name := range s.StatementNames() {
		st := s.Statements[name]
		res.Schema.Stmts[res.StatementKeys[name]] = Statement{
			K: e.selectKeywords(name, st.Keywords, freq),
		}
	}

	for _, ns := range s.Namespaces() {
		funcs := make(map[string]SigSet)
		for _, name := range s.FunctionNames(ns) {
			fn := s.Functions[ns][name]
			fn.Namespace, fn.Name = ns, name
			funcs[name] = e.encodeFunction(fn, res.Issues)
		}
		res.Schema.Funcs[res.NamespaceKeys[ns]] = funcs
	}

	for _, cat := range s.Operators.NonEmpty() {
		ops := s.Operators[cat]
		tokens := make([]string, 0, len(ops))
		for _, op := range ops {
			tokens = append(tokens, OperatorToken(op))
		}
		res.Schema.Ops[CategoryKey(cat)] = tokens
	}

	return res
}

// OperatorToken renders an operator as "symbol" or "symbol|alt".
func OperatorToken(op schema.OperatorRecord) string {
	if op.Alt == "" {
		return op.Symbol
	}
	return op.Symbol + "|" + op.Alt
}

func (e *Encoder) encodeFunction(fn schema.FunctionRecord, summary *issues.Summary) SigSet {
	reported := make(map[string]bool)
	code := func(descriptor string) string {
		c, ok := e.table.Encode(descriptor)
		if !ok && !reported[descriptor] {
			reported[descriptor] = true
			summary.Add(issues.Issue{
				Kind:    issues.UnknownTypeDescriptor,
				Subject: fn.QualifiedName(),
				Detail:  descriptor,
			})
		}
		return c
	}

	set := make(SigSet, 0, len(fn.Signatures))
	for _, sig := range fn.Signatures {
		var sb strings.Builder
		for _, p := range sig.Params {
			sb.WriteString(code(p))
		}
		sb.WriteString(SignatureSeparator)
		sb.WriteString(code(sig.Returns))
		set = append(set, sb.String())
	}
	return set
}

// selectKeywords picks the representative keyword subset of a statement.
//
// Priority: keywords that spell a segment of the statement name (in name
// order), then the leading keyword, then the rarest keywords across all
// statements with ties broken by position. The subset is returned in the
// order of the full keyword list, so it is always a subsequence of it.
func (e *Encoder) selectKeywords(name string, keywords []string, freq map[string]int) []string {
	if len(keywords) <= e.subsetSize {
		return append([]string{}, keywords...)
	}

	position := make(map[string]int, len(keywords))
	for i, k := range keywords {
		position[k] = i
	}

	chosen := make(map[string]bool, e.subsetSize)
	pick := func(k string) {
		if len(chosen) < e.subsetSize {
			chosen[k] = true
		}
	}

	for _, seg := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '_' || r == '-' }) {
		if k := e.upper.String(seg); hasPosition(position, k) {
			pick(k)
		}
	}
	pick(keywords[0])

	rest := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if !chosen[k] {
			rest = append(rest, k)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool {
		if freq[rest[i]] != freq[rest[j]] {
			return freq[rest[i]] < freq[rest[j]]
		}
		return position[rest[i]] < position[rest[j]]
	})
	for _, k := range rest {
		pick(k)
	}

	subset := make([]string, 0, e.subsetSize)
	for _, k := range keywords {
		if chosen[k] {
			subset = append(subset, k)
		}
	}
	return subset
}

func hasPosition(position map[string]int, k string) bool {
	_, ok := position[k]
	return ok
}

// keywordFrequency counts the statements each keyword appears in.
func keywordFrequency(s *schema.Schema) map[string]int {
	freq := make(map[string]int)
	for _, st := range s.Statements {
		seen := make(map[string]bool, len(st.Keywords))
		for _, k := range st.Keywords {
			if !seen[k] {
				seen[k] = true
				freq[k]++
			}
		}
	}
	return freq
}
