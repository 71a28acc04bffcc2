package compress

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/dali-distiller/internal/issues"
	"github.com/mvp-joe/dali-distiller/internal/schema"
	"github.com/mvp-joe/dali-distiller/internal/types"
)

// Test Plan for Encoder:
// - array::add compresses to "av>a", file::put to ">0"
// - rand::bool keeps both overloads as a list, single overloads stay bare strings
// - Operators render as "symbol" or "symbol|alt"
// - Keyword subsets are bounded, ordered subsequences of the full list
// - Subset prefers name segments, then the leading verb, then rare keywords
// - Statement and namespace keys are abbreviated with collision fallback
// - Unknown type descriptors become "*" and are reported once per function
// - Malformed "unknown" returns are not reported twice
// - Encoding twice yields identical output
//
// Test Plan for YAML:
// - Marshal writes a flow-style surrealql document
// - Unmarshal preserves the single/list shape of signature sets
// - Operator categories keep enumeration order

func fixture(t *testing.T) *schema.Schema {
	t.Helper()

	s, err := schema.Assemble(schema.Input{
		Version: "2.3.7",
		Statements: []schema.StatementRecord{
			{Name: "define/table", Keywords: []string{"DEFINE", "TABLE", "OVERWRITE", "SCHEMAFULL", "SCHEMALESS"}},
			{Name: "define/field", Keywords: []string{"DEFINE", "FIELD", "OVERWRITE", "ON", "TABLE", "TYPE"}},
			{Name: "select", Keywords: []string{"SELECT", "VALUE", "FROM", "ONLY", "WHERE", "SPLIT"}},
			{Name: "live", Keywords: []string{"LIVE", "SELECT", "VALUE", "DIFF", "FROM", "WHERE"}},
			{Name: "break", Keywords: []string{"BREAK"}},
		},
		Functions: []schema.FunctionRecord{
			{Namespace: "array", Name: "add", Signatures: []schema.Signature{
				{Params: []string{"array", "value"}, Returns: "array"},
			}},
			{Namespace: "file", Name: "put", Signatures: []schema.Signature{
				{Params: []string{}, Returns: "none"},
			}},
			{Namespace: "rand", Name: "bool", Signatures: []schema.Signature{
				{Params: []string{}, Returns: "bool"},
				{Params: []string{"duration", "duration"}, Returns: "duration"},
			}},
			{Namespace: "string", Name: "replace", Signatures: []schema.Signature{
				{Params: []string{"string", "string|regex", "widget"}, Returns: "string"},
				{Params: []string{"widget"}, Returns: "option<object>"},
			}},
			{Namespace: "math", Name: "e", Signatures: []schema.Signature{
				{Params: []string{}, Returns: "unknown"},
			}},
		},
		Operators: schema.OperatorCatalog{
			schema.Comparison: {
				{Symbol: "=", Alt: "IS", Description: "equal"},
				{Symbol: "==", Description: "exactly equal"},
			},
			schema.Logical: {
				{Symbol: "&&", Alt: "AND", Description: "and"},
			},
			schema.NullHandling: {
				{Symbol: "??", Description: "null coalescing"},
			},
		},
	})
	require.NoError(t, err)
	return s
}

func TestEncoder_Signatures(t *testing.T) {
	t.Parallel()

	res := NewEncoder(types.Default(), Options{}).Encode(fixture(t))
	funcs := res.Schema.Funcs

	assert.Equal(t, SigSet{"av>a"}, funcs["arr"]["add"])
	assert.Equal(t, SigSet{">0"}, funcs["fil"]["put"])
	assert.Equal(t, SigSet{">b", "dd>d"}, funcs["ran"]["bool"])
	assert.Equal(t, SigSet{"s(sx)*>s", "*>?o"}, funcs["str"]["replace"])
	assert.Equal(t, SigSet{">*"}, funcs["mat"]["e"])
}

func TestEncoder_OverloadParity(t *testing.T) {
	t.Parallel()

	s := fixture(t)
	res := NewEncoder(nil, Options{}).Encode(s)

	for _, ns := range s.Namespaces() {
		for _, name := range s.FunctionNames(ns) {
			full := s.Functions[ns][name]
			compressed := res.Schema.Funcs[res.NamespaceKeys[ns]][name]
			assert.Len(t, compressed, len(full.Signatures), "%s::%s", ns, name)
		}
	}
}

func TestEncoder_UnknownTypes(t *testing.T) {
	t.Parallel()

	res := NewEncoder(nil, Options{}).Encode(fixture(t))

	// "widget" appears twice in string::replace but is reported once,
	// and the "unknown" placeholder of math::e is not reported
	assert.Equal(t, 1, res.Issues.Count(issues.UnknownTypeDescriptor))
	item := res.Issues.Items()[0]
	assert.Equal(t, "string::replace", item.Subject)
	assert.Equal(t, "widget", item.Detail)
}

func TestEncoder_Operators(t *testing.T) {
	t.Parallel()

	res := NewEncoder(nil, Options{}).Encode(fixture(t))

	assert.Equal(t, []string{"=|IS", "=="}, res.Schema.Ops["com"])
	assert.Equal(t, []string{"&&|AND"}, res.Schema.Ops["log"])
	assert.Equal(t, []string{"??"}, res.Schema.Ops["nul"])
	assert.Equal(t, []string{"log", "com", "nul"}, res.Schema.Ops.Keys())
}

func TestEncoder_KeywordSubset(t *testing.T) {
	t.Parallel()

	s := fixture(t)
	res := NewEncoder(nil, Options{KeywordSubsetSize: 3}).Encode(s)

	for _, name := range s.StatementNames() {
		full := s.Statements[name].Keywords
		subset := res.Schema.Stmts[res.StatementKeys[name]].K
		assert.LessOrEqual(t, len(subset), 3, name)
		assertSubsequence(t, full, subset)
	}

	// Name segments first, then the rarest remaining keyword
	assert.Equal(t, []string{"DEFINE", "TABLE", "SCHEMAFULL"}, res.Schema.Stmts["def/tab"].K)
	assert.Equal(t, []string{"DEFINE", "FIELD", "ON"}, res.Schema.Stmts["def/fie"].K)
	// Leading verb, then ONLY and SPLIT which no other statement uses
	assert.Equal(t, []string{"SELECT", "ONLY", "SPLIT"}, res.Schema.Stmts["sel"].K)
	assert.Equal(t, []string{"LIVE", "SELECT", "DIFF"}, res.Schema.Stmts["liv"].K)
	assert.Equal(t, []string{"BREAK"}, res.Schema.Stmts["bre"].K)
}

func TestEncoder_KeywordSubsetSize(t *testing.T) {
	t.Parallel()

	res := NewEncoder(nil, Options{KeywordSubsetSize: 1}).Encode(fixture(t))
	assert.Equal(t, []string{"DEFINE"}, res.Schema.Stmts["def/tab"].K)
	assert.Equal(t, []string{"SELECT"}, res.Schema.Stmts["sel"].K)
}

func TestEncoder_Idempotent(t *testing.T) {
	t.Parallel()

	s := fixture(t)
	enc := NewEncoder(nil, Options{})

	first, err := Marshal(enc.Encode(s).Schema)
	require.NoError(t, err)
	second, err := Marshal(enc.Encode(s).Schema)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestKeys(t *testing.T) {
	t.Parallel()

	stmts := StatementKeys([]string{"select", "define/table", "sel", "remove/index", "rebuild"})
	assert.Equal(t, "sel", stmts["sel"])
	assert.Equal(t, "select", stmts["select"])
	assert.Equal(t, "def/tab", stmts["define/table"])
	assert.Equal(t, "rem/ind", stmts["remove/index"])
	assert.Equal(t, "reb", stmts["rebuild"])

	nss := NamespaceKeys([]string{"string", "strings", "geo", "time"})
	assert.Equal(t, "geo", nss["geo"])
	assert.Equal(t, "str", nss["string"])
	assert.Equal(t, "strings", nss["strings"])
	assert.Equal(t, "tim", nss["time"])

	assert.Equal(t, "nul", CategoryKey(schema.NullHandling))
}

func TestMarshal_FlowStyle(t *testing.T) {
	t.Parallel()

	res := NewEncoder(nil, Options{}).Encode(fixture(t))
	data, err := Marshal(res.Schema)
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, "{surrealql: {"), out)
	assert.NotContains(t, out, "description")
	assert.Less(t, strings.Index(out, "log:"), strings.Index(out, "com:"))
}

func TestUnmarshal_PreservesShape(t *testing.T) {
	t.Parallel()

	res := NewEncoder(nil, Options{}).Encode(fixture(t))
	data, err := Marshal(res.Schema)
	require.NoError(t, err)

	loaded, err := Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, "2.3.7", loaded.V)
	assert.Equal(t, res.Schema.Stmts, loaded.Stmts)
	assert.Equal(t, res.Schema.Funcs, loaded.Funcs)
	assert.Equal(t, res.Schema.Ops, loaded.Ops)
	assert.Len(t, loaded.Funcs["ran"]["bool"], 2)
	assert.Len(t, loaded.Funcs["arr"]["add"], 1)

	_, err = Unmarshal([]byte("surrealql_schema: {}\n"))
	assert.ErrorIs(t, err, ErrMissingRoot)
}

func TestSigSet_YAMLShape(t *testing.T) {
	t.Parallel()

	one, err := SigSet{"av>a"}.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "av>a", one)

	many, err := SigSet{">b", "dd>d"}.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, []string{">b", "dd>d"}, many)
}

func assertSubsequence(t *testing.T, full, subset []string) {
	t.Helper()
	i := 0
	for _, k := range full {
		if i < len(subset) && subset[i] == k {
			i++
		}
	}
	assert.Equal(t, len(subset), i, "%v is not a subsequence of %v", subset, full)
}
