package schema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/dali-distiller/internal/issues"
)

// Test Plan for Schema:
// - Assemble builds statements, functions and operators with stats
// - Assemble rejects duplicate statements and functions, and empty functions
// - Assemble copies records so callers cannot mutate the schema
// - Coverage drops with recoverable issues
// - Marshal writes the surrealql_schema root, alt as null, categories in enumeration order
// - Marshal is byte-stable across calls
// - Unmarshal restores names, namespaces and categories
// - Unmarshal rejects documents without the root key and unknown categories

func sampleInput() Input {
	return Input{
		Version: "2.3.7",
		Statements: []StatementRecord{
			{
				Name:          "define/table",
				Keywords:      []string{"DEFINE", "TABLE", "OVERWRITE", "SCHEMAFULL", "SCHEMALESS"},
				Variables:     []string{"name"},
				SyntaxPattern: "DEFINE TABLE [OVERWRITE|IF NOT EXISTS] <var> [SCHEMAFULL|SCHEMALESS]",
			},
			{Name: "break", Keywords: []string{"BREAK"}, SyntaxPattern: "BREAK"},
		},
		Functions: []FunctionRecord{
			{
				Namespace: "array",
				Name:      "add",
				Signatures: []Signature{
					{Pattern: "array::add(array, value) -> array", Params: []string{"array", "value"}, Returns: "array"},
				},
			},
			{
				Namespace: "rand",
				Name:      "bool",
				Signatures: []Signature{
					{Pattern: "rand::bool() -> bool", Returns: "bool"},
					{Pattern: "rand::bool(duration, duration) -> duration", Params: []string{"duration", "duration"}, Returns: "duration"},
				},
			},
		},
		Operators: OperatorCatalog{
			Comparison: {
				{Symbol: "=", Alt: "IS", Description: "Check whether two values are equal"},
				{Symbol: "==", Description: "Check whether two values are exactly equal"},
			},
			Logical: {
				{Symbol: "&&", Alt: "AND", Description: "Checks whether both of two values are truthy"},
			},
		},
	}
}

func TestAssemble(t *testing.T) {
	t.Parallel()

	s, err := Assemble(sampleInput())
	require.NoError(t, err)

	assert.Equal(t, "2.3.7", s.Version)
	assert.Equal(t, []string{"break", "define/table"}, s.StatementNames())
	assert.Equal(t, []string{"array", "rand"}, s.Namespaces())
	assert.NotNil(t, s.Statements["break"].Variables)

	fn, ok := s.Function("rand", "bool")
	require.True(t, ok)
	assert.Len(t, fn.Signatures, 2)
	assert.Equal(t, "rand::bool", fn.QualifiedName())

	assert.Equal(t, Comparison, s.Operators[Comparison][0].Category)
	assert.Equal(t, []Category{Logical, Comparison}, s.Operators.NonEmpty())

	assert.Equal(t, Stats{
		Statements:         2,
		Namespaces:         2,
		Functions:          2,
		Signatures:         3,
		OperatorCategories: 2,
		Operators:          3,
	}, s.Metadata.Stats)
	assert.Equal(t, "100%", s.Metadata.Coverage)
	assert.Equal(t, FormatFull, s.Metadata.Format)
	assert.Equal(t, DefaultDescription, s.Metadata.Description)
}

func TestAssemble_Errors(t *testing.T) {
	t.Parallel()

	t.Run("duplicate statement", func(t *testing.T) {
		in := sampleInput()
		in.Statements = append(in.Statements, StatementRecord{Name: "break"})
		_, err := Assemble(in)
		assert.ErrorIs(t, err, ErrDuplicateStatement)
	})

	t.Run("duplicate function", func(t *testing.T) {
		in := sampleInput()
		in.Functions = append(in.Functions, in.Functions[0])
		_, err := Assemble(in)
		assert.ErrorIs(t, err, ErrDuplicateFunction)
	})

	t.Run("function without signatures", func(t *testing.T) {
		in := sampleInput()
		in.Functions = append(in.Functions, FunctionRecord{Namespace: "math", Name: "pi"})
		_, err := Assemble(in)
		assert.ErrorIs(t, err, ErrEmptyFunction)
	})
}

func TestAssemble_CopiesInput(t *testing.T) {
	t.Parallel()

	in := sampleInput()
	s, err := Assemble(in)
	require.NoError(t, err)

	in.Statements[0].Keywords[0] = "CHANGED"
	in.Functions[0].Signatures[0].Params[0] = "changed"
	in.Operators[Comparison][0].Symbol = "changed"

	assert.Equal(t, "DEFINE", s.Statements["define/table"].Keywords[0])
	assert.Equal(t, "array", s.Functions["array"]["add"].Signatures[0].Params[0])
	assert.Equal(t, "=", s.Operators[Comparison][0].Symbol)
}

func TestAssemble_Coverage(t *testing.T) {
	t.Parallel()

	in := sampleInput()
	in.Issues = &issues.Summary{}
	in.Issues.Addf(issues.MalformedSignature, "rand::bool", "no closing parenthesis")
	in.Issues.Addf(issues.UnknownTypeDescriptor, "array::add", "widget")

	s, err := Assemble(in)
	require.NoError(t, err)

	// 8 items, one recovered; unknown types do not reduce parse coverage
	assert.Equal(t, "87%", s.Metadata.Coverage)

	empty, err := Assemble(Input{Version: "1.0.0"})
	require.NoError(t, err)
	assert.Equal(t, "0%", empty.Metadata.Coverage)
}

func TestMarshal(t *testing.T) {
	t.Parallel()

	s, err := Assemble(sampleInput())
	require.NoError(t, err)

	data, err := Marshal(s)
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, "surrealql_schema:\n"), out)
	assert.Contains(t, out, "  version: 2.3.7\n")
	assert.Contains(t, out, "alt: IS")
	assert.Contains(t, out, "alt: null")
	assert.Contains(t, out, "syntax_pattern:")

	// Categories follow the enumeration, not alphabetical order
	assert.Less(t, strings.Index(out, "logical:"), strings.Index(out, "comparison:"))
	again, err := Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestUnmarshal_RoundTrip(t *testing.T) {
	t.Parallel()

	s, err := Assemble(sampleInput())
	require.NoError(t, err)
	data, err := Marshal(s)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "surrealql_full.yml")
	require.NoError(t, os.WriteFile(path, data, 0644))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, s.Version, loaded.Version)
	assert.Equal(t, s.Metadata, loaded.Metadata)
	assert.Equal(t, s.Statements, loaded.Statements)
	assert.Equal(t, s.Functions, loaded.Functions)
	assert.Equal(t, s.Operators, loaded.Operators)
	assert.Equal(t, "define/table", loaded.Statements["define/table"].Name)
	assert.Equal(t, "rand", loaded.Functions["rand"]["bool"].Namespace)
}

func TestUnmarshal_Errors(t *testing.T) {
	t.Parallel()

	_, err := Unmarshal([]byte("surrealql:\n  v: 2.3.7\n"))
	assert.ErrorIs(t, err, ErrMissingRoot)

	_, err = Unmarshal([]byte("surrealql_schema:\n  operators:\n    bitwise: []\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
