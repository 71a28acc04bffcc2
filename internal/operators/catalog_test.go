package operators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/dali-distiller/internal/issues"
	"github.com/mvp-joe/dali-distiller/internal/schema"
)

// Test Plan for operators:
// - Default classifier covers every category
// - Keyword symbols classify case-insensitively
// - Overrides replace categories and reject unknown keys
// - Builder.Add validates category keys, unknown keys fall back to other and are counted
// - Builder.Classify falls back to the alternate keyword, then to other
// - Same symbol in two categories is kept in both, source order preserved
// - Catalog returns a copy

func TestClassifier_Default(t *testing.T) {
	t.Parallel()

	c := DefaultClassifier()
	tests := map[string]schema.Category{
		"&&":          schema.Logical,
		"=":           schema.Comparison,
		">=":          schema.Comparison,
		"**":          schema.Mathematical,
		"<->":         schema.Graph,
		"CONTAINSALL": schema.Set,
		"∈":           schema.Set,
		"?~":          schema.Fuzzy,
		"??":          schema.NullHandling,
		"@@":          schema.Other,
		"and":         schema.Logical,
	}
	for symbol, want := range tests {
		got, ok := c.Classify(symbol)
		assert.True(t, ok, symbol)
		assert.Equal(t, want, got, symbol)
	}

	_, ok := c.Classify("<|4|>")
	assert.False(t, ok)
}

func TestNewClassifier_Overrides(t *testing.T) {
	t.Parallel()

	c, err := NewClassifier(map[string]string{"<|4|>": "other", "~": "comparison"})
	require.NoError(t, err)

	cat, ok := c.Classify("<|4|>")
	assert.True(t, ok)
	assert.Equal(t, schema.Other, cat)

	cat, _ = c.Classify("~")
	assert.Equal(t, schema.Comparison, cat)

	// The default classifier is unaffected
	cat, _ = DefaultClassifier().Classify("~")
	assert.Equal(t, schema.Fuzzy, cat)

	_, err = NewClassifier(map[string]string{"^": "bitwise"})
	assert.Error(t, err)
}

func TestBuilder_Add(t *testing.T) {
	t.Parallel()

	summary := &issues.Summary{}
	b := NewBuilder(nil, summary)

	assert.Equal(t, schema.Comparison, b.Add("comparison", schema.OperatorRecord{Symbol: "=", Alt: "IS"}))
	assert.Equal(t, schema.Comparison, b.Add("comparison", schema.OperatorRecord{Symbol: "=="}))
	assert.Equal(t, schema.Other, b.Add("bitwise", schema.OperatorRecord{Symbol: "^"}))

	catalog := b.Catalog()
	require.Len(t, catalog[schema.Comparison], 2)
	assert.Equal(t, "=", catalog[schema.Comparison][0].Symbol)
	assert.Equal(t, "==", catalog[schema.Comparison][1].Symbol)
	assert.Equal(t, schema.Comparison, catalog[schema.Comparison][0].Category)
	assert.Equal(t, "^", catalog[schema.Other][0].Symbol)

	assert.Equal(t, 1, summary.Count(issues.UnknownOperatorCategory))
}

func TestBuilder_Classify(t *testing.T) {
	t.Parallel()

	summary := &issues.Summary{}
	b := NewBuilder(DefaultClassifier(), summary)

	assert.Equal(t, schema.Logical, b.Classify(schema.OperatorRecord{Symbol: "&&", Alt: "AND"}, "operators.mdx"))
	assert.Equal(t, schema.Set, b.Classify(schema.OperatorRecord{Symbol: "⊇⊇", Alt: "CONTAINSALL"}, "operators.mdx"))
	assert.Equal(t, schema.Other, b.Classify(schema.OperatorRecord{Symbol: "<|4|>"}, "operators.mdx"))
	assert.Equal(t, schema.Other, b.Classify(schema.OperatorRecord{Symbol: "@@"}, "operators.mdx"))

	assert.Equal(t, 1, summary.Count(issues.UnknownOperatorCategory))
	assert.Equal(t, "operators.mdx", summary.Items()[0].Source)
}

func TestBuilder_NoCrossCategoryDedup(t *testing.T) {
	t.Parallel()

	b := NewBuilder(nil, nil)
	b.Add("comparison", schema.OperatorRecord{Symbol: "~"})
	b.Add("fuzzy", schema.OperatorRecord{Symbol: "~"})
	b.Add("fuzzy", schema.OperatorRecord{Symbol: "~"})

	catalog := b.Catalog()
	assert.Len(t, catalog[schema.Comparison], 1)
	assert.Len(t, catalog[schema.Fuzzy], 2)
	assert.Equal(t, 3, catalog.Total())
}

func TestBuilder_CatalogIsCopy(t *testing.T) {
	t.Parallel()

	b := NewBuilder(nil, nil)
	b.Add("logical", schema.OperatorRecord{Symbol: "||", Alt: "OR"})

	catalog := b.Catalog()
	catalog[schema.Logical][0].Symbol = "changed"

	assert.Equal(t, "||", b.Catalog()[schema.Logical][0].Symbol)
}
