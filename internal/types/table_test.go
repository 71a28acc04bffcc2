package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Table:
// - Every primitive round-trips through Encode/Decode
// - Encode is case-insensitive and trims whitespace
// - option<T>, array<T>, set<T> wrap the inner code
// - record<table> and geometry<kind> keep only the base code
// - Unions concatenate member codes in parentheses
// - Variadic descriptors get the "+" prefix
// - none maps to the null code, unknown to the any code without a flag
// - Unmappable descriptors fall back to "*" and report ok=false
// - WithOverrides adds entries and rejects bad or duplicate codes
// - Legend lists every entry deterministically

func TestTable_PrimitivesRoundTrip(t *testing.T) {
	t.Parallel()

	table := Default()
	for _, e := range table.Entries() {
		code, ok := table.Encode(e.Name)
		require.True(t, ok, e.Name)

		name, ok := table.Decode(code)
		require.True(t, ok, code)
		assert.Equal(t, e.Name, name)
	}
}

func TestTable_EncodeDescriptors(t *testing.T) {
	t.Parallel()

	table := Default()
	tests := []struct {
		descriptor string
		want       string
		wantOK     bool
	}{
		{"array", "a", true},
		{" String ", "s", true},
		{"value", "v", true},
		{"option<object>", "?o", true},
		{"array<number>", "an", true},
		{"array<string, 5>", "as", true},
		{"set<int>", "ei", true},
		{"array<option<string>>", "a?s", true},
		{"record<user>", "r", true},
		{"geometry<point>", "g", true},
		{"string|regex", "(sx)", true},
		{"string | number", "(sn)", true},
		{"option<string|number>", "?(sn)", true},
		{"...value", "+v", true},
		{"array...", "+a", true},
		{"none", NullCode, true},
		{"unknown", AnyCode, true},
		{"any", AnyCode, true},
		{"widget", AnyCode, false},
		{"", AnyCode, false},
		{"array<widget>", "a*", false},
		{"string|widget", "(s*)", false},
		{"thing<string>", AnyCode, false},
	}

	for _, tt := range tests {
		t.Run(tt.descriptor, func(t *testing.T) {
			code, ok := table.Encode(tt.descriptor)
			assert.Equal(t, tt.want, code)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestTable_WithOverrides(t *testing.T) {
	t.Parallel()

	table := Default()

	extended, err := table.WithOverrides(map[string]string{"closure": "l"})
	require.NoError(t, err)

	code, ok := extended.Encode("closure")
	assert.True(t, ok)
	assert.Equal(t, "l", code)

	// Original table is untouched
	_, ok = table.Lookup("closure")
	assert.False(t, ok)

	_, err = table.WithOverrides(map[string]string{"closure": "s"})
	assert.ErrorIs(t, err, ErrDuplicateCode)

	_, err = table.WithOverrides(map[string]string{"closure": "cl"})
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = table.WithOverrides(map[string]string{"closure": ">"})
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestTable_OverrideReplacesCode(t *testing.T) {
	t.Parallel()

	table, err := Default().WithOverrides(map[string]string{"regex": "p"})
	require.NoError(t, err)

	code, _ := table.Encode("regex")
	assert.Equal(t, "p", code)

	_, ok := table.Decode("x")
	assert.False(t, ok, "old code should be released")
}

func TestTable_Legend(t *testing.T) {
	t.Parallel()

	legend := Default().Legend()
	assert.Contains(t, legend, "a=array")
	assert.Contains(t, legend, "0=null")
	assert.Contains(t, legend, "?=option<>")
	assert.Equal(t, legend, Default().Legend())
}
