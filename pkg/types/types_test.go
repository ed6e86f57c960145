package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
		str   string
	}{
		{"string", String, "string"},
		{"Boolean", Boolean, "boolean"},
		{"*", Any, "any"},
		{"", Any, "any"},
		{"number[]", Array, "number[]"},
		{"Array<string>", Array, "string[]"},
		{"Array.<string>", Array, "string[]"},
		{`"primary" | 'secondary'`, Union, `"primary" | "secondary"`},
		{"?string", Union, "string | null"},
		{"number=", Union, "number | undefined"},
		{"(string | number)[]", Array, "(string | number)[]"},
		{"CustomEvent<{ id: string }>", Reference, "CustomEvent<{ id: string }>"},
		{"(e: Event) => void", Function, "(e: Event) => void"},
		{"[string, number]", Tuple, "[string, number]"},
		{"ns.Type", Reference, "ns.Type"},
		{"-1 | 2", Union, "-1 | 2"},
		{"true", BooleanLiteral, "true"},
		{"Partial<Foo", Reference, "Partial<Foo"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Parse(tt.input)
			require.NotNil(t, got)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.str, got.String())
		})
	}
}

func TestStringLiterals(t *testing.T) {
	values, ok := Parse(`"a" | "b" | undefined`).StringLiterals()
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, values)

	_, ok = Parse(`"a" | number`).StringLiterals()
	assert.False(t, ok)
}

func TestNonNullable(t *testing.T) {
	assert.Equal(t, "string", Parse("string | null | undefined").NonNullable().String())
	assert.Equal(t, "string | number", Parse("string | number").NonNullable().String())
}

func TestAssignable(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{"string", "string", true},
		{`"a" | "b"`, "string", true},
		{"number", "string", false},
		{"string", "any", true},
		{"any", "number", true},
		{"boolean", "boolean | undefined", true},
		{"string | number", "string", false},
		{"string[]", "Array", true},
		{"{ a: string }", "object", true},
		{"string", "object", false},
		{"Date", "Date", true},
		{"string", "Date", false},
		{"string", "MyAlias", true},
		{"[string]", "Array", true},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, Assignable(Parse(tt.from), Parse(tt.to)))
		})
	}
}

func TestFromConstructorAndValue(t *testing.T) {
	assert.Equal(t, String, FromConstructor("String").Kind)
	assert.Equal(t, Array, FromConstructor("Array").Kind)
	assert.Nil(t, FromConstructor("Date"))

	assert.Equal(t, Number, FromValue(float64(3)).Kind)
	assert.Equal(t, Boolean, FromValue(true).Kind)
	assert.Equal(t, Null, FromValue(nil).Kind)
	assert.Equal(t, Array, FromValue([]any{"a"}).Kind)
}

func TestNilTypeIsAny(t *testing.T) {
	var nilType *Type
	assert.True(t, nilType.IsAnyLike())
	assert.Equal(t, "any", nilType.String())
	assert.Nil(t, nilType.TypeArg(0))
}
