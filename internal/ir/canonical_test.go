package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_Scalars(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "hello", `"hello"`},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"empty array", []any{}, "[]"},
		{"string slice", []string{"b", "a"}, `["b","a"]`},
		{"nested", []any{1, []any{"x"}}, `[1,["x"]]`},
		{"empty object", map[string]any{}, "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonical_Forbidden(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.Error(t, err)

	_, err = MarshalCanonical(3.14)
	assert.Error(t, err)

	_, err = MarshalCanonical(struct{}{})
	assert.Error(t, err)

	// Errors propagate out of containers.
	_, err = MarshalCanonical([]any{1, 2.5})
	assert.Error(t, err)
	_, err = MarshalCanonical(map[string]any{"k": nil})
	assert.Error(t, err)
}

func TestMarshalCanonical_KeyOrderUTF16(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{"b": 2, "a": 1, "c": 3})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2,"c":3}`, string(got))

	// RFC 8785 orders by UTF-16 code units: an emoji (surrogate pair,
	// first unit 0xD83D) sorts before U+FF61 (0xFF61).
	got, err = MarshalCanonical(map[string]any{"｡": 1, "\U0001f600": 2})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001f600\":2,\"｡\":1}", string(got))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	got, err := MarshalCanonical("<a>&</a>")
	require.NoError(t, err)
	assert.Equal(t, `"<a>&</a>"`, string(got))
}

func TestMarshalCanonical_NFCNormalization(t *testing.T) {
	// e + combining acute accent normalizes to the precomposed form.
	decomposed := "é"
	composed := "é"
	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(composed)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestMarshalCanonical_LineSeparatorsUnescaped(t *testing.T) {
	// Literal U+2028/U+2029 pass through unescaped, unlike encoding/json.
	got, err := MarshalCanonical("a\u2028b\u2029c")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(got))

	// A real backslash-u sequence in the input stays escaped.
	got, err = MarshalCanonical("x\\u2028y")
	require.NoError(t, err)
	assert.Equal(t, `"x\\u2028y"`, string(got))
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	obj := map[string]any{
		"kind":      "generator",
		"infields":  []any{},
		"outfields": []any{"?a", "?b"},
		"ground":    true,
	}
	a, err := MarshalCanonical(obj)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		b, err := MarshalCanonical(obj)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}
