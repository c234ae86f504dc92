package vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpec_NoMarkersUsesDefault(t *testing.T) {
	spec, err := ParseSpec([]any{"?a", "?b"}, SelIn, NewFixedGenerator())
	require.NoError(t, err)
	assert.Equal(t, []any{"?a", "?b"}, spec.In())
	assert.Empty(t, spec.Out())

	spec, err = ParseSpec([]any{"?a", "?b"}, SelOut, NewFixedGenerator())
	require.NoError(t, err)
	assert.Empty(t, spec.In())
	assert.Equal(t, []any{"?a", "?b"}, spec.Out())
}

func TestParseSpec_ImplicitLeadingInputMarker(t *testing.T) {
	// A later marker forces the implicit leading run to be inputs, even
	// when the caller default says outputs.
	spec, err := ParseSpec([]any{"?a", SelOut, "?b"}, SelOut, NewFixedGenerator())
	require.NoError(t, err)
	assert.Equal(t, []any{"?a"}, spec.In())
	assert.Equal(t, []any{"?b"}, spec.Out())
}

func TestParseSpec_ExplicitMarkers(t *testing.T) {
	spec, err := ParseSpec([]any{SelIn, "?a", 7, SelOut, "?b"}, SelIn, NewFixedGenerator())
	require.NoError(t, err)
	assert.Equal(t, []any{"?a", 7}, spec.In())
	assert.Equal(t, []any{"?b"}, spec.Out())
}

func TestParseSpec_StringSpelledMarkers(t *testing.T) {
	// Tokens loaded from query files carry markers as plain strings.
	spec, err := ParseSpec([]any{":<", "?a", ":>", "?b"}, SelIn, NewFixedGenerator())
	require.NoError(t, err)
	assert.Equal(t, []any{"?a"}, spec.In())
	assert.Equal(t, []any{"?b"}, spec.Out())
}

func TestParseSpec_VectorFormWinsOverSingular(t *testing.T) {
	// Both :> and :>> present: the vector form silently wins and the
	// singular run is ignored.
	spec, err := ParseSpec([]any{SelOut, "?ignored", SelOutVec, "?a", "?b"}, SelIn, NewFixedGenerator())
	require.NoError(t, err)
	assert.Equal(t, []any{"?a", "?b"}, spec.Out())
}

func TestParseSpec_PositionalOutput(t *testing.T) {
	g := NewFixedGenerator("x", "y")
	spec, err := ParseSpec([]any{SelPosOut, 4, map[int]any{0: "?a", 2: "?b"}}, SelIn, g)
	require.NoError(t, err)

	out := spec.Out()
	require.Len(t, out, 4)
	assert.Equal(t, "?a", out[0])
	assert.Equal(t, "!__gen_x", out[1])
	assert.Equal(t, "?b", out[2])
	assert.Equal(t, "!__gen_y", out[3])
}

func TestParseSpec_PositionalOutputMalformed(t *testing.T) {
	_, err := ParseSpec([]any{SelPosOut, 4}, SelIn, NewFixedGenerator())
	assert.Error(t, err)

	_, err = ParseSpec([]any{SelPosOut, "four", map[int]any{}}, SelIn, NewFixedGenerator())
	assert.Error(t, err)
}

func TestParseSpec_NonDirectionalDefaultKeepsRawRun(t *testing.T) {
	// Parsing an option clause: the raw value stays under the option key.
	def := Selector("trap")
	spec, err := ParseSpec([]any{"sink-a"}, def, NewFixedGenerator())
	require.NoError(t, err)
	assert.Equal(t, []any{"sink-a"}, spec.Raw(def))
	assert.Empty(t, spec.In())
	assert.Empty(t, spec.Out())
}

func TestParseSpec_Empty(t *testing.T) {
	spec, err := ParseSpec(nil, SelIn, NewFixedGenerator())
	require.NoError(t, err)
	assert.Empty(t, spec.In())
	assert.Empty(t, spec.Out())
}
