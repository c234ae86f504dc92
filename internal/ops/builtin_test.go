package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	op, ok := Lookup("sum")
	require.True(t, ok)
	assert.Implements(t, (*ParallelAggregator)(nil), op)

	op, ok = Lookup("equals")
	require.True(t, ok)
	assert.IsType(t, Equality{}, op)

	_, ok = Lookup("no-such-operator")
	assert.False(t, ok)
}

func TestIdentityBuiltin(t *testing.T) {
	op, ok := Lookup("identity")
	require.True(t, ok)
	m, ok := op.(Mapper)
	require.True(t, ok)

	out, err := m.Apply([]any{1, "x"})
	require.NoError(t, err)
	assert.Equal(t, []any{1, "x"}, out)
}

func TestPositiveBuiltin(t *testing.T) {
	op, ok := Lookup("positive")
	require.True(t, ok)
	f, ok := op.(Filter)
	require.True(t, ok)

	keep, err := f.Keep([]any{3})
	require.NoError(t, err)
	assert.True(t, keep)

	keep, err = f.Keep([]any{-1})
	require.NoError(t, err)
	assert.False(t, keep)

	_, err = f.Keep([]any{"nope"})
	assert.Error(t, err)
}
