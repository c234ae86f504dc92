package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredicateID_Stable(t *testing.T) {
	summary := map[string]any{
		"kind":      "map",
		"infields":  []any{"?a"},
		"outfields": []any{"?b"},
	}
	a, err := PredicateID(summary)
	require.NoError(t, err)
	b, err := PredicateID(summary)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64) // hex sha256
}

func TestPredicateID_KeyOrderIrrelevant(t *testing.T) {
	a, err := PredicateID(map[string]any{"x": 1, "y": 2})
	require.NoError(t, err)
	b, err := PredicateID(map[string]any{"y": 2, "x": 1})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPredicateID_SensitiveToContent(t *testing.T) {
	a, err := PredicateID(map[string]any{"kind": "map"})
	require.NoError(t, err)
	b, err := PredicateID(map[string]any{"kind": "filter"})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestPredicateID_RejectsUnhashable(t *testing.T) {
	_, err := PredicateID(map[string]any{"bad": 1.5})
	assert.Error(t, err)
}

func TestHashWithDomain_Separation(t *testing.T) {
	// The 0x00 separator keeps domain/data boundaries unambiguous.
	a := hashWithDomain("ab", []byte("c"))
	b := hashWithDomain("a", []byte("bc"))
	assert.NotEqual(t, a, b)
}
