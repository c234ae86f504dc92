package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rillquery/rill/internal/flow"
)

type sinkLink struct{ next any }

func (s sinkLink) Sink() any { return s.next }

func TestUnwrapTrap(t *testing.T) {
	terminal := MemorySource{ID: "errors"}

	tap, err := UnwrapTrap(terminal)
	require.NoError(t, err)
	assert.Equal(t, "errors", tap.Name())

	// Nested sink links resolve to the terminal tap.
	tap, err = UnwrapTrap(sinkLink{next: sinkLink{next: terminal}})
	require.NoError(t, err)
	assert.Equal(t, "errors", tap.Name())

	_, err = UnwrapTrap("not a tap")
	assert.Error(t, err)
}

func TestMemorySourceOpen(t *testing.T) {
	src := MemorySource{
		ID:     "mem-1",
		Schema: []string{"c0", "c1"},
		Rows:   [][]any{{1, "a"}, {2, "b"}, {3}},
	}
	assert.Equal(t, "mem-1", src.Name())
	assert.Equal(t, []string{"c0", "c1"}, src.Fields())

	s, err := src.Open()
	require.NoError(t, err)
	require.Len(t, s, 3)
	assert.Equal(t, flow.Tuple{"c0": 1, "c1": "a"}, s[0])
	// A short row leaves the missing column unset.
	assert.Equal(t, 3, s[2]["c0"])
	_, ok := s[2]["c1"]
	assert.False(t, ok)
}
