package vars

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDGenerator_Unique(t *testing.T) {
	g := UUIDGenerator{}
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		name := NewName(g)
		require.False(t, seen[name], "generated name collided: %s", name)
		seen[name] = true
	}
}

func TestUUIDGenerator_ConcurrentUse(t *testing.T) {
	// Independent clause compilations within one query may generate names
	// concurrently.
	g := UUIDGenerator{}
	var mu sync.Mutex
	seen := make(map[string]bool)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 100)
			for j := range local {
				local[j] = g.Generate()
			}
			mu.Lock()
			defer mu.Unlock()
			for _, name := range local {
				assert.False(t, seen[name])
				seen[name] = true
			}
		}()
	}
	wg.Wait()
}

func TestFixedGenerator_Sequence(t *testing.T) {
	g := NewFixedGenerator("a", "b")
	assert.Equal(t, "!__gen_a", NewName(g))
	assert.Equal(t, "!__gen_b", NewName(g))
	assert.Panics(t, func() { g.Generate() })
}

func TestNewNames(t *testing.T) {
	g := NewFixedGenerator("1", "2", "3")
	names := NewNames(g, 3)
	assert.Equal(t, []string{"!__gen_1", "!__gen_2", "!__gen_3"}, names)
}
