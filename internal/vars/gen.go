package vars

import (
	"sync"

	"github.com/google/uuid"
)

// Generator produces globally unique suffixes for generated variable names.
//
// A query planner may compile many clauses of one query before sequencing
// them, so implementations must be safe for concurrent use.
type Generator interface {
	Generate() string
}

// UUIDGenerator generates time-sortable UUIDv7 suffixes.
//
// UUIDv7 embeds a timestamp in the most significant bits, so generated
// variable names sort by creation time, which is helpful when reading
// compiled-predicate dumps.
//
// Thread-safety: UUIDGenerator is stateless and safe for concurrent use.
type UUIDGenerator struct{}

// Generate creates a new UUIDv7 suffix.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDGenerator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined suffixes for testing.
//
// This enables deterministic compilation output and golden-file comparison.
// Tests provide a known sequence and verify exact generated names.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu       sync.Mutex
	suffixes []string
	idx      int
}

// NewFixedGenerator creates a generator that returns suffixes in order.
//
// Example:
//
//	gen := vars.NewFixedGenerator("a", "b")
//	gen.Generate() // "a"
//	gen.Generate() // "b"
//	gen.Generate() // panic: all suffixes exhausted
func NewFixedGenerator(suffixes ...string) *FixedGenerator {
	return &FixedGenerator{suffixes: suffixes}
}

// Generate returns the next predetermined suffix.
//
// Panics if all suffixes have been consumed. This is a fail-fast approach
// to catch test misconfiguration (the test generated more names than expected).
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.suffixes) {
		panic("FixedGenerator: all suffixes exhausted")
	}
	s := g.suffixes[g.idx]
	g.idx++
	return s
}

// NewName returns a fresh generated nullable variable name.
func NewName(g Generator) string {
	return genPrefix + g.Generate()
}

// NewNames returns n fresh generated nullable variable names.
func NewNames(g Generator, n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = NewName(g)
	}
	return names
}
