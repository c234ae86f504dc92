// Package compiler turns raw query clauses into compiled predicates.
//
// The entry point runs four phases in order: variable normalization
// (constant lifting, duplicate resolution, ignored-variable replacement),
// operator dispatch, the kind-specific variant builder, and the enhancer
// that merges the normalization stages around the variant core. Each
// compilation is a pure function from clause description to an immutable
// predicate; the only process-wide state is unique-name generation, which
// is safe across concurrent compilations of different clauses.
package compiler

import "github.com/rillquery/rill/internal/vars"

// Compiler compiles query clauses into predicates. The zero value is not
// usable; construct with New or NewWithGenerator.
type Compiler struct {
	gen vars.Generator
}

// New creates a Compiler with UUIDv7-based generated variable names.
func New() *Compiler {
	return &Compiler{gen: vars.UUIDGenerator{}}
}

// NewWithGenerator creates a Compiler with a caller-supplied name
// generator. Tests use this with vars.NewFixedGenerator for deterministic
// compiled output.
func NewWithGenerator(g vars.Generator) *Compiler {
	return &Compiler{gen: g}
}
