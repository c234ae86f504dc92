// Package ir defines the compiled-predicate intermediate representation.
//
// A compiled predicate is one query clause turned into a self-contained,
// variant-tagged unit of tuple-stream pipeline fragments, ready to be
// stitched into a full execution plan by the query planner. Predicates are
// immutable after construction and consumed exactly once.
//
// The other internal packages import ir together with flow and ops; ir
// itself imports nothing above those. This keeps the IR a foundational
// layer with no circular dependencies.
package ir
