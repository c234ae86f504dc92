package ir

import (
	"github.com/rillquery/rill/internal/flow"
	"github.com/rillquery/rill/internal/ops"
)

// Kind tags the closed set of predicate variants the compiler produces.
type Kind string

const (
	KindOption             Kind = "option"
	KindTap                Kind = "tap"
	KindGenerator          Kind = "generator"
	KindGeneratorFilter    Kind = "generator-filter"
	KindMacro              Kind = "macro"
	KindParallelAggregator Kind = "parallel-aggregator"
	KindParallelBuffer     Kind = "parallel-buffer"
	KindAggregate          Kind = "aggregate"
	KindBuffer             Kind = "buffer"
	// KindBufferIter is the literal buffer-iterator tag; the dispatcher
	// normalizes it to KindBuffer before returning.
	KindBufferIter Kind = "buffer-iter"
	KindMap        Kind = "map"
	KindMapcat     Kind = "mapcat"
	KindFilter     Kind = "filter"
	KindFunction   Kind = "function"
	KindCollection Kind = "collection"
	KindEquality   Kind = "equality"
)

// Tagged is the escape hatch for externally supplied operator wrappers: a
// foreign value may declare its predicate kind out of band instead of
// satisfying one of the ops capability interfaces. The value must still
// satisfy the capability interface the declared kind is built from.
type Tagged interface {
	PredicateKind() Kind
}

// Predicate is one compiled query clause.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in the enhancer and in the planner.
//
// Within one predicate, Infields and Outfields contain only variable
// names: constants are lifted and duplicates resolved before dispatch, and
// Outfields after finalization include any variables generated to replace
// them, so the full substitution is observable.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package

	// Env returns the shared envelope.
	Env() *Envelope
}

// Envelope is the shared prefix of every predicate variant.
type Envelope struct {
	Kind      Kind     `json:"kind"`
	ID        string   `json:"id"`
	Infields  []string `json:"infields"`
	Outfields []string `json:"outfields"`
}

func (e *Envelope) Env() *Envelope { return e }

// Operation is a stateless per-tuple transform (map, mapcat, filter, or a
// generic function).
type Operation struct {
	Envelope
	Assembly flow.Assembly `json:"-"`
	// AllowOnGenFilter marks the operation safe to run directly against an
	// ungrounded generator filter without an intervening join.
	AllowOnGenFilter bool `json:"allow_on_gen_filter"`
}

func (*Operation) predicateNode() {}

// Aggregator is a grouped accumulation. IsBuffer distinguishes whole-group
// buffering (arbitrary, possibly order-sensitive logic over all rows of a
// group) from plain aggregation (order-independent).
type Aggregator struct {
	Envelope
	IsBuffer bool `json:"is_buffer"`
	// Parallel is set when the aggregator is natively associative and the
	// engine may pre-reduce partitions before grouping.
	Parallel *ops.CombinerSpec `json:"-"`
	Pregroup flow.Assembly     `json:"-"`
	Serial   flow.Assembly     `json:"-"`
	Post     flow.Assembly     `json:"-"`
}

func (*Aggregator) predicateNode() {}

// Generator is a tuple source.
type Generator struct {
	Envelope
	// JoinSetVar names the join-restriction variable when the generator
	// was compiled from a join-restriction wrapper.
	JoinSetVar string `json:"join_set_var,omitempty"`
	// Ground is true iff every output variable is bound (non-generated,
	// non-nullable); the planner uses it to decide whether the generator
	// can participate in a constant-equality join.
	Ground   bool                  `json:"ground"`
	Sources  map[string]ops.Source `json:"-"`
	Pipeline flow.Assembly         `json:"-"`
	Traps    map[string]ops.Tap    `json:"-"`
}

func (*Generator) predicateNode() {}

// GeneratorFilter is a generator wrapped with an extra output variable
// used as a join-restriction marker.
type GeneratorFilter struct {
	Generator
	Outvar string `json:"outvar"`
}

func (*GeneratorFilter) predicateNode() {}

// Option is a side-channel clause modifier (trap, sort, ...). It is never
// itself compiled into a stream stage.
type Option struct {
	Envelope
	Key   string `json:"key"`
	Value any    `json:"value"`
}

func (*Option) predicateNode() {}

// MacroRef references a reusable sub-query expansion. The planner resolves
// it; this layer never expands macros.
type MacroRef struct {
	Envelope
	Name string `json:"name"`
	// Expansion is the opaque expansion payload handed back to the planner.
	Expansion any `json:"-"`
}

func (*MacroRef) predicateNode() {}

// IsGenerator reports whether p is a generator-like clause (a tuple
// source, possibly with a join restriction). The planner uses this to
// decide join-graph placement.
func IsGenerator(p Predicate) bool {
	switch p.(type) {
	case *Generator, *GeneratorFilter:
		return true
	}
	return false
}

// IsMacro reports whether p is a predicate-macro reference.
func IsMacro(p Predicate) bool {
	_, ok := p.(*MacroRef)
	return ok
}
