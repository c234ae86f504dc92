package compiler

import (
	"github.com/rillquery/rill/internal/ir"
	"github.com/rillquery/rill/internal/ops"
	"github.com/rillquery/rill/internal/vars"
)

// Dispatch classifies an arbitrary operator value into exactly one
// predicate kind by structural inspection, in priority order:
//
//	option marker → source/tap → equality helper → join restriction →
//	native filter → capability variants (fixed preference order) →
//	already-compiled records (by their own type) → collection literal →
//	out-of-band capability tag → generic invocable
//
// The literal buffer-iterator tag is normalized to the plain buffer kind
// before returning. No match fails with an invalid-predicate error naming
// the offending value.
func Dispatch(op any) (ir.Kind, error) {
	kind, err := dispatch(op)
	if err != nil {
		return "", err
	}
	if kind == ir.KindBufferIter {
		kind = ir.KindBuffer
	}
	return kind, nil
}

func dispatch(op any) (ir.Kind, error) {
	switch op.(type) {
	case ir.OptionKey:
		return ir.KindOption, nil
	case ops.Source:
		return ir.KindTap, nil
	case ops.Equality:
		return ir.KindEquality, nil
	case ops.JoinRestriction:
		return ir.KindGeneratorFilter, nil
	case ops.Filter:
		return ir.KindFilter, nil
	}

	// Pluggable capability variants, in fixed preference order. An object
	// satisfying several capabilities compiles as the first one here.
	switch op.(type) {
	case ops.ParallelAggregator:
		return ir.KindParallelAggregator, nil
	case ops.ParallelBuffer:
		return ir.KindParallelBuffer, nil
	case ops.BufferIterator:
		return ir.KindBufferIter, nil
	case ops.Buffer:
		return ir.KindBuffer, nil
	case ops.Aggregate:
		return ir.KindAggregate, nil
	case ops.FlatMapper:
		return ir.KindMapcat, nil
	case ops.Mapper:
		return ir.KindMap, nil
	}

	// Already-compiled records dispatch by their own type.
	switch op.(type) {
	case *ir.Generator, *ir.GeneratorFilter:
		return ir.KindGenerator, nil
	case *ir.MacroRef:
		return ir.KindMacro, nil
	case [][]any:
		return ir.KindCollection, nil
	}

	// Escape hatch: externally supplied operator wrappers may carry their
	// kind out of band.
	if tagged, ok := op.(ir.Tagged); ok {
		return tagged.PredicateKind(), nil
	}

	switch op.(type) {
	case ops.Fn:
		return ir.KindFunction, nil
	case func(args ...any) (any, error):
		return ir.KindFunction, nil
	}

	return "", NewInvalidPredicateError(op)
}

// DefaultSelector picks the implicit selector direction for a clause of
// the given kind: generator-like clauses default to outputs, option
// clauses to their own key (so the parser keeps the raw run), and
// everything else to inputs.
func DefaultSelector(kind ir.Kind, op any) vars.Selector {
	switch kind {
	case ir.KindOption:
		if key, ok := op.(ir.OptionKey); ok {
			return vars.Selector(key)
		}
		return vars.SelOut
	case ir.KindTap, ir.KindGenerator, ir.KindGeneratorFilter, ir.KindCollection:
		return vars.SelOut
	default:
		return vars.SelIn
	}
}
