package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rillquery/rill/internal/ir"
	"github.com/rillquery/rill/internal/ops"
	"github.com/rillquery/rill/internal/vars"
)

type reverseBuffer struct{}

func (reverseBuffer) Buffer(rows [][]any) ([][]any, error) {
	out := make([][]any, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = row
	}
	return out, nil
}

type headIterator struct{}

func (headIterator) BufferIter(next func() ([]any, bool)) ([][]any, error) {
	if row, ok := next(); ok {
		return [][]any{row}, nil
	}
	return nil, nil
}

type countAggregate struct{}

func (countAggregate) Aggregate(rows [][]any) ([][]any, error) {
	return [][]any{{int64(len(rows))}}, nil
}

// filterAndMapper satisfies both Filter and Mapper; the dispatcher must
// classify it by the higher-priority capability.
type filterAndMapper struct{}

func (filterAndMapper) Keep(args []any) (bool, error)   { return true, nil }
func (filterAndMapper) Apply(args []any) ([]any, error) { return args, nil }

type taggedOp struct{}

func (taggedOp) PredicateKind() ir.Kind { return ir.KindBuffer }
func (taggedOp) Buffer(rows [][]any) ([][]any, error) {
	return rows, nil
}

// Tagged values declaring a kind without satisfying its capability surface.
type taggedAsOption struct{}

func (taggedAsOption) PredicateKind() ir.Kind { return ir.KindOption }

type taggedAsGeneratorFilter struct{}

func (taggedAsGeneratorFilter) PredicateKind() ir.Kind { return ir.KindGeneratorFilter }

type taggedAsMacro struct{}

func (taggedAsMacro) PredicateKind() ir.Kind { return ir.KindMacro }

func windowBuffer() ops.ParallelBuffer {
	return ops.ParallelBuffer{
		Init: func(opts ops.Options) func(args []any) (any, error) {
			return func(args []any) (any, error) { return []any{args[0]}, nil }
		},
		Combine: func(opts ops.Options) func(a, b any) (any, error) {
			return func(a, b any) (any, error) { return append(a.([]any), b.([]any)...), nil }
		},
		Buffer: func(opts ops.Options) func(rows [][]any) ([][]any, error) {
			return func(rows [][]any) ([][]any, error) { return rows, nil }
		},
		NumIntermediateVars: func(in, out []string) int { return 1 },
	}
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		name string
		op   any
		want ir.Kind
	}{
		{"option key", ir.OptionKey("trap"), ir.KindOption},
		{"source", ops.MemorySource{ID: "m"}, ir.KindTap},
		{"equality", ops.Equality{}, ir.KindEquality},
		{"join restriction", ops.JoinRestriction{Source: ops.MemorySource{}, JoinVar: "?k"}, ir.KindGeneratorFilter},
		{"filter fn", ops.FilterFn(func([]any) (bool, error) { return true, nil }), ir.KindFilter},
		{"parallel aggregator", ops.Sum(), ir.KindParallelAggregator},
		{"parallel buffer", windowBuffer(), ir.KindParallelBuffer},
		{"buffer iterator normalizes to buffer", headIterator{}, ir.KindBuffer},
		{"buffer", reverseBuffer{}, ir.KindBuffer},
		{"aggregate", countAggregate{}, ir.KindAggregate},
		{"flat mapper", ops.FlatMapFn(func([]any) ([][]any, error) { return nil, nil }), ir.KindMapcat},
		{"mapper", ops.MapFn(func(a []any) ([]any, error) { return a, nil }), ir.KindMap},
		{"compiled generator", &ir.Generator{}, ir.KindGenerator},
		{"compiled generator filter", &ir.GeneratorFilter{}, ir.KindGenerator},
		{"macro ref", &ir.MacroRef{Name: "m"}, ir.KindMacro},
		{"collection literal", [][]any{{1}}, ir.KindCollection},
		{"tagged escape hatch", taggedOp{}, ir.KindBuffer},
		{"fn", ops.Fn(func(...any) (any, error) { return nil, nil }), ir.KindFunction},
		{"bare func", func(args ...any) (any, error) { return nil, nil }, ir.KindFunction},
		{"filter beats mapper", filterAndMapper{}, ir.KindFilter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Dispatch(tt.op)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompile_TaggedKindWithoutCapability(t *testing.T) {
	// The out-of-band kind tag is a declaration, not a license: a value
	// whose declared kind it cannot actually serve is rejected, never
	// compiled on faith.
	for _, op := range []any{taggedAsOption{}, taggedAsGeneratorFilter{}, taggedAsMacro{}} {
		_, err := seqCompiler().Compile(nil, op, []any{"?a"}, []any{"?b"})
		assert.True(t, IsInvalidPredicate(err), "operator %T", op)
	}

	_, err := seqCompiler().CompileClause(nil, taggedAsOption{}, []any{"?a"})
	assert.True(t, IsInvalidPredicate(err))
}

func TestDispatch_Unclassifiable(t *testing.T) {
	_, err := Dispatch(42)
	assert.True(t, IsInvalidPredicate(err))

	_, err = Dispatch(struct{}{})
	assert.True(t, IsInvalidPredicate(err))
}

func TestDefaultSelector(t *testing.T) {
	assert.Equal(t, vars.Selector("trap"), DefaultSelector(ir.KindOption, ir.OptionKey("trap")))
	assert.Equal(t, vars.SelOut, DefaultSelector(ir.KindTap, ops.MemorySource{}))
	assert.Equal(t, vars.SelOut, DefaultSelector(ir.KindGenerator, &ir.Generator{}))
	assert.Equal(t, vars.SelOut, DefaultSelector(ir.KindCollection, [][]any{}))
	assert.Equal(t, vars.SelIn, DefaultSelector(ir.KindMap, nil))
	assert.Equal(t, vars.SelIn, DefaultSelector(ir.KindFilter, nil))
	assert.Equal(t, vars.SelIn, DefaultSelector(ir.KindParallelAggregator, nil))
}
