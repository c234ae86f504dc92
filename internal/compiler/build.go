package compiler

import (
	"fmt"
	"reflect"

	"github.com/rillquery/rill/internal/flow"
	"github.com/rillquery/rill/internal/ir"
	"github.com/rillquery/rill/internal/ops"
	"github.com/rillquery/rill/internal/vars"
)

// build produces the kind-specific predicate for an already-normalized
// clause. Foreign objects arriving through the out-of-band capability tag
// route through the same builders; they must still satisfy the capability
// interface their declared kind is built from.
func (c *Compiler) build(kind ir.Kind, op any, in, out []string, options ops.Options) (ir.Predicate, error) {
	switch kind {
	case ir.KindTap:
		src, ok := op.(ops.Source)
		if !ok {
			return nil, NewInvalidPredicateError(op)
		}
		return c.buildTap(src, in, out, options)
	case ir.KindGenerator:
		return c.buildGenerator(op, in, out, options)
	case ir.KindGeneratorFilter:
		w, ok := op.(ops.JoinRestriction)
		if !ok {
			return nil, NewInvalidPredicateError(op)
		}
		return c.buildGeneratorFilter(w, in, out, options)
	case ir.KindCollection:
		return c.buildCollection(op, in, out, options)
	case ir.KindMacro:
		m, ok := op.(*ir.MacroRef)
		if !ok {
			return nil, NewInvalidPredicateError(op)
		}
		return buildMacro(m, in, out)
	case ir.KindParallelAggregator:
		pa, ok := op.(ops.ParallelAggregator)
		if !ok {
			return nil, NewInvalidPredicateError(op)
		}
		return buildParallelAggregator(pa, in, out)
	case ir.KindParallelBuffer:
		pb, ok := op.(ops.ParallelBuffer)
		if !ok {
			return nil, NewInvalidPredicateError(op)
		}
		return c.buildParallelBuffer(pb, in, out, options)
	case ir.KindAggregate:
		agg, ok := op.(ops.Aggregate)
		if !ok {
			return nil, NewInvalidPredicateError(op)
		}
		return buildGrouped(agg.Aggregate, false, in, out)
	case ir.KindBuffer:
		return buildBuffer(op, in, out)
	case ir.KindMap:
		m, ok := op.(ops.Mapper)
		if !ok {
			return nil, NewInvalidPredicateError(op)
		}
		return buildOperation(ir.KindMap, flow.Each(in, mapperRows(m), out), false, in, out), nil
	case ir.KindMapcat:
		fm, ok := op.(ops.FlatMapper)
		if !ok {
			return nil, NewInvalidPredicateError(op)
		}
		return buildOperation(ir.KindMapcat, flow.Each(in, fm.FlatApply, out), false, in, out), nil
	case ir.KindFilter:
		f, ok := op.(ops.Filter)
		if !ok {
			return nil, NewInvalidPredicateError(op)
		}
		return buildFilter(f, in, out)
	case ir.KindEquality:
		return buildEquality(in, out)
	case ir.KindFunction:
		return buildFunction(op, in, out)
	default:
		return nil, NewInvalidPredicateError(op)
	}
}

// buildTap compiles a source declaration: a one-stage pipeline renaming
// the source's native schema onto the clause's output variables. Sources
// take no inputs.
func (c *Compiler) buildTap(src ops.Source, in, out []string, options ops.Options) (*ir.Generator, error) {
	if len(in) > 0 {
		return nil, NewArityError("cannot use inputs on a source declaration", src)
	}
	gen := &ir.Generator{
		Envelope: ir.Envelope{Kind: ir.KindGenerator, Outfields: out},
		Ground:   vars.Ground(out),
		Sources:  map[string]ops.Source{src.Name(): src},
		Pipeline: flow.Rename(src.Fields(), out),
		Traps:    map[string]ops.Tap{},
	}
	if err := addTrap(gen.Traps, options); err != nil {
		return nil, err
	}
	return gen, nil
}

// buildGenerator re-pipelines an already-compiled generator's output onto
// new output variables, merging trap maps. Freshly supplied traps override
// inherited ones on key collision.
func (c *Compiler) buildGenerator(op any, in, out []string, options ops.Options) (ir.Predicate, error) {
	if len(in) > 0 {
		return nil, NewArityError("cannot use inputs on a source declaration", op)
	}

	var inner *ir.Generator
	var outvar string
	switch g := op.(type) {
	case *ir.Generator:
		inner = g
	case *ir.GeneratorFilter:
		inner = &g.Generator
		outvar = g.Outvar
	default:
		return nil, NewInvalidPredicateError(op)
	}

	sources := make(map[string]ops.Source, len(inner.Sources))
	for k, v := range inner.Sources {
		sources[k] = v
	}
	traps := make(map[string]ops.Tap, len(inner.Traps))
	for k, v := range inner.Traps {
		traps[k] = v
	}
	if err := addTrap(traps, options); err != nil {
		return nil, err
	}

	gen := ir.Generator{
		Envelope:   ir.Envelope{Kind: ir.KindGenerator, Outfields: out},
		JoinSetVar: inner.JoinSetVar,
		Ground:     vars.Ground(out),
		Sources:    sources,
		Pipeline:   flow.Compose(inner.Pipeline, flow.Rename(inner.Outfields, out)),
		Traps:      traps,
	}
	if outvar != "" {
		gen.Kind = ir.KindGeneratorFilter
		return &ir.GeneratorFilter{Generator: gen, Outvar: outvar}, nil
	}
	return &gen, nil
}

// buildGeneratorFilter recursively compiles the wrapped generator, then
// attaches the wrapper's designated join variable.
func (c *Compiler) buildGeneratorFilter(w ops.JoinRestriction, in, out []string, options ops.Options) (ir.Predicate, error) {
	outTokens := make([]any, len(out))
	for i, f := range out {
		outTokens[i] = f
	}
	inTokens := make([]any, len(in))
	for i, f := range in {
		inTokens[i] = f
	}
	inner, err := c.Compile(options, w.Source, inTokens, outTokens)
	if err != nil {
		return nil, err
	}
	gen, ok := inner.(*ir.Generator)
	if !ok {
		return nil, NewInvalidPredicateError(w.Source)
	}
	gf := &ir.GeneratorFilter{Generator: *gen, Outvar: w.JoinVar}
	gf.Kind = ir.KindGeneratorFilter
	gf.JoinSetVar = w.JoinVar
	return gf, nil
}

// buildCollection wraps an in-memory row collection as an ephemeral source
// and recurses into the source path.
func (c *Compiler) buildCollection(op any, in, out []string, options ops.Options) (ir.Predicate, error) {
	rows, ok := op.([][]any)
	if !ok {
		return nil, NewInvalidPredicateError(op)
	}
	schema := make([]string, len(out))
	for i := range out {
		schema[i] = fmt.Sprintf("c%d", i)
	}
	src := ops.MemorySource{
		ID:     "mem-" + c.gen.Generate(),
		Schema: schema,
		Rows:   rows,
	}
	return c.buildTap(src, in, out, options)
}

func buildMacro(m *ir.MacroRef, in, out []string) (ir.Predicate, error) {
	return &ir.MacroRef{
		Envelope:  ir.Envelope{Kind: ir.KindMacro, Infields: in, Outfields: out},
		Name:      m.Name,
		Expansion: m.Expansion,
	}, nil
}

// buildParallelAggregator wraps a natively associative aggregator into the
// generic partial-aggregation adapter: one grouped-aggregation stage
// operating directly on infields → outfields, no separate pregroup stage.
func buildParallelAggregator(pa ops.ParallelAggregator, in, out []string) (*ir.Aggregator, error) {
	spec := pa.Combiner()
	return &ir.Aggregator{
		Envelope: ir.Envelope{Kind: ir.KindParallelAggregator, Infields: in, Outfields: out},
		Parallel: &spec,
		Serial:   flow.GroupApply(in, spec.Reduce, out),
	}, nil
}

// buildParallelBuffer builds the two-stage windowed-buffer form: a
// pregroup combiner stage reducing each input partition into freshly
// generated intermediate variables, and a post-group buffer stage
// consuming a whole group of intermediate rows. Hook functions receive the
// clause options minus any trap key.
func (c *Compiler) buildParallelBuffer(pb ops.ParallelBuffer, in, out []string, options ops.Options) (*ir.Aggregator, error) {
	hookOpts := options.Without(ir.OptTrap)
	ivars := vars.NewNames(c.gen, pb.NumIntermediateVars(in, out))
	combiner := pb.Combiner(hookOpts)

	pregroup := flow.Compose(
		flow.SortBy(ir.SortFields(options)),
		flow.GroupApply(in, combiner.Reduce, ivars),
	)
	post := flow.GroupApply(ivars, pb.Buffer(hookOpts), out)

	return &ir.Aggregator{
		Envelope: ir.Envelope{Kind: ir.KindParallelBuffer, Infields: in, Outfields: out},
		IsBuffer: true,
		Pregroup: pregroup,
		Post:     post,
	}, nil
}

// buildGrouped builds the plain aggregate/buffer shape: a trivial pregroup
// stage with the operator logic placed in the post-group assembly.
func buildGrouped(fn func(rows [][]any) ([][]any, error), isBuffer bool, in, out []string) (*ir.Aggregator, error) {
	kind := ir.KindAggregate
	if isBuffer {
		kind = ir.KindBuffer
	}
	return &ir.Aggregator{
		Envelope: ir.Envelope{Kind: kind, Infields: in, Outfields: out},
		IsBuffer: isBuffer,
		Pregroup: flow.Identity,
		Post:     flow.GroupApply(in, fn, out),
	}, nil
}

func buildBuffer(op any, in, out []string) (*ir.Aggregator, error) {
	switch b := op.(type) {
	case ops.Buffer:
		return buildGrouped(b.Buffer, true, in, out)
	case ops.BufferIterator:
		return buildGrouped(iteratorRows(b), true, in, out)
	default:
		return nil, NewInvalidPredicateError(op)
	}
}

// buildFilter compiles via the filter execution convention: zero output
// fields means pure drop/keep, one output field emits the boolean verdict.
// Anything wider is an arity error.
func buildFilter(f ops.Filter, in, out []string) (*ir.Operation, error) {
	if len(out) > 1 {
		return nil, NewArityError(
			fmt.Sprintf("filter must emit 0 or 1 field, got %d", len(out)), f)
	}
	if len(out) == 0 {
		return buildOperation(ir.KindFilter, flow.KeepWhen(in, f.Keep), false, in, out), nil
	}
	emit := flow.Each(in, func(args []any) ([][]any, error) {
		keep, err := f.Keep(args)
		if err != nil {
			return nil, err
		}
		return [][]any{{keep}}, nil
	}, out)
	return buildOperation(ir.KindFilter, emit, false, in, out), nil
}

// buildEquality compiles an equality test over the given fields and marks
// it safe to push against an ungrounded generator filter: it only compares
// values, never reads ungrounded state.
func buildEquality(in, out []string) (*ir.Operation, error) {
	eq := ops.FilterFn(func(args []any) (bool, error) {
		for _, v := range args[1:] {
			if !reflect.DeepEqual(args[0], v) {
				return false, nil
			}
		}
		return true, nil
	})
	pred, err := buildFilter(eq, in, out)
	if err != nil {
		return nil, err
	}
	pred.AllowOnGenFilter = true
	return pred, nil
}

// buildFunction compiles a generic invocable: with declared outputs it is
// an operation emitting exactly those fields, otherwise a pure filter over
// a boolean result.
func buildFunction(op any, in, out []string) (*ir.Operation, error) {
	var fn ops.Fn
	switch f := op.(type) {
	case ops.Fn:
		fn = f
	case func(args ...any) (any, error):
		fn = f
	default:
		return nil, NewInvalidPredicateError(op)
	}

	if len(out) > 0 {
		emit := flow.Each(in, func(args []any) ([][]any, error) {
			res, err := fn(args...)
			if err != nil {
				return nil, err
			}
			if row, ok := res.([]any); ok {
				return [][]any{row}, nil
			}
			return [][]any{{res}}, nil
		}, out)
		return buildOperation(ir.KindFunction, emit, false, in, out), nil
	}

	keep := flow.KeepWhen(in, func(args []any) (bool, error) {
		res, err := fn(args...)
		if err != nil {
			return false, err
		}
		verdict, ok := res.(bool)
		if !ok {
			return false, fmt.Errorf("filter function returned %T, want bool", res)
		}
		return verdict, nil
	})
	return buildOperation(ir.KindFunction, keep, false, in, out), nil
}

func buildOperation(kind ir.Kind, assembly flow.Assembly, allowOnGenFilter bool, in, out []string) *ir.Operation {
	return &ir.Operation{
		Envelope:         ir.Envelope{Kind: kind, Infields: in, Outfields: out},
		Assembly:         assembly,
		AllowOnGenFilter: allowOnGenFilter,
	}
}

// mapperRows lifts a one-row Mapper into the RowFn shape.
func mapperRows(m ops.Mapper) flow.RowFn {
	return func(args []any) ([][]any, error) {
		row, err := m.Apply(args)
		if err != nil {
			return nil, err
		}
		return [][]any{row}, nil
	}
}

// iteratorRows adapts the iterator-styled buffer to whole-group rows.
func iteratorRows(b ops.BufferIterator) func(rows [][]any) ([][]any, error) {
	return func(rows [][]any) ([][]any, error) {
		i := 0
		next := func() ([]any, bool) {
			if i >= len(rows) {
				return nil, false
			}
			row := rows[i]
			i++
			return row, true
		}
		return b.BufferIter(next)
	}
}

// addTrap unwraps a trap option down to its terminal tap and records it
// keyed by tap name.
func addTrap(traps map[string]ops.Tap, options ops.Options) error {
	v, ok := options[ir.OptTrap]
	if !ok {
		return nil
	}
	tap, err := ops.UnwrapTrap(v)
	if err != nil {
		return err
	}
	traps[tap.Name()] = tap
	return nil
}
