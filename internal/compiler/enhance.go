package compiler

import (
	"github.com/rillquery/rill/internal/flow"
	"github.com/rillquery/rill/internal/ir"
	"github.com/rillquery/rill/internal/vars"
)

// enhance merges the normalization stages around the variant-specific core
// and finalizes the predicate. The merge is structural: every branch
// produces a new record, never mutating the builder's result in place.
//
//   - operation: insertion/duplicate-copy stage → original assembly →
//     null-check stage
//   - aggregator: input stage prepended to the pregroup assembly;
//     null-check and a terminal schema-normalization stage appended to the
//     post assembly
//   - generator: an input stage must be absent (its presence is an
//     upstream planner bug); the null-check is appended to the pipeline
//
// Outfields after enhancement include every variable generated to replace
// constants or duplicates, so the full substitution is observable.
func (c *Compiler) enhance(p ir.Predicate, n *normalized) (ir.Predicate, error) {
	input := n.inputStage()
	finalOut := n.finalOut()
	check := nullCheck(finalOut)

	switch v := p.(type) {
	case *ir.Operation:
		out := *v
		out.Assembly = flow.Compose(input, v.Assembly, check)
		out.Infields = n.in
		out.Outfields = finalOut
		return c.stamp(&out)

	case *ir.Aggregator:
		out := *v
		out.Pregroup = flow.Compose(input, v.Pregroup)
		out.Post = flow.Compose(v.Post, check, flow.Project(finalOut))
		out.Infields = n.in
		out.Outfields = finalOut
		return c.stamp(&out)

	case *ir.Generator:
		gen, err := enhanceGenerator(*v, input, check, finalOut)
		if err != nil {
			return nil, err
		}
		return c.stamp(gen)

	case *ir.GeneratorFilter:
		gen, err := enhanceGenerator(v.Generator, input, check, finalOut)
		if err != nil {
			return nil, err
		}
		out := &ir.GeneratorFilter{Generator: *gen, Outvar: v.Outvar}
		out.Kind = ir.KindGeneratorFilter
		return c.stamp(out)

	case *ir.Option, *ir.MacroRef:
		// No stream stages to merge.
		return c.stamp(p)
	}
	return nil, NewPlannerInvariantError("unknown predicate variant in enhancer")
}

func enhanceGenerator(g ir.Generator, input, check flow.Assembly, finalOut []string) (*ir.Generator, error) {
	if input != nil {
		return nil, NewPlannerInvariantError("generator predicate received an input-side stage")
	}
	out := g
	out.Pipeline = flow.Compose(g.Pipeline, check)
	out.Outfields = finalOut
	out.Ground = vars.Ground(finalOut)
	return &out, nil
}

// stamp computes the content-addressed predicate ID from the finalized
// summary.
func (c *Compiler) stamp(p ir.Predicate) (ir.Predicate, error) {
	id, err := ir.PredicateID(ir.Summarize(p))
	if err != nil {
		return nil, err
	}
	p.Env().ID = id
	return p, nil
}
