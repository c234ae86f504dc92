package compiler

import (
	"github.com/rillquery/rill/internal/ir"
	"github.com/rillquery/rill/internal/ops"
	"github.com/rillquery/rill/internal/vars"
)

// Compile turns one normalized clause into a compiled predicate:
// Normalizer → Dispatcher → variant Builder → Enhancer. rawIn may mix
// variable names with literal constants; rawOut holds variable names and
// ignored markers. The returned predicate is immutable and self-contained.
func (c *Compiler) Compile(options map[string]any, op any, rawIn, rawOut []any) (ir.Predicate, error) {
	kind, err := Dispatch(op)
	if err != nil {
		return nil, err
	}
	if kind == ir.KindOption {
		key, ok := op.(ir.OptionKey)
		if !ok {
			return nil, NewInvalidPredicateError(op)
		}
		return c.buildOption(key, rawIn)
	}

	n, err := c.normalize(rawIn, rawOut)
	if err != nil {
		return nil, err
	}
	pred, err := c.build(kind, op, n.in, n.out, ops.Options(options))
	if err != nil {
		return nil, err
	}
	return c.enhance(pred, n)
}

// CompileClause compiles a clause whose variables arrive as one flat token
// list with optional selector markers. The dispatcher picks the default
// selector direction for the operator's kind before parsing.
func (c *Compiler) CompileClause(options map[string]any, op any, tokens []any) (ir.Predicate, error) {
	kind, err := Dispatch(op)
	if err != nil {
		return nil, err
	}
	def := DefaultSelector(kind, op)
	spec, err := vars.ParseSpec(tokens, def, c.gen)
	if err != nil {
		return nil, err
	}
	if kind == ir.KindOption {
		key, ok := op.(ir.OptionKey)
		if !ok {
			return nil, NewInvalidPredicateError(op)
		}
		return c.buildOption(key, spec.Raw(def))
	}
	return c.Compile(options, op, spec.In(), spec.Out())
}

// buildOption compiles a side-channel clause modifier. Options carry their
// raw value and are never compiled into stream stages.
func (c *Compiler) buildOption(key ir.OptionKey, tokens []any) (ir.Predicate, error) {
	var value any
	switch len(tokens) {
	case 0:
		value = true
	case 1:
		value = tokens[0]
	default:
		value = tokens
	}
	return c.stamp(&ir.Option{
		Envelope: ir.Envelope{Kind: ir.KindOption},
		Key:      string(key),
		Value:    value,
	})
}
