package ops

import "fmt"

// Builtin operators resolvable by name from query files. The aggregators
// here all satisfy the combiner law: their Combine is associative and
// order-insensitive across partials.
var builtins = map[string]any{
	"sum":      Sum(),
	"count":    Count(),
	"avg":      Avg(),
	"min":      Min(),
	"max":      Max(),
	"equals":   Equality{},
	"identity": MapFn(func(args []any) ([]any, error) { return args, nil }),
	"positive": FilterFn(func(args []any) (bool, error) {
		n, err := asNumber(args[0])
		if err != nil {
			return false, err
		}
		return n > 0, nil
	}),
}

// Lookup resolves a builtin operator by name.
func Lookup(name string) (any, bool) {
	op, ok := builtins[name]
	return op, ok
}

// Sum aggregates the numeric sum of its single input field.
func Sum() ParallelAggregator {
	return AggregatorPair{
		Init:    func(args []any) (any, error) { return addIdentity(args[0]) },
		Combine: addNumbers,
	}
}

// Count aggregates the number of rows in a group.
func Count() ParallelAggregator {
	return AggregatorPair{
		Init:    func(args []any) (any, error) { return int64(1), nil },
		Combine: addNumbers,
	}
}

// Avg aggregates the numeric mean of its single input field. The
// accumulator carries (sum, count) so Combine stays associative.
func Avg() ParallelAggregator {
	return avg{}
}

type avg struct{}

type avgAcc struct {
	sum   float64
	count int64
}

func (avg) Combiner() CombinerSpec {
	return CombinerSpec{
		Init: func(args []any) (any, error) {
			n, err := asNumber(args[0])
			if err != nil {
				return nil, err
			}
			return avgAcc{sum: n, count: 1}, nil
		},
		Combine: func(a, b any) (any, error) {
			x, y := a.(avgAcc), b.(avgAcc)
			return avgAcc{sum: x.sum + y.sum, count: x.count + y.count}, nil
		},
		Extract: func(acc any) ([]any, error) {
			x := acc.(avgAcc)
			return []any{x.sum / float64(x.count)}, nil
		},
	}
}

// Min aggregates the smallest value of its single input field.
func Min() ParallelAggregator {
	return AggregatorPair{
		Init: takeFirst,
		Combine: func(a, b any) (any, error) {
			return pickNumeric(a, b, func(x, y float64) bool { return x <= y })
		},
	}
}

// Max aggregates the largest value of its single input field.
func Max() ParallelAggregator {
	return AggregatorPair{
		Init: takeFirst,
		Combine: func(a, b any) (any, error) {
			return pickNumeric(a, b, func(x, y float64) bool { return x >= y })
		},
	}
}

func takeFirst(args []any) (any, error) { return args[0], nil }

func pickNumeric(a, b any, keep func(x, y float64) bool) (any, error) {
	x, err := asNumber(a)
	if err != nil {
		return nil, err
	}
	y, err := asNumber(b)
	if err != nil {
		return nil, err
	}
	if keep(x, y) {
		return a, nil
	}
	return b, nil
}

// addIdentity validates that v is numeric and passes it through as the
// initial accumulator, preserving its concrete type.
func addIdentity(v any) (any, error) {
	if _, err := asNumber(v); err != nil {
		return nil, err
	}
	return v, nil
}

// addNumbers adds two numeric values, staying integral when both sides are.
func addNumbers(a, b any) (any, error) {
	ai, aok := asInt(a)
	bi, bok := asInt(b)
	if aok && bok {
		return ai + bi, nil
	}
	x, err := asNumber(a)
	if err != nil {
		return nil, err
	}
	y, err := asNumber(b)
	if err != nil {
		return nil, err
	}
	return x + y, nil
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func asNumber(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	}
	return 0, fmt.Errorf("not a number: %v (%T)", v, v)
}
