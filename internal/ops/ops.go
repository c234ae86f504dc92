// Package ops defines the operator capability surface the predicate
// compiler dispatches over: per-tuple functions, filters, grouped
// aggregators and buffers, parallel (partial) aggregation, and tuple
// sources. Operators are plain values; the compiler classifies them by the
// capability interfaces they satisfy.
package ops

// Options carries clause-level options (trap, sort, hook parameters)
// through to operators that accept per-call-site configuration.
type Options map[string]any

// Without returns a copy of the options with the given keys removed.
func (o Options) Without(keys ...string) Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Mapper emits exactly one output row per input row.
type Mapper interface {
	Apply(args []any) ([]any, error)
}

// FlatMapper emits zero or more output rows per input row (mapcat).
type FlatMapper interface {
	FlatApply(args []any) ([][]any, error)
}

// Filter keeps or drops one input row.
type Filter interface {
	Keep(args []any) (bool, error)
}

// Aggregate consumes all rows of a group and emits output rows. Its result
// must not depend on row order.
type Aggregate interface {
	Aggregate(rows [][]any) ([][]any, error)
}

// Buffer consumes all rows of a group with whole-group semantics; unlike
// Aggregate, it may be order-sensitive.
type Buffer interface {
	Buffer(rows [][]any) ([][]any, error)
}

// BufferIterator is the iterator-styled spelling of Buffer. The dispatcher
// normalizes it to the plain buffer kind.
type BufferIterator interface {
	BufferIter(next func() ([]any, bool)) ([][]any, error)
}

// MapFn adapts a plain function into a Mapper.
type MapFn func(args []any) ([]any, error)

func (f MapFn) Apply(args []any) ([]any, error) { return f(args) }

// FlatMapFn adapts a plain function into a FlatMapper.
type FlatMapFn func(args []any) ([][]any, error)

func (f FlatMapFn) FlatApply(args []any) ([][]any, error) { return f(args) }

// FilterFn adapts a plain function into a Filter.
type FilterFn func(args []any) (bool, error)

func (f FilterFn) Keep(args []any) (bool, error) { return f(args) }

// Fn is a generic invocable operator: the dispatcher's last resort. With
// declared outputs it behaves as a mapper emitting the result values; with
// none it behaves as a filter on a boolean result.
type Fn func(args ...any) (any, error)

// Equality is the constant-equality helper operator: it compiles into a
// filter that passes a tuple iff all its input fields are equal. Because it
// only compares values, the compiled predicate is safe to push directly
// against an ungrounded generator filter.
type Equality struct{}
