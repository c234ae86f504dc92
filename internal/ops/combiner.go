package ops

// CombinerSpec is the (init, combine, extract) triple behind parallel
// (partial, map-side) aggregation.
//
// Required law: combine must be associative and order-insensitive across
// partial accumulators, because the execution engine is free to run init
// and combine concurrently over arbitrary partitions before a single
// extract. For any sequence of rows split into partitions in any order,
// combining the partials and extracting must equal extracting the combined
// init of the whole sequence.
type CombinerSpec struct {
	// Init maps one raw input row to an intermediate accumulator.
	Init func(args []any) (any, error)
	// Combine reduces two accumulators into one.
	Combine func(a, b any) (any, error)
	// Extract maps the final accumulator to the output row. Nil means
	// identity: the accumulator is emitted as the row.
	Extract func(acc any) ([]any, error)
}

// ExtractRow applies Extract, treating nil as the identity extraction.
func (c CombinerSpec) ExtractRow(acc any) ([]any, error) {
	if c.Extract != nil {
		return c.Extract(acc)
	}
	if row, ok := acc.([]any); ok {
		return row, nil
	}
	return []any{acc}, nil
}

// Reduce folds the combiner over a group's rows: init every row, combine
// the accumulators left to right, extract the result. Returns no rows for
// an empty group.
func (c CombinerSpec) Reduce(rows [][]any) ([][]any, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	acc, err := c.Init(rows[0])
	if err != nil {
		return nil, err
	}
	for _, row := range rows[1:] {
		next, err := c.Init(row)
		if err != nil {
			return nil, err
		}
		acc, err = c.Combine(acc, next)
		if err != nil {
			return nil, err
		}
	}
	out, err := c.ExtractRow(acc)
	if err != nil {
		return nil, err
	}
	return [][]any{out}, nil
}

// ParallelAggregator is a natively associative aggregator: it exposes a
// CombinerSpec instead of whole-group logic, so the engine can pre-reduce
// partitions before grouping.
type ParallelAggregator interface {
	Combiner() CombinerSpec
}

// AggregatorPair builds a ParallelAggregator from a bare (init, combine)
// pair; extraction is the identity.
type AggregatorPair struct {
	Init    func(args []any) (any, error)
	Combine func(a, b any) (any, error)
}

func (p AggregatorPair) Combiner() CombinerSpec {
	return CombinerSpec{Init: p.Init, Combine: p.Combine}
}

// ParallelBuffer is a windowed buffer with a partial-aggregation phase. The
// hook constructors are invoked with the clause's options (minus any trap
// key) so hooks can be parameterized per call site.
//
// The compiler allocates NumIntermediateVars(infields, outfields) generated
// variables; the pregroup combiner stage reduces each input partition into
// one intermediate row, and the post-group buffer stage consumes a whole
// group of intermediate rows to produce the output rows.
type ParallelBuffer struct {
	Init    func(opts Options) func(args []any) (any, error)
	Combine func(opts Options) func(a, b any) (any, error)
	Extract func(opts Options) func(acc any) ([]any, error)
	Buffer  func(opts Options) func(rows [][]any) ([][]any, error)

	NumIntermediateVars func(infields, outfields []string) int
}

// Combiner assembles the hook functions into a CombinerSpec for the
// pregroup phase.
func (p ParallelBuffer) Combiner(opts Options) CombinerSpec {
	spec := CombinerSpec{
		Init:    p.Init(opts),
		Combine: p.Combine(opts),
	}
	if p.Extract != nil {
		spec.Extract = p.Extract(opts)
	}
	return spec
}
