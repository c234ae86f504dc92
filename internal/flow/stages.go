package flow

// RowFn is the execution form of a per-tuple operator: it receives the
// values of a tuple's input fields and emits zero or more output rows.
type RowFn func(args []any) ([][]any, error)

// PredFn is the execution form of a filter: keep or drop one tuple.
type PredFn func(args []any) (bool, error)

// Insert prepends constant values into the stream under fixed names.
// The normalizer uses this to feed lifted literal constants to downstream
// stages, which then read named variables only.
func Insert(values map[string]any) Assembly {
	return func(s Stream) (Stream, error) {
		out := make(Stream, len(s))
		for i, t := range s {
			n := t.Clone()
			for k, v := range values {
				n[k] = v
			}
			out[i] = n
		}
		return out, nil
	}
}

// Copy duplicates the value of field src into field dst on every tuple.
// Works around execution engines that forbid feeding the same field twice
// into one operator.
func Copy(src, dst string) Assembly {
	return func(s Stream) (Stream, error) {
		out := make(Stream, len(s))
		for i, t := range s {
			n := t.Clone()
			n[dst] = t[src]
			out[i] = n
		}
		return out, nil
	}
}

// Rename maps each tuple to a new tuple containing exactly the to fields,
// valued from the corresponding from fields. Used to re-pipeline a source's
// native schema onto the clause's output variables.
func Rename(from, to []string) Assembly {
	return func(s Stream) (Stream, error) {
		out := make(Stream, len(s))
		for i, t := range s {
			n := make(Tuple, len(to))
			for j, f := range from {
				n[to[j]] = t[f]
			}
			out[i] = n
		}
		return out, nil
	}
}

// Project keeps exactly the given fields on every tuple, dropping the rest.
// The enhancer appends this as the terminal schema-normalization stage of
// aggregator predicates.
func Project(fields []string) Assembly {
	return func(s Stream) (Stream, error) {
		out := make(Stream, len(s))
		for i, t := range s {
			n := make(Tuple, len(fields))
			for _, f := range fields {
				n[f] = t[f]
			}
			out[i] = n
		}
		return out, nil
	}
}

// Each applies fn to every tuple's infields and emits one tuple per output
// row, carrying the source tuple's fields plus the outfields. A fn emitting
// zero rows drops the tuple; emitting several fans it out (mapcat).
func Each(infields []string, fn RowFn, outfields []string) Assembly {
	return func(s Stream) (Stream, error) {
		var out Stream
		for _, t := range s {
			rows, err := fn(t.Values(infields))
			if err != nil {
				return nil, err
			}
			for _, row := range rows {
				n := t.Clone()
				for j, f := range outfields {
					if j < len(row) {
						n[f] = row[j]
					}
				}
				out = append(out, n)
			}
		}
		return out, nil
	}
}

// KeepWhen passes a tuple through iff pred accepts its infields values.
func KeepWhen(infields []string, pred PredFn) Assembly {
	return func(s Stream) (Stream, error) {
		var out Stream
		for _, t := range s {
			keep, err := pred(t.Values(infields))
			if err != nil {
				return nil, err
			}
			if keep {
				out = append(out, t)
			}
		}
		return out, nil
	}
}

// DropNulls passes a tuple through only if none of the given fields are
// null. With no fields it degenerates to the identity.
func DropNulls(fields []string) Assembly {
	if len(fields) == 0 {
		return Identity
	}
	return KeepWhen(fields, func(args []any) (bool, error) {
		for _, v := range args {
			if v == nil {
				return false, nil
			}
		}
		return true, nil
	})
}

// GroupApply applies fn to the whole stream's rows over infields and
// replaces the stream with fn's output rows under outfields. Aggregator and
// buffer stages are built on this; the execution engine invokes them once
// per group.
func GroupApply(infields []string, fn func(rows [][]any) ([][]any, error), outfields []string) Assembly {
	return func(s Stream) (Stream, error) {
		rows := make([][]any, len(s))
		for i, t := range s {
			rows[i] = t.Values(infields)
		}
		outRows, err := fn(rows)
		if err != nil {
			return nil, err
		}
		out := make(Stream, len(outRows))
		for i, row := range outRows {
			n := make(Tuple, len(outfields))
			for j, f := range outfields {
				if j < len(row) {
					n[f] = row[j]
				}
			}
			out[i] = n
		}
		return out, nil
	}
}
