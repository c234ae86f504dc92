// Package flow defines the tuple-stream transformation model that compiled
// predicates are assembled from.
//
// An Assembly is an opaque transformation from tuple stream to tuple
// stream. Assemblies are pure data (closures over immutable configuration),
// compose associatively via Compose, and Identity is the neutral element.
// The distributed execution engine sequences assemblies produced here; this
// package never performs I/O.
package flow

// Tuple is one row of named field values. A nil value represents null.
type Tuple map[string]any

// Clone returns a shallow copy of the tuple.
func (t Tuple) Clone() Tuple {
	out := make(Tuple, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Values returns the tuple's values for the given fields, in order.
func (t Tuple) Values(fields []string) []any {
	vals := make([]any, len(fields))
	for i, f := range fields {
		vals[i] = t[f]
	}
	return vals
}

// Stream is an ordered sequence of tuples.
type Stream []Tuple

// Assembly transforms a tuple stream into a tuple stream.
type Assembly func(Stream) (Stream, error)

// Identity is the neutral assembly: it returns its input unchanged.
func Identity(s Stream) (Stream, error) { return s, nil }

// Compose sequences assemblies left to right: the stream flows through
// stages[0] first. Nil stages are skipped, so optional stages can be
// composed without guards.
func Compose(stages ...Assembly) Assembly {
	return func(s Stream) (Stream, error) {
		var err error
		for _, stage := range stages {
			if stage == nil {
				continue
			}
			s, err = stage(s)
			if err != nil {
				return nil, err
			}
		}
		return s, nil
	}
}
