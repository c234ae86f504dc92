// Package testutil provides fixtures shared by compiler and flow tests.
package testutil

import (
	"strconv"

	"github.com/rillquery/rill/internal/flow"
)

// Rows builds a tuple stream from a field list and positional rows.
//
// Example:
//
//	s := testutil.Rows([]string{"?x", "?y"}, []any{1, "a"}, []any{2, "b"})
func Rows(fields []string, rows ...[]any) flow.Stream {
	out := make(flow.Stream, len(rows))
	for i, row := range rows {
		t := make(flow.Tuple, len(fields))
		for j, f := range fields {
			if j < len(row) {
				t[f] = row[j]
			}
		}
		out[i] = t
	}
	return out
}

// Column extracts one field's values from a stream, in stream order.
func Column(s flow.Stream, field string) []any {
	out := make([]any, len(s))
	for i, t := range s {
		out[i] = t[field]
	}
	return out
}

// SeqGenerator generates "g1", "g2", ... suffixes without a fixed bound.
//
// Unlike vars.FixedGenerator it never exhausts, which suits tests that
// compile many clauses without caring about the exact generated names.
// Not safe for concurrent use; tests are single-goroutine.
type SeqGenerator struct {
	n int
}

// Generate returns the next sequential suffix.
func (g *SeqGenerator) Generate() string {
	g.n++
	return "g" + strconv.Itoa(g.n)
}
