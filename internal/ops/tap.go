package ops

import (
	"fmt"

	"github.com/rillquery/rill/internal/flow"
)

// Tap is a named endpoint. Sources read tuples from a tap; trap options
// route failed tuples to one.
type Tap interface {
	Name() string
}

// Source is a tap that can produce a tuple stream with a known schema.
// Predicates built from a source are generators.
type Source interface {
	Tap
	Fields() []string
	Open() (flow.Stream, error)
}

// Sink is a link in a nested trap descriptor. Trap option values are
// unwrapped by following Sink links until a terminal Tap is reached.
type Sink interface {
	Sink() any
}

// UnwrapTrap follows Sink links from a trap option value down to its
// terminal tap.
func UnwrapTrap(v any) (Tap, error) {
	for {
		switch s := v.(type) {
		case Sink:
			v = s.Sink()
		case Tap:
			return s, nil
		default:
			return nil, fmt.Errorf("trap option does not resolve to a tap: %T", v)
		}
	}
}

// JoinRestriction wraps a generator-like operator with a designated join
// variable. The compiler recursively compiles Source and attaches JoinVar
// as the resulting generator filter's join-set marker.
type JoinRestriction struct {
	Source  any
	JoinVar string
}

// MemorySource wraps an in-memory row collection as an ephemeral source.
// Collection-literal operators compile through this.
type MemorySource struct {
	ID     string
	Schema []string
	Rows   [][]any
}

func (m MemorySource) Name() string     { return m.ID }
func (m MemorySource) Fields() []string { return m.Schema }

func (m MemorySource) Open() (flow.Stream, error) {
	out := make(flow.Stream, len(m.Rows))
	for i, row := range m.Rows {
		t := make(flow.Tuple, len(m.Schema))
		for j, f := range m.Schema {
			if j < len(row) {
				t[f] = row[j]
			}
		}
		out[i] = t
	}
	return out, nil
}
