package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rillquery/rill/internal/flow"
)

// TableSource reads a SQLite table as a tuple stream. It satisfies both
// ops.Source (generator declarations) and ops.Tap (trap sinks).
//
// Reads always carry an ORDER BY over every selected column so the
// produced stream is deterministic regardless of storage order; compiled
// pipelines are compared in golden tests and must not depend on SQLite's
// scan order.
type TableSource struct {
	db      *sql.DB
	table   string
	columns []string
}

// Name identifies the tap; trap maps key on it.
func (s *TableSource) Name() string { return s.table }

// Fields returns the native output schema, which source predicates rename
// onto the clause's output variables.
func (s *TableSource) Fields() []string { return s.columns }

// Open reads the whole table into a tuple stream.
func (s *TableSource) Open() (flow.Stream, error) {
	cols := strings.Join(s.columns, ", ")
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", cols, s.table, cols)

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", s.table, err)
	}
	defer rows.Close()

	var out flow.Stream
	for rows.Next() {
		vals := make([]any, len(s.columns))
		ptrs := make([]any, len(s.columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan table %s: %w", s.table, err)
		}
		t := make(flow.Tuple, len(s.columns))
		for i, c := range s.columns {
			t[c] = vals[i]
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read table %s: %w", s.table, err)
	}
	return out, nil
}
