package vars

import "fmt"

// Selector markers partition a flat clause token list into input and
// output runs. Simple clauses may omit the leading marker; see ParseSpec.
type Selector string

const (
	// SelIn marks a singular explicit-input run.
	SelIn Selector = ":<"
	// SelOut marks a singular explicit-output run.
	SelOut Selector = ":>"
	// SelInVec marks a vector-valued input group.
	SelInVec Selector = ":<<"
	// SelOutVec marks a vector-valued output group.
	SelOutVec Selector = ":>>"
	// SelPosOut marks a positional-output group: (count, {index: value}).
	SelPosOut Selector = ":#>"
)

// selectorOf reports whether tok is a selector marker, accepting both the
// Selector type and its string spelling (tokens loaded from query files
// arrive as plain strings).
func selectorOf(tok any) (Selector, bool) {
	switch v := tok.(type) {
	case Selector:
		return v, true
	case string:
		switch Selector(v) {
		case SelIn, SelOut, SelInVec, SelOutVec, SelPosOut:
			return Selector(v), true
		}
	}
	return "", false
}

// Spec is the structured result of parsing a clause token list: the
// vector-form input and output runs, plus any raw run kept under a
// non-directional default selector (used when parsing option clauses).
type Spec struct {
	fields map[Selector][]any
}

// In returns the input variable tokens.
func (s Spec) In() []any { return s.fields[SelInVec] }

// Out returns the output variable tokens.
func (s Spec) Out() []any { return s.fields[SelOutVec] }

// Raw returns the run recorded under sel, for callers that parsed with a
// non-directional default selector.
func (s Spec) Raw(sel Selector) []any { return s.fields[sel] }

// ParseSpec partitions a flat token list into structured input/output runs.
//
// Rules:
//   - If the first token is not a selector marker, one is inserted
//     implicitly: SelIn when any marker appears later in the list,
//     otherwise the caller-supplied default. This lets simple clauses
//     omit the marker when unambiguous.
//   - Tokens are partitioned into runs by marker. Singular markers
//     (SelIn/SelOut) have their run promoted into the corresponding
//     vector key, unless that vector key is already present, in which
//     case the singular run is silently ignored (vector form wins).
//   - SelPosOut expands (n, {index: value}) into a dense SelOutVec run of
//     length n; indexes missing from the mapping are filled with freshly
//     generated nullable variables.
//   - The result is restricted to the vector keys. When def is itself
//     neither SelIn nor SelOut (an option clause), the raw default run is
//     kept under def as well.
//
// Marker placement is assumed well formed; this layer does not validate
// exhaustively. Malformed SelPosOut runs are the one hard error.
func ParseSpec(tokens []any, def Selector, g Generator) (Spec, error) {
	runs := splitRuns(tokens, def)

	out := Spec{fields: make(map[Selector][]any)}
	if def != SelIn && def != SelOut {
		if run, ok := runs[def]; ok {
			out.fields[def] = run
		}
	}

	for _, sel := range []Selector{SelInVec, SelOutVec} {
		if run, ok := runs[sel]; ok {
			out.fields[sel] = run
		}
	}
	// Singular runs promote only where no vector run exists.
	if run, ok := runs[SelIn]; ok {
		if _, vec := out.fields[SelInVec]; !vec {
			out.fields[SelInVec] = run
		}
	}
	if run, ok := runs[SelOut]; ok {
		if _, vec := out.fields[SelOutVec]; !vec {
			out.fields[SelOutVec] = run
		}
	}

	if run, ok := runs[SelPosOut]; ok {
		if _, vec := out.fields[SelOutVec]; !vec {
			dense, err := expandPositional(run, g)
			if err != nil {
				return Spec{}, err
			}
			out.fields[SelOutVec] = dense
		}
	}
	return out, nil
}

// splitRuns partitions tokens into per-selector runs. Repeated markers of
// the same selector append to one run.
func splitRuns(tokens []any, def Selector) map[Selector][]any {
	runs := make(map[Selector][]any)
	if len(tokens) == 0 {
		return runs
	}

	cur := def
	if sel, ok := selectorOf(tokens[0]); ok {
		cur = sel
		tokens = tokens[1:]
	} else if anySelector(tokens) {
		cur = SelIn
	}

	for _, tok := range tokens {
		if sel, ok := selectorOf(tok); ok {
			cur = sel
			if _, exists := runs[cur]; !exists {
				runs[cur] = []any{}
			}
			continue
		}
		runs[cur] = append(runs[cur], tok)
	}
	if _, exists := runs[cur]; !exists {
		runs[cur] = []any{}
	}
	return runs
}

func anySelector(tokens []any) bool {
	for _, tok := range tokens {
		if _, ok := selectorOf(tok); ok {
			return true
		}
	}
	return false
}

// expandPositional turns a (count, {index: value}) run into a dense output
// vector, filling unmapped indexes with generated nullable variables.
func expandPositional(run []any, g Generator) ([]any, error) {
	if len(run) != 2 {
		return nil, fmt.Errorf("positional output selector wants (count, mapping), got %d tokens", len(run))
	}
	n, ok := asInt(run[0])
	if !ok {
		return nil, fmt.Errorf("positional output count must be an integer, got %T", run[0])
	}
	mapping, ok := asIndexMap(run[1])
	if !ok {
		return nil, fmt.Errorf("positional output mapping must map indexes to values, got %T", run[1])
	}
	dense := make([]any, n)
	for i := 0; i < n; i++ {
		if v, ok := mapping[i]; ok {
			dense[i] = v
		} else {
			dense[i] = NewName(g)
		}
	}
	return dense, nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	}
	return 0, false
}

func asIndexMap(v any) (map[int]any, bool) {
	switch m := v.(type) {
	case map[int]any:
		return m, true
	case map[int]string:
		out := make(map[int]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, true
	}
	return nil, false
}
