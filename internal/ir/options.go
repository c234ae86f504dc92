package ir

// OptionKey is a bare option keyword used as the operator of an option
// clause. The dispatcher classifies any OptionKey value as KindOption.
type OptionKey string

// Recognized clause-option keys. Arbitrary hook-specific keys are
// forwarded verbatim to parallel-buffer hook functions.
const (
	// OptTrap names a sink capturing tuples that fail processing. The
	// value is a nested sink descriptor, unwrapped by following sink links
	// until a terminal tap is found, and recorded keyed by tap name.
	OptTrap = "trap"

	// OptSort is an ordered field list applied in the pregroup stage of
	// buffer predicates for deterministic per-group ordering.
	OptSort = "sort"
)

// SortFields reads the sort option as a field list. Both []string and
// []any spellings are accepted since options may come from parsed files.
func SortFields(options map[string]any) []string {
	v, ok := options[OptSort]
	if !ok {
		return nil
	}
	switch fields := v.(type) {
	case []string:
		return fields
	case []any:
		out := make([]string, 0, len(fields))
		for _, f := range fields {
			if s, ok := f.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
