package flow

import (
	"fmt"
	"sort"
)

// SortBy stably orders the stream by the given fields. Buffer pregroup
// stages use this to honor a clause's sort option so per-group ordering is
// deterministic regardless of how partitions arrive.
func SortBy(fields []string) Assembly {
	if len(fields) == 0 {
		return Identity
	}
	return func(s Stream) (Stream, error) {
		out := make(Stream, len(s))
		copy(out, s)
		sort.SliceStable(out, func(i, j int) bool {
			for _, f := range fields {
				if c := compareValues(out[i][f], out[j][f]); c != 0 {
					return c < 0
				}
			}
			return false
		})
		return out, nil
	}
}

// compareValues imposes a total order over field values: nulls first, then
// by type rank, then by value within a type. Mixed-type columns still sort
// deterministically.
func compareValues(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return ra - rb
	}
	switch va := a.(type) {
	case nil:
		return 0
	case bool:
		vb := b.(bool)
		switch {
		case va == vb:
			return 0
		case !va:
			return -1
		default:
			return 1
		}
	case int, int64, float64:
		fa, fb := asFloat(a), asFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	case string:
		vb := b.(string)
		switch {
		case va < vb:
			return -1
		case va > vb:
			return 1
		default:
			return 0
		}
	default:
		sa, sb := fmt.Sprint(a), fmt.Sprint(b)
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		default:
			return 0
		}
	}
}

func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case int, int64, float64:
		return 2
	case string:
		return 3
	default:
		return 4
	}
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	}
	return 0
}
