package ir

import (
	"fmt"
	"sort"
)

// Summarize renders the observable shape of a compiled predicate as plain
// data: the envelope plus variant-specific metadata, with assemblies and
// operator closures excluded. Summaries feed PredicateID and the CLI's
// JSON output.
func Summarize(p Predicate) map[string]any {
	env := p.Env()
	s := map[string]any{
		"kind":      string(env.Kind),
		"infields":  stringList(env.Infields),
		"outfields": stringList(env.Outfields),
	}
	switch v := p.(type) {
	case *Operation:
		s["allow_on_gen_filter"] = v.AllowOnGenFilter
	case *Aggregator:
		s["is_buffer"] = v.IsBuffer
		s["parallel"] = v.Parallel != nil
	case *Generator:
		summarizeGenerator(s, v)
	case *GeneratorFilter:
		summarizeGenerator(s, &v.Generator)
		s["outvar"] = v.Outvar
	case *Option:
		s["key"] = v.Key
		s["value"] = plainValue(v.Value)
	case *MacroRef:
		s["name"] = v.Name
	}
	return s
}

func summarizeGenerator(s map[string]any, g *Generator) {
	s["ground"] = g.Ground
	if g.JoinSetVar != "" {
		s["join_set_var"] = g.JoinSetVar
	}
	sources := make([]string, 0, len(g.Sources))
	for k := range g.Sources {
		sources = append(sources, k)
	}
	sort.Strings(sources)
	s["sources"] = stringList(sources)

	traps := make([]string, 0, len(g.Traps))
	for k := range g.Traps {
		traps = append(traps, k)
	}
	sort.Strings(traps)
	s["traps"] = stringList(traps)
}

func stringList(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// plainValue reduces an arbitrary option value to canonical-JSON-safe
// data, stringifying anything outside the supported scalar set.
func plainValue(v any) any {
	switch val := v.(type) {
	case string, int, int64, bool:
		return val
	case []string:
		return stringList(val)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = plainValue(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = plainValue(elem)
		}
		return out
	default:
		return fmt.Sprint(v)
	}
}
