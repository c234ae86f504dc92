package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rillquery/rill/internal/ops"
)

func TestSummarize_Operation(t *testing.T) {
	p := &Operation{
		Envelope: Envelope{
			Kind:      KindFilter,
			Infields:  []string{"?a"},
			Outfields: []string{},
		},
		AllowOnGenFilter: true,
	}
	s := Summarize(p)
	assert.Equal(t, "filter", s["kind"])
	assert.Equal(t, []any{"?a"}, s["infields"])
	assert.Equal(t, []any{}, s["outfields"])
	assert.Equal(t, true, s["allow_on_gen_filter"])
}

func TestSummarize_Aggregator(t *testing.T) {
	p := &Aggregator{
		Envelope: Envelope{Kind: KindParallelAggregator, Infields: []string{"?n"}, Outfields: []string{"?sum"}},
		Parallel: &ops.CombinerSpec{},
	}
	s := Summarize(p)
	assert.Equal(t, false, s["is_buffer"])
	assert.Equal(t, true, s["parallel"])
}

func TestSummarize_GeneratorSourcesSorted(t *testing.T) {
	p := &Generator{
		Envelope: Envelope{Kind: KindGenerator, Infields: []string{}, Outfields: []string{"?x"}},
		Ground:   true,
		Sources: map[string]ops.Source{
			"zeta":  ops.MemorySource{ID: "zeta"},
			"alpha": ops.MemorySource{ID: "alpha"},
		},
		Traps: map[string]ops.Tap{"errs": ops.MemorySource{ID: "errs"}},
	}
	s := Summarize(p)
	assert.Equal(t, []any{"alpha", "zeta"}, s["sources"])
	assert.Equal(t, []any{"errs"}, s["traps"])
	assert.Equal(t, true, s["ground"])
	assert.NotContains(t, s, "join_set_var")
}

func TestSummarize_GeneratorFilter(t *testing.T) {
	p := &GeneratorFilter{
		Generator: Generator{
			Envelope:   Envelope{Kind: KindGeneratorFilter, Infields: []string{}, Outfields: []string{"?x"}},
			JoinSetVar: "?x",
		},
		Outvar: "?x",
	}
	s := Summarize(p)
	assert.Equal(t, "?x", s["outvar"])
	assert.Equal(t, "?x", s["join_set_var"])
}

func TestSummarize_OptionValueIsPlainData(t *testing.T) {
	p := &Option{
		Envelope: Envelope{Kind: KindOption, Infields: []string{}, Outfields: []string{}},
		Key:      "sort",
		Value:    []any{"?a", 3.5},
	}
	s := Summarize(p)
	assert.Equal(t, "sort", s["key"])
	// Floats are stringified so the summary stays hashable.
	assert.Equal(t, []any{"?a", "3.5"}, s["value"])

	_, err := PredicateID(s)
	require.NoError(t, err)
}

func TestSummarize_HashableForEveryVariant(t *testing.T) {
	env := Envelope{Kind: KindMap, Infields: []string{"?a"}, Outfields: []string{"?b"}}
	preds := []Predicate{
		&Operation{Envelope: env},
		&Aggregator{Envelope: env},
		&Generator{Envelope: env},
		&GeneratorFilter{Generator: Generator{Envelope: env}, Outvar: "?b"},
		&Option{Envelope: env, Key: "trap", Value: "sink"},
		&MacroRef{Envelope: env, Name: "m"},
	}
	for _, p := range preds {
		_, err := PredicateID(Summarize(p))
		require.NoError(t, err, "kind %s", p.Env().Kind)
	}
}

func TestIsGeneratorAndIsMacro(t *testing.T) {
	gen := &Generator{}
	gf := &GeneratorFilter{}
	op := &Operation{}
	macro := &MacroRef{}

	assert.True(t, IsGenerator(gen))
	assert.True(t, IsGenerator(gf))
	assert.False(t, IsGenerator(op))
	assert.True(t, IsMacro(macro))
	assert.False(t, IsMacro(gen))
}
