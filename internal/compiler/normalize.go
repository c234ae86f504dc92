package compiler

import (
	"fmt"

	"github.com/rillquery/rill/internal/flow"
	"github.com/rillquery/rill/internal/vars"
)

// normalized is the result of the pre-dispatch variable pipeline: constant
// lifting, duplicate-field resolution, and ignored-variable replacement.
type normalized struct {
	// in holds the final input variable names: constants lifted, no two
	// entries equal.
	in []string
	// out holds the output variable names with ignored positions replaced
	// by generated nullable names.
	out []string
	// constants maps generated name → lifted literal value.
	constants map[string]any
	// copies records (src, dst) identity-copy pairs for duplicate inputs.
	copies [][2]string
	// generated lists every name generated for constants and duplicates,
	// in substitution order. The enhancer appends these to the final
	// outfields so the full substitution stays observable.
	generated []string
}

// normalize runs the three normalization steps over raw clause tokens.
//
// Step 1, constant substitution: any input token that is not a well-formed
// variable reference is replaced by a freshly generated nullable variable
// and its value recorded, so downstream stages only ever read named
// variables. Step 2, duplicate resolution: the first occurrence of a name
// passes through; later occurrences get a new generated name plus an
// identity-copy stage. Step 3, ignored outputs: each "_" output token is
// replaced by a generated nullable name so it still occupies a stream slot
// but is untracked by the caller.
func (c *Compiler) normalize(rawIn, rawOut []any) (*normalized, error) {
	n := &normalized{constants: make(map[string]any)}

	seen := make(map[string]bool)
	for _, tok := range rawIn {
		if !vars.IsVariable(tok) {
			name := vars.NewName(c.gen)
			n.constants[name] = tok
			n.generated = append(n.generated, name)
			n.in = append(n.in, name)
			seen[name] = true
			continue
		}
		name, ok := tok.(string)
		if !ok || vars.IsIgnored(name) {
			// Ignored markers only make sense in output position.
			name = vars.NewName(c.gen)
			n.generated = append(n.generated, name)
		}
		if seen[name] {
			alias := vars.NewName(c.gen)
			n.copies = append(n.copies, [2]string{name, alias})
			n.generated = append(n.generated, alias)
			name = alias
		}
		seen[name] = true
		n.in = append(n.in, name)
	}

	for _, tok := range rawOut {
		if vars.IsIgnored(tok) {
			n.out = append(n.out, vars.NewName(c.gen))
			continue
		}
		name, ok := tok.(string)
		if !ok || !vars.IsVariable(tok) {
			return nil, NewArityError(fmt.Sprintf("output token must be a variable, got %v (%T)", tok, tok), nil)
		}
		n.out = append(n.out, name)
	}
	return n, nil
}

// inputStage assembles the insertion and duplicate-copy stages, or nil
// when normalization recorded nothing. The enhancer treats nil as absent,
// which matters for generators where any input stage is an invariant
// violation.
func (n *normalized) inputStage() flow.Assembly {
	if len(n.constants) == 0 && len(n.copies) == 0 {
		return nil
	}
	stages := make([]flow.Assembly, 0, 1+len(n.copies))
	if len(n.constants) > 0 {
		stages = append(stages, flow.Insert(n.constants))
	}
	for _, pair := range n.copies {
		stages = append(stages, flow.Copy(pair[0], pair[1]))
	}
	return flow.Compose(stages...)
}

// finalOut is the post-substitution output schema: the normalized outputs
// plus every generated substitution name.
func (n *normalized) finalOut() []string {
	out := make([]string, 0, len(n.out)+len(n.generated))
	out = append(out, n.out...)
	out = append(out, n.generated...)
	return out
}
