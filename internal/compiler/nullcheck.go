package compiler

import (
	"github.com/rillquery/rill/internal/flow"
	"github.com/rillquery/rill/internal/vars"
)

// nullCheck builds a filter stage that drops tuples carrying a null value
// in any non-nullable output variable. With no non-nullable outputs the
// stage is the identity transformation.
func nullCheck(outfields []string) flow.Assembly {
	var checked []string
	for _, f := range outfields {
		if vars.IsNonNullable(f) {
			checked = append(checked, f)
		}
	}
	return flow.DropNulls(checked)
}
