package vars

import "strings"

// Variable naming conventions for the query surface:
//
//	"?name"  non-nullable variable (tuples with a null value here are dropped)
//	"!name"  nullable variable
//	"!!name" ungrounding variable (nullable; marks an ungrounded join position)
//	"_"      ignored position (replaced with a generated nullable name)
//
// Generated names use the "!__gen_" prefix so they are always nullable and
// can never collide with a user-written variable.
const (
	Ignored   = "_"
	genPrefix = "!__gen_"
)

// IsVariable reports whether tok is a well-formed variable token.
// Anything else in input position is a literal constant to be lifted
// out by the normalizer.
func IsVariable(tok any) bool {
	s, ok := tok.(string)
	if !ok {
		return false
	}
	if s == Ignored {
		return true
	}
	return strings.HasPrefix(s, "?") || strings.HasPrefix(s, "!")
}

// IsIgnored reports whether tok is the ignored-position marker.
func IsIgnored(tok any) bool {
	s, ok := tok.(string)
	return ok && s == Ignored
}

// IsNonNullable reports whether name declares a non-nullable variable.
// The null-check synthesizer filters tuples on exactly these names.
func IsNonNullable(name string) bool {
	return strings.HasPrefix(name, "?")
}

// IsNullable reports whether name declares a nullable variable.
func IsNullable(name string) bool {
	return strings.HasPrefix(name, "!")
}

// IsUngrounding reports whether name declares an ungrounding variable.
// A generator with an ungrounding output is not ground (see Ground).
func IsUngrounding(name string) bool {
	return strings.HasPrefix(name, "!!")
}

// IsGenerated reports whether name was produced by a Generator.
func IsGenerated(name string) bool {
	return strings.HasPrefix(name, genPrefix)
}

// Ground reports whether every name in outfields is a bound, non-nullable
// variable. A ground generator can participate in constant-equality joins
// downstream; one with nullable, ungrounding, or generated outputs cannot.
func Ground(outfields []string) bool {
	for _, f := range outfields {
		if !IsNonNullable(f) {
			return false
		}
	}
	return true
}
