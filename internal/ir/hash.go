package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainPredicate is the domain prefix for content-addressed predicate
// identity. The version suffix enables future algorithm migration.
const DomainPredicate = "rill/predicate/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null separator prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// PredicateID computes the content-addressed ID for a compiled predicate
// from its summary. The ID is stable across process restarts given the
// same clause and the same variable-name generator, which is what makes
// golden-file comparison of compiled output possible.
//
// Assemblies are closures and intentionally excluded: identity covers the
// observable shape (kind, fields, option-derived metadata), not code.
func PredicateID(summary map[string]any) (string, error) {
	canonical, err := MarshalCanonical(summary)
	if err != nil {
		return "", fmt.Errorf("PredicateID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainPredicate, canonical), nil
}
