package backend

import (
	"fmt"
	"strings"
)

// IntrinsicMap resolves the source-level name on an `intrinsic fun`
// prototype to whatever identifier a concrete backend actually emits
// for it (e.g. an LLVM intrinsic symbol). Amun's own intrinsic names
// are never the same as the codegen target's, so the mapping — unlike
// everything else in this package — is backend-specific configuration,
// not something the checker can own (§1: "the intrinsic registry... the
// core only validates names").
type IntrinsicMap map[string]string

// Resolve looks up name's backend identifier. ok is false for an
// intrinsic prototype this backend doesn't implement; the caller
// decides whether that's a hard error or a deferred/weak symbol.
func (m IntrinsicMap) Resolve(name string) (string, bool) {
	id, ok := m[name]
	return id, ok
}

// ValidateIntrinsicName re-checks the non-empty/no-whitespace rule the
// parser already enforces on every `intrinsic fun` prototype name
// (§1's "Intrinsic names" GLOSSARY entry). The backend validates again
// at its own boundary rather than trusting the parser invariant to
// still hold by the time an intrinsic map lookup happens — a NoOp or
// test backend may be driven by a hand-built AST that skipped parsing
// entirely.
func ValidateIntrinsicName(name string) error {
	if name == "" {
		return fmt.Errorf("intrinsic name must not be empty")
	}
	if strings.ContainsAny(name, " \t\n\r") {
		return fmt.Errorf("intrinsic name %q must not contain whitespace", name)
	}
	return nil
}
