// Package symbolmap builds and consumes the debug artifact linking
// every mangled symbol name (§4.3) back to the source span that
// produced it — the "symbolmap" entry of SPEC_FULL §A's package table.
// A Generator records mappings as they're produced and emits a Source
// Map v3 JSON artifact; a Consumer built on
// github.com/go-sourcemap/sourcemap reads one back.
package symbolmap

import (
	"github.com/amunlang/amun/pkg/ast"
	"github.com/amunlang/amun/pkg/check"
	"github.com/amunlang/amun/pkg/token"
)

// Entry links one mangled symbol to the declaration span it was
// produced from.
type Entry struct {
	Mangled string
	Display string // human-readable name, e.g. "add" or "identity<i32>"
	Span    token.Span
}

// SymbolMap is the in-memory table a compilation builds while walking
// the checked AST; Generator turns it into a serializable artifact.
type SymbolMap struct {
	entries map[string]Entry
	order   []string // insertion order, for deterministic output
}

// New returns an empty SymbolMap.
func New() *SymbolMap {
	return &SymbolMap{entries: make(map[string]Entry)}
}

// Record adds the entry for mangled unless one exists. Re-recording the
// same mangled name (a repeated generic instantiation request, say)
// keeps the first span, matching the checker's own instantiate-once
// memoization.
func (m *SymbolMap) Record(mangled, display string, span token.Span) {
	if _, exists := m.entries[mangled]; exists {
		return
	}
	m.entries[mangled] = Entry{Mangled: mangled, Display: display, Span: span}
	m.order = append(m.order, mangled)
}

// Lookup returns the entry for a mangled symbol name, if one was
// recorded.
func (m *SymbolMap) Lookup(mangled string) (Entry, bool) {
	e, ok := m.entries[mangled]
	return e, ok
}

// Entries returns every recorded entry in insertion order.
func (m *SymbolMap) Entries() []Entry {
	out := make([]Entry, 0, len(m.order))
	for _, k := range m.order {
		out = append(out, m.entries[k])
	}
	return out
}

// Build walks cu's top-level declarations and checker's generic
// instantiation caches to populate a SymbolMap covering every mangled
// symbol a backend will need to resolve back to source: ordinary
// functions and operator overloads (whose Proto.Name is already the
// mangled form — §4.3), structs, enums, global fields, and every
// generic function/struct instantiation the checker produced, which
// shares its originating template's declaration span since no separate
// AST node exists per instantiation.
func Build(cu *ast.CompilationUnit, checker *check.Checker) *SymbolMap {
	sm := New()
	templates := make(map[string]token.Span)

	for _, stmt := range cu.Statements {
		switch s := stmt.(type) {
		case *ast.FunctionDeclaration:
			if s.Proto.IsGeneric() {
				templates[s.Proto.Name] = s.Span()
				continue
			}
			sm.Record(s.Proto.Name, s.Proto.Name, s.Span())
		case *ast.OperatorFunctionDeclaration:
			sm.Record(s.Proto.Name, s.Operator, s.Span())
		case *ast.Prototype:
			if s.IsGeneric() {
				templates[s.Name] = s.Span()
				continue
			}
			sm.Record(s.Name, s.Name, s.Span())
		case *ast.StructDeclaration:
			if !s.IsGeneric() {
				sm.Record(s.Name, s.Name, s.Span())
			}
		case *ast.EnumDeclaration:
			sm.Record(s.Name, s.Name, s.Span())
		case *ast.FieldDeclaration:
			if s.IsGlobal {
				sm.Record(s.Name, s.Name, s.Span())
			}
		}
	}

	for mangled := range checker.InstantiatedFunctions() {
		span := spanForInstantiation(mangled, templates)
		sm.Record(mangled, mangled, span)
	}
	for mangled := range checker.InstantiatedStructs() {
		span := spanForInstantiation(mangled, templates)
		sm.Record(mangled, mangled, span)
	}

	return sm
}

// spanForInstantiation finds the template declaration a mangled
// instantiation name was generated from: mangled names are always
// templateName + a mangled type-argument suffix (§4.3), so the
// longest registered template name that prefixes mangled wins.
func spanForInstantiation(mangled string, templates map[string]token.Span) token.Span {
	var best string
	for name := range templates {
		if len(name) <= len(mangled) && mangled[:len(name)] == name && len(name) > len(best) {
			best = name
		}
	}
	if best == "" {
		return token.Span{}
	}
	return templates[best]
}
