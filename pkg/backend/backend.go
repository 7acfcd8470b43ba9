// Package backend defines the abstract visitor the checker hands the
// typed AST to once a compilation unit has zero errors (§1: "the
// machine-code backend, described here only as an abstract visitor
// consumer of the typed AST and a target for name-mangled symbols").
// Code generation itself is out of core scope; this package specifies
// only the interface the core needs plus a NoOp reference
// implementation exercised by tests and by `amun check`, which runs
// the pipeline with no backend at all.
package backend

import (
	"github.com/amunlang/amun/pkg/ast"
)

// Backend receives every top-level declaration of a checked
// CompilationUnit, in source order, plus scope entry/exit notifications
// carrying that scope's ordered defer list (SPEC_FULL §D.1). A real
// backend turns these into mangled-symbol machine code; NoOpBackend
// discards them.
type Backend interface {
	// Name identifies the backend for diagnostics and driver logging
	// (e.g. "llvm", "noop").
	Name() string

	VisitPrototype(proto *ast.Prototype) error
	VisitFunction(decl *ast.FunctionDeclaration) error
	VisitOperatorFunction(decl *ast.OperatorFunctionDeclaration) error
	VisitStruct(decl *ast.StructDeclaration) error
	VisitEnum(decl *ast.EnumDeclaration) error
	VisitTypeAlias(decl *ast.TypeAliasDeclaration) error
	VisitGlobalField(decl *ast.FieldDeclaration) error

	// EnterScope/ExitScope bracket every block statement the walker
	// descends into. defers is that block's own DeferList, already in
	// the order a cleanup-emitting backend must run it in; a real
	// backend pushes one onto its own stack on EnterScope and pops on
	// ExitScope, so that at a return statement nested several scopes
	// deep it can replay every still-open scope's list innermost-first
	// (SPEC_FULL §D.1's "every enclosing scope's deferred calls run
	// innermost-scope-first").
	EnterScope(defers DeferList) error
	ExitScope(defers DeferList) error

	// Finish is called once after the whole compilation unit has been
	// walked, so a real backend can emit a trailer (module finalization,
	// debug info, object-file flush).
	Finish() error
}

// DeferList is the ordered list of `defer` calls registered directly in
// one lexical block, in the order their cleanup calls must run:
// reverse of declaration order (SPEC_FULL §D.1, GLOSSARY "Defer call").
type DeferList []*ast.DeferStatement

// CollectDefers returns block's own DeferStatements (not those of
// nested blocks) in running order.
func CollectDefers(block *ast.BlockStatement) DeferList {
	var out DeferList
	for _, s := range block.Statements {
		if d, ok := s.(*ast.DeferStatement); ok {
			out = append(out, d)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Walk drives b over every top-level statement of cu, descending into
// function/operator bodies so EnterScope/ExitScope fire around every
// nested block. It's the driver's job to call Walk only once the
// checker has reported zero errors.
func Walk(cu *ast.CompilationUnit, b Backend) error {
	for _, stmt := range cu.Statements {
		if err := walkTopLevel(stmt, b); err != nil {
			return err
		}
	}
	return b.Finish()
}

func walkTopLevel(stmt ast.Statement, b Backend) error {
	switch s := stmt.(type) {
	case *ast.Prototype:
		return b.VisitPrototype(s)
	case *ast.FunctionDeclaration:
		if err := b.VisitFunction(s); err != nil {
			return err
		}
		return walkBody(s.Body, b)
	case *ast.OperatorFunctionDeclaration:
		if err := b.VisitOperatorFunction(s); err != nil {
			return err
		}
		return walkBody(s.Body, b)
	case *ast.StructDeclaration:
		return b.VisitStruct(s)
	case *ast.EnumDeclaration:
		return b.VisitEnum(s)
	case *ast.TypeAliasDeclaration:
		return b.VisitTypeAlias(s)
	case *ast.FieldDeclaration:
		return b.VisitGlobalField(s)
	case *ast.ImportStatement, *ast.LoadStatement:
		// Already inlined by the parser (§4.4's textual-inclusion
		// Non-goal); nothing for a backend to do with the marker itself.
		return nil
	default:
		return nil
	}
}

// walkBody descends into a function/operator body so nested blocks get
// EnterScope/ExitScope around their own DeferList. Expression bodies
// (`= expr`) have no block scope of their own to bracket.
func walkBody(body ast.Statement, b Backend) error {
	block, ok := body.(*ast.BlockStatement)
	if !ok {
		return nil
	}
	return walkBlock(block, b)
}

func walkBlock(block *ast.BlockStatement, b Backend) error {
	defers := CollectDefers(block)
	if err := b.EnterScope(defers); err != nil {
		return err
	}
	for _, stmt := range block.Statements {
		if err := walkNested(stmt, b); err != nil {
			_ = b.ExitScope(defers)
			return err
		}
	}
	return b.ExitScope(defers)
}

// walkNested descends into every statement form that can itself carry
// a nested block, so EnterScope/ExitScope fire at every scope the
// checker's own loopDepth/typesTable bookkeeping pushes a scope for.
func walkNested(stmt ast.Statement, b Backend) error {
	switch s := stmt.(type) {
	case *ast.BlockStatement:
		return walkBlock(s, b)
	case *ast.IfStatement:
		for _, branch := range s.Branches {
			if err := walkNested(branch.Body, b); err != nil {
				return err
			}
		}
		if s.Else != nil {
			return walkNested(s.Else, b)
		}
		return nil
	case *ast.SwitchStatement:
		for _, kase := range s.Cases {
			if err := walkNested(kase.Body, b); err != nil {
				return err
			}
		}
		if s.Else != nil {
			return walkNested(s.Else, b)
		}
		return nil
	case *ast.ForRangeStatement:
		return walkNested(s.Body, b)
	case *ast.ForEachStatement:
		return walkNested(s.Body, b)
	case *ast.ForEverStatement:
		return walkNested(s.Body, b)
	case *ast.WhileStatement:
		return walkNested(s.Body, b)
	default:
		return nil
	}
}
