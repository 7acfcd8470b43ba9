// Package check implements the Amun TypeChecker (§4.5): name resolution,
// generic instantiation, lambda capture synthesis, enum-switch
// exhaustiveness, and return-coverage analysis over the AST the Parser
// produces. It mirrors the Parser's own cooperating-files split
// (decl.go/stmt.go/expr.go/generics.go/operators.go) rather than one
// monolithic visitor.
package check

import (
	"fmt"

	"github.com/amunlang/amun/pkg/ast"
	"github.com/amunlang/amun/pkg/diag"
	"github.com/amunlang/amun/pkg/scope"
	"github.com/amunlang/amun/pkg/source"
	"github.com/amunlang/amun/pkg/token"
	"github.com/amunlang/amun/pkg/types"
)

// Checker traverses a CompilationUnit as a visitor, mutating expression
// type slots and generic-resolution fields in place (§3's "mutated by
// the checker" lifecycle).
type Checker struct {
	Sources *source.Manager
	Diags   *diag.Engine
	Aliases *types.AliasTable

	Functions    map[string]*ast.Prototype
	Structures   map[string]*ast.StructDeclaration
	Enumerations map[string]*ast.EnumDeclaration

	// typesTable is the single scoped namespace functions, structs,
	// enums, and local/global variables are all entered into, per §4.5.
	typesTable *scope.Map[string, types.Type]

	// returnTypesStack's top is the expected return type of the
	// function currently being checked.
	returnTypesStack []types.Type

	// genericFunctions holds uninstantiated generic templates, keyed by
	// declared name (not yet in typesTable).
	genericFunctions map[string]*ast.FunctionDeclaration

	// instantiated memoizes generic function/struct instantiations by
	// mangled name, so a repeated instantiation request is a cache hit.
	instantiatedFuncs map[string]*types.FunctionType
	instantiatedTypes map[string]*types.StructType

	// genericEnv is the current type-parameter substitution environment;
	// saved/restored around each generic instantiation (no nesting
	// beyond what save/restore already handles, since instantiation is
	// not reentrant within itself).
	genericEnv map[string]types.Type

	// lambdaImplicitParams is a stack of per-lambda capture lists, built
	// as the checker discovers free variables while checking a lambda
	// body (§4.5 capture synthesis).
	lambdaImplicitParams [][]ast.Param
	isInsideLambdaBody   bool

	loopDepth int
}

// New returns a Checker that shares the Parser's alias table and
// function/struct/enum tables, so structures/enums/prototypes collected
// while parsing are visible for name resolution without re-declaring
// them.
func New(sources *source.Manager, diags *diag.Engine, aliases *types.AliasTable,
	functions map[string]*ast.Prototype, structures map[string]*ast.StructDeclaration,
	enumerations map[string]*ast.EnumDeclaration) *Checker {
	return &Checker{
		Sources:           sources,
		Diags:             diags,
		Aliases:           aliases,
		Functions:         functions,
		Structures:        structures,
		Enumerations:      enumerations,
		typesTable:        scope.NewMap[string, types.Type](),
		genericFunctions:  make(map[string]*ast.FunctionDeclaration),
		instantiatedFuncs: make(map[string]*types.FunctionType),
		instantiatedTypes: make(map[string]*types.StructType),
		genericEnv:        make(map[string]types.Type),
	}
}

// Check type-checks every top-level statement in cu. Per §4.5's failure
// semantics, an error inside one top-level declaration aborts checking
// that declaration only ("unwinds to check_compilation_unit's outer
// handler"); Check itself always returns nil since every failure is
// already recorded in the DiagnosticEngine — the driver decides whether
// to halt the pipeline by consulting Diags.LevelCount(diag.Error).
func (c *Checker) Check(cu *ast.CompilationUnit) error {
	c.seedDeclarations(cu.Statements)
	for _, stmt := range cu.Statements {
		_ = c.checkTopLevel(stmt)
	}
	return nil
}

// seedDeclarations enters every struct/enum/non-generic-function type
// into typesTable, and records generic function templates separately,
// before checking any statement body — so forward references (a
// function calling another declared later in the file) resolve.
func (c *Checker) seedDeclarations(stmts []ast.Statement) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.Prototype:
			c.seedFunction(s)
		case *ast.FunctionDeclaration:
			if s.Proto.IsGeneric() {
				c.genericFunctions[s.Proto.Name] = s
			}
			c.seedFunction(s.Proto)
		case *ast.OperatorFunctionDeclaration:
			c.seedFunction(s.Proto)
		case *ast.StructDeclaration:
			// Already entered into the AliasTable by the parser; nothing
			// further needed unless it's generic (resolved lazily on use).
		case *ast.EnumDeclaration:
			// Likewise seeded into the AliasTable by the parser.
		}
	}
}

func (c *Checker) seedFunction(proto *ast.Prototype) {
	if proto.IsGeneric() {
		// Recorded by name for instantiate-on-call; the prototype itself
		// isn't entered as a concrete Function type (§4.5).
		return
	}
	ft := c.prototypeFunctionType(proto)
	c.typesTable.Define(proto.Name, ft)
}

func (c *Checker) prototypeFunctionType(proto *ast.Prototype) *types.FunctionType {
	params := make([]types.Type, len(proto.Params))
	for i, p := range proto.Params {
		params[i] = c.resolveType(p.Type)
	}
	return &types.FunctionType{
		Name:        proto.Name,
		Params:      params,
		Return:      c.resolveType(proto.Return),
		HasVarargs:  proto.HasVarargs,
		VarargsType: proto.VarargsType,
		IsIntrinsic: proto.IsIntrinsic,
	}
}

func (c *Checker) checkTopLevel(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.FunctionDeclaration:
		return c.checkFunctionDeclaration(s)
	case *ast.OperatorFunctionDeclaration:
		return c.checkOperatorFunctionDeclaration(s)
	case *ast.Prototype:
		return nil // prototype-only declarations need no body check
	case *ast.StructDeclaration:
		return nil
	case *ast.EnumDeclaration:
		return nil
	case *ast.TypeAliasDeclaration:
		return nil
	case *ast.FieldDeclaration:
		return c.checkFieldDeclaration(s)
	default:
		return c.errorf(stmt.Span(), "unsupported top-level statement %T", stmt)
	}
}

func (c *Checker) errorf(span token.Span, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	c.Diags.Report(diag.Error, span, msg)
	return fmt.Errorf("%s", msg)
}

func (c *Checker) warnf(span token.Span, format string, args ...any) {
	c.Diags.Report(diag.Warning, span, fmt.Sprintf(format, args...))
}

// InstantiatedFunctions returns every generic function instantiation
// produced while checking, keyed by its mangled name (§4.3). Exposed so
// a debug-artifact pass (pkg/symbolmap) can record a span for every
// mangled symbol, including ones that only exist because of a generic
// call site.
func (c *Checker) InstantiatedFunctions() map[string]*types.FunctionType {
	return c.instantiatedFuncs
}

// InstantiatedStructs is InstantiatedFunctions' analog for generic
// struct instantiations.
func (c *Checker) InstantiatedStructs() map[string]*types.StructType {
	return c.instantiatedTypes
}
