package backend

import "github.com/amunlang/amun/pkg/ast"

// NoOpBackend discards every declaration and scope event. It's the
// backend CompileSourceCode walks when no backend is given (`amun
// check` runs no backend at all) and the one `pkg/compiler`'s driver
// tests exercise Walk with.
type NoOpBackend struct {
	// Visited counts each Visit* call by declaration name, useful for
	// tests asserting the walker reached every declaration without
	// requiring a full fake backend.
	Visited map[string]int
}

// NewNoOp creates a NoOpBackend ready to use.
func NewNoOp() *NoOpBackend {
	return &NoOpBackend{Visited: make(map[string]int)}
}

func (b *NoOpBackend) Name() string { return "noop" }

func (b *NoOpBackend) VisitPrototype(proto *ast.Prototype) error {
	b.Visited[proto.Name]++
	return nil
}

func (b *NoOpBackend) VisitFunction(decl *ast.FunctionDeclaration) error {
	b.Visited[decl.Proto.Name]++
	return nil
}

func (b *NoOpBackend) VisitOperatorFunction(decl *ast.OperatorFunctionDeclaration) error {
	b.Visited[decl.Proto.Name]++
	return nil
}

func (b *NoOpBackend) VisitStruct(decl *ast.StructDeclaration) error {
	b.Visited[decl.Name]++
	return nil
}

func (b *NoOpBackend) VisitEnum(decl *ast.EnumDeclaration) error {
	b.Visited[decl.Name]++
	return nil
}

func (b *NoOpBackend) VisitTypeAlias(decl *ast.TypeAliasDeclaration) error {
	b.Visited[decl.Name]++
	return nil
}

func (b *NoOpBackend) VisitGlobalField(decl *ast.FieldDeclaration) error {
	b.Visited[decl.Name]++
	return nil
}

func (b *NoOpBackend) EnterScope(defers DeferList) error { return nil }
func (b *NoOpBackend) ExitScope(defers DeferList) error  { return nil }
func (b *NoOpBackend) Finish() error                     { return nil }
