package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/amunlang/amun/pkg/ast"
	"github.com/amunlang/amun/pkg/diag"
	"github.com/amunlang/amun/pkg/source"
	"github.com/amunlang/amun/pkg/token"
)

func parseSource(t *testing.T, src string) (*ast.CompilationUnit, *Parser) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.amun")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	sources := source.New()
	diags := diag.New(sources)
	p := New(sources, diags, dir)
	cu, err := p.ParseCompilationUnit(path)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if diags.LevelCount(diag.Error) != 0 {
		for _, d := range diags.Diagnostics(diag.Error) {
			t.Logf("diagnostic: %s", d.Message)
		}
		t.Fatalf("expected no diagnostics, got %d", diags.LevelCount(diag.Error))
	}
	return cu, p
}

func TestParseFunctionDeclarationWithBlockBody(t *testing.T) {
	cu, _ := parseSource(t, `
fun add(a: i32, b: i32) -> i32 {
    return a + b;
}
`)
	if len(cu.Statements) != 1 {
		t.Fatalf("expected one top-level statement, got %d", len(cu.Statements))
	}
	fn, ok := cu.Statements[0].(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("expected FunctionDeclaration, got %T", cu.Statements[0])
	}
	if fn.Proto.Name != "add" || len(fn.Proto.Params) != 2 {
		t.Fatalf("unexpected prototype: %+v", fn.Proto)
	}
}

func TestParseExpressionBodiedFunction(t *testing.T) {
	cu, _ := parseSource(t, `fun square(x: i32) -> i32 = x * x;`)
	fn := cu.Statements[0].(*ast.FunctionDeclaration)
	if fn.ExprBody == nil || fn.Body != nil {
		t.Fatalf("expected expression body only")
	}
}

func TestGenericStructCallDisambiguatedFromComparison(t *testing.T) {
	cu, _ := parseSource(t, `
struct Box<T> {
    value: T,
}
fun identity<T>(x: T) -> T = x;
fun main() -> i32 {
    var a: i32 = identity<i32>(1);
    var b: bool = a < 2;
    return a;
}
`)
	var main *ast.FunctionDeclaration
	for _, s := range cu.Statements {
		if fn, ok := s.(*ast.FunctionDeclaration); ok && fn.Proto.Name == "main" {
			main = fn
		}
	}
	if main == nil {
		t.Fatalf("main not found")
	}
	block := main.Body.(*ast.BlockStatement)
	first := block.Statements[0].(*ast.FieldDeclaration)
	call, ok := first.Value.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expected a call expression, got %T", first.Value)
	}
	if len(call.GenericArgs) != 1 {
		t.Fatalf("expected one explicit generic argument, got %d", len(call.GenericArgs))
	}

	second := block.Statements[1].(*ast.FieldDeclaration)
	if _, ok := second.Value.(*ast.ComparisonExpression); !ok {
		t.Fatalf("expected a comparison expression, got %T", second.Value)
	}
}

func TestRightShiftSynthesizedFromTwoGreaterTokens(t *testing.T) {
	cu, _ := parseSource(t, `
fun main() -> i32 {
    return 8 >> 1;
}
`)
	main := cu.Statements[0].(*ast.FunctionDeclaration)
	ret := main.Body.(*ast.BlockStatement).Statements[0].(*ast.ReturnStatement)
	shift, ok := ret.Value.(*ast.ShiftExpression)
	if !ok {
		t.Fatalf("expected a shift expression, got %T", ret.Value)
	}
	if shift.Op != token.RightShift {
		t.Fatalf("expected RightShift, got %s", shift.Op)
	}
}

func TestNestedGenericClosingAngleBrackets(t *testing.T) {
	cu, _ := parseSource(t, `
struct Box<T> {
    value: T,
}
fun main() -> i32 {
    var nested: Box<Box<i32>>;
    return 0;
}
`)
	main := cu.Statements[len(cu.Statements)-1].(*ast.FunctionDeclaration)
	decl := main.Body.(*ast.BlockStatement).Statements[0].(*ast.FieldDeclaration)
	if decl.DeclaredType == nil {
		t.Fatalf("expected a declared type for nested is parsed without swallowing tokens")
	}
}

func TestStructInitializerExpression(t *testing.T) {
	cu, _ := parseSource(t, `
struct Point {
    x: i32,
    y: i32,
}
fun main() -> i32 {
    var p: Point = Point { .x = 1, .y = 2 };
    return 0;
}
`)
	main := cu.Statements[len(cu.Statements)-1].(*ast.FunctionDeclaration)
	decl := main.Body.(*ast.BlockStatement).Statements[0].(*ast.FieldDeclaration)
	init, ok := decl.Value.(*ast.InitExpression)
	if !ok {
		t.Fatalf("expected InitExpression, got %T", decl.Value)
	}
	if init.StructName != "Point" || len(init.Fields) != 2 {
		t.Fatalf("unexpected struct initializer: %+v", init)
	}
}

func TestDeferRequiresCallExpression(t *testing.T) {
	if err := parseExpectingError(t, `
fun main() -> i32 {
    defer 1 + 2;
    return 0;
}
`); err == nil {
		t.Fatalf("expected a parse error for a non-call defer target")
	}
}

// parseExpectingError parses src and returns a non-nil error either if
// parsing itself failed or if the parser recorded any error diagnostic.
func parseExpectingError(t *testing.T, src string) error {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.amun")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	sources := source.New()
	diags := diag.New(sources)
	p := New(sources, diags, dir)
	_, err := p.ParseCompilationUnit(path)
	if err != nil {
		return err
	}
	if diags.LevelCount(diag.Error) > 0 {
		return errParseDiagnostics
	}
	return nil
}

var errParseDiagnostics = errors.New("parser reported error diagnostics")

func TestIfExpressionRequiresElseArm(t *testing.T) {
	if err := parseExpectingError(t, `
fun main() -> i32 {
    var x: i32 = if true { 1 };
    return x;
}
`); err == nil {
		t.Fatalf("expected an error for an if-expression without an else arm")
	}
}

func TestImportInlinesReferencedFile(t *testing.T) {
	dir := t.TempDir()
	libPath := filepath.Join(dir, "mathlib.amun")
	if err := os.WriteFile(libPath, []byte(`fun triple(x: i32) -> i32 = x * 3;`), 0o644); err != nil {
		t.Fatalf("writing lib fixture: %v", err)
	}
	mainPath := filepath.Join(dir, "main.amun")
	mainSrc := `
import "mathlib";
fun main() -> i32 {
    return triple(2);
}
`
	if err := os.WriteFile(mainPath, []byte(mainSrc), 0o644); err != nil {
		t.Fatalf("writing main fixture: %v", err)
	}
	sources := source.New()
	diags := diag.New(sources)
	p := New(sources, diags, dir)
	cu, err := p.ParseCompilationUnit(mainPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	foundTriple := false
	for _, s := range cu.Statements {
		if fn, ok := s.(*ast.FunctionDeclaration); ok && fn.Proto.Name == "triple" {
			foundTriple = true
		}
	}
	if !foundTriple {
		t.Fatalf("expected the imported file's declarations to be inlined")
	}
}
