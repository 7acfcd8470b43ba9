package check

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/amunlang/amun/pkg/ast"
	"github.com/amunlang/amun/pkg/diag"
	"github.com/amunlang/amun/pkg/parser"
	"github.com/amunlang/amun/pkg/source"
)

// checkSource parses src and runs the Checker over it, returning the
// diagnostic engine so tests can assert on error/warning counts and
// messages.
func checkSource(t *testing.T, src string) (*ast.CompilationUnit, *diag.Engine) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.amun")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	sources := source.New()
	diags := diag.New(sources)
	p := parser.New(sources, diags, dir)
	cu, err := p.ParseCompilationUnit(path)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if diags.LevelCount(diag.Error) != 0 {
		for _, d := range diags.Diagnostics(diag.Error) {
			t.Logf("parse diagnostic: %s", d.Message)
		}
		t.Fatalf("expected no parse diagnostics")
	}

	checker := New(sources, diags, p.Aliases, p.Functions, p.Structures, p.Enumerations)
	if err := checker.Check(cu); err != nil {
		t.Fatalf("Check returned an error: %v", err)
	}
	return cu, diags
}

func TestCheckSimpleArithmeticFunction(t *testing.T) {
	_, diags := checkSource(t, `
fun add(a: i32, b: i32) -> i32 {
    return a + b;
}
`)
	if diags.LevelCount(diag.Error) != 0 {
		t.Fatalf("expected no errors, got %d", diags.LevelCount(diag.Error))
	}
}

func TestCheckMissingReturnOnAllPaths(t *testing.T) {
	_, diags := checkSource(t, `
fun pick(flag: i1) -> i32 {
    if flag {
        return 1;
    }
}
`)
	if diags.LevelCount(diag.Error) == 0 {
		t.Fatalf("expected a missing-return error")
	}
}

func TestCheckIfElseReturnsOnAllPaths(t *testing.T) {
	_, diags := checkSource(t, `
fun pick(flag: i1) -> i32 {
    if flag {
        return 1;
    } else {
        return 2;
    }
}
`)
	if diags.LevelCount(diag.Error) != 0 {
		t.Fatalf("expected no errors, got %d", diags.LevelCount(diag.Error))
	}
}

func TestCheckGenericFunctionInstantiation(t *testing.T) {
	cu, diags := checkSource(t, `
fun identity<T>(x: T) -> T = x;
fun main() -> i32 {
    var a: i32 = identity<i32>(1);
    return a;
}
`)
	if diags.LevelCount(diag.Error) != 0 {
		t.Fatalf("expected no errors, got %d", diags.LevelCount(diag.Error))
	}
	var main *ast.FunctionDeclaration
	for _, s := range cu.Statements {
		if fn, ok := s.(*ast.FunctionDeclaration); ok && fn.Proto.Name == "main" {
			main = fn
		}
	}
	if main == nil {
		t.Fatalf("main not found")
	}
}

func TestCheckGenericFunctionMissingInference(t *testing.T) {
	_, diags := checkSource(t, `
fun makeNull<T>() -> T {
    var x: T;
    return x;
}
fun main() -> i32 {
    makeNull();
    return 0;
}
`)
	if diags.LevelCount(diag.Error) == 0 {
		t.Fatalf("expected a not-enough-information-to-infer error")
	}
}

func TestCheckNumericLiteralOutOfRange(t *testing.T) {
	_, diags := checkSource(t, `
fun main() -> i32 {
    var x: i8 = 200i8;
    return 0;
}
`)
	if diags.LevelCount(diag.Error) == 0 {
		t.Fatalf("expected an out-of-range literal error")
	}
}

func TestCheckShiftOperandOutOfRange(t *testing.T) {
	_, diags := checkSource(t, `
fun main() -> i32 {
    var x: i32 = 1 << 40;
    return x;
}
`)
	if diags.LevelCount(diag.Error) == 0 {
		t.Fatalf("expected a shift-amount-out-of-range error")
	}
}

func TestCheckLambdaCaptureSynthesis(t *testing.T) {
	cu, diags := checkSource(t, `
fun main() -> i32 {
    var n: i32 = 10;
    var addN: fun(i32) -> i32 = fun(x: i32) -> i32 = x + n;
    return addN(5);
}
`)
	if diags.LevelCount(diag.Error) != 0 {
		for _, d := range diags.Diagnostics(diag.Error) {
			t.Logf("diagnostic: %s", d.Message)
		}
		t.Fatalf("expected no errors")
	}
	main := cu.Statements[0].(*ast.FunctionDeclaration)
	block := main.Body.(*ast.BlockStatement)
	decl := block.Statements[1].(*ast.FieldDeclaration)
	lambda := decl.Value.(*ast.LambdaExpression)
	if len(lambda.ImplicitParams) != 1 || lambda.ImplicitParams[0].Name != "n" {
		t.Fatalf("expected lambda to capture 'n', got %+v", lambda.ImplicitParams)
	}
}

func TestCheckDirectLambdaArgumentCannotCapture(t *testing.T) {
	_, diags := checkSource(t, `
fun apply(f: fun(i32) -> i32, v: i32) -> i32 = f(v);
fun main() -> i32 {
    var n: i32 = 10;
    return apply(fun(x: i32) -> i32 = x + n, 5);
}
`)
	if diags.LevelCount(diag.Error) == 0 {
		t.Fatalf("expected a capturing-direct-argument error")
	}
}

func TestCheckCompleteEnumSwitchExhaustiveness(t *testing.T) {
	_, diags := checkSource(t, `
enum Color {
    Red,
    Green,
    Blue,
}
fun describe(c: Color) -> i32 {
    @complete
    switch c {
        Color.Red -> { return 1; }
        Color.Green -> { return 2; }
    }
    return 0;
}
`)
	if diags.LevelCount(diag.Error) == 0 {
		t.Fatalf("expected a missing-case exhaustiveness error")
	}
}

func TestCheckOperatorOverloadResolution(t *testing.T) {
	_, diags := checkSource(t, `
struct Vec2 {
    x: i32,
    y: i32,
}
operator infix + (a: Vec2, b: Vec2) -> Vec2 {
    return Vec2 { .x = a.x + b.x, .y = a.y + b.y };
}
fun main() -> i32 {
    var a: Vec2 = Vec2 { .x = 1, .y = 2 };
    var b: Vec2 = Vec2 { .x = 3, .y = 4 };
    var c: Vec2 = a + b;
    return c.x;
}
`)
	if diags.LevelCount(diag.Error) != 0 {
		for _, d := range diags.Diagnostics(diag.Error) {
			t.Logf("diagnostic: %s", d.Message)
		}
		t.Fatalf("expected no errors, got %d", diags.LevelCount(diag.Error))
	}
}
