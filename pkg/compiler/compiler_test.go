package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/amunlang/amun/pkg/backend"
	"github.com/amunlang/amun/pkg/diag"
)

func writeFixture(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.amun")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestCheckSourceCodeNoErrors(t *testing.T) {
	path := writeFixture(t, `
fun add(a: i32, b: i32) -> i32 {
    return a + b;
}
`)
	diags, err := CheckSourceCode(path, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diags.LevelCount(diag.Error) != 0 {
		t.Fatalf("expected no errors, got %d", diags.LevelCount(diag.Error))
	}
}

func TestCheckSourceCodeReportsTypeErrors(t *testing.T) {
	path := writeFixture(t, `
fun pick(flag: i1) -> i32 {
    if flag {
        return 1;
    }
}
`)
	diags, err := CheckSourceCode(path, Options{})
	if err == nil {
		t.Fatalf("expected an error for a missing return path")
	}
	if diags.LevelCount(diag.Error) == 0 {
		t.Fatalf("expected at least one diagnostic")
	}
}

func TestCompileSourceCodeRunsNoOpBackend(t *testing.T) {
	path := writeFixture(t, `
fun add(a: i32, b: i32) -> i32 {
    return a + b;
}
`)
	b := backend.NewNoOp()
	_, err := CompileSourceCode(path, Options{Backend: b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Visited["add"] != 1 {
		t.Fatalf("expected the backend to visit 'add' once, got %d", b.Visited["add"])
	}
}

func TestCompileSourceCodeStopsBeforeBackendOnError(t *testing.T) {
	path := writeFixture(t, `
fun pick(flag: i1) -> i32 {
    if flag {
        return 1;
    }
}
`)
	b := backend.NewNoOp()
	_, err := CompileSourceCode(path, Options{Backend: b})
	if err == nil {
		t.Fatalf("expected an error")
	}
	if len(b.Visited) != 0 {
		t.Fatalf("expected the backend to never be invoked, got %v", b.Visited)
	}
}

func TestEmitLLVMIRFromSourceCodeReturnsCheckedAST(t *testing.T) {
	path := writeFixture(t, `
fun add(a: i32, b: i32) -> i32 {
    return a + b;
}
`)
	cu, diags, err := EmitLLVMIRFromSourceCode(path, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diags.LevelCount(diag.Error) != 0 {
		t.Fatalf("expected no errors, got %d", diags.LevelCount(diag.Error))
	}
	if len(cu.Statements) != 1 {
		t.Fatalf("expected one top-level statement, got %d", len(cu.Statements))
	}
}

func TestWarningsAsErrorsPromotesCastWarning(t *testing.T) {
	path := writeFixture(t, `
fun main() -> i32 {
    var x: i32 = 1;
    var y: i32 = cast<i32>(x);
    return y;
}
`)
	_, err := CheckSourceCode(path, Options{EmitWarnings: true, WarningsAsErrors: true})
	if err == nil {
		t.Fatalf("expected the same-type cast warning to be promoted to an error")
	}
}
