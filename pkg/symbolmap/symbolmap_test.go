package symbolmap

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/amunlang/amun/pkg/check"
	"github.com/amunlang/amun/pkg/diag"
	"github.com/amunlang/amun/pkg/parser"
	"github.com/amunlang/amun/pkg/source"
)

func TestBuildRecordsOrdinaryFunctionsAndStructs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.amun")
	src := `
struct Point {
    x: i32,
    y: i32,
}
fun add(a: i32, b: i32) -> i32 {
    return a + b;
}
`
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
	checker := check.New(sources, diags, p.Aliases, p.Functions, p.Structures, p.Enumerations)
	if err := checker.Check(cu); err != nil {
		t.Fatalf("Check returned an error: %v", err)
	}

	sm := Build(cu, checker)
	if _, ok := sm.Lookup("add"); !ok {
		t.Fatalf("expected a symbol map entry for 'add'")
	}
	if _, ok := sm.Lookup("Point"); !ok {
		t.Fatalf("expected a symbol map entry for 'Point'")
	}
}

func TestBuildRecordsGenericInstantiations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.amun")
	src := `
fun identity<T>(x: T) -> T = x;
fun main() -> i32 {
    var a: i32 = identity<i32>(1);
    return a;
}
`
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
	checker := check.New(sources, diags, p.Aliases, p.Functions, p.Structures, p.Enumerations)
	if err := checker.Check(cu); err != nil {
		t.Fatalf("Check returned an error: %v", err)
	}
	if diags.LevelCount(diag.Error) != 0 {
		t.Fatalf("expected no errors, got %d", diags.LevelCount(diag.Error))
	}

	sm := Build(cu, checker)
	var found bool
	for _, e := range sm.Entries() {
		if len(e.Mangled) > len("identity") && e.Mangled[:len("identity")] == "identity" {
			found = true
			if e.Span.Line == 0 {
				t.Fatalf("expected the instantiation to inherit the template's span, got zero span")
			}
		}
	}
	if !found {
		t.Fatalf("expected a recorded entry for the identity<i32> instantiation")
	}

	data, err := Generate(sm, "main.out", sources)
	if err != nil {
		t.Fatalf("unexpected error generating artifact: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("expected valid JSON, got error: %v", err)
	}
	if decoded["version"].(float64) != 3 {
		t.Fatalf("expected version 3, got %v", decoded["version"])
	}
}

func TestGenerateConsumerRoundTripsByNameAndPosition(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.amun")
	src := `
fun add(a: i32, b: i32) -> i32 {
    return a + b;
}
fun sub(a: i32, b: i32) -> i32 {
    return a - b;
}
`
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
	checker := check.New(sources, diags, p.Aliases, p.Functions, p.Structures, p.Enumerations)
	if err := checker.Check(cu); err != nil {
		t.Fatalf("Check returned an error: %v", err)
	}

	sm := Build(cu, checker)
	addEntry, ok := sm.Lookup("add")
	if !ok {
		t.Fatalf("expected a symbol map entry for 'add'")
	}
	subEntry, ok := sm.Lookup("sub")
	if !ok {
		t.Fatalf("expected a symbol map entry for 'sub'")
	}

	data, err := Generate(sm, "main.out", sources)
	if err != nil {
		t.Fatalf("unexpected error generating artifact: %v", err)
	}

	consumer, err := NewConsumer(data)
	if err != nil {
		t.Fatalf("unexpected error parsing artifact: %v", err)
	}

	addPos, err := consumer.ResolveName("add")
	if err != nil {
		t.Fatalf("unexpected error resolving 'add': %v", err)
	}
	if addPos.Line != addEntry.Span.Line || addPos.Column != addEntry.Span.ColStart {
		t.Fatalf("add resolved to %d:%d, want %d:%d", addPos.Line, addPos.Column, addEntry.Span.Line, addEntry.Span.ColStart)
	}

	subPos, err := consumer.ResolveName("sub")
	if err != nil {
		t.Fatalf("unexpected error resolving 'sub': %v", err)
	}
	if subPos.Line != subEntry.Span.Line || subPos.Column != subEntry.Span.ColStart {
		t.Fatalf("sub resolved to %d:%d, want %d:%d", subPos.Line, subPos.Column, subEntry.Span.Line, subEntry.Span.ColStart)
	}

	if _, err := consumer.ResolveName("nonexistent"); err == nil {
		t.Fatalf("expected an error resolving an unknown symbol name")
	}
}
