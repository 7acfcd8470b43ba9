package types

import "testing"

func TestAliasTableSeededWithPrimitives(t *testing.T) {
	tbl := NewAliasTable()
	typ, ok := tbl.Lookup("i32")
	if !ok || typ != Primitives[I32] {
		t.Fatalf("expected i32 to resolve to the shared i32 singleton")
	}
}

func TestAliasTableDefineRejectsDuplicate(t *testing.T) {
	tbl := NewAliasTable()
	if !tbl.Define("MyInt", Primitives[I32]) {
		t.Fatalf("expected first definition to succeed")
	}
	if tbl.Define("MyInt", Primitives[I64]) {
		t.Fatalf("expected redefinition to be rejected")
	}
	if tbl.Define("i32", Primitives[I64]) {
		t.Fatalf("expected aliasing a primitive name to be rejected")
	}
}
