package mangle

import (
	"testing"

	"github.com/amunlang/amun/pkg/types"
)

func TestMangleNumbers(t *testing.T) {
	if Type(types.Primitives[types.I32]) != "i32" {
		t.Fatalf("expected i32 to mangle to 'i32'")
	}
	if Type(types.Primitives[types.F64]) != "f64" {
		t.Fatalf("expected f64 to mangle to 'f64'")
	}
}

func TestManglePointer(t *testing.T) {
	p := &types.PointerType{Base: types.Primitives[types.I32]}
	if Type(p) != "pi32" {
		t.Fatalf("expected *i32 to mangle to 'pi32', got %q", Type(p))
	}
}

func TestMangleStaticArray(t *testing.T) {
	a := &types.StaticArrayType{Element: types.Primitives[types.I8], Size: 10}
	if Type(a) != "_a10i8" {
		t.Fatalf("expected [i8;10] to mangle to '_a10i8', got %q", Type(a))
	}
}

func TestMangleEquivalenceWithTypeEquality(t *testing.T) {
	// For all type pairs (a, b): types_equal(a, b) => mangle(a) == mangle(b)
	// and the converse, for every type except GenericParameter (§8).
	a := &types.PointerType{Base: types.Primitives[types.I64]}
	b := &types.PointerType{Base: types.Primitives[types.I64]}
	if !types.Equal(a, b) {
		t.Fatalf("precondition failed: expected a == b")
	}
	if Type(a) != Type(b) {
		t.Fatalf("expected mangle(a) == mangle(b) when types_equal holds")
	}

	c := &types.PointerType{Base: types.Primitives[types.I32]}
	if types.Equal(a, c) {
		t.Fatalf("precondition failed: expected a != c")
	}
	if Type(a) == Type(c) {
		t.Fatalf("expected mangle(a) != mangle(c) when types_equal does not hold")
	}
}

func TestTupleNameRoundTrips(t *testing.T) {
	fields := []types.Type{types.Primitives[types.I32], types.Primitives[types.I64]}
	name := TupleName(fields)
	if name != "_tuple_i32i64" {
		t.Fatalf("expected _tuple_i32i64, got %q", name)
	}
	tup := &types.TupleType{Name: name, FieldTypes: fields}
	if Type(tup) != name {
		t.Fatalf("expected mangling a Tuple to return its stored canonical name")
	}
}

func TestOperatorFunctionName(t *testing.T) {
	vec2 := &types.StructType{Name: "Vec2"}
	name := OperatorFunctionName("+", Infix, []types.Type{vec2, vec2})
	if name != "_operator_plusVec2Vec2" {
		t.Fatalf("expected _operator_plusVec2Vec2, got %q", name)
	}

	prefixName := OperatorFunctionName("-", Prefix, []types.Type{vec2})
	if prefixName != "_operator_prefix_minusVec2" {
		t.Fatalf("expected prefixed mangled name, got %q", prefixName)
	}
}

func TestGenericStructName(t *testing.T) {
	name := GenericStructName("Box", []types.Type{types.Primitives[types.I32]})
	if name != "Boxi32" {
		t.Fatalf("expected Boxi32, got %q", name)
	}
}
