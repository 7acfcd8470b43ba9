package types

import "testing"

func TestEqualNumbers(t *testing.T) {
	if !Equal(Primitives[I32], Primitives[I32]) {
		t.Fatalf("expected i32 == i32")
	}
	if Equal(Primitives[I32], Primitives[I64]) {
		t.Fatalf("expected i32 != i64")
	}
}

func TestEqualPointer(t *testing.T) {
	a := &PointerType{Base: Primitives[I32]}
	b := &PointerType{Base: Primitives[I32]}
	c := &PointerType{Base: Primitives[I64]}
	if !Equal(a, b) {
		t.Fatalf("expected *i32 == *i32")
	}
	if Equal(a, c) {
		t.Fatalf("expected *i32 != *i64")
	}
}

func TestEqualStructNominal(t *testing.T) {
	a := &StructType{Name: "Vec2", FieldTypes: []Type{Primitives[F32]}}
	b := &StructType{Name: "Vec2", FieldTypes: []Type{Primitives[F64]}} // different fields, same name
	if !Equal(a, b) {
		t.Fatalf("expected structs with equal canonical names to be equal regardless of fields (nominal typing)")
	}
}

func TestEqualTupleStructural(t *testing.T) {
	a := &TupleType{Name: "_tuple_i32i64"}
	b := &TupleType{Name: "_tuple_i32i64"}
	c := &TupleType{Name: "_tuple_i64i32"}
	if !Equal(a, b) {
		t.Fatalf("expected tuples with equal canonical mangled names to be equal")
	}
	if Equal(a, c) {
		t.Fatalf("expected tuples with different mangled names to be unequal")
	}
}

func TestCanCastIdempotent(t *testing.T) {
	if !CanCast(Primitives[I32], Primitives[I32]) {
		t.Fatalf("expected can_cast(T,T) to hold for every type (idempotence property, §8)")
	}
}

func TestCanCastNumbers(t *testing.T) {
	if !CanCast(Primitives[I32], Primitives[F64]) {
		t.Fatalf("expected number<->number casts to be allowed")
	}
}

func TestCanCastForbiddenSides(t *testing.T) {
	fn := &FunctionType{Name: "f", Return: Void}
	if CanCast(fn, Primitives[I32]) {
		t.Fatalf("expected casting a function type to be rejected")
	}
	if CanCast(Primitives[I32], Void) {
		t.Fatalf("expected casting to void to be rejected")
	}
}

func TestCanCastVoidPointer(t *testing.T) {
	voidPtr := &PointerType{Base: Void}
	i32Ptr := &PointerType{Base: Primitives[I32]}
	if !CanCast(i32Ptr, voidPtr) {
		t.Fatalf("expected anything<->*void to be allowed")
	}
	if !CanCast(voidPtr, i32Ptr) {
		t.Fatalf("expected *void<->anything to be allowed")
	}
}

func TestCanCastStaticArrayToPointer(t *testing.T) {
	arr := &StaticArrayType{Element: Primitives[I8], Size: 4}
	ptr := &PointerType{Base: Primitives[I8]}
	if !CanCast(arr, ptr) {
		t.Fatalf("expected StaticArray(T,N) -> Pointer(T) to be allowed")
	}
	wrongPtr := &PointerType{Base: Primitives[I32]}
	if CanCast(arr, wrongPtr) {
		t.Fatalf("expected StaticArray(i8,N) -> Pointer(i32) to be rejected")
	}
}

func TestCanCastRejectsOtherPairs(t *testing.T) {
	s := &StructType{Name: "Vec2"}
	if CanCast(s, Primitives[I32]) {
		t.Fatalf("expected struct -> number to be rejected")
	}
}
