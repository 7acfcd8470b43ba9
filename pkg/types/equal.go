package types

// Equal implements types_equal (§4.3).
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case *NumberType:
		bv := b.(*NumberType)
		return av.NumberKind == bv.NumberKind
	case *PointerType:
		bv := b.(*PointerType)
		return Equal(av.Base, bv.Base)
	case *StaticArrayType:
		bv := b.(*StaticArrayType)
		return av.Size == bv.Size && Equal(av.Element, bv.Element)
	case *FunctionType:
		bv := b.(*FunctionType)
		if av.HasVarargs != bv.HasVarargs {
			return false
		}
		if !Equal(av.Return, bv.Return) {
			return false
		}
		if len(av.Params) != len(bv.Params) {
			return false
		}
		for i := range av.Params {
			if !Equal(av.Params[i], bv.Params[i]) {
				return false
			}
		}
		return true
	case *StructType:
		bv := b.(*StructType)
		return av.Name == bv.Name // nominal
	case *TupleType:
		bv := b.(*TupleType)
		return av.Name == bv.Name // structural, by canonical mangled name
	case *EnumType:
		bv := b.(*EnumType)
		return av.Name == bv.Name
	case *EnumElementType:
		bv := b.(*EnumElementType)
		return av.EnumName == bv.EnumName
	case *GenericParameterType:
		bv := b.(*GenericParameterType)
		return av.Name == bv.Name
	case *GenericStructType:
		bv := b.(*GenericStructType)
		if av.TemplateName != bv.TemplateName {
			return false
		}
		if len(av.TypeArgs) != len(bv.TypeArgs) {
			return false
		}
		for i := range av.TypeArgs {
			if !Equal(av.TypeArgs[i], bv.TypeArgs[i]) {
				return false
			}
		}
		return true
	case *NoneType, *VoidType, *NullType:
		return true
	}
	return false
}

// CanCast implements can_cast (§4.3): forbidden when either side is
// Void, None, Enum, EnumElement or Function. Allowed: Number<->Number,
// anything<->*Void, StaticArray(T,N) -> Pointer(T). Everything else is
// rejected.
func CanCast(from, to Type) bool {
	if isForbiddenCastSide(from) || isForbiddenCastSide(to) {
		return false
	}

	if _, ok := from.(*NumberType); ok {
		if _, ok := to.(*NumberType); ok {
			return true
		}
	}

	if isVoidPointer(to) || isVoidPointer(from) {
		return true
	}

	if arr, ok := from.(*StaticArrayType); ok {
		if ptr, ok := to.(*PointerType); ok {
			return Equal(arr.Element, ptr.Base)
		}
	}

	return false
}

func isForbiddenCastSide(t Type) bool {
	switch t.(type) {
	case *VoidType, *NoneType, *EnumType, *EnumElementType, *FunctionType:
		return true
	}
	return false
}

func isVoidPointer(t Type) bool {
	ptr, ok := t.(*PointerType)
	if !ok {
		return false
	}
	_, isVoid := ptr.Base.(*VoidType)
	return isVoid
}

// IsAssignableNull reports whether t is a pointer type, the only type
// null may be assigned to.
func IsAssignableNull(t Type) (*PointerType, bool) {
	p, ok := t.(*PointerType)
	return p, ok
}
