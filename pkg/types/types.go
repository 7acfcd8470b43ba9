// Package types implements the Amun type model: a tagged sum over
// number/pointer/array/function/struct/tuple/enum/generic types, with
// equality, castability and name-mangling-adjacent canonical naming
// (mangling itself lives in pkg/mangle to avoid an import cycle, since
// mangling a generic struct needs the checker's substitution state).
package types

// Kind tags the variant of a Type.
type Kind int

const (
	KindNumber Kind = iota
	KindPointer
	KindStaticArray
	KindFunction
	KindStruct
	KindTuple
	KindEnum
	KindEnumElement
	KindGenericParameter
	KindGenericStruct
	KindNone
	KindVoid
	KindNull
)

// Type is the closed tagged sum every type-model variant implements.
// Concrete variants are structs below; callers type-switch on the
// concrete type, never on Kind alone, except for the primitive Number
// comparison in Equal.
type Type interface {
	Kind() Kind
	String() string
}

// NumberKind enumerates the fixed-width primitive number kinds.
type NumberKind int

const (
	I1 NumberKind = iota
	I8
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
)

// Width returns the fixed bit width of a NumberKind.
func (n NumberKind) Width() int {
	switch n {
	case I1:
		return 1
	case I8, U8:
		return 8
	case I16, U16:
		return 16
	case I32, U32, F32:
		return 32
	case I64, U64, F64:
		return 64
	}
	return 0
}

func (n NumberKind) IsSigned() bool {
	switch n {
	case I1, I8, I16, I32, I64:
		return true
	}
	return false
}

func (n NumberKind) IsFloat() bool {
	return n == F32 || n == F64
}

func (n NumberKind) IsInteger() bool {
	return !n.IsFloat()
}

func (n NumberKind) String() string {
	return numberNames[n]
}

// MangleCode returns the fixed mangling code for a number kind (§4.3).
func (n NumberKind) MangleCode() string {
	return numberNames[n]
}

var numberNames = map[NumberKind]string{
	I1: "i1", I8: "i8", I16: "i16", I32: "i32", I64: "i64",
	U8: "u8", U16: "u16", U32: "u32", U64: "u64",
	F32: "f32", F64: "f64",
}

// NumberType is the Number(NumberKind) variant. Instances for the
// eleven primitive kinds are process-global singletons (Primitives) per
// the spec's invariant that i1..f64 are shared by reference and must
// never be mutated.
type NumberType struct {
	NumberKind NumberKind
}

func (*NumberType) Kind() Kind        { return KindNumber }
func (t *NumberType) String() string  { return t.NumberKind.String() }

// Primitives holds the eleven shared Number singletons, keyed by kind.
var Primitives = map[NumberKind]*NumberType{
	I1:  {NumberKind: I1},
	I8:  {NumberKind: I8},
	I16: {NumberKind: I16},
	I32: {NumberKind: I32},
	I64: {NumberKind: I64},
	U8:  {NumberKind: U8},
	U16: {NumberKind: U16},
	U32: {NumberKind: U32},
	U64: {NumberKind: U64},
	F32: {NumberKind: F32},
	F64: {NumberKind: F64},
}

// DefaultInt is the unsuffixed integer literal default per the tokenizer
// spec (§4.2): i64.
var DefaultInt = Primitives[I64]

// PointerType is Pointer(base); it owns its pointee type.
type PointerType struct {
	Base Type
}

func (*PointerType) Kind() Kind { return KindPointer }
func (t *PointerType) String() string {
	return "*" + t.Base.String()
}

// StaticArrayType is StaticArray(element, size).
type StaticArrayType struct {
	Element Type
	Size    int64 // compile-time constant
}

func (*StaticArrayType) Kind() Kind { return KindStaticArray }
func (t *StaticArrayType) String() string {
	return "[" + t.Element.String() + "]"
}

// FunctionType is Function(...). ImplicitParamsCount counts the lambda
// captures prepended to Params by the checker (§4.5 capture synthesis);
// it is zero for ordinary functions.
type FunctionType struct {
	Name                 string
	Params               []Type
	Return               Type
	HasVarargs           bool
	VarargsType          Type
	IsIntrinsic          bool
	IsGeneric            bool
	GenericNames         []string
	ImplicitParamsCount  int
}

func (*FunctionType) Kind() Kind { return KindFunction }
func (t *FunctionType) String() string {
	s := "fun " + t.Name + "("
	for i, p := range t.Params {
		if i > 0 {
			s += ", "
		}
		s += p.String()
	}
	s += ")"
	if t.Return != nil {
		s += " " + t.Return.String()
	}
	return s
}

// StructType is Struct(...). Two StructTypes are nominally equal by
// Name alone (§3, §4.3).
type StructType struct {
	Name              string
	FieldNames        []string
	FieldTypes        []Type
	GenericParamNames []string
	GenericParamTypes []Type
	IsPacked          bool
	IsGeneric         bool
	IsExtern          bool
}

func (*StructType) Kind() Kind       { return KindStruct }
func (t *StructType) String() string { return t.Name }

// FieldType returns the declared type of a field by name, or nil if the
// struct has no such field.
func (t *StructType) FieldType(name string) Type {
	for i, n := range t.FieldNames {
		if n == name {
			return t.FieldTypes[i]
		}
	}
	return nil
}

// TupleType is Tuple(name, fields); Name is the canonical mangling of
// the field types and is what Equal compares (structural identity).
type TupleType struct {
	Name       string
	FieldTypes []Type
}

func (*TupleType) Kind() Kind       { return KindTuple }
func (t *TupleType) String() string { return t.Name }

// EnumType is Enum(name, values, element_type).
type EnumType struct {
	Name        string
	Values      map[string]int64
	Order       []string // declaration order, for exhaustiveness diagnostics
	ElementType *NumberType
}

func (*EnumType) Kind() Kind       { return KindEnum }
func (t *EnumType) String() string { return t.Name }

// EnumElementType is EnumElement(enum_name, element_type): the type of a
// value like Color::Red, distinct from the Enum type itself.
type EnumElementType struct {
	EnumName    string
	ElementType *NumberType
}

func (*EnumElementType) Kind() Kind       { return KindEnumElement }
func (t *EnumElementType) String() string { return t.EnumName }

// GenericParameterType is a placeholder (e.g. T in fun id<T>(x T) T),
// replaced during instantiation.
type GenericParameterType struct {
	Name string
}

func (*GenericParameterType) Kind() Kind       { return KindGenericParameter }
func (t *GenericParameterType) String() string { return t.Name }

// GenericStructType is an uninstantiated GenericStruct(template, args),
// resolved lazily by the checker into a concrete StructType.
type GenericStructType struct {
	TemplateName string
	TypeArgs     []Type
}

func (*GenericStructType) Kind() Kind { return KindGenericStruct }
func (t *GenericStructType) String() string {
	s := t.TemplateName + "<"
	for i, a := range t.TypeArgs {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ">"
}

// sentinels: None, Void, Null.
type (
	NoneType struct{}
	VoidType struct{}
	NullType struct {
		// Base records the pointer type null has been assigned to, if
		// any (rewritten by the checker on assignment/declaration, §3).
		Base Type
	}
)

func (*NoneType) Kind() Kind       { return KindNone }
func (*NoneType) String() string   { return "none" }
func (*VoidType) Kind() Kind       { return KindVoid }
func (*VoidType) String() string   { return "void" }
func (*NullType) Kind() Kind       { return KindNull }
func (*NullType) String() string   { return "null" }

// None, Void are shared singletons; Null is per-expression (each
// NullExpression owns its own NullType so its Base can be rewritten
// independently, matching the spec's "mutates the NullExpression node's
// recorded base type" invariant).
var (
	None = &NoneType{}
	Void = &VoidType{}
)
