// Package mangle implements the NameMangler: deterministic symbol names
// for types, overloaded operators and generic instantiations (§4.3).
// Mangled names are part of the contract handed to the backend/linker
// (§6), so every rule here is load-bearing, not cosmetic.
package mangle

import (
	"fmt"
	"strings"

	"github.com/amunlang/amun/pkg/types"
)

// Type mangles a single type per §4.3:
//
//	Number kinds       -> fixed codes (i1,i8,...,u64,f32,f64)
//	Pointer(T)          -> p<mangle(T)>
//	StaticArray(T,N)     -> _a<N><mangle(T)>
//	EnumElement(name,_)  -> name
//	Struct(name,...)     -> name
//	Tuple(fields)        -> _tuple_<concat mangle(fields)>
//
// Struct/Tuple rely on their own .Name already having been set to their
// canonical form by the checker when the type was constructed;
// Type simply returns it, so this function is safe to call on a type
// whose Name was itself produced by a previous call to Type/Types.
func Type(t types.Type) string {
	switch v := t.(type) {
	case *types.NumberType:
		return v.NumberKind.MangleCode()
	case *types.PointerType:
		return "p" + Type(v.Base)
	case *types.StaticArrayType:
		return fmt.Sprintf("_a%d%s", v.Size, Type(v.Element))
	case *types.EnumElementType:
		return v.EnumName
	case *types.EnumType:
		return v.Name
	case *types.StructType:
		return v.Name
	case *types.TupleType:
		return v.Name
	case *types.GenericParameterType:
		return v.Name
	case *types.GenericStructType:
		return v.TemplateName + Types(v.TypeArgs)
	case *types.VoidType:
		return "v"
	case *types.NoneType:
		return "n"
	case *types.NullType:
		return "null"
	}
	return "?"
}

// Types concatenates the mangling of each type in order (mangle_types).
func Types(ts []types.Type) string {
	var b strings.Builder
	for _, t := range ts {
		b.WriteString(Type(t))
	}
	return b.String()
}

// TupleName produces the canonical name of a Tuple(fields) type:
// _tuple_<concat mangle(fields)>.
func TupleName(fields []types.Type) string {
	return "_tuple_" + Types(fields)
}

// GenericStructName produces the canonical name of an instantiated
// generic struct template<args>: Name<mangle(args)>.
func GenericStructName(templateName string, args []types.Type) string {
	return templateName + Types(args)
}

// operatorWords maps each allow-listed overloadable operator to the word
// used in its mangled name.
var operatorWords = map[string]string{
	"+":  "plus",
	"-":  "minus",
	"*":  "star",
	"/":  "slash",
	"%":  "percent",
	"==": "equal_equal",
	"!=": "bang_equal",
	"<":  "less",
	"<=": "less_equal",
	">":  "greater",
	">=": "greater_equal",
	"&":  "amp",
	"|":  "pipe",
	"^":  "caret",
	"<<": "shift_left",
	">>": "shift_right",
	"!":  "bang",
	"~":  "tilde",
}

// OperatorWord returns the word used for op in a mangled operator-overload
// name, and whether op is in the overloadable allow-list.
func OperatorWord(op string) (string, bool) {
	w, ok := operatorWords[op]
	return w, ok
}

// Fixity distinguishes unary operator-overload positions, which carry a
// distinct mangled prefix when looked up (§4.3: "prefix/postfix versions
// carry _prefix/_postfix prefix when invoked").
type Fixity int

const (
	Infix Fixity = iota
	Prefix
	Postfix
)

// OperatorFunctionName builds the mangled name a declared/invoked
// operator-overload function is stored/looked-up under:
// _operator_<op-word><concat mangle(params)>, with a _prefix/_postfix
// infix inserted for unary overloads.
func OperatorFunctionName(op string, fixity Fixity, params []types.Type) string {
	word, ok := OperatorWord(op)
	if !ok {
		word = op
	}

	name := "_operator_"
	switch fixity {
	case Prefix:
		name += "prefix_" + word
	case Postfix:
		name += "postfix_" + word
	default:
		name += word
	}
	name += Types(params)
	return name
}
