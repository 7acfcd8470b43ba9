package check

import (
	"github.com/amunlang/amun/pkg/mangle"
	"github.com/amunlang/amun/pkg/token"
	"github.com/amunlang/amun/pkg/types"
)

// resolveBinaryOperator implements §4.5's operator resolution: a
// built-in applies first (arithmetic on numbers, bitwise on integers,
// logical on i1, comparisons on numbers/enum-elements/pointers ->
// i1); otherwise a mangled-name overload lookup against Functions;
// otherwise the "no operator overloading" diagnostic.
func (c *Checker) resolveBinaryOperator(span token.Span, op token.Kind, left, right types.Type) (types.Type, error) {
	if t, ok := builtinBinaryResult(op, left, right); ok {
		return t, nil
	}

	opStr := binaryOperatorString(op)
	mangled := mangle.OperatorFunctionName(opStr, mangle.Infix, []types.Type{left, right})
	if proto, ok := c.Functions[mangled]; ok {
		return c.resolveType(proto.Return), nil
	}

	return nil, c.errorf(span, "can't find operator overloading for %s %s %s", typeString(left), opStr, typeString(right))
}

func (c *Checker) resolveUnaryOperator(span token.Span, op token.Kind, fixity mangle.Fixity, operand types.Type) (types.Type, error) {
	if t, ok := builtinUnaryResult(op, operand); ok {
		return t, nil
	}

	opStr := unaryOperatorString(op)
	mangled := mangle.OperatorFunctionName(opStr, fixity, []types.Type{operand})
	if proto, ok := c.Functions[mangled]; ok {
		return c.resolveType(proto.Return), nil
	}

	return nil, c.errorf(span, "can't find operator overloading for %s%s", opStr, typeString(operand))
}

func builtinBinaryResult(op token.Kind, left, right types.Type) (types.Type, bool) {
	ln, lok := left.(*types.NumberType)
	rn, rok := right.(*types.NumberType)

	switch op {
	case token.Plus, token.Minus, token.Star, token.Slash, token.Percent:
		if lok && rok {
			return widerNumberType(ln, rn), true
		}
		return nil, false
	case token.Ampersand, token.Pipe, token.Caret:
		if lok && rok && ln.NumberKind.IsInteger() && rn.NumberKind.IsInteger() {
			return widerNumberType(ln, rn), true
		}
		return nil, false
	case token.LeftShift, token.RightShift:
		if lok && rok && ln.NumberKind.IsInteger() && rn.NumberKind.IsInteger() {
			return left, true
		}
		return nil, false
	case token.AmpAmp, token.PipePipe:
		if lok && rok && ln.NumberKind == types.I1 && rn.NumberKind == types.I1 {
			return types.Primitives[types.I1], true
		}
		return nil, false
	case token.EqualEqual, token.BangEqual, token.Less, token.LessEqual, token.Greater, token.GreaterEqual:
		if comparable(left, right) {
			return types.Primitives[types.I1], true
		}
		return nil, false
	}
	return nil, false
}

func builtinUnaryResult(op token.Kind, operand types.Type) (types.Type, bool) {
	n, isNum := operand.(*types.NumberType)
	switch op {
	case token.Minus:
		if isNum {
			return operand, true
		}
	case token.Bang:
		if isNum && n.NumberKind == types.I1 {
			return operand, true
		}
	case token.Tilde:
		if isNum && n.NumberKind.IsInteger() {
			return operand, true
		}
	case token.Ampersand:
		return &types.PointerType{Base: operand}, true
	case token.Star:
		if ptr, ok := operand.(*types.PointerType); ok {
			return ptr.Base, true
		}
	case token.PlusPlus, token.MinusMinus:
		if isNum {
			return operand, true
		}
	}
	return nil, false
}

func comparable(left, right types.Type) bool {
	if _, ok := left.(*types.NumberType); ok {
		if _, ok := right.(*types.NumberType); ok {
			return true
		}
	}
	if _, ok := left.(*types.EnumElementType); ok {
		if _, ok := right.(*types.EnumElementType); ok {
			return types.Equal(left, right)
		}
	}
	if _, ok := left.(*types.PointerType); ok {
		if _, ok := right.(*types.PointerType); ok {
			return true
		}
		if _, ok := right.(*types.NullType); ok {
			return true
		}
	}
	if _, ok := right.(*types.PointerType); ok {
		if _, ok := left.(*types.NullType); ok {
			return true
		}
	}
	return false
}

// widerNumberType returns whichever of a/b has the greater width,
// preferring a float over an equal-width integer and the left operand
// on an exact tie (matching usual-arithmetic-conversion intuition; the
// spec leaves exact promotion unspecified beyond "the wider of the two").
func widerNumberType(a, b *types.NumberType) types.Type {
	if a.NumberKind.IsFloat() != b.NumberKind.IsFloat() {
		if a.NumberKind.IsFloat() {
			return a
		}
		return b
	}
	if b.NumberKind.Width() > a.NumberKind.Width() {
		return b
	}
	return a
}

func binaryOperatorString(op token.Kind) string {
	switch op {
	case token.Plus:
		return "+"
	case token.Minus:
		return "-"
	case token.Star:
		return "*"
	case token.Slash:
		return "/"
	case token.Percent:
		return "%"
	case token.EqualEqual:
		return "=="
	case token.BangEqual:
		return "!="
	case token.Less:
		return "<"
	case token.LessEqual:
		return "<="
	case token.Greater:
		return ">"
	case token.GreaterEqual:
		return ">="
	case token.Ampersand:
		return "&"
	case token.Pipe:
		return "|"
	case token.Caret:
		return "^"
	case token.LeftShift:
		return "<<"
	case token.RightShift:
		return ">>"
	}
	return op.String()
}

func unaryOperatorString(op token.Kind) string {
	switch op {
	case token.Minus:
		return "-"
	case token.Bang:
		return "!"
	case token.Tilde:
		return "~"
	case token.Ampersand:
		return "&"
	case token.Star:
		return "*"
	case token.PlusPlus:
		return "+"
	case token.MinusMinus:
		return "-"
	}
	return op.String()
}

// checkShiftOperand implements §4.5's shift-operand check: a literal RHS
// of << or >> must fit in [0, width(LHS)-1].
func (c *Checker) checkShiftOperand(span token.Span, leftType types.Type, rightValue int64, rightIsLiteral bool) error {
	if !rightIsLiteral {
		return nil
	}
	n, ok := leftType.(*types.NumberType)
	if !ok {
		return nil
	}
	maxShift := int64(n.NumberKind.Width()) - 1
	if rightValue < 0 || rightValue > maxShift {
		return c.errorf(span, "shift amount %d out of range [0, %d] for %s", rightValue, maxShift, n.NumberKind.String())
	}
	return nil
}
