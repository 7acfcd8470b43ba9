package ast

import (
	"testing"

	"github.com/amunlang/amun/pkg/types"
)

func num(v string) *NumberExpression {
	return &NumberExpression{Raw: v, Kind: types.I32}
}

func TestLiteralIdentifierNeverConstant(t *testing.T) {
	lit := &LiteralExpression{Name: "k"}
	if lit.IsConstant() {
		t.Fatalf("expected identifier reference to never be constant, even when it names a const binding")
	}
}

func TestBinaryConstantPropagation(t *testing.T) {
	bin := &BinaryExpression{Left: num("1"), Right: num("2")}
	if !bin.IsConstant() {
		t.Fatalf("expected operator tree over constant literals to be constant")
	}

	mixed := &BinaryExpression{Left: num("1"), Right: &LiteralExpression{Name: "x"}}
	if mixed.IsConstant() {
		t.Fatalf("expected operator tree referencing a variable to not be constant")
	}
}

func TestIfExpressionConstantRequiresAllArmsConstant(t *testing.T) {
	ifExpr := &IfExpression{
		Branches: []IfExprBranch{{Condition: &BoolExpression{Value: true}, Value: num("1")}},
		Else:     num("2"),
	}
	if !ifExpr.IsConstant() {
		t.Fatalf("expected if-expression with all-constant arms to be constant")
	}

	ifExpr.Else = &LiteralExpression{Name: "x"}
	if ifExpr.IsConstant() {
		t.Fatalf("expected if-expression with a non-constant else arm to not be constant")
	}
}

func TestSwitchExpressionConstant(t *testing.T) {
	sw := &SwitchExpression{
		Argument: num("1"),
		Cases:    []SwitchExprCase{{Values: []Expression{num("1")}, Value: num("10")}},
		Else:     num("0"),
	}
	if !sw.IsConstant() {
		t.Fatalf("expected all-constant switch-expression to be constant")
	}
}

func TestPostfixNeverConstant(t *testing.T) {
	p := &PostfixUnaryExpression{Operand: &LiteralExpression{Name: "x"}}
	if p.IsConstant() {
		t.Fatalf("expected ++/-- to never be constant")
	}
}

func TestEnumElementAndLambdaConstant(t *testing.T) {
	e := &EnumElementExpression{EnumName: "Color", ElementName: "Red"}
	if !e.IsConstant() {
		t.Fatalf("expected enum element access to be constant")
	}
	l := &LambdaExpression{}
	if !l.IsConstant() {
		t.Fatalf("expected a lambda expression to be constant")
	}
}

func TestTypeSizeAndValueSizeConstant(t *testing.T) {
	ts := &TypeSizeExpression{Target: types.Primitives[types.I32]}
	if !ts.IsConstant() {
		t.Fatalf("expected type_size to be constant")
	}
	vs := &ValueSizeExpression{Operand: num("1")}
	if !vs.IsConstant() {
		t.Fatalf("expected value_size to be constant")
	}
}
