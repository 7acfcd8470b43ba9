package check

import (
	"github.com/amunlang/amun/pkg/ast"
	"github.com/amunlang/amun/pkg/types"
)

// checkFieldDeclaration implements §4.5's declaration rules for var/const:
// one of declared-type/value is required, null assigned to a pointer
// declaration rewrites the NullExpression's base type, a generic-struct
// declared type resolves against its instantiation, and a global
// declaration's value must be a compile-time constant.
func (c *Checker) checkFieldDeclaration(decl *ast.FieldDeclaration) error {
	declared := c.resolveType(decl.DeclaredType)

	var valueType types.Type
	if decl.Value != nil {
		if decl.IsGlobal && !decl.Value.IsConstant() {
			return c.errorf(decl.Value.Span(), "global declaration %q requires a compile-time constant value", decl.Name)
		}
		t, err := c.inferExpr(decl.Value)
		if err != nil {
			return err
		}
		valueType = t
	}

	if declared == nil && valueType == nil {
		return c.errorf(decl.Span(), "declaration %q needs a type or a value", decl.Name)
	}

	finalType := declared
	if finalType == nil {
		finalType = valueType
	}

	if nul, ok := decl.Value.(*ast.NullExpression); ok {
		ptr, isPtr := finalType.(*types.PointerType)
		if !isPtr {
			return c.errorf(nul.Span(), "null can only be assigned to a pointer type, got %s", finalType.String())
		}
		nul.NullBaseType = ptr
		nul.SetType(ptr)
	} else if declared != nil && valueType != nil && !types.CanCast(valueType, declared) && !types.Equal(valueType, declared) {
		return c.errorf(decl.Value.Span(), "cannot assign value of type %s to declaration %q of type %s", valueType.String(), decl.Name, declared.String())
	}

	c.typesTable.Define(decl.Name, finalType)
	return nil
}

// checkFunctionDeclaration checks an ordinary (non-generic) function's
// body against its prototype's declared return type, per §4.5. Generic
// prototypes are left unchecked here — their bodies are checked lazily,
// once per distinct instantiation, by instantiateGenericCall.
func (c *Checker) checkFunctionDeclaration(decl *ast.FunctionDeclaration) error {
	if decl.Proto.IsGeneric() {
		c.genericFunctions[decl.Proto.Name] = decl
		return nil
	}

	c.typesTable.Push()
	defer c.typesTable.Pop()

	for _, p := range decl.Proto.Params {
		c.typesTable.Define(p.Name, c.resolveType(p.Type))
	}

	ret := c.resolveType(decl.Proto.Return)
	c.returnTypesStack = append(c.returnTypesStack, ret)
	defer func() { c.returnTypesStack = c.returnTypesStack[:len(c.returnTypesStack)-1] }()

	if decl.ExprBody != nil {
		bodyType, err := c.inferExpr(decl.ExprBody)
		if err != nil {
			return err
		}
		if ret != nil && !isVoid(ret) && !types.Equal(bodyType, ret) && !types.CanCast(bodyType, ret) {
			return c.errorf(decl.ExprBody.Span(), "function %q returns %s, expression body has type %s", decl.Proto.Name, ret.String(), bodyType.String())
		}
		return nil
	}

	if decl.Body == nil {
		return nil // extern/intrinsic prototype-only declarations
	}
	if err := c.checkStatement(decl.Body); err != nil {
		return err
	}

	if ret != nil && !isVoid(ret) {
		if !returnsOnAllPaths(decl.Body) {
			return c.errorf(decl.Span(), "function %q does not return a value on all paths", decl.Proto.Name)
		}
	}
	return nil
}

// checkOperatorFunctionDeclaration validates operator overloads the
// parser already restricted to the allow-listed operator set: a
// parameter list made only of primitive numbers is rejected. It then
// checks the body like an ordinary function declaration (§4.5, §4.6).
func (c *Checker) checkOperatorFunctionDeclaration(decl *ast.OperatorFunctionDeclaration) error {
	numberParams := 0
	for _, p := range decl.Proto.Params {
		resolved := c.resolveType(p.Type)
		if _, ok := resolved.(*types.NumberType); ok {
			numberParams++
		}
	}
	if len(decl.Proto.Params) > 0 && numberParams == len(decl.Proto.Params) {
		return c.errorf(decl.Span(), "operator %q overload takes only primitive number parameters; at least one operand must be a struct/enum type", decl.Operator)
	}
	return c.checkFunctionDeclaration(&ast.FunctionDeclaration{
		StmtBase: decl.StmtBase,
		Proto:    decl.Proto,
		Body:     decl.Body,
		ExprBody: decl.ExprBody,
	})
}

func isVoid(t types.Type) bool {
	_, ok := t.(*types.VoidType)
	return ok
}
