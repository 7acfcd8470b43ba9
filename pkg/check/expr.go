package check

import (
	"math"
	"strconv"

	"github.com/amunlang/amun/pkg/ast"
	"github.com/amunlang/amun/pkg/mangle"
	"github.com/amunlang/amun/pkg/types"
)

// inferExpr dispatches over every ast.Expression variant, recording the
// resolved type into the node's mutable type slot (SetType) as it goes,
// per §3's "mutated by the checker" lifecycle.
func (c *Checker) inferExpr(expr ast.Expression) (types.Type, error) {
	t, err := c.inferExprUncached(expr)
	if err != nil {
		return nil, err
	}
	expr.SetType(t)
	return t, nil
}

func (c *Checker) inferExprUncached(expr ast.Expression) (types.Type, error) {
	switch e := expr.(type) {
	case *ast.GroupExpression:
		return c.inferExpr(e.Inner)
	case *ast.TupleExpression:
		return c.inferTuple(e)
	case *ast.AssignExpression:
		return c.inferAssign(e)
	case *ast.BinaryExpression:
		return c.inferBinary(e)
	case *ast.ShiftExpression:
		return c.inferShift(e)
	case *ast.ComparisonExpression:
		return c.inferComparison(e)
	case *ast.LogicalExpression:
		return c.inferLogical(e)
	case *ast.PrefixUnaryExpression:
		return c.inferPrefixUnary(e)
	case *ast.PostfixUnaryExpression:
		return c.inferPostfixUnary(e)
	case *ast.CallExpression:
		return c.inferCall(e)
	case *ast.InitExpression:
		return c.inferInit(e)
	case *ast.LambdaExpression:
		return c.inferLambda(e)
	case *ast.DotExpression:
		return c.inferDot(e)
	case *ast.CastExpression:
		return c.inferCast(e)
	case *ast.TypeSizeExpression:
		c.resolveType(e.Target)
		return types.Primitives[types.I64], nil
	case *ast.ValueSizeExpression:
		if _, err := c.inferExpr(e.Operand); err != nil {
			return nil, err
		}
		return types.Primitives[types.I64], nil
	case *ast.IndexExpression:
		return c.inferIndex(e)
	case *ast.EnumElementExpression:
		return c.inferEnumElement(e)
	case *ast.ArrayExpression:
		return c.inferArray(e)
	case *ast.StringExpression:
		return &types.PointerType{Base: types.Primitives[types.I8]}, nil
	case *ast.LiteralExpression:
		return c.inferLiteral(e)
	case *ast.NumberExpression:
		return c.inferNumber(e)
	case *ast.CharacterExpression:
		return types.Primitives[types.I8], nil
	case *ast.BoolExpression:
		return types.Primitives[types.I1], nil
	case *ast.NullExpression:
		return &types.NullType{}, nil
	case *ast.IfExpression:
		return c.inferIfExpression(e)
	case *ast.SwitchExpression:
		return c.inferSwitchExpression(e)
	default:
		return nil, c.errorf(expr.Span(), "unsupported expression %T", expr)
	}
}

func (c *Checker) inferTuple(e *ast.TupleExpression) (types.Type, error) {
	fields := make([]types.Type, len(e.Elements))
	for i, elem := range e.Elements {
		t, err := c.inferExpr(elem)
		if err != nil {
			return nil, err
		}
		fields[i] = t
	}
	return &types.TupleType{Name: mangle.TupleName(fields), FieldTypes: fields}, nil
}

// inferAssign implements §4.5's assignment rules: the target must be an
// index/dot/prefix-dereference expression or a plain mutable-variable
// literal; literal constants (char/number/bool/string/enum-element/null)
// are rejected outright, and writing through a read-only `*i8` string
// index is an error.
func (c *Checker) inferAssign(e *ast.AssignExpression) (types.Type, error) {
	switch t := e.Target.(type) {
	case *ast.LiteralExpression:
		// ok: a plain variable reference
		_ = t
	case *ast.IndexExpression:
		recvType, err := c.inferExpr(t.Receiver)
		if err != nil {
			return nil, err
		}
		if ptr, ok := recvType.(*types.PointerType); ok {
			if n, ok := ptr.Base.(*types.NumberType); ok && n.NumberKind == types.I8 {
				if _, isStringLit := t.Receiver.(*ast.StringExpression); isStringLit {
					return nil, c.errorf(e.Span(), "cannot assign through a string literal's read-only *i8 index")
				}
			}
		}
	case *ast.DotExpression, *ast.PrefixUnaryExpression:
		// ok: field write or write through a dereferenced pointer
	default:
		return nil, c.errorf(e.Target.Span(), "invalid assignment target")
	}

	targetType, err := c.inferExpr(e.Target)
	if err != nil {
		return nil, err
	}
	valueType, err := c.inferExpr(e.Value)
	if err != nil {
		return nil, err
	}
	if nul, ok := e.Value.(*ast.NullExpression); ok {
		if ptr, ok := targetType.(*types.PointerType); ok {
			nul.NullBaseType = ptr
			nul.SetType(ptr)
			return targetType, nil
		}
		return nil, c.errorf(nul.Span(), "null can only be assigned to a pointer target")
	}
	if !types.Equal(valueType, targetType) && !types.CanCast(valueType, targetType) {
		return nil, c.errorf(e.Span(), "cannot assign %s to target of type %s", typeString(valueType), typeString(targetType))
	}
	return targetType, nil
}

func (c *Checker) inferBinary(e *ast.BinaryExpression) (types.Type, error) {
	left, err := c.inferExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.inferExpr(e.Right)
	if err != nil {
		return nil, err
	}
	return c.resolveBinaryOperator(e.Span(), e.Op, left, right)
}

func (c *Checker) inferShift(e *ast.ShiftExpression) (types.Type, error) {
	left, err := c.inferExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.inferExpr(e.Right)
	if err != nil {
		return nil, err
	}
	if num, ok := e.Right.(*ast.NumberExpression); ok {
		if v, err := strconv.ParseInt(num.Raw, 10, 64); err == nil {
			if err := c.checkShiftOperand(e.Span(), left, v, true); err != nil {
				return nil, err
			}
		}
	}
	return c.resolveBinaryOperator(e.Span(), e.Op, left, right)
}

func (c *Checker) inferComparison(e *ast.ComparisonExpression) (types.Type, error) {
	left, err := c.inferExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.inferExpr(e.Right)
	if err != nil {
		return nil, err
	}
	return c.resolveBinaryOperator(e.Span(), e.Op, left, right)
}

func (c *Checker) inferLogical(e *ast.LogicalExpression) (types.Type, error) {
	left, err := c.inferExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.inferExpr(e.Right)
	if err != nil {
		return nil, err
	}
	return c.resolveBinaryOperator(e.Span(), e.Op, left, right)
}

func (c *Checker) inferPrefixUnary(e *ast.PrefixUnaryExpression) (types.Type, error) {
	operandType, err := c.inferExpr(e.Operand)
	if err != nil {
		return nil, err
	}
	fixity := mangle.Prefix
	return c.resolveUnaryOperator(e.Span(), e.Op, fixity, operandType)
}

func (c *Checker) inferPostfixUnary(e *ast.PostfixUnaryExpression) (types.Type, error) {
	operandType, err := c.inferExpr(e.Operand)
	if err != nil {
		return nil, err
	}
	return c.resolveUnaryOperator(e.Span(), e.Op, mangle.Postfix, operandType)
}

// inferCall resolves a call's callee: either a plain named function
// (possibly generic, triggering instantiation) or a function-typed
// value (a lambda stored in a variable/field). A lambda passed directly
// as a call argument must have zero synthesized captures. Argument
// types are not compared against the callee's parameter types here.
func (c *Checker) inferCall(e *ast.CallExpression) (types.Type, error) {
	argTypes := make([]types.Type, len(e.Args))
	for i, arg := range e.Args {
		t, err := c.inferExpr(arg)
		if err != nil {
			return nil, err
		}
		argTypes[i] = t
		if lam, ok := arg.(*ast.LambdaExpression); ok && len(lam.ImplicitParams) > 0 {
			return nil, c.errorf(arg.Span(), "a lambda passed directly as a call argument may not capture outer variables")
		}
	}

	if name, ok := e.Callee.(*ast.LiteralExpression); ok {
		if decl, ok := c.genericFunctions[name.Name]; ok {
			inst, err := c.instantiateGenericCall(e.Span(), decl, e.GenericArgs, argTypes)
			if err != nil {
				return nil, err
			}
			return inst.Return, nil
		}
		if ft, ok := c.typesTable.Lookup(name.Name); ok {
			if fn, ok := ft.(*types.FunctionType); ok {
				return fn.Return, nil
			}
		}
		return nil, c.errorf(e.Span(), "call to undeclared function %q", name.Name)
	}

	calleeType, err := c.inferExpr(e.Callee)
	if err != nil {
		return nil, err
	}
	fn, ok := calleeType.(*types.FunctionType)
	if !ok {
		return nil, c.errorf(e.Callee.Span(), "cannot call a value of type %s", typeString(calleeType))
	}
	return fn.Return, nil
}

func (c *Checker) inferInit(e *ast.InitExpression) (types.Type, error) {
	decl, ok := c.Structures[e.StructName]
	if !ok {
		return nil, c.errorf(e.Span(), "unknown struct %q", e.StructName)
	}
	var structType types.Type
	if decl.IsGeneric() {
		// Generic struct initializers rely on field-value inference to
		// recover the type arguments (§4.5's struct resolution applied at
		// an initializer rather than a declared-type site).
		env := make(map[string]types.Type)
		for _, f := range e.Fields {
			valueType, err := c.inferExpr(f.Value)
			if err != nil {
				return nil, err
			}
			for _, declField := range decl.Fields {
				if declField.Name == f.Name {
					inferType(declField.Type, valueType, env)
				}
			}
		}
		args := make([]types.Type, len(decl.GenericParamNames))
		for i, name := range decl.GenericParamNames {
			if bound, ok := env[name]; ok {
				args[i] = bound
			} else {
				return nil, c.errorf(e.Span(), "not enough information to infer generic parameter %q of %q", name, e.StructName)
			}
		}
		structType = c.resolveGenericStruct(e.StructName, args)
	} else {
		resolved, ok := c.Aliases.Lookup(e.StructName)
		if !ok {
			return nil, c.errorf(e.Span(), "unknown struct %q", e.StructName)
		}
		structType = resolved
		for _, f := range e.Fields {
			if _, err := c.inferExpr(f.Value); err != nil {
				return nil, err
			}
		}
	}
	return structType, nil
}

// inferLambda implements §4.5's capture synthesis: every identifier
// lookup inside the lambda body uses LookupWithLevel; a hit owned by a
// scope that is neither the lambda's own innermost scope nor the
// outermost global scope is captured once (added to the current
// lambdaImplicitParams frame and redefined in the lambda's own scope).
func (c *Checker) inferLambda(e *ast.LambdaExpression) (types.Type, error) {
	c.lambdaImplicitParams = append(c.lambdaImplicitParams, nil)
	savedInsideLambda := c.isInsideLambdaBody
	c.isInsideLambdaBody = true

	c.typesTable.Push()
	lambdaScopeDepth := c.typesTable.Depth()
	for _, p := range e.Params {
		c.typesTable.Define(p.Name, c.resolveType(p.Type))
	}

	params := make([]types.Type, len(e.Params))
	for i, p := range e.Params {
		params[i] = c.resolveType(p.Type)
	}

	var ret types.Type
	var bodyErr error
	if e.ExprBody != nil {
		ret, bodyErr = c.inferExpr(e.ExprBody)
	} else if e.Body != nil {
		c.returnTypesStack = append(c.returnTypesStack, nil)
		bodyErr = c.checkStatement(e.Body)
		c.returnTypesStack = c.returnTypesStack[:len(c.returnTypesStack)-1]
		ret = types.Void
	}

	captures := c.lambdaImplicitParams[len(c.lambdaImplicitParams)-1]
	c.lambdaImplicitParams = c.lambdaImplicitParams[:len(c.lambdaImplicitParams)-1]
	_ = lambdaScopeDepth

	c.typesTable.Pop()
	c.isInsideLambdaBody = savedInsideLambda

	if bodyErr != nil {
		return nil, bodyErr
	}

	e.ImplicitParams = captures
	fullParams := make([]types.Type, 0, len(captures)+len(params))
	for _, capture := range captures {
		fullParams = append(fullParams, capture.Type)
	}
	fullParams = append(fullParams, params...)

	return &types.FunctionType{
		Params: fullParams, Return: ret,
		ImplicitParamsCount: len(captures),
	}, nil
}

// captureIfFree implements the lookup-with-level half of capture
// synthesis; called by inferLiteral for identifier references inside a
// lambda body.
func (c *Checker) captureIfFree(name string) {
	if !c.isInsideLambdaBody || len(c.lambdaImplicitParams) == 0 {
		return
	}
	val, level, ok := c.typesTable.LookupWithLevel(name)
	if !ok {
		return
	}
	innermost := c.typesTable.Depth()
	outermost := 1
	if level == innermost || level == outermost {
		return
	}
	frameIdx := len(c.lambdaImplicitParams) - 1
	for _, p := range c.lambdaImplicitParams[frameIdx] {
		if p.Name == name {
			return
		}
	}
	c.lambdaImplicitParams[frameIdx] = append(c.lambdaImplicitParams[frameIdx], ast.Param{Name: name, Type: val})
	c.typesTable.Define(name, val)
}

func (c *Checker) inferDot(e *ast.DotExpression) (types.Type, error) {
	recvType, err := c.inferExpr(e.Receiver)
	if err != nil {
		return nil, err
	}
	base := recvType
	if ptr, ok := recvType.(*types.PointerType); ok {
		base = ptr.Base
	}
	st, ok := base.(*types.StructType)
	if !ok {
		return nil, c.errorf(e.Span(), "cannot access field %q on non-struct type %s", e.Field, typeString(recvType))
	}
	ft := st.FieldType(e.Field)
	if ft == nil {
		return nil, c.errorf(e.Span(), "struct %q has no field %q", st.Name, e.Field)
	}
	return ft, nil
}

func (c *Checker) inferCast(e *ast.CastExpression) (types.Type, error) {
	operandType, err := c.inferExpr(e.Operand)
	if err != nil {
		return nil, err
	}
	target := c.resolveType(e.Target)
	if types.Equal(operandType, target) {
		c.warnf(e.Span(), "cast to the same type %s has no effect", typeString(target))
		return target, nil
	}
	if !types.CanCast(operandType, target) {
		return nil, c.errorf(e.Span(), "cannot cast %s to %s", typeString(operandType), typeString(target))
	}
	return target, nil
}

func (c *Checker) inferIndex(e *ast.IndexExpression) (types.Type, error) {
	recvType, err := c.inferExpr(e.Receiver)
	if err != nil {
		return nil, err
	}
	if _, err := c.inferExpr(e.Index); err != nil {
		return nil, err
	}
	switch r := recvType.(type) {
	case *types.PointerType:
		return r.Base, nil
	case *types.StaticArrayType:
		return r.Element, nil
	}
	return nil, c.errorf(e.Span(), "cannot index into %s", typeString(recvType))
}

func (c *Checker) inferEnumElement(e *ast.EnumElementExpression) (types.Type, error) {
	found, ok := c.Aliases.Lookup(e.EnumName)
	if !ok {
		return nil, c.errorf(e.Span(), "unknown enum %q", e.EnumName)
	}
	enumType, ok := found.(*types.EnumType)
	if !ok {
		return nil, c.errorf(e.Span(), "%q is not an enum", e.EnumName)
	}
	if _, ok := enumType.Values[e.ElementName]; !ok {
		return nil, c.errorf(e.Span(), "enum %q has no element %q", e.EnumName, e.ElementName)
	}
	return &types.EnumElementType{EnumName: e.EnumName, ElementType: enumType.ElementType}, nil
}

// inferArray resolves an array literal's element type from its first
// element (every further element is checked for equality against it),
// and, when an @vec width was declared, cross-checks it against the
// literal element count (SPEC_FULL §D.5).
func (c *Checker) inferArray(e *ast.ArrayExpression) (types.Type, error) {
	if len(e.Elements) == 0 {
		return nil, c.errorf(e.Span(), "array literal must have at least one element to infer its type")
	}
	first, err := c.inferExpr(e.Elements[0])
	if err != nil {
		return nil, err
	}
	for _, elem := range e.Elements[1:] {
		t, err := c.inferExpr(elem)
		if err != nil {
			return nil, err
		}
		if !types.Equal(t, first) {
			return nil, c.errorf(elem.Span(), "array elements must share one type: expected %s, got %s", typeString(first), typeString(t))
		}
	}
	if e.HasVec && e.VecWidth != int64(len(e.Elements)) {
		return nil, c.errorf(e.Span(), "@vec(%d) does not match the literal's %d elements", e.VecWidth, len(e.Elements))
	}
	return &types.StaticArrayType{Element: first, Size: int64(len(e.Elements))}, nil
}

func (c *Checker) inferLiteral(e *ast.LiteralExpression) (types.Type, error) {
	c.captureIfFree(e.Name)
	if t, ok := c.typesTable.Lookup(e.Name); ok {
		return t, nil
	}
	if decl, ok := c.genericFunctions[e.Name]; ok {
		return c.prototypeFunctionType(decl.Proto), nil
	}
	return nil, c.errorf(e.Span(), "undeclared identifier %q", e.Name)
}

// inferNumber validates the literal's digits fit the width/signedness
// of its resolved NumberKind (§4.5's numeric-range check).
func (c *Checker) inferNumber(e *ast.NumberExpression) (types.Type, error) {
	k := e.Kind
	if k.IsFloat() {
		if _, err := strconv.ParseFloat(e.Raw, 64); err != nil {
			return nil, c.errorf(e.Span(), "invalid float literal %q", e.Raw)
		}
		return types.Primitives[k], nil
	}

	digits, base := e.Raw, 10
	if len(digits) > 2 && digits[0] == '0' {
		switch digits[1] {
		case 'x', 'X':
			digits, base = digits[2:], 16
		case 'o', 'O':
			digits, base = digits[2:], 8
		}
	}

	if k.IsSigned() {
		v, err := strconv.ParseInt(digits, base, 64)
		if err != nil {
			return nil, c.errorf(e.Span(), "integer literal %q does not fit in i64", e.Raw)
		}
		lo, hi := signedRange(k)
		if v < lo || v > hi {
			return nil, c.errorf(e.Span(), "integer literal %d out of range for %s [%d, %d]", v, k.String(), lo, hi)
		}
		return types.Primitives[k], nil
	}

	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return nil, c.errorf(e.Span(), "integer literal %q does not fit in u64", e.Raw)
	}
	hi := unsignedMax(k)
	if v > hi {
		return nil, c.errorf(e.Span(), "integer literal %d out of range for %s [0, %d]", v, k.String(), hi)
	}
	return types.Primitives[k], nil
}

func signedRange(k types.NumberKind) (int64, int64) {
	switch k.Width() {
	case 1:
		return 0, 1
	case 8:
		return math.MinInt8, math.MaxInt8
	case 16:
		return math.MinInt16, math.MaxInt16
	case 32:
		return math.MinInt32, math.MaxInt32
	default:
		return math.MinInt64, math.MaxInt64
	}
}

func unsignedMax(k types.NumberKind) uint64 {
	switch k.Width() {
	case 8:
		return math.MaxUint8
	case 16:
		return math.MaxUint16
	case 32:
		return math.MaxUint32
	default:
		return math.MaxUint64
	}
}

func (c *Checker) inferIfExpression(e *ast.IfExpression) (types.Type, error) {
	var result types.Type
	for _, b := range e.Branches {
		condType, err := c.inferExpr(b.Condition)
		if err != nil {
			return nil, err
		}
		if !isBool(condType) {
			return nil, c.errorf(b.Condition.Span(), "if-expression condition must be i1, got %s", typeString(condType))
		}
		vt, err := c.inferExpr(b.Value)
		if err != nil {
			return nil, err
		}
		if result == nil {
			result = vt
		} else if !types.Equal(result, vt) {
			return nil, c.errorf(b.Value.Span(), "if-expression branches must share one type: expected %s, got %s", typeString(result), typeString(vt))
		}
	}
	elseType, err := c.inferExpr(e.Else)
	if err != nil {
		return nil, err
	}
	if result != nil && !types.Equal(result, elseType) {
		return nil, c.errorf(e.Else.Span(), "if-expression else arm type %s does not match branch type %s", typeString(elseType), typeString(result))
	}
	return elseType, nil
}

func (c *Checker) inferSwitchExpression(e *ast.SwitchExpression) (types.Type, error) {
	argType, err := c.inferExpr(e.Argument)
	if err != nil {
		return nil, err
	}
	var result types.Type
	for _, kase := range e.Cases {
		for _, v := range kase.Values {
			vt, err := c.inferExpr(v)
			if err != nil {
				return nil, err
			}
			if !types.Equal(vt, argType) && !types.CanCast(vt, argType) {
				return nil, c.errorf(v.Span(), "switch-expression case type %s does not match argument type %s", typeString(vt), typeString(argType))
			}
		}
		vt, err := c.inferExpr(kase.Value)
		if err != nil {
			return nil, err
		}
		if result == nil {
			result = vt
		} else if !types.Equal(result, vt) {
			return nil, c.errorf(kase.Value.Span(), "switch-expression arms must share one type: expected %s, got %s", typeString(result), typeString(vt))
		}
	}
	elseType, err := c.inferExpr(e.Else)
	if err != nil {
		return nil, err
	}
	if result != nil && !types.Equal(result, elseType) {
		return nil, c.errorf(e.Else.Span(), "switch-expression else arm type %s does not match case type %s", typeString(elseType), typeString(result))
	}
	return elseType, nil
}
