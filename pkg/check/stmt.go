package check

import (
	"github.com/amunlang/amun/pkg/ast"
	"github.com/amunlang/amun/pkg/token"
	"github.com/amunlang/amun/pkg/types"
)

// checkStatement dispatches on every ast.Statement variant reachable
// inside a function body.
func (c *Checker) checkStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.BlockStatement:
		c.typesTable.Push()
		defer c.typesTable.Pop()
		for _, inner := range s.Statements {
			if err := c.checkStatement(inner); err != nil {
				return err
			}
		}
		return nil
	case *ast.FieldDeclaration:
		return c.checkFieldDeclaration(s)
	case *ast.IfStatement:
		return c.checkIfStatement(s)
	case *ast.SwitchStatement:
		return c.checkSwitchStatement(s)
	case *ast.ForRangeStatement:
		return c.checkForRangeStatement(s)
	case *ast.ForEachStatement:
		return c.checkForEachStatement(s)
	case *ast.ForEverStatement:
		return c.checkForEverStatement(s)
	case *ast.WhileStatement:
		return c.checkWhileStatement(s)
	case *ast.ReturnStatement:
		return c.checkReturnStatement(s)
	case *ast.DeferStatement:
		return c.checkDeferStatement(s)
	case *ast.BreakStatement:
		return c.checkLoopJump(s.Span(), "break", s.N)
	case *ast.ContinueStatement:
		return c.checkLoopJump(s.Span(), "continue", s.N)
	case *ast.ExpressionStatement:
		_, err := c.inferExpr(s.Expr)
		return err
	default:
		return c.errorf(stmt.Span(), "unsupported statement %T", stmt)
	}
}

func (c *Checker) checkIfStatement(s *ast.IfStatement) error {
	for _, b := range s.Branches {
		t, err := c.inferExpr(b.Condition)
		if err != nil {
			return err
		}
		if !isBool(t) {
			return c.errorf(b.Condition.Span(), "if condition must be i1, got %s", typeString(t))
		}
		if err := c.checkStatement(b.Body); err != nil {
			return err
		}
	}
	if s.Else != nil {
		return c.checkStatement(s.Else)
	}
	return nil
}

func (c *Checker) checkSwitchStatement(s *ast.SwitchStatement) error {
	argType, err := c.inferExpr(s.Argument)
	if err != nil {
		return err
	}

	var enumType *types.EnumType
	if et, ok := argType.(*types.EnumElementType); ok {
		if found, ok := c.Aliases.Lookup(et.EnumName); ok {
			enumType, _ = found.(*types.EnumType)
		}
	} else if et, ok := argType.(*types.EnumType); ok {
		enumType = et
	}

	seen := make(map[string]bool)
	for _, kase := range s.Cases {
		for _, v := range kase.Values {
			vt, err := c.inferExpr(v)
			if err != nil {
				return err
			}
			if !types.Equal(vt, argType) && !types.CanCast(vt, argType) {
				return c.errorf(v.Span(), "switch case type %s does not match argument type %s", typeString(vt), typeString(argType))
			}
			if elem, ok := v.(*ast.EnumElementExpression); ok {
				seen[elem.ElementName] = true
			}
		}
		if err := c.checkStatement(kase.Body); err != nil {
			return err
		}
	}
	if s.Else != nil {
		if err := c.checkStatement(s.Else); err != nil {
			return err
		}
	}

	if s.Complete && s.Else == nil && enumType != nil {
		var missing []string
		for _, name := range enumType.Order {
			if !seen[name] {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return c.errorf(s.Span(), "@complete switch on %s is missing cases: %v", enumType.Name, missing)
		}
	}
	return nil
}

func (c *Checker) checkForRangeStatement(s *ast.ForRangeStatement) error {
	if _, err := c.inferExpr(s.Start); err != nil {
		return err
	}
	if _, err := c.inferExpr(s.End); err != nil {
		return err
	}
	if s.Step != nil {
		if _, err := c.inferExpr(s.Step); err != nil {
			return err
		}
	}
	c.typesTable.Push()
	defer c.typesTable.Pop()
	if s.Name != "_" {
		c.typesTable.Define(s.Name, types.Primitives[types.I64])
	}
	c.loopDepth++
	defer func() { c.loopDepth-- }()
	return c.checkStatement(s.Body)
}

func (c *Checker) checkForEachStatement(s *ast.ForEachStatement) error {
	collType, err := c.inferExpr(s.Collection)
	if err != nil {
		return err
	}
	var elemType types.Type
	if arr, ok := collType.(*types.StaticArrayType); ok {
		elemType = arr.Element
	} else if ptr, ok := collType.(*types.PointerType); ok {
		elemType = ptr.Base
	} else {
		return c.errorf(s.Collection.Span(), "for-each requires an array or pointer collection, got %s", typeString(collType))
	}

	c.typesTable.Push()
	defer c.typesTable.Pop()
	if s.ElementName != "_" {
		c.typesTable.Define(s.ElementName, elemType)
	}
	if s.IndexName != "_" {
		c.typesTable.Define(s.IndexName, types.Primitives[types.I64])
	}
	c.loopDepth++
	defer func() { c.loopDepth-- }()
	return c.checkStatement(s.Body)
}

func (c *Checker) checkForEverStatement(s *ast.ForEverStatement) error {
	c.loopDepth++
	defer func() { c.loopDepth-- }()
	return c.checkStatement(s.Body)
}

func (c *Checker) checkWhileStatement(s *ast.WhileStatement) error {
	t, err := c.inferExpr(s.Condition)
	if err != nil {
		return err
	}
	if !isBool(t) {
		return c.errorf(s.Condition.Span(), "while condition must be i1, got %s", typeString(t))
	}
	c.loopDepth++
	defer func() { c.loopDepth-- }()
	return c.checkStatement(s.Body)
}

func (c *Checker) checkReturnStatement(s *ast.ReturnStatement) error {
	var expected types.Type
	if len(c.returnTypesStack) > 0 {
		expected = c.returnTypesStack[len(c.returnTypesStack)-1]
	}
	if s.Value == nil {
		if expected != nil && !isVoid(expected) {
			return c.errorf(s.Span(), "missing return value, expected %s", typeString(expected))
		}
		return nil
	}
	actual, err := c.inferExpr(s.Value)
	if err != nil {
		return err
	}
	if expected != nil && !isVoid(expected) && !types.Equal(actual, expected) && !types.CanCast(actual, expected) {
		return c.errorf(s.Value.Span(), "return type %s does not match function's declared return type %s", typeString(actual), typeString(expected))
	}
	return nil
}

func (c *Checker) checkDeferStatement(s *ast.DeferStatement) error {
	if _, ok := s.Call.(*ast.CallExpression); !ok {
		return c.errorf(s.Call.Span(), "defer requires a call expression")
	}
	_, err := c.inferExpr(s.Call)
	return err
}

func (c *Checker) checkLoopJump(span token.Span, keyword string, n int) error {
	if n < 1 {
		return c.errorf(span, "%s depth must be at least 1", keyword)
	}
	if c.loopDepth < n {
		return c.errorf(span, "%s %d exceeds enclosing loop depth %d", keyword, n, c.loopDepth)
	}
	return nil
}

func isBool(t types.Type) bool {
	n, ok := t.(*types.NumberType)
	return ok && n.NumberKind == types.I1
}

func typeString(t types.Type) string {
	if t == nil {
		return "<unknown>"
	}
	return t.String()
}

// returnsOnAllPaths implements §4.5's return-coverage analysis: a
// statement "covers" return iff it is itself a return, or a tail if
// with an else where every branch (and the else) covers, or a tail
// switch with an else where every case (and the else) covers.
func returnsOnAllPaths(stmt ast.Statement) bool {
	switch s := stmt.(type) {
	case *ast.ReturnStatement:
		return true
	case *ast.BlockStatement:
		if len(s.Statements) == 0 {
			return false
		}
		return returnsOnAllPaths(s.Statements[len(s.Statements)-1])
	case *ast.IfStatement:
		if s.Else == nil {
			return false
		}
		if !returnsOnAllPaths(s.Else) {
			return false
		}
		for _, b := range s.Branches {
			if !returnsOnAllPaths(b.Body) {
				return false
			}
		}
		return true
	case *ast.SwitchStatement:
		if s.Else == nil {
			return false
		}
		if !returnsOnAllPaths(s.Else) {
			return false
		}
		for _, kase := range s.Cases {
			if !returnsOnAllPaths(kase.Body) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
