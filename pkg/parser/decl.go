package parser

import (
	"strconv"

	"github.com/amunlang/amun/pkg/ast"
	"github.com/amunlang/amun/pkg/mangle"
	"github.com/amunlang/amun/pkg/token"
	"github.com/amunlang/amun/pkg/types"
)

// parseFieldDeclaration parses `const`/`var` name [: T] [= value] ';'.
// At top level (isGlobal) a value-less `var` still requires a type.
func (p *Parser) parseFieldDeclaration(isGlobal bool) (ast.Statement, error) {
	start := p.cur.Span
	isConst := p.check(token.KeywordConst)
	p.advance() // 'const'/'var'

	nameTok, err := p.expect(token.Identifier, "declaration name")
	if err != nil {
		return nil, err
	}

	var declared types.Type
	if p.match(token.Colon) {
		declared, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}

	var value ast.Expression
	if p.match(token.Equal) {
		value, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}

	if declared == nil && value == nil {
		return nil, p.errorf(nameTok.Span, "declaration of %q needs a type or an initializer", nameTok.Literal)
	}
	p.match(token.Semicolon)

	return &ast.FieldDeclaration{
		StmtBase:     ast.StmtBase{Sp: start},
		Name:         nameTok.Literal,
		DeclaredType: declared,
		Value:        value,
		IsConst:      isConst,
		IsGlobal:     isGlobal,
	}, nil
}

// parseParamList parses `( name: T, name: T, ... [, name: T...] )`.
func (p *Parser) parseParamList() ([]ast.Param, bool, types.Type, error) {
	if _, err := p.expect(token.LeftParen, "to open parameter list"); err != nil {
		return nil, false, nil, err
	}
	var params []ast.Param
	hasVarargs := false
	var varargsType types.Type
	for !p.check(token.RightParen) {
		nameTok, err := p.expect(token.Identifier, "parameter name")
		if err != nil {
			return nil, false, nil, err
		}
		if p.match(token.DotDot) {
			if _, err := p.expect(token.Colon, "after varargs parameter name"); err != nil {
				return nil, false, nil, err
			}
			vt, err := p.parseType()
			if err != nil {
				return nil, false, nil, err
			}
			hasVarargs = true
			varargsType = vt
			_ = nameTok
			break
		}
		if _, err := p.expect(token.Colon, "after parameter name"); err != nil {
			return nil, false, nil, err
		}
		t, err := p.parseType()
		if err != nil {
			return nil, false, nil, err
		}
		params = append(params, ast.Param{Name: nameTok.Literal, Type: t})
		if !p.match(token.Comma) {
			break
		}
	}
	if _, err := p.expect(token.RightParen, "to close parameter list"); err != nil {
		return nil, false, nil, err
	}
	return params, hasVarargs, varargsType, nil
}

func (p *Parser) parseGenericParamNames() ([]string, error) {
	if !p.match(token.Less) {
		return nil, nil
	}
	var names []string
	for !p.isGenericArgsCloser() {
		nameTok, err := p.expect(token.Identifier, "generic parameter name")
		if err != nil {
			return nil, err
		}
		names = append(names, nameTok.Literal)
		if !p.match(token.Comma) {
			break
		}
	}
	if err := p.consumeGenericArgsCloser(p.cur.Span); err != nil {
		return nil, err
	}
	return names, nil
}

// parseFunctionLike handles `extern fun`, `intrinsic fun`, and ordinary
// `fun` declarations (prototype-only or with a block/expression body).
func (p *Parser) parseFunctionLike() (ast.Statement, error) {
	start := p.cur.Span
	isExtern := p.match(token.KeywordExtern)
	isIntrinsic := false
	if !isExtern {
		isIntrinsic = p.match(token.KeywordIntrinsic)
	}
	if _, err := p.expect(token.KeywordFun, "to start a function declaration"); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.Identifier, "function name")
	if err != nil {
		return nil, err
	}

	generics, err := p.parseGenericParamNames()
	if err != nil {
		return nil, err
	}
	params, hasVarargs, varargsType, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	ret := types.Type(types.Void)
	if p.match(token.Arrow) {
		ret, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}

	proto := &ast.Prototype{
		StmtBase:     ast.StmtBase{Sp: start},
		Name:         nameTok.Literal,
		Params:       params,
		Return:       ret,
		HasVarargs:   hasVarargs,
		VarargsType:  varargsType,
		IsExternal:   isExtern,
		IsIntrinsic:  isIntrinsic,
		GenericNames: generics,
	}
	p.Functions[proto.Name] = proto

	if isExtern || isIntrinsic {
		p.match(token.Semicolon)
		return proto, nil
	}

	if p.match(token.Equal) {
		body, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		p.match(token.Semicolon)
		return &ast.FunctionDeclaration{StmtBase: ast.StmtBase{Sp: start}, Proto: proto, ExprBody: body}, nil
	}

	if !p.check(token.LeftBrace) {
		p.match(token.Semicolon)
		return proto, nil // prototype-only declaration
	}
	body, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDeclaration{StmtBase: ast.StmtBase{Sp: start}, Proto: proto, Body: body}, nil
}

// parseOperatorFunctionDeclaration parses
// `operator [prefix|postfix] <op> (params) -> R { ... }` (§4.3).
func (p *Parser) parseOperatorFunctionDeclaration() (ast.Statement, error) {
	start := p.cur.Span
	p.advance() // 'operator'

	fixity := ast.Infix
	switch {
	case p.match(token.KeywordPrefix):
		fixity = ast.Prefix
	case p.match(token.KeywordPostfix):
		fixity = ast.Postfix
	case p.match(token.KeywordInfix):
		fixity = ast.Infix
	}

	opTok := p.advance()
	opStr, ok := opTokenText(opTok.Kind)
	if !ok {
		return nil, p.errorf(opTok.Span, "%s is not an overloadable operator", opTok.Kind)
	}
	if _, ok := mangle.OperatorWord(opStr); !ok {
		return nil, p.errorf(opTok.Span, "%q is not an overloadable operator", opStr)
	}

	params, hasVarargs, varargsType, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	ret := types.Type(types.Void)
	if p.match(token.Arrow) {
		ret, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}

	mangledFixity := mangle.Infix
	switch fixity {
	case ast.Prefix:
		mangledFixity = mangle.Prefix
	case ast.Postfix:
		mangledFixity = mangle.Postfix
	}
	paramTypes := make([]types.Type, len(params))
	for i, pm := range params {
		paramTypes[i] = pm.Type
	}
	proto := &ast.Prototype{
		StmtBase:    ast.StmtBase{Sp: start},
		Name:        mangle.OperatorFunctionName(opStr, mangledFixity, paramTypes),
		Params:      params,
		Return:      ret,
		HasVarargs:  hasVarargs,
		VarargsType: varargsType,
	}
	p.Functions[proto.Name] = proto

	decl := &ast.OperatorFunctionDeclaration{
		StmtBase: ast.StmtBase{Sp: start},
		Operator: opStr,
		Fixity:   fixity,
		Proto:    proto,
	}

	if p.match(token.Equal) {
		decl.ExprBody, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
		p.match(token.Semicolon)
		return decl, nil
	}
	decl.Body, err = p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	return decl, nil
}

// opTokenText maps the punctuation-kind spelling of an operator token
// back to its canonical textual form for mangling lookups.
func opTokenText(k token.Kind) (string, bool) {
	switch k {
	case token.Plus:
		return "+", true
	case token.Minus:
		return "-", true
	case token.Star:
		return "*", true
	case token.Slash:
		return "/", true
	case token.Percent:
		return "%", true
	case token.EqualEqual:
		return "==", true
	case token.BangEqual:
		return "!=", true
	case token.Less:
		return "<", true
	case token.LessEqual:
		return "<=", true
	case token.Greater:
		return ">", true
	case token.GreaterEqual:
		return ">=", true
	case token.Ampersand:
		return "&", true
	case token.Pipe:
		return "|", true
	case token.Caret:
		return "^", true
	case token.LeftShift:
		return "<<", true
	case token.RightShift:
		return ">>", true
	case token.Bang:
		return "!", true
	case token.Tilde:
		return "~", true
	default:
		return "", false
	}
}

// parseStructDeclaration parses `[packed] struct Name [<Generics>] { field: T, ... }`.
func (p *Parser) parseStructDeclaration() (ast.Statement, error) {
	start := p.cur.Span
	isPacked := p.match(token.KeywordPacked)
	if _, err := p.expect(token.KeywordStruct, "to start a struct declaration"); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.Identifier, "struct name")
	if err != nil {
		return nil, err
	}
	generics, err := p.parseGenericParamNames()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.LeftBrace, "to open struct body"); err != nil {
		return nil, err
	}
	var fields []ast.StructField
	for !p.check(token.RightBrace) && !p.check(token.EndOfFile) {
		fieldName, err := p.expect(token.Identifier, "struct field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Colon, "after struct field name"); err != nil {
			return nil, err
		}
		fieldType, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.StructField{Name: fieldName.Literal, Type: fieldType})
		if !p.match(token.Comma) {
			break
		}
	}
	if _, err := p.expect(token.RightBrace, "to close struct body"); err != nil {
		return nil, err
	}

	decl := &ast.StructDeclaration{
		StmtBase:          ast.StmtBase{Sp: start},
		Name:              nameTok.Literal,
		Fields:            fields,
		GenericParamNames: generics,
		IsPacked:          isPacked,
	}
	p.Structures[decl.Name] = decl

	fieldNames := make([]string, len(fields))
	fieldTypes := make([]types.Type, len(fields))
	for i, f := range fields {
		fieldNames[i] = f.Name
		fieldTypes[i] = f.Type
	}
	p.Aliases.Define(decl.Name, &types.StructType{
		Name:              decl.Name,
		FieldNames:        fieldNames,
		FieldTypes:        fieldTypes,
		GenericParamNames: generics,
		IsPacked:          isPacked,
		IsGeneric:         decl.IsGeneric(),
	})

	return decl, nil
}

// parseEnumDeclaration parses `enum Name [: ElementType] { A, B = 3, ... }`.
func (p *Parser) parseEnumDeclaration() (ast.Statement, error) {
	start := p.cur.Span
	p.advance() // 'enum'
	nameTok, err := p.expect(token.Identifier, "enum name")
	if err != nil {
		return nil, err
	}
	elementKind := types.I32
	if p.match(token.Colon) {
		elemTok, err := p.expect(token.Identifier, "enum element type")
		if err != nil {
			return nil, err
		}
		nt, ok := p.Aliases.Lookup(elemTok.Literal)
		if !ok {
			return nil, p.errorf(elemTok.Span, "unknown enum element type %q", elemTok.Literal)
		}
		numType, ok := nt.(*types.NumberType)
		if !ok {
			return nil, p.errorf(elemTok.Span, "enum element type must be a number type")
		}
		elementKind = numType.NumberKind
	}

	if _, err := p.expect(token.LeftBrace, "to open enum body"); err != nil {
		return nil, err
	}
	var members []ast.EnumMember
	next := int64(0)
	for !p.check(token.RightBrace) && !p.check(token.EndOfFile) {
		memberTok, err := p.expect(token.Identifier, "enum member name")
		if err != nil {
			return nil, err
		}
		value := next
		if p.match(token.Equal) {
			numTok, err := p.expect(token.Number, "enum member value")
			if err != nil {
				return nil, err
			}
			value, err = strconv.ParseInt(numTok.Literal, 10, 64)
			if err != nil {
				return nil, p.errorf(numTok.Span, "invalid enum member value %q", numTok.Literal)
			}
		}
		members = append(members, ast.EnumMember{Name: memberTok.Literal, Value: value})
		next = value + 1
		if !p.match(token.Comma) {
			break
		}
	}
	if _, err := p.expect(token.RightBrace, "to close enum body"); err != nil {
		return nil, err
	}

	decl := &ast.EnumDeclaration{
		StmtBase:    ast.StmtBase{Sp: start},
		Name:        nameTok.Literal,
		Members:     members,
		ElementType: elementKind,
	}
	p.Enumerations[decl.Name] = decl

	values := make(map[string]int64, len(members))
	order := make([]string, len(members))
	for i, m := range members {
		values[m.Name] = m.Value
		order[i] = m.Name
	}
	p.Aliases.Define(decl.Name, &types.EnumType{
		Name:        decl.Name,
		Values:      values,
		Order:       order,
		ElementType: types.Primitives[elementKind],
	})

	return decl, nil
}
