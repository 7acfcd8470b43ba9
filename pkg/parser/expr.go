package parser

import (
	"github.com/amunlang/amun/pkg/ast"
	"github.com/amunlang/amun/pkg/token"
	"github.com/amunlang/amun/pkg/types"
)

// Expression precedence, lowest to highest binding (§4.4):
//
//	assignment  (right-assoc: = += -= *= /= %=)
//	logical or  (||)
//	logical and (&&)
//	bitwise or  (|)
//	bitwise xor (^)
//	bitwise and (&)
//	equality    (== !=)
//	relational  (< <= > >=)
//	shift       (<< >>, '>>' synthesized from two '>' tokens)
//	additive    (+ -)
//	multiplicative (* / %)
//	unary       (prefix - ! ~ & ++ --)
//	postfix     (. [] () ++ --)
//	primary
func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseIfOrSwitchOrAssignment()
}

// parseIfOrSwitchOrAssignment lets `if`/`switch` appear anywhere an
// expression can (SPEC_FULL §D.3), falling through to assignment
// otherwise.
func (p *Parser) parseIfOrSwitchOrAssignment() (ast.Expression, error) {
	switch {
	case p.check(token.KeywordIf):
		return p.parseIfExpression()
	case p.check(token.KeywordSwitch):
		return p.parseSwitchExpression()
	default:
		return p.parseAssignment()
	}
}

var assignOps = map[token.Kind]bool{
	token.Equal: true, token.PlusEqual: true, token.MinusEqual: true,
	token.StarEqual: true, token.SlashEqual: true, token.PercentEqual: true,
}

func (p *Parser) parseAssignment() (ast.Expression, error) {
	left, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if assignOps[p.cur.Kind] {
		op := p.advance()
		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &ast.AssignExpression{
			ExprBase: ast.ExprBase{Sp: left.Span().Merge(value.Span())},
			Target:   left, Op: op.Kind, Value: value,
		}, nil
	}
	return left, nil
}

func (p *Parser) parseLogicalOr() (ast.Expression, error) {
	left, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.check(token.PipePipe) {
		op := p.advance()
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalExpression{ExprBase: ast.ExprBase{Sp: left.Span().Merge(right.Span())}, Left: left, Op: op.Kind, Right: right}
	}
	return left, nil
}

func (p *Parser) parseLogicalAnd() (ast.Expression, error) {
	left, err := p.parseBitOr()
	if err != nil {
		return nil, err
	}
	for p.check(token.AmpAmp) {
		op := p.advance()
		right, err := p.parseBitOr()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalExpression{ExprBase: ast.ExprBase{Sp: left.Span().Merge(right.Span())}, Left: left, Op: op.Kind, Right: right}
	}
	return left, nil
}

func (p *Parser) parseBitOr() (ast.Expression, error) {
	left, err := p.parseBitXor()
	if err != nil {
		return nil, err
	}
	for p.check(token.Pipe) {
		op := p.advance()
		right, err := p.parseBitXor()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{ExprBase: ast.ExprBase{Sp: left.Span().Merge(right.Span())}, Left: left, Op: op.Kind, Right: right}
	}
	return left, nil
}

func (p *Parser) parseBitXor() (ast.Expression, error) {
	left, err := p.parseBitAnd()
	if err != nil {
		return nil, err
	}
	for p.check(token.Caret) {
		op := p.advance()
		right, err := p.parseBitAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{ExprBase: ast.ExprBase{Sp: left.Span().Merge(right.Span())}, Left: left, Op: op.Kind, Right: right}
	}
	return left, nil
}

func (p *Parser) parseBitAnd() (ast.Expression, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.check(token.Ampersand) {
		op := p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{ExprBase: ast.ExprBase{Sp: left.Span().Merge(right.Span())}, Left: left, Op: op.Kind, Right: right}
	}
	return left, nil
}

func (p *Parser) parseEquality() (ast.Expression, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.check(token.EqualEqual) || p.check(token.BangEqual) {
		op := p.advance()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = &ast.ComparisonExpression{ExprBase: ast.ExprBase{Sp: left.Span().Merge(right.Span())}, Left: left, Op: op.Kind, Right: right}
	}
	return left, nil
}

func (p *Parser) parseRelational() (ast.Expression, error) {
	left, err := p.parseShift()
	if err != nil {
		return nil, err
	}
	for p.check(token.Less) || p.check(token.LessEqual) || p.check(token.Greater) || p.check(token.GreaterEqual) {
		op := p.advance()
		right, err := p.parseShift()
		if err != nil {
			return nil, err
		}
		left = &ast.ComparisonExpression{ExprBase: ast.ExprBase{Sp: left.Span().Merge(right.Span())}, Left: left, Op: op.Kind, Right: right}
	}
	return left, nil
}

// parseShift handles << directly and synthesizes >> from two adjacent
// '>' tokens, since the lexer always emits `>>` as two Greater tokens
// so the type-parser can use a single '>' to close `F<T<U>>` (§4.2,
// §4.4). Outside that generic-closing context, two Greater tokens in a
// row is the right-shift operator.
func (p *Parser) parseShift() (ast.Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		if p.check(token.LeftShift) {
			op := p.advance()
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			left = &ast.ShiftExpression{ExprBase: ast.ExprBase{Sp: left.Span().Merge(right.Span())}, Left: left, Op: op.Kind, Right: right}
			continue
		}
		if p.check(token.Greater) && p.checkNext(token.Greater) {
			p.advance()
			p.advance()
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			left = &ast.ShiftExpression{ExprBase: ast.ExprBase{Sp: left.Span().Merge(right.Span())}, Left: left, Op: token.RightShift, Right: right}
			continue
		}
		return left, nil
	}
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(token.Plus) || p.check(token.Minus) {
		op := p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{ExprBase: ast.ExprBase{Sp: left.Span().Merge(right.Span())}, Left: left, Op: op.Kind, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.check(token.Star) || p.check(token.Slash) || p.check(token.Percent) {
		op := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{ExprBase: ast.ExprBase{Sp: left.Span().Merge(right.Span())}, Left: left, Op: op.Kind, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	switch {
	case p.check(token.Minus), p.check(token.Bang), p.check(token.Tilde), p.check(token.Ampersand), p.check(token.Star):
		op := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.PrefixUnaryExpression{ExprBase: ast.ExprBase{Sp: op.Span.Merge(operand.Span())}, Op: op.Kind, Operand: operand}, nil
	case p.check(token.PlusPlus), p.check(token.MinusMinus):
		op := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.PrefixUnaryExpression{ExprBase: ast.ExprBase{Sp: op.Span.Merge(operand.Span())}, Op: op.Kind, Operand: operand}, nil
	case p.check(token.KeywordCast):
		return p.parseCastExpression()
	case p.check(token.KeywordTypeSize):
		return p.parseTypeSizeExpression()
	case p.check(token.KeywordValueSize):
		return p.parseValueSizeExpression()
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parseCastExpression() (ast.Expression, error) {
	start := p.cur.Span
	p.advance() // 'cast'
	if _, err := p.expect(token.Less, "to open cast target type"); err != nil {
		return nil, err
	}
	target, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.consumeGenericArgsCloser(start); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LeftParen, "to open cast operand"); err != nil {
		return nil, err
	}
	operand, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	end, err := p.expect(token.RightParen, "to close cast operand")
	if err != nil {
		return nil, err
	}
	return &ast.CastExpression{ExprBase: ast.ExprBase{Sp: start.Merge(end.Span)}, Operand: operand, Target: target}, nil
}

func (p *Parser) parseTypeSizeExpression() (ast.Expression, error) {
	start := p.cur.Span
	p.advance() // 'type_size'
	if _, err := p.expect(token.LeftParen, "to open type_size operand"); err != nil {
		return nil, err
	}
	target, err := p.parseType()
	if err != nil {
		return nil, err
	}
	end, err := p.expect(token.RightParen, "to close type_size operand")
	if err != nil {
		return nil, err
	}
	return &ast.TypeSizeExpression{ExprBase: ast.ExprBase{Sp: start.Merge(end.Span)}, Target: target}, nil
}

func (p *Parser) parseValueSizeExpression() (ast.Expression, error) {
	start := p.cur.Span
	p.advance() // 'value_size'
	if _, err := p.expect(token.LeftParen, "to open value_size operand"); err != nil {
		return nil, err
	}
	operand, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	end, err := p.expect(token.RightParen, "to close value_size operand")
	if err != nil {
		return nil, err
	}
	return &ast.ValueSizeExpression{ExprBase: ast.ExprBase{Sp: start.Merge(end.Span)}, Operand: operand}, nil
}

func (p *Parser) parsePostfix() (ast.Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.check(token.Dot):
			p.advance()
			fieldTok, err := p.expect(token.Identifier, "field name")
			if err != nil {
				return nil, err
			}
			expr = &ast.DotExpression{ExprBase: ast.ExprBase{Sp: expr.Span().Merge(fieldTok.Span)}, Receiver: expr, Field: fieldTok.Literal}

		case p.check(token.LeftBracket):
			p.advance()
			idx, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			end, err := p.expect(token.RightBracket, "to close index expression")
			if err != nil {
				return nil, err
			}
			expr = &ast.IndexExpression{ExprBase: ast.ExprBase{Sp: expr.Span().Merge(end.Span)}, Receiver: expr, Index: idx}

		case p.check(token.LeftParen):
			args, end, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			expr = &ast.CallExpression{ExprBase: ast.ExprBase{Sp: expr.Span().Merge(end)}, Callee: expr, Args: args}

		case p.check(token.PlusPlus), p.check(token.MinusMinus):
			op := p.advance()
			expr = &ast.PostfixUnaryExpression{ExprBase: ast.ExprBase{Sp: expr.Span().Merge(op.Span)}, Operand: expr, Op: op.Kind}

		case p.check(token.Less):
			generics, err := p.tryParseGenericCallArgs()
			if err != nil {
				return nil, err
			}
			if generics == nil {
				return expr, nil
			}
			args, end, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			expr = &ast.CallExpression{ExprBase: ast.ExprBase{Sp: expr.Span().Merge(end)}, Callee: expr, Args: args, GenericArgs: generics}

		default:
			return expr, nil
		}
	}
}

// tryParseGenericCallArgs speculatively parses `<T, U, ...>` followed
// immediately by `(`, rolling back if that fails — the only reliable
// way to tell a generic call from a less-than comparison with this
// grammar (§4.4 lists both as using the same token).
func (p *Parser) tryParseGenericCallArgs() ([]types.Type, error) {
	saved := p.mark()
	p.advance() // '<'
	var args []types.Type
	ok := true
	for !p.isGenericArgsCloser() {
		t, err := p.parseType()
		if err != nil {
			ok = false
			break
		}
		args = append(args, t)
		if !p.match(token.Comma) {
			break
		}
	}
	if ok {
		if err := p.consumeGenericArgsCloser(saved.cur.Span); err != nil {
			ok = false
		}
	}
	if ok && p.check(token.LeftParen) {
		return args, nil
	}
	p.reset(saved)
	return nil, nil
}

func (p *Parser) parseArgList() ([]ast.Expression, token.Span, error) {
	p.advance() // '('
	var args []ast.Expression
	for !p.check(token.RightParen) {
		a, err := p.parseExpression()
		if err != nil {
			return nil, token.Span{}, err
		}
		args = append(args, a)
		if !p.match(token.Comma) {
			break
		}
	}
	end, err := p.expect(token.RightParen, "to close call arguments")
	if err != nil {
		return nil, token.Span{}, err
	}
	return args, end.Span, nil
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	switch {
	case p.check(token.Number):
		return p.parseNumberLiteral()
	case p.check(token.String):
		tok := p.advance()
		return &ast.StringExpression{ExprBase: ast.ExprBase{Sp: tok.Span}, Value: tok.Literal}, nil
	case p.check(token.Character):
		tok := p.advance()
		var b byte
		if len(tok.Literal) > 0 {
			b = tok.Literal[0]
		}
		return &ast.CharacterExpression{ExprBase: ast.ExprBase{Sp: tok.Span}, Value: b}, nil
	case p.check(token.KeywordTrue):
		tok := p.advance()
		return &ast.BoolExpression{ExprBase: ast.ExprBase{Sp: tok.Span}, Value: true}, nil
	case p.check(token.KeywordFalse):
		tok := p.advance()
		return &ast.BoolExpression{ExprBase: ast.ExprBase{Sp: tok.Span}, Value: false}, nil
	case p.check(token.KeywordNull):
		tok := p.advance()
		return &ast.NullExpression{ExprBase: ast.ExprBase{Sp: tok.Span}}, nil
	case p.check(token.LeftParen):
		return p.parseParenOrTuple()
	case p.check(token.LeftBracket):
		return p.parseArrayExpression()
	case p.check(token.At):
		width, ok := p.parseVecDirective()
		if !ok || !p.check(token.LeftBracket) {
			return nil, p.errorf(p.cur.Span, "expected an array literal after @vec")
		}
		arr, err := p.parseArrayExpression()
		if err != nil {
			return nil, err
		}
		a := arr.(*ast.ArrayExpression)
		a.HasVec, a.VecWidth = true, width
		return a, nil
	case p.check(token.KeywordFun):
		return p.parseLambdaExpression()
	case p.check(token.Identifier):
		return p.parseIdentifierLed()
	default:
		return nil, p.errorf(p.cur.Span, "expected an expression but found %s", p.cur.Kind)
	}
}

func (p *Parser) parseNumberLiteral() (ast.Expression, error) {
	tok := p.advance()
	raw, kind, hasSuffix := splitNumericLiteral(tok.Literal)
	return &ast.NumberExpression{
		ExprBase:          ast.ExprBase{Sp: tok.Span},
		Raw:               raw,
		Kind:              kind,
		HasExplicitSuffix: hasSuffix,
	}, nil
}

// splitNumericLiteral separates the lexer's raw literal (digits plus an
// optional ":suffix" marker, see lexer.scanNumber) into digits and a
// resolved NumberKind, defaulting to i64/f64 when unsuffixed (§3).
func splitNumericLiteral(literal string) (raw string, kind types.NumberKind, hasSuffix bool) {
	isFloat := false
	body := literal
	for i := 0; i < len(literal); i++ {
		if literal[i] == ':' {
			body = literal[:i]
			suffix := literal[i+1:]
			if k, ok := numericSuffixKind(suffix); ok {
				return body, k, true
			}
			if suffix == "f64-implicit" {
				isFloat = true
			}
			break
		}
	}
	if isFloat {
		return body, types.F64, false
	}
	for i := 0; i < len(body); i++ {
		if body[i] == '.' {
			return body, types.F64, false
		}
	}
	return body, types.I64, false
}

func numericSuffixKind(suffix string) (types.NumberKind, bool) {
	switch suffix {
	case "i1":
		return types.I1, true
	case "i8":
		return types.I8, true
	case "i16":
		return types.I16, true
	case "i32":
		return types.I32, true
	case "i64":
		return types.I64, true
	case "u8":
		return types.U8, true
	case "u16":
		return types.U16, true
	case "u32":
		return types.U32, true
	case "u64":
		return types.U64, true
	case "f32":
		return types.F32, true
	case "f64":
		return types.F64, true
	default:
		return 0, false
	}
}

// parseParenOrTuple parses `(expr)` (a plain grouping) or `(e1, e2,
// ...)` (a tuple expression, SPEC_FULL §D.2).
func (p *Parser) parseParenOrTuple() (ast.Expression, error) {
	start := p.cur.Span
	p.advance() // '('
	first, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.check(token.Comma) {
		end, err := p.expect(token.RightParen, "to close grouped expression")
		if err != nil {
			return nil, err
		}
		return &ast.GroupExpression{ExprBase: ast.ExprBase{Sp: start.Merge(end.Span)}, Inner: first}, nil
	}
	elems := []ast.Expression{first}
	for p.match(token.Comma) {
		if p.check(token.RightParen) {
			break
		}
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	end, err := p.expect(token.RightParen, "to close tuple expression")
	if err != nil {
		return nil, err
	}
	return &ast.TupleExpression{ExprBase: ast.ExprBase{Sp: start.Merge(end.Span)}, Elements: elems}, nil
}

// parseArrayExpression parses `[e1, e2, ...]` (SPEC_FULL §D.2).
func (p *Parser) parseArrayExpression() (ast.Expression, error) {
	start := p.cur.Span
	p.advance() // '['
	var elems []ast.Expression
	for !p.check(token.RightBracket) {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if !p.match(token.Comma) {
			break
		}
	}
	end, err := p.expect(token.RightBracket, "to close array expression")
	if err != nil {
		return nil, err
	}
	return &ast.ArrayExpression{ExprBase: ast.ExprBase{Sp: start.Merge(end.Span)}, Elements: elems}, nil
}

// parseLambdaExpression parses `fun (params) [-> R] { ... }` or
// `fun (params) [-> R] = expr` as a first-class value. Implicit capture
// parameters are synthesized later by the checker (§5).
func (p *Parser) parseLambdaExpression() (ast.Expression, error) {
	start := p.cur.Span
	p.advance() // 'fun'
	params, _, _, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	if p.match(token.Arrow) {
		if _, err := p.parseType(); err != nil {
			return nil, err
		}
	}
	if p.match(token.Equal) {
		body, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.LambdaExpression{ExprBase: ast.ExprBase{Sp: start.Merge(body.Span())}, Params: params, ExprBody: body}, nil
	}
	body, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	return &ast.LambdaExpression{ExprBase: ast.ExprBase{Sp: start.Merge(body.Span())}, Params: params, Body: body}, nil
}

// parseIdentifierLed parses every primary form that starts with an
// identifier: a plain reference, `Enum.Element`, or a struct
// initializer `Name { .field = value, ... }`.
func (p *Parser) parseIdentifierLed() (ast.Expression, error) {
	nameTok := p.advance()

	if p.check(token.Dot) && p.isEnumName(nameTok.Literal) {
		p.advance()
		elemTok, err := p.expect(token.Identifier, "enum element name")
		if err != nil {
			return nil, err
		}
		return &ast.EnumElementExpression{
			ExprBase:    ast.ExprBase{Sp: nameTok.Span.Merge(elemTok.Span)},
			EnumName:    nameTok.Literal,
			ElementName: elemTok.Literal,
		}, nil
	}

	if p.check(token.LeftBrace) && p.isStructName(nameTok.Literal) {
		return p.parseStructInit(nameTok)
	}

	return &ast.LiteralExpression{ExprBase: ast.ExprBase{Sp: nameTok.Span}, Name: nameTok.Literal}, nil
}

func (p *Parser) isEnumName(name string) bool {
	_, ok := p.Enumerations[name]
	return ok
}

func (p *Parser) isStructName(name string) bool {
	_, ok := p.Structures[name]
	return ok
}

func (p *Parser) parseStructInit(nameTok token.Token) (ast.Expression, error) {
	p.advance() // '{'
	var fields []ast.InitField
	for !p.check(token.RightBrace) && !p.check(token.EndOfFile) {
		if _, err := p.expect(token.Dot, "before struct initializer field name"); err != nil {
			return nil, err
		}
		fieldTok, err := p.expect(token.Identifier, "struct initializer field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Equal, "after struct initializer field name"); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.InitField{Name: fieldTok.Literal, Value: value})
		if !p.match(token.Comma) {
			break
		}
	}
	end, err := p.expect(token.RightBrace, "to close struct initializer")
	if err != nil {
		return nil, err
	}
	return &ast.InitExpression{
		ExprBase:   ast.ExprBase{Sp: nameTok.Span.Merge(end.Span)},
		StructName: nameTok.Literal,
		Fields:     fields,
	}, nil
}

// parseIfExpression parses the expression form of if (SPEC_FULL §D.3):
// `if cond { value } else if cond { value } ... else { value }` — an
// else arm is mandatory so every branch yields a value.
func (p *Parser) parseIfExpression() (ast.Expression, error) {
	start := p.cur.Span
	p.advance() // 'if'

	var branches []ast.IfExprBranch
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LeftBrace, "to open if-expression branch"); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RightBrace, "to close if-expression branch"); err != nil {
		return nil, err
	}
	branches = append(branches, ast.IfExprBranch{Condition: cond, Value: value})

	for p.match(token.KeywordElse) {
		if p.match(token.KeywordIf) {
			c, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.LeftBrace, "to open if-expression branch"); err != nil {
				return nil, err
			}
			v, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RightBrace, "to close if-expression branch"); err != nil {
				return nil, err
			}
			branches = append(branches, ast.IfExprBranch{Condition: c, Value: v})
			continue
		}
		if _, err := p.expect(token.LeftBrace, "to open if-expression else arm"); err != nil {
			return nil, err
		}
		elseVal, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		end, err := p.expect(token.RightBrace, "to close if-expression else arm")
		if err != nil {
			return nil, err
		}
		return &ast.IfExpression{ExprBase: ast.ExprBase{Sp: start.Merge(end.Span)}, Branches: branches, Else: elseVal}, nil
	}

	return nil, p.errorf(start, "if-expression requires a final 'else' arm")
}

// parseSwitchExpression parses the expression form of switch (SPEC_FULL
// §D.3): `switch arg { v1, v2 -> value, ... else -> value }`.
func (p *Parser) parseSwitchExpression() (ast.Expression, error) {
	start := p.cur.Span
	p.advance() // 'switch'
	arg, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LeftBrace, "to open switch-expression body"); err != nil {
		return nil, err
	}
	var cases []ast.SwitchExprCase
	var elseVal ast.Expression
	for !p.check(token.RightBrace) && !p.check(token.EndOfFile) {
		if p.match(token.KeywordElse) {
			if _, err := p.expect(token.Arrow, "after 'else' in switch-expression"); err != nil {
				return nil, err
			}
			elseVal, err = p.parseExpression()
			if err != nil {
				return nil, err
			}
			p.match(token.Comma)
			continue
		}
		var values []ast.Expression
		for {
			v, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
			if !p.match(token.Comma) {
				break
			}
			if p.check(token.Arrow) {
				break
			}
		}
		if _, err := p.expect(token.Arrow, "after switch-expression case values"); err != nil {
			return nil, err
		}
		val, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		cases = append(cases, ast.SwitchExprCase{Values: values, Value: val})
		p.match(token.Comma)
	}
	end, err := p.expect(token.RightBrace, "to close switch-expression body")
	if err != nil {
		return nil, err
	}
	if elseVal == nil {
		return nil, p.errorf(start, "switch-expression requires an 'else' arm")
	}
	return &ast.SwitchExpression{ExprBase: ast.ExprBase{Sp: start.Merge(end.Span)}, Argument: arg, Cases: cases, Else: elseVal}, nil
}
