package parser

import (
	"strconv"

	"github.com/amunlang/amun/pkg/ast"
	"github.com/amunlang/amun/pkg/token"
)

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch {
	case p.check(token.LeftBrace):
		return p.parseBlockStatement()
	case p.check(token.KeywordIf):
		return p.parseIfStatement()
	case p.check(token.KeywordSwitch):
		return p.parseSwitchStatement()
	case p.check(token.KeywordFor):
		return p.parseForStatement()
	case p.check(token.KeywordWhile):
		return p.parseWhileStatement()
	case p.check(token.KeywordReturn):
		return p.parseReturnStatement()
	case p.check(token.KeywordDefer):
		return p.parseDeferStatement()
	case p.check(token.KeywordBreak):
		return p.parseBreakStatement()
	case p.check(token.KeywordContinue):
		return p.parseContinueStatement()
	case p.check(token.KeywordConst), p.check(token.KeywordVar):
		return p.parseFieldDeclaration(false)
	case p.check(token.At) && p.next.Kind == token.Identifier && p.next.Literal == "complete":
		p.advance() // '@'
		p.advance() // 'complete'
		if !p.check(token.KeywordSwitch) {
			return nil, p.errorf(p.cur.Span, "expected switch after @complete")
		}
		s, err := p.parseSwitchStatement()
		if err != nil {
			return nil, err
		}
		s.(*ast.SwitchStatement).Complete = true
		return s, nil
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseBlockStatement() (*ast.BlockStatement, error) {
	start := p.cur.Span
	if _, err := p.expect(token.LeftBrace, "to open a block"); err != nil {
		return nil, err
	}
	var stmts []ast.Statement
	for !p.check(token.RightBrace) && !p.check(token.EndOfFile) {
		p.skipLineDirectives()
		if p.check(token.RightBrace) || p.check(token.EndOfFile) {
			break
		}
		s, err := p.parseStatement()
		if err != nil {
			p.synchronize()
			continue
		}
		stmts = append(stmts, s)
	}
	if _, err := p.expect(token.RightBrace, "to close a block"); err != nil {
		return nil, err
	}
	return &ast.BlockStatement{StmtBase: ast.StmtBase{Sp: start}, Statements: stmts}, nil
}

func (p *Parser) parseIfStatement() (ast.Statement, error) {
	start := p.cur.Span
	p.advance() // 'if'

	var branches []ast.IfBranch
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	branches = append(branches, ast.IfBranch{Condition: cond, Body: body})

	var elseBody ast.Statement
	for p.match(token.KeywordElse) {
		if p.match(token.KeywordIf) {
			c, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			b, err := p.parseBlockStatement()
			if err != nil {
				return nil, err
			}
			branches = append(branches, ast.IfBranch{Condition: c, Body: b})
			continue
		}
		elseBody, err = p.parseBlockStatement()
		if err != nil {
			return nil, err
		}
		break
	}

	return &ast.IfStatement{StmtBase: ast.StmtBase{Sp: start}, Branches: branches, Else: elseBody}, nil
}

func (p *Parser) parseSwitchStatement() (ast.Statement, error) {
	start := p.cur.Span
	p.advance() // 'switch'

	complete := p.parseCompleteDirective()

	arg, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LeftBrace, "to open switch body"); err != nil {
		return nil, err
	}

	var cases []ast.SwitchCase
	var elseBody ast.Statement
	for !p.check(token.RightBrace) && !p.check(token.EndOfFile) {
		if p.match(token.KeywordElse) {
			if _, err := p.expect(token.Arrow, "after 'else' in switch"); err != nil {
				return nil, err
			}
			elseBody, err = p.parseSwitchCaseBody()
			if err != nil {
				return nil, err
			}
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
		}
		if _, err := p.expect(token.Arrow, "after switch case values"); err != nil {
			return nil, err
		}
		body, err := p.parseSwitchCaseBody()
		if err != nil {
			return nil, err
		}
		cases = append(cases, ast.SwitchCase{Values: values, Body: body})
	}
	if _, err := p.expect(token.RightBrace, "to close switch body"); err != nil {
		return nil, err
	}

	return &ast.SwitchStatement{
		StmtBase: ast.StmtBase{Sp: start},
		Argument: arg,
		Cases:    cases,
		Else:     elseBody,
		Complete: complete,
	}, nil
}

// parseSwitchCaseBody accepts either a `{ ... }` block or a single
// statement terminated by ','.
func (p *Parser) parseSwitchCaseBody() (ast.Statement, error) {
	if p.check(token.LeftBrace) {
		return p.parseBlockStatement()
	}
	s, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	p.match(token.Comma)
	return s, nil
}

func (p *Parser) parseForStatement() (ast.Statement, error) {
	start := p.cur.Span
	p.advance() // 'for'

	if p.check(token.LeftBrace) {
		p.loopDepth++
		body, err := p.parseBlockStatement()
		p.loopDepth--
		if err != nil {
			return nil, err
		}
		return &ast.ForEverStatement{StmtBase: ast.StmtBase{Sp: start}, Body: body}, nil
	}

	// for-each/for-range: `for elem[, idx] in collection { ... }`. `in`
	// is not in the keyword table, so it lexes as an identifier and is
	// recognized contextually by lexeme here.
	if p.check(token.Identifier) && isContextualIn(p.next) {
		return p.parseForEachOrRange(start)
	}
	if p.check(token.Identifier) && p.next.Kind == token.Comma {
		return p.parseForEachOrRange(start)
	}

	p.loopDepth++
	cond, err := p.parseExpression()
	if err != nil {
		p.loopDepth--
		return nil, err
	}
	body, err := p.parseBlockStatement()
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{StmtBase: ast.StmtBase{Sp: start}, Condition: cond, Body: body}, nil
}

func isContextualIn(t token.Token) bool {
	return t.Kind == token.Identifier && t.Literal == "in"
}

func (p *Parser) parseForEachOrRange(start token.Span) (ast.Statement, error) {
	firstTok, err := p.expect(token.Identifier, "loop variable name")
	if err != nil {
		return nil, err
	}
	secondName := ""
	if p.match(token.Comma) {
		secondTok, err := p.expect(token.Identifier, "loop index name")
		if err != nil {
			return nil, err
		}
		secondName = secondTok.Literal
	}
	if _, err := p.expect(token.Identifier, "'in'"); err != nil { // consumes the contextual 'in'
		return nil, err
	}

	collection, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	// `for i in start..end { }` is a for-range; anything else with a
	// collection expression is a for-each over an indexable value.
	if p.match(token.DotDot) {
		end, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		var step ast.Expression
		if p.match(token.Colon) {
			step, err = p.parseExpression()
			if err != nil {
				return nil, err
			}
		}
		p.loopDepth++
		body, err := p.parseBlockStatement()
		p.loopDepth--
		if err != nil {
			return nil, err
		}
		return &ast.ForRangeStatement{
			StmtBase: ast.StmtBase{Sp: start},
			Name:     firstTok.Literal,
			Start:    collection,
			End:      end,
			Step:     step,
			Body:     body,
		}, nil
	}

	p.loopDepth++
	body, err := p.parseBlockStatement()
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	return &ast.ForEachStatement{
		StmtBase:    ast.StmtBase{Sp: start},
		ElementName: firstTok.Literal,
		IndexName:   secondName,
		Collection:  collection,
		Body:        body,
	}, nil
}

func (p *Parser) parseWhileStatement() (ast.Statement, error) {
	start := p.cur.Span
	p.advance() // 'while'
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.loopDepth++
	body, err := p.parseBlockStatement()
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{StmtBase: ast.StmtBase{Sp: start}, Condition: cond, Body: body}, nil
}

func (p *Parser) parseReturnStatement() (ast.Statement, error) {
	start := p.cur.Span
	p.advance() // 'return'
	var value ast.Expression
	if !p.check(token.Semicolon) && !p.check(token.RightBrace) {
		v, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		value = v
	}
	p.match(token.Semicolon)
	return &ast.ReturnStatement{StmtBase: ast.StmtBase{Sp: start}, Value: value}, nil
}

// parseDeferStatement parses `defer <call-expression> ;` (SPEC_FULL §D.1).
func (p *Parser) parseDeferStatement() (ast.Statement, error) {
	start := p.cur.Span
	p.advance() // 'defer'
	call, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, ok := call.(*ast.CallExpression); !ok {
		return nil, p.errorf(call.Span(), "defer requires a call expression")
	}
	p.match(token.Semicolon)
	return &ast.DeferStatement{StmtBase: ast.StmtBase{Sp: start}, Call: call}, nil
}

func (p *Parser) parseBreakStatement() (ast.Statement, error) {
	start := p.cur.Span
	p.advance() // 'break'
	n := 1
	if p.check(token.Number) {
		tok := p.advance()
		v, err := strconv.Atoi(tok.Literal)
		if err != nil || v < 1 {
			return nil, p.errorf(tok.Span, "break depth must be a positive integer")
		}
		n = v
	}
	if n > p.loopDepth {
		p.warnf(start, "break %d exceeds the enclosing loop nesting depth %d", n, p.loopDepth)
	}
	p.match(token.Semicolon)
	return &ast.BreakStatement{StmtBase: ast.StmtBase{Sp: start}, N: n}, nil
}

func (p *Parser) parseContinueStatement() (ast.Statement, error) {
	start := p.cur.Span
	p.advance() // 'continue'
	n := 1
	if p.check(token.Number) {
		tok := p.advance()
		v, err := strconv.Atoi(tok.Literal)
		if err != nil || v < 1 {
			return nil, p.errorf(tok.Span, "continue depth must be a positive integer")
		}
		n = v
	}
	if n > p.loopDepth {
		p.warnf(start, "continue %d exceeds the enclosing loop nesting depth %d", n, p.loopDepth)
	}
	p.match(token.Semicolon)
	return &ast.ContinueStatement{StmtBase: ast.StmtBase{Sp: start}, N: n}, nil
}

func (p *Parser) parseExpressionStatement() (ast.Statement, error) {
	start := p.cur.Span
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.match(token.Semicolon)
	return &ast.ExpressionStatement{StmtBase: ast.StmtBase{Sp: start}, Expr: expr}, nil
}
