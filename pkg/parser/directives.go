package parser

import (
	"errors"

	"github.com/amunlang/amun/pkg/token"
)

// parseCompleteDirective consumes an optional `@complete` directive
// immediately before a switch's scrutinee, marking it for the checker's
// exhaustiveness pass (SPEC_FULL §D.5).
func (p *Parser) parseCompleteDirective() bool {
	if !p.check(token.At) {
		return false
	}
	p.advance() // '@'
	tok, err := p.expect(token.Identifier, "directive name")
	if err != nil {
		return false
	}
	return tok.Literal == "complete"
}

// skipLineDirectives consumes `#line N`, `#column N`, `#filepath "..."`
// directives (debug-info remapping hints the original toolchain
// supports); Amun's Parser consumes and discards them without recording
// anything — the SourceManager span math stays keyed to the physical
// file/line/column the Tokenizer actually saw.
func (p *Parser) skipLineDirectives() {
	for p.check(token.FatHash) {
		p.advance() // '#'
		if !p.check(token.Identifier) {
			return
		}
		name := p.advance().Literal
		switch name {
		case "line", "column":
			if p.check(token.Number) {
				p.advance()
			}
		case "filepath":
			if p.check(token.String) {
				p.advance()
			}
		default:
			return
		}
	}
}

// parseVecDirective consumes an optional `@vec(width)` directive
// attached to an array literal, returning the declared width and
// whether one was present; the checker cross-checks it against the
// literal's actual element count (SPEC_FULL §D.5).
func (p *Parser) parseVecDirective() (width int64, present bool) {
	if !p.check(token.At) {
		return 0, false
	}
	saved := p.mark()
	p.advance() // '@'
	if !p.check(token.Identifier) {
		p.reset(saved)
		return 0, false
	}
	name := p.advance()
	if name.Literal != "vec" {
		p.reset(saved)
		return 0, false
	}
	if !p.match(token.LeftParen) {
		p.reset(saved)
		return 0, false
	}
	numTok, err := p.expect(token.Number, "vector width")
	if err != nil {
		p.reset(saved)
		return 0, false
	}
	if _, err := p.expect(token.RightParen, "to close @vec directive"); err != nil {
		p.reset(saved)
		return 0, false
	}
	w, convErr := parseDecimalInt(numTok.Literal)
	if convErr != nil {
		return 0, false
	}
	return w, true
}

var errNotDecimal = errors.New("not a decimal integer")

func parseDecimalInt(s string) (int64, error) {
	var v int64
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, errNotDecimal
		}
		v = v*10 + int64(s[i]-'0')
	}
	return v, nil
}
