// Package lexer implements the Tokenizer (§4.2): a one-pass UTF-8 scanner
// producing tokens on demand, skipping whitespace and comments, and
// recognizing numeric/string/character literals and operators.
package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/amunlang/amun/pkg/token"
)

// Lexer streams tokens from src lazily; Next() advances and returns the
// next token. It never loses a source byte: every non-whitespace,
// non-comment lexeme is represented by exactly one token, terminated by
// a single EndOfFile token (§8).
type Lexer struct {
	fileID int
	src    []byte
	pos    int
	line   int
	col    int
}

// New returns a Lexer over src, attributing every span to fileID.
func New(fileID int, src []byte) *Lexer {
	return &Lexer{fileID: fileID, src: src, pos: 0, line: 1, col: 1}
}

// State is an opaque lexer position snapshot. Parsers that need to
// speculatively try a grammar (e.g. disambiguating `f<T>(x)` generic
// call syntax from a less-than comparison) can Mark before and Reset
// after a failed attempt.
type State struct {
	pos, line, col int
}

// Mark captures the current position.
func (l *Lexer) Mark() State { return State{l.pos, l.line, l.col} }

// Reset rewinds the lexer to a previously captured State.
func (l *Lexer) Reset(s State) {
	l.pos, l.line, l.col = s.pos, s.line, s.col
}

func (l *Lexer) atEnd() bool { return l.pos >= len(l.src) }

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *Lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *Lexer) match(c byte) bool {
	if l.peek() != c {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.atEnd() {
		c := l.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '/' && l.peekAt(1) == '/':
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
		case c == '/' && l.peekAt(1) == '*':
			l.advance()
			l.advance()
			for !l.atEnd() && !(l.peek() == '*' && l.peekAt(1) == '/') {
				l.advance()
			}
			if !l.atEnd() {
				l.advance()
				l.advance()
			}
		default:
			return
		}
	}
}

func isDigit(c byte) bool    { return c >= '0' && c <= '9' }
func isHexDigit(c byte) bool { return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') }
func isOctalDigit(c byte) bool { return c >= '0' && c <= '7' }
func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= utf8.RuneSelf
}
func isAlphaNumeric(c byte) bool { return isAlpha(c) || isDigit(c) }

// Next scans and returns the next token, advancing the lexer past it.
func (l *Lexer) Next() token.Token {
	l.skipWhitespaceAndComments()

	startLine, startCol := l.line, l.col

	if l.atEnd() {
		return l.tok(token.EndOfFile, startLine, startCol, "")
	}

	c := l.peek()

	switch {
	case isDigit(c):
		return l.scanNumber(startLine, startCol)
	case c == '.' && isDigit(l.peekAt(1)):
		return l.scanNumber(startLine, startCol)
	case isAlpha(c):
		return l.scanIdentifierOrKeyword(startLine, startCol)
	case c == '"':
		return l.scanString(startLine, startCol)
	case '\'' == c:
		return l.scanChar(startLine, startCol)
	}

	return l.scanOperator(startLine, startCol)
}

func (l *Lexer) tok(kind token.Kind, line, col int, literal string) token.Token {
	return token.Token{
		Kind: kind,
		Span: token.Span{
			FileID:   l.fileID,
			Line:     line,
			ColStart: col,
			ColEnd:   l.col,
		},
		Literal: literal,
	}
}

func (l *Lexer) invalid(line, col int, message string) token.Token {
	return l.tok(token.Invalid, line, col, message)
}

// scanNumber scans decimal/hex/octal integers and floats with an
// optional width suffix, per §4.2. '_' is a digit separator and is
// stripped before the numeric value is recorded in Literal (the raw
// separator-free digits plus any suffix).
func (l *Lexer) scanNumber(line, col int) token.Token {
	var raw strings.Builder
	isFloat := false

	if l.peek() == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		raw.WriteByte(l.advance())
		raw.WriteByte(l.advance())
		digits := 0
		for isHexDigit(l.peek()) || l.peek() == '_' {
			c := l.advance()
			if c != '_' {
				raw.WriteByte(c)
				digits++
			}
		}
		if digits == 0 {
			return l.invalid(line, col, "hexadecimal literal has no digits")
		}
	} else if l.peek() == '0' && (l.peekAt(1) == 'o' || l.peekAt(1) == 'O') {
		raw.WriteByte(l.advance())
		raw.WriteByte(l.advance())
		digits := 0
		for isOctalDigit(l.peek()) || l.peek() == '_' {
			c := l.advance()
			if c != '_' {
				raw.WriteByte(c)
				digits++
			}
		}
		if digits == 0 {
			return l.invalid(line, col, "octal literal has no digits")
		}
	} else {
		for isDigit(l.peek()) || l.peek() == '_' {
			c := l.advance()
			if c != '_' {
				raw.WriteByte(c)
			}
		}
		if l.peek() == '.' && isDigit(l.peekAt(1)) {
			isFloat = true
			raw.WriteByte(l.advance())
			for isDigit(l.peek()) || l.peek() == '_' {
				c := l.advance()
				if c != '_' {
					raw.WriteByte(c)
				}
			}
		}
	}

	suffix := l.scanNumericSuffix()
	if suffix == "" && isFloat {
		suffix = "f64-implicit" // marker only; caller decides default for bare floats
	}
	raw.WriteString(suffixSeparator(suffix))

	return l.tok(token.Number, line, col, raw.String())
}

// suffixSeparator embeds the suffix into the literal text after a ':' so
// downstream (parser/checker) can split Literal on the last ':' to
// recover {digits, suffix}. Keeping this in the lexer keeps the token
// model free of an extra field for a detail only numeric literals need.
func suffixSeparator(suffix string) string {
	if suffix == "" {
		return ""
	}
	return ":" + suffix
}

var numericSuffixes = []string{
	"i1", "i8", "i16", "i32", "i64",
	"u8", "u16", "u32", "u64",
	"f32", "f64",
}

func (l *Lexer) scanNumericSuffix() string {
	for _, suf := range numericSuffixes {
		if l.hasPrefixAt(suf) && !isAlphaNumeric(l.peekAt(len(suf))) {
			for range suf {
				l.advance()
			}
			return suf
		}
	}
	return ""
}

func (l *Lexer) hasPrefixAt(s string) bool {
	if l.pos+len(s) > len(l.src) {
		return false
	}
	return string(l.src[l.pos:l.pos+len(s)]) == s
}

func (l *Lexer) scanIdentifierOrKeyword(line, col int) token.Token {
	start := l.pos
	for !l.atEnd() && isAlphaNumeric(l.peek()) {
		l.advance()
	}
	word := string(l.src[start:l.pos])
	kind := token.LookupKeyword(word)
	if kind == token.Identifier {
		return l.tok(token.Identifier, line, col, word)
	}
	return l.tok(kind, line, col, word)
}

var simpleEscapes = map[byte]byte{
	'a': '\a', 'b': '\b', 'f': '\f', 'n': '\n', 'r': '\r',
	't': '\t', 'v': '\v', '0': 0, '\'': '\'', '\\': '\\', '"': '"',
}

func (l *Lexer) scanEscape() (byte, bool, string) {
	l.advance() // consume backslash
	if l.atEnd() {
		return 0, false, "unterminated escape sequence"
	}
	c := l.advance()
	if c == 'x' {
		hi, hiOK := hexVal(l.peek())
		if !hiOK {
			return 0, false, "invalid \\x escape: expected two hex digits"
		}
		l.advance()
		lo, loOK := hexVal(l.peek())
		if !loOK {
			return 0, false, "invalid \\x escape: expected two hex digits"
		}
		l.advance()
		return byte(hi*16 + lo), true, ""
	}
	if v, ok := simpleEscapes[c]; ok {
		return v, true, ""
	}
	return 0, false, "unknown escape sequence '\\" + string(c) + "'"
}

func hexVal(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}

func (l *Lexer) scanString(line, col int) token.Token {
	l.advance() // opening quote
	var out strings.Builder
	for {
		if l.atEnd() {
			return l.invalid(line, col, "unterminated string literal")
		}
		c := l.peek()
		if c == '"' {
			l.advance()
			break
		}
		if c == '\n' {
			return l.invalid(line, col, "unterminated string literal")
		}
		if c == '\\' {
			v, ok, msg := l.scanEscape()
			if !ok {
				return l.invalid(line, col, msg)
			}
			out.WriteByte(v)
			continue
		}
		out.WriteByte(l.advance())
	}
	return l.tok(token.String, line, col, out.String())
}

func (l *Lexer) scanChar(line, col int) token.Token {
	l.advance() // opening quote
	if l.atEnd() {
		return l.invalid(line, col, "unterminated character literal")
	}

	var value byte
	if l.peek() == '\\' {
		v, ok, msg := l.scanEscape()
		if !ok {
			return l.invalid(line, col, msg)
		}
		value = v
	} else if l.peek() == '\'' {
		return l.invalid(line, col, "empty character literal")
	} else {
		value = l.advance()
	}

	if l.peek() != '\'' {
		return l.invalid(line, col, "unterminated character literal")
	}
	l.advance()

	return l.tok(token.Character, line, col, string(value))
}

// scanOperator recognizes punctuation and multi-char operators. '>>' is
// deliberately NOT produced here: the tokenizer always emits two
// consecutive '>' tokens, and the parser recognizes '>>' by context so
// that `F<T<U>>` still parses (§4.2, §4.4).
func (l *Lexer) scanOperator(line, col int) token.Token {
	c := l.advance()

	two := func(next byte, kind token.Kind, single token.Kind) token.Token {
		if l.match(next) {
			return l.tok(kind, line, col, "")
		}
		return l.tok(single, line, col, "")
	}

	switch c {
	case '(':
		return l.tok(token.LeftParen, line, col, "")
	case ')':
		return l.tok(token.RightParen, line, col, "")
	case '{':
		return l.tok(token.LeftBrace, line, col, "")
	case '}':
		return l.tok(token.RightBrace, line, col, "")
	case '[':
		return l.tok(token.LeftBracket, line, col, "")
	case ']':
		return l.tok(token.RightBracket, line, col, "")
	case ',':
		return l.tok(token.Comma, line, col, "")
	case ';':
		return l.tok(token.Semicolon, line, col, "")
	case '#':
		return l.tok(token.FatHash, line, col, "")
	case '@':
		return l.tok(token.At, line, col, "")
	case '~':
		return l.tok(token.Tilde, line, col, "")
	case ':':
		return two(':', token.ColonColon, token.Colon)
	case '.':
		return two('.', token.DotDot, token.Dot)
	case '+':
		if l.match('+') {
			return l.tok(token.PlusPlus, line, col, "")
		}
		return two('=', token.PlusEqual, token.Plus)
	case '-':
		if l.match('-') {
			return l.tok(token.MinusMinus, line, col, "")
		}
		if l.match('>') {
			return l.tok(token.Arrow, line, col, "")
		}
		return two('=', token.MinusEqual, token.Minus)
	case '*':
		return two('=', token.StarEqual, token.Star)
	case '/':
		return two('=', token.SlashEqual, token.Slash)
	case '%':
		return two('=', token.PercentEqual, token.Percent)
	case '&':
		return two('&', token.AmpAmp, token.Ampersand)
	case '|':
		return two('|', token.PipePipe, token.Pipe)
	case '^':
		return l.tok(token.Caret, line, col, "")
	case '=':
		return two('=', token.EqualEqual, token.Equal)
	case '!':
		return two('=', token.BangEqual, token.Bang)
	case '<':
		if l.match('<') {
			return l.tok(token.LeftShift, line, col, "")
		}
		return two('=', token.LessEqual, token.Less)
	case '>':
		// '>=' still recognized here; '>>' is left to the parser.
		return two('=', token.GreaterEqual, token.Greater)
	}

	return l.invalid(line, col, "unexpected character '"+string(c)+"'")
}
