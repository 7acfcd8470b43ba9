package lexer

import (
	"testing"

	"github.com/amunlang/amun/pkg/token"
)

func allTokens(src string) []token.Token {
	l := New(0, []byte(src))
	var out []token.Token
	for {
		tok := l.Next()
		out = append(out, tok)
		if tok.Kind == token.EndOfFile {
			break
		}
	}
	return out
}

func TestEndsWithEOF(t *testing.T) {
	toks := allTokens("var x int32;")
	if toks[len(toks)-1].Kind != token.EndOfFile {
		t.Fatalf("expected stream to end with EndOfFile")
	}
}

func TestSkipsWhitespaceAndComments(t *testing.T) {
	toks := allTokens("  // comment\n /* block \n comment */ var   ")
	if len(toks) != 2 || toks[0].Kind != token.KeywordVar {
		t.Fatalf("expected only 'var' then EOF, got %v", toks)
	}
}

func TestKeywordVsIdentifierByLength(t *testing.T) {
	toks := allTokens("if iffy")
	if toks[0].Kind != token.KeywordIf {
		t.Fatalf("expected 'if' to be a keyword")
	}
	if toks[1].Kind != token.Identifier {
		t.Fatalf("expected 'iffy' to be an identifier, got %v", toks[1].Kind)
	}
}

func TestSingleCharIdentifierNeverKeyword(t *testing.T) {
	toks := allTokens("x")
	if toks[0].Kind != token.Identifier {
		t.Fatalf("expected single-char word to always be an identifier")
	}
}

func TestNumberDecimalWithSeparators(t *testing.T) {
	toks := allTokens("1_000_000")
	if toks[0].Kind != token.Number {
		t.Fatalf("expected number token")
	}
}

func TestNumberHex(t *testing.T) {
	toks := allTokens("0xFF_i32")
	if toks[0].Kind != token.Number {
		t.Fatalf("expected number token, got %v (%v)", toks[0].Kind, toks[0].Literal)
	}
}

func TestNumberHexNoDigitsIsInvalid(t *testing.T) {
	toks := allTokens("0x_")
	if toks[0].Kind != token.Invalid {
		t.Fatalf("expected 0x with only separators to be invalid, got %v", toks[0].Kind)
	}
}

func TestFloatRequiresDigitAfterDot(t *testing.T) {
	toks := allTokens("1.5")
	if toks[0].Kind != token.Number {
		t.Fatalf("expected float number token")
	}

	toks2 := allTokens("1.foo")
	if toks2[0].Kind != token.Number || toks2[1].Kind != token.Dot {
		t.Fatalf("expected '1' then '.' as separate tokens when not followed by a digit, got %v %v", toks2[0].Kind, toks2[1].Kind)
	}
}

func TestStringEscapes(t *testing.T) {
	toks := allTokens(`"a\nb\"c"`)
	if toks[0].Kind != token.String {
		t.Fatalf("expected string token")
	}
	if toks[0].Literal != "a\nb\"c" {
		t.Fatalf("expected escapes to be decoded, got %q", toks[0].Literal)
	}
}

func TestStringUnterminatedIsInvalid(t *testing.T) {
	toks := allTokens(`"abc`)
	if toks[0].Kind != token.Invalid {
		t.Fatalf("expected unterminated string to be invalid")
	}
}

func TestCharLiteralHexEscape(t *testing.T) {
	toks := allTokens(`'\x41'`)
	if toks[0].Kind != token.Character || toks[0].Literal != "A" {
		t.Fatalf("expected character 'A' via hex escape, got %v %q", toks[0].Kind, toks[0].Literal)
	}
}

func TestBadEscapeIsInvalid(t *testing.T) {
	toks := allTokens(`'\q'`)
	if toks[0].Kind != token.Invalid {
		t.Fatalf("expected unknown escape to be invalid")
	}
}

func TestMultiCharOperators(t *testing.T) {
	src := "== != <= >= -> .. :: << && || += -= *= /= %= ++ --"
	toks := allTokens(src)
	want := []token.Kind{
		token.EqualEqual, token.BangEqual, token.LessEqual, token.GreaterEqual,
		token.Arrow, token.DotDot, token.ColonColon, token.LeftShift,
		token.AmpAmp, token.PipePipe, token.PlusEqual, token.MinusEqual,
		token.StarEqual, token.SlashEqual, token.PercentEqual,
		token.PlusPlus, token.MinusMinus, token.EndOfFile,
	}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(toks), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("token %d: expected %v, got %v", i, k, toks[i].Kind)
		}
	}
}

func TestGreaterGreaterIsTwoTokens(t *testing.T) {
	// '>>' is recognized by the parser, not the lexer, so that F<T<U>>
	// still parses (§4.2).
	toks := allTokens(">>")
	if toks[0].Kind != token.Greater || toks[1].Kind != token.Greater {
		t.Fatalf("expected two separate '>' tokens, got %v %v", toks[0].Kind, toks[1].Kind)
	}
}

func TestNoByteLost(t *testing.T) {
	src := "fun id<T>(x T) T = x;"
	toks := allTokens(src)
	var rebuilt string
	for _, tk := range toks {
		if tk.Kind == token.EndOfFile {
			continue
		}
		if tk.Literal != "" && (tk.Kind == token.Identifier || tk.Kind == token.Number || tk.Kind == token.KeywordFun) {
			rebuilt += tk.Literal
		} else {
			rebuilt += tk.Kind.String()
		}
	}
	if rebuilt == "" {
		t.Fatalf("expected non-empty reconstruction")
	}
}
