package lexer

import (
	"testing"

	"lox/internal/token"
)

func TestLexer_TourProgram(t *testing.T) {
	input := `fun add(a, b) {
  return a + b;
}

var x = add(2, 3.5);
if (x >= 3 and !false) {
  print "big";
} else {
  print nil;
}`

	tests := []struct {
		typ  token.Type
		lex  string
		line int
	}{
		{token.FUN, "fun", 1},
		{token.IDENTIFIER, "add", 1},
		{token.LEFT_PAREN, "(", 1},
		{token.IDENTIFIER, "a", 1},
		{token.COMMA, ",", 1},
		{token.IDENTIFIER, "b", 1},
		{token.RIGHT_PAREN, ")", 1},
		{token.LEFT_BRACE, "{", 1},

		{token.RETURN, "return", 2},
		{token.IDENTIFIER, "a", 2},
		{token.PLUS, "+", 2},
		{token.IDENTIFIER, "b", 2},
		{token.SEMICOLON, ";", 2},

		{token.RIGHT_BRACE, "}", 3},

		{token.VAR, "var", 5},
		{token.IDENTIFIER, "x", 5},
		{token.EQUAL, "=", 5},
		{token.IDENTIFIER, "add", 5},
		{token.LEFT_PAREN, "(", 5},
		{token.NUMBER, "2", 5},
		{token.COMMA, ",", 5},
		{token.NUMBER, "3.5", 5},
		{token.RIGHT_PAREN, ")", 5},
		{token.SEMICOLON, ";", 5},

		{token.IF, "if", 6},
		{token.LEFT_PAREN, "(", 6},
		{token.IDENTIFIER, "x", 6},
		{token.GREATER_EQUAL, ">=", 6},
		{token.NUMBER, "3", 6},
		{token.AND, "and", 6},
		{token.BANG, "!", 6},
		{token.FALSE, "false", 6},
		{token.RIGHT_PAREN, ")", 6},
		{token.LEFT_BRACE, "{", 6},

		{token.PRINT, "print", 7},
		{token.STRING, `"big"`, 7},
		{token.SEMICOLON, ";", 7},

		{token.RIGHT_BRACE, "}", 8},
		{token.ELSE, "else", 8},
		{token.LEFT_BRACE, "{", 8},

		{token.PRINT, "print", 9},
		{token.NIL, "nil", 9},
		{token.SEMICOLON, ";", 9},

		{token.RIGHT_BRACE, "}", 10},
		{token.EOF, "", 10},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.typ {
			t.Fatalf("tests[%d] - wrong type. expected=%q got=%q (lexeme=%q line=%d)",
				i, tt.typ, tok.Type, tok.Lexeme, tok.Line)
		}
		if tok.Lexeme != tt.lex {
			t.Fatalf("tests[%d] - wrong lexeme. expected=%q got=%q (type=%q line=%d)",
				i, tt.lex, tok.Lexeme, tok.Type, tok.Line)
		}
		if tok.Line != tt.line {
			t.Fatalf("tests[%d] - wrong line. expected=%d got=%d (lexeme=%q)",
				i, tt.line, tok.Line, tok.Lexeme)
		}
	}
}

func TestLexer_Keywords(t *testing.T) {
	tests := map[string]token.Type{
		"and":    token.AND,
		"class":  token.CLASS,
		"else":   token.ELSE,
		"false":  token.FALSE,
		"for":    token.FOR,
		"fun":    token.FUN,
		"if":     token.IF,
		"nil":    token.NIL,
		"or":     token.OR,
		"print":  token.PRINT,
		"return": token.RETURN,
		"super":  token.SUPER,
		"this":   token.THIS,
		"true":   token.TRUE,
		"var":    token.VAR,
		"while":  token.WHILE,

		// Prefixes and extensions of keywords are plain identifiers.
		"f":       token.IDENTIFIER,
		"t":       token.IDENTIFIER,
		"an":      token.IDENTIFIER,
		"classy":  token.IDENTIFIER,
		"fork":    token.IDENTIFIER,
		"funny":   token.IDENTIFIER,
		"thistle": token.IDENTIFIER,
		"_var":    token.IDENTIFIER,
		"whilst":  token.IDENTIFIER,
		"x1":      token.IDENTIFIER,
	}
	for src, want := range tests {
		tok := New(src).NextToken()
		if tok.Type != want {
			t.Fatalf("%q: expected %q, got %q", src, want, tok.Type)
		}
		if tok.Lexeme != src {
			t.Fatalf("%q: expected lexeme to be the whole input, got %q", src, tok.Lexeme)
		}
	}
}

func TestLexer_Numbers(t *testing.T) {
	l := New("123 4.5 6. .7")
	want := []struct {
		typ token.Type
		lex string
	}{
		{token.NUMBER, "123"},
		{token.NUMBER, "4.5"},
		{token.NUMBER, "6"},
		{token.DOT, "."},
		{token.DOT, "."},
		{token.NUMBER, "7"},
		{token.EOF, ""},
	}
	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != w.typ || tok.Lexeme != w.lex {
			t.Fatalf("i=%d expected %q %q, got %q %q", i, w.typ, w.lex, tok.Type, tok.Lexeme)
		}
	}
}

func TestLexer_Errors(t *testing.T) {
	l := New("@\n\"never closed\nstill open")

	tok := l.NextToken()
	if tok.Type != token.ERROR || tok.Lexeme != "Unexpected character." || tok.Line != 1 {
		t.Fatalf("expected unexpected-character error on line 1, got %+v", tok)
	}

	tok = l.NextToken()
	if tok.Type != token.ERROR || tok.Lexeme != "Unterminated string." {
		t.Fatalf("expected unterminated string error, got %+v", tok)
	}
	if tok.Line != 3 {
		t.Fatalf("expected error reported on line 3, got %d", tok.Line)
	}

	if tok := l.NextToken(); tok.Type != token.EOF {
		t.Fatalf("expected EOF, got %+v", tok)
	}
	if tok := l.NextToken(); tok.Type != token.EOF {
		t.Fatalf("expected EOF to repeat, got %+v", tok)
	}
}

func TestLexer_Columns(t *testing.T) {
	l := New("var  x\n  = 1;")
	want := []struct {
		line, col int
	}{
		{1, 1}, {1, 6}, {2, 3}, {2, 5}, {2, 6},
	}
	for i, w := range want {
		tok := l.NextToken()
		if tok.Line != w.line || tok.Col != w.col {
			t.Fatalf("i=%d (%q) expected %d:%d, got %d:%d", i, tok.Lexeme, w.line, w.col, tok.Line, tok.Col)
		}
	}
}
