package lexer

import "lox/internal/token"

type Lexer struct {
	input string

	start   int // first byte of the lexeme being scanned
	current int // next byte to read

	line      int // 1-based
	lineStart int // offset of the first byte of the current line
	startLine int
	startCol  int
}

func New(input string) *Lexer {
	return &Lexer{input: input, line: 1}
}

// NextToken scans one token. After the end of input it keeps returning EOF.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()
	l.start = l.current
	l.startLine = l.line
	l.startCol = l.current - l.lineStart + 1

	if l.isAtEnd() {
		return l.newToken(token.EOF)
	}

	c := l.advance()
	if isAlpha(c) {
		return l.identifier()
	}
	if isDigit(c) {
		return l.number()
	}

	switch c {
	case '(':
		return l.newToken(token.LEFT_PAREN)
	case ')':
		return l.newToken(token.RIGHT_PAREN)
	case '{':
		return l.newToken(token.LEFT_BRACE)
	case '}':
		return l.newToken(token.RIGHT_BRACE)
	case ';':
		return l.newToken(token.SEMICOLON)
	case ',':
		return l.newToken(token.COMMA)
	case '.':
		return l.newToken(token.DOT)
	case '-':
		return l.newToken(token.MINUS)
	case '+':
		return l.newToken(token.PLUS)
	case '/':
		return l.newToken(token.SLASH)
	case '*':
		return l.newToken(token.STAR)
	case '!':
		return l.twoChar('=', token.BANG_EQUAL, token.BANG)
	case '=':
		return l.twoChar('=', token.EQUAL_EQUAL, token.EQUAL)
	case '<':
		return l.twoChar('=', token.LESS_EQUAL, token.LESS)
	case '>':
		return l.twoChar('=', token.GREATER_EQUAL, token.GREATER)
	case '"':
		return l.string()
	}

	return l.errorToken("Unexpected character.")
}

func (l *Lexer) newToken(t token.Type) token.Token {
	return token.Token{
		Type:   t,
		Lexeme:    l.input[l.start:l.current],
		Line:      l.line,
		StartLine: l.startLine,
		Col:       l.startCol,
	}
}

func (l *Lexer) errorToken(message string) token.Token {
	return token.Token{
		Type:   token.ERROR,
		Lexeme:    message,
		Line:      l.line,
		StartLine: l.startLine,
		Col:       l.startCol,
	}
}

func (l *Lexer) twoChar(next byte, matched, single token.Type) token.Token {
	if l.match(next) {
		return l.newToken(matched)
	}
	return l.newToken(single)
}

func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.input)
}

func (l *Lexer) advance() byte {
	c := l.input[l.current]
	l.current++
	return c
}

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.input[l.current]
}

func (l *Lexer) peekNext() byte {
	if l.current+1 >= len(l.input) {
		return 0
	}
	return l.input[l.current+1]
}

func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() || l.input[l.current] != expected {
		return false
	}
	l.current++
	return true
}

func (l *Lexer) newline() {
	l.line++
	l.lineStart = l.current
}

func (l *Lexer) skipWhitespace() {
	for {
		switch l.peek() {
		case ' ', '\r', '\t':
			l.advance()
		case '\n':
			l.advance()
			l.newline()
		case '/':
			if l.peekNext() != '/' {
				return
			}
			// A comment goes until the end of the line.
			for l.peek() != '\n' && !l.isAtEnd() {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) string() token.Token {
	for l.peek() != '"' && !l.isAtEnd() {
		if l.advance() == '\n' {
			l.newline()
		}
	}
	if l.isAtEnd() {
		return l.errorToken("Unterminated string.")
	}

	// The closing quote.
	l.advance()
	return l.newToken(token.STRING)
}

func (l *Lexer) number() token.Token {
	for isDigit(l.peek()) {
		l.advance()
	}

	// Look for a fractional part.
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	return l.newToken(token.NUMBER)
}

func (l *Lexer) identifier() token.Token {
	for isAlpha(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}
	return l.newToken(l.identifierType())
}

// identifierType dispatches on the first (and sometimes second) byte of the
// lexeme and then checks the remaining suffix of the only keyword that can
// start that way.
func (l *Lexer) identifierType() token.Type {
	switch l.input[l.start] {
	case 'a':
		return l.checkKeyword(1, "nd", token.AND)
	case 'c':
		return l.checkKeyword(1, "lass", token.CLASS)
	case 'e':
		return l.checkKeyword(1, "lse", token.ELSE)
	case 'f':
		if l.current-l.start > 1 {
			switch l.input[l.start+1] {
			case 'a':
				return l.checkKeyword(2, "lse", token.FALSE)
			case 'o':
				return l.checkKeyword(2, "r", token.FOR)
			case 'u':
				return l.checkKeyword(2, "n", token.FUN)
			}
		}
	case 'i':
		return l.checkKeyword(1, "f", token.IF)
	case 'n':
		return l.checkKeyword(1, "il", token.NIL)
	case 'o':
		return l.checkKeyword(1, "r", token.OR)
	case 'p':
		return l.checkKeyword(1, "rint", token.PRINT)
	case 'r':
		return l.checkKeyword(1, "eturn", token.RETURN)
	case 's':
		return l.checkKeyword(1, "uper", token.SUPER)
	case 't':
		if l.current-l.start > 1 {
			switch l.input[l.start+1] {
			case 'h':
				return l.checkKeyword(2, "is", token.THIS)
			case 'r':
				return l.checkKeyword(2, "ue", token.TRUE)
			}
		}
	case 'v':
		return l.checkKeyword(1, "ar", token.VAR)
	case 'w':
		return l.checkKeyword(1, "hile", token.WHILE)
	}
	return token.IDENTIFIER
}

func (l *Lexer) checkKeyword(offset int, rest string, t token.Type) token.Type {
	if l.current-l.start == offset+len(rest) && l.input[l.start+offset:l.current] == rest {
		return t
	}
	return token.IDENTIFIER
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlpha(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
