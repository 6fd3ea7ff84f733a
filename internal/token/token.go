package token

type Type string

type Token struct {
	Type Type
	// Lexeme is the source slice the token was scanned from. For ERROR tokens
	// it holds the error message instead.
	Lexeme string
	// Line is where the token ends, the line reported in diagnostics.
	Line int
	// StartLine and Col locate the first byte of the token (Col is 1-based).
	StartLine int
	Col       int
}

const (
	// Special
	ERROR Type = "ERROR"
	EOF   Type = "EOF"

	// Single-character tokens
	LEFT_PAREN  Type = "("
	RIGHT_PAREN Type = ")"
	LEFT_BRACE  Type = "{"
	RIGHT_BRACE Type = "}"
	COMMA       Type = ","
	DOT         Type = "."
	MINUS       Type = "-"
	PLUS        Type = "+"
	SEMICOLON   Type = ";"
	SLASH       Type = "/"
	STAR        Type = "*"

	// One or two character tokens
	BANG          Type = "!"
	BANG_EQUAL    Type = "!="
	EQUAL         Type = "="
	EQUAL_EQUAL   Type = "=="
	GREATER       Type = ">"
	GREATER_EQUAL Type = ">="
	LESS          Type = "<"
	LESS_EQUAL    Type = "<="

	// Literals
	IDENTIFIER Type = "IDENTIFIER"
	STRING     Type = "STRING"
	NUMBER     Type = "NUMBER"

	// Keywords
	AND    Type = "AND"
	CLASS  Type = "CLASS"
	ELSE   Type = "ELSE"
	FALSE  Type = "FALSE"
	FOR    Type = "FOR"
	FUN    Type = "FUN"
	IF     Type = "IF"
	NIL    Type = "NIL"
	OR     Type = "OR"
	PRINT  Type = "PRINT"
	RETURN Type = "RETURN"
	SUPER  Type = "SUPER"
	THIS   Type = "THIS"
	TRUE   Type = "TRUE"
	VAR    Type = "VAR"
	WHILE  Type = "WHILE"
)

// Synthetic builds a token that never appeared in the source, such as the
// implicit "this" and "super" locals.
func Synthetic(name string) Token {
	return Token{Type: IDENTIFIER, Lexeme: name}
}

// StartsStatement reports whether a token of this type begins a declaration
// or statement. The compiler resynchronizes on these after an error.
func (t Type) StartsStatement() bool {
	switch t {
	case CLASS, FUN, VAR, FOR, IF, WHILE, PRINT, RETURN:
		return true
	}
	return false
}
