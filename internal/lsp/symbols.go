package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"lox/internal/lexer"
	"lox/internal/token"
)

// Symbols lists top-level functions and classes, with each class's
// methods as children. It works from tokens alone, so it still answers for
// documents that do not compile.
func Symbols(text string) []protocol.DocumentSymbol {
	lines := splitLines(text)
	l := lexer.New(text)

	out := []protocol.DocumentSymbol{}
	var class *protocol.DocumentSymbol
	depth := 0
	var prev token.Token

	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}

		switch tok.Type {
		case token.LEFT_BRACE:
			depth++
		case token.RIGHT_BRACE:
			if depth > 0 {
				depth--
			}
			if class != nil && depth == 0 {
				out = append(out, *class)
				class = nil
			}
		case token.IDENTIFIER:
			switch {
			case depth == 0 && prev.Type == token.CLASS:
				if class != nil {
					out = append(out, *class)
				}
				sym := newSymbol(lines, tok, protocol.SymbolKindClass)
				class = &sym
			case depth == 0 && prev.Type == token.FUN:
				out = append(out, newSymbol(lines, tok, protocol.SymbolKindFunction))
			case class != nil && depth == 1 &&
				(prev.Type == token.LEFT_BRACE || prev.Type == token.RIGHT_BRACE):
				kind := protocol.SymbolKindMethod
				if tok.Lexeme == "init" {
					kind = protocol.SymbolKindConstructor
				}
				class.Children = append(class.Children, newSymbol(lines, tok, kind))
			}
		}
		prev = tok
	}

	if class != nil {
		out = append(out, *class)
	}
	return out
}

func newSymbol(lines []string, tok token.Token, kind protocol.SymbolKind) protocol.DocumentSymbol {
	r := tokenRange(lines, tok.StartLine, tok.Col, len(tok.Lexeme))
	return protocol.DocumentSymbol{
		Name:           tok.Lexeme,
		Kind:           kind,
		Range:          r,
		SelectionRange: r,
	}
}
