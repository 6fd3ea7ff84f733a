package lsp

import (
	"strings"
	"unicode/utf16"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

func splitLines(text string) []string {
	return strings.Split(text, "\n")
}

// byteColToUTF16 converts a 1-based byte column into the 0-based UTF-16
// offset LSP clients expect.
func byteColToUTF16(lineText string, byteCol int) uint32 {
	if byteCol <= 1 {
		return 0
	}
	limit := byteCol - 1
	if limit > len(lineText) {
		limit = len(lineText)
	}
	return uint32(utf16Len(lineText[:limit]))
}

func utf16Len(s string) int {
	count := 0
	for _, r := range s {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		count += n
	}
	return count
}

// tokenRange covers length bytes starting at the 1-based line and column,
// clipped to the line. Zero-length tokens such as EOF still get one
// character so editors can show them.
func tokenRange(lines []string, line, col, length int) protocol.Range {
	if line <= 0 || line > len(lines) {
		if line <= 0 {
			return protocol.Range{}
		}
		// EOF after a trailing newline sits one past the last line.
		p := protocol.Position{Line: uint32(line - 1)}
		return protocol.Range{Start: p, End: protocol.Position{Line: p.Line, Character: 1}}
	}

	lineText := lines[line-1]
	start := protocol.Position{Line: uint32(line - 1), Character: byteColToUTF16(lineText, col)}

	from := col - 1
	if from < 0 {
		from = 0
	}
	if from > len(lineText) {
		from = len(lineText)
	}
	to := from + length
	if to > len(lineText) {
		to = len(lineText)
	}
	width := utf16Len(lineText[from:to])

	end := protocol.Position{Line: start.Line, Character: start.Character + uint32(max(1, width))}
	return protocol.Range{Start: start, End: end}
}
