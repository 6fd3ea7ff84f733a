package lsp

import (
	"errors"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"lox/internal/compiler"
	"lox/internal/diag"
)

// Diagnose compiles text and returns its compile errors as LSP
// diagnostics. A clean compile yields an empty, non-nil slice so that
// publishing it clears the client's markers.
func Diagnose(text string) []protocol.Diagnostic {
	_, err := compiler.Compile(text)

	var cerr *compiler.Error
	if !errors.As(err, &cerr) {
		return []protocol.Diagnostic{}
	}
	return ToLspDiagnostics(text, cerr.Diagnostics)
}

func ToLspDiagnostics(text string, ds []diag.Diagnostic) []protocol.Diagnostic {
	lines := splitLines(text)
	out := make([]protocol.Diagnostic, 0, len(ds))
	for _, d := range ds {
		severity := protocol.DiagnosticSeverityError
		pd := protocol.Diagnostic{
			Range:    tokenRange(lines, d.Range.Start(), d.Range.Col, d.Range.Length),
			Severity: &severity,
			Source:   ptrString("lox"),
			Message:  d.Message,
		}
		if d.Code != "" {
			code := protocol.IntegerOrString{Value: d.Code}
			pd.Code = &code
		}
		out = append(out, pd)
	}
	return out
}

func ptrString(s string) *string { return &s }
