package diag

import "fmt"

type Severity int

// Every compile diagnostic is an error; Lox has no warnings.
const SeverityError Severity = 0

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

type Range struct {
	Line   int // 1-based, the reported line
	Col    int // 1-based
	Length int // best-effort; can be 1 if unknown
	// StartLine is the line Col refers to when a token spans lines.
	// Zero means Line.
	StartLine int
}

// Start is the 1-based line the range begins on.
func (r Range) Start() int {
	if r.StartLine > 0 {
		return r.StartLine
	}
	return r.Line
}

type Diagnostic struct {
	Code     string
	Message  string
	Severity Severity
	Range    Range
	// Where locates the error in the report line: " at 'x'", " at end", or
	// empty when the offending token was itself a lexer error.
	Where string
}

// String is the report line written to the error stream.
func (d Diagnostic) String() string {
	return fmt.Sprintf("[line %d] Error%s: %s", d.Range.Line, d.Where, d.Message)
}

// Format renders the diagnostic with a file position, for tools that sort or
// jump by path.
func (d Diagnostic) Format(path string) string {
	if d.Code != "" {
		return fmt.Sprintf("%s:%d:%d: %s %s: %s", path, d.Range.Line, d.Range.Col, d.Severity.String(), d.Code, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", path, d.Range.Line, d.Range.Col, d.Severity.String(), d.Message)
}
