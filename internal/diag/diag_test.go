package diag

import "testing"

func TestDiagnosticString(t *testing.T) {
	tests := []struct {
		d    Diagnostic
		want string
	}{
		{
			Diagnostic{Message: "Expect expression.", Where: " at '+'", Range: Range{Line: 3}},
			"[line 3] Error at '+': Expect expression.",
		},
		{
			Diagnostic{Message: "Expect ';' after value.", Where: " at end", Range: Range{Line: 1}},
			"[line 1] Error at end: Expect ';' after value.",
		},
		{
			Diagnostic{Message: "Unterminated string.", Range: Range{Line: 2}},
			"[line 2] Error: Unterminated string.",
		},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Fatalf("want=%q got=%q", tt.want, got)
		}
	}
}

func TestDiagnosticFormat(t *testing.T) {
	d := Diagnostic{Code: "LX0001", Message: "boom", Range: Range{Line: 4, Col: 7}}
	if got := d.Format("a.lox"); got != "a.lox:4:7: error LX0001: boom" {
		t.Fatalf("got %q", got)
	}
}
