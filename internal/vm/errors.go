package vm

import (
	"fmt"
	"strings"
)

type InterpretResult int

const (
	InterpretOK InterpretResult = iota
	InterpretCompileError
	InterpretRuntimeError
)

func (r InterpretResult) String() string {
	switch r {
	case InterpretOK:
		return "ok"
	case InterpretCompileError:
		return "compile error"
	case InterpretRuntimeError:
		return "runtime error"
	}
	return fmt.Sprintf("InterpretResult(%d)", int(r))
}

// TraceLine locates one active frame at the moment a runtime error was
// raised. Function is empty for the top-level script.
type TraceLine struct {
	Line     int
	Function string
}

func (t TraceLine) String() string {
	if t.Function == "" {
		return fmt.Sprintf("[line %d] in script", t.Line)
	}
	return fmt.Sprintf("[line %d] in %s()", t.Line, t.Function)
}

// RuntimeError is a failed operation plus the call stack at the time,
// innermost frame first.
type RuntimeError struct {
	Message string
	Trace   []TraceLine
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, t := range e.Trace {
		b.WriteByte('\n')
		b.WriteString(t.String())
	}
	return b.String()
}

// Line is the line of the innermost frame, or 0 if there was none.
func (e *RuntimeError) Line() int {
	if len(e.Trace) == 0 {
		return 0
	}
	return e.Trace[0].Line
}
