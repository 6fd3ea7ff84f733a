package compiler

import (
	"fmt"
	"io"
	"strings"

	"lox/internal/code"
	"lox/internal/object"
)

// Disassemble writes one line per instruction of chunk under a "== name =="
// header.
func Disassemble(w io.Writer, chunk *object.Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)

	for offset := 0; offset < len(chunk.Code); {
		offset = DisassembleInstruction(w, chunk, offset)
	}
}

// DisassembleInstruction writes the instruction at offset and returns the
// offset of the next one.
func DisassembleInstruction(w io.Writer, chunk *object.Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && chunk.Lines[offset] == chunk.Lines[offset-1] {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", chunk.Lines[offset])
	}

	op := code.Opcode(chunk.Code[offset])
	def, ok := code.Lookup(op)
	if !ok {
		fmt.Fprintf(w, "Unknown opcode %d\n", byte(op))
		return offset + 1
	}

	operands, read := code.ReadOperands(def, chunk.Code[offset+1:])
	next := offset + 1 + read

	switch op {
	case code.OpConstant, code.OpGetGlobal, code.OpDefineGlobal, code.OpSetGlobal,
		code.OpGetProperty, code.OpSetProperty, code.OpGetSuper, code.OpClass, code.OpMethod:
		constant := operands[0]
		fmt.Fprintf(w, "%-16s %4d '%s'\n", def.Name, constant, chunk.Constants[constant])
		return next

	case code.OpGetLocal, code.OpSetLocal, code.OpGetUpvalue, code.OpSetUpvalue, code.OpCall:
		fmt.Fprintf(w, "%-16s %4d\n", def.Name, operands[0])
		return next

	case code.OpJump, code.OpJumpIfFalse, code.OpLoop:
		sign := 1
		if op == code.OpLoop {
			sign = -1
		}
		fmt.Fprintf(w, "%-16s %4d -> %d\n", def.Name, offset, next+sign*operands[0])
		return next

	case code.OpInvoke, code.OpSuperInvoke:
		constant, argCount := operands[0], operands[1]
		fmt.Fprintf(w, "%-16s (%d args) %4d '%s'\n", def.Name, argCount, constant, chunk.Constants[constant])
		return next

	case code.OpClosure:
		constant := operands[0]
		offset = next
		fmt.Fprintf(w, "%-16s %4d %s\n", def.Name, constant, chunk.Constants[constant])

		fn, _ := chunk.Constants[constant].AsObj().(*object.Function)
		if fn == nil {
			return offset
		}
		for j := 0; j < fn.UpvalueCount; j++ {
			kind := "upvalue"
			if chunk.Code[offset] == 1 {
				kind = "local"
			}
			fmt.Fprintf(w, "%04d      |                     %s %d\n", offset, kind, chunk.Code[offset+1])
			offset += 2
		}
		return offset
	}

	fmt.Fprintln(w, def.Name)
	return next
}

// FormatConstants lists a chunk's constant pool, one entry per line.
func FormatConstants(constants []object.Value) string {
	var b strings.Builder
	b.WriteString("== constants ==\n")
	for i, c := range constants {
		switch {
		case c.IsNumber():
			fmt.Fprintf(&b, "%04d NUMBER %s\n", i, c)
		case c.IsString():
			fmt.Fprintf(&b, "%04d STRING %q\n", i, c.AsString().Value)
		case c.IsObj():
			if fn, ok := c.AsObj().(*object.Function); ok {
				fmt.Fprintf(&b, "%04d FUNCTION %s (arity=%d upvalues=%d code=%dB)\n",
					i, fn.DisplayName(), fn.Arity, fn.UpvalueCount, len(fn.Chunk.Code))
				continue
			}
			fmt.Fprintf(&b, "%04d %s %s\n", i, c.AsObj().Type(), c)
		default:
			fmt.Fprintf(&b, "%04d %s\n", i, c)
		}
	}
	return b.String()
}
