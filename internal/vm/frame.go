package vm

import (
	"lox/internal/code"
	"lox/internal/object"
)

// Frame is one active call: the closure being run, its instruction pointer
// and the stack slot that holds the callee (slot 0 of the call window).
type Frame struct {
	cl          *object.Closure
	ip          int
	basePointer int
}

func NewFrame(cl *object.Closure, basePointer int) *Frame {
	return &Frame{cl: cl, basePointer: basePointer}
}

func (f *Frame) Instructions() code.Instructions { return f.cl.Fn.Chunk.Code }

func (f *Frame) readByte() int {
	b := f.Instructions()[f.ip]
	f.ip++
	return int(b)
}

func (f *Frame) readShort() int {
	v := code.ReadUint16(f.Instructions()[f.ip:])
	f.ip += 2
	return int(v)
}

func (f *Frame) readConstant() object.Value {
	return f.cl.Fn.Chunk.Constants[f.readByte()]
}

func (f *Frame) readString() *object.String {
	return f.readConstant().AsString()
}

// line is the source line of the instruction that was read last.
func (f *Frame) line() int {
	ip := f.ip - 1
	if ip < 0 {
		ip = 0
	}
	lines := f.cl.Fn.Chunk.Lines
	if ip >= len(lines) {
		return 0
	}
	return lines[ip]
}
