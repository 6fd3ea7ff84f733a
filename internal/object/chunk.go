package object

import "lox/internal/code"

// Chunk is one function's bytecode. Lines[i] is the source line of Code[i].
type Chunk struct {
	Code      code.Instructions
	Lines     []int
	Constants []Value
}

func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteInstruction appends every byte of ins attributed to line and returns
// the offset of its opcode.
func (c *Chunk) WriteInstruction(ins code.Instructions, line int) int {
	pos := len(c.Code)
	for _, b := range ins {
		c.Write(b, line)
	}
	return pos
}

// AddConstant appends v to the pool and returns its index. Range checks are
// the caller's job.
func (c *Chunk) AddConstant(v Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}
