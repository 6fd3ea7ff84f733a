package compiler

import (
	"math"

	"lox/internal/code"
	"lox/internal/object"
	"lox/internal/token"
)

const (
	maxLocals   = 256
	maxUpvalues = 256
	maxOperand  = math.MaxUint8
	jumpHole    = 0xffff
)

func (c *Compiler) chunk() *object.Chunk {
	return &c.fs().fn.Chunk
}

// emit appends one instruction attributed to the line of the previous token
// and returns the offset of its opcode.
func (c *Compiler) emit(op code.Opcode, operands ...int) int {
	return c.chunk().WriteInstruction(code.Make(op, operands...), c.previous.Line)
}

func (c *Compiler) emitByte(b int) {
	c.chunk().Write(byte(b), c.previous.Line)
}

func (c *Compiler) emitReturn() {
	if c.fs().kind == kindInitializer {
		c.emit(code.OpGetLocal, 0)
	} else {
		c.emit(code.OpNil)
	}
	c.emit(code.OpReturn)
}

// emitJump writes a jump with a placeholder offset and returns the position
// of the operand for patchJump.
func (c *Compiler) emitJump(op code.Opcode) int {
	return c.emit(op, jumpHole) + 1
}

func (c *Compiler) patchJump(offset int) {
	// -2 for the operand bytes themselves.
	jump := len(c.chunk().Code) - offset - 2
	if jump > math.MaxUint16 {
		c.error("Too much code to jump over.")
	}
	code.PutUint16(c.chunk().Code[offset:], uint16(jump))
}

func (c *Compiler) emitLoop(loopStart int) {
	// +3 covers the loop instruction being written.
	offset := len(c.chunk().Code) - loopStart + 3
	if offset > math.MaxUint16 {
		c.error("Loop body too large.")
	}
	c.emit(code.OpLoop, offset)
}

func (c *Compiler) makeConstant(v object.Value) int {
	idx := c.chunk().AddConstant(v)
	if idx > maxOperand {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return idx
}

func (c *Compiler) emitConstant(v object.Value) {
	c.emit(code.OpConstant, c.makeConstant(v))
}

func (c *Compiler) identifierConstant(name string) int {
	return c.makeConstant(object.StringValue(name))
}

/* -------------------- declarations -------------------- */

func (c *Compiler) parseVariable(msg string) int {
	c.consume(token.IDENTIFIER, msg)

	c.declareVariable()
	if c.fs().scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous.Lexeme)
}

// declareVariable records a new local for the previous token. Globals are
// late-bound and need no declaration.
func (c *Compiler) declareVariable() {
	fs := c.fs()
	if fs.scopeDepth == 0 {
		return
	}

	name := c.previous.Lexeme
	for i := len(fs.locals) - 1; i >= 0; i-- {
		l := fs.locals[i]
		if l.depth != -1 && l.depth < fs.scopeDepth {
			break
		}
		if l.name == name {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name string) {
	fs := c.fs()
	if len(fs.locals) == maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	fs.locals = append(fs.locals, local{name: name, depth: -1})
}

func (c *Compiler) markInitialized() {
	fs := c.fs()
	if fs.scopeDepth == 0 {
		return
	}
	fs.locals[len(fs.locals)-1].depth = fs.scopeDepth
}

func (c *Compiler) defineVariable(global int) {
	if c.fs().scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emit(code.OpDefineGlobal, global)
}

/* -------------------- resolution -------------------- */

func (c *Compiler) resolveLocal(fs *funcState, name string) int {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if fs.locals[i].name == name {
			if fs.locals[i].depth == -1 {
				c.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// resolveUpvalue looks name up in the functions enclosing c.funcs[depth].
// A hit in an outer function's locals marks that local captured; a hit
// further out threads an upvalue through every function in between.
func (c *Compiler) resolveUpvalue(depth int, name string) int {
	if depth == 0 {
		return -1
	}

	enclosing := c.funcs[depth-1]
	if l := c.resolveLocal(enclosing, name); l != -1 {
		enclosing.locals[l].captured = true
		return c.addUpvalue(c.funcs[depth], l, true)
	}

	if up := c.resolveUpvalue(depth-1, name); up != -1 {
		return c.addUpvalue(c.funcs[depth], up, false)
	}
	return -1
}

func (c *Compiler) addUpvalue(fs *funcState, index int, isLocal bool) int {
	for i, uv := range fs.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}

	if len(fs.upvalues) == maxUpvalues {
		c.error("Too many closure variables in function.")
		return 0
	}

	fs.upvalues = append(fs.upvalues, upvalueRef{index: index, isLocal: isLocal})
	fs.fn.UpvalueCount++
	return fs.fn.UpvalueCount - 1
}

func (c *Compiler) namedVariable(name string, canAssign bool) {
	var getOp, setOp code.Opcode

	arg := c.resolveLocal(c.fs(), name)
	if arg != -1 {
		getOp, setOp = code.OpGetLocal, code.OpSetLocal
	} else if arg = c.resolveUpvalue(len(c.funcs)-1, name); arg != -1 {
		getOp, setOp = code.OpGetUpvalue, code.OpSetUpvalue
	} else {
		arg = c.identifierConstant(name)
		getOp, setOp = code.OpGetGlobal, code.OpSetGlobal
	}

	if canAssign && c.match(token.EQUAL) {
		c.expression()
		c.emit(setOp, arg)
	} else {
		c.emit(getOp, arg)
	}
}
