package compiler

import (
	"fmt"
	"io"
	"strings"

	"lox/internal/code"
	"lox/internal/diag"
	"lox/internal/lexer"
	"lox/internal/object"
	"lox/internal/token"
)

const diagCode = "LX0001"

// Options tune a compilation. The zero value compiles silently.
type Options struct {
	// PrintCode receives a disassembly of each function once it finishes
	// compiling, provided no error has been reported so far.
	PrintCode io.Writer
}

// Error is returned when a compilation reports at least one diagnostic.
type Error struct {
	Diagnostics []diag.Diagnostic
}

func (e *Error) Error() string {
	lines := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}

type funcKind int

const (
	kindFunction funcKind = iota
	kindInitializer
	kindMethod
	kindScript
)

type local struct {
	name     string
	depth    int // -1 while the initializer is still being compiled
	captured bool
}

type upvalueRef struct {
	index   int
	isLocal bool
}

// funcState is the per-function half of the compiler. Compiler.funcs holds
// one per lexically enclosing function, innermost last.
type funcState struct {
	fn         *object.Function
	kind       funcKind
	locals     []local
	upvalues   []upvalueRef
	scopeDepth int
}

type classState struct {
	hasSuperclass bool
}

// Compiler turns source text into a script Function in a single pass. A
// Compiler may be reused; each Compile call starts from scratch.
type Compiler struct {
	opts Options

	l         *lexer.Lexer
	current   token.Token
	previous  token.Token
	hadError  bool
	panicMode bool
	diags     []diag.Diagnostic

	funcs   []*funcState
	classes []classState
}

func New(opts Options) *Compiler {
	return &Compiler{opts: opts}
}

// Compile compiles a whole program. On failure the error is an *Error and
// no function is returned.
func Compile(src string) (*object.Function, error) {
	return New(Options{}).Compile(src)
}

func CompileWithOptions(src string, opts Options) (*object.Function, error) {
	return New(opts).Compile(src)
}

func (c *Compiler) Compile(src string) (*object.Function, error) {
	c.l = lexer.New(src)
	c.current = token.Token{}
	c.previous = token.Token{}
	c.hadError = false
	c.panicMode = false
	c.diags = nil
	c.funcs = nil
	c.classes = nil

	c.pushFunc(kindScript)
	c.advance()

	for !c.match(token.EOF) {
		c.declaration()
	}

	fn, _ := c.endFunc()
	if c.hadError {
		return nil, &Error{Diagnostics: c.diags}
	}
	return fn, nil
}

/* -------------------- tokens -------------------- */

func (c *Compiler) advance() {
	c.previous = c.current

	for {
		c.current = c.l.NextToken()
		if c.current.Type != token.ERROR {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) consume(t token.Type, msg string) {
	if c.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) check(t token.Type) bool {
	return c.current.Type == t
}

func (c *Compiler) match(t token.Type) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

/* -------------------- errors -------------------- */

func (c *Compiler) errorAtCurrent(msg string) {
	c.errorAt(c.current, msg)
}

func (c *Compiler) error(msg string) {
	c.errorAt(c.previous, msg)
}

func (c *Compiler) errorAt(tok token.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true

	d := diag.Diagnostic{
		Code:     diagCode,
		Message:  msg,
		Severity: diag.SeverityError,
		Range: diag.Range{
			Line:      tok.Line,
			Col:       tok.Col,
			Length:    1,
			StartLine: tok.StartLine,
		},
	}
	switch tok.Type {
	case token.EOF:
		d.Where = " at end"
	case token.ERROR:
		// The lexeme is the message itself.
	default:
		d.Where = fmt.Sprintf(" at '%s'", tok.Lexeme)
		if n := len(tok.Lexeme); n > 0 {
			d.Range.Length = n
		}
	}
	c.diags = append(c.diags, d)
}

// synchronize skips tokens until a likely statement boundary so one bad
// statement produces one diagnostic.
func (c *Compiler) synchronize() {
	c.panicMode = false

	for c.current.Type != token.EOF {
		if c.previous.Type == token.SEMICOLON {
			return
		}
		if c.current.Type.StartsStatement() {
			return
		}
		c.advance()
	}
}

/* -------------------- function state -------------------- */

func (c *Compiler) fs() *funcState {
	return c.funcs[len(c.funcs)-1]
}

func (c *Compiler) pushFunc(kind funcKind) {
	fs := &funcState{fn: object.NewFunction(), kind: kind}
	if kind != kindScript {
		fs.fn.Name = object.NewString(c.previous.Lexeme)
	}

	// Slot zero holds the callee, or the receiver inside methods.
	slot := local{depth: 0}
	if kind != kindFunction {
		slot.name = "this"
	}
	fs.locals = append(fs.locals, slot)

	c.funcs = append(c.funcs, fs)
}

// endFunc finishes the innermost function and pops its state. The returned
// state still carries the upvalue list the caller has to emit.
func (c *Compiler) endFunc() (*object.Function, *funcState) {
	c.emitReturn()

	fs := c.fs()
	if c.opts.PrintCode != nil && !c.hadError {
		Disassemble(c.opts.PrintCode, &fs.fn.Chunk, fs.fn.Inspect())
	}

	c.funcs = c.funcs[:len(c.funcs)-1]
	return fs.fn, fs
}

func (c *Compiler) beginScope() {
	c.fs().scopeDepth++
}

func (c *Compiler) endScope() {
	fs := c.fs()
	fs.scopeDepth--

	for len(fs.locals) > 0 && fs.locals[len(fs.locals)-1].depth > fs.scopeDepth {
		if fs.locals[len(fs.locals)-1].captured {
			c.emit(code.OpCloseUpvalue)
		} else {
			c.emit(code.OpPop)
		}
		fs.locals = fs.locals[:len(fs.locals)-1]
	}
}
