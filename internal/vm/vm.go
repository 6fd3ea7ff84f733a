package vm

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/tliron/commonlog"

	"lox/internal/code"
	"lox/internal/compiler"
	"lox/internal/object"
)

// MaxFrames bounds call depth; calling past it is a "Stack overflow." error.
const MaxFrames = 64

const initialStack = MaxFrames * 256

var log = commonlog.GetLogger("lox.vm")

type VM struct {
	stack []object.Value

	frames []*Frame

	globals map[string]object.Value

	// openUpvalues is sorted by descending stack slot.
	openUpvalues *object.Upvalue

	initString *object.String

	stdout    io.Writer
	stderr    io.Writer
	trace     io.Writer
	printCode io.Writer

	maxSteps  int64
	stepsLeft int64

	interrupted atomic.Bool
}

type Option func(*VM)

// WithStdout sets where print statements write. Defaults to os.Stdout.
func WithStdout(w io.Writer) Option { return func(m *VM) { m.stdout = w } }

// WithStderr sets where compile diagnostics and runtime errors are reported.
// Defaults to os.Stderr.
func WithStderr(w io.Writer) Option { return func(m *VM) { m.stderr = w } }

// WithTrace dumps the stack and the next instruction to w before every
// dispatch.
func WithTrace(w io.Writer) Option { return func(m *VM) { m.trace = w } }

// WithPrintCode disassembles every function the VM compiles to w.
func WithPrintCode(w io.Writer) Option { return func(m *VM) { m.printCode = w } }

// WithMaxSteps aborts a run with a runtime error after max instructions.
// Zero means unlimited.
func WithMaxSteps(max int64) Option {
	return func(m *VM) {
		if max < 0 {
			max = 0
		}
		m.maxSteps = max
	}
}

func New(opts ...Option) *VM {
	m := &VM{
		stack:      make([]object.Value, 0, initialStack),
		frames:     make([]*Frame, 0, MaxFrames),
		globals:    map[string]object.Value{},
		initString: object.NewString("init"),
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.DefineNative("clock", clockNative)
	return m
}

// Interpret compiles and runs src. Compile diagnostics and runtime errors
// are written to the error writer as well as returned.
func (m *VM) Interpret(src string) (InterpretResult, error) {
	fn, err := compiler.CompileWithOptions(src, compiler.Options{PrintCode: m.printCode})
	if err != nil {
		log.Debugf("compile failed: %s", err)
		fmt.Fprintln(m.stderr, err)
		return InterpretCompileError, err
	}
	return m.Run(fn)
}

// Run executes an already compiled script function against the VM's
// current globals.
func (m *VM) Run(fn *object.Function) (InterpretResult, error) {
	m.stepsLeft = m.maxSteps
	m.interrupted.Store(false)

	cl := object.NewClosure(fn)
	m.push(object.ObjValue(cl))
	err := m.call(cl, 0)
	if err == nil {
		err = m.run()
	}
	m.resetStack()

	if err != nil {
		log.Debugf("runtime error: %s", err)
		fmt.Fprintln(m.stderr, err)
		return InterpretRuntimeError, err
	}
	return InterpretOK, nil
}

// Interrupt asks a running program to stop with an "Interrupted." runtime
// error. It is safe to call from another goroutine.
func (m *VM) Interrupt() {
	m.interrupted.Store(true)
}

// Reset discards the stack, call frames and open upvalues of an aborted
// run. Globals survive.
func (m *VM) Reset() {
	m.resetStack()
}

func (m *VM) resetStack() {
	m.stack = m.stack[:0]
	m.frames = m.frames[:0]
	m.openUpvalues = nil
}

func (m *VM) DefineNative(name string, fn object.NativeFn) {
	m.globals[name] = object.ObjValue(&object.Native{Name: name, Fn: fn})
}

func (m *VM) Global(name string) (object.Value, bool) {
	v, ok := m.globals[name]
	return v, ok
}

func (m *VM) push(v object.Value) {
	m.stack = append(m.stack, v)
}

func (m *VM) pop() object.Value {
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v
}

func (m *VM) peek(distance int) object.Value {
	return m.stack[len(m.stack)-1-distance]
}

func (m *VM) currentFrame() *Frame {
	return m.frames[len(m.frames)-1]
}

func (m *VM) pushFrame(f *Frame) {
	m.frames = append(m.frames, f)
}

func (m *VM) popFrame() *Frame {
	f := m.frames[len(m.frames)-1]
	m.frames = m.frames[:len(m.frames)-1]
	return f
}

// runtimeError captures the call stack, resets the VM and returns the error
// for the dispatch loop to hand back.
func (m *VM) runtimeError(format string, args ...any) error {
	err := &RuntimeError{Message: fmt.Sprintf(format, args...)}
	for i := len(m.frames) - 1; i >= 0; i-- {
		f := m.frames[i]
		t := TraceLine{Line: f.line()}
		if f.cl.Fn.Name != nil {
			t.Function = f.cl.Fn.Name.Value
		}
		err.Trace = append(err.Trace, t)
	}
	m.resetStack()
	return err
}

func (m *VM) run() error {
	frame := m.currentFrame()

	for {
		if m.trace != nil {
			m.traceInstruction(frame)
		}
		if m.interrupted.Load() {
			m.interrupted.Store(false)
			return m.runtimeError("Interrupted.")
		}
		if m.maxSteps > 0 {
			m.stepsLeft--
			if m.stepsLeft < 0 {
				return m.runtimeError("Step limit exceeded (%d).", m.maxSteps)
			}
		}

		op := code.Opcode(frame.readByte())

		switch op {
		case code.OpConstant:
			m.push(frame.readConstant())

		case code.OpNil:
			m.push(object.NilValue())
		case code.OpTrue:
			m.push(object.BoolValue(true))
		case code.OpFalse:
			m.push(object.BoolValue(false))

		case code.OpPop:
			m.pop()

		case code.OpGetLocal:
			slot := frame.readByte()
			m.push(m.stack[frame.basePointer+slot])

		case code.OpSetLocal:
			slot := frame.readByte()
			m.stack[frame.basePointer+slot] = m.peek(0)

		case code.OpGetGlobal:
			name := frame.readString()
			v, ok := m.globals[name.Value]
			if !ok {
				return m.runtimeError("Undefined variable '%s'.", name.Value)
			}
			m.push(v)

		case code.OpDefineGlobal:
			name := frame.readString()
			m.globals[name.Value] = m.peek(0)
			m.pop()

		case code.OpSetGlobal:
			name := frame.readString()
			if _, ok := m.globals[name.Value]; !ok {
				return m.runtimeError("Undefined variable '%s'.", name.Value)
			}
			m.globals[name.Value] = m.peek(0)

		case code.OpGetUpvalue:
			uv := frame.cl.Upvalues[frame.readByte()]
			if uv.IsOpen() {
				m.push(m.stack[uv.Location])
			} else {
				m.push(uv.Closed)
			}

		case code.OpSetUpvalue:
			uv := frame.cl.Upvalues[frame.readByte()]
			if uv.IsOpen() {
				m.stack[uv.Location] = m.peek(0)
			} else {
				uv.Closed = m.peek(0)
			}

		case code.OpGetProperty:
			inst, ok := m.peek(0).AsObj().(*object.Instance)
			if !ok {
				return m.runtimeError("Only instances have properties.")
			}
			name := frame.readString()

			if v, ok := inst.Fields[name.Value]; ok {
				m.pop()
				m.push(v)
				break
			}
			if err := m.bindMethod(inst.Class, name); err != nil {
				return err
			}

		case code.OpSetProperty:
			inst, ok := m.peek(1).AsObj().(*object.Instance)
			if !ok {
				return m.runtimeError("Only instances have fields.")
			}
			name := frame.readString()
			inst.Fields[name.Value] = m.peek(0)
			v := m.pop()
			m.pop()
			m.push(v)

		case code.OpGetSuper:
			name := frame.readString()
			superclass := m.pop().AsObj().(*object.Class)
			if err := m.bindMethod(superclass, name); err != nil {
				return err
			}

		case code.OpEqual:
			b := m.pop()
			a := m.pop()
			m.push(object.BoolValue(object.Equal(a, b)))

		case code.OpGreater, code.OpLess, code.OpSubtract, code.OpMultiply, code.OpDivide:
			if err := m.executeBinaryNumberOp(op); err != nil {
				return err
			}

		case code.OpAdd:
			if err := m.executeAdd(); err != nil {
				return err
			}

		case code.OpNot:
			m.push(object.BoolValue(m.pop().IsFalsey()))

		case code.OpNegate:
			if !m.peek(0).IsNumber() {
				return m.runtimeError("Operand must be a number.")
			}
			m.push(object.NumberValue(-m.pop().AsNumber()))

		case code.OpPrint:
			fmt.Fprintln(m.stdout, m.pop().String())

		case code.OpJump:
			offset := frame.readShort()
			frame.ip += offset

		case code.OpJumpIfFalse:
			offset := frame.readShort()
			if m.peek(0).IsFalsey() {
				frame.ip += offset
			}

		case code.OpLoop:
			offset := frame.readShort()
			frame.ip -= offset

		case code.OpCall:
			argCount := frame.readByte()
			if err := m.callValue(m.peek(argCount), argCount); err != nil {
				return err
			}
			frame = m.currentFrame()

		case code.OpInvoke:
			name := frame.readString()
			argCount := frame.readByte()
			if err := m.invoke(name, argCount); err != nil {
				return err
			}
			frame = m.currentFrame()

		case code.OpSuperInvoke:
			name := frame.readString()
			argCount := frame.readByte()
			superclass := m.pop().AsObj().(*object.Class)
			if err := m.invokeFromClass(superclass, name, argCount); err != nil {
				return err
			}
			frame = m.currentFrame()

		case code.OpClosure:
			fn := frame.readConstant().AsObj().(*object.Function)
			cl := object.NewClosure(fn)
			m.push(object.ObjValue(cl))
			for i := range cl.Upvalues {
				isLocal := frame.readByte()
				index := frame.readByte()
				if isLocal == 1 {
					cl.Upvalues[i] = m.captureUpvalue(frame.basePointer + index)
				} else {
					cl.Upvalues[i] = frame.cl.Upvalues[index]
				}
			}

		case code.OpCloseUpvalue:
			m.closeUpvalues(len(m.stack) - 1)
			m.pop()

		case code.OpReturn:
			result := m.pop()
			m.closeUpvalues(frame.basePointer)
			m.popFrame()
			if len(m.frames) == 0 {
				m.pop()
				return nil
			}

			m.stack = m.stack[:frame.basePointer]
			m.push(result)
			frame = m.currentFrame()

		case code.OpClass:
			m.push(object.ObjValue(object.NewClass(frame.readString())))

		case code.OpInherit:
			superclass, ok := m.peek(1).AsObj().(*object.Class)
			if !ok {
				return m.runtimeError("Superclass must be a class.")
			}
			subclass := m.peek(0).AsObj().(*object.Class)
			for name, method := range superclass.Methods {
				subclass.Methods[name] = method
			}
			m.pop()

		case code.OpMethod:
			m.defineMethod(frame.readString())

		default:
			return m.runtimeError("Unknown opcode %d.", byte(op))
		}
	}
}

func (m *VM) executeBinaryNumberOp(op code.Opcode) error {
	if !m.peek(0).IsNumber() || !m.peek(1).IsNumber() {
		return m.runtimeError("Operands must be numbers.")
	}
	b := m.pop().AsNumber()
	a := m.pop().AsNumber()

	switch op {
	case code.OpGreater:
		m.push(object.BoolValue(a > b))
	case code.OpLess:
		m.push(object.BoolValue(a < b))
	case code.OpSubtract:
		m.push(object.NumberValue(a - b))
	case code.OpMultiply:
		m.push(object.NumberValue(a * b))
	case code.OpDivide:
		// IEEE semantics: x/0 is ±inf and 0/0 is nan.
		m.push(object.NumberValue(a / b))
	}
	return nil
}

func (m *VM) executeAdd() error {
	switch {
	case m.peek(0).IsString() && m.peek(1).IsString():
		b := m.pop().AsString()
		a := m.pop().AsString()
		m.push(object.StringValue(a.Value + b.Value))
	case m.peek(0).IsNumber() && m.peek(1).IsNumber():
		b := m.pop().AsNumber()
		a := m.pop().AsNumber()
		m.push(object.NumberValue(a + b))
	default:
		return m.runtimeError("Operands must be two numbers or two strings.")
	}
	return nil
}

func (m *VM) traceInstruction(frame *Frame) {
	fmt.Fprint(m.trace, "          ")
	for _, v := range m.stack {
		fmt.Fprintf(m.trace, "[ %s ]", v)
	}
	fmt.Fprintln(m.trace)
	compiler.DisassembleInstruction(m.trace, &frame.cl.Fn.Chunk, frame.ip)
}
