package object

type Type string

const (
	STRING_OBJ       Type = "STRING"
	FUNCTION_OBJ     Type = "FUNCTION"
	CLOSURE_OBJ      Type = "CLOSURE"
	UPVALUE_OBJ      Type = "UPVALUE"
	CLASS_OBJ        Type = "CLASS"
	INSTANCE_OBJ     Type = "INSTANCE"
	BOUND_METHOD_OBJ Type = "BOUND_METHOD"
	NATIVE_OBJ       Type = "NATIVE"
)

// Obj is a heap object referenced from a Value. The set of implementations is
// closed: every variant lives in this file.
type Obj interface {
	Type() Type
	Inspect() string
}

type String struct {
	Value string
	Hash  uint32
}

func NewString(s string) *String {
	return &String{Value: s, Hash: hashString(s)}
}

func (*String) Type() Type        { return STRING_OBJ }
func (s *String) Inspect() string { return s.Value }

// Function is the compiled form of a function body. Name is nil for the
// top-level script.
type Function struct {
	Name         *String
	Arity        int
	UpvalueCount int
	Chunk        Chunk
}

func NewFunction() *Function { return &Function{} }

func (*Function) Type() Type { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	if f.Name == nil {
		return "<script>"
	}
	return "<fn " + f.Name.Value + ">"
}

// DisplayName is the name used in stack traces and disassembly headers.
func (f *Function) DisplayName() string {
	if f.Name == nil {
		return "script"
	}
	return f.Name.Value
}

type Closure struct {
	Fn       *Function
	Upvalues []*Upvalue
}

func NewClosure(fn *Function) *Closure {
	return &Closure{Fn: fn, Upvalues: make([]*Upvalue, fn.UpvalueCount)}
}

func (*Closure) Type() Type        { return CLOSURE_OBJ }
func (c *Closure) Inspect() string { return c.Fn.Inspect() }

// Upvalue is a captured variable. While open, Location is the operand stack
// slot it aliases and Next links to the open upvalue with the next lower
// slot. Closing copies the slot into Closed and sets Location to -1.
type Upvalue struct {
	Location int
	Closed   Value
	Next     *Upvalue
}

func NewUpvalue(slot int) *Upvalue {
	return &Upvalue{Location: slot, Closed: NilValue()}
}

func (*Upvalue) Type() Type      { return UPVALUE_OBJ }
func (*Upvalue) Inspect() string { return "upvalue" }

func (u *Upvalue) IsOpen() bool { return u.Location >= 0 }

func (u *Upvalue) Close(v Value) {
	u.Closed = v
	u.Location = -1
	u.Next = nil
}

type Class struct {
	Name    *String
	Methods map[string]*Closure
}

func NewClass(name *String) *Class {
	return &Class{Name: name, Methods: map[string]*Closure{}}
}

func (*Class) Type() Type        { return CLASS_OBJ }
func (c *Class) Inspect() string { return c.Name.Value }

type Instance struct {
	Class  *Class
	Fields map[string]Value
}

func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: map[string]Value{}}
}

func (*Instance) Type() Type        { return INSTANCE_OBJ }
func (i *Instance) Inspect() string { return i.Class.Name.Value + " instance" }

type BoundMethod struct {
	Receiver Value
	Method   *Closure
}

func (*BoundMethod) Type() Type        { return BOUND_METHOD_OBJ }
func (b *BoundMethod) Inspect() string { return b.Method.Inspect() }

// NativeFn receives the call's arguments in order. The slice aliases the
// VM stack and must not be retained.
type NativeFn func(args []Value) Value

type Native struct {
	Name string
	Fn   NativeFn
}

func (*Native) Type() Type      { return NATIVE_OBJ }
func (*Native) Inspect() string { return "<native fn>" }
