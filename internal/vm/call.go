package vm

import "lox/internal/object"

// callValue dispatches on the kind of callee sitting argCount slots below
// the stack top.
func (m *VM) callValue(callee object.Value, argCount int) error {
	switch obj := callee.AsObj().(type) {
	case *object.BoundMethod:
		m.stack[len(m.stack)-argCount-1] = obj.Receiver
		return m.call(obj.Method, argCount)

	case *object.Class:
		m.stack[len(m.stack)-argCount-1] = object.ObjValue(object.NewInstance(obj))
		if initializer, ok := obj.Methods[m.initString.Value]; ok {
			return m.call(initializer, argCount)
		}
		if argCount != 0 {
			return m.runtimeError("Expected 0 arguments but got %d.", argCount)
		}
		return nil

	case *object.Closure:
		return m.call(obj, argCount)

	case *object.Native:
		top := len(m.stack)
		// Capped so a native appending to args cannot write into the stack.
		args := m.stack[top-argCount : top : top]
		result := obj.Fn(args)
		m.stack = m.stack[:top-argCount-1]
		m.push(result)
		return nil
	}
	return m.runtimeError("Can only call functions and classes.")
}

func (m *VM) call(cl *object.Closure, argCount int) error {
	if argCount != cl.Fn.Arity {
		return m.runtimeError("Expected %d arguments but got %d.", cl.Fn.Arity, argCount)
	}
	if len(m.frames) == MaxFrames {
		return m.runtimeError("Stack overflow.")
	}
	m.pushFrame(NewFrame(cl, len(m.stack)-argCount-1))
	return nil
}

// invoke is a fused property get and call. A field holding a callable
// shadows a method of the same name.
func (m *VM) invoke(name *object.String, argCount int) error {
	inst, ok := m.peek(argCount).AsObj().(*object.Instance)
	if !ok {
		return m.runtimeError("Only instances have methods.")
	}

	if v, ok := inst.Fields[name.Value]; ok {
		m.stack[len(m.stack)-argCount-1] = v
		return m.callValue(v, argCount)
	}
	return m.invokeFromClass(inst.Class, name, argCount)
}

func (m *VM) invokeFromClass(class *object.Class, name *object.String, argCount int) error {
	method, ok := class.Methods[name.Value]
	if !ok {
		return m.runtimeError("Undefined property '%s'.", name.Value)
	}
	return m.call(method, argCount)
}

// bindMethod replaces the instance on top of the stack with its method
// name bound to it.
func (m *VM) bindMethod(class *object.Class, name *object.String) error {
	method, ok := class.Methods[name.Value]
	if !ok {
		return m.runtimeError("Undefined property '%s'.", name.Value)
	}
	bound := &object.BoundMethod{Receiver: m.peek(0), Method: method}
	m.pop()
	m.push(object.ObjValue(bound))
	return nil
}

func (m *VM) defineMethod(name *object.String) {
	method := m.peek(0).AsObj().(*object.Closure)
	class := m.peek(1).AsObj().(*object.Class)
	class.Methods[name.Value] = method
	m.pop()
}

// captureUpvalue returns the open upvalue for slot, creating it if no
// closure has captured that slot yet.
func (m *VM) captureUpvalue(slot int) *object.Upvalue {
	var prev *object.Upvalue
	uv := m.openUpvalues
	for uv != nil && uv.Location > slot {
		prev = uv
		uv = uv.Next
	}
	if uv != nil && uv.Location == slot {
		return uv
	}

	created := object.NewUpvalue(slot)
	created.Next = uv
	if prev == nil {
		m.openUpvalues = created
	} else {
		prev.Next = created
	}
	return created
}

// closeUpvalues closes every open upvalue at or above stack slot last.
func (m *VM) closeUpvalues(last int) {
	for m.openUpvalues != nil && m.openUpvalues.Location >= last {
		uv := m.openUpvalues
		m.openUpvalues = uv.Next
		uv.Close(m.stack[uv.Location])
	}
}
