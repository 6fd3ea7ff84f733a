package object

import (
	"math"
	"strconv"
)

type ValueType byte

const (
	VAL_NIL ValueType = iota
	VAL_BOOL
	VAL_NUMBER
	VAL_OBJ
)

// Value is the tagged union every stack slot, constant, global and field
// holds. The zero Value is nil.
type Value struct {
	typ ValueType
	num float64 // number payload; 1 or 0 for booleans
	obj Obj
}

func NilValue() Value { return Value{} }

func BoolValue(b bool) Value {
	if b {
		return Value{typ: VAL_BOOL, num: 1}
	}
	return Value{typ: VAL_BOOL}
}

func NumberValue(n float64) Value { return Value{typ: VAL_NUMBER, num: n} }

func ObjValue(o Obj) Value { return Value{typ: VAL_OBJ, obj: o} }

func StringValue(s string) Value { return ObjValue(NewString(s)) }

func (v Value) IsNil() bool    { return v.typ == VAL_NIL }
func (v Value) IsBool() bool   { return v.typ == VAL_BOOL }
func (v Value) IsNumber() bool { return v.typ == VAL_NUMBER }
func (v Value) IsObj() bool    { return v.typ == VAL_OBJ }

func (v Value) AsBool() bool      { return v.typ == VAL_BOOL && v.num != 0 }
func (v Value) AsNumber() float64 { return v.num }
func (v Value) AsObj() Obj        { return v.obj }

func (v Value) IsString() bool {
	_, ok := v.obj.(*String)
	return ok
}

func (v Value) AsString() *String {
	s, _ := v.obj.(*String)
	return s
}

// IsFalsey reports whether v counts as false in a condition: only nil and
// false do.
func (v Value) IsFalsey() bool {
	return v.typ == VAL_NIL || (v.typ == VAL_BOOL && v.num == 0)
}

// Equal compares strings by content and every other object by identity.
func Equal(a, b Value) bool {
	if a.typ != b.typ {
		return false
	}
	switch a.typ {
	case VAL_NIL:
		return true
	case VAL_BOOL, VAL_NUMBER:
		return a.num == b.num
	case VAL_OBJ:
		as, aok := a.obj.(*String)
		bs, bok := b.obj.(*String)
		if aok && bok {
			return as.Hash == bs.Hash && as.Value == bs.Value
		}
		return a.obj == b.obj
	}
	return false
}

// String renders v the way the print statement does.
func (v Value) String() string {
	switch v.typ {
	case VAL_NIL:
		return "nil"
	case VAL_BOOL:
		if v.num != 0 {
			return "true"
		}
		return "false"
	case VAL_NUMBER:
		return FormatNumber(v.num)
	case VAL_OBJ:
		return v.obj.Inspect()
	}
	return "?"
}

// FormatNumber prints n with six significant digits, dropping trailing zeros
// and switching to exponent form for very large or small magnitudes.
func FormatNumber(n float64) string {
	switch {
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	case math.IsNaN(n):
		return "nan"
	}
	return strconv.FormatFloat(n, 'g', 6, 64)
}
