package object

import (
	"math"
	"testing"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{-3, "-3"},
		{2.5, "2.5"},
		{1.0 / 3.0, "0.333333"},
		{100000, "100000"},
		{1000000, "1e+06"},
		{123456789, "1.23457e+08"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
		{math.NaN(), "nan"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Fatalf("FormatNumber(%v): want=%q got=%q", tt.in, tt.want, got)
		}
	}
}

func TestEqual(t *testing.T) {
	fn := NewFunction()
	c1 := NewClosure(fn)
	c2 := NewClosure(fn)

	tests := []struct {
		a, b Value
		want bool
	}{
		{NilValue(), NilValue(), true},
		{NilValue(), BoolValue(false), false},
		{BoolValue(true), BoolValue(true), true},
		{BoolValue(true), BoolValue(false), false},
		{NumberValue(1), NumberValue(1), true},
		{NumberValue(0), BoolValue(false), false},
		{NumberValue(math.NaN()), NumberValue(math.NaN()), false},
		{StringValue("ab"), StringValue("ab"), true},
		{StringValue("ab"), StringValue("ba"), false},
		{ObjValue(c1), ObjValue(c1), true},
		{ObjValue(c1), ObjValue(c2), false},
	}
	for i, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Fatalf("tests[%d]: Equal(%s, %s) want=%v got=%v", i, tt.a, tt.b, tt.want, got)
		}
	}
}

func TestFalsiness(t *testing.T) {
	falsey := []Value{NilValue(), BoolValue(false)}
	truthy := []Value{BoolValue(true), NumberValue(0), StringValue("")}

	for _, v := range falsey {
		if !v.IsFalsey() {
			t.Fatalf("%s should be falsey", v)
		}
	}
	for _, v := range truthy {
		if v.IsFalsey() {
			t.Fatalf("%q should be truthy", v.String())
		}
	}
}

func TestInspect(t *testing.T) {
	fn := NewFunction()
	fn.Name = NewString("area")
	class := NewClass(NewString("Circle"))
	inst := NewInstance(class)
	bound := &BoundMethod{Receiver: ObjValue(inst), Method: NewClosure(fn)}

	tests := []struct {
		v    Value
		want string
	}{
		{NilValue(), "nil"},
		{BoolValue(true), "true"},
		{StringValue("raw \"text\""), "raw \"text\""},
		{ObjValue(NewFunction()), "<script>"},
		{ObjValue(fn), "<fn area>"},
		{ObjValue(NewClosure(fn)), "<fn area>"},
		{ObjValue(&Native{Name: "clock"}), "<native fn>"},
		{ObjValue(class), "Circle"},
		{ObjValue(inst), "Circle instance"},
		{ObjValue(bound), "<fn area>"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Fatalf("want=%q got=%q", tt.want, got)
		}
	}
}

func TestChunkWrite(t *testing.T) {
	var c Chunk
	c.Write(1, 10)
	pos := c.WriteInstruction([]byte{2, 3, 4}, 11)

	if pos != 1 {
		t.Fatalf("want offset 1, got %d", pos)
	}
	if len(c.Code) != len(c.Lines) {
		t.Fatalf("code/lines out of step: %d vs %d", len(c.Code), len(c.Lines))
	}
	if c.Lines[3] != 11 {
		t.Fatalf("wrong line attribution: %v", c.Lines)
	}
	if idx := c.AddConstant(NumberValue(1)); idx != 0 {
		t.Fatalf("first constant index %d", idx)
	}
	if idx := c.AddConstant(NumberValue(2)); idx != 1 {
		t.Fatalf("second constant index %d", idx)
	}
}

func TestUpvalueClose(t *testing.T) {
	u := NewUpvalue(3)
	u.Next = NewUpvalue(1)
	if !u.IsOpen() {
		t.Fatalf("new upvalue should be open")
	}
	u.Close(NumberValue(42))
	if u.IsOpen() || u.Next != nil {
		t.Fatalf("closed upvalue should be detached")
	}
	if u.Closed.AsNumber() != 42 {
		t.Fatalf("closed value lost: %s", u.Closed)
	}
}
