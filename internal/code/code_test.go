package code

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		op       Opcode
		operands []int
		expected []byte
	}{
		{OpConstant, []int{254}, []byte{byte(OpConstant), 254}},
		{OpJump, []int{65534}, []byte{byte(OpJump), 255, 254}},
		{OpInvoke, []int{3, 2}, []byte{byte(OpInvoke), 3, 2}},
		{OpReturn, nil, []byte{byte(OpReturn)}},
	}

	for _, tt := range tests {
		ins := Make(tt.op, tt.operands...)
		if len(ins) != len(tt.expected) {
			t.Fatalf("%s: wrong length. want=%d got=%d", tt.op, len(tt.expected), len(ins))
		}
		for i, b := range tt.expected {
			if ins[i] != b {
				t.Fatalf("%s: wrong byte at %d. want=%d got=%d", tt.op, i, b, ins[i])
			}
		}
	}
}

func TestReadOperands(t *testing.T) {
	tests := []struct {
		op        Opcode
		operands  []int
		bytesRead int
	}{
		{OpLoop, []int{513}, 2},
		{OpSuperInvoke, []int{7, 255}, 2},
		{OpGetLocal, []int{9}, 1},
	}

	for _, tt := range tests {
		ins := Make(tt.op, tt.operands...)
		def, ok := Lookup(tt.op)
		if !ok {
			t.Fatalf("definition not found: %d", tt.op)
		}

		got, n := ReadOperands(def, ins[1:])
		if n != tt.bytesRead {
			t.Fatalf("%s: n wrong. want=%d got=%d", tt.op, tt.bytesRead, n)
		}
		for i, want := range tt.operands {
			if got[i] != want {
				t.Fatalf("%s: operand %d wrong. want=%d got=%d", tt.op, i, want, got[i])
			}
		}
	}
}

func TestEveryOpcodeHasADefinition(t *testing.T) {
	for op := OpConstant; op <= OpMethod; op++ {
		if _, ok := Lookup(op); !ok {
			t.Fatalf("opcode %d has no definition", op)
		}
	}
	if OpMethod.String() != "OP_METHOD" {
		t.Fatalf("unexpected name %q", OpMethod.String())
	}
}
