package vm

import (
	"testing"

	"github.com/dmbetz/mbasic/isa"
)

func newTestInstance(stackSize int) *Instance {
	in := &Instance{stackSize: stackSize}
	in.stack = make([]isa.Cell, stackSize+1)
	in.sp = stackSize
	in.fp = stackSize
	return in
}

func TestPushPopTos(t *testing.T) {
	in := newTestInstance(8)
	in.tos = 1
	in.pushTos(2)
	in.pushTos(3)
	if in.tos != 3 {
		t.Fatalf("tos = %d, want 3", in.tos)
	}
	if got := in.pop(); got != 2 {
		t.Fatalf("pop() = %d, want 2 (the old tos relocated by the second pushTos)", got)
	}
	if got := in.pop(); got != 1 {
		t.Fatalf("pop() = %d, want 1", got)
	}
}

func TestReserveAndDrop(t *testing.T) {
	in := newTestInstance(8)
	startSP := in.sp
	in.reserve(3)
	if in.sp != startSP-3 {
		t.Fatalf("sp = %d, want %d", in.sp, startSP-3)
	}
	in.drop(3)
	if in.sp != startSP {
		t.Fatalf("sp = %d, want %d", in.sp, startSP)
	}
}

func TestStackOverflowFaults(t *testing.T) {
	in := newTestInstance(2)
	defer func() {
		r := recover()
		e, ok := r.(*Error)
		if !ok {
			t.Fatalf("expected a panic with *Error, got %v", r)
		}
		if e.Message != "stack overflow" {
			t.Fatalf("Message = %q, want %q", e.Message, "stack overflow")
		}
	}()
	in.reserve(3)
}

// TestFrameReturnLinkage exercises OP_FRAME/OP_CALL/OP_RETURN directly,
// the way a compiler-emitted call to a single-argument user function
// (FRAME cnt=2, the last-pushed argument sitting at offset 0 from FP)
// would: call a tiny function that loads its argument with LREF and
// returns it doubled.
func TestFrameReturnLinkage(t *testing.T) {
	// function body, assembled by hand at TEXT offset 0:
	//   FRAME 2
	//   LREF 0       ; the one argument, which FRAME's fp lands directly on
	//   LIT 2
	//   MUL
	//   RETURN
	fn := []byte{
		byte(isa.OpFRAME), 2,
		byte(isa.OpLREF), 0,
		byte(isa.OpLIT), 0, 0, 0, 2,
		byte(isa.OpMUL),
		byte(isa.OpRETURN),
	}
	// main: push the argument, CALL fn with argc=1, HALT
	main := []byte{
		byte(isa.OpLIT), 0, 0, 0, 21,
		byte(isa.OpLIT), 0, 0, 0, 0, // callee address patched below
		byte(isa.OpCALL), 1,
		byte(isa.OpHALT),
	}
	callAddr := 0 // fn sits at TEXT offset 0
	isa.PutCell(main[6:], isa.Cell(callAddr))

	text := append(append([]byte{}, fn...), main...)
	in := newTestInstance(32)
	in.text = text
	in.PC = len(fn)

	if err := in.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if in.tos != 42 {
		t.Fatalf("result = %d, want 42", in.tos)
	}
	if in.sp != in.stackSize-1 {
		t.Fatalf("sp = %d, want %d (only main's initial tos, spilled by the first LIT, remains below the result after RETURN's argc cleanup)", in.sp, in.stackSize-1)
	}
}
