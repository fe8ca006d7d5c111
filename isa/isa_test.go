package isa_test

import (
	"testing"

	"github.com/dmbetz/mbasic/isa"
)

func TestCellRoundTrip(t *testing.T) {
	cases := []isa.Cell{0, 1, -1, 1 << 20, -(1 << 20), 0x7fffffff, -0x7fffffff}
	for _, c := range cases {
		b := make([]byte, isa.CellSize)
		isa.PutCell(b, c)
		if got := isa.GetCell(b); got != c {
			t.Errorf("PutCell/GetCell(%d): got %d", c, got)
		}
	}
}

func TestCellBigEndian(t *testing.T) {
	b := make([]byte, isa.CellSize)
	isa.PutCell(b, 0x01020304)
	want := []byte{0x01, 0x02, 0x03, 0x04}
	for i, w := range want {
		if b[i] != w {
			t.Fatalf("byte %d: got %#x, want %#x", i, b[i], w)
		}
	}
}

func TestWordRoundTrip(t *testing.T) {
	cases := []isa.Word{0, 1, -1, 32000, -32000}
	for _, w := range cases {
		b := make([]byte, isa.WordSize)
		isa.PutWord(b, w)
		if got := isa.GetWord(b); got != w {
			t.Errorf("PutWord/GetWord(%d): got %d", w, got)
		}
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	h := isa.ImageHdr{Entry: 4, DataOffset: 128, DataSize: 64, ImageSize: 192}
	b := make([]byte, isa.HeaderSize)
	isa.PutHeader(b, h)
	if got := isa.GetHeader(b); got != h {
		t.Fatalf("GetHeader: got %+v, want %+v", got, h)
	}
}

func TestDataOffsetUnsignedCompare(t *testing.T) {
	// An address at DataOffset reads as a negative Cell; callers must
	// compare as UCell, not Cell, to route it to DATA rather than TEXT.
	dataOffset := isa.DataOffset
	addr := isa.Cell(dataOffset)
	if addr >= 0 {
		t.Fatalf("expected DataOffset to read back negative as a signed Cell, got %d", addr)
	}
	if isa.UCell(addr) < isa.DataOffset {
		t.Fatalf("unsigned reinterpretation should compare >= DataOffset")
	}
}

func TestOpcodeString(t *testing.T) {
	if s := isa.OpADD.String(); s != "add" {
		t.Errorf("OpADD.String() = %q, want %q", s, "add")
	}
	if s := isa.Opcode(255).String(); s != "???" {
		t.Errorf("unknown opcode String() = %q, want %q", s, "???")
	}
}

func TestTrapString(t *testing.T) {
	if s := isa.TrapPrintNL.String(); s != "PrintNL" {
		t.Errorf("TrapPrintNL.String() = %q, want %q", s, "PrintNL")
	}
	if s := isa.Trap(255).String(); s != "???" {
		t.Errorf("unknown trap String() = %q, want %q", s, "???")
	}
}
