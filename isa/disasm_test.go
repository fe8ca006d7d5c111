package isa_test

import (
	"testing"

	"github.com/dmbetz/mbasic/isa"
)

func TestDisassemble(t *testing.T) {
	cases := []struct {
		name string
		text []byte
		pc   int
		next int
		want string
	}{
		{"halt", []byte{byte(isa.OpHALT)}, 0, 1, "halt"},
		{"drop", []byte{byte(isa.OpDROP)}, 0, 1, "drop"},
		{
			"slit", []byte{byte(isa.OpSLIT), 0xfe}, 0, 2, "slit -2",
		},
		{
			"frame", []byte{byte(isa.OpFRAME), 2}, 0, 2, "frame 2",
		},
		{
			"trap", []byte{byte(isa.OpTRAP), byte(isa.TrapPrintNL)}, 0, 2, "trap PrintNL",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			next, s := isa.Disassemble(c.text, c.pc)
			if next != c.next || s != c.want {
				t.Errorf("Disassemble(%v, %d) = (%d, %q), want (%d, %q)", c.text, c.pc, next, s, c.next, c.want)
			}
		})
	}
}

func TestDisassembleBranchTargetsAreAbsolute(t *testing.T) {
	// br +2, landing two bytes past the end of the branch instruction itself.
	text := make([]byte, 3)
	text[0] = byte(isa.OpBR)
	isa.PutWord(text[1:], 2)
	next, s := isa.Disassemble(text, 0)
	if next != 3 {
		t.Fatalf("next = %d, want 3", next)
	}
	if s != "br 5" {
		t.Fatalf("Disassemble = %q, want %q", s, "br 5")
	}
}

func TestDisassembleLiteral(t *testing.T) {
	text := make([]byte, 5)
	text[0] = byte(isa.OpLIT)
	isa.PutCell(text[1:], 12345)
	next, s := isa.Disassemble(text, 0)
	if next != 5 || s != "lit 12345" {
		t.Fatalf("Disassemble = (%d, %q), want (5, \"lit 12345\")", next, s)
	}
}

func TestDisassembleTruncated(t *testing.T) {
	text := []byte{byte(isa.OpLIT), 1, 2}
	next, s := isa.Disassemble(text, 0)
	if next != len(text) {
		t.Fatalf("next = %d, want %d", next, len(text))
	}
	if s != "lit ???" {
		t.Fatalf("Disassemble = %q, want %q", s, "lit ???")
	}
}
