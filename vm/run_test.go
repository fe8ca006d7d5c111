package vm_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dmbetz/mbasic/compiler"
	"github.com/dmbetz/mbasic/isa"
	"github.com/dmbetz/mbasic/vm"
)

// fakeHost is a minimal vm.Host: GetChar reads from a fixed byte queue,
// PutChar accumulates into a buffer and Flush does nothing, DelayMs and
// UpdateLeds are no-ops recorded for inspection.
type fakeHost struct {
	in       []byte
	out      bytes.Buffer
	delays   []isa.Cell
	ledCalls int
}

func (h *fakeHost) GetChar() (isa.Cell, error) {
	if len(h.in) == 0 {
		return 0, errors.New("fakeHost: input exhausted")
	}
	c := h.in[0]
	h.in = h.in[1:]
	return isa.Cell(c), nil
}

func (h *fakeHost) PutChar(b byte) error { return h.out.WriteByte(b) }
func (h *fakeHost) Flush() error         { return nil }
func (h *fakeHost) DelayMs(ms isa.Cell) error {
	h.delays = append(h.delays, ms)
	return nil
}
func (h *fakeHost) UpdateLeds() error { h.ledCalls++; return nil }

func lineSource(src string) compiler.GetLine {
	lines := strings.Split(strings.TrimRight(src, "\n"), "\n")
	i := 0
	return func() (string, bool) {
		if i >= len(lines) {
			return "", false
		}
		l := lines[i]
		i++
		return l, true
	}
}

func compileAndRun(t *testing.T, src string, h *fakeHost) {
	t.Helper()
	hdr, text, data, err := compiler.Compile(lineSource(src))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	in, err := vm.New(hdr, text, data, h)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := in.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunPrintString(t *testing.T) {
	h := &fakeHost{}
	compileAndRun(t, "PRINT \"hello\"\n", h)
	if got := h.out.String(); got != "hello\n" {
		t.Fatalf("output = %q, want %q", got, "hello\n")
	}
}

func TestRunPrintInt(t *testing.T) {
	h := &fakeHost{}
	compileAndRun(t, "PRINT 1 + 2 * 3\n", h)
	if got := h.out.String(); got != "7\n" {
		t.Fatalf("output = %q, want %q", got, "7\n")
	}
}

func TestRunForLoop(t *testing.T) {
	h := &fakeHost{}
	src := "DIM i\nDIM total\ntotal = 0\nFOR i = 1 TO 5\ntotal = total + i\nNEXT i\nPRINT total\n"
	compileAndRun(t, src, h)
	if got := h.out.String(); got != "15\n" {
		t.Fatalf("output = %q, want %q", got, "15\n")
	}
}

func TestRunUserFunctionCall(t *testing.T) {
	h := &fakeHost{}
	src := "DEF double(n)\nRETURN n * 2\nEND DEF\nPRINT double(21)\n"
	compileAndRun(t, src, h)
	if got := h.out.String(); got != "42\n" {
		t.Fatalf("output = %q, want %q", got, "42\n")
	}
}

func TestRunArrayIndexing(t *testing.T) {
	h := &fakeHost{}
	src := "DIM a(3)\na(0) = 10\na(1) = 20\na(2) = 30\nPRINT a(0) + a(1) + a(2)\n"
	compileAndRun(t, src, h)
	if got := h.out.String(); got != "60\n" {
		t.Fatalf("output = %q, want %q", got, "60\n")
	}
}

// TestRunShortCircuitAndSkipsRightOperand proves AND actually short-
// circuits at run time, not just that codeShortCircuit's branch pattern
// looks right on paper: bump() is only ever reachable through the right
// operand of "x > 10 AND bump(1) = 1", so a final count of 0 confirms the
// left operand's falseness skipped it entirely. patternNum (one of the
// built-in globals every program starts with) stands in for a counter,
// since a DEF must compile before any user DIM and so can only reference
// symbols that exist ahead of the main program.
func TestRunShortCircuitAndSkipsRightOperand(t *testing.T) {
	h := &fakeHost{}
	src := "DEF bump(n)\npatternNum = patternNum + 1\nRETURN n\nEND DEF\n" +
		"DIM x\nx = 4\npatternNum = 0\n" +
		"IF x > 10 AND bump(1) = 1 THEN\nPRINT \"unreachable\"\nELSE\nPRINT \"ok\"\nEND IF\n" +
		"PRINT patternNum\n"
	compileAndRun(t, src, h)
	if got := h.out.String(); got != "ok\n0\n" {
		t.Fatalf("output = %q, want %q", got, "ok\n0\n")
	}
}

func TestRunIfElse(t *testing.T) {
	h := &fakeHost{}
	src := "DIM x\nx = 4\nIF x > 10 THEN\nPRINT \"big\"\nELSE\nPRINT \"small\"\nEND IF\n"
	compileAndRun(t, src, h)
	if got := h.out.String(); got != "small\n" {
		t.Fatalf("output = %q, want %q", got, "small\n")
	}
}

// TestRunImageRoundTrip exercises the same program through WriteImage and
// LoadImage, the way cmd/mbasicc and cmd/mbasicvm hand an image to each
// other across a file.
func TestRunImageRoundTrip(t *testing.T) {
	hdr, text, data, err := compiler.Compile(lineSource("PRINT \"roundtrip\"\n"))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	var buf bytes.Buffer
	if err := vm.WriteImage(&buf, hdr, text, data); err != nil {
		t.Fatalf("WriteImage: %v", err)
	}
	ldHdr, ldText, ldData, err := vm.LoadImage(&buf)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	h := &fakeHost{}
	in, err := vm.New(ldHdr, ldText, ldData, h)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := in.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := h.out.String(); got != "roundtrip\n" {
		t.Fatalf("output = %q, want %q", got, "roundtrip\n")
	}
}

// TestRunFreshDataPerInstance confirms LoadImage hands back an independent
// DATA copy each time, so running the same loaded image twice doesn't leak
// mutated globals from the first run into the second.
func TestRunFreshDataPerInstance(t *testing.T) {
	hdr, text, data, err := compiler.Compile(lineSource("DIM x\nx = x + 1\nPRINT x\n"))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	var buf bytes.Buffer
	if err := vm.WriteImage(&buf, hdr, text, data); err != nil {
		t.Fatalf("WriteImage: %v", err)
	}
	raw := buf.Bytes()

	for i := 0; i < 2; i++ {
		ldHdr, ldText, ldData, err := vm.LoadImage(bytes.NewReader(raw))
		if err != nil {
			t.Fatalf("LoadImage: %v", err)
		}
		h := &fakeHost{}
		in, err := vm.New(ldHdr, ldText, ldData, h)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := in.Run(); err != nil {
			t.Fatalf("Run: %v", err)
		}
		if got := h.out.String(); got != "1\n" {
			t.Fatalf("run %d: output = %q, want %q", i, got, "1\n")
		}
	}
}

func TestRunStackOverflowFaults(t *testing.T) {
	h := &fakeHost{}
	hdr, text, data, err := compiler.Compile(lineSource("DEF rec(n)\nRETURN rec(n)\nEND DEF\nPRINT rec(1)\n"))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	in, err := vm.New(hdr, text, data, h, vm.StackSize(16))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := in.Run(); err == nil {
		t.Fatal("expected unbounded recursion to fault with a stack overflow")
	}
}

func TestRunDelayAndLedsTraps(t *testing.T) {
	h := &fakeHost{}
	compileAndRun(t, "delayMs(5)\nupdateLeds()\n", h)
	if len(h.delays) != 1 || h.delays[0] != 5 {
		t.Fatalf("delays = %v, want [5]", h.delays)
	}
	if h.ledCalls != 1 {
		t.Fatalf("ledCalls = %d, want 1", h.ledCalls)
	}
}
