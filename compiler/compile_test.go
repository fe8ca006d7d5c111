package compiler_test

import (
	"bufio"
	"strings"
	"testing"

	"github.com/dmbetz/mbasic/compiler"
	"github.com/dmbetz/mbasic/isa"
)

// lineSource returns a compiler.GetLine that walks src one line at a time,
// the shape cmd/mbasicc drives Compile with.
func lineSource(src string) compiler.GetLine {
	sc := bufio.NewScanner(strings.NewReader(src))
	return func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		return sc.Text(), true
	}
}

func TestCompileMinimalProgram(t *testing.T) {
	hdr, text, data, err := compiler.Compile(lineSource("PRINT \"hello\"\n"))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(text) == 0 {
		t.Fatal("expected non-empty TEXT")
	}
	if text[len(text)-1] != byte(isa.OpHALT) {
		t.Fatalf("expected program to end in HALT, last byte = %#x", text[len(text)-1])
	}
	if int(hdr.DataOffset) != isa.HeaderSize+len(text) {
		t.Fatalf("DataOffset = %d, want %d", hdr.DataOffset, isa.HeaderSize+len(text))
	}
	if int(hdr.ImageSize) != isa.HeaderSize+len(text)+len(data) {
		t.Fatalf("ImageSize = %d, want %d", hdr.ImageSize, isa.HeaderSize+len(text)+len(data))
	}
}

func TestCompileStringLiteralIsNulTerminatedInText(t *testing.T) {
	_, text, _, err := compiler.Compile(lineSource("PRINT \"hi\"\n"))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !strings.Contains(string(text), "hi\x00") {
		t.Fatalf("expected TEXT to contain a NUL-terminated \"hi\", got % x", text)
	}
}

func TestCompileSharedStringLiteralIsInternedOnce(t *testing.T) {
	src := "PRINT \"dup\"\nPRINT \"dup\"\n"
	_, text, _, err := compiler.Compile(lineSource(src))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if n := strings.Count(string(text), "dup\x00"); n != 1 {
		t.Fatalf("expected \"dup\" to appear exactly once in TEXT, appeared %d times", n)
	}
}

func TestCompileDimAllocatesData(t *testing.T) {
	_, _, base, err := compiler.Compile(lineSource("STOP\n"))
	if err != nil {
		t.Fatalf("Compile (baseline): %v", err)
	}
	_, _, data, err := compiler.Compile(lineSource("DIM x\nDIM a(10)\nx = 1\n"))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	// DIM adds one cell for x and ten for a(10), on top of whatever DATA
	// the built-in globals already reserve.
	want := 11 * isa.CellSize
	if got := len(data) - len(base); got != want {
		t.Fatalf("DIM added %d bytes of DATA, want %d", got, want)
	}
}

func TestCompileFunctionDefinitionPrecedesMain(t *testing.T) {
	src := "DEF double(n)\nRETURN n * 2\nEND DEF\nPRINT double(21)\n"
	_, _, _, err := compiler.Compile(lineSource(src))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
}

func TestCompileFunctionAfterMainIsAnError(t *testing.T) {
	src := "PRINT 1\nDEF f(n)\nRETURN n\nEND DEF\n"
	_, _, _, err := compiler.Compile(lineSource(src))
	if err == nil {
		t.Fatal("expected an error for a DEF following the main program")
	}
}

func TestCompileErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"undefined symbol", "x = 1\n"},
		{"duplicate function", "DEF f(n)\nRETURN n\nEND DEF\nDEF f(n)\nRETURN n\nEND DEF\nPRINT f(1)\n"},
		{"next without matching for var", "DIM i\nDIM j\nFOR i = 1 TO 3\nNEXT j\n"},
		{"call to undefined function", "PRINT missing(1)\n"},
		{"unterminated string literal", "PRINT \"abc\n"},
		{"nested function definition", "DEF f()\nDEF g()\nRETURN 1\nEND DEF\nRETURN 1\nEND DEF\nPRINT f()\n"},
		{"if nesting deeper than 10", nestedIf(11)},
		{"do nesting deeper than 10", nestedDo(11)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, _, _, err := compiler.Compile(lineSource(c.src)); err == nil {
				t.Fatalf("expected an error compiling:\n%s", c.src)
			}
		})
	}
}

// nestedIf builds a program whose IF blocks nest n deep, to probe the
// shared 10-deep block stack budget (maxBlocks in compiler.go).
func nestedIf(n int) string {
	return strings.Repeat("IF 1 THEN\n", n) + strings.Repeat("END IF\n", n)
}

// nestedDo builds a program whose DO blocks nest n deep, for the same
// reason as nestedIf.
func nestedDo(n int) string {
	return strings.Repeat("DO\n", n) + strings.Repeat("LOOP\n", n)
}

func TestCompileIfNestingWithinBudgetSucceeds(t *testing.T) {
	if _, _, _, err := compiler.Compile(lineSource(nestedIf(10))); err != nil {
		t.Fatalf("Compile: %v", err)
	}
}

func TestCompileDoNestingWithinBudgetSucceeds(t *testing.T) {
	if _, _, _, err := compiler.Compile(lineSource(nestedDo(10))); err != nil {
		t.Fatalf("Compile: %v", err)
	}
}

// TestCompileHeapExhaustionAborts checks that the compiler-heap budget
// (heapMax in compiler.go) is a real, enforced cap rather than documentation:
// an expression with hundreds of terms allocates far more AST nodes than
// heapMax allows, and must fail to compile rather than silently growing
// without bound.
func TestCompileHeapExhaustionAborts(t *testing.T) {
	src := "PRINT " + strings.Repeat("1+", 400) + "1\n"
	if _, _, _, err := compiler.Compile(lineSource(src)); err == nil {
		t.Fatal("expected a huge expression to exhaust the compiler heap")
	}
}

func TestCompileErrorReportsLine(t *testing.T) {
	_, _, _, err := compiler.Compile(lineSource("PRINT 1\nPRINT 2\nx = 1\n"))
	if err == nil {
		t.Fatal("expected an error")
	}
	ce, ok := err.(*compiler.Error)
	if !ok {
		t.Fatalf("expected *compiler.Error, got %T", err)
	}
	if ce.Line != 3 {
		t.Fatalf("Line = %d, want 3", ce.Line)
	}
}
