package compiler

import "github.com/dmbetz/mbasic/isa"

// Resource limits, named after the original's TEXTMAX/DATAMAX. Running out
// of either is a compile-time abort, never a silent truncation. The
// staging buffer for the unit being compiled (the code field below) has no
// separate limit of its own, like the original's MAXCODE: it is capped at
// textMax too.
const (
	textMax   = 8192 // TEXT segment of the produced image
	dataMax   = 1024 // DATA segment of the produced image, in cells
	maxBlocks = 10   // nested IF/FOR/DO blocks

	// heapMax is the compiler's own working-set budget: AST nodes, symbol
	// table entries and string pool descriptors all come out of it, the way
	// the original's fixed-size parse heap bounds every allocation a compile
	// makes that isn't TEXT or DATA. Unlike those two, Go's allocator has no
	// natural place to put a hard cap, so each allocator below charges an
	// estimated per-entry cost against heapUsed and aborts on overflow
	// rather than tracking exact byte counts.
	heapMax = 5 * 1024

	nodeCost   = 56 // approximate footprint of one AST node
	symbolCost = 48 // approximate footprint of one symbol table entry
	stringCost = 24 // approximate footprint of one interned string descriptor
)

// codeType distinguishes the program's main body from a function body
// under construction; parseReturn uses it to reject RETURN outside a
// function body.
type codeType int

const (
	codeMain codeType = iota
	codeFunction
)

// Compiler holds every piece of state a translation unit needs: the
// scanner, the three symbol tables, the string pool, the node arena, the
// block/label stack and the staging and image buffers. Unlike the
// original's single global ParseContext, one is constructed per call to
// Compile and discarded afterward.
type Compiler struct {
	scanner *scanner

	globals   symbolTable
	arguments symbolTable
	locals    symbolTable
	localOffset int

	strings stringPool
	nodes   arena

	labels map[string]*label
	blocks []block

	codeType   codeType
	codeSymbol *symbol

	// text is the final, already-flushed TEXT segment: the code of every
	// unit (function body or the main program) that has finished
	// compiling, each immediately followed by the string literals first
	// interned during it.
	//
	// code is the staging buffer for the unit currently being compiled,
	// matching the original's codeBuf: instructions land here first so
	// codeaddr()-relative branch fixups can be patched freely before the
	// unit's bytes are ever copied into text. The original needs this
	// split because its heap can't grow text out from under a fixed
	// codeBuf pointer; here the real reason to keep it is narrower but
	// still real: a string interned partway through a function body must
	// never land in the middle of that body's own instruction stream,
	// where the program counter would fall through it instead of jumping
	// over it. Flushing a unit's code (see flushUnit) always appends it to
	// text in one piece, with that unit's own pending strings placed
	// immediately after, never before or interleaved.
	text []byte
	code []byte

	// pendingStrings holds the descriptors first interned during the unit
	// currently being staged; their offsets are unresolved (-1) until
	// flushUnit assigns them, at which point any stringFixups referencing
	// them get patched into code before code is copied into text.
	pendingStrings []*stringEntry
	stringFixups   []stringFixup

	dataFree int // next free DATA byte offset (grows upward from 0, capped at dataMax cells)
	heapUsed int // estimated bytes charged against heapMax so far

	hiddenGlobals int // count of compiler-synthesized DATA cells (loop bookkeeping)
}

// chargeHeap charges n estimated bytes against the compiler's heapMax
// budget, aborting the compile if it is exhausted. Exhaustion here means
// the source is too large for this compiler to hold in memory at once, the
// same class of failure as running out of TEXT or DATA.
func (c *Compiler) chargeHeap(n int) {
	c.heapUsed += n
	if c.heapUsed > heapMax {
		c.abortf("compiler heap exhausted")
	}
}

// stringFixup records one OpLIT immediate, at addr within the staging
// buffer code, that must be patched once entry's offset is resolved by
// flushUnit.
type stringFixup struct {
	entry *stringEntry
	addr  int
}

// label is a named branch target. Forward references are threaded through
// the code buffer itself: fixups holds the offset of the most recently
// emitted branch operand still waiting for this label, and that slot's
// two bytes (an isa.Word) hold the offset of the next slot in the chain (or 0 to
// terminate), exactly as the original's db_generate.c fixupbranch walks.
type label struct {
	placed  bool
	offset  int
	fixups  int
}

// blockKind mirrors the original's BlockType.
type blockKind int

const (
	blockIf blockKind = iota
	blockElse
	blockFor
	blockDo
)

// block is one entry of the nested IF/FOR/DO stack. nxt is the fixup chain
// (or loop-top offset) used to continue the construct; end is the fixup
// chain patched to the statement following the block, once it is known.
type block struct {
	kind blockKind
	nxt  int
	end  int
	top  int // FOR: staging-buffer offset of the loop test, branched back to
	forSym   *symbol
	forLimit isa.Cell // DATA offset of the hidden limit cell
	forStep  isa.Cell // DATA offset of the hidden step cell
}

func newCompiler(getLine GetLine) *Compiler {
	c := &Compiler{
		scanner: newScanner(getLine),
		labels:  make(map[string]*label),
	}
	return c
}

func (c *Compiler) currentBlock() *block {
	if len(c.blocks) == 0 {
		return nil
	}
	return &c.blocks[len(c.blocks)-1]
}

func (c *Compiler) pushBlock(b block) *block {
	if len(c.blocks) >= maxBlocks {
		c.abortf("statements nested too deeply")
	}
	c.blocks = append(c.blocks, b)
	return c.currentBlock()
}

func (c *Compiler) popBlock() block {
	b := c.blocks[len(c.blocks)-1]
	c.blocks = c.blocks[:len(c.blocks)-1]
	return b
}

// checkLabels aborts if any GOTO target named in this function was never
// placed, matching the original's CheckLabels call at the end of each code
// unit.
func (c *Compiler) checkLabels() {
	for name, l := range c.labels {
		if !l.placed {
			c.abortf("undefined label '%s'", name)
		}
	}
	c.labels = make(map[string]*label)
}

func (c *Compiler) findLabel(name string) *label {
	l, ok := c.labels[name]
	if !ok {
		l = &label{}
		c.labels[name] = l
	}
	return l
}
