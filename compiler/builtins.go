package compiler

import "github.com/dmbetz/mbasic/isa"

// rgbSize is the element count of the built-in led array, one cell per
// controllable LED.
const rgbSize = 60

// biDelayMs and biUpdateLeds are hand-assembled bytecode bodies for the
// two built-in functions, installed ahead of any user code. delayMs takes
// one argument (so the convention's "last-declared argument at offset 0"
// applies, and LREF 0 reads it straight off the frame); updateLeds takes
// none and so never touches LREF at all. Both use a FRAME count of 2, the
// same "2 + localOffset" a user DEF body gets (see parseFunctionDef), so
// OP_FRAME puts the saved frame pointer at fp-1 where OP_RETURN reads it
// back, whether the caller is the main program or a DEF body.
var biDelayMs = []byte{
	byte(isa.OpFRAME), 2,
	byte(isa.OpLREF), 0,
	byte(isa.OpTRAP), byte(isa.TrapDelayMs),
	byte(isa.OpRETURN),
}

var biUpdateLeds = []byte{
	byte(isa.OpFRAME), 2,
	byte(isa.OpTRAP), byte(isa.TrapUpdateLeds),
	byte(isa.OpRETURN),
}

// enterBuiltInFunction copies code directly into TEXT and binds name to
// its entry address, matching EnterBuiltInFunction. This runs before
// parseProgram stages the first real unit, so it bypasses the code
// staging buffer entirely: a fixed byte sequence with no forward
// references or string literals needs no fixup bookkeeping, only a
// stable final address right away.
func (c *Compiler) enterBuiltInFunction(name string, code []byte) {
	entry := len(c.text)
	c.text = append(c.text, code...)
	c.addGlobal(name, classFunction, isa.Cell(entry), 0)
}

// enterBuiltInVariable reserves size cells of DATA and binds name to the
// biased DATA address, matching EnterBuiltInVariable.
func (c *Compiler) enterBuiltInVariable(name string, size int) {
	offset := c.allocGlobal(size)
	class := classVariable
	if size > 1 {
		class = classArray
	}
	c.addGlobal(name, class, offset, size)
}

// registerBuiltins installs the language surface that exists outside the
// user's source: the pattern-control globals and the two host-trap
// wrapper functions. It must run before the first user line is scanned,
// the same ordering InitCompiler's Compile uses.
func (c *Compiler) registerBuiltins() {
	c.enterBuiltInFunction("delayMs", biDelayMs)
	c.enterBuiltInFunction("updateLeds", biUpdateLeds)

	c.enterBuiltInVariable("triggerTop", 1)
	c.enterBuiltInVariable("triggerBottom", 1)
	c.enterBuiltInVariable("numLeds", 1)
	c.enterBuiltInVariable("led", rgbSize)
	c.enterBuiltInVariable("patternNum", 1)
}
