package compiler

import "github.com/dmbetz/mbasic/isa"

// allocGlobal reserves size cells of DATA for a new global variable or
// array and returns its byte offset, matching the original's GlobalAlloc
// bump allocator (here backed by a plain counter since Go has no fixed
// heap to carve two ways).
func (c *Compiler) allocGlobal(size int) isa.Cell {
	offset := c.dataFree
	need := size * isa.CellSize
	if c.dataFree+need > dataMax*isa.CellSize {
		c.abortf("insufficient data space")
	}
	c.dataFree += need
	return isa.Cell(offset)
}

// allocHiddenGlobal reserves one DATA cell for compiler-generated
// bookkeeping (FOR loop limit/step snapshots) that the grammar never
// exposes a name for.
func (c *Compiler) allocHiddenGlobal() isa.Cell {
	c.hiddenGlobals++
	return c.allocGlobal(1)
}

// internString returns the existing descriptor for text, content-addressed
// across the whole compilation, or creates one with its offset left
// unresolved (-1) and queues it as belonging to the unit currently being
// staged; flushUnit assigns its final offset once the unit is done. A
// reference to an unresolved entry is always recorded through
// stringFixups by the caller (see codeRValue's nodeString case): the
// entry may belong to this very unit, or (if its owning unit hasn't
// flushed yet, which can't happen across units since they compile and
// flush strictly in source order) would need the same treatment.
func (c *Compiler) internString(text string) *stringEntry {
	if e := c.strings.find(text); e != nil {
		return e
	}
	c.chargeHeap(stringCost)
	e := &stringEntry{text: text, offset: -1}
	c.strings.entries = append(c.strings.entries, e)
	c.pendingStrings = append(c.pendingStrings, e)
	return e
}

// findSymbol resolves name against the three symbol tables in the
// shadowing order of spec.md section 3: locals hide arguments hide
// globals.
func (c *Compiler) findSymbol(name string) *symbol {
	return lookup(name, &c.locals, &c.arguments, &c.globals)
}

// addGlobal wraps symbolTable.add with the duplicate check every
// declaration needs. value is a raw byte offset for classVariable and
// classArray (as returned by allocGlobal) and a TEXT address for
// classFunction; matching the original's EnterBuiltInVariable, a DATA
// symbol's stored value is the fully biased address (isa.DataOffset +
// offset), computed here once rather than at every load/store site.
func (c *Compiler) addGlobal(name string, class symbolClass, value isa.Cell, size int) *symbol {
	if c.globals.find(name) != nil {
		c.abortf("'%s' is already defined", name)
	}
	if class == classVariable || class == classArray {
		value = isa.Cell(isa.DataOffset + isa.UCell(value))
	}
	c.chargeHeap(symbolCost)
	return c.globals.add(name, class, value, size)
}

// addArgument assigns offset directly: callers pass the final FP-relative
// offset (computed once the whole parameter list is known, see
// parseFunctionDef), not an auto-incrementing counter, because argument i
// is pushed before argument i+1 and so ends up farther from FP.
func (c *Compiler) addArgument(name string, offset int) *symbol {
	if c.arguments.find(name) != nil {
		c.abortf("'%s' is already defined", name)
	}
	c.chargeHeap(symbolCost)
	s := c.arguments.add(name, classVariable, isa.Cell(offset), 1)
	s.frame = true
	return s
}
