package compiler

import "github.com/dmbetz/mbasic/isa"

// codeaddr returns the offset, within the unit currently being staged,
// of the next byte emitOp/putcbyte/... will write. It is NOT a final TEXT
// address: that is only known once flushUnit copies code into text.
func (c *Compiler) codeaddr() int {
	return len(c.code)
}

func (c *Compiler) emitOp(op isa.Opcode) int {
	addr := c.codeaddr()
	c.putcbyte(byte(op))
	return addr
}

func (c *Compiler) putcbyte(v byte) int {
	addr := c.codeaddr()
	if addr >= textMax {
		c.abortf("insufficient code space")
	}
	c.code = append(c.code, v)
	return addr
}

// putcword emits a placeholder VMWORD slot (used for branch operands,
// later overwritten by fixupbranch) and returns its offset.
func (c *Compiler) putcword(v isa.Word) int {
	addr := c.codeaddr()
	if addr+isa.WordSize > textMax {
		c.abortf("insufficient code space")
	}
	var buf [isa.WordSize]byte
	isa.PutWord(buf[:], v)
	c.code = append(c.code, buf[:]...)
	return addr
}

func (c *Compiler) patchWord(addr int, v isa.Word) {
	isa.PutWord(c.code[addr:], v)
}

func (c *Compiler) putclong(v isa.Cell) int {
	addr := c.codeaddr()
	if addr+isa.CellSize > textMax {
		c.abortf("insufficient code space")
	}
	var buf [isa.CellSize]byte
	isa.PutCell(buf[:], v)
	c.code = append(c.code, buf[:]...)
	return addr
}

// emitBranch emits a branch opcode followed by a placeholder VMWORD operand
// threaded onto chain (the head of a forward-reference fixup list: chain==0
// means "no previous fixup"), and returns the new chain head. This is the
// same singly-linked-through-the-code-buffer technique as the original's
// fixupbranch: the placeholder slot temporarily stores the offset of the
// next slot in the chain.
func (c *Compiler) emitBranch(op isa.Opcode, chain int) int {
	c.emitOp(op)
	slot := c.putcword(isa.Word(chain))
	return slot
}

// fixupbranch walks the fixup chain starting at chain, patching each
// branch operand to jump to val (an absolute code offset), and terminates
// the chain.
func (c *Compiler) fixupbranch(chain int, val int) {
	for chain != 0 {
		next := int(isa.GetWord(c.code[chain:]))
		c.patchWord(chain, isa.Word(val-(chain+isa.WordSize)))
		chain = next
	}
}

// pvalOp is the operation a partial-value resolver is asked to perform,
// matching the original's PValOp.
type pvalOp int

const (
	pvAddr pvalOp = iota
	pvLoad
	pvStore
)

// resolverKind tags which addressing mode a pval uses, replacing the
// original's per-symbol function pointer with an exhaustively-switched
// enum (spec.md's tagged-variant design note).
type resolverKind int

const (
	resolveGlobal resolverKind = iota
	resolveFrame               // argument or (unused in practice) local
	resolveIndexed             // array element; effective address already on the data stack
)

// pval is a partial value: an lvalue that code_lvalue has analyzed down to
// an addressing mode but not yet turned into a load, store, or address.
type pval struct {
	resolver resolverKind
	sym      *symbol // resolveGlobal, resolveFrame
}

// apply emits the load, store, or address code for pv, per op.
func (c *Compiler) apply(pv pval, op pvalOp) {
	switch pv.resolver {
	case resolveGlobal:
		c.applyGlobal(pv, op)
	case resolveFrame:
		c.applyFrame(pv, op)
	case resolveIndexed:
		c.applyIndexed(pv, op)
	}
}

// applyGlobal emits code for a global variable. pv.sym.value already holds
// the fully biased DATA address (see addGlobal); nothing more to add here.
func (c *Compiler) applyGlobal(pv pval, op pvalOp) {
	switch op {
	case pvAddr:
		c.emitOp(isa.OpLIT)
		c.putclong(pv.sym.value)
	case pvLoad:
		c.emitOp(isa.OpLIT)
		c.putclong(pv.sym.value)
		c.emitOp(isa.OpLOAD)
	case pvStore:
		c.emitOp(isa.OpLIT)
		c.putclong(pv.sym.value)
		c.emitOp(isa.OpSTORE)
	}
}

func (c *Compiler) applyFrame(pv pval, op pvalOp) {
	switch op {
	case pvAddr:
		c.abortf("can't take the address of a local or argument")
	case pvLoad:
		c.emitOp(isa.OpLREF)
		c.putcbyte(byte(int8(pv.sym.value)))
	case pvStore:
		c.emitOp(isa.OpLSET)
		c.putcbyte(byte(int8(pv.sym.value)))
	}
}

// applyIndexed assumes the caller has already generated code that leaves
// the element's effective address on the stack (see codeIndex).
func (c *Compiler) applyIndexed(pv pval, op pvalOp) {
	switch op {
	case pvAddr:
		c.abortf("can't take the address of an array element")
	case pvLoad:
		c.emitOp(isa.OpLOAD)
	case pvStore:
		c.emitOp(isa.OpSTORE)
	}
}

// codeStoreHidden and codeLoadHidden address compiler-synthesized DATA
// cells (FOR loop limit/step snapshots) that have no symbol of their own,
// so unlike applyGlobal they must bias the raw byte offset themselves.
func (c *Compiler) codeStoreHidden(offset isa.Cell) {
	c.emitOp(isa.OpLIT)
	c.putclong(isa.Cell(isa.DataOffset + isa.UCell(offset)))
	c.emitOp(isa.OpSTORE)
}

func (c *Compiler) codeLoadHidden(offset isa.Cell) {
	c.emitOp(isa.OpLIT)
	c.putclong(isa.Cell(isa.DataOffset + isa.UCell(offset)))
	c.emitOp(isa.OpLOAD)
}
