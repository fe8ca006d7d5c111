package compiler

import "github.com/dmbetz/mbasic/isa"

// binaryOps maps a binary operator token to its opcode, for codeBinary.
// There is no constant folder: this language doesn't fold constants at
// compile time, matching the original (every arithmetic expression,
// literal or not, emits code).
var binaryOps = map[tokenKind]isa.Opcode{
	tPLUS: isa.OpADD, tMINUS: isa.OpSUB, tSTAR: isa.OpMUL,
	tSLASH: isa.OpDIV, tBACKSLASH: isa.OpDIV, tMOD: isa.OpREM,
	tAMP: isa.OpBAND, tPIPE: isa.OpBOR, tCARET: isa.OpBXOR,
	tSHL: isa.OpSHL, tSHR: isa.OpSHR,
	tLT: isa.OpLT, tLE: isa.OpLE, tEQ: isa.OpEQ, tNE: isa.OpNE,
	tGE: isa.OpGE, tGT: isa.OpGT,
}

// codeRValue generates code that leaves the value of expr on the stack.
func (c *Compiler) codeRValue(n nodeRef) {
	nd := c.nodes.get(n)
	switch nd.kind {
	case nodeInteger:
		c.emitOp(isa.OpLIT)
		c.putclong(nd.ival)
	case nodeString:
		c.codeStringRef(nd.str)
	case nodeSymbolRef, nodeArrayRef:
		pv := c.codeLValue(n)
		c.apply(pv, pvLoad)
	case nodeCall:
		c.codeCall(nd)
	case nodeUnary:
		c.codeUnary(nd)
	case nodeBinary:
		c.codeBinary(nd)
	case nodeAnd:
		c.codeShortCircuit(nd, isa.OpBRFSC)
	case nodeOr:
		c.codeShortCircuit(nd, isa.OpBRTSC)
	default:
		c.abortf("internal error: bad node type %d", nd.kind)
	}
}

// codeStringRef emits a reference to an interned string. If its offset is
// already resolved (it was interned by an earlier unit) the address is
// known now; otherwise it belongs to the unit still being staged, so the
// operand is a placeholder recorded in stringFixups and patched once
// flushUnit assigns it a final TEXT offset.
func (c *Compiler) codeStringRef(s *stringEntry) {
	c.emitOp(isa.OpLIT)
	if s.offset >= 0 {
		c.putclong(isa.Cell(s.offset))
		return
	}
	addr := c.putclong(0)
	c.stringFixups = append(c.stringFixups, stringFixup{entry: s, addr: addr})
}

func (c *Compiler) codeBinary(nd *node) {
	op, ok := binaryOps[nd.op]
	if !ok {
		c.abortf("internal error: bad binary operator")
	}
	c.codeRValue(nd.left)
	c.codeRValue(nd.right)
	c.emitOp(op)
}

func (c *Compiler) codeUnary(nd *node) {
	c.codeRValue(nd.left)
	switch nd.op {
	case tMINUS:
		c.emitOp(isa.OpNEG)
	case tNOT:
		c.emitOp(isa.OpNOT)
	case tTILDE:
		c.emitOp(isa.OpBNOT)
	default:
		c.abortf("internal error: bad unary operator")
	}
}

// codeShortCircuit generates each operand of nd.args in order, threading a
// single branch fixup chain through every operand but the last: op is
// OpBRFSC for AND (false short-circuits) or OpBRTSC for OR (true
// short-circuits), and either one leaves the deciding value as the result
// without evaluating any later operand.
func (c *Compiler) codeShortCircuit(nd *node, op isa.Opcode) {
	chain := 0
	for i, a := range nd.args {
		c.codeRValue(a)
		if i < len(nd.args)-1 {
			chain = c.emitBranch(op, chain)
		}
	}
	c.fixupbranch(chain, c.codeaddr())
}

// codeLValue analyzes expr into a pval describing how to load, store, or
// (where legal) take the address of it. Array-element addressing differs
// from the original: rather than dispatching through a per-node function
// pointer, the effective-address code is generated here, eagerly, and the
// resulting pval only needs to emit the final LOAD/STORE.
func (c *Compiler) codeLValue(n nodeRef) pval {
	nd := c.nodes.get(n)
	switch nd.kind {
	case nodeSymbolRef:
		return c.codeSymbolRef(nd.sym)
	case nodeArrayRef:
		return c.codeArrayRef(nd)
	default:
		c.abortf("expression is not assignable")
		panic("unreachable")
	}
}

func (c *Compiler) codeSymbolRef(sym *symbol) pval {
	if sym.class != classVariable {
		c.abortf("'%s' is not a variable", sym.name)
	}
	if sym.frame {
		return pval{resolver: resolveFrame, sym: sym}
	}
	return pval{resolver: resolveGlobal, sym: sym}
}

// codeArrayRef emits "base-address + index*CellSize" and returns a pval
// that only needs to LOAD or STORE through it; taking its address is
// rejected (see applyIndexed), matching the original's empty PV_ADDR case
// for array elements.
func (c *Compiler) codeArrayRef(nd *node) pval {
	sym := nd.sym
	if sym.class != classArray {
		c.abortf("'%s' is not an array", sym.name)
	}
	c.emitOp(isa.OpLIT)
	c.putclong(sym.value) // already the biased DATA address (see addGlobal)
	c.codeRValue(nd.index)
	c.emitOp(isa.OpINDEX)
	return pval{resolver: resolveIndexed}
}

func (c *Compiler) codeCall(nd *node) {
	if nd.sym.class != classFunction {
		c.abortf("'%s' is not a function", nd.sym.name)
	}
	if len(nd.args) > 255 {
		c.abortf("too many arguments")
	}
	for _, a := range nd.args {
		c.codeRValue(a)
	}
	c.emitOp(isa.OpLIT)
	c.putclong(nd.sym.value)
	c.emitOp(isa.OpCALL)
	c.putcbyte(byte(len(nd.args)))
}
