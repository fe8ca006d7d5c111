package compiler

import "github.com/dmbetz/mbasic/isa"

var ifTerminators = map[tokenKind]bool{tELSEIF: true, tELSE: true, tENDIF: true}
var endifOnly = map[tokenKind]bool{tENDIF: true}

// parseBlockBody compiles lines until it sees a token in terminators at the
// start of a line, and returns that token (consumed). It is shared by
// IF/FOR/DO bodies, matching the original's single ParseStatement loop
// driven by CurrentBlockType instead of one loop per construct.
func (c *Compiler) parseBlockBody(terminators map[tokenKind]bool) token {
	for {
		tok := c.scanner.next()
		switch {
		case tok.kind == tEOF:
			c.abortf("unexpected end of file")
		case tok.kind == tEOL:
			continue
		case terminators[tok.kind]:
			return tok
		}
		c.parseLine(tok)
	}
}

// parseLine compiles one source line: an optional "name:" label followed
// by one or more colon-separated statements.
func (c *Compiler) parseLine(first token) {
	if first.kind == tIDENTIFIER {
		next := c.scanner.next()
		if next.kind == tCOLON {
			c.placeLabel(first.text)
			after := c.scanner.next()
			if after.kind == tEOL || after.kind == tEOF {
				c.scanner.saveToken(after)
				return
			}
			c.parseStatement(after)
			c.parseStatementTail()
			return
		}
		c.scanner.saveToken(next)
	}
	c.parseStatement(first)
	c.parseStatementTail()
}

func (c *Compiler) parseStatementTail() {
	for {
		tok := c.scanner.next()
		switch tok.kind {
		case tEOL, tEOF:
			c.scanner.saveToken(tok)
			return
		case tCOLON:
			c.parseStatement(c.scanner.next())
		default:
			c.abortf("expecting end of statement, found %s", tokenName(tok.kind))
		}
	}
}

func (c *Compiler) parseStatement(tok token) {
	switch tok.kind {
	case tLET:
		c.parseAssignment(c.requireIdentifier())
	case tIF:
		c.parseIf()
	case tFOR:
		c.parseFor()
	case tDO, tDOWHILE, tDOUNTIL:
		c.parseDo(tok.kind)
	case tGOTO:
		c.parseGoto()
	case tPRINT:
		c.parsePrint()
	case tRETURN:
		c.parseReturn()
	case tSTOP:
		c.emitOp(isa.OpHALT)
	case tDIM:
		c.parseDim()
	case tIDENTIFIER:
		c.parseAssignment(tok.text)
	case tDEF:
		c.abortf("nested subroutines and functions are not supported")
	default:
		c.abortf("expecting a statement, found %s", tokenName(tok.kind))
	}
}

// ---- IF / ELSE IF / ELSE / END IF ----

func (c *Compiler) parseIf() {
	c.pushBlock(block{kind: blockIf})
	endChain := 0
	for {
		c.codeRValue(c.parseExpr())
		c.require(tTHEN)
		c.require(tEOL)
		falseChain := c.emitBranch(isa.OpBRF, 0)
		term := c.parseBlockBody(ifTerminators)
		endChain = c.emitBranch(isa.OpBR, endChain)
		c.fixupbranch(falseChain, c.codeaddr())
		if term.kind == tELSEIF {
			continue
		}
		if term.kind == tELSE {
			c.require(tEOL)
			term = c.parseBlockBody(endifOnly)
		}
		break
	}
	c.scanner.saveToken(c.require(tEOL)) // left for parseStatementTail
	c.popBlock()
	c.fixupbranch(endChain, c.codeaddr())
}

// ---- FOR / NEXT ----
//
// FOR var = start TO limit [STEP step] ... NEXT [var]
//
// The limit and step are evaluated once, at loop entry, into hidden DATA
// cells: re-evaluating them on every iteration isn't what any BASIC
// programmer expects, and storing them lets the exit test handle an
// ascending or descending step uniformly instead of picking LT vs GT at
// compile time from a step the compiler usually can't see the sign of.
func (c *Compiler) parseFor() {
	name := c.requireIdentifier()
	sym := c.findSymbol(name)
	if sym == nil || sym.class != classVariable {
		c.abortf("'%s' is not a variable", name)
	}
	c.require(tEQ)
	c.codeRValue(c.parseExpr())
	pv := c.codeLValue(c.newSymbolRef(sym))
	c.apply(pv, pvStore)

	c.require(tTO)
	limitOff := c.allocHiddenGlobal()
	c.codeRValue(c.parseExpr())
	c.codeStoreHidden(limitOff)

	stepOff := c.allocHiddenGlobal()
	if tok := c.scanner.next(); tok.kind == tSTEP {
		c.codeRValue(c.parseExpr())
	} else {
		c.scanner.saveToken(tok)
		c.emitOp(isa.OpLIT)
		c.putclong(1)
	}
	c.codeStoreHidden(stepOff)
	c.require(tEOL)

	top := c.codeaddr()
	// exit when (step < 0 && var < limit) || (step >= 0 && var > limit)
	c.codeLoadHidden(stepOff)
	c.emitOp(isa.OpLIT)
	c.putclong(0)
	c.emitOp(isa.OpLT)
	posStepChain := c.emitBranch(isa.OpBRF, 0)
	// step < 0 branch: test var < limit
	pvv := c.codeLValue(c.newSymbolRef(sym))
	c.apply(pvv, pvLoad)
	c.codeLoadHidden(limitOff)
	c.emitOp(isa.OpLT)
	done := c.emitBranch(isa.OpBR, 0)
	c.fixupbranch(posStepChain, c.codeaddr())
	// step >= 0 branch: test var > limit
	pvv2 := c.codeLValue(c.newSymbolRef(sym))
	c.apply(pvv2, pvLoad)
	c.codeLoadHidden(limitOff)
	c.emitOp(isa.OpGT)
	c.fixupbranch(done, c.codeaddr())
	exitChain := c.emitBranch(isa.OpBRT, 0)

	c.pushBlock(block{kind: blockFor, top: top, end: exitChain, forSym: sym, forLimit: limitOff, forStep: stepOff})
	c.parseBlockBody(map[tokenKind]bool{tNEXT: true})
	b := c.popBlock()
	// var += step
	pvv3 := c.codeLValue(c.newSymbolRef(b.forSym))
	c.apply(pvv3, pvLoad)
	c.codeLoadHidden(b.forStep)
	c.emitOp(isa.OpADD)
	pvv4 := c.codeLValue(c.newSymbolRef(b.forSym))
	c.apply(pvv4, pvStore)
	c.emitBranchTo(isa.OpBR, b.top)

	// NEXT may optionally repeat the loop variable's name
	if tok := c.scanner.next(); tok.kind == tIDENTIFIER {
		if tok.text != b.forSym.name {
			c.abortf("NEXT %s does not match FOR %s", tok.text, b.forSym.name)
		}
	} else {
		c.scanner.saveToken(tok)
	}
	c.scanner.saveToken(c.require(tEOL)) // left for parseStatementTail
	c.fixupbranch(b.end, c.codeaddr())
}

// emitBranchTo emits an unconditional branch directly to a known absolute
// target (used for a loop's back edge, where the target is already known
// and no fixup chain is needed).
func (c *Compiler) emitBranchTo(op isa.Opcode, target int) {
	c.emitOp(op)
	slot := c.putcword(0)
	c.patchWord(slot, isa.Word(target-(slot+isa.WordSize)))
}

// ---- DO / LOOP ----
//
// DO [WHILE|UNTIL expr] ... LOOP [WHILE|UNTIL expr]
// A test may appear at the top, the bottom, both, or neither (a bare
// "DO ... LOOP" is only useful with a GOTO out of it, which this grammar
// allows).
func (c *Compiler) parseDo(open tokenKind) {
	c.pushBlock(block{kind: blockDo})
	top := c.codeaddr()
	var topExit int
	switch open {
	case tDOWHILE:
		c.codeRValue(c.parseExpr())
		topExit = c.emitBranch(isa.OpBRF, 0)
	case tDOUNTIL:
		c.codeRValue(c.parseExpr())
		topExit = c.emitBranch(isa.OpBRT, 0)
	}
	c.require(tEOL)

	term := c.parseBlockBody(map[tokenKind]bool{tLOOP: true, tLOOPWHILE: true, tLOOPUNTIL: true})
	switch term.kind {
	case tLOOPWHILE:
		c.codeRValue(c.parseExpr())
		c.emitBranchTo(isa.OpBRT, top)
	case tLOOPUNTIL:
		c.codeRValue(c.parseExpr())
		c.emitBranchTo(isa.OpBRF, top)
	default:
		c.emitBranchTo(isa.OpBR, top)
	}
	c.scanner.saveToken(c.require(tEOL)) // left for parseStatementTail
	c.popBlock()
	if topExit != 0 {
		c.fixupbranch(topExit, c.codeaddr())
	}
}

// ---- GOTO ----

func (c *Compiler) parseGoto() {
	name := c.requireIdentifier()
	l := c.findLabel(name)
	if l.placed {
		c.emitBranchTo(isa.OpBR, l.offset)
	} else {
		l.fixups = c.emitBranch(isa.OpBR, l.fixups)
	}
	c.scanner.saveToken(c.require(tEOL)) // left for parseStatementTail
}

func (c *Compiler) placeLabel(name string) {
	l := c.findLabel(name)
	if l.placed {
		c.abortf("label '%s' is already defined", name)
	}
	l.placed = true
	l.offset = c.codeaddr()
	c.fixupbranch(l.fixups, l.offset)
	l.fixups = 0
}

// ---- PRINT ----
//
// PRINT [item {, item}] [;]
// A comma between items emits a tab; a trailing semicolon suppresses the
// newline PRINT otherwise emits at the end of the statement.
func (c *Compiler) parsePrint() {
	tok := c.scanner.next()
	if tok.kind == tEOL || tok.kind == tEOF || tok.kind == tCOLON {
		c.scanner.saveToken(tok)
		c.emitTrap(isa.TrapPrintNL)
		return
	}
	c.scanner.saveToken(tok)
	trailingSemi := false
	for {
		item := c.parseExpr()
		if nd := c.nodes.get(item); nd.kind == nodeString {
			c.codeRValue(item)
			c.emitTrap(isa.TrapPrintStr)
		} else {
			c.codeRValue(item)
			c.emitTrap(isa.TrapPrintInt)
		}
		t := c.scanner.next()
		if t.kind == tCOMMA {
			c.emitTrap(isa.TrapPrintTab)
			continue
		}
		if t.kind == tSEMI {
			trailingSemi = true
			t2 := c.scanner.next()
			if t2.kind == tEOL || t2.kind == tEOF || t2.kind == tCOLON {
				c.scanner.saveToken(t2)
				break
			}
			c.scanner.saveToken(t2)
			trailingSemi = false
			continue
		}
		c.scanner.saveToken(t)
		break
	}
	if !trailingSemi {
		c.emitTrap(isa.TrapPrintNL)
	}
	c.emitTrap(isa.TrapPrintFlush)
}

func (c *Compiler) emitTrap(t isa.Trap) {
	c.emitOp(isa.OpTRAP)
	c.putcbyte(byte(t))
}

// ---- RETURN / DIM / assignment ----

func (c *Compiler) parseReturn() {
	if c.codeType != codeFunction {
		c.abortf("RETURN outside of a function")
	}
	tok := c.scanner.next()
	if tok.kind == tEOL || tok.kind == tEOF || tok.kind == tCOLON {
		c.scanner.saveToken(tok)
		c.emitOp(isa.OpLIT)
		c.putclong(0)
	} else {
		c.scanner.saveToken(tok)
		c.codeRValue(c.parseExpr())
	}
	c.emitOp(isa.OpRETURN)
}

func (c *Compiler) parseDim() {
	name := c.requireIdentifier()
	tok := c.scanner.next()
	if tok.kind == tLPAREN {
		size := c.require(tNUMBER)
		c.require(tRPAREN)
		if size.value <= 0 {
			c.abortf("array size must be positive")
		}
		offset := c.allocGlobal(int(size.value))
		c.addGlobal(name, classArray, offset, int(size.value))
	} else {
		c.scanner.saveToken(tok)
		offset := c.allocGlobal(1)
		c.addGlobal(name, classVariable, offset, 1)
	}
	if tok := c.scanner.next(); tok.kind == tAS {
		c.requireIdentifier() // type name is accepted and ignored: every cell is a VMVALUE
	} else {
		c.scanner.saveToken(tok)
	}
	c.scanner.saveToken(c.require(tEOL)) // left for parseStatementTail
}

// parseAssignment handles "name = expr" and "name(index) = expr"; it is
// also reached for a bare call statement like "updateLeds()", detected by
// the absence of a following '=' or array subscript assignment.
func (c *Compiler) parseAssignment(name string) {
	sym := c.findSymbol(name)
	if sym == nil {
		c.abortf("undefined symbol '%s'", name)
	}
	tok := c.scanner.next()
	switch {
	case tok.kind == tEQ:
		c.codeRValue(c.parseExpr())
		pv := c.codeSymbolRef(sym)
		c.apply(pv, pvStore)
	case tok.kind == tLPAREN && sym.class == classArray:
		idx := c.parseExpr()
		c.require(tRPAREN)
		c.require(tEQ)
		c.codeRValue(c.parseExpr())
		pv := c.codeArrayRef(c.nodes.get(c.newArrayRef(sym, idx)))
		c.apply(pv, pvStore)
	case tok.kind == tLPAREN && sym.class == classFunction:
		c.scanner.saveToken(tok)
		call := c.parseIdentRef(name)
		c.codeRValue(call)
		c.emitOp(isa.OpDROP) // a called-as-statement function's result is discarded
	default:
		c.abortf("expecting '=', found %s", tokenName(tok.kind))
	}
}
