package compiler

import "github.com/dmbetz/mbasic/isa"

// Compile scans every line getLine supplies and compiles it into an
// executable image. It is the only exported entry point to this package:
// everything else here is reached only through it.
func Compile(getLine GetLine) (hdr isa.ImageHdr, text []byte, data []byte, err error) {
	c := newCompiler(getLine)
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*Error)
			if !ok {
				panic(r)
			}
			err = e
		}
	}()

	c.registerBuiltins()
	entry := c.parseProgram()
	hdr, text, data = c.assembleImage(entry)
	return
}

// startUnit begins staging a new function body or the main program: the
// code buffer and this unit's own pending-string bookkeeping are reset,
// and the position text will be at once this unit flushes is returned
// (stable from this point on, since nothing else appends to text until
// flushUnit does, including interned strings: they stage in code's
// shadow, see internString).
func (c *Compiler) startUnit() int {
	c.code = c.code[:0]
	c.pendingStrings = c.pendingStrings[:0]
	c.stringFixups = c.stringFixups[:0]
	return len(c.text)
}

// flushUnit resolves every pending string interned during this unit,
// patches the fixups that reference them, and appends the unit's code
// followed by its strings onto text. Code goes first so a unit's entry
// address (captured by startUnit, before any of it existed) holds.
func (c *Compiler) flushUnit() {
	base := len(c.text) + len(c.code)
	for _, e := range c.pendingStrings {
		e.offset = base
		base += len(e.text) + 1
	}
	if base > textMax {
		c.abortf("insufficient text space")
	}
	for _, fx := range c.stringFixups {
		isa.PutCell(c.code[fx.addr:], isa.Cell(fx.entry.offset))
	}
	c.text = append(c.text, c.code...)
	for _, e := range c.pendingStrings {
		c.text = append(c.text, e.text...)
		c.text = append(c.text, 0)
	}
}

// parseProgram drives the whole source: DEF blocks compile and flush
// their bodies immediately (and must all appear before the first
// main-program statement, matching StartCode's original restriction),
// everything else is staged as the single main-program unit and flushed
// at end of file. It returns main's entry address.
func (c *Compiler) parseProgram() int {
	c.codeType = codeMain
	mainEntry := c.startUnit()
	mainStarted := false

	for {
		tok := c.scanner.next()
		switch tok.kind {
		case tEOF:
			c.emitOp(isa.OpHALT)
			c.checkLabels()
			c.flushUnit()
			return mainEntry
		case tEOL:
			continue
		case tDEF:
			if mainStarted {
				c.abortf("subroutines and functions must precede the main code")
			}
			c.parseFunctionDef()
			mainEntry = c.startUnit() // functions flushed ahead of main shift where it will land
		default:
			mainStarted = true
			c.parseLine(tok)
		}
	}
}

// parseFunctionDef compiles "DEF name(params) ... END DEF" as its own
// unit. The function symbol is entered, with its final entry address,
// before the body is compiled so a call to itself resolves; this is what
// makes recursion work, since nothing else in this grammar declares a
// function ahead of its body. Nested DEFs are rejected, matching the
// original's "nested subroutines and functions are not supported".
func (c *Compiler) parseFunctionDef() {
	name := c.requireIdentifier()
	if c.globals.find(name) != nil {
		c.abortf("'%s' is already defined", name)
	}

	c.require(tLPAREN)
	var params []string
	if tok := c.scanner.next(); tok.kind != tRPAREN {
		c.scanner.saveToken(tok)
		for {
			params = append(params, c.requireIdentifier())
			t := c.scanner.next()
			if t.kind == tRPAREN {
				break
			}
			c.frequire(t, tCOMMA)
		}
	}
	c.require(tEOL)

	entry := c.startUnit()
	sym := c.addGlobal(name, classFunction, isa.Cell(entry), 0)

	savedLabels := c.labels
	c.labels = make(map[string]*label)

	c.arguments.reset()
	c.locals.reset()
	c.localOffset = 0
	for i, p := range params {
		c.addArgument(p, len(params)-1-i)
	}

	savedType, savedSym := c.codeType, c.codeSymbol
	c.codeType, c.codeSymbol = codeFunction, sym

	frameAddr := c.emitOp(isa.OpFRAME)
	c.putcbyte(0) // patched below once localOffset is final

	c.parseBlockBody(map[tokenKind]bool{tENDDEF: true})

	// a function that runs off the end returns 0
	c.emitOp(isa.OpLIT)
	c.putclong(0)
	c.emitOp(isa.OpRETURN)

	c.code[frameAddr+1] = byte(2 + c.localOffset)

	c.checkLabels()
	c.flushUnit()

	c.labels = savedLabels
	c.arguments.reset()
	c.locals.reset()
	c.codeType, c.codeSymbol = savedType, savedSym

	c.require(tEOL)
}

// assembleImage lays out the final (header, TEXT, DATA) triple per
// spec.md section 6: TEXT holds code and interned strings (already fully
// assembled by the time every unit has flushed), DATA is the initial
// image of every global cell.
func (c *Compiler) assembleImage(entry int) (isa.ImageHdr, []byte, []byte) {
	data := make([]byte, c.dataFree)

	var hdr isa.ImageHdr
	hdr.Entry = isa.Cell(entry)
	hdr.DataOffset = isa.UCell(isa.HeaderSize + len(c.text))
	hdr.DataSize = isa.UCell(len(data))
	hdr.ImageSize = hdr.DataOffset + hdr.DataSize
	return hdr, c.text, data
}
