package compiler

// require consumes the next token and aborts unless it matches want.
func (c *Compiler) require(want tokenKind) token {
	tok := c.scanner.next()
	if tok.kind != want {
		c.abortf("expecting %s, found %s", tokenName(want), tokenName(tok.kind))
	}
	return tok
}

func (c *Compiler) requireIdentifier() string {
	return c.require(tIDENTIFIER).text
}

// frequire is the "require at start of statement" form: it checks a token
// already in hand rather than fetching a new one, matching the original's
// FRequire used right after ParseStatement's dispatch peek.
func (c *Compiler) frequire(tok token, want tokenKind) {
	if tok.kind != want {
		c.abortf("expecting %s, found %s", tokenName(want), tokenName(tok.kind))
	}
}

// ---- expression grammar ----
//
// expr        := orTerm
// orTerm      := andTerm (OR andTerm)*
// andTerm     := notTerm (AND notTerm)*
// notTerm     := NOT notTerm | relTerm
// relTerm     := term ((< | <= | > | >= | = | <>) term)?
// term        := factor ((+ | - | & | "|" | ^) factor)*
// factor      := unary ((* | / | \ | MOD | << | >>) unary)*
// unary       := (- | ~) unary | primary
// primary     := NUMBER | STRING | '(' expr ')' | identRef

func (c *Compiler) parseExpr() nodeRef {
	return c.parseOr()
}

func (c *Compiler) parseOr() nodeRef {
	operands := []nodeRef{c.parseAnd()}
	for {
		tok := c.scanner.next()
		if tok.kind != tOR {
			c.scanner.saveToken(tok)
			break
		}
		operands = append(operands, c.parseAnd())
	}
	if len(operands) == 1 {
		return operands[0]
	}
	return c.newOr(operands)
}

func (c *Compiler) parseAnd() nodeRef {
	operands := []nodeRef{c.parseNot()}
	for {
		tok := c.scanner.next()
		if tok.kind != tAND {
			c.scanner.saveToken(tok)
			break
		}
		operands = append(operands, c.parseNot())
	}
	if len(operands) == 1 {
		return operands[0]
	}
	return c.newAnd(operands)
}

func (c *Compiler) parseNot() nodeRef {
	tok := c.scanner.next()
	if tok.kind == tNOT {
		return c.newUnary(tNOT, c.parseNot())
	}
	c.scanner.saveToken(tok)
	return c.parseRel()
}

var relOps = map[tokenKind]bool{
	tLT: true, tLE: true, tGT: true, tGE: true, tEQ: true, tNE: true,
}

func (c *Compiler) parseRel() nodeRef {
	left := c.parseTerm()
	tok := c.scanner.next()
	if !relOps[tok.kind] {
		c.scanner.saveToken(tok)
		return left
	}
	return c.newBinary(tok.kind, left, c.parseTerm())
}

var termOps = map[tokenKind]bool{
	tPLUS: true, tMINUS: true, tAMP: true, tPIPE: true, tCARET: true,
}

func (c *Compiler) parseTerm() nodeRef {
	left := c.parseFactor()
	for {
		tok := c.scanner.next()
		if !termOps[tok.kind] {
			c.scanner.saveToken(tok)
			return left
		}
		left = c.newBinary(tok.kind, left, c.parseFactor())
	}
}

var factorOps = map[tokenKind]bool{
	tSTAR: true, tSLASH: true, tBACKSLASH: true, tMOD: true, tSHL: true, tSHR: true,
}

func (c *Compiler) parseFactor() nodeRef {
	left := c.parseUnary()
	for {
		tok := c.scanner.next()
		if !factorOps[tok.kind] {
			c.scanner.saveToken(tok)
			return left
		}
		left = c.newBinary(tok.kind, left, c.parseUnary())
	}
}

func (c *Compiler) parseUnary() nodeRef {
	tok := c.scanner.next()
	switch tok.kind {
	case tMINUS:
		return c.newUnary(tMINUS, c.parseUnary())
	case tTILDE:
		return c.newUnary(tTILDE, c.parseUnary())
	default:
		c.scanner.saveToken(tok)
		return c.parsePrimary()
	}
}

func (c *Compiler) parsePrimary() nodeRef {
	tok := c.scanner.next()
	switch tok.kind {
	case tNUMBER:
		return c.newInteger(tok.value)
	case tSTRING:
		return c.newString(c.internString(tok.text))
	case tLPAREN:
		e := c.parseExpr()
		c.require(tRPAREN)
		return e
	case tIDENTIFIER:
		return c.parseIdentRef(tok.text)
	default:
		c.abortf("expecting an expression, found %s", tokenName(tok.kind))
		panic("unreachable")
	}
}

// parseIdentRef resolves name and, depending on what follows and what kind
// of symbol it is, produces a plain reference, an array reference, or a
// function call node.
func (c *Compiler) parseIdentRef(name string) nodeRef {
	sym := c.findSymbol(name)
	if sym == nil {
		c.abortf("undefined symbol '%s'", name)
	}
	tok := c.scanner.next()
	if tok.kind != tLPAREN {
		c.scanner.saveToken(tok)
		if sym.class == classFunction {
			c.abortf("'%s' requires arguments", name)
		}
		return c.newSymbolRef(sym)
	}
	switch sym.class {
	case classArray:
		idx := c.parseExpr()
		c.require(tRPAREN)
		return c.newArrayRef(sym, idx)
	case classFunction:
		var args []nodeRef
		if t := c.scanner.next(); t.kind != tRPAREN {
			c.scanner.saveToken(t)
			for {
				args = append(args, c.parseExpr())
				t := c.scanner.next()
				if t.kind == tRPAREN {
					break
				}
				c.frequire(t, tCOMMA)
			}
		}
		return c.newCall(sym, args)
	default:
		c.abortf("'%s' is not an array or a function", name)
		panic("unreachable")
	}
}
