package compiler

import "strings"

// tokenKind identifies a single lexical token, matching the T_xxx
// enumeration of spec.md section 4.A.
type tokenKind int

const (
	tNone tokenKind = iota

	// keywords
	tREM
	tDEF
	tDIM
	tAS
	tLET
	tIF
	tTHEN
	tELSE
	tEND
	tFOR
	tTO
	tSTEP
	tNEXT
	tDO
	tWHILE
	tUNTIL
	tLOOP
	tGOTO
	tMOD
	tAND
	tOR
	tNOT
	tSTOP
	tRETURN
	tPRINT

	// compound keywords, recognized by two-word lookahead
	tELSEIF
	tENDDEF
	tENDIF
	tDOWHILE
	tDOUNTIL
	tLOOPWHILE
	tLOOPUNTIL

	// non-keyword multi-character tokens
	tLE
	tNE
	tGE
	tSHL
	tSHR

	tIDENTIFIER
	tNUMBER
	tSTRING
	tEOL
	tEOF

	// single-character operators
	tPLUS
	tMINUS
	tSTAR
	tSLASH
	tBACKSLASH
	tLPAREN
	tRPAREN
	tCOMMA
	tSEMI
	tCOLON
	tEQ
	tLT
	tGT
	tLBRACKET
	tRBRACKET
	tAMP
	tPIPE
	tCARET
	tTILDE
)

// keywords maps the case-insensitive spelling of a keyword to its token
// kind. Compound keywords (ELSE IF, END DEF, ...) are assembled by the
// scanner from two consecutive simple keywords, not looked up here.
var keywords = map[string]tokenKind{
	"REM":    tREM,
	"DEF":    tDEF,
	"DIM":    tDIM,
	"AS":     tAS,
	"LET":    tLET,
	"IF":     tIF,
	"THEN":   tTHEN,
	"ELSE":   tELSE,
	"END":    tEND,
	"FOR":    tFOR,
	"TO":     tTO,
	"STEP":   tSTEP,
	"NEXT":   tNEXT,
	"DO":     tDO,
	"WHILE":  tWHILE,
	"UNTIL":  tUNTIL,
	"LOOP":   tLOOP,
	"GOTO":   tGOTO,
	"MOD":    tMOD,
	"AND":    tAND,
	"OR":     tOR,
	"NOT":    tNOT,
	"STOP":   tSTOP,
	"RETURN": tRETURN,
	"PRINT":  tPRINT,
}

// tokenNames gives each token kind a human-readable spelling for
// diagnostics, matching the style of TokenName in the original scanner.
var tokenNames = map[tokenKind]string{
	tREM: "REM", tDEF: "DEF", tDIM: "DIM", tAS: "AS", tLET: "LET",
	tIF: "IF", tTHEN: "THEN", tELSE: "ELSE", tEND: "END", tFOR: "FOR",
	tTO: "TO", tSTEP: "STEP", tNEXT: "NEXT", tDO: "DO", tWHILE: "WHILE",
	tUNTIL: "UNTIL", tLOOP: "LOOP", tGOTO: "GOTO", tMOD: "MOD", tAND: "AND",
	tOR: "OR", tNOT: "NOT", tSTOP: "STOP", tRETURN: "RETURN", tPRINT: "PRINT",
	tELSEIF: "ELSE IF", tENDDEF: "END DEF", tENDIF: "END IF",
	tDOWHILE: "DO WHILE", tDOUNTIL: "DO UNTIL",
	tLOOPWHILE: "LOOP WHILE", tLOOPUNTIL: "LOOP UNTIL",
	tLE: "<=", tNE: "<>", tGE: ">=", tSHL: "<<", tSHR: ">>",
	tIDENTIFIER: "identifier", tNUMBER: "number", tSTRING: "string",
	tEOL: "end of line", tEOF: "end of file",
	tPLUS: "+", tMINUS: "-", tSTAR: "*", tSLASH: "/", tBACKSLASH: "\\",
	tLPAREN: "(", tRPAREN: ")", tCOMMA: ",", tSEMI: ";", tCOLON: ":",
	tEQ: "=", tLT: "<", tGT: ">", tLBRACKET: "[", tRBRACKET: "]",
	tAMP: "&", tPIPE: "|", tCARET: "^", tTILDE: "~", tNone: "<none>",
}

// tokenName returns a human-readable name for tk, for use in diagnostics.
func tokenName(tk tokenKind) string {
	if n, ok := tokenNames[tk]; ok {
		return n
	}
	return "?"
}

// lookupKeyword returns the token kind for name if it is a keyword,
// matched case-insensitively, and whether it was found.
func lookupKeyword(name string) (tokenKind, bool) {
	tk, ok := keywords[strings.ToUpper(name)]
	return tk, ok
}
