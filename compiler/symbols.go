package compiler

import (
	"strings"

	"github.com/dmbetz/mbasic/isa"
)

// symbolClass distinguishes what a symbol's value field means.
type symbolClass int

// The original compiler ties every name to one of two storage classes,
// SC_CONSTANT (a TEXT address, used for every callable) and SC_VARIABLE (a
// DATA address, used for every storage location, arrays included, arrays
// distinguished only by a nonzero size). This port splits that pair into
// three explicit tags so each resolver (codeLValue, codeCall, ...) can
// switch exhaustively instead of re-deriving "is this an array" from size.
const (
	classVariable symbolClass = iota // value is a DATA address (global) or stack frame offset (argument)
	classArray                       // value is the DATA address of the first element
	classFunction                    // value is a TEXT address
)

// symbol is one entry of a symbolTable: a name bound to a class and a value
// whose meaning depends on the class, per spec.md section 3.
type symbol struct {
	name  string
	class symbolClass
	value isa.Cell
	size  int  // element count, for classArray; 1 for classVariable, 0 for classFunction
	frame bool // true if value is an FP-relative offset (argument) rather than a DATA offset (global)
}

// symbolTable is a small, case-insensitive, insertion-ordered table. The
// grammar never declares more than a few dozen names in any one scope, so a
// linear scan beats a map: it preserves the FIFO shadowing order spec.md
// section 3 requires (innermost table searched first, each table searched
// in declaration order) without a second index structure.
type symbolTable struct {
	syms []*symbol
}

func (t *symbolTable) find(name string) *symbol {
	for _, s := range t.syms {
		if strings.EqualFold(s.name, name) {
			return s
		}
	}
	return nil
}

func (t *symbolTable) reset() {
	t.syms = t.syms[:0]
}

func (t *symbolTable) add(name string, class symbolClass, value isa.Cell, size int) *symbol {
	s := &symbol{name: name, class: class, value: value, size: size}
	t.syms = append(t.syms, s)
	return s
}

// lookup searches tables in order, implementing the shadowing rule of
// spec.md section 3: locals hide arguments hide globals.
func lookup(name string, tables ...*symbolTable) *symbol {
	for _, t := range tables {
		if s := t.find(name); s != nil {
			return s
		}
	}
	return nil
}
