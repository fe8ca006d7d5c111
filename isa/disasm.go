package isa

import (
	"fmt"
	"strconv"
)

// Disassemble decodes one instruction from text at pc and returns the
// offset of the next instruction and its mnemonic rendering, matching the
// vocabulary spec.md section 4.G documents for the interpreter. Used by
// the execute CLI's -trace flag.
func Disassemble(text []byte, pc int) (next int, s string) {
	if pc < 0 || pc >= len(text) {
		return pc, "???"
	}
	op := Opcode(text[pc])
	pc++
	switch op {
	case OpBRT, OpBRTSC, OpBRF, OpBRFSC, OpBR:
		if pc+WordSize > len(text) {
			return len(text), op.String() + " ???"
		}
		w := GetWord(text[pc:])
		target := pc + WordSize + int(w)
		return pc + WordSize, fmt.Sprintf("%s %d", op, target)
	case OpLIT:
		if pc+CellSize > len(text) {
			return len(text), op.String() + " ???"
		}
		return pc + CellSize, fmt.Sprintf("%s %d", op, GetCell(text[pc:]))
	case OpSLIT, OpLREF, OpLSET, OpFRAME, OpCALL:
		if pc >= len(text) {
			return len(text), op.String() + " ???"
		}
		return pc + 1, fmt.Sprintf("%s %d", op, int8(text[pc]))
	case OpTRAP:
		if pc >= len(text) {
			return len(text), op.String() + " ???"
		}
		return pc + 1, op.String() + " " + Trap(text[pc]).String()
	case OpNATIVE:
		if pc+CellSize > len(text) {
			return len(text), op.String() + " ???"
		}
		return pc + CellSize, op.String() + " " + strconv.Itoa(int(GetCell(text[pc:])))
	default:
		return pc, op.String()
	}
}
