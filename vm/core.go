package vm

import (
	"github.com/pkg/errors"

	"github.com/dmbetz/mbasic/isa"
)

// push stores v below the current tos, the general "make room" primitive
// every stack-growing opcode uses before overwriting tos itself (CPush in
// the original).
func (in *Instance) push(v isa.Cell) {
	if in.sp-1 < 0 {
		in.fault("stack overflow")
	}
	in.sp--
	in.stack[in.sp] = v
}

// pushTos relocates the current tos into the array and leaves v as the
// new tos; every opcode that grows the stack (LIT, LREF, DUP, ...) does
// exactly this.
func (in *Instance) pushTos(v isa.Cell) {
	in.push(in.tos)
	in.tos = v
}

// pop removes and returns the array's current top slot. It does not touch
// tos: callers that are shrinking the stack back down to a single value
// assign the result into tos themselves.
func (in *Instance) pop() isa.Cell {
	v := in.stack[in.sp]
	in.sp++
	return v
}

// top peeks the array's current top slot without removing it; only
// OP_RETURN uses this, to read back the return address OP_FRAME wrote.
func (in *Instance) top() isa.Cell {
	return in.stack[in.sp]
}

// reserve carves out n cells below sp without initializing them (OP_FRAME).
func (in *Instance) reserve(n int) {
	if in.sp-n < 0 {
		in.fault("stack overflow")
	}
	in.sp -= n
}

// drop reclaims n cells (OP_RETURN's argument cleanup).
func (in *Instance) drop(n int) {
	in.sp += n
}

func (in *Instance) fetchByte() byte {
	if in.PC < 0 || in.PC >= len(in.text) {
		in.fault("fetch out of range")
	}
	b := in.text[in.PC]
	in.PC++
	return b
}

func (in *Instance) fetchWord() isa.Word {
	if in.PC < 0 || in.PC+isa.WordSize > len(in.text) {
		in.fault("fetch out of range")
	}
	w := isa.GetWord(in.text[in.PC:])
	in.PC += isa.WordSize
	return w
}

func (in *Instance) fetchCell() isa.Cell {
	if in.PC < 0 || in.PC+isa.CellSize > len(in.text) {
		in.fault("fetch out of range")
	}
	c := isa.GetCell(in.text[in.PC:])
	in.PC += isa.CellSize
	return c
}

func boolCell(b bool) isa.Cell {
	if b {
		return isa.VMTrue
	}
	return isa.VMFalse
}

// Run executes the image from its current PC until OP_HALT, returning nil,
// or until a run-time fault, returning a wrapped *Error describing where
// execution stopped.
func (in *Instance) Run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*Error)
			if !ok {
				panic(r)
			}
			err = errors.WithStack(e)
		}
	}()

	for {
		if in.step() {
			return nil
		}
	}
}

// Step executes a single instruction, reporting whether it was OP_HALT.
// It recovers the same run-time faults Run does, for callers (such as a
// -trace CLI flag) that want to disassemble each instruction as it's
// about to execute rather than run the image to completion in one call.
func (in *Instance) Step() (halted bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*Error)
			if !ok {
				panic(r)
			}
			err = errors.WithStack(e)
		}
	}()
	halted = in.step()
	return
}

func (in *Instance) step() (halted bool) {
	op := isa.Opcode(in.fetchByte())
	switch op {
	case isa.OpHALT:
		return true

	case isa.OpBRT:
		w := in.fetchWord()
		if in.tos != 0 {
			in.PC += int(w)
		}
		in.tos = in.pop()
	case isa.OpBRTSC:
		w := in.fetchWord()
		if in.tos != 0 {
			in.PC += int(w)
		} else {
			in.tos = in.pop()
		}
	case isa.OpBRF:
		w := in.fetchWord()
		if in.tos == 0 {
			in.PC += int(w)
		}
		in.tos = in.pop()
	case isa.OpBRFSC:
		w := in.fetchWord()
		if in.tos == 0 {
			in.PC += int(w)
		} else {
			in.tos = in.pop()
		}
	case isa.OpBR:
		w := in.fetchWord()
		in.PC += int(w)

	case isa.OpNOT:
		in.tos = boolCell(in.tos == 0)
	case isa.OpNEG:
		in.tos = -in.tos
	case isa.OpBNOT:
		in.tos = ^in.tos

	case isa.OpADD:
		lhs := in.pop()
		in.tos = lhs + in.tos
	case isa.OpSUB:
		lhs := in.pop()
		in.tos = lhs - in.tos
	case isa.OpMUL:
		lhs := in.pop()
		in.tos = lhs * in.tos
	case isa.OpDIV:
		lhs := in.pop()
		if in.tos == 0 {
			in.tos = 0
		} else {
			in.tos = lhs / in.tos
		}
	case isa.OpREM:
		lhs := in.pop()
		if in.tos == 0 {
			in.tos = 0
		} else {
			in.tos = lhs % in.tos
		}
	case isa.OpBAND:
		lhs := in.pop()
		in.tos = lhs & in.tos
	case isa.OpBOR:
		lhs := in.pop()
		in.tos = lhs | in.tos
	case isa.OpBXOR:
		lhs := in.pop()
		in.tos = lhs ^ in.tos
	case isa.OpSHL:
		lhs := in.pop()
		in.tos = lhs << uint32(in.tos)
	case isa.OpSHR:
		lhs := in.pop()
		in.tos = lhs >> uint32(in.tos)

	case isa.OpLT:
		lhs := in.pop()
		in.tos = boolCell(lhs < in.tos)
	case isa.OpLE:
		lhs := in.pop()
		in.tos = boolCell(lhs <= in.tos)
	case isa.OpEQ:
		lhs := in.pop()
		in.tos = boolCell(lhs == in.tos)
	case isa.OpNE:
		lhs := in.pop()
		in.tos = boolCell(lhs != in.tos)
	case isa.OpGE:
		lhs := in.pop()
		in.tos = boolCell(lhs >= in.tos)
	case isa.OpGT:
		lhs := in.pop()
		in.tos = boolCell(lhs > in.tos)

	case isa.OpLIT:
		in.pushTos(in.fetchCell())
	case isa.OpSLIT:
		in.pushTos(isa.Cell(int8(in.fetchByte())))

	case isa.OpLOAD:
		in.tos = in.readCell(in.tos)
	case isa.OpLOADB:
		in.tos = in.readByte(in.tos)
	case isa.OpSTORE:
		v := in.pop()
		in.writeCell(in.tos, v)
		in.tos = in.pop()
	case isa.OpSTOREB:
		v := in.pop()
		in.writeByte(in.tos, v)
		in.tos = in.pop()

	case isa.OpLREF:
		n := int(int8(in.fetchByte()))
		in.pushTos(in.stack[in.fp+n])
	case isa.OpLSET:
		n := int(int8(in.fetchByte()))
		in.stack[in.fp+n] = in.tos
		in.tos = in.pop()

	case isa.OpINDEX:
		base := in.pop()
		in.tos = base + in.tos*isa.Cell(isa.CellSize)

	case isa.OpCALL:
		in.fetchByte() // argc, recovered later from the instruction stream by OP_RETURN
		target := in.tos
		in.tos = isa.Cell(in.PC)
		in.PC = int(target)
		if in.PC < 0 || in.PC >= len(in.text) {
			in.fault("call to invalid address %d", target)
		}

	case isa.OpFRAME:
		cnt := int(in.fetchByte())
		savedFP := in.fp
		in.fp = in.sp
		in.reserve(cnt)
		in.stack[in.sp] = in.tos
		in.stack[in.sp+1] = isa.Cell(savedFP)

	case isa.OpRETURN:
		in.PC = int(in.top())
		in.sp = in.fp
		argc := int(in.text[in.PC-1])
		in.drop(argc)
		in.fp = int(in.stack[in.fp-1])

	case isa.OpDROP:
		in.tos = in.pop()
	case isa.OpDUP:
		in.pushTos(in.tos)
	case isa.OpNATIVE:
		in.fetchCell() // decoded for forward compatibility; no effect

	case isa.OpTRAP:
		in.doTrap(isa.Trap(in.fetchByte()))

	default:
		in.PC--
		in.fault("undefined opcode %d", op)
	}
	in.insCount++
	return false
}
