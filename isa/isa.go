// Package isa defines the wire format shared by the compiler and the VM:
// the cell types, opcode and trap numbers, the image header layout and the
// big-endian codec for multi-byte immediates. Neither half of the toolchain
// may derive these independently; a new opcode or header field changes this
// package and both halves at once.
package isa

// Cell is the signed machine word of the target (VMVALUE in the original
// design). mbasic is built for the 32-bit configuration; UCell is its
// unsigned counterpart and Word is the signed 16-bit type used for branch
// offsets.
type Cell int32

// UCell is the unsigned counterpart of Cell, used for address arithmetic.
type UCell uint32

// Word is a signed 16-bit quantity used for branch offsets (VMWORD).
type Word int16

const (
	// CellSize is the encoded width in bytes of a Cell in the image.
	CellSize = 4
	// WordSize is the encoded width in bytes of a Word in the image.
	WordSize = 2
)

// DataOffset partitions the address space: addresses below it are TEXT
// (code and read-only literals), addresses at or above it are DATA
// (read-write variables). This is the 32-bit configuration's constant;
// spec.md also allows 0x8000 for a 16-bit build, which this implementation
// does not target.
const DataOffset UCell = 0x80000000

// VMTrue and VMFalse are the canonical boolean encodings pushed by the
// comparison opcodes.
const (
	VMFalse Cell = 0
	VMTrue  Cell = 1
)

// Opcode identifies a single VM instruction.
type Opcode byte

// Opcode numbers. Order and values must stay stable across compiler and VM;
// adding one means updating both halves, never just one.
const (
	OpHALT Opcode = iota
	OpBRT
	OpBRTSC
	OpBRF
	OpBRFSC
	OpBR
	OpNOT
	OpNEG
	OpADD
	OpSUB
	OpMUL
	OpDIV
	OpREM
	OpBNOT
	OpBAND
	OpBOR
	OpBXOR
	OpSHL
	OpSHR
	OpLT
	OpLE
	OpEQ
	OpNE
	OpGE
	OpGT
	OpLIT
	OpSLIT
	OpLOAD
	OpLOADB
	OpSTORE
	OpSTOREB
	OpLREF
	OpLSET
	OpINDEX
	OpCALL
	OpFRAME
	OpRETURN
	OpDROP
	OpDUP
	OpNATIVE
	OpTRAP
)

// mnemonics gives each opcode a disassembly name, matching the vocabulary
// of spec.md section 4.G.
var mnemonics = [...]string{
	OpHALT:   "halt",
	OpBRT:    "brt",
	OpBRTSC:  "brtsc",
	OpBRF:    "brf",
	OpBRFSC:  "brfsc",
	OpBR:     "br",
	OpNOT:    "not",
	OpNEG:    "neg",
	OpADD:    "add",
	OpSUB:    "sub",
	OpMUL:    "mul",
	OpDIV:    "div",
	OpREM:    "rem",
	OpBNOT:   "bnot",
	OpBAND:   "band",
	OpBOR:    "bor",
	OpBXOR:   "bxor",
	OpSHL:    "shl",
	OpSHR:    "shr",
	OpLT:     "lt",
	OpLE:     "le",
	OpEQ:     "eq",
	OpNE:     "ne",
	OpGE:     "ge",
	OpGT:     "gt",
	OpLIT:    "lit",
	OpSLIT:   "slit",
	OpLOAD:   "load",
	OpLOADB:  "loadb",
	OpSTORE:  "store",
	OpSTOREB: "storeb",
	OpLREF:   "lref",
	OpLSET:   "lset",
	OpINDEX:  "index",
	OpCALL:   "call",
	OpFRAME:  "frame",
	OpRETURN: "return",
	OpDROP:   "drop",
	OpDUP:    "dup",
	OpNATIVE: "native",
	OpTRAP:   "trap",
}

// String returns the disassembly mnemonic for op, or "???" if op is not a
// known opcode.
func (op Opcode) String() string {
	if int(op) < len(mnemonics) && mnemonics[op] != "" {
		return mnemonics[op]
	}
	return "???"
}

// Trap identifies a host service invoked by OP_TRAP.
type Trap byte

// Trap codes, per spec.md section 4.H.
const (
	TrapGetChar Trap = iota
	TrapPutChar
	TrapPrintStr
	TrapPrintInt
	TrapPrintTab
	TrapPrintNL
	TrapPrintFlush
	TrapDelayMs
	TrapUpdateLeds
)

var trapNames = [...]string{
	TrapGetChar:    "GetChar",
	TrapPutChar:    "PutChar",
	TrapPrintStr:   "PrintStr",
	TrapPrintInt:   "PrintInt",
	TrapPrintTab:   "PrintTab",
	TrapPrintNL:    "PrintNL",
	TrapPrintFlush: "PrintFlush",
	TrapDelayMs:    "DelayMs",
	TrapUpdateLeds: "UpdateLeds",
}

func (t Trap) String() string {
	if int(t) < len(trapNames) && trapNames[t] != "" {
		return trapNames[t]
	}
	return "???"
}

// HeaderSize is the encoded size in bytes of ImageHdr.
const HeaderSize = 4 * CellSize

// ImageHdr is the fixed-size header at offset 0 of every image, per
// spec.md section 3 and section 6.
type ImageHdr struct {
	Entry      Cell  // TEXT address of the main program entry
	DataOffset UCell // byte offset where the DATA initializer begins
	DataSize   UCell // number of bytes of DATA
	ImageSize  UCell // total image size
}

// PutCell encodes v as a big-endian Cell into b, which must have length
// >= CellSize. This is the wire-format invariant of section 4.E: multi-byte
// immediates embedded in TEXT are always big-endian, regardless of host
// byte order.
func PutCell(b []byte, v Cell) {
	u := uint32(v)
	b[0] = byte(u >> 24)
	b[1] = byte(u >> 16)
	b[2] = byte(u >> 8)
	b[3] = byte(u)
}

// GetCell decodes a big-endian Cell from b, which must have length >= CellSize.
func GetCell(b []byte) Cell {
	u := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	return Cell(u)
}

// PutWord encodes v as a big-endian Word into b, which must have length
// >= WordSize.
func PutWord(b []byte, v Word) {
	u := uint16(v)
	b[0] = byte(u >> 8)
	b[1] = byte(u)
}

// GetWord decodes a big-endian Word from b, which must have length
// >= WordSize.
func GetWord(b []byte) Word {
	u := uint16(b[0])<<8 | uint16(b[1])
	return Word(u)
}

// PutHeader encodes h as a big-endian ImageHdr into b, which must have
// length >= HeaderSize. Header fields are VMVALUE/VMUVALUE sized and use
// the same big-endian encoding as code immediates (section 3).
func PutHeader(b []byte, h ImageHdr) {
	PutCell(b[0:], h.Entry)
	PutCell(b[4:], Cell(h.DataOffset))
	PutCell(b[8:], Cell(h.DataSize))
	PutCell(b[12:], Cell(h.ImageSize))
}

// GetHeader decodes a big-endian ImageHdr from b, which must have length
// >= HeaderSize.
func GetHeader(b []byte) ImageHdr {
	return ImageHdr{
		Entry:      GetCell(b[0:]),
		DataOffset: UCell(GetCell(b[4:])),
		DataSize:   UCell(GetCell(b[8:])),
		ImageSize:  UCell(GetCell(b[12:])),
	}
}
