package vm

import (
	"encoding/binary"

	"github.com/dmbetz/mbasic/isa"
)

// inData reports whether addr addresses the DATA segment rather than
// TEXT. The comparison must be unsigned: DataOffset's bit pattern (0x8…)
// reads back as a negative Cell, so a signed ">=" would never fire.
func inData(addr isa.Cell) bool {
	return isa.UCell(addr) >= isa.DataOffset
}

// readCell and writeCell implement OP_LOAD/OP_STORE's addressing. TEXT
// words are always decoded big-endian (the compiler's wire format, section
// 4.E); DATA words use the host's native layout, since DATA lives entirely
// within one run of one host and is never serialized across the TEXT/DATA
// boundary the way code immediates are (section 4.G's endianness note).
func (in *Instance) readCell(addr isa.Cell) isa.Cell {
	if inData(addr) {
		off := int(isa.UCell(addr) - isa.DataOffset)
		if off < 0 || off+isa.CellSize > len(in.data) {
			in.fault("data load out of range: %d", addr)
		}
		return isa.Cell(binary.NativeEndian.Uint32(in.data[off:]))
	}
	off := int(addr)
	if off < 0 || off+isa.CellSize > len(in.text) {
		in.fault("text load out of range: %d", addr)
	}
	return isa.GetCell(in.text[off:])
}

// writeCell stores to DATA only. Storing to a TEXT address is silently
// dropped: the original interpreter's OP_STORE never even tests the
// address before deciding whether to write, it just never executes the
// branch for addresses below DATA_OFFSET. Preserved verbatim per the
// design's open question on this behavior; not a bug to fix here.
func (in *Instance) writeCell(addr, v isa.Cell) {
	if !inData(addr) {
		if in.logger != nil {
			in.logger.Printf("store to TEXT address %d dropped (pc=%d)", addr, in.PC)
		}
		return
	}
	off := int(isa.UCell(addr) - isa.DataOffset)
	if off < 0 || off+isa.CellSize > len(in.data) {
		in.fault("data store out of range: %d", addr)
	}
	binary.NativeEndian.PutUint32(in.data[off:], uint32(v))
}

func (in *Instance) readByte(addr isa.Cell) isa.Cell {
	if inData(addr) {
		off := int(isa.UCell(addr) - isa.DataOffset)
		if off < 0 || off >= len(in.data) {
			in.fault("data load out of range: %d", addr)
		}
		return isa.Cell(in.data[off])
	}
	off := int(addr)
	if off < 0 || off >= len(in.text) {
		in.fault("text load out of range: %d", addr)
	}
	return isa.Cell(in.text[off])
}

func (in *Instance) writeByte(addr, v isa.Cell) {
	if !inData(addr) {
		if in.logger != nil {
			in.logger.Printf("storeb to TEXT address %d dropped (pc=%d)", addr, in.PC)
		}
		return
	}
	off := int(isa.UCell(addr) - isa.DataOffset)
	if off < 0 || off >= len(in.data) {
		in.fault("data store out of range: %d", addr)
	}
	in.data[off] = byte(v)
}
