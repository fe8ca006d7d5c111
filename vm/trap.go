package vm

import (
	"strconv"

	"github.com/dmbetz/mbasic/isa"
)

// doTrap dispatches one OP_TRAP to the Host, per spec.md section 4.H. Each
// case mirrors the stack effect of the original's DoTrap exactly; PrintInt
// formats through strconv rather than a host-supplied printf, since a Go
// Host has no reason to own number formatting the way the embedded
// VM_printf did.
func (in *Instance) doTrap(t isa.Trap) {
	switch t {
	case isa.TrapGetChar:
		in.push(in.tos)
		c, err := in.host.GetChar()
		if err != nil {
			in.fault("GetChar: %v", err)
		}
		in.tos = c
	case isa.TrapPutChar:
		if err := in.host.PutChar(byte(in.tos)); err != nil {
			in.fault("PutChar: %v", err)
		}
		in.tos = in.pop()
	case isa.TrapPrintStr:
		in.printString(in.tos)
		in.tos = in.pop()
	case isa.TrapPrintInt:
		in.printBytes([]byte(strconv.Itoa(int(in.tos))))
		in.tos = in.pop()
	case isa.TrapPrintTab:
		in.printBytes([]byte{'\t'})
	case isa.TrapPrintNL:
		in.printBytes([]byte{'\n'})
	case isa.TrapPrintFlush:
		if err := in.host.Flush(); err != nil {
			in.fault("Flush: %v", err)
		}
	case isa.TrapDelayMs:
		if err := in.host.DelayMs(in.tos); err != nil {
			in.fault("DelayMs: %v", err)
		}
		in.tos = in.pop()
	case isa.TrapUpdateLeds:
		if err := in.host.UpdateLeds(); err != nil {
			in.fault("UpdateLeds: %v", err)
		}
	default:
		in.fault("undefined trap %d", t)
	}
}

// printString emits the NUL-terminated byte string at addr, routed through
// the same TEXT/DATA addressing OP_LOADB uses.
func (in *Instance) printString(addr isa.Cell) {
	for {
		b := in.readByte(addr)
		if b == 0 {
			return
		}
		in.printBytes([]byte{byte(b)})
		addr++
	}
}

func (in *Instance) printBytes(bs []byte) {
	for _, b := range bs {
		if err := in.host.PutChar(b); err != nil {
			in.fault("PutChar: %v", err)
		}
	}
}
