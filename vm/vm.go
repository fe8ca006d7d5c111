package vm

import (
	"fmt"
	"log"

	"github.com/dmbetz/mbasic/isa"
)

const (
	defaultStackSize = 256
	minStackSize     = 8
)

// Option configures an Instance at construction time, the same functional-
// options shape the compiler's sibling toolchain half has no need for but
// this one, with its tunable stack depth, does.
type Option func(*Instance) error

// StackSize sets the depth, in cells, of the combined expression and call
// stack shared by every frame.
func StackSize(n int) Option {
	return func(in *Instance) error {
		if n < minStackSize {
			return fmt.Errorf("vm: stack size must be at least %d cells", minStackSize)
		}
		in.stackSize = n
		return nil
	}
}

// Logger enables diagnostic messages for conditions the interpreter treats
// as silent no-ops rather than faults (currently just a STORE/STOREB to a
// TEXT address, see mem.go's writeCell/writeByte). Without this option
// those writes vanish exactly as the original interpreter drops them.
func Logger(l *log.Logger) Option {
	return func(in *Instance) error {
		in.logger = l
		return nil
	}
}

// Host wires the platform-specific side of every TRAP (see trap.go). New
// requires one; there is no usable default.
type Host interface {
	GetChar() (isa.Cell, error)
	PutChar(c byte) error
	Flush() error
	DelayMs(ms isa.Cell) error
	UpdateLeds() error
}

// Instance is one running image. PC is a byte offset into text; fp and sp
// are cell indices into stack; tos caches the value logically on top of
// the stack so the common case (every ALU op, LIT, LREF, ...) touches a
// register instead of memory, matching the original interpreter's i->tos.
//
// stack is allocated with stackSize+1 cells and sp and fp start at
// stackSize, so stack[sp] is a valid index even when the stack is empty.
type Instance struct {
	PC  int
	fp  int
	sp  int
	tos isa.Cell

	stackSize int
	stack     []isa.Cell

	text []byte
	data []byte

	host Host

	logger *log.Logger

	insCount int64
}

// New creates an Instance ready to run the image described by hdr, text,
// and data. data becomes the instance's own writable DATA segment; callers
// that want to run the same image repeatedly should pass a fresh copy each
// time (see vm.LoadImage, which already does).
func New(hdr isa.ImageHdr, text, data []byte, host Host, opts ...Option) (*Instance, error) {
	in := &Instance{
		PC:        int(hdr.Entry),
		text:      text,
		data:      data,
		host:      host,
		stackSize: defaultStackSize,
	}
	for _, opt := range opts {
		if err := opt(in); err != nil {
			return nil, err
		}
	}
	in.stack = make([]isa.Cell, in.stackSize+1)
	in.sp = in.stackSize
	in.fp = in.stackSize
	return in, nil
}

// InstructionCount returns the number of instructions executed so far.
func (in *Instance) InstructionCount() int64 {
	return in.insCount
}

// Data returns the instance's DATA segment for inspection by tests and
// debugging tools. Mutating it while Run is executing is not safe.
func (in *Instance) Data() []byte {
	return in.data
}
