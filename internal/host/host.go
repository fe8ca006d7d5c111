// Package host provides the reference vm.Host implementation: a console
// wired directly to the traps spec.md section 4.H defines, grounded on
// the raw-tty setup github.com/db47h/ngaro's cmd/retro uses for the same
// purpose.
package host

import (
	"bufio"
	"io"
	"time"

	"github.com/dmbetz/mbasic/isa"
)

// Console implements vm.Host over a pair of streams. PutChar is buffered
// and reaches the underlying writer on Flush (or when the buffer fills), matching
// OP_TRAP/TrapPrintFlush's role as the explicit commit point PRINT
// statements end on.
type Console struct {
	r       *bufio.Reader
	w       *bufio.Writer
	tearRaw func()
}

// New wraps r and w for use as a vm.Host. If the caller has already put
// the input stream into raw mode (see SetRawIO), pass the teardown
// function as tearRaw so Close restores it.
func New(r io.Reader, w io.Writer, tearRaw func()) *Console {
	return &Console{r: bufio.NewReader(r), w: bufio.NewWriter(w), tearRaw: tearRaw}
}

func (c *Console) GetChar() (isa.Cell, error) {
	b, err := c.r.ReadByte()
	if err != nil {
		return 0, err
	}
	return isa.Cell(b), nil
}

func (c *Console) PutChar(b byte) error {
	return c.w.WriteByte(b)
}

func (c *Console) Flush() error {
	return c.w.Flush()
}

func (c *Console) DelayMs(ms isa.Cell) error {
	if ms <= 0 {
		return nil
	}
	time.Sleep(time.Duration(ms) * time.Millisecond)
	return nil
}

// UpdateLeds has nothing to drive on a console host; spec.md lists it as
// a host-defined no-op when no LED hardware is present.
func (c *Console) UpdateLeds() error {
	return nil
}

// Close flushes buffered output and restores the terminal, if SetRawIO
// put it into raw mode.
func (c *Console) Close() error {
	err := c.Flush()
	if c.tearRaw != nil {
		c.tearRaw()
	}
	return err
}
