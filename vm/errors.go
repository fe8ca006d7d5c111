package vm

import "fmt"

// Error is a run-time abort tied to the program counter that triggered it,
// matching the original interpreter's single Abort/longjmp unwind point.
type Error struct {
	PC      int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("pc=%d: %s", e.PC, e.Message)
}

// fault panics with an *Error; Run recovers it at the top of the
// instruction loop, the same shape compiler.abortf uses on the compile
// side.
func (in *Instance) fault(format string, args ...interface{}) {
	panic(&Error{PC: in.PC, Message: fmt.Sprintf(format, args...)})
}
