package compiler

import "fmt"

// Error is a compile-time diagnostic tied to a source line, matching the
// "current line number" the original scanner stamps onto every abort.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// abortf panics with an *Error; it is recovered in Compile. Go has no
// longjmp, and threading an error return through every recursive-descent
// call site in this grammar would bury the one piece of state (the parser)
// that actually needs to unwind under boilerplate, so the parser uses the
// same panic/recover-at-the-entry-point idiom go/parser and text/template
// use for the same shape of problem.
func (c *Compiler) abortf(format string, args ...interface{}) {
	panic(&Error{Line: c.scanner.line, Message: fmt.Sprintf(format, args...)})
}
