package compiler

import "fmt"

// Error is a compile-time diagnostic: anything the parser's grammar
// allows but the bytecode subset cannot express (see the package
// doc), a local-variable-table overflow, or a constant-pool overflow.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[line %d] Compile error: %s", e.Line, e.Message)
}

func errorf(line int, format string, args ...any) *Error {
	return &Error{Line: line, Message: fmt.Sprintf(format, args...)}
}
