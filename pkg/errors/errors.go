package errors

import (
	"fmt"
	"io"
	"strings"
)

// LKQLError is the interface implemented by all compilation errors.
type LKQLError interface {
	error // Embed the standard error interface
	Pos() Position
	Kind() string // e.g., "Syntax", "Compile", "Internal"
	// Message returns the specific error message without position info.
	Message() string
	Unwrap() error // For error wrapping support (errors.Is/As)
}

// --- Concrete Error Types ---

// SyntaxError represents an error during lexing or parsing.
type SyntaxError struct {
	Position
	Msg   string
	Cause error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Syntax Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *SyntaxError) Pos() Position   { return e.Position }
func (e *SyntaxError) Kind() string    { return "Syntax" }
func (e *SyntaxError) Message() string { return e.Msg }
func (e *SyntaxError) Unwrap() error   { return e.Cause }
func (e *SyntaxError) CausedBy(cause error) *SyntaxError {
	e.Cause = cause
	return e
}

// CompileError represents a recoverable user-facing failure during bytecode
// compilation: an unresolved variable reference, an unknown node kind, a bad
// literal. These propagate as return values up to the compile entry point.
type CompileError struct {
	Position
	Msg   string
	Cause error
}

func (e *CompileError) Error() string {
	if e.Line == 0 {
		// Compile errors raised while walking the AST usually lack a
		// precise position.
		return fmt.Sprintf("Compile Error: %s", e.Msg)
	}
	return fmt.Sprintf("Compile Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *CompileError) Pos() Position   { return e.Position }
func (e *CompileError) Kind() string    { return "Compile" }
func (e *CompileError) Message() string { return e.Msg }
func (e *CompileError) Unwrap() error   { return e.Cause }
func (e *CompileError) CausedBy(cause error) *CompileError {
	e.Cause = cause
	return e
}

// InternalError represents a broken compiler invariant: an unresolved jump
// reaching the encoder, an operand that cannot be narrowed without losing
// bits, register exhaustion during a contiguous allocation. These indicate a
// compiler bug or an unrecoverable condition, never a problem with the query
// being compiled, and are raised by panicking with the error value so the
// whole compilation aborts. The compile entry point recovers them into a
// returned error so callers never observe partial state.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string   { return fmt.Sprintf("Internal Error: %s", e.Msg) }
func (e *InternalError) Pos() Position   { return Position{} }
func (e *InternalError) Kind() string    { return "Internal" }
func (e *InternalError) Message() string { return e.Msg }
func (e *InternalError) Unwrap() error   { return nil }

// Internalf panics with an InternalError built from the given format string.
func Internalf(format string, args ...interface{}) {
	panic(&InternalError{Msg: fmt.Sprintf(format, args...)})
}

// --- Error Reporting ---

// DisplayError prints an error to w in a user-friendly format, including the
// source line and a position marker when the error carries a position.
func DisplayError(w io.Writer, source string, err LKQLError) {
	pos := err.Pos()
	kind := err.Kind()
	msg := err.Message()

	// Ensure line numbers are within bounds (1-based index)
	lines := strings.Split(source, "\n")
	lineIdx := pos.Line - 1
	if lineIdx < 0 || lineIdx >= len(lines) {
		// Print a generic error if line info is absent or invalid
		fmt.Fprintf(w, "%s Error: %s\n", kind, msg)
		return
	}

	sourceLine := strings.TrimRight(lines[lineIdx], "\r\n\t ")

	fmt.Fprintf(w, "%s Error at %d:%d: %s\n", kind, pos.Line, pos.Column, msg)
	fmt.Fprintf(w, "  %s\n", sourceLine)
	marker := strings.Repeat(" ", pos.Column-1) + "^"
	fmt.Fprintf(w, "  %s\n", marker)
}
