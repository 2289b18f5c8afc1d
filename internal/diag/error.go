// Package diag implements the interpreter's structured error model
// (spec.md §7): Abort, FetchError, CallError, OperationError and
// HostError, each carrying enough context (message, labels, notes,
// span) for a compiler-side diagnostic renderer.
package diag

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// ErrorKind classifies a diag.Error the way spec.md §7 does.
type ErrorKind int

const (
	KindAbort ErrorKind = iota
	KindFetch
	KindCall
	KindOperation
	KindHost
)

func (k ErrorKind) String() string {
	switch k {
	case KindAbort:
		return "abort"
	case KindFetch:
		return "fetch"
	case KindCall:
		return "call"
	case KindOperation:
		return "operation"
	case KindHost:
		return "host"
	default:
		return "unknown"
	}
}

// Span is a half-open byte range [Start, End) into the source that
// produced the bytecode an error occurred in.
type Span struct {
	Start int
	End   int
}

// Error is the structured error type the interpreter returns to its
// caller. Fatal kinds (Abort, Fetch) unwind the interpreter; recoverable
// kinds (Call, Operation) are routed through the VM's error register
// until consumed by ClearError, JumpIfNotErr, or SetPathInfallible.
// Host errors are propagated unchanged from target/variable-store
// calls and are fatal unless the host itself chooses to recover.
type Error struct {
	Kind    ErrorKind
	Message string
	Labels  []string
	Notes   []string
	Span    Span
	cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil diag.Error>"
	}
	return e.Message
}

// Unwrap exposes the wrapped cause, if any, for errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// Recoverable reports whether this error kind is meant to be captured
// by the VM's error register rather than unwind the interpreter.
func (e *Error) Recoverable() bool {
	return e.Kind == KindCall || e.Kind == KindOperation
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Abort builds the fatal error raised by the bytecode `Abort`
// instruction.
func Abort(span Span) *Error {
	return &Error{Kind: KindAbort, Message: "program aborted", Span: span}
}

// Fetch builds a fatal malformed-bytecode error: an opcode where a
// primitive was expected, stack underflow, or a slot index out of
// range.
func Fetch(format string, args ...interface{}) *Error {
	return newError(KindFetch, fmt.Sprintf(format, args...))
}

// Call wraps a function-call failure with the identifier and source
// span of the call site, matching the original's exact message
// format (see SPEC_FULL.md "supplemented features").
func Call(functionID string, span Span, cause error) *Error {
	return &Error{
		Kind: KindCall,
		Message: fmt.Sprintf(
			`function call error for "%s" at (%d:%d): %s`,
			functionID, span.Start, span.End, cause.Error(),
		),
		Span:  span,
		cause: cause,
	}
}

// Operation wraps a value-arithmetic failure (type mismatch, division
// by zero, ...).
func Operation(cause error) *Error {
	return &Error{Kind: KindOperation, Message: cause.Error(), cause: cause}
}

// Host wraps an error surfaced unchanged from the host target or
// variable store, annotated with pkg/errors so the diagnostic
// renderer retains a stack trace back to the failing Get/Insert call.
func Host(cause error) *Error {
	wrapped := pkgerrors.Wrap(cause, "host context")
	return &Error{Kind: KindHost, Message: wrapped.Error(), cause: wrapped}
}

// WithLabels attaches diagnostic labels (short, single-line
// annotations pointing at source spans) and returns e for chaining.
func (e *Error) WithLabels(labels ...string) *Error {
	e.Labels = append(e.Labels, labels...)
	return e
}

// WithNotes attaches longer free-form diagnostic notes and returns e
// for chaining.
func (e *Error) WithNotes(notes ...string) *Error {
	e.Notes = append(e.Notes, notes...)
	return e
}
