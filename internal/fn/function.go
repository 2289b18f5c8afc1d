// Package fn defines the contract a host-registered standard-library
// function exposes to the interpreter's Call opcode (spec.md §6
// "Function contract").
package fn

import (
	"errors"

	"github.com/relaypipe/remap/internal/host"
	"github.com/relaypipe/remap/internal/kind"
	"github.com/relaypipe/remap/internal/value"
)

// ErrAbort is the sentinel a Function must wrap (via fmt.Errorf's %w or
// errors.Join) when it needs to signal the fatal, non-recoverable abort
// condition spec.md §4.5 reserves for the `abort` statement. A Call
// that returns an error satisfying errors.Is(err, ErrAbort) is treated
// as an implementation bug in the function, not a recoverable runtime
// error: the interpreter panics rather than latching it as a CallError.
// No function in this module's stdlib produces it today.
var ErrAbort = errors.New("function raised abort, which only the abort statement may do")

// Parameter describes one declared argument of a Function.
type Parameter struct {
	Name     string
	Optional bool
	Accepts  kind.Kind
}

// Arg is one entry of an ArgumentList: either a Value moved from the
// operand stack (MoveParameter), a borrowed static parameter
// (MoveStatic), or absent (EmptyParameter / an omitted optional arg).
type Arg struct {
	Value value.Value
	Any    interface{}
	Absent bool
}

// ArgumentList is the marshalled parameter-stack slice handed to a
// Function's CheckArguments/Call.
type ArgumentList struct {
	Params []Parameter
	Args   []Arg
}

// Get returns the i'th argument's Value, or ok=false if it was
// omitted.
func (l *ArgumentList) Get(i int) (value.Value, bool) {
	if i < 0 || i >= len(l.Args) || l.Args[i].Absent {
		return nil, false
	}
	return l.Args[i].Value, true
}

// Function is a single host-registered callable invocable from
// bytecode via the Call opcode.
type Function interface {
	Identifier() string
	Parameters() []Parameter
	CheckArguments(args *ArgumentList) error
	Call(ctx *host.Context, args *ArgumentList) (value.Value, error)
}
