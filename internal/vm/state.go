// Package vm holds the interpreter's mutable execution state and the
// dispatch loop that drives it (spec.md §4.4, §4.5 — components E and
// F).
package vm

import (
	"github.com/relaypipe/remap/internal/bytecode"
	"github.com/relaypipe/remap/internal/diag"
	"github.com/relaypipe/remap/internal/value"
)

// State is one interpreter run's mutable register file: an instruction
// pointer into a Container, an operand stack, a parameter-marshalling
// stack used while assembling a Call's ArgumentList, and the error
// register a recoverable failure is latched into until consumed.
//
// A State is single-use and not safe for concurrent use; a Container
// may be shared across many States run in parallel (spec.md §5).
type State struct {
	container *bytecode.Container
	ip        int
	operands  []value.Value
	params    []paramSlot
	err       *diag.Error
}

// paramSlot is one entry pushed onto the parameter-marshalling stack
// by EmptyParameter/MoveParameter/MoveStatic while assembling a Call's
// argument list.
type paramSlot struct {
	value  value.Value
	static interface{}
	absent bool
}

// NewState builds a fresh State at the start of container.
func NewState(container *bytecode.Container) *State {
	return &State{container: container}
}

// HasError reports whether the error register is currently set.
func (s *State) HasError() bool { return s.err != nil }

// Error returns the error register's current value, or nil.
func (s *State) Error() *diag.Error { return s.err }

// SetError latches e into the error register.
func (s *State) SetError(e *diag.Error) { s.err = e }

// ClearError empties the error register.
func (s *State) ClearError() { s.err = nil }

// nextOpcode fetches the opcode at ip and advances ip, or returns a
// fatal Fetch error if ip holds a primitive or is out of range.
func (s *State) nextOpcode() (bytecode.OpCode, *diag.Error) {
	if s.ip >= s.container.Len() {
		return 0, diag.Fetch("instruction pointer %d out of range", s.ip)
	}
	op, isOp := s.container.OpcodeAt(s.ip)
	if !isOp {
		return 0, diag.Fetch("expected opcode at %d, found primitive", s.ip)
	}
	s.ip++
	return op, nil
}

// nextPrimitive fetches the primitive operand at ip and advances ip,
// or returns a fatal Fetch error if ip holds an opcode or is out of
// range.
func (s *State) nextPrimitive() (int, *diag.Error) {
	if s.ip >= s.container.Len() {
		return 0, diag.Fetch("instruction pointer %d out of range", s.ip)
	}
	n, isPrim := s.container.PrimitiveAt(s.ip)
	if !isPrim {
		return 0, diag.Fetch("expected primitive at %d, found opcode", s.ip)
	}
	s.ip++
	return n, nil
}

// push pushes v onto the operand stack.
func (s *State) push(v value.Value) { s.operands = append(s.operands, v) }

// pop pops the operand stack's top value, or returns a fatal Fetch
// error on underflow — malformed bytecode, never a user-reachable
// condition.
func (s *State) pop() (value.Value, *diag.Error) {
	if len(s.operands) == 0 {
		return nil, diag.Fetch("operand stack underflow")
	}
	top := s.operands[len(s.operands)-1]
	s.operands = s.operands[:len(s.operands)-1]
	return top, nil
}

// peek returns the operand stack's top value without popping it.
func (s *State) peek() (value.Value, *diag.Error) {
	if len(s.operands) == 0 {
		return nil, diag.Fetch("operand stack underflow")
	}
	return s.operands[len(s.operands)-1], nil
}

// pushParam appends one marshalled argument slot.
func (s *State) pushParam(slot paramSlot) { s.params = append(s.params, slot) }

// drainParams removes and returns the n most-recently-pushed param
// slots, in call order.
func (s *State) drainParams(n int) ([]paramSlot, *diag.Error) {
	if len(s.params) < n {
		return nil, diag.Fetch("parameter stack underflow: want %d, have %d", n, len(s.params))
	}
	start := len(s.params) - n
	slots := s.params[start:]
	s.params = s.params[:start]
	return slots, nil
}
