// Package bytecode implements the append-only instruction container
// the compiler populates and the interpreter executes (spec.md §4.3,
// component D): a flat stream of tagged instruction slots, a constant
// pool, a deduplicated target table, and a static-parameter table.
package bytecode

import (
	"fmt"
	"math"

	"github.com/relaypipe/remap/internal/fn"
	"github.com/relaypipe/remap/internal/pathspec"
	"github.com/relaypipe/remap/internal/value"
)

// maxJump is the sentinel placeholder EmitJump writes before a jump
// target is known; PatchJump must overwrite every slot that still
// holds it.
const maxJump = math.MaxInt

// DebugInfo stores the source location a given instruction slot was
// compiled from, for disassembly and diagnostics.
type DebugInfo struct {
	Line   int
	Column int
	File   string
}

// instruction is one tagged slot of the instruction stream: either an
// OpCode or a Primitive (non-negative integer operand).
type instruction struct {
	isOp bool
	op   OpCode
	prim int
}

// Container is the append-only bytecode produced by the compiler and
// consumed by the interpreter. It is read-only during execution and
// may be safely shared across threads, each running its own VM state
// against its own host context (spec.md §5).
type Container struct {
	instructions []instruction
	constants    []value.Value
	targets      []pathspec.Variable
	staticParams []interface{}
	functions    []fn.Function
	debug        []DebugInfo
}

// New builds an empty Container bound to the given host-registered
// function table (by position — Call instructions reference functions
// by index into this slice).
func New(functions []fn.Function) *Container {
	return &Container{functions: functions}
}

// Len reports the number of instruction slots written so far.
func (c *Container) Len() int { return len(c.instructions) }

// OpcodeAt returns the opcode stored at slot i, or ok=false if that
// slot holds a primitive instead.
func (c *Container) OpcodeAt(i int) (op OpCode, ok bool) {
	inst := c.instructions[i]
	return inst.op, inst.isOp
}

// PrimitiveAt returns the primitive stored at slot i, or ok=false if
// that slot holds an opcode instead.
func (c *Container) PrimitiveAt(i int) (n int, ok bool) {
	inst := c.instructions[i]
	return inst.prim, !inst.isOp
}

// ConstantAt returns the constant-pool entry at idx.
func (c *Container) ConstantAt(idx int) value.Value { return c.constants[idx] }

// TargetAt returns the target-table entry at idx.
func (c *Container) TargetAt(idx int) pathspec.Variable { return c.targets[idx] }

// StaticAt returns the static-parameter-table entry at idx.
func (c *Container) StaticAt(idx int) interface{} { return c.staticParams[idx] }

// AddConstant appends v to the constant pool and returns its stable
// slot index.
func (c *Container) AddConstant(v value.Value) int {
	c.constants = append(c.constants, v)
	return len(c.constants) - 1
}

// WriteOpcode appends an opcode instruction.
func (c *Container) WriteOpcode(op OpCode) {
	c.instructions = append(c.instructions, instruction{isOp: true, op: op})
	c.debug = append(c.debug, DebugInfo{})
}

// WriteOpcodeAt overwrites the slot at pos with op — used only for
// back-patching.
func (c *Container) WriteOpcodeAt(pos int, op OpCode) {
	c.instructions[pos] = instruction{isOp: true, op: op}
}

// WritePrimitive appends a primitive (non-negative integer) operand.
func (c *Container) WritePrimitive(n int) {
	c.instructions = append(c.instructions, instruction{prim: n})
	c.debug = append(c.debug, DebugInfo{})
}

// WritePrimitiveAt overwrites the slot at pos with n — used only for
// back-patching.
func (c *Container) WritePrimitiveAt(pos int, n int) {
	c.instructions[pos] = instruction{prim: n}
}

// SetDebug attaches source location info to the most recently written
// instruction slot.
func (c *Container) SetDebug(info DebugInfo) {
	if len(c.debug) > 0 {
		c.debug[len(c.debug)-1] = info
	}
}

// EmitJump writes op followed by a placeholder primitive and returns
// the placeholder's slot index, to be passed to PatchJump once the
// jump target is known.
func (c *Container) EmitJump(op OpCode) int {
	c.WriteOpcode(op)
	c.WritePrimitive(maxJump)
	return c.Len() - 1
}

// PatchJump overwrites the placeholder at patchSlot with the forward
// offset from the slot immediately following it to the current end of
// the stream.
func (c *Container) PatchJump(patchSlot int) {
	offset := c.Len() - patchSlot - 1
	c.WritePrimitiveAt(patchSlot, offset)
}

// GetOrAddTarget linear-scans targets for structural equality,
// appending v only if absent, and returns its stable slot index.
func (c *Container) GetOrAddTarget(v pathspec.Variable) int {
	for i, t := range c.targets {
		if t.Equal(v) {
			return i
		}
	}
	c.targets = append(c.targets, v)
	return len(c.targets) - 1
}

// AddStatic appends a compiler-computed static argument and returns
// its stable slot index.
func (c *Container) AddStatic(v interface{}) int {
	c.staticParams = append(c.staticParams, v)
	return len(c.staticParams) - 1
}

// Function looks up a host-registered callable by id, or reports
// ok=false if id is out of range.
func (c *Container) Function(id int) (fn.Function, bool) {
	if id < 0 || id >= len(c.functions) {
		return nil, false
	}
	return c.functions[id], true
}

// Disassemble renders a human-readable dump of the instruction stream,
// required for debugging and property tests.
func (c *Container) Disassemble() []string {
	lines := make([]string, 0, len(c.instructions))
	for idx, inst := range c.instructions {
		if inst.isOp {
			lines = append(lines, fmt.Sprintf("%04d: %v", idx, inst.op))
		} else {
			lines = append(lines, fmt.Sprintf("%04d: %d", idx, inst.prim))
		}
	}
	return lines
}
