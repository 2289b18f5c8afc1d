// Package host defines the contract the interpreter consumes from its
// caller: access to the mutable event target and the per-invocation
// variable store (component G, spec.md §6).
package host

import (
	"github.com/relaypipe/remap/internal/pathspec"
	"github.com/relaypipe/remap/internal/value"
)

// Target is the external event structure a program reads and mutates
// via paths.
type Target interface {
	Get(path pathspec.Path) (value.Value, bool, error)
	Insert(path pathspec.Path, v value.Value) error
}

// VariableStore is the per-invocation mapping from identifier to
// Value, distinct from the Target.
type VariableStore interface {
	Variable(ident string) (value.Value, bool)
	InsertVariable(ident string, v value.Value)
}

// Context bundles the mutable target and the variable store the
// interpreter operates against for one invocation.
type Context struct {
	target Target
	state  VariableStore
}

// NewContext builds a Context from a caller-supplied target and
// variable store.
func NewContext(target Target, state VariableStore) *Context {
	return &Context{target: target, state: state}
}

func (c *Context) Target() Target           { return c.target }
func (c *Context) State() VariableStore     { return c.state }
