// Package stdlib is the concrete set of host-registered Function
// implementations (spec.md §6 "Function contract") a remap program can
// invoke via the Call opcode — the "small, concrete registry" the
// domain stack wires real dependencies into, adapted from the
// teacher's internal/vmregister/stdlib.go builtin-registration idiom.
package stdlib

import (
	"github.com/relaypipe/remap/internal/fn"
)

// Registry returns the default set of Functions available to a
// compiled program, bound to the given enrich/sink collaborators.
type Registry struct {
	functions []fn.Function
}

// NewRegistry builds the default stdlib function set plus whatever opts
// add. enrich_lookup and emit_websocket are registered only through
// WithEnrich/WithSink; if either is given a nil collaborator, its Call
// returns an error instead of silently doing nothing.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{}
	r.functions = []fn.Function{
		compressGzipFunc{},
		decompressGzipFunc{},
		compressFlateFunc{},
		decompressFlateFunc{},
		formatBytesFunc{},
		genUUIDFunc{},
		matchRegexFunc{},
		upcaseFunc{},
		downcaseFunc{},
		containsFunc{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Option configures optional, collaborator-backed functions onto a
// Registry.
type Option func(*Registry)

// Functions returns the function table in the order a bytecode.New
// container expects (Call opcodes reference functions by position in
// this slice).
func (r *Registry) Functions() []fn.Function { return r.functions }
