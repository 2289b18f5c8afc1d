package pathspec

// VariableKind tags which of the four Variable forms a bytecode
// target names.
type VariableKind int

const (
	VarExternal VariableKind = iota
	VarInternal
	VarStack
	VarNone
)

// Variable identifies what a GetPath/SetPath/SetPathInfallible
// instruction reads or writes:
//
//   - External(Path): a path into the event target.
//   - Internal(Ident, SubPath): a named local, optionally with a
//     sub-path into its stored value.
//   - Stack(SubPath): pop the operand stack's top value, then descend
//     SubPath within it.
//   - None: a sink; reads push Null, writes are ignored.
type Variable struct {
	Kind    VariableKind
	Path    Path   // VarExternal
	Ident   string // VarInternal
	SubPath Path   // VarInternal (optional), VarStack
}

func External(path Path) Variable { return Variable{Kind: VarExternal, Path: path} }

func Internal(ident string, sub Path) Variable {
	return Variable{Kind: VarInternal, Ident: ident, SubPath: sub}
}

func Stack(sub Path) Variable { return Variable{Kind: VarStack, SubPath: sub} }

func None() Variable { return Variable{Kind: VarNone} }

// Equal is the structural-equality test the bytecode container's
// target table dedups against (spec.md §4.3 get_or_add_target).
func (v Variable) Equal(other Variable) bool {
	if v.Kind != other.Kind || v.Ident != other.Ident {
		return false
	}
	return v.Path.Equal(other.Path) && v.SubPath.Equal(other.SubPath)
}
