package host

import (
	"github.com/relaypipe/remap/internal/pathspec"
	"github.com/relaypipe/remap/internal/value"
)

// MapTarget is an in-memory Target backed by a single root Object —
// the default event representation used by the CLI and by tests.
type MapTarget struct {
	Root value.Object
}

// NewMapTarget builds a MapTarget from an already-decoded event.
func NewMapTarget(root value.Object) *MapTarget {
	if root == nil {
		root = value.Object{}
	}
	return &MapTarget{Root: root}
}

func (t *MapTarget) Get(path pathspec.Path) (value.Value, bool, error) {
	v, ok := pathspec.GetByPath(t.Root, path)
	return v, ok, nil
}

func (t *MapTarget) Insert(path pathspec.Path, v value.Value) error {
	if path.IsRoot() {
		obj, ok := v.(value.Object)
		if !ok {
			return nil
		}
		t.Root = obj
		return nil
	}
	t.Root = pathspec.InsertByPath(t.Root, path, v).(value.Object)
	return nil
}

// MapVariableStore is an in-memory VariableStore keyed by identifier.
type MapVariableStore struct {
	vars map[string]value.Value
}

// NewMapVariableStore builds an empty variable store.
func NewMapVariableStore() *MapVariableStore {
	return &MapVariableStore{vars: map[string]value.Value{}}
}

func (s *MapVariableStore) Variable(ident string) (value.Value, bool) {
	v, ok := s.vars[ident]
	return v, ok
}

func (s *MapVariableStore) InsertVariable(ident string, v value.Value) {
	s.vars[ident] = v
}
