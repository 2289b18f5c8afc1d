// Package pathspec describes paths into the event target, the
// internal variable store, and stack values, plus the Variable
// descriptor that says which of those a bytecode target refers to.
package pathspec

import "fmt"

// SegmentKind tags a Path Segment.
type SegmentKind int

const (
	SegField SegmentKind = iota
	SegCoalesce
	SegIndex
)

// Segment is one step of a Path: a field name, a coalesce group (first
// matching field of several wins), or an array index.
type Segment struct {
	Kind     SegmentKind
	Field    string   // SegField
	Fields   []string // SegCoalesce
	Index    int      // SegIndex, may be negative (rejected by the kind finder)
}

func Field(name string) Segment           { return Segment{Kind: SegField, Field: name} }
func Coalesce(fields ...string) Segment   { return Segment{Kind: SegCoalesce, Fields: fields} }
func Index(i int) Segment                 { return Segment{Kind: SegIndex, Index: i} }

// Path is an ordered sequence of segments. A nil or empty Path denotes
// the root.
type Path []Segment

func (p Path) IsRoot() bool { return len(p) == 0 }

func (p Path) String() string {
	s := ""
	for _, seg := range p {
		switch seg.Kind {
		case SegField:
			s += "." + seg.Field
		case SegCoalesce:
			s += fmt.Sprintf(".(%v)", seg.Fields)
		case SegIndex:
			s += fmt.Sprintf("[%d]", seg.Index)
		}
	}
	return s
}

// Equal reports structural equality, used by the bytecode container's
// target-table dedup (get_or_add_target) and by Variable.Equal.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i, seg := range p {
		o := other[i]
		if seg.Kind != o.Kind || seg.Field != o.Field || seg.Index != o.Index {
			return false
		}
		if len(seg.Fields) != len(o.Fields) {
			return false
		}
		for j, f := range seg.Fields {
			if f != o.Fields[j] {
				return false
			}
		}
	}
	return true
}
