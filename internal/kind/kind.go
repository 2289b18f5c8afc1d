// Package kind implements the static type lattice the compiler probes
// ahead of execution: a set of possible runtime shapes, join-ordered
// under set union, with Object/Array carrying a nested Collection
// describing their known and unknown members.
package kind

// Kind is a bitset of possible runtime shapes, modeled as a join
// semilattice under set union — the same "powers of two as a flag
// set" idiom CUE's own Kind type uses for its value lattice.
type Kind uint16

const (
	Bytes Kind = 1 << iota
	Integer
	Float
	Boolean
	Null
	Regex
	Timestamp
	objectBit
	arrayBit

	none Kind = 0
)

// Number is the union of the two numeric shapes; exposed for callers
// that want "integer or float" without spelling out the join.
const Number = Integer | Float

// Any is the join of every primitive and collection shape.
var Any = Bytes | Integer | Float | Boolean | Null | Regex | Timestamp | objectBit | arrayBit

// Kind itself is a bare bitset with no per-bit payload; the Collection
// describing an object or array shape is carried inline by T below.

// T is the full static type description: a shape bitset plus, when the
// object or array bit is set, the Collection describing that shape's
// members.
type T struct {
	bits   Kind
	Object *Collection
	Array  *Collection
}

// Exact reports whether exactly one shape bit is set.
func (t T) Exact() bool {
	b := t.bits
	return b != 0 && b&(b-1) == 0
}

// Is reports whether shape bit b is part of t.
func (t T) Is(b Kind) bool { return t.bits&b != 0 }

// Bits returns the raw shape bitset.
func (t T) Bits() Kind { return t.bits }

// OrNull returns t widened to also allow Null.
func (t T) OrNull() T {
	out := t
	out.bits |= Null
	return out
}

func prim(b Kind) T { return T{bits: b} }

func NullT() T      { return prim(Null) }
func BytesT() T     { return prim(Bytes) }
func IntegerT() T   { return prim(Integer) }
func FloatT() T     { return prim(Float) }
func BooleanT() T   { return prim(Boolean) }
func RegexT() T     { return prim(Regex) }
func TimestampT() T { return prim(Timestamp) }
func NumberT() T    { return T{bits: Number} }
func AnyT() T       { return T{bits: Any} }

// ObjectT builds an exact object Kind from a Collection.
func ObjectT(c *Collection) T {
	return T{bits: objectBit, Object: c}
}

// ArrayT builds an exact array Kind from a Collection.
func ArrayT(c *Collection) T {
	return T{bits: arrayBit, Array: c}
}

// Or joins two Kinds: shape bits union, and Object/Array Collections
// are kept if only one side carries them (mixed-collection joins are
// rare enough in this core that the caller is expected to not rely on
// Collection survival across a join of two different collection
// shapes).
func Or(a, b T) T {
	out := T{bits: a.bits | b.bits}
	switch {
	case a.Object != nil:
		out.Object = a.Object
	case b.Object != nil:
		out.Object = b.Object
	}
	switch {
	case a.Array != nil:
		out.Array = a.Array
	case b.Array != nil:
		out.Array = b.Array
	}
	return out
}
