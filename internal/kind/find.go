package kind

import (
	"errors"

	"github.com/relaypipe/remap/internal/pathspec"
)

// ErrNegativeIndex is returned when a path segment requests a
// negative array index, which this core does not support.
var ErrNegativeIndex = errors.New("kind: negative index path segment is not supported")

// innerKind distinguishes a field/index lookup that landed on a single
// enumerated member (Exact) from one that fell through to an unknown
// descriptor which itself needs further widening (Infinite) — mirrors
// the original's private InnerKind enum in find_at_path.
type innerKind struct {
	exact     *T
	infinite  *T
}

func getFieldFromObject(t T, field string) (innerKind, bool) {
	if t.Object == nil {
		return innerKind{}, false
	}
	if k, ok := t.Object.Known[field]; ok {
		return innerKind{exact: &k}, true
	}
	if t.Object.Unknown != nil {
		if k, ok := t.Object.Unknown.AsExact(); ok {
			return innerKind{exact: &k}, true
		}
		k := t.Object.Unknown.ToKind()
		return innerKind{infinite: &k}, true
	}
	return innerKind{}, false
}

func getElementFromArray(t T, index int) (innerKind, bool) {
	if t.Array == nil {
		return innerKind{}, false
	}
	if k, ok := t.Array.Known[indexKey(index)]; ok {
		return innerKind{exact: &k}, true
	}
	if t.Array.Unknown != nil {
		if k, ok := t.Array.Unknown.AsExact(); ok {
			return innerKind{exact: &k}, true
		}
		k := t.Array.Unknown.ToKind()
		return innerKind{infinite: &k}, true
	}
	return innerKind{}, false
}

func indexKey(i int) string {
	// Array Collections key their Known map by the stringified,
	// non-negative index — see Collection.Known's doc comment.
	digits := [20]byte{}
	n := len(digits)
	if i == 0 {
		return "0"
	}
	for i > 0 {
		n--
		digits[n] = byte('0' + i%10)
		i /= 10
	}
	return string(digits[n:])
}

// FindAtPath returns the Kind reachable at path within root, per
// spec.md §4.2:
//
//   - (Some(K'), nil) — the reachable Kind, possibly null-widened.
//   - (nil-ish zero T with found=false, nil) — path is provably
//     unreachable.
//   - (_, ErrNegativeIndex) — a segment requested a negative index.
func FindAtPath(root T, path pathspec.Path) (result T, found bool, err error) {
	if path.IsRoot() {
		return root, true, nil
	}

	orNull := false
	cur := root

	for _, seg := range path {
		if !cur.Exact() {
			orNull = true
		}

		switch seg.Kind {
		case pathspec.SegField:
			ik, ok := getFieldFromObject(cur, seg.Field)
			if !ok {
				return T{}, false, nil
			}
			if ik.infinite != nil {
				k := *ik.infinite
				if orNull {
					k = k.OrNull()
				}
				return k, true, nil
			}
			cur = *ik.exact

		case pathspec.SegCoalesce:
			if cur.Object == nil {
				return T{}, false, nil
			}
			var winner string
			matched := false
			for _, f := range seg.Fields {
				if _, ok := cur.Object.Known[f]; ok {
					winner, matched = f, true
					break
				}
			}
			if !matched {
				return T{}, false, nil
			}
			ik, ok := getFieldFromObject(cur, winner)
			if !ok {
				return T{}, false, nil
			}
			if ik.infinite != nil {
				k := *ik.infinite
				if orNull {
					k = k.OrNull()
				}
				return k, true, nil
			}
			cur = *ik.exact

		case pathspec.SegIndex:
			if seg.Index < 0 {
				return T{}, false, ErrNegativeIndex
			}
			ik, ok := getElementFromArray(cur, seg.Index)
			if !ok {
				return T{}, false, nil
			}
			if ik.infinite != nil {
				k := *ik.infinite
				if orNull {
					k = k.OrNull()
				}
				return k, true, nil
			}
			cur = *ik.exact
		}
	}

	if orNull {
		return cur.OrNull(), true, nil
	}
	return cur, true, nil
}
