package pathspec

import "github.com/relaypipe/remap/internal/value"

// GetByPath traverses v following path, returning the reached value
// and whether the path resolved. A missing field, a missing index, or
// an attempt to descend into a non-collection all report ok=false —
// callers substitute Null per spec.md §4.6.
func GetByPath(v value.Value, path Path) (value.Value, bool) {
	cur := v
	for _, seg := range path {
		switch seg.Kind {
		case SegField:
			obj, ok := cur.(value.Object)
			if !ok {
				return nil, false
			}
			cur, ok = obj[seg.Field]
			if !ok {
				return nil, false
			}
		case SegCoalesce:
			obj, ok := cur.(value.Object)
			if !ok {
				return nil, false
			}
			var found value.Value
			hit := false
			for _, f := range seg.Fields {
				if val, ok := obj[f]; ok {
					found, hit = val, true
					break
				}
			}
			if !hit {
				return nil, false
			}
			cur = found
		case SegIndex:
			arr, ok := cur.([]value.Value)
			if !ok {
				return nil, false
			}
			idx := seg.Index
			if idx < 0 || idx >= len(arr) {
				return nil, false
			}
			cur = arr[idx]
		}
	}
	return cur, true
}

// InsertByPath returns a new root value equal to root but with the value
// at path replaced by leaf, creating intermediate objects/arrays as
// needed — scaffolding a fresh structure from path when root is absent
// (nil), matching spec.md §4.6's Internal(id, sub) "create a fresh
// value scaffolded from sub" behaviour.
func InsertByPath(root value.Value, path Path, leaf value.Value) value.Value {
	if len(path) == 0 {
		return leaf
	}
	seg := path[0]
	rest := path[1:]

	switch seg.Kind {
	case SegField, SegCoalesce:
		field := seg.Field
		if seg.Kind == SegCoalesce {
			if len(seg.Fields) == 0 {
				return root
			}
			field = seg.Fields[0]
		}
		obj, ok := root.(value.Object)
		if !ok {
			obj = value.Object{}
		} else {
			cloned := make(value.Object, len(obj))
			for k, v := range obj {
				cloned[k] = v
			}
			obj = cloned
		}
		obj[field] = InsertByPath(obj[field], rest, leaf)
		return obj
	case SegIndex:
		arr, ok := root.([]value.Value)
		if !ok {
			arr = nil
		}
		idx := seg.Index
		if idx < 0 {
			return root
		}
		out := make([]value.Value, len(arr))
		copy(out, arr)
		for len(out) <= idx {
			out = append(out, nil)
		}
		out[idx] = InsertByPath(out[idx], rest, leaf)
		return out
	}
	return root
}
