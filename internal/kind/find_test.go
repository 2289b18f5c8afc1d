package kind

import (
	"testing"

	"github.com/relaypipe/remap/internal/pathspec"
)

func TestFindAtPathPrimitive(t *testing.T) {
	_, found, err := FindAtPath(BytesT(), pathspec.Path{pathspec.Field("foo")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("expected path into a primitive to be unreachable")
	}
}

func TestFindAtPathMultiplePrimitives(t *testing.T) {
	k := Or(IntegerT(), RegexT())
	_, found, err := FindAtPath(k, pathspec.Path{pathspec.Field("foo")})
	if err != nil || found {
		t.Fatalf("expected unreachable, got found=%v err=%v", found, err)
	}
}

func TestFindAtPathObjectMatchingField(t *testing.T) {
	obj := NewCollection(map[string]T{"foo": IntegerT()})
	k := ObjectT(obj)
	got, found, err := FindAtPath(k, pathspec.Path{pathspec.Field("foo")})
	if err != nil || !found {
		t.Fatalf("expected found, err=%v found=%v", err, found)
	}
	if got.Bits() != Integer {
		t.Fatalf("got %v, want Integer", got.Bits())
	}
}

func TestFindAtPathObjectUnknownFallback(t *testing.T) {
	obj := NewCollection(map[string]T{"foo": IntegerT()})
	obj.SetUnknown(BooleanT())
	k := ObjectT(obj)
	got, found, err := FindAtPath(k, pathspec.Path{pathspec.Field("bar")})
	if err != nil || !found {
		t.Fatalf("expected found, err=%v found=%v", err, found)
	}
	if got.Bits() != Boolean {
		t.Fatalf("got %v, want Boolean", got.Bits())
	}
}

func TestFindAtPathObjectNoUnknownNoMatch(t *testing.T) {
	obj := NewCollection(map[string]T{"foo": IntegerT()})
	k := ObjectT(obj)
	_, found, err := FindAtPath(k, pathspec.Path{pathspec.Field("bar")})
	if err != nil || found {
		t.Fatalf("expected unreachable, found=%v err=%v", found, err)
	}
}

func TestFindAtPathArrayMatchingIndex(t *testing.T) {
	arr := NewCollection(map[string]T{"1": IntegerT()})
	k := ArrayT(arr)
	got, found, err := FindAtPath(k, pathspec.Path{pathspec.Index(1)})
	if err != nil || !found || got.Bits() != Integer {
		t.Fatalf("got=%v found=%v err=%v", got.Bits(), found, err)
	}
}

func TestFindAtPathArrayUnknownFallback(t *testing.T) {
	arr := NewCollection(map[string]T{"1": IntegerT()})
	arr.SetUnknown(BytesT())
	k := ArrayT(arr)
	got, found, err := FindAtPath(k, pathspec.Path{pathspec.Index(2)})
	if err != nil || !found || got.Bits() != Bytes {
		t.Fatalf("got=%v found=%v err=%v", got.Bits(), found, err)
	}
}

func TestFindAtPathNegativeIndex(t *testing.T) {
	arr := NewCollection(map[string]T{"1": IntegerT()})
	k := ArrayT(arr)
	_, _, err := FindAtPath(k, pathspec.Path{pathspec.Index(-1)})
	if err != ErrNegativeIndex {
		t.Fatalf("expected ErrNegativeIndex, got %v", err)
	}
}

func TestFindAtPathComplexPathing(t *testing.T) {
	baz := Or(IntegerT(), RegexT())
	bar := ObjectT(NewCollection(map[string]T{"baz": baz}))
	inner := NewCollection(map[string]T{
		"bar": bar,
		"qux": BooleanT(),
	})
	fooArr := NewCollection(map[string]T{
		"1": IntegerT(),
		"2": ObjectT(inner),
	})
	root := ObjectT(NewCollection(map[string]T{"foo": ArrayT(fooArr)}))

	got, found, err := FindAtPath(root, pathspec.Path{
		pathspec.Field("foo"), pathspec.Index(2), pathspec.Field("bar"),
	})
	if err != nil || !found {
		t.Fatalf("err=%v found=%v", err, found)
	}
	if got.Object == nil {
		t.Fatalf("expected object kind, got %v", got.Bits())
	}
	if gotBaz, ok := got.Object.Known["baz"]; !ok || gotBaz.Bits() != baz.Bits() {
		t.Fatalf("expected nested baz kind to survive, got %v ok=%v", gotBaz.Bits(), ok)
	}
}

func TestFindAtPathOrNullForNestedNullable(t *testing.T) {
	obj := ObjectT(NewCollection(map[string]T{"foo": IntegerT()})).OrNull()
	got, found, err := FindAtPath(obj, pathspec.Path{pathspec.Field("foo")})
	if err != nil || !found {
		t.Fatalf("err=%v found=%v", err, found)
	}
	if got.Bits() != Integer|Null {
		t.Fatalf("expected integer-or-null, got %v", got.Bits())
	}
}

func TestFindAtPathCoalesceConsultsOnlyKnownKeys(t *testing.T) {
	obj := NewCollection(map[string]T{"b": IntegerT()})
	obj.SetUnknown(BooleanT())
	k := ObjectT(obj)
	_, found, err := FindAtPath(k, pathspec.Path{pathspec.Coalesce("a", "z")})
	if err != nil || found {
		t.Fatalf("expected coalesce to ignore the unknown descriptor fallback; found=%v err=%v", found, err)
	}
}

func TestFindAtPathIdempotentAtRoot(t *testing.T) {
	k := ObjectT(NewCollection(map[string]T{"foo": IntegerT()}))
	got, found, err := FindAtPath(k, pathspec.Path{})
	if err != nil || !found || got.Bits() != k.Bits() {
		t.Fatalf("expected find at root to return self, got=%v found=%v err=%v", got.Bits(), found, err)
	}
}

func TestFindAtPathNegativeIndexIffSomewhereNegative(t *testing.T) {
	innerArr := NewCollection(map[string]T{"0": IntegerT()})
	root := ObjectT(NewCollection(map[string]T{"x": ArrayT(innerArr)}))
	paths := []pathspec.Path{
		{pathspec.Field("x"), pathspec.Index(0)},
		{pathspec.Index(-3)},
		{pathspec.Field("x"), pathspec.Index(-1)},
	}
	for i, p := range paths {
		_, _, err := FindAtPath(root, p)
		wantErr := i != 0
		if (err == ErrNegativeIndex) != wantErr {
			t.Fatalf("path %d: err=%v, wantErr=%v", i, err, wantErr)
		}
	}
}
