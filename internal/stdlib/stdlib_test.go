package stdlib

import (
	"testing"

	"github.com/relaypipe/remap/internal/fn"
	"github.com/relaypipe/remap/internal/host"
)

func argList(params []fn.Parameter, values ...interface{}) *fn.ArgumentList {
	args := make([]fn.Arg, len(values))
	for i, v := range values {
		args[i] = fn.Arg{Value: v}
	}
	return &fn.ArgumentList{Params: params, Args: args}
}

func TestUpcaseFunc(t *testing.T) {
	f := upcaseFunc{}
	out, err := f.Call(nil, argList(f.Parameters(), []byte("hi")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out.([]byte)) != "HI" {
		t.Fatalf("got %q", out)
	}
}

func TestContainsFunc(t *testing.T) {
	f := containsFunc{}
	out, err := f.Call(nil, argList(f.Parameters(), []byte("hello world"), []byte("world")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != true {
		t.Fatalf("got %v, want true", out)
	}
}

func TestCompressDecompressGzipRoundTrips(t *testing.T) {
	c := compressGzipFunc{}
	compressed, err := c.Call(nil, argList(c.Parameters(), []byte("hello")))
	if err != nil {
		t.Fatalf("compress error: %v", err)
	}
	d := decompressGzipFunc{}
	out, err := d.Call(nil, argList(d.Parameters(), compressed))
	if err != nil {
		t.Fatalf("decompress error: %v", err)
	}
	if string(out.([]byte)) != "hello" {
		t.Fatalf("got %q", out)
	}
}

func TestFormatBytesFunc(t *testing.T) {
	f := formatBytesFunc{}
	out, err := f.Call(nil, argList(f.Parameters(), int64(1536)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.([]byte)) == 0 {
		t.Fatalf("expected a non-empty formatted size")
	}
}

func TestGenUUIDProducesDistinctValues(t *testing.T) {
	f := genUUIDFunc{}
	ctx := host.NewContext(host.NewMapTarget(nil), host.NewMapVariableStore())
	a, _ := f.Call(ctx, argList(nil))
	b, _ := f.Call(ctx, argList(nil))
	if string(a.([]byte)) == string(b.([]byte)) {
		t.Fatalf("expected distinct uuids")
	}
}

func TestEnrichLookupWithoutManagerErrors(t *testing.T) {
	f := enrichLookupFunc{}
	if _, err := f.Call(nil, argList(f.Parameters(), []byte("conn"), []byte("select 1"))); err == nil {
		t.Fatalf("expected an error when no manager is configured")
	}
}

func TestNewRegistryIncludesBaseFunctions(t *testing.T) {
	r := NewRegistry()
	if len(r.Functions()) == 0 {
		t.Fatalf("expected a non-empty default registry")
	}
}
