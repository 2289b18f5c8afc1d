package compile

import (
	"testing"

	"github.com/relaypipe/remap/internal/host"
	"github.com/relaypipe/remap/internal/pathspec"
	"github.com/relaypipe/remap/internal/value"
	"github.com/relaypipe/remap/internal/vm"
)

func runSource(t *testing.T, src string) (value.Value, *host.Context) {
	t.Helper()
	c, err := Compile(src, nil)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	ctx := host.NewContext(host.NewMapTarget(nil), host.NewMapVariableStore())
	result, err := vm.Run(c, ctx)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	return result, ctx
}

func TestCompileArithmetic(t *testing.T) {
	result, _ := runSource(t, "1 + 2 * 3")
	if result != int64(7) {
		t.Fatalf("got %v, want 7", result)
	}
}

func TestCompileLogicalShortCircuit(t *testing.T) {
	result, _ := runSource(t, "true && false")
	if result != false {
		t.Fatalf("got %v, want false", result)
	}
}

func TestCompileIfElse(t *testing.T) {
	result, _ := runSource(t, `if 1 < 2 { "yes" } else { "no" }`)
	b, ok := result.([]byte)
	if !ok || string(b) != "yes" {
		t.Fatalf("got %v, want yes", result)
	}
}

func TestCompileAssignToExternalPath(t *testing.T) {
	_, ctx := runSource(t, `.message = "hello"`)
	v, ok, err := ctx.Target().Get(pathspec.Path{pathspec.Field("message")})
	if err != nil || !ok {
		t.Fatalf("expected .message to be set, err=%v ok=%v", err, ok)
	}
	if string(v.([]byte)) != "hello" {
		t.Fatalf("got %v", v)
	}
}

func TestCompileObjectAndArrayLiterals(t *testing.T) {
	result, _ := runSource(t, `{"a": 1, "b": [1, 2, 3]}`)
	obj, ok := result.(value.Object)
	if !ok {
		t.Fatalf("expected object, got %T", result)
	}
	if obj["a"] != int64(1) {
		t.Fatalf("got %v", obj["a"])
	}
	arr, ok := obj["b"].([]value.Value)
	if !ok || len(arr) != 3 {
		t.Fatalf("got %v", obj["b"])
	}
}

func TestCompileInfallibleAssignRecoversFromDivByZero(t *testing.T) {
	_, ctx := runSource(t, `@result, @err = 1 / 0`)
	v, ok := ctx.State().Variable("result")
	if !ok || v != nil {
		t.Fatalf("expected null fallback, got %v", v)
	}
	errVal, ok := ctx.State().Variable("err")
	if !ok {
		t.Fatalf("expected err variable to be set")
	}
	if _, ok := errVal.([]byte); !ok {
		t.Fatalf("expected error message as bytes, got %T", errVal)
	}
}

func TestCompileAbort(t *testing.T) {
	c, err := Compile("abort", nil)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	ctx := host.NewContext(host.NewMapTarget(nil), host.NewMapVariableStore())
	_, err = vm.Run(c, ctx)
	if err == nil {
		t.Fatalf("expected abort to fail the run")
	}
}
