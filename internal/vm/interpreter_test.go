package vm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaypipe/remap/internal/bytecode"
	"github.com/relaypipe/remap/internal/diag"
	"github.com/relaypipe/remap/internal/fn"
	"github.com/relaypipe/remap/internal/host"
	"github.com/relaypipe/remap/internal/kind"
	"github.com/relaypipe/remap/internal/pathspec"
	"github.com/relaypipe/remap/internal/value"
)

func newTestContext() *host.Context {
	return host.NewContext(host.NewMapTarget(nil), host.NewMapVariableStore())
}

func TestRunAddsTwoConstants(t *testing.T) {
	c := bytecode.New(nil)
	a := c.AddConstant(int64(1))
	b := c.AddConstant(int64(2))

	c.WriteOpcode(bytecode.Constant)
	c.WritePrimitive(a)
	c.WriteOpcode(bytecode.Constant)
	c.WritePrimitive(b)
	c.WriteOpcode(bytecode.Add)
	c.WriteOpcode(bytecode.Return)

	result, err := Run(c, newTestContext())
	require.NoError(t, err)
	assert.Equal(t, int64(3), result)
}

func TestRunShortCircuitsFalseViaJumpIfFalse(t *testing.T) {
	c := bytecode.New(nil)
	falseConst := c.AddConstant(false)
	trueConst := c.AddConstant(true)

	c.WriteOpcode(bytecode.Constant)
	c.WritePrimitive(falseConst)

	patch := c.EmitJump(bytecode.JumpIfFalse)
	c.WriteOpcode(bytecode.Pop)
	c.WriteOpcode(bytecode.Constant)
	c.WritePrimitive(trueConst)
	c.PatchJump(patch)
	c.WriteOpcode(bytecode.Return)

	result, err := Run(c, newTestContext())
	require.NoError(t, err)
	assert.Equal(t, false, result, "expected short-circuited false")
}

func TestRunDivisionByZeroRecoversViaSetPathInfallible(t *testing.T) {
	c := bytecode.New(nil)
	one := c.AddConstant(int64(1))
	zero := c.AddConstant(int64(0))
	fallback := c.AddConstant(int64(-1))

	okTarget := c.GetOrAddTarget(pathspec.Internal("result", nil))
	errTarget := c.GetOrAddTarget(pathspec.Internal("err", nil))

	c.WriteOpcode(bytecode.Constant)
	c.WritePrimitive(one)
	c.WriteOpcode(bytecode.Constant)
	c.WritePrimitive(zero)
	c.WriteOpcode(bytecode.Divide)
	c.WriteOpcode(bytecode.SetPathInfallible)
	c.WritePrimitive(okTarget)
	c.WritePrimitive(errTarget)
	c.WritePrimitive(fallback)
	c.WriteOpcode(bytecode.Return)

	ctx := newTestContext()
	_, err := Run(c, ctx)
	require.NoError(t, err)

	got, ok := ctx.State().Variable("result")
	require.True(t, ok)
	assert.Equal(t, int64(-1), got, "expected fallback stored in result")

	errVal, ok := ctx.State().Variable("err")
	require.True(t, ok, "expected error message stored in err variable")
	assert.IsType(t, []byte(nil), errVal)
}

func TestRunCreateObjectEarliestWriteWins(t *testing.T) {
	c := bytecode.New(nil)
	key := c.AddConstant([]byte("a"))
	v1 := c.AddConstant(int64(1))
	v2 := c.AddConstant(int64(2))

	c.WriteOpcode(bytecode.Constant)
	c.WritePrimitive(key)
	c.WriteOpcode(bytecode.Constant)
	c.WritePrimitive(v1)
	c.WriteOpcode(bytecode.Constant)
	c.WritePrimitive(key)
	c.WriteOpcode(bytecode.Constant)
	c.WritePrimitive(v2)
	c.WriteOpcode(bytecode.CreateObject)
	c.WritePrimitive(2)
	c.WriteOpcode(bytecode.Return)

	result, err := Run(c, newTestContext())
	require.NoError(t, err)
	obj, ok := result.(value.Object)
	require.True(t, ok, "expected Object result, got %T", result)
	assert.Equal(t, int64(1), obj["a"], "expected earliest source pair to win")
}

func TestRunReturnsNilOnEmptyStack(t *testing.T) {
	c := bytecode.New(nil)
	c.WriteOpcode(bytecode.Return)

	result, err := Run(c, newTestContext())
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestRunAbortReturnsFatalError(t *testing.T) {
	c := bytecode.New(nil)
	c.WriteOpcode(bytecode.Abort)
	c.WritePrimitive(3)
	c.WritePrimitive(9)

	_, err := Run(c, newTestContext())
	require.Error(t, err)
	de, ok := err.(*diag.Error)
	require.True(t, ok, "expected a *diag.Error, got %T", err)
	assert.Equal(t, diag.KindAbort, de.Kind)
}

func TestRunSetPathThenGetPathRoundTrips(t *testing.T) {
	c := bytecode.New(nil)
	constIdx := c.AddConstant(int64(7))
	target := c.GetOrAddTarget(pathspec.External(pathspec.Path{pathspec.Field("count")}))

	c.WriteOpcode(bytecode.Constant)
	c.WritePrimitive(constIdx)
	c.WriteOpcode(bytecode.SetPath)
	c.WritePrimitive(target)
	c.WriteOpcode(bytecode.GetPath)
	c.WritePrimitive(target)
	c.WriteOpcode(bytecode.Return)

	result, err := Run(c, newTestContext())
	require.NoError(t, err)
	assert.Equal(t, int64(7), result)
}

// upperFunc is a minimal host-registered Function used to exercise the
// Call opcode's argument marshalling and error-register latching.
type upperFunc struct{}

func (upperFunc) Identifier() string { return "upper" }
func (upperFunc) Parameters() []fn.Parameter {
	return []fn.Parameter{{Name: "value", Accepts: kind.Bytes}}
}
func (upperFunc) CheckArguments(args *fn.ArgumentList) error {
	v, ok := args.Get(0)
	if !ok {
		return fmt.Errorf("value is required")
	}
	if _, ok := v.([]byte); !ok {
		return fmt.Errorf("value must be a string")
	}
	return nil
}
func (upperFunc) Call(ctx *host.Context, args *fn.ArgumentList) (value.Value, error) {
	v, _ := args.Get(0)
	b := v.([]byte)
	out := make([]byte, len(b))
	for i, ch := range b {
		if ch >= 'a' && ch <= 'z' {
			ch -= 'a' - 'A'
		}
		out[i] = ch
	}
	return out, nil
}

func TestRunCallInvokesHostFunction(t *testing.T) {
	c := bytecode.New([]fn.Function{upperFunc{}})
	arg := c.AddConstant([]byte("hi"))

	c.WriteOpcode(bytecode.Constant)
	c.WritePrimitive(arg)
	c.WriteOpcode(bytecode.MoveParameter)
	c.WriteOpcode(bytecode.Call)
	c.WritePrimitive(0)
	c.WritePrimitive(0)
	c.WritePrimitive(2)
	c.WriteOpcode(bytecode.Return)

	result, err := Run(c, newTestContext())
	require.NoError(t, err)
	assert.Equal(t, "HI", string(result.([]byte)))
}

func TestRunCallWithMissingArgumentLatchesError(t *testing.T) {
	c := bytecode.New([]fn.Function{upperFunc{}})

	c.WriteOpcode(bytecode.EmptyParameter)
	c.WriteOpcode(bytecode.Call)
	c.WritePrimitive(0)
	c.WritePrimitive(0)
	c.WritePrimitive(0)
	c.WriteOpcode(bytecode.Return)

	result, err := Run(c, newTestContext())
	require.NoError(t, err, "expected no fatal error")
	assert.Nil(t, result, "expected nil pushed on call error")
}

// abortingFunc is a misbehaving Function that raises fn.ErrAbort from
// Call, which only the abort statement is allowed to do.
type abortingFunc struct{}

func (abortingFunc) Identifier() string                    { return "bad_abort" }
func (abortingFunc) Parameters() []fn.Parameter             { return nil }
func (abortingFunc) CheckArguments(*fn.ArgumentList) error  { return nil }
func (abortingFunc) Call(*host.Context, *fn.ArgumentList) (value.Value, error) {
	return nil, fmt.Errorf("wrapping: %w", fn.ErrAbort)
}

func TestRunCallRaisingAbortPanics(t *testing.T) {
	c := bytecode.New([]fn.Function{abortingFunc{}})
	c.WriteOpcode(bytecode.Call)
	c.WritePrimitive(0)
	c.WritePrimitive(0)
	c.WritePrimitive(0)
	c.WriteOpcode(bytecode.Return)

	assert.Panics(t, func() {
		_, _ = Run(c, newTestContext())
	}, "expected a function raising ErrAbort to panic rather than latch a recoverable error")
}
