package batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaypipe/remap/internal/bytecode"
	"github.com/relaypipe/remap/internal/host"
	"github.com/relaypipe/remap/internal/pathspec"
	"github.com/relaypipe/remap/internal/value"
)

// newMapTarget adapts host.NewMapTarget to the func(value.Object)
// host.Target shape Run expects.
func newMapTarget(root value.Object) host.Target {
	return host.NewMapTarget(root)
}

func TestRunExecutesContainerOncePerEvent(t *testing.T) {
	c := bytecode.New(nil)
	one := c.AddConstant(int64(1))
	target := c.GetOrAddTarget(pathspec.External(pathspec.Path{pathspec.Field("count")}))

	c.WriteOpcode(bytecode.Constant)
	c.WritePrimitive(one)
	c.WriteOpcode(bytecode.GetPath)
	c.WritePrimitive(target)
	c.WriteOpcode(bytecode.Add)
	c.WriteOpcode(bytecode.SetPath)
	c.WritePrimitive(target)
	c.WriteOpcode(bytecode.Return)

	events := []value.Object{
		{"count": int64(10)},
		{"count": int64(20)},
		{"count": int64(30)},
	}

	results := Run(context.Background(), c, events, 2, newMapTarget)
	require.Len(t, results, len(events))

	for i, want := range []int64{11, 21, 31} {
		r := results[i]
		assert.NoError(t, r.Err)
		assert.Equal(t, i, r.Index)
		assert.Equal(t, want, r.Value)

		obj, ok := r.Event.(value.Object)
		require.True(t, ok, "expected Event to be the mutated Object")
		assert.Equal(t, want, obj["count"], "expected SetPath mutation reflected in Event")
	}
}

func TestRunIsolatesVariableStorePerEvent(t *testing.T) {
	c := bytecode.New(nil)
	idx := c.AddConstant(int64(42))
	varTarget := c.GetOrAddTarget(pathspec.Internal("seen", nil))

	c.WriteOpcode(bytecode.Constant)
	c.WritePrimitive(idx)
	c.WriteOpcode(bytecode.SetPath)
	c.WritePrimitive(varTarget)
	c.WriteOpcode(bytecode.Return)

	events := make([]value.Object, 5)
	for i := range events {
		events[i] = value.Object{}
	}

	results := Run(context.Background(), c, events, 3, newMapTarget)
	require.Len(t, results, len(events))
	for _, r := range results {
		assert.NoError(t, r.Err)
		assert.Equal(t, int64(42), r.Value)
	}
}

func TestRunRespectsCanceledContext(t *testing.T) {
	c := bytecode.New(nil)
	c.WriteOpcode(bytecode.Return)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := []value.Object{{}, {}}
	results := Run(ctx, c, events, 1, newMapTarget)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}
