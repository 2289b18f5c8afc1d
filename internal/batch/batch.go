// Package batch adapts the teacher's internal/concurrency worker-pool
// idiom to the one concurrency shape the interpreter actually needs:
// running a single read-only Container against many independent
// events, each with its own host.Context and VM State (spec.md §5).
// Where the teacher hand-rolled worker goroutines, job channels and
// wait groups, this runs on golang.org/x/sync/errgroup, which the
// pack already uses for bounded fan-out.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/relaypipe/remap/internal/bytecode"
	"github.com/relaypipe/remap/internal/host"
	"github.com/relaypipe/remap/internal/pathspec"
	"github.com/relaypipe/remap/internal/value"
	"github.com/relaypipe/remap/internal/vm"
)

// Result pairs one event's outcome with its original index, so callers
// can line results back up with their inputs after concurrent
// execution reorders completion.
type Result struct {
	Index int
	Value value.Value
	// Event is the target's root after the program ran, reflecting any
	// path mutations the program made to the event itself.
	Event value.Value
	Err   error
}

// Run executes container once per event in events, bounded to
// concurrency simultaneous VM states sharing the single Container.
// A stdlib-side host.Target is built per event via newTarget; the
// variable store is always fresh per invocation since spec.md's
// Internal variables do not persist across events.
func Run(ctx context.Context, container *bytecode.Container, events []value.Object, concurrency int, newTarget func(value.Object) host.Target) []Result {
	results := make([]Result, len(events))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, event := range events {
		i, event := i, event
		g.Go(func() error {
			select {
			case <-gctx.Done():
				results[i] = Result{Index: i, Err: gctx.Err()}
				return nil
			default:
			}

			target := newTarget(event)
			hostCtx := host.NewContext(target, host.NewMapVariableStore())
			out, err := vm.Run(container, hostCtx)
			root, _, _ := target.Get(pathspec.Path{})
			results[i] = Result{Index: i, Value: out, Event: root, Err: err}
			return nil
		})
	}

	// Every goroutine above always returns nil — per-event failures are
	// recorded in results, not propagated — so the group itself never
	// errors; Wait only blocks until the bounded fan-out drains.
	_ = g.Wait()
	return results
}
