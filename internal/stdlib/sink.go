package stdlib

import (
	"fmt"

	"github.com/relaypipe/remap/internal/fn"
	"github.com/relaypipe/remap/internal/host"
	"github.com/relaypipe/remap/internal/kind"
	"github.com/relaypipe/remap/internal/sink"
	"github.com/relaypipe/remap/internal/value"
)

// WithSink registers emit_websocket against an already-dialed outbound
// connection.
func WithSink(ws *sink.WebSocket) Option {
	return func(r *Registry) {
		r.functions = append(r.functions, emitWebsocketFunc{ws: ws})
	}
}

// emitWebsocketFunc pushes an Object as a side effect and returns that
// Object unchanged, so the call's value is the event it was given.
type emitWebsocketFunc struct {
	ws *sink.WebSocket
}

func (emitWebsocketFunc) Identifier() string { return "emit_websocket" }
func (emitWebsocketFunc) Parameters() []fn.Parameter {
	return []fn.Parameter{{Name: "event", Accepts: kind.Any}}
}
func (emitWebsocketFunc) CheckArguments(args *fn.ArgumentList) error {
	v, ok := args.Get(0)
	if !ok {
		return fmt.Errorf("event is required")
	}
	if _, ok := v.(value.Object); !ok {
		return fmt.Errorf("event must be an object")
	}
	return nil
}
func (f emitWebsocketFunc) Call(_ *host.Context, args *fn.ArgumentList) (value.Value, error) {
	if f.ws == nil {
		return nil, fmt.Errorf("emit_websocket: no sink connection configured")
	}
	v, _ := args.Get(0)
	obj := v.(value.Object)
	if err := f.ws.Emit(obj); err != nil {
		return nil, err
	}
	return obj, nil
}
