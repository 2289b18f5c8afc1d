package main

import (
	"fmt"

	"github.com/relaypipe/remap/internal/config"
	"github.com/relaypipe/remap/internal/enrich"
	"github.com/relaypipe/remap/internal/fn"
	"github.com/relaypipe/remap/internal/sink"
	"github.com/relaypipe/remap/internal/stdlib"
)

// buildFunctions wires the stdlib registry up according to cfg: opens
// every configured enrich connection and dials the sink URL if set,
// so enrich_lookup/emit_websocket are ready before the program runs.
func buildFunctions(cfg *config.Config) ([]fn.Function, func(), error) {
	var opts []stdlib.Option
	var closers []func()

	if len(cfg.Enrich) > 0 {
		mgr := enrich.NewManager()
		for _, c := range cfg.Enrich {
			if err := mgr.Connect(c.Name, c.Type, c.DSN); err != nil {
				return nil, nil, fmt.Errorf("enrich connection %q: %w", c.Name, err)
			}
		}
		opts = append(opts, stdlib.WithEnrich(mgr))
	}

	if cfg.SinkURL != "" {
		ws, err := sink.Dial(cfg.SinkURL)
		if err != nil {
			return nil, nil, fmt.Errorf("sink: %w", err)
		}
		opts = append(opts, stdlib.WithSink(ws))
		closers = append(closers, func() { ws.Close() })
	}

	registry := stdlib.NewRegistry(opts...)
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	return registry.Functions(), closeAll, nil
}
