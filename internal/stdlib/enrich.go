package stdlib

import (
	"fmt"

	"github.com/relaypipe/remap/internal/enrich"
	"github.com/relaypipe/remap/internal/fn"
	"github.com/relaypipe/remap/internal/host"
	"github.com/relaypipe/remap/internal/kind"
	"github.com/relaypipe/remap/internal/value"
)

// WithEnrich registers enrich_lookup against the given connection
// manager.
func WithEnrich(mgr *enrich.Manager) Option {
	return func(r *Registry) {
		r.functions = append(r.functions, enrichLookupFunc{mgr: mgr})
	}
}

// enrichLookupFunc runs a single-row lookup and returns the row as an
// Object (an empty Object when no row matches); it does not touch the
// event itself. A program stores or merges the row, e.g.
// `.geo = enrich_lookup("geoip", "select * from ips where ip = $1", .client_ip)`.
type enrichLookupFunc struct {
	mgr *enrich.Manager
}

func (enrichLookupFunc) Identifier() string { return "enrich_lookup" }
func (enrichLookupFunc) Parameters() []fn.Parameter {
	return []fn.Parameter{
		{Name: "connection", Accepts: kind.Bytes},
		{Name: "query", Accepts: kind.Bytes},
		{Name: "key", Accepts: kind.Bytes, Optional: true},
	}
}
func (enrichLookupFunc) CheckArguments(args *fn.ArgumentList) error {
	conn, ok := args.Get(0)
	if !ok {
		return fmt.Errorf("connection is required")
	}
	if _, ok := conn.([]byte); !ok {
		return fmt.Errorf("connection must be a string")
	}
	query, ok := args.Get(1)
	if !ok {
		return fmt.Errorf("query is required")
	}
	if _, ok := query.([]byte); !ok {
		return fmt.Errorf("query must be a string")
	}
	return nil
}
func (f enrichLookupFunc) Call(_ *host.Context, args *fn.ArgumentList) (value.Value, error) {
	if f.mgr == nil {
		return nil, fmt.Errorf("enrich_lookup: no connection manager configured")
	}
	conn, _ := args.Get(0)
	query, _ := args.Get(1)

	var queryArgs []interface{}
	if key, ok := args.Get(2); ok {
		queryArgs = append(queryArgs, key)
	}

	row, found, err := f.mgr.Lookup(string(conn.([]byte)), string(query.([]byte)), queryArgs...)
	if err != nil {
		return nil, err
	}
	if !found {
		return value.Object{}, nil
	}
	return row, nil
}
