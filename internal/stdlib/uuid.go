package stdlib

import (
	"github.com/google/uuid"

	"github.com/relaypipe/remap/internal/fn"
	"github.com/relaypipe/remap/internal/host"
	"github.com/relaypipe/remap/internal/value"
)

// genUUIDFunc produces a v4 identifier, used to stamp a correlation id
// onto an event during transformation.
type genUUIDFunc struct{}

func (genUUIDFunc) Identifier() string              { return "gen_uuid" }
func (genUUIDFunc) Parameters() []fn.Parameter      { return nil }
func (genUUIDFunc) CheckArguments(*fn.ArgumentList) error { return nil }
func (genUUIDFunc) Call(_ *host.Context, _ *fn.ArgumentList) (value.Value, error) {
	return []byte(uuid.NewString()), nil
}
