package stdlib

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/relaypipe/remap/internal/fn"
	"github.com/relaypipe/remap/internal/host"
	"github.com/relaypipe/remap/internal/kind"
	"github.com/relaypipe/remap/internal/value"
)

// formatBytesFunc renders an Integer byte count as a human-readable
// size ("format_bytes(1536)" -> "1.5 kB"), used for log-friendly
// payload-size fields.
type formatBytesFunc struct{}

func (formatBytesFunc) Identifier() string { return "format_bytes" }
func (formatBytesFunc) Parameters() []fn.Parameter {
	return []fn.Parameter{{Name: "value", Accepts: kind.Integer}}
}
func (formatBytesFunc) CheckArguments(args *fn.ArgumentList) error {
	v, ok := args.Get(0)
	if !ok {
		return fmt.Errorf("value is required")
	}
	if _, ok := v.(int64); !ok {
		return fmt.Errorf("value must be an integer")
	}
	return nil
}
func (formatBytesFunc) Call(_ *host.Context, args *fn.ArgumentList) (value.Value, error) {
	v, _ := args.Get(0)
	return []byte(humanize.Bytes(uint64(v.(int64)))), nil
}
