package stdlib

import (
	"fmt"
	"regexp"

	"github.com/relaypipe/remap/internal/fn"
	"github.com/relaypipe/remap/internal/host"
	"github.com/relaypipe/remap/internal/kind"
	"github.com/relaypipe/remap/internal/value"
)

// matchRegexFunc tests a Bytes value against a Regex value — the
// interpreter's Value.Regex variant is already a *regexp.Regexp
// (value.go), so this is a thin bridge rather than a parser of its
// own.
type matchRegexFunc struct{}

func (matchRegexFunc) Identifier() string { return "match_regex" }
func (matchRegexFunc) Parameters() []fn.Parameter {
	return []fn.Parameter{
		{Name: "value", Accepts: kind.Bytes},
		{Name: "pattern", Accepts: kind.Regex},
	}
}
func (matchRegexFunc) CheckArguments(args *fn.ArgumentList) error {
	v, ok := args.Get(0)
	if !ok {
		return fmt.Errorf("value is required")
	}
	if _, ok := v.([]byte); !ok {
		return fmt.Errorf("value must be a string")
	}
	p, ok := args.Get(1)
	if !ok {
		return fmt.Errorf("pattern is required")
	}
	if _, ok := p.(*regexp.Regexp); !ok {
		return fmt.Errorf("pattern must be a regex")
	}
	return nil
}
func (matchRegexFunc) Call(_ *host.Context, args *fn.ArgumentList) (value.Value, error) {
	v, _ := args.Get(0)
	p, _ := args.Get(1)
	return p.(*regexp.Regexp).Match(v.([]byte)), nil
}
