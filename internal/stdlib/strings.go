package stdlib

import (
	"bytes"
	"fmt"

	"github.com/relaypipe/remap/internal/fn"
	"github.com/relaypipe/remap/internal/host"
	"github.com/relaypipe/remap/internal/kind"
	"github.com/relaypipe/remap/internal/value"
)

type upcaseFunc struct{}

func (upcaseFunc) Identifier() string         { return "upcase" }
func (upcaseFunc) Parameters() []fn.Parameter { return bytesParam() }
func (upcaseFunc) CheckArguments(args *fn.ArgumentList) error {
	_, err := requireBytesArg(args)
	return err
}
func (upcaseFunc) Call(_ *host.Context, args *fn.ArgumentList) (value.Value, error) {
	b, err := requireBytesArg(args)
	if err != nil {
		return nil, err
	}
	return bytes.ToUpper(b), nil
}

type downcaseFunc struct{}

func (downcaseFunc) Identifier() string         { return "downcase" }
func (downcaseFunc) Parameters() []fn.Parameter { return bytesParam() }
func (downcaseFunc) CheckArguments(args *fn.ArgumentList) error {
	_, err := requireBytesArg(args)
	return err
}
func (downcaseFunc) Call(_ *host.Context, args *fn.ArgumentList) (value.Value, error) {
	b, err := requireBytesArg(args)
	if err != nil {
		return nil, err
	}
	return bytes.ToLower(b), nil
}

type containsFunc struct{}

func (containsFunc) Identifier() string { return "contains" }
func (containsFunc) Parameters() []fn.Parameter {
	return []fn.Parameter{
		{Name: "value", Accepts: kind.Bytes},
		{Name: "substring", Accepts: kind.Bytes},
	}
}
func (containsFunc) CheckArguments(args *fn.ArgumentList) error {
	v, ok := args.Get(0)
	if !ok {
		return fmt.Errorf("value is required")
	}
	if _, ok := v.([]byte); !ok {
		return fmt.Errorf("value must be a string")
	}
	sub, ok := args.Get(1)
	if !ok {
		return fmt.Errorf("substring is required")
	}
	if _, ok := sub.([]byte); !ok {
		return fmt.Errorf("substring must be a string")
	}
	return nil
}
func (containsFunc) Call(_ *host.Context, args *fn.ArgumentList) (value.Value, error) {
	v, _ := args.Get(0)
	sub, _ := args.Get(1)
	return bytes.Contains(v.([]byte), sub.([]byte)), nil
}
