package stdlib

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/relaypipe/remap/internal/fn"
	"github.com/relaypipe/remap/internal/host"
	"github.com/relaypipe/remap/internal/kind"
	"github.com/relaypipe/remap/internal/value"
)

// bytesParam is the single-argument shape shared by the compression
// functions: one required Bytes parameter named "value".
func bytesParam() []fn.Parameter {
	return []fn.Parameter{{Name: "value", Accepts: kind.Bytes}}
}

func requireBytesArg(args *fn.ArgumentList) ([]byte, error) {
	v, ok := args.Get(0)
	if !ok {
		return nil, fmt.Errorf("value is required")
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("value must be a string")
	}
	return b, nil
}

type compressGzipFunc struct{}

func (compressGzipFunc) Identifier() string          { return "compress_gzip" }
func (compressGzipFunc) Parameters() []fn.Parameter  { return bytesParam() }
func (compressGzipFunc) CheckArguments(args *fn.ArgumentList) error {
	_, err := requireBytesArg(args)
	return err
}
func (compressGzipFunc) Call(_ *host.Context, args *fn.ArgumentList) (value.Value, error) {
	b, err := requireBytesArg(args)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(b); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type decompressGzipFunc struct{}

func (decompressGzipFunc) Identifier() string         { return "decompress_gzip" }
func (decompressGzipFunc) Parameters() []fn.Parameter { return bytesParam() }
func (decompressGzipFunc) CheckArguments(args *fn.ArgumentList) error {
	_, err := requireBytesArg(args)
	return err
}
func (decompressGzipFunc) Call(_ *host.Context, args *fn.ArgumentList) (value.Value, error) {
	b, err := requireBytesArg(args)
	if err != nil {
		return nil, err
	}
	r, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decompress_gzip: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompress_gzip: %w", err)
	}
	return out, nil
}

type compressFlateFunc struct{}

func (compressFlateFunc) Identifier() string         { return "compress_flate" }
func (compressFlateFunc) Parameters() []fn.Parameter { return bytesParam() }
func (compressFlateFunc) CheckArguments(args *fn.ArgumentList) error {
	_, err := requireBytesArg(args)
	return err
}
func (compressFlateFunc) Call(_ *host.Context, args *fn.ArgumentList) (value.Value, error) {
	b, err := requireBytesArg(args)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(b); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type decompressFlateFunc struct{}

func (decompressFlateFunc) Identifier() string         { return "decompress_flate" }
func (decompressFlateFunc) Parameters() []fn.Parameter { return bytesParam() }
func (decompressFlateFunc) CheckArguments(args *fn.ArgumentList) error {
	_, err := requireBytesArg(args)
	return err
}
func (decompressFlateFunc) Call(_ *host.Context, args *fn.ArgumentList) (value.Value, error) {
	b, err := requireBytesArg(args)
	if err != nil {
		return nil, err
	}
	r := flate.NewReader(bytes.NewReader(b))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompress_flate: %w", err)
	}
	return out, nil
}
