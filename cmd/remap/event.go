package main

import (
	"encoding/json"
	"fmt"

	"github.com/relaypipe/remap/internal/value"
)

// decodeEvent parses JSON into a value.Object, the in-memory event
// representation MapTarget wraps. Strings become []byte, matching the
// Bytes representation used throughout the interpreter.
func decodeEvent(data []byte) (value.Object, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding event JSON: %w", err)
	}
	obj, ok := fromJSON(raw).(value.Object)
	if !ok {
		return nil, fmt.Errorf("event JSON must decode to an object, got %T", raw)
	}
	return obj, nil
}

// decodeEvents parses a JSON array of events for batch evaluation.
func decodeEvents(data []byte) ([]value.Object, error) {
	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding event batch JSON: %w", err)
	}
	out := make([]value.Object, len(raw))
	for i, el := range raw {
		obj, ok := fromJSON(el).(value.Object)
		if !ok {
			return nil, fmt.Errorf("batch element %d must decode to an object, got %T", i, el)
		}
		out[i] = obj
	}
	return out, nil
}

func fromJSON(raw interface{}) value.Value {
	switch v := raw.(type) {
	case nil:
		return nil
	case bool:
		return v
	case string:
		return []byte(v)
	case float64:
		if v == float64(int64(v)) {
			return int64(v)
		}
		return v
	case []interface{}:
		out := make([]value.Value, len(v))
		for i, el := range v {
			out[i] = fromJSON(el)
		}
		return out
	case map[string]interface{}:
		out := make(value.Object, len(v))
		for k, el := range v {
			out[k] = fromJSON(el)
		}
		return out
	default:
		return nil
	}
}

// toJSON converts a Value into something encoding/json can marshal
// directly: []byte becomes a string, Object/Array become map/slice.
func toJSON(v value.Value) interface{} {
	switch vv := v.(type) {
	case []byte:
		return string(vv)
	case []value.Value:
		out := make([]interface{}, len(vv))
		for i, el := range vv {
			out[i] = toJSON(el)
		}
		return out
	case value.Object:
		out := make(map[string]interface{}, len(vv))
		for k, el := range vv {
			out[k] = toJSON(el)
		}
		return out
	default:
		return vv
	}
}

func encodeEvent(obj value.Object) ([]byte, error) {
	return json.MarshalIndent(toJSON(obj), "", "  ")
}
