// Package value implements the tagged runtime value variant the
// interpreter operates on: Null, Boolean, Integer, Float, Bytes, Regex,
// Timestamp, Array and Object.
package value

import (
	"fmt"
	"regexp"
	"time"
)

// Value is the dynamic value carried on the VM's operand stack and
// inside the variable store. Concrete representations:
//
//	nil               Null
//	bool              Boolean
//	int64             Integer
//	float64           Float
//	[]byte            Bytes
//	*regexp.Regexp    Regex
//	time.Time         Timestamp
//	[]Value           Array
//	Object            Object
type Value interface{}

// Object is the keyed collection representation. Insertion order is
// not significant; keys are unique.
type Object map[string]Value

// Tag identifies the runtime shape of a Value.
type Tag int

const (
	TagNull Tag = iota
	TagBoolean
	TagInteger
	TagFloat
	TagBytes
	TagRegex
	TagTimestamp
	TagArray
	TagObject
)

func (t Tag) String() string {
	switch t {
	case TagNull:
		return "null"
	case TagBoolean:
		return "boolean"
	case TagInteger:
		return "integer"
	case TagFloat:
		return "float"
	case TagBytes:
		return "bytes"
	case TagRegex:
		return "regex"
	case TagTimestamp:
		return "timestamp"
	case TagArray:
		return "array"
	case TagObject:
		return "object"
	default:
		return "unknown"
	}
}

// TagOf reports the runtime shape of v.
func TagOf(v Value) Tag {
	switch v.(type) {
	case nil:
		return TagNull
	case bool:
		return TagBoolean
	case int64:
		return TagInteger
	case float64:
		return TagFloat
	case []byte:
		return TagBytes
	case *regexp.Regexp:
		return TagRegex
	case time.Time:
		return TagTimestamp
	case []Value:
		return TagArray
	case Object:
		return TagObject
	default:
		panic(fmt.Sprintf("value: unrepresentable Go type %T", v))
	}
}

// Clone returns a value safe to store independently of v — required
// whenever a value must appear both on the operand stack and inside
// the variable store. Bytes are copied, Array and Object are
// deep-copied, and every other kind is returned as-is.
func Clone(v Value) Value {
	switch vv := v.(type) {
	case []byte:
		out := make([]byte, len(vv))
		copy(out, vv)
		return out
	case []Value:
		out := make([]Value, len(vv))
		for i, e := range vv {
			out[i] = Clone(e)
		}
		return out
	case Object:
		out := make(Object, len(vv))
		for k, e := range vv {
			out[k] = Clone(e)
		}
		return out
	default:
		return vv
	}
}

// IsTrue reports whether v is the exact boolean true — the only value
// the VM's conditional jumps treat as truthy.
func IsTrue(v Value) bool {
	b, ok := v.(bool)
	return ok && b
}
