// Package sink adapts the teacher's WebSocket client
// (internal/network/websocket.go) into a single-purpose event emitter:
// dial once, push JSON-encoded events to an external collector. The
// teacher's WebSocket server side has no equivalent in the
// event-transformation domain and is not carried over.
package sink

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relaypipe/remap/internal/value"
)

// WebSocket is a single outbound connection used to emit transformed
// events to a collector.
type WebSocket struct {
	url  string
	mu   sync.Mutex
	conn *websocket.Conn
}

// Dial opens a WebSocket connection to url.
func Dial(url string) (*WebSocket, error) {
	dialer := websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("sink: dial %s: %w", url, err)
	}
	return &WebSocket{url: url, conn: conn}, nil
}

// Emit JSON-encodes event and sends it as a single text frame.
func (s *WebSocket) Emit(event value.Object) error {
	payload, err := json.Marshal(toJSON(event))
	if err != nil {
		return fmt.Errorf("sink: encode event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

// Close sends a close frame and releases the connection.
func (s *WebSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return s.conn.Close()
}

// toJSON converts a tagged Value tree into plain Go values
// encoding/json already knows how to marshal.
func toJSON(v value.Value) interface{} {
	switch vv := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(vv)
	case []value.Value:
		out := make([]interface{}, len(vv))
		for i, e := range vv {
			out[i] = toJSON(e)
		}
		return out
	case value.Object:
		out := make(map[string]interface{}, len(vv))
		for k, e := range vv {
			out[k] = toJSON(e)
		}
		return out
	default:
		return vv
	}
}
