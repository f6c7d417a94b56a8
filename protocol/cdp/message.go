package cdp

import (
	"context"
	"encoding/json"
	"fmt"
)

// Message is a single frame of the inspector protocol. Requests carry an ID
// and a Method, replies carry the same ID and either Result or Error, and
// events carry a Method without an ID.
type Message struct {
	ID     int64           `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *RPCError       `json:"error,omitempty"`
}

// IsEvent reports whether the message is an unsolicited notification.
func (m Message) IsEvent() bool {
	return m.ID == 0 && m.Method != ""
}

// RPCError is the error object of a failed reply.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	if e.Data != "" {
		return fmt.Sprintf("%s (%d): %s", e.Message, e.Code, e.Data)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Code)
}

// Connection carries messages to and from the target process.
//
// Contract:
// - Concurrency: Send may be called concurrently with Receive; Send must be
// safe for concurrent use.
// - Context: Send must honor cancellation where the transport allows it.
// - Errors: any returned error is treated as a broken channel.
type Connection interface {
	Send(ctx context.Context, msg Message) error
	Receive(ctx context.Context) (Message, error)
	Close() error
}

// Codec encodes and decodes protocol frames.
type Codec interface {
	Encode(msg Message) ([]byte, error)
	Decode(data []byte) (Message, error)
}

// jsonCodec implements Codec using JSON encoding.
type jsonCodec struct{}

func (c *jsonCodec) Encode(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

func (c *jsonCodec) Decode(data []byte) (Message, error) {
	var msg Message
	err := json.Unmarshal(data, &msg)
	return msg, err
}

// Protocol method names used by the client.
const (
	MethodEnable                  = "Runtime.enable"
	MethodEvaluate                = "Runtime.evaluate"
	MethodGetProperties           = "Runtime.getProperties"
	MethodCallFunctionOn          = "Runtime.callFunctionOn"
	MethodGlobalLexicalScopeNames = "Runtime.globalLexicalScopeNames"
	MethodReleaseObjectGroup      = "Runtime.releaseObjectGroup"

	EventContextCreated   = "Runtime.executionContextCreated"
	EventContextDestroyed = "Runtime.executionContextDestroyed"
	EventContextsCleared  = "Runtime.executionContextsCleared"
)
