// Package protocoltest provides a scripted protocol.Client for tests.
package protocoltest

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/jonwraymond/inspectrepl/protocol"
)

// Client is an in-memory target. Expressions, handles and call results are
// scripted up front; every request is recorded. Unscripted expressions throw
// a ReferenceError.
type Client struct {
	mu sync.Mutex

	results    map[string]protocol.EvaluationResult
	errs       map[string]error
	properties map[string][]protocol.PropertyDescriptor

	// LexicalNames is returned by GlobalLexicalScopeNames.
	LexicalNames []string

	// CallResult is returned by CallFunctionOn.
	CallResult protocol.EvaluationResult

	// EvaluateFunc, when set, replaces the scripted lookup.
	EvaluateFunc func(ctx context.Context, req protocol.EvaluationRequest) (protocol.EvaluationResult, error)

	evaluations []protocol.EvaluationRequest
	propCalls   []string
	calls       []protocol.CallRequest
	released    []string
}

var _ protocol.Client = (*Client)(nil)

// New creates an empty scripted client.
func New() *Client {
	return &Client{
		results:    make(map[string]protocol.EvaluationResult),
		errs:       make(map[string]error),
		properties: make(map[string][]protocol.PropertyDescriptor),
	}
}

// SetValue scripts expr to evaluate to v.
func (c *Client) SetValue(expr string, v protocol.RemoteValue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[expr] = protocol.EvaluationResult{Value: v}
}

// SetException scripts expr to throw an error with the given description.
func (c *Client) SetException(expr, description string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[expr] = protocol.EvaluationResult{Exception: Exception(description)}
}

// SetError scripts expr to fail at the protocol level.
func (c *Client) SetError(expr string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs[expr] = err
}

// SetProperties scripts the properties reported for handle.
func (c *Client) SetProperties(handle string, props ...protocol.PropertyDescriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.properties[handle] = props
}

// Evaluations returns a copy of the recorded evaluation requests.
func (c *Client) Evaluations() []protocol.EvaluationRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]protocol.EvaluationRequest(nil), c.evaluations...)
}

// Expressions returns the recorded expression texts in order.
func (c *Client) Expressions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.evaluations))
	for i, r := range c.evaluations {
		out[i] = r.Expression
	}
	return out
}

// PropertyCalls returns the handles passed to GetProperties.
func (c *Client) PropertyCalls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.propCalls...)
}

// Calls returns the recorded CallFunctionOn requests.
func (c *Client) Calls() []protocol.CallRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]protocol.CallRequest(nil), c.calls...)
}

// Released returns the object groups passed to ReleaseObjectGroup.
func (c *Client) Released() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.released...)
}

// Evaluate implements protocol.Client.
func (c *Client) Evaluate(ctx context.Context, req protocol.EvaluationRequest) (protocol.EvaluationResult, error) {
	c.mu.Lock()
	c.evaluations = append(c.evaluations, req)
	fn := c.EvaluateFunc
	res, scripted := c.results[req.Expression]
	err := c.errs[req.Expression]
	c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return protocol.EvaluationResult{}, err
	}
	if fn != nil {
		return fn(ctx, req)
	}
	if err != nil {
		return protocol.EvaluationResult{}, err
	}
	if !scripted {
		return protocol.EvaluationResult{
			Exception: Exception("ReferenceError: " + req.Expression + " is not defined"),
		}, nil
	}
	return res, nil
}

// GetProperties implements protocol.Client.
func (c *Client) GetProperties(ctx context.Context, handle string, _ protocol.PropertiesOptions) ([]protocol.PropertyDescriptor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.propCalls = append(c.propCalls, handle)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.properties[handle], nil
}

// CallFunctionOn implements protocol.Client.
func (c *Client) CallFunctionOn(ctx context.Context, req protocol.CallRequest) (protocol.EvaluationResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, req)
	if err := ctx.Err(); err != nil {
		return protocol.EvaluationResult{}, err
	}
	return c.CallResult, nil
}

// GlobalLexicalScopeNames implements protocol.Client.
func (c *Client) GlobalLexicalScopeNames(ctx context.Context, _ int) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]string(nil), c.LexicalNames...), nil
}

// ReleaseObjectGroup implements protocol.Client.
func (c *Client) ReleaseObjectGroup(ctx context.Context, group string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.released = append(c.released, group)
	return ctx.Err()
}

// Object builds an object value.
func Object(handle, className string) protocol.RemoteValue {
	return protocol.RemoteValue{
		Handle:      handle,
		Type:        protocol.TypeObject,
		ClassName:   className,
		Description: className,
	}
}

// Function builds a function value with its source text as description.
func Function(handle, source string) protocol.RemoteValue {
	return protocol.RemoteValue{
		Handle:      handle,
		Type:        protocol.TypeFunction,
		ClassName:   "Function",
		Description: source,
	}
}

// String builds a string primitive.
func String(s string) protocol.RemoteValue {
	raw, _ := json.Marshal(s)
	return protocol.RemoteValue{Type: protocol.TypeString, Value: raw}
}

// Number builds a number primitive.
func Number(n float64) protocol.RemoteValue {
	return protocol.RemoteValue{
		Type:        protocol.TypeNumber,
		Value:       json.RawMessage(strconv.FormatFloat(n, 'g', -1, 64)),
		Description: strconv.FormatFloat(n, 'g', -1, 64),
	}
}

// Undefined builds the undefined value.
func Undefined() protocol.RemoteValue {
	return protocol.RemoteValue{Type: protocol.TypeUndefined}
}

// Exception builds thrown-error details whose exception value is an Error
// object with the given description.
func Exception(description string) *protocol.ExceptionDetails {
	return &protocol.ExceptionDetails{
		Text: "Uncaught",
		Exception: protocol.RemoteValue{
			Handle:      "error:" + description,
			Type:        protocol.TypeObject,
			Subtype:     "error",
			ClassName:   className(description),
			Description: description,
		},
	}
}

// Prop builds a property descriptor.
func Prop(name string, own bool, v protocol.RemoteValue) protocol.PropertyDescriptor {
	return protocol.PropertyDescriptor{Name: name, IsOwn: own, Enumerable: true, Value: &v}
}

// SymbolProp builds a symbol-keyed property descriptor.
func SymbolProp(name string, own bool) protocol.PropertyDescriptor {
	v := Undefined()
	return protocol.PropertyDescriptor{Name: name, IsOwn: own, Symbol: true, Value: &v}
}

func className(description string) string {
	for i, r := range description {
		if r == ':' {
			return description[:i]
		}
	}
	return "Error"
}
