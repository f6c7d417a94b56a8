// Package cdp implements protocol.Client over the Chrome DevTools Protocol
// Runtime domain, the inspector interface exposed by Node.js and V8 targets.
package cdp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jonwraymond/inspectrepl/protocol"
)

// Errors for client operations.
var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrNoPending        = errors.New("no pending request")
)

// Logger is the interface for logging.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: logging must be best-effort and must not panic.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config configures a Client.
type Config struct {
	// Connection is the underlying connection to the target.
	// Required.
	Connection Connection

	// ContextID pins every request to one execution context. When zero the
	// client follows the default context announced by the target.
	ContextID int

	// Logger is an optional logger for client events.
	Logger Logger
}

// Client implements protocol.Client by serializing requests over a
// connection and matching replies by id.
type Client struct {
	conn      Connection
	pinned    int
	logger    Logger
	requestID atomic.Int64
	pending   sync.Map // map[int64]chan Message
	contextID atomic.Int64

	closed  atomic.Bool
	closeMu sync.Mutex
	done    chan struct{}
	failMu  sync.Mutex
	failErr error
}

var _ protocol.Client = (*Client)(nil)

// New creates a new client with the given configuration.
func New(cfg Config) *Client {
	return &Client{
		conn:   cfg.Connection,
		pinned: cfg.ContextID,
		logger: cfg.Logger,
		done:   make(chan struct{}),
	}
}

// Listen reads messages until the connection fails or ctx is canceled.
// Replies are routed to their pending requests and context events update the
// default execution context. Listen must be running for any request to
// complete. When the connection fails every pending request fails with
// protocol.ErrTransport.
func (c *Client) Listen(ctx context.Context) error {
	for {
		msg, err := c.conn.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.fail(ctx.Err())
				return ctx.Err()
			}
			c.fail(err)
			return fmt.Errorf("%w: %v", protocol.ErrTransport, err)
		}
		if msg.IsEvent() {
			c.handleEvent(msg)
			continue
		}
		if err := c.DeliverResponse(msg); err != nil {
			// Replies for requests whose deadline already expired land here.
			c.warn("dropping reply", "id", msg.ID, "error", err)
		}
	}
}

// Enable turns on Runtime domain notifications so context events flow.
func (c *Client) Enable(ctx context.Context) error {
	return c.request(ctx, MethodEnable, nil, nil)
}

// ContextID returns the execution context requests are sent to, zero when the
// target's default should be used.
func (c *Client) ContextID() int {
	if c.pinned != 0 {
		return c.pinned
	}
	return int(c.contextID.Load())
}

// Evaluate evaluates an expression in the target.
func (c *Client) Evaluate(ctx context.Context, req protocol.EvaluationRequest) (protocol.EvaluationResult, error) {
	contextID := req.ContextID
	if contextID == 0 {
		contextID = c.ContextID()
	}

	var reply evaluateReply
	if err := c.request(ctx, MethodEvaluate, buildEvaluateParams(req, contextID), &reply); err != nil {
		return protocol.EvaluationResult{}, err
	}
	return mapResult(reply.Result, reply.ExceptionDetails), nil
}

// GetProperties enumerates the properties of a remote object.
func (c *Client) GetProperties(ctx context.Context, handle string, opts protocol.PropertiesOptions) ([]protocol.PropertyDescriptor, error) {
	if handle == "" {
		return nil, fmt.Errorf("%w: getProperties requires an object handle", protocol.ErrProtocol)
	}

	var reply getPropertiesReply
	err := c.request(ctx, MethodGetProperties, getPropertiesParams{
		ObjectID:        handle,
		OwnProperties:   opts.OwnOnly,
		GeneratePreview: opts.GeneratePreview,
	}, &reply)
	if err != nil {
		return nil, err
	}
	if reply.ExceptionDetails != nil {
		return nil, &protocol.ExceptionError{Details: mapException(reply.ExceptionDetails)}
	}
	return mapProperties(reply.Result), nil
}

// CallFunctionOn calls a function declaration with a remote receiver.
func (c *Client) CallFunctionOn(ctx context.Context, req protocol.CallRequest) (protocol.EvaluationResult, error) {
	params := callFunctionOnParams{
		FunctionDeclaration: req.FunctionText,
		ObjectID:            req.Handle,
		Arguments:           buildCallArguments(req.Arguments),
		Silent:              req.Silent,
		GeneratePreview:     req.GeneratePreview,
		AwaitPromise:        req.AwaitPromise,
	}
	if req.Handle == "" {
		params.ExecutionContextID = req.ContextID
		if params.ExecutionContextID == 0 {
			params.ExecutionContextID = c.ContextID()
		}
	}

	var reply evaluateReply
	if err := c.request(ctx, MethodCallFunctionOn, params, &reply); err != nil {
		return protocol.EvaluationResult{}, err
	}
	return mapResult(reply.Result, reply.ExceptionDetails), nil
}

// GlobalLexicalScopeNames lists top-level lexical bindings.
func (c *Client) GlobalLexicalScopeNames(ctx context.Context, contextID int) ([]string, error) {
	if contextID == 0 {
		contextID = c.ContextID()
	}

	var reply globalLexicalScopeNamesReply
	err := c.request(ctx, MethodGlobalLexicalScopeNames, globalLexicalScopeNamesParams{
		ExecutionContextID: contextID,
	}, &reply)
	if err != nil {
		return nil, err
	}
	return reply.Names, nil
}

// ReleaseObjectGroup releases every remote object evaluated into group.
func (c *Client) ReleaseObjectGroup(ctx context.Context, group string) error {
	if group == "" {
		return fmt.Errorf("%w: releaseObjectGroup requires a group", protocol.ErrProtocol)
	}
	return c.request(ctx, MethodReleaseObjectGroup, releaseObjectGroupParams{ObjectGroup: group}, nil)
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed.Load() {
		return nil
	}

	c.closed.Store(true)
	c.fail(ErrConnectionClosed)
	return c.conn.Close()
}

// request sends a request and waits for the reply.
func (c *Client) request(ctx context.Context, method string, params any, result any) error {
	if c.closed.Load() {
		return fmt.Errorf("%w: %v", protocol.ErrTransport, ErrConnectionClosed)
	}

	msg := Message{
		ID:     c.requestID.Add(1),
		Method: method,
	}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("%w: encode %s: %v", protocol.ErrProtocol, method, err)
		}
		msg.Params = raw
	}

	// Create response channel
	respCh := make(chan Message, 1)
	c.pending.Store(msg.ID, respCh)
	defer c.pending.Delete(msg.ID)

	if err := c.conn.Send(ctx, msg); err != nil {
		if ctx.Err() != nil {
			return wrapContextErr(ctx.Err(), method)
		}
		return fmt.Errorf("%w: send %s: %v", protocol.ErrTransport, method, err)
	}

	select {
	case <-ctx.Done():
		return wrapContextErr(ctx.Err(), method)
	case <-c.done:
		return fmt.Errorf("%w: %v", protocol.ErrTransport, c.failure())
	case resp := <-respCh:
		if resp.Error != nil {
			return fmt.Errorf("%w: %s: %v", protocol.ErrProtocol, method, resp.Error)
		}
		if result == nil || len(resp.Result) == 0 {
			return nil
		}
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("%w: decode %s: %v", protocol.ErrProtocol, method, err)
		}
		return nil
	}
}

// DeliverResponse delivers a reply to a pending request.
func (c *Client) DeliverResponse(msg Message) error {
	ch, ok := c.pending.Load(msg.ID)
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNoPending, msg.ID)
	}

	select {
	case ch.(chan Message) <- msg:
		return nil
	default:
		return fmt.Errorf("%w: response channel full for id %d", protocol.ErrProtocol, msg.ID)
	}
}

func (c *Client) handleEvent(msg Message) {
	switch msg.Method {
	case EventContextCreated:
		var ev executionContextCreated
		if err := json.Unmarshal(msg.Params, &ev); err != nil {
			c.warn("malformed event", "method", msg.Method, "error", err)
			return
		}
		if ev.Context.AuxData.IsDefault || c.contextID.Load() == 0 {
			c.contextID.Store(int64(ev.Context.ID))
			c.info("execution context created", "id", ev.Context.ID, "name", ev.Context.Name)
		}
	case EventContextDestroyed:
		var ev executionContextDestroyed
		if err := json.Unmarshal(msg.Params, &ev); err != nil {
			c.warn("malformed event", "method", msg.Method, "error", err)
			return
		}
		c.contextID.CompareAndSwap(int64(ev.ExecutionContextID), 0)
	case EventContextsCleared:
		c.contextID.Store(0)
	}
}

func (c *Client) fail(err error) {
	c.failMu.Lock()
	defer c.failMu.Unlock()
	if c.failErr != nil {
		return
	}
	c.failErr = err
	close(c.done)
}

func (c *Client) failure() error {
	c.failMu.Lock()
	defer c.failMu.Unlock()
	if c.failErr == nil {
		return ErrConnectionClosed
	}
	return c.failErr
}

func (c *Client) info(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func (c *Client) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

func wrapContextErr(err error, method string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", protocol.ErrTimeout, method)
	}
	return err
}
