package protocol

import "context"

// Client issues round trips against the introspection interface of the
// target process.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: every method must honor cancellation/deadlines; an expired
// deadline is reported as ErrTimeout.
// - Errors: exceptions thrown by the target are returned inside
// EvaluationResult, not as errors. Channel failures wrap ErrTransport and are
// fatal; no method retries.
// - Ownership: returned values are caller-owned; handles stay owned by the
// target process.
type Client interface {
	// Evaluate evaluates an expression in an execution context.
	Evaluate(ctx context.Context, req EvaluationRequest) (EvaluationResult, error)

	// GetProperties enumerates the properties of the object behind handle,
	// own properties first in the target's enumeration order.
	GetProperties(ctx context.Context, handle string, opts PropertiesOptions) ([]PropertyDescriptor, error)

	// CallFunctionOn calls a function declaration with the object behind
	// req.Handle as its receiver.
	CallFunctionOn(ctx context.Context, req CallRequest) (EvaluationResult, error)

	// GlobalLexicalScopeNames lists the names of top-level lexical bindings
	// in the given execution context (zero for the default).
	GlobalLexicalScopeNames(ctx context.Context, contextID int) ([]string, error)

	// ReleaseObjectGroup releases every handle produced by requests that
	// named group. Released handles must not be used again.
	ReleaseObjectGroup(ctx context.Context, group string) error
}
