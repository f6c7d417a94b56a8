// Package protocol defines the typed contract between the shell engine and
// the introspection interface of a live target process.
//
// The contract covers four round trips:
//
//   - [Client.Evaluate]: evaluate an expression in an execution context.
//   - [Client.GetProperties]: enumerate the properties of a remote object.
//   - [Client.CallFunctionOn]: invoke a function with a remote object as receiver.
//   - [Client.GlobalLexicalScopeNames]: list top-level let/const/class bindings.
//
// # Remote values
//
// A [RemoteValue] is a handle to a value that lives in the target process.
// The engine never interprets a handle locally; every inspection goes through
// another round trip. Handles are invalidated when the target discards the
// execution context that produced them.
//
// # Errors
//
// A thrown exception inside the target is data, not an error: it is reported
// through [EvaluationResult.Exception]. Go errors are reserved for channel
// level failures ([ErrTransport]), protocol errors ([ErrProtocol]) and
// expired deadlines ([ErrTimeout]).
package protocol
