// Package engine is the entry point the shell front ends talk to.
//
// An [Engine] ties together the pieces of the evaluation and completion
// pipeline for one target:
//
//   - [Engine.OnLine] runs a committed line through the statement evaluator
//     and returns its rendered result, or asks for a continuation line.
//   - [Engine.OnAutocomplete] resolves a completion for the buffer being
//     typed.
//
// # Completion ordering
//
// Completion requests arrive as fast as the user types. Each request takes
// a sequence number and cancels the request before it; a request that
// finishes after a newer one started returns [ErrSuperseded] so the caller
// can drop it. The newest request always wins.
//
// # Line evaluation
//
// Lines are evaluated one at a time. Exceptions thrown by the target are part
// of the result, not errors; errors are reserved for failures of the channel
// to the target and are wrapped in [LineError].
package engine
