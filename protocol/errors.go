package protocol

import (
	"errors"
	"fmt"
)

// Sentinel errors for error classification.
var (
	// ErrTransport indicates the channel to the target failed. It is fatal:
	// callers must not treat it as missing data.
	ErrTransport = errors.New("transport failure")

	// ErrProtocol indicates the target rejected a request or replied with
	// a malformed message.
	ErrProtocol = errors.New("protocol error")

	// ErrTimeout indicates a request deadline expired before the reply.
	ErrTimeout = errors.New("request timeout")

	// ErrException indicates the target threw while evaluating.
	ErrException = errors.New("remote exception")
)

// ExceptionError wraps an exception thrown by the target so it can travel
// through error returns where a result is not available.
type ExceptionError struct {
	Details *ExceptionDetails
}

// Error returns the exception description.
func (e *ExceptionError) Error() string {
	msg := e.Details.Message()
	if msg == "" {
		return ErrException.Error()
	}
	return fmt.Sprintf("%s: %s", ErrException, msg)
}

// Is reports whether this error matches the target.
// ExceptionError matches ErrException.
func (e *ExceptionError) Is(target error) bool {
	return target == ErrException
}

// IsFatal reports whether err must abort the current engine operation
// instead of degrading to "no data".
func IsFatal(err error) bool {
	return errors.Is(err, ErrTransport)
}
