package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors for error classification.
var (
	// ErrConfiguration indicates an invalid or incomplete configuration.
	ErrConfiguration = errors.New("configuration error")

	// ErrSuperseded indicates a completion request finished after a newer
	// request was issued. Its result must be discarded.
	ErrSuperseded = errors.New("completion superseded")

	// ErrEvaluation indicates a committed line could not be evaluated.
	ErrEvaluation = errors.New("evaluation error")
)

// LineError reports a line whose evaluation could not be carried out.
type LineError struct {
	// Line is the submitted text.
	Line string

	// Err is the underlying error.
	Err error
}

// Error returns the error message.
func (e *LineError) Error() string {
	return fmt.Sprintf("%s: %v", ErrEvaluation, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *LineError) Unwrap() error {
	return e.Err
}

// Is reports whether this error matches the target.
// LineError matches ErrEvaluation to allow sentinel-style error checking.
func (e *LineError) Is(target error) bool {
	return target == ErrEvaluation
}
