package errors

import "github.com/pkg/errors"

// StackTracer is satisfied by errors that carry a pkg/errors stack trace.
type StackTracer interface {
	StackTrace() errors.StackTrace
}

// ErrorTracer pairs a message with an underlying error that always has a
// stack trace attached. The logger pulls the trace out when writing error
// entries.
type ErrorTracer struct {
	Message string
	Err     error
}

// NewTracer creates an ErrorTracer with only a message.
func NewTracer(message string) *ErrorTracer {
	return &ErrorTracer{Message: message}
}

// TracerFromError wraps err, attaching a stack trace unless it already
// carries one.
func TracerFromError(err error) *ErrorTracer {
	return &ErrorTracer{
		Message: err.Error(),
		Err:     ensureStack(err),
	}
}

// Wrap replaces the underlying error, attaching a stack trace if needed.
func (e *ErrorTracer) Wrap(err error) *ErrorTracer {
	e.Err = ensureStack(err)
	return e
}

func (e *ErrorTracer) Error() string {
	return e.Message
}

func (e *ErrorTracer) Unwrap() error {
	return e.Err
}

// StackTrace returns the underlying error's stack trace.
func (e *ErrorTracer) StackTrace() errors.StackTrace {
	if withStack, ok := e.Err.(StackTracer); ok {
		return withStack.StackTrace()
	}
	return nil
}

func ensureStack(err error) error {
	if _, ok := err.(StackTracer); ok {
		return err
	}
	return errors.WithStack(err)
}
