package errors

// ErrorDetails carries a single coded violation. Validation paths collect
// several of these into a BaseError.
type ErrorDetails struct {
	// Message is the human readable description, e.g. "order volume must
	// be positive".
	Message string

	// Code is the machine readable code string, e.g.
	// "order_validation_error".
	Code string

	// Field names the offending field, when there is one.
	Field string

	// Object optionally carries the offending value.
	Object any
}

// NewErrorDetails creates an ErrorDetails without an object.
func NewErrorDetails(message, code, field string) *ErrorDetails {
	return &ErrorDetails{
		Message: message,
		Code:    code,
		Field:   field,
	}
}

// NewErrorDetailsWithObject creates an ErrorDetails carrying the offending value.
func NewErrorDetailsWithObject(message, code, field string, object any) *ErrorDetails {
	return &ErrorDetails{
		Message: message,
		Code:    code,
		Field:   field,
		Object:  object,
	}
}

func (e *ErrorDetails) Error() string {
	return e.Message
}

// ErrorCodeEquals reports whether err is an ErrorDetails with the given code.
func ErrorCodeEquals(err error, code string) bool {
	details, ok := err.(*ErrorDetails)
	return ok && details.Code == code
}
