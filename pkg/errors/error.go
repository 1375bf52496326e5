package errors

import (
	"bytes"
	stderrors "errors"
	"reflect"
	"strings"
)

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// GeneralInternalServerError represents a generic internal server error.
	GeneralInternalServerError ErrorCode = "general_internal_server_error"
	// GeneralBadRequestError represents a generic bad request error.
	GeneralBadRequestError ErrorCode = "general_bad_request_error"
	// GeneralNotFoundError represents a generic not found error.
	GeneralNotFoundError ErrorCode = "general_not_found_error"
	// GeneralRepositoryError represents a generic repository error.
	GeneralRepositoryError ErrorCode = "general_repository_error"

	// OrderValidationError represents a rejected order submission: malformed side,
	// non-positive price or volume, or an unknown product.
	OrderValidationError ErrorCode = "order_validation_error"
	// OrderConcurrentModification represents an optimistic-lock conflict while
	// applying a fill to an order.
	OrderConcurrentModification ErrorCode = "order_concurrent_modification"
	// OrderNotCancellable represents a cancel attempt on an order that is already
	// filled or cancelled.
	OrderNotCancellable ErrorCode = "order_not_cancellable"
	// OrderNotFound represents a lookup for an order that does not exist.
	OrderNotFound ErrorCode = "order_not_found"

	// ProductNotFound represents a lookup for a product that does not exist.
	ProductNotFound ErrorCode = "product_not_found"

	// MatchInvariantViolation represents a defect detected during matching, such as
	// a non-positive computed trade volume. The pairing is aborted, never committed.
	MatchInvariantViolation ErrorCode = "match_invariant_violation"
	// RepositoryTimeout represents a repository call that exceeded its deadline
	// while matching was in progress.
	RepositoryTimeout ErrorCode = "repository_timeout"
	// RepositoryUnavailable represents a repository that could not be reached.
	RepositoryUnavailable ErrorCode = "repository_unavailable"
	// NotificationFailure represents a failed trade notification delivery. Always
	// non-fatal to matching.
	NotificationFailure ErrorCode = "notification_failure"

	// RedisConfigError represents an invalid or nil Redis configuration.
	RedisConfigError ErrorCode = "redis_config_error"
	// RedisConnectionError represents an error when connecting to Redis.
	RedisConnectionError ErrorCode = "redis_connection_error"
	// RedisGetError represents an error when getting a value from Redis.
	RedisGetError ErrorCode = "redis_get_error"
	// RedisSetError represents an error when setting a value in Redis.
	RedisSetError ErrorCode = "redis_set_error"
	// RedisDelError represents an error when deleting a value from Redis.
	RedisDelError ErrorCode = "redis_del_error"
)

// BaseError is an `error` type containing an array of ErrorDetails.
// This error provides basic functions for performing transformations
// on a list of ErrorDetails.
type BaseError struct {
	details []*ErrorDetails
}

// NewBaseError create BaseError with ErrorDetails
func NewBaseError(details ...*ErrorDetails) *BaseError {
	return &BaseError{details: details}
}

// AddErrorDetails add more ErrorDetails to BaseError
func (b *BaseError) AddErrorDetails(errors ...*ErrorDetails) {
	b.details = append(b.details, errors...)
}

// GetDetails get array ErrorDetails on BaseError
func (b *BaseError) GetDetails() []*ErrorDetails {
	return b.details
}

// Error implement error interface
func (b *BaseError) Error() string {
	buff := bytes.NewBufferString("")

	buff.WriteString("Error on\n")
	for _, err := range b.details {
		buff.WriteString("code: ")
		buff.WriteString(err.Code)
		buff.WriteString("; error: ")
		buff.WriteString(err.Error())
		buff.WriteString("; field: ")
		buff.WriteString(err.Field)
		buff.WriteString("; object: ")
		if err.Object != nil {
			buff.WriteString(reflect.TypeOf(err.Object).String())
		}
		buff.WriteString("\n")
	}

	return strings.TrimSpace(buff.String())
}

// HasCode reports whether err carries the given code, unwrapping as needed.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		switch e := err.(type) {
		case *ErrorDetails:
			return e.Code == string(code)
		case *BaseError:
			return e.IsAnyCodeEqual(string(code))
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// IsAnyCodeEqual check if any ErrorDetails code is equal with given code
func (b *BaseError) IsAnyCodeEqual(code string) bool {
	for _, d := range b.GetDetails() {
		if d.Code == code {
			return true
		}
	}
	return false
}

// IsAllCodeEqual check if all ErrorDetails code is equal with given code
func (b *BaseError) IsAllCodeEqual(code string) bool {
	if len(b.details) == 0 {
		return false
	}

	for _, d := range b.GetDetails() {
		if d.Code != code {
			return false
		}
	}
	return true
}
