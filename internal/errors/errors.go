package errors

import (
	"fmt"
	"time"
)

/**
 * Error taxonomy for the OCR worker
 *
 * Every failure the recognition session can report carries one of the
 * codes below. Callers match on codes with the standard errors.Is using
 * the exported sentinels, e.g. errors.Is(err, ErrUnknownParameter).
 */

// ErrorCode enum for structured error handling
type ErrorCode string

const (
	// Configuration errors (recoverable: fix input and retry)
	ErrorUnknownParameter ErrorCode = "UNKNOWN_PARAMETER"
	ErrorTypeMismatch     ErrorCode = "TYPE_MISMATCH"
	ErrorInvalidValue     ErrorCode = "INVALID_VALUE"

	// Resource errors
	ErrorAllocationFailure ErrorCode = "ALLOCATION_FAILURE"

	// API misuse
	ErrorInvalidState  ErrorCode = "INVALID_STATE"
	ErrorStaleIterator ErrorCode = "STALE_ITERATOR"

	// Recognition outcomes
	ErrorCancelled ErrorCode = "CANCELLED"
	ErrorFailed    ErrorCode = "FAILED"

	// Worker errors
	ErrorProcessingTimeout ErrorCode = "PROCESSING_TIMEOUT"
	ErrorStorageFailed     ErrorCode = "STORAGE_FAILED"
	ErrorUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
)

// Sentinels for errors.Is matching. Only the code is compared.
var (
	ErrUnknownParameter  = &Error{Code: ErrorUnknownParameter}
	ErrTypeMismatch      = &Error{Code: ErrorTypeMismatch}
	ErrInvalidValue      = &Error{Code: ErrorInvalidValue}
	ErrAllocationFailure = &Error{Code: ErrorAllocationFailure}
	ErrInvalidState      = &Error{Code: ErrorInvalidState}
	ErrStaleIterator     = &Error{Code: ErrorStaleIterator}
	ErrCancelled         = &Error{Code: ErrorCancelled}
	ErrFailed            = &Error{Code: ErrorFailed}
	ErrUnsupportedFormat = &Error{Code: ErrorUnsupportedFormat}
	ErrProcessingTimeout = &Error{Code: ErrorProcessingTimeout}
	ErrStorageFailed     = &Error{Code: ErrorStorageFailed}
)

// Error represents a structured error
type Error struct {
	Code      ErrorCode
	Message   string
	JobID     string
	Timestamp time.Time
	Details   map[string]interface{}
	Cause     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target carries the same code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// CodeOf extracts the code of the first *Error in err's chain
func CodeOf(err error) (ErrorCode, bool) {
	if e := first(err); e != nil {
		return e.Code, true
	}
	return "", false
}

func first(err error) *Error {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil
		}
		err = u.Unwrap()
	}
	return nil
}

// Retryable reports whether a caller may retry after err without changing
// anything but its input. Misuse, cancellation and allocation pressure are
// never retried automatically, and neither is a parameter the engine
// rejected: the same job would be rejected again.
func Retryable(err error) bool {
	e := first(err)
	if e == nil {
		return false
	}
	switch e.Code {
	case ErrorFailed:
		_, rejected := e.Details["parameter"]
		return !rejected
	case ErrorProcessingTimeout, ErrorStorageFailed:
		return true
	default:
		return false
	}
}

func newError(code ErrorCode, msg string, details map[string]interface{}, cause error) *Error {
	return &Error{
		Code:      code,
		Message:   msg,
		Timestamp: time.Now(),
		Details:   details,
		Cause:     cause,
	}
}

// Factory functions for common errors

func NewUnknownParameterError(name string) *Error {
	return newError(ErrorUnknownParameter, fmt.Sprintf("unknown parameter %q", name),
		map[string]interface{}{"parameter": name}, nil)
}

func NewTypeMismatchError(name string, want, got string) *Error {
	return newError(ErrorTypeMismatch, fmt.Sprintf("parameter %q is %s, got %s", name, want, got),
		map[string]interface{}{"parameter": name, "expected_kind": want, "actual_kind": got}, nil)
}

func NewInvalidValueError(name string, value string, cause error) *Error {
	return newError(ErrorInvalidValue, fmt.Sprintf("invalid value %q for parameter %q", value, name),
		map[string]interface{}{"parameter": name, "value": value}, cause)
}

func NewAllocationFailureError(what string) *Error {
	return newError(ErrorAllocationFailure, fmt.Sprintf("failed to allocate %s", what),
		map[string]interface{}{"resource": what}, nil)
}

func NewInvalidStateError(op string, state string) *Error {
	return newError(ErrorInvalidState, fmt.Sprintf("%s not allowed in state %s", op, state),
		map[string]interface{}{"operation": op, "state": state}, nil)
}

func NewStaleIteratorError() *Error {
	return newError(ErrorStaleIterator, "result tree released with its operation", nil, nil)
}

func NewCancelledError(reason string, progress int) *Error {
	return newError(ErrorCancelled, fmt.Sprintf("recognition cancelled (%s)", reason),
		map[string]interface{}{"reason": reason, "progress": progress}, nil)
}

func NewFailedError(msg string, cause error) *Error {
	return newError(ErrorFailed, msg, nil, cause)
}

func NewEngineStatusError(status int) *Error {
	return newError(ErrorFailed, fmt.Sprintf("engine returned status %d", status),
		map[string]interface{}{"status": status}, nil)
}

func NewApplyFailedError(name, value string) *Error {
	return newError(ErrorFailed, fmt.Sprintf("engine rejected parameter %q=%q", name, value),
		map[string]interface{}{"parameter": name, "value": value}, nil)
}

func NewProcessingTimeoutError(jobID string, duration time.Duration, cause error) *Error {
	e := newError(ErrorProcessingTimeout, fmt.Sprintf("Processing timed out after %v", duration),
		map[string]interface{}{"timeout_duration": duration.String()}, cause)
	e.JobID = jobID
	return e
}

func NewUnsupportedFormatError(jobID string, format string) *Error {
	e := newError(ErrorUnsupportedFormat, fmt.Sprintf("Unsupported image format: %s", format),
		map[string]interface{}{"format": format}, nil)
	e.JobID = jobID
	return e
}

func NewStorageFailedError(jobID string, cause error) *Error {
	e := newError(ErrorStorageFailed, "Failed to store recognition results", nil, cause)
	e.JobID = jobID
	return e
}

// ToMap converts error to map for database storage
func (e *Error) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"error_code": string(e.Code),
		"message":    e.Message,
		"timestamp":  e.Timestamp,
	}

	for k, v := range e.Details {
		result[k] = v
	}

	if e.Cause != nil {
		result["cause"] = e.Cause.Error()
	}

	return result
}
