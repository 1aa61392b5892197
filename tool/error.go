package tool

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ErrorCodeInvalidParams is returned when required parameters are missing.
	ErrorCodeInvalidParams = "INVALID_PARAMS"
	// ErrorCodeUnauthorized is returned when a credential is missing or rejected.
	ErrorCodeUnauthorized = "UNAUTHORIZED"
	// ErrorCodeTransportFailure is returned when network I/O fails.
	ErrorCodeTransportFailure = "TRANSPORT_FAILURE"
	// ErrorCodeTimeout is returned when a call exceeds its deadline.
	ErrorCodeTimeout = "TIMEOUT"
	// ErrorCodeUpstreamFailure is returned for non-success upstream responses.
	ErrorCodeUpstreamFailure = "UPSTREAM_FAILURE"
	// ErrorCodeDecodeFailure is returned when an upstream response is malformed.
	ErrorCodeDecodeFailure = "DECODE_FAILURE"
	// ErrorCodeInvocationFailed is the generic fallback.
	ErrorCodeInvocationFailed = "INVOCATION_FAILED"
)

// Error is a structured tool failure. Tools that talk to external services
// use it to surface one descriptive error while keeping a machine-readable
// code for logs and telemetry. Error() renders the message only so the CLI
// output stays human readable.
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		if e.Code != "" {
			return e.Code
		}
		return ErrorCodeInvocationFailed
	}
	return msg
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewError builds a structured error. An empty code falls back to
// ErrorCodeInvocationFailed and an empty message to the cause's text.
func NewError(code, message string, cause error) *Error {
	cleanCode := strings.TrimSpace(code)
	if cleanCode == "" {
		cleanCode = ErrorCodeInvocationFailed
	}
	cleanMsg := strings.TrimSpace(message)
	if cleanMsg == "" && cause != nil {
		cleanMsg = cause.Error()
	}
	return &Error{
		Code:    cleanCode,
		Message: cleanMsg,
		Cause:   cause,
	}
}

// Errorf builds a structured error with a formatted message.
func Errorf(code, format string, args ...any) *Error {
	return NewError(code, fmt.Sprintf(format, args...), nil)
}

// WithDetails attaches details to err and returns it.
func (e *Error) WithDetails(details map[string]any) *Error {
	if e == nil || len(details) == 0 {
		return e
	}
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	for key, value := range details {
		e.Details[key] = value
	}
	return e
}

// CodeOf returns the structured code carried by err, if any.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var toolErr *Error
	if errors.As(err, &toolErr) && toolErr != nil {
		return toolErr.Code
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ErrorCodeInvalidParams
	}
	return ""
}

func codeOrDefault(err error) string {
	if code := CodeOf(err); code != "" {
		return code
	}
	return ErrorCodeInvocationFailed
}
