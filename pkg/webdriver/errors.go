package webdriver

import (
	"errors"
	"fmt"
)

// Category groups errors by failure domain.
type Category string

const (
	CategoryProtocol   Category = "protocol"
	CategorySession    Category = "session"
	CategoryElement    Category = "element"
	CategoryConnection Category = "connection"
)

// W3C WebDriver error codes carried in the "error" field of a response.
const (
	CodeStaleElement     = "stale element reference"
	CodeNoSuchElement    = "no such element"
	CodeInvalidSessionID = "invalid session id"
	CodeInvalidSelector  = "invalid selector"
	CodeInvalidArgument  = "invalid argument"
	CodeUnknownError     = "unknown error"
)

// Error is a structured protocol error with category and details.
type Error struct {
	Category Category
	Code     string                 // Wire code: stale element reference, no such element, etc.
	Message  string                 // Human-readable message
	Details  map[string]interface{} // Additional context
	Cause    error                  // Underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithCause returns a copy of the error with the given cause.
func (e *Error) WithCause(cause error) *Error {
	return &Error{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  e.Details,
		Cause:    cause,
	}
}

// WithMessage returns a copy of the error with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{
		Category: e.Category,
		Code:     e.Code,
		Message:  msg,
		Details:  e.Details,
		Cause:    e.Cause,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	merged := make(map[string]interface{})
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &Error{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  merged,
		Cause:    e.Cause,
	}
}

// Predefined errors.
var (
	ErrStaleElement = &Error{
		Category: CategoryElement,
		Code:     CodeStaleElement,
		Message:  "element reference is stale",
	}
	ErrNoSuchElement = &Error{
		Category: CategoryElement,
		Code:     CodeNoSuchElement,
		Message:  "element not found",
	}
	ErrInvalidSelector = &Error{
		Category: CategoryElement,
		Code:     CodeInvalidSelector,
		Message:  "invalid locator",
	}
	ErrInvalidSessionID = &Error{
		Category: CategorySession,
		Code:     CodeInvalidSessionID,
		Message:  "session is not active",
	}
	ErrNoSession = &Error{
		Category: CategorySession,
		Code:     "no_session",
		Message:  "no active session",
	}
	ErrServerUnreachable = &Error{
		Category: CategoryConnection,
		Code:     "server_unreachable",
		Message:  "could not connect to automation server",
	}
)

// wireError maps a WebDriver response error onto a structured Error.
func wireError(code, message string) *Error {
	category := CategoryProtocol
	switch code {
	case CodeStaleElement, CodeNoSuchElement, CodeInvalidSelector:
		category = CategoryElement
	case CodeInvalidSessionID:
		category = CategorySession
	}
	return &Error{
		Category: category,
		Code:     code,
		Message:  fmt.Sprintf("%s: %s", code, message),
	}
}

func hasCode(err error, code string) bool {
	var we *Error
	return errors.As(err, &we) && we.Code == code
}

// IsStale reports whether the error is a stale element reference.
func IsStale(err error) bool {
	return hasCode(err, CodeStaleElement)
}

// IsNoSuchElement reports whether the error means the locator matched nothing.
func IsNoSuchElement(err error) bool {
	return hasCode(err, CodeNoSuchElement)
}

// IsInvalidSession reports whether the session is gone.
func IsInvalidSession(err error) bool {
	return hasCode(err, CodeInvalidSessionID)
}
