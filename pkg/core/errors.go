package core

import (
	"fmt"
)

// ExecutionError represents a structured error with category and details
type ExecutionError struct {
	Category ErrorCategory
	Code     string                 // Machine-readable code: device_disconnected, invalid_flow, etc.
	Message  string                 // Human-readable message
	Details  map[string]interface{} // Additional context
	Cause    error                  // Underlying error
}

// Error implements the error interface
func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an ExecutionError with the same code, so
// copies made by WithCause/WithMessage still match the predefined errors.
func (e *ExecutionError) Is(target error) bool {
	t, ok := target.(*ExecutionError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// IsFatal reports whether the error stops a flow run.
func (e *ExecutionError) IsFatal() bool {
	return e.Category.IsFatal()
}

// WithCause returns a copy of the error with the given cause
func (e *ExecutionError) WithCause(cause error) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  e.Details,
		Cause:    cause,
	}
}

// WithMessage returns a copy of the error with a custom message
func (e *ExecutionError) WithMessage(msg string) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  msg,
		Details:  e.Details,
		Cause:    e.Cause,
	}
}

// WithDetails returns a copy of the error with additional details
func (e *ExecutionError) WithDetails(details map[string]interface{}) *ExecutionError {
	merged := make(map[string]interface{})
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  merged,
		Cause:    e.Cause,
	}
}

// Predefined errors
var (
	// Connection errors
	ErrDeviceDisconnected = &ExecutionError{
		Category: ErrCategoryConnection,
		Code:     "device_disconnected",
		Message:  "no device/emulator detected",
	}
	ErrBridgeUnavailable = &ExecutionError{
		Category: ErrCategoryConnection,
		Code:     "bridge_unavailable",
		Message:  "adb not available or command failed",
	}

	// Config errors
	ErrInvalidFlow = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "invalid_flow",
		Message:  "invalid flow document",
	}

	// Snapshot errors
	ErrMalformedSnapshot = &ExecutionError{
		Category: ErrCategorySnapshot,
		Code:     "malformed_snapshot",
		Message:  "failed to parse UI XML",
	}

	// Resolution errors
	ErrElementNotFound = &ExecutionError{
		Category: ErrCategoryResolution,
		Code:     "element_not_found",
		Message:  "selector not found",
	}
	ErrIndexNotFound = &ExecutionError{
		Category: ErrCategoryResolution,
		Code:     "index_not_found",
		Message:  "index not found in summary",
	}
)

// NewExecutionError creates a new ExecutionError with the given parameters
func NewExecutionError(category ErrorCategory, code, message string) *ExecutionError {
	return &ExecutionError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}
