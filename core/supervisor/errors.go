package supervisor

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCode identifies categories of supervisor errors
type ErrorCode string

const (
	// ErrorCodeSpawnFailed means the OS refused to create the server process.
	ErrorCodeSpawnFailed ErrorCode = "SPAWN_FAILED"
	// ErrorCodeNotReady means the server did not announce an endpoint in time or exited early.
	ErrorCodeNotReady ErrorCode = "NOT_READY"
	// ErrorCodeSettingsFailed means the settings probe failed.
	ErrorCodeSettingsFailed ErrorCode = "SETTINGS_FAILED"
	// ErrorCodeStopFailed means the OS refused to kill the server process.
	ErrorCodeStopFailed ErrorCode = "STOP_FAILED"
	// ErrorCodeInvalidConfiguration means the supervisor cannot be built from its inputs.
	ErrorCodeInvalidConfiguration ErrorCode = "INVALID_CONFIGURATION"
)

// Error represents a supervisor failure with context for troubleshooting.
type Error struct {
	// Code identifies the error type
	Code ErrorCode

	// Message is the primary error message
	Message string

	// Context provides additional details
	Context map[string]interface{}

	// Cause is the underlying error (if any)
	Cause error

	// Suggestion provides actionable guidance for resolving the error
	Suggestion string
}

func (e *Error) Error() string {
	parts := []string{fmt.Sprintf("[%s] %s", e.Code, e.Message)}

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		ctx := make([]string, 0, len(keys))
		for _, k := range keys {
			ctx = append(ctx, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		parts = append(parts, "Context: "+strings.Join(ctx, ", "))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("Cause: %v", e.Cause))
	}

	if e.Suggestion != "" {
		parts = append(parts, "Suggestion: "+e.Suggestion)
	}

	return strings.Join(parts, "; ")
}

// Unwrap returns the underlying error for errors.Is/As compatibility
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCause adds the underlying cause to the error
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithSuggestion adds an actionable suggestion to the error
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

// ErrSpawnFailed creates an error for a process that could not be spawned.
func ErrSpawnFailed(runtime string, cause error) *Error {
	return NewError(ErrorCodeSpawnFailed, "Failed to spawn the streaming server").
		WithContext("runtime", runtime).
		WithCause(cause).
		WithSuggestion("Check that the runtime exists and is executable, and that the service has permission to start processes")
}

// ErrNotReady creates an error for a server that never announced its endpoint.
func ErrNotReady(pid int, waited string, cause error) *Error {
	return NewError(ErrorCodeNotReady, "Streaming server did not become ready").
		WithContext("pid", pid).
		WithContext("waited", waited).
		WithCause(cause).
		WithSuggestion("Run the runtime with server.js by hand and look for the 'EngineFS server started at' line; the server may be crashing on startup")
}

// ErrSettingsFailed creates an error for a failed settings probe.
func ErrSettingsFailed(endpoint string, cause error) *Error {
	return NewError(ErrorCodeSettingsFailed, "Streaming server settings could not be read").
		WithContext("endpoint", endpoint).
		WithCause(cause).
		WithSuggestion("Verify the settings endpoint responds: curl " + endpoint + "/settings")
}

// ErrStopFailed creates an error for a kill the OS refused.
func ErrStopFailed(pid int, cause error) *Error {
	return NewError(ErrorCodeStopFailed, "Failed to terminate the streaming server").
		WithContext("pid", pid).
		WithCause(cause).
		WithSuggestion("The process may still be running; terminate it manually before starting the server again")
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, or "" when err is not an *Error.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
