package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Session lifecycle errors
	ErrCodeSessionStart    ErrorCode = "SESSION_START"
	ErrCodeNoActiveSession ErrorCode = "NO_ACTIVE_SESSION"
	ErrCodePersistence     ErrorCode = "PERSISTENCE"

	// Configuration errors
	ErrCodeConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Command execution errors
	ErrCodeCommandTimeout  ErrorCode = "COMMAND_TIMEOUT"
	ErrCodeCommandNotFound ErrorCode = "COMMAND_NOT_FOUND"
	ErrCodeCommandFailed   ErrorCode = "COMMAND_FAILED"

	// Startup hook errors
	ErrCodeHookTimeout ErrorCode = "HOOK_TIMEOUT"
	ErrCodeHookFailed  ErrorCode = "HOOK_FAILED"

	// Schema errors
	ErrCodeSchemaInvalid ErrorCode = "SCHEMA_INVALID"

	// General errors
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
)

// PilotError represents a structured error with context
type PilotError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *PilotError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PilotError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *PilotError) WithDetail(key string, value interface{}) *PilotError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *PilotError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new PilotError
func New(code ErrorCode, message string) *PilotError {
	return &PilotError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a PilotError
func Wrap(err error, code ErrorCode, message string) *PilotError {
	return &PilotError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific PilotError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	pilotErr, ok := err.(*PilotError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	return pilotErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	pilotErr, ok := err.(*PilotError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return pilotErr.Code
}
