package errors

import (
	"fmt"
	"os/exec"
	"time"
)

// SessionAlreadyActive creates a session start rejection error
func SessionAlreadyActive(sessionID string) *PilotError {
	return New(ErrCodeSessionStart,
		fmt.Sprintf("a session is already active (id: %s); close it first or restart with --force", sessionID)).
		WithDetail("sessionId", sessionID)
}

// SessionStartFailed wraps a failure during session start
func SessionStartFailed(err error) *PilotError {
	return Wrap(err, ErrCodeSessionStart, "failed to start session")
}

// NoActiveSession creates an error for operations that require an active session
func NoActiveSession(operation string) *PilotError {
	return New(ErrCodeNoActiveSession,
		fmt.Sprintf("no active session; start one before running '%s'", operation)).
		WithDetail("operation", operation)
}

// Persistence wraps a filesystem failure during a save or load
func Persistence(operation string, path string, err error) *PilotError {
	return Wrap(err, ErrCodePersistence, fmt.Sprintf("failed to %s: %s", operation, path)).
		WithDetail("operation", operation).
		WithDetail("path", path)
}

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *PilotError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *PilotError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// CommandFailed creates a command execution failure error
func CommandFailed(cmd string, err error) *PilotError {
	pilotErr := Wrap(err, ErrCodeCommandFailed, fmt.Sprintf("command failed: %s", cmd)).
		WithDetail("command", cmd)

	// Extract exit code if available
	if exitErr, ok := err.(*exec.ExitError); ok {
		pilotErr = pilotErr.WithDetail("exitCode", exitErr.ExitCode())
	}

	return pilotErr
}

// HookTimeout creates a startup hook timeout error
func HookTimeout(path string, timeout time.Duration) *PilotError {
	return New(ErrCodeHookTimeout,
		fmt.Sprintf("startup hook '%s' did not complete within %s", path, timeout)).
		WithDetail("path", path).
		WithDetail("timeout", timeout.String())
}

// SchemaInvalid creates a schema validation error
func SchemaInvalid(path string, err error) *PilotError {
	return Wrap(err, ErrCodeSchemaInvalid, fmt.Sprintf("document failed schema validation: %s", path)).
		WithDetail("path", path)
}
