package cli

import (
	"fmt"
	"os"

	"github.com/mattsolo1/grove-pilot/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
	}
}

// Handle provides user-friendly error messages based on error type
func (h *ErrorHandler) Handle(err error) error {
	switch errors.GetCode(err) {
	case errors.ErrCodeSessionStart:
		if pilotErr, ok := err.(*errors.PilotError); ok && pilotErr.Details["sessionId"] != nil {
			fmt.Fprintf(os.Stderr, "❌ A session is already active (id: %s)\n", pilotErr.Details["sessionId"])
			fmt.Fprintf(os.Stderr, "Run 'pilot close' first, or 'pilot start --force' to replace it.\n")
			return err
		}
		fmt.Fprintf(os.Stderr, "❌ Failed to start session: %v\n", err)
		return err

	case errors.ErrCodeNoActiveSession:
		fmt.Fprintf(os.Stderr, "❌ No active session. Run 'pilot start' to begin one.\n")
		return err

	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(os.Stderr, "❌ Configuration not found. Create a pilot.yml at the project root.\n")
		return err

	case errors.ErrCodeConfigInvalid, errors.ErrCodeConfigValidation:
		fmt.Fprintf(os.Stderr, "❌ Invalid configuration: %v\n", err)
		return err

	case errors.ErrCodePersistence:
		if pilotErr, ok := err.(*errors.PilotError); ok {
			fmt.Fprintf(os.Stderr, "❌ Failed to read or write session data at %s\n", pilotErr.Details["path"])
			fmt.Fprintf(os.Stderr, "Check permissions on the .pilot directory.\n")
		} else {
			fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
		}
		return err

	default:
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)

		// If verbose mode, show full error details
		if h.Verbose {
			if pilotErr, ok := err.(*errors.PilotError); ok {
				fmt.Fprintf(os.Stderr, "\nError details:\n%s\n", pilotErr.ToJSON())
			}
		}
		return err
	}
}
