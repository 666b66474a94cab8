package errors

import (
	"fmt"
	"testing"
)

func TestPilotError(t *testing.T) {
	// Test basic error creation
	err := New(ErrCodeNoActiveSession, "no active session")
	if err.Code != ErrCodeNoActiveSession {
		t.Errorf("expected code %s, got %s", ErrCodeNoActiveSession, err.Code)
	}

	// Test error wrapping
	cause := fmt.Errorf("underlying error")
	wrapped := Wrap(cause, ErrCodePersistence, "save failed")

	if wrapped.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}

	// Test Is function
	if !Is(wrapped, ErrCodePersistence) {
		t.Error("Is should return true for matching code")
	}

	if Is(wrapped, ErrCodeSessionStart) {
		t.Error("Is should return false for non-matching code")
	}

	// Test WithDetail
	detailed := err.WithDetail("operation", "checkpoint").WithDetail("attempt", 2)
	if detailed.Details["operation"] != "checkpoint" {
		t.Error("WithDetail should add details")
	}
}

func TestErrorConstructors(t *testing.T) {
	// Test SessionAlreadyActive
	err := SessionAlreadyActive("abc-123")
	if err.Code != ErrCodeSessionStart {
		t.Errorf("expected code %s, got %s", ErrCodeSessionStart, err.Code)
	}
	if err.Details["sessionId"] != "abc-123" {
		t.Error("SessionAlreadyActive should include sessionId detail")
	}

	// Test NoActiveSession
	err = NoActiveSession("checkpoint")
	if err.Code != ErrCodeNoActiveSession {
		t.Errorf("expected code %s, got %s", ErrCodeNoActiveSession, err.Code)
	}
	if err.Details["operation"] != "checkpoint" {
		t.Error("NoActiveSession should include operation detail")
	}

	// Test Persistence
	cause := fmt.Errorf("permission denied")
	err = Persistence("write session", "/tmp/sessions/current.json", cause)
	if err.Code != ErrCodePersistence {
		t.Errorf("expected code %s, got %s", ErrCodePersistence, err.Code)
	}
	if err.Unwrap() != cause {
		t.Error("Persistence should preserve the cause")
	}
}

func TestGetCode(t *testing.T) {
	if GetCode(nil) != "" {
		t.Error("GetCode(nil) should return empty code")
	}

	err := ConfigNotFound("/etc/pilot.yml")
	if GetCode(err) != ErrCodeConfigNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeConfigNotFound, GetCode(err))
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if GetCode(wrapped) != ErrCodeConfigNotFound {
		t.Error("GetCode should unwrap to find the code")
	}
}
