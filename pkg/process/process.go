package process

import (
	"os"
	"syscall"
)

// IsAlive checks if a process with the given PID is still running.
// It uses a signal-sending method that works on Unix-like systems (macOS, Linux).
func IsAlive(pid int) bool {
	if pid <= 0 {
		return false
	}

	// FindProcess never fails on Unix even if the process doesn't exist.
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// Signal 0 checks for existence without delivering anything.
	// EPERM means the process exists but is owned by someone else; it is still alive.
	err = process.Signal(syscall.Signal(0))
	return err == nil || os.IsPermission(err)
}
