package hook

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHookScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session-start")
	require.NoError(t, os.WriteFile(path, []byte(content), 0755))
	return path
}

func TestRunnerMissingHook(t *testing.T) {
	r := NewRunner(filepath.Join(t.TempDir(), "does-not-exist"))
	report := r.Run(context.Background(), t.TempDir())

	assert.Equal(t, TierWarning, report.Overall)
	require.Len(t, report.Categories, 1)
	assert.Equal(t, "startup-hook", report.Categories[0].Name)
}

func TestRunnerNoPath(t *testing.T) {
	r := NewRunner("")
	report := r.Run(context.Background(), t.TempDir())
	assert.Equal(t, TierWarning, report.Overall)
}

func TestRunnerSuccess(t *testing.T) {
	path := writeHookScript(t, "#!/bin/sh\necho detected go\necho checks passed\n")
	r := NewRunner(path)

	report := r.Run(context.Background(), t.TempDir())
	assert.Equal(t, TierHealthy, report.Overall)
	assert.Equal(t, []string{"detected go", "checks passed"}, report.Output)
}

func TestRunnerFailure(t *testing.T) {
	path := writeHookScript(t, "#!/bin/sh\nexit 3\n")
	r := NewRunner(path)

	report := r.Run(context.Background(), t.TempDir())
	assert.Equal(t, TierWarning, report.Overall)
}

func TestRunnerBackgroundChild(t *testing.T) {
	// The child inherits stdout and outlives the hook; Run must not wait
	// for it to release the pipe.
	path := writeHookScript(t, "#!/bin/sh\necho ready\nsleep 5 &\nexit 0\n")
	r := NewRunner(path)

	start := time.Now()
	report := r.Run(context.Background(), t.TempDir())
	elapsed := time.Since(start)

	assert.Equal(t, TierHealthy, report.Overall)
	assert.Equal(t, []string{"ready"}, report.Output)
	assert.Less(t, elapsed, 3*time.Second, "a lingering child must not stall the hook")
}

func TestRunnerTimeout(t *testing.T) {
	path := writeHookScript(t, "#!/bin/sh\nsleep 5\n")
	r := NewRunner(path, WithTimeout(100*time.Millisecond))

	start := time.Now()
	report := r.Run(context.Background(), t.TempDir())
	elapsed := time.Since(start)

	assert.Equal(t, TierWarning, report.Overall)
	assert.Less(t, elapsed, 2*time.Second, "timeout should cut the hook short")
}
