package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-pilot/command"
)

func TestParsePorcelain(t *testing.T) {
	t.Run("staged only", func(t *testing.T) {
		status := ParsePorcelain("M  file1.txt\n")
		assert.Equal(t, []string{"file1.txt"}, status.Staged)
		assert.Empty(t, status.Unstaged)
		assert.Empty(t, status.Untracked)
	})

	t.Run("unstaged only", func(t *testing.T) {
		status := ParsePorcelain(" M file2.txt\n")
		assert.Empty(t, status.Staged)
		assert.Equal(t, []string{"file2.txt"}, status.Unstaged)
		assert.Empty(t, status.Untracked)
	})

	t.Run("untracked only", func(t *testing.T) {
		status := ParsePorcelain("?? file3.txt\n")
		assert.Empty(t, status.Staged)
		assert.Empty(t, status.Unstaged)
		assert.Equal(t, []string{"file3.txt"}, status.Untracked)
	})

	t.Run("staged and unstaged", func(t *testing.T) {
		status := ParsePorcelain("MM file4.txt\n")
		assert.Equal(t, []string{"file4.txt"}, status.Staged)
		assert.Equal(t, []string{"file4.txt"}, status.Unstaged)
		assert.Empty(t, status.Untracked)
	})

	t.Run("mixed listing", func(t *testing.T) {
		out := "M  a.go\n M b.go\n?? c.go\nA  d.go\n"
		status := ParsePorcelain(out)
		assert.Equal(t, []string{"a.go", "d.go"}, status.Staged)
		assert.Equal(t, []string{"b.go"}, status.Unstaged)
		assert.Equal(t, []string{"c.go"}, status.Untracked)
		assert.Equal(t, out, status.Raw)
	})

	t.Run("empty output", func(t *testing.T) {
		status := ParsePorcelain("")
		assert.Empty(t, status.Staged)
		assert.Empty(t, status.Unstaged)
		assert.Empty(t, status.Untracked)
	})
}

// failingExecutor runs `false` regardless of the requested command.
type failingExecutor struct{}

func (e *failingExecutor) Command(name string, args ...string) *exec.Cmd {
	return exec.Command("false")
}

func (e *failingExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, "false")
}

func TestCaptureFailure(t *testing.T) {
	sb := command.NewSafeBuilderWithExecutor(&failingExecutor{})
	probe := CaptureWithBuilder(t.TempDir(), sb)
	assert.Equal(t, ProbeFailed, probe.State)
	assert.Nil(t, probe.Status)
	assert.NotEmpty(t, probe.Reason)
}

func runGitCommand(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s failed with output: %s", strings.Join(args, " "), string(output))
}

func setupGitRepo(t *testing.T, dir string) {
	t.Helper()
	runGitCommand(t, dir, "init")
	runGitCommand(t, dir, "config", "user.email", "test@example.com")
	runGitCommand(t, dir, "config", "user.name", "Test User")
}

func TestCapture(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	t.Run("non-git directory", func(t *testing.T) {
		probe := Capture(t.TempDir())
		assert.Equal(t, ProbeFailed, probe.State)
	})

	t.Run("repo with changes", func(t *testing.T) {
		tempDir := t.TempDir()
		setupGitRepo(t, tempDir)

		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "initial.txt"), []byte("initial"), 0644))
		runGitCommand(t, tempDir, "add", "initial.txt")
		runGitCommand(t, tempDir, "commit", "-m", "initial commit")

		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "staged.txt"), []byte("staged"), 0644))
		runGitCommand(t, tempDir, "add", "staged.txt")
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "initial.txt"), []byte("modified"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "untracked.txt"), []byte("untracked"), 0644))

		probe := Capture(tempDir)
		require.Equal(t, ProbeOK, probe.State)
		require.NotNil(t, probe.Status)
		assert.Contains(t, probe.Status.Staged, "staged.txt")
		assert.Contains(t, probe.Status.Unstaged, "initial.txt")
		assert.Contains(t, probe.Status.Untracked, "untracked.txt")
		assert.NotEmpty(t, probe.Status.Branch)
	})
}
