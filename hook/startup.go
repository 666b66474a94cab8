package hook

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-pilot/command"
	"github.com/mattsolo1/grove-pilot/logging"
)

// DefaultTimeout bounds startup hook execution.
const DefaultTimeout = 30 * time.Second

// Runner executes the session startup hook: an external executable at a
// well-known path under the capability directory. The hook is best-effort;
// every failure mode degrades to a warning-tier report.
type Runner struct {
	path     string
	timeout  time.Duration
	executor command.Executor
	log      *logrus.Entry
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithTimeout overrides the default hook timeout.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithExecutor injects a command executor, used by tests.
func WithExecutor(exec command.Executor) RunnerOption {
	return func(r *Runner) {
		r.executor = exec
	}
}

// NewRunner creates a runner for the hook executable at path.
func NewRunner(path string, opts ...RunnerOption) *Runner {
	r := &Runner{
		path:     path,
		timeout:  DefaultTimeout,
		executor: &command.RealExecutor{},
		log:      logging.NewLogger("hook"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the hook with the working directory set to workdir. It never
// returns an error: absence, failure, and timeout all yield a degraded
// report so session start can proceed.
func (r *Runner) Run(ctx context.Context, workdir string) Report {
	if r.path == "" {
		return Degraded("no startup hook configured")
	}

	if _, err := os.Stat(r.path); err != nil {
		r.log.WithField("path", r.path).Debug("Startup hook not installed")
		return Degraded("startup hook not installed")
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := r.executor.CommandContext(runCtx, r.path)
	cmd.Dir = workdir

	// A child the hook leaves behind can hold stdout open past the hook's
	// own exit or the deadline; WaitDelay stops the pipe wait too.
	cmd.WaitDelay = time.Second

	start := time.Now()
	out, err := cmd.Output()
	elapsed := time.Since(start)

	// The hook itself finished; only a leftover child kept the pipe open.
	if errors.Is(err, exec.ErrWaitDelay) {
		err = nil
	}

	lines := splitLines(string(out))

	if runCtx.Err() == context.DeadlineExceeded {
		r.log.WithFields(logrus.Fields{
			"path":    r.path,
			"timeout": r.timeout,
		}).Warn("Startup hook timed out")
		return Degraded("startup hook timed out")
	}

	if err != nil {
		r.log.WithError(err).WithField("path", r.path).Warn("Startup hook failed")
		report := Degraded("startup hook failed: " + err.Error())
		report.Output = lines
		return report
	}

	r.log.WithFields(logrus.Fields{
		"path":     r.path,
		"duration": elapsed.Round(time.Millisecond),
	}).Debug("Startup hook completed")

	return Report{
		Overall: TierHealthy,
		Categories: []CategoryResult{
			{Name: "startup-hook", Status: TierHealthy},
		},
		Output: lines,
	}
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
