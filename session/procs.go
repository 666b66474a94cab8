package session

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-pilot/command"
	"github.com/mattsolo1/grove-pilot/logging"
	"github.com/mattsolo1/grove-pilot/pkg/process"
)

// TrackedProcess is one child process launched on behalf of the session.
type TrackedProcess struct {
	Name    string
	PID     int
	Command string
	Args    []string

	handle *os.Process
	killed bool
}

// ProcessTable tracks child processes spawned for a session so captures can
// report them and Close can terminate them. One table per lifecycle.
type ProcessTable struct {
	mu       sync.Mutex
	procs    []*TrackedProcess
	executor command.Executor
	log      *logrus.Entry
}

// NewProcessTable creates an empty table using the real executor.
func NewProcessTable() *ProcessTable {
	return NewProcessTableWithExecutor(&command.RealExecutor{})
}

// NewProcessTableWithExecutor creates a table with an injectable executor.
func NewProcessTableWithExecutor(exec command.Executor) *ProcessTable {
	return &ProcessTable{
		executor: exec,
		log:      logging.NewLogger("procs"),
	}
}

// Spawn launches a child process and tracks it. The child inherits the
// parent environment plus the given extras.
func (t *ProcessTable) Spawn(name, cmdName string, args []string, env map[string]string, dir string) error {
	cmd := t.executor.Command(cmdName, args...)
	cmd.Dir = dir
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	if err := cmd.Start(); err != nil {
		return err
	}

	t.mu.Lock()
	t.procs = append(t.procs, &TrackedProcess{
		Name:    name,
		PID:     cmd.Process.Pid,
		Command: cmdName,
		Args:    append([]string(nil), args...),
		handle:  cmd.Process,
	})
	t.mu.Unlock()

	// Reap the child in the background so it doesn't linger as a zombie.
	go func() { _ = cmd.Wait() }()

	t.log.WithFields(logrus.Fields{
		"name": name,
		"pid":  cmd.Process.Pid,
	}).Debug("Spawned child process")

	return nil
}

// List reports all tracked processes with their reconstructed launch command
// and a liveness flag.
func (t *ProcessTable) List() []ProcessInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]ProcessInfo, 0, len(t.procs))
	for _, p := range t.procs {
		out = append(out, ProcessInfo{
			Name:    p.Name,
			PID:     p.PID,
			Command: strings.TrimSpace(p.Command + " " + strings.Join(p.Args, " ")),
			Running: !p.killed && process.IsAlive(p.PID),
		})
	}
	return out
}

// TerminateAll kills every tracked process, best-effort: a process that
// fails to die is logged and skipped, never an error for the caller.
func (t *ProcessTable) TerminateAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, p := range t.procs {
		if p.killed || p.handle == nil {
			continue
		}
		if err := p.handle.Kill(); err != nil && process.IsAlive(p.PID) {
			t.log.WithError(err).WithFields(logrus.Fields{
				"name": p.Name,
				"pid":  p.PID,
			}).Warn("Failed to terminate child process")
			continue
		}
		p.killed = true
	}
}

// Len returns the number of tracked processes.
func (t *ProcessTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.procs)
}
