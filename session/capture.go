package session

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-pilot/command"
	"github.com/mattsolo1/grove-pilot/git"
	"github.com/mattsolo1/grove-pilot/logging"
)

// Capture assembles system state snapshots for checkpoints. It reads the
// process environment, the tracked-process table, and the project's git
// status. Captures are best-effort and never fail: a broken probe degrades
// the snapshot instead of aborting the checkpoint.
type Capture struct {
	workdir string
	hasGit  bool
	procs   *ProcessTable
	builder *command.SafeBuilder
	log     *logrus.Entry
}

// NewCapture creates a capture bound to the project at workdir. hasGit
// gates git probing: when false, no git command is ever executed.
func NewCapture(workdir string, hasGit bool, procs *ProcessTable) *Capture {
	return &Capture{
		workdir: workdir,
		hasGit:  hasGit,
		procs:   procs,
		builder: command.NewSafeBuilder(),
		log:     logging.NewLogger("capture"),
	}
}

// WithBuilder swaps the command builder, used by tests to stub git.
func (c *Capture) WithBuilder(sb *command.SafeBuilder) *Capture {
	c.builder = sb
	return c
}

// GitStatus probes the project's git state. Projects without git get an
// unavailable probe without any subprocess being run.
func (c *Capture) GitStatus() git.Probe {
	if !c.hasGit {
		return git.Unavailable()
	}
	return git.CaptureWithBuilder(c.workdir, c.builder)
}

// SystemState captures working directory, environment, tracked processes,
// and git status. It always returns a usable state; individual probe
// failures are logged and reflected as absent fields.
func (c *Capture) SystemState() SystemState {
	wd, err := os.Getwd()
	if err != nil {
		wd = c.workdir
	}

	state := SystemState{
		WorkingDirectory: wd,
		Environment:      environSnapshot(),
		RunningProcesses: []ProcessInfo{},
		OpenFiles:        []string{},
	}

	if c.procs != nil {
		state.RunningProcesses = c.procs.List()
	}

	probe := c.GitStatus()
	switch probe.State {
	case git.ProbeOK:
		state.GitStatus = probe.Status
	case git.ProbeFailed:
		c.log.WithField("reason", probe.Reason).Warn("Git status capture failed")
	}

	return state
}

func environSnapshot() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if i := strings.Index(kv, "="); i > 0 {
			env[kv[:i]] = kv[i+1:]
		}
	}
	return env
}
