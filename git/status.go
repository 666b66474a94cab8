package git

import (
	"context"
	"strings"

	"github.com/mattsolo1/grove-pilot/command"
)

// Status contains the parsed git status for a repository at capture time.
type Status struct {
	// Branch is the current branch name
	Branch string `json:"branch"`

	// Raw is the unparsed porcelain output, kept for display and debugging
	Raw string `json:"status"`

	// Staged lists files with changes in the index
	Staged []string `json:"staged"`

	// Unstaged lists files with changes in the working tree
	Unstaged []string `json:"unstaged"`

	// Untracked lists files git does not know about
	Untracked []string `json:"untracked"`
}

// ProbeState tags the outcome of a status capture so callers can tell
// "project has no git" apart from "git errored" without exceptions.
type ProbeState string

const (
	ProbeOK          ProbeState = "ok"
	ProbeUnavailable ProbeState = "unavailable"
	ProbeFailed      ProbeState = "failed"
)

// Probe is the tagged result of a status capture. Status is non-nil only
// when State is ProbeOK.
type Probe struct {
	State  ProbeState
	Status *Status
	Reason string
}

// Unavailable returns a probe for projects not under version control.
func Unavailable() Probe {
	return Probe{State: ProbeUnavailable}
}

// Capture runs the two read-only git queries (porcelain status, current
// branch) against dir and parses the result. Any failure yields a
// ProbeFailed result, never an error: git absence must not break captures.
func Capture(dir string) Probe {
	return CaptureWithBuilder(dir, command.NewSafeBuilder())
}

// CaptureWithBuilder is Capture with an injectable command builder for tests.
func CaptureWithBuilder(dir string, sb *command.SafeBuilder) Probe {
	statusCmd, err := sb.Build(context.Background(), "git", "status", "--porcelain")
	if err != nil {
		return Probe{State: ProbeFailed, Reason: err.Error()}
	}
	statusExec := statusCmd.Exec()
	statusExec.Dir = dir
	statusOut, err := statusExec.Output()
	if err != nil {
		return Probe{State: ProbeFailed, Reason: err.Error()}
	}

	status := ParsePorcelain(string(statusOut))

	branchCmd, err := sb.Build(context.Background(), "git", "branch", "--show-current")
	if err == nil {
		branchExec := branchCmd.Exec()
		branchExec.Dir = dir
		if branchOut, err := branchExec.Output(); err == nil {
			status.Branch = strings.TrimSpace(string(branchOut))
		}
	}
	// A missing branch (detached HEAD, fresh repo) is not a failure; the
	// porcelain output alone is still a useful capture.

	return Probe{State: ProbeOK, Status: status}
}

// ParsePorcelain parses `git status --porcelain` output. Each line carries a
// two-slot status code in its first two characters: non-space content in
// slot one (other than '?') marks the file staged, non-space content in slot
// two marks it unstaged, and the literal code "??" marks it untracked. A
// file can appear in more than one list.
func ParsePorcelain(out string) *Status {
	status := &Status{
		Raw:       out,
		Staged:    []string{},
		Unstaged:  []string{},
		Untracked: []string{},
	}

	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}

		index := line[0]
		worktree := line[1]
		file := strings.TrimSpace(line[3:])
		if file == "" {
			continue
		}

		if index == '?' && worktree == '?' {
			status.Untracked = append(status.Untracked, file)
			continue
		}

		if index != ' ' && index != '?' {
			status.Staged = append(status.Staged, file)
		}
		if worktree != ' ' {
			status.Unstaged = append(status.Unstaged, file)
		}
	}

	return status
}
