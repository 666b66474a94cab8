package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-pilot/config"
	perrors "github.com/mattsolo1/grove-pilot/errors"
	"github.com/mattsolo1/grove-pilot/hook"
	"github.com/mattsolo1/grove-pilot/logging"
	"github.com/mattsolo1/grove-pilot/util/sanitize"
)

// Lifecycle coordinates session start, checkpointing, and close for one
// project. At most one session is active at a time; starting over an active
// session requires force, which closes the old session first.
type Lifecycle struct {
	cfg     *config.Config
	env     config.EnvironmentInfo
	store   *Store
	capture *Capture
	procs   *ProcessTable
	hook    *hook.Runner
	out     io.Writer
	log     *logrus.Entry

	current *Session
}

// Option configures a Lifecycle.
type Option func(*Lifecycle)

// WithOutput redirects human-readable summaries, normally to the command's
// stdout.
func WithOutput(w io.Writer) Option {
	return func(l *Lifecycle) { l.out = w }
}

// WithHookRunner attaches a startup hook runner. Without one, Start skips
// the hook step entirely.
func WithHookRunner(r *hook.Runner) Option {
	return func(l *Lifecycle) { l.hook = r }
}

// NewLifecycle wires a lifecycle from its collaborators. env is the project
// snapshot from config.DetectEnvironment.
func NewLifecycle(cfg *config.Config, env config.EnvironmentInfo, store *Store, capture *Capture, procs *ProcessTable, opts ...Option) *Lifecycle {
	l := &Lifecycle{
		cfg:     cfg,
		env:     env,
		store:   store,
		capture: capture,
		procs:   procs,
		out:     os.Stdout,
		log:     logging.NewLogger("lifecycle"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Current returns the active session, consulting the persisted current
// pointer when nothing is held in memory. Returns nil when no session is
// active.
func (l *Lifecycle) Current() *Session {
	if l.current != nil {
		return l.current
	}

	sess, err := l.store.LoadCurrent()
	if err != nil {
		l.log.WithError(err).Warn("Failed to load current session")
		return nil
	}
	if sess != nil && sess.Status == StatusActive {
		l.current = sess
	}
	return l.current
}

// Start creates and activates a new session. If one is already active it
// fails, unless force is set, in which case the prior session is discarded:
// its on-disk record keeps status active, and the current pointer is
// overwritten by the new session.
func (l *Lifecycle) Start(force bool) (*Session, error) {
	if cur := l.Current(); cur != nil {
		if !force {
			return nil, perrors.SessionAlreadyActive(cur.ID)
		}
		l.log.WithField("session", cur.ID).Warn("Discarding active session")
		l.current = nil
	}

	now := time.Now()
	sess := &Session{
		ID:          uuid.New().String(),
		Name:        l.sessionName(now),
		StartTime:   now,
		Status:      StatusActive,
		Agents:      append([]config.AgentConfig{}, l.cfg.EnabledAgents()...),
		Environment: l.env,
		Checkpoints: []Checkpoint{},
	}
	var health hook.Report
	if l.hook != nil {
		health = l.hook.Run(context.Background(), l.env.RootPath)
	} else {
		health = hook.Degraded("no startup hook configured")
	}

	sess.MCPServers = l.registerServers(sess.Name)

	if err := l.store.SaveSession(sess); err != nil {
		return nil, perrors.SessionStartFailed(err)
	}
	l.current = sess

	l.log.WithFields(logrus.Fields{
		"session": sess.ID,
		"name":    sess.Name,
	}).Info("Session started")

	l.printStartSummary(sess, health)
	return sess, nil
}

// Checkpoint captures session and system state under the given message and
// appends it to the active session.
func (l *Lifecycle) Checkpoint(message string) (*Checkpoint, error) {
	cur := l.Current()
	if cur == nil {
		return nil, perrors.NoActiveSession("checkpoint")
	}

	cp := Checkpoint{
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		Message:      message,
		SessionState: cur.snapshot(),
		SystemState:  l.capture.SystemState(),
	}

	cur.Checkpoints = append(cur.Checkpoints, cp)

	if err := l.store.SaveCheckpoint(&cp); err != nil {
		return nil, err
	}
	if err := l.store.SaveSession(cur); err != nil {
		return nil, err
	}

	l.log.WithFields(logrus.Fields{
		"session":    cur.ID,
		"checkpoint": cp.ID,
	}).Info("Checkpoint created")

	fmt.Fprintf(l.out, "Checkpoint %s created (%d total)\n", shortID(cp.ID), len(cur.Checkpoints))
	return &cp, nil
}

// Close ends the active session: mark it closed, terminate tracked child
// processes, and with save take a final checkpoint of the closed state.
// The in-memory slot is cleared regardless of persistence outcome; the
// current pointer keeps the closed document so the most recent session
// stays discoverable. Closing when nothing is active is a no-op with a
// warning.
func (l *Lifecycle) Close(save bool) error {
	cur := l.Current()
	if cur == nil {
		l.log.Warn("Close requested with no active session")
		fmt.Fprintln(l.out, "No active session to close.")
		return nil
	}

	now := time.Now()
	cur.Status = StatusClosed
	cur.EndTime = &now

	l.procs.TerminateAll()

	if save {
		if _, err := l.Checkpoint(ClosingCheckpointMessage); err != nil {
			l.log.WithError(err).Warn("Failed to take closing checkpoint")
		}
	}

	saveErr := l.store.SaveSession(cur)
	if saveErr != nil {
		l.log.WithError(saveErr).Error("Failed to persist closed session")
	}

	l.log.WithFields(logrus.Fields{
		"session":  cur.ID,
		"duration": cur.DurationString(now),
	}).Info("Session closed")

	fmt.Fprintf(l.out, "Session %s closed (%s)\n", cur.Name, cur.DurationString(now))
	l.current = nil

	return saveErr
}

// CleanHistory archives all session history into a timestamped backup. It
// operates on the on-disk session directory as a whole, independent of
// whether a session is active.
func (l *Lifecycle) CleanHistory(force bool) error {
	backupPath, err := l.store.CleanHistory(force)
	if err != nil {
		return err
	}

	if backupPath == "" {
		fmt.Fprintln(l.out, "No session history to clean.")
		return nil
	}
	fmt.Fprintf(l.out, "Session history moved to %s\n", backupPath)
	return nil
}

// LifecycleStatus is the queryable view of the lifecycle, shaped for both
// human and JSON output.
type LifecycleStatus struct {
	Active          bool     `json:"active"`
	Initialized     bool     `json:"initialized"`
	Session         *Session `json:"session,omitempty"`
	Duration        string   `json:"duration,omitempty"`
	CheckpointCount int      `json:"checkpoint_count"`
}

// Status reports the current lifecycle state without mutating anything.
func (l *Lifecycle) Status() LifecycleStatus {
	status := LifecycleStatus{
		Initialized: l.store.Initialized(),
	}

	if cur := l.Current(); cur != nil {
		status.Active = true
		status.Session = cur
		status.Duration = cur.DurationString(time.Now())
		status.CheckpointCount = len(cur.Checkpoints)
	}
	return status
}

// sessionName derives a filesystem-safe session name from the project name
// and start time.
func (l *Lifecycle) sessionName(start time.Time) string {
	base := l.cfg.Project.Name
	if base == "" {
		base = l.env.Name
	}
	if base == "" {
		base = filepath.Base(l.env.RootPath)
	}
	return fmt.Sprintf("%s-%s", sanitize.ForFilename(base), start.Format("20060102-150405"))
}

// registerServers copies the enabled capability servers into annotated
// status entries and spawns the ones that declare a command. Registration
// is best-effort; a server that fails to spawn is recorded as disconnected.
func (l *Lifecycle) registerServers(sessionName string) []ServerStatus {
	servers := []ServerStatus{}
	for _, sv := range l.cfg.EnabledServers() {
		status := ServerStatus{
			Name:     sv.Name,
			Enabled:  sv.Enabled,
			Priority: sv.Tier(),
			Command:  sv.Command,
			Args:     append([]string(nil), sv.Args...),
		}

		if sv.Command == "" {
			// Declarative entry with no process to manage.
			status.Connected = true
			servers = append(servers, status)
			continue
		}

		// Env keys from config may be in any case or contain separators;
		// normalize them into valid environment variable names.
		env := make(map[string]string, len(sv.Env)+1)
		for k, v := range sv.Env {
			env[sanitize.ForEnvironmentKey(k)] = v
		}
		env["PILOT_SESSION"] = sessionName

		if err := l.procs.Spawn(sv.Name, sv.Command, sv.Args, env, l.env.RootPath); err != nil {
			l.log.WithError(err).WithField("server", sv.Name).Warn("Failed to spawn capability server")
		} else {
			status.Connected = true
		}
		servers = append(servers, status)
	}
	return servers
}

func (l *Lifecycle) printStartSummary(sess *Session, health hook.Report) {
	tiers := map[string]int{}
	connected := 0
	for _, sv := range sess.MCPServers {
		tiers[sv.Priority]++
		if sv.Connected {
			connected++
		}
	}

	fmt.Fprintf(l.out, "Session %s started\n", sess.Name)
	fmt.Fprintf(l.out, "  Languages:  %s\n", summarizeLanguages(sess.Environment))
	fmt.Fprintf(l.out, "  Servers:    %d connected (%d primary, %d secondary, %d fallback)\n",
		connected,
		tiers[config.PriorityPrimary],
		tiers[config.PrioritySecondary],
		tiers[config.PriorityFallback])
	fmt.Fprintf(l.out, "  Agents:     %d\n", len(sess.Agents))
	fmt.Fprintf(l.out, "  Health:     %s\n", health.Overall)
	for _, line := range health.Output {
		fmt.Fprintf(l.out, "    %s\n", line)
	}
}

func summarizeLanguages(env config.EnvironmentInfo) string {
	if len(env.Languages) == 0 {
		return "none detected"
	}
	names := make([]string, len(env.Languages))
	for i, lang := range env.Languages {
		names[i] = lang.Name
	}
	return strings.Join(names, ", ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
