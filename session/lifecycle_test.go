package session

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-pilot/config"
	perrors "github.com/mattsolo1/grove-pilot/errors"
)

func newTestLifecycle(t *testing.T, cfg *config.Config) (*Lifecycle, *Store, *bytes.Buffer) {
	t.Helper()

	root := t.TempDir()
	if cfg == nil {
		cfg = config.DefaultConfig()
		cfg.Project.Name = "Demo Project"
	}

	env := config.EnvironmentInfo{
		RootPath: root,
		Name:     "demo",
		HasGit:   false,
	}

	store := NewStore(t.TempDir())
	procs := NewProcessTable()
	t.Cleanup(procs.TerminateAll)
	capture := NewCapture(root, env.HasGit, procs)

	var out bytes.Buffer
	l := NewLifecycle(cfg, env, store, capture, procs, WithOutput(&out))
	return l, store, &out
}

func TestStartCreatesSession(t *testing.T) {
	l, store, out := newTestLifecycle(t, nil)

	sess, err := l.Start(false)
	require.NoError(t, err)
	require.NotNil(t, sess)

	assert.NotEmpty(t, sess.ID)
	assert.Contains(t, sess.Name, "demo-project-")
	assert.Equal(t, StatusActive, sess.Status)
	assert.Empty(t, sess.Checkpoints)

	assert.FileExists(t, store.SessionPath(sess.ID))
	assert.FileExists(t, store.CurrentPath())
	assert.Contains(t, out.String(), "started")

	assert.Same(t, sess, l.Current())
}

func TestStartExclusive(t *testing.T) {
	l, store, _ := newTestLifecycle(t, nil)

	first, err := l.Start(false)
	require.NoError(t, err)

	_, err = l.Start(false)
	require.Error(t, err)
	assert.Equal(t, perrors.ErrCodeSessionStart, perrors.GetCode(err))

	second, err := l.Start(true)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	// The displaced session is discarded, not closed: its record keeps
	// status active, and the current pointer moves to the new session.
	old, err := store.LoadSession(first.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, old.Status)
	assert.Nil(t, old.EndTime)
	assert.Empty(t, old.Checkpoints)

	cur, err := store.LoadCurrent()
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, second.ID, cur.ID)
}

func TestCheckpointRequiresActiveSession(t *testing.T) {
	l, _, _ := newTestLifecycle(t, nil)

	_, err := l.Checkpoint("nothing running")
	require.Error(t, err)
	assert.Equal(t, perrors.ErrCodeNoActiveSession, perrors.GetCode(err))
}

func TestCheckpointAppends(t *testing.T) {
	l, store, _ := newTestLifecycle(t, nil)

	sess, err := l.Start(false)
	require.NoError(t, err)

	cp1, err := l.Checkpoint("first")
	require.NoError(t, err)
	cp2, err := l.Checkpoint("second")
	require.NoError(t, err)

	require.Len(t, sess.Checkpoints, 2)
	assert.Equal(t, cp1.ID, sess.Checkpoints[0].ID)
	assert.Equal(t, cp2.ID, sess.Checkpoints[1].ID)

	// Snapshot counts reflect the session before each append.
	assert.Equal(t, 0, cp1.SessionState.CheckpointCount)
	assert.Equal(t, 1, cp2.SessionState.CheckpointCount)

	assert.FileExists(t, store.CheckpointPath(cp1.ID))
	assert.FileExists(t, store.CheckpointPath(cp2.ID))

	// The persisted session carries the full checkpoint list.
	loaded, err := store.LoadSession(sess.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Checkpoints, 2)
	assert.Equal(t, "first", loaded.Checkpoints[0].Message)
}

func TestCheckpointSnapshotIsACopy(t *testing.T) {
	l, _, _ := newTestLifecycle(t, nil)

	sess, err := l.Start(false)
	require.NoError(t, err)

	cp, err := l.Checkpoint("before mutation")
	require.NoError(t, err)
	name := cp.SessionState.Name
	servers := len(cp.SessionState.MCPServers)

	// Mutate the live session; the checkpoint must not see it.
	sess.Name = "renamed"
	sess.MCPServers = append(sess.MCPServers, ServerStatus{Name: "late"})

	assert.Equal(t, name, cp.SessionState.Name)
	assert.Len(t, cp.SessionState.MCPServers, servers)
}

func TestCloseIdempotent(t *testing.T) {
	l, store, out := newTestLifecycle(t, nil)

	sess, err := l.Start(false)
	require.NoError(t, err)

	require.NoError(t, l.Close(true))

	loaded, err := store.LoadSession(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, loaded.Status)
	require.NotNil(t, loaded.EndTime)
	require.NotEmpty(t, loaded.Checkpoints)
	final := loaded.Checkpoints[len(loaded.Checkpoints)-1]
	assert.Equal(t, ClosingCheckpointMessage, final.Message)
	assert.Equal(t, StatusClosed, final.SessionState.Status, "closing checkpoint snapshots the closed state")

	// The pointer keeps the most-recently-closed session discoverable, but
	// a fresh lifecycle does not adopt it as active.
	cur, err := store.LoadCurrent()
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, StatusClosed, cur.Status)
	assert.Nil(t, l.Current())

	// A second close is a no-op.
	out.Reset()
	require.NoError(t, l.Close(true))
	assert.Contains(t, out.String(), "No active session")
}

func TestCloseWithoutSave(t *testing.T) {
	l, store, _ := newTestLifecycle(t, nil)

	sess, err := l.Start(false)
	require.NoError(t, err)

	require.NoError(t, l.Close(false))

	loaded, err := store.LoadSession(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, loaded.Status)
	assert.Empty(t, loaded.Checkpoints, "no closing checkpoint without save")
}

func TestCleanHistoryWhileActive(t *testing.T) {
	l, store, _ := newTestLifecycle(t, nil)

	_, err := l.Start(false)
	require.NoError(t, err)

	// Clean operates on the on-disk directory regardless of the in-memory
	// slot; the active session survives in memory.
	require.NoError(t, l.CleanHistory(true))
	assert.NoFileExists(t, store.CurrentPath())
	assert.NotNil(t, l.Current())
}

func TestCleanHistoryAfterClose(t *testing.T) {
	l, store, out := newTestLifecycle(t, nil)

	_, err := l.Start(false)
	require.NoError(t, err)
	_, err = l.Checkpoint("work")
	require.NoError(t, err)
	require.NoError(t, l.Close(true))

	out.Reset()
	require.NoError(t, l.CleanHistory(true))
	assert.Contains(t, out.String(), "backup")

	entries, err := os.ReadDir(store.SessionsDir())
	require.NoError(t, err)
	assert.Empty(t, entries, "history is archived out of the sessions directory")

	status := l.Status()
	assert.False(t, status.Active)
}

func TestStatus(t *testing.T) {
	l, _, _ := newTestLifecycle(t, nil)

	status := l.Status()
	assert.False(t, status.Active)
	assert.False(t, status.Initialized)
	assert.Nil(t, status.Session)

	_, err := l.Start(false)
	require.NoError(t, err)
	_, err = l.Checkpoint("one")
	require.NoError(t, err)

	status = l.Status()
	assert.True(t, status.Active)
	assert.True(t, status.Initialized)
	require.NotNil(t, status.Session)
	assert.NotEmpty(t, status.Duration)
	assert.Equal(t, 1, status.CheckpointCount)
}

func TestCurrentRecoversFromDisk(t *testing.T) {
	l, store, _ := newTestLifecycle(t, nil)

	sess, err := l.Start(false)
	require.NoError(t, err)

	// A fresh lifecycle over the same store picks the session up.
	l2 := NewLifecycle(l.cfg, l.env, store, l.capture, l.procs, WithOutput(&bytes.Buffer{}))
	cur := l2.Current()
	require.NotNil(t, cur)
	assert.Equal(t, sess.ID, cur.ID)
}

func TestServerRegistration(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Project.Name = "demo"
	cfg.Servers = []config.ServerConfig{
		{Name: "context", Enabled: true, Priority: config.PriorityPrimary},
		{Name: "search", Enabled: true, Priority: config.PrioritySecondary},
		{Name: "disabled", Enabled: false},
		{Name: "untiered", Enabled: true},
	}

	l, _, out := newTestLifecycle(t, cfg)

	sess, err := l.Start(false)
	require.NoError(t, err)

	require.Len(t, sess.MCPServers, 3, "disabled servers are not registered")
	byName := map[string]ServerStatus{}
	for _, sv := range sess.MCPServers {
		byName[sv.Name] = sv
	}

	assert.True(t, byName["context"].Connected)
	assert.Equal(t, config.PrioritySecondary, byName["search"].Priority)
	assert.Equal(t, config.PriorityPrimary, byName["untiered"].Priority, "missing tier defaults to primary")

	assert.Contains(t, out.String(), "2 primary, 1 secondary, 0 fallback")
}

func TestServerSpawning(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Project.Name = "demo"
	cfg.Servers = []config.ServerConfig{
		{Name: "sleeper", Enabled: true, Command: "sleep", Args: []string{"30"}},
		{Name: "broken", Enabled: true, Command: "/nonexistent/binary"},
	}

	l, _, _ := newTestLifecycle(t, cfg)

	sess, err := l.Start(false)
	require.NoError(t, err)
	defer func() { require.NoError(t, l.Close(false)) }()

	byName := map[string]ServerStatus{}
	for _, sv := range sess.MCPServers {
		byName[sv.Name] = sv
	}
	assert.True(t, byName["sleeper"].Connected)
	assert.False(t, byName["broken"].Connected, "spawn failure leaves the server disconnected")

	cp, err := l.Checkpoint("with procs")
	require.NoError(t, err)
	require.Len(t, cp.SystemState.RunningProcesses, 1)
	assert.Equal(t, "sleeper", cp.SystemState.RunningProcesses[0].Name)
	assert.True(t, cp.SystemState.RunningProcesses[0].Running)
}

func TestDurationString(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	sess := &Session{StartTime: start}

	assert.Equal(t, "5s", sess.DurationString(start.Add(5*time.Second)))
	assert.Equal(t, "2m 3s", sess.DurationString(start.Add(2*time.Minute+3*time.Second)))
	assert.Equal(t, "1h 2m 3s", sess.DurationString(start.Add(time.Hour+2*time.Minute+3*time.Second)))

	end := start.Add(90 * time.Second)
	sess.EndTime = &end
	assert.Equal(t, "1m 30s", sess.DurationString(end.Add(time.Hour)), "closed sessions use the recorded end time")
}
