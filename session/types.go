package session

import (
	"time"

	"github.com/mattsolo1/grove-pilot/config"
	"github.com/mattsolo1/grove-pilot/git"
)

// Status is the lifecycle state of a session. Only active -> closed is
// produced today; suspended and error are reserved for future transitions.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusClosed    Status = "closed"
	StatusError     Status = "error"
)

// ClosingCheckpointMessage tags the final checkpoint taken by Close.
const ClosingCheckpointMessage = "session closing"

// Session represents one tracked working period.
type Session struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Status    Status     `json:"status"`

	// MCPServers is the annotated copy of the configured capability servers,
	// with connection status filled in at registration time.
	MCPServers []ServerStatus `json:"mcp_servers"`

	// Agents is loaded once at session start and read-only afterward.
	Agents []config.AgentConfig `json:"agents"`

	// Environment is the project snapshot taken once at creation.
	Environment config.EnvironmentInfo `json:"environment"`

	// Checkpoints is append-only; entries are never edited or removed.
	Checkpoints []Checkpoint `json:"checkpoints"`
}

// ServerStatus is a capability-server descriptor annotated with its
// registration outcome. It is a copy of the config entry, not a shared
// reference, so the config provider's lists stay immutable.
type ServerStatus struct {
	Name      string   `json:"name"`
	Enabled   bool     `json:"enabled"`
	Priority  string   `json:"priority"`
	Command   string   `json:"command,omitempty"`
	Args      []string `json:"args,omitempty"`
	Connected bool     `json:"connected"`
}

// Checkpoint is an immutable, timestamped snapshot of session and system
// state taken on demand.
type Checkpoint struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`

	// SessionState is a copied value, not a live reference: mutations of the
	// session after capture must not affect it.
	SessionState SessionSnapshot `json:"session_state"`

	SystemState SystemState `json:"system_state"`
}

// SessionSnapshot is the partial copy of a Session embedded in a checkpoint.
type SessionSnapshot struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	StartTime       time.Time      `json:"start_time"`
	Status          Status         `json:"status"`
	MCPServers      []ServerStatus `json:"mcp_servers"`
	AgentCount      int            `json:"agent_count"`
	CheckpointCount int            `json:"checkpoint_count"`
}

// SystemState is recomputed on every capture and never mutated afterward.
type SystemState struct {
	WorkingDirectory string            `json:"working_directory"`
	Environment      map[string]string `json:"environment"`
	RunningProcesses []ProcessInfo     `json:"running_processes"`

	// OpenFiles is reserved; no capture source exists yet.
	OpenFiles []string `json:"open_files"`

	GitStatus *git.Status `json:"git_status,omitempty"`
}

// ProcessInfo describes one tracked child process at capture time.
type ProcessInfo struct {
	Name    string `json:"name"`
	PID     int    `json:"pid"`
	Command string `json:"command"`
	Running bool   `json:"running"`
}

// snapshot produces the copied partial view of the session embedded in a
// checkpoint. Slices are copied so later mutation of the live session cannot
// reach previously returned checkpoints.
func (s *Session) snapshot() SessionSnapshot {
	servers := make([]ServerStatus, len(s.MCPServers))
	copy(servers, s.MCPServers)
	for i := range servers {
		servers[i].Args = append([]string(nil), servers[i].Args...)
	}

	return SessionSnapshot{
		ID:              s.ID,
		Name:            s.Name,
		StartTime:       s.StartTime,
		Status:          s.Status,
		MCPServers:      servers,
		AgentCount:      len(s.Agents),
		CheckpointCount: len(s.Checkpoints),
	}
}
